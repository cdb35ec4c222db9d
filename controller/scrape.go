package controller

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/mattwold/vct-fantasy/db"
	"github.com/mattwold/vct-fantasy/model"
	"github.com/mattwold/vct-fantasy/points"
	"github.com/mattwold/vct-fantasy/vlr"
)

// Delay between match page fetches so a refresh doesn't hammer the site.
const matchFetchDelay = 1 * time.Second

func (c *controller) AddEventSource(ctx context.Context, tournamentID int64, rawURL, region string) (*model.EventSource, error) {
	id, slug, err := vlr.ParseEventURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("not a recognizable event url: %w", err)
	}

	eventName := strings.ReplaceAll(slug, "-", " ")
	normalized := vlr.BaseURL + "/event/" + id
	if slug != "" {
		normalized += "/" + slug
	}
	return c.db.AddEventSource(ctx, tournamentID, normalized, eventName, region)
}

func (c *controller) GetEventSources(ctx context.Context, tournamentID int64) ([]model.EventSource, error) {
	return c.db.GetEventSources(ctx, tournamentID)
}

func (c *controller) DeleteEventSource(ctx context.Context, id int64) error {
	return c.db.DeleteEventSource(ctx, id)
}

func (c *controller) LastScrape(ctx context.Context, tournamentID int64) (*model.ScrapeLog, error) {
	return c.db.LastScrape(ctx, tournamentID)
}

// RefreshTournament scrapes every event source of a tournament, stores the
// raw match data and rebuilds the leaderboard. Only one refresh per
// tournament runs at a time; a second caller blocks until the first is done.
func (c *controller) RefreshTournament(ctx context.Context, tournamentID int64) error {
	lock := c.tournamentLock(tournamentID)
	lock.Lock()
	defer lock.Unlock()

	start := time.Now()
	log.Printf("refresh of tournament %d starting", tournamentID)

	sources, err := c.db.GetEventSources(ctx, tournamentID)
	if err != nil {
		return err
	}
	if len(sources) == 0 {
		return fmt.Errorf("tournament %d has no event sources", tournamentID)
	}

	var warnings []string
	for _, src := range sources {
		if err := c.scrapeSource(ctx, &src); err != nil {
			if ctx.Err() != nil {
				return err
			}
			warnings = append(warnings, fmt.Sprintf("%s: %v", src.URL, err))
			log.Printf("error scraping source %s: %v", src.URL, err)
		}
	}
	if len(warnings) == len(sources) {
		c.logScrape(ctx, tournamentID, 0, "error", strings.Join(warnings, "; "))
		return fmt.Errorf("every event source failed: %s", strings.Join(warnings, "; "))
	}

	playersFound, err := c.rebuildLeaderboard(ctx, tournamentID)
	if err != nil {
		c.logScrape(ctx, tournamentID, 0, "error", err.Error())
		return err
	}

	status := "success"
	if len(warnings) > 0 {
		status = "warning"
	}
	c.logScrape(ctx, tournamentID, playersFound, status, strings.Join(warnings, "; "))

	log.Printf("refresh of tournament %d finished, %d players, took %v",
		tournamentID, playersFound, time.Since(start))
	return nil
}

// scrapeSource pulls one event: all completed match pages, the upcoming
// match listing, and stub players for anyone without a stat line yet.
func (c *controller) scrapeSource(ctx context.Context, src *model.EventSource) error {
	urls, err := c.vlr.DiscoverMatchURLs(ctx, src.URL)
	if err != nil {
		return err
	}

	stubs := make([]model.Player, 0, 16)
	for i, matchURL := range urls {
		if i > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-c.clock.After(matchFetchDelay):
			}
		}

		result, err := c.vlr.ScrapeMatch(ctx, matchURL, src.TournamentID, src.Region)
		if err != nil {
			log.Printf("error scraping match %s: %v", matchURL, err)
			continue
		}
		result.Match.SourceID = src.ID

		if err := c.db.UpsertMatch(ctx, &result.Match); err != nil {
			return err
		}
		for i := range result.Players {
			if err := c.db.UpsertMatchStats(ctx, &result.Players[i]); err != nil {
				return err
			}
		}
		stubs = append(stubs, result.Stubs...)
	}

	// Before any match completes the stats page is the only player list.
	if len(urls) == 0 {
		eventStubs, err := c.vlr.EventStatsStubs(ctx, src.URL, src.TournamentID)
		if err != nil {
			log.Printf("error loading event stats stubs from %s: %v", src.URL, err)
		} else {
			stubs = append(stubs, eventStubs...)
		}

		upcoming, err := c.vlr.UpcomingMatches(ctx, src.URL, src.TournamentID)
		if err != nil {
			log.Printf("error loading upcoming matches from %s: %v", src.URL, err)
		}
		for i := range upcoming {
			upcoming[i].SourceID = src.ID
			if err := c.db.UpsertMatch(ctx, &upcoming[i]); err != nil {
				return err
			}
		}
	}

	for i := range stubs {
		if stubs[i].Region == "" {
			stubs[i].Region = model.InferRegion(stubs[i].Team, src.Region)
		}
		if err := c.db.SavePlayerStub(ctx, &stubs[i]); err != nil {
			return err
		}
	}

	return c.db.UpdateSourceScraped(ctx, src.ID, len(stubs))
}

// rebuildLeaderboard re-aggregates every stored stat line. Roles assigned by
// the admin survive because the player upsert never touches them; the roles
// map only matters for scoring.
func (c *controller) rebuildLeaderboard(ctx context.Context, tournamentID int64) (int, error) {
	rows, err := c.db.GetMatchStats(ctx, tournamentID, "", "")
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}

	roles, err := c.currentRoles(ctx, tournamentID)
	if err != nil {
		return 0, err
	}

	players := points.AggregateAll(rows, roles)
	for i := range players {
		if players[i].Region == "" {
			players[i].Region = model.InferRegion(players[i].Team, "")
		}
		if err := c.db.UpsertPlayer(ctx, &players[i]); err != nil {
			return 0, err
		}
	}
	return len(players), nil
}

func (c *controller) currentRoles(ctx context.Context, tournamentID int64) (map[string]model.Role, error) {
	existing, err := c.db.ListPlayers(ctx, tournamentID, db.ListPlayersOptions{})
	if err != nil {
		return nil, err
	}
	roles := make(map[string]model.Role, len(existing))
	for _, p := range existing {
		roles[p.PlayerID] = p.Role
	}
	return roles, nil
}

func (c *controller) logScrape(ctx context.Context, tournamentID int64, playersFound int, status, notes string) {
	err := c.db.LogScrape(ctx, &model.ScrapeLog{
		TournamentID: tournamentID,
		PlayersFound: playersFound,
		Status:       status,
		Notes:        notes,
	})
	if err != nil {
		log.Printf("error writing scrape log: %v", err)
	}
}

func (c *controller) RunPeriodicScrapes(frequency time.Duration, shutdown chan bool, wg *sync.WaitGroup) {
	ticker := time.NewTicker(frequency)
	defer wg.Done()

	for {
		select {
		case <-shutdown:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
			c.refreshActiveTournaments(ctx)
			cancel()
		}
	}
}

func (c *controller) refreshActiveTournaments(ctx context.Context) {
	tournaments, err := c.db.ListTournaments(ctx)
	if err != nil {
		log.Printf("error listing tournaments for periodic scrape: %v", err)
		return
	}
	for _, t := range tournaments {
		if t.Status == "completed" {
			continue
		}
		if err := c.RefreshTournament(ctx, t.ID); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return
			}
			log.Printf("error refreshing tournament %d: %v", t.ID, err)
		}
	}
}
