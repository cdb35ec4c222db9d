package vlr

import (
	"context"
	"log"
	"regexp"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/mattwold/vct-fantasy/model"
)

// Match links look like /123456/team-a-vs-team-b-event-name.
var matchHrefPattern = regexp.MustCompile(`^/\d+/[a-z0-9-]+$`)

var matchIDPattern = regexp.MustCompile(`/(\d+)/`)

func (c *client) DiscoverMatchURLs(ctx context.Context, eventURL string) ([]string, error) {
	eventID, slug, err := eventIDAndSlug(eventURL)
	if err != nil {
		return nil, err
	}

	// The dedicated matches listing with ?series_id=all shows every series.
	// Try the slug-qualified form first; some events 404 without the slug.
	var candidates []string
	if slug != "" {
		candidates = append(candidates, c.baseURL+"/event/matches/"+eventID+"/"+slug+"?series_id=all")
	}
	candidates = append(candidates, c.baseURL+"/event/matches/"+eventID+"?series_id=all")

	for _, url := range candidates {
		doc, err := c.get(ctx, url)
		if err != nil {
			log.Printf("match list fetch failed for %s: %v", url, err)
			continue
		}
		urls := c.collectMatchLinks(doc)
		if len(urls) > 0 {
			return urls, nil
		}
	}

	// An event with no matches posted yet is a normal state.
	log.Printf("found 0 match URLs for event %s", eventID)
	return nil, nil
}

func (c *client) collectMatchLinks(doc *goquery.Document) []string {
	seen := make(map[string]bool)
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		href = strings.TrimSpace(strings.SplitN(strings.SplitN(href, "?", 2)[0], "#", 2)[0])
		if matchHrefPattern.MatchString(href) {
			seen[c.baseURL+href] = true
		}
	})

	urls := make([]string, 0, len(seen))
	for u := range seen {
		urls = append(urls, u)
	}
	sort.Strings(urls)
	return urls
}

func (c *client) UpcomingMatches(ctx context.Context, eventURL string, tournamentID int64) ([]model.Match, error) {
	eventID, slug, err := eventIDAndSlug(eventURL)
	if err != nil {
		return nil, err
	}

	var candidates []string
	if slug != "" {
		candidates = append(candidates, c.baseURL+"/event/matches/"+eventID+"/"+slug+"?series_id=all")
	}
	candidates = append(candidates, c.baseURL+"/event/matches/"+eventID+"?series_id=all")

	for _, url := range candidates {
		doc, err := c.get(ctx, url)
		if err != nil {
			continue
		}
		upcoming := c.upcomingFromListing(doc, tournamentID)
		if len(upcoming) > 0 {
			return upcoming, nil
		}
	}
	return nil, nil
}

// upcomingFromListing walks the match cards on an event listing and keeps
// the ones without scores.
func (c *client) upcomingFromListing(doc *goquery.Document, tournamentID int64) []model.Match {
	var upcoming []model.Match
	seen := make(map[string]bool)

	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		href = strings.TrimSpace(strings.SplitN(href, "?", 2)[0])
		if !matchHrefPattern.MatchString(href) {
			return
		}

		teams := a.Find(".match-item-vs-team-name")
		teamA := strings.TrimSpace(teams.Eq(0).Text())
		teamB := strings.TrimSpace(teams.Eq(1).Text())
		if teamA == "" || teamB == "" {
			return
		}

		scores := a.Find(".match-item-vs-team-score")
		scoreA := strings.TrimSpace(scores.Eq(0).Text())
		scoreB := strings.TrimSpace(scores.Eq(1).Text())
		if !isBlankScore(scoreA) && !isBlankScore(scoreB) {
			return
		}

		matchID := href
		if m := matchIDPattern.FindStringSubmatch(href); m != nil {
			matchID = m[1]
		}
		if seen[matchID] {
			return
		}
		seen[matchID] = true

		upcoming = append(upcoming, model.Match{
			MatchID:      matchID,
			TournamentID: tournamentID,
			URL:          c.baseURL + href,
			TeamA:        teamA,
			TeamB:        teamB,
			Status:       model.MatchUpcoming,
			ScheduledAt:  strings.TrimSpace(a.Find(".match-item-time").Text()),
		})
	})
	return upcoming
}

func isBlankScore(s string) bool {
	switch s {
	case "", "-", "–":
		return true
	}
	return false
}
