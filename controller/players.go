package controller

import (
	"context"
	"fmt"

	"github.com/mattwold/vct-fantasy/db"
	"github.com/mattwold/vct-fantasy/model"
	"github.com/mattwold/vct-fantasy/points"
)

func (c *controller) CreateTournament(ctx context.Context, name, description, format string) (*model.Tournament, error) {
	if name == "" {
		return nil, fmt.Errorf("tournament name is required")
	}
	if format == "" {
		format = "standard"
	}
	return c.db.CreateTournament(ctx, name, description, format)
}

func (c *controller) GetTournament(ctx context.Context, id int64) (*model.Tournament, error) {
	return c.db.GetTournament(ctx, id)
}

func (c *controller) ListTournaments(ctx context.Context) ([]model.Tournament, error) {
	return c.db.ListTournaments(ctx)
}

func (c *controller) DeleteTournament(ctx context.Context, id int64) error {
	return c.db.DeleteTournament(ctx, id)
}

func (c *controller) GetPlayer(ctx context.Context, playerID string, tournamentID int64) (*model.Player, error) {
	return c.db.GetPlayer(ctx, playerID, tournamentID)
}

func (c *controller) ListPlayers(ctx context.Context, tournamentID int64, opts db.ListPlayersOptions) ([]model.Player, error) {
	return c.db.ListPlayers(ctx, tournamentID, opts)
}

// SetPlayerRole assigns a role and rescores the player's stored aggregate
// row with it, once. Raw match rows are not replayed here; that only happens
// on an explicit tournament recompute.
func (c *controller) SetPlayerRole(ctx context.Context, playerID string, tournamentID int64, role model.Role) error {
	if err := c.db.UpdatePlayerRole(ctx, playerID, tournamentID, role); err != nil {
		return err
	}
	p, err := c.db.GetPlayer(ctx, playerID, tournamentID)
	if err != nil {
		return err
	}
	p.Role = role
	return c.rescaleAggregate(ctx, *p)
}

func (c *controller) SetPlayerRegion(ctx context.Context, playerID string, tournamentID int64, region string) error {
	return c.db.UpdatePlayerRegion(ctx, playerID, tournamentID, region)
}

func (c *controller) AdjustPlayerPoints(ctx context.Context, playerID string, tournamentID int64, delta float64, reason string) error {
	return c.db.AdjustPlayerPoints(ctx, playerID, tournamentID, delta, reason)
}

func (c *controller) GetPlayerAdjustments(ctx context.Context, playerID string, tournamentID int64) ([]model.PlayerAdjustment, error) {
	return c.db.GetPlayerAdjustments(ctx, playerID, tournamentID)
}

func (c *controller) DeletePlayerAdjustment(ctx context.Context, adjID int64) error {
	return c.db.DeletePlayerAdjustment(ctx, adjID)
}

// RecomputeTournamentPoints replays every stored stat line through the
// scoring formulas using each player's current role. A tournament with no
// stored match rows (imported aggregates only) falls back to rescoring each
// player's aggregate stats, which is less accurate but better than nothing.
func (c *controller) RecomputeTournamentPoints(ctx context.Context, tournamentID int64) error {
	rows, err := c.db.GetMatchStats(ctx, tournamentID, "", "")
	if err != nil {
		return err
	}
	players, err := c.db.ListPlayers(ctx, tournamentID, db.ListPlayersOptions{})
	if err != nil {
		return err
	}

	if len(rows) == 0 {
		for _, p := range players {
			if err := c.rescaleAggregate(ctx, p); err != nil {
				return err
			}
		}
		return nil
	}

	buckets := make(map[string][]model.MatchStats)
	for _, r := range rows {
		buckets[r.PlayerID] = append(buckets[r.PlayerID], r)
	}
	for _, p := range players {
		playerRows, ok := buckets[p.PlayerID]
		if !ok {
			continue // stub with no matches yet, keep existing points
		}
		agg := points.Aggregate(playerRows, p.Role)
		err := c.db.UpdatePlayerPoints(ctx, p.PlayerID, tournamentID,
			agg.BasePoints, agg.RolePoints, agg.FantasyPoints)
		if err != nil {
			return err
		}
	}
	return nil
}

// rescaleAggregate scores a player's stored aggregate stats as if they were
// a single stat line. Only used when no per-match rows exist.
func (c *controller) rescaleAggregate(ctx context.Context, p model.Player) error {
	base, bonus, total := points.Score(p.StatLine(), p.Role)
	return c.db.UpdatePlayerPoints(ctx, p.PlayerID, p.TournamentID, base, bonus, total)
}

// recomputePlayer replays a player's stored stat lines through the scoring
// formulas. Players with no stored lines (stubs, or manually created) keep
// their existing points.
func (c *controller) recomputePlayer(ctx context.Context, playerID string, tournamentID int64, role model.Role) error {
	rows, err := c.db.GetMatchStats(ctx, tournamentID, playerID, "")
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}

	agg := points.Aggregate(rows, role)
	return c.db.UpdatePlayerPoints(ctx, playerID, tournamentID,
		agg.BasePoints, agg.RolePoints, agg.FantasyPoints)
}

func (c *controller) GetMatchStats(ctx context.Context, tournamentID int64, playerID, matchID string) ([]model.MatchStats, error) {
	return c.db.GetMatchStats(ctx, tournamentID, playerID, matchID)
}

func (c *controller) ListMatches(ctx context.Context, tournamentID int64) ([]model.Match, error) {
	return c.db.ListMatches(ctx, tournamentID)
}

func (c *controller) UpcomingMatches(ctx context.Context, tournamentID int64) ([]model.Match, error) {
	return c.db.UpcomingMatches(ctx, tournamentID)
}

// PatchMatchStats corrects a raw stat line and rescores the affected player.
func (c *controller) PatchMatchStats(ctx context.Context, playerID, matchID string, tournamentID int64, fields map[string]float64) error {
	if err := c.db.PatchMatchStats(ctx, playerID, matchID, tournamentID, fields); err != nil {
		return err
	}

	p, err := c.db.GetPlayer(ctx, playerID, tournamentID)
	if err != nil {
		return err
	}
	return c.recomputePlayer(ctx, playerID, tournamentID, p.Role)
}

func (c *controller) IncompleteMatches(ctx context.Context, tournamentID int64) ([]model.IncompleteMatch, error) {
	return c.db.IncompleteMatches(ctx, tournamentID)
}
