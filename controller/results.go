package controller

import (
	"context"
	"fmt"

	"github.com/mattwold/vct-fantasy/model"
)

// AddMatchResult records a real team's win or loss so followed-team bonuses
// can be scored. Results are entered manually because the scrape pipeline
// only sees matches that have player stat pages.
func (c *controller) AddMatchResult(ctx context.Context, r *model.TeamMatchResult) error {
	if r.TeamName == "" {
		return fmt.Errorf("a match result needs a team name")
	}
	if r.Result != "win" && r.Result != "loss" {
		return fmt.Errorf("result must be win or loss, got %q", r.Result)
	}
	if r.Format != model.FormatBo3 && r.Format != model.FormatBo5 {
		return fmt.Errorf("format must be %s or %s, got %q", model.FormatBo3, model.FormatBo5, r.Format)
	}
	if _, err := c.db.GetTournament(ctx, r.TournamentID); err != nil {
		return err
	}

	return c.db.AddMatchResult(ctx, r)
}

func (c *controller) GetMatchResults(ctx context.Context, tournamentID int64, teamName string) ([]model.TeamMatchResult, error) {
	return c.db.GetMatchResults(ctx, tournamentID, teamName)
}

func (c *controller) DeleteMatchResult(ctx context.Context, id int64) error {
	return c.db.DeleteMatchResult(ctx, id)
}

func (c *controller) AddPointAdjustment(ctx context.Context, fantasyTeamID int64, amount float64, reason string) error {
	if amount == 0 {
		return fmt.Errorf("an adjustment of 0 points has no effect")
	}
	if reason == "" {
		return fmt.Errorf("an adjustment needs a reason")
	}
	if _, err := c.db.GetFantasyTeam(ctx, fantasyTeamID); err != nil {
		return err
	}
	return c.db.AddPointAdjustment(ctx, fantasyTeamID, amount, reason)
}

func (c *controller) GetAdjustments(ctx context.Context, fantasyTeamID int64) ([]model.PointAdjustment, error) {
	return c.db.GetAdjustments(ctx, fantasyTeamID)
}

func (c *controller) DeleteAdjustment(ctx context.Context, id int64) error {
	return c.db.DeleteAdjustment(ctx, id)
}
