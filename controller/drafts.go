package controller

import (
	"context"
	"fmt"

	"github.com/mattwold/vct-fantasy/model"
)

// StartDraft opens a snake draft for a league phase. The pick order follows
// team creation order, reversing every round.
func (c *controller) StartDraft(ctx context.Context, leagueID int64, phase model.Phase) (*model.DraftSession, error) {
	league, err := c.db.GetLeague(ctx, leagueID)
	if err != nil {
		return nil, err
	}
	if !league.Ruleset.SnakeDraft {
		return nil, fmt.Errorf("league %d does not use a draft", leagueID)
	}

	if active, err := c.db.ActiveDraft(ctx, leagueID); err != nil {
		return nil, err
	} else if active != nil {
		return nil, fmt.Errorf("league %d already has an active draft", leagueID)
	}

	teams, err := c.db.TeamsInLeague(ctx, leagueID)
	if err != nil {
		return nil, err
	}
	if len(teams) < 2 {
		return nil, fmt.Errorf("league %d needs at least 2 teams to draft", leagueID)
	}

	teamIDs := make([]int64, 0, len(teams))
	for _, t := range teams {
		teamIDs = append(teamIDs, t.ID)
	}
	order := model.SnakeOrder(teamIDs, league.Ruleset.TotalPlayers)

	return c.db.CreateDraftSession(ctx, &model.DraftSession{
		LeagueID:   leagueID,
		Phase:      phase,
		TotalPicks: len(order),
		SnakeOrder: order,
	})
}

func (c *controller) ActiveDraft(ctx context.Context, leagueID int64) (*model.DraftSession, error) {
	return c.db.ActiveDraft(ctx, leagueID)
}

// DraftPick validates that the team is on the clock, rosters the player and
// advances the draft.
func (c *controller) DraftPick(ctx context.Context, leagueID int64, fantasyTeamID int64, playerID string, roleSlot model.Role) error {
	draft, err := c.db.ActiveDraft(ctx, leagueID)
	if err != nil {
		return err
	}
	if draft == nil {
		return fmt.Errorf("league %d has no active draft", leagueID)
	}
	if drafter := draft.CurrentDrafter(); drafter != fantasyTeamID {
		return fmt.Errorf("team %d is not on the clock, team %d is", fantasyTeamID, drafter)
	}

	league, err := c.db.GetLeague(ctx, leagueID)
	if err != nil {
		return err
	}
	if err := c.addToRoster(ctx, league, fantasyTeamID, playerID, roleSlot, draft.Phase); err != nil {
		return err
	}

	return c.db.AdvanceDraft(ctx, draft.ID)
}

func (c *controller) CancelDraft(ctx context.Context, leagueID int64) error {
	draft, err := c.db.ActiveDraft(ctx, leagueID)
	if err != nil {
		return err
	}
	if draft == nil {
		return fmt.Errorf("league %d has no active draft", leagueID)
	}
	return c.db.CancelDraft(ctx, draft.ID)
}
