package controller

import (
	"context"
	"fmt"

	"github.com/mattwold/vct-fantasy/model"
)

func (c *controller) ProposeTrade(ctx context.Context, leagueID, fromTeamID, toTeamID int64, fromPlayerID, toPlayerID string) (*model.Trade, error) {
	if fromTeamID == toTeamID {
		return nil, fmt.Errorf("a team can not trade with itself")
	}
	if fromPlayerID == toPlayerID {
		return nil, fmt.Errorf("a trade must exchange two different players")
	}

	league, err := c.db.GetLeague(ctx, leagueID)
	if err != nil {
		return nil, err
	}
	for _, teamID := range []int64{fromTeamID, toTeamID} {
		team, err := c.db.GetFantasyTeam(ctx, teamID)
		if err != nil {
			return nil, err
		}
		if team.LeagueID != leagueID {
			return nil, fmt.Errorf("team %d is not in league %d", teamID, leagueID)
		}
	}

	return c.db.ProposeTrade(ctx, &model.Trade{
		LeagueID:     leagueID,
		FromTeamID:   fromTeamID,
		ToTeamID:     toTeamID,
		FromPlayerID: fromPlayerID,
		ToPlayerID:   toPlayerID,
		TournamentID: league.TournamentID,
	})
}

func (c *controller) ListTrades(ctx context.Context, leagueID int64) ([]model.Trade, error) {
	return c.db.ListTrades(ctx, leagueID)
}

func (c *controller) AcceptTrade(ctx context.Context, id int64) error {
	return c.db.AcceptTrade(ctx, id)
}

func (c *controller) RejectTrade(ctx context.Context, id int64) error {
	return c.db.RejectTrade(ctx, id)
}

func (c *controller) CancelTrade(ctx context.Context, id int64) error {
	return c.db.CancelTrade(ctx, id)
}
