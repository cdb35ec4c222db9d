package controller

import (
	"context"
	"fmt"

	"github.com/mattwold/vct-fantasy/model"
)

func (c *controller) CreateLeague(ctx context.Context, tournamentID int64, name, description string, rs model.Ruleset) (*model.League, error) {
	if name == "" {
		return nil, fmt.Errorf("league name is required")
	}
	if _, err := c.db.GetTournament(ctx, tournamentID); err != nil {
		return nil, err
	}
	if rs.TotalPlayers <= 0 {
		rs = model.DefaultRuleset()
	}
	return c.db.CreateLeague(ctx, tournamentID, name, description, rs)
}

func (c *controller) GetLeague(ctx context.Context, id int64) (*model.League, error) {
	return c.db.GetLeague(ctx, id)
}

func (c *controller) ListLeagues(ctx context.Context) ([]model.League, error) {
	return c.db.ListLeagues(ctx)
}

func (c *controller) UpdateRuleset(ctx context.Context, leagueID int64, rs model.Ruleset) error {
	if rs.TotalPlayers <= 0 {
		return fmt.Errorf("ruleset must allow at least one player")
	}
	return c.db.SaveRuleset(ctx, leagueID, rs)
}

func (c *controller) DeleteLeague(ctx context.Context, id int64) error {
	return c.db.DeleteLeague(ctx, id)
}

// TransitionToPlayoffs locks in each team's keepers and moves the league to
// the playoffs phase. A single-phase league can not transition.
func (c *controller) TransitionToPlayoffs(ctx context.Context, leagueID int64, kept map[int64][]string) error {
	league, err := c.db.GetLeague(ctx, leagueID)
	if err != nil {
		return err
	}
	if league.Ruleset.SinglePhase {
		return fmt.Errorf("league %d is single phase", leagueID)
	}
	if league.Phase == model.PhasePlayoffs {
		return fmt.Errorf("league %d is already in playoffs", leagueID)
	}

	teams, err := c.db.TeamsInLeague(ctx, leagueID)
	if err != nil {
		return err
	}

	entries := make([]model.RosterEntry, 0, len(teams)*4)
	for _, team := range teams {
		keepIDs := kept[team.ID]
		if max := league.Ruleset.SwissUniqueRequired; max > 0 && len(keepIDs) > max {
			return fmt.Errorf("team %d keeps %d players, limit is %d", team.ID, len(keepIDs), max)
		}

		roster, err := c.db.GetRoster(ctx, team.ID, model.PhaseSwiss)
		if err != nil {
			return err
		}
		onRoster := make(map[string]model.RosterEntry, len(roster))
		for _, rp := range roster {
			onRoster[rp.RosterEntry.PlayerID] = rp.RosterEntry
		}

		for _, pid := range keepIDs {
			entry, ok := onRoster[pid]
			if !ok {
				return fmt.Errorf("player %s is not on team %d's swiss roster", pid, team.ID)
			}
			entries = append(entries, entry)
		}
	}

	return c.db.TransitionToPlayoffs(ctx, leagueID, entries)
}

func (c *controller) CreateFantasyTeam(ctx context.Context, leagueID int64, teamName, managerName string) (*model.FantasyTeam, error) {
	if teamName == "" {
		return nil, fmt.Errorf("team name is required")
	}
	if _, err := c.db.GetLeague(ctx, leagueID); err != nil {
		return nil, err
	}
	return c.db.CreateFantasyTeam(ctx, leagueID, teamName, managerName)
}

func (c *controller) GetFantasyTeam(ctx context.Context, id int64) (*model.FantasyTeam, error) {
	return c.db.GetFantasyTeam(ctx, id)
}

func (c *controller) TeamsInLeague(ctx context.Context, leagueID int64) ([]model.FantasyTeam, error) {
	return c.db.TeamsInLeague(ctx, leagueID)
}

func (c *controller) RenameFantasyTeam(ctx context.Context, id int64, teamName, managerName string) error {
	if teamName == "" {
		return fmt.Errorf("team name is required")
	}
	return c.db.RenameFantasyTeam(ctx, id, teamName, managerName)
}

func (c *controller) DeleteFantasyTeam(ctx context.Context, id int64) error {
	return c.db.DeleteFantasyTeam(ctx, id)
}
