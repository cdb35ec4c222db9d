package controller

import (
	"context"
	"fmt"

	"github.com/mattwold/vct-fantasy/model"
)

func (c *controller) GetRoster(ctx context.Context, fantasyTeamID int64, phase model.Phase) ([]model.RosterPlayer, error) {
	return c.db.GetRoster(ctx, fantasyTeamID, phase)
}

func (c *controller) AddPlayerToRoster(ctx context.Context, fantasyTeamID int64, playerID string, roleSlot model.Role, phase model.Phase) error {
	team, err := c.db.GetFantasyTeam(ctx, fantasyTeamID)
	if err != nil {
		return err
	}
	league, err := c.db.GetLeague(ctx, team.LeagueID)
	if err != nil {
		return err
	}
	if league.Ruleset.IndividualLocked {
		if draft, err := c.db.ActiveDraft(ctx, league.ID); err != nil {
			return err
		} else if draft == nil {
			return fmt.Errorf("roster changes in league %d only happen through the draft", league.ID)
		}
	}
	return c.addToRoster(ctx, league, fantasyTeamID, playerID, roleSlot, phase)
}

// addToRoster validates a pick against the league ruleset and inserts it.
// Used by both direct adds and draft picks.
func (c *controller) addToRoster(ctx context.Context, league *model.League, fantasyTeamID int64, playerID string, roleSlot model.Role, phase model.Phase) error {
	rs := league.Ruleset

	player, err := c.db.GetPlayer(ctx, playerID, league.TournamentID)
	if err != nil {
		return err
	}

	roster, err := c.db.GetRoster(ctx, fantasyTeamID, phase)
	if err != nil {
		return err
	}
	if len(roster) >= rs.TotalPlayers {
		return fmt.Errorf("roster is full (%d players)", rs.TotalPlayers)
	}

	if want, capped := rs.RoleRequirements[string(roleSlot)]; capped {
		have := 0
		for _, rp := range roster {
			if rp.RoleSlot == roleSlot {
				have++
			}
		}
		if have >= want {
			return fmt.Errorf("all %d %s slots are filled", want, roleSlot)
		}
	}

	if rs.MaxPerTeam > 0 && player.Team != "" {
		same := 0
		for _, rp := range roster {
			if rp.Team == player.Team {
				same++
			}
		}
		if same >= rs.MaxPerTeam {
			return fmt.Errorf("already rostering %d players from %s", rs.MaxPerTeam, player.Team)
		}
	}

	duplicate, err := c.heldElsewhereInLeague(ctx, league, fantasyTeamID, playerID, phase)
	if err != nil {
		return err
	}
	if duplicate && !(phase == model.PhaseSwiss && rs.SwissDuplicateAllowed) {
		return fmt.Errorf("%s is already rostered in this league", player.IGN)
	}

	return c.db.AddToRoster(ctx, &model.RosterEntry{
		FantasyTeamID: fantasyTeamID,
		PlayerID:      playerID,
		TournamentID:  league.TournamentID,
		RoleSlot:      roleSlot,
		Duplicate:     duplicate,
		Phase:         phase,
	})
}

// heldElsewhereInLeague reports whether another team in the same league
// already rosters the player for the phase.
func (c *controller) heldElsewhereInLeague(ctx context.Context, league *model.League, fantasyTeamID int64, playerID string, phase model.Phase) (bool, error) {
	assignments, err := c.db.PlayerRosterAssignments(ctx, playerID, league.TournamentID)
	if err != nil {
		return false, err
	}
	if len(assignments) == 0 {
		return false, nil
	}

	teams, err := c.db.TeamsInLeague(ctx, league.ID)
	if err != nil {
		return false, err
	}
	inLeague := make(map[int64]bool, len(teams))
	for _, t := range teams {
		inLeague[t.ID] = true
	}

	for _, a := range assignments {
		if a.FantasyTeamID != fantasyTeamID && a.Phase == phase && inLeague[a.FantasyTeamID] {
			return true, nil
		}
	}
	return false, nil
}

func (c *controller) RemovePlayerFromRoster(ctx context.Context, fantasyTeamID int64, playerID string, phase model.Phase) error {
	return c.db.RemoveFromRoster(ctx, fantasyTeamID, playerID, phase)
}

func (c *controller) SetStarPlayer(ctx context.Context, fantasyTeamID int64, playerID string, phase model.Phase) error {
	league, err := c.leagueForTeam(ctx, fantasyTeamID)
	if err != nil {
		return err
	}
	if !league.Ruleset.StarPlayerEnabled {
		return fmt.Errorf("star players are disabled in league %d", league.ID)
	}
	return c.db.SetStarPlayer(ctx, fantasyTeamID, playerID, phase)
}

func (c *controller) ClearStarPlayer(ctx context.Context, fantasyTeamID int64, phase model.Phase) error {
	return c.db.ClearStarPlayer(ctx, fantasyTeamID, phase)
}

func (c *controller) FollowTeam(ctx context.Context, fantasyTeamID int64, teamName string) error {
	if teamName == "" {
		return fmt.Errorf("team name is required")
	}
	league, err := c.leagueForTeam(ctx, fantasyTeamID)
	if err != nil {
		return err
	}
	if !league.Ruleset.TeamFollowingEnabled {
		return fmt.Errorf("team following is disabled in league %d", league.ID)
	}
	return c.db.SetFollowedTeam(ctx, fantasyTeamID, teamName, model.InferRegion(teamName, ""))
}

func (c *controller) UnfollowTeam(ctx context.Context, fantasyTeamID int64) error {
	return c.db.RemoveFollowedTeam(ctx, fantasyTeamID)
}

func (c *controller) GetFollowedTeam(ctx context.Context, fantasyTeamID int64) (*model.FollowedTeam, error) {
	return c.db.GetFollowedTeam(ctx, fantasyTeamID)
}

func (c *controller) leagueForTeam(ctx context.Context, fantasyTeamID int64) (*model.League, error) {
	team, err := c.db.GetFantasyTeam(ctx, fantasyTeamID)
	if err != nil {
		return nil, err
	}
	return c.db.GetLeague(ctx, team.LeagueID)
}
