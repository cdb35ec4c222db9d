package controller

import (
	"context"
	"math"
	"sort"

	"github.com/mattwold/vct-fantasy/model"
	"github.com/mattwold/vct-fantasy/points"
)

// Followed-team bonuses. A bo5 win pays less than a bo3 win and a bo5 loss
// costs less, since playoff teams play more series.
const (
	followWinBo3  = 100.0
	followWinBo5  = 75.0
	followLossBo3 = -75.0
	followLossBo5 = -50.0
)

// PhaseStandings derives one standings table on the fly. Nothing is stored;
// the leaderboard and the adjustment ledgers stay the only point sources.
func (c *controller) PhaseStandings(ctx context.Context, leagueID int64, phase model.Phase) ([]model.TeamStanding, error) {
	league, err := c.db.GetLeague(ctx, leagueID)
	if err != nil {
		return nil, err
	}
	teams, err := c.db.TeamsInLeague(ctx, leagueID)
	if err != nil {
		return nil, err
	}

	standings := make([]model.TeamStanding, 0, len(teams))
	for _, team := range teams {
		s, err := c.teamStanding(ctx, league, team, phase)
		if err != nil {
			return nil, err
		}
		standings = append(standings, *s)
	}

	sort.SliceStable(standings, func(i, j int) bool {
		return standings[i].TotalPoints > standings[j].TotalPoints
	})
	return standings, nil
}

func (c *controller) teamStanding(ctx context.Context, league *model.League, team model.FantasyTeam, phase model.Phase) (*model.TeamStanding, error) {
	s := &model.TeamStanding{FantasyTeam: team, Phase: phase}

	roster, err := c.db.GetRoster(ctx, team.ID, phase)
	if err != nil {
		return nil, err
	}
	s.PlayerCount = len(roster)
	for _, rp := range roster {
		pts := rp.TotalPoints()
		s.PlayerPts += pts
		if rp.Star && league.Ruleset.StarPlayerEnabled {
			s.StarBonus += points.StarMultiplier(pts) - pts
		}
	}

	if league.Ruleset.TeamFollowingEnabled {
		followed, err := c.db.GetFollowedTeam(ctx, team.ID)
		if err != nil {
			return nil, err
		}
		if followed != nil {
			s.FollowedTeam = followed.TeamName
			s.FollowPts, err = c.followPoints(ctx, league.TournamentID, followed.TeamName)
			if err != nil {
				return nil, err
			}
		}
	}

	s.AdjPts, err = c.db.TotalAdjustments(ctx, team.ID)
	if err != nil {
		return nil, err
	}

	s.TotalPoints = round2(s.PlayerPts + s.StarBonus + s.FollowPts + s.AdjPts)
	return s, nil
}

func (c *controller) followPoints(ctx context.Context, tournamentID int64, teamName string) (float64, error) {
	results, err := c.db.GetMatchResults(ctx, tournamentID, teamName)
	if err != nil {
		return 0, err
	}

	// bo3 pays the full rates; every other format pays the reduced bo5 rates.
	var pts float64
	for _, r := range results {
		bo3 := r.Format == model.FormatBo3
		switch {
		case r.Result == "win" && bo3:
			pts += followWinBo3
		case r.Result == "win":
			pts += followWinBo5
		case bo3:
			pts += followLossBo3
		default:
			pts += followLossBo5
		}
	}
	return pts, nil
}

// OverallStandings recombines the swiss and playoffs tables per team. For a
// single-phase league it is just the swiss table.
func (c *controller) OverallStandings(ctx context.Context, leagueID int64) ([]model.TeamStanding, error) {
	swiss, err := c.PhaseStandings(ctx, leagueID, model.PhaseSwiss)
	if err != nil {
		return nil, err
	}
	playoffs, err := c.PhaseStandings(ctx, leagueID, model.PhasePlayoffs)
	if err != nil {
		return nil, err
	}

	byTeam := make(map[int64]int, len(swiss))
	overall := make([]model.TeamStanding, 0, len(swiss))
	for _, s := range swiss {
		s.SwissPts = s.TotalPoints
		s.Phase = ""
		byTeam[s.ID] = len(overall)
		overall = append(overall, s)
	}
	for _, p := range playoffs {
		i, ok := byTeam[p.ID]
		if !ok {
			p.PlayoffsPts = p.TotalPoints
			p.Phase = ""
			overall = append(overall, p)
			continue
		}
		overall[i].PlayoffsPts = p.TotalPoints
		overall[i].PlayerPts += p.PlayerPts
		overall[i].StarBonus += p.StarBonus
		overall[i].PlayerCount += p.PlayerCount
		// Follow points and adjustments are per team, not per phase, so
		// they appear in both phase totals. Keep a single copy.
		overall[i].TotalPoints = round2(overall[i].SwissPts + p.TotalPoints - p.FollowPts - p.AdjPts)
	}

	sort.SliceStable(overall, func(i, j int) bool {
		return overall[i].TotalPoints > overall[j].TotalPoints
	})
	return overall, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
