package mockdb

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/mattwold/vct-fantasy/db"
	"github.com/mattwold/vct-fantasy/model"
)

type DB struct {
	mock.Mock
}

func (m *DB) CreateTournament(ctx context.Context, name, description, format string) (*model.Tournament, error) {
	args := m.Called(ctx, name, description, format)
	return tournamentResult(args)
}

func (m *DB) GetTournament(ctx context.Context, id int64) (*model.Tournament, error) {
	args := m.Called(ctx, id)
	return tournamentResult(args)
}

func (m *DB) ListTournaments(ctx context.Context) ([]model.Tournament, error) {
	args := m.Called(ctx)

	var r []model.Tournament
	if args.Get(0) != nil {
		r = args.Get(0).([]model.Tournament)
	}
	return r, args.Error(1)
}

func (m *DB) UpdateTournamentStatus(ctx context.Context, id int64, status string) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *DB) DeleteTournament(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *DB) AddEventSource(ctx context.Context, tournamentID int64, url, eventName, region string) (*model.EventSource, error) {
	args := m.Called(ctx, tournamentID, url, eventName, region)
	return sourceResult(args)
}

func (m *DB) GetEventSource(ctx context.Context, id int64) (*model.EventSource, error) {
	args := m.Called(ctx, id)
	return sourceResult(args)
}

func (m *DB) GetEventSources(ctx context.Context, tournamentID int64) ([]model.EventSource, error) {
	args := m.Called(ctx, tournamentID)

	var r []model.EventSource
	if args.Get(0) != nil {
		r = args.Get(0).([]model.EventSource)
	}
	return r, args.Error(1)
}

func (m *DB) UpdateSourceScraped(ctx context.Context, sourceID int64, playersFound int) error {
	args := m.Called(ctx, sourceID, playersFound)
	return args.Error(0)
}

func (m *DB) DeleteEventSource(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *DB) LogScrape(ctx context.Context, l *model.ScrapeLog) error {
	args := m.Called(ctx, l)
	return args.Error(0)
}

func (m *DB) LastScrape(ctx context.Context, tournamentID int64) (*model.ScrapeLog, error) {
	args := m.Called(ctx, tournamentID)

	var l *model.ScrapeLog
	if args.Get(0) != nil {
		l = args.Get(0).(*model.ScrapeLog)
	}
	return l, args.Error(1)
}

func (m *DB) UpsertMatch(ctx context.Context, match *model.Match) error {
	args := m.Called(ctx, match)
	return args.Error(0)
}

func (m *DB) UpsertMatchStats(ctx context.Context, s *model.MatchStats) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *DB) GetMatchStats(ctx context.Context, tournamentID int64, playerID, matchID string) ([]model.MatchStats, error) {
	args := m.Called(ctx, tournamentID, playerID, matchID)

	var r []model.MatchStats
	if args.Get(0) != nil {
		r = args.Get(0).([]model.MatchStats)
	}
	return r, args.Error(1)
}

func (m *DB) ListMatches(ctx context.Context, tournamentID int64) ([]model.Match, error) {
	args := m.Called(ctx, tournamentID)
	return matchesResult(args)
}

func (m *DB) UpcomingMatches(ctx context.Context, tournamentID int64) ([]model.Match, error) {
	args := m.Called(ctx, tournamentID)
	return matchesResult(args)
}

func (m *DB) DeleteMatchData(ctx context.Context, tournamentID int64) error {
	args := m.Called(ctx, tournamentID)
	return args.Error(0)
}

func (m *DB) PatchMatchStats(ctx context.Context, playerID, matchID string, tournamentID int64, fields map[string]float64) error {
	args := m.Called(ctx, playerID, matchID, tournamentID, fields)
	return args.Error(0)
}

func (m *DB) IncompleteMatches(ctx context.Context, tournamentID int64) ([]model.IncompleteMatch, error) {
	args := m.Called(ctx, tournamentID)

	var r []model.IncompleteMatch
	if args.Get(0) != nil {
		r = args.Get(0).([]model.IncompleteMatch)
	}
	return r, args.Error(1)
}

func (m *DB) UpsertPlayer(ctx context.Context, p *model.Player) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *DB) SavePlayerStub(ctx context.Context, p *model.Player) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *DB) GetPlayer(ctx context.Context, playerID string, tournamentID int64) (*model.Player, error) {
	args := m.Called(ctx, playerID, tournamentID)

	var p *model.Player
	if args.Get(0) != nil {
		p = args.Get(0).(*model.Player)
	}
	return p, args.Error(1)
}

func (m *DB) ListPlayers(ctx context.Context, tournamentID int64, opts db.ListPlayersOptions) ([]model.Player, error) {
	args := m.Called(ctx, tournamentID, opts)
	return playersResult(args)
}

func (m *DB) ListAllPlayers(ctx context.Context, opts db.ListPlayersOptions) ([]model.Player, error) {
	args := m.Called(ctx, opts)
	return playersResult(args)
}

func (m *DB) UpdatePlayerRole(ctx context.Context, playerID string, tournamentID int64, role model.Role) error {
	args := m.Called(ctx, playerID, tournamentID, role)
	return args.Error(0)
}

func (m *DB) UpdatePlayerRegion(ctx context.Context, playerID string, tournamentID int64, region string) error {
	args := m.Called(ctx, playerID, tournamentID, region)
	return args.Error(0)
}

func (m *DB) UpdatePlayerPoints(ctx context.Context, playerID string, tournamentID int64, base, role, fantasy float64) error {
	args := m.Called(ctx, playerID, tournamentID, base, role, fantasy)
	return args.Error(0)
}

func (m *DB) AdjustPlayerPoints(ctx context.Context, playerID string, tournamentID int64, delta float64, reason string) error {
	args := m.Called(ctx, playerID, tournamentID, delta, reason)
	return args.Error(0)
}

func (m *DB) GetPlayerAdjustments(ctx context.Context, playerID string, tournamentID int64) ([]model.PlayerAdjustment, error) {
	args := m.Called(ctx, playerID, tournamentID)

	var r []model.PlayerAdjustment
	if args.Get(0) != nil {
		r = args.Get(0).([]model.PlayerAdjustment)
	}
	return r, args.Error(1)
}

func (m *DB) DeletePlayerAdjustment(ctx context.Context, adjID int64) error {
	args := m.Called(ctx, adjID)
	return args.Error(0)
}

func (m *DB) CreateLeague(ctx context.Context, tournamentID int64, name, description string, rs model.Ruleset) (*model.League, error) {
	args := m.Called(ctx, tournamentID, name, description, rs)
	return leagueResult(args)
}

func (m *DB) GetLeague(ctx context.Context, id int64) (*model.League, error) {
	args := m.Called(ctx, id)
	return leagueResult(args)
}

func (m *DB) ListLeagues(ctx context.Context) ([]model.League, error) {
	args := m.Called(ctx)
	return leaguesResult(args)
}

func (m *DB) LeaguesForTournament(ctx context.Context, tournamentID int64) ([]model.League, error) {
	args := m.Called(ctx, tournamentID)
	return leaguesResult(args)
}

func (m *DB) UpdateLeaguePhase(ctx context.Context, id int64, phase model.Phase) error {
	args := m.Called(ctx, id, phase)
	return args.Error(0)
}

func (m *DB) SaveRuleset(ctx context.Context, leagueID int64, rs model.Ruleset) error {
	args := m.Called(ctx, leagueID, rs)
	return args.Error(0)
}

func (m *DB) DeleteLeague(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *DB) CreateFantasyTeam(ctx context.Context, leagueID int64, teamName, managerName string) (*model.FantasyTeam, error) {
	args := m.Called(ctx, leagueID, teamName, managerName)
	return teamResult(args)
}

func (m *DB) GetFantasyTeam(ctx context.Context, id int64) (*model.FantasyTeam, error) {
	args := m.Called(ctx, id)
	return teamResult(args)
}

func (m *DB) TeamsInLeague(ctx context.Context, leagueID int64) ([]model.FantasyTeam, error) {
	args := m.Called(ctx, leagueID)

	var r []model.FantasyTeam
	if args.Get(0) != nil {
		r = args.Get(0).([]model.FantasyTeam)
	}
	return r, args.Error(1)
}

func (m *DB) RenameFantasyTeam(ctx context.Context, id int64, teamName, managerName string) error {
	args := m.Called(ctx, id, teamName, managerName)
	return args.Error(0)
}

func (m *DB) DeleteFantasyTeam(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *DB) GetRoster(ctx context.Context, fantasyTeamID int64, phase model.Phase) ([]model.RosterPlayer, error) {
	args := m.Called(ctx, fantasyTeamID, phase)

	var r []model.RosterPlayer
	if args.Get(0) != nil {
		r = args.Get(0).([]model.RosterPlayer)
	}
	return r, args.Error(1)
}

func (m *DB) AddToRoster(ctx context.Context, e *model.RosterEntry) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

func (m *DB) RemoveFromRoster(ctx context.Context, fantasyTeamID int64, playerID string, phase model.Phase) error {
	args := m.Called(ctx, fantasyTeamID, playerID, phase)
	return args.Error(0)
}

func (m *DB) SetStarPlayer(ctx context.Context, fantasyTeamID int64, playerID string, phase model.Phase) error {
	args := m.Called(ctx, fantasyTeamID, playerID, phase)
	return args.Error(0)
}

func (m *DB) ClearStarPlayer(ctx context.Context, fantasyTeamID int64, phase model.Phase) error {
	args := m.Called(ctx, fantasyTeamID, phase)
	return args.Error(0)
}

func (m *DB) PlayerRosterAssignments(ctx context.Context, playerID string, tournamentID int64) ([]model.RosterEntry, error) {
	args := m.Called(ctx, playerID, tournamentID)

	var r []model.RosterEntry
	if args.Get(0) != nil {
		r = args.Get(0).([]model.RosterEntry)
	}
	return r, args.Error(1)
}

func (m *DB) TransitionToPlayoffs(ctx context.Context, leagueID int64, kept []model.RosterEntry) error {
	args := m.Called(ctx, leagueID, kept)
	return args.Error(0)
}

func (m *DB) SetFollowedTeam(ctx context.Context, fantasyTeamID int64, teamName, teamRegion string) error {
	args := m.Called(ctx, fantasyTeamID, teamName, teamRegion)
	return args.Error(0)
}

func (m *DB) GetFollowedTeam(ctx context.Context, fantasyTeamID int64) (*model.FollowedTeam, error) {
	args := m.Called(ctx, fantasyTeamID)

	var ft *model.FollowedTeam
	if args.Get(0) != nil {
		ft = args.Get(0).(*model.FollowedTeam)
	}
	return ft, args.Error(1)
}

func (m *DB) RemoveFollowedTeam(ctx context.Context, fantasyTeamID int64) error {
	args := m.Called(ctx, fantasyTeamID)
	return args.Error(0)
}

func (m *DB) AddMatchResult(ctx context.Context, r *model.TeamMatchResult) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *DB) GetMatchResults(ctx context.Context, tournamentID int64, teamName string) ([]model.TeamMatchResult, error) {
	args := m.Called(ctx, tournamentID, teamName)

	var r []model.TeamMatchResult
	if args.Get(0) != nil {
		r = args.Get(0).([]model.TeamMatchResult)
	}
	return r, args.Error(1)
}

func (m *DB) DeleteMatchResult(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *DB) AddPointAdjustment(ctx context.Context, fantasyTeamID int64, amount float64, reason string) error {
	args := m.Called(ctx, fantasyTeamID, amount, reason)
	return args.Error(0)
}

func (m *DB) GetAdjustments(ctx context.Context, fantasyTeamID int64) ([]model.PointAdjustment, error) {
	args := m.Called(ctx, fantasyTeamID)

	var r []model.PointAdjustment
	if args.Get(0) != nil {
		r = args.Get(0).([]model.PointAdjustment)
	}
	return r, args.Error(1)
}

func (m *DB) DeleteAdjustment(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *DB) TotalAdjustments(ctx context.Context, fantasyTeamID int64) (float64, error) {
	args := m.Called(ctx, fantasyTeamID)
	return args.Get(0).(float64), args.Error(1)
}

func (m *DB) ProposeTrade(ctx context.Context, t *model.Trade) (*model.Trade, error) {
	args := m.Called(ctx, t)
	return tradeResult(args)
}

func (m *DB) GetTrade(ctx context.Context, id int64) (*model.Trade, error) {
	args := m.Called(ctx, id)
	return tradeResult(args)
}

func (m *DB) ListTrades(ctx context.Context, leagueID int64) ([]model.Trade, error) {
	args := m.Called(ctx, leagueID)

	var r []model.Trade
	if args.Get(0) != nil {
		r = args.Get(0).([]model.Trade)
	}
	return r, args.Error(1)
}

func (m *DB) AcceptTrade(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *DB) RejectTrade(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *DB) CancelTrade(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *DB) CreateDraftSession(ctx context.Context, d *model.DraftSession) (*model.DraftSession, error) {
	args := m.Called(ctx, d)
	return draftResult(args)
}

func (m *DB) ActiveDraft(ctx context.Context, leagueID int64) (*model.DraftSession, error) {
	args := m.Called(ctx, leagueID)
	return draftResult(args)
}

func (m *DB) AdvanceDraft(ctx context.Context, draftID int64) error {
	args := m.Called(ctx, draftID)
	return args.Error(0)
}

func (m *DB) CancelDraft(ctx context.Context, draftID int64) error {
	args := m.Called(ctx, draftID)
	return args.Error(0)
}

func tournamentResult(args mock.Arguments) (*model.Tournament, error) {
	var t *model.Tournament
	if args.Get(0) != nil {
		t = args.Get(0).(*model.Tournament)
	}
	return t, args.Error(1)
}

func sourceResult(args mock.Arguments) (*model.EventSource, error) {
	var s *model.EventSource
	if args.Get(0) != nil {
		s = args.Get(0).(*model.EventSource)
	}
	return s, args.Error(1)
}

func matchesResult(args mock.Arguments) ([]model.Match, error) {
	var r []model.Match
	if args.Get(0) != nil {
		r = args.Get(0).([]model.Match)
	}
	return r, args.Error(1)
}

func playersResult(args mock.Arguments) ([]model.Player, error) {
	var r []model.Player
	if args.Get(0) != nil {
		r = args.Get(0).([]model.Player)
	}
	return r, args.Error(1)
}

func leagueResult(args mock.Arguments) (*model.League, error) {
	var l *model.League
	if args.Get(0) != nil {
		l = args.Get(0).(*model.League)
	}
	return l, args.Error(1)
}

func leaguesResult(args mock.Arguments) ([]model.League, error) {
	var r []model.League
	if args.Get(0) != nil {
		r = args.Get(0).([]model.League)
	}
	return r, args.Error(1)
}

func teamResult(args mock.Arguments) (*model.FantasyTeam, error) {
	var t *model.FantasyTeam
	if args.Get(0) != nil {
		t = args.Get(0).(*model.FantasyTeam)
	}
	return t, args.Error(1)
}

func tradeResult(args mock.Arguments) (*model.Trade, error) {
	var t *model.Trade
	if args.Get(0) != nil {
		t = args.Get(0).(*model.Trade)
	}
	return t, args.Error(1)
}

func draftResult(args mock.Arguments) (*model.DraftSession, error) {
	var d *model.DraftSession
	if args.Get(0) != nil {
		d = args.Get(0).(*model.DraftSession)
	}
	return d, args.Error(1)
}
