package db

import (
	"context"

	"github.com/mattwold/vct-fantasy/model"
)

// ListPlayersOptions controls leaderboard queries. SortBy must be one of the
// allow-listed column names or it falls back to fantasy_points.
type ListPlayersOptions struct {
	SortBy     string
	Ascending  bool
	Search     string
	RoleFilter model.Role
}

type DB interface {
	// Tournaments and event sources
	CreateTournament(ctx context.Context, name, description, format string) (*model.Tournament, error)
	GetTournament(ctx context.Context, id int64) (*model.Tournament, error)
	ListTournaments(ctx context.Context) ([]model.Tournament, error)
	UpdateTournamentStatus(ctx context.Context, id int64, status string) error
	DeleteTournament(ctx context.Context, id int64) error
	AddEventSource(ctx context.Context, tournamentID int64, url, eventName, region string) (*model.EventSource, error)
	GetEventSource(ctx context.Context, id int64) (*model.EventSource, error)
	GetEventSources(ctx context.Context, tournamentID int64) ([]model.EventSource, error)
	UpdateSourceScraped(ctx context.Context, sourceID int64, playersFound int) error
	DeleteEventSource(ctx context.Context, id int64) error
	LogScrape(ctx context.Context, l *model.ScrapeLog) error
	LastScrape(ctx context.Context, tournamentID int64) (*model.ScrapeLog, error)

	// Matches and raw stats
	UpsertMatch(ctx context.Context, m *model.Match) error
	UpsertMatchStats(ctx context.Context, s *model.MatchStats) error
	GetMatchStats(ctx context.Context, tournamentID int64, playerID, matchID string) ([]model.MatchStats, error)
	ListMatches(ctx context.Context, tournamentID int64) ([]model.Match, error)
	UpcomingMatches(ctx context.Context, tournamentID int64) ([]model.Match, error)
	DeleteMatchData(ctx context.Context, tournamentID int64) error
	PatchMatchStats(ctx context.Context, playerID, matchID string, tournamentID int64, fields map[string]float64) error
	IncompleteMatches(ctx context.Context, tournamentID int64) ([]model.IncompleteMatch, error)

	// Leaderboard
	UpsertPlayer(ctx context.Context, p *model.Player) error
	SavePlayerStub(ctx context.Context, p *model.Player) error
	GetPlayer(ctx context.Context, playerID string, tournamentID int64) (*model.Player, error)
	ListPlayers(ctx context.Context, tournamentID int64, opts ListPlayersOptions) ([]model.Player, error)
	ListAllPlayers(ctx context.Context, opts ListPlayersOptions) ([]model.Player, error)
	UpdatePlayerRole(ctx context.Context, playerID string, tournamentID int64, role model.Role) error
	UpdatePlayerRegion(ctx context.Context, playerID string, tournamentID int64, region string) error
	UpdatePlayerPoints(ctx context.Context, playerID string, tournamentID int64, base, role, fantasy float64) error
	AdjustPlayerPoints(ctx context.Context, playerID string, tournamentID int64, delta float64, reason string) error
	GetPlayerAdjustments(ctx context.Context, playerID string, tournamentID int64) ([]model.PlayerAdjustment, error)
	DeletePlayerAdjustment(ctx context.Context, adjID int64) error

	// Leagues and fantasy teams
	CreateLeague(ctx context.Context, tournamentID int64, name, description string, rs model.Ruleset) (*model.League, error)
	GetLeague(ctx context.Context, id int64) (*model.League, error)
	ListLeagues(ctx context.Context) ([]model.League, error)
	LeaguesForTournament(ctx context.Context, tournamentID int64) ([]model.League, error)
	UpdateLeaguePhase(ctx context.Context, id int64, phase model.Phase) error
	SaveRuleset(ctx context.Context, leagueID int64, rs model.Ruleset) error
	DeleteLeague(ctx context.Context, id int64) error
	CreateFantasyTeam(ctx context.Context, leagueID int64, teamName, managerName string) (*model.FantasyTeam, error)
	GetFantasyTeam(ctx context.Context, id int64) (*model.FantasyTeam, error)
	TeamsInLeague(ctx context.Context, leagueID int64) ([]model.FantasyTeam, error)
	RenameFantasyTeam(ctx context.Context, id int64, teamName, managerName string) error
	DeleteFantasyTeam(ctx context.Context, id int64) error

	// Rosters, stars, followed teams
	GetRoster(ctx context.Context, fantasyTeamID int64, phase model.Phase) ([]model.RosterPlayer, error)
	AddToRoster(ctx context.Context, e *model.RosterEntry) error
	RemoveFromRoster(ctx context.Context, fantasyTeamID int64, playerID string, phase model.Phase) error
	SetStarPlayer(ctx context.Context, fantasyTeamID int64, playerID string, phase model.Phase) error
	ClearStarPlayer(ctx context.Context, fantasyTeamID int64, phase model.Phase) error
	PlayerRosterAssignments(ctx context.Context, playerID string, tournamentID int64) ([]model.RosterEntry, error)
	TransitionToPlayoffs(ctx context.Context, leagueID int64, kept []model.RosterEntry) error
	SetFollowedTeam(ctx context.Context, fantasyTeamID int64, teamName, teamRegion string) error
	GetFollowedTeam(ctx context.Context, fantasyTeamID int64) (*model.FollowedTeam, error)
	RemoveFollowedTeam(ctx context.Context, fantasyTeamID int64) error

	// Followed-team results and team adjustments
	AddMatchResult(ctx context.Context, r *model.TeamMatchResult) error
	GetMatchResults(ctx context.Context, tournamentID int64, teamName string) ([]model.TeamMatchResult, error)
	DeleteMatchResult(ctx context.Context, id int64) error
	AddPointAdjustment(ctx context.Context, fantasyTeamID int64, amount float64, reason string) error
	GetAdjustments(ctx context.Context, fantasyTeamID int64) ([]model.PointAdjustment, error)
	DeleteAdjustment(ctx context.Context, id int64) error
	TotalAdjustments(ctx context.Context, fantasyTeamID int64) (float64, error)

	// Trades
	ProposeTrade(ctx context.Context, t *model.Trade) (*model.Trade, error)
	GetTrade(ctx context.Context, id int64) (*model.Trade, error)
	ListTrades(ctx context.Context, leagueID int64) ([]model.Trade, error)
	AcceptTrade(ctx context.Context, id int64) error
	RejectTrade(ctx context.Context, id int64) error
	CancelTrade(ctx context.Context, id int64) error

	// Drafts
	CreateDraftSession(ctx context.Context, d *model.DraftSession) (*model.DraftSession, error)
	ActiveDraft(ctx context.Context, leagueID int64) (*model.DraftSession, error)
	AdvanceDraft(ctx context.Context, draftID int64) error
	CancelDraft(ctx context.Context, draftID int64) error
}
