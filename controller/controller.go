package controller

import (
	"context"
	"sync"
	"time"

	"github.com/itbasis/go-clock"

	"github.com/mattwold/vct-fantasy/db"
	"github.com/mattwold/vct-fantasy/model"
	"github.com/mattwold/vct-fantasy/vlr"
)

// C encapsulates business logic without worrying about any web layers
type C interface {
	CreateTournament(ctx context.Context, name, description, format string) (*model.Tournament, error)
	GetTournament(ctx context.Context, id int64) (*model.Tournament, error)
	ListTournaments(ctx context.Context) ([]model.Tournament, error)
	DeleteTournament(ctx context.Context, id int64) error
	// AddEventSource registers an event URL for a tournament. The URL must
	// be a recognizable event page; the event id and slug are parsed out of
	// it and the normalized URL is stored.
	AddEventSource(ctx context.Context, tournamentID int64, rawURL, region string) (*model.EventSource, error)
	GetEventSources(ctx context.Context, tournamentID int64) ([]model.EventSource, error)
	DeleteEventSource(ctx context.Context, id int64) error
	LastScrape(ctx context.Context, tournamentID int64) (*model.ScrapeLog, error)

	// RefreshTournament scrapes all of a tournament's event sources and
	// rebuilds the leaderboard. Concurrent refreshes of the same tournament
	// are serialized.
	RefreshTournament(ctx context.Context, tournamentID int64) error
	RunPeriodicScrapes(frequency time.Duration, shutdown chan bool, wg *sync.WaitGroup)

	GetPlayer(ctx context.Context, playerID string, tournamentID int64) (*model.Player, error)
	ListPlayers(ctx context.Context, tournamentID int64, opts db.ListPlayersOptions) ([]model.Player, error)
	SetPlayerRole(ctx context.Context, playerID string, tournamentID int64, role model.Role) error
	SetPlayerRegion(ctx context.Context, playerID string, tournamentID int64, region string) error
	AdjustPlayerPoints(ctx context.Context, playerID string, tournamentID int64, delta float64, reason string) error
	GetPlayerAdjustments(ctx context.Context, playerID string, tournamentID int64) ([]model.PlayerAdjustment, error)
	DeletePlayerAdjustment(ctx context.Context, adjID int64) error
	// RecomputeTournamentPoints replays every stored stat line through the
	// scoring formulas using each player's current role.
	RecomputeTournamentPoints(ctx context.Context, tournamentID int64) error

	GetMatchStats(ctx context.Context, tournamentID int64, playerID, matchID string) ([]model.MatchStats, error)
	ListMatches(ctx context.Context, tournamentID int64) ([]model.Match, error)
	UpcomingMatches(ctx context.Context, tournamentID int64) ([]model.Match, error)
	PatchMatchStats(ctx context.Context, playerID, matchID string, tournamentID int64, fields map[string]float64) error
	IncompleteMatches(ctx context.Context, tournamentID int64) ([]model.IncompleteMatch, error)

	CreateLeague(ctx context.Context, tournamentID int64, name, description string, rs model.Ruleset) (*model.League, error)
	GetLeague(ctx context.Context, id int64) (*model.League, error)
	ListLeagues(ctx context.Context) ([]model.League, error)
	UpdateRuleset(ctx context.Context, leagueID int64, rs model.Ruleset) error
	DeleteLeague(ctx context.Context, id int64) error
	// TransitionToPlayoffs moves a league into the playoffs phase. kept maps
	// fantasy team ids to the player ids each team carries over.
	TransitionToPlayoffs(ctx context.Context, leagueID int64, kept map[int64][]string) error

	CreateFantasyTeam(ctx context.Context, leagueID int64, teamName, managerName string) (*model.FantasyTeam, error)
	GetFantasyTeam(ctx context.Context, id int64) (*model.FantasyTeam, error)
	TeamsInLeague(ctx context.Context, leagueID int64) ([]model.FantasyTeam, error)
	RenameFantasyTeam(ctx context.Context, id int64, teamName, managerName string) error
	DeleteFantasyTeam(ctx context.Context, id int64) error

	GetRoster(ctx context.Context, fantasyTeamID int64, phase model.Phase) ([]model.RosterPlayer, error)
	AddPlayerToRoster(ctx context.Context, fantasyTeamID int64, playerID string, roleSlot model.Role, phase model.Phase) error
	RemovePlayerFromRoster(ctx context.Context, fantasyTeamID int64, playerID string, phase model.Phase) error
	SetStarPlayer(ctx context.Context, fantasyTeamID int64, playerID string, phase model.Phase) error
	ClearStarPlayer(ctx context.Context, fantasyTeamID int64, phase model.Phase) error
	FollowTeam(ctx context.Context, fantasyTeamID int64, teamName string) error
	UnfollowTeam(ctx context.Context, fantasyTeamID int64) error
	GetFollowedTeam(ctx context.Context, fantasyTeamID int64) (*model.FollowedTeam, error)

	// PhaseStandings derives the standings for one phase; nothing is stored.
	PhaseStandings(ctx context.Context, leagueID int64, phase model.Phase) ([]model.TeamStanding, error)
	// OverallStandings combines the swiss and playoffs totals per team.
	OverallStandings(ctx context.Context, leagueID int64) ([]model.TeamStanding, error)

	AddMatchResult(ctx context.Context, r *model.TeamMatchResult) error
	GetMatchResults(ctx context.Context, tournamentID int64, teamName string) ([]model.TeamMatchResult, error)
	DeleteMatchResult(ctx context.Context, id int64) error
	AddPointAdjustment(ctx context.Context, fantasyTeamID int64, amount float64, reason string) error
	GetAdjustments(ctx context.Context, fantasyTeamID int64) ([]model.PointAdjustment, error)
	DeleteAdjustment(ctx context.Context, id int64) error

	ProposeTrade(ctx context.Context, leagueID, fromTeamID, toTeamID int64, fromPlayerID, toPlayerID string) (*model.Trade, error)
	ListTrades(ctx context.Context, leagueID int64) ([]model.Trade, error)
	AcceptTrade(ctx context.Context, id int64) error
	RejectTrade(ctx context.Context, id int64) error
	CancelTrade(ctx context.Context, id int64) error

	StartDraft(ctx context.Context, leagueID int64, phase model.Phase) (*model.DraftSession, error)
	ActiveDraft(ctx context.Context, leagueID int64) (*model.DraftSession, error)
	// DraftPick adds the player to the team currently on the clock and
	// advances the draft.
	DraftPick(ctx context.Context, leagueID int64, fantasyTeamID int64, playerID string, roleSlot model.Role) error
	CancelDraft(ctx context.Context, leagueID int64) error
}

type controller struct {
	clock clock.Clock
	vlr   vlr.Client
	db    db.DB

	// serializes scrapes per tournament
	mu       sync.Mutex
	scraping map[int64]*sync.Mutex
}

func New(clock clock.Clock, vlrClient vlr.Client, db db.DB) (C, error) {
	c := &controller{
		clock:    clock,
		vlr:      vlrClient,
		db:       db,
		scraping: make(map[int64]*sync.Mutex),
	}
	return c, nil
}

func (c *controller) tournamentLock(tournamentID int64) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()
	l, ok := c.scraping[tournamentID]
	if !ok {
		l = &sync.Mutex{}
		c.scraping[tournamentID] = l
	}
	return l
}
