package model

import "time"

type Phase string

const (
	PhaseSwiss    Phase = "swiss"
	PhasePlayoffs Phase = "playoffs"
)

func ParsePhase(s string) Phase {
	if s == string(PhasePlayoffs) {
		return PhasePlayoffs
	}
	return PhaseSwiss
}

type Tournament struct {
	ID          int64
	Name        string
	Description string
	Format      string
	Status      string
	Created     time.Time
}

// EventSource is one external event URL feeding a tournament. A tournament
// can aggregate several (one per region, typically).
type EventSource struct {
	ID           int64
	TournamentID int64
	URL          string
	EventName    string
	Region       string
	LastScraped  time.Time
	PlayersFound int
}

// ScrapeLog records the outcome of one scrape run; Status is one of
// success, warning, error.
type ScrapeLog struct {
	ID           int64
	TournamentID int64
	SourceID     int64
	ScrapedAt    time.Time
	PlayersFound int
	Status       string
	Notes        string
}

// Ruleset is a league's configurable constraints, stored as JSON.
type Ruleset struct {
	TotalPlayers          int            `json:"total_players"`
	RoleRequirements      map[string]int `json:"role_requirements"`
	RegionRequirements    map[string]int `json:"region_requirements"`
	MaxPerTeam            int            `json:"max_per_team"`
	IndividualLocked      bool           `json:"individual_locked"`
	SwissDuplicateAllowed bool           `json:"swiss_duplicate_allowed"`
	SwissUniqueRequired   int            `json:"swiss_unique_required"`
	StarPlayerEnabled     bool           `json:"star_player_enabled"`
	TeamFollowingEnabled  bool           `json:"team_following_enabled"`
	SnakeDraft            bool           `json:"snake_draft"`
	SinglePhase           bool           `json:"single_phase"`
}

// DefaultRuleset returns the standard league configuration.
func DefaultRuleset() Ruleset {
	return Ruleset{
		TotalPlayers: 10,
		RoleRequirements: map[string]int{
			"duelist": 2, "initiator": 2, "controller": 2, "sentinel": 2, "flex": 2,
		},
		RegionRequirements: map[string]int{
			"EMEA": 2, "AMER": 2, "APAC": 2, "CN": 2,
		},
		MaxPerTeam:            1,
		SwissDuplicateAllowed: true,
		SwissUniqueRequired:   4,
		StarPlayerEnabled:     true,
		TeamFollowingEnabled:  true,
		SnakeDraft:            true,
	}
}

type League struct {
	ID             int64
	TournamentID   int64
	TournamentName string
	Name           string
	Description    string
	Phase          Phase
	Ruleset        Ruleset
	Created        time.Time
}

type FantasyTeam struct {
	ID          int64
	LeagueID    int64
	TeamName    string
	ManagerName string
	Created     time.Time
}

// RosterEntry links a player to a fantasy team for one phase. At most one
// entry may exist per (team, player, phase), and at most one entry per
// (team, phase) carries the star flag.
type RosterEntry struct {
	ID            int64
	FantasyTeamID int64
	PlayerID      string
	TournamentID  int64
	RoleSlot      Role
	Star          bool
	Duplicate     bool
	Phase         Phase
	Added         time.Time
}

// RosterPlayer is a roster entry joined with its leaderboard row.
type RosterPlayer struct {
	RosterEntry
	Player
}

// FollowedTeam is the one real team whose results grant a fantasy team
// win/loss bonuses. At most one per fantasy team, independent of phase.
type FollowedTeam struct {
	FantasyTeamID int64
	TeamName      string
	TeamRegion    string
}

// TeamMatchResult is a followed-team win or loss entered for bonus scoring.
type TeamMatchResult struct {
	ID           int64
	TournamentID int64
	TeamName     string
	Opponent     string
	Result       string // "win" or "loss"
	Format       MatchFormat
	Created      time.Time
}

// PointAdjustment is a manual team-level point delta.
type PointAdjustment struct {
	ID            int64
	FantasyTeamID int64
	Amount        float64
	Reason        string
	Created       time.Time
}

// TeamStanding is one derived standings row. Standings are never stored;
// the leaderboard remains the sole source of point truth.
type TeamStanding struct {
	FantasyTeam
	Phase        Phase
	PlayerPts    float64
	StarBonus    float64
	FollowPts    float64
	AdjPts       float64
	SwissPts     float64 // only set on overall standings
	PlayoffsPts  float64 // only set on overall standings
	TotalPoints  float64
	PlayerCount  int
	FollowedTeam string
}
