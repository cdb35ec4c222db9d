package model

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// MatchStats is one player's raw stat line for a single match, exactly as
// extracted from the match page. Deaths is clamped to a minimum of 1 before
// any ratio is computed. KAST is stored as a 0-100 percentage.
type MatchStats struct {
	PlayerID     string
	TournamentID int64
	MatchID      string
	MatchURL     string
	IGN          string
	Team         string
	TeamAbbr     string
	MatchTeam    string // full team name, assigned from tbody position
	Region       string
	Role         Role
	Agent        string
	Rating       float64
	ACS          float64
	Kills        int
	Deaths       int
	Assists      int
	KDDiff       int
	KAST         float64
	ADR          float64
	HeadshotPct  float64
	FirstKills   int
	FirstDeaths  int
	FKDiff       int
	ProfileURL   string
	// Incomplete marks rows missing required fields (KAST/ADR). They are
	// kept for display but excluded from point sums.
	Incomplete    bool
	MissingFields []string
	ScrapedAt     time.Time
}

// Player is one aggregated leaderboard row per (player, tournament). It is
// the durable projection everything else reads; FantasyPoints is only ever
// written by aggregation or recompute, never edited directly.
type Player struct {
	PlayerID      string
	TournamentID  int64
	IGN           string
	RealName      string
	Team          string
	TeamAbbr      string
	Country       string
	Region        string
	Role          Role
	Agent         string
	RoundsPlayed  int
	MatchesPlayed int
	HasIncomplete bool
	Rating        float64
	ACS           float64
	Kills         int
	Deaths        int
	Assists       int
	KDRatio       float64
	KAST          float64
	ADR           float64
	HeadshotPct   float64
	FirstKills    int
	FirstDeaths   int
	FKFDRatio     float64
	BasePoints    float64
	RolePoints    float64
	FantasyPoints float64
	ManualPts     float64
	ProfileURL    string
	Updated       time.Time
}

// TotalPoints is what a roster slot contributes before any star bonus.
func (p *Player) TotalPoints() float64 {
	return p.FantasyPoints + p.ManualPts
}

// StatLine views the aggregate row as a single stat line, for rescoring and
// score breakdown displays.
func (p *Player) StatLine() MatchStats {
	return MatchStats{
		Rating:      p.Rating,
		ACS:         p.ACS,
		Kills:       p.Kills,
		Deaths:      p.Deaths,
		Assists:     p.Assists,
		KAST:        p.KAST,
		ADR:         p.ADR,
		HeadshotPct: p.HeadshotPct,
		FirstKills:  p.FirstKills,
		FirstDeaths: p.FirstDeaths,
	}
}

// PlayerAdjustment is one entry in the per-player manual point ledger.
type PlayerAdjustment struct {
	ID           int64
	PlayerID     string
	TournamentID int64
	Delta        float64
	Reason       string
	Created      time.Time
}

var nonIDChars = regexp.MustCompile(`[^a-z0-9]+`)

// PlayerIDFromProfile derives a stable player id from a player profile URL
// like /player/4164/leaf. Falls back to a normalized IGN when no profile
// link exists. IDs are tournament scoped and never merge across tournaments.
func PlayerIDFromProfile(profileURL, ign string, tournamentID int64) string {
	raw := ""
	if idx := strings.Index(profileURL, "/player/"); idx >= 0 {
		parts := strings.Split(strings.Trim(profileURL[idx:], "/"), "/")
		// parts is ["player", "<numeric id>", "<slug>"]
		if len(parts) >= 3 {
			raw = parts[1] + "_" + parts[2]
		} else if len(parts) == 2 {
			raw = parts[1]
		}
	}
	if raw == "" {
		raw = strings.Trim(nonIDChars.ReplaceAllString(strings.ToLower(ign), "_"), "_")
	}
	return fmt.Sprintf("t%d_%s", tournamentID, raw)
}
