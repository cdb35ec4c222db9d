package model

import "time"

type MatchStatus string

const (
	MatchUpcoming  MatchStatus = "upcoming"
	MatchCompleted MatchStatus = "completed"
)

type MatchFormat string

const (
	FormatBo3 MatchFormat = "bo3"
	FormatBo5 MatchFormat = "bo5"
)

// FormatForMapCount infers the series format from how many maps rendered.
func FormatForMapCount(mapCount int) MatchFormat {
	if mapCount > 3 {
		return FormatBo5
	}
	return FormatBo3
}

// Match is one scraped match page. Unique per (MatchID, TournamentID).
type Match struct {
	ID           int64
	MatchID      string
	TournamentID int64
	SourceID     int64
	URL          string
	TeamA        string
	TeamB        string
	ScoreA       int
	ScoreB       int
	MapCount     int
	Format       MatchFormat
	Status       MatchStatus
	ScheduledAt  string
	ScrapedAt    time.Time
}

// IncompleteMatch summarizes a match with at least one incomplete stat row,
// for the admin review queue.
type IncompleteMatch struct {
	MatchID         string
	TeamA           string
	TeamB           string
	URL             string
	AffectedPlayers []string
}
