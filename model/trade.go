package model

import "time"

type TradeStatus string

const (
	TradePending   TradeStatus = "pending"
	TradeAccepted  TradeStatus = "accepted"
	TradeRejected  TradeStatus = "rejected"
	TradeCancelled TradeStatus = "cancelled"
)

// Trade proposes an atomic swap of one player between two teams. Accepting
// exchanges the players into each other's former role slot and phase;
// anything less than both sides being swappable leaves both rosters
// untouched.
type Trade struct {
	ID             int64
	LeagueID       int64
	FromTeamID     int64
	ToTeamID       int64
	FromPlayerID   string
	ToPlayerID     string
	TournamentID   int64
	Status         TradeStatus
	FromTeamName   string
	ToTeamName     string
	FromPlayerIGN  string
	ToPlayerIGN    string
	Proposed       time.Time
	Resolved       time.Time
}

type DraftStatus string

const (
	DraftActive    DraftStatus = "active"
	DraftComplete  DraftStatus = "complete"
	DraftCancelled DraftStatus = "cancelled"
)

// DraftSession holds a precomputed snake pick order, one team id per pick.
// CurrentPick is 1-based; the session completes once it exceeds TotalPicks.
type DraftSession struct {
	ID          int64
	LeagueID    int64
	Phase       Phase
	Status      DraftStatus
	CurrentPick int
	TotalPicks  int
	SnakeOrder  []int64
	Created     time.Time
}

// SnakeOrder builds the pick order for a draft: forward, backward, repeat,
// truncated to exactly playersPerTeam picks per team.
func SnakeOrder(teamIDs []int64, playersPerTeam int) []int64 {
	n := len(teamIDs)
	if n == 0 || playersPerTeam <= 0 {
		return nil
	}
	total := playersPerTeam * n
	order := make([]int64, 0, total)
	for round := 0; len(order) < total; round++ {
		if round%2 == 0 {
			order = append(order, teamIDs...)
		} else {
			for i := n - 1; i >= 0; i-- {
				order = append(order, teamIDs[i])
			}
		}
	}
	return order[:total]
}

// CurrentDrafter returns the team id on the clock, or 0 when the draft is
// past its final pick.
func (d *DraftSession) CurrentDrafter() int64 {
	idx := d.CurrentPick - 1
	if idx < 0 || idx >= len(d.SnakeOrder) {
		return 0
	}
	return d.SnakeOrder[idx]
}
