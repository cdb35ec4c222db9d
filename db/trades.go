package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/mattwold/vct-fantasy/model"
)

const tradeColumns = `tr.id, tr.league_id, tr.from_team_id, tr.to_team_id,
	tr.from_player_id, tr.to_player_id, tr.tournament_id, tr.status,
	tr.proposed, tr.resolved,
	ft.team_name, tt.team_name,
	COALESCE(fp.ign, tr.from_player_id), COALESCE(tp.ign, tr.to_player_id)`

const tradeJoins = `FROM trades tr
	JOIN fantasy_teams ft ON ft.id=tr.from_team_id
	JOIN fantasy_teams tt ON tt.id=tr.to_team_id
	LEFT JOIN players fp ON fp.player_id=tr.from_player_id AND fp.tournament_id=tr.tournament_id
	LEFT JOIN players tp ON tp.player_id=tr.to_player_id AND tp.tournament_id=tr.tournament_id`

func (db *postgresDB) ProposeTrade(ctx context.Context, t *model.Trade) (*model.Trade, error) {
	const query = `INSERT INTO trades (
			league_id, from_team_id, to_team_id, from_player_id, to_player_id,
			tournament_id, proposed
		) VALUES (
			@leagueID, @fromTeamID, @toTeamID, @fromPlayerID, @toPlayerID,
			@tournamentID, @proposed
		)
		RETURNING id`

	var id int64
	err := db.pool.QueryRow(ctx, query, pgx.NamedArgs{
		"leagueID":     t.LeagueID,
		"fromTeamID":   t.FromTeamID,
		"toTeamID":     t.ToTeamID,
		"fromPlayerID": t.FromPlayerID,
		"toPlayerID":   t.ToPlayerID,
		"tournamentID": t.TournamentID,
		"proposed":     db.now(),
	}).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("error proposing trade: %w", err)
	}
	return db.GetTrade(ctx, id)
}

func (db *postgresDB) GetTrade(ctx context.Context, id int64) (*model.Trade, error) {
	query := fmt.Sprintf(`SELECT %s %s WHERE tr.id=@id`, tradeColumns, tradeJoins)

	row := db.pool.QueryRow(ctx, query, pgx.NamedArgs{"id": id})
	t, err := scanTrade(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTradeNotFound
		}
		return nil, fmt.Errorf("error getting trade %d: %w", id, err)
	}
	return t, nil
}

func (db *postgresDB) ListTrades(ctx context.Context, leagueID int64) ([]model.Trade, error) {
	query := fmt.Sprintf(`SELECT %s %s WHERE tr.league_id=@leagueID ORDER BY tr.id DESC`,
		tradeColumns, tradeJoins)

	rows, err := db.pool.Query(ctx, query, pgx.NamedArgs{"leagueID": leagueID})
	if err != nil {
		return nil, fmt.Errorf("error listing trades: %w", err)
	}
	defer rows.Close()

	trades := make([]model.Trade, 0, 4)
	for rows.Next() {
		t, err := scanTrade(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning trade: %w", err)
		}
		trades = append(trades, *t)
	}
	return trades, rows.Err()
}

// AcceptTrade swaps the two players atomically. Each player lands on the
// other team in that side's former role slot and phase; stars do not travel.
// If either player is no longer on the proposing roster the trade fails and
// both rosters stay untouched.
func (db *postgresDB) AcceptTrade(ctx context.Context, id int64) error {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var t model.Trade
	var status string
	err = tx.QueryRow(ctx, `SELECT league_id, from_team_id, to_team_id,
			from_player_id, to_player_id, tournament_id, status
		FROM trades WHERE id=@id FOR UPDATE`, pgx.NamedArgs{"id": id}).
		Scan(&t.LeagueID, &t.FromTeamID, &t.ToTeamID,
			&t.FromPlayerID, &t.ToPlayerID, &t.TournamentID, &status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrTradeNotFound
		}
		return fmt.Errorf("error loading trade %d: %w", id, err)
	}
	if model.TradeStatus(status) != model.TradePending {
		return ErrTradeNotPending
	}

	fromEntry, err := rosterEntryForTrade(ctx, tx, t.FromTeamID, t.FromPlayerID)
	if err != nil {
		return err
	}
	toEntry, err := rosterEntryForTrade(ctx, tx, t.ToTeamID, t.ToPlayerID)
	if err != nil {
		return err
	}
	if fromEntry == nil || toEntry == nil {
		return ErrTradeNotSwappable
	}

	const del = `DELETE FROM fantasy_roster WHERE id=@id`
	for _, e := range []*model.RosterEntry{fromEntry, toEntry} {
		if _, err := tx.Exec(ctx, del, pgx.NamedArgs{"id": e.ID}); err != nil {
			return fmt.Errorf("error clearing roster slot: %w", err)
		}
	}

	const insert = `INSERT INTO fantasy_roster (
			fantasy_team_id, player_id, tournament_id, role_slot, is_star,
			is_duplicate, phase, added
		) VALUES (@teamID, @playerID, @tournamentID, @roleSlot, FALSE, @duplicate, @phase, @added)`
	swaps := []struct {
		teamID   int64
		playerID string
		slot     *model.RosterEntry
	}{
		{t.FromTeamID, t.ToPlayerID, fromEntry},
		{t.ToTeamID, t.FromPlayerID, toEntry},
	}
	for _, s := range swaps {
		_, err := tx.Exec(ctx, insert, pgx.NamedArgs{
			"teamID":       s.teamID,
			"playerID":     s.playerID,
			"tournamentID": t.TournamentID,
			"roleSlot":     string(s.slot.RoleSlot),
			"duplicate":    s.slot.Duplicate,
			"phase":        string(s.slot.Phase),
			"added":        db.now(),
		})
		if err != nil {
			return fmt.Errorf("error swapping %s: %w", s.playerID, err)
		}
	}

	_, err = tx.Exec(ctx, `UPDATE trades SET status=@status, resolved=@resolved WHERE id=@id`,
		pgx.NamedArgs{"id": id, "status": string(model.TradeAccepted), "resolved": db.now()})
	if err != nil {
		return fmt.Errorf("error resolving trade %d: %w", id, err)
	}

	return tx.Commit(ctx)
}

func (db *postgresDB) RejectTrade(ctx context.Context, id int64) error {
	return db.resolveTrade(ctx, id, model.TradeRejected)
}

func (db *postgresDB) CancelTrade(ctx context.Context, id int64) error {
	return db.resolveTrade(ctx, id, model.TradeCancelled)
}

func (db *postgresDB) resolveTrade(ctx context.Context, id int64, status model.TradeStatus) error {
	const query = `UPDATE trades SET status=@status, resolved=@resolved
		WHERE id=@id AND status=@pending`

	tag, err := db.pool.Exec(ctx, query, pgx.NamedArgs{
		"id":       id,
		"status":   string(status),
		"pending":  string(model.TradePending),
		"resolved": db.now(),
	})
	if err != nil {
		return fmt.Errorf("error resolving trade %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrTradeNotPending
	}
	return nil
}

// rosterEntryForTrade finds the roster row holding a player on a team, any
// phase. Returns nil without error when the player is not rostered there.
func rosterEntryForTrade(ctx context.Context, tx pgx.Tx, teamID int64, playerID string) (*model.RosterEntry, error) {
	const query = `SELECT id, fantasy_team_id, player_id, tournament_id,
			role_slot, is_star, is_duplicate, phase, added
		FROM fantasy_roster
		WHERE fantasy_team_id=@teamID AND player_id=@playerID
		ORDER BY id DESC LIMIT 1`

	e, err := scanRosterEntry(tx.QueryRow(ctx, query, pgx.NamedArgs{
		"teamID":   teamID,
		"playerID": playerID,
	}))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error loading roster entry for trade: %w", err)
	}
	return e, nil
}

func scanTrade(row pgx.Row) (*model.Trade, error) {
	var t model.Trade
	var status string
	var proposed, resolved pgtype.Timestamptz
	err := row.Scan(&t.ID, &t.LeagueID, &t.FromTeamID, &t.ToTeamID,
		&t.FromPlayerID, &t.ToPlayerID, &t.TournamentID, &status,
		&proposed, &resolved,
		&t.FromTeamName, &t.ToTeamName, &t.FromPlayerIGN, &t.ToPlayerIGN)
	if err != nil {
		return nil, err
	}
	t.Status = model.TradeStatus(status)
	t.Proposed = proposed.Time
	t.Resolved = resolved.Time
	return &t, nil
}
