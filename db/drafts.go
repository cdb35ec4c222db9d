package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/mattwold/vct-fantasy/model"
)

func (db *postgresDB) CreateDraftSession(ctx context.Context, d *model.DraftSession) (*model.DraftSession, error) {
	order, err := json.Marshal(d.SnakeOrder)
	if err != nil {
		return nil, fmt.Errorf("error encoding snake order: %w", err)
	}

	const query = `INSERT INTO draft_sessions (league_id, phase, current_pick, total_picks, snake_order, created)
		VALUES (@leagueID, @phase, 1, @totalPicks, @snakeOrder, @created)
		RETURNING id, league_id, phase, status, current_pick, total_picks, snake_order, created`

	row := db.pool.QueryRow(ctx, query, pgx.NamedArgs{
		"leagueID":   d.LeagueID,
		"phase":      string(d.Phase),
		"totalPicks": d.TotalPicks,
		"snakeOrder": order,
		"created":    db.now(),
	})
	created, err := scanDraftSession(row)
	if err != nil {
		return nil, fmt.Errorf("error creating draft session: %w", err)
	}
	return created, nil
}

// ActiveDraft returns the league's newest active session, or nil when no
// draft is running.
func (db *postgresDB) ActiveDraft(ctx context.Context, leagueID int64) (*model.DraftSession, error) {
	const query = `SELECT id, league_id, phase, status, current_pick, total_picks, snake_order, created
		FROM draft_sessions
		WHERE league_id=@leagueID AND status=@status
		ORDER BY id DESC LIMIT 1`

	row := db.pool.QueryRow(ctx, query, pgx.NamedArgs{
		"leagueID": leagueID,
		"status":   string(model.DraftActive),
	})
	d, err := scanDraftSession(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error getting active draft: %w", err)
	}
	return d, nil
}

// AdvanceDraft moves to the next pick and completes the session once the
// pick counter passes total_picks.
func (db *postgresDB) AdvanceDraft(ctx context.Context, draftID int64) error {
	const query = `UPDATE draft_sessions
		SET current_pick=current_pick+1,
			status=CASE WHEN current_pick+1 > total_picks THEN @complete ELSE status END
		WHERE id=@id AND status=@active`

	tag, err := db.pool.Exec(ctx, query, pgx.NamedArgs{
		"id":       draftID,
		"complete": string(model.DraftComplete),
		"active":   string(model.DraftActive),
	})
	if err != nil {
		return fmt.Errorf("error advancing draft %d: %w", draftID, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrDraftNotFound
	}
	return nil
}

func (db *postgresDB) CancelDraft(ctx context.Context, draftID int64) error {
	const query = `UPDATE draft_sessions SET status=@cancelled WHERE id=@id AND status=@active`

	tag, err := db.pool.Exec(ctx, query, pgx.NamedArgs{
		"id":        draftID,
		"cancelled": string(model.DraftCancelled),
		"active":    string(model.DraftActive),
	})
	if err != nil {
		return fmt.Errorf("error cancelling draft %d: %w", draftID, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrDraftNotFound
	}
	return nil
}

func scanDraftSession(row pgx.Row) (*model.DraftSession, error) {
	var d model.DraftSession
	var phase, status string
	var order []byte
	var created pgtype.Timestamptz
	err := row.Scan(&d.ID, &d.LeagueID, &phase, &status, &d.CurrentPick,
		&d.TotalPicks, &order, &created)
	if err != nil {
		return nil, err
	}
	d.Phase = model.ParsePhase(phase)
	d.Status = model.DraftStatus(status)
	d.Created = created.Time
	if len(order) > 0 {
		if err := json.Unmarshal(order, &d.SnakeOrder); err != nil {
			return nil, fmt.Errorf("error decoding snake order for draft %d: %w", d.ID, err)
		}
	}
	return &d, nil
}
