package db

import (
	"context"
	"errors"

	"github.com/itbasis/go-clock"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrPlayerNotFound     = errors.New("player not found")
	ErrTournamentNotFound = errors.New("tournament not found")
	ErrLeagueNotFound     = errors.New("league not found")
	ErrTeamNotFound       = errors.New("fantasy team not found")
	ErrTradeNotFound      = errors.New("trade not found")
	ErrTradeNotPending    = errors.New("trade is not pending")
	ErrTradeNotSwappable  = errors.New("both players must be on their team's roster")
	ErrAlreadyOnRoster    = errors.New("player is already on the roster for this phase")
	ErrDraftNotFound      = errors.New("draft session not found")
)

func New(ctx context.Context, connString string, clock clock.Clock) (DB, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, err
	}

	// Test the connection
	if err := pool.Ping(ctx); err != nil {
		return nil, err
	}

	return &postgresDB{pool: pool, clock: clock}, nil
}

type postgresDB struct {
	pool  *pgxpool.Pool
	clock clock.Clock
}
