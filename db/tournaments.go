package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/mattwold/vct-fantasy/model"
)

func (db *postgresDB) CreateTournament(ctx context.Context, name, description, format string) (*model.Tournament, error) {
	const query = `INSERT INTO tournaments (name, description, format, created)
		VALUES (@name, @description, @format, @created)
		RETURNING id, name, description, format, status, created`

	row := db.pool.QueryRow(ctx, query, pgx.NamedArgs{
		"name":        name,
		"description": description,
		"format":      format,
		"created":     db.now(),
	})
	t, err := scanTournament(row)
	if err != nil {
		return nil, fmt.Errorf("error creating tournament: %w", err)
	}
	return t, nil
}

func (db *postgresDB) GetTournament(ctx context.Context, id int64) (*model.Tournament, error) {
	const query = `SELECT id, name, description, format, status, created
		FROM tournaments WHERE id=@id`

	row := db.pool.QueryRow(ctx, query, pgx.NamedArgs{"id": id})
	t, err := scanTournament(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("error getting tournament %d: %w", id, err)
	}
	return t, nil
}

func (db *postgresDB) ListTournaments(ctx context.Context) ([]model.Tournament, error) {
	const query = `SELECT id, name, description, format, status, created
		FROM tournaments ORDER BY id DESC`

	rows, err := db.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error listing tournaments: %w", err)
	}
	defer rows.Close()

	tournaments := make([]model.Tournament, 0, 4)
	for rows.Next() {
		t, err := scanTournament(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning tournament: %w", err)
		}
		tournaments = append(tournaments, *t)
	}
	return tournaments, rows.Err()
}

func (db *postgresDB) UpdateTournamentStatus(ctx context.Context, id int64, status string) error {
	const query = `UPDATE tournaments SET status=@status WHERE id=@id`

	tag, err := db.pool.Exec(ctx, query, pgx.NamedArgs{"id": id, "status": status})
	if err != nil {
		return fmt.Errorf("error updating tournament status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrTournamentNotFound
	}
	return nil
}

// DeleteTournament removes the tournament; sources, players, matches, stats
// and leagues go with it via cascading foreign keys.
func (db *postgresDB) DeleteTournament(ctx context.Context, id int64) error {
	tag, err := db.pool.Exec(ctx, `DELETE FROM tournaments WHERE id=@id`, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("error deleting tournament %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrTournamentNotFound
	}
	return nil
}

func (db *postgresDB) AddEventSource(ctx context.Context, tournamentID int64, url, eventName, region string) (*model.EventSource, error) {
	const query = `INSERT INTO event_sources (tournament_id, url, event_name, region)
		VALUES (@tournamentID, @url, @eventName, @region)
		RETURNING id, tournament_id, url, event_name, region, last_scraped, players_found`

	row := db.pool.QueryRow(ctx, query, pgx.NamedArgs{
		"tournamentID": tournamentID,
		"url":          url,
		"eventName":    eventName,
		"region":       region,
	})
	s, err := scanEventSource(row)
	if err != nil {
		return nil, fmt.Errorf("error adding event source: %w", err)
	}
	return s, nil
}

func (db *postgresDB) GetEventSource(ctx context.Context, id int64) (*model.EventSource, error) {
	const query = `SELECT id, tournament_id, url, event_name, region, last_scraped, players_found
		FROM event_sources WHERE id=@id`

	row := db.pool.QueryRow(ctx, query, pgx.NamedArgs{"id": id})
	s, err := scanEventSource(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("error getting event source %d: %w", id, err)
	}
	return s, nil
}

func (db *postgresDB) GetEventSources(ctx context.Context, tournamentID int64) ([]model.EventSource, error) {
	const query = `SELECT id, tournament_id, url, event_name, region, last_scraped, players_found
		FROM event_sources WHERE tournament_id=@tournamentID ORDER BY id`

	rows, err := db.pool.Query(ctx, query, pgx.NamedArgs{"tournamentID": tournamentID})
	if err != nil {
		return nil, fmt.Errorf("error listing event sources: %w", err)
	}
	defer rows.Close()

	sources := make([]model.EventSource, 0, 4)
	for rows.Next() {
		s, err := scanEventSource(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning event source: %w", err)
		}
		sources = append(sources, *s)
	}
	return sources, rows.Err()
}

func (db *postgresDB) UpdateSourceScraped(ctx context.Context, sourceID int64, playersFound int) error {
	const query = `UPDATE event_sources
		SET last_scraped=@scraped, players_found=@playersFound
		WHERE id=@id`

	_, err := db.pool.Exec(ctx, query, pgx.NamedArgs{
		"id":           sourceID,
		"scraped":      db.now(),
		"playersFound": playersFound,
	})
	if err != nil {
		return fmt.Errorf("error marking source %d scraped: %w", sourceID, err)
	}
	return nil
}

func (db *postgresDB) DeleteEventSource(ctx context.Context, id int64) error {
	_, err := db.pool.Exec(ctx, `DELETE FROM event_sources WHERE id=@id`, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("error deleting event source %d: %w", id, err)
	}
	return nil
}

func (db *postgresDB) LogScrape(ctx context.Context, l *model.ScrapeLog) error {
	const query = `INSERT INTO scrape_log (tournament_id, source_id, scraped_at, players_found, status, notes)
		VALUES (@tournamentID, @sourceID, @scrapedAt, @playersFound, @status, @notes)`

	_, err := db.pool.Exec(ctx, query, pgx.NamedArgs{
		"tournamentID": l.TournamentID,
		"sourceID":     l.SourceID,
		"scrapedAt":    db.now(),
		"playersFound": l.PlayersFound,
		"status":       l.Status,
		"notes":        l.Notes,
	})
	if err != nil {
		return fmt.Errorf("error logging scrape: %w", err)
	}
	return nil
}

func (db *postgresDB) LastScrape(ctx context.Context, tournamentID int64) (*model.ScrapeLog, error) {
	const query = `SELECT id, tournament_id, source_id, scraped_at, players_found, status, notes
		FROM scrape_log WHERE tournament_id=@tournamentID
		ORDER BY id DESC LIMIT 1`

	var l model.ScrapeLog
	var sourceID pgtype.Int8
	var scraped pgtype.Timestamptz
	err := db.pool.QueryRow(ctx, query, pgx.NamedArgs{"tournamentID": tournamentID}).
		Scan(&l.ID, &l.TournamentID, &sourceID, &scraped, &l.PlayersFound, &l.Status, &l.Notes)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error getting last scrape: %w", err)
	}
	l.SourceID = sourceID.Int64
	l.ScrapedAt = scraped.Time
	return &l, nil
}

func scanTournament(row pgx.Row) (*model.Tournament, error) {
	var t model.Tournament
	var created pgtype.Timestamptz
	err := row.Scan(&t.ID, &t.Name, &t.Description, &t.Format, &t.Status, &created)
	if err != nil {
		return nil, err
	}
	t.Created = created.Time
	return &t, nil
}

func scanEventSource(row pgx.Row) (*model.EventSource, error) {
	var s model.EventSource
	var scraped pgtype.Timestamptz
	err := row.Scan(&s.ID, &s.TournamentID, &s.URL, &s.EventName, &s.Region, &scraped, &s.PlayersFound)
	if err != nil {
		return nil, err
	}
	s.LastScraped = scraped.Time
	return &s, nil
}
