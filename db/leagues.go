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

const leagueColumns = `l.id, l.tournament_id, t.name, l.name, l.description,
	l.phase, l.ruleset, l.created`

func (db *postgresDB) CreateLeague(ctx context.Context, tournamentID int64, name, description string, rs model.Ruleset) (*model.League, error) {
	ruleset, err := json.Marshal(rs)
	if err != nil {
		return nil, fmt.Errorf("error encoding ruleset: %w", err)
	}

	const query = `INSERT INTO leagues (tournament_id, name, description, ruleset, created)
		VALUES (@tournamentID, @name, @description, @ruleset, @created)
		RETURNING id`

	var id int64
	err = db.pool.QueryRow(ctx, query, pgx.NamedArgs{
		"tournamentID": tournamentID,
		"name":         name,
		"description":  description,
		"ruleset":      ruleset,
		"created":      db.now(),
	}).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("error creating league: %w", err)
	}
	return db.GetLeague(ctx, id)
}

func (db *postgresDB) GetLeague(ctx context.Context, id int64) (*model.League, error) {
	query := fmt.Sprintf(`SELECT %s FROM leagues l
		JOIN tournaments t ON t.id=l.tournament_id
		WHERE l.id=@id`, leagueColumns)

	row := db.pool.QueryRow(ctx, query, pgx.NamedArgs{"id": id})
	l, err := scanLeague(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrLeagueNotFound
		}
		return nil, fmt.Errorf("error getting league %d: %w", id, err)
	}
	return l, nil
}

func (db *postgresDB) ListLeagues(ctx context.Context) ([]model.League, error) {
	query := fmt.Sprintf(`SELECT %s FROM leagues l
		JOIN tournaments t ON t.id=l.tournament_id
		ORDER BY l.id DESC`, leagueColumns)
	return db.queryLeagues(ctx, query, pgx.NamedArgs{})
}

func (db *postgresDB) LeaguesForTournament(ctx context.Context, tournamentID int64) ([]model.League, error) {
	query := fmt.Sprintf(`SELECT %s FROM leagues l
		JOIN tournaments t ON t.id=l.tournament_id
		WHERE l.tournament_id=@tournamentID
		ORDER BY l.id DESC`, leagueColumns)
	return db.queryLeagues(ctx, query, pgx.NamedArgs{"tournamentID": tournamentID})
}

func (db *postgresDB) queryLeagues(ctx context.Context, query string, args pgx.NamedArgs) ([]model.League, error) {
	rows, err := db.pool.Query(ctx, query, args)
	if err != nil {
		return nil, fmt.Errorf("error listing leagues: %w", err)
	}
	defer rows.Close()

	leagues := make([]model.League, 0, 4)
	for rows.Next() {
		l, err := scanLeague(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning league: %w", err)
		}
		leagues = append(leagues, *l)
	}
	return leagues, rows.Err()
}

func (db *postgresDB) UpdateLeaguePhase(ctx context.Context, id int64, phase model.Phase) error {
	const query = `UPDATE leagues SET phase=@phase WHERE id=@id`

	tag, err := db.pool.Exec(ctx, query, pgx.NamedArgs{"id": id, "phase": string(phase)})
	if err != nil {
		return fmt.Errorf("error updating league phase: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrLeagueNotFound
	}
	return nil
}

func (db *postgresDB) SaveRuleset(ctx context.Context, leagueID int64, rs model.Ruleset) error {
	ruleset, err := json.Marshal(rs)
	if err != nil {
		return fmt.Errorf("error encoding ruleset: %w", err)
	}

	tag, err := db.pool.Exec(ctx, `UPDATE leagues SET ruleset=@ruleset WHERE id=@id`,
		pgx.NamedArgs{"id": leagueID, "ruleset": ruleset})
	if err != nil {
		return fmt.Errorf("error saving ruleset: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrLeagueNotFound
	}
	return nil
}

func (db *postgresDB) DeleteLeague(ctx context.Context, id int64) error {
	tag, err := db.pool.Exec(ctx, `DELETE FROM leagues WHERE id=@id`, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("error deleting league %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrLeagueNotFound
	}
	return nil
}

func (db *postgresDB) CreateFantasyTeam(ctx context.Context, leagueID int64, teamName, managerName string) (*model.FantasyTeam, error) {
	const query = `INSERT INTO fantasy_teams (league_id, team_name, manager_name, created)
		VALUES (@leagueID, @teamName, @managerName, @created)
		RETURNING id, league_id, team_name, manager_name, created`

	row := db.pool.QueryRow(ctx, query, pgx.NamedArgs{
		"leagueID":    leagueID,
		"teamName":    teamName,
		"managerName": managerName,
		"created":     db.now(),
	})
	t, err := scanFantasyTeam(row)
	if err != nil {
		return nil, fmt.Errorf("error creating fantasy team: %w", err)
	}
	return t, nil
}

func (db *postgresDB) GetFantasyTeam(ctx context.Context, id int64) (*model.FantasyTeam, error) {
	const query = `SELECT id, league_id, team_name, manager_name, created
		FROM fantasy_teams WHERE id=@id`

	row := db.pool.QueryRow(ctx, query, pgx.NamedArgs{"id": id})
	t, err := scanFantasyTeam(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("error getting fantasy team %d: %w", id, err)
	}
	return t, nil
}

func (db *postgresDB) TeamsInLeague(ctx context.Context, leagueID int64) ([]model.FantasyTeam, error) {
	const query = `SELECT id, league_id, team_name, manager_name, created
		FROM fantasy_teams WHERE league_id=@leagueID ORDER BY id`

	rows, err := db.pool.Query(ctx, query, pgx.NamedArgs{"leagueID": leagueID})
	if err != nil {
		return nil, fmt.Errorf("error listing fantasy teams: %w", err)
	}
	defer rows.Close()

	teams := make([]model.FantasyTeam, 0, 8)
	for rows.Next() {
		t, err := scanFantasyTeam(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning fantasy team: %w", err)
		}
		teams = append(teams, *t)
	}
	return teams, rows.Err()
}

func (db *postgresDB) RenameFantasyTeam(ctx context.Context, id int64, teamName, managerName string) error {
	const query = `UPDATE fantasy_teams SET team_name=@teamName, manager_name=@managerName
		WHERE id=@id`

	tag, err := db.pool.Exec(ctx, query, pgx.NamedArgs{
		"id":          id,
		"teamName":    teamName,
		"managerName": managerName,
	})
	if err != nil {
		return fmt.Errorf("error renaming fantasy team %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrTeamNotFound
	}
	return nil
}

func (db *postgresDB) DeleteFantasyTeam(ctx context.Context, id int64) error {
	tag, err := db.pool.Exec(ctx, `DELETE FROM fantasy_teams WHERE id=@id`, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("error deleting fantasy team %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrTeamNotFound
	}
	return nil
}

func scanLeague(row pgx.Row) (*model.League, error) {
	var l model.League
	var phase string
	var ruleset []byte
	var created pgtype.Timestamptz
	err := row.Scan(&l.ID, &l.TournamentID, &l.TournamentName, &l.Name,
		&l.Description, &phase, &ruleset, &created)
	if err != nil {
		return nil, err
	}
	l.Phase = model.ParsePhase(phase)
	l.Created = created.Time
	if len(ruleset) > 0 {
		if err := json.Unmarshal(ruleset, &l.Ruleset); err != nil {
			return nil, fmt.Errorf("error decoding ruleset for league %d: %w", l.ID, err)
		}
	}
	return &l, nil
}

func scanFantasyTeam(row pgx.Row) (*model.FantasyTeam, error) {
	var t model.FantasyTeam
	var created pgtype.Timestamptz
	err := row.Scan(&t.ID, &t.LeagueID, &t.TeamName, &t.ManagerName, &created)
	if err != nil {
		return nil, err
	}
	t.Created = created.Time
	return &t, nil
}
