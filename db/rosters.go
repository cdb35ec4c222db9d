package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/mattwold/vct-fantasy/model"
)

// GetRoster returns a team's entries for one phase joined with their
// leaderboard rows, ordered by role slot for stable display.
func (db *postgresDB) GetRoster(ctx context.Context, fantasyTeamID int64, phase model.Phase) ([]model.RosterPlayer, error) {
	query := fmt.Sprintf(`SELECT r.id, r.fantasy_team_id, r.player_id,
			r.tournament_id, r.role_slot, r.is_star, r.is_duplicate, r.phase,
			r.added, %s
		FROM fantasy_roster r
		JOIN players p
			ON p.player_id=r.player_id AND p.tournament_id=r.tournament_id
		WHERE r.fantasy_team_id=@teamID AND r.phase=@phase
		ORDER BY r.role_slot, p.ign`, prefixedPlayerColumns("p"))

	rows, err := db.pool.Query(ctx, query, pgx.NamedArgs{
		"teamID": fantasyTeamID,
		"phase":  string(phase),
	})
	if err != nil {
		return nil, fmt.Errorf("error getting roster for team %d: %w", fantasyTeamID, err)
	}
	defer rows.Close()

	roster := make([]model.RosterPlayer, 0, 10)
	for rows.Next() {
		var rp model.RosterPlayer
		var roleSlot, entryPhase, playerRole string
		var added, updated pgtype.Timestamptz
		err := rows.Scan(
			&rp.RosterEntry.ID, &rp.FantasyTeamID, &rp.RosterEntry.PlayerID,
			&rp.RosterEntry.TournamentID, &roleSlot, &rp.Star, &rp.Duplicate,
			&entryPhase, &added,
			&rp.Player.PlayerID, &rp.Player.TournamentID, &rp.IGN, &rp.RealName,
			&rp.Team, &rp.TeamAbbr, &rp.Country, &rp.Region, &playerRole,
			&rp.Agent, &rp.RoundsPlayed, &rp.MatchesPlayed, &rp.HasIncomplete,
			&rp.Rating, &rp.ACS, &rp.Kills, &rp.Deaths, &rp.Assists,
			&rp.KDRatio, &rp.KAST, &rp.ADR, &rp.HeadshotPct,
			&rp.FirstKills, &rp.FirstDeaths, &rp.FKFDRatio,
			&rp.BasePoints, &rp.RolePoints, &rp.FantasyPoints, &rp.ManualPts,
			&rp.ProfileURL, &updated)
		if err != nil {
			return nil, fmt.Errorf("error scanning roster entry: %w", err)
		}
		rp.RoleSlot = model.Role(roleSlot)
		rp.RosterEntry.Phase = model.ParsePhase(entryPhase)
		rp.Player.Role = model.Role(playerRole)
		rp.Added = added.Time
		rp.Updated = updated.Time
		roster = append(roster, rp)
	}
	return roster, rows.Err()
}

func (db *postgresDB) AddToRoster(ctx context.Context, e *model.RosterEntry) error {
	const query = `INSERT INTO fantasy_roster (
			fantasy_team_id, player_id, tournament_id, role_slot, is_star,
			is_duplicate, phase, added
		) VALUES (
			@teamID, @playerID, @tournamentID, @roleSlot, @star, @duplicate,
			@phase, @added
		)
		RETURNING id`

	err := db.pool.QueryRow(ctx, query, pgx.NamedArgs{
		"teamID":       e.FantasyTeamID,
		"playerID":     e.PlayerID,
		"tournamentID": e.TournamentID,
		"roleSlot":     string(e.RoleSlot),
		"star":         e.Star,
		"duplicate":    e.Duplicate,
		"phase":        string(e.Phase),
		"added":        db.now(),
	}).Scan(&e.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrAlreadyOnRoster
		}
		return fmt.Errorf("error adding %s to roster: %w", e.PlayerID, err)
	}
	return nil
}

func (db *postgresDB) RemoveFromRoster(ctx context.Context, fantasyTeamID int64, playerID string, phase model.Phase) error {
	const query = `DELETE FROM fantasy_roster
		WHERE fantasy_team_id=@teamID AND player_id=@playerID AND phase=@phase`

	tag, err := db.pool.Exec(ctx, query, pgx.NamedArgs{
		"teamID":   fantasyTeamID,
		"playerID": playerID,
		"phase":    string(phase),
	})
	if err != nil {
		return fmt.Errorf("error removing %s from roster: %w", playerID, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrPlayerNotFound
	}
	return nil
}

// SetStarPlayer clears any existing star for the phase and stars the given
// player in one transaction, so a team never holds two stars.
func (db *postgresDB) SetStarPlayer(ctx context.Context, fantasyTeamID int64, playerID string, phase model.Phase) error {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	args := pgx.NamedArgs{
		"teamID":   fantasyTeamID,
		"playerID": playerID,
		"phase":    string(phase),
	}
	_, err = tx.Exec(ctx, `UPDATE fantasy_roster SET is_star=FALSE
		WHERE fantasy_team_id=@teamID AND phase=@phase`, args)
	if err != nil {
		return fmt.Errorf("error clearing star: %w", err)
	}

	tag, err := tx.Exec(ctx, `UPDATE fantasy_roster SET is_star=TRUE
		WHERE fantasy_team_id=@teamID AND player_id=@playerID AND phase=@phase`, args)
	if err != nil {
		return fmt.Errorf("error setting star: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrPlayerNotFound
	}

	return tx.Commit(ctx)
}

func (db *postgresDB) ClearStarPlayer(ctx context.Context, fantasyTeamID int64, phase model.Phase) error {
	const query = `UPDATE fantasy_roster SET is_star=FALSE
		WHERE fantasy_team_id=@teamID AND phase=@phase`

	_, err := db.pool.Exec(ctx, query, pgx.NamedArgs{
		"teamID": fantasyTeamID,
		"phase":  string(phase),
	})
	if err != nil {
		return fmt.Errorf("error clearing star: %w", err)
	}
	return nil
}

// PlayerRosterAssignments lists every roster entry holding a player across
// all teams and phases, for duplicate-pick checks.
func (db *postgresDB) PlayerRosterAssignments(ctx context.Context, playerID string, tournamentID int64) ([]model.RosterEntry, error) {
	const query = `SELECT id, fantasy_team_id, player_id, tournament_id,
			role_slot, is_star, is_duplicate, phase, added
		FROM fantasy_roster
		WHERE player_id=@playerID AND tournament_id=@tournamentID
		ORDER BY id`

	rows, err := db.pool.Query(ctx, query, pgx.NamedArgs{
		"playerID":     playerID,
		"tournamentID": tournamentID,
	})
	if err != nil {
		return nil, fmt.Errorf("error listing roster assignments: %w", err)
	}
	defer rows.Close()

	entries := make([]model.RosterEntry, 0, 4)
	for rows.Next() {
		e, err := scanRosterEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

// TransitionToPlayoffs drops swiss entries the teams are not keeping, copies
// the kept entries into playoffs-phase rows (stars reset) and flips the
// league phase, all in one transaction.
func (db *postgresDB) TransitionToPlayoffs(ctx context.Context, leagueID int64, kept []model.RosterEntry) error {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	keptIDs := make([]int64, 0, len(kept))
	for _, e := range kept {
		keptIDs = append(keptIDs, e.ID)
	}

	_, err = tx.Exec(ctx, `DELETE FROM fantasy_roster
		WHERE phase='swiss'
		AND fantasy_team_id IN (SELECT id FROM fantasy_teams WHERE league_id=@leagueID)
		AND NOT (id = ANY(@keptIDs))`, pgx.NamedArgs{
		"leagueID": leagueID,
		"keptIDs":  keptIDs,
	})
	if err != nil {
		return fmt.Errorf("error pruning swiss roster: %w", err)
	}

	const insert = `INSERT INTO fantasy_roster (
			fantasy_team_id, player_id, tournament_id, role_slot, is_star,
			is_duplicate, phase, added
		) VALUES (@teamID, @playerID, @tournamentID, @roleSlot, FALSE, FALSE, 'playoffs', @added)
		ON CONFLICT (fantasy_team_id, player_id, phase) DO NOTHING`
	for _, e := range kept {
		_, err = tx.Exec(ctx, insert, pgx.NamedArgs{
			"teamID":       e.FantasyTeamID,
			"playerID":     e.PlayerID,
			"tournamentID": e.TournamentID,
			"roleSlot":     string(e.RoleSlot),
			"added":        db.now(),
		})
		if err != nil {
			return fmt.Errorf("error carrying %s into playoffs: %w", e.PlayerID, err)
		}
	}

	tag, err := tx.Exec(ctx, `UPDATE leagues SET phase='playoffs' WHERE id=@leagueID`,
		pgx.NamedArgs{"leagueID": leagueID})
	if err != nil {
		return fmt.Errorf("error updating league phase: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrLeagueNotFound
	}

	return tx.Commit(ctx)
}

func (db *postgresDB) SetFollowedTeam(ctx context.Context, fantasyTeamID int64, teamName, teamRegion string) error {
	const query = `INSERT INTO followed_teams (fantasy_team_id, team_name, team_region)
		VALUES (@teamID, @teamName, @teamRegion)
		ON CONFLICT (fantasy_team_id) DO UPDATE SET
			team_name=excluded.team_name, team_region=excluded.team_region`

	_, err := db.pool.Exec(ctx, query, pgx.NamedArgs{
		"teamID":     fantasyTeamID,
		"teamName":   teamName,
		"teamRegion": teamRegion,
	})
	if err != nil {
		return fmt.Errorf("error setting followed team: %w", err)
	}
	return nil
}

func (db *postgresDB) GetFollowedTeam(ctx context.Context, fantasyTeamID int64) (*model.FollowedTeam, error) {
	const query = `SELECT fantasy_team_id, team_name, team_region
		FROM followed_teams WHERE fantasy_team_id=@teamID`

	var ft model.FollowedTeam
	err := db.pool.QueryRow(ctx, query, pgx.NamedArgs{"teamID": fantasyTeamID}).
		Scan(&ft.FantasyTeamID, &ft.TeamName, &ft.TeamRegion)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error getting followed team: %w", err)
	}
	return &ft, nil
}

func (db *postgresDB) RemoveFollowedTeam(ctx context.Context, fantasyTeamID int64) error {
	_, err := db.pool.Exec(ctx, `DELETE FROM followed_teams WHERE fantasy_team_id=@teamID`,
		pgx.NamedArgs{"teamID": fantasyTeamID})
	if err != nil {
		return fmt.Errorf("error removing followed team: %w", err)
	}
	return nil
}

func (db *postgresDB) AddMatchResult(ctx context.Context, r *model.TeamMatchResult) error {
	const query = `INSERT INTO match_results (tournament_id, team_name, opponent, result, format, created)
		VALUES (@tournamentID, @teamName, @opponent, @result, @format, @created)
		RETURNING id`

	err := db.pool.QueryRow(ctx, query, pgx.NamedArgs{
		"tournamentID": r.TournamentID,
		"teamName":     r.TeamName,
		"opponent":     r.Opponent,
		"result":       r.Result,
		"format":       string(r.Format),
		"created":      db.now(),
	}).Scan(&r.ID)
	if err != nil {
		return fmt.Errorf("error adding match result: %w", err)
	}
	return nil
}

func (db *postgresDB) GetMatchResults(ctx context.Context, tournamentID int64, teamName string) ([]model.TeamMatchResult, error) {
	const query = `SELECT id, tournament_id, team_name, opponent, result, format, created
		FROM match_results
		WHERE tournament_id=@tournamentID AND team_name=@teamName
		ORDER BY id`

	rows, err := db.pool.Query(ctx, query, pgx.NamedArgs{
		"tournamentID": tournamentID,
		"teamName":     teamName,
	})
	if err != nil {
		return nil, fmt.Errorf("error listing match results: %w", err)
	}
	defer rows.Close()

	results := make([]model.TeamMatchResult, 0, 8)
	for rows.Next() {
		var r model.TeamMatchResult
		var format string
		var created pgtype.Timestamptz
		err := rows.Scan(&r.ID, &r.TournamentID, &r.TeamName, &r.Opponent,
			&r.Result, &format, &created)
		if err != nil {
			return nil, fmt.Errorf("error scanning match result: %w", err)
		}
		r.Format = model.MatchFormat(format)
		r.Created = created.Time
		results = append(results, r)
	}
	return results, rows.Err()
}

func (db *postgresDB) DeleteMatchResult(ctx context.Context, id int64) error {
	_, err := db.pool.Exec(ctx, `DELETE FROM match_results WHERE id=@id`, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("error deleting match result %d: %w", id, err)
	}
	return nil
}

func (db *postgresDB) AddPointAdjustment(ctx context.Context, fantasyTeamID int64, amount float64, reason string) error {
	const query = `INSERT INTO point_adjustments (fantasy_team_id, amount, reason, created)
		VALUES (@teamID, @amount, @reason, @created)`

	_, err := db.pool.Exec(ctx, query, pgx.NamedArgs{
		"teamID":  fantasyTeamID,
		"amount":  amount,
		"reason":  reason,
		"created": db.now(),
	})
	if err != nil {
		return fmt.Errorf("error adding point adjustment: %w", err)
	}
	return nil
}

func (db *postgresDB) GetAdjustments(ctx context.Context, fantasyTeamID int64) ([]model.PointAdjustment, error) {
	const query = `SELECT id, fantasy_team_id, amount, reason, created
		FROM point_adjustments WHERE fantasy_team_id=@teamID
		ORDER BY id DESC`

	rows, err := db.pool.Query(ctx, query, pgx.NamedArgs{"teamID": fantasyTeamID})
	if err != nil {
		return nil, fmt.Errorf("error listing point adjustments: %w", err)
	}
	defer rows.Close()

	adjs := make([]model.PointAdjustment, 0, 4)
	for rows.Next() {
		var a model.PointAdjustment
		var created pgtype.Timestamptz
		if err := rows.Scan(&a.ID, &a.FantasyTeamID, &a.Amount, &a.Reason, &created); err != nil {
			return nil, fmt.Errorf("error scanning point adjustment: %w", err)
		}
		a.Created = created.Time
		adjs = append(adjs, a)
	}
	return adjs, rows.Err()
}

func (db *postgresDB) DeleteAdjustment(ctx context.Context, id int64) error {
	_, err := db.pool.Exec(ctx, `DELETE FROM point_adjustments WHERE id=@id`, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("error deleting point adjustment %d: %w", id, err)
	}
	return nil
}

func (db *postgresDB) TotalAdjustments(ctx context.Context, fantasyTeamID int64) (float64, error) {
	const query = `SELECT COALESCE(SUM(amount), 0) FROM point_adjustments
		WHERE fantasy_team_id=@teamID`

	var total float64
	err := db.pool.QueryRow(ctx, query, pgx.NamedArgs{"teamID": fantasyTeamID}).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("error summing point adjustments: %w", err)
	}
	return total, nil
}

func scanRosterEntry(row pgx.Row) (*model.RosterEntry, error) {
	var e model.RosterEntry
	var roleSlot, phase string
	var added pgtype.Timestamptz
	err := row.Scan(&e.ID, &e.FantasyTeamID, &e.PlayerID, &e.TournamentID,
		&roleSlot, &e.Star, &e.Duplicate, &phase, &added)
	if err != nil {
		return nil, err
	}
	e.RoleSlot = model.Role(roleSlot)
	e.Phase = model.ParsePhase(phase)
	e.Added = added.Time
	return &e, nil
}
