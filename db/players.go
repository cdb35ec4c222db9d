package db

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/mattwold/vct-fantasy/model"
)

const playerColumns = `player_id, tournament_id, ign, real_name, team, team_abbr,
	country, region, role, agent, rounds_played, matches_played, has_incomplete,
	rating, acs, kills, deaths, assists, kd_ratio, kast, adr, headshot_pct,
	first_kills, first_deaths, fk_fd_ratio, base_points, role_points,
	fantasy_points, manual_pts, profile_url, updated`

// prefixedPlayerColumns qualifies the leaderboard column list with a table
// alias for joins.
func prefixedPlayerColumns(alias string) string {
	cols := strings.Split(playerColumns, ",")
	for i, c := range cols {
		cols[i] = alias + "." + strings.TrimSpace(c)
	}
	return strings.Join(cols, ", ")
}

// UpsertPlayer writes an aggregated leaderboard row. On conflict every stat
// column is replaced, but role and manual_pts are left alone: role is an
// admin assignment and manual_pts is an adjustment ledger sum, neither comes
// from aggregation.
func (db *postgresDB) UpsertPlayer(ctx context.Context, p *model.Player) error {
	const query = `INSERT INTO players (
			player_id, tournament_id, ign, real_name, team, team_abbr, country,
			region, role, agent, rounds_played, matches_played, has_incomplete,
			rating, acs, kills, deaths, assists, kd_ratio, kast, adr,
			headshot_pct, first_kills, first_deaths, fk_fd_ratio,
			base_points, role_points, fantasy_points, profile_url, updated
		) VALUES (
			@playerID, @tournamentID, @ign, @realName, @team, @teamAbbr, @country,
			@region, @role, @agent, @roundsPlayed, @matchesPlayed, @hasIncomplete,
			@rating, @acs, @kills, @deaths, @assists, @kdRatio, @kast, @adr,
			@headshotPct, @firstKills, @firstDeaths, @fkFdRatio,
			@basePoints, @rolePoints, @fantasyPoints, @profileURL, @updated
		)
		ON CONFLICT (player_id, tournament_id) DO UPDATE SET
			ign=excluded.ign, real_name=excluded.real_name,
			team=excluded.team, team_abbr=excluded.team_abbr,
			country=excluded.country, region=excluded.region, agent=excluded.agent,
			rounds_played=excluded.rounds_played,
			matches_played=excluded.matches_played,
			has_incomplete=excluded.has_incomplete,
			rating=excluded.rating, acs=excluded.acs,
			kills=excluded.kills, deaths=excluded.deaths, assists=excluded.assists,
			kd_ratio=excluded.kd_ratio, kast=excluded.kast, adr=excluded.adr,
			headshot_pct=excluded.headshot_pct,
			first_kills=excluded.first_kills, first_deaths=excluded.first_deaths,
			fk_fd_ratio=excluded.fk_fd_ratio,
			base_points=excluded.base_points, role_points=excluded.role_points,
			fantasy_points=excluded.fantasy_points,
			profile_url=excluded.profile_url, updated=excluded.updated`

	_, err := db.pool.Exec(ctx, query, db.namedArgsForPlayer(p))
	if err != nil {
		return fmt.Errorf("error upserting player (%s): %w", p.PlayerID, err)
	}
	return nil
}

// SavePlayerStub inserts a zero-stat row only when the player is not in the
// leaderboard yet. Existing rows, with real stats or not, are untouched.
func (db *postgresDB) SavePlayerStub(ctx context.Context, p *model.Player) error {
	const query = `INSERT INTO players (
			player_id, tournament_id, ign, real_name, team, team_abbr, country,
			region, role, agent, rounds_played, matches_played, has_incomplete,
			rating, acs, kills, deaths, assists, kd_ratio, kast, adr,
			headshot_pct, first_kills, first_deaths, fk_fd_ratio,
			base_points, role_points, fantasy_points, profile_url, updated
		) VALUES (
			@playerID, @tournamentID, @ign, @realName, @team, @teamAbbr, @country,
			@region, @role, @agent, @roundsPlayed, @matchesPlayed, @hasIncomplete,
			@rating, @acs, @kills, @deaths, @assists, @kdRatio, @kast, @adr,
			@headshotPct, @firstKills, @firstDeaths, @fkFdRatio,
			@basePoints, @rolePoints, @fantasyPoints, @profileURL, @updated
		)
		ON CONFLICT (player_id, tournament_id) DO NOTHING`

	_, err := db.pool.Exec(ctx, query, db.namedArgsForPlayer(p))
	if err != nil {
		return fmt.Errorf("error saving player stub (%s): %w", p.PlayerID, err)
	}
	return nil
}

func (db *postgresDB) GetPlayer(ctx context.Context, playerID string, tournamentID int64) (*model.Player, error) {
	query := fmt.Sprintf(`SELECT %s FROM players WHERE player_id=@playerID AND tournament_id=@tournamentID`, playerColumns)

	args := pgx.NamedArgs{
		"playerID":     playerID,
		"tournamentID": tournamentID,
	}
	row := db.pool.QueryRow(ctx, query, args)
	p, err := scanPlayer(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("error scanning player %s: %w", playerID, err)
	}
	return p, nil
}

// Sortable leaderboard columns. Anything else falls back to fantasy_points.
var playerSortColumns = map[string]bool{
	"rating": true, "acs": true, "kills": true, "deaths": true,
	"kd_ratio": true, "kast": true, "adr": true, "headshot_pct": true,
	"first_kills": true, "first_deaths": true, "rounds_played": true,
	"matches_played": true, "assists": true, "ign": true, "team": true,
	"fantasy_points": true, "base_points": true, "role_points": true,
	"role": true, "region": true, "team_abbr": true,
}

func (db *postgresDB) ListPlayers(ctx context.Context, tournamentID int64, opts ListPlayersOptions) ([]model.Player, error) {
	query, args := buildListPlayersQuery("tournament_id=@tournamentID", opts)
	args["tournamentID"] = tournamentID
	return db.queryPlayers(ctx, query, args)
}

func (db *postgresDB) ListAllPlayers(ctx context.Context, opts ListPlayersOptions) ([]model.Player, error) {
	query, args := buildListPlayersQuery("TRUE", opts)
	return db.queryPlayers(ctx, query, args)
}

func buildListPlayersQuery(where string, opts ListPlayersOptions) (string, pgx.NamedArgs) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "SELECT %s FROM players WHERE %s", playerColumns, where)
	args := pgx.NamedArgs{}

	if opts.Search != "" {
		sb.WriteString(" AND (ign ILIKE @search OR team ILIKE @search OR team_abbr ILIKE @search)")
		args["search"] = "%" + opts.Search + "%"
	}
	if opts.RoleFilter != "" {
		sb.WriteString(" AND role=@role")
		args["role"] = string(opts.RoleFilter)
	}

	// Column names never come from user input unvalidated.
	sortBy := opts.SortBy
	if !playerSortColumns[sortBy] {
		sortBy = "fantasy_points"
	}
	direction := "DESC"
	if opts.Ascending {
		direction = "ASC"
	}
	fmt.Fprintf(&sb, " ORDER BY %s %s, player_id", sortBy, direction)

	return sb.String(), args
}

func (db *postgresDB) queryPlayers(ctx context.Context, query string, args pgx.NamedArgs) ([]model.Player, error) {
	rows, err := db.pool.Query(ctx, query, args)
	if err != nil {
		return nil, fmt.Errorf("error listing players: %w", err)
	}
	defer rows.Close()

	results := make([]model.Player, 0, 16)
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, *p)
	}
	return results, rows.Err()
}

func (db *postgresDB) UpdatePlayerRole(ctx context.Context, playerID string, tournamentID int64, role model.Role) error {
	const query = `UPDATE players SET role=@role, updated=@updated
		WHERE player_id=@playerID AND tournament_id=@tournamentID`

	tag, err := db.pool.Exec(ctx, query, pgx.NamedArgs{
		"role":         string(role),
		"playerID":     playerID,
		"tournamentID": tournamentID,
		"updated":      db.now(),
	})
	if err != nil {
		return fmt.Errorf("error updating role for %s: %w", playerID, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrPlayerNotFound
	}
	return nil
}

func (db *postgresDB) UpdatePlayerRegion(ctx context.Context, playerID string, tournamentID int64, region string) error {
	const query = `UPDATE players SET region=@region, updated=@updated
		WHERE player_id=@playerID AND tournament_id=@tournamentID`

	tag, err := db.pool.Exec(ctx, query, pgx.NamedArgs{
		"region":       region,
		"playerID":     playerID,
		"tournamentID": tournamentID,
		"updated":      db.now(),
	})
	if err != nil {
		return fmt.Errorf("error updating region for %s: %w", playerID, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrPlayerNotFound
	}
	return nil
}

func (db *postgresDB) UpdatePlayerPoints(ctx context.Context, playerID string, tournamentID int64, base, role, fantasy float64) error {
	const query = `UPDATE players
		SET base_points=@base, role_points=@role, fantasy_points=@fantasy, updated=@updated
		WHERE player_id=@playerID AND tournament_id=@tournamentID`

	tag, err := db.pool.Exec(ctx, query, pgx.NamedArgs{
		"base":         base,
		"role":         role,
		"fantasy":      fantasy,
		"playerID":     playerID,
		"tournamentID": tournamentID,
		"updated":      db.now(),
	})
	if err != nil {
		return fmt.Errorf("error updating points for %s: %w", playerID, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrPlayerNotFound
	}
	return nil
}

// AdjustPlayerPoints applies a manual delta and records it in the adjustment
// ledger in one transaction, so the sum of ledger deltas always equals
// manual_pts.
func (db *postgresDB) AdjustPlayerPoints(ctx context.Context, playerID string, tournamentID int64, delta float64, reason string) error {
	const update = `UPDATE players SET manual_pts=manual_pts+@delta, updated=@updated
		WHERE player_id=@playerID AND tournament_id=@tournamentID`
	const insert = `INSERT INTO player_adjustments (player_id, tournament_id, delta, reason, created)
		VALUES (@playerID, @tournamentID, @delta, @reason, @created)`

	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, update, pgx.NamedArgs{
		"delta":        delta,
		"playerID":     playerID,
		"tournamentID": tournamentID,
		"updated":      db.now(),
	})
	if err != nil {
		return fmt.Errorf("error adjusting player points: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrPlayerNotFound
	}

	_, err = tx.Exec(ctx, insert, pgx.NamedArgs{
		"playerID":     playerID,
		"tournamentID": tournamentID,
		"delta":        delta,
		"reason":       reason,
		"created":      db.now(),
	})
	if err != nil {
		return fmt.Errorf("error recording player adjustment: %w", err)
	}

	return tx.Commit(ctx)
}

func (db *postgresDB) GetPlayerAdjustments(ctx context.Context, playerID string, tournamentID int64) ([]model.PlayerAdjustment, error) {
	const query = `SELECT id, player_id, tournament_id, delta, reason, created
		FROM player_adjustments
		WHERE player_id=@playerID AND tournament_id=@tournamentID
		ORDER BY id DESC`

	rows, err := db.pool.Query(ctx, query, pgx.NamedArgs{
		"playerID":     playerID,
		"tournamentID": tournamentID,
	})
	if err != nil {
		return nil, fmt.Errorf("error listing player adjustments: %w", err)
	}
	defer rows.Close()

	adjs := make([]model.PlayerAdjustment, 0, 4)
	for rows.Next() {
		var a model.PlayerAdjustment
		var created pgtype.Timestamptz
		if err := rows.Scan(&a.ID, &a.PlayerID, &a.TournamentID, &a.Delta, &a.Reason, &created); err != nil {
			return nil, fmt.Errorf("error scanning player adjustment: %w", err)
		}
		a.Created = created.Time
		adjs = append(adjs, a)
	}
	return adjs, rows.Err()
}

// DeletePlayerAdjustment removes a ledger entry and reverses its delta from
// the player's manual_pts.
func (db *postgresDB) DeletePlayerAdjustment(ctx context.Context, adjID int64) error {
	const del = `DELETE FROM player_adjustments WHERE id=@id
		RETURNING player_id, tournament_id, delta`
	const reverse = `UPDATE players SET manual_pts=manual_pts-@delta, updated=@updated
		WHERE player_id=@playerID AND tournament_id=@tournamentID`

	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var playerID string
	var tournamentID int64
	var delta float64
	err = tx.QueryRow(ctx, del, pgx.NamedArgs{"id": adjID}).Scan(&playerID, &tournamentID, &delta)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		return fmt.Errorf("error deleting player adjustment: %w", err)
	}

	_, err = tx.Exec(ctx, reverse, pgx.NamedArgs{
		"delta":        delta,
		"playerID":     playerID,
		"tournamentID": tournamentID,
		"updated":      db.now(),
	})
	if err != nil {
		return fmt.Errorf("error reversing player adjustment: %w", err)
	}

	return tx.Commit(ctx)
}

func scanPlayer(row pgx.Row) (*model.Player, error) {
	var p model.Player
	var role string
	var updated pgtype.Timestamptz
	err := row.Scan(
		&p.PlayerID,
		&p.TournamentID,
		&p.IGN,
		&p.RealName,
		&p.Team,
		&p.TeamAbbr,
		&p.Country,
		&p.Region,
		&role,
		&p.Agent,
		&p.RoundsPlayed,
		&p.MatchesPlayed,
		&p.HasIncomplete,
		&p.Rating,
		&p.ACS,
		&p.Kills,
		&p.Deaths,
		&p.Assists,
		&p.KDRatio,
		&p.KAST,
		&p.ADR,
		&p.HeadshotPct,
		&p.FirstKills,
		&p.FirstDeaths,
		&p.FKFDRatio,
		&p.BasePoints,
		&p.RolePoints,
		&p.FantasyPoints,
		&p.ManualPts,
		&p.ProfileURL,
		&updated)
	if err != nil {
		return nil, err
	}

	p.Role = model.Role(role)
	p.Updated = updated.Time
	return &p, nil
}

func (db *postgresDB) namedArgsForPlayer(p *model.Player) pgx.NamedArgs {
	return pgx.NamedArgs{
		"playerID":      p.PlayerID,
		"tournamentID":  p.TournamentID,
		"ign":           p.IGN,
		"realName":      p.RealName,
		"team":          p.Team,
		"teamAbbr":      p.TeamAbbr,
		"country":       p.Country,
		"region":        p.Region,
		"role":          string(p.Role),
		"agent":         p.Agent,
		"roundsPlayed":  p.RoundsPlayed,
		"matchesPlayed": p.MatchesPlayed,
		"hasIncomplete": p.HasIncomplete,
		"rating":        p.Rating,
		"acs":           p.ACS,
		"kills":         p.Kills,
		"deaths":        p.Deaths,
		"assists":       p.Assists,
		"kdRatio":       p.KDRatio,
		"kast":          p.KAST,
		"adr":           p.ADR,
		"headshotPct":   p.HeadshotPct,
		"firstKills":    p.FirstKills,
		"firstDeaths":   p.FirstDeaths,
		"fkFdRatio":     p.FKFDRatio,
		"basePoints":    p.BasePoints,
		"rolePoints":    p.RolePoints,
		"fantasyPoints": p.FantasyPoints,
		"profileURL":    p.ProfileURL,
		"updated":       db.now(),
	}
}

func (db *postgresDB) now() pgtype.Timestamptz {
	return pgtype.Timestamptz{
		Time:             db.clock.Now().UTC(),
		InfinityModifier: pgtype.Finite,
		Valid:            true,
	}
}
