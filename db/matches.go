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

func (db *postgresDB) UpsertMatch(ctx context.Context, m *model.Match) error {
	const query = `INSERT INTO matches (
			match_id, tournament_id, source_id, url, team_a, team_b,
			score_a, score_b, map_count, match_format, status, scheduled_at, scraped_at
		) VALUES (
			@matchID, @tournamentID, @sourceID, @url, @teamA, @teamB,
			@scoreA, @scoreB, @mapCount, @format, @status, @scheduledAt, @scrapedAt
		)
		ON CONFLICT (match_id, tournament_id) DO UPDATE SET
			source_id=excluded.source_id, url=excluded.url,
			team_a=excluded.team_a, team_b=excluded.team_b,
			score_a=excluded.score_a, score_b=excluded.score_b,
			map_count=excluded.map_count, match_format=excluded.match_format,
			status=excluded.status, scheduled_at=excluded.scheduled_at,
			scraped_at=excluded.scraped_at`

	_, err := db.pool.Exec(ctx, query, pgx.NamedArgs{
		"matchID":      m.MatchID,
		"tournamentID": m.TournamentID,
		"sourceID":     m.SourceID,
		"url":          m.URL,
		"teamA":        m.TeamA,
		"teamB":        m.TeamB,
		"scoreA":       m.ScoreA,
		"scoreB":       m.ScoreB,
		"mapCount":     m.MapCount,
		"format":       string(m.Format),
		"status":       string(m.Status),
		"scheduledAt":  m.ScheduledAt,
		"scrapedAt":    db.now(),
	})
	if err != nil {
		return fmt.Errorf("error upserting match %s: %w", m.MatchID, err)
	}
	return nil
}

func (db *postgresDB) UpsertMatchStats(ctx context.Context, s *model.MatchStats) error {
	const query = `INSERT INTO match_player_stats (
			player_id, tournament_id, match_id, match_url, ign, team, team_abbr,
			region, role, agent, rating, acs, kills, deaths, assists, kd_diff,
			kast, adr, headshot_pct, first_kills, first_deaths, fk_diff,
			match_team, profile_url, stats_incomplete, missing_fields, scraped_at
		) VALUES (
			@playerID, @tournamentID, @matchID, @matchURL, @ign, @team, @teamAbbr,
			@region, @role, @agent, @rating, @acs, @kills, @deaths, @assists, @kdDiff,
			@kast, @adr, @headshotPct, @firstKills, @firstDeaths, @fkDiff,
			@matchTeam, @profileURL, @incomplete, @missingFields, @scrapedAt
		)
		ON CONFLICT (player_id, match_id) DO UPDATE SET
			match_url=excluded.match_url, ign=excluded.ign, team=excluded.team,
			team_abbr=excluded.team_abbr, region=excluded.region,
			agent=excluded.agent, rating=excluded.rating, acs=excluded.acs,
			kills=excluded.kills, deaths=excluded.deaths, assists=excluded.assists,
			kd_diff=excluded.kd_diff, kast=excluded.kast, adr=excluded.adr,
			headshot_pct=excluded.headshot_pct,
			first_kills=excluded.first_kills, first_deaths=excluded.first_deaths,
			fk_diff=excluded.fk_diff, match_team=excluded.match_team,
			profile_url=excluded.profile_url,
			stats_incomplete=excluded.stats_incomplete,
			missing_fields=excluded.missing_fields,
			scraped_at=excluded.scraped_at`

	_, err := db.pool.Exec(ctx, query, pgx.NamedArgs{
		"playerID":      s.PlayerID,
		"tournamentID":  s.TournamentID,
		"matchID":       s.MatchID,
		"matchURL":      s.MatchURL,
		"ign":           s.IGN,
		"team":          s.Team,
		"teamAbbr":      s.TeamAbbr,
		"region":        s.Region,
		"role":          string(s.Role),
		"agent":         s.Agent,
		"rating":        s.Rating,
		"acs":           s.ACS,
		"kills":         s.Kills,
		"deaths":        s.Deaths,
		"assists":       s.Assists,
		"kdDiff":        s.KDDiff,
		"kast":          s.KAST,
		"adr":           s.ADR,
		"headshotPct":   s.HeadshotPct,
		"firstKills":    s.FirstKills,
		"firstDeaths":   s.FirstDeaths,
		"fkDiff":        s.FKDiff,
		"matchTeam":     s.MatchTeam,
		"profileURL":    s.ProfileURL,
		"incomplete":    s.Incomplete,
		"missingFields": strings.Join(s.MissingFields, ","),
		"scrapedAt":     db.now(),
	})
	if err != nil {
		return fmt.Errorf("error upserting match stats (%s, %s): %w", s.PlayerID, s.MatchID, err)
	}
	return nil
}

// GetMatchStats returns raw stat lines, optionally filtered by player and/or
// match. Empty filter strings mean no filter.
func (db *postgresDB) GetMatchStats(ctx context.Context, tournamentID int64, playerID, matchID string) ([]model.MatchStats, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT player_id, tournament_id, match_id, match_url, ign,
		team, team_abbr, region, role, agent, rating, acs, kills, deaths,
		assists, kd_diff, kast, adr, headshot_pct, first_kills, first_deaths,
		fk_diff, match_team, profile_url, stats_incomplete, missing_fields,
		scraped_at
		FROM match_player_stats WHERE tournament_id=@tournamentID`)
	args := pgx.NamedArgs{"tournamentID": tournamentID}
	if playerID != "" {
		sb.WriteString(" AND player_id=@playerID")
		args["playerID"] = playerID
	}
	if matchID != "" {
		sb.WriteString(" AND match_id=@matchID")
		args["matchID"] = matchID
	}
	sb.WriteString(" ORDER BY match_id, ign")

	rows, err := db.pool.Query(ctx, sb.String(), args)
	if err != nil {
		return nil, fmt.Errorf("error listing match stats: %w", err)
	}
	defer rows.Close()

	stats := make([]model.MatchStats, 0, 16)
	for rows.Next() {
		var s model.MatchStats
		var role, missing string
		var scraped pgtype.Timestamptz
		err := rows.Scan(&s.PlayerID, &s.TournamentID, &s.MatchID, &s.MatchURL,
			&s.IGN, &s.Team, &s.TeamAbbr, &s.Region, &role, &s.Agent,
			&s.Rating, &s.ACS, &s.Kills, &s.Deaths, &s.Assists, &s.KDDiff,
			&s.KAST, &s.ADR, &s.HeadshotPct, &s.FirstKills, &s.FirstDeaths,
			&s.FKDiff, &s.MatchTeam, &s.ProfileURL, &s.Incomplete, &missing,
			&scraped)
		if err != nil {
			return nil, fmt.Errorf("error scanning match stats: %w", err)
		}
		s.Role = model.Role(role)
		if missing != "" {
			s.MissingFields = strings.Split(missing, ",")
		}
		s.ScrapedAt = scraped.Time
		stats = append(stats, s)
	}
	return stats, rows.Err()
}

const matchColumns = `id, match_id, tournament_id, source_id, url, team_a,
	team_b, score_a, score_b, map_count, match_format, status, scheduled_at,
	scraped_at`

func (db *postgresDB) ListMatches(ctx context.Context, tournamentID int64) ([]model.Match, error) {
	query := fmt.Sprintf(`SELECT %s FROM matches WHERE tournament_id=@tournamentID ORDER BY id DESC`, matchColumns)
	return db.queryMatches(ctx, query, pgx.NamedArgs{"tournamentID": tournamentID})
}

func (db *postgresDB) UpcomingMatches(ctx context.Context, tournamentID int64) ([]model.Match, error) {
	query := fmt.Sprintf(`SELECT %s FROM matches
		WHERE tournament_id=@tournamentID AND status=@status
		ORDER BY scheduled_at, match_id`, matchColumns)
	return db.queryMatches(ctx, query, pgx.NamedArgs{
		"tournamentID": tournamentID,
		"status":       string(model.MatchUpcoming),
	})
}

func (db *postgresDB) queryMatches(ctx context.Context, query string, args pgx.NamedArgs) ([]model.Match, error) {
	rows, err := db.pool.Query(ctx, query, args)
	if err != nil {
		return nil, fmt.Errorf("error listing matches: %w", err)
	}
	defer rows.Close()

	matches := make([]model.Match, 0, 8)
	for rows.Next() {
		var m model.Match
		var sourceID pgtype.Int8
		var format, status string
		var scraped pgtype.Timestamptz
		err := rows.Scan(&m.ID, &m.MatchID, &m.TournamentID, &sourceID, &m.URL,
			&m.TeamA, &m.TeamB, &m.ScoreA, &m.ScoreB, &m.MapCount,
			&format, &status, &m.ScheduledAt, &scraped)
		if err != nil {
			return nil, fmt.Errorf("error scanning match: %w", err)
		}
		m.SourceID = sourceID.Int64
		m.Format = model.MatchFormat(format)
		m.Status = model.MatchStatus(status)
		m.ScrapedAt = scraped.Time
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

// DeleteMatchData wipes a tournament's scraped data: raw stat lines, matches
// and the aggregated leaderboard, in one transaction. Rosters keep their
// player ids and simply resolve to nothing until the next scrape.
func (db *postgresDB) DeleteMatchData(ctx context.Context, tournamentID int64) error {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	args := pgx.NamedArgs{"tournamentID": tournamentID}
	for _, query := range []string{
		`DELETE FROM match_player_stats WHERE tournament_id=@tournamentID`,
		`DELETE FROM matches WHERE tournament_id=@tournamentID`,
		`DELETE FROM players WHERE tournament_id=@tournamentID`,
	} {
		if _, err := tx.Exec(ctx, query, args); err != nil {
			return fmt.Errorf("error deleting match data: %w", err)
		}
	}

	return tx.Commit(ctx)
}

// Stat fields an admin may correct on a raw stat line.
var patchableStatFields = map[string]bool{
	"rating": true, "acs": true, "kills": true, "deaths": true,
	"assists": true, "kast": true, "adr": true,
	"first_kills": true, "first_deaths": true, "headshot_pct": true,
}

// PatchMatchStats overwrites selected stat fields on one raw line and
// recomputes its incomplete flag from the new KAST/ADR values.
func (db *postgresDB) PatchMatchStats(ctx context.Context, playerID, matchID string, tournamentID int64, fields map[string]float64) error {
	sets := make([]string, 0, len(fields))
	args := pgx.NamedArgs{
		"playerID":     playerID,
		"matchID":      matchID,
		"tournamentID": tournamentID,
	}
	for name, val := range fields {
		if !patchableStatFields[name] {
			return fmt.Errorf("field %q is not patchable", name)
		}
		sets = append(sets, fmt.Sprintf("%s=@f_%s", name, name))
		args["f_"+name] = val
	}
	if len(sets) == 0 {
		return nil
	}

	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	query := fmt.Sprintf(`UPDATE match_player_stats SET %s
		WHERE player_id=@playerID AND match_id=@matchID AND tournament_id=@tournamentID
		RETURNING kast, adr`, strings.Join(sets, ", "))

	var kast, adr float64
	if err := tx.QueryRow(ctx, query, args).Scan(&kast, &adr); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrPlayerNotFound
		}
		return fmt.Errorf("error patching match stats: %w", err)
	}

	missing := make([]string, 0, 2)
	if kast <= 0 {
		missing = append(missing, "kast")
	}
	if adr <= 0 {
		missing = append(missing, "adr")
	}
	args["missing"] = strings.Join(missing, ",")
	args["incomplete"] = len(missing) > 0

	_, err = tx.Exec(ctx, `UPDATE match_player_stats
		SET missing_fields=@missing, stats_incomplete=@incomplete
		WHERE player_id=@playerID AND match_id=@matchID AND tournament_id=@tournamentID`, args)
	if err != nil {
		return fmt.Errorf("error updating incomplete flag: %w", err)
	}

	return tx.Commit(ctx)
}

// IncompleteMatches lists matches that still have at least one stat line
// flagged incomplete, with the affected players named.
func (db *postgresDB) IncompleteMatches(ctx context.Context, tournamentID int64) ([]model.IncompleteMatch, error) {
	const query = `SELECT s.match_id, s.ign, s.match_url,
			COALESCE(m.team_a, ''), COALESCE(m.team_b, '')
		FROM match_player_stats s
		LEFT JOIN matches m
			ON m.match_id=s.match_id AND m.tournament_id=s.tournament_id
		WHERE s.tournament_id=@tournamentID AND s.stats_incomplete
		ORDER BY s.match_id, s.ign`

	rows, err := db.pool.Query(ctx, query, pgx.NamedArgs{"tournamentID": tournamentID})
	if err != nil {
		return nil, fmt.Errorf("error listing incomplete matches: %w", err)
	}
	defer rows.Close()

	results := make([]model.IncompleteMatch, 0, 4)
	for rows.Next() {
		var matchID, ign, url, teamA, teamB string
		if err := rows.Scan(&matchID, &ign, &url, &teamA, &teamB); err != nil {
			return nil, fmt.Errorf("error scanning incomplete match: %w", err)
		}
		if n := len(results); n > 0 && results[n-1].MatchID == matchID {
			results[n-1].AffectedPlayers = append(results[n-1].AffectedPlayers, ign)
			continue
		}
		results = append(results, model.IncompleteMatch{
			MatchID:         matchID,
			TeamA:           teamA,
			TeamB:           teamB,
			URL:             url,
			AffectedPlayers: []string{ign},
		})
	}
	return results, rows.Err()
}
