package points

import (
	"log"
	"math"
	"sort"

	"github.com/mattwold/vct-fantasy/model"
)

// AggregateAll groups raw match rows by player and builds one leaderboard
// row per player. roles supplies the currently assigned role per player id;
// players without an entry score as flex.
//
// Points are calculated per match and then summed. The formula has
// non-linear cross terms (ACS*KAST, ratio of ratios), so scoring summed or
// averaged stats once gives a different, wrong answer. Rows flagged
// incomplete are skipped for the point sum but still count toward
// matches played and the display aggregates.
func AggregateAll(rows []model.MatchStats, roles map[string]model.Role) []model.Player {
	buckets := make(map[string][]model.MatchStats)
	order := make([]string, 0, 16)
	for _, r := range rows {
		if _, seen := buckets[r.PlayerID]; !seen {
			order = append(order, r.PlayerID)
		}
		buckets[r.PlayerID] = append(buckets[r.PlayerID], r)
	}

	players := make([]model.Player, 0, len(buckets))
	for _, pid := range order {
		role, ok := roles[pid]
		if !ok {
			role = model.RoleFlex
		}
		players = append(players, Aggregate(buckets[pid], role))
	}
	return players
}

// Aggregate builds the leaderboard row for a single player's match rows.
// All rows must share the same player id.
func Aggregate(rows []model.MatchStats, role model.Role) model.Player {
	n := len(rows)
	first := rows[0]

	p := model.Player{
		PlayerID:     first.PlayerID,
		TournamentID: first.TournamentID,
		IGN:          first.IGN,
		Team:         first.Team,
		TeamAbbr:     first.TeamAbbr,
		Region:       first.Region,
		Role:         role,
		ProfileURL:   first.ProfileURL,
	}

	var rating, acs, kast, adr, hs float64
	agentCount := make(map[string]int)
	for _, r := range rows {
		p.Kills += r.Kills
		p.Deaths += r.Deaths
		p.Assists += r.Assists
		p.FirstKills += r.FirstKills
		p.FirstDeaths += r.FirstDeaths
		rating += r.Rating
		acs += r.ACS
		kast += r.KAST
		adr += r.ADR
		hs += r.HeadshotPct
		if r.Agent != "" {
			agentCount[r.Agent]++
		}
		if r.Incomplete {
			p.HasIncomplete = true
		}
	}

	p.MatchesPlayed = n
	p.RoundsPlayed = n
	p.Rating = round(rating/float64(n), 3)
	p.ACS = round(acs/float64(n), 2)
	p.KAST = round(kast/float64(n), 2)
	p.ADR = round(adr/float64(n), 2)
	p.HeadshotPct = round(hs/float64(n), 2)
	p.KDRatio = round(float64(p.Kills)/math.Max(float64(p.Deaths), 1), 3)
	p.FKFDRatio = round(float64(p.FirstKills)/math.Max(float64(p.FirstDeaths), 1), 3)
	p.Agent = mostFrequent(agentCount)

	var base, bonus, total float64
	for _, r := range rows {
		if r.Incomplete {
			log.Printf("skipping incomplete stats for %s in match %s (missing: %v)",
				r.IGN, r.MatchID, r.MissingFields)
			continue
		}
		b, rb, t := Score(r, role)
		base += b
		bonus += rb
		total += t
	}
	p.BasePoints = round4(base)
	p.RolePoints = round4(bonus)
	p.FantasyPoints = round2(total)

	return p
}

func mostFrequent(counts map[string]int) string {
	if len(counts) == 0 {
		return ""
	}
	agents := make([]string, 0, len(counts))
	for a := range counts {
		agents = append(agents, a)
	}
	// Sort for a stable winner when counts tie.
	sort.Strings(agents)
	best := agents[0]
	for _, a := range agents[1:] {
		if counts[a] > counts[best] {
			best = a
		}
	}
	return best
}

func round(v float64, places int) float64 {
	f := math.Pow(10, float64(places))
	return math.Round(v*f) / f
}
