// Package points is the pure fantasy scoring engine. Everything in here is
// deterministic arithmetic over a single match stat line; no I/O, no state.
//
// Base points (role independent, KAST stored as 0-100):
//
//	kills*4 + deaths*-6 + assists*1 + acs*(kast/100/5) + fk*2 + fd*-4 + adr*0.2
//
// Role bonuses are added on top of base, except flex which blends all four
// bonuses plus a rating term. Rounding is load-bearing: base and bonus round
// to 4 decimal places, totals to 2, to stay bit-identical with stored data.
package points

import (
	"math"

	"github.com/mattwold/vct-fantasy/model"
)

// Score returns (base, roleBonus, total) for one match stat line scored as
// the given role. Deaths are clamped to 1 and every division substitutes a
// small epsilon for a zero denominator, so Score never panics on degenerate
// input.
func Score(s model.MatchStats, role model.Role) (base, bonus, total float64) {
	kills := float64(s.Kills)
	deaths := math.Max(float64(s.Deaths), 1)
	assists := float64(s.Assists)
	acs := s.ACS
	kast := s.KAST
	adr := s.ADR
	fk := float64(s.FirstKills)
	fd := float64(s.FirstDeaths)

	kastDec := 0.0
	if kast > 0 {
		kastDec = kast / 100
	}
	kad := (kills + assists) / deaths

	base = kills*4 +
		deaths*-6 +
		assists*1 +
		acs*(kastDec/5) +
		fk*2 +
		fd*-4 +
		adr*0.2
	base = round4(base)

	duelist := func() float64 {
		// acs/10 + (fk+fd) - fd*0.9 = acs/10 + fk + 0.1*fd
		return acs/10 + (fk + fd) - fd*0.9
	}
	initiator := func() float64 {
		safeKAD := kad
		if safeKAD <= 0 {
			safeKAD = 0.001
		}
		safeKAST := kastDec
		if safeKAST <= 0 {
			safeKAST = 0.01
		}
		return assists + (assists/safeKAD)/safeKAST
	}
	controller := func() float64 {
		return assists*0.75 + (kast/10)*kad
	}
	sentinel := func() float64 {
		return acs/10 + (adr/100)/1.5
	}

	switch role {
	case model.RoleDuelist:
		bonus = duelist()
		total = base + bonus
	case model.RoleInitiator:
		bonus = initiator()
		total = base + bonus
	case model.RoleController:
		bonus = controller()
		total = base + bonus
	case model.RoleSentinel:
		bonus = sentinel()
		total = base + bonus
	case model.RoleFlex:
		// Average of the four role totals plus a rating kicker:
		// (4*base + all bonuses)/4 + rating*10*(kastDec-0.7)
		all := duelist() + initiator() + controller() + sentinel()
		total = base + all/4 + s.Rating*10*(kastDec-0.7)
		bonus = total - base
	default:
		bonus = 0
		total = base
	}

	bonus = round4(bonus)
	total = round2(total)
	return base, bonus, total
}

// AllRolePoints computes the total for every role, for the player detail
// "what if" table.
func AllRolePoints(s model.MatchStats) map[model.Role]float64 {
	out := make(map[model.Role]float64, len(model.Roles))
	for _, r := range model.Roles {
		_, _, total := Score(s, r)
		out[r] = total
	}
	return out
}

// StarMultiplier applies the 1.5x star bonus. Only the standings layer uses
// this; stored player totals never include it.
func StarMultiplier(points float64) float64 {
	return round2(points * 1.5)
}

// ScoreBreakdown decomposes one stat line into its display components. All
// values round to 2 dp except the derived ratios (3 dp).
type ScoreBreakdown struct {
	KillPts         float64 `json:"kill_pts"`
	DeathPts        float64 `json:"death_pts"`
	AssistPts       float64 `json:"assist_pts"`
	ACSKast         float64 `json:"acs_kast"`
	FirstKillPts    float64 `json:"fk_pts"`
	FirstDeathPts   float64 `json:"fd_pts"`
	ADRPts          float64 `json:"adr_pts"`
	KAD             float64 `json:"ka_d"`
	KASTDec         float64 `json:"kast_dec"`
	DuelistBonus    float64 `json:"duelist_bonus"`
	InitiatorBonus  float64 `json:"initiator_bonus"`
	ControllerBonus float64 `json:"controller_bonus"`
	SentinelBonus   float64 `json:"sentinel_bonus"`
	RatingBonus     float64 `json:"rating_bonus"`
}

// Breakdown computes the per-component decomposition for the player detail
// view. The same arithmetic as Score, surfaced term by term.
func Breakdown(s model.MatchStats) ScoreBreakdown {
	kills := float64(s.Kills)
	deaths := math.Max(float64(s.Deaths), 1)
	assists := float64(s.Assists)
	acs := s.ACS
	kast := s.KAST
	adr := s.ADR
	fk := float64(s.FirstKills)
	fd := float64(s.FirstDeaths)

	kastDec := 0.0
	if kast > 0 {
		kastDec = kast / 100
	}
	kad := (kills + assists) / deaths

	safeKAD := kad
	if safeKAD <= 0 {
		safeKAD = 0.001
	}
	safeKAST := kastDec
	if safeKAST <= 0 {
		safeKAST = 0.01
	}

	round3 := func(v float64) float64 { return math.Round(v*1e3) / 1e3 }

	return ScoreBreakdown{
		KillPts:         round2(kills * 4),
		DeathPts:        round2(deaths * -6),
		AssistPts:       round2(assists * 1),
		ACSKast:         round2(acs * (kastDec / 5)),
		FirstKillPts:    round2(fk * 2),
		FirstDeathPts:   round2(fd * -4),
		ADRPts:          round2(adr * 0.2),
		KAD:             round3(kad),
		KASTDec:         round3(kastDec),
		DuelistBonus:    round2(acs/10 + (fk + fd) - fd*0.9),
		InitiatorBonus:  round2(assists + (assists/safeKAD)/safeKAST),
		ControllerBonus: round2(assists*0.75 + (kast/10)*kad),
		SentinelBonus:   round2(acs/10 + (adr/100)/1.5),
		RatingBonus:     round2(s.Rating * 10 * (kastDec - 0.7)),
	}
}

func round4(v float64) float64 {
	return math.Round(v*1e4) / 1e4
}

func round2(v float64) float64 {
	return math.Round(v*1e2) / 1e2
}
