package points

import (
	"reflect"
	"testing"

	"github.com/mattwold/vct-fantasy/model"
)

func matchRow(matchID string, kills, deaths, assists int, acs, kast, adr float64) model.MatchStats {
	return model.MatchStats{
		PlayerID:     "t1_100_player",
		TournamentID: 1,
		MatchID:      matchID,
		IGN:          "player",
		Team:         "TSM",
		TeamAbbr:     "TSM",
		Kills:        kills,
		Deaths:       deaths,
		Assists:      assists,
		ACS:          acs,
		KAST:         kast,
		ADR:          adr,
	}
}

func TestAggregatePerMatchThenSum(t *testing.T) {
	// Two matches with different ACS/KAST combinations. Because of the
	// ACS*KAST cross term, summing per-match scores must not equal scoring
	// the averaged stats once (and then doubling).
	m1 := matchRow("m1", 10, 10, 0, 200, 50, 100)
	m2 := matchRow("m2", 10, 10, 0, 300, 100, 100)

	agg := Aggregate([]model.MatchStats{m1, m2}, model.RoleUnknown)

	_, _, t1 := Score(m1, model.RoleUnknown)
	_, _, t2 := Score(m2, model.RoleUnknown)
	if agg.FantasyPoints != round2(t1+t2) {
		t.Fatalf("expected per-match sum %v, got %v", round2(t1+t2), agg.FantasyPoints)
	}

	// Score the averaged line once and double it: must differ.
	avg := matchRow("avg", 20, 20, 0, 250, 75, 100)
	_, _, tAvg := Score(avg, model.RoleUnknown)
	if round2(tAvg) == agg.FantasyPoints {
		t.Errorf("sum-then-score coincides with per-match-then-sum; test data has no cross-term spread")
	}
}

func TestAggregateIncompleteExclusion(t *testing.T) {
	complete := matchRow("m1", 15, 10, 5, 250, 70, 150)
	incomplete := matchRow("m2", 20, 10, 5, 260, 0, 0)
	incomplete.Incomplete = true
	incomplete.MissingFields = []string{"kast", "adr"}

	agg := Aggregate([]model.MatchStats{complete, incomplete}, model.RoleFlex)

	_, _, want := Score(complete, model.RoleFlex)
	if agg.FantasyPoints != round2(want) {
		t.Errorf("expected points from the complete match only (%v), got %v", want, agg.FantasyPoints)
	}
	if agg.MatchesPlayed != 2 {
		t.Errorf("expected matches_played 2, got %d", agg.MatchesPlayed)
	}
	if !agg.HasIncomplete {
		t.Error("expected HasIncomplete to be set")
	}
	// Display stats still include the incomplete match.
	if agg.Kills != 35 {
		t.Errorf("expected 35 kills, got %d", agg.Kills)
	}
}

func TestAggregateDisplayStats(t *testing.T) {
	m1 := matchRow("m1", 10, 5, 4, 200, 60, 120)
	m1.Rating = 1.0
	m1.HeadshotPct = 20
	m1.FirstKills = 2
	m1.FirstDeaths = 1
	m1.Agent = "Jett"
	m2 := matchRow("m2", 20, 15, 6, 300, 80, 180)
	m2.Rating = 1.5
	m2.HeadshotPct = 30
	m2.FirstKills = 4
	m2.FirstDeaths = 3
	m2.Agent = "Jett"

	agg := Aggregate([]model.MatchStats{m1, m2}, model.RoleDuelist)

	if agg.Kills != 30 || agg.Deaths != 20 || agg.Assists != 10 {
		t.Errorf("bad K/D/A sums: %d/%d/%d", agg.Kills, agg.Deaths, agg.Assists)
	}
	if agg.Rating != 1.25 {
		t.Errorf("rating: expected 1.25, got %v", agg.Rating)
	}
	if agg.ACS != 250 {
		t.Errorf("acs: expected 250, got %v", agg.ACS)
	}
	if agg.KAST != 70 {
		t.Errorf("kast: expected 70, got %v", agg.KAST)
	}
	if agg.ADR != 150 {
		t.Errorf("adr: expected 150, got %v", agg.ADR)
	}
	if agg.KDRatio != 1.5 {
		t.Errorf("kd: expected 1.5, got %v", agg.KDRatio)
	}
	if agg.FKFDRatio != 1.5 {
		t.Errorf("fk/fd: expected 1.5, got %v", agg.FKFDRatio)
	}
	if agg.Agent != "Jett" {
		t.Errorf("agent: expected Jett, got %q", agg.Agent)
	}
}

func TestAggregateRatioFloors(t *testing.T) {
	m := matchRow("m1", 12, 8, 2, 220, 65, 130)
	m.FirstDeaths = 0
	m.FirstKills = 3

	agg := Aggregate([]model.MatchStats{m}, model.RoleUnknown)
	// fk/fd denominator floors at 1
	if agg.FKFDRatio != 3 {
		t.Errorf("expected fk/fd 3, got %v", agg.FKFDRatio)
	}
}

func TestAggregateAllIdempotent(t *testing.T) {
	rows := []model.MatchStats{
		matchRow("m1", 10, 5, 4, 200, 60, 120),
		matchRow("m2", 20, 15, 6, 300, 80, 180),
	}
	other := matchRow("m1", 8, 12, 9, 180, 55, 110)
	other.PlayerID = "t1_200_other"
	other.IGN = "other"
	rows = append(rows, other)

	roles := map[string]model.Role{
		"t1_100_player": model.RoleDuelist,
		"t1_200_other":  model.RoleController,
	}

	first := AggregateAll(rows, roles)
	second := AggregateAll(rows, roles)
	if !reflect.DeepEqual(first, second) {
		t.Error("aggregation is not deterministic over identical input")
	}
	if len(first) != 2 {
		t.Fatalf("expected 2 players, got %d", len(first))
	}
	if first[0].PlayerID != "t1_100_player" {
		t.Errorf("expected stable grouping order, got %s first", first[0].PlayerID)
	}
	if first[1].Role != model.RoleController {
		t.Errorf("expected role from role map, got %s", first[1].Role)
	}
}
