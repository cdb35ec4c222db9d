package controller

import (
	"context"
	"strings"
	"testing"

	"github.com/itbasis/go-clock"
	"github.com/stretchr/testify/mock"

	"github.com/mattwold/vct-fantasy/db"
	"github.com/mattwold/vct-fantasy/db/mockdb"
	"github.com/mattwold/vct-fantasy/model"
	"github.com/mattwold/vct-fantasy/points"
	"github.com/mattwold/vct-fantasy/testutils"
	"github.com/mattwold/vct-fantasy/vlr"
)

const testTournamentID = int64(42)

func newTestController(t *testing.T, mockDB *mockdb.DB) (C, *testutils.FakeVLRServer) {
	t.Helper()
	fake := testutils.NewFakeVLRServer()
	t.Cleanup(fake.Close)

	ctrl, err := New(clock.New(), vlr.NewForTest(fake.URL(), clock.New()), mockDB)
	if err != nil {
		t.Fatalf("error creating controller: %v", err)
	}
	return ctrl, fake
}

func statLine(matchID string, kills int, kast float64) model.MatchStats {
	return model.MatchStats{
		PlayerID:     "t42_10010_tenz",
		TournamentID: testTournamentID,
		MatchID:      matchID,
		IGN:          "TenZ",
		Team:         "Sentinels",
		Rating:       1.2,
		ACS:          250,
		Kills:        kills,
		Deaths:       14,
		Assists:      5,
		KAST:         kast,
		ADR:          150,
		FirstKills:   3,
		FirstDeaths:  2,
	}
}

func TestRefreshTournament(t *testing.T) {
	mockDB := &mockdb.DB{}
	ctrl, fake := newTestController(t, mockDB)

	src := model.EventSource{ID: 7, TournamentID: testTournamentID, URL: fake.EventURL(), Region: "AMER"}
	mockDB.On("GetEventSources", mock.Anything, testTournamentID).Return([]model.EventSource{src}, nil)
	mockDB.On("UpsertMatch", mock.Anything, mock.Anything).Return(nil)
	mockDB.On("UpsertMatchStats", mock.Anything, mock.Anything).Return(nil)
	mockDB.On("SavePlayerStub", mock.Anything, mock.Anything).Return(nil)
	mockDB.On("UpdateSourceScraped", mock.Anything, src.ID, 4).Return(nil)

	rows := []model.MatchStats{statLine("10001", 20, 70), statLine("10003", 15, 60)}
	mockDB.On("GetMatchStats", mock.Anything, testTournamentID, "", "").Return(rows, nil)
	mockDB.On("ListPlayers", mock.Anything, testTournamentID, db.ListPlayersOptions{}).
		Return([]model.Player{{PlayerID: "t42_10010_tenz", Role: model.RoleDuelist}}, nil)

	var saved *model.Player
	mockDB.On("UpsertPlayer", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		saved = args.Get(1).(*model.Player)
	}).Return(nil)
	mockDB.On("LogScrape", mock.Anything, mock.Anything).Return(nil)

	if err := ctrl.RefreshTournament(context.Background(), testTournamentID); err != nil {
		t.Fatalf("error refreshing tournament: %v", err)
	}

	// Three match pages: the completed bo3 has 4 stat rows, the fallback
	// match has 2, and the upcoming match contributes 4 lineup stubs.
	mockDB.AssertNumberOfCalls(t, "UpsertMatch", 3)
	mockDB.AssertNumberOfCalls(t, "UpsertMatchStats", 6)
	mockDB.AssertNumberOfCalls(t, "SavePlayerStub", 4)

	if saved == nil {
		t.Fatalf("expected the leaderboard row to be written")
	}
	want := points.Aggregate(rows, model.RoleDuelist)
	if saved.FantasyPoints != want.FantasyPoints {
		t.Errorf("FantasyPoints - expected %v, got %v", want.FantasyPoints, saved.FantasyPoints)
	}
	if saved.MatchesPlayed != 2 {
		t.Errorf("MatchesPlayed - expected 2, got %d", saved.MatchesPlayed)
	}

	mockDB.AssertExpectations(t)
}

func TestRefreshTournament_noSources(t *testing.T) {
	mockDB := &mockdb.DB{}
	ctrl, _ := newTestController(t, mockDB)

	mockDB.On("GetEventSources", mock.Anything, testTournamentID).Return([]model.EventSource{}, nil)

	err := ctrl.RefreshTournament(context.Background(), testTournamentID)
	if err == nil || !strings.Contains(err.Error(), "no event sources") {
		t.Errorf("expected a no-sources error, got: %v", err)
	}
}

func TestAddEventSource(t *testing.T) {
	mockDB := &mockdb.DB{}
	ctrl, _ := newTestController(t, mockDB)

	want := vlr.BaseURL + "/event/2097/champions-2025"
	mockDB.On("AddEventSource", mock.Anything, testTournamentID, want, "champions 2025", "EMEA").
		Return(&model.EventSource{ID: 1, URL: want}, nil)

	// Any event URL form normalizes to the canonical /event/id/slug shape.
	src, err := ctrl.AddEventSource(context.Background(), testTournamentID,
		"https://www.vlr.gg/event/matches/2097/champions-2025/?series_id=all", "EMEA")
	if err != nil {
		t.Fatalf("error adding event source: %v", err)
	}
	if src.URL != want {
		t.Errorf("URL - expected %s, got %s", want, src.URL)
	}

	_, err = ctrl.AddEventSource(context.Background(), testTournamentID, "https://example.com/nope", "EMEA")
	if err == nil {
		t.Errorf("expected an error for a non-event url")
	}

	mockDB.AssertExpectations(t)
}

func TestSetPlayerRoleRescoresAggregate(t *testing.T) {
	mockDB := &mockdb.DB{}
	ctrl, _ := newTestController(t, mockDB)

	p := &model.Player{
		PlayerID:     "t42_10010_tenz",
		TournamentID: testTournamentID,
		Role:         model.RoleDuelist,
		Rating:       1.2,
		ACS:          250,
		Kills:        35,
		Deaths:       28,
		Assists:      10,
		KAST:         65,
		ADR:          150,
		FirstKills:   6,
		FirstDeaths:  4,
	}
	base, bonus, total := points.Score(p.StatLine(), model.RoleController)

	mockDB.On("UpdatePlayerRole", mock.Anything, "t42_10010_tenz", testTournamentID, model.RoleController).Return(nil)
	mockDB.On("GetPlayer", mock.Anything, "t42_10010_tenz", testTournamentID).Return(p, nil)
	mockDB.On("UpdatePlayerPoints", mock.Anything, "t42_10010_tenz", testTournamentID,
		base, bonus, total).Return(nil)

	err := ctrl.SetPlayerRole(context.Background(), "t42_10010_tenz", testTournamentID, model.RoleController)
	if err != nil {
		t.Fatalf("error setting role: %v", err)
	}
	mockDB.AssertExpectations(t)
}

func TestSetPlayerRole_doesNotReplayMatches(t *testing.T) {
	mockDB := &mockdb.DB{}
	ctrl, _ := newTestController(t, mockDB)

	// Even when raw match rows exist, a role change scores the stored
	// aggregate row once. A replay sum and a single-aggregate score differ,
	// and the leaderboard must keep the aggregate value until a recompute.
	p := &model.Player{
		PlayerID:     "t42_10010_tenz",
		TournamentID: testTournamentID,
		Role:         model.RoleFlex,
		Kills:        35,
		Deaths:       24,
		Assists:      12,
		ACS:          240,
		KAST:         68,
		ADR:          148,
		FirstKills:   5,
		FirstDeaths:  3,
	}
	base, bonus, total := points.Score(p.StatLine(), model.RoleDuelist)
	rows := []model.MatchStats{statLine("10001", 20, 70), statLine("10003", 15, 60)}
	replay := points.Aggregate(rows, model.RoleDuelist)
	if replay.FantasyPoints == total {
		t.Fatalf("fixture does not distinguish replay from aggregate rescore")
	}

	mockDB.On("UpdatePlayerRole", mock.Anything, "t42_10010_tenz", testTournamentID, model.RoleDuelist).Return(nil)
	mockDB.On("GetPlayer", mock.Anything, "t42_10010_tenz", testTournamentID).Return(p, nil)
	mockDB.On("UpdatePlayerPoints", mock.Anything, "t42_10010_tenz", testTournamentID,
		base, bonus, total).Return(nil)

	err := ctrl.SetPlayerRole(context.Background(), "t42_10010_tenz", testTournamentID, model.RoleDuelist)
	if err != nil {
		t.Fatalf("error setting role: %v", err)
	}
	mockDB.AssertNotCalled(t, "GetMatchStats", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	mockDB.AssertExpectations(t)
}

func TestRecomputeTournamentPoints(t *testing.T) {
	mockDB := &mockdb.DB{}
	ctrl, _ := newTestController(t, mockDB)

	rows := []model.MatchStats{statLine("10001", 20, 70), statLine("10003", 15, 60)}
	want := points.Aggregate(rows, model.RoleDuelist)

	players := []model.Player{
		{PlayerID: "t42_10010_tenz", Role: model.RoleDuelist},
		{PlayerID: "t42_stub", Role: model.RoleFlex}, // no rows, keeps points
	}
	mockDB.On("GetMatchStats", mock.Anything, testTournamentID, "", "").Return(rows, nil)
	mockDB.On("ListPlayers", mock.Anything, testTournamentID, db.ListPlayersOptions{}).Return(players, nil)
	mockDB.On("UpdatePlayerPoints", mock.Anything, "t42_10010_tenz", testTournamentID,
		want.BasePoints, want.RolePoints, want.FantasyPoints).Return(nil)

	if err := ctrl.RecomputeTournamentPoints(context.Background(), testTournamentID); err != nil {
		t.Fatalf("error recomputing points: %v", err)
	}
	mockDB.AssertNumberOfCalls(t, "UpdatePlayerPoints", 1)
	mockDB.AssertExpectations(t)
}

func TestRecomputeTournamentPoints_aggregateFallback(t *testing.T) {
	mockDB := &mockdb.DB{}
	ctrl, _ := newTestController(t, mockDB)

	// No per-match rows at all: the stored aggregate is rescored as a
	// single stat line instead.
	p := model.Player{
		PlayerID:     "t42_10010_tenz",
		TournamentID: testTournamentID,
		Role:         model.RoleSentinel,
		Rating:       1.15,
		ACS:          230,
		Kills:        35,
		Deaths:       28,
		Assists:      10,
		KAST:         71,
		ADR:          145,
		FirstKills:   5,
		FirstDeaths:  4,
	}
	base, bonus, total := points.Score(p.StatLine(), model.RoleSentinel)

	mockDB.On("GetMatchStats", mock.Anything, testTournamentID, "", "").Return([]model.MatchStats{}, nil)
	mockDB.On("ListPlayers", mock.Anything, testTournamentID, db.ListPlayersOptions{}).Return([]model.Player{p}, nil)
	mockDB.On("UpdatePlayerPoints", mock.Anything, "t42_10010_tenz", testTournamentID,
		base, bonus, total).Return(nil)

	if err := ctrl.RecomputeTournamentPoints(context.Background(), testTournamentID); err != nil {
		t.Fatalf("error recomputing points: %v", err)
	}
	mockDB.AssertExpectations(t)
}

func TestPhaseStandings(t *testing.T) {
	mockDB := &mockdb.DB{}
	ctrl, _ := newTestController(t, mockDB)

	league := &model.League{ID: 5, TournamentID: testTournamentID, Ruleset: model.DefaultRuleset()}
	teams := []model.FantasyTeam{
		{ID: 1, LeagueID: 5, TeamName: "Alpha"},
		{ID: 2, LeagueID: 5, TeamName: "Beta"},
	}
	mockDB.On("GetLeague", mock.Anything, int64(5)).Return(league, nil)
	mockDB.On("TeamsInLeague", mock.Anything, int64(5)).Return(teams, nil)

	alphaRoster := []model.RosterPlayer{
		{
			RosterEntry: model.RosterEntry{FantasyTeamID: 1, PlayerID: "p1"},
			Player:      model.Player{PlayerID: "p1", FantasyPoints: 100, ManualPts: 10},
		},
		{
			RosterEntry: model.RosterEntry{FantasyTeamID: 1, PlayerID: "p2", Star: true},
			Player:      model.Player{PlayerID: "p2", FantasyPoints: 50},
		},
	}
	mockDB.On("GetRoster", mock.Anything, int64(1), model.PhaseSwiss).Return(alphaRoster, nil)
	mockDB.On("GetRoster", mock.Anything, int64(2), model.PhaseSwiss).Return([]model.RosterPlayer{}, nil)

	mockDB.On("GetFollowedTeam", mock.Anything, int64(1)).Return(&model.FollowedTeam{FantasyTeamID: 1, TeamName: "DRX"}, nil)
	mockDB.On("GetFollowedTeam", mock.Anything, int64(2)).Return(nil, nil)
	mockDB.On("GetMatchResults", mock.Anything, testTournamentID, "DRX").Return([]model.TeamMatchResult{
		{Result: "win", Format: model.FormatBo3},
		{Result: "loss", Format: model.FormatBo5},
	}, nil)

	mockDB.On("TotalAdjustments", mock.Anything, int64(1)).Return(15.0, nil)
	mockDB.On("TotalAdjustments", mock.Anything, int64(2)).Return(0.0, nil)

	standings, err := ctrl.PhaseStandings(context.Background(), 5, model.PhaseSwiss)
	if err != nil {
		t.Fatalf("error getting standings: %v", err)
	}
	if len(standings) != 2 {
		t.Fatalf("expected 2 standings rows, got %d", len(standings))
	}

	// player 160 + star 25 + follow (100 - 50) + adjustments 15
	top := standings[0]
	if top.TeamName != "Alpha" {
		t.Errorf("expected Alpha first, got %s", top.TeamName)
	}
	if top.PlayerPts != 160 {
		t.Errorf("PlayerPts - expected 160, got %v", top.PlayerPts)
	}
	if top.StarBonus != 25 {
		t.Errorf("StarBonus - expected 25, got %v", top.StarBonus)
	}
	if top.FollowPts != 50 {
		t.Errorf("FollowPts - expected 50, got %v", top.FollowPts)
	}
	if top.TotalPoints != 250 {
		t.Errorf("TotalPoints - expected 250, got %v", top.TotalPoints)
	}
	if standings[1].TotalPoints != 0 {
		t.Errorf("expected Beta at 0 points, got %v", standings[1].TotalPoints)
	}
}

func TestFollowPoints_onlyBo3PaysFullRates(t *testing.T) {
	mockDB := &mockdb.DB{}
	ctrl, _ := newTestController(t, mockDB)

	league := &model.League{ID: 5, TournamentID: testTournamentID, Ruleset: model.DefaultRuleset()}
	mockDB.On("GetLeague", mock.Anything, int64(5)).Return(league, nil)
	mockDB.On("TeamsInLeague", mock.Anything, int64(5)).Return([]model.FantasyTeam{{ID: 1, LeagueID: 5, TeamName: "Alpha"}}, nil)
	mockDB.On("GetRoster", mock.Anything, int64(1), model.PhaseSwiss).Return([]model.RosterPlayer{}, nil)
	mockDB.On("GetFollowedTeam", mock.Anything, int64(1)).Return(&model.FollowedTeam{FantasyTeamID: 1, TeamName: "DRX"}, nil)
	mockDB.On("TotalAdjustments", mock.Anything, int64(1)).Return(0.0, nil)

	// Any format other than bo3 pays the reduced rates, including formats
	// this code has never heard of.
	mockDB.On("GetMatchResults", mock.Anything, testTournamentID, "DRX").Return([]model.TeamMatchResult{
		{Result: "win", Format: model.FormatBo3},          // +100
		{Result: "win", Format: model.FormatBo5},          // +75
		{Result: "win", Format: model.MatchFormat("bo7")}, // +75
		{Result: "loss", Format: model.FormatBo3},         // -75
		{Result: "loss", Format: model.MatchFormat("")},   // -50
	}, nil)

	standings, err := ctrl.PhaseStandings(context.Background(), 5, model.PhaseSwiss)
	if err != nil {
		t.Fatalf("error getting standings: %v", err)
	}
	if standings[0].FollowPts != 25 {
		t.Errorf("FollowPts - expected 25, got %v", standings[0].FollowPts)
	}
}

func TestProposeTrade_validation(t *testing.T) {
	mockDB := &mockdb.DB{}
	ctrl, _ := newTestController(t, mockDB)

	_, err := ctrl.ProposeTrade(context.Background(), 5, 1, 1, "pa", "pb")
	if err == nil {
		t.Errorf("expected an error trading with yourself")
	}

	_, err = ctrl.ProposeTrade(context.Background(), 5, 1, 2, "pa", "pa")
	if err == nil {
		t.Errorf("expected an error trading a player for themselves")
	}

	mockDB.AssertNotCalled(t, "ProposeTrade", mock.Anything, mock.Anything)
}

func TestDraftPick_enforcesClock(t *testing.T) {
	mockDB := &mockdb.DB{}
	ctrl, _ := newTestController(t, mockDB)

	draft := &model.DraftSession{
		ID:          9,
		LeagueID:    5,
		Phase:       model.PhaseSwiss,
		Status:      model.DraftActive,
		CurrentPick: 1,
		TotalPicks:  4,
		SnakeOrder:  []int64{1, 2, 2, 1},
	}
	mockDB.On("ActiveDraft", mock.Anything, int64(5)).Return(draft, nil)

	err := ctrl.DraftPick(context.Background(), 5, 2, "p1", model.RoleFlex)
	if err == nil || !strings.Contains(err.Error(), "not on the clock") {
		t.Errorf("expected an on-the-clock error, got: %v", err)
	}
	mockDB.AssertNotCalled(t, "AddToRoster", mock.Anything, mock.Anything)
	mockDB.AssertNotCalled(t, "AdvanceDraft", mock.Anything, mock.Anything)
}

func TestAddPlayerToRoster_rulesetChecks(t *testing.T) {
	mockDB := &mockdb.DB{}
	ctrl, _ := newTestController(t, mockDB)

	rs := model.DefaultRuleset()
	rs.TotalPlayers = 2
	league := &model.League{ID: 5, TournamentID: testTournamentID, Ruleset: rs}
	team := &model.FantasyTeam{ID: 1, LeagueID: 5}

	mockDB.On("GetFantasyTeam", mock.Anything, int64(1)).Return(team, nil)
	mockDB.On("GetLeague", mock.Anything, int64(5)).Return(league, nil)
	mockDB.On("GetPlayer", mock.Anything, "p3", testTournamentID).Return(&model.Player{PlayerID: "p3", IGN: "three"}, nil)

	full := []model.RosterPlayer{
		{RosterEntry: model.RosterEntry{PlayerID: "p1"}, Player: model.Player{PlayerID: "p1"}},
		{RosterEntry: model.RosterEntry{PlayerID: "p2"}, Player: model.Player{PlayerID: "p2"}},
	}
	mockDB.On("GetRoster", mock.Anything, int64(1), model.PhaseSwiss).Return(full, nil)

	err := ctrl.AddPlayerToRoster(context.Background(), 1, "p3", model.RoleFlex, model.PhaseSwiss)
	if err == nil || !strings.Contains(err.Error(), "roster is full") {
		t.Errorf("expected a roster-full error, got: %v", err)
	}
	mockDB.AssertNotCalled(t, "AddToRoster", mock.Anything, mock.Anything)
}

func TestTransitionToPlayoffs_validation(t *testing.T) {
	mockDB := &mockdb.DB{}
	ctrl, _ := newTestController(t, mockDB)

	rs := model.DefaultRuleset()
	rs.SinglePhase = true
	mockDB.On("GetLeague", mock.Anything, int64(5)).Return(&model.League{ID: 5, Ruleset: rs}, nil)

	err := ctrl.TransitionToPlayoffs(context.Background(), 5, nil)
	if err == nil || !strings.Contains(err.Error(), "single phase") {
		t.Errorf("expected a single-phase error, got: %v", err)
	}
	mockDB.AssertNotCalled(t, "TransitionToPlayoffs", mock.Anything, mock.Anything, mock.Anything)
}
