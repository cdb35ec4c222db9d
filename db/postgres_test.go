package db

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync/atomic"
	"testing"

	"github.com/itbasis/go-clock"

	"github.com/mattwold/vct-fantasy/containers"
	"github.com/mattwold/vct-fantasy/model"
)

var (
	// A test global db instance to use for all of the tests instead of setting up a new one each time.
	testDB DB

	// a counter to generate distinct names per test.
	nameCtr = int32(0)
)

// TestMain controls the main for the tests and allows for setup and shutdown of the tests
func TestMain(m *testing.M) {
	container := containers.NewDBContainer()

	clock := clock.New()

	defer func() {
		// Catch all panics to make sure the shutdown is successfully run
		if r := recover(); r != nil {
			if container != nil {
				container.Shutdown()
			}
			fmt.Println("panic")
		}
	}()

	var err error
	testDB, err = New(context.Background(), container.ConnectionString(), clock)
	if err != nil {
		fmt.Printf("error connecting to db: %v", err)
		os.Exit(-1)
	}

	code := m.Run()
	container.Shutdown()
	os.Exit(code)
}

func TestDB_tournamentLifecycle(t *testing.T) {
	ctx := context.Background()

	tournament, err := testDB.CreateTournament(ctx, uniqueName("Champions"), "Paris", "standard")
	assertFatalf(t, err == nil, "error creating tournament: %v", err)
	assertFatalf(t, tournament.ID > 0, "expected a generated tournament id")
	assertEquals(t, "Status", "swiss", tournament.Status)

	got, err := testDB.GetTournament(ctx, tournament.ID)
	assertFatalf(t, err == nil, "error getting tournament: %v", err)
	assertEquals(t, "Name", tournament.Name, got.Name)

	err = testDB.UpdateTournamentStatus(ctx, tournament.ID, "playoffs")
	assertFatalf(t, err == nil, "error updating status: %v", err)
	got, err = testDB.GetTournament(ctx, tournament.ID)
	assertFatalf(t, err == nil, "error getting tournament: %v", err)
	assertEquals(t, "Status", "playoffs", got.Status)

	src, err := testDB.AddEventSource(ctx, tournament.ID, "https://www.vlr.gg/event/2097/champions", "Champions", "EMEA")
	assertFatalf(t, err == nil, "error adding event source: %v", err)

	err = testDB.UpdateSourceScraped(ctx, src.ID, 48)
	assertFatalf(t, err == nil, "error marking source scraped: %v", err)
	sources, err := testDB.GetEventSources(ctx, tournament.ID)
	assertFatalf(t, err == nil, "error listing sources: %v", err)
	assertEquals(t, "len(sources)", 1, len(sources))
	assertEquals(t, "PlayersFound", 48, sources[0].PlayersFound)
	if sources[0].LastScraped.IsZero() {
		t.Errorf("expected last_scraped to be set")
	}

	err = testDB.DeleteTournament(ctx, tournament.ID)
	assertFatalf(t, err == nil, "error deleting tournament: %v", err)

	_, err = testDB.GetTournament(ctx, tournament.ID)
	assertEquals(t, "error type", true, errors.Is(err, ErrTournamentNotFound))
}

func TestDB_upsertPlayerPreservesRoleAndManualPts(t *testing.T) {
	ctx := context.Background()
	tournament := createTournament(t)

	p := getPlayer(tournament.ID, "aspas")
	err := testDB.UpsertPlayer(ctx, p)
	assertFatalf(t, err == nil, "error upserting player: %v", err)

	err = testDB.UpdatePlayerRole(ctx, p.PlayerID, tournament.ID, model.RoleDuelist)
	assertFatalf(t, err == nil, "error updating role: %v", err)
	err = testDB.AdjustPlayerPoints(ctx, p.PlayerID, tournament.ID, 12.5, "missed map credit")
	assertFatalf(t, err == nil, "error adjusting points: %v", err)

	// A re-aggregation writes the row again with the default role.
	p.Kills = 99
	p.Role = model.RoleFlex
	err = testDB.UpsertPlayer(ctx, p)
	assertFatalf(t, err == nil, "error re-upserting player: %v", err)

	got, err := testDB.GetPlayer(ctx, p.PlayerID, tournament.ID)
	assertFatalf(t, err == nil, "error getting player: %v", err)
	assertEquals(t, "Kills", 99, got.Kills)
	assertEquals(t, "Role", model.RoleDuelist, got.Role)
	assertEquals(t, "ManualPts", 12.5, got.ManualPts)

	// A stub never overwrites an existing row.
	stub := getPlayer(tournament.ID, "aspas")
	stub.PlayerID = p.PlayerID
	stub.Kills = 0
	err = testDB.SavePlayerStub(ctx, stub)
	assertFatalf(t, err == nil, "error saving stub: %v", err)
	got, err = testDB.GetPlayer(ctx, p.PlayerID, tournament.ID)
	assertFatalf(t, err == nil, "error getting player: %v", err)
	assertEquals(t, "Kills after stub", 99, got.Kills)

	_, err = testDB.GetPlayer(ctx, "t0_nobody", tournament.ID)
	assertEquals(t, "error type", true, errors.Is(err, ErrPlayerNotFound))
}

func TestDB_playerAdjustmentLedger(t *testing.T) {
	ctx := context.Background()
	tournament := createTournament(t)

	p := getPlayer(tournament.ID, "chronicle")
	err := testDB.UpsertPlayer(ctx, p)
	assertFatalf(t, err == nil, "error upserting player: %v", err)

	err = testDB.AdjustPlayerPoints(ctx, p.PlayerID, tournament.ID, 10, "scrape miss")
	assertFatalf(t, err == nil, "error adjusting: %v", err)
	err = testDB.AdjustPlayerPoints(ctx, p.PlayerID, tournament.ID, -4, "correction")
	assertFatalf(t, err == nil, "error adjusting: %v", err)

	adjs, err := testDB.GetPlayerAdjustments(ctx, p.PlayerID, tournament.ID)
	assertFatalf(t, err == nil, "error listing adjustments: %v", err)
	assertEquals(t, "len(adjs)", 2, len(adjs))

	got, err := testDB.GetPlayer(ctx, p.PlayerID, tournament.ID)
	assertFatalf(t, err == nil, "error getting player: %v", err)
	assertEquals(t, "ManualPts", 6.0, got.ManualPts)

	// Deleting an entry reverses its delta.
	err = testDB.DeletePlayerAdjustment(ctx, adjs[1].ID)
	assertFatalf(t, err == nil, "error deleting adjustment: %v", err)
	got, err = testDB.GetPlayer(ctx, p.PlayerID, tournament.ID)
	assertFatalf(t, err == nil, "error getting player: %v", err)
	assertEquals(t, "ManualPts", -4.0, got.ManualPts)
}

func TestDB_listPlayersSortAndSearch(t *testing.T) {
	ctx := context.Background()
	tournament := createTournament(t)

	for _, spec := range []struct {
		ign   string
		team  string
		kills int
		role  model.Role
	}{
		{"Derke", "FNATIC", 50, model.RoleDuelist},
		{"Alfajer", "FNATIC", 40, model.RoleSentinel},
		{"something", "Paper Rex", 60, model.RoleDuelist},
	} {
		p := getPlayer(tournament.ID, spec.ign)
		p.Team = spec.team
		p.Kills = spec.kills
		p.Role = spec.role
		err := testDB.UpsertPlayer(ctx, p)
		assertFatalf(t, err == nil, "error upserting %s: %v", spec.ign, err)
	}

	players, err := testDB.ListPlayers(ctx, tournament.ID, ListPlayersOptions{SortBy: "kills"})
	assertFatalf(t, err == nil, "error listing players: %v", err)
	assertFatalf(t, len(players) == 3, "expected 3 players, got %d", len(players))
	assertEquals(t, "players[0]", "something", players[0].IGN)
	assertEquals(t, "players[2]", "Alfajer", players[2].IGN)

	// An unknown sort column falls back to fantasy_points instead of erroring.
	_, err = testDB.ListPlayers(ctx, tournament.ID, ListPlayersOptions{SortBy: "kills; DROP TABLE players"})
	assertFatalf(t, err == nil, "unexpected error with bogus sort column: %v", err)

	players, err = testDB.ListPlayers(ctx, tournament.ID, ListPlayersOptions{Search: "fnatic"})
	assertFatalf(t, err == nil, "error searching players: %v", err)
	assertEquals(t, "len(players)", 2, len(players))

	players, err = testDB.ListPlayers(ctx, tournament.ID, ListPlayersOptions{RoleFilter: model.RoleDuelist, SortBy: "ign", Ascending: true})
	assertFatalf(t, err == nil, "error filtering players: %v", err)
	assertEquals(t, "len(players)", 2, len(players))
	assertEquals(t, "players[0]", "Derke", players[0].IGN)
}

func TestDB_matchStatsRoundTripAndPatch(t *testing.T) {
	ctx := context.Background()
	tournament := createTournament(t)

	match := &model.Match{
		MatchID:      "500010",
		TournamentID: tournament.ID,
		URL:          "https://www.vlr.gg/500010/a-vs-b",
		TeamA:        "Sentinels",
		TeamB:        "FNATIC",
		ScoreA:       2,
		ScoreB:       1,
		MapCount:     3,
		Format:       model.FormatBo3,
		Status:       model.MatchCompleted,
	}
	err := testDB.UpsertMatch(ctx, match)
	assertFatalf(t, err == nil, "error upserting match: %v", err)

	s := &model.MatchStats{
		PlayerID:     fmt.Sprintf("t%d_10010_tenz", tournament.ID),
		TournamentID: tournament.ID,
		MatchID:      match.MatchID,
		MatchURL:     match.URL,
		IGN:          "TenZ",
		Team:         "Sentinels",
		Rating:       1.25,
		ACS:          260,
		Kills:        20,
		Deaths:       14,
		Assists:      6,
		KAST:         0,
		ADR:          155,
		Incomplete:   true,
		MissingFields: []string{
			"kast",
		},
	}
	err = testDB.UpsertMatchStats(ctx, s)
	assertFatalf(t, err == nil, "error upserting stats: %v", err)

	incomplete, err := testDB.IncompleteMatches(ctx, tournament.ID)
	assertFatalf(t, err == nil, "error listing incomplete: %v", err)
	assertEquals(t, "len(incomplete)", 1, len(incomplete))
	assertEquals(t, "MatchID", match.MatchID, incomplete[0].MatchID)
	assertEquals(t, "TeamA", "Sentinels", incomplete[0].TeamA)
	assertEquals(t, "AffectedPlayers[0]", "TenZ", incomplete[0].AffectedPlayers[0])

	// Filling in the missing KAST clears the incomplete flag.
	err = testDB.PatchMatchStats(ctx, s.PlayerID, s.MatchID, tournament.ID, map[string]float64{"kast": 72})
	assertFatalf(t, err == nil, "error patching stats: %v", err)

	stats, err := testDB.GetMatchStats(ctx, tournament.ID, s.PlayerID, s.MatchID)
	assertFatalf(t, err == nil, "error getting stats: %v", err)
	assertEquals(t, "len(stats)", 1, len(stats))
	assertEquals(t, "KAST", 72.0, stats[0].KAST)
	assertEquals(t, "Incomplete", false, stats[0].Incomplete)
	assertEquals(t, "len(MissingFields)", 0, len(stats[0].MissingFields))

	err = testDB.PatchMatchStats(ctx, s.PlayerID, s.MatchID, tournament.ID, map[string]float64{"match_url": 1})
	assertFatalf(t, err != nil, "expected an error patching a non-stat field")

	incomplete, err = testDB.IncompleteMatches(ctx, tournament.ID)
	assertFatalf(t, err == nil, "error listing incomplete: %v", err)
	assertEquals(t, "len(incomplete)", 0, len(incomplete))
}

func TestDB_leaguesAndRosters(t *testing.T) {
	ctx := context.Background()
	tournament := createTournament(t)

	rs := model.DefaultRuleset()
	league, err := testDB.CreateLeague(ctx, tournament.ID, uniqueName("friends league"), "", rs)
	assertFatalf(t, err == nil, "error creating league: %v", err)
	assertEquals(t, "Phase", model.PhaseSwiss, league.Phase)
	assertEquals(t, "TournamentName", tournament.Name, league.TournamentName)
	assertEquals(t, "TotalPlayers", 10, league.Ruleset.TotalPlayers)

	teamA, err := testDB.CreateFantasyTeam(ctx, league.ID, "Peak Ratters", "sam")
	assertFatalf(t, err == nil, "error creating team: %v", err)
	teamB, err := testDB.CreateFantasyTeam(ctx, league.ID, "Whiff City", "jordan")
	assertFatalf(t, err == nil, "error creating team: %v", err)

	p := getPlayer(tournament.ID, "leo")
	err = testDB.UpsertPlayer(ctx, p)
	assertFatalf(t, err == nil, "error upserting player: %v", err)

	entry := &model.RosterEntry{
		FantasyTeamID: teamA.ID,
		PlayerID:      p.PlayerID,
		TournamentID:  tournament.ID,
		RoleSlot:      model.RoleInitiator,
		Phase:         model.PhaseSwiss,
	}
	err = testDB.AddToRoster(ctx, entry)
	assertFatalf(t, err == nil, "error adding to roster: %v", err)
	assertFatalf(t, entry.ID > 0, "expected a roster entry id")

	// The same player can not be added to the same team and phase twice.
	err = testDB.AddToRoster(ctx, &model.RosterEntry{
		FantasyTeamID: teamA.ID,
		PlayerID:      p.PlayerID,
		TournamentID:  tournament.ID,
		RoleSlot:      model.RoleFlex,
		Phase:         model.PhaseSwiss,
	})
	assertEquals(t, "error type", true, errors.Is(err, ErrAlreadyOnRoster))

	// But another team may hold the same player.
	err = testDB.AddToRoster(ctx, &model.RosterEntry{
		FantasyTeamID: teamB.ID,
		PlayerID:      p.PlayerID,
		TournamentID:  tournament.ID,
		RoleSlot:      model.RoleInitiator,
		Phase:         model.PhaseSwiss,
	})
	assertFatalf(t, err == nil, "error adding to second roster: %v", err)

	assignments, err := testDB.PlayerRosterAssignments(ctx, p.PlayerID, tournament.ID)
	assertFatalf(t, err == nil, "error listing assignments: %v", err)
	assertEquals(t, "len(assignments)", 2, len(assignments))

	err = testDB.SetStarPlayer(ctx, teamA.ID, p.PlayerID, model.PhaseSwiss)
	assertFatalf(t, err == nil, "error setting star: %v", err)

	roster, err := testDB.GetRoster(ctx, teamA.ID, model.PhaseSwiss)
	assertFatalf(t, err == nil, "error getting roster: %v", err)
	assertEquals(t, "len(roster)", 1, len(roster))
	assertEquals(t, "Star", true, roster[0].Star)
	assertEquals(t, "IGN", p.IGN, roster[0].IGN)
	assertEquals(t, "RoleSlot", model.RoleInitiator, roster[0].RoleSlot)

	err = testDB.SetFollowedTeam(ctx, teamA.ID, "FNATIC", "EMEA")
	assertFatalf(t, err == nil, "error following team: %v", err)
	err = testDB.SetFollowedTeam(ctx, teamA.ID, "Team Heretics", "EMEA")
	assertFatalf(t, err == nil, "error re-following team: %v", err)
	ft, err := testDB.GetFollowedTeam(ctx, teamA.ID)
	assertFatalf(t, err == nil, "error getting followed team: %v", err)
	assertEquals(t, "TeamName", "Team Heretics", ft.TeamName)

	ft2, err := testDB.GetFollowedTeam(ctx, teamB.ID)
	assertFatalf(t, err == nil, "error getting followed team: %v", err)
	assertFatalf(t, ft2 == nil, "expected no followed team for teamB")
}

func TestDB_starMovesBetweenPlayers(t *testing.T) {
	ctx := context.Background()
	tournament := createTournament(t)

	league, err := testDB.CreateLeague(ctx, tournament.ID, uniqueName("league"), "", model.DefaultRuleset())
	assertFatalf(t, err == nil, "error creating league: %v", err)
	team, err := testDB.CreateFantasyTeam(ctx, league.ID, "Star Gazers", "casey")
	assertFatalf(t, err == nil, "error creating team: %v", err)

	first := getPlayer(tournament.ID, "aspas")
	second := getPlayer(tournament.ID, "demon1")
	for _, p := range []*model.Player{first, second} {
		err := testDB.UpsertPlayer(ctx, p)
		assertFatalf(t, err == nil, "error upserting player: %v", err)
	}
	err = testDB.AddToRoster(ctx, &model.RosterEntry{FantasyTeamID: team.ID, PlayerID: first.PlayerID, TournamentID: tournament.ID, RoleSlot: model.RoleDuelist, Phase: model.PhaseSwiss})
	assertFatalf(t, err == nil, "error adding to roster: %v", err)
	err = testDB.AddToRoster(ctx, &model.RosterEntry{FantasyTeamID: team.ID, PlayerID: second.PlayerID, TournamentID: tournament.ID, RoleSlot: model.RoleFlex, Phase: model.PhaseSwiss})
	assertFatalf(t, err == nil, "error adding to roster: %v", err)

	err = testDB.SetStarPlayer(ctx, team.ID, first.PlayerID, model.PhaseSwiss)
	assertFatalf(t, err == nil, "error setting star: %v", err)

	// Moving the star clears the previous holder in the same statement.
	err = testDB.SetStarPlayer(ctx, team.ID, second.PlayerID, model.PhaseSwiss)
	assertFatalf(t, err == nil, "error moving star: %v", err)

	roster, err := testDB.GetRoster(ctx, team.ID, model.PhaseSwiss)
	assertFatalf(t, err == nil, "error getting roster: %v", err)
	assertEquals(t, "len(roster)", 2, len(roster))

	starred := 0
	for _, rp := range roster {
		if rp.Star {
			starred++
			assertEquals(t, "starred player", second.PlayerID, rp.RosterEntry.PlayerID)
		}
	}
	assertEquals(t, "starred count", 1, starred)
}

func TestDB_transitionToPlayoffs(t *testing.T) {
	ctx := context.Background()
	tournament := createTournament(t)

	league, err := testDB.CreateLeague(ctx, tournament.ID, uniqueName("league"), "", model.DefaultRuleset())
	assertFatalf(t, err == nil, "error creating league: %v", err)
	team, err := testDB.CreateFantasyTeam(ctx, league.ID, "Keepers", "morgan")
	assertFatalf(t, err == nil, "error creating team: %v", err)

	keep := getPlayer(tournament.ID, "boaster")
	drop := getPlayer(tournament.ID, "enzo")
	for _, p := range []*model.Player{keep, drop} {
		err := testDB.UpsertPlayer(ctx, p)
		assertFatalf(t, err == nil, "error upserting player: %v", err)
	}

	keepEntry := &model.RosterEntry{FantasyTeamID: team.ID, PlayerID: keep.PlayerID, TournamentID: tournament.ID, RoleSlot: model.RoleController, Phase: model.PhaseSwiss}
	dropEntry := &model.RosterEntry{FantasyTeamID: team.ID, PlayerID: drop.PlayerID, TournamentID: tournament.ID, RoleSlot: model.RoleFlex, Phase: model.PhaseSwiss}
	for _, e := range []*model.RosterEntry{keepEntry, dropEntry} {
		err := testDB.AddToRoster(ctx, e)
		assertFatalf(t, err == nil, "error adding to roster: %v", err)
	}

	err = testDB.TransitionToPlayoffs(ctx, league.ID, []model.RosterEntry{*keepEntry})
	assertFatalf(t, err == nil, "error transitioning to playoffs: %v", err)

	swiss, err := testDB.GetRoster(ctx, team.ID, model.PhaseSwiss)
	assertFatalf(t, err == nil, "error getting swiss roster: %v", err)
	assertEquals(t, "len(swiss)", 1, len(swiss))
	assertEquals(t, "swiss[0]", keep.PlayerID, swiss[0].RosterEntry.PlayerID)

	playoffs, err := testDB.GetRoster(ctx, team.ID, model.PhasePlayoffs)
	assertFatalf(t, err == nil, "error getting playoffs roster: %v", err)
	assertEquals(t, "len(playoffs)", 1, len(playoffs))
	assertEquals(t, "playoffs[0]", keep.PlayerID, playoffs[0].RosterEntry.PlayerID)
	assertEquals(t, "RoleSlot", model.RoleController, playoffs[0].RoleSlot)

	got, err := testDB.GetLeague(ctx, league.ID)
	assertFatalf(t, err == nil, "error getting league: %v", err)
	assertEquals(t, "Phase", model.PhasePlayoffs, got.Phase)
}

func TestDB_acceptTradeSwapsSlots(t *testing.T) {
	ctx := context.Background()
	tournament := createTournament(t)

	league, err := testDB.CreateLeague(ctx, tournament.ID, uniqueName("league"), "", model.DefaultRuleset())
	assertFatalf(t, err == nil, "error creating league: %v", err)
	teamA, err := testDB.CreateFantasyTeam(ctx, league.ID, "Side A", "alex")
	assertFatalf(t, err == nil, "error creating team: %v", err)
	teamB, err := testDB.CreateFantasyTeam(ctx, league.ID, "Side B", "blake")
	assertFatalf(t, err == nil, "error creating team: %v", err)

	pa := getPlayer(tournament.ID, "zekken")
	pb := getPlayer(tournament.ID, "karon")
	for _, p := range []*model.Player{pa, pb} {
		err := testDB.UpsertPlayer(ctx, p)
		assertFatalf(t, err == nil, "error upserting player: %v", err)
	}
	err = testDB.AddToRoster(ctx, &model.RosterEntry{FantasyTeamID: teamA.ID, PlayerID: pa.PlayerID, TournamentID: tournament.ID, RoleSlot: model.RoleDuelist, Phase: model.PhaseSwiss})
	assertFatalf(t, err == nil, "error adding to roster: %v", err)
	err = testDB.AddToRoster(ctx, &model.RosterEntry{FantasyTeamID: teamB.ID, PlayerID: pb.PlayerID, TournamentID: tournament.ID, RoleSlot: model.RoleSentinel, Phase: model.PhaseSwiss})
	assertFatalf(t, err == nil, "error adding to roster: %v", err)

	trade, err := testDB.ProposeTrade(ctx, &model.Trade{
		LeagueID:     league.ID,
		FromTeamID:   teamA.ID,
		ToTeamID:     teamB.ID,
		FromPlayerID: pa.PlayerID,
		ToPlayerID:   pb.PlayerID,
		TournamentID: tournament.ID,
	})
	assertFatalf(t, err == nil, "error proposing trade: %v", err)
	assertEquals(t, "Status", model.TradePending, trade.Status)
	assertEquals(t, "FromTeamName", "Side A", trade.FromTeamName)
	assertEquals(t, "FromPlayerIGN", pa.IGN, trade.FromPlayerIGN)

	err = testDB.AcceptTrade(ctx, trade.ID)
	assertFatalf(t, err == nil, "error accepting trade: %v", err)

	// Each player lands in the other team's former slot.
	rosterA, err := testDB.GetRoster(ctx, teamA.ID, model.PhaseSwiss)
	assertFatalf(t, err == nil, "error getting roster: %v", err)
	assertEquals(t, "len(rosterA)", 1, len(rosterA))
	assertEquals(t, "rosterA player", pb.PlayerID, rosterA[0].RosterEntry.PlayerID)
	assertEquals(t, "rosterA slot", model.RoleDuelist, rosterA[0].RoleSlot)

	rosterB, err := testDB.GetRoster(ctx, teamB.ID, model.PhaseSwiss)
	assertFatalf(t, err == nil, "error getting roster: %v", err)
	assertEquals(t, "rosterB player", pa.PlayerID, rosterB[0].RosterEntry.PlayerID)
	assertEquals(t, "rosterB slot", model.RoleSentinel, rosterB[0].RoleSlot)

	// Accepting twice fails, the trade is already resolved.
	err = testDB.AcceptTrade(ctx, trade.ID)
	assertEquals(t, "error type", true, errors.Is(err, ErrTradeNotPending))
}

func TestDB_acceptTradeRequiresBothPlayers(t *testing.T) {
	ctx := context.Background()
	tournament := createTournament(t)

	league, err := testDB.CreateLeague(ctx, tournament.ID, uniqueName("league"), "", model.DefaultRuleset())
	assertFatalf(t, err == nil, "error creating league: %v", err)
	teamA, err := testDB.CreateFantasyTeam(ctx, league.ID, "Side A", "alex")
	assertFatalf(t, err == nil, "error creating team: %v", err)
	teamB, err := testDB.CreateFantasyTeam(ctx, league.ID, "Side B", "blake")
	assertFatalf(t, err == nil, "error creating team: %v", err)

	pa := getPlayer(tournament.ID, "sayf")
	err = testDB.UpsertPlayer(ctx, pa)
	assertFatalf(t, err == nil, "error upserting player: %v", err)
	err = testDB.AddToRoster(ctx, &model.RosterEntry{FantasyTeamID: teamA.ID, PlayerID: pa.PlayerID, TournamentID: tournament.ID, RoleSlot: model.RoleDuelist, Phase: model.PhaseSwiss})
	assertFatalf(t, err == nil, "error adding to roster: %v", err)

	trade, err := testDB.ProposeTrade(ctx, &model.Trade{
		LeagueID:     league.ID,
		FromTeamID:   teamA.ID,
		ToTeamID:     teamB.ID,
		FromPlayerID: pa.PlayerID,
		ToPlayerID:   "t0_missing",
		TournamentID: tournament.ID,
	})
	assertFatalf(t, err == nil, "error proposing trade: %v", err)

	err = testDB.AcceptTrade(ctx, trade.ID)
	assertEquals(t, "error type", true, errors.Is(err, ErrTradeNotSwappable))

	// The failed accept must not have touched the roster or the trade.
	rosterA, err := testDB.GetRoster(ctx, teamA.ID, model.PhaseSwiss)
	assertFatalf(t, err == nil, "error getting roster: %v", err)
	assertEquals(t, "len(rosterA)", 1, len(rosterA))
	got, err := testDB.GetTrade(ctx, trade.ID)
	assertFatalf(t, err == nil, "error getting trade: %v", err)
	assertEquals(t, "Status", model.TradePending, got.Status)

	err = testDB.CancelTrade(ctx, trade.ID)
	assertFatalf(t, err == nil, "error cancelling trade: %v", err)
	got, err = testDB.GetTrade(ctx, trade.ID)
	assertFatalf(t, err == nil, "error getting trade: %v", err)
	assertEquals(t, "Status", model.TradeCancelled, got.Status)
}

func TestDB_draftSessions(t *testing.T) {
	ctx := context.Background()
	tournament := createTournament(t)

	league, err := testDB.CreateLeague(ctx, tournament.ID, uniqueName("league"), "", model.DefaultRuleset())
	assertFatalf(t, err == nil, "error creating league: %v", err)

	none, err := testDB.ActiveDraft(ctx, league.ID)
	assertFatalf(t, err == nil, "error getting active draft: %v", err)
	assertFatalf(t, none == nil, "expected no active draft")

	d, err := testDB.CreateDraftSession(ctx, &model.DraftSession{
		LeagueID:   league.ID,
		Phase:      model.PhaseSwiss,
		TotalPicks: 4,
		SnakeOrder: []int64{1, 2, 2, 1},
	})
	assertFatalf(t, err == nil, "error creating draft: %v", err)
	assertEquals(t, "Status", model.DraftActive, d.Status)
	assertEquals(t, "CurrentPick", 1, d.CurrentPick)
	assertEquals(t, "CurrentDrafter", int64(1), d.CurrentDrafter())

	for i := 0; i < 4; i++ {
		err = testDB.AdvanceDraft(ctx, d.ID)
		assertFatalf(t, err == nil, "error advancing draft: %v", err)
	}

	// The last advance completed the session.
	active, err := testDB.ActiveDraft(ctx, league.ID)
	assertFatalf(t, err == nil, "error getting active draft: %v", err)
	assertFatalf(t, active == nil, "expected draft to be complete")

	err = testDB.AdvanceDraft(ctx, d.ID)
	assertEquals(t, "error type", true, errors.Is(err, ErrDraftNotFound))
}

func TestDB_teamAdjustmentsAndResults(t *testing.T) {
	ctx := context.Background()
	tournament := createTournament(t)

	league, err := testDB.CreateLeague(ctx, tournament.ID, uniqueName("league"), "", model.DefaultRuleset())
	assertFatalf(t, err == nil, "error creating league: %v", err)
	team, err := testDB.CreateFantasyTeam(ctx, league.ID, "Adjusted", "casey")
	assertFatalf(t, err == nil, "error creating team: %v", err)

	total, err := testDB.TotalAdjustments(ctx, team.ID)
	assertFatalf(t, err == nil, "error summing adjustments: %v", err)
	assertEquals(t, "total", 0.0, total)

	err = testDB.AddPointAdjustment(ctx, team.ID, 25, "won side bet")
	assertFatalf(t, err == nil, "error adding adjustment: %v", err)
	err = testDB.AddPointAdjustment(ctx, team.ID, -10, "late lineup")
	assertFatalf(t, err == nil, "error adding adjustment: %v", err)

	total, err = testDB.TotalAdjustments(ctx, team.ID)
	assertFatalf(t, err == nil, "error summing adjustments: %v", err)
	assertEquals(t, "total", 15.0, total)

	r := &model.TeamMatchResult{
		TournamentID: tournament.ID,
		TeamName:     "DRX",
		Opponent:     "Paper Rex",
		Result:       "win",
		Format:       model.FormatBo3,
	}
	err = testDB.AddMatchResult(ctx, r)
	assertFatalf(t, err == nil, "error adding match result: %v", err)

	results, err := testDB.GetMatchResults(ctx, tournament.ID, "DRX")
	assertFatalf(t, err == nil, "error listing results: %v", err)
	assertEquals(t, "len(results)", 1, len(results))
	assertEquals(t, "Result", "win", results[0].Result)
	assertEquals(t, "Format", model.FormatBo3, results[0].Format)
}

func createTournament(t *testing.T) *model.Tournament {
	t.Helper()
	tournament, err := testDB.CreateTournament(context.Background(), uniqueName("tournament"), "", "standard")
	if err != nil {
		t.Fatalf("error creating tournament: %v", err)
	}
	return tournament
}

func getPlayer(tournamentID int64, ign string) *model.Player {
	return &model.Player{
		PlayerID:      model.PlayerIDFromProfile("", ign, tournamentID),
		TournamentID:  tournamentID,
		IGN:           ign,
		Team:          "Test Team",
		TeamAbbr:      "TT",
		Region:        "EMEA",
		Role:          model.RoleFlex,
		MatchesPlayed: 2,
		Kills:         30,
		Deaths:        20,
		Assists:       10,
		Rating:        1.1,
		ACS:           230,
		KAST:          72,
		ADR:           150,
		FantasyPoints: 100,
	}
}

func uniqueName(prefix string) string {
	id := atomic.AddInt32(&nameCtr, 1)
	return fmt.Sprintf("%s-%d", prefix, id)
}

func assertFatalf(t *testing.T, c bool, f string, args ...any) {
	t.Helper()
	if !c {
		t.Fatalf(f, args...)
	}
}

func assertEquals(t *testing.T, field string, expected, actual any) {
	t.Helper()
	if expected != actual {
		t.Errorf("%s - expected: '%v', got: '%v'", field, expected, actual)
	}
}
