package web

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/unrolled/render"

	"github.com/mattwold/vct-fantasy/controller"
)

func getRouter(ctrl controller.C, render *render.Render, adminPassword string) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Set a timeout value on the request context (ctx), that will signal
	// through ctx.Done() that the request has timed out and further
	// processing should be stopped.
	r.Use(middleware.Timeout(10 * time.Second))

	r.Get("/", rootHandler(render))

	r.Route("/tournaments", func(r chi.Router) {
		r.Get("/", listTournamentsHandler(ctrl, render))
		r.Get("/{tournamentID:\\d+}", getTournamentHandler(ctrl, render))

		r.Route("/{tournamentID:\\d+}/players", func(r chi.Router) {
			r.Get("/", leaderboardHandler(ctrl, render))
			r.Get("/{playerID}", getPlayerHandler(ctrl, render))
			r.Get("/{playerID}/stats", playerStatsHandler(ctrl, render))
			r.Get("/{playerID}/breakdown", playerBreakdownHandler(ctrl, render))
			r.Get("/{playerID}/adjustments", playerAdjustmentsHandler(ctrl, render))
		})

		r.Get("/{tournamentID:\\d+}/matches", listMatchesHandler(ctrl, render))
		r.Get("/{tournamentID:\\d+}/matches/upcoming", upcomingMatchesHandler(ctrl, render))
		r.Get("/{tournamentID:\\d+}/matches/incomplete", incompleteMatchesHandler(ctrl, render))
		r.Get("/{tournamentID:\\d+}/sources", listSourcesHandler(ctrl, render))
		r.Get("/{tournamentID:\\d+}/scrapes/latest", lastScrapeHandler(ctrl, render))
		r.Get("/{tournamentID:\\d+}/results", matchResultsHandler(ctrl, render))
	})

	r.Route("/leagues", func(r chi.Router) {
		r.Post("/", createLeagueHandler(ctrl, render))
		r.Get("/", listLeaguesHandler(ctrl, render))
		r.Get("/{leagueID:\\d+}", getLeagueHandler(ctrl, render))
		r.Delete("/{leagueID:\\d+}", deleteLeagueHandler(ctrl, render))
		r.Put("/{leagueID:\\d+}/ruleset", updateRulesetHandler(ctrl, render))
		r.Post("/{leagueID:\\d+}/transition", transitionHandler(ctrl, render))
		r.Get("/{leagueID:\\d+}/standings", standingsHandler(ctrl, render))

		r.Post("/{leagueID:\\d+}/teams", createTeamHandler(ctrl, render))
		r.Get("/{leagueID:\\d+}/teams", listTeamsHandler(ctrl, render))

		r.Post("/{leagueID:\\d+}/trades", proposeTradeHandler(ctrl, render))
		r.Get("/{leagueID:\\d+}/trades", listTradesHandler(ctrl, render))

		r.Post("/{leagueID:\\d+}/draft", startDraftHandler(ctrl, render))
		r.Get("/{leagueID:\\d+}/draft", activeDraftHandler(ctrl, render))
		r.Post("/{leagueID:\\d+}/draft/pick", draftPickHandler(ctrl, render))
		r.Delete("/{leagueID:\\d+}/draft", cancelDraftHandler(ctrl, render))
	})

	r.Route("/teams/{teamID:\\d+}", func(r chi.Router) {
		r.Get("/", getTeamHandler(ctrl, render))
		r.Put("/", renameTeamHandler(ctrl, render))
		r.Delete("/", deleteTeamHandler(ctrl, render))

		r.Get("/roster", getRosterHandler(ctrl, render))
		r.Post("/roster", addToRosterHandler(ctrl, render))
		r.Delete("/roster/{playerID}", removeFromRosterHandler(ctrl, render))
		r.Post("/star", setStarHandler(ctrl, render))
		r.Delete("/star", clearStarHandler(ctrl, render))
		r.Get("/follow", getFollowedTeamHandler(ctrl, render))
		r.Post("/follow", followTeamHandler(ctrl, render))
		r.Delete("/follow", unfollowTeamHandler(ctrl, render))
		r.Get("/adjustments", teamAdjustmentsHandler(ctrl, render))
	})

	r.Route("/trades/{tradeID:\\d+}", func(r chi.Router) {
		r.Post("/accept", resolveTradeHandler(ctrl, render, "accept"))
		r.Post("/reject", resolveTradeHandler(ctrl, render, "reject"))
		r.Post("/cancel", resolveTradeHandler(ctrl, render, "cancel"))
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(middleware.BasicAuth("vct-fantasy", map[string]string{"admin": adminPassword}))
		r.Use(middleware.Timeout(10 * time.Minute)) // Scrapes take a while

		r.Post("/tournaments", createTournamentHandler(ctrl, render))
		r.Delete("/tournaments/{tournamentID:\\d+}", deleteTournamentHandler(ctrl, render))
		r.Post("/tournaments/{tournamentID:\\d+}/sources", addSourceHandler(ctrl, render))
		r.Delete("/sources/{sourceID:\\d+}", deleteSourceHandler(ctrl, render))
		r.Post("/tournaments/{tournamentID:\\d+}/refresh", refreshHandler(ctrl, render))
		r.Post("/tournaments/{tournamentID:\\d+}/recompute", recomputeHandler(ctrl, render))

		r.Put("/tournaments/{tournamentID:\\d+}/players/{playerID}/role", setRoleHandler(ctrl, render))
		r.Put("/tournaments/{tournamentID:\\d+}/players/{playerID}/region", setRegionHandler(ctrl, render))
		r.Post("/tournaments/{tournamentID:\\d+}/players/{playerID}/adjustments", adjustPlayerHandler(ctrl, render))
		r.Delete("/player-adjustments/{adjID:\\d+}", deletePlayerAdjustmentHandler(ctrl, render))
		r.Patch("/tournaments/{tournamentID:\\d+}/matches/{matchID}/players/{playerID}", patchStatsHandler(ctrl, render))

		r.Post("/tournaments/{tournamentID:\\d+}/results", addResultHandler(ctrl, render))
		r.Delete("/results/{resultID:\\d+}", deleteResultHandler(ctrl, render))
		r.Post("/teams/{teamID:\\d+}/adjustments", addTeamAdjustmentHandler(ctrl, render))
		r.Delete("/team-adjustments/{adjID:\\d+}", deleteTeamAdjustmentHandler(ctrl, render))
	})

	return r
}
