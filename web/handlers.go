package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/unrolled/render"

	"github.com/mattwold/vct-fantasy/controller"
	"github.com/mattwold/vct-fantasy/db"
	"github.com/mattwold/vct-fantasy/model"
	"github.com/mattwold/vct-fantasy/points"
)

func rootHandler(render *render.Render) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, http.StatusOK, map[string]string{"service": "vct-fantasy"})
	}
}

// urlID parses a numeric chi URL parameter.
func urlID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("error parsing %s: %v", name, err)
	}
	return id, nil
}

func decodeBody(r *http.Request, v any) error {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("error parsing request body: %v", err)
	}
	return nil
}

// renderError maps the db sentinel errors onto HTTP statuses. Anything the
// controller rejected outright comes through as a 500 rather than trying to
// guess at client vs server fault.
func renderError(render *render.Render, w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, db.ErrPlayerNotFound),
		errors.Is(err, db.ErrTournamentNotFound),
		errors.Is(err, db.ErrLeagueNotFound),
		errors.Is(err, db.ErrTeamNotFound),
		errors.Is(err, db.ErrTradeNotFound),
		errors.Is(err, db.ErrDraftNotFound):
		status = http.StatusNotFound
	case errors.Is(err, db.ErrAlreadyOnRoster),
		errors.Is(err, db.ErrTradeNotPending),
		errors.Is(err, db.ErrTradeNotSwappable):
		status = http.StatusConflict
	}
	render.JSON(w, status, map[string]string{"error": err.Error()})
}

func badRequest(render *render.Render, w http.ResponseWriter, err error) {
	render.JSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
}

func listTournamentsHandler(ctrl controller.C, render *render.Render) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tournaments, err := ctrl.ListTournaments(r.Context())
		if err != nil {
			renderError(render, w, err)
			return
		}
		render.JSON(w, http.StatusOK, tournaments)
	}
}

func getTournamentHandler(ctrl controller.C, render *render.Render) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := urlID(r, "tournamentID")
		if err != nil {
			badRequest(render, w, err)
			return
		}
		t, err := ctrl.GetTournament(r.Context(), id)
		if err != nil {
			renderError(render, w, err)
			return
		}
		render.JSON(w, http.StatusOK, t)
	}
}

func createTournamentHandler(ctrl controller.C, render *render.Render) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Name        string `json:"name"`
			Description string `json:"description"`
			Format      string `json:"format"`
		}
		if err := decodeBody(r, &body); err != nil {
			badRequest(render, w, err)
			return
		}
		t, err := ctrl.CreateTournament(r.Context(), body.Name, body.Description, body.Format)
		if err != nil {
			renderError(render, w, err)
			return
		}
		render.JSON(w, http.StatusCreated, t)
	}
}

func deleteTournamentHandler(ctrl controller.C, render *render.Render) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := urlID(r, "tournamentID")
		if err != nil {
			badRequest(render, w, err)
			return
		}
		if err := ctrl.DeleteTournament(r.Context(), id); err != nil {
			renderError(render, w, err)
			return
		}
		render.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	}
}

func listSourcesHandler(ctrl controller.C, render *render.Render) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := urlID(r, "tournamentID")
		if err != nil {
			badRequest(render, w, err)
			return
		}
		sources, err := ctrl.GetEventSources(r.Context(), id)
		if err != nil {
			renderError(render, w, err)
			return
		}
		render.JSON(w, http.StatusOK, sources)
	}
}

func addSourceHandler(ctrl controller.C, render *render.Render) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := urlID(r, "tournamentID")
		if err != nil {
			badRequest(render, w, err)
			return
		}
		var body struct {
			URL    string `json:"url"`
			Region string `json:"region"`
		}
		if err := decodeBody(r, &body); err != nil {
			badRequest(render, w, err)
			return
		}
		src, err := ctrl.AddEventSource(r.Context(), id, body.URL, body.Region)
		if err != nil {
			renderError(render, w, err)
			return
		}
		render.JSON(w, http.StatusCreated, src)
	}
}

func deleteSourceHandler(ctrl controller.C, render *render.Render) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := urlID(r, "sourceID")
		if err != nil {
			badRequest(render, w, err)
			return
		}
		if err := ctrl.DeleteEventSource(r.Context(), id); err != nil {
			renderError(render, w, err)
			return
		}
		render.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	}
}

func refreshHandler(ctrl controller.C, render *render.Render) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := urlID(r, "tournamentID")
		if err != nil {
			badRequest(render, w, err)
			return
		}
		if err := ctrl.RefreshTournament(r.Context(), id); err != nil {
			renderError(render, w, err)
			return
		}
		render.JSON(w, http.StatusOK, map[string]string{"status": "refreshed"})
	}
}

func recomputeHandler(ctrl controller.C, render *render.Render) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := urlID(r, "tournamentID")
		if err != nil {
			badRequest(render, w, err)
			return
		}
		if err := ctrl.RecomputeTournamentPoints(r.Context(), id); err != nil {
			renderError(render, w, err)
			return
		}
		render.JSON(w, http.StatusOK, map[string]string{"status": "recomputed"})
	}
}

func lastScrapeHandler(ctrl controller.C, render *render.Render) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := urlID(r, "tournamentID")
		if err != nil {
			badRequest(render, w, err)
			return
		}
		log, err := ctrl.LastScrape(r.Context(), id)
		if err != nil {
			renderError(render, w, err)
			return
		}
		if log == nil {
			render.JSON(w, http.StatusNotFound, map[string]string{"error": "no scrapes recorded"})
			return
		}
		render.JSON(w, http.StatusOK, log)
	}
}

func leaderboardHandler(ctrl controller.C, render *render.Render) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := urlID(r, "tournamentID")
		if err != nil {
			badRequest(render, w, err)
			return
		}
		q := r.URL.Query()
		opts := db.ListPlayersOptions{
			SortBy:    q.Get("sort"),
			Ascending: q.Get("order") == "asc",
			Search:    q.Get("q"),
		}
		if role := q.Get("role"); role != "" {
			opts.RoleFilter = model.ParseRole(role)
		}
		players, err := ctrl.ListPlayers(r.Context(), id, opts)
		if err != nil {
			renderError(render, w, err)
			return
		}
		render.JSON(w, http.StatusOK, players)
	}
}

func getPlayerHandler(ctrl controller.C, render *render.Render) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tournamentID, err := urlID(r, "tournamentID")
		if err != nil {
			badRequest(render, w, err)
			return
		}
		p, err := ctrl.GetPlayer(r.Context(), chi.URLParam(r, "playerID"), tournamentID)
		if err != nil {
			renderError(render, w, err)
			return
		}
		render.JSON(w, http.StatusOK, p)
	}
}

func playerStatsHandler(ctrl controller.C, render *render.Render) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tournamentID, err := urlID(r, "tournamentID")
		if err != nil {
			badRequest(render, w, err)
			return
		}
		stats, err := ctrl.GetMatchStats(r.Context(), tournamentID, chi.URLParam(r, "playerID"), "")
		if err != nil {
			renderError(render, w, err)
			return
		}
		render.JSON(w, http.StatusOK, stats)
	}
}

func playerBreakdownHandler(ctrl controller.C, render *render.Render) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tournamentID, err := urlID(r, "tournamentID")
		if err != nil {
			badRequest(render, w, err)
			return
		}
		p, err := ctrl.GetPlayer(r.Context(), chi.URLParam(r, "playerID"), tournamentID)
		if err != nil {
			renderError(render, w, err)
			return
		}

		line := p.StatLine()
		data := map[string]any{
			"role":        p.Role,
			"base":        p.BasePoints,
			"role_bonus":  p.RolePoints,
			"total":       p.FantasyPoints,
			"breakdown":   points.Breakdown(line),
			"role_totals": points.AllRolePoints(line),
		}
		render.JSON(w, http.StatusOK, data)
	}
}

func setRoleHandler(ctrl controller.C, render *render.Render) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tournamentID, err := urlID(r, "tournamentID")
		if err != nil {
			badRequest(render, w, err)
			return
		}
		var body struct {
			Role string `json:"role"`
		}
		if err := decodeBody(r, &body); err != nil {
			badRequest(render, w, err)
			return
		}
		playerID := chi.URLParam(r, "playerID")
		if err := ctrl.SetPlayerRole(r.Context(), playerID, tournamentID, model.ParseRole(body.Role)); err != nil {
			renderError(render, w, err)
			return
		}
		p, err := ctrl.GetPlayer(r.Context(), playerID, tournamentID)
		if err != nil {
			renderError(render, w, err)
			return
		}
		render.JSON(w, http.StatusOK, p)
	}
}

func setRegionHandler(ctrl controller.C, render *render.Render) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tournamentID, err := urlID(r, "tournamentID")
		if err != nil {
			badRequest(render, w, err)
			return
		}
		var body struct {
			Region string `json:"region"`
		}
		if err := decodeBody(r, &body); err != nil {
			badRequest(render, w, err)
			return
		}
		if err := ctrl.SetPlayerRegion(r.Context(), chi.URLParam(r, "playerID"), tournamentID, body.Region); err != nil {
			renderError(render, w, err)
			return
		}
		render.JSON(w, http.StatusOK, map[string]string{"status": "updated"})
	}
}

func adjustPlayerHandler(ctrl controller.C, render *render.Render) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tournamentID, err := urlID(r, "tournamentID")
		if err != nil {
			badRequest(render, w, err)
			return
		}
		var body struct {
			Delta  float64 `json:"delta"`
			Reason string  `json:"reason"`
		}
		if err := decodeBody(r, &body); err != nil {
			badRequest(render, w, err)
			return
		}
		if err := ctrl.AdjustPlayerPoints(r.Context(), chi.URLParam(r, "playerID"), tournamentID, body.Delta, body.Reason); err != nil {
			renderError(render, w, err)
			return
		}
		render.JSON(w, http.StatusOK, map[string]string{"status": "adjusted"})
	}
}

func playerAdjustmentsHandler(ctrl controller.C, render *render.Render) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tournamentID, err := urlID(r, "tournamentID")
		if err != nil {
			badRequest(render, w, err)
			return
		}
		adjustments, err := ctrl.GetPlayerAdjustments(r.Context(), chi.URLParam(r, "playerID"), tournamentID)
		if err != nil {
			renderError(render, w, err)
			return
		}
		render.JSON(w, http.StatusOK, adjustments)
	}
}

func deletePlayerAdjustmentHandler(ctrl controller.C, render *render.Render) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := urlID(r, "adjID")
		if err != nil {
			badRequest(render, w, err)
			return
		}
		if err := ctrl.DeletePlayerAdjustment(r.Context(), id); err != nil {
			renderError(render, w, err)
			return
		}
		render.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	}
}

func listMatchesHandler(ctrl controller.C, render *render.Render) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := urlID(r, "tournamentID")
		if err != nil {
			badRequest(render, w, err)
			return
		}
		matches, err := ctrl.ListMatches(r.Context(), id)
		if err != nil {
			renderError(render, w, err)
			return
		}
		render.JSON(w, http.StatusOK, matches)
	}
}

func upcomingMatchesHandler(ctrl controller.C, render *render.Render) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := urlID(r, "tournamentID")
		if err != nil {
			badRequest(render, w, err)
			return
		}
		matches, err := ctrl.UpcomingMatches(r.Context(), id)
		if err != nil {
			renderError(render, w, err)
			return
		}
		render.JSON(w, http.StatusOK, matches)
	}
}

func incompleteMatchesHandler(ctrl controller.C, render *render.Render) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := urlID(r, "tournamentID")
		if err != nil {
			badRequest(render, w, err)
			return
		}
		matches, err := ctrl.IncompleteMatches(r.Context(), id)
		if err != nil {
			renderError(render, w, err)
			return
		}
		render.JSON(w, http.StatusOK, matches)
	}
}

func patchStatsHandler(ctrl controller.C, render *render.Render) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tournamentID, err := urlID(r, "tournamentID")
		if err != nil {
			badRequest(render, w, err)
			return
		}
		fields := make(map[string]float64)
		if err := decodeBody(r, &fields); err != nil {
			badRequest(render, w, err)
			return
		}
		playerID := chi.URLParam(r, "playerID")
		matchID := chi.URLParam(r, "matchID")
		if err := ctrl.PatchMatchStats(r.Context(), playerID, matchID, tournamentID, fields); err != nil {
			renderError(render, w, err)
			return
		}
		render.JSON(w, http.StatusOK, map[string]string{"status": "patched"})
	}
}

func matchResultsHandler(ctrl controller.C, render *render.Render) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := urlID(r, "tournamentID")
		if err != nil {
			badRequest(render, w, err)
			return
		}
		results, err := ctrl.GetMatchResults(r.Context(), id, r.URL.Query().Get("team"))
		if err != nil {
			renderError(render, w, err)
			return
		}
		render.JSON(w, http.StatusOK, results)
	}
}

func addResultHandler(ctrl controller.C, render *render.Render) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := urlID(r, "tournamentID")
		if err != nil {
			badRequest(render, w, err)
			return
		}
		var body struct {
			Team     string `json:"team"`
			Opponent string `json:"opponent"`
			Result   string `json:"result"`
			Format   string `json:"format"`
		}
		if err := decodeBody(r, &body); err != nil {
			badRequest(render, w, err)
			return
		}
		result := &model.TeamMatchResult{
			TournamentID: id,
			TeamName:     body.Team,
			Opponent:     body.Opponent,
			Result:       body.Result,
			Format:       model.MatchFormat(body.Format),
		}
		if err := ctrl.AddMatchResult(r.Context(), result); err != nil {
			renderError(render, w, err)
			return
		}
		render.JSON(w, http.StatusCreated, result)
	}
}

func deleteResultHandler(ctrl controller.C, render *render.Render) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := urlID(r, "resultID")
		if err != nil {
			badRequest(render, w, err)
			return
		}
		if err := ctrl.DeleteMatchResult(r.Context(), id); err != nil {
			renderError(render, w, err)
			return
		}
		render.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	}
}
