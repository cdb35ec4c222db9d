package web

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/unrolled/render"

	"github.com/mattwold/vct-fantasy/controller"
	"github.com/mattwold/vct-fantasy/model"
)

// rosterEntryResponse flattens a roster entry and its leaderboard row. The
// two embedded structs in model.RosterPlayer share field names, which
// encoding/json would silently drop, so the web layer keeps its own shape.
type rosterEntryResponse struct {
	PlayerID      string      `json:"player_id"`
	IGN           string      `json:"ign"`
	Team          string      `json:"team"`
	Region        string      `json:"region"`
	Role          model.Role  `json:"role"`
	RoleSlot      model.Role  `json:"role_slot"`
	Star          bool        `json:"star"`
	Duplicate     bool        `json:"duplicate"`
	Phase         model.Phase `json:"phase"`
	FantasyPoints float64     `json:"fantasy_points"`
	ManualPts     float64     `json:"manual_pts"`
	TotalPoints   float64     `json:"total_points"`
	Added         time.Time   `json:"added"`
}

func rosterResponse(roster []model.RosterPlayer) []rosterEntryResponse {
	out := make([]rosterEntryResponse, 0, len(roster))
	for _, rp := range roster {
		out = append(out, rosterEntryResponse{
			PlayerID:      rp.RosterEntry.PlayerID,
			IGN:           rp.IGN,
			Team:          rp.Player.Team,
			Region:        rp.Region,
			Role:          rp.Role,
			RoleSlot:      rp.RoleSlot,
			Star:          rp.Star,
			Duplicate:     rp.Duplicate,
			Phase:         rp.Phase,
			FantasyPoints: rp.FantasyPoints,
			ManualPts:     rp.ManualPts,
			TotalPoints:   rp.Player.TotalPoints(),
			Added:         rp.Added,
		})
	}
	return out
}

func createLeagueHandler(ctrl controller.C, render *render.Render) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			TournamentID int64         `json:"tournament_id"`
			Name         string        `json:"name"`
			Description  string        `json:"description"`
			Ruleset      model.Ruleset `json:"ruleset"`
		}
		if err := decodeBody(r, &body); err != nil {
			badRequest(render, w, err)
			return
		}
		l, err := ctrl.CreateLeague(r.Context(), body.TournamentID, body.Name, body.Description, body.Ruleset)
		if err != nil {
			renderError(render, w, err)
			return
		}
		render.JSON(w, http.StatusCreated, l)
	}
}

func listLeaguesHandler(ctrl controller.C, render *render.Render) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		leagues, err := ctrl.ListLeagues(r.Context())
		if err != nil {
			renderError(render, w, err)
			return
		}
		render.JSON(w, http.StatusOK, leagues)
	}
}

func getLeagueHandler(ctrl controller.C, render *render.Render) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := urlID(r, "leagueID")
		if err != nil {
			badRequest(render, w, err)
			return
		}
		l, err := ctrl.GetLeague(r.Context(), id)
		if err != nil {
			renderError(render, w, err)
			return
		}
		render.JSON(w, http.StatusOK, l)
	}
}

func deleteLeagueHandler(ctrl controller.C, render *render.Render) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := urlID(r, "leagueID")
		if err != nil {
			badRequest(render, w, err)
			return
		}
		if err := ctrl.DeleteLeague(r.Context(), id); err != nil {
			renderError(render, w, err)
			return
		}
		render.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	}
}

func updateRulesetHandler(ctrl controller.C, render *render.Render) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := urlID(r, "leagueID")
		if err != nil {
			badRequest(render, w, err)
			return
		}
		var rs model.Ruleset
		if err := decodeBody(r, &rs); err != nil {
			badRequest(render, w, err)
			return
		}
		if err := ctrl.UpdateRuleset(r.Context(), id, rs); err != nil {
			renderError(render, w, err)
			return
		}
		render.JSON(w, http.StatusOK, map[string]string{"status": "updated"})
	}
}

func transitionHandler(ctrl controller.C, render *render.Render) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := urlID(r, "leagueID")
		if err != nil {
			badRequest(render, w, err)
			return
		}
		var body struct {
			Kept map[int64][]string `json:"kept"`
		}
		if err := decodeBody(r, &body); err != nil {
			badRequest(render, w, err)
			return
		}
		if err := ctrl.TransitionToPlayoffs(r.Context(), id, body.Kept); err != nil {
			renderError(render, w, err)
			return
		}
		render.JSON(w, http.StatusOK, map[string]string{"status": "playoffs"})
	}
}

func standingsHandler(ctrl controller.C, render *render.Render) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := urlID(r, "leagueID")
		if err != nil {
			badRequest(render, w, err)
			return
		}

		var standings []model.TeamStanding
		if phase := r.URL.Query().Get("phase"); phase == "overall" {
			standings, err = ctrl.OverallStandings(r.Context(), id)
		} else {
			standings, err = ctrl.PhaseStandings(r.Context(), id, model.ParsePhase(phase))
		}
		if err != nil {
			renderError(render, w, err)
			return
		}
		render.JSON(w, http.StatusOK, standings)
	}
}

func createTeamHandler(ctrl controller.C, render *render.Render) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := urlID(r, "leagueID")
		if err != nil {
			badRequest(render, w, err)
			return
		}
		var body struct {
			TeamName    string `json:"team_name"`
			ManagerName string `json:"manager_name"`
		}
		if err := decodeBody(r, &body); err != nil {
			badRequest(render, w, err)
			return
		}
		team, err := ctrl.CreateFantasyTeam(r.Context(), id, body.TeamName, body.ManagerName)
		if err != nil {
			renderError(render, w, err)
			return
		}
		render.JSON(w, http.StatusCreated, team)
	}
}

func listTeamsHandler(ctrl controller.C, render *render.Render) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := urlID(r, "leagueID")
		if err != nil {
			badRequest(render, w, err)
			return
		}
		teams, err := ctrl.TeamsInLeague(r.Context(), id)
		if err != nil {
			renderError(render, w, err)
			return
		}
		render.JSON(w, http.StatusOK, teams)
	}
}

func getTeamHandler(ctrl controller.C, render *render.Render) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := urlID(r, "teamID")
		if err != nil {
			badRequest(render, w, err)
			return
		}
		team, err := ctrl.GetFantasyTeam(r.Context(), id)
		if err != nil {
			renderError(render, w, err)
			return
		}
		render.JSON(w, http.StatusOK, team)
	}
}

func renameTeamHandler(ctrl controller.C, render *render.Render) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := urlID(r, "teamID")
		if err != nil {
			badRequest(render, w, err)
			return
		}
		var body struct {
			TeamName    string `json:"team_name"`
			ManagerName string `json:"manager_name"`
		}
		if err := decodeBody(r, &body); err != nil {
			badRequest(render, w, err)
			return
		}
		if err := ctrl.RenameFantasyTeam(r.Context(), id, body.TeamName, body.ManagerName); err != nil {
			renderError(render, w, err)
			return
		}
		render.JSON(w, http.StatusOK, map[string]string{"status": "updated"})
	}
}

func deleteTeamHandler(ctrl controller.C, render *render.Render) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := urlID(r, "teamID")
		if err != nil {
			badRequest(render, w, err)
			return
		}
		if err := ctrl.DeleteFantasyTeam(r.Context(), id); err != nil {
			renderError(render, w, err)
			return
		}
		render.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	}
}

func getRosterHandler(ctrl controller.C, render *render.Render) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := urlID(r, "teamID")
		if err != nil {
			badRequest(render, w, err)
			return
		}
		phase := model.ParsePhase(r.URL.Query().Get("phase"))
		roster, err := ctrl.GetRoster(r.Context(), id, phase)
		if err != nil {
			renderError(render, w, err)
			return
		}
		render.JSON(w, http.StatusOK, rosterResponse(roster))
	}
}

func addToRosterHandler(ctrl controller.C, render *render.Render) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := urlID(r, "teamID")
		if err != nil {
			badRequest(render, w, err)
			return
		}
		var body struct {
			PlayerID string `json:"player_id"`
			RoleSlot string `json:"role_slot"`
			Phase    string `json:"phase"`
		}
		if err := decodeBody(r, &body); err != nil {
			badRequest(render, w, err)
			return
		}
		err = ctrl.AddPlayerToRoster(r.Context(), id, body.PlayerID,
			model.ParseRole(body.RoleSlot), model.ParsePhase(body.Phase))
		if err != nil {
			renderError(render, w, err)
			return
		}
		render.JSON(w, http.StatusCreated, map[string]string{"status": "added"})
	}
}

func removeFromRosterHandler(ctrl controller.C, render *render.Render) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := urlID(r, "teamID")
		if err != nil {
			badRequest(render, w, err)
			return
		}
		phase := model.ParsePhase(r.URL.Query().Get("phase"))
		if err := ctrl.RemovePlayerFromRoster(r.Context(), id, chi.URLParam(r, "playerID"), phase); err != nil {
			renderError(render, w, err)
			return
		}
		render.JSON(w, http.StatusOK, map[string]string{"status": "removed"})
	}
}

func setStarHandler(ctrl controller.C, render *render.Render) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := urlID(r, "teamID")
		if err != nil {
			badRequest(render, w, err)
			return
		}
		var body struct {
			PlayerID string `json:"player_id"`
			Phase    string `json:"phase"`
		}
		if err := decodeBody(r, &body); err != nil {
			badRequest(render, w, err)
			return
		}
		if err := ctrl.SetStarPlayer(r.Context(), id, body.PlayerID, model.ParsePhase(body.Phase)); err != nil {
			renderError(render, w, err)
			return
		}
		render.JSON(w, http.StatusOK, map[string]string{"status": "starred"})
	}
}

func clearStarHandler(ctrl controller.C, render *render.Render) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := urlID(r, "teamID")
		if err != nil {
			badRequest(render, w, err)
			return
		}
		phase := model.ParsePhase(r.URL.Query().Get("phase"))
		if err := ctrl.ClearStarPlayer(r.Context(), id, phase); err != nil {
			renderError(render, w, err)
			return
		}
		render.JSON(w, http.StatusOK, map[string]string{"status": "cleared"})
	}
}

func followTeamHandler(ctrl controller.C, render *render.Render) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := urlID(r, "teamID")
		if err != nil {
			badRequest(render, w, err)
			return
		}
		var body struct {
			TeamName string `json:"team_name"`
		}
		if err := decodeBody(r, &body); err != nil {
			badRequest(render, w, err)
			return
		}
		if err := ctrl.FollowTeam(r.Context(), id, body.TeamName); err != nil {
			renderError(render, w, err)
			return
		}
		render.JSON(w, http.StatusOK, map[string]string{"status": "following"})
	}
}

func getFollowedTeamHandler(ctrl controller.C, render *render.Render) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := urlID(r, "teamID")
		if err != nil {
			badRequest(render, w, err)
			return
		}
		followed, err := ctrl.GetFollowedTeam(r.Context(), id)
		if err != nil {
			renderError(render, w, err)
			return
		}
		if followed == nil {
			render.JSON(w, http.StatusNotFound, map[string]string{"error": "no followed team"})
			return
		}
		render.JSON(w, http.StatusOK, followed)
	}
}

func unfollowTeamHandler(ctrl controller.C, render *render.Render) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := urlID(r, "teamID")
		if err != nil {
			badRequest(render, w, err)
			return
		}
		if err := ctrl.UnfollowTeam(r.Context(), id); err != nil {
			renderError(render, w, err)
			return
		}
		render.JSON(w, http.StatusOK, map[string]string{"status": "unfollowed"})
	}
}

func teamAdjustmentsHandler(ctrl controller.C, render *render.Render) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := urlID(r, "teamID")
		if err != nil {
			badRequest(render, w, err)
			return
		}
		adjustments, err := ctrl.GetAdjustments(r.Context(), id)
		if err != nil {
			renderError(render, w, err)
			return
		}
		render.JSON(w, http.StatusOK, adjustments)
	}
}

func addTeamAdjustmentHandler(ctrl controller.C, render *render.Render) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := urlID(r, "teamID")
		if err != nil {
			badRequest(render, w, err)
			return
		}
		var body struct {
			Amount float64 `json:"amount"`
			Reason string  `json:"reason"`
		}
		if err := decodeBody(r, &body); err != nil {
			badRequest(render, w, err)
			return
		}
		if err := ctrl.AddPointAdjustment(r.Context(), id, body.Amount, body.Reason); err != nil {
			renderError(render, w, err)
			return
		}
		render.JSON(w, http.StatusCreated, map[string]string{"status": "adjusted"})
	}
}

func deleteTeamAdjustmentHandler(ctrl controller.C, render *render.Render) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := urlID(r, "adjID")
		if err != nil {
			badRequest(render, w, err)
			return
		}
		if err := ctrl.DeleteAdjustment(r.Context(), id); err != nil {
			renderError(render, w, err)
			return
		}
		render.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	}
}

func proposeTradeHandler(ctrl controller.C, render *render.Render) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := urlID(r, "leagueID")
		if err != nil {
			badRequest(render, w, err)
			return
		}
		var body struct {
			FromTeamID   int64  `json:"from_team_id"`
			ToTeamID     int64  `json:"to_team_id"`
			FromPlayerID string `json:"from_player_id"`
			ToPlayerID   string `json:"to_player_id"`
		}
		if err := decodeBody(r, &body); err != nil {
			badRequest(render, w, err)
			return
		}
		trade, err := ctrl.ProposeTrade(r.Context(), id, body.FromTeamID, body.ToTeamID, body.FromPlayerID, body.ToPlayerID)
		if err != nil {
			renderError(render, w, err)
			return
		}
		render.JSON(w, http.StatusCreated, trade)
	}
}

func listTradesHandler(ctrl controller.C, render *render.Render) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := urlID(r, "leagueID")
		if err != nil {
			badRequest(render, w, err)
			return
		}
		trades, err := ctrl.ListTrades(r.Context(), id)
		if err != nil {
			renderError(render, w, err)
			return
		}
		render.JSON(w, http.StatusOK, trades)
	}
}

func resolveTradeHandler(ctrl controller.C, render *render.Render, action string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := urlID(r, "tradeID")
		if err != nil {
			badRequest(render, w, err)
			return
		}

		switch action {
		case "accept":
			err = ctrl.AcceptTrade(r.Context(), id)
		case "reject":
			err = ctrl.RejectTrade(r.Context(), id)
		case "cancel":
			err = ctrl.CancelTrade(r.Context(), id)
		}
		if err != nil {
			renderError(render, w, err)
			return
		}
		render.JSON(w, http.StatusOK, map[string]string{"status": action + "ed"})
	}
}

func startDraftHandler(ctrl controller.C, render *render.Render) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := urlID(r, "leagueID")
		if err != nil {
			badRequest(render, w, err)
			return
		}
		var body struct {
			Phase string `json:"phase"`
		}
		if err := decodeBody(r, &body); err != nil {
			badRequest(render, w, err)
			return
		}
		draft, err := ctrl.StartDraft(r.Context(), id, model.ParsePhase(body.Phase))
		if err != nil {
			renderError(render, w, err)
			return
		}
		render.JSON(w, http.StatusCreated, draft)
	}
}

func activeDraftHandler(ctrl controller.C, render *render.Render) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := urlID(r, "leagueID")
		if err != nil {
			badRequest(render, w, err)
			return
		}
		draft, err := ctrl.ActiveDraft(r.Context(), id)
		if err != nil {
			renderError(render, w, err)
			return
		}
		if draft == nil {
			render.JSON(w, http.StatusNotFound, map[string]string{"error": "no active draft"})
			return
		}
		render.JSON(w, http.StatusOK, draft)
	}
}

func draftPickHandler(ctrl controller.C, render *render.Render) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := urlID(r, "leagueID")
		if err != nil {
			badRequest(render, w, err)
			return
		}
		var body struct {
			FantasyTeamID int64  `json:"fantasy_team_id"`
			PlayerID      string `json:"player_id"`
			RoleSlot      string `json:"role_slot"`
		}
		if err := decodeBody(r, &body); err != nil {
			badRequest(render, w, err)
			return
		}
		err = ctrl.DraftPick(r.Context(), id, body.FantasyTeamID, body.PlayerID, model.ParseRole(body.RoleSlot))
		if err != nil {
			renderError(render, w, err)
			return
		}
		render.JSON(w, http.StatusOK, map[string]string{"status": "picked"})
	}
}

func cancelDraftHandler(ctrl controller.C, render *render.Render) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := urlID(r, "leagueID")
		if err != nil {
			badRequest(render, w, err)
			return
		}
		if err := ctrl.CancelDraft(r.Context(), id); err != nil {
			renderError(render, w, err)
			return
		}
		render.JSON(w, http.StatusOK, map[string]string{"status": "cancelled"})
	}
}
