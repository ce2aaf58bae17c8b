package handler

import (
	"net/http"
	"time"

	"overmind/internal/api/middleware"
	"overmind/internal/app/service"
	"overmind/internal/common"

	"github.com/go-chi/chi/v5"
)

type ChallengeHandler struct {
	blueprintService *service.BlueprintService
	challengeService *service.ChallengeService
	submitDelay      time.Duration
}

func NewChallengeHandler(
	blueprintService *service.BlueprintService,
	challengeService *service.ChallengeService,
	submitDelay time.Duration,
) *ChallengeHandler {
	return &ChallengeHandler{
		blueprintService: blueprintService,
		challengeService: challengeService,
		submitDelay:      submitDelay,
	}
}

func (h *ChallengeHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.listBlueprints)              // GET /challenges
	r.Get("/{blueprintID}", h.getBlueprint)   // GET /challenges/{blueprintID}
	r.Post("/{challengeID}/submit", h.submit) // POST /challenges/{challengeID}/submit

	r.Group(func(authed chi.Router) {
		authed.Use(middleware.RequireUser)
		authed.Post("/{blueprintID}/new", h.start) // POST /challenges/{blueprintID}/new
	})
}

func (h *ChallengeHandler) listBlueprints(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserIDFromContext(r.Context()) // empty for anonymous callers

	blueprints, err := h.blueprintService.List(r.Context(), userID)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]interface{}{"blueprints": blueprints})
}

func (h *ChallengeHandler) getBlueprint(w http.ResponseWriter, r *http.Request) {
	blueprintID := chi.URLParam(r, "blueprintID")
	userID, _ := middleware.GetUserIDFromContext(r.Context())

	blueprint, err := h.blueprintService.Get(r.Context(), blueprintID, userID)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, blueprint)
}

func (h *ChallengeHandler) start(w http.ResponseWriter, r *http.Request) {
	blueprintID := chi.URLParam(r, "blueprintID")
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}

	challenge, err := h.challengeService.Start(r.Context(), blueprintID, userID)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, challenge)
}

func (h *ChallengeHandler) submit(w http.ResponseWriter, r *http.Request) {
	challengeID := chi.URLParam(r, "challengeID")
	if err := r.ParseForm(); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid form payload: "+err.Error())
		return
	}
	rawInput := r.PostFormValue("user-input")

	challenge, err := h.challengeService.Submit(r.Context(), challengeID, rawInput)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}

	// Fixed delay so the UI shows a grading pause. Not cancellable.
	time.Sleep(h.submitDelay)

	http.Redirect(w, r, "/challenges/"+challenge.BlueprintID, http.StatusSeeOther)
}
