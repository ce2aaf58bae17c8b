package handler

import (
	"errors"
	"net/http"
	"strings"

	"overmind/internal/app/service"
	"overmind/internal/common"
	"overmind/internal/common/security"

	"github.com/go-chi/chi/v5"
)

type AuthHandler struct {
	authService *service.AuthService
	sessions    *security.Sessions
}

func NewAuthHandler(authService *service.AuthService, sessions *security.Sessions) *AuthHandler {
	return &AuthHandler{authService: authService, sessions: sessions}
}

func (h *AuthHandler) RegisterRoutes(r chi.Router) {
	r.Post("/join", h.join)
	r.Post("/login", h.login)
	r.Post("/logout", h.logout)
}

func (h *AuthHandler) join(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid form payload: "+err.Error())
		return
	}

	req := service.JoinRequest{
		Email:     r.PostFormValue("email"),
		Password:  r.PostFormValue("password"),
		Firstname: r.PostFormValue("firstname"),
		Lastname:  r.PostFormValue("lastname"),
		Pseudonym: r.PostFormValue("pseudonym"),
		Country:   r.PostFormValue("country"),
	}

	user, err := h.authService.Join(r.Context(), req)
	if err != nil {
		common.RespondWithDomainError(w, err)
		return
	}

	if err := h.sessions.IssueCookie(w, user.ID, false); err != nil {
		common.RespondWithError(w, http.StatusInternalServerError, "Failed to create session: "+err.Error())
		return
	}
	http.Redirect(w, r, safeRedirect(r.PostFormValue("redirectTo"), "/"), http.StatusFound)
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid form payload: "+err.Error())
		return
	}

	user, err := h.authService.VerifyCredentials(r.Context(), r.PostFormValue("email"), r.PostFormValue("password"))
	if err != nil {
		if errors.Is(err, common.ErrUnauthorized) {
			// Generic message regardless of whether the user exists.
			common.RespondWithError(w, http.StatusBadRequest, "Invalid email or password")
			return
		}
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}

	remember := r.PostFormValue("remember") == "on"
	if err := h.sessions.IssueCookie(w, user.ID, remember); err != nil {
		common.RespondWithError(w, http.StatusInternalServerError, "Failed to create session: "+err.Error())
		return
	}
	http.Redirect(w, r, safeRedirect(r.PostFormValue("redirectTo"), "/"), http.StatusFound)
}

func (h *AuthHandler) logout(w http.ResponseWriter, r *http.Request) {
	h.sessions.ClearCookie(w)
	http.Redirect(w, r, "/", http.StatusFound)
}

// safeRedirect only follows same-site relative paths.
func safeRedirect(to, fallback string) string {
	if to == "" || !strings.HasPrefix(to, "/") || strings.HasPrefix(to, "//") {
		return fallback
	}
	return to
}
