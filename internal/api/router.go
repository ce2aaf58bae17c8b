package api

import (
	"net/http"
	"time"

	"overmind/internal/api/handler"
	"overmind/internal/api/middleware"
	"overmind/internal/app/service"
	"overmind/internal/common/security"
	"overmind/internal/platform/config"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/jwtauth/v5"
)

func NewRouter(
	cfg *config.Config,
	sessions *security.Sessions,
	authService *service.AuthService,
	blueprintService *service.BlueprintService,
	challengeService *service.ChallengeService,
	userService *service.UserService,
) http.Handler {
	r := chi.NewRouter()

	// Base Middlewares
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(60 * time.Second))

	// Session token lookup: cookie first, Authorization header as fallback.
	// Verification only parses the token; resolving it to a user id stays
	// silent so anonymous requests pass through untouched.
	r.Use(jwtauth.Verify(sessions.TokenAuth(), security.TokenFromCookie, jwtauth.TokenFromHeader))
	r.Use(middleware.CurrentUser)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	authHandler := handler.NewAuthHandler(authService, sessions)
	authHandler.RegisterRoutes(r)

	challengeHandler := handler.NewChallengeHandler(blueprintService, challengeService, cfg.SubmitDelay)
	r.Route("/challenges", challengeHandler.RegisterRoutes)

	userHandler := handler.NewUserHandler(userService)
	r.Route("/users", userHandler.RegisterRoutes)

	return r
}
