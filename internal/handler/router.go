package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/omaju/auth-service/internal/config"
	"github.com/omaju/auth-service/internal/middleware"
	"github.com/omaju/auth-service/internal/usecase"
)

// NewRouter wires the full HTTP surface: global and per-route rate limits,
// CORS, the JSON auth endpoints, and the OAuth redirect flow.
func NewRouter(
	cfg *config.Config,
	authHandler *AuthHandler,
	oauthHandler *OAuthHandler,
	auth usecase.AuthUsecase,
) http.Handler {
	globalLimiter := middleware.NewWindowLimiter(
		middleware.GlobalLimit, middleware.Window,
		"Too many requests from this IP, please try again later.")
	authLimiter := middleware.NewWindowLimiter(
		middleware.AuthLimit, middleware.Window,
		"Too many authentication attempts, please try again later.")
	signinLimiter := middleware.NewWindowLimiter(
		middleware.SigninLimit, middleware.Window,
		"Too many attempts, please try again later.")

	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(globalLimiter.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "X-Requested-With"},
		AllowCredentials: true,
	}))

	r.Get("/", authHandler.Index)
	r.Get("/health", authHandler.ServerHealth)

	r.Route("/api/auth", func(r chi.Router) {
		r.With(authLimiter.Middleware).Post("/signup", authHandler.Signup)
		r.With(signinLimiter.Middleware).Post("/signin", authHandler.Signin)
		r.With(authLimiter.Middleware).Post("/refresh-token", authHandler.RefreshToken)

		r.Get("/failure", oauthHandler.Failure)
		r.Get("/health", authHandler.Health)
		r.Get("/{provider}", oauthHandler.Begin)
		r.Get("/{provider}/callback", oauthHandler.Callback)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(auth))
			r.Get("/profile", authHandler.Profile)
			r.Post("/logout", authHandler.Logout)
		})
	})

	r.NotFound(authHandler.NotFound)

	return r
}
