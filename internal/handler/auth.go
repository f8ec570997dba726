package handler

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/omaju/auth-service/internal/middleware"
	"github.com/omaju/auth-service/internal/model"
	"github.com/omaju/auth-service/internal/repository"
	"github.com/omaju/auth-service/internal/usecase"
)

// AuthHandler serves the JSON authentication endpoints.
type AuthHandler struct {
	auth      usecase.AuthUsecase
	validator *requestValidator
	logger    *zerolog.Logger
	startedAt time.Time
}

func NewAuthHandler(auth usecase.AuthUsecase, logger *zerolog.Logger) (*AuthHandler, error) {
	validator, err := newRequestValidator()
	if err != nil {
		return nil, fmt.Errorf("failed to build request validator: %w", err)
	}

	return &AuthHandler{
		auth:      auth,
		validator: validator,
		logger:    logger,
		startedAt: time.Now(),
	}, nil
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if !h.validator.decodeAndValidate(w, r, &req) {
		return
	}

	user, pair, err := h.auth.SignUp(r.Context(), usecase.SignUpParams{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
	})
	if err != nil {
		if errors.Is(err, usecase.ErrEmailTaken) {
			respondError(w, http.StatusConflict, "User with this email already exists")
			return
		}
		h.logger.Error().Err(err).Msg("signup failed")
		respondError(w, http.StatusInternalServerError, "Internal server error during registration")
		return
	}

	match := &repository.Match{Kind: model.ProviderEmail, Email: user}
	respondSuccess(w, http.StatusCreated, "User registered successfully", map[string]any{
		"user":   newUserPayload(match),
		"tokens": pair,
	})
}

func (h *AuthHandler) Signin(w http.ResponseWriter, r *http.Request) {
	var req signinRequest
	if !h.validator.decodeAndValidate(w, r, &req) {
		return
	}

	user, pair, err := h.auth.SignIn(r.Context(), usecase.SignInParams{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		var mismatch *usecase.ProviderMismatchError
		switch {
		case errors.As(err, &mismatch):
			respondError(w, http.StatusUnauthorized, fmt.Sprintf(
				"This email is registered with %s. Please use the appropriate login method.",
				providerDisplayName(mismatch.Provider)))
		case errors.Is(err, usecase.ErrInvalidCredentials):
			respondError(w, http.StatusUnauthorized, "Invalid email or password")
		case errors.Is(err, usecase.ErrAccountLocked):
			respondError(w, http.StatusLocked,
				"Account is temporarily locked due to too many failed login attempts. Please try again later.")
		case errors.Is(err, usecase.ErrAccountInactive):
			respondError(w, http.StatusUnauthorized, "Account is deactivated")
		default:
			h.logger.Error().Err(err).Msg("signin failed")
			respondError(w, http.StatusInternalServerError, "Internal server error during login")
		}
		return
	}

	match := &repository.Match{Kind: model.ProviderEmail, Email: user}
	respondSuccess(w, http.StatusOK, "Login successful", map[string]any{
		"user":   newUserPayload(match),
		"tokens": pair,
	})
}

func (h *AuthHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var req refreshTokenRequest
	if !h.validator.decodeAndValidate(w, r, &req) {
		return
	}

	pair, err := h.auth.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrInvalidRefreshToken):
			respondError(w, http.StatusUnauthorized, "Invalid or expired refresh token")
		case errors.Is(err, usecase.ErrAccountInactive):
			respondError(w, http.StatusUnauthorized, "Account is deactivated")
		default:
			h.logger.Error().Err(err).Msg("token refresh failed")
			respondError(w, http.StatusInternalServerError, "Internal server error during token refresh")
		}
		return
	}

	respondSuccess(w, http.StatusOK, "Tokens refreshed successfully", map[string]any{
		"tokens": pair,
	})
}

// Profile returns the identity resolved by the bearer middleware.
func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	match, ok := matchFromRequest(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "Authorization token required")
		return
	}

	respondSuccess(w, http.StatusOK, "", map[string]any{
		"user": newUserPayload(match),
	})
}

// Logout acknowledges the request. Tokens are stateless bearer credentials,
// so the server has nothing to revoke; the client discards its copies.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, http.StatusOK, "Logged out successfully", nil)
}

func (h *AuthHandler) Health(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, http.StatusOK, "Authentication service is running", map[string]any{
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// ServerHealth is the unauthenticated liveness probe at the server root.
func (h *AuthHandler) ServerHealth(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, http.StatusOK, "Server is running", map[string]any{
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"uptime":    time.Since(h.startedAt).Seconds(),
	})
}

// Index lists the available endpoints.
func (h *AuthHandler) Index(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, http.StatusOK, "Omaju Auth Service API", map[string]any{
		"endpoints": map[string]any{
			"auth": map[string]string{
				"signup":         "POST /api/auth/signup",
				"signin":         "POST /api/auth/signin",
				"refreshToken":   "POST /api/auth/refresh-token",
				"google":         "GET /api/auth/google",
				"googleCallback": "GET /api/auth/google/callback",
				"github":         "GET /api/auth/github",
				"githubCallback": "GET /api/auth/github/callback",
				"profile":        "GET /api/auth/profile",
				"logout":         "POST /api/auth/logout",
				"health":         "GET /api/auth/health",
			},
		},
	})
}

func (h *AuthHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	respondError(w, http.StatusNotFound, "Route not found")
}

func matchFromRequest(r *http.Request) (*repository.Match, bool) {
	return middleware.MatchFromContext(r.Context())
}
