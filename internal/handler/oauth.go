package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/omaju/auth-service/internal/config"
	"github.com/omaju/auth-service/internal/model"
	"github.com/omaju/auth-service/internal/provider"
	"github.com/omaju/auth-service/internal/usecase"
)

// OAuthHandler serves the browser redirect flow. Unlike the JSON endpoints,
// every outcome here is a 302: tokens travel to the frontend callback as
// query parameters, failures land on the frontend error page with a message.
type OAuthHandler struct {
	providers *provider.Registry
	auth      usecase.AuthUsecase
	config    *config.Config
	logger    *zerolog.Logger
}

func NewOAuthHandler(
	providers *provider.Registry,
	auth usecase.AuthUsecase,
	cfg *config.Config,
	logger *zerolog.Logger,
) *OAuthHandler {
	return &OAuthHandler{
		providers: providers,
		auth:      auth,
		config:    cfg,
		logger:    logger,
	}
}

// Begin redirects the browser to the external provider's consent page. An
// optional `next` query parameter is carried through the flow in the OAuth
// state so the frontend can resume where the user left off.
func (h *OAuthHandler) Begin(w http.ResponseWriter, r *http.Request) {
	p, ok := h.lookupProvider(r)
	if !ok {
		respondError(w, http.StatusNotFound, "Route not found")
		return
	}

	state := r.URL.Query().Get("next")
	http.Redirect(w, r, p.AuthCodeURL(state), http.StatusFound)
}

// Callback handles the provider's redirect back: code exchange, profile
// fetch, identity login, then the token handoff redirect.
func (h *OAuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	p, ok := h.lookupProvider(r)
	if !ok {
		respondError(w, http.StatusNotFound, "Route not found")
		return
	}

	query := r.URL.Query()
	if errParam := query.Get("error"); errParam != "" {
		h.logger.Warn().
			Str("provider", string(p.Kind())).
			Str("error", errParam).
			Msg("oauth flow denied by provider")
		h.redirectError(w, r, "Authentication failed")
		return
	}

	code := query.Get("code")
	if code == "" {
		h.redirectError(w, r, "Authentication failed")
		return
	}

	tok, err := p.Exchange(r.Context(), code)
	if err != nil {
		h.logger.Error().Err(err).
			Str("provider", string(p.Kind())).
			Msg("oauth code exchange failed")
		h.redirectError(w, r, "Authentication failed")
		return
	}

	info, err := p.FetchUserInfo(r.Context(), tok)
	if err != nil {
		h.logger.Error().Err(err).
			Str("provider", string(p.Kind())).
			Msg("failed to fetch oauth profile")
		h.redirectError(w, r, h.errorMessage(err))
		return
	}

	_, pair, err := h.auth.OAuthLogin(r.Context(), p.Kind(), info)
	if err != nil {
		h.logger.Error().Err(err).
			Str("provider", string(p.Kind())).
			Msg("oauth login failed")
		h.redirectError(w, r, h.errorMessage(err))
		return
	}

	params := url.Values{}
	params.Set("token", pair.AccessToken)
	params.Set("refreshToken", pair.RefreshToken)
	params.Set("provider", string(p.Kind()))
	if state := query.Get("state"); state != "" {
		params.Set("next", state)
	}

	http.Redirect(w, r, h.config.FrontendURL+"/auth/callback?"+params.Encode(), http.StatusFound)
}

// Failure is the terminal route for flows the provider aborted.
func (h *OAuthHandler) Failure(w http.ResponseWriter, r *http.Request) {
	h.redirectError(w, r, "Authentication failed")
}

func (h *OAuthHandler) lookupProvider(r *http.Request) (provider.Provider, bool) {
	kind := model.Provider(chi.URLParam(r, "provider"))
	return h.providers.Get(kind)
}

func (h *OAuthHandler) redirectError(w http.ResponseWriter, r *http.Request, message string) {
	params := url.Values{}
	params.Set("message", message)
	http.Redirect(w, r, h.config.FrontendURL+"/auth/error?"+params.Encode(), http.StatusFound)
}

func (h *OAuthHandler) errorMessage(err error) string {
	switch {
	case errors.Is(err, usecase.ErrEmailTaken):
		return "An account with this email already exists"
	case errors.Is(err, provider.ErrEmailMissing):
		return "Your account has no email address we can use"
	default:
		return "Authentication failed"
	}
}
