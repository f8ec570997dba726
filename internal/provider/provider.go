package provider

import (
	"context"
	"errors"

	"golang.org/x/oauth2"

	"github.com/omaju/auth-service/internal/model"
)

var (
	// ErrMisconfigured is returned when a provider is constructed without
	// client credentials.
	ErrMisconfigured = errors.New("oauth provider is not configured")

	// ErrEmailMissing is returned when the external profile carries no
	// usable email address. An identity cannot be created without one.
	ErrEmailMissing = errors.New("oauth profile has no email address")
)

// UserInfo is the standardized profile retrieved from an external provider.
type UserInfo struct {
	ProviderUserID string
	Email          string
	Name           string
	Username       string
	AvatarURL      string
}

// Provider is one external OAuth2 identity provider in the
// authorization-code redirect flow.
type Provider interface {
	Kind() model.Provider

	// AuthCodeURL builds the URL the browser is redirected to. The state
	// parameter round-trips the frontend's optional `next` target.
	AuthCodeURL(state string) string

	// Exchange swaps the callback's authorization code for a token.
	Exchange(ctx context.Context, code string) (*oauth2.Token, error)

	// FetchUserInfo retrieves the external profile with the given token.
	FetchUserInfo(ctx context.Context, tok *oauth2.Token) (*UserInfo, error)
}

// Registry holds the configured providers. It is built once at startup and
// passed by reference to the HTTP layer; there is no ambient global
// registration.
type Registry struct {
	providers map[model.Provider]Provider
}

func NewRegistry(providers ...Provider) *Registry {
	r := &Registry{providers: make(map[model.Provider]Provider, len(providers))}
	for _, p := range providers {
		r.providers[p.Kind()] = p
	}
	return r
}

func (r *Registry) Get(kind model.Provider) (Provider, bool) {
	p, ok := r.providers[kind]
	return p, ok
}
