package provider

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
	googleoauth2 "golang.org/x/oauth2/google"
	oauth2v2 "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"

	"github.com/omaju/auth-service/internal/model"
)

// GoogleProvider implements the redirect flow against Google's standard
// OAuth2 endpoints and fetches the profile through the Google userinfo API.
type GoogleProvider struct {
	config *oauth2.Config
}

func NewGoogleProvider(clientID, clientSecret, redirectURL string) (*GoogleProvider, error) {
	if clientID == "" || clientSecret == "" {
		return nil, ErrMisconfigured
	}

	return &GoogleProvider{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes: []string{
				"openid",
				"https://www.googleapis.com/auth/userinfo.profile",
				"https://www.googleapis.com/auth/userinfo.email",
			},
			Endpoint: googleoauth2.Endpoint,
		},
	}, nil
}

func (p *GoogleProvider) Kind() model.Provider {
	return model.ProviderGoogle
}

func (p *GoogleProvider) AuthCodeURL(state string) string {
	return p.config.AuthCodeURL(state)
}

func (p *GoogleProvider) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	return p.config.Exchange(ctx, code)
}

func (p *GoogleProvider) FetchUserInfo(ctx context.Context, tok *oauth2.Token) (*UserInfo, error) {
	client := p.config.Client(ctx, tok)

	service, err := oauth2v2.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("failed to build google userinfo service: %w", err)
	}

	info, err := service.Userinfo.Get().Do()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch google userinfo: %w", err)
	}

	if info.Email == "" {
		return nil, ErrEmailMissing
	}

	return &UserInfo{
		ProviderUserID: info.Id,
		Email:          info.Email,
		Name:           info.Name,
		AvatarURL:      info.Picture,
	}, nil
}

var _ Provider = (*GoogleProvider)(nil)
