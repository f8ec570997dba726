package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/oauth2"
	githuboauth2 "golang.org/x/oauth2/github"

	"github.com/omaju/auth-service/internal/model"
)

var (
	githubUserEndpoint   = "https://api.github.com/user"
	githubEmailsEndpoint = "https://api.github.com/user/emails"
)

// GithubProvider implements the redirect flow against GitHub's OAuth2
// endpoints. GitHub needs a second call for the email: the profile email is
// often private or absent, so the primary verified address from the emails
// endpoint takes precedence.
type GithubProvider struct {
	config *oauth2.Config
}

func NewGithubProvider(clientID, clientSecret, redirectURL string) (*GithubProvider, error) {
	if clientID == "" || clientSecret == "" {
		return nil, ErrMisconfigured
	}

	return &GithubProvider{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       []string{"read:user", "user:email"},
			Endpoint:     githuboauth2.Endpoint,
		},
	}, nil
}

func (p *GithubProvider) Kind() model.Provider {
	return model.ProviderGithub
}

func (p *GithubProvider) AuthCodeURL(state string) string {
	return p.config.AuthCodeURL(state)
}

func (p *GithubProvider) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	return p.config.Exchange(ctx, code)
}

func (p *GithubProvider) FetchUserInfo(ctx context.Context, tok *oauth2.Token) (*UserInfo, error) {
	client := p.config.Client(ctx, tok)

	profile, err := p.fetchProfile(client)
	if err != nil {
		return nil, err
	}

	email := profile.Email
	if primary, err := p.fetchPrimaryEmail(client); err == nil && primary != "" {
		email = primary
	}
	if email == "" {
		return nil, ErrEmailMissing
	}

	name := profile.Name
	if name == "" {
		name = profile.Login
	}

	return &UserInfo{
		ProviderUserID: profile.ID.String(),
		Email:          email,
		Name:           name,
		Username:       profile.Login,
		AvatarURL:      profile.AvatarURL,
	}, nil
}

type githubProfile struct {
	ID        json.Number `json:"id"`
	Login     string      `json:"login"`
	Name      string      `json:"name"`
	Email     string      `json:"email"`
	AvatarURL string      `json:"avatar_url"`
}

func (p *GithubProvider) fetchProfile(client *http.Client) (*githubProfile, error) {
	resp, err := client.Get(githubUserEndpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch github profile: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("github profile request failed: status %d, body: %s", resp.StatusCode, body)
	}

	var profile githubProfile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, fmt.Errorf("failed to decode github profile: %w", err)
	}

	return &profile, nil
}

func (p *GithubProvider) fetchPrimaryEmail(client *http.Client) (string, error) {
	resp, err := client.Get(githubEmailsEndpoint)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("github emails request failed: status %d", resp.StatusCode)
	}

	var emails []struct {
		Email    string `json:"email"`
		Primary  bool   `json:"primary"`
		Verified bool   `json:"verified"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&emails); err != nil {
		return "", err
	}

	for _, e := range emails {
		if e.Primary && e.Verified {
			return e.Email, nil
		}
	}
	for _, e := range emails {
		if e.Verified {
			return e.Email, nil
		}
	}

	return "", nil
}

var _ Provider = (*GithubProvider)(nil)
