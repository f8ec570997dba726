package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds the full runtime configuration of the auth service,
// populated from environment variables.
type Config struct {
	Port        string `env:"PORT"        envDefault:"5001"`
	Environment string `env:"ENV"         envDefault:"development"`
	BackendURL  string `env:"BACKEND_URL" envDefault:"http://localhost:5001"`

	// FrontendURL is the chat frontend that receives the OAuth callback
	// redirect carrying the issued tokens.
	FrontendURL    string   `env:"FRONTEND_URL"    envDefault:"http://localhost:3000"`
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:","`

	MongoURI    string `env:"MONGODB_URI"   envDefault:"mongodb://localhost:27017"`
	MongoDBName string `env:"MONGO_DB_NAME" envDefault:"omaju_auth"`

	Token TokenConfig

	GoogleClientID     string `env:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `env:"GOOGLE_CLIENT_SECRET"`
	GithubClientID     string `env:"GITHUB_CLIENT_ID"`
	GithubClientSecret string `env:"GITHUB_CLIENT_SECRET"`
}

// TokenConfig holds the signing secrets and lifetimes for the access and
// refresh token pair. The two tokens are signed with independent secrets.
type TokenConfig struct {
	Issuer                string        `env:"JWT_ISSUER"         envDefault:"omaju-auth"`
	AccessTokenSecret     string        `env:"JWT_SECRET"`
	RefreshTokenSecret    string        `env:"JWT_REFRESH_SECRET"`
	AccessTokenExpiresIn  time.Duration `env:"ACCESS_TOKEN_TTL"  envDefault:"15m"`
	RefreshTokenExpiresIn time.Duration `env:"REFRESH_TOKEN_TTL" envDefault:"168h"`
}

// Load parses the configuration from environment variables.
func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("failed to parse environment variables: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{cfg.FrontendURL}
	}

	return &cfg, nil
}

// IsProduction reports whether the service runs with ENV=production.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(strings.TrimSpace(c.Environment), "production")
}

// OAuthRedirectURL returns the callback URL registered with a provider.
func (c *Config) OAuthRedirectURL(provider string) string {
	return fmt.Sprintf("%s/api/auth/%s/callback", c.BackendURL, provider)
}

func (c *Config) validate() error {
	if c.Token.AccessTokenSecret == "" {
		return fmt.Errorf("missing JWT_SECRET environment variable")
	}
	if c.Token.RefreshTokenSecret == "" {
		return fmt.Errorf("missing JWT_REFRESH_SECRET environment variable")
	}
	if c.Token.AccessTokenSecret == c.Token.RefreshTokenSecret {
		return fmt.Errorf("JWT_SECRET and JWT_REFRESH_SECRET must differ")
	}
	return nil
}
