package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/omaju/auth-service/internal/model"
)

// Match is the result of a cross-collection lookup: which variant collection
// the record came from, plus the record itself. Exactly one variant pointer
// is non-nil.
type Match struct {
	Kind   model.Provider
	Email  *model.EmailUser
	Google *model.GoogleUser
	Github *model.GithubUser
}

// Account returns the shared attribute set of the matched record.
func (m *Match) Account() *model.Base {
	switch m.Kind {
	case model.ProviderEmail:
		return &m.Email.Base
	case model.ProviderGoogle:
		return &m.Google.Base
	case model.ProviderGithub:
		return &m.Github.Base
	}
	return nil
}

// Resolver searches the three identity collections. It is read-only; all
// mutation goes through the variant repositories.
//
// Cross-collection email uniqueness is check-then-act: two concurrent
// signups with the same email against different collections can both pass
// the existence check before either commits. This race is a documented
// property of the three-collection shape, not something the resolver can
// close without a transaction spanning collections.
type Resolver interface {
	// FindByEmail searches email, then google, then github collections in
	// that fixed order and returns the first hit.
	FindByEmail(ctx context.Context, email string) (*Match, error)

	// FindByProviderID looks up an identity by its external provider ID,
	// restricted to the matching collection.
	FindByProviderID(ctx context.Context, kind model.Provider, providerID string) (*Match, error)

	// UpdateLastLogin stamps the matched record's last_login field.
	UpdateLastLogin(ctx context.Context, m *Match) error
}

type resolver struct {
	emailRepo  EmailUserRepository
	googleRepo GoogleUserRepository
	githubRepo GithubUserRepository
}

func NewResolver(
	emailRepo EmailUserRepository,
	googleRepo GoogleUserRepository,
	githubRepo GithubUserRepository,
) Resolver {
	return &resolver{
		emailRepo:  emailRepo,
		googleRepo: googleRepo,
		githubRepo: githubRepo,
	}
}

// NormalizeEmail lowercases and trims an address the way every collection
// stores it.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (r *resolver) FindByEmail(ctx context.Context, email string) (*Match, error) {
	email = NormalizeEmail(email)

	emailUser, err := r.emailRepo.GetEmailUserByEmail(ctx, email)
	if err == nil {
		return &Match{Kind: model.ProviderEmail, Email: emailUser}, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	googleUser, err := r.googleRepo.GetGoogleUserByEmail(ctx, email)
	if err == nil {
		return &Match{Kind: model.ProviderGoogle, Google: googleUser}, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	githubUser, err := r.githubRepo.GetGithubUserByEmail(ctx, email)
	if err == nil {
		return &Match{Kind: model.ProviderGithub, Github: githubUser}, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	return nil, ErrNotFound
}

func (r *resolver) FindByProviderID(
	ctx context.Context,
	kind model.Provider,
	providerID string,
) (*Match, error) {
	switch kind {
	case model.ProviderGoogle:
		user, err := r.googleRepo.GetGoogleUserByGoogleID(ctx, providerID)
		if err != nil {
			return nil, err
		}
		return &Match{Kind: model.ProviderGoogle, Google: user}, nil
	case model.ProviderGithub:
		user, err := r.githubRepo.GetGithubUserByGithubID(ctx, providerID)
		if err != nil {
			return nil, err
		}
		return &Match{Kind: model.ProviderGithub, Github: user}, nil
	default:
		return nil, fmt.Errorf("provider %q has no external ID lookup", kind)
	}
}

func (r *resolver) UpdateLastLogin(ctx context.Context, m *Match) error {
	switch m.Kind {
	case model.ProviderEmail:
		return r.emailRepo.UpdateLastLogin(ctx, m.Email.ID)
	case model.ProviderGoogle:
		return r.googleRepo.UpdateLastLogin(ctx, m.Google.ID)
	case model.ProviderGithub:
		return r.githubRepo.UpdateLastLogin(ctx, m.Github.ID)
	}
	return fmt.Errorf("unknown provider kind %q", m.Kind)
}
