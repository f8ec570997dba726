package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omaju/auth-service/internal/model"
)

type staticEmailRepo struct {
	EmailUserRepository
	user *model.EmailUser
}

func (r *staticEmailRepo) GetEmailUserByEmail(_ context.Context, email string) (*model.EmailUser, error) {
	if r.user != nil && r.user.Email == email {
		return r.user, nil
	}
	return nil, ErrNotFound
}

type staticGoogleRepo struct {
	GoogleUserRepository
	user *model.GoogleUser
}

func (r *staticGoogleRepo) GetGoogleUserByEmail(_ context.Context, email string) (*model.GoogleUser, error) {
	if r.user != nil && r.user.Email == email {
		return r.user, nil
	}
	return nil, ErrNotFound
}

func (r *staticGoogleRepo) GetGoogleUserByGoogleID(_ context.Context, googleID string) (*model.GoogleUser, error) {
	if r.user != nil && r.user.GoogleID == googleID {
		return r.user, nil
	}
	return nil, ErrNotFound
}

type staticGithubRepo struct {
	GithubUserRepository
	user *model.GithubUser
}

func (r *staticGithubRepo) GetGithubUserByEmail(_ context.Context, email string) (*model.GithubUser, error) {
	if r.user != nil && r.user.Email == email {
		return r.user, nil
	}
	return nil, ErrNotFound
}

func (r *staticGithubRepo) GetGithubUserByGithubID(_ context.Context, githubID string) (*model.GithubUser, error) {
	if r.user != nil && r.user.GithubID == githubID {
		return r.user, nil
	}
	return nil, ErrNotFound
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "alice@example.com", NormalizeEmail("  Alice@Example.COM "))
	assert.Equal(t, "bob@example.com", NormalizeEmail("bob@example.com"))
}

func TestResolverFindByEmail(t *testing.T) {
	ctx := context.Background()

	t.Run("not found anywhere", func(t *testing.T) {
		r := NewResolver(&staticEmailRepo{}, &staticGoogleRepo{}, &staticGithubRepo{})

		_, err := r.FindByEmail(ctx, "nobody@example.com")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("normalizes before searching", func(t *testing.T) {
		r := NewResolver(
			&staticEmailRepo{user: &model.EmailUser{Base: model.Base{Email: "alice@example.com"}}},
			&staticGoogleRepo{}, &staticGithubRepo{})

		match, err := r.FindByEmail(ctx, " ALICE@example.com ")
		require.NoError(t, err)
		assert.Equal(t, model.ProviderEmail, match.Kind)
	})

	t.Run("hits the github collection last", func(t *testing.T) {
		r := NewResolver(
			&staticEmailRepo{}, &staticGoogleRepo{},
			&staticGithubRepo{user: &model.GithubUser{Base: model.Base{Email: "hank@example.com"}, Username: "hankdev"}})

		match, err := r.FindByEmail(ctx, "hank@example.com")
		require.NoError(t, err)
		assert.Equal(t, model.ProviderGithub, match.Kind)
		assert.Equal(t, "hankdev", match.Github.Username)
	})

	t.Run("email collection wins when two collections hold the address", func(t *testing.T) {
		r := NewResolver(
			&staticEmailRepo{user: &model.EmailUser{Base: model.Base{Email: "dup@example.com"}}},
			&staticGoogleRepo{user: &model.GoogleUser{Base: model.Base{Email: "dup@example.com"}}},
			&staticGithubRepo{})

		match, err := r.FindByEmail(ctx, "dup@example.com")
		require.NoError(t, err)
		assert.Equal(t, model.ProviderEmail, match.Kind)
	})
}

func TestResolverFindByProviderID(t *testing.T) {
	ctx := context.Background()

	t.Run("google lookup is restricted to the google collection", func(t *testing.T) {
		r := NewResolver(
			&staticEmailRepo{},
			&staticGoogleRepo{user: &model.GoogleUser{Base: model.Base{Email: "g@example.com"}, GoogleID: "g-1"}},
			&staticGithubRepo{user: &model.GithubUser{Base: model.Base{Email: "h@example.com"}, GithubID: "g-1"}})

		match, err := r.FindByProviderID(ctx, model.ProviderGoogle, "g-1")
		require.NoError(t, err)
		assert.Equal(t, model.ProviderGoogle, match.Kind)
		assert.Equal(t, "g@example.com", match.Account().Email)
	})

	t.Run("email kind has no external lookup", func(t *testing.T) {
		r := NewResolver(&staticEmailRepo{}, &staticGoogleRepo{}, &staticGithubRepo{})

		_, err := r.FindByProviderID(ctx, model.ProviderEmail, "x")
		assert.Error(t, err)
	})
}
