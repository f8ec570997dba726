package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/omaju/auth-service/internal/model"
	"github.com/omaju/auth-service/internal/provider"
	"github.com/omaju/auth-service/internal/repository"
	"github.com/omaju/auth-service/internal/security"
	"github.com/omaju/auth-service/internal/token"
)

var (
	ErrEmailTaken          = errors.New("an account with this email already exists")
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrAccountLocked       = errors.New("account is temporarily locked due to too many failed login attempts")
	ErrAccountInactive     = errors.New("account is deactivated")
	ErrInvalidRefreshToken = errors.New("invalid or expired refresh token")
)

// ProviderMismatchError is returned when a password login is attempted for an
// email that belongs to an OAuth identity variant. The provider name is
// surfaced so the client can hint at the right login method; no other detail
// about the account leaks.
type ProviderMismatchError struct {
	Provider model.Provider
}

func (e *ProviderMismatchError) Error() string {
	return fmt.Sprintf("this email is registered with %s; please use the appropriate login method", e.Provider)
}

// WelcomeMailer sends the best-effort welcome email. Failures are logged and
// swallowed by the usecase, never propagated.
type WelcomeMailer interface {
	SendWelcome(to, name string) error
}

// AuthUsecase composes the resolver, the credential verifier, and the token
// service into the authentication flows exposed by the HTTP gateway.
type AuthUsecase interface {
	SignUp(ctx context.Context, params SignUpParams) (*model.EmailUser, token.Pair, error)
	SignIn(ctx context.Context, params SignInParams) (*model.EmailUser, token.Pair, error)
	Refresh(ctx context.Context, refreshToken string) (token.Pair, error)

	// ResolveAccessToken verifies an access token and loads the identity
	// it belongs to. Used by the bearer middleware and the profile route.
	ResolveAccessToken(ctx context.Context, accessToken string) (*repository.Match, error)

	// OAuthLogin finds or creates the identity for an external profile and
	// issues a token pair.
	OAuthLogin(ctx context.Context, kind model.Provider, info *provider.UserInfo) (*repository.Match, token.Pair, error)
}

// SignUpParams defines the parameters for email/password registration.
type SignUpParams struct {
	Email    string
	Password string
	Name     string
}

// SignInParams defines the parameters for email/password login.
type SignInParams struct {
	Email    string
	Password string
}

type authUsecase struct {
	resolver   repository.Resolver
	emailRepo  repository.EmailUserRepository
	googleRepo repository.GoogleUserRepository
	githubRepo repository.GithubUserRepository
	tokens     *token.Service
	mailer     WelcomeMailer
	logger     *zerolog.Logger
}

func NewAuthUsecase(
	resolver repository.Resolver,
	emailRepo repository.EmailUserRepository,
	googleRepo repository.GoogleUserRepository,
	githubRepo repository.GithubUserRepository,
	tokens *token.Service,
	mailer WelcomeMailer,
	logger *zerolog.Logger,
) AuthUsecase {
	return &authUsecase{
		resolver:   resolver,
		emailRepo:  emailRepo,
		googleRepo: googleRepo,
		githubRepo: githubRepo,
		tokens:     tokens,
		mailer:     mailer,
		logger:     logger,
	}
}

func (u *authUsecase) SignUp(
	ctx context.Context,
	params SignUpParams,
) (*model.EmailUser, token.Pair, error) {
	email := repository.NormalizeEmail(params.Email)

	// Check-then-act across all three collections. Concurrent signups with
	// the same email can both pass this check; the per-collection unique
	// index still catches same-collection duplicates at insert time.
	if _, err := u.resolver.FindByEmail(ctx, email); err == nil {
		return nil, token.Pair{}, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, token.Pair{}, err
	}

	passwordHash, err := security.HashPassword(params.Password)
	if err != nil {
		return nil, token.Pair{}, err
	}

	user, err := u.emailRepo.CreateEmailUser(ctx, &model.EmailUser{
		Base: model.Base{
			UID:      uuid.NewString(),
			Email:    email,
			Name:     params.Name,
			IsActive: true,
		},
		PasswordHash: passwordHash,
	})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, token.Pair{}, ErrEmailTaken
		}
		return nil, token.Pair{}, err
	}

	pair, err := u.tokens.IssuePair(user.Email)
	if err != nil {
		return nil, token.Pair{}, err
	}

	if err := u.emailRepo.UpdateLastLogin(ctx, user.ID); err != nil {
		return nil, token.Pair{}, err
	}
	now := time.Now()
	user.LastLogin = &now

	u.sendWelcome(user.Email, user.Name)

	return user, pair, nil
}

func (u *authUsecase) SignIn(
	ctx context.Context,
	params SignInParams,
) (*model.EmailUser, token.Pair, error) {
	match, err := u.resolver.FindByEmail(ctx, params.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, token.Pair{}, ErrInvalidCredentials
		}
		return nil, token.Pair{}, err
	}

	if match.Kind != model.ProviderEmail {
		return nil, token.Pair{}, &ProviderMismatchError{Provider: match.Kind}
	}
	user := match.Email

	now := time.Now()
	if security.IsLocked(user.LockUntil, now) {
		return nil, token.Pair{}, ErrAccountLocked
	}

	if !user.IsActive {
		return nil, token.Pair{}, ErrAccountInactive
	}

	ok, err := security.VerifyPassword(params.Password, user.PasswordHash)
	if err != nil {
		return nil, token.Pair{}, err
	}
	if !ok {
		attempts, lockUntil := security.NextFailedAttempt(user.LoginAttempts, user.LockUntil, now)
		if err := u.emailRepo.UpdateLoginState(ctx, user.ID, attempts, lockUntil); err != nil {
			u.logger.Error().Err(err).Str("email", user.Email).Msg("failed to record failed login attempt")
		}
		return nil, token.Pair{}, ErrInvalidCredentials
	}

	if user.LoginAttempts > 0 || user.LockUntil != nil {
		if err := u.emailRepo.ResetLoginState(ctx, user.ID); err != nil {
			return nil, token.Pair{}, err
		}
		user.LoginAttempts = 0
		user.LockUntil = nil
	}

	pair, err := u.tokens.IssuePair(user.Email)
	if err != nil {
		return nil, token.Pair{}, err
	}

	if err := u.emailRepo.UpdateLastLogin(ctx, user.ID); err != nil {
		return nil, token.Pair{}, err
	}
	user.LastLogin = &now

	u.sendWelcome(user.Email, user.Name)

	return user, pair, nil
}

func (u *authUsecase) Refresh(ctx context.Context, refreshToken string) (token.Pair, error) {
	subject, err := u.tokens.VerifyRefreshToken(refreshToken)
	if err != nil {
		return token.Pair{}, ErrInvalidRefreshToken
	}

	match, err := u.resolver.FindByEmail(ctx, subject)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return token.Pair{}, ErrInvalidRefreshToken
		}
		return token.Pair{}, err
	}

	if !match.Account().IsActive {
		return token.Pair{}, ErrAccountInactive
	}

	// A fresh pair is issued without invalidating the old refresh token;
	// it remains valid until its own expiry.
	return u.tokens.IssuePair(match.Account().Email)
}

func (u *authUsecase) ResolveAccessToken(
	ctx context.Context,
	accessToken string,
) (*repository.Match, error) {
	subject, err := u.tokens.VerifyAccessToken(accessToken)
	if err != nil {
		return nil, err
	}

	match, err := u.resolver.FindByEmail(ctx, subject)
	if err != nil {
		return nil, err
	}

	if !match.Account().IsActive {
		return nil, ErrAccountInactive
	}

	return match, nil
}

func (u *authUsecase) OAuthLogin(
	ctx context.Context,
	kind model.Provider,
	info *provider.UserInfo,
) (*repository.Match, token.Pair, error) {
	match, err := u.resolver.FindByProviderID(ctx, kind, info.ProviderUserID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, token.Pair{}, err
		}
		match, err = u.createOAuthUser(ctx, kind, info)
		if err != nil {
			return nil, token.Pair{}, err
		}
	}

	pair, err := u.tokens.IssuePair(match.Account().Email)
	if err != nil {
		return nil, token.Pair{}, err
	}

	if err := u.resolver.UpdateLastLogin(ctx, match); err != nil {
		return nil, token.Pair{}, err
	}
	now := time.Now()
	match.Account().LastLogin = &now

	u.sendWelcome(match.Account().Email, match.Account().Name)

	return match, pair, nil
}

func (u *authUsecase) createOAuthUser(
	ctx context.Context,
	kind model.Provider,
	info *provider.UserInfo,
) (*repository.Match, error) {
	if info.Email == "" {
		return nil, provider.ErrEmailMissing
	}
	email := repository.NormalizeEmail(info.Email)

	// The email must be free across ALL variants, not just this provider's
	// collection.
	if _, err := u.resolver.FindByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	base := model.Base{
		UID:      uuid.NewString(),
		Email:    email,
		Name:     info.Name,
		Avatar:   info.AvatarURL,
		IsActive: true,
	}

	switch kind {
	case model.ProviderGoogle:
		user, err := u.googleRepo.CreateGoogleUser(ctx, &model.GoogleUser{
			Base:     base,
			GoogleID: info.ProviderUserID,
			Provider: string(model.ProviderGoogle),
		})
		if err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return nil, ErrEmailTaken
			}
			return nil, err
		}
		return &repository.Match{Kind: model.ProviderGoogle, Google: user}, nil
	case model.ProviderGithub:
		user, err := u.githubRepo.CreateGithubUser(ctx, &model.GithubUser{
			Base:     base,
			GithubID: info.ProviderUserID,
			Username: info.Username,
			Provider: string(model.ProviderGithub),
		})
		if err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return nil, ErrEmailTaken
			}
			return nil, err
		}
		return &repository.Match{Kind: model.ProviderGithub, Github: user}, nil
	default:
		return nil, fmt.Errorf("provider %q cannot create identities", kind)
	}
}

func (u *authUsecase) sendWelcome(email, name string) {
	if u.mailer == nil {
		return
	}
	if err := u.mailer.SendWelcome(email, name); err != nil {
		u.logger.Warn().Err(err).Str("email", email).Msg("failed to send welcome email")
	}
}
