package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/omaju/auth-service/internal/config"
)

var (
	// ErrExpired is returned for a structurally valid access token whose
	// expiry has passed.
	ErrExpired = errors.New("token has expired")

	// ErrInvalid is returned for a tampered, malformed, or otherwise
	// unverifiable token. The refresh path collapses expiry into this.
	ErrInvalid = errors.New("token is invalid")
)

// Pair is one access token and one refresh token, independently signed with
// different secrets and lifetimes. Tokens are stateless bearer credentials:
// nothing is persisted and nothing is ever revoked before natural expiry.
type Pair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Claims is the payload of both token kinds. The subject claim carries the
// identity's email address; every verification path resolves it through the
// cross-collection email lookup.
type Claims struct {
	jwt.RegisteredClaims
}

// Service issues and verifies the access/refresh token pair.
type Service struct {
	issuer        string
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration

	now func() time.Time
}

func NewService(cfg config.TokenConfig) *Service {
	return &Service{
		issuer:        cfg.Issuer,
		accessSecret:  []byte(cfg.AccessTokenSecret),
		refreshSecret: []byte(cfg.RefreshTokenSecret),
		accessTTL:     cfg.AccessTokenExpiresIn,
		refreshTTL:    cfg.RefreshTokenExpiresIn,
		now:           time.Now,
	}
}

// IssuePair signs a fresh access and refresh token for the given subject.
// Issuing a new pair never invalidates previously issued tokens.
func (s *Service) IssuePair(subject string) (Pair, error) {
	accessToken, err := s.sign(subject, s.accessSecret, s.accessTTL)
	if err != nil {
		return Pair{}, fmt.Errorf("failed to sign access token: %w", err)
	}

	refreshToken, err := s.sign(subject, s.refreshSecret, s.refreshTTL)
	if err != nil {
		return Pair{}, fmt.Errorf("failed to sign refresh token: %w", err)
	}

	return Pair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// VerifyAccessToken validates an access token and returns its subject.
// Expiry and tamper are distinguished: ErrExpired vs ErrInvalid.
func (s *Service) VerifyAccessToken(tokenStr string) (string, error) {
	subject, err := s.verify(tokenStr, s.accessSecret)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrExpired
		}
		return "", ErrInvalid
	}
	return subject, nil
}

// VerifyRefreshToken validates a refresh token and returns its subject.
// All failures, expiry included, are reported as ErrInvalid.
func (s *Service) VerifyRefreshToken(tokenStr string) (string, error) {
	subject, err := s.verify(tokenStr, s.refreshSecret)
	if err != nil {
		return "", ErrInvalid
	}
	return subject, nil
}

func (s *Service) sign(subject string, secret []byte, ttl time.Duration) (string, error) {
	now := s.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    s.issuer,
			Audience:  jwt.ClaimStrings{s.issuer},
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func (s *Service) verify(tokenStr string, secret []byte) (string, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	},
		jwt.WithExpirationRequired(),
		jwt.WithAudience(s.issuer),
		jwt.WithIssuer(s.issuer),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return "", err
	}

	if !token.Valid {
		return "", errors.New("invalid token")
	}

	return claims.Subject, nil
}
