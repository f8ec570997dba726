package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/omaju/auth-service/internal/repository"
	"github.com/omaju/auth-service/internal/token"
	"github.com/omaju/auth-service/internal/usecase"
)

type contextKey int

const matchContextKey contextKey = iota

// MatchFromContext returns the identity attached by RequireAuth.
func MatchFromContext(ctx context.Context) (*repository.Match, bool) {
	m, ok := ctx.Value(matchContextKey).(*repository.Match)
	return m, ok
}

// RequireAuth verifies the bearer access token and attaches the resolved
// identity to the request context. Expired and otherwise invalid tokens are
// reported with distinct messages; both are 401.
func RequireAuth(auth usecase.AuthUsecase) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			bearer, found := strings.CutPrefix(header, "Bearer ")
			if !found || bearer == "" {
				unauthorized(w, "Authorization token required")
				return
			}

			match, err := auth.ResolveAccessToken(r.Context(), bearer)
			if err != nil {
				switch {
				case errors.Is(err, token.ErrExpired):
					unauthorized(w, "Token expired")
				case errors.Is(err, repository.ErrNotFound):
					unauthorized(w, "Invalid token - user not found")
				case errors.Is(err, usecase.ErrAccountInactive):
					unauthorized(w, "Account is deactivated")
				default:
					unauthorized(w, "Invalid token")
				}
				return
			}

			ctx := context.WithValue(r.Context(), matchContextKey, match)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	fmt.Fprintf(w, `{"success":false,"message":%q}`, message)
}
