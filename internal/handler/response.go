package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/omaju/auth-service/internal/model"
	"github.com/omaju/auth-service/internal/repository"
)

type successEnvelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

type errorEnvelope struct {
	Success bool     `json:"success"`
	Message string   `json:"message"`
	Errors  []string `json:"errors,omitempty"`
}

func respondSuccess(w http.ResponseWriter, status int, message string, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(successEnvelope{Success: true, Message: message, Data: data})
}

func respondError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorEnvelope{Success: false, Message: message})
}

func respondValidationError(w http.ResponseWriter, details []string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	_ = json.NewEncoder(w).Encode(errorEnvelope{
		Success: false,
		Message: "Validation error",
		Errors:  details,
	})
}

// userPayload is the serialized identity in signup, signin, and profile
// responses. Variant-specific fields stay nil for the other variants.
type userPayload struct {
	ID              string     `json:"id"`
	Email           string     `json:"email"`
	Name            string     `json:"name"`
	Avatar          string     `json:"avatar,omitempty"`
	Provider        string     `json:"provider"`
	IsActive        bool       `json:"isActive"`
	LastLogin       *time.Time `json:"lastLogin,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	IsEmailVerified *bool      `json:"isEmailVerified,omitempty"`
	Username        string     `json:"username,omitempty"`
}

func newUserPayload(match *repository.Match) userPayload {
	account := match.Account()
	payload := userPayload{
		ID:        account.ID.Hex(),
		Email:     account.Email,
		Name:      account.Name,
		Avatar:    account.Avatar,
		Provider:  string(match.Kind),
		IsActive:  account.IsActive,
		LastLogin: account.LastLogin,
		CreatedAt: account.CreatedAt,
	}

	switch match.Kind {
	case model.ProviderEmail:
		payload.IsEmailVerified = &match.Email.IsEmailVerified
	case model.ProviderGithub:
		payload.Username = match.Github.Username
	}

	return payload
}

// providerDisplayName renders a provider kind the way user-facing messages
// spell it.
func providerDisplayName(kind model.Provider) string {
	switch kind {
	case model.ProviderGoogle:
		return "Google"
	case model.ProviderGithub:
		return "GitHub"
	default:
		return string(kind)
	}
}
