package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Provider identifies which collection a user identity lives in. Exactly one
// variant record exists per real-world email across all three collections;
// that invariant is enforced by the resolver, not by the database.
type Provider string

const (
	ProviderEmail  Provider = "email"
	ProviderGoogle Provider = "google"
	ProviderGithub Provider = "github"
)

// Base carries the attributes shared by all three identity variants.
type Base struct {
	ID        bson.ObjectID `bson:"_id,omitempty"`
	UID       string        `bson:"uid"`
	Email     string        `bson:"email"`
	Name      string        `bson:"name"`
	Avatar    string        `bson:"avatar,omitempty"`
	IsActive  bool          `bson:"is_active"`
	LastLogin *time.Time    `bson:"last_login"`
	CreatedAt time.Time     `bson:"created_at"`
	UpdatedAt time.Time     `bson:"updated_at"`
}

// EmailUser is the password-based identity variant. It is the only variant
// that carries credential and lockout state.
type EmailUser struct {
	Base            `bson:",inline"`
	PasswordHash    string     `bson:"password_hash"`
	IsEmailVerified bool       `bson:"is_email_verified"`
	LoginAttempts   int        `bson:"login_attempts"`
	LockUntil       *time.Time `bson:"lock_until"`
}

// GoogleUser is the identity variant created by a Google OAuth login.
type GoogleUser struct {
	Base     `bson:",inline"`
	GoogleID string `bson:"google_id"`
	Provider string `bson:"provider"`
}

// GithubUser is the identity variant created by a GitHub OAuth login.
type GithubUser struct {
	Base     `bson:",inline"`
	GithubID string `bson:"github_id"`
	Username string `bson:"username"`
	Provider string `bson:"provider"`
}
