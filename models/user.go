// Package models contains data types for the Keycloak admin client.
package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// FederatedIdentity associates a Keycloak user with an account at an
// external identity provider. Provider is the link's identity for
// reconciliation purposes: two links with the same provider describe the
// same association.
type FederatedIdentity struct {
	Provider string `json:"identityProvider"`
	UserID   string `json:"userId"`
	UserName string `json:"userName"`
}

// User is the normalized view of a Keycloak user record. It is only built
// from successful lookups, never from partial or error responses.
type User struct {
	ID            uuid.UUID
	Username      string
	FirstName     string
	LastName      string
	Email         string
	Enabled       bool
	EmailVerified bool
	Attributes    map[string][]string
	CreatedAt     time.Time

	// Raw is the full user representation exactly as the API returned it,
	// for callers that need fields outside the normalized view (for
	// example requiredActions).
	Raw json.RawMessage
}

// WriteUser describes a user to create or update.
//
// ID must be set for updates and left as uuid.Nil for registration.
// Credential's zero value omits the credentials block entirely.
type WriteUser struct {
	ID                  uuid.UUID
	Username            string
	FirstName           string
	LastName            string
	Email               string
	Enabled             bool
	EmailVerified       bool
	Attributes          map[string]any
	Credential          Credential
	FederatedIdentities []FederatedIdentity
}

// UserLookup selects a user by exactly one of Email or ID.
type UserLookup struct {
	Email string
	ID    uuid.UUID
}
