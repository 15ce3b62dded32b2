package client

import (
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// RoleAccess holds the roles granted within a realm or client scope.
type RoleAccess struct {
	Roles []string `json:"roles"`
}

// Claims represents the claims of a Keycloak-issued access token.
type Claims struct {
	jwt.RegisteredClaims

	// Keycloak role containers
	RealmAccess    RoleAccess            `json:"realm_access,omitempty"`
	ResourceAccess map[string]RoleAccess `json:"resource_access,omitempty"`

	// Identity claims
	PreferredUsername string `json:"preferred_username,omitempty"`
	Email             string `json:"email,omitempty"`
	EmailVerified     bool   `json:"email_verified,omitempty"`

	// Session context
	AuthorizedParty string `json:"azp,omitempty"`
	SessionState    string `json:"session_state,omitempty"`

	// Permissions (space-separated string from the OIDC provider)
	Scope string `json:"scope,omitempty"`
}

// GetScopes parses the space-separated scope string into a slice
func (c *Claims) GetScopes() []string {
	if c.Scope == "" {
		return []string{}
	}
	// strings.Fields splits on whitespace and removes empty strings
	return strings.Fields(c.Scope)
}

// HasRealmRole reports whether the token grants the given realm role.
func (c *Claims) HasRealmRole(role string) bool {
	for _, r := range c.RealmAccess.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// HasClientRole reports whether the token grants the given role for the
// given client.
func (c *Claims) HasClientRole(clientID, role string) bool {
	for _, r := range c.ResourceAccess[clientID].Roles {
		if r == role {
			return true
		}
	}
	return false
}

// TokenInfo represents a validated Keycloak access token.
// This is NOT a full user - only security context from the token.
// Use Client.GetUserByID() to get the full user profile.
type TokenInfo struct {
	UserID     string   // JWT "sub" claim
	Username   string   // preferred_username claim
	Email      string   // email claim
	RealmRoles []string // realm_access roles
	Scopes     []string // Parsed scope permissions
}

// HasScope checks if token has a specific permission
func (t *TokenInfo) HasScope(scope string) bool {
	for _, s := range t.Scopes {
		if s == scope {
			return true
		}
	}
	return false
}

// HasRealmRole checks if the token grants a specific realm role
func (t *TokenInfo) HasRealmRole(role string) bool {
	for _, r := range t.RealmRoles {
		if r == role {
			return true
		}
	}
	return false
}
