// Package keycloak provides a Go client for the Keycloak admin REST API.
//
// Basic usage:
//
//	import keycloak "github.com/idpkit/keycloak-go"
//
//	kc, err := keycloak.NewClient(keycloak.Config{
//	    BaseURL:       "http://localhost:8080",
//	    Realm:         "my-realm",
//	    AdminUsername: "admin-user",
//	    AdminPassword: "admin-pass",
//	    AdminClientID: "admin-cli",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	user, err := kc.GetUserByEmail(ctx, "someone@example.com")
package keycloak

import (
	"github.com/idpkit/keycloak-go/client"
	"github.com/idpkit/keycloak-go/models"
)

// Re-export client types for convenient access
type (
	// Client defines the interface for interacting with the Keycloak admin API.
	Client = client.Client

	// Config carries the admin credentials and realm coordinates.
	Config = client.Config

	// APIError represents a non-success response from the admin API.
	APIError = client.APIError

	// AuthenticationError wraps a rejected admin password grant.
	AuthenticationError = client.AuthenticationError

	// ValidationError represents a client-side usage error.
	ValidationError = client.ValidationError

	// Option configures the client.
	Option = client.Option

	// SearchOption adjusts a user search query.
	SearchOption = client.SearchOption

	// Claims represents the claims of a Keycloak-issued access token.
	Claims = client.Claims

	// TokenInfo represents a validated Keycloak access token.
	TokenInfo = client.TokenInfo
)

// Re-export model types for convenient access
type (
	// User is the normalized view of a Keycloak user record.
	User = models.User
	// WriteUser describes a user to create or update.
	WriteUser = models.WriteUser
	// UserLookup selects a user by exactly one of email or id.
	UserLookup = models.UserLookup
	// Credential is a tagged variant for a user's password credential.
	Credential = models.Credential
	// FederatedIdentity links a user to an identity-provider account.
	FederatedIdentity = models.FederatedIdentity
	// Tokens is the access/refresh pair minted by a token exchange.
	Tokens = models.Tokens
)

// Sentinel errors, re-exported for errors.Is checks.
var (
	ErrNotFound       = client.ErrNotFound
	ErrUnauthorized   = client.ErrUnauthorized
	ErrForbidden      = client.ErrForbidden
	ErrBadRequest     = client.ErrBadRequest
	ErrConflict       = client.ErrConflict
	ErrServerError    = client.ErrServerError
	ErrInvalidInput   = client.ErrInvalidInput
	ErrAuthentication = client.ErrAuthentication
)

// Re-export option constructors
var (
	WithTimeout               = client.WithTimeout
	WithResponseHeaderTimeout = client.WithResponseHeaderTimeout
	WithIdleConnTimeout       = client.WithIdleConnTimeout
	WithHTTPClient            = client.WithHTTPClient
	WithRelativePath          = client.WithRelativePath
	WithLogger                = client.WithLogger
	WithFirst                 = client.WithFirst
	WithMax                   = client.WithMax
)

// Re-export credential constructors
var (
	RawPassword    = models.RawPassword
	BcryptPassword = models.BcryptPassword
	HashPassword   = models.HashPassword
)

// NewClient creates a new Keycloak admin client with the provided options.
func NewClient(cfg Config, opts ...Option) (*client.Adapter, error) {
	return client.New(cfg, opts...)
}
