// Package client provides a self-contained client for the Keycloak admin API.
package client

import (
	"context"

	"github.com/google/uuid"

	"github.com/idpkit/keycloak-go/models"
)

// Client defines the interface for interacting with the Keycloak admin API.
//
// Lookups that find nothing return (nil, nil): a missing user is not an
// error, whether the id came back 404 or the email search produced no exact
// match. Every other non-success response is an *APIError.
type Client interface {
	// Users (GET/POST /admin/realms/{realm}/users, GET/PUT/DELETE .../users/{id})
	GetUser(ctx context.Context, lookup models.UserLookup) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	SearchUsers(ctx context.Context, query string, opts ...SearchOption) ([]models.User, error)
	CountUsers(ctx context.Context, query string) (int, error)
	RegisterUser(ctx context.Context, user models.WriteUser) (uuid.UUID, error)
	UpdateUser(ctx context.Context, user models.WriteUser) error
	DeleteUser(ctx context.Context, id uuid.UUID) error
	ResetPassword(ctx context.Context, id uuid.UUID, newPassword string, temporary bool) error
	SendVerificationEmail(ctx context.Context, id uuid.UUID) error

	// Federated identities (GET .../users/{id}/federated-identity)
	ListFederatedIdentities(ctx context.Context, id uuid.UUID) ([]models.FederatedIdentity, error)

	// Token exchange (POST /realms/{realm}/protocol/openid-connect/token)
	GetUserTokens(ctx context.Context, id uuid.UUID) (*models.Tokens, error)

	// OAuth clients (GET/POST /admin/realms/{realm}/clients, DELETE .../clients/{id})
	CreateClient(ctx context.Context, clientID, clientSecret string, id uuid.UUID) error
	CreateMapperForClient(ctx context.Context, idOfClient uuid.UUID, mapper models.ProtocolMapper) error
	SearchClientsByClientID(ctx context.Context, clientID string) ([]models.Client, error)
	DeleteClient(ctx context.Context, id uuid.UUID) error
}
