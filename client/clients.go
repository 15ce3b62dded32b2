package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/google/uuid"

	"github.com/idpkit/keycloak-go/models"
)

// CreateClient registers a new confidential OAuth client in the realm. The
// id is optional; when uuid.Nil, Keycloak assigns one.
func (a *Adapter) CreateClient(ctx context.Context, clientID, clientSecret string, id uuid.UUID) error {
	if clientID == "" {
		return &ValidationError{Field: "clientID", Message: "cannot be empty"}
	}

	body := map[string]any{
		"clientId": clientID,
		"secret":   clientSecret,
	}
	if id != uuid.Nil {
		body["id"] = id.String()
	}

	return a.doNoContent(ctx, requestConfig{
		op:          fmt.Sprintf("create client %s", clientID),
		method:      http.MethodPost,
		path:        "/clients",
		body:        body,
		expectCodes: []int{http.StatusCreated, http.StatusOK, http.StatusNoContent},
	})
}

// CreateMapperForClient attaches a protocol mapper to the client identified
// by its internal id (not its clientId).
func (a *Adapter) CreateMapperForClient(ctx context.Context, idOfClient uuid.UUID, mapper models.ProtocolMapper) error {
	if idOfClient == uuid.Nil {
		return &ValidationError{Field: "idOfClient", Message: "cannot be empty"}
	}
	if mapper.Name == "" {
		return &ValidationError{Field: "name", Message: "cannot be empty"}
	}

	return a.doNoContent(ctx, requestConfig{
		op:          fmt.Sprintf("create mapper %s for client %s", mapper.Name, idOfClient),
		method:      http.MethodPost,
		path:        "/clients/%s/protocol-mappers/models",
		pathParams:  []string{idOfClient.String()},
		body:        mapper,
		expectCodes: []int{http.StatusCreated, http.StatusOK, http.StatusNoContent},
	})
}

// SearchClientsByClientID returns the clients whose clientId matches the
// given value. Keycloak treats the filter as exact, so the result has at
// most one element in practice.
func (a *Adapter) SearchClientsByClientID(ctx context.Context, clientID string) ([]models.Client, error) {
	if clientID == "" {
		return nil, &ValidationError{Field: "clientID", Message: "cannot be empty"}
	}

	var clients []models.Client
	err := a.doJSON(ctx, requestConfig{
		op:     fmt.Sprintf("search clients with clientId %s", clientID),
		method: http.MethodGet,
		path:   "/clients",
		query:  url.Values{"clientId": {clientID}},
	}, &clients)
	if err != nil {
		return nil, err
	}

	return clients, nil
}

// DeleteClient deletes a client by its internal id.
func (a *Adapter) DeleteClient(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return &ValidationError{Field: "id", Message: "cannot be empty"}
	}

	return a.doNoContent(ctx, requestConfig{
		op:          fmt.Sprintf("delete client with id %s", id),
		method:      http.MethodDelete,
		path:        "/clients/%s",
		pathParams:  []string{id.String()},
		expectCodes: []int{http.StatusNoContent, http.StatusOK},
	})
}
