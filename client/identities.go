package client

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/idpkit/keycloak-go/models"
)

// ListFederatedIdentities returns the identity-provider links currently
// stored for the user.
func (a *Adapter) ListFederatedIdentities(ctx context.Context, id uuid.UUID) ([]models.FederatedIdentity, error) {
	if id == uuid.Nil {
		return nil, &ValidationError{Field: "id", Message: "cannot be empty"}
	}

	var identities []models.FederatedIdentity
	err := a.doJSON(ctx, requestConfig{
		op:         fmt.Sprintf("list identities of user %s", id),
		method:     http.MethodGet,
		path:       "/users/%s/federated-identity",
		pathParams: []string{id.String()},
	}, &identities)
	if err != nil {
		return nil, err
	}

	return identities, nil
}

// reconcileFederatedIdentities brings the user's existing identity-provider
// links in line with the desired ones.
//
// Only links whose provider is already present remotely are written; desired
// links for providers with no existing link are skipped entirely, so the
// reconciler updates links but never creates new ones. Writes happen
// sequentially in the caller-supplied order and the first failure aborts the
// whole run, leaving earlier writes in place.
func (a *Adapter) reconcileFederatedIdentities(ctx context.Context, id uuid.UUID, desired []models.FederatedIdentity) error {
	current, err := a.ListFederatedIdentities(ctx, id)
	if err != nil {
		return err
	}

	existing := make(map[string]struct{}, len(current))
	for _, identity := range current {
		existing[identity.Provider] = struct{}{}
	}

	for _, link := range desired {
		if _, ok := existing[link.Provider]; !ok {
			if a.logger != nil {
				a.logger.DebugContext(ctx, "skipping identity link for unlinked provider",
					slog.String("provider", link.Provider), slog.String("user_id", id.String()))
			}
			continue
		}

		err := a.doNoContent(ctx, requestConfig{
			op:         fmt.Sprintf("create identity for user %s", id),
			method:     http.MethodPost,
			path:       "/users/%s/federated-identity/%s",
			pathParams: []string{id.String(), link.Provider},
			body: map[string]any{
				"identityProvider": link.Provider,
				"userId":           link.UserID,
				"userName":         link.UserName,
			},
			expectCodes: []int{http.StatusNoContent, http.StatusCreated, http.StatusOK},
		})
		if err != nil {
			return err
		}
	}

	return nil
}
