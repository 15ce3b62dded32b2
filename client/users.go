package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/idpkit/keycloak-go/models"
)

// GetUser retrieves a user by exactly one of email or id. Passing neither or
// both is a usage error raised before any network call. A user that does not
// exist yields (nil, nil).
func (a *Adapter) GetUser(ctx context.Context, lookup models.UserLookup) (*models.User, error) {
	hasEmail := lookup.Email != ""
	hasID := lookup.ID != uuid.Nil

	switch {
	case hasEmail && hasID:
		return nil, &ValidationError{Field: "lookup", Message: "email and id are mutually exclusive"}
	case hasEmail:
		return a.GetUserByEmail(ctx, lookup.Email)
	case hasID:
		return a.GetUserByID(ctx, lookup.ID)
	}
	return nil, &ValidationError{Field: "lookup", Message: "either email or id must be specified"}
}

// GetUserByEmail retrieves a user by email address.
//
// The admin search endpoint matches substrings, so the candidates are
// filtered client-side for exact, case-sensitive email equality. Returns
// (nil, nil) when no candidate matches exactly.
func (a *Adapter) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	if email == "" {
		return nil, &ValidationError{Field: "email", Message: "cannot be empty"}
	}

	body, _, err := a.doRequest(ctx, requestConfig{
		op:     fmt.Sprintf("get user with email %s", email),
		method: http.MethodGet,
		path:   "/users",
		query:  url.Values{"email": {email}},
	})
	if err != nil {
		return nil, err
	}

	var candidates []json.RawMessage
	if err := json.Unmarshal(body, &candidates); err != nil {
		return nil, fmt.Errorf("unmarshal user search response: %w", err)
	}

	for _, candidate := range candidates {
		var probe struct {
			Email string `json:"email"`
		}
		if err := json.Unmarshal(candidate, &probe); err != nil {
			continue
		}
		if probe.Email == email {
			return parseUserResponse(candidate)
		}
	}

	return nil, nil
}

// GetUserByID retrieves a user by id. A 404 means the user does not exist
// and yields (nil, nil); any other non-success status is an *APIError.
func (a *Adapter) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if id == uuid.Nil {
		return nil, &ValidationError{Field: "id", Message: "cannot be empty"}
	}

	body, statusCode, err := a.doRequest(ctx, requestConfig{
		op:          fmt.Sprintf("get user with id %s", id),
		method:      http.MethodGet,
		path:        "/users/%s",
		pathParams:  []string{id.String()},
		expectCodes: []int{http.StatusOK, http.StatusNotFound},
	})
	if err != nil {
		return nil, err
	}
	if statusCode == http.StatusNotFound {
		return nil, nil
	}

	return parseUserResponse(body)
}

// SearchOption adjusts a user search query.
type SearchOption func(url.Values)

// WithFirst skips the given number of results (pagination offset).
func WithFirst(n int) SearchOption {
	return func(q url.Values) {
		q.Set("first", strconv.Itoa(n))
	}
}

// WithMax limits the number of returned results.
func WithMax(n int) SearchOption {
	return func(q url.Values) {
		q.Set("max", strconv.Itoa(n))
	}
}

// SearchUsers returns the users matching the given free-form query
// (username, name or email substring match, as implemented server-side).
func (a *Adapter) SearchUsers(ctx context.Context, query string, opts ...SearchOption) ([]models.User, error) {
	q := url.Values{"search": {query}}
	for _, opt := range opts {
		opt(q)
	}

	body, _, err := a.doRequest(ctx, requestConfig{
		op:     fmt.Sprintf("search users with query %s", query),
		method: http.MethodGet,
		path:   "/users",
		query:  q,
	})
	if err != nil {
		return nil, err
	}

	var usersData []json.RawMessage
	if err := json.Unmarshal(body, &usersData); err != nil {
		return nil, fmt.Errorf("unmarshal users response: %w", err)
	}

	users := make([]models.User, 0, len(usersData))
	for _, userData := range usersData {
		user, err := parseUserResponse(userData)
		if err != nil {
			return nil, err
		}
		users = append(users, *user)
	}

	return users, nil
}

// CountUsers returns the number of users in the realm, optionally narrowed
// by a free-form search query.
func (a *Adapter) CountUsers(ctx context.Context, query string) (int, error) {
	q := url.Values{}
	if query != "" {
		q.Set("search", query)
	}

	body, _, err := a.doRequest(ctx, requestConfig{
		op:     "count users",
		method: http.MethodGet,
		path:   "/users/count",
		query:  q,
	})
	if err != nil {
		return 0, err
	}

	// The count endpoint returns a bare integer body.
	var count int
	if err := json.Unmarshal(body, &count); err != nil {
		return 0, fmt.Errorf("unmarshal user count response: %w", err)
	}

	return count, nil
}

// RegisterUser creates a new user and returns its assigned id, extracted
// from the Location header of the create response. When the request carries
// federated identities they are reconciled for the new id afterwards; a
// reconciliation failure surfaces as an error but does not roll the user
// back.
func (a *Adapter) RegisterUser(ctx context.Context, user models.WriteUser) (uuid.UUID, error) {
	if user.ID != uuid.Nil {
		return uuid.Nil, &ValidationError{Field: "id", Message: "must not be set when registering"}
	}

	result, err := a.doRequestFull(ctx, requestConfig{
		op:          "create user",
		method:      http.MethodPost,
		path:        "/users",
		body:        userRepresentation(user),
		expectCodes: []int{http.StatusCreated, http.StatusOK},
	})
	if err != nil {
		return uuid.Nil, err
	}

	location := result.Headers.Get("Location")
	id, err := uuid.Parse(location[strings.LastIndex(location, "/")+1:])
	if err != nil {
		return uuid.Nil, fmt.Errorf("parse user id from Location header %q: %w", location, err)
	}

	if len(user.FederatedIdentities) > 0 {
		if err := a.reconcileFederatedIdentities(ctx, id, user.FederatedIdentities); err != nil {
			return uuid.Nil, err
		}
	}

	return id, nil
}

// UpdateUser updates an existing user, identified by user.ID. The payload
// has the same shape as registration, credentials included, so passwords can
// be reset through an update. Federated identities are reconciled afterwards
// when provided.
func (a *Adapter) UpdateUser(ctx context.Context, user models.WriteUser) error {
	if user.ID == uuid.Nil {
		return &ValidationError{Field: "id", Message: "required for update"}
	}

	err := a.doNoContent(ctx, requestConfig{
		op:          "update user",
		method:      http.MethodPut,
		path:        "/users/%s",
		pathParams:  []string{user.ID.String()},
		body:        userRepresentation(user),
		expectCodes: []int{http.StatusNoContent, http.StatusOK},
	})
	if err != nil {
		return err
	}

	if len(user.FederatedIdentities) > 0 {
		return a.reconcileFederatedIdentities(ctx, user.ID, user.FederatedIdentities)
	}

	return nil
}

// DeleteUser deletes a user by id.
func (a *Adapter) DeleteUser(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return &ValidationError{Field: "id", Message: "cannot be empty"}
	}

	return a.doNoContent(ctx, requestConfig{
		op:          fmt.Sprintf("delete user with id %s", id),
		method:      http.MethodDelete,
		path:        "/users/%s",
		pathParams:  []string{id.String()},
		expectCodes: []int{http.StatusNoContent, http.StatusOK},
	})
}

// ResetPassword sets a new password for the user. With temporary set the
// user is forced to choose a new password on next login.
func (a *Adapter) ResetPassword(ctx context.Context, id uuid.UUID, newPassword string, temporary bool) error {
	if id == uuid.Nil {
		return &ValidationError{Field: "id", Message: "cannot be empty"}
	}
	if newPassword == "" {
		return &ValidationError{Field: "newPassword", Message: "cannot be empty"}
	}

	return a.doNoContent(ctx, requestConfig{
		op:         fmt.Sprintf("reset password for user with id %s", id),
		method:     http.MethodPut,
		path:       "/users/%s/reset-password",
		pathParams: []string{id.String()},
		body: map[string]any{
			"type":      "password",
			"value":     newPassword,
			"temporary": temporary,
		},
		expectCodes: []int{http.StatusNoContent, http.StatusOK},
	})
}

// SendVerificationEmail asks Keycloak to email the user a verification link.
func (a *Adapter) SendVerificationEmail(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return &ValidationError{Field: "id", Message: "cannot be empty"}
	}

	return a.doNoContent(ctx, requestConfig{
		op:          fmt.Sprintf("send verification email for user with id %s", id),
		method:      http.MethodPut,
		path:        "/users/%s/send-verify-email",
		pathParams:  []string{id.String()},
		expectCodes: []int{http.StatusNoContent, http.StatusOK},
	})
}

// userRepresentation maps a WriteUser onto the user endpoint schema. All
// field-name knowledge for the write path lives here.
func userRepresentation(user models.WriteUser) map[string]any {
	rep := map[string]any{
		"username":      user.Username,
		"firstName":     user.FirstName,
		"lastName":      user.LastName,
		"email":         user.Email,
		"enabled":       user.Enabled,
		"emailVerified": user.EmailVerified,
		"attributes":    user.Attributes,
	}

	if credentials := user.Credential.Representation(); credentials != nil {
		rep["credentials"] = credentials
	}

	return rep
}

// parseUserResponse normalizes a user representation from the API. Only
// called on success bodies.
func parseUserResponse(data []byte) (*models.User, error) {
	var raw struct {
		ID               uuid.UUID            `json:"id"`
		CreatedTimestamp models.UnixMilliTime `json:"createdTimestamp"`
		Username         string               `json:"username"`
		Enabled          bool                 `json:"enabled"`
		EmailVerified    bool                 `json:"emailVerified"`
		FirstName        string               `json:"firstName"`
		LastName         string               `json:"lastName"`
		Email            string               `json:"email"`
		Attributes       map[string][]string  `json:"attributes"`
	}

	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse user: %w", err)
	}

	return &models.User{
		ID:            raw.ID,
		Username:      raw.Username,
		FirstName:     raw.FirstName,
		LastName:      raw.LastName,
		Email:         raw.Email,
		Enabled:       raw.Enabled,
		EmailVerified: raw.EmailVerified,
		Attributes:    raw.Attributes,
		CreatedAt:     raw.CreatedTimestamp.Time,
		Raw:           data,
	}, nil
}
