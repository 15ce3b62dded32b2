package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/idpkit/keycloak-go/models"
)

// GetUserTokens mints an access/refresh token pair for the given user via
// RFC 8693 token exchange, using the cached admin token as the subject token
// and the configured token-exchange target client as the audience.
//
// The result is never cached; every call issues a fresh exchange.
func (a *Adapter) GetUserTokens(ctx context.Context, id uuid.UUID) (*models.Tokens, error) {
	if id == uuid.Nil {
		return nil, &ValidationError{Field: "id", Message: "cannot be empty"}
	}
	if a.cfg.TokenExchangeClientID == "" {
		return nil, &ValidationError{Field: "tokenExchangeClientID", Message: "not configured"}
	}

	adminToken, err := a.acquireAdminToken(ctx)
	if err != nil {
		return nil, err
	}

	data := url.Values{}
	data.Set("audience", a.cfg.TokenExchangeClientID)
	data.Set("grant_type", "urn:ietf:params:oauth:grant-type:token-exchange")
	data.Set("requested_subject", id.String())
	data.Set("subject_token", adminToken)
	data.Set("client_id", a.cfg.TokenExchangeClientID)
	data.Set("client_secret", a.cfg.AdminClientSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.tokenURL(), strings.NewReader(data.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("token exchange request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, newAPIError(fmt.Sprintf("obtain tokens for user %s", id), resp.StatusCode, body)
	}

	var result tokenResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("unmarshal token exchange response: %w", err)
	}

	return &models.Tokens{
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
	}, nil
}
