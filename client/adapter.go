package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
)

// Config carries the admin credentials and realm coordinates for an Adapter.
// It is set once at construction and never mutated.
type Config struct {
	BaseURL               string // e.g. "https://sso.example.com"
	Realm                 string // Realm the users live in
	AdminUsername         string // Admin user for the password grant
	AdminPassword         string
	AdminClientID         string // Client the admin authenticates through
	AdminClientSecret     string
	TokenExchangeClientID string // Target client for per-user token exchange
}

// Adapter implements the Client interface against the Keycloak admin API.
//
// The admin access token is acquired lazily on first use and then reused for
// the whole lifetime of the instance. There is no expiry check and no
// refresh: if Keycloak later rejects the token, the rejected call fails with
// an *APIError and the caller is expected to build a fresh Adapter.
type Adapter struct {
	cfg        Config
	httpClient *http.Client
	opts       *options
	logger     *slog.Logger

	tokenMu    sync.RWMutex
	adminToken string
}

var _ Client = (*Adapter)(nil)

// New creates a new Keycloak admin client with the provided options.
// Returns an error if required configuration is missing.
func New(cfg Config, opts ...Option) (*Adapter, error) {
	if cfg.BaseURL == "" {
		return nil, &ValidationError{Field: "baseURL", Message: "cannot be empty"}
	}
	if cfg.Realm == "" {
		return nil, &ValidationError{Field: "realm", Message: "cannot be empty"}
	}
	if cfg.AdminUsername == "" {
		return nil, &ValidationError{Field: "adminUsername", Message: "cannot be empty"}
	}
	if cfg.AdminClientID == "" {
		return nil, &ValidationError{Field: "adminClientID", Message: "cannot be empty"}
	}

	// Apply options
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	// Create HTTP client with proper connection pooling
	httpClient := o.httpClient
	if httpClient == nil {
		// Clone default transport and increase connection pool limits
		// Default MaxIdleConnsPerHost is 2, which causes excessive TIME_WAIT connections
		transport := http.DefaultTransport.(*http.Transport).Clone()
		transport.MaxIdleConns = 100
		transport.MaxIdleConnsPerHost = 100
		transport.MaxConnsPerHost = 100
		transport.ResponseHeaderTimeout = o.responseHeaderTimeout
		transport.IdleConnTimeout = o.idleConnTimeout
		httpClient = &http.Client{
			Timeout:   o.timeout,
			Transport: transport,
		}
	}

	// Normalize URL pieces to prevent double slashes in concatenation
	cfg.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	if o.relativePath != "" && !strings.HasPrefix(o.relativePath, "/") {
		o.relativePath = "/" + o.relativePath
	}
	o.relativePath = strings.TrimSuffix(o.relativePath, "/")

	return &Adapter{
		cfg:        cfg,
		httpClient: httpClient,
		opts:       o,
		logger:     o.logger,
	}, nil
}

// tokenURL returns the realm's OpenID Connect token endpoint.
func (a *Adapter) tokenURL() string {
	return fmt.Sprintf("%s%s/realms/%s/protocol/openid-connect/token",
		a.cfg.BaseURL, a.opts.relativePath, url.PathEscape(a.cfg.Realm))
}

// realmURL returns the issuer URL of the configured realm.
func (a *Adapter) realmURL() string {
	return fmt.Sprintf("%s%s/realms/%s", a.cfg.BaseURL, a.opts.relativePath, url.PathEscape(a.cfg.Realm))
}

// adminRoot returns the admin API root for the configured realm.
func (a *Adapter) adminRoot() string {
	return fmt.Sprintf("%s%s/admin/realms/%s", a.cfg.BaseURL, a.opts.relativePath, url.PathEscape(a.cfg.Realm))
}

// tokenResponse is the wire format of the OpenID Connect token endpoint.
type tokenResponse struct {
	AccessToken      string `json:"access_token"`
	ExpiresIn        int    `json:"expires_in"`
	RefreshExpiresIn int    `json:"refresh_expires_in"`
	RefreshToken     string `json:"refresh_token"`
	TokenType        string `json:"token_type"`
}

// acquireAdminToken returns the memoized admin access token, performing the
// password grant on first use. The token is trusted for the lifetime of the
// instance; failed acquisitions are not cached, so concurrent first callers
// race to at most one successful write.
func (a *Adapter) acquireAdminToken(ctx context.Context) (string, error) {
	// Fast path: check cached token with read lock
	a.tokenMu.RLock()
	if a.adminToken != "" {
		token := a.adminToken
		a.tokenMu.RUnlock()
		return token, nil
	}
	a.tokenMu.RUnlock()

	// Slow path: acquire write lock and double-check (prevents duplicate grants)
	a.tokenMu.Lock()
	defer a.tokenMu.Unlock()

	if a.adminToken != "" {
		return a.adminToken, nil
	}

	data := url.Values{}
	data.Set("grant_type", "password")
	data.Set("username", a.cfg.AdminUsername)
	data.Set("password", a.cfg.AdminPassword)
	data.Set("client_id", a.cfg.AdminClientID)
	data.Set("client_secret", a.cfg.AdminClientSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.tokenURL(), strings.NewReader(data.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return "", &AuthenticationError{Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return "", &AuthenticationError{Err: fmt.Errorf("read token response: %w", err)}
	}
	if resp.StatusCode != http.StatusOK {
		return "", &AuthenticationError{Err: newAPIError("obtain admin token", resp.StatusCode, body)}
	}

	var result tokenResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", &AuthenticationError{Err: fmt.Errorf("unmarshal token response: %w", err)}
	}
	if result.AccessToken == "" {
		return "", &AuthenticationError{Err: fmt.Errorf("token response missing access_token")}
	}

	a.adminToken = result.AccessToken
	if a.logger != nil {
		a.logger.DebugContext(ctx, "admin token acquired", slog.String("realm", a.cfg.Realm))
	}

	return a.adminToken, nil
}
