package client

import (
	"log/slog"
	"net/http"
	"time"
)

// Configuration constants
const (
	// Default configuration values
	defaultTimeout               = 5 * time.Second
	defaultResponseHeaderTimeout = 30 * time.Second
	defaultIdleConnTimeout       = 90 * time.Second

	// defaultRelativePath matches Keycloak distributions serving under
	// /auth. Quarkus-based deployments serve from the root; use
	// WithRelativePath("") for those.
	defaultRelativePath = "/auth"
)

// Option configures the Adapter.
type Option func(*options)

// options holds the configuration for the Adapter.
type options struct {
	timeout               time.Duration // HTTP client timeout (default: 5s)
	responseHeaderTimeout time.Duration // Timeout for waiting for response headers (default: 30s)
	idleConnTimeout       time.Duration // How long idle connections stay in pool (default: 90s)
	httpClient            *http.Client  // Custom HTTP client (overrides all timeout options if set)
	relativePath          string        // Path prefix before /realms and /admin (default: /auth)
	logger                *slog.Logger  // Optional logger for debug output
}

// defaultOptions returns the default configuration.
func defaultOptions() *options {
	return &options{
		timeout:               defaultTimeout,
		responseHeaderTimeout: defaultResponseHeaderTimeout,
		idleConnTimeout:       defaultIdleConnTimeout,
		relativePath:          defaultRelativePath,
	}
}

// WithTimeout sets the HTTP client timeout.
// Values <= 0 are ignored (default is used).
// Default: 5s
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithResponseHeaderTimeout sets the timeout for waiting for response headers.
// Default: 30s. Values <= 0 are ignored.
// Note: This option is ignored when WithHTTPClient is used.
func WithResponseHeaderTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.responseHeaderTimeout = d
		}
	}
}

// WithIdleConnTimeout sets how long idle connections stay in the connection pool.
// Default: 90s. Values <= 0 are ignored.
// Note: This option is ignored when WithHTTPClient is used.
func WithIdleConnTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.idleConnTimeout = d
		}
	}
}

// WithHTTPClient sets a custom HTTP client.
// When set, this overrides timeout, responseHeaderTimeout, and idleConnTimeout options.
// The caller is responsible for configuring appropriate timeouts on the custom client.
// Nil values are ignored.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) {
		if c != nil {
			o.httpClient = c
		}
	}
}

// WithRelativePath sets the path prefix between the base URL and the
// /realms and /admin segments. An empty string is valid and targets
// Quarkus-based Keycloak deployments.
// Default: /auth
func WithRelativePath(path string) Option {
	return func(o *options) {
		o.relativePath = path
	}
}

// WithLogger sets a logger for debug output on token acquisition and
// identity reconciliation. Nil values are ignored; by default nothing is
// logged.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}
