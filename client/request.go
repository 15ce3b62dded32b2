package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// maxResponseSize caps how much of any response body is read.
const maxResponseSize = 10 * 1024 * 1024 // 10MB

// requestConfig contains parameters for an admin API request.
type requestConfig struct {
	op          string     // Logical operation name used in APIError
	method      string     // HTTP method (GET, POST, PUT, DELETE)
	path        string     // Path template under the admin realm root, e.g. "/users/%s"
	pathParams  []string   // Parameters to substitute in path (will be URL-escaped)
	query       url.Values // Query parameters
	body        any        // Request body (will be JSON-encoded)
	expectCodes []int      // Expected HTTP status codes (default: 200)
}

// requestResult contains the full response from an admin API request.
type requestResult struct {
	Body       []byte
	StatusCode int
	Headers    http.Header
}

// doRequest executes an admin API request with authentication, URL building,
// and error handling. Returns response body, status code, and error.
func (a *Adapter) doRequest(ctx context.Context, cfg requestConfig) ([]byte, int, error) {
	result, err := a.doRequestFull(ctx, cfg)
	if err != nil {
		return nil, 0, err
	}
	return result.Body, result.StatusCode, nil
}

// doRequestFull executes an admin API request and returns the full response
// including headers. Used where a response header carries data, such as the
// Location header of a user create.
func (a *Adapter) doRequestFull(ctx context.Context, cfg requestConfig) (*requestResult, error) {
	// 1. Authenticate
	token, err := a.acquireAdminToken(ctx)
	if err != nil {
		return nil, err
	}

	// 2. Build URL with escaped path parameters
	apiURL := a.buildAdminURL(cfg.path, cfg.pathParams, cfg.query)

	// 3. Serialize body if present
	var bodyReader io.Reader
	if cfg.body != nil {
		bodyBytes, err := json.Marshal(cfg.body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(bodyBytes)
	}

	// 4. Create request
	req, err := http.NewRequestWithContext(ctx, cfg.method, apiURL, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	// 5. Set headers
	req.Header.Set("Authorization", "Bearer "+token)
	if cfg.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	// 6. Execute request
	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	// 7. Read response body (with size limit)
	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	// 8. Check status code
	if !isExpectedStatus(resp.StatusCode, cfg.expectCodes) {
		return nil, newAPIError(cfg.op, resp.StatusCode, respBody)
	}

	return &requestResult{
		Body:       respBody,
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
	}, nil
}

// doJSON executes an admin API request and unmarshals the JSON response into result.
func (a *Adapter) doJSON(ctx context.Context, cfg requestConfig, result any) error {
	body, _, err := a.doRequest(ctx, cfg)
	if err != nil {
		return err
	}

	if result != nil && len(body) > 0 {
		if err := json.Unmarshal(body, result); err != nil {
			return fmt.Errorf("failed to unmarshal response: %w", err)
		}
	}

	return nil
}

// doNoContent executes an admin API request that expects no response body.
func (a *Adapter) doNoContent(ctx context.Context, cfg requestConfig) error {
	_, _, err := a.doRequest(ctx, cfg)
	return err
}

// buildAdminURL constructs a full admin API URL with escaped path parameters
// and query string.
func (a *Adapter) buildAdminURL(pathTemplate string, pathParams []string, query url.Values) string {
	var path string
	if len(pathParams) > 0 {
		escapedParams := make([]any, len(pathParams))
		for i, p := range pathParams {
			escapedParams[i] = url.PathEscape(p)
		}
		path = fmt.Sprintf(pathTemplate, escapedParams...)
	} else {
		path = pathTemplate
	}

	result := a.adminRoot() + path

	if len(query) > 0 {
		result += "?" + query.Encode()
	}

	return result
}
