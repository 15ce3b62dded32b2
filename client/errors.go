package client

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Sentinel errors for use with errors.Is()
var (
	// ErrNotFound indicates the requested resource was not found (HTTP 404).
	ErrNotFound = errors.New("resource not found")

	// ErrUnauthorized indicates invalid or missing authentication (HTTP 401).
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden indicates insufficient permissions (HTTP 403).
	ErrForbidden = errors.New("forbidden")

	// ErrBadRequest indicates invalid request parameters (HTTP 400).
	ErrBadRequest = errors.New("bad request")

	// ErrConflict indicates a resource conflict, e.g., duplicate entry (HTTP 409).
	ErrConflict = errors.New("resource conflict")

	// ErrServerError indicates an internal server error (HTTP 5xx).
	ErrServerError = errors.New("server error")

	// ErrInvalidInput indicates validation failure for input parameters.
	ErrInvalidInput = errors.New("invalid input")

	// ErrAuthentication indicates the admin password grant was rejected.
	ErrAuthentication = errors.New("admin authentication failed")
)

// APIError represents a non-success response from the Keycloak admin API.
type APIError struct {
	Operation  string // Logical operation, e.g. "get user by id"
	StatusCode int    // HTTP status code
	Message    string // Error message extracted from the response
	Body       []byte // Raw upstream response body (for diagnostics)
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("keycloak api error: %s (status %d): %s", e.Operation, e.StatusCode, e.Message)
}

// Is implements errors.Is() for comparing with sentinel errors.
func (e *APIError) Is(target error) bool {
	switch e.StatusCode {
	case 400:
		return target == ErrBadRequest
	case 401:
		return target == ErrUnauthorized
	case 403:
		return target == ErrForbidden
	case 404:
		return target == ErrNotFound
	case 409:
		return target == ErrConflict
	}
	if e.StatusCode >= 500 && e.StatusCode < 600 {
		return target == ErrServerError
	}
	return false
}

// AuthenticationError wraps the upstream failure from the admin password
// grant so it stays distinguishable from ordinary API errors.
type AuthenticationError struct {
	Err error
}

// Error implements the error interface.
func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("admin authentication failed: %v", e.Err)
}

// Is implements errors.Is() for comparing with ErrAuthentication.
func (e *AuthenticationError) Is(target error) bool {
	return target == ErrAuthentication
}

// Unwrap returns the wrapped upstream error.
func (e *AuthenticationError) Unwrap() error {
	return e.Err
}

// ValidationError represents a usage error raised before any network call.
type ValidationError struct {
	Field   string // Field name that failed validation
	Message string // Validation error message
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s: %s", e.Field, e.Message)
}

// Is implements errors.Is() for comparing with ErrInvalidInput.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// Unwrap returns ErrInvalidInput for error chain.
func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// newAPIError creates an APIError, extracting structured error info from the
// Keycloak error body when present ({"error": ..., "errorMessage": ...}).
func newAPIError(operation string, statusCode int, body []byte) *APIError {
	apiErr := &APIError{
		Operation:  operation,
		StatusCode: statusCode,
		Message:    string(body),
		Body:       body,
	}

	var errResp struct {
		Error        string `json:"error"`
		ErrorMessage string `json:"errorMessage"`
		Description  string `json:"error_description"`
	}
	if json.Unmarshal(body, &errResp) == nil {
		switch {
		case errResp.ErrorMessage != "":
			apiErr.Message = errResp.ErrorMessage
		case errResp.Description != "":
			apiErr.Message = errResp.Description
		case errResp.Error != "":
			apiErr.Message = errResp.Error
		}
	}

	return apiErr
}

// isExpectedStatus checks if the status code is in the expected list.
// If expected is empty, it defaults to checking for 200 OK.
func isExpectedStatus(code int, expected []int) bool {
	if len(expected) == 0 {
		return code == 200
	}
	for _, e := range expected {
		if code == e {
			return true
		}
	}
	return false
}
