package client

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrUnauthorized: the service rejected the credentials or the token.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrRejected: the service refused the request (validation, conflict).
	ErrRejected = errors.New("request rejected")
	// ErrUnavailable: the request did not complete (transport, 5xx, deadline).
	ErrUnavailable = errors.New("server unavailable")
	// ErrMalformedResponse: a success response lacks required fields.
	ErrMalformedResponse = errors.New("malformed response")
)

// APIError is a non-2xx answer. Detail carries the service's "detail" field
// verbatim.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("auth service %d: %s", e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("auth service %d: %s", e.StatusCode, http.StatusText(e.StatusCode))
}

// Unwrap maps the status to ErrUnauthorized, ErrUnavailable or ErrRejected.
func (e *APIError) Unwrap() error {
	return kindForStatus(e.StatusCode)
}

func kindForStatus(code int) error {
	switch {
	case code == http.StatusUnauthorized, code == http.StatusForbidden:
		return ErrUnauthorized
	case code >= 500:
		return ErrUnavailable
	default:
		return ErrRejected
	}
}

// DetailOf returns the service-provided message carried by err, if any.
func DetailOf(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Detail
	}
	return ""
}
