package jobapi

import (
	"fmt"
	"net/http"
)

// APIError is a non-2xx response carrying the server's description.
type APIError struct {
	URL         string
	StatusCode  int
	Description string
}

// Error returns the server-supplied description verbatim so it can be shown to users as-is.
func (e *APIError) Error() string {
	if e.Description != "" {
		return e.Description
	}
	return fmt.Sprintf("HTTP status %d", e.StatusCode)
}

// NotFound reports whether the server answered 404.
func (e *APIError) NotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// TransportError is a network, read, or decode failure with no structured description.
type TransportError struct {
	URL     string
	Message string
	Cause   error
}

func (e *TransportError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("transport error for %s: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("transport error for %s: %s", e.URL, e.Message)
}

func (e *TransportError) Unwrap() error {
	return e.Cause
}
