package internal

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrLoginRequired is returned when an operation needs a session and none is stored.
	ErrLoginRequired = errors.New("login required")
	// ErrNotConnected is returned when emitting on a closed or down realtime connection.
	ErrNotConnected = errors.New("realtime connection is not established")
	// ErrEmptyMessage is returned when submitting a blank chat composition.
	ErrEmptyMessage = errors.New("message content cannot be empty")
	// ErrNotFound is returned by the state store for missing or expired keys.
	ErrNotFound = errors.New("not found")
)

// APIError represents a non-2xx response from the backend
type APIError struct {
	Method  string
	Path    string
	Status  int
	Message string // server supplied "message" field, if any
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api error: %s %s: %d %s: %s", e.Method, e.Path, e.Status, http.StatusText(e.Status), e.Message)
	}
	return fmt.Sprintf("api error: %s %s: %d %s", e.Method, e.Path, e.Status, http.StatusText(e.Status))
}

// IsUnauthorized reports whether the backend rejected the credentials.
func (e *APIError) IsUnauthorized() bool {
	return e.Status == http.StatusUnauthorized
}

// IsForbidden reports whether the credentials lack the required privilege.
func (e *APIError) IsForbidden() bool {
	return e.Status == http.StatusForbidden
}

// StoreError represents errors accessing the local client state
type StoreError struct {
	Key string
	Op  string // "get", "set", "delete", "open"
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store error: %s %s: %v", e.Op, e.Key, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// RealtimeError represents failures of the realtime chat connection
type RealtimeError struct {
	Op  string // "dial", "handshake", "read", "write"
	URL string
	Err error
}

func (e *RealtimeError) Error() string {
	return fmt.Sprintf("realtime error: %s %s: %v", e.Op, e.URL, e.Err)
}

func (e *RealtimeError) Unwrap() error {
	return e.Err
}

// ExportError represents errors during transcript export
type ExportError struct {
	Format string
	Path   string
	Err    error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("export error [%s] %s: %v", e.Format, e.Path, e.Err)
}

func (e *ExportError) Unwrap() error {
	return e.Err
}

// AsAPIError unwraps err into an *APIError when possible.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}
