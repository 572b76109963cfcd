package api

import (
	"errors"
	"fmt"
)

// Sentinel errors for errors.Is matching.
var (
	ErrBanned  = errors.New("account is banned")
	ErrNetwork = errors.New("network error")
)

// APIError is returned when the server answers with a non-2xx status.
// Message is the server's `message` field, or the raw body when the response
// carries none.
type APIError struct {
	Status  int
	Message string
	Method  string
	Path    string

	banned bool
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s %s: server returned %d", e.Method, e.Path, e.Status)
	}
	return fmt.Sprintf("%s %s: %s (%d)", e.Method, e.Path, e.Message, e.Status)
}

// Is supports errors.Is(err, ErrBanned) for ban responses.
func (e *APIError) Is(target error) bool {
	return target == ErrBanned && e.banned
}

// NetworkError is returned when the request never produced a response:
// connection refused, DNS failure, timeout, or an unreadable body.
type NetworkError struct {
	Method string
	Path   string
	Cause  error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s %s: network error: %v", e.Method, e.Path, e.Cause)
}

func (e *NetworkError) Unwrap() error {
	return e.Cause
}

// Is supports errors.Is(err, ErrNetwork).
func (e *NetworkError) Is(target error) bool {
	return target == ErrNetwork
}

// Message returns the user-facing message carried by err: the server message
// of an *APIError, or err.Error() otherwise.
func Message(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return err.Error()
}
