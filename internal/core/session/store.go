package session

import (
	"context"
	"errors"
	"fmt"
)

// Sentinel errors for session operations.
var (
	ErrNotFound = errors.New("no persisted session")
	ErrAuth     = errors.New("authentication failed")
)

// Store defines durable persistence for the current session.
type Store interface {
	// Load returns the persisted session. Returns ErrNotFound if none exists.
	Load(ctx context.Context) (Session, error)
	// Save persists s, replacing any previous session.
	Save(ctx context.Context, s Session) error
	// Clear removes the persisted session. Clearing an absent session is not an error.
	Clear(ctx context.Context) error
}

// AuthError is returned when login or registration fails. Message is safe to
// show to the user; Cause holds the underlying error, if any.
type AuthError struct {
	Message string
	Cause   error
}

func (e *AuthError) Error() string {
	if e.Cause != nil && e.Message == "" {
		return fmt.Sprintf("authentication failed: %v", e.Cause)
	}
	return "authentication failed: " + e.Message
}

func (e *AuthError) Unwrap() error {
	return e.Cause
}

// Is supports errors.Is(err, ErrAuth).
func (e *AuthError) Is(target error) bool {
	return target == ErrAuth
}
