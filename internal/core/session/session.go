// Package session defines the authenticated session domain types.
package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token validation errors.
var (
	ErrNoToken      = errors.New("session has no token")
	ErrInvalidToken = errors.New("session token is malformed")
	ErrTokenExpired = errors.New("session token has expired")
)

// Session is the authenticated identity and bearer token of the current user,
// as returned by the login and register endpoints.
type Session struct {
	ID      string `json:"_id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"isAdmin"`
	Token   string `json:"token"`
}

// IsZero reports whether s holds no identity.
func (s Session) IsZero() bool {
	return s == Session{}
}

// Credentials is the login request body.
type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Registration is the register request body.
type Registration struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// ValidateToken checks that s carries a structurally valid bearer token that
// has not expired at now. The signature is not verified; that is the
// server's job. Tokens without an exp claim never expire client-side.
func (s Session) ValidateToken(now time.Time) error {
	if s.Token == "" {
		return ErrNoToken
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(s.Token, claims); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	exp, err := claims.GetExpirationTime()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if exp != nil && !now.Before(exp.Time) {
		return ErrTokenExpired
	}

	return nil
}

// ExpiresAt returns the token's exp claim, if any.
func (s Session) ExpiresAt() (time.Time, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(s.Token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
