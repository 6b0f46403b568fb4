package domain

import (
	"errors"
	"time"
)

var (
	ErrMissingCredentials = errors.New("email and password are required")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrNotAuthorized      = errors.New("email not authorized")
	ErrAuthNotConfigured  = errors.New("admin credentials are not configured")
	ErrUnauthenticated    = errors.New("not authenticated")
)

// SessionTTL is the fixed lifetime of an issued credential.
const SessionTTL = 24 * time.Hour

// Session is the identity carried by a verified credential.
type Session struct {
	TokenID   string    `json:"-"`
	Email     string    `json:"email"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}
