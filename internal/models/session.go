package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AccessSession is the persisted record of an authenticated operator
// session. It exists from a successful key check until expiry or explicit
// logout.
type AccessSession struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the session window has passed at the given time.
func (s AccessSession) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// SessionClaims are the JWT claims carried by the session bearer token.
type SessionClaims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// SubmitKeyRequest is the access-gate entry payload.
type SubmitKeyRequest struct {
	AccessKey string `json:"access_key"`
}

// SessionInfo is returned to the client after a successful key check or a
// session probe.
type SessionInfo struct {
	Authenticated bool      `json:"authenticated"`
	Token         string    `json:"token,omitempty"`
	ExpiresAt     time.Time `json:"expires_at"`
}
