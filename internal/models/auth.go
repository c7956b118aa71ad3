package models

import "time"

// LoginRequest holds the admin password.
type LoginRequest struct {
	Password string `json:"password" validate:"required"`
}

// LoginResponse returns the issued session token.
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Session is a server side admin session.
type Session struct {
	Token     string    `json:"-"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Expired reports whether the session is past its deadline at now.
func (s Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// SessionStatus answers the session probe.
type SessionStatus struct {
	Valid bool `json:"valid"`
}
