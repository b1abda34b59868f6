package models

import (
	"time"
)

// Session is a server-side login session keyed by an opaque id sent as a cookie
type Session struct {
	SID    string      `json:"sid" db:"sid"`
	Data   SessionData `json:"sess" db:"sess"`
	Expire time.Time   `json:"expire" db:"expire"`
}

// SessionData is the JSON document stored in the sess column
type SessionData struct {
	UserID string `json:"userId"`
}

// Expired reports whether the session is no longer valid at now
func (s *Session) Expired(now time.Time) bool {
	return !s.Expire.After(now)
}
