package models

import (
	"strings"
	"time"
)

// Session is the durable record describing what an access token authorizes
// and for whom. The token value is used verbatim as the session ID, which
// makes the downstream authenticator lookup a single primary-key read.
// A session is created exactly once per successful token issuance.
type Session struct {
	SessionID string `gorm:"primaryKey"` // The access token value itself
	Scopes    string `gorm:"not null"`   // Space-separated authorized scopes

	// Bound resource owner; empty for pure client-credentials sessions.
	UserID    string `gorm:"index"`
	Username  string
	UserEmail string

	// Issuing client; empty for end-user login sessions.
	ClientID string `gorm:"index"`

	RemoteAddr string
	RemoteHost string

	StartedAt time.Time
	ExpiresAt time.Time
}

// HasUser reports whether a resource owner is bound to the session.
func (s *Session) HasUser() bool {
	return s.UserID != ""
}

// IsExpired reports whether the session is past its expiry.
func (s *Session) IsExpired() bool {
	return !time.Now().Before(s.ExpiresAt)
}

// ScopeList returns the session's authorized scopes as a slice.
func (s *Session) ScopeList() []string {
	return strings.Fields(s.Scopes)
}

func (Session) TableName() string {
	return "sessions"
}
