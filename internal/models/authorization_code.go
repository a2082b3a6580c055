package models

import "time"

// AuthorizationCode stores OAuth 2.0 authorization codes (RFC 6749 §4.1).
// Codes are short-lived and single-use: the exchange path deletes the row
// before a token is minted, so a replayed code is simply absent. Each code is
// stamped with the resource owner who granted it and the redirect URI it was
// issued for.
type AuthorizationCode struct {
	Code      string `gorm:"primaryKey"` // Opaque random value, 48 bytes of entropy
	ClientID  string `gorm:"not null;index"`
	UserID    string `gorm:"not null;index"`
	Username  string `gorm:"not null"`
	UserEmail string `gorm:"not null"`

	RedirectURI string `gorm:"not null"`
	Scope       string `gorm:"not null"` // Space-separated requested scopes

	CreatedAt time.Time
	ExpiresAt time.Time
}

// IsExpired reports whether the code is past its expiry. Expiry is checked
// lazily at read time; there is no background reaper.
func (a *AuthorizationCode) IsExpired() bool {
	return !time.Now().Before(a.ExpiresAt)
}

func (AuthorizationCode) TableName() string {
	return "authorization_codes"
}
