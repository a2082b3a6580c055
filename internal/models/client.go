package models

import (
	"time"
)

// Client is a registered API client (RFC 6749 §2). The secret is stored as a
// SHA-256 hex digest; the plaintext is only ever held by the client operator.
// Rows are mutated exclusively by the external client-management process;
// within a request a Client is immutable once resolved.
type Client struct {
	ClientID    string `gorm:"primaryKey"`
	Name        string `gorm:"not null"`
	Description string `gorm:"type:text"`
	RedirectURI string `gorm:"not null"` // Single registered redirect URI; exact match only
	SecretHash  string `gorm:"not null"` // SHA256 hex digest of the client secret
	CreatedAt   time.Time
	UpdatedAt   time.Time

	// Populated by the registry when the client is resolved; not columns.
	Scopes     []string `gorm:"-"` // Union of the client's authorization rows
	GrantTypes []string `gorm:"-"` // Union of the client's grant type rows
}

func (Client) TableName() string {
	return "clients"
}

// ClientAuthorization associates a client with a single authorized scope.
// A client's effective scope set is the union of its authorization rows.
type ClientAuthorization struct {
	ID        uint   `gorm:"primaryKey;autoIncrement"`
	ClientID  string `gorm:"not null;index"`
	Scope     string `gorm:"not null"`
	CreatedAt time.Time
}

func (ClientAuthorization) TableName() string {
	return "client_authorizations"
}

// ClientGrantType associates a client with a grant type it may use.
type ClientGrantType struct {
	ID        uint   `gorm:"primaryKey;autoIncrement"`
	ClientID  string `gorm:"not null;index"`
	GrantType string `gorm:"not null"`
	CreatedAt time.Time
}

func (ClientGrantType) TableName() string {
	return "client_grant_types"
}
