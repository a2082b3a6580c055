package models

import "time"

// User is the minimal resource-owner projection this core needs: enough to
// authenticate a login and stamp codes and sessions. Full profile data lives
// in the accounts system, outside this service.
type User struct {
	UserID       string `gorm:"primaryKey"`
	Username     string `gorm:"uniqueIndex;not null"`
	Email        string `gorm:"not null"`
	PasswordHash string `gorm:"not null"` // bcrypt
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (User) TableName() string {
	return "users"
}
