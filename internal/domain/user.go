package domain

import (
	"strings"
	"time"
)

// User is a registered account. PasswordHash never leaves the service layer.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// NormalizeEmail lowercases and trims an email so lookups are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// UnknownUserName is shown in place of an owner or reviewer whose account no longer exists.
const UnknownUserName = "Unknown User"

// DisplayName returns the user's name, or UnknownUserName for a nil user.
func (u *User) DisplayName() string {
	if u == nil {
		return UnknownUserName
	}
	return u.Name
}
