package domain

import (
	"strings"
	"time"
)

// Role enumerates marketplace roles. Roles are flat: no role implies another.
type Role string

const (
	RoleGuest Role = "guest"
	RoleHost  Role = "host"
	RoleAdmin Role = "admin"
)

// legacyRoleUser is the value older records carry for guests.
const legacyRoleUser = "user"

// ParseRole normalizes a stored or submitted role value.
func ParseRole(value string) (Role, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case string(RoleGuest), legacyRoleUser:
		return RoleGuest, true
	case string(RoleHost):
		return RoleHost, true
	case string(RoleAdmin):
		return RoleAdmin, true
	default:
		return "", false
	}
}

// User is an account on the marketplace.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Public returns a copy of the user without the password hash.
func (u *User) Public() *User {
	if u == nil {
		return nil
	}
	clone := *u
	clone.PasswordHash = ""
	return &clone
}

// NormalizeEmail lower-cases and trims an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
