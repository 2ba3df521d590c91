// Package user implements registration, login, and the admin-gated user
// management operations (list, delete). Credentials are argon2id hashes --
// the password is never stored or compared in plaintext.
package user

import (
	"time"
)

// Role values. Every registered user starts as RoleNormal; RoleAdmin is the
// privileged marker required to delete users.
const (
	RoleNormal = "normal"
	RoleAdmin  = "admin"
)

// User represents a registered account. The password hash is deliberately
// excluded from JSON -- it never leaves the server.
type User struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// IsAdmin reports whether the user carries the privileged role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// --- Request DTOs (bound from HTTP requests) ---

// CredentialsRequest holds the body of both the register and login calls.
type CredentialsRequest struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}
