package models

import (
	"time"
)

// Admin is the resource behind the "admin" scope. Admin accounts are local
// only and live in their own table, so user and admin authentication state
// never overlap.
type Admin struct {
	// ID is the unique identifier for the admin.
	ID uint64 `gorm:"primaryKey"`
	// Active indicates whether the admin account can sign in.
	Active bool
	// Username is the unique username for login.
	Username string `gorm:"unique;size:100;not null"`
	// Email is the admin's email address.
	Email string `gorm:"size:255;not null"`
	// Password is the Argon2id hashed password.
	Password string `gorm:"size:255;not null"`
	// CreatedAt is the timestamp when the admin was created (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the admin was last updated (managed by GORM).
	UpdatedAt time.Time
}

// VerifyPassword verifies a plaintext password against the admin's stored
// hashed password using constant-time comparison.
func (a *Admin) VerifyPassword(password string) bool {
	return verifyPassword(password, a.Password)
}
