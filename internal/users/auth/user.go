// Copyright (c) 2026 InternPulse. All rights reserved.

// Package auth implements account identity and session lifecycle for the
// InternPulse platform.
//
// # Architecture
//
// Entities in this file represent the "Truth" of the system.
// They have no dependencies on outer layers (like databases, APIs, or libraries).
// This makes the core logic highly testable and resilient to technology changes.
package auth

import (
	"time"

	"github.com/internpulse/internpulse/internal/platform/sec"
)

// User represents a registered member of the InternPulse platform.
//
// # Rules
//   - Email is unique and validated.
//   - PasswordHash is generated via Bcrypt exclusively by the auth Service.
//   - IsVerified flips to true only through the OTP verification flow.
//   - OTPSecret is rotated after every successful verification so a leaked
//     passcode cannot be replayed against a future challenge.
type User struct {
	ID           int64     `json:"id,string"`
	Email        string    `json:"email"`
	FirstName    string    `json:"first_name"`
	MiddleName   string    `json:"middle_name,omitempty"`
	LastName     string    `json:"last_name"`
	PasswordHash string    `json:"-"` // Explicitly omitted from JSON for security.
	Role         sec.Role  `json:"role"`
	IsActive     bool      `json:"is_active"`
	IsVerified   bool      `json:"is_verified"`
	OTPSecret    string    `json:"-"` // Per-user TOTP seed. Omitted for security.
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// FullName joins the user's name parts, skipping an absent middle name.
func (u *User) FullName() string {
	if u.MiddleName == "" {
		return u.FirstName + " " + u.LastName
	}
	return u.FirstName + " " + u.MiddleName + " " + u.LastName
}

// BlacklistEntry records an access token revoked by logout.
//
// # Security Concept
//
// Access tokens (JWT) are stateless and stay cryptographically valid until
// they expire. Logout therefore records the token's raw value here, and the
// authentication middleware rejects any blacklisted token on every request
// regardless of its remaining lifetime. Rows become garbage once the token's
// natural expiry passes and may be pruned by a retention job.
type BlacklistEntry struct {
	ID        int64     `json:"id,string"`
	Token     string    `json:"-"`
	UserID    int64     `json:"user_id,string"`
	CreatedAt time.Time `json:"created_at"`
}

// TokenPair is the client-facing result of login, signup, and refresh.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Session bundles the issued token pair with the authenticated user.
type Session struct {
	TokenPair
	User *User `json:"user"`
}
