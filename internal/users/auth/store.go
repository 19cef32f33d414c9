// Copyright (c) 2026 InternPulse. All rights reserved.

package auth

import (
	"context"
	"time"
)

// UserRepository defines the data access contract for user accounts.
//
// # Review Process
//
// This interface is placed in a separate file from user.go so entity changes
// and storage-contract changes can be reviewed independently by the team.
//
// # Implementations
//
// The canonical implementation for InternPulse is PostgreSQL (store_postgres.go).
type UserRepository interface {
	// FindByID returns the account with the given Snowflake ID.
	//
	// Returns [apperr.NotFound] if the account does not exist.
	FindByID(ctx context.Context, id int64) (*User, error)

	// FindByEmail returns the account with the given email.
	//
	// Returns [apperr.NotFound] if no user is registered with this email.
	FindByEmail(ctx context.Context, email string) (*User, error)

	// Create persists a brand-new user account to the storage.
	//
	// Returns [apperr.Conflict] if the email unique constraint fails.
	Create(ctx context.Context, user *User) error

	// Update persists changes to mutable account fields (names, flags).
	// Passwords must be updated via [UpdatePassword].
	Update(ctx context.Context, user *User) error

	// UpdatePassword replaces only the user's password hash.
	// This is separate from [Update] to prevent accidental overwrites
	// during unrelated profile updates.
	UpdatePassword(ctx context.Context, userID int64, newHash string) error

	// MarkVerified sets the verification flag and installs a fresh OTP secret
	// in a single statement.
	MarkVerified(ctx context.Context, userID int64, newOTPSecret string) error

	// Delete permanently removes the account row.
	// Signup uses this to undo itself when the welcome email cannot be sent.
	Delete(ctx context.Context, id int64) error
}

// BlacklistRepository defines the contract for revoked access tokens.
//
// # Consistency
//
// Inserts must be read-after-write consistent: a logout followed immediately
// by a request replaying the same token, possibly on another instance, must
// observe the entry. This rules out eventually consistent backends.
type BlacklistRepository interface {
	// Add records a revoked token. Inserting the same token twice is a no-op,
	// which makes logout idempotent.
	Add(ctx context.Context, entry *BlacklistEntry) error

	// IsBlacklisted reports whether the raw token value has been revoked.
	IsBlacklisted(ctx context.Context, rawToken string) (bool, error)
}

// RotationStore tracks which refresh-token IDs have already been redeemed.
//
// # Atomicity
//
// MarkRotated must be an atomic test-and-set: when two callers redeem the
// same refresh token concurrently, exactly one may observe first=true. A
// read-then-write implementation would allow duplicate rotation.
type RotationStore interface {
	// MarkRotated records the jti as spent for ttl. Returns first=true only
	// for the caller that created the marker.
	MarkRotated(ctx context.Context, jti string, ttl time.Duration) (first bool, err error)
}
