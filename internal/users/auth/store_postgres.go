// Copyright (c) 2026 InternPulse. All rights reserved.

// PostgreSQL implementations of the auth storage contracts.
//
// # Error Mapping
//
// Storage-specific errors (like pgx.ErrNoRows) are mapped to domain-friendly
// [apperr.AppError] types to avoid leaking storage implementation details.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/internpulse/internpulse/internal/platform/apperr"
	"github.com/internpulse/internpulse/internal/platform/dberr"
)

// PostgresUserRepository implements the UserRepository interface using pgx.
type PostgresUserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new PostgreSQL implementation of the UserRepository.
func NewUserRepository(pool *pgxpool.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{pool: pool}
}

const userColumns = `id, email, first_name, middle_name, last_name, password_hash,
		role, is_active, is_verified, otp_secret, created_at, updated_at`

// scanUser maps a single row onto a [User].
func scanUser(row pgx.Row) (*User, error) {
	user := &User{}
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.FirstName,
		&user.MiddleName,
		&user.LastName,
		&user.PasswordHash,
		&user.Role,
		&user.IsActive,
		&user.IsVerified,
		&user.OTPSecret,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Create persists a new user record into the users table.
func (repository *PostgresUserRepository) Create(ctx context.Context, user *User) error {
	const query = `
		INSERT INTO users (
			id, email, first_name, middle_name, last_name, password_hash,
			role, is_active, is_verified, otp_secret, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	_, err := repository.pool.Exec(ctx, query,
		user.ID,
		user.Email,
		user.FirstName,
		user.MiddleName,
		user.LastName,
		user.PasswordHash,
		user.Role,
		user.IsActive,
		user.IsVerified,
		user.OTPSecret,
		user.CreatedAt,
		user.UpdatedAt,
	)

	if err != nil {
		if dberr.IsUniqueViolation(err) {
			return apperr.Conflict("Email is already registered")
		}
		return fmt.Errorf("postgres_user_repo_create_failed: %w", err)
	}

	return nil
}

// FindByEmail retrieves a user record by their unique email address.
//
// # Returns
//
// Returns [*User] if found, or [apperr.NotFound] if no account exists.
func (repository *PostgresUserRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	query := "SELECT " + userColumns + " FROM users WHERE email = $1"

	user, err := scanUser(repository.pool.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("User")
		}
		return nil, fmt.Errorf("postgres_user_repo_find_by_email_failed: %w", err)
	}

	return user, nil
}

// FindByID retrieves a user record by their Snowflake ID.
func (repository *PostgresUserRepository) FindByID(ctx context.Context, id int64) (*User, error) {
	query := "SELECT " + userColumns + " FROM users WHERE id = $1"

	user, err := scanUser(repository.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("User")
		}
		return nil, fmt.Errorf("postgres_user_repo_find_by_id_failed: %w", err)
	}

	return user, nil
}

// Update persists changes to a user's mutable account fields.
func (repository *PostgresUserRepository) Update(ctx context.Context, user *User) error {
	const query = `
		UPDATE users
		SET first_name = $2, middle_name = $3, last_name = $4, role = $5,
		    is_active = $6, is_verified = $7, otp_secret = $8, updated_at = $9
		WHERE id = $1`

	user.UpdatedAt = time.Now()
	_, err := repository.pool.Exec(ctx, query,
		user.ID,
		user.FirstName,
		user.MiddleName,
		user.LastName,
		user.Role,
		user.IsActive,
		user.IsVerified,
		user.OTPSecret,
		user.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("postgres_user_repo_update_failed: %w", err)
	}

	return nil
}

// UpdatePassword updates only the password hash for a specific user.
func (repository *PostgresUserRepository) UpdatePassword(ctx context.Context, userID int64, newHash string) error {
	const query = `
		UPDATE users
		SET password_hash = $2, updated_at = $3
		WHERE id = $1`

	_, err := repository.pool.Exec(ctx, query, userID, newHash, time.Now())
	if err != nil {
		return fmt.Errorf("postgres_user_repo_update_password_failed: %w", err)
	}

	return nil
}

// MarkVerified flips the verification flag and rotates the OTP secret atomically.
func (repository *PostgresUserRepository) MarkVerified(ctx context.Context, userID int64, newOTPSecret string) error {
	const query = `
		UPDATE users
		SET is_verified = TRUE, otp_secret = $2, updated_at = $3
		WHERE id = $1`

	_, err := repository.pool.Exec(ctx, query, userID, newOTPSecret, time.Now())
	if err != nil {
		return fmt.Errorf("postgres_user_repo_mark_verified_failed: %w", err)
	}

	return nil
}

// Delete permanently removes a user account row.
func (repository *PostgresUserRepository) Delete(ctx context.Context, id int64) error {
	const query = "DELETE FROM users WHERE id = $1"
	_, err := repository.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("postgres_user_repo_delete_failed: %w", err)
	}
	return nil
}

// ── Blacklist Repository ─────────────────────────────────────────────────────

// PostgresBlacklistRepository implements the BlacklistRepository interface.
//
// The blacklist lives in PostgreSQL rather than a cache because revocation
// must be read-after-write consistent across all API instances.
type PostgresBlacklistRepository struct {
	pool *pgxpool.Pool
}

// NewBlacklistRepository creates a new PostgreSQL implementation of BlacklistRepository.
func NewBlacklistRepository(pool *pgxpool.Pool) *PostgresBlacklistRepository {
	return &PostgresBlacklistRepository{pool: pool}
}

// Add records a revoked token. Conflicts on the token unique constraint are
// swallowed so a double logout stays a no-op.
func (repository *PostgresBlacklistRepository) Add(ctx context.Context, entry *BlacklistEntry) error {
	const query = `
		INSERT INTO blacklisted_tokens (id, token, user_id, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (token) DO NOTHING`

	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	_, err := repository.pool.Exec(ctx, query,
		entry.ID,
		entry.Token,
		entry.UserID,
		entry.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("postgres_blacklist_repo_add_failed: %w", err)
	}

	return nil
}

// IsBlacklisted reports whether the raw token value has been revoked.
func (repository *PostgresBlacklistRepository) IsBlacklisted(ctx context.Context, rawToken string) (bool, error) {
	const query = "SELECT EXISTS(SELECT 1 FROM blacklisted_tokens WHERE token = $1)"

	var revoked bool
	if err := repository.pool.QueryRow(ctx, query, rawToken).Scan(&revoked); err != nil {
		return false, fmt.Errorf("postgres_blacklist_repo_lookup_failed: %w", err)
	}

	return revoked, nil
}
