// Copyright (c) 2026 InternPulse. All rights reserved.

package account

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/internpulse/internpulse/internal/platform/apperr"
	"github.com/internpulse/internpulse/internal/users/auth"
)

// PostgresProfileRepository implements ProfileRepository using pgx.
type PostgresProfileRepository struct {
	pool *pgxpool.Pool
}

// NewProfileRepository creates the PostgreSQL profile store.
func NewProfileRepository(pool *pgxpool.Pool) *PostgresProfileRepository {
	return &PostgresProfileRepository{pool: pool}
}

// Get returns the user's profile. A user who never edited their profile gets
// an empty one rather than a NotFound, so the me endpoint always has a shape.
func (repository *PostgresProfileRepository) Get(ctx context.Context, userID int64) (*Profile, error) {
	const query = `
		SELECT user_id, phone_number, address, country, state, city,
		       zip_code, tech_stack, avatar_url, updated_at
		FROM profiles
		WHERE user_id = $1`

	profile := &Profile{}
	err := repository.pool.QueryRow(ctx, query, userID).Scan(
		&profile.UserID,
		&profile.PhoneNumber,
		&profile.Address,
		&profile.Country,
		&profile.State,
		&profile.City,
		&profile.ZipCode,
		&profile.TechStack,
		&profile.AvatarURL,
		&profile.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &Profile{UserID: userID}, nil
		}
		return nil, fmt.Errorf("postgres_profile_repo_get_failed: %w", err)
	}

	return profile, nil
}

// Upsert creates or replaces the user's profile row.
func (repository *PostgresProfileRepository) Upsert(ctx context.Context, profile *Profile) error {
	const query = `
		INSERT INTO profiles (
			user_id, phone_number, address, country, state, city,
			zip_code, tech_stack, avatar_url, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (user_id) DO UPDATE SET
			phone_number = EXCLUDED.phone_number,
			address      = EXCLUDED.address,
			country      = EXCLUDED.country,
			state        = EXCLUDED.state,
			city         = EXCLUDED.city,
			zip_code     = EXCLUDED.zip_code,
			tech_stack   = EXCLUDED.tech_stack,
			avatar_url   = EXCLUDED.avatar_url,
			updated_at   = EXCLUDED.updated_at`

	profile.UpdatedAt = time.Now()
	_, err := repository.pool.Exec(ctx, query,
		profile.UserID,
		profile.PhoneNumber,
		profile.Address,
		profile.Country,
		profile.State,
		profile.City,
		profile.ZipCode,
		profile.TechStack,
		profile.AvatarURL,
		profile.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres_profile_repo_upsert_failed: %w", err)
	}

	return nil
}

// ── Directory Repository ─────────────────────────────────────────────────────

// PostgresDirectoryRepository implements DirectoryRepository using pgx.
type PostgresDirectoryRepository struct {
	pool *pgxpool.Pool
}

// NewDirectoryRepository creates the PostgreSQL user directory store.
func NewDirectoryRepository(pool *pgxpool.Pool) *PostgresDirectoryRepository {
	return &PostgresDirectoryRepository{pool: pool}
}

// List returns a page of users for the admin directory.
func (repository *PostgresDirectoryRepository) List(
	ctx context.Context, limit, offset int,
) ([]*auth.User, int, error) {
	const query = `
		SELECT id, email, first_name, middle_name, last_name, password_hash,
		       role, is_active, is_verified, otp_secret, created_at, updated_at,
		       COUNT(*) OVER() AS total
		FROM users
		ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2`

	rows, err := repository.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("postgres_directory_repo_list_failed: %w", err)
	}
	defer rows.Close()

	var (
		users []*auth.User
		total int
	)
	for rows.Next() {
		user := &auth.User{}
		err := rows.Scan(
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
			&total,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("postgres_directory_repo_scan_failed: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("postgres_directory_repo_rows_failed: %w", err)
	}

	return users, total, nil
}

// SetRole updates a single user's role.
func (repository *PostgresDirectoryRepository) SetRole(ctx context.Context, userID int64, role string) error {
	const query = "UPDATE users SET role = $2, updated_at = $3 WHERE id = $1"

	tag, err := repository.pool.Exec(ctx, query, userID, role, time.Now())
	if err != nil {
		return fmt.Errorf("postgres_directory_repo_set_role_failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("User")
	}

	return nil
}

// SetActive toggles a user's active flag.
func (repository *PostgresDirectoryRepository) SetActive(ctx context.Context, userID int64, active bool) error {
	const query = "UPDATE users SET is_active = $2, updated_at = $3 WHERE id = $1"

	tag, err := repository.pool.Exec(ctx, query, userID, active, time.Now())
	if err != nil {
		return fmt.Errorf("postgres_directory_repo_set_active_failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("User")
	}

	return nil
}
