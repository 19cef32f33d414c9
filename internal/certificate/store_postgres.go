// Copyright (c) 2026 InternPulse. All rights reserved.

package certificate

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

// PostgresRepository implements Repository using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates the PostgreSQL certificate store.
func NewRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const certificateColumns = "id, user_id, cohort_id, track, title, code, issued_at"

// Create persists a new certificate row.
func (repository *PostgresRepository) Create(ctx context.Context, certificate *Certificate) error {
	const query = `
		INSERT INTO certificates (id, user_id, cohort_id, track, title, code, issued_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	if certificate.IssuedAt.IsZero() {
		certificate.IssuedAt = time.Now()
	}

	_, err := repository.pool.Exec(ctx, query,
		certificate.ID,
		certificate.UserID,
		certificate.CohortID,
		certificate.Track,
		certificate.Title,
		certificate.Code,
		certificate.IssuedAt,
	)
	if err != nil {
		if dberr.IsUniqueViolation(err) {
			return apperr.Conflict("A certificate was already issued for this cohort")
		}
		return fmt.Errorf("postgres_certificate_repo_create_failed: %w", err)
	}

	return nil
}

// FindByCode retrieves a certificate by its public verification code.
func (repository *PostgresRepository) FindByCode(ctx context.Context, code string) (*Certificate, error) {
	query := "SELECT " + certificateColumns + " FROM certificates WHERE code = $1"

	certificate := &Certificate{}
	err := repository.pool.QueryRow(ctx, query, code).Scan(
		&certificate.ID,
		&certificate.UserID,
		&certificate.CohortID,
		&certificate.Track,
		&certificate.Title,
		&certificate.Code,
		&certificate.IssuedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Certificate")
		}
		return nil, fmt.Errorf("postgres_certificate_repo_find_by_code_failed: %w", err)
	}

	return certificate, nil
}

// ListByUser returns every certificate an intern holds, newest first.
func (repository *PostgresRepository) ListByUser(ctx context.Context, userID int64) ([]*Certificate, error) {
	query := "SELECT " + certificateColumns + " FROM certificates WHERE user_id = $1 ORDER BY issued_at DESC"

	rows, err := repository.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("postgres_certificate_repo_list_failed: %w", err)
	}
	defer rows.Close()

	var certificates []*Certificate
	for rows.Next() {
		certificate := &Certificate{}
		err := rows.Scan(
			&certificate.ID,
			&certificate.UserID,
			&certificate.CohortID,
			&certificate.Track,
			&certificate.Title,
			&certificate.Code,
			&certificate.IssuedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("postgres_certificate_repo_scan_failed: %w", err)
		}
		certificates = append(certificates, certificate)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres_certificate_repo_rows_failed: %w", err)
	}

	return certificates, nil
}
