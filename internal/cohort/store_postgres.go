// Copyright (c) 2026 InternPulse. All rights reserved.

package cohort

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

// NewRepository creates the PostgreSQL cohort store.
func NewRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const cohortColumns = "id, name, slug, description, start_date, end_date, created_at, updated_at"

// scanCohort maps a single row onto a [Cohort].
func scanCohort(row pgx.Row) (*Cohort, error) {
	cohort := &Cohort{}
	err := row.Scan(
		&cohort.ID,
		&cohort.Name,
		&cohort.Slug,
		&cohort.Description,
		&cohort.StartDate,
		&cohort.EndDate,
		&cohort.CreatedAt,
		&cohort.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return cohort, nil
}

// Create persists a new cohort row.
func (repository *PostgresRepository) Create(ctx context.Context, cohort *Cohort) error {
	const query = `
		INSERT INTO cohorts (id, name, slug, description, start_date, end_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	now := time.Now()
	if cohort.CreatedAt.IsZero() {
		cohort.CreatedAt = now
	}
	cohort.UpdatedAt = now

	_, err := repository.pool.Exec(ctx, query,
		cohort.ID,
		cohort.Name,
		cohort.Slug,
		cohort.Description,
		cohort.StartDate,
		cohort.EndDate,
		cohort.CreatedAt,
		cohort.UpdatedAt,
	)
	if err != nil {
		if dberr.IsUniqueViolation(err) {
			return apperr.Conflict("A cohort with this name already exists")
		}
		return fmt.Errorf("postgres_cohort_repo_create_failed: %w", err)
	}

	return nil
}

// FindBySlug retrieves a cohort by its URL slug.
func (repository *PostgresRepository) FindBySlug(ctx context.Context, slug string) (*Cohort, error) {
	query := "SELECT " + cohortColumns + " FROM cohorts WHERE slug = $1"

	cohort, err := scanCohort(repository.pool.QueryRow(ctx, query, slug))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Cohort")
		}
		return nil, fmt.Errorf("postgres_cohort_repo_find_by_slug_failed: %w", err)
	}

	return cohort, nil
}

// FindByID retrieves a cohort by its Snowflake ID.
func (repository *PostgresRepository) FindByID(ctx context.Context, id int64) (*Cohort, error) {
	query := "SELECT " + cohortColumns + " FROM cohorts WHERE id = $1"

	cohort, err := scanCohort(repository.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Cohort")
		}
		return nil, fmt.Errorf("postgres_cohort_repo_find_by_id_failed: %w", err)
	}

	return cohort, nil
}

// List returns a page of cohorts ordered by start date, newest first.
func (repository *PostgresRepository) List(ctx context.Context, limit, offset int) ([]*Cohort, int, error) {
	query := `
		SELECT ` + cohortColumns + `,
		       COUNT(*) OVER() AS total
		FROM cohorts
		ORDER BY start_date DESC, id DESC
		LIMIT $1 OFFSET $2`

	rows, err := repository.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("postgres_cohort_repo_list_failed: %w", err)
	}
	defer rows.Close()

	var (
		cohorts []*Cohort
		total   int
	)
	for rows.Next() {
		cohort := &Cohort{}
		err := rows.Scan(
			&cohort.ID,
			&cohort.Name,
			&cohort.Slug,
			&cohort.Description,
			&cohort.StartDate,
			&cohort.EndDate,
			&cohort.CreatedAt,
			&cohort.UpdatedAt,
			&total,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("postgres_cohort_repo_scan_failed: %w", err)
		}
		cohorts = append(cohorts, cohort)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("postgres_cohort_repo_rows_failed: %w", err)
	}

	return cohorts, total, nil
}

// Update persists changes to a cohort's mutable fields.
func (repository *PostgresRepository) Update(ctx context.Context, cohort *Cohort) error {
	const query = `
		UPDATE cohorts
		SET name = $2, slug = $3, description = $4, start_date = $5, end_date = $6, updated_at = $7
		WHERE id = $1`

	cohort.UpdatedAt = time.Now()
	tag, err := repository.pool.Exec(ctx, query,
		cohort.ID,
		cohort.Name,
		cohort.Slug,
		cohort.Description,
		cohort.StartDate,
		cohort.EndDate,
		cohort.UpdatedAt,
	)
	if err != nil {
		if dberr.IsUniqueViolation(err) {
			return apperr.Conflict("A cohort with this name already exists")
		}
		return fmt.Errorf("postgres_cohort_repo_update_failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Cohort")
	}

	return nil
}

// AddMember enrolls an intern in a cohort.
func (repository *PostgresRepository) AddMember(ctx context.Context, membership *Membership) error {
	const query = `
		INSERT INTO cohort_memberships (id, cohort_id, user_id, track, created_at)
		VALUES ($1, $2, $3, $4, $5)`

	if membership.CreatedAt.IsZero() {
		membership.CreatedAt = time.Now()
	}

	_, err := repository.pool.Exec(ctx, query,
		membership.ID,
		membership.CohortID,
		membership.UserID,
		membership.Track,
		membership.CreatedAt,
	)
	if err != nil {
		if dberr.IsUniqueViolation(err) {
			return apperr.Conflict("Already enrolled in this cohort")
		}
		return dberr.Wrap(err, "cohort_add_member")
	}

	return nil
}

// ListMembers returns a page of a cohort's memberships.
func (repository *PostgresRepository) ListMembers(
	ctx context.Context, cohortID int64, limit, offset int,
) ([]*Membership, int, error) {
	const query = `
		SELECT id, cohort_id, user_id, track, created_at,
		       COUNT(*) OVER() AS total
		FROM cohort_memberships
		WHERE cohort_id = $1
		ORDER BY created_at ASC, id ASC
		LIMIT $2 OFFSET $3`

	rows, err := repository.pool.Query(ctx, query, cohortID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("postgres_cohort_repo_list_members_failed: %w", err)
	}
	defer rows.Close()

	var (
		memberships []*Membership
		total       int
	)
	for rows.Next() {
		membership := &Membership{}
		err := rows.Scan(
			&membership.ID,
			&membership.CohortID,
			&membership.UserID,
			&membership.Track,
			&membership.CreatedAt,
			&total,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("postgres_cohort_repo_scan_member_failed: %w", err)
		}
		memberships = append(memberships, membership)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("postgres_cohort_repo_member_rows_failed: %w", err)
	}

	return memberships, total, nil
}

// FindMembership returns the intern's membership in a cohort.
func (repository *PostgresRepository) FindMembership(ctx context.Context, cohortID, userID int64) (*Membership, error) {
	const query = `
		SELECT id, cohort_id, user_id, track, created_at
		FROM cohort_memberships
		WHERE cohort_id = $1 AND user_id = $2`

	membership := &Membership{}
	err := repository.pool.QueryRow(ctx, query, cohortID, userID).Scan(
		&membership.ID,
		&membership.CohortID,
		&membership.UserID,
		&membership.Track,
		&membership.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Membership")
		}
		return nil, fmt.Errorf("postgres_cohort_repo_find_membership_failed: %w", err)
	}

	return membership, nil
}
