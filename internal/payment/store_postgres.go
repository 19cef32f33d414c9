// Copyright (c) 2026 InternPulse. All rights reserved.

package payment

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

// NewRepository creates the PostgreSQL transaction store.
func NewRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const transactionColumns = "id, user_id, cohort_id, reference, amount, currency, status, created_at, verified_at"

// scanTransaction maps a single row onto a [Transaction].
func scanTransaction(row pgx.Row) (*Transaction, error) {
	transaction := &Transaction{}
	err := row.Scan(
		&transaction.ID,
		&transaction.UserID,
		&transaction.CohortID,
		&transaction.Reference,
		&transaction.Amount,
		&transaction.Currency,
		&transaction.Status,
		&transaction.CreatedAt,
		&transaction.VerifiedAt,
	)
	if err != nil {
		return nil, err
	}
	return transaction, nil
}

// Create persists a new transaction row.
func (repository *PostgresRepository) Create(ctx context.Context, transaction *Transaction) error {
	const query = `
		INSERT INTO transactions (id, user_id, cohort_id, reference, amount, currency, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	if transaction.CreatedAt.IsZero() {
		transaction.CreatedAt = time.Now()
	}

	_, err := repository.pool.Exec(ctx, query,
		transaction.ID,
		transaction.UserID,
		transaction.CohortID,
		transaction.Reference,
		transaction.Amount,
		transaction.Currency,
		transaction.Status,
		transaction.CreatedAt,
	)
	if err != nil {
		if dberr.IsUniqueViolation(err) {
			return apperr.Conflict("This payment reference was already submitted")
		}
		return fmt.Errorf("postgres_payment_repo_create_failed: %w", err)
	}

	return nil
}

// FindByID retrieves a transaction by its Snowflake ID.
func (repository *PostgresRepository) FindByID(ctx context.Context, id int64) (*Transaction, error) {
	query := "SELECT " + transactionColumns + " FROM transactions WHERE id = $1"

	transaction, err := scanTransaction(repository.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Transaction")
		}
		return nil, fmt.Errorf("postgres_payment_repo_find_by_id_failed: %w", err)
	}

	return transaction, nil
}

// ListByUser returns a page of the user's transactions.
func (repository *PostgresRepository) ListByUser(
	ctx context.Context, userID int64, limit, offset int,
) ([]*Transaction, int, error) {
	query := `
		SELECT ` + transactionColumns + `,
		       COUNT(*) OVER() AS total
		FROM transactions
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`

	return repository.queryPage(ctx, query, userID, limit, offset)
}

// List returns a page of all transactions, optionally filtered by status.
func (repository *PostgresRepository) List(
	ctx context.Context, status string, limit, offset int,
) ([]*Transaction, int, error) {
	query := `
		SELECT ` + transactionColumns + `,
		       COUNT(*) OVER() AS total
		FROM transactions
		WHERE ($1 = '' OR status = $1)
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`

	return repository.queryPage(ctx, query, status, limit, offset)
}

// queryPage runs a paged transaction query whose final column is the window
// total.
func (repository *PostgresRepository) queryPage(
	ctx context.Context, query string, filter any, limit, offset int,
) ([]*Transaction, int, error) {
	rows, err := repository.pool.Query(ctx, query, filter, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("postgres_payment_repo_list_failed: %w", err)
	}
	defer rows.Close()

	var (
		transactions []*Transaction
		total        int
	)
	for rows.Next() {
		transaction := &Transaction{}
		err := rows.Scan(
			&transaction.ID,
			&transaction.UserID,
			&transaction.CohortID,
			&transaction.Reference,
			&transaction.Amount,
			&transaction.Currency,
			&transaction.Status,
			&transaction.CreatedAt,
			&transaction.VerifiedAt,
			&total,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("postgres_payment_repo_scan_failed: %w", err)
		}
		transactions = append(transactions, transaction)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("postgres_payment_repo_rows_failed: %w", err)
	}

	return transactions, total, nil
}

// SetStatus transitions a pending transaction to its final state. The WHERE
// clause enforces the pending precondition so two admins racing on the same
// transaction cannot both win.
func (repository *PostgresRepository) SetStatus(
	ctx context.Context, id int64, status string, verifiedAt time.Time,
) error {
	const query = `
		UPDATE transactions
		SET status = $2, verified_at = $3
		WHERE id = $1 AND status = $4`

	tag, err := repository.pool.Exec(ctx, query, id, status, verifiedAt, StatusPending)
	if err != nil {
		return fmt.Errorf("postgres_payment_repo_set_status_failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// Either the row is missing or it already left pending.
		if _, findErr := repository.FindByID(ctx, id); findErr != nil {
			return findErr
		}
		return apperr.Conflict("Transaction was already processed")
	}

	return nil
}
