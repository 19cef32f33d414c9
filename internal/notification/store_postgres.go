// Copyright (c) 2026 InternPulse. All rights reserved.

package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/internpulse/internpulse/internal/platform/apperr"
)

// PostgresNotificationRepository implements NotificationRepository using pgx.
type PostgresNotificationRepository struct {
	pool *pgxpool.Pool
}

// NewNotificationRepository creates the PostgreSQL notification store.
func NewNotificationRepository(pool *pgxpool.Pool) *PostgresNotificationRepository {
	return &PostgresNotificationRepository{pool: pool}
}

// Create persists a new notification row.
func (repository *PostgresNotificationRepository) Create(ctx context.Context, notification *Notification) error {
	const query = `
		INSERT INTO notifications (id, user_id, title, message, is_read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	if notification.CreatedAt.IsZero() {
		notification.CreatedAt = time.Now()
	}

	_, err := repository.pool.Exec(ctx, query,
		notification.ID,
		notification.UserID,
		notification.Title,
		notification.Message,
		notification.IsRead,
		notification.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres_notification_repo_create_failed: %w", err)
	}

	return nil
}

// ListByUser returns a page of the user's notifications plus the total count.
func (repository *PostgresNotificationRepository) ListByUser(
	ctx context.Context, userID int64, limit, offset int,
) ([]*Notification, int, error) {
	const query = `
		SELECT id, user_id, title, message, is_read, created_at,
		       COUNT(*) OVER() AS total
		FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`

	rows, err := repository.pool.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("postgres_notification_repo_list_failed: %w", err)
	}
	defer rows.Close()

	var (
		notifications []*Notification
		total         int
	)
	for rows.Next() {
		notification := &Notification{}
		err := rows.Scan(
			&notification.ID,
			&notification.UserID,
			&notification.Title,
			&notification.Message,
			&notification.IsRead,
			&notification.CreatedAt,
			&total,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("postgres_notification_repo_scan_failed: %w", err)
		}
		notifications = append(notifications, notification)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("postgres_notification_repo_rows_failed: %w", err)
	}

	return notifications, total, nil
}

// MarkRead flips the read flag on a notification the user owns.
func (repository *PostgresNotificationRepository) MarkRead(ctx context.Context, id, userID int64) error {
	const query = `
		UPDATE notifications SET is_read = TRUE
		WHERE id = $1 AND user_id = $2`

	tag, err := repository.pool.Exec(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("postgres_notification_repo_mark_read_failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Notification")
	}

	return nil
}

// ── Ticket Repository ────────────────────────────────────────────────────────

// PostgresTicketRepository implements TicketRepository using pgx.
type PostgresTicketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository creates the PostgreSQL ticket store.
func NewTicketRepository(pool *pgxpool.Pool) *PostgresTicketRepository {
	return &PostgresTicketRepository{pool: pool}
}

// Create persists a new ticket row.
func (repository *PostgresTicketRepository) Create(ctx context.Context, ticket *Ticket) error {
	const query = `
		INSERT INTO tickets (id, kind, user_id, subject, body, email, company, status, created_at)
		VALUES ($1, $2, NULLIF($3, 0), $4, $5, $6, $7, $8, $9)`

	if ticket.CreatedAt.IsZero() {
		ticket.CreatedAt = time.Now()
	}
	if ticket.Status == "" {
		ticket.Status = TicketStatusOpen
	}

	_, err := repository.pool.Exec(ctx, query,
		ticket.ID,
		ticket.Kind,
		ticket.UserID,
		ticket.Subject,
		ticket.Body,
		ticket.Email,
		ticket.Company,
		ticket.Status,
		ticket.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres_ticket_repo_create_failed: %w", err)
	}

	return nil
}

// List returns a page of tickets, optionally filtered by kind.
func (repository *PostgresTicketRepository) List(
	ctx context.Context, kind string, limit, offset int,
) ([]*Ticket, int, error) {
	const query = `
		SELECT id, kind, COALESCE(user_id, 0), subject, body, email, company, status, created_at,
		       COUNT(*) OVER() AS total
		FROM tickets
		WHERE ($1 = '' OR kind = $1)
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`

	rows, err := repository.pool.Query(ctx, query, kind, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("postgres_ticket_repo_list_failed: %w", err)
	}
	defer rows.Close()

	var (
		tickets []*Ticket
		total   int
	)
	for rows.Next() {
		ticket := &Ticket{}
		err := rows.Scan(
			&ticket.ID,
			&ticket.Kind,
			&ticket.UserID,
			&ticket.Subject,
			&ticket.Body,
			&ticket.Email,
			&ticket.Company,
			&ticket.Status,
			&ticket.CreatedAt,
			&total,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("postgres_ticket_repo_scan_failed: %w", err)
		}
		tickets = append(tickets, ticket)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("postgres_ticket_repo_rows_failed: %w", err)
	}

	return tickets, total, nil
}

// Resolve marks a ticket resolved.
func (repository *PostgresTicketRepository) Resolve(ctx context.Context, id int64) error {
	const query = "UPDATE tickets SET status = $2 WHERE id = $1"

	tag, err := repository.pool.Exec(ctx, query, id, TicketStatusResolved)
	if err != nil {
		return fmt.Errorf("postgres_ticket_repo_resolve_failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Ticket")
	}

	return nil
}
