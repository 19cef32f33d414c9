// Copyright (c) 2026 InternPulse. All rights reserved.

// Package notification manages in-app notifications, support tickets, and
// outbound email dispatch for the InternPulse platform.
package notification

import (
	"context"
	"time"
)

// Notification is an in-app message shown on a user's dashboard.
type Notification struct {
	ID        int64     `json:"id,string"`
	UserID    int64     `json:"user_id,string"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

// Ticket kinds routed to the operations inbox.
const (
	TicketKindPayment       = "payment"
	TicketKindDeferment     = "deferment"
	TicketKindTalentRequest = "talent_request"
)

// Ticket is a support request raised by a user or an external company.
//
// # Modeling
//
// The three ticket flavours (payment issues, internship deferment, talent
// requests from hiring companies) share a lifecycle and an inbox, so they
// live in one table discriminated by Kind. Flavour-specific fields are
// nullable columns rather than separate tables.
type Ticket struct {
	ID        int64     `json:"id,string"`
	Kind      string    `json:"kind"`
	UserID    int64     `json:"user_id,string,omitempty"`
	Subject   string    `json:"subject"`
	Body      string    `json:"body"`
	Email     string    `json:"email"`
	Company   string    `json:"company,omitempty"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// Ticket statuses.
const (
	TicketStatusOpen     = "open"
	TicketStatusResolved = "resolved"
)

// NotificationRepository defines the data access contract for notifications.
type NotificationRepository interface {
	// Create persists a new notification.
	Create(ctx context.Context, notification *Notification) error

	// ListByUser returns the user's notifications, newest first.
	ListByUser(ctx context.Context, userID int64, limit, offset int) ([]*Notification, int, error)

	// MarkRead flips the read flag. Returns [apperr.NotFound] if the
	// notification does not exist or belongs to another user.
	MarkRead(ctx context.Context, id, userID int64) error
}

// TicketRepository defines the data access contract for support tickets.
type TicketRepository interface {
	// Create persists a new ticket.
	Create(ctx context.Context, ticket *Ticket) error

	// List returns tickets of the given kind, newest first. An empty kind
	// returns every ticket.
	List(ctx context.Context, kind string, limit, offset int) ([]*Ticket, int, error)

	// Resolve marks a ticket resolved. Returns [apperr.NotFound] for an
	// unknown ID.
	Resolve(ctx context.Context, id int64) error
}
