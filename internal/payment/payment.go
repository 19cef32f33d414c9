// Copyright (c) 2026 InternPulse. All rights reserved.

// Package payment records internship fee transactions and their
// verification by the finance team.
package payment

import (
	"context"
	"time"
)

// Transaction statuses.
const (
	StatusPending  = "pending"
	StatusVerified = "verified"
	StatusRejected = "rejected"
)

// Transaction is a fee payment reported by an intern.
//
// # Flow
//
// Interns pay through an external provider and submit the provider's
// reference here. Finance later confirms the reference against the
// provider's dashboard and marks the transaction verified or rejected.
type Transaction struct {
	ID       int64 `json:"id,string"`
	UserID   int64 `json:"user_id,string"`
	CohortID int64 `json:"cohort_id,string"`

	// Reference is the provider-side transaction reference. Unique, so the
	// same receipt cannot be submitted twice.
	Reference string `json:"reference"`

	// Amount is in the currency's minor unit (kobo, cents).
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`

	Status     string     `json:"status"`
	CreatedAt  time.Time  `json:"created_at"`
	VerifiedAt *time.Time `json:"verified_at,omitempty"`
}

// Repository defines the data access contract for transactions.
type Repository interface {
	// Create persists a new transaction. Returns [apperr.Conflict] when the
	// reference was already submitted.
	Create(ctx context.Context, transaction *Transaction) error

	// FindByID returns a transaction by ID.
	FindByID(ctx context.Context, id int64) (*Transaction, error)

	// ListByUser returns a page of the user's transactions, newest first.
	ListByUser(ctx context.Context, userID int64, limit, offset int) ([]*Transaction, int, error)

	// List returns a page of all transactions, optionally filtered by status.
	List(ctx context.Context, status string, limit, offset int) ([]*Transaction, int, error)

	// SetStatus transitions a pending transaction to verified or rejected.
	// Returns [apperr.NotFound] when the transaction does not exist and
	// [apperr.Conflict] when it already left the pending state.
	SetStatus(ctx context.Context, id int64, status string, verifiedAt time.Time) error
}
