// Copyright (c) 2026 InternPulse. All rights reserved.

// Package certificate issues and verifies internship completion certificates.
package certificate

import (
	"context"
	"time"
)

// Certificate attests that an intern completed a cohort track.
//
// # Verification
//
// Each certificate carries a random verification code embedded in the PDF
// handed to the intern. Anyone (an employer, typically) can check the code
// against the public verification endpoint without an account.
type Certificate struct {
	ID       int64  `json:"id,string"`
	UserID   int64  `json:"user_id,string"`
	CohortID int64  `json:"cohort_id,string"`
	Track    string `json:"track"`
	Title    string `json:"title"`

	// Code is the public verification code, a random UUID.
	Code string `json:"code"`

	IssuedAt time.Time `json:"issued_at"`
}

// Repository defines the data access contract for certificates.
type Repository interface {
	// Create persists a new certificate. Returns [apperr.Conflict] when the
	// intern already holds a certificate for the cohort.
	Create(ctx context.Context, certificate *Certificate) error

	// FindByCode returns a certificate by its verification code.
	FindByCode(ctx context.Context, code string) (*Certificate, error)

	// ListByUser returns all of an intern's certificates, newest first.
	ListByUser(ctx context.Context, userID int64) ([]*Certificate, error)
}
