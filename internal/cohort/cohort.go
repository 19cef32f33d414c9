// Copyright (c) 2026 InternPulse. All rights reserved.

// Package cohort manages internship cohorts and intern enrollment.
package cohort

import (
	"context"
	"time"
)

// Cohort is a named internship cycle with a fixed start and end date.
type Cohort struct {
	ID          int64     `json:"id,string"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// IsRunning reports whether the cohort is in session at the given instant.
func (c *Cohort) IsRunning(at time.Time) bool {
	return !at.Before(c.StartDate) && !at.After(c.EndDate)
}

// Membership links an intern to a cohort and a track.
type Membership struct {
	ID        int64     `json:"id,string"`
	CohortID  int64     `json:"cohort_id,string"`
	UserID    int64     `json:"user_id,string"`
	Track     string    `json:"track"`
	CreatedAt time.Time `json:"created_at"`
}

// Tracks interns can enroll in.
const (
	TrackBackend  = "backend"
	TrackFrontend = "frontend"
	TrackMobile   = "mobile"
	TrackDesign   = "design"
	TrackProduct  = "product"
)

// Repository defines the data access contract for cohorts and memberships.
type Repository interface {
	// Create persists a new cohort. Returns [apperr.Conflict] when the slug
	// is already taken.
	Create(ctx context.Context, cohort *Cohort) error

	// FindBySlug returns a cohort by its URL slug.
	FindBySlug(ctx context.Context, slug string) (*Cohort, error)

	// FindByID returns a cohort by ID.
	FindByID(ctx context.Context, id int64) (*Cohort, error)

	// List returns a page of cohorts, newest start date first.
	List(ctx context.Context, limit, offset int) ([]*Cohort, int, error)

	// Update persists changes to a cohort's mutable fields.
	Update(ctx context.Context, cohort *Cohort) error

	// AddMember enrolls an intern. Returns [apperr.Conflict] when the
	// intern is already enrolled in the cohort.
	AddMember(ctx context.Context, membership *Membership) error

	// ListMembers returns a page of a cohort's memberships.
	ListMembers(ctx context.Context, cohortID int64, limit, offset int) ([]*Membership, int, error)

	// FindMembership returns the intern's membership in a cohort, if any.
	FindMembership(ctx context.Context, cohortID, userID int64) (*Membership, error)
}
