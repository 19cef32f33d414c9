// Copyright (c) 2026 InternPulse. All rights reserved.

package cohort

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/internpulse/internpulse/internal/platform/apperr"
	"github.com/internpulse/internpulse/internal/platform/validate"
	"github.com/internpulse/internpulse/pkg/pagination"
	"github.com/internpulse/internpulse/pkg/slug"
	"github.com/internpulse/internpulse/pkg/snowflake"
)

// Notifier posts a dashboard notification to a user. Satisfied by an adapter
// over the notification service; tests inject a recording fake.
type Notifier interface {
	Notify(ctx context.Context, userID int64, title, message string) error
}

// Service implements the cohort management use cases.
type Service struct {
	cohorts  Repository
	ids      *snowflake.Generator
	notifier Notifier
	log      *slog.Logger
	now      func() time.Time
}

// NewService wires the cohort service.
func NewService(cohorts Repository, ids *snowflake.Generator, notifier Notifier, log *slog.Logger) *Service {
	return &Service{
		cohorts:  cohorts,
		ids:      ids,
		notifier: notifier,
		log:      log,
		now:      time.Now,
	}
}

// CohortInput carries the fields for creating or updating a cohort.
type CohortInput struct {
	Name        string
	Description string
	StartDate   time.Time
	EndDate     time.Time
}

// validateCohortInput applies the shared field rules for create and update.
func validateCohortInput(input CohortInput) error {
	validator := &validate.Validator{}
	validator.Required("name", input.Name).MaxLen("name", input.Name, 100)
	validator.MaxLen("description", input.Description, 2000)
	validator.Custom("start_date", input.StartDate.IsZero(), "This field is required")
	validator.Custom("end_date", input.EndDate.IsZero(), "This field is required")
	if !input.StartDate.IsZero() && !input.EndDate.IsZero() {
		validator.Custom("end_date", !input.EndDate.After(input.StartDate), "Must be after start_date")
	}
	return validator.Err()
}

// Create validates and persists a new cohort. The URL slug is derived from
// the name, so "Cohort 7.0 (October)" becomes "cohort-7-0-october".
func (service *Service) Create(ctx context.Context, input CohortInput) (*Cohort, error) {
	if err := validateCohortInput(input); err != nil {
		return nil, err
	}

	id, err := service.ids.NextID()
	if err != nil {
		return nil, fmt.Errorf("generate cohort id: %w", err)
	}

	cohort := &Cohort{
		ID:          id,
		Name:        input.Name,
		Slug:        slug.From(input.Name),
		Description: input.Description,
		StartDate:   input.StartDate,
		EndDate:     input.EndDate,
	}
	if err := service.cohorts.Create(ctx, cohort); err != nil {
		return nil, err
	}

	return cohort, nil
}

// GetByID returns a cohort by its Snowflake ID.
func (service *Service) GetByID(ctx context.Context, cohortID int64) (*Cohort, error) {
	return service.cohorts.FindByID(ctx, cohortID)
}

// GetBySlug returns a cohort by its URL slug.
func (service *Service) GetBySlug(ctx context.Context, cohortSlug string) (*Cohort, error) {
	return service.cohorts.FindBySlug(ctx, cohortSlug)
}

// List returns a page of cohorts.
func (service *Service) List(ctx context.Context, params pagination.Params) ([]*Cohort, int, error) {
	return service.cohorts.List(ctx, params.Limit, params.Offset())
}

// Update replaces a cohort's editable fields. The slug follows the name.
func (service *Service) Update(ctx context.Context, cohortID int64, input CohortInput) (*Cohort, error) {
	if err := validateCohortInput(input); err != nil {
		return nil, err
	}

	cohort, err := service.cohorts.FindByID(ctx, cohortID)
	if err != nil {
		return nil, err
	}

	cohort.Name = input.Name
	cohort.Slug = slug.From(input.Name)
	cohort.Description = input.Description
	cohort.StartDate = input.StartDate
	cohort.EndDate = input.EndDate

	if err := service.cohorts.Update(ctx, cohort); err != nil {
		return nil, err
	}

	return cohort, nil
}

// Enroll adds an intern to a cohort on a track.
//
// # Edge Cases
//
//   - Enrollment closes once the cohort has ended.
//   - Double enrollment surfaces the storage conflict unchanged.
//   - The dashboard notification is best-effort; a failure is logged, not
//     returned, because the membership row already committed.
func (service *Service) Enroll(ctx context.Context, cohortID, userID int64, track string) (*Membership, error) {
	validator := &validate.Validator{}
	validator.OneOf("track", track, TrackBackend, TrackFrontend, TrackMobile, TrackDesign, TrackProduct)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	cohort, err := service.cohorts.FindByID(ctx, cohortID)
	if err != nil {
		return nil, err
	}
	if service.now().After(cohort.EndDate) {
		return nil, apperr.ValidationError("This cohort has already ended")
	}

	id, err := service.ids.NextID()
	if err != nil {
		return nil, fmt.Errorf("generate membership id: %w", err)
	}

	membership := &Membership{
		ID:       id,
		CohortID: cohortID,
		UserID:   userID,
		Track:    track,
	}
	if err := service.cohorts.AddMember(ctx, membership); err != nil {
		return nil, err
	}

	title := "Enrolled in " + cohort.Name
	message := fmt.Sprintf("You joined the %s track of %s.", track, cohort.Name)
	if err := service.notifier.Notify(ctx, userID, title, message); err != nil {
		service.log.WarnContext(ctx, "enrollment notification failed",
			slog.Int64("user_id", userID),
			slog.Int64("cohort_id", cohortID),
			slog.Any("error", err),
		)
	}

	return membership, nil
}

// ListMembers returns a page of a cohort's memberships.
func (service *Service) ListMembers(
	ctx context.Context, cohortID int64, params pagination.Params,
) ([]*Membership, int, error) {
	if _, err := service.cohorts.FindByID(ctx, cohortID); err != nil {
		return nil, 0, err
	}
	return service.cohorts.ListMembers(ctx, cohortID, params.Limit, params.Offset())
}

// Membership returns the intern's membership in a cohort.
func (service *Service) Membership(ctx context.Context, cohortID, userID int64) (*Membership, error) {
	return service.cohorts.FindMembership(ctx, cohortID, userID)
}
