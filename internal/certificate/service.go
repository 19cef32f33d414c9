// Copyright (c) 2026 InternPulse. All rights reserved.

package certificate

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/internpulse/internpulse/internal/cohort"
	"github.com/internpulse/internpulse/pkg/snowflake"
)

// CohortDirectory is the slice of the cohort package this service needs:
// resolving cohorts and confirming the intern actually belongs to one.
type CohortDirectory interface {
	GetByID(ctx context.Context, cohortID int64) (*cohort.Cohort, error)
	Membership(ctx context.Context, cohortID, userID int64) (*cohort.Membership, error)
}

// Notifier posts a dashboard notification to a user.
type Notifier interface {
	Notify(ctx context.Context, userID int64, title, message string) error
}

// Service implements certificate issuance and verification.
type Service struct {
	certificates Repository
	cohorts      CohortDirectory
	ids          *snowflake.Generator
	notifier     Notifier
	log          *slog.Logger
}

// NewService wires the certificate service.
func NewService(
	certificates Repository,
	cohorts CohortDirectory,
	ids *snowflake.Generator,
	notifier Notifier,
	log *slog.Logger,
) *Service {
	return &Service{
		certificates: certificates,
		cohorts:      cohorts,
		ids:          ids,
		notifier:     notifier,
		log:          log,
	}
}

// Issue grants a completion certificate to an intern for a cohort.
//
// # Preconditions
//
// The intern must be enrolled in the cohort; the membership's track is
// stamped onto the certificate. One certificate per intern per cohort.
func (service *Service) Issue(ctx context.Context, cohortID, userID int64) (*Certificate, error) {
	targetCohort, err := service.cohorts.GetByID(ctx, cohortID)
	if err != nil {
		return nil, err
	}

	membership, err := service.cohorts.Membership(ctx, cohortID, userID)
	if err != nil {
		return nil, err
	}

	id, err := service.ids.NextID()
	if err != nil {
		return nil, fmt.Errorf("generate certificate id: %w", err)
	}

	certificate := &Certificate{
		ID:       id,
		UserID:   userID,
		CohortID: cohortID,
		Track:    membership.Track,
		Title:    fmt.Sprintf("%s Completion Certificate (%s)", targetCohort.Name, membership.Track),
		Code:     uuid.NewString(),
	}
	if err := service.certificates.Create(ctx, certificate); err != nil {
		return nil, err
	}

	title := "Certificate issued"
	message := fmt.Sprintf("Your certificate for %s is ready.", targetCohort.Name)
	if err := service.notifier.Notify(ctx, userID, title, message); err != nil {
		service.log.WarnContext(ctx, "certificate notification failed",
			slog.Int64("user_id", userID),
			slog.Int64("certificate_id", certificate.ID),
			slog.Any("error", err),
		)
	}

	return certificate, nil
}

// Verify looks up a certificate by its public verification code.
func (service *Service) Verify(ctx context.Context, code string) (*Certificate, error) {
	return service.certificates.FindByCode(ctx, code)
}

// ListMine returns the caller's certificates.
func (service *Service) ListMine(ctx context.Context, userID int64) ([]*Certificate, error) {
	return service.certificates.ListByUser(ctx, userID)
}
