// Copyright (c) 2026 InternPulse. All rights reserved.

package certificate

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/internpulse/internpulse/internal/cohort"
	"github.com/internpulse/internpulse/internal/platform/apperr"
	"github.com/internpulse/internpulse/pkg/snowflake"
)

// fakeRepository implements Repository over a slice.
type fakeRepository struct {
	items []*Certificate
}

func (repo *fakeRepository) Create(_ context.Context, certificate *Certificate) error {
	for _, existing := range repo.items {
		if existing.UserID == certificate.UserID && existing.CohortID == certificate.CohortID {
			return apperr.Conflict("A certificate was already issued for this cohort")
		}
	}
	repo.items = append(repo.items, certificate)
	return nil
}

func (repo *fakeRepository) FindByCode(_ context.Context, code string) (*Certificate, error) {
	for _, certificate := range repo.items {
		if certificate.Code == code {
			return certificate, nil
		}
	}
	return nil, apperr.NotFound("Certificate")
}

func (repo *fakeRepository) ListByUser(_ context.Context, userID int64) ([]*Certificate, error) {
	var owned []*Certificate
	for _, certificate := range repo.items {
		if certificate.UserID == userID {
			owned = append(owned, certificate)
		}
	}
	return owned, nil
}

// fakeCohortDirectory returns a single cohort with a fixed member list.
type fakeCohortDirectory struct {
	cohort  *cohort.Cohort
	members map[int64]*cohort.Membership
}

func (directory *fakeCohortDirectory) GetByID(_ context.Context, cohortID int64) (*cohort.Cohort, error) {
	if directory.cohort != nil && directory.cohort.ID == cohortID {
		return directory.cohort, nil
	}
	return nil, apperr.NotFound("Cohort")
}

func (directory *fakeCohortDirectory) Membership(_ context.Context, cohortID, userID int64) (*cohort.Membership, error) {
	if directory.cohort == nil || directory.cohort.ID != cohortID {
		return nil, apperr.NotFound("Membership")
	}
	if membership, ok := directory.members[userID]; ok {
		return membership, nil
	}
	return nil, apperr.NotFound("Membership")
}

// silentNotifier discards notifications.
type silentNotifier struct{ count int }

func (notifier *silentNotifier) Notify(_ context.Context, _ int64, _, _ string) error {
	notifier.count++
	return nil
}

func newTestService(t *testing.T) (*Service, *silentNotifier) {
	t.Helper()
	generator, err := snowflake.New(0, 0)
	require.NoError(t, err)

	directory := &fakeCohortDirectory{
		cohort: &cohort.Cohort{
			ID:        100,
			Name:      "Cohort 7.0",
			Slug:      "cohort-7-0",
			StartDate: time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
			EndDate:   time.Date(2026, 12, 20, 0, 0, 0, 0, time.UTC),
		},
		members: map[int64]*cohort.Membership{
			42: {ID: 1, CohortID: 100, UserID: 42, Track: cohort.TrackBackend},
		},
	}

	notifier := &silentNotifier{}
	service := NewService(&fakeRepository{}, directory, generator, notifier, slog.Default())
	return service, notifier
}

/*
TestIssueAndVerify walks the full path: admin issues, intern holds it, an
employer verifies the code.
*/
func TestIssueAndVerify(t *testing.T) {
	service, notifier := newTestService(t)
	ctx := context.Background()

	certificate, err := service.Issue(ctx, 100, 42)
	require.NoError(t, err)

	assert.Equal(t, cohort.TrackBackend, certificate.Track)
	assert.Contains(t, certificate.Title, "Cohort 7.0")
	assert.NotEmpty(t, certificate.Code)
	assert.Equal(t, 1, notifier.count)

	verified, err := service.Verify(ctx, certificate.Code)
	require.NoError(t, err)
	assert.Equal(t, certificate.ID, verified.ID)

	mine, err := service.ListMine(ctx, 42)
	require.NoError(t, err)
	assert.Len(t, mine, 1)
}

/*
TestIssue_Preconditions covers the rejection paths: unknown cohort,
non-member intern, and duplicate issuance.
*/
func TestIssue_Preconditions(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown_cohort", func(t *testing.T) {
		service, _ := newTestService(t)
		_, err := service.Issue(ctx, 999, 42)
		var appError *apperr.AppError
		require.ErrorAs(t, err, &appError)
		assert.Equal(t, "NOT_FOUND", appError.Code)
	})

	t.Run("not_a_member", func(t *testing.T) {
		service, _ := newTestService(t)
		_, err := service.Issue(ctx, 100, 7)
		var appError *apperr.AppError
		require.ErrorAs(t, err, &appError)
		assert.Equal(t, "NOT_FOUND", appError.Code)
	})

	t.Run("duplicate_issuance", func(t *testing.T) {
		service, _ := newTestService(t)
		_, err := service.Issue(ctx, 100, 42)
		require.NoError(t, err)

		_, err = service.Issue(ctx, 100, 42)
		var appError *apperr.AppError
		require.ErrorAs(t, err, &appError)
		assert.Equal(t, "CONFLICT", appError.Code)
	})
}

/*
TestVerify_UnknownCode verifies an unknown code is a clean 404.
*/
func TestVerify_UnknownCode(t *testing.T) {
	service, _ := newTestService(t)

	_, err := service.Verify(context.Background(), "not-a-real-code")
	var appError *apperr.AppError
	require.ErrorAs(t, err, &appError)
	assert.Equal(t, "NOT_FOUND", appError.Code)
}
