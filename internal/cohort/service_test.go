// Copyright (c) 2026 InternPulse. All rights reserved.

package cohort

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/internpulse/internpulse/internal/platform/apperr"
	"github.com/internpulse/internpulse/pkg/pagination"
	"github.com/internpulse/internpulse/pkg/snowflake"
)

// fakeRepository implements Repository over slices.
type fakeRepository struct {
	cohorts     []*Cohort
	memberships []*Membership
}

func (repo *fakeRepository) Create(_ context.Context, cohort *Cohort) error {
	for _, existing := range repo.cohorts {
		if existing.Slug == cohort.Slug {
			return apperr.Conflict("A cohort with this name already exists")
		}
	}
	repo.cohorts = append(repo.cohorts, cohort)
	return nil
}

func (repo *fakeRepository) FindBySlug(_ context.Context, slug string) (*Cohort, error) {
	for _, cohort := range repo.cohorts {
		if cohort.Slug == slug {
			return cohort, nil
		}
	}
	return nil, apperr.NotFound("Cohort")
}

func (repo *fakeRepository) FindByID(_ context.Context, id int64) (*Cohort, error) {
	for _, cohort := range repo.cohorts {
		if cohort.ID == id {
			return cohort, nil
		}
	}
	return nil, apperr.NotFound("Cohort")
}

func (repo *fakeRepository) List(_ context.Context, limit, offset int) ([]*Cohort, int, error) {
	total := len(repo.cohorts)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return repo.cohorts[offset:end], total, nil
}

func (repo *fakeRepository) Update(_ context.Context, cohort *Cohort) error {
	for i, existing := range repo.cohorts {
		if existing.ID == cohort.ID {
			repo.cohorts[i] = cohort
			return nil
		}
	}
	return apperr.NotFound("Cohort")
}

func (repo *fakeRepository) AddMember(_ context.Context, membership *Membership) error {
	for _, existing := range repo.memberships {
		if existing.CohortID == membership.CohortID && existing.UserID == membership.UserID {
			return apperr.Conflict("Already enrolled in this cohort")
		}
	}
	repo.memberships = append(repo.memberships, membership)
	return nil
}

func (repo *fakeRepository) ListMembers(_ context.Context, cohortID int64, limit, offset int) ([]*Membership, int, error) {
	var members []*Membership
	for _, membership := range repo.memberships {
		if membership.CohortID == cohortID {
			members = append(members, membership)
		}
	}
	total := len(members)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return members[offset:end], total, nil
}

func (repo *fakeRepository) FindMembership(_ context.Context, cohortID, userID int64) (*Membership, error) {
	for _, membership := range repo.memberships {
		if membership.CohortID == cohortID && membership.UserID == userID {
			return membership, nil
		}
	}
	return nil, apperr.NotFound("Membership")
}

// recordingNotifier captures dashboard notifications.
type recordingNotifier struct {
	titles []string
}

func (notifier *recordingNotifier) Notify(_ context.Context, _ int64, title, _ string) error {
	notifier.titles = append(notifier.titles, title)
	return nil
}

func newTestService(t *testing.T) (*Service, *fakeRepository, *recordingNotifier) {
	t.Helper()
	repo := &fakeRepository{}
	notifier := &recordingNotifier{}
	generator, err := snowflake.New(0, 0)
	require.NoError(t, err)

	service := NewService(repo, generator, notifier, slog.Default())
	return service, repo, notifier
}

func octoberCohort(t *testing.T, service *Service) *Cohort {
	t.Helper()
	cohort, err := service.Create(context.Background(), CohortInput{
		Name:      "Cohort 7.0 (October)",
		StartDate: time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 12, 20, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	return cohort
}

/*
TestCreate verifies slug derivation and duplicate rejection.
*/
func TestCreate(t *testing.T) {
	service, _, _ := newTestService(t)

	cohort := octoberCohort(t, service)
	assert.Equal(t, "cohort-7-0-october", cohort.Slug)
	assert.NotZero(t, cohort.ID)

	t.Run("duplicate_name_conflicts", func(t *testing.T) {
		_, err := service.Create(context.Background(), CohortInput{
			Name:      "Cohort 7.0 (October)",
			StartDate: time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC),
			EndDate:   time.Date(2027, 3, 1, 0, 0, 0, 0, time.UTC),
		})
		var appError *apperr.AppError
		require.ErrorAs(t, err, &appError)
		assert.Equal(t, "CONFLICT", appError.Code)
	})

	t.Run("end_before_start_rejected", func(t *testing.T) {
		_, err := service.Create(context.Background(), CohortInput{
			Name:      "Backwards",
			StartDate: time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC),
			EndDate:   time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
		})
		var appError *apperr.AppError
		require.ErrorAs(t, err, &appError)
		assert.Equal(t, "VALIDATION_ERROR", appError.Code)
	})
}

/*
TestUpdate verifies renaming a cohort moves its slug.
*/
func TestUpdate(t *testing.T) {
	service, _, _ := newTestService(t)
	cohort := octoberCohort(t, service)

	updated, err := service.Update(context.Background(), cohort.ID, CohortInput{
		Name:      "Cohort 7.1",
		StartDate: cohort.StartDate,
		EndDate:   cohort.EndDate,
	})
	require.NoError(t, err)
	assert.Equal(t, "cohort-7-1", updated.Slug)

	found, err := service.GetBySlug(context.Background(), "cohort-7-1")
	require.NoError(t, err)
	assert.Equal(t, cohort.ID, found.ID)
}

/*
TestEnroll covers the enrollment rules: valid track, open cohort, single
membership per cohort, and the dashboard notification.
*/
func TestEnroll(t *testing.T) {
	ctx := context.Background()

	t.Run("happy_path", func(t *testing.T) {
		service, _, notifier := newTestService(t)
		cohort := octoberCohort(t, service)
		service.now = func() time.Time { return time.Date(2026, 10, 5, 0, 0, 0, 0, time.UTC) }

		membership, err := service.Enroll(ctx, cohort.ID, 42, TrackBackend)
		require.NoError(t, err)
		assert.Equal(t, TrackBackend, membership.Track)
		require.Len(t, notifier.titles, 1)
		assert.Contains(t, notifier.titles[0], "Cohort 7.0")

		found, err := service.Membership(ctx, cohort.ID, 42)
		require.NoError(t, err)
		assert.Equal(t, membership.ID, found.ID)
	})

	t.Run("unknown_track_rejected", func(t *testing.T) {
		service, _, _ := newTestService(t)
		cohort := octoberCohort(t, service)

		_, err := service.Enroll(ctx, cohort.ID, 42, "devops")
		var appError *apperr.AppError
		require.ErrorAs(t, err, &appError)
		assert.Equal(t, "VALIDATION_ERROR", appError.Code)
	})

	t.Run("ended_cohort_closed", func(t *testing.T) {
		service, _, _ := newTestService(t)
		cohort := octoberCohort(t, service)
		service.now = func() time.Time { return time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC) }

		_, err := service.Enroll(ctx, cohort.ID, 42, TrackBackend)
		var appError *apperr.AppError
		require.ErrorAs(t, err, &appError)
		assert.Equal(t, "VALIDATION_ERROR", appError.Code)
	})

	t.Run("double_enrollment_conflicts", func(t *testing.T) {
		service, _, _ := newTestService(t)
		cohort := octoberCohort(t, service)
		service.now = func() time.Time { return time.Date(2026, 10, 5, 0, 0, 0, 0, time.UTC) }

		_, err := service.Enroll(ctx, cohort.ID, 42, TrackBackend)
		require.NoError(t, err)

		_, err = service.Enroll(ctx, cohort.ID, 42, TrackFrontend)
		var appError *apperr.AppError
		require.ErrorAs(t, err, &appError)
		assert.Equal(t, "CONFLICT", appError.Code)
	})
}

/*
TestListMembers verifies the member listing requires an existing cohort.
*/
func TestListMembers(t *testing.T) {
	service, _, _ := newTestService(t)
	cohort := octoberCohort(t, service)
	service.now = func() time.Time { return time.Date(2026, 10, 5, 0, 0, 0, 0, time.UTC) }

	for userID := int64(1); userID <= 3; userID++ {
		_, err := service.Enroll(context.Background(), cohort.ID, userID, TrackBackend)
		require.NoError(t, err)
	}

	members, total, err := service.ListMembers(context.Background(), cohort.ID, pagination.Params{Page: 1, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Len(t, members, 2)

	_, _, err = service.ListMembers(context.Background(), 999, pagination.Params{Page: 1, Limit: 2})
	var appError *apperr.AppError
	require.ErrorAs(t, err, &appError)
	assert.Equal(t, "NOT_FOUND", appError.Code)
}
