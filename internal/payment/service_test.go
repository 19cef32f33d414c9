// Copyright (c) 2026 InternPulse. All rights reserved.

package payment

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

// fakeRepository implements Repository over a slice, mirroring the
// pending-only precondition of the SQL store.
type fakeRepository struct {
	items []*Transaction
}

func (repo *fakeRepository) Create(_ context.Context, transaction *Transaction) error {
	for _, existing := range repo.items {
		if existing.Reference == transaction.Reference {
			return apperr.Conflict("This payment reference was already submitted")
		}
	}
	repo.items = append(repo.items, transaction)
	return nil
}

func (repo *fakeRepository) FindByID(_ context.Context, id int64) (*Transaction, error) {
	for _, transaction := range repo.items {
		if transaction.ID == id {
			return transaction, nil
		}
	}
	return nil, apperr.NotFound("Transaction")
}

func (repo *fakeRepository) ListByUser(_ context.Context, userID int64, limit, offset int) ([]*Transaction, int, error) {
	var owned []*Transaction
	for _, transaction := range repo.items {
		if transaction.UserID == userID {
			owned = append(owned, transaction)
		}
	}
	return page(owned, limit, offset)
}

func (repo *fakeRepository) List(_ context.Context, status string, limit, offset int) ([]*Transaction, int, error) {
	var matched []*Transaction
	for _, transaction := range repo.items {
		if status == "" || transaction.Status == status {
			matched = append(matched, transaction)
		}
	}
	return page(matched, limit, offset)
}

func (repo *fakeRepository) SetStatus(_ context.Context, id int64, status string, verifiedAt time.Time) error {
	for _, transaction := range repo.items {
		if transaction.ID == id {
			if transaction.Status != StatusPending {
				return apperr.Conflict("Transaction was already processed")
			}
			transaction.Status = status
			transaction.VerifiedAt = &verifiedAt
			return nil
		}
	}
	return apperr.NotFound("Transaction")
}

func page(items []*Transaction, limit, offset int) ([]*Transaction, int, error) {
	total := len(items)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return items[offset:end], total, nil
}

// recordingNotifier captures notification titles per user.
type recordingNotifier struct {
	titles []string
}

func (notifier *recordingNotifier) Notify(_ context.Context, _ int64, title, _ string) error {
	notifier.titles = append(notifier.titles, title)
	return nil
}

func newTestService(t *testing.T) (*Service, *recordingNotifier) {
	t.Helper()
	generator, err := snowflake.New(0, 0)
	require.NoError(t, err)

	notifier := &recordingNotifier{}
	service := NewService(&fakeRepository{}, generator, notifier, slog.Default())
	return service, notifier
}

func submitTestPayment(t *testing.T, service *Service, reference string) *Transaction {
	t.Helper()
	transaction, err := service.Submit(context.Background(), SubmitInput{
		UserID:    42,
		CohortID:  100,
		Reference: reference,
		Amount:    50_000_00,
		Currency:  "NGN",
	})
	require.NoError(t, err)
	return transaction
}

/*
TestSubmit verifies a payment report lands in pending and duplicate
references are rejected.
*/
func TestSubmit(t *testing.T) {
	service, _ := newTestService(t)

	transaction := submitTestPayment(t, service, "PSK-12345")
	assert.Equal(t, StatusPending, transaction.Status)
	assert.Nil(t, transaction.VerifiedAt)

	t.Run("duplicate_reference_conflicts", func(t *testing.T) {
		_, err := service.Submit(context.Background(), SubmitInput{
			UserID:    7,
			CohortID:  100,
			Reference: "PSK-12345",
			Amount:    50_000_00,
			Currency:  "NGN",
		})
		var appError *apperr.AppError
		require.ErrorAs(t, err, &appError)
		assert.Equal(t, "CONFLICT", appError.Code)
	})
}

/*
TestSubmit_Validation covers the rejection matrix for payment reports.
*/
func TestSubmit_Validation(t *testing.T) {
	tests := []struct {
		name  string
		input SubmitInput
	}{
		{"missing_reference", SubmitInput{UserID: 42, CohortID: 100, Amount: 100, Currency: "NGN"}},
		{"zero_amount", SubmitInput{UserID: 42, CohortID: 100, Reference: "R1", Currency: "NGN"}},
		{"negative_amount", SubmitInput{UserID: 42, CohortID: 100, Reference: "R1", Amount: -5, Currency: "NGN"}},
		{"unknown_currency", SubmitInput{UserID: 42, CohortID: 100, Reference: "R1", Amount: 100, Currency: "EUR"}},
		{"missing_cohort", SubmitInput{UserID: 42, Reference: "R1", Amount: 100, Currency: "NGN"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, _ := newTestService(t)
			_, err := service.Submit(context.Background(), tt.input)

			var appError *apperr.AppError
			require.ErrorAs(t, err, &appError)
			assert.Equal(t, "VALIDATION_ERROR", appError.Code)
		})
	}
}

/*
TestVerify covers approval, rejection, double processing, and the intern
notification.
*/
func TestVerify(t *testing.T) {
	ctx := context.Background()

	t.Run("approve", func(t *testing.T) {
		service, notifier := newTestService(t)
		transaction := submitTestPayment(t, service, "PSK-1")

		verified, err := service.Verify(ctx, transaction.ID, true)
		require.NoError(t, err)
		assert.Equal(t, StatusVerified, verified.Status)
		require.NotNil(t, verified.VerifiedAt)
		require.Len(t, notifier.titles, 1)
		assert.Equal(t, "Payment verified", notifier.titles[0])
	})

	t.Run("reject", func(t *testing.T) {
		service, notifier := newTestService(t)
		transaction := submitTestPayment(t, service, "PSK-2")

		rejected, err := service.Verify(ctx, transaction.ID, false)
		require.NoError(t, err)
		assert.Equal(t, StatusRejected, rejected.Status)
		require.Len(t, notifier.titles, 1)
		assert.Equal(t, "Payment rejected", notifier.titles[0])
	})

	t.Run("double_processing_conflicts", func(t *testing.T) {
		service, _ := newTestService(t)
		transaction := submitTestPayment(t, service, "PSK-3")

		_, err := service.Verify(ctx, transaction.ID, true)
		require.NoError(t, err)

		_, err = service.Verify(ctx, transaction.ID, false)
		var appError *apperr.AppError
		require.ErrorAs(t, err, &appError)
		assert.Equal(t, "CONFLICT", appError.Code)
	})

	t.Run("unknown_transaction", func(t *testing.T) {
		service, _ := newTestService(t)
		_, err := service.Verify(ctx, 999, true)
		var appError *apperr.AppError
		require.ErrorAs(t, err, &appError)
		assert.Equal(t, "NOT_FOUND", appError.Code)
	})
}

/*
TestListAll verifies the status filter on the finance console listing.
*/
func TestListAll(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()

	first := submitTestPayment(t, service, "PSK-1")
	submitTestPayment(t, service, "PSK-2")
	_, err := service.Verify(ctx, first.ID, true)
	require.NoError(t, err)

	params := pagination.Params{Page: 1, Limit: 20}

	pending, total, err := service.ListAll(ctx, StatusPending, params)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, pending, 1)
	assert.Equal(t, "PSK-2", pending[0].Reference)

	_, _, err = service.ListAll(ctx, "refunded", params)
	var appError *apperr.AppError
	require.ErrorAs(t, err, &appError)
	assert.Equal(t, "VALIDATION_ERROR", appError.Code)
}
