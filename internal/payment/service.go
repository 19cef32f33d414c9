// Copyright (c) 2026 InternPulse. All rights reserved.

package payment

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/internpulse/internpulse/internal/platform/validate"
	"github.com/internpulse/internpulse/pkg/pagination"
	"github.com/internpulse/internpulse/pkg/snowflake"
)

// Notifier posts a dashboard notification to a user.
type Notifier interface {
	Notify(ctx context.Context, userID int64, title, message string) error
}

// Service implements the payment use cases.
type Service struct {
	transactions Repository
	ids          *snowflake.Generator
	notifier     Notifier
	log          *slog.Logger
	now          func() time.Time
}

// NewService wires the payment service.
func NewService(transactions Repository, ids *snowflake.Generator, notifier Notifier, log *slog.Logger) *Service {
	return &Service{
		transactions: transactions,
		ids:          ids,
		notifier:     notifier,
		log:          log,
		now:          time.Now,
	}
}

// SubmitInput carries the fields for reporting a payment.
type SubmitInput struct {
	UserID    int64
	CohortID  int64
	Reference string
	Amount    int64
	Currency  string
}

// Submit records an intern's payment report in the pending state.
func (service *Service) Submit(ctx context.Context, input SubmitInput) (*Transaction, error) {
	validator := &validate.Validator{}
	validator.Required("reference", input.Reference).MaxLen("reference", input.Reference, 100)
	validator.Custom("amount", input.Amount <= 0, "Must be a positive amount")
	validator.Required("currency", input.Currency).OneOf("currency", input.Currency, "NGN", "USD")
	validator.Custom("cohort_id", input.CohortID == 0, "This field is required")
	if err := validator.Err(); err != nil {
		return nil, err
	}

	id, err := service.ids.NextID()
	if err != nil {
		return nil, fmt.Errorf("generate transaction id: %w", err)
	}

	transaction := &Transaction{
		ID:        id,
		UserID:    input.UserID,
		CohortID:  input.CohortID,
		Reference: input.Reference,
		Amount:    input.Amount,
		Currency:  input.Currency,
		Status:    StatusPending,
	}
	if err := service.transactions.Create(ctx, transaction); err != nil {
		return nil, err
	}

	return transaction, nil
}

// Verify marks a pending transaction as confirmed by finance and tells the
// intern. Rejection shares the code path with approve=false.
func (service *Service) Verify(ctx context.Context, transactionID int64, approve bool) (*Transaction, error) {
	status := StatusVerified
	if !approve {
		status = StatusRejected
	}

	if err := service.transactions.SetStatus(ctx, transactionID, status, service.now()); err != nil {
		return nil, err
	}

	transaction, err := service.transactions.FindByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}

	title := "Payment verified"
	message := fmt.Sprintf("Your payment %s has been confirmed.", transaction.Reference)
	if !approve {
		title = "Payment rejected"
		message = fmt.Sprintf("Your payment %s could not be confirmed. Please contact support.", transaction.Reference)
	}
	if err := service.notifier.Notify(ctx, transaction.UserID, title, message); err != nil {
		service.log.WarnContext(ctx, "payment notification failed",
			slog.Int64("transaction_id", transactionID),
			slog.Any("error", err),
		)
	}

	return transaction, nil
}

// ListMine returns a page of the caller's transactions.
func (service *Service) ListMine(
	ctx context.Context, userID int64, params pagination.Params,
) ([]*Transaction, int, error) {
	return service.transactions.ListByUser(ctx, userID, params.Limit, params.Offset())
}

// ListAll returns a page of all transactions for the finance console.
func (service *Service) ListAll(
	ctx context.Context, status string, params pagination.Params,
) ([]*Transaction, int, error) {
	if status != "" {
		validator := &validate.Validator{}
		validator.OneOf("status", status, StatusPending, StatusVerified, StatusRejected)
		if err := validator.Err(); err != nil {
			return nil, 0, err
		}
	}
	return service.transactions.List(ctx, status, params.Limit, params.Offset())
}
