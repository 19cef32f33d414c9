// Copyright (c) 2026 InternPulse. All rights reserved.

package notification

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/internpulse/internpulse/internal/platform/validate"
	"github.com/internpulse/internpulse/pkg/pagination"
	"github.com/internpulse/internpulse/pkg/snowflake"
)

// Mailer delivers (or enqueues) an outbound email.
type Mailer interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// Config carries the notification service settings.
type Config struct {
	// SupportEmail is the operations inbox that receives ticket alerts.
	SupportEmail string
}

// Service implements the notification and ticketing use cases.
type Service struct {
	notifications NotificationRepository
	tickets       TicketRepository
	ids           *snowflake.Generator
	mailer        Mailer
	cfg           Config
	log           *slog.Logger
}

// NewService wires the notification service.
func NewService(
	notifications NotificationRepository,
	tickets TicketRepository,
	ids *snowflake.Generator,
	mailer Mailer,
	cfg Config,
	log *slog.Logger,
) *Service {
	return &Service{
		notifications: notifications,
		tickets:       tickets,
		ids:           ids,
		mailer:        mailer,
		cfg:           cfg,
		log:           log,
	}
}

// Notify records an in-app notification for a user. Other services call this
// after events the user should see on their dashboard.
func (service *Service) Notify(ctx context.Context, userID int64, title, message string) (*Notification, error) {
	id, err := service.ids.NextID()
	if err != nil {
		return nil, fmt.Errorf("generate notification id: %w", err)
	}

	notification := &Notification{
		ID:      id,
		UserID:  userID,
		Title:   title,
		Message: message,
	}
	if err := service.notifications.Create(ctx, notification); err != nil {
		return nil, err
	}

	return notification, nil
}

// ListNotifications returns a page of the user's notifications.
func (service *Service) ListNotifications(
	ctx context.Context, userID int64, params pagination.Params,
) ([]*Notification, int, error) {
	return service.notifications.ListByUser(ctx, userID, params.Limit, params.Offset())
}

// MarkRead marks one of the user's notifications as read.
func (service *Service) MarkRead(ctx context.Context, id, userID int64) error {
	return service.notifications.MarkRead(ctx, id, userID)
}

// TicketInput carries the fields common to all ticket kinds.
type TicketInput struct {
	Kind    string
	UserID  int64 // zero for external submitters (talent requests)
	Subject string
	Body    string
	Email   string
	Company string
}

// OpenTicket validates and persists a support ticket, then alerts the
// operations inbox by email.
//
// # Edge Cases
//
// A failed alert email does not fail the request. The ticket row is the
// source of truth and the inbox is a convenience, so the error is logged
// and swallowed.
func (service *Service) OpenTicket(ctx context.Context, input TicketInput) (*Ticket, error) {
	validator := &validate.Validator{}
	validator.OneOf("kind", input.Kind, TicketKindPayment, TicketKindDeferment, TicketKindTalentRequest)
	validator.Required("subject", input.Subject).MaxLen("subject", input.Subject, 200)
	validator.Required("body", input.Body).MaxLen("body", input.Body, 5000)
	validator.Required("email", input.Email).Email("email", input.Email)
	if input.Kind == TicketKindTalentRequest {
		validator.Required("company", input.Company).MaxLen("company", input.Company, 100)
	}
	if err := validator.Err(); err != nil {
		return nil, err
	}

	id, err := service.ids.NextID()
	if err != nil {
		return nil, fmt.Errorf("generate ticket id: %w", err)
	}

	ticket := &Ticket{
		ID:      id,
		Kind:    input.Kind,
		UserID:  input.UserID,
		Subject: input.Subject,
		Body:    input.Body,
		Email:   input.Email,
		Company: input.Company,
		Status:  TicketStatusOpen,
	}
	if err := service.tickets.Create(ctx, ticket); err != nil {
		return nil, err
	}

	subject := fmt.Sprintf("[%s] New ticket: %s", ticket.Kind, ticket.Subject)
	body := fmt.Sprintf(
		"<p>A new <strong>%s</strong> ticket was opened by %s.</p><p>%s</p>",
		ticket.Kind, ticket.Email, ticket.Body,
	)
	if err := service.mailer.Send(ctx, service.cfg.SupportEmail, subject, body); err != nil {
		service.log.WarnContext(ctx, "ticket alert email failed",
			slog.Int64("ticket_id", ticket.ID),
			slog.Any("error", err),
		)
	}

	return ticket, nil
}

// ListTickets returns a page of tickets for the admin inbox.
func (service *Service) ListTickets(
	ctx context.Context, kind string, params pagination.Params,
) ([]*Ticket, int, error) {
	if kind != "" {
		validator := &validate.Validator{}
		validator.OneOf("kind", kind, TicketKindPayment, TicketKindDeferment, TicketKindTalentRequest)
		if err := validator.Err(); err != nil {
			return nil, 0, err
		}
	}
	return service.tickets.List(ctx, kind, params.Limit, params.Offset())
}

// ResolveTicket marks a ticket as handled.
func (service *Service) ResolveTicket(ctx context.Context, id int64) error {
	return service.tickets.Resolve(ctx, id)
}
