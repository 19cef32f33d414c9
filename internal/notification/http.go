// Copyright (c) 2026 InternPulse. All rights reserved.

package notification

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/internpulse/internpulse/internal/platform/middleware"
	requestutil "github.com/internpulse/internpulse/internal/platform/request"
	"github.com/internpulse/internpulse/internal/platform/respond"
	"github.com/internpulse/internpulse/internal/platform/sec"
	"github.com/internpulse/internpulse/pkg/pagination"
)

// Handler implements the notification and ticket HTTP endpoints.
type Handler struct {
	notificationService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{notificationService: service}
}

// Routes returns a [chi.Router] for the notification endpoints.
//
// # Endpoints
//   - GET    /                     : Lists the caller's notifications (paginated).
//   - PATCH  /{notificationID}/read: Marks one notification as read.
//   - POST   /tickets              : Opens a support ticket (auth optional for talent requests).
//   - GET    /tickets              : Admin inbox of tickets.
//   - PATCH  /tickets/{ticketID}/resolve : Admin resolves a ticket.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// Talent requests come from companies without accounts.
	router.Post("/tickets", handler.openTicket)

	router.Group(func(protected chi.Router) {
		protected.Use(middleware.RequireAuth)
		protected.Get("/", handler.listNotifications)
		protected.Patch("/{notificationID}/read", handler.markRead)
	})

	router.Group(func(admin chi.Router) {
		admin.Use(middleware.RequireRole(sec.RoleAdmin))
		admin.Get("/tickets", handler.listTickets)
		admin.Patch("/tickets/{ticketID}/resolve", handler.resolveTicket)
	})

	return router
}

// listNotifications handles GET /api/v1/notifications requests.
func (handler *Handler) listNotifications(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	params := pagination.FromRequest(request)
	notifications, total, err := handler.notificationService.ListNotifications(request.Context(), userID, params)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	// An empty page still serializes as [] rather than null.
	if notifications == nil {
		notifications = []*Notification{}
	}

	respond.Paginated(writer, notifications, pagination.NewMeta(params.Page, params.Limit, total))
}

// markRead handles PATCH /api/v1/notifications/{notificationID}/read requests.
func (handler *Handler) markRead(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	notificationID, err := requestutil.ID(request, "notificationID")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.notificationService.MarkRead(request.Context(), notificationID, userID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Message(writer, "Notification marked as read")
}

// ticketRequest represents the JSON payload for opening a support ticket.
type ticketRequest struct {
	Kind    string `json:"kind"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
	Email   string `json:"email"`
	Company string `json:"company"`
}

// openTicket handles POST /api/v1/notifications/tickets requests.
func (handler *Handler) openTicket(writer http.ResponseWriter, request *http.Request) {
	var input ticketRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	// Attach the caller's identity when the request is authenticated so the
	// ticket shows up in their history; anonymous submissions keep UserID 0.
	var userID int64
	if claims := requestutil.Claims(request); claims != nil {
		if id, err := claims.UserID(); err == nil {
			userID = id
		}
	}

	ticket, err := handler.notificationService.OpenTicket(request.Context(), TicketInput{
		Kind:    input.Kind,
		UserID:  userID,
		Subject: input.Subject,
		Body:    input.Body,
		Email:   input.Email,
		Company: input.Company,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, ticket)
}

// listTickets handles GET /api/v1/notifications/tickets requests.
func (handler *Handler) listTickets(writer http.ResponseWriter, request *http.Request) {
	params := pagination.FromRequest(request)
	kind := request.URL.Query().Get("kind")

	tickets, total, err := handler.notificationService.ListTickets(request.Context(), kind, params)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if tickets == nil {
		tickets = []*Ticket{}
	}

	respond.Paginated(writer, tickets, pagination.NewMeta(params.Page, params.Limit, total))
}

// resolveTicket handles PATCH /api/v1/notifications/tickets/{ticketID}/resolve.
func (handler *Handler) resolveTicket(writer http.ResponseWriter, request *http.Request) {
	ticketID, err := requestutil.ID(request, "ticketID")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.notificationService.ResolveTicket(request.Context(), ticketID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Message(writer, "Ticket resolved")
}
