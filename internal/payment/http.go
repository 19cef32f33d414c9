// Copyright (c) 2026 InternPulse. All rights reserved.

package payment

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/internpulse/internpulse/internal/platform/middleware"
	requestutil "github.com/internpulse/internpulse/internal/platform/request"
	"github.com/internpulse/internpulse/internal/platform/respond"
	"github.com/internpulse/internpulse/internal/platform/sec"
	"github.com/internpulse/internpulse/pkg/pagination"
)

// Handler implements the payment HTTP endpoints.
type Handler struct {
	paymentService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{paymentService: service}
}

// Routes returns a [chi.Router] for the payment endpoints.
//
// # Endpoints
//   - POST  /                          : Intern submits a payment reference.
//   - GET   /me                        : The caller's transactions (paginated).
//   - GET   /                          : Admin list, ?status= filter.
//   - PATCH /{transactionID}/verify    : Admin approves or rejects.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Group(func(protected chi.Router) {
		protected.Use(middleware.RequireAuth)
		protected.Post("/", handler.submit)
		protected.Get("/me", handler.listMine)
	})

	router.Group(func(admin chi.Router) {
		admin.Use(middleware.RequireRole(sec.RoleAdmin))
		admin.Get("/", handler.listAll)
		admin.Patch("/{transactionID}/verify", handler.verify)
	})

	return router
}

// submitRequest represents the JSON payload for reporting a payment.
type submitRequest struct {
	CohortID  int64  `json:"cohort_id,string"`
	Reference string `json:"reference"`
	Amount    int64  `json:"amount"`
	Currency  string `json:"currency"`
}

// submit handles POST /api/v1/payments requests.
func (handler *Handler) submit(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input submitRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	transaction, err := handler.paymentService.Submit(request.Context(), SubmitInput{
		UserID:    userID,
		CohortID:  input.CohortID,
		Reference: input.Reference,
		Amount:    input.Amount,
		Currency:  input.Currency,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, transaction)
}

// listMine handles GET /api/v1/payments/me requests.
func (handler *Handler) listMine(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	params := pagination.FromRequest(request)
	transactions, total, err := handler.paymentService.ListMine(request.Context(), userID, params)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if transactions == nil {
		transactions = []*Transaction{}
	}

	respond.Paginated(writer, transactions, pagination.NewMeta(params.Page, params.Limit, total))
}

// listAll handles GET /api/v1/payments requests.
func (handler *Handler) listAll(writer http.ResponseWriter, request *http.Request) {
	params := pagination.FromRequest(request)
	status := request.URL.Query().Get("status")

	transactions, total, err := handler.paymentService.ListAll(request.Context(), status, params)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if transactions == nil {
		transactions = []*Transaction{}
	}

	respond.Paginated(writer, transactions, pagination.NewMeta(params.Page, params.Limit, total))
}

// verifyRequest carries the finance decision.
type verifyRequest struct {
	Approve bool `json:"approve"`
}

// verify handles PATCH /api/v1/payments/{transactionID}/verify requests.
func (handler *Handler) verify(writer http.ResponseWriter, request *http.Request) {
	transactionID, err := requestutil.ID(request, "transactionID")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input verifyRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	transaction, err := handler.paymentService.Verify(request.Context(), transactionID, input.Approve)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, transaction)
}
