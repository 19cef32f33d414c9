// Copyright (c) 2026 InternPulse. All rights reserved.

package certificate

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/internpulse/internpulse/internal/platform/middleware"
	requestutil "github.com/internpulse/internpulse/internal/platform/request"
	"github.com/internpulse/internpulse/internal/platform/respond"
	"github.com/internpulse/internpulse/internal/platform/sec"
)

// Handler implements the certificate HTTP endpoints.
type Handler struct {
	certificateService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{certificateService: service}
}

// Routes returns a [chi.Router] for the certificate endpoints.
//
// # Endpoints
//   - GET  /verify/{code} : Public verification by code, no auth required.
//   - GET  /me            : The caller's certificates.
//   - POST /              : Admin issues a certificate.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/verify/{code}", handler.verify)

	router.Group(func(protected chi.Router) {
		protected.Use(middleware.RequireAuth)
		protected.Get("/me", handler.listMine)
	})

	router.Group(func(admin chi.Router) {
		admin.Use(middleware.RequireRole(sec.RoleAdmin))
		admin.Post("/", handler.issue)
	})

	return router
}

// verify handles GET /api/v1/certificates/verify/{code} requests.
func (handler *Handler) verify(writer http.ResponseWriter, request *http.Request) {
	code := requestutil.Param(request, "code")

	certificate, err := handler.certificateService.Verify(request.Context(), code)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, certificate)
}

// listMine handles GET /api/v1/certificates/me requests.
func (handler *Handler) listMine(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	certificates, err := handler.certificateService.ListMine(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if certificates == nil {
		certificates = []*Certificate{}
	}

	respond.OK(writer, certificates)
}

// issueRequest identifies the intern and cohort to certify.
type issueRequest struct {
	UserID   int64 `json:"user_id,string"`
	CohortID int64 `json:"cohort_id,string"`
}

// issue handles POST /api/v1/certificates requests.
func (handler *Handler) issue(writer http.ResponseWriter, request *http.Request) {
	var input issueRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	certificate, err := handler.certificateService.Issue(request.Context(), input.CohortID, input.UserID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, certificate)
}
