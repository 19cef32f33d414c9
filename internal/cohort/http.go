// Copyright (c) 2026 InternPulse. All rights reserved.

package cohort

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/internpulse/internpulse/internal/platform/apperr"
	"github.com/internpulse/internpulse/internal/platform/middleware"
	requestutil "github.com/internpulse/internpulse/internal/platform/request"
	"github.com/internpulse/internpulse/internal/platform/respond"
	"github.com/internpulse/internpulse/internal/platform/sec"
	"github.com/internpulse/internpulse/pkg/pagination"
)

// Handler implements the cohort HTTP endpoints.
type Handler struct {
	cohortService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{cohortService: service}
}

// Routes returns a [chi.Router] for the cohort endpoints.
//
// # Endpoints
//   - GET    /                        : Lists cohorts (public, paginated).
//   - GET    /{slug}                  : Returns one cohort by slug (public).
//   - POST   /                        : Admin creates a cohort.
//   - PUT    /{cohortID}              : Admin updates a cohort.
//   - POST   /{cohortID}/members      : Intern enrolls themselves.
//   - GET    /{cohortID}/members      : Admin lists members (paginated).
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", handler.list)
	router.Get("/{slug}", handler.getBySlug)

	router.Group(func(protected chi.Router) {
		protected.Use(middleware.RequireAuth)
		protected.Post("/{cohortID}/members", handler.enroll)
	})

	router.Group(func(admin chi.Router) {
		admin.Use(middleware.RequireRole(sec.RoleAdmin))
		admin.Post("/", handler.create)
		admin.Put("/{cohortID}", handler.update)
		admin.Get("/{cohortID}/members", handler.listMembers)
	})

	return router
}

// cohortRequest represents the JSON payload for creating or updating a cohort.
type cohortRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	StartDate   string `json:"start_date"` // YYYY-MM-DD
	EndDate     string `json:"end_date"`   // YYYY-MM-DD
}

// toInput parses the date strings and builds a service input.
func (payload cohortRequest) toInput() (CohortInput, error) {
	input := CohortInput{
		Name:        payload.Name,
		Description: payload.Description,
	}

	var err error
	if payload.StartDate != "" {
		input.StartDate, err = time.Parse("2006-01-02", payload.StartDate)
		if err != nil {
			return input, apperr.ValidationError("start_date must be formatted YYYY-MM-DD")
		}
	}
	if payload.EndDate != "" {
		input.EndDate, err = time.Parse("2006-01-02", payload.EndDate)
		if err != nil {
			return input, apperr.ValidationError("end_date must be formatted YYYY-MM-DD")
		}
	}

	return input, nil
}

// create handles POST /api/v1/cohorts requests.
func (handler *Handler) create(writer http.ResponseWriter, request *http.Request) {
	var payload cohortRequest
	if err := requestutil.DecodeJSON(request, &payload); err != nil {
		respond.Error(writer, request, err)
		return
	}

	input, err := payload.toInput()
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	cohort, err := handler.cohortService.Create(request.Context(), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, cohort)
}

// list handles GET /api/v1/cohorts requests.
func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	params := pagination.FromRequest(request)

	cohorts, total, err := handler.cohortService.List(request.Context(), params)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if cohorts == nil {
		cohorts = []*Cohort{}
	}

	respond.Paginated(writer, cohorts, pagination.NewMeta(params.Page, params.Limit, total))
}

// getBySlug handles GET /api/v1/cohorts/{slug} requests.
func (handler *Handler) getBySlug(writer http.ResponseWriter, request *http.Request) {
	cohort, err := handler.cohortService.GetBySlug(request.Context(), requestutil.Param(request, "slug"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, cohort)
}

// update handles PUT /api/v1/cohorts/{cohortID} requests.
func (handler *Handler) update(writer http.ResponseWriter, request *http.Request) {
	cohortID, err := requestutil.ID(request, "cohortID")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var payload cohortRequest
	if err := requestutil.DecodeJSON(request, &payload); err != nil {
		respond.Error(writer, request, err)
		return
	}

	input, err := payload.toInput()
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	cohort, err := handler.cohortService.Update(request.Context(), cohortID, input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, cohort)
}

// enrollRequest carries the track the intern wants to join.
type enrollRequest struct {
	Track string `json:"track"`
}

// enroll handles POST /api/v1/cohorts/{cohortID}/members requests.
func (handler *Handler) enroll(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	cohortID, err := requestutil.ID(request, "cohortID")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var payload enrollRequest
	if err := requestutil.DecodeJSON(request, &payload); err != nil {
		respond.Error(writer, request, err)
		return
	}

	membership, err := handler.cohortService.Enroll(request.Context(), cohortID, userID, payload.Track)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, membership)
}

// listMembers handles GET /api/v1/cohorts/{cohortID}/members requests.
func (handler *Handler) listMembers(writer http.ResponseWriter, request *http.Request) {
	cohortID, err := requestutil.ID(request, "cohortID")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	params := pagination.FromRequest(request)
	memberships, total, err := handler.cohortService.ListMembers(request.Context(), cohortID, params)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if memberships == nil {
		memberships = []*Membership{}
	}

	respond.Paginated(writer, memberships, pagination.NewMeta(params.Page, params.Limit, total))
}
