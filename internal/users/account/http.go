// Copyright (c) 2026 InternPulse. All rights reserved.

package account

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/internpulse/internpulse/internal/platform/middleware"
	requestutil "github.com/internpulse/internpulse/internal/platform/request"
	"github.com/internpulse/internpulse/internal/platform/respond"
	"github.com/internpulse/internpulse/internal/platform/sec"
	"github.com/internpulse/internpulse/internal/users/auth"
	"github.com/internpulse/internpulse/pkg/pagination"
)

// Handler implements the profile and admin directory HTTP endpoints.
type Handler struct {
	accountService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{accountService: service}
}

// Routes returns a [chi.Router] for the account endpoints.
//
// # Endpoints
//   - GET    /me              : Returns the caller's account and profile.
//   - PATCH  /me              : Partially updates the caller's account and profile.
//   - GET    /                : Admin list of users (paginated).
//   - GET    /{userID}        : Admin view of a single user.
//   - PATCH  /{userID}/role   : Admin role change.
//   - DELETE /{userID}        : Admin delete, or deactivate with ?deactivate=true.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Group(func(protected chi.Router) {
		protected.Use(middleware.RequireAuth)
		protected.Get("/me", handler.me)
		protected.Patch("/me", handler.updateMe)
	})

	router.Group(func(admin chi.Router) {
		admin.Use(middleware.RequireRole(sec.RoleAdmin))
		admin.Get("/", handler.listUsers)
		admin.Get("/{userID}", handler.getUser)
		admin.Patch("/{userID}/role", handler.changeRole)
		admin.Delete("/{userID}", handler.removeUser)
	})

	return router
}

// me handles GET /api/v1/users/me requests.
func (handler *Handler) me(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	account, err := handler.accountService.Me(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, account)
}

// updateMeRequest represents the JSON payload for profile edits. Every field
// is optional; absent fields are left untouched.
type updateMeRequest struct {
	FirstName  *string `json:"first_name"`
	MiddleName *string `json:"middle_name"`
	LastName   *string `json:"last_name"`

	PhoneNumber *string `json:"phone_number"`
	Address     *string `json:"address"`
	Country     *string `json:"country"`
	State       *string `json:"state"`
	City        *string `json:"city"`
	ZipCode     *string `json:"zip_code"`
	TechStack   *string `json:"tech_stack"`
	AvatarURL   *string `json:"avatar_url"`
}

// updateMe handles PATCH /api/v1/users/me requests.
func (handler *Handler) updateMe(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input updateMeRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	account, err := handler.accountService.UpdateMe(request.Context(), userID, UpdateMeInput{
		FirstName:   input.FirstName,
		MiddleName:  input.MiddleName,
		LastName:    input.LastName,
		PhoneNumber: input.PhoneNumber,
		Address:     input.Address,
		Country:     input.Country,
		State:       input.State,
		City:        input.City,
		ZipCode:     input.ZipCode,
		TechStack:   input.TechStack,
		AvatarURL:   input.AvatarURL,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, account)
}

// listUsers handles GET /api/v1/users requests.
func (handler *Handler) listUsers(writer http.ResponseWriter, request *http.Request) {
	params := pagination.FromRequest(request)

	users, total, err := handler.accountService.ListUsers(request.Context(), params)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if users == nil {
		users = []*auth.User{}
	}

	respond.Paginated(writer, users, pagination.NewMeta(params.Page, params.Limit, total))
}

// getUser handles GET /api/v1/users/{userID} requests.
func (handler *Handler) getUser(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.ID(request, "userID")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	account, err := handler.accountService.GetUser(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, account)
}

// changeRoleRequest carries the target role for a user.
type changeRoleRequest struct {
	Role string `json:"role"`
}

// changeRole handles PATCH /api/v1/users/{userID}/role requests.
func (handler *Handler) changeRole(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.ID(request, "userID")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input changeRoleRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.accountService.ChangeRole(request.Context(), userID, input.Role); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Message(writer, "Role updated")
}

// removeUser handles DELETE /api/v1/users/{userID} requests.
//
// With ?deactivate=true the account is disabled instead of erased, keeping
// its history for audits.
func (handler *Handler) removeUser(writer http.ResponseWriter, request *http.Request) {
	actorID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	userID, err := requestutil.ID(request, "userID")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	deactivate := request.URL.Query().Get("deactivate") == "true"

	if err := handler.accountService.RemoveUser(request.Context(), actorID, userID, deactivate); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}
