// Copyright (c) 2026 InternPulse. All rights reserved.

// HTTP delivery layer for the account identity use cases.
//
// # Architecture
//
// Handlers act as the "gatekeepers" to the system. They are responsible for:
//   - JSON Request parsing and strict input validation.
//   - Mapping HTTP contexts to service layer method calls.
//   - Standardizing JSON response formats via the [respond] package.
//
// They contain NO business logic or database queries.
package auth

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/internpulse/internpulse/internal/platform/ctxutil"
	"github.com/internpulse/internpulse/internal/platform/middleware"
	requestutil "github.com/internpulse/internpulse/internal/platform/request"
	"github.com/internpulse/internpulse/internal/platform/respond"
)

// Handler implements authentication-related HTTP endpoints.
//
// # Scope
//
// This handler manages everything related to the user lifecycle entry points
// (Signup, Login, Logout, Refresh, Password Reset, Email Verification).
type Handler struct {
	authService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{authService: service}
}

// Routes returns a [chi.Router] configured with authentication-specific routes.
//
// # Endpoints
//   - POST /signup                  : Creates a new account and issues tokens.
//   - POST /login                   : Authenticates and returns a token pair.
//   - POST /logout                  : Revokes the presented access token.
//   - POST /refresh                 : Rotates a refresh token into a new pair.
//   - POST /password-reset/request  : Emails a reset link.
//   - POST /password-reset/confirm  : Redeems a reset token.
//   - POST /verification/request    : Emails a verification passcode.
//   - POST /verification/confirm    : Redeems a verification passcode.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/signup", handler.signup)
	router.Post("/login", handler.login)
	router.Post("/refresh", handler.refresh)
	router.Post("/password-reset/request", handler.requestPasswordReset)
	router.Post("/password-reset/confirm", handler.confirmPasswordReset)
	router.Post("/verification/request", handler.requestEmailVerification)
	router.Post("/verification/confirm", handler.confirmEmailVerification)

	// Logout needs an authenticated principal plus the raw token to revoke.
	router.Group(func(protected chi.Router) {
		protected.Use(middleware.RequireAuth)
		protected.Post("/logout", handler.logout)
	})

	return router
}

// signupRequest represents the JSON payload expected for account creation.
type signupRequest struct {
	Email      string `json:"email"`
	FirstName  string `json:"first_name"`
	MiddleName string `json:"middle_name"`
	LastName   string `json:"last_name"`
	Password   string `json:"password"`
}

// signup handles POST /api/v1/auth/signup requests.
//
// # Returns
//   - Writes HTTP 201 Created on success with the initial session.
//   - Writes HTTP 400 Bad Request if validation rules fail.
//   - Writes HTTP 409 Conflict if the email is taken.
func (handler *Handler) signup(writer http.ResponseWriter, request *http.Request) {
	// ── 1. Payload Extraction ─────────────────────────────────────────────

	var input signupRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	// ── 2. Application Execution ──────────────────────────────────────────

	// The service owns field validation, uniqueness, hashing, and the
	// welcome-email rollback policy.
	session, err := handler.authService.Signup(request.Context(), SignupInput{
		Email:      input.Email,
		FirstName:  input.FirstName,
		MiddleName: input.MiddleName,
		LastName:   input.LastName,
		Password:   input.Password,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	// ── 3. Presentation Output ────────────────────────────────────────────

	respond.Created(writer, session)
}

// loginRequest represents the JSON payload expected for authentication.
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// login handles POST /api/v1/auth/login requests.
//
// # Returns
//   - Writes HTTP 200 OK on success with the token pair and user profile.
//   - Writes HTTP 401 Unauthorized for bad credentials.
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	var input loginRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	session, err := handler.authService.Login(request.Context(), input.Email, input.Password)
	if err != nil {
		// HTTP 401 without leaking which part of the credentials was wrong.
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, session)
}

// logout handles POST /api/v1/auth/logout requests.
//
// Requires authentication; the token being revoked is the one presented in
// the Authorization header of this very request.
func (handler *Handler) logout(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	rawToken := ctxutil.GetAccessToken(request.Context())

	if err := handler.authService.Logout(request.Context(), userID, rawToken); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Message(writer, "Logged out successfully")
}

// refreshRequest carries the refresh token to rotate.
type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// refresh handles POST /api/v1/auth/refresh requests.
func (handler *Handler) refresh(writer http.ResponseWriter, request *http.Request) {
	var input refreshRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	session, err := handler.authService.Refresh(request.Context(), input.RefreshToken)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, session)
}

// emailRequest carries a bare email address.
type emailRequest struct {
	Email string `json:"email"`
}

// requestPasswordReset handles POST /api/v1/auth/password-reset/request.
//
// Always answers with the same acknowledgement, whether or not the email is
// registered.
func (handler *Handler) requestPasswordReset(writer http.ResponseWriter, request *http.Request) {
	var input emailRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.authService.RequestPasswordReset(request.Context(), input.Email); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Message(writer, "If the email is registered, a reset link has been sent")
}

// confirmPasswordResetRequest carries the token and the replacement password.
type confirmPasswordResetRequest struct {
	Token           string `json:"token"`
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

// confirmPasswordReset handles POST /api/v1/auth/password-reset/confirm.
func (handler *Handler) confirmPasswordReset(writer http.ResponseWriter, request *http.Request) {
	var input confirmPasswordResetRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	err := handler.authService.ConfirmPasswordReset(
		request.Context(), input.Token, input.NewPassword, input.ConfirmPassword,
	)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Message(writer, "Password has been reset")
}

// requestEmailVerification handles POST /api/v1/auth/verification/request.
func (handler *Handler) requestEmailVerification(writer http.ResponseWriter, request *http.Request) {
	var input emailRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.authService.RequestEmailVerification(request.Context(), input.Email); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Message(writer, "If the email is registered, a verification code has been sent")
}

// confirmEmailVerificationRequest carries the email and its passcode.
type confirmEmailVerificationRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

// confirmEmailVerification handles POST /api/v1/auth/verification/confirm.
func (handler *Handler) confirmEmailVerification(writer http.ResponseWriter, request *http.Request) {
	var input confirmEmailVerificationRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.authService.ConfirmEmailVerification(request.Context(), input.Email, input.OTP); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Message(writer, "Email verified successfully")
}
