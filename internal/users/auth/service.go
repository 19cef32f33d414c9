// Copyright (c) 2026 InternPulse. All rights reserved.

// Service layer for the account identity use cases.
//
// # Architecture
//
// The Service orchestrates domain entities and interacts with repositories
// through interfaces. It is technology-agnostic and does not know about HTTP
// or SQL.
//
// # Review Process
//
// This service is critical for security. Any changes to hashing, token
// issuance, or rotation logic must be reviewed by the security team.
package auth

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/internpulse/internpulse/internal/platform/apperr"
	"github.com/internpulse/internpulse/internal/platform/constants"
	"github.com/internpulse/internpulse/internal/platform/sec"
	"github.com/internpulse/internpulse/internal/platform/validate"
	"github.com/internpulse/internpulse/pkg/snowflake"
)

// Config carries the deployment-tuned knobs the service needs.
type Config struct {
	// OTPDigits is the passcode length for email verification.
	OTPDigits int
	// OTPPeriod is the TOTP time-step width.
	OTPPeriod time.Duration
	// FrontendURL is the base for password-reset links in outbound email.
	FrontendURL string
}

// Service implements the account identity and session lifecycle use cases.
type Service struct {
	users     UserRepository
	blacklist BlacklistRepository
	rotation  RotationStore
	tokens    *sec.TokenManager
	codec     *sec.PurposeCodec
	ids       *snowflake.Generator
	notifier  Notifier
	cfg       Config

	// now is swappable for OTP and expiry tests.
	now func() time.Time
}

// NewService constructs a new auth [Service] with necessary dependencies.
func NewService(
	users UserRepository,
	blacklist BlacklistRepository,
	rotation RotationStore,
	tokens *sec.TokenManager,
	codec *sec.PurposeCodec,
	ids *snowflake.Generator,
	notifier Notifier,
	cfg Config,
) *Service {
	return &Service{
		users:     users,
		blacklist: blacklist,
		rotation:  rotation,
		tokens:    tokens,
		codec:     codec,
		ids:       ids,
		notifier:  notifier,
		cfg:       cfg,
		now:       time.Now,
	}
}

// SignupInput holds the data required to enroll a new member.
type SignupInput struct {
	Email      string
	FirstName  string
	MiddleName string
	LastName   string
	Password   string
}

// Signup validates, hashes, and persists a brand new user account, then
// issues the initial session.
//
// # Business Rules
//   - Emails must be unique.
//   - Default role is always 'intern'.
//   - Accounts start active but unverified; the welcome email carries the
//     verification passcode.
//
// # Rollback Policy
//
// If the welcome email cannot be accepted for delivery, the just-created
// account is deleted and signup fails. An account whose owner never received
// a verification passcode would be stranded unverified forever.
func (service *Service) Signup(ctx context.Context, input SignupInput) (*Session, error) {
	// ── 1. Input Validation ───────────────────────────────────────────────

	validator := &validate.Validator{}
	err := validator.
		Required("email", input.Email).
		Email("email", input.Email).
		PersonName("first_name", input.FirstName).
		PersonName("last_name", input.LastName).
		Password("password", input.Password).
		Err()
	if err != nil {
		return nil, err
	}

	// ── 2. Uniqueness Check ───────────────────────────────────────────────

	// Verify email uniqueness up front for a clean Conflict message. The
	// unique constraint in storage still backstops a concurrent signup race.
	if _, err := service.users.FindByEmail(ctx, input.Email); err == nil {
		return nil, apperr.Conflict("Email is already registered")
	}

	// ── 3. Security Material ──────────────────────────────────────────────

	hashedPassword, err := sec.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("auth_service_hash_failed: %w", err)
	}

	otpSecret, err := sec.NewOTPSecret()
	if err != nil {
		return nil, fmt.Errorf("auth_service_otp_secret_failed: %w", err)
	}

	// ── 4. Entity Construction ────────────────────────────────────────────

	userID, err := service.ids.NextID()
	if err != nil {
		return nil, fmt.Errorf("auth_service_id_generation_failed: %w", err)
	}

	user := &User{
		ID:           userID,
		Email:        input.Email,
		FirstName:    input.FirstName,
		MiddleName:   input.MiddleName,
		LastName:     input.LastName,
		PasswordHash: hashedPassword,
		Role:         sec.RoleIntern, // Rule: default role is always Intern
		IsActive:     true,
		IsVerified:   false,
		OTPSecret:    otpSecret,
	}

	// ── 5. Persistence ────────────────────────────────────────────────────

	if err := service.users.Create(ctx, user); err != nil {
		return nil, err
	}

	// ── 6. Welcome Email (with signup rollback) ───────────────────────────

	passcode, err := sec.CurrentOTP(user.OTPSecret, service.cfg.OTPDigits, service.cfg.OTPPeriod, service.now())
	if err != nil {
		_ = service.users.Delete(ctx, user.ID)
		return nil, fmt.Errorf("auth_service_welcome_otp_failed: %w", err)
	}

	body := fmt.Sprintf(
		"<p>Welcome to InternPulse, %s!</p><p>Your verification code is <strong>%s</strong>.</p>",
		user.FirstName, passcode,
	)
	if err := service.notifier.Send(ctx, user.Email, "Welcome to InternPulse", body); err != nil {
		_ = service.users.Delete(ctx, user.ID)
		return nil, apperr.ServiceUnavailable("Could not send welcome email, please try again")
	}

	// ── 7. Initial Session ────────────────────────────────────────────────

	return service.issueSession(user)
}

// Login validates user credentials and issues a fresh session.
//
// # Returns
//   - A pointer to [Session] containing the token pair and user.
//   - Returns [apperr.Unauthorized] if credentials do not match.
//
// # Anti-Enumeration
//
// Unknown email, wrong password, and deactivated account all yield the same
// generic error so callers cannot probe which accounts exist.
func (service *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	// ── 1. Fetch User ─────────────────────────────────────────────────────

	user, err := service.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, apperr.Unauthorized("Invalid login credentials")
	}

	// ── 2. Security Verification ──────────────────────────────────────────

	// bcrypt compares in constant time, so the password check itself does
	// not leak timing information.
	if !sec.CheckPasswordHash(password, user.PasswordHash) {
		return nil, apperr.Unauthorized("Invalid login credentials")
	}

	if !user.IsActive {
		return nil, apperr.Unauthorized("Invalid login credentials")
	}

	// ── 3. Token Issuance ─────────────────────────────────────────────────

	return service.issueSession(user)
}

// Logout revokes the presented access token by recording it in the blacklist.
//
// # Idempotency
//
// Logging out twice with the same token is a no-op: the blacklist insert
// swallows duplicates. The refresh token dies with the session because the
// client discards it; its rotation marker is never consulted again.
func (service *Service) Logout(ctx context.Context, userID int64, rawAccessToken string) error {
	entryID, err := service.ids.NextID()
	if err != nil {
		return fmt.Errorf("auth_service_logout_id_failed: %w", err)
	}

	entry := &BlacklistEntry{
		ID:     entryID,
		Token:  rawAccessToken,
		UserID: userID,
	}

	if err := service.blacklist.Add(ctx, entry); err != nil {
		return fmt.Errorf("auth_service_logout_failed: %w", err)
	}

	return nil
}

// Refresh implements the Refresh Token Rotation mechanism.
//
// It verifies the presented refresh token, atomically marks its jti as spent,
// and issues a fresh access+refresh pair.
//
// # Rotation Race
//
// Marking the jti is a test-and-set: of two concurrent redemptions of the
// same refresh token, exactly one wins and the other receives Unauthorized.
// A captured-and-replayed refresh token is therefore useless once the
// legitimate client has rotated it.
func (service *Service) Refresh(ctx context.Context, refreshToken string) (*Session, error) {
	// ── 1. Structural Verification ────────────────────────────────────────

	claims, err := service.tokens.VerifyRefreshToken(refreshToken)
	if err != nil {
		return nil, apperr.Unauthorized("Invalid or expired refresh token")
	}

	userID, err := claims.UserID()
	if err != nil {
		return nil, apperr.Unauthorized("Invalid or expired refresh token")
	}

	// ── 2. Single-Use Enforcement ─────────────────────────────────────────

	// The tombstone only needs to outlive the token itself.
	remaining := claims.ExpiresAt.Time.Sub(service.now())

	first, err := service.rotation.MarkRotated(ctx, claims.ID, remaining)
	if err != nil {
		return nil, fmt.Errorf("auth_service_rotation_failed: %w", err)
	}
	if !first {
		return nil, apperr.Unauthorized("Invalid or expired refresh token")
	}

	// ── 3. Re-validate Principal ──────────────────────────────────────────

	user, err := service.users.FindByID(ctx, userID)
	if err != nil || !user.IsActive {
		return nil, apperr.Unauthorized("Invalid or expired refresh token")
	}

	// ── 4. Issue Successor Pair ───────────────────────────────────────────

	return service.issueSession(user)
}

// RequestPasswordReset mints a purpose-scoped reset token and emails it as a
// link.
//
// # Anti-Enumeration
//
// An unknown email returns success without sending anything, so the endpoint
// cannot be used to probe which addresses are registered.
func (service *Service) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := service.users.FindByEmail(ctx, email)
	if err != nil {
		return nil
	}

	token, err := service.codec.Encode(
		map[string]string{"user_id": strconv.FormatInt(user.ID, 10)},
		sec.PurposePasswordReset,
	)
	if err != nil {
		return fmt.Errorf("auth_service_reset_token_failed: %w", err)
	}

	link := service.cfg.FrontendURL + "/reset-password?token=" + token
	body := fmt.Sprintf(
		"<p>Hi %s,</p><p>Use <a href=%q>this link</a> to reset your password. It expires in %d minutes.</p>",
		user.FirstName, link, int(constants.PasswordResetTokenTTL.Minutes()),
	)

	if err := service.notifier.Send(ctx, user.Email, "Reset your InternPulse password", body); err != nil {
		return apperr.ServiceUnavailable("Could not send reset email, please try again")
	}

	return nil
}

// ConfirmPasswordReset redeems a reset token and installs the new password.
func (service *Service) ConfirmPasswordReset(ctx context.Context, token, newPassword, confirmPassword string) error {
	// ── 1. Input Validation ───────────────────────────────────────────────

	validator := &validate.Validator{}
	err := validator.
		Required("token", token).
		Password("new_password", newPassword).
		Custom("confirm_password", newPassword != confirmPassword, "Passwords do not match").
		Err()
	if err != nil {
		return err
	}

	// ── 2. Token Redemption ───────────────────────────────────────────────

	payload, err := service.codec.Decode(token, sec.PurposePasswordReset, constants.PasswordResetTokenTTL)
	if err != nil {
		return apperr.ValidationError("Invalid or expired reset token")
	}

	userID, err := strconv.ParseInt(payload["user_id"], 10, 64)
	if err != nil {
		return apperr.ValidationError("Invalid or expired reset token")
	}

	user, err := service.users.FindByID(ctx, userID)
	if err != nil {
		return apperr.ValidationError("Invalid or expired reset token")
	}

	// ── 3. Install New Credential ─────────────────────────────────────────

	hashedPassword, err := sec.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("auth_service_reset_hash_failed: %w", err)
	}

	if err := service.users.UpdatePassword(ctx, user.ID, hashedPassword); err != nil {
		return err
	}

	return nil
}

// RequestEmailVerification emails a fresh verification passcode.
//
// Unknown and already-verified emails return success without sending, for the
// same anti-enumeration reason as [Service.RequestPasswordReset].
func (service *Service) RequestEmailVerification(ctx context.Context, email string) error {
	user, err := service.users.FindByEmail(ctx, email)
	if err != nil || user.IsVerified {
		return nil
	}

	passcode, err := sec.CurrentOTP(user.OTPSecret, service.cfg.OTPDigits, service.cfg.OTPPeriod, service.now())
	if err != nil {
		return fmt.Errorf("auth_service_verification_otp_failed: %w", err)
	}

	body := fmt.Sprintf(
		"<p>Hi %s,</p><p>Your InternPulse verification code is <strong>%s</strong>.</p>",
		user.FirstName, passcode,
	)

	if err := service.notifier.Send(ctx, user.Email, "Verify your InternPulse email", body); err != nil {
		return apperr.ServiceUnavailable("Could not send verification email, please try again")
	}

	return nil
}

// ConfirmEmailVerification checks the passcode and marks the account verified.
//
// # Secret Rotation
//
// A successful verification installs a brand-new OTP secret, so a disclosed
// passcode cannot be replayed against any future challenge.
func (service *Service) ConfirmEmailVerification(ctx context.Context, email, otp string) error {
	// ── 1. Input Validation ───────────────────────────────────────────────

	validator := &validate.Validator{}
	err := validator.
		Required("email", email).
		Required("otp", otp).
		Numeric("otp", otp).
		Err()
	if err != nil {
		return err
	}

	// ── 2. Passcode Verification ──────────────────────────────────────────

	user, err := service.users.FindByEmail(ctx, email)
	if err != nil {
		return apperr.ValidationError("Invalid verification code")
	}

	if !sec.VerifyOTP(user.OTPSecret, otp, service.cfg.OTPDigits, service.cfg.OTPPeriod, service.now()) {
		return apperr.ValidationError("Invalid verification code")
	}

	// ── 3. Promote & Rotate ───────────────────────────────────────────────

	newSecret, err := sec.NewOTPSecret()
	if err != nil {
		return fmt.Errorf("auth_service_secret_rotation_failed: %w", err)
	}

	if err := service.users.MarkVerified(ctx, user.ID, newSecret); err != nil {
		return err
	}

	return nil
}

// issueSession generates a fresh access+refresh pair for the user.
func (service *Service) issueSession(user *User) (*Session, error) {
	accessToken, _, err := service.tokens.GenerateAccessToken(user.ID, user.Role)
	if err != nil {
		return nil, fmt.Errorf("auth_service_access_token_failed: %w", err)
	}

	refreshToken, _, err := service.tokens.GenerateRefreshToken(user.ID, user.Role)
	if err != nil {
		return nil, fmt.Errorf("auth_service_refresh_token_failed: %w", err)
	}

	return &Session{
		TokenPair: TokenPair{
			AccessToken:  accessToken,
			RefreshToken: refreshToken,
		},
		User: user,
	}, nil
}
