// Copyright (c) 2026 InternPulse. All rights reserved.

package account

import (
	"context"

	"github.com/internpulse/internpulse/internal/platform/apperr"
	"github.com/internpulse/internpulse/internal/platform/sec"
	"github.com/internpulse/internpulse/internal/platform/validate"
	"github.com/internpulse/internpulse/internal/users/auth"
	"github.com/internpulse/internpulse/pkg/pagination"
)

// Service implements the profile and user directory use cases.
type Service struct {
	users     auth.UserRepository
	profiles  ProfileRepository
	directory DirectoryRepository
}

// NewService wires the account service.
func NewService(users auth.UserRepository, profiles ProfileRepository, directory DirectoryRepository) *Service {
	return &Service{users: users, profiles: profiles, directory: directory}
}

// Me returns the caller's combined account view.
func (service *Service) Me(ctx context.Context, userID int64) (*Account, error) {
	user, err := service.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	profile, err := service.profiles.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &Account{User: user, Profile: profile}, nil
}

// UpdateMeInput carries the editable account and profile fields.
//
// Pointer fields distinguish "leave unchanged" (nil) from "set to this
// value" (non-nil, possibly empty).
type UpdateMeInput struct {
	FirstName  *string
	MiddleName *string
	LastName   *string

	PhoneNumber *string
	Address     *string
	Country     *string
	State       *string
	City        *string
	ZipCode     *string
	TechStack   *string
	AvatarURL   *string
}

// UpdateMe applies a partial update to the caller's names and profile.
func (service *Service) UpdateMe(ctx context.Context, userID int64, input UpdateMeInput) (*Account, error) {
	validator := &validate.Validator{}
	if input.FirstName != nil {
		validator.PersonName("first_name", *input.FirstName)
	}
	if input.MiddleName != nil && *input.MiddleName != "" {
		validator.PersonName("middle_name", *input.MiddleName)
	}
	if input.LastName != nil {
		validator.PersonName("last_name", *input.LastName)
	}
	if input.PhoneNumber != nil {
		validator.MaxLen("phone_number", *input.PhoneNumber, 20)
	}
	if input.TechStack != nil {
		validator.MaxLen("tech_stack", *input.TechStack, 200)
	}
	if err := validator.Err(); err != nil {
		return nil, err
	}

	user, err := service.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if input.FirstName != nil || input.MiddleName != nil || input.LastName != nil {
		setString(&user.FirstName, input.FirstName)
		setString(&user.MiddleName, input.MiddleName)
		setString(&user.LastName, input.LastName)
		if err := service.users.Update(ctx, user); err != nil {
			return nil, err
		}
	}

	profile, err := service.profiles.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	setString(&profile.PhoneNumber, input.PhoneNumber)
	setString(&profile.Address, input.Address)
	setString(&profile.Country, input.Country)
	setString(&profile.State, input.State)
	setString(&profile.City, input.City)
	setString(&profile.ZipCode, input.ZipCode)
	setString(&profile.TechStack, input.TechStack)
	setString(&profile.AvatarURL, input.AvatarURL)

	if err := service.profiles.Upsert(ctx, profile); err != nil {
		return nil, err
	}

	return &Account{User: user, Profile: profile}, nil
}

// ListUsers returns a page of the admin user directory.
func (service *Service) ListUsers(ctx context.Context, params pagination.Params) ([]*auth.User, int, error) {
	return service.directory.List(ctx, params.Limit, params.Offset())
}

// GetUser returns a single user's combined view for the admin console.
func (service *Service) GetUser(ctx context.Context, userID int64) (*Account, error) {
	return service.Me(ctx, userID)
}

// ChangeRole promotes or demotes a user.
func (service *Service) ChangeRole(ctx context.Context, userID int64, rawRole string) error {
	role, err := sec.ParseRole(rawRole)
	if err != nil {
		return validate.RequiredError("role", "Must be one of: admin, intern")
	}
	return service.directory.SetRole(ctx, userID, string(role))
}

// RemoveUser deletes a user, or deactivates them when deactivate is true.
//
// # Edge Cases
//
// Admins cannot remove themselves; losing the last admin by accident locks
// everyone out of the console.
func (service *Service) RemoveUser(ctx context.Context, actorID, userID int64, deactivate bool) error {
	if actorID == userID {
		return apperr.Forbidden("You cannot remove your own account")
	}

	if deactivate {
		return service.directory.SetActive(ctx, userID, false)
	}

	// Confirm existence so deleting an unknown ID returns 404, not silence.
	if _, err := service.users.FindByID(ctx, userID); err != nil {
		return err
	}
	return service.users.Delete(ctx, userID)
}

// setString copies the value when the source pointer is non-nil.
func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}
