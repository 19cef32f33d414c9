// Copyright (c) 2026 InternPulse. All rights reserved.

// Package account manages user profiles and the administrative user
// directory. Identity lifecycle (signup, login, tokens) lives in the
// sibling auth package; this package owns everything about a user after
// they are in.
package account

import (
	"context"
	"time"

	"github.com/internpulse/internpulse/internal/users/auth"
)

// Profile holds the extended, user-editable part of an account.
type Profile struct {
	UserID      int64     `json:"user_id,string"`
	PhoneNumber string    `json:"phone_number"`
	Address     string    `json:"address"`
	Country     string    `json:"country"`
	State       string    `json:"state"`
	City        string    `json:"city"`
	ZipCode     string    `json:"zip_code"`
	TechStack   string    `json:"tech_stack"`
	AvatarURL   string    `json:"avatar_url"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Account is the combined view returned by the me and admin endpoints.
type Account struct {
	User    *auth.User `json:"user"`
	Profile *Profile   `json:"profile"`
}

// ProfileRepository defines the data access contract for profiles.
type ProfileRepository interface {
	// Get returns the profile for a user, or a zero-value profile if the
	// user has never filled one in.
	Get(ctx context.Context, userID int64) (*Profile, error)

	// Upsert creates or replaces the user's profile.
	Upsert(ctx context.Context, profile *Profile) error
}

// DirectoryRepository is the admin-facing view over the users table.
type DirectoryRepository interface {
	// List returns a page of users ordered by creation time, newest first.
	List(ctx context.Context, limit, offset int) ([]*auth.User, int, error)

	// SetRole changes a user's role.
	SetRole(ctx context.Context, userID int64, role string) error

	// SetActive toggles the account's active flag.
	SetActive(ctx context.Context, userID int64, active bool) error
}
