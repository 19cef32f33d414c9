// Copyright (c) 2026 InternPulse. All rights reserved.

package sec

import "fmt"

// # User Roles

// Role represents the authorization level granted to an account.
//
// The set is deliberately closed: every authorization decision goes through
// [Role.AtLeast] instead of ad hoc string comparisons scattered across
// handlers.
type Role string

const (
	// Unrestricted platform access, including user administration.
	RoleAdmin Role = "admin"

	// Default role for every registered participant.
	RoleIntern Role = "intern"
)

// ParseRole validates a raw string against the closed role set.
func ParseRole(raw string) (Role, error) {
	switch Role(raw) {
	case RoleAdmin:
		return RoleAdmin, nil
	case RoleIntern:
		return RoleIntern, nil
	default:
		return "", fmt.Errorf("sec: unknown role %q", raw)
	}
}

// # Role Hierarchy

// AtLeast checks if the current role meets or exceeds the required target role.
func (r Role) AtLeast(target Role) bool {
	return r.level() >= target.level()
}

// level maps a role to a numeric hierarchy level for comparison logic.
func (r Role) level() int {

	// Linear scale (10-40) leaves room for intermediate roles (mentor, staff).
	switch r {
	case RoleAdmin:
		return 40
	case RoleIntern:
		return 10
	default:
		return 0
	}
}
