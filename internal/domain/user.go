package domain

import (
	"fmt"
	"strings"
	"time"
)

// UserRole enumerates supported roles.
type UserRole string

const (
	UserRoleInvestor UserRole = "investor"
	UserRoleStartup  UserRole = "startup"
)

// ParseUserRole validates a role name.
func ParseUserRole(s string) (UserRole, error) {
	switch r := UserRole(strings.ToLower(strings.TrimSpace(s))); r {
	case UserRoleInvestor, UserRoleStartup:
		return r, nil
	default:
		return "", fmt.Errorf("%w: unknown role %q", ErrInvalidInput, s)
	}
}

// User mirrors an identity provider account inside the document store.
type User struct {
	ID          string
	Email       string
	DisplayName string
	Role        UserRole
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Actor is the authenticated caller of a service operation.
type Actor struct {
	ID          string
	Role        UserRole
	DisplayName string
}

// IsInvestor reports whether the actor may submit offers.
func (a Actor) IsInvestor() bool {
	return a.Role == UserRoleInvestor
}

// IsStartup reports whether the actor may host listings.
func (a Actor) IsStartup() bool {
	return a.Role == UserRoleStartup
}
