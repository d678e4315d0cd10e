// Package domain defines the user and demographic profile entities consumed by the auth core.
package domain

import (
	"time"

	"github.com/google/uuid"

	"github.com/voces/voces/internal/errors"
)

// Role is the community role stored on a user. The core stores it but enforces nothing;
// only the audit browsing endpoints check it.
type Role string

const (
	RoleUser      Role = "User"
	RoleEditor    Role = "Editor"
	RoleModerator Role = "Moderator"
	RoleAdmin     Role = "Admin"
)

// AccountStatus is the lifecycle state of an account.
type AccountStatus string

const (
	StatusActive              AccountStatus = "Active"
	StatusPendingVerification AccountStatus = "PendingVerification"
	StatusInactive            AccountStatus = "Inactive"
	StatusSuspended           AccountStatus = "Suspended"
	StatusBanned              AccountStatus = "Banned"
	StatusDeleted             AccountStatus = "Deleted"
)

// User is a registered member. PasswordHash is the stored credential and is never
// serialized to clients.
type User struct {
	ID             uuid.UUID
	Username       string
	Email          string
	PasswordHash   string
	FirstName      string
	LastName       string
	AvatarURL      string
	Bio            string
	Role           Role
	Status         AccountStatus
	LastActivityAt *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// CanAuthenticate reports whether the account may log in or be resolved from a token.
// Pending accounts can; suspended, banned and deleted ones cannot.
func (u *User) CanAuthenticate() bool {
	switch u.Status {
	case StatusSuspended, StatusBanned, StatusDeleted:
		return false
	default:
		return true
	}
}

// HasRole reports whether the user holds one of roles.
func (u *User) HasRole(roles ...Role) bool {
	for _, r := range roles {
		if u.Role == r {
			return true
		}
	}
	return false
}

// Domain-specific errors for user operations.
var (
	// ErrUserNotFound indicates the requested user does not exist.
	ErrUserNotFound = errors.Wrap(errors.ErrNotFound, "user not found")

	// ErrUserAlreadyExists indicates a unique constraint on username or email was hit.
	ErrUserAlreadyExists = errors.Wrap(errors.ErrConflict, "user already exists")

	// ErrProfileAlreadyExists indicates the user already has a demographic profile.
	ErrProfileAlreadyExists = errors.Wrap(errors.ErrConflict, "profile already exists")
)
