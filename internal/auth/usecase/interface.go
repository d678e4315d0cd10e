// Package usecase orchestrates the auth core: the audit ledger, identity resolution and
// the register/login/logout flows.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	authDomain "github.com/voces/voces/internal/auth/domain"
	userDomain "github.com/voces/voces/internal/user/domain"
)

// AuditEventRepository defines append-only persistence for audit events.
// Implementations must join the transaction carried by ctx, if any.
type AuditEventRepository interface {
	Create(ctx context.Context, event *authDomain.AuditEvent) error
	Get(ctx context.Context, id uuid.UUID) (*authDomain.AuditEvent, error)
	List(ctx context.Context, offset, limit int) ([]*authDomain.AuditEvent, error)
	ListByActor(
		ctx context.Context,
		actorID uuid.UUID,
		kind *authDomain.EventKind,
		limit int,
	) ([]*authDomain.AuditEvent, error)
}

// UserRepository defines the user lookups and writes the auth flows need.
type UserRepository interface {
	// FindByUsername returns ErrUserNotFound when no user has exactly this username.
	FindByUsername(ctx context.Context, username string) (*userDomain.User, error)

	// FindByUsernameOrEmail returns every user matching either value; empty when none.
	FindByUsernameOrEmail(ctx context.Context, username, email string) ([]*userDomain.User, error)

	FindByID(ctx context.Context, id uuid.UUID) (*userDomain.User, error)

	// Create returns ErrUserAlreadyExists on a unique violation.
	Create(ctx context.Context, user *userDomain.User) error

	Save(ctx context.Context, user *userDomain.User) error
}

// ProfileRepository creates the demographic profile attached to a new user.
type ProfileRepository interface {
	CreateEmptyFor(ctx context.Context, userID uuid.UUID) (*userDomain.DemographicProfile, error)
}

// AuditLedger records and queries audit events. Events are immutable once recorded.
type AuditLedger interface {
	// Record validates event, fills a UUIDv7 id and a UTC timestamp when absent and
	// persists it, joining the transaction in ctx when present.
	Record(ctx context.Context, event *authDomain.AuditEvent) (*authDomain.AuditEvent, error)

	// QueryByActor returns events of actorID newest first, optionally of one kind.
	// limit is clamped to [1, 500]; non-positive values mean 50.
	QueryByActor(
		ctx context.Context,
		actorID uuid.UUID,
		kind *authDomain.EventKind,
		limit int,
	) ([]*authDomain.AuditEvent, error)

	// List returns events of every actor, newest first.
	List(ctx context.Context, offset, limit int) ([]*authDomain.AuditEvent, error)

	// Get returns ErrAuditEventNotFound for unknown ids.
	Get(ctx context.Context, id uuid.UUID) (*authDomain.AuditEvent, error)

	// Verify checks the signatures of the events created in [since, until).
	Verify(ctx context.Context, since, until time.Time) (*VerificationReport, error)
}

// IdentityResolver maps a session cookie value to the caller's identity.
type IdentityResolver interface {
	// Resolve always returns a usable identity, anonymous on any failure. The error
	// only says why the caller is anonymous and is meant for debug logs.
	Resolve(ctx context.Context, cookieValue string) (authDomain.Identity, error)
}

// AuthUseCase implements the account flows.
type AuthUseCase interface {
	// Register creates a user and its empty profile. Taken usernames or emails yield a
	// *authDomain.ConflictError naming the fields; rule violations wrap
	// errors.ErrInvalidInput. Every outcome records exactly one audit event.
	Register(ctx context.Context, input *authDomain.RegisterInput) (*userDomain.User, error)

	// Login verifies credentials and issues a session token. Every credential failure is
	// errors.ErrInvalidCredentials regardless of cause; a missing username or password
	// wraps errors.ErrInvalidInput. Every outcome records exactly one audit event.
	Login(ctx context.Context, input *authDomain.LoginInput) (*authDomain.LoginOutput, error)

	// Logout records a Logout event for resolved callers. Tokens are not revoked.
	Logout(ctx context.Context, input *authDomain.LogoutInput) error
}
