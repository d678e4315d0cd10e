package usecase

import (
	"context"
	"strings"

	authDomain "github.com/voces/voces/internal/auth/domain"
	authService "github.com/voces/voces/internal/auth/service"
	apperrors "github.com/voces/voces/internal/errors"
)

const bearerScheme = "bearer"

// identityResolver resolves identities from session cookies. It never writes anything.
type identityResolver struct {
	tokens authService.SessionTokenService
	users  UserRepository
}

// NewIdentityResolver creates a new IdentityResolver.
func NewIdentityResolver(tokens authService.SessionTokenService, users UserRepository) IdentityResolver {
	return &identityResolver{
		tokens: tokens,
		users:  users,
	}
}

func (r *identityResolver) Resolve(ctx context.Context, cookieValue string) (authDomain.Identity, error) {
	token := strings.TrimSpace(cookieValue)
	if len(token) >= len(bearerScheme) && strings.EqualFold(token[:len(bearerScheme)], bearerScheme) {
		if rest := token[len(bearerScheme):]; rest == "" || rest[0] == ' ' {
			token = strings.TrimSpace(rest)
		}
	}
	if token == "" {
		return authDomain.Anonymous(), authDomain.ErrNoSession
	}

	claims, err := r.tokens.Verify(token)
	if err != nil {
		return authDomain.Anonymous(), err
	}

	user, err := r.users.FindByUsername(ctx, claims.Subject)
	if err != nil {
		return authDomain.Anonymous(), apperrors.Wrap(err, "failed to load session user")
	}

	// A username freed by account deletion and taken again must not inherit old sessions.
	if uid, ok := claims.UserID(); ok && uid != user.ID {
		return authDomain.Anonymous(), authDomain.ErrIdentityMismatch
	}

	if !user.CanAuthenticate() {
		return authDomain.Anonymous(), authDomain.ErrAccountDisabled
	}

	return authDomain.Resolved(user), nil
}
