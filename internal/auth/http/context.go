// Package http provides HTTP handlers and middleware for session authentication
// and audit browsing.
package http

import (
	"context"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"

	authDomain "github.com/voces/voces/internal/auth/domain"
	userDomain "github.com/voces/voces/internal/user/domain"
)

// identityKey is a context key type for storing the resolved identity.
type identityKey struct{}

// WithIdentity stores the request identity in the context.
// This is typically called by IdentityMiddleware on every request.
func WithIdentity(ctx context.Context, identity authDomain.Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, identity)
}

// GetIdentity retrieves the request identity from the context.
// Returns Anonymous when IdentityMiddleware has not run.
func GetIdentity(ctx context.Context) authDomain.Identity {
	identity, ok := ctx.Value(identityKey{}).(authDomain.Identity)
	if !ok {
		return authDomain.Anonymous()
	}
	return identity
}

// GetUser retrieves the resolved user, or (nil, false) for anonymous requests.
func GetUser(ctx context.Context) (*userDomain.User, bool) {
	return GetIdentity(ctx).User()
}

// RequestMeta collects the client facts that audit events copy from the request.
func RequestMeta(c *gin.Context) authDomain.RequestMeta {
	return authDomain.RequestMeta{
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
		RequestID: requestid.Get(c),
	}
}
