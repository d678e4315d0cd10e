package http

import (
	"log/slog"
	"strings"

	"github.com/gin-gonic/gin"

	authDomain "github.com/voces/voces/internal/auth/domain"
	authUseCase "github.com/voces/voces/internal/auth/usecase"
	apperrors "github.com/voces/voces/internal/errors"
	"github.com/voces/voces/internal/httputil"
	userDomain "github.com/voces/voces/internal/user/domain"
)

// IdentityMiddleware resolves the session cookie on every request and stores the
// identity in the request context. It never rejects: anything that does not resolve
// is anonymous, and the reason is only logged.
//
// Usage:
//
//	router.Use(IdentityMiddleware(resolver, logger))
//	router.GET("/v1/me", RequireUser(ledger, logger), handler)
func IdentityMiddleware(resolver authUseCase.IdentityResolver, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, err := resolver.Resolve(c.Request.Context(), sessionCookieValue(c))
		if err != nil && !apperrors.Is(err, authDomain.ErrNoSession) {
			level := slog.LevelDebug
			if !apperrors.Is(err, apperrors.ErrUnauthorized) {
				level = slog.LevelWarn
			}
			logger.Log(c.Request.Context(), level, "session not resolved",
				slog.String("path", c.Request.URL.Path),
				slog.Any("error", err))
		}

		c.Request = c.Request.WithContext(WithIdentity(c.Request.Context(), identity))
		c.Next()
	}
}

// RequireUser rejects anonymous requests with 401 and records an UnauthorizedAccess
// event. The audit write is best-effort; its failure does not change the response.
func RequireUser(ledger authUseCase.AuditLedger, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := GetUser(c.Request.Context()); ok {
			c.Next()
			return
		}

		event := authDomain.NewAuditEvent(
			authDomain.EventUnauthorizedAccess,
			"anonymous access to "+c.FullPath(),
			RequestMeta(c),
		).
			WithDetails(map[string]any{"method": c.Request.Method, "path": c.Request.URL.Path}).
			Failed("authentication required")
		recordBestEffort(c, ledger, event, logger)

		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
		c.Abort()
	}
}

// RequireRole allows only users holding one of roles. It must run after RequireUser.
// Denials are recorded as UnauthorizedAccess with the user as actor.
func RequireRole(ledger authUseCase.AuditLedger, logger *slog.Logger, roles ...userDomain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := GetUser(c.Request.Context())
		if !ok {
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		if !user.HasRole(roles...) {
			required := make([]string, 0, len(roles))
			for _, r := range roles {
				required = append(required, string(r))
			}
			event := authDomain.NewAuditEvent(
				authDomain.EventUnauthorizedAccess,
				"insufficient role for "+c.FullPath(),
				RequestMeta(c),
			).
				WithActor(user.ID).
				WithDetails(map[string]any{
					"method":         c.Request.Method,
					"path":           c.Request.URL.Path,
					"role":           string(user.Role),
					"required_roles": strings.Join(required, ","),
				}).
				Failed("forbidden")
			recordBestEffort(c, ledger, event, logger)

			httputil.HandleErrorGin(c, apperrors.ErrForbidden, logger)
			c.Abort()
			return
		}

		c.Next()
	}
}

func recordBestEffort(c *gin.Context, ledger authUseCase.AuditLedger, event *authDomain.AuditEvent, logger *slog.Logger) {
	if _, err := ledger.Record(c.Request.Context(), event); err != nil {
		logger.Error("failed to record audit event",
			slog.String("kind", string(event.Kind)),
			slog.String("request_id", event.RequestID),
			slog.Any("error", err))
	}
}
