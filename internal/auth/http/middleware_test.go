package http

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	authDomain "github.com/voces/voces/internal/auth/domain"
	"github.com/voces/voces/internal/auth/http/mocks"
	userDomain "github.com/voces/voces/internal/user/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testUser(role userDomain.Role) *userDomain.User {
	return &userDomain.User{
		ID:       uuid.Must(uuid.NewV7()),
		Username: "ana",
		Email:    "ana@voces.example",
		Role:     role,
		Status:   userDomain.StatusActive,
	}
}

// withIdentity injects identity the way IdentityMiddleware would.
func withIdentity(identity authDomain.Identity) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request = c.Request.WithContext(WithIdentity(c.Request.Context(), identity))
		c.Next()
	}
}

func TestGetIdentity_DefaultsToAnonymous(t *testing.T) {
	assert.True(t, GetIdentity(context.Background()).IsAnonymous())

	user := testUser(userDomain.RoleUser)
	got, ok := GetUser(WithIdentity(context.Background(), authDomain.Resolved(user)))
	assert.True(t, ok)
	assert.Same(t, user, got)
}

func TestIdentityMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	run := func(resolver *mocks.MockIdentityResolver, cookie *http.Cookie) authDomain.Identity {
		var seen authDomain.Identity
		router := gin.New()
		router.Use(IdentityMiddleware(resolver, testLogger()))
		router.GET("/check", func(c *gin.Context) {
			seen = GetIdentity(c.Request.Context())
			c.Status(http.StatusOK)
		})

		req := httptest.NewRequest(http.MethodGet, "/check", nil)
		if cookie != nil {
			req.AddCookie(cookie)
		}
		router.ServeHTTP(httptest.NewRecorder(), req)
		return seen
	}

	t.Run("Resolved", func(t *testing.T) {
		user := testUser(userDomain.RoleUser)
		resolver := &mocks.MockIdentityResolver{}
		resolver.On("Resolve", mock.Anything, "Bearer tok").Return(authDomain.Resolved(user), nil).Once()

		identity := run(resolver, &http.Cookie{Name: SessionCookieName, Value: "Bearer tok"})

		got, ok := identity.User()
		assert.True(t, ok)
		assert.Same(t, user, got)
		resolver.AssertExpectations(t)
	})

	t.Run("NoCookie", func(t *testing.T) {
		resolver := &mocks.MockIdentityResolver{}
		resolver.On("Resolve", mock.Anything, "").Return(authDomain.Anonymous(), authDomain.ErrNoSession).Once()

		assert.True(t, run(resolver, nil).IsAnonymous())
		resolver.AssertExpectations(t)
	})

	t.Run("LookupFailureStaysAnonymous", func(t *testing.T) {
		resolver := &mocks.MockIdentityResolver{}
		resolver.On("Resolve", mock.Anything, "Bearer tok").
			Return(authDomain.Anonymous(), errors.New("connection refused")).Once()

		identity := run(resolver, &http.Cookie{Name: SessionCookieName, Value: "Bearer tok"})
		assert.True(t, identity.IsAnonymous())
	})
}

func TestRequireUser(t *testing.T) {
	gin.SetMode(gin.TestMode)

	setup := func(identity authDomain.Identity, ledger *mocks.MockAuditLedger) *gin.Engine {
		router := gin.New()
		router.Use(withIdentity(identity))
		router.GET("/v1/me", RequireUser(ledger, testLogger()), func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})
		return router
	}

	t.Run("Allowed", func(t *testing.T) {
		ledger := &mocks.MockAuditLedger{}
		w := httptest.NewRecorder()
		setup(authDomain.Resolved(testUser(userDomain.RoleUser)), ledger).
			ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/me", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		ledger.AssertNotCalled(t, "Record", mock.Anything, mock.Anything)
	})

	t.Run("AnonymousRecordsUnauthorizedAccess", func(t *testing.T) {
		ledger := &mocks.MockAuditLedger{}
		ledger.On("Record", mock.Anything, mock.MatchedBy(func(e *authDomain.AuditEvent) bool {
			return e.Kind == authDomain.EventUnauthorizedAccess &&
				!e.Success &&
				e.ActorID == nil &&
				e.Details["path"] == "/v1/me"
		})).Return(&authDomain.AuditEvent{}, nil).Once()

		w := httptest.NewRecorder()
		setup(authDomain.Anonymous(), ledger).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/me", nil))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "unauthorized")
		ledger.AssertExpectations(t)
	})

	t.Run("AuditFailureStill401", func(t *testing.T) {
		ledger := &mocks.MockAuditLedger{}
		ledger.On("Record", mock.Anything, mock.Anything).Return(nil, errors.New("ledger down")).Once()

		w := httptest.NewRecorder()
		setup(authDomain.Anonymous(), ledger).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/me", nil))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestRequireRole(t *testing.T) {
	gin.SetMode(gin.TestMode)

	setup := func(identity authDomain.Identity, ledger *mocks.MockAuditLedger) *gin.Engine {
		router := gin.New()
		router.Use(withIdentity(identity))
		router.GET("/v1/audit-logs",
			RequireUser(ledger, testLogger()),
			RequireRole(ledger, testLogger(), userDomain.RoleAdmin, userDomain.RoleModerator),
			func(c *gin.Context) { c.Status(http.StatusOK) },
		)
		return router
	}

	for _, role := range []userDomain.Role{userDomain.RoleAdmin, userDomain.RoleModerator} {
		t.Run("Allowed_"+string(role), func(t *testing.T) {
			w := httptest.NewRecorder()
			setup(authDomain.Resolved(testUser(role)), &mocks.MockAuditLedger{}).
				ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/audit-logs", nil))
			assert.Equal(t, http.StatusOK, w.Code)
		})
	}

	t.Run("ForbiddenForUser", func(t *testing.T) {
		user := testUser(userDomain.RoleEditor)
		ledger := &mocks.MockAuditLedger{}
		ledger.On("Record", mock.Anything, mock.MatchedBy(func(e *authDomain.AuditEvent) bool {
			return e.Kind == authDomain.EventUnauthorizedAccess &&
				e.ActorID != nil && *e.ActorID == user.ID &&
				e.Details["role"] == "Editor"
		})).Return(&authDomain.AuditEvent{}, nil).Once()

		w := httptest.NewRecorder()
		setup(authDomain.Resolved(user), ledger).
			ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/audit-logs", nil))

		assert.Equal(t, http.StatusForbidden, w.Code)
		ledger.AssertExpectations(t)
	})
}
