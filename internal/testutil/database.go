// Package testutil provides helpers shared by repository and integration tests.
//
// Repository tests run against go-sqlmock instead of a live server:
//
//	db, mock := testutil.NewMockDB(t)
//	mock.ExpectExec("INSERT INTO users").WillReturnResult(sqlmock.NewResult(0, 1))
//
// Expectations are asserted automatically when the test finishes.
package testutil

import (
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voces/voces/internal/user/domain"
)

// NewMockDB returns a sqlmock-backed *sql.DB. Queries are matched as regular expressions
// and every expectation must be consumed by the end of the test.
func NewMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})

	return db, mock
}

// NewUser returns an active user with deterministic timestamps.
func NewUser(username string) *domain.User {
	now := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
	return &domain.User{
		ID:           uuid.Must(uuid.NewV7()),
		Username:     username,
		Email:        username + "@voces.example",
		PasswordHash: "$argon2id$v=19$m=65536,t=2,p=1$c2FsdA$aGFzaA",
		Role:         domain.RoleUser,
		Status:       domain.StatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// UserColumns lists the columns every user query selects, in scan order.
var UserColumns = []string{
	"id", "username", "email", "password_hash", "first_name", "last_name", "avatar_url", "bio",
	"role", "status", "last_activity_at", "created_at", "updated_at",
}

// UserRow renders user as a driver row. id is passed separately so callers can supply
// either the UUID or its BINARY(16) form.
func UserRow(id any, user *domain.User) []any {
	var lastActivity any
	if user.LastActivityAt != nil {
		lastActivity = *user.LastActivityAt
	}
	return []any{
		id, user.Username, user.Email, user.PasswordHash, user.FirstName, user.LastName,
		user.AvatarURL, user.Bio, string(user.Role), string(user.Status), lastActivity,
		user.CreatedAt, user.UpdatedAt,
	}
}
