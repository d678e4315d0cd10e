package repository

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authDomain "github.com/voces/voces/internal/auth/domain"
	"github.com/voces/voces/internal/testutil"
)

var auditEventColumnNames = []string{
	"id", "kind", "description", "actor_id", "details", "ip_address", "user_agent", "request_id",
	"success", "error_message", "created_at", "signature",
}

var testSignature = bytes.Repeat([]byte{0xab}, 32)

func newTestAuditEvent(actorID *uuid.UUID, details map[string]any) *authDomain.AuditEvent {
	return &authDomain.AuditEvent{
		ID:          uuid.Must(uuid.NewV7()),
		Kind:        authDomain.EventLogin,
		Description: "login succeeded",
		ActorID:     actorID,
		Details:     details,
		IPAddress:   "203.0.113.9",
		UserAgent:   "Mozilla/5.0",
		RequestID:   "req-42",
		Success:     true,
		CreatedAt:   time.Date(2026, 4, 2, 9, 0, 0, 0, time.UTC),
		Signature:   testSignature,
	}
}

func mustBinary(t *testing.T, id uuid.UUID) []byte {
	t.Helper()
	b, err := id.MarshalBinary()
	require.NoError(t, err)
	return b
}

func TestPostgreSQLAuditEventRepository_Create(t *testing.T) {
	t.Run("Success_WithActorAndDetails", func(t *testing.T) {
		db, mock := testutil.NewMockDB(t)
		repo := NewPostgreSQLAuditEventRepository(db)
		actor := uuid.Must(uuid.NewV7())
		event := newTestAuditEvent(&actor, map[string]any{"username": "ana"})

		mock.ExpectExec("INSERT INTO audit_events").
			WithArgs(
				event.ID, "Login", "login succeeded", actor.String(), []byte(`{"username":"ana"}`),
				"203.0.113.9", "Mozilla/5.0", "req-42", true, "", event.CreatedAt, testSignature,
			).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.Create(context.Background(), event))
	})

	t.Run("Success_AnonymousWithoutDetails", func(t *testing.T) {
		db, mock := testutil.NewMockDB(t)
		repo := NewPostgreSQLAuditEventRepository(db)
		event := newTestAuditEvent(nil, nil)

		mock.ExpectExec("INSERT INTO audit_events").
			WithArgs(
				event.ID, "Login", "login succeeded", nil, nil,
				"203.0.113.9", "Mozilla/5.0", "req-42", true, "", event.CreatedAt, testSignature,
			).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.Create(context.Background(), event))
	})

	t.Run("Error_UnmarshalableDetails", func(t *testing.T) {
		db, _ := testutil.NewMockDB(t)
		repo := NewPostgreSQLAuditEventRepository(db)
		event := newTestAuditEvent(nil, map[string]any{"ch": make(chan int)})

		err := repo.Create(context.Background(), event)
		assert.ErrorContains(t, err, "failed to marshal audit event details")
	})

	t.Run("Error_Database", func(t *testing.T) {
		db, mock := testutil.NewMockDB(t)
		repo := NewPostgreSQLAuditEventRepository(db)

		mock.ExpectExec("INSERT INTO audit_events").WillReturnError(errors.New("read-only transaction"))

		err := repo.Create(context.Background(), newTestAuditEvent(nil, nil))
		assert.ErrorContains(t, err, "failed to create audit event")
	})
}

func TestPostgreSQLAuditEventRepository_Get(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		db, mock := testutil.NewMockDB(t)
		repo := NewPostgreSQLAuditEventRepository(db)
		actor := uuid.Must(uuid.NewV7())
		event := newTestAuditEvent(&actor, nil)

		mock.ExpectQuery("SELECT (.+) FROM audit_events WHERE id = \\$1").
			WithArgs(event.ID).
			WillReturnRows(sqlmock.NewRows(auditEventColumnNames).AddRow(
				event.ID.String(), "Login", "login succeeded", actor.String(), []byte(`{"n":1}`),
				"203.0.113.9", "Mozilla/5.0", "req-42", true, "", event.CreatedAt, testSignature,
			))

		found, err := repo.Get(context.Background(), event.ID)
		require.NoError(t, err)
		assert.Equal(t, event.ID, found.ID)
		assert.Equal(t, authDomain.EventLogin, found.Kind)
		require.NotNil(t, found.ActorID)
		assert.Equal(t, actor, *found.ActorID)
		assert.Equal(t, float64(1), found.Details["n"])
		assert.True(t, found.Success)
		assert.Equal(t, testSignature, found.Signature)
	})

	t.Run("Error_NotFound", func(t *testing.T) {
		db, mock := testutil.NewMockDB(t)
		repo := NewPostgreSQLAuditEventRepository(db)

		mock.ExpectQuery("SELECT (.+) FROM audit_events").
			WillReturnRows(sqlmock.NewRows(auditEventColumnNames))

		found, err := repo.Get(context.Background(), uuid.Must(uuid.NewV7()))
		assert.Nil(t, found)
		assert.ErrorIs(t, err, authDomain.ErrAuditEventNotFound)
	})
}

func TestPostgreSQLAuditEventRepository_List(t *testing.T) {
	db, mock := testutil.NewMockDB(t)
	repo := NewPostgreSQLAuditEventRepository(db)
	newer := newTestAuditEvent(nil, nil)
	older := newTestAuditEvent(nil, nil)

	mock.ExpectQuery("SELECT (.+) FROM audit_events ORDER BY created_at DESC, id DESC LIMIT \\$1 OFFSET \\$2").
		WithArgs(10, 20).
		WillReturnRows(sqlmock.NewRows(auditEventColumnNames).
			AddRow(newer.ID.String(), "FailedLoginAttempt", "failed", nil, nil, "", "", "", false, "", newer.CreatedAt, nil).
			AddRow(older.ID.String(), "Login", "ok", nil, nil, "", "", "", true, "", older.CreatedAt, testSignature))

	events, err := repo.List(context.Background(), 20, 10)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, newer.ID, events[0].ID)
	assert.Equal(t, authDomain.EventFailedLoginAttempt, events[0].Kind)
	assert.Nil(t, events[0].ActorID)
	assert.Nil(t, events[0].Details)
	assert.False(t, events[0].Success)
	assert.Nil(t, events[0].Signature)
	assert.Equal(t, testSignature, events[1].Signature)
}

func TestPostgreSQLAuditEventRepository_ListByActor(t *testing.T) {
	actor := uuid.Must(uuid.NewV7())

	t.Run("Success_AllKinds", func(t *testing.T) {
		db, mock := testutil.NewMockDB(t)
		repo := NewPostgreSQLAuditEventRepository(db)

		mock.ExpectQuery("WHERE actor_id = \\$1 ORDER BY").
			WithArgs(actor, 50).
			WillReturnRows(sqlmock.NewRows(auditEventColumnNames))

		events, err := repo.ListByActor(context.Background(), actor, nil, 50)
		require.NoError(t, err)
		assert.NotNil(t, events)
		assert.Empty(t, events)
	})

	t.Run("Success_FilteredByKind", func(t *testing.T) {
		db, mock := testutil.NewMockDB(t)
		repo := NewPostgreSQLAuditEventRepository(db)
		kind := authDomain.EventLogout
		event := newTestAuditEvent(&actor, nil)

		mock.ExpectQuery("WHERE actor_id = \\$1 AND kind = \\$2").
			WithArgs(actor, "Logout", 5).
			WillReturnRows(sqlmock.NewRows(auditEventColumnNames).AddRow(
				event.ID.String(), "Logout", "logout", actor.String(), nil, "", "", "", true, "", event.CreatedAt, testSignature,
			))

		events, err := repo.ListByActor(context.Background(), actor, &kind, 5)
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, authDomain.EventLogout, events[0].Kind)
	})

	t.Run("Error_ScanFailure", func(t *testing.T) {
		db, mock := testutil.NewMockDB(t)
		repo := NewPostgreSQLAuditEventRepository(db)

		mock.ExpectQuery("WHERE actor_id").
			WillReturnRows(sqlmock.NewRows(auditEventColumnNames).AddRow(
				"not-a-uuid", "Login", "x", nil, nil, "", "", "", true, "", time.Now(), nil,
			))

		events, err := repo.ListByActor(context.Background(), actor, nil, 5)
		assert.Nil(t, events)
		assert.ErrorContains(t, err, "failed to scan audit event")
	})
}

func TestMySQLAuditEventRepository_Create(t *testing.T) {
	t.Run("Success_WithActor", func(t *testing.T) {
		db, mock := testutil.NewMockDB(t)
		repo := NewMySQLAuditEventRepository(db)
		actor := uuid.Must(uuid.NewV7())
		event := newTestAuditEvent(&actor, nil)

		mock.ExpectExec("INSERT INTO audit_events").
			WithArgs(
				mustBinary(t, event.ID), "Login", "login succeeded", mustBinary(t, actor), nil,
				"203.0.113.9", "Mozilla/5.0", "req-42", true, "", event.CreatedAt, testSignature,
			).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.Create(context.Background(), event))
	})

	t.Run("Success_NullActor", func(t *testing.T) {
		db, mock := testutil.NewMockDB(t)
		repo := NewMySQLAuditEventRepository(db)
		event := newTestAuditEvent(nil, map[string]any{"attempted_username": "ghost"})

		mock.ExpectExec("INSERT INTO audit_events").
			WithArgs(
				mustBinary(t, event.ID), "Login", "login succeeded", nil, []byte(`{"attempted_username":"ghost"}`),
				"203.0.113.9", "Mozilla/5.0", "req-42", true, "", event.CreatedAt, testSignature,
			).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.Create(context.Background(), event))
	})
}

func TestMySQLAuditEventRepository_Get(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		db, mock := testutil.NewMockDB(t)
		repo := NewMySQLAuditEventRepository(db)
		actor := uuid.Must(uuid.NewV7())
		event := newTestAuditEvent(&actor, nil)

		mock.ExpectQuery("SELECT (.+) FROM audit_events WHERE id = \\?").
			WithArgs(mustBinary(t, event.ID)).
			WillReturnRows(sqlmock.NewRows(auditEventColumnNames).AddRow(
				mustBinary(t, event.ID), "Login", "login succeeded", mustBinary(t, actor), nil,
				"203.0.113.9", "Mozilla/5.0", "req-42", true, "", event.CreatedAt, testSignature,
			))

		found, err := repo.Get(context.Background(), event.ID)
		require.NoError(t, err)
		assert.Equal(t, event.ID, found.ID)
		require.NotNil(t, found.ActorID)
		assert.Equal(t, actor, *found.ActorID)
	})

	t.Run("Error_NotFound", func(t *testing.T) {
		db, mock := testutil.NewMockDB(t)
		repo := NewMySQLAuditEventRepository(db)

		mock.ExpectQuery("SELECT (.+) FROM audit_events").
			WillReturnRows(sqlmock.NewRows(auditEventColumnNames))

		_, err := repo.Get(context.Background(), uuid.Must(uuid.NewV7()))
		assert.ErrorIs(t, err, authDomain.ErrAuditEventNotFound)
	})
}

func TestMySQLAuditEventRepository_ListByActor(t *testing.T) {
	db, mock := testutil.NewMockDB(t)
	repo := NewMySQLAuditEventRepository(db)
	actor := uuid.Must(uuid.NewV7())
	kind := authDomain.EventLogin
	event := newTestAuditEvent(&actor, nil)

	mock.ExpectQuery("WHERE actor_id = \\? AND kind = \\?").
		WithArgs(mustBinary(t, actor), "Login", 3).
		WillReturnRows(sqlmock.NewRows(auditEventColumnNames).AddRow(
			mustBinary(t, event.ID), "Login", "ok", mustBinary(t, actor), []byte(`{"a":"b"}`),
			"", "", "", true, "", event.CreatedAt, nil,
		))

	events, err := repo.ListByActor(context.Background(), actor, &kind, 3)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "b", events[0].Details["a"])
}

func TestMySQLAuditEventRepository_List(t *testing.T) {
	db, mock := testutil.NewMockDB(t)
	repo := NewMySQLAuditEventRepository(db)

	mock.ExpectQuery("ORDER BY created_at DESC, id DESC LIMIT \\? OFFSET \\?").
		WithArgs(50, 0).
		WillReturnError(errors.New("gone away"))

	events, err := repo.List(context.Background(), 0, 50)
	assert.Nil(t, events)
	assert.ErrorContains(t, err, "failed to list audit events")
}
