package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	authDomain "github.com/voces/voces/internal/auth/domain"
	authMocks "github.com/voces/voces/internal/auth/http/mocks"
)

func TestRunAuditLogs(t *testing.T) {
	ctx := context.Background()
	logger := discardLogger()
	userID := uuid.Must(uuid.NewV7())

	events := []*authDomain.AuditEvent{
		{
			ID:          uuid.Must(uuid.NewV7()),
			Kind:        authDomain.EventLogin,
			Description: "User logged in",
			ActorID:     &userID,
			IPAddress:   "203.0.113.7",
			Success:     true,
			CreatedAt:   time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC),
		},
	}

	t.Run("success-text", func(t *testing.T) {
		ledger := &authMocks.MockAuditLedger{}
		ledger.On("QueryByActor", ctx, userID, (*authDomain.EventKind)(nil), 50).Return(events, nil)

		var out bytes.Buffer
		err := RunAuditLogs(ctx, ledger, logger, &out, userID.String(), "", 50, "text")
		require.NoError(t, err)
		require.Contains(t, out.String(), "2026-06-01 12:00:00")
		require.Contains(t, out.String(), "User logged in")
		ledger.AssertExpectations(t)
	})

	t.Run("success-json-with-kind", func(t *testing.T) {
		ledger := &authMocks.MockAuditLedger{}
		ledger.On("QueryByActor", ctx, userID, mock.MatchedBy(func(k *authDomain.EventKind) bool {
			return k != nil && *k == authDomain.EventLogin
		}), 10).Return(events, nil)

		var out bytes.Buffer
		err := RunAuditLogs(ctx, ledger, logger, &out, userID.String(), "Login", 10, "json")
		require.NoError(t, err)

		var result map[string][]map[string]any
		require.NoError(t, json.Unmarshal(out.Bytes(), &result))
		require.Len(t, result["data"], 1)
		require.Equal(t, "Login", result["data"][0]["kind"])
		ledger.AssertExpectations(t)
	})

	t.Run("no-events", func(t *testing.T) {
		ledger := &authMocks.MockAuditLedger{}
		ledger.On("QueryByActor", ctx, userID, (*authDomain.EventKind)(nil), 50).
			Return([]*authDomain.AuditEvent{}, nil)

		var out bytes.Buffer
		err := RunAuditLogs(ctx, ledger, logger, &out, userID.String(), "", 50, "text")
		require.NoError(t, err)
		require.Contains(t, out.String(), "No audit events found.")
	})

	t.Run("invalid-user-id", func(t *testing.T) {
		err := RunAuditLogs(ctx, nil, logger, nil, "not-a-uuid", "", 50, "text")
		require.Error(t, err)
		require.Contains(t, err.Error(), "invalid user id")
	})

	t.Run("invalid-kind", func(t *testing.T) {
		err := RunAuditLogs(ctx, nil, logger, nil, userID.String(), "Teleport", 50, "text")
		require.Error(t, err)
		require.ErrorIs(t, err, authDomain.ErrInvalidEventKind)
	})

	t.Run("invalid-format", func(t *testing.T) {
		err := RunAuditLogs(ctx, nil, logger, nil, userID.String(), "", 50, "yaml")
		require.Error(t, err)
		require.Contains(t, err.Error(), "invalid format")
	})

	t.Run("ledger-error", func(t *testing.T) {
		ledger := &authMocks.MockAuditLedger{}
		ledger.On("QueryByActor", ctx, userID, (*authDomain.EventKind)(nil), 50).
			Return(nil, errors.New("connection refused"))

		var out bytes.Buffer
		err := RunAuditLogs(ctx, ledger, logger, &out, userID.String(), "", 50, "text")
		require.Error(t, err)
		require.Contains(t, err.Error(), "failed to query audit events")
	})
}
