package dto

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authDomain "github.com/voces/voces/internal/auth/domain"
	userDomain "github.com/voces/voces/internal/user/domain"
)

func TestRegisterRequest_ToInput(t *testing.T) {
	meta := authDomain.RequestMeta{IPAddress: "192.0.2.1", RequestID: "r1"}
	input := (&RegisterRequest{Username: "ana", Email: "a@v.example", Password: "pw", LastName: "Diaz"}).ToInput(meta)

	assert.Equal(t, "ana", input.Username)
	assert.Equal(t, "Diaz", input.LastName)
	assert.Equal(t, meta, input.Meta)
}

func TestMapUserToResponse(t *testing.T) {
	user := &userDomain.User{
		ID:           uuid.Must(uuid.NewV7()),
		Username:     "ana",
		PasswordHash: "$argon2id$secret",
		Role:         userDomain.RoleAdmin,
		Status:       userDomain.StatusActive,
	}

	response := MapUserToResponse(user)
	assert.Equal(t, user.ID.String(), response.ID)
	assert.Equal(t, "Admin", response.Role)
	assert.Equal(t, "Active", response.Status)
	assert.Nil(t, response.LastActivityAt)
}

func TestMapAuditEventsToListResponse(t *testing.T) {
	actor := uuid.Must(uuid.NewV7())
	events := []*authDomain.AuditEvent{
		{ID: uuid.Must(uuid.NewV7()), Kind: authDomain.EventLogin, ActorID: &actor, Success: true, CreatedAt: time.Now()},
		{ID: uuid.Must(uuid.NewV7()), Kind: authDomain.EventFailedLoginAttempt, ErrorMessage: "invalid credentials"},
	}

	response := MapAuditEventsToListResponse(events)
	require.Len(t, response.Data, 2)
	require.NotNil(t, response.Data[0].ActorID)
	assert.Equal(t, actor.String(), *response.Data[0].ActorID)
	assert.Nil(t, response.Data[1].ActorID)
	assert.Equal(t, "FailedLoginAttempt", response.Data[1].Kind)

	assert.NotNil(t, MapAuditEventsToListResponse(nil).Data)
}
