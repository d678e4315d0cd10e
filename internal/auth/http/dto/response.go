package dto

import (
	"time"

	authDomain "github.com/voces/voces/internal/auth/domain"
	userDomain "github.com/voces/voces/internal/user/domain"
)

// UserResponse represents a user in API responses. The password hash never leaves the server.
type UserResponse struct {
	ID             string     `json:"id"`
	Username       string     `json:"username"`
	Email          string     `json:"email"`
	FirstName      string     `json:"first_name"`
	LastName       string     `json:"last_name"`
	AvatarURL      string     `json:"avatar_url,omitempty"`
	Bio            string     `json:"bio,omitempty"`
	Role           string     `json:"role"`
	Status         string     `json:"status"`
	LastActivityAt *time.Time `json:"last_activity_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// MapUserToResponse converts a domain user to an API response.
func MapUserToResponse(user *userDomain.User) UserResponse {
	return UserResponse{
		ID:             user.ID.String(),
		Username:       user.Username,
		Email:          user.Email,
		FirstName:      user.FirstName,
		LastName:       user.LastName,
		AvatarURL:      user.AvatarURL,
		Bio:            user.Bio,
		Role:           string(user.Role),
		Status:         string(user.Status),
		LastActivityAt: user.LastActivityAt,
		CreatedAt:      user.CreatedAt,
	}
}

// LoginResponse is returned on successful login. The token itself travels only in the
// HttpOnly session cookie.
type LoginResponse struct {
	User      UserResponse `json:"user"`
	ExpiresAt time.Time    `json:"expires_at"`
}

// AuditEventResponse represents an audit event in API responses.
type AuditEventResponse struct {
	ID           string         `json:"id"`
	Kind         string         `json:"kind"`
	Description  string         `json:"description"`
	ActorID      *string        `json:"actor_id"`
	Details      map[string]any `json:"details,omitempty"`
	IPAddress    string         `json:"ip_address,omitempty"`
	UserAgent    string         `json:"user_agent,omitempty"`
	RequestID    string         `json:"request_id,omitempty"`
	Success      bool           `json:"success"`
	ErrorMessage string         `json:"error_message,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
}

// MapAuditEventToResponse converts a domain audit event to an API response.
func MapAuditEventToResponse(event *authDomain.AuditEvent) AuditEventResponse {
	var actorID *string
	if event.ActorID != nil {
		id := event.ActorID.String()
		actorID = &id
	}
	return AuditEventResponse{
		ID:           event.ID.String(),
		Kind:         string(event.Kind),
		Description:  event.Description,
		ActorID:      actorID,
		Details:      event.Details,
		IPAddress:    event.IPAddress,
		UserAgent:    event.UserAgent,
		RequestID:    event.RequestID,
		Success:      event.Success,
		ErrorMessage: event.ErrorMessage,
		CreatedAt:    event.CreatedAt,
	}
}

// ListAuditEventsResponse represents a list of audit events in API responses.
type ListAuditEventsResponse struct {
	Data []AuditEventResponse `json:"data"`
}

// MapAuditEventsToListResponse converts domain audit events to a list API response.
func MapAuditEventsToListResponse(events []*authDomain.AuditEvent) ListAuditEventsResponse {
	responses := make([]AuditEventResponse, 0, len(events))
	for _, event := range events {
		responses = append(responses, MapAuditEventToResponse(event))
	}
	return ListAuditEventsResponse{
		Data: responses,
	}
}
