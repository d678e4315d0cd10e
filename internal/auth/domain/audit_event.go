package domain

import (
	"time"

	"github.com/google/uuid"
)

// AuditEvent is an immutable ledger row describing one security-relevant action.
// ActorID is nil when no user could be attributed (failed logins, unauthorized access).
// Signature is an HMAC over every other field, set by the ledger when the event is recorded.
type AuditEvent struct {
	ID           uuid.UUID
	Kind         EventKind
	Description  string
	ActorID      *uuid.UUID
	Details      map[string]any
	IPAddress    string
	UserAgent    string
	RequestID    string
	Success      bool
	ErrorMessage string
	CreatedAt    time.Time
	Signature    []byte
}

// RequestMeta carries the client facts copied into every audit event of a request.
type RequestMeta struct {
	IPAddress string
	UserAgent string
	RequestID string
}

// NewAuditEvent builds a successful event of kind stamped with meta. Callers adjust
// Success, ActorID and Details before recording.
func NewAuditEvent(kind EventKind, description string, meta RequestMeta) *AuditEvent {
	return &AuditEvent{
		Kind:        kind,
		Description: description,
		IPAddress:   meta.IPAddress,
		UserAgent:   meta.UserAgent,
		RequestID:   meta.RequestID,
		Success:     true,
	}
}

// WithActor sets the attributed user.
func (e *AuditEvent) WithActor(id uuid.UUID) *AuditEvent {
	e.ActorID = &id
	return e
}

// WithDetails sets the structured payload.
func (e *AuditEvent) WithDetails(details map[string]any) *AuditEvent {
	e.Details = details
	return e
}

// Failed marks the event unsuccessful with an optional error message.
func (e *AuditEvent) Failed(message string) *AuditEvent {
	e.Success = false
	e.ErrorMessage = message
	return e
}
