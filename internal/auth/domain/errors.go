package domain

import (
	"strings"

	"github.com/voces/voces/internal/errors"
)

// ErrAuditEventNotFound indicates no audit event has the requested id.
var ErrAuditEventNotFound = errors.Wrap(errors.ErrNotFound, "audit event not found")

// ErrSignatureInvalid indicates an audit event no longer matches its signature.
var ErrSignatureInvalid = errors.New("audit event signature invalid")

// ConflictError reports which unique registration fields are already taken.
type ConflictError struct {
	Fields []string
}

func (e *ConflictError) Error() string {
	return "already registered: " + strings.Join(e.Fields, ", ")
}

// Unwrap lets the error match errors.ErrConflict.
func (e *ConflictError) Unwrap() error {
	return errors.ErrConflict
}

// ConflictFields returns the conflicting field names for the HTTP error body.
func (e *ConflictError) ConflictFields() []string {
	return e.Fields
}

// Identity resolution failures. They only explain an anonymous outcome in debug logs.
var (
	// ErrNoSession indicates the request carried no session cookie.
	ErrNoSession = errors.Wrap(errors.ErrUnauthorized, "no session")

	// ErrAccountDisabled indicates the account may no longer authenticate.
	ErrAccountDisabled = errors.Wrap(errors.ErrUnauthorized, "account disabled")

	// ErrIdentityMismatch indicates the token's uid no longer matches its username.
	ErrIdentityMismatch = errors.Wrap(errors.ErrUnauthorized, "token user id does not match")
)
