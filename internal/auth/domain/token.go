package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/voces/voces/internal/errors"
)

// Claim names placed in session tokens besides the registered ones.
const (
	ClaimUserID = "uid"
	ClaimRole   = "role"
)

// Claims is the verified content of a session token.
type Claims struct {
	Subject   string
	Issuer    string
	ID        string
	IssuedAt  time.Time
	ExpiresAt time.Time
	Extra     map[string]any
}

// UserID returns the uid claim when present and well formed.
func (c *Claims) UserID() (uuid.UUID, bool) {
	raw, ok := c.Extra[ClaimUserID].(string)
	if !ok {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// RejectionKind classifies why a token was refused. It is for logs only; callers
// outside the token service must treat every rejection the same way.
type RejectionKind string

const (
	RejectionMalformed         RejectionKind = "malformed"
	RejectionSignatureInvalid  RejectionKind = "signature_invalid"
	RejectionAlgorithmMismatch RejectionKind = "algorithm_mismatch"
	RejectionExpired           RejectionKind = "expired"
	RejectionClaimsInvalid     RejectionKind = "claims_invalid"
)

var (
	// ErrTokenRejected matches every token verification failure.
	ErrTokenRejected = errors.Wrap(errors.ErrUnauthorized, "token rejected")

	// ErrReservedClaim indicates extra claims tried to override a registered claim.
	ErrReservedClaim = errors.Wrap(errors.ErrInvalidInput, "reserved claim name")
)

// TokenRejection is the concrete error returned by token verification.
type TokenRejection struct {
	Kind  RejectionKind
	Cause error
}

func (r *TokenRejection) Error() string {
	if r.Cause == nil {
		return fmt.Sprintf("token rejected: %s", r.Kind)
	}
	return fmt.Sprintf("token rejected: %s: %v", r.Kind, r.Cause)
}

// Is makes every rejection match ErrTokenRejected and errors.ErrUnauthorized.
func (r *TokenRejection) Is(target error) bool {
	return target == ErrTokenRejected || target == errors.ErrUnauthorized
}

func (r *TokenRejection) Unwrap() error {
	return r.Cause
}
