// Package service provides the stateless credential and token primitives of the auth core.
//
// CredentialHasher turns user secrets into self-describing stored hashes and verifies
// candidates against them. TokenService issues and verifies signed, expiring session
// tokens. AuditSigner makes recorded audit events tamper evident. All are safe for
// concurrent use without locking.
package service

import (
	"time"

	authDomain "github.com/voces/voces/internal/auth/domain"
)

// PasswordHasher defines one-way hashing of user secrets.
type PasswordHasher interface {
	// Hash returns a stored hash embedding algorithm, cost parameters and a fresh salt.
	Hash(secret string) (string, error)

	// Verify reports whether candidate matches stored. Malformed or unsupported stored
	// values yield false, never an error.
	Verify(candidate, stored string) bool

	// NeedsRehash reports whether stored uses a scheme other than the current one.
	NeedsRehash(stored string) bool

	// DummyHash returns a valid stored hash nobody knows the secret of.
	DummyHash() string
}

// SessionTokenService defines issuing and verifying session tokens.
type SessionTokenService interface {
	// Issue signs a token for subject carrying extra claims. A non-positive ttl uses the
	// configured default.
	Issue(subject string, extra map[string]any, ttl time.Duration) (string, time.Time, error)

	// Verify checks signature, algorithm, issuer and expiry. Every failure is an
	// *authDomain.TokenRejection matching authDomain.ErrTokenRejected.
	Verify(token string) (*authDomain.Claims, error)

	// DefaultTTL returns the lifetime applied when Issue gets a non-positive ttl.
	DefaultTTL() time.Duration
}

// AuditSigner computes and checks HMAC signatures over audit events.
type AuditSigner interface {
	// Sign returns the signature of event, ignoring any Signature it already has.
	Sign(event *authDomain.AuditEvent) ([]byte, error)

	// Verify returns authDomain.ErrSignatureInvalid when event does not match its Signature.
	Verify(event *authDomain.AuditEvent) error
}
