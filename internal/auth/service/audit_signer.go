package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"math"

	"golang.org/x/crypto/hkdf"

	authDomain "github.com/voces/voces/internal/auth/domain"
)

// auditSigningInfo is the HKDF info string. It is versioned so the derivation can change
// without reusing keys.
const auditSigningInfo = "voces-audit-event-signing-v1"

type auditSigner struct {
	key []byte
}

// NewAuditSigner derives an HMAC-SHA256 key from the session signing secret with
// HKDF-SHA256. Tokens and audit events never share a key.
func NewAuditSigner(secret []byte) (AuditSigner, error) {
	if _, err := checkSecretLength(secret); err != nil {
		return nil, err
	}

	key := make([]byte, sha256.Size)
	if _, err := io.ReadFull(hkdf.New(sha256.New, secret, nil, []byte(auditSigningInfo)), key); err != nil {
		return nil, fmt.Errorf("failed to derive audit signing key: %w", err)
	}
	return &auditSigner{key: key}, nil
}

// Sign returns the 32-byte HMAC of the event's canonical form. The existing Signature
// is not part of it.
func (a *auditSigner) Sign(event *authDomain.AuditEvent) ([]byte, error) {
	canonical, err := canonicalizeEvent(event)
	if err != nil {
		return nil, fmt.Errorf("failed to canonicalize audit event: %w", err)
	}

	mac := hmac.New(sha256.New, a.key)
	mac.Write(canonical)
	return mac.Sum(nil), nil
}

// Verify returns authDomain.ErrSignatureInvalid when the event was altered after signing
// or carries no signature.
func (a *auditSigner) Verify(event *authDomain.AuditEvent) error {
	expected, err := a.Sign(event)
	if err != nil {
		return fmt.Errorf("failed to compute expected signature: %w", err)
	}
	if !hmac.Equal(event.Signature, expected) {
		return authDomain.ErrSignatureInvalid
	}
	return nil
}

// canonicalizeEvent encodes every stored field in a fixed order. Variable-length fields
// are length-prefixed and the timestamp keeps microseconds, the precision both databases
// store. Details are JSON with sorted keys; nil and empty details encode alike.
func canonicalizeEvent(event *authDomain.AuditEvent) ([]byte, error) {
	buf := make([]byte, 0, 512)

	buf = append(buf, event.ID[:]...)
	buf = appendLengthPrefixed(buf, []byte(event.Kind))
	buf = appendLengthPrefixed(buf, []byte(event.Description))

	if event.ActorID != nil {
		buf = append(buf, 1)
		buf = append(buf, event.ActorID[:]...)
	} else {
		buf = append(buf, 0)
	}

	var details []byte
	if len(event.Details) > 0 {
		var err error
		if details, err = json.Marshal(event.Details); err != nil {
			return nil, fmt.Errorf("failed to marshal details: %w", err)
		}
	}
	buf = appendLengthPrefixed(buf, details)

	buf = appendLengthPrefixed(buf, []byte(event.IPAddress))
	buf = appendLengthPrefixed(buf, []byte(event.UserAgent))
	buf = appendLengthPrefixed(buf, []byte(event.RequestID))

	if event.Success {
		buf = append(buf, 1)
	} else {
		buf = append(buf, 0)
	}
	buf = appendLengthPrefixed(buf, []byte(event.ErrorMessage))

	buf = binary.BigEndian.AppendUint64(buf, uint64(event.CreatedAt.UnixMicro()))
	return buf, nil
}

// appendLengthPrefixed adds a 4-byte big-endian length followed by data.
func appendLengthPrefixed(buf, data []byte) []byte {
	if uint64(len(data)) > math.MaxUint32 {
		panic("data length exceeds uint32 max")
	}
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(data)))
	return append(buf, data...)
}
