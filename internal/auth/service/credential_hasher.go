package service

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"strings"

	"github.com/allisson/go-pwdhash"
	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/voces/voces/internal/errors"
)

const argon2idPrefix = "$argon2id$"

var bcryptPrefixes = []string{"$2a$", "$2b$", "$2y$"}

// CredentialHasher hashes secrets with Argon2id over a SHA-256 pre-digest, so secrets of
// any length are accepted. Bcrypt hashes imported from the previous platform still verify.
type CredentialHasher struct {
	hasher    *pwdhash.PasswordHasher
	dummyHash string
}

// NewCredentialHasher creates a CredentialHasher with the interactive Argon2id policy.
func NewCredentialHasher() (*CredentialHasher, error) {
	hasher, err := pwdhash.New(pwdhash.WithPolicy(pwdhash.PolicyInteractive))
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to create password hasher")
	}

	h := &CredentialHasher{hasher: hasher}

	filler := make([]byte, 32)
	if _, err := rand.Read(filler); err != nil {
		return nil, apperrors.Wrap(err, "failed to generate dummy secret")
	}
	h.dummyHash, err = h.Hash(base64.RawURLEncoding.EncodeToString(filler))
	if err != nil {
		return nil, err
	}

	return h, nil
}

// Hash returns a PHC-formatted Argon2id hash of secret.
func (h *CredentialHasher) Hash(secret string) (string, error) {
	hashed, err := h.hasher.Hash(prehash(secret))
	if err != nil {
		return "", apperrors.Wrap(err, "failed to hash secret")
	}
	return hashed, nil
}

// Verify reports whether candidate matches stored in constant time.
func (h *CredentialHasher) Verify(candidate, stored string) bool {
	switch {
	case strings.HasPrefix(stored, argon2idPrefix):
		ok, err := h.hasher.Verify(prehash(candidate), stored)
		return err == nil && ok
	case isBcrypt(stored):
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(candidate)) == nil
	default:
		return false
	}
}

// NeedsRehash reports whether stored should be replaced by a fresh Argon2id hash.
func (h *CredentialHasher) NeedsRehash(stored string) bool {
	return !strings.HasPrefix(stored, argon2idPrefix)
}

// DummyHash returns a valid hash of an unguessable secret. Verifying against it costs
// the same as a real verification, which keeps unknown-user logins indistinguishable.
func (h *CredentialHasher) DummyHash() string {
	return h.dummyHash
}

// prehash digests secret to a fixed 44-byte input so long secrets are neither truncated
// nor costlier to hash.
func prehash(secret string) []byte {
	sum := sha256.Sum256([]byte(secret))
	out := make([]byte, base64.StdEncoding.EncodedLen(len(sum)))
	base64.StdEncoding.Encode(out, sum[:])
	return out
}

func isBcrypt(stored string) bool {
	for _, prefix := range bcryptPrefixes {
		if strings.HasPrefix(stored, prefix) {
			return true
		}
	}
	return false
}
