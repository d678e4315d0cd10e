package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	authDomain "github.com/voces/voces/internal/auth/domain"
	apperrors "github.com/voces/voces/internal/errors"
)

// DefaultIssuer is the iss claim of every session token.
const DefaultIssuer = "voces"

// MinSecretLength is the smallest accepted signing secret, in bytes.
const MinSecretLength = 32

var reservedClaims = map[string]bool{
	"exp": true,
	"iat": true,
	"nbf": true,
	"sub": true,
	"iss": true,
	"jti": true,
}

var errAlgorithmMismatch = errors.New("unexpected signing algorithm")

// TokenOption configures a TokenService.
type TokenOption func(*TokenService)

// WithClock replaces time.Now as the source of issue and verification time.
func WithClock(now func() time.Time) TokenOption {
	return func(s *TokenService) {
		s.now = now
	}
}

// WithIssuer overrides DefaultIssuer.
func WithIssuer(issuer string) TokenOption {
	return func(s *TokenService) {
		s.issuer = issuer
	}
}

// TokenService issues and verifies HMAC-signed JWT session tokens. The algorithm is
// fixed at construction; tokens signed with anything else are rejected.
type TokenService struct {
	secret []byte
	method *jwt.SigningMethodHMAC
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

// NewTokenService creates a TokenService for algorithm (HS256, HS384 or HS512).
func NewTokenService(
	secret []byte,
	algorithm string,
	ttl time.Duration,
	opts ...TokenOption,
) (*TokenService, error) {
	if len(secret) < MinSecretLength {
		return nil, fmt.Errorf("signing secret must be at least %d bytes", MinSecretLength)
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("token lifetime must be positive")
	}

	method, ok := jwt.GetSigningMethod(algorithm).(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, fmt.Errorf("unsupported signing algorithm: %s", algorithm)
	}

	s := &TokenService{
		secret: secret,
		method: method,
		ttl:    ttl,
		issuer: DefaultIssuer,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// DefaultTTL returns the configured token lifetime.
func (s *TokenService) DefaultTTL() time.Duration {
	return s.ttl
}

// Issue signs a token for subject valid from now until now+ttl.
func (s *TokenService) Issue(subject string, extra map[string]any, ttl time.Duration) (string, time.Time, error) {
	if ttl <= 0 {
		ttl = s.ttl
	}

	claims := make(jwt.MapClaims, len(extra)+5)
	for name, value := range extra {
		if reservedClaims[name] {
			return "", time.Time{}, apperrors.Wrapf(authDomain.ErrReservedClaim, "%q", name)
		}
		claims[name] = value
	}

	issuedAt := jwt.NewNumericDate(s.now())
	expiresAt := jwt.NewNumericDate(issuedAt.Add(ttl))

	claims["sub"] = subject
	claims["iss"] = s.issuer
	claims["iat"] = issuedAt
	claims["exp"] = expiresAt
	claims["jti"] = uuid.NewString()

	signed, err := jwt.NewWithClaims(s.method, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, apperrors.Wrap(err, "failed to sign token")
	}

	return signed, expiresAt.Time, nil
}

// Verify parses token and returns its claims. It depends only on the token, the secret
// and the clock.
func (s *TokenService) Verify(token string) (*authDomain.Claims, error) {
	parser := jwt.NewParser(
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithIssuer(s.issuer),
		jwt.WithTimeFunc(s.now),
	)

	mapClaims := jwt.MapClaims{}
	_, err := parser.ParseWithClaims(token, mapClaims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != s.method.Alg() {
			return nil, errAlgorithmMismatch
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, &authDomain.TokenRejection{Kind: classify(err), Cause: err}
	}

	return toClaims(mapClaims)
}

func classify(err error) authDomain.RejectionKind {
	switch {
	case errors.Is(err, errAlgorithmMismatch):
		return authDomain.RejectionAlgorithmMismatch
	case errors.Is(err, jwt.ErrTokenMalformed):
		return authDomain.RejectionMalformed
	case errors.Is(err, jwt.ErrTokenUnverifiable):
		return authDomain.RejectionAlgorithmMismatch
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return authDomain.RejectionSignatureInvalid
	case errors.Is(err, jwt.ErrTokenExpired):
		return authDomain.RejectionExpired
	default:
		return authDomain.RejectionClaimsInvalid
	}
}

func toClaims(mapClaims jwt.MapClaims) (*authDomain.Claims, error) {
	subject, err := mapClaims.GetSubject()
	if err != nil || subject == "" {
		return nil, &authDomain.TokenRejection{
			Kind:  authDomain.RejectionClaimsInvalid,
			Cause: errors.New("missing subject"),
		}
	}

	// Parser options already guarantee iss, iat and exp are present and well typed.
	issuer, _ := mapClaims.GetIssuer()
	issuedAt, _ := mapClaims.GetIssuedAt()
	expiresAt, _ := mapClaims.GetExpirationTime()
	jti, _ := mapClaims["jti"].(string)

	claims := &authDomain.Claims{
		Subject:   subject,
		Issuer:    issuer,
		ID:        jti,
		ExpiresAt: expiresAt.Time,
		Extra:     make(map[string]any),
	}
	if issuedAt != nil {
		claims.IssuedAt = issuedAt.Time
	}

	for name, value := range mapClaims {
		if !reservedClaims[name] {
			claims.Extra[name] = value
		}
	}

	return claims, nil
}
