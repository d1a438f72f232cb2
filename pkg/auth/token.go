package auth

import (
	"errors"
	"fmt"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is the only error Validate reports for a bad token.
// Malformed structure, a forged or mismatched signature, and an expired
// claim are deliberately indistinguishable to callers.
var ErrInvalidToken = errors.New("invalid token")

// Claim is the identity claim embedded in a session token: the username and
// nothing else. The password hash in particular never belongs here.
type Claim struct {
	Username string
}

// TokenConfig holds the token service configuration.
type TokenConfig struct {
	// Secret is the HMAC signing secret, shared process-wide. Required.
	Secret []byte

	// TTL is the token lifetime. A zero TTL issues non-expiring tokens,
	// which matches the historical behavior but leaves a compromised token
	// valid forever; deployments should set a finite TTL. Revocation would
	// additionally require a server-side denylist, which courier does not
	// keep.
	TTL time.Duration
}

// TokenService issues and validates signed session tokens. Tokens are
// stateless: the server keeps no record of what it issued, so a token is
// valid exactly when its signature verifies under the current secret and
// its payload is a well-formed claim.
//
// The secret is fixed at construction and never mutated, making the service
// safe for unsynchronized concurrent use.
type TokenService struct {
	secret []byte
	ttl    time.Duration
}

// sessionClaims is the JWT payload for a session token.
type sessionClaims struct {
	jwtlib.RegisteredClaims
	Username string `json:"username"`
}

// NewTokenService creates a token service with the given configuration.
func NewTokenService(cfg TokenConfig) (*TokenService, error) {
	if len(cfg.Secret) == 0 {
		return nil, fmt.Errorf("token secret is required")
	}
	return &TokenService{secret: cfg.Secret, ttl: cfg.TTL}, nil
}

// Issue serializes the claim and signs it with HMAC-SHA256. When a TTL is
// configured, an expiry is embedded; validation rejects the token once it
// has passed.
func (s *TokenService) Issue(claim Claim) (string, error) {
	claims := sessionClaims{Username: claim.Username}
	if s.ttl > 0 {
		claims.ExpiresAt = jwtlib.NewNumericDate(time.Now().Add(s.ttl))
		claims.IssuedAt = jwtlib.NewNumericDate(time.Now())
	}

	token := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// Validate checks the signature and deserializes the claim. It does not
// consult the user store: whether the claimed username still exists is a
// separate, explicit check owned by callers that need it.
func (s *TokenService) Validate(token string) (Claim, error) {
	claims := &sessionClaims{}

	parsed, err := jwtlib.ParseWithClaims(token, claims, func(t *jwtlib.Token) (interface{}, error) {
		return s.secret, nil
	}, jwtlib.WithValidMethods([]string{"HS256"}))
	if err != nil || !parsed.Valid {
		return Claim{}, ErrInvalidToken
	}

	if claims.Username == "" {
		return Claim{}, ErrInvalidToken
	}

	return Claim{Username: claims.Username}, nil
}
