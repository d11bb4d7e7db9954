package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	// ErrMalformed is returned when the token is not a structurally valid JWT.
	ErrMalformed = errors.New("malformed token")
	// ErrSignature is returned when the signature does not verify against the configured secret.
	ErrSignature = errors.New("invalid token signature")
	// ErrExpired is returned when the token is past its expiry claim.
	ErrExpired = errors.New("token expired")
)

// Config defines a public type used by the authcore token codec.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	// Secret is the symmetric HS256 key. The same secret must verify what
	// it signs; rotation invalidates all outstanding tokens.
	Secret   []byte
	TokenTTL time.Duration
	Issuer   string
	Leeway   time.Duration
}

// Manager issues and verifies signed, expiring bearer tokens. Verification
// is a pure function of the token and the clock; it never touches a store.
//
// Manager instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Manager struct {
	config Config
}

// Claims is the claim set embedded in every issued token: subject id plus
// the registered issued-at/expiry pair and a unique jti.
type Claims struct {
	UID string `json:"uid"`
	jwt.RegisteredClaims
}

// NewManager describes the newmanager operation and its observable behavior.
//
// NewManager may return an error when input validation fails.
// NewManager does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewManager(cfg Config) (*Manager, error) {
	if len(cfg.Secret) == 0 {
		return nil, errors.New("hs256 requires a secret")
	}
	if cfg.TokenTTL <= 0 {
		return nil, errors.New("invalid TTL configuration")
	}
	if cfg.Leeway < 0 || cfg.Leeway > 2*time.Minute {
		return nil, errors.New("invalid leeway configuration")
	}

	return &Manager{config: cfg}, nil
}

// Issue creates a signed token for subjectID with issued-at now and expiry
// now + configured TTL.
//
// Issue may return an error when signing fails.
// Issue does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (m *Manager) Issue(subjectID string) (string, error) {
	now := time.Now()

	claims := Claims{
		UID: subjectID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.config.TokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    m.config.Issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.config.Secret)
}

// Parse verifies the token signature and expiry and returns its claims.
// Failures are reported as [ErrMalformed], [ErrSignature], or [ErrExpired].
//
// Parse does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (m *Manager) Parse(tokenStr string) (*Claims, error) {
	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if m.config.Leeway > 0 {
		options = append(options, jwt.WithLeeway(m.config.Leeway))
	}
	if m.config.Issuer != "" {
		options = append(options, jwt.WithIssuer(m.config.Issuer))
	}

	parser := jwt.NewParser(options...)
	token, err := parser.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return m.config.Secret, nil
	})
	if err != nil {
		return nil, mapParseError(err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrMalformed
	}
	if claims.UID == "" {
		return nil, ErrMalformed
	}

	return claims, nil
}

// RemainingLifetime returns expiry minus now for the token, clamped to
// zero. It decodes claims without verifying the signature: the result
// feeds only the revocation-entry TTL, never an authorization decision.
//
// RemainingLifetime does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (m *Manager) RemainingLifetime(tokenStr string) (time.Duration, error) {
	parser := jwt.NewParser(jwt.WithoutClaimsValidation())
	claims := &Claims{}
	if _, _, err := parser.ParseUnverified(tokenStr, claims); err != nil {
		return 0, ErrMalformed
	}
	if claims.ExpiresAt == nil {
		return 0, ErrMalformed
	}

	remaining := time.Until(claims.ExpiresAt.Time)
	if remaining < 0 {
		return 0, nil
	}
	return remaining, nil
}

func mapParseError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid),
		errors.Is(err, jwt.ErrTokenUnverifiable),
		errors.Is(err, jwt.ErrSignatureInvalid):
		return ErrSignature
	default:
		return ErrMalformed
	}
}
