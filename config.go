package authcore

import (
	"errors"
	"time"
)

// Config defines a public type used by the authcore engine.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	JWT        JWTConfig
	Lockout    LockoutConfig
	RateLimit  RateLimitConfig
	Revocation RevocationConfig
	Audit      AuditConfig
	Metrics    MetricsConfig
	Password   PasswordConfig
}

/*
====================================
JWT CONFIG
====================================
*/

// JWTConfig defines a public type used by the authcore engine.
//
// JWTConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type JWTConfig struct {
	// Secret is the symmetric HS256 signing key. The same secret verifies
	// what it signs; rotating it invalidates every outstanding token.
	Secret   []byte
	TokenTTL time.Duration
	Issuer   string
	Leeway   time.Duration
}

/*
====================================
LOCKOUT CONFIG
====================================
*/

// LockoutConfig defines a public type used by the authcore engine.
//
// LockoutConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type LockoutConfig struct {
	// Threshold is the failed-attempt count that flips an account to Locked.
	Threshold int
	// Duration is how long a triggered lock holds.
	Duration time.Duration
}

/*
====================================
RATE LIMIT CONFIG
====================================
*/

// ClassConfig describes one limiter class: a fixed window of Capacity
// points, plus an optional block applied once the window is exceeded.
type ClassConfig struct {
	Capacity int
	Window   time.Duration
	// BlockDuration > 0 arms the second tier: once the window is exceeded
	// the identity stays rejected for this long, independent of window
	// rollover. Zero means plain fixed-window behavior.
	BlockDuration time.Duration
}

// RateLimitConfig defines a public type used by the authcore engine.
//
// RateLimitConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type RateLimitConfig struct {
	API  ClassConfig
	Auth ClassConfig
	// KeyPrefix namespaces limiter keys in the shared store.
	KeyPrefix string
}

/*
====================================
REVOCATION CONFIG
====================================
*/

// RevocationConfig defines a public type used by the authcore engine.
//
// RevocationConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type RevocationConfig struct {
	// KeyPrefix namespaces revocation entries in the shared store.
	KeyPrefix string
}

/*
====================================
PASSWORD CONFIG
====================================
*/

// PasswordConfig defines a public type used by the authcore engine.
//
// PasswordConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type PasswordConfig struct {
	Memory      uint32 // in KB
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

/*
====================================
AUDIT CONFIG
====================================
*/

// AuditConfig defines a public type used by the authcore engine.
//
// AuditConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

/*
====================================
METRICS CONFIG
====================================
*/

// MetricsConfig defines a public type used by the authcore engine.
//
// MetricsConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricsConfig struct {
	Enabled bool
}

func defaultConfig() Config {
	return Config{
		JWT: JWTConfig{
			TokenTTL: 7 * 24 * time.Hour,
			Issuer:   "authcore",
			Leeway:   0,
		},
		Lockout: LockoutConfig{
			Threshold: 5,
			Duration:  2 * time.Hour,
		},
		RateLimit: RateLimitConfig{
			API: ClassConfig{
				Capacity: 100,
				Window:   60 * time.Second,
			},
			Auth: ClassConfig{
				Capacity:      5,
				Window:        60 * time.Second,
				BlockDuration: 300 * time.Second,
			},
			KeyPrefix: "rl",
		},
		Revocation: RevocationConfig{
			KeyPrefix: "rvk",
		},
		Password: PasswordConfig{
			Memory:      65536,
			Time:        3,
			Parallelism: 2,
			SaltLength:  16,
			KeyLength:   32,
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: false,
		},
	}
}

// DefaultConfig returns the recommended configuration: 7-day tokens,
// lockout after 5 failures for 2 hours, API class 100 points / 60s,
// Auth class 5 points / 60s with a 300s block.
func DefaultConfig() Config {
	return defaultConfig()
}

// Validate describes the validate operation and its observable behavior.
//
// Validate may return an error when input validation fails. A missing JWT
// secret is a fatal configuration error: the engine refuses to start
// rather than sign tokens with an empty key.
func (c *Config) Validate() error {
	if len(c.JWT.Secret) == 0 {
		return errors.New("JWT secret is required")
	}
	if len(c.JWT.Secret) < 32 {
		return errors.New("JWT secret must be at least 32 bytes")
	}
	if c.JWT.TokenTTL <= 0 {
		return errors.New("JWT token TTL must be positive")
	}
	if c.JWT.Leeway < 0 || c.JWT.Leeway > 2*time.Minute {
		return errors.New("JWT leeway out of range")
	}
	if c.Lockout.Threshold <= 0 {
		return errors.New("lockout threshold must be positive")
	}
	if c.Lockout.Duration <= 0 {
		return errors.New("lockout duration must be positive")
	}
	if err := validateClass("api", c.RateLimit.API); err != nil {
		return err
	}
	if err := validateClass("auth", c.RateLimit.Auth); err != nil {
		return err
	}
	if c.RateLimit.KeyPrefix == "" {
		return errors.New("rate limit key prefix is required")
	}
	if c.Revocation.KeyPrefix == "" {
		return errors.New("revocation key prefix is required")
	}
	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("audit buffer size must be positive")
	}
	return nil
}

func validateClass(name string, cc ClassConfig) error {
	if cc.Capacity <= 0 {
		return errors.New("rate limit class " + name + ": capacity must be positive")
	}
	if cc.Window <= 0 {
		return errors.New("rate limit class " + name + ": window must be positive")
	}
	if cc.BlockDuration < 0 {
		return errors.New("rate limit class " + name + ": block duration cannot be negative")
	}
	return nil
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.JWT.Secret = cloneBytes(cfg.JWT.Secret)
	return out
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
