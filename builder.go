package authcore

import (
	"errors"

	"github.com/dev-priyanshu15/authcore/internal/rate"
	"github.com/dev-priyanshu15/authcore/jwt"
	"github.com/dev-priyanshu15/authcore/password"
	"github.com/redis/go-redis/v9"
)

// Builder assembles an [Engine] from a config, a Redis client, and a
// [UserProvider]. A Builder is single-use; Build fails the second time.
//
// Builder instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Builder struct {
	config Config
	redis  redis.UniversalClient

	userProvider UserProvider
	auditSink    AuditSink

	built bool
}

// New describes the new operation and its observable behavior.
//
// New does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig describes the withconfig operation and its observable behavior.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithSecret sets the JWT signing secret on the current config.
func (b *Builder) WithSecret(secret []byte) *Builder {
	b.config.JWT.Secret = cloneBytes(secret)
	return b
}

// WithRedis describes the withredis operation and its observable behavior.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithUserProvider describes the withuserprovider operation and its observable behavior.
func (b *Builder) WithUserProvider(up UserProvider) *Builder {
	b.userProvider = up
	return b
}

// WithAuditSink describes the withauditsink operation and its observable behavior.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	b.config.Audit.Enabled = true
	return b
}

// WithMetricsEnabled describes the withmetricsenabled operation and its observable behavior.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// Build describes the build operation and its observable behavior.
//
// Build may return an error when input validation, dependency calls, or security checks fail.
// Build does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)

	// A configured sink means auditing is wanted, whatever order the
	// builder calls came in.
	if b.auditSink != nil {
		cfg.Audit.Enabled = true
		if cfg.Audit.BufferSize <= 0 {
			cfg.Audit.BufferSize = defaultConfig().Audit.BufferSize
		}
	}

	if b.redis == nil {
		return nil, errors.New("redis client required")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if b.userProvider == nil {
		return nil, errors.New("user provider required")
	}

	engine := &Engine{
		config:       cloneConfig(cfg),
		redis:        b.redis,
		userProvider: b.userProvider,
		revocations:  newRevocationStore(b.redis, cfg.Revocation.KeyPrefix),
		audit:        newAuditDispatcher(cfg.Audit, b.auditSink),
		metrics:      NewMetrics(cfg.Metrics),
	}

	engine.rateLimiter = rate.New(b.redis, rate.Config{
		KeyPrefix: cfg.RateLimit.KeyPrefix,
		API: rate.ClassConfig{
			Capacity:      cfg.RateLimit.API.Capacity,
			Window:        cfg.RateLimit.API.Window,
			BlockDuration: cfg.RateLimit.API.BlockDuration,
		},
		Auth: rate.ClassConfig{
			Capacity:      cfg.RateLimit.Auth.Capacity,
			Window:        cfg.RateLimit.Auth.Window,
			BlockDuration: cfg.RateLimit.Auth.BlockDuration,
		},
	})

	ph, err := password.NewArgon2(password.Config{
		Memory:      cfg.Password.Memory,
		Time:        cfg.Password.Time,
		Parallelism: cfg.Password.Parallelism,
		SaltLength:  cfg.Password.SaltLength,
		KeyLength:   cfg.Password.KeyLength,
	})
	if err != nil {
		return nil, err
	}
	engine.passwordHash = ph

	jm, err := jwt.NewManager(jwt.Config{
		Secret:   cloneBytes(cfg.JWT.Secret),
		TokenTTL: cfg.JWT.TokenTTL,
		Issuer:   cfg.JWT.Issuer,
		Leeway:   cfg.JWT.Leeway,
	})
	if err != nil {
		return nil, err
	}
	engine.jwtManager = jm

	b.built = true

	return engine, nil
}
