package rate

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Class selects which point budget a consume call draws from.
type Class uint8

const (
	// ClassAPI is the general request budget: generous capacity, no block.
	ClassAPI Class = iota
	// ClassAuth is the sensitive budget for login/register: small capacity
	// and a block marker that outlives the window once exceeded.
	ClassAuth
)

func (c Class) String() string {
	switch c {
	case ClassAuth:
		return "auth"
	default:
		return "api"
	}
}

// ClassConfig holds the budget for one limiter class.
type ClassConfig struct {
	Capacity      int
	Window        time.Duration
	BlockDuration time.Duration
}

// Config holds rate limiter tuning parameters.
type Config struct {
	KeyPrefix string
	API       ClassConfig
	Auth      ClassConfig
}

// Decision is the outcome of a consume call. RetryAfter is meaningful only
// when Allowed is false: the remaining life of the window or of the active
// block marker, whichever rejected the call.
type Decision struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

// Limiter enforces fixed-window point budgets keyed by (class, identity),
// backed by Redis counters so every server instance observes the same
// consumption. Increment-and-read is a single INCR, so concurrent callers
// across instances can never both pass on the same remaining point.
type Limiter struct {
	redis  redis.UniversalClient
	config Config
}

// New creates a rate [Limiter] backed by the given Redis client.
func New(redisClient redis.UniversalClient, cfg Config) *Limiter {
	return &Limiter{
		redis:  redisClient,
		config: cfg,
	}
}

// Consume draws one point from the class budget for identity. A Redis
// failure is returned as [ErrRedisUnavailable]; callers must treat that as
// a rejection (fail-closed), never as an allowance.
func (l *Limiter) Consume(ctx context.Context, class Class, identity string) (Decision, error) {
	cc := l.classConfig(class)

	if cc.BlockDuration > 0 {
		blocked, retryAfter, err := l.activeBlock(ctx, class, identity)
		if err != nil {
			return Decision{}, err
		}
		if blocked {
			return Decision{Allowed: false, RetryAfter: retryAfter}, nil
		}
	}

	count, err := l.incrementWithTTL(ctx, counterKey(l.config.KeyPrefix, class, identity), cc.Window)
	if err != nil {
		return Decision{}, err
	}

	if count <= int64(cc.Capacity) {
		return Decision{Allowed: true, Remaining: cc.Capacity - int(count)}, nil
	}

	retryAfter, err := l.rejectWindow(ctx, class, identity, cc)
	if err != nil {
		return Decision{}, err
	}

	return Decision{Allowed: false, RetryAfter: retryAfter}, nil
}

// rejectWindow computes the retry hint for an exceeded budget and, for
// blocking classes, arms the block marker so the next window starts
// rejected as well.
func (l *Limiter) rejectWindow(ctx context.Context, class Class, identity string, cc ClassConfig) (time.Duration, error) {
	if cc.BlockDuration > 0 {
		key := blockKey(l.config.KeyPrefix, class, identity)

		// SETNX keeps the deadline of the first violation; repeat offenders
		// do not push their own block further out.
		if err := l.redis.SetNX(ctx, key, "1", cc.BlockDuration).Err(); err != nil {
			return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
		}

		ttl, err := l.redis.PTTL(ctx, key).Result()
		if err != nil {
			return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
		}
		if ttl > 0 {
			return ttl, nil
		}
		return cc.BlockDuration, nil
	}

	ttl, err := l.redis.PTTL(ctx, counterKey(l.config.KeyPrefix, class, identity)).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	if ttl > 0 {
		return ttl, nil
	}
	return cc.Window, nil
}

func (l *Limiter) activeBlock(ctx context.Context, class Class, identity string) (bool, time.Duration, error) {
	ttl, err := l.redis.PTTL(ctx, blockKey(l.config.KeyPrefix, class, identity)).Result()
	if err != nil {
		return false, 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	// PTTL reports a negative duration when the key is absent or unexpiring.
	if ttl > 0 {
		return true, ttl, nil
	}
	return false, 0, nil
}

func (l *Limiter) incrementWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	count, err := l.redis.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	// Fixed-window semantics: set TTL only for the first hit in the window.
	if count == 1 {
		if err := l.redis.Expire(ctx, key, ttl).Err(); err != nil {
			return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
		}
	}

	return count, nil
}

func (l *Limiter) classConfig(class Class) ClassConfig {
	if class == ClassAuth {
		return l.config.Auth
	}
	return l.config.API
}

func counterKey(prefix string, class Class, identity string) string {
	return prefix + ":" + class.String() + ":" + identity
}

func blockKey(prefix string, class Class, identity string) string {
	return prefix + ":" + class.String() + ":b:" + identity
}
