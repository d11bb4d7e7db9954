package authcore

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const revokedSentinel = "1"

// revocationStore records tokens that must be treated as invalid before
// their natural expiry. Entries live in the shared store under a SHA-256
// hash of the raw token with TTL equal to the token's remaining lifetime,
// so the list can never outgrow the set of still-live tokens.
type revocationStore struct {
	redis  redis.UniversalClient
	prefix string
}

func newRevocationStore(redisClient redis.UniversalClient, prefix string) *revocationStore {
	return &revocationStore{
		redis:  redisClient,
		prefix: prefix,
	}
}

func (s *revocationStore) key(token string) string {
	sum := sha256.Sum256([]byte(token))
	return s.prefix + ":" + hex.EncodeToString(sum[:])
}

// Revoke writes a revocation entry expiring with the token itself.
// A non-positive ttl means the token is already expired; nothing is
// written and nothing needs to be. Revoking twice is harmless.
func (s *revocationStore) Revoke(ctx context.Context, token string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}

	if err := s.redis.Set(ctx, s.key(token), revokedSentinel, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	return nil
}

// IsRevoked reports whether the token carries a revocation entry. A store
// error is returned as [ErrStoreUnavailable] and must be treated by the
// caller as a denial, never as "not revoked".
func (s *revocationStore) IsRevoked(ctx context.Context, token string) (bool, error) {
	err := s.redis.Get(ctx, s.key(token)).Err()
	if err == nil {
		return true, nil
	}
	if errors.Is(err, redis.Nil) {
		return false, nil
	}

	return false, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
}
