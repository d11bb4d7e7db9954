package authcore

import (
	"context"
	"errors"
	"fmt"

	"github.com/dev-priyanshu15/authcore/internal/rate"
	"github.com/dev-priyanshu15/authcore/jwt"
	"github.com/dev-priyanshu15/authcore/password"
	"github.com/redis/go-redis/v9"
)

// Engine is the composition point of the token lifecycle core: it wires
// the token codec, the revocation store, the lockout state machine, and
// the distributed rate limiter behind the operations route handlers call.
//
// Engine instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Engine struct {
	config       Config
	redis        redis.UniversalClient
	revocations  *revocationStore
	rateLimiter  *rate.Limiter
	audit        *auditDispatcher
	metrics      *Metrics
	passwordHash *password.Argon2
	jwtManager   *jwt.Manager
	userProvider UserProvider
}

// Close describes the close operation and its observable behavior.
//
// Close does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.audit != nil {
		e.audit.Close()
	}
}

// AuditDropped reports how many audit events were discarded because the
// dispatcher buffer was full.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot describes the metricssnapshot operation and its observable behavior.
//
// MetricsSnapshot does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters: map[MetricID]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

// Validate checks a bearer token for a protected request: revocation list
// first (fail-closed on store error), then signature and expiry through
// the codec. Signature validity alone never authorizes a request; a
// revoked token is rejected with [ErrTokenRevoked] for as long as it would
// otherwise still verify.
//
// Validate may return an error when input validation, dependency calls, or security checks fail.
// Validate does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) Validate(ctx context.Context, token string) (*AuthResult, error) {
	if e == nil || e.jwtManager == nil || e.revocations == nil {
		return nil, ErrEngineNotReady
	}
	if token == "" {
		return nil, ErrMissingToken
	}

	revoked, err := e.revocations.IsRevoked(ctx, token)
	if err != nil {
		e.metricInc(MetricStoreUnavailable)
		e.metricInc(MetricValidateFailure)
		e.emitAudit(ctx, auditEventTokenRejected, false, "", err, nil)
		return nil, err
	}
	if revoked {
		e.metricInc(MetricRevokedTokenRejected)
		e.metricInc(MetricValidateFailure)
		e.emitAudit(ctx, auditEventTokenRejected, false, "", ErrTokenRevoked, nil)
		return nil, ErrTokenRevoked
	}

	claims, err := e.jwtManager.Parse(token)
	if err != nil {
		mapped := mapTokenError(err)
		e.metricInc(MetricValidateFailure)
		e.emitAudit(ctx, auditEventTokenRejected, false, "", mapped, nil)
		return nil, mapped
	}

	e.metricInc(MetricValidateSuccess)

	return &AuthResult{
		SubjectID: claims.UID,
		TokenID:   claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// ConsumeAPI draws one point from the general request budget for the given
// client identity. Returns nil when allowed, a [*RateLimitError] when the
// budget is exceeded, or [ErrStoreUnavailable] (also a rejection) when the
// shared store cannot be reached.
func (e *Engine) ConsumeAPI(ctx context.Context, identity string) error {
	return e.consume(ctx, rate.ClassAPI, identity)
}

// ConsumeAuth draws one point from the sensitive login/register budget for
// the given client identity. Same result contract as [Engine.ConsumeAPI].
func (e *Engine) ConsumeAuth(ctx context.Context, identity string) error {
	return e.consume(ctx, rate.ClassAuth, identity)
}

func (e *Engine) consume(ctx context.Context, class rate.Class, identity string) error {
	if e == nil || e.rateLimiter == nil {
		return ErrEngineNotReady
	}
	if identity == "" {
		identity = "unknown"
	}

	dec, err := e.rateLimiter.Consume(ctx, class, identity)
	if err != nil {
		e.metricInc(MetricStoreUnavailable)
		if errors.Is(err, rate.ErrRedisUnavailable) {
			return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
		return err
	}
	if !dec.Allowed {
		e.emitRateLimit(ctx, class.String(), func() map[string]string {
			return map[string]string{
				"identity": identity,
			}
		})
		return &RateLimitError{RetryAfter: dec.RetryAfter}
	}

	return nil
}

// Ping probes the shared coordination store. A failure means revocation
// and rate-limit checks are in fail-closed degraded mode.
func (e *Engine) Ping(ctx context.Context) error {
	if e == nil || e.redis == nil {
		return ErrEngineNotReady
	}
	if err := e.redis.Ping(ctx).Err(); err != nil {
		e.metricInc(MetricStoreUnavailable)
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

func mapTokenError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrExpired):
		return ErrTokenExpired
	case errors.Is(err, jwt.ErrSignature):
		return ErrTokenSignature
	case errors.Is(err, jwt.ErrMalformed):
		return ErrTokenMalformed
	default:
		return ErrUnauthorized
	}
}
