package authcore

import (
	"context"
	"errors"
	"time"
)

// Login authenticates an identifier/password pair and issues a bearer
// token. The sensitive-class rate limiter runs first, before the user
// store is touched at all, unless the context carries the
// [WithAuthCharged] marker because an outer gate already drew the point.
// The lockout check runs before the password comparison so a locked
// account answers uniformly regardless of whether the password would
// have matched.
//
// Login may return an error when input validation, dependency calls, or security checks fail.
// Login does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) Login(ctx context.Context, identifier, pass string) (*LoginResult, error) {
	if e == nil || e.userProvider == nil || e.passwordHash == nil || e.jwtManager == nil {
		return nil, ErrEngineNotReady
	}

	if !authChargedFromContext(ctx) {
		if err := e.ConsumeAuth(ctx, clientIPFromContext(ctx)); err != nil {
			e.metricInc(MetricLoginRateLimited)
			e.emitAudit(ctx, auditEventLoginRateLimited, false, "", err, func() map[string]string {
				return map[string]string{
					"identifier": identifier,
				}
			})
			return nil, err
		}
	}

	if identifier == "" || pass == "" {
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditEventLoginFailure, false, "", ErrInvalidCredentials, func() map[string]string {
			return map[string]string{
				"identifier": identifier,
				"reason":     "empty_input",
			}
		})
		return nil, ErrInvalidCredentials
	}

	user, err := e.userProvider.GetUserByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			e.metricInc(MetricLoginFailure)
			e.emitAudit(ctx, auditEventLoginFailure, false, "", ErrInvalidCredentials, func() map[string]string {
				return map[string]string{
					"identifier": identifier,
					"reason":     "user_not_found",
				}
			})
			return nil, ErrInvalidCredentials
		}
		return nil, ErrUserStoreUnavailable
	}

	now := time.Now()
	state := lockoutStateOf(user, now)
	if state.Locked() {
		e.metricInc(MetricAccountLocked)
		e.emitAudit(ctx, auditEventLoginFailure, false, user.UserID, ErrAccountLocked, func() map[string]string {
			return map[string]string{
				"identifier":   identifier,
				"locked_until": state.Until.UTC().Format(time.RFC3339),
			}
		})
		return nil, ErrAccountLocked
	}

	ok, err := e.passwordHash.Verify(pass, user.PasswordHash)
	if err != nil || !ok {
		next := lockoutAfterFailure(e.config.Lockout, state, now)

		// The failure counter must land even if the caller disconnects
		// mid-request; dropping it would undercount the attacker.
		if saveErr := e.userProvider.SaveLockout(context.WithoutCancel(ctx), user.UserID, next); saveErr != nil {
			return nil, ErrUserStoreUnavailable
		}

		if next.Phase == PhaseLocked {
			e.metricInc(MetricAccountLocked)
			e.emitAudit(ctx, auditEventAccountLocked, false, user.UserID, ErrAccountLocked, func() map[string]string {
				return map[string]string{
					"identifier":   identifier,
					"locked_until": next.Until.UTC().Format(time.RFC3339),
				}
			})
		}

		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditEventLoginFailure, false, user.UserID, ErrInvalidCredentials, func() map[string]string {
			return map[string]string{
				"identifier": identifier,
				"reason":     "bad_password",
			}
		})
		return nil, ErrInvalidCredentials
	}

	// Successful authentication resets the machine to Unlocked(0),
	// clearing any expired lock along the way.
	if user.FailedAttempts != 0 || !user.LockedUntil.IsZero() {
		if saveErr := e.userProvider.SaveLockout(context.WithoutCancel(ctx), user.UserID, lockoutAfterSuccess()); saveErr != nil {
			return nil, ErrUserStoreUnavailable
		}
	}

	return e.issueFor(ctx, user, auditEventLoginSuccess, MetricLoginSuccess)
}

func (e *Engine) issueFor(ctx context.Context, user UserRecord, event string, metric MetricID) (*LoginResult, error) {
	token, err := e.jwtManager.Issue(user.UserID)
	if err != nil {
		return nil, err
	}

	claims, err := e.jwtManager.Parse(token)
	if err != nil {
		return nil, err
	}

	e.metricInc(metric)
	e.emitAudit(ctx, event, true, user.UserID, nil, func() map[string]string {
		return map[string]string{
			"identifier": user.Identifier,
		}
	})

	return &LoginResult{
		Token:     token,
		UserID:    user.UserID,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
