package authcore

import (
	"context"
	"errors"
)

// Register creates a new account and issues a bearer token for it, the
// same auto-login behavior as a successful login. The sensitive-class
// limiter guards registration with the login budget.
//
// Register may return an error when input validation, dependency calls, or security checks fail.
// Register does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) Register(ctx context.Context, identifier, pass string) (*LoginResult, error) {
	if e == nil || e.userProvider == nil || e.passwordHash == nil || e.jwtManager == nil {
		return nil, ErrEngineNotReady
	}

	if !authChargedFromContext(ctx) {
		if err := e.ConsumeAuth(ctx, clientIPFromContext(ctx)); err != nil {
			e.emitAudit(ctx, auditEventRegisterRateLimited, false, "", err, func() map[string]string {
				return map[string]string{
					"identifier": identifier,
				}
			})
			return nil, err
		}
	}

	if identifier == "" || pass == "" {
		e.metricInc(MetricRegisterFailure)
		e.emitAudit(ctx, auditEventRegisterFailure, false, "", ErrInvalidCredentials, func() map[string]string {
			return map[string]string{
				"identifier": identifier,
				"reason":     "empty_input",
			}
		})
		return nil, ErrInvalidCredentials
	}

	hash, err := e.passwordHash.Hash(pass)
	if err != nil {
		e.metricInc(MetricRegisterFailure)
		e.emitAudit(ctx, auditEventRegisterFailure, false, "", err, func() map[string]string {
			return map[string]string{
				"identifier": identifier,
				"reason":     "weak_password",
			}
		})
		return nil, ErrInvalidCredentials
	}

	user, err := e.userProvider.CreateUser(ctx, CreateUserInput{
		Identifier:   identifier,
		PasswordHash: hash,
	})
	if err != nil {
		if errors.Is(err, ErrAccountExists) {
			e.metricInc(MetricRegisterFailure)
			e.emitAudit(ctx, auditEventRegisterFailure, false, "", ErrAccountExists, func() map[string]string {
				return map[string]string{
					"identifier": identifier,
				}
			})
			return nil, ErrAccountExists
		}
		return nil, ErrUserStoreUnavailable
	}

	return e.issueFor(ctx, user, auditEventRegisterSuccess, MetricRegisterSuccess)
}
