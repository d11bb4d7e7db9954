package authcore

import "context"

// Logout revokes the presented bearer token. The token must still be
// valid (not yet revoked, not expired); the revocation entry is written
// with TTL equal to the token's remaining lifetime, so the entry never
// outlives the token it revokes. Revoking an already-expired token is a
// no-op: there is nothing left to protect.
//
// Logout may return an error when input validation, dependency calls, or security checks fail.
// Logout does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) Logout(ctx context.Context, token string) error {
	res, err := e.Validate(ctx, token)
	if err != nil {
		return err
	}

	remaining, err := e.jwtManager.RemainingLifetime(token)
	if err != nil {
		return ErrTokenMalformed
	}

	// The revoke write must land even if the caller disconnects
	// mid-request; a half-done logout would let the token replay.
	if err := e.revocations.Revoke(context.WithoutCancel(ctx), token, remaining); err != nil {
		e.metricInc(MetricStoreUnavailable)
		return err
	}

	e.metricInc(MetricLogout)
	e.metricInc(MetricTokenRevoked)
	e.emitAudit(ctx, auditEventLogout, true, res.SubjectID, nil, nil)
	e.emitAudit(ctx, auditEventTokenRevoked, true, res.SubjectID, nil, func() map[string]string {
		return map[string]string{
			"jti": res.TokenID,
		}
	})

	return nil
}
