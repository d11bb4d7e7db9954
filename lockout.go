package authcore

import "time"

// lockoutStateOf derives the tagged lockout state from the persisted
// record fields at the given instant. A lock whose deadline has passed is
// reported as PhaseLockExpired rather than silently unlocked, so the
// implicit-unlock transition stays explicit.
func lockoutStateOf(rec UserRecord, now time.Time) LockoutState {
	if !rec.LockedUntil.IsZero() && rec.LockedUntil.After(now) {
		return LockoutState{
			Phase:          PhaseLocked,
			FailedAttempts: rec.FailedAttempts,
			Until:          rec.LockedUntil,
		}
	}
	if !rec.LockedUntil.IsZero() {
		return LockoutState{
			Phase:          PhaseLockExpired,
			FailedAttempts: rec.FailedAttempts,
			Until:          rec.LockedUntil,
		}
	}
	return LockoutState{
		Phase:          PhaseUnlocked,
		FailedAttempts: rec.FailedAttempts,
	}
}

// lockoutAfterFailure advances the state machine for a failed password
// check: Unlocked(n) → Unlocked(n+1) below the threshold, or
// Locked(now+duration) when the threshold is reached. A failure against an
// expired lock restarts the count at one.
func lockoutAfterFailure(cfg LockoutConfig, state LockoutState, now time.Time) LockoutState {
	if state.Phase == PhaseLocked {
		return state
	}

	attempts := state.FailedAttempts + 1
	if state.Phase == PhaseLockExpired {
		attempts = 1
	}

	if attempts >= cfg.Threshold {
		return LockoutState{
			Phase:          PhaseLocked,
			FailedAttempts: attempts,
			Until:          now.Add(cfg.Duration),
		}
	}

	return LockoutState{
		Phase:          PhaseUnlocked,
		FailedAttempts: attempts,
	}
}

// lockoutAfterSuccess resets the machine to Unlocked(0) from any state.
func lockoutAfterSuccess() LockoutState {
	return LockoutState{Phase: PhaseUnlocked}
}
