package authcore

import (
	"context"
	"time"
)

// LockoutPhase represents one arm of the account lockout state machine.
type LockoutPhase uint8

const (
	// PhaseUnlocked is an exported constant or variable used by the authentication engine.
	PhaseUnlocked LockoutPhase = iota
	// PhaseLocked is an exported constant or variable used by the authentication engine.
	PhaseLocked
	// PhaseLockExpired marks an account whose lock window has already
	// passed; it behaves as unlocked but the transition stays observable.
	PhaseLockExpired
)

// LockoutState is the tagged variant Unlocked(failedAttempts) | Locked(until).
// It is derived from the user record and written back through
// [UserProvider.SaveLockout]; the user record remains the source of truth.
type LockoutState struct {
	Phase          LockoutPhase
	FailedAttempts int
	Until          time.Time
}

// Locked reports whether the state denies authentication right now.
func (s LockoutState) Locked() bool {
	return s.Phase == PhaseLocked
}

// UserRecord is the account record exchanged with [UserProvider]. It
// carries the credential hash and the persisted lockout fields.
type UserRecord struct {
	UserID         string
	Identifier     string
	PasswordHash   string
	FailedAttempts int
	// LockedUntil is the zero time when the account carries no lock.
	LockedUntil time.Time
}

// CreateUserInput is the input for [UserProvider.CreateUser]. PasswordHash
// is already encoded; the engine hashes the plaintext before the provider
// call.
type CreateUserInput struct {
	Identifier   string
	PasswordHash string
}

// UserProvider is the interface callers must implement to integrate
// authcore with their user database. It covers credential lookup, account
// creation, and persistence of the lockout state machine.
//
// Lookup misses must be reported with [ErrUserNotFound] (directly or
// wrapped); duplicate creation with [ErrAccountExists]. Any other error is
// treated as a backend fault.
type UserProvider interface {
	GetUserByIdentifier(ctx context.Context, identifier string) (UserRecord, error)
	CreateUser(ctx context.Context, input CreateUserInput) (UserRecord, error)
	SaveLockout(ctx context.Context, userID string, state LockoutState) error
}

// AuthResult is returned by [Engine.Validate] for an accepted token.
type AuthResult struct {
	SubjectID string
	TokenID   string
	ExpiresAt time.Time
}

// LoginResult is returned by [Engine.Login] and [Engine.Register].
type LoginResult struct {
	Token     string
	UserID    string
	ExpiresAt time.Time
}
