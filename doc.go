// Package authcore provides the authentication token lifecycle and
// distributed abuse-control core: JWT bearer-token issuance and
// verification, a Redis-backed revocation list, a per-account failed-login
// lockout state machine, and a fixed-window distributed rate limiter shared
// by all server instances.
//
// The package is designed for concurrent, multi-instance server workloads:
// Engine methods are safe to call from multiple goroutines after
// initialization through [Builder.Build]. All cross-instance coordination
// goes through a single Redis client; the user database stays behind the
// caller-supplied [UserProvider] interface.
//
// # Architecture boundaries
//
// authcore is the public surface. It exposes [Engine], [Builder], [Config],
// and value types (AuthResult, LoginResult, LockoutState, AuditEvent). The
// rate limiter lives under internal/ and is never exported; the token codec
// lives in the jwt sub-package; HTTP glue lives in middleware.
//
// # What this package must NOT do
//
//   - Own persistence: the user-record store and the Redis deployment are
//     external collaborators, injected at Build time.
//   - Fail open on revocation or rate-limit reads. A Redis outage is
//     reported as [ErrStoreUnavailable] and denies the request.
//   - Map decisions to HTTP status codes outside of the middleware package.
package authcore
