// Package middleware exposes HTTP adapters for the authcore engine:
// bearer-token guarding of protected routes and distributed rate limiting
// keyed by client network identity.
//
// # Guards
//
//   - [Guard] — reads the Authorization header, calls Engine.Validate
//     (revocation first, fail-closed), and injects the result into the
//     request context.
//   - [RateLimitAPI] / [RateLimitAuth] — consume one point from the
//     general or sensitive budget before the handler runs, answering 429
//     with a Retry-After header on rejection.
//
// # Architecture boundaries
//
// This package translates HTTP semantics into Engine calls and Engine
// decisions into status codes. It does NOT implement authentication or
// throttling logic itself.
//
// # What this package must NOT do
//
//   - Parse or create JWTs directly (delegates to Engine).
//   - Access Redis (Engine handles I/O).
//   - Trust forwarded-address headers unless the caller opted in.
package middleware
