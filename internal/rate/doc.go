// Package rate provides the Redis-backed distributed rate limiter shared by
// every server instance: fixed-window point consumption per (class,
// identity), with a second-tier block marker for the sensitive auth class.
//
// # Window semantics
//
// Fixed-window counters: INCR + conditional EXPIRE on first hit. The two
// tiers are deliberate — a short counting window plus a longer block once
// exceeded — and must not be collapsed into a single sliding window. Key
// layout under the configured prefix:
//   - <prefix>:api:<identity>   — general budget counter
//   - <prefix>:auth:<identity>  — auth budget counter
//   - <prefix>:auth:b:<identity> — auth block marker
//
// # What this package must NOT do
//
//   - Fail open: a Redis error is surfaced as ErrRedisUnavailable and the
//     caller rejects the request.
//   - Derive client identity; that is the caller's (middleware's) concern.
//   - Be imported outside the authcore module.
package rate
