// Package rate provides internal primitives used to build Redis-backed rate limit keys,
// errors, and limiter behavior for security-sensitive authentication workflows.
//
// # Window semantics
//
// Fixed-window counters: INCR + conditional EXPIRE on first hit. Key prefixes:
//   - al:  — login per-user
//   - ali: — login per-IP
//   - ao:  — one-time-code verification per-user
//
// # What this package must NOT do
//
//   - Implement domain-specific throttling policies (those belong to the Engine config).
//   - Be imported outside the authgate module.
package rate
