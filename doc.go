// Package authgate implements a cookie-session authentication gateway: JWT
// access/refresh token issuance, an optional TOTP second factor that users
// enable per account, and the login orchestration that decides between
// issuing tokens, rejecting the attempt, or parking it behind the second
// factor.
//
// The package is designed for concurrent server workloads: Engine methods
// are safe to call from multiple goroutines after initialization through
// [Builder.Build].
//
// # Architecture boundaries
//
// authgate is the public surface. It exposes [Engine], [Builder], [Config],
// the [UserDirectory] and [TwoFactorStore] integration interfaces, and value
// types (LoginResult, TokenClaims, TwoFactorStatus). Internal coordination —
// audit dispatch, throttling counters, Postgres repositories — lives under
// internal/ and is never exported. HTTP transport, including the cookie
// mapping that keeps token values out of response bodies, lives in httpapi.
//
// # What this package must NOT do
//
//   - Place a token value in any response body or log line.
//   - Keep per-session server state: token validity is a pure function of
//     signature and embedded expiry.
//   - Rotate refresh tokens on refresh, or maintain a revocation list.
package authgate
