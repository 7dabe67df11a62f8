// Package memstore provides in-memory implementations of the engine's
// user-directory and two-factor-store boundaries. Intended for tests and
// single-process development setups; production deployments use the
// Postgres-backed stores.
package memstore
