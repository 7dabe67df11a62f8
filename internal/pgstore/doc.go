// Package pgstore implements the engine's user-directory and
// two-factor-store boundaries on PostgreSQL via pgx.
//
// # Concurrency
//
// Two-factor row creation relies on the UNIQUE(user_id) constraint plus
// INSERT ... ON CONFLICT DO NOTHING, so racing first-time requests for the
// same user converge on a single row without advisory locks.
package pgstore
