package pgstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/charfolio/authgate"
	"github.com/jackc/pgx/v5"
)

var _ authgate.TwoFactorStore = (*TwoFactorRepo)(nil)

// TwoFactorRepo is the Postgres-backed [authgate.TwoFactorStore].
type TwoFactorRepo struct {
	db *DB
}

// NewTwoFactorRepo describes the newtwofactorrepo operation and its observable behavior.
//
// NewTwoFactorRepo may return an error when input validation, dependency calls, or security checks fail.
// NewTwoFactorRepo does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewTwoFactorRepo(db *DB) *TwoFactorRepo { return &TwoFactorRepo{db: db} }

const (
	qTwoFactorGet = `
SELECT user_id, is_enabled, secret
FROM two_factor_configs
WHERE user_id = $1;`

	qTwoFactorInsert = `
INSERT INTO two_factor_configs (user_id, is_enabled, secret)
VALUES ($1, FALSE, '')
ON CONFLICT (user_id) DO NOTHING;`

	qTwoFactorSetSecret = `
UPDATE two_factor_configs
SET secret = $2
WHERE user_id = $1 AND secret = '';`

	qTwoFactorSetEnabled = `
UPDATE two_factor_configs
SET is_enabled = $2
WHERE user_id = $1
RETURNING user_id, is_enabled, secret;`
)

// Get describes the get operation and its observable behavior.
//
// Get may return an error when input validation, dependency calls, or security checks fail.
// Get does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (r *TwoFactorRepo) Get(ctx context.Context, userID string) (*authgate.TwoFactorConfig, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	return r.get(ctx, userID)
}

// GetOrCreate inserts the user's config row if absent and returns whichever
// row is stored. ON CONFLICT DO NOTHING makes the insert race-safe; the
// follow-up select observes the winner.
func (r *TwoFactorRepo) GetOrCreate(ctx context.Context, userID string) (*authgate.TwoFactorConfig, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	if _, err := r.db.Pool.Exec(ctx, qTwoFactorInsert, userID); err != nil {
		return nil, fmt.Errorf("two-factor insert: %w", err)
	}
	return r.get(ctx, userID)
}

// SetSecret persists the candidate only when no secret is stored yet and
// returns the stored secret either way.
func (r *TwoFactorRepo) SetSecret(ctx context.Context, userID, secret string) (string, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	if _, err := r.db.Pool.Exec(ctx, qTwoFactorSetSecret, userID, secret); err != nil {
		return "", fmt.Errorf("two-factor set secret: %w", err)
	}

	cfg, err := r.get(ctx, userID)
	if err != nil {
		return "", err
	}
	return cfg.Secret, nil
}

// SetEnabled describes the setenabled operation and its observable behavior.
//
// SetEnabled may return an error when input validation, dependency calls, or security checks fail.
// SetEnabled does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (r *TwoFactorRepo) SetEnabled(ctx context.Context, userID string, enabled bool) (*authgate.TwoFactorConfig, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	var cfg authgate.TwoFactorConfig
	err := r.db.Pool.QueryRow(ctx, qTwoFactorSetEnabled, userID, enabled).
		Scan(&cfg.UserID, &cfg.Enabled, &cfg.Secret)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, authgate.ErrTwoFactorNotFound
		}
		return nil, fmt.Errorf("two-factor set enabled: %w", err)
	}
	return &cfg, nil
}

func (r *TwoFactorRepo) get(ctx context.Context, userID string) (*authgate.TwoFactorConfig, error) {
	var cfg authgate.TwoFactorConfig
	err := r.db.Pool.QueryRow(ctx, qTwoFactorGet, userID).
		Scan(&cfg.UserID, &cfg.Enabled, &cfg.Secret)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, authgate.ErrTwoFactorNotFound
		}
		return nil, fmt.Errorf("two-factor select: %w", err)
	}
	return &cfg, nil
}
