package pgstore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charfolio/authgate"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var _ authgate.UserDirectory = (*UserRepo)(nil)

// UserRepo is the Postgres-backed [authgate.UserDirectory].
type UserRepo struct {
	db *DB
}

// NewUserRepo describes the newuserrepo operation and its observable behavior.
//
// NewUserRepo may return an error when input validation, dependency calls, or security checks fail.
// NewUserRepo does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewUserRepo(db *DB) *UserRepo { return &UserRepo{db: db} }

const (
	qUserInsert = `
INSERT INTO users (id, username, email, first_name, last_name, password_hash)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id, username, email, first_name, last_name, password_hash;`

	qUserByID = `
SELECT id, username, email, first_name, last_name, password_hash
FROM users
WHERE id = $1;`

	qUserByUsername = `
SELECT id, username, email, first_name, last_name, password_hash
FROM users
WHERE lower(username) = lower($1);`
)

// Create describes the create operation and its observable behavior.
//
// Create may return an error when input validation, dependency calls, or security checks fail.
// Create does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (r *UserRepo) Create(ctx context.Context, input authgate.CreateUserInput) (authgate.UserRecord, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	var out authgate.UserRecord
	err := scanUser(r.db.Pool.QueryRow(ctx, qUserInsert,
		uuid.NewString(),
		input.Username,
		input.Email,
		input.FirstName,
		input.LastName,
		input.PasswordHash,
	), &out)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			if strings.Contains(pgErr.ConstraintName, "email") {
				return authgate.UserRecord{}, authgate.ErrDuplicateEmail
			}
			return authgate.UserRecord{}, authgate.ErrDuplicateUsername
		}
		return authgate.UserRecord{}, fmt.Errorf("user insert: %w", err)
	}
	return out, nil
}

// GetByID describes the getbyid operation and its observable behavior.
//
// GetByID may return an error when input validation, dependency calls, or security checks fail.
// GetByID does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (r *UserRepo) GetByID(ctx context.Context, id string) (authgate.UserRecord, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	var out authgate.UserRecord
	if err := scanUser(r.db.Pool.QueryRow(ctx, qUserByID, id), &out); err != nil {
		return authgate.UserRecord{}, err
	}
	return out, nil
}

// GetByUsername describes the getbyusername operation and its observable behavior.
//
// GetByUsername may return an error when input validation, dependency calls, or security checks fail.
// GetByUsername does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (authgate.UserRecord, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	var out authgate.UserRecord
	if err := scanUser(r.db.Pool.QueryRow(ctx, qUserByUsername, username), &out); err != nil {
		return authgate.UserRecord{}, err
	}
	return out, nil
}

func scanUser(row pgx.Row, out *authgate.UserRecord) error {
	err := row.Scan(&out.ID, &out.Username, &out.Email, &out.FirstName, &out.LastName, &out.PasswordHash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return authgate.ErrUserNotFound
		}
		return fmt.Errorf("scan user: %w", err)
	}
	return nil
}
