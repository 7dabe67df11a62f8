package authgate

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Register creates an account through the user directory. Password and
// confirmation must match before any hashing work happens. Duplicate
// username/email surface as their own sentinels so the transport can key
// field-level error messages off them.
func (e *Engine) Register(ctx context.Context, req RegisterRequest) (UserRecord, error) {
	if e == nil || e.directory == nil {
		return UserRecord{}, ErrEngineNotReady
	}

	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)

	if req.Username == "" || req.Email == "" {
		return UserRecord{}, ErrRegistrationInvalid
	}
	if req.Password != req.PasswordConfirm {
		e.emitAudit(ctx, auditEventRegistrationFailure, false, "", ErrPasswordMismatch, nil)
		return UserRecord{}, ErrPasswordMismatch
	}

	hash, err := e.passwordHash.Hash(req.Password)
	if err != nil {
		e.emitAudit(ctx, auditEventRegistrationFailure, false, "", ErrPasswordPolicy, nil)
		return UserRecord{}, fmt.Errorf("%w: %v", ErrPasswordPolicy, err)
	}

	user, err := e.directory.Create(ctx, CreateUserInput{
		Username:     req.Username,
		Email:        req.Email,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		PasswordHash: hash,
	})
	if err != nil {
		if errors.Is(err, ErrDuplicateUsername) || errors.Is(err, ErrDuplicateEmail) {
			e.metricInc(MetricRegistrationDuplicate)
			e.emitAudit(ctx, auditEventRegistrationFailure, false, "", err, nil)
			return UserRecord{}, err
		}
		return UserRecord{}, fmt.Errorf("%w: %v", ErrDirectoryUnavailable, err)
	}

	e.metricInc(MetricRegistrationSuccess)
	e.emitAudit(ctx, auditEventRegistrationSuccess, true, user.ID, nil, nil)
	return user, nil
}

// CurrentUser resolves a verified access token to its account record.
func (e *Engine) CurrentUser(ctx context.Context, accessToken string) (UserRecord, error) {
	if e == nil || e.directory == nil {
		return UserRecord{}, ErrEngineNotReady
	}

	claims, err := e.VerifyAccess(ctx, accessToken)
	if err != nil {
		return UserRecord{}, err
	}

	user, err := e.directory.GetByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return UserRecord{}, ErrUserNotFound
		}
		return UserRecord{}, fmt.Errorf("%w: %v", ErrDirectoryUnavailable, err)
	}
	return user, nil
}
