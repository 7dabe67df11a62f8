package authgate

import (
	"context"
	"errors"
	"time"
)

const (
	auditEventLoginSuccess        = "login_success"
	auditEventLoginFailure        = "login_failure"
	auditEventLoginRateLimited    = "login_rate_limited"
	auditEventTwoFactorRequired   = "twofactor_required"
	auditEventOTPSuccess          = "otp_success"
	auditEventOTPFailure          = "otp_failure"
	auditEventSecretProvisioned   = "twofactor_secret_provisioned"
	auditEventTwoFactorEnabled    = "twofactor_enabled"
	auditEventTwoFactorDisabled   = "twofactor_disabled"
	auditEventRefreshSuccess      = "refresh_success"
	auditEventRefreshInvalid      = "refresh_invalid"
	auditEventLogout              = "logout"
	auditEventRegistrationSuccess = "registration_success"
	auditEventRegistrationFailure = "registration_failure"
)

// AuditErrorCode defines a public type used by authgate APIs.
//
// AuditErrorCode instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditErrorCode string

const (
	auditErrInvalidCredentials AuditErrorCode = "invalid_credentials"
	auditErrRateLimited        AuditErrorCode = "rate_limited"
	auditErrOTPRequired        AuditErrorCode = "otp_required"
	auditErrOTPInvalid         AuditErrorCode = "otp_invalid"
	auditErrNoSecret           AuditErrorCode = "no_secret_configured"
	auditErrInvalidToken       AuditErrorCode = "invalid_token"
	auditErrTokenExpired       AuditErrorCode = "token_expired"
	auditErrTokenType          AuditErrorCode = "token_type_mismatch"
	auditErrDuplicate          AuditErrorCode = "duplicate"
	auditErrPasswordMismatch   AuditErrorCode = "password_mismatch"
	auditErrPasswordPolicy     AuditErrorCode = "password_policy"
	auditErrUserNotFound       AuditErrorCode = "user_not_found"
	auditErrUnavailable        AuditErrorCode = "backend_unavailable"
)

func (e *Engine) emitAudit(
	ctx context.Context,
	eventType string,
	success bool,
	userID string,
	err error,
	metadataBuilder func() map[string]string,
) {
	if e == nil || e.audit == nil {
		return
	}

	var metadata map[string]string
	if metadataBuilder != nil {
		metadata = metadataBuilder()
	}

	event := AuditEvent{
		Timestamp: time.Now().UTC(),
		EventType: eventType,
		UserID:    userID,
		IP:        clientIPFromContext(ctx),
		Success:   success,
		Metadata:  metadata,
	}
	if code := auditErrorCode(err); code != "" {
		event.Error = string(code)
	}

	e.audit.Emit(ctx, event)
}

func auditErrorCode(err error) AuditErrorCode {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, ErrCredentialsInvalid):
		return auditErrInvalidCredentials
	case errors.Is(err, ErrLoginRateLimited), errors.Is(err, ErrOTPRateLimited):
		return auditErrRateLimited
	case errors.Is(err, ErrTwoFactorRequired):
		return auditErrOTPRequired
	case errors.Is(err, ErrOTPInvalid):
		return auditErrOTPInvalid
	case errors.Is(err, ErrNoSecretConfigured):
		return auditErrNoSecret
	case errors.Is(err, ErrTokenExpired):
		return auditErrTokenExpired
	case errors.Is(err, ErrTokenTypeMismatch):
		return auditErrTokenType
	case errors.Is(err, ErrTokenInvalid):
		return auditErrInvalidToken
	case errors.Is(err, ErrDuplicateUsername), errors.Is(err, ErrDuplicateEmail):
		return auditErrDuplicate
	case errors.Is(err, ErrPasswordMismatch):
		return auditErrPasswordMismatch
	case errors.Is(err, ErrPasswordPolicy):
		return auditErrPasswordPolicy
	case errors.Is(err, ErrUserNotFound):
		return auditErrUserNotFound
	case errors.Is(err, ErrDirectoryUnavailable), errors.Is(err, ErrTwoFactorUnavailable):
		return auditErrUnavailable
	}
	return "internal_error"
}
