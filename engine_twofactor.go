package authgate

import (
	"context"
	"errors"
	"fmt"

	"github.com/charfolio/authgate/internal/rate"
)

// TwoFactorInfo returns the caller's enrollment state, provisioning a shared
// secret on first call. The secret is generated lazily, stored at most once,
// and returned on every subsequent call together with its otpauth:// URI so
// the frontend can re-render the QR code. Two racing first calls converge on
// the same stored secret.
func (e *Engine) TwoFactorInfo(ctx context.Context, userID string) (TwoFactorStatus, error) {
	if e == nil || e.twoFactor == nil || e.directory == nil {
		return TwoFactorStatus{}, ErrEngineNotReady
	}
	if userID == "" {
		return TwoFactorStatus{}, ErrUserNotFound
	}

	user, err := e.directory.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return TwoFactorStatus{}, ErrUserNotFound
		}
		return TwoFactorStatus{}, fmt.Errorf("%w: %v", ErrDirectoryUnavailable, err)
	}

	cfg, err := e.twoFactor.GetOrCreate(ctx, userID)
	if err != nil {
		return TwoFactorStatus{}, fmt.Errorf("%w: %v", ErrTwoFactorUnavailable, err)
	}

	secret := cfg.Secret
	if secret == "" {
		candidate, err := e.totp.GenerateSecret()
		if err != nil {
			return TwoFactorStatus{}, err
		}
		secret, err = e.twoFactor.SetSecret(ctx, userID, candidate)
		if err != nil {
			return TwoFactorStatus{}, fmt.Errorf("%w: %v", ErrTwoFactorUnavailable, err)
		}
		if secret == candidate {
			e.metricInc(MetricSecretProvisioned)
			e.emitAudit(ctx, auditEventSecretProvisioned, true, userID, nil, nil)
		}
	}

	account := user.Username
	if account == "" {
		account = user.ID
	}

	return TwoFactorStatus{
		Enabled:         cfg.Enabled,
		HasSecret:       true,
		Secret:          secret,
		ProvisioningURI: e.totp.ProvisionURI(secret, account),
	}, nil
}

// SetTwoFactorEnabled toggles the second factor on or off. Both directions
// demand a currently valid code, so disabling 2FA proves possession of the
// authenticator just like enabling it does. The stored secret survives a
// disable and is reused on re-enable.
func (e *Engine) SetTwoFactorEnabled(ctx context.Context, userID, code string, enable bool) (TwoFactorStatus, error) {
	if e == nil || e.twoFactor == nil {
		return TwoFactorStatus{}, ErrEngineNotReady
	}
	if userID == "" {
		return TwoFactorStatus{}, ErrUserNotFound
	}

	cfg, err := e.twoFactor.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrTwoFactorNotFound) {
			return TwoFactorStatus{}, ErrNoSecretConfigured
		}
		return TwoFactorStatus{}, fmt.Errorf("%w: %v", ErrTwoFactorUnavailable, err)
	}
	if cfg.Secret == "" {
		return TwoFactorStatus{}, ErrNoSecretConfigured
	}

	if e.limiter != nil {
		if err := e.limiter.CheckOTP(ctx, userID); err != nil {
			if errors.Is(err, rate.ErrRateLimited) {
				e.metricInc(MetricOTPRateLimited)
				return TwoFactorStatus{}, ErrOTPRateLimited
			}
			return TwoFactorStatus{}, fmt.Errorf("otp throttle: %w", err)
		}
	}

	ok, err := e.totp.VerifyCode(cfg.Secret, code, e.config.TOTP.Skew, e.now())
	if err != nil || !ok {
		if e.limiter != nil {
			_ = e.limiter.IncrementOTP(ctx, userID)
		}
		e.metricInc(MetricOTPFailure)
		e.emitAudit(ctx, auditEventOTPFailure, false, userID, ErrOTPInvalid, nil)
		return TwoFactorStatus{}, ErrOTPInvalid
	}
	if e.limiter != nil {
		_ = e.limiter.ResetOTP(ctx, userID)
	}

	updated, err := e.twoFactor.SetEnabled(ctx, userID, enable)
	if err != nil {
		return TwoFactorStatus{}, fmt.Errorf("%w: %v", ErrTwoFactorUnavailable, err)
	}

	if enable {
		e.metricInc(MetricTwoFactorEnabled)
		e.emitAudit(ctx, auditEventTwoFactorEnabled, true, userID, nil, nil)
	} else {
		e.metricInc(MetricTwoFactorDisabled)
		e.emitAudit(ctx, auditEventTwoFactorDisabled, true, userID, nil, nil)
	}

	return TwoFactorStatus{
		Enabled:   updated.Enabled,
		HasSecret: updated.Secret != "",
		Secret:    updated.Secret,
	}, nil
}
