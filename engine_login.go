package authgate

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charfolio/authgate/internal/rate"
)

// Login runs the full credential + second-factor orchestration for one
// authentication attempt. The outcome is one of three shapes:
//
//   - tokens issued: both tokens set, TwoFactorRequired false, nil error;
//   - second factor required: TwoFactorRequired true, no tokens, nil error —
//     the caller must re-submit credentials together with a code;
//   - rejected: zero result and a sentinel error.
//
// Credentials are re-verified on every call, including the code-carrying
// retry of a TwoFactorRequired outcome; no partial login state is kept
// between calls.
func (e *Engine) Login(ctx context.Context, username, password, otpCode string) (LoginResult, error) {
	if e == nil || e.directory == nil || e.twoFactor == nil {
		return LoginResult{}, ErrEngineNotReady
	}

	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		e.metricInc(MetricLoginFailure)
		return LoginResult{}, ErrCredentialsInvalid
	}

	ip := clientIPFromContext(ctx)

	if e.limiter != nil {
		if err := e.limiter.CheckLogin(ctx, username, ip); err != nil {
			if errors.Is(err, rate.ErrRateLimited) {
				e.metricInc(MetricLoginRateLimited)
				e.emitAudit(ctx, auditEventLoginRateLimited, false, "", ErrLoginRateLimited, nil)
				return LoginResult{}, ErrLoginRateLimited
			}
			return LoginResult{}, fmt.Errorf("login throttle: %w", err)
		}
	}

	user, err := e.directory.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return LoginResult{}, e.rejectLogin(ctx, username, ip, "")
		}
		return LoginResult{}, fmt.Errorf("%w: %v", ErrDirectoryUnavailable, err)
	}

	ok, err := e.passwordHash.Verify(password, user.PasswordHash)
	if err != nil || !ok {
		return LoginResult{}, e.rejectLogin(ctx, username, ip, user.ID)
	}

	otpVerified := false
	cfg, err := e.twoFactor.Get(ctx, user.ID)
	if err != nil && !errors.Is(err, ErrTwoFactorNotFound) {
		return LoginResult{}, fmt.Errorf("%w: %v", ErrTwoFactorUnavailable, err)
	}
	if cfg != nil && cfg.Enabled {
		if otpCode == "" {
			e.metricInc(MetricTwoFactorRequired)
			e.emitAudit(ctx, auditEventTwoFactorRequired, false, user.ID, ErrTwoFactorRequired, nil)
			return LoginResult{TwoFactorRequired: true, UserID: user.ID}, nil
		}

		if err := e.verifyLoginOTP(ctx, user.ID, cfg, otpCode); err != nil {
			return LoginResult{}, err
		}
		otpVerified = true
	}

	access, refresh, err := e.jwtManager.CreatePair(user.ID)
	if err != nil {
		return LoginResult{}, err
	}

	if e.limiter != nil {
		_ = e.limiter.ResetLogin(ctx, username, ip)
	}

	e.metricInc(MetricLoginSuccess)
	if otpVerified {
		e.metricInc(MetricOTPSuccess)
	}
	e.emitAudit(ctx, auditEventLoginSuccess, true, user.ID, nil, func() map[string]string {
		if !otpVerified {
			return nil
		}
		return map[string]string{"second_factor": "totp"}
	})

	return LoginResult{
		AccessToken:  access,
		RefreshToken: refresh,
		UserID:       user.ID,
	}, nil
}

// rejectLogin charges the failed attempt against the throttle window and
// reports the same ErrCredentialsInvalid whether the account exists or not.
func (e *Engine) rejectLogin(ctx context.Context, username, ip, userID string) error {
	if e.limiter != nil {
		if err := e.limiter.IncrementLogin(ctx, username, ip); errors.Is(err, rate.ErrRateLimited) {
			e.metricInc(MetricLoginRateLimited)
			e.emitAudit(ctx, auditEventLoginRateLimited, false, userID, ErrLoginRateLimited, nil)
			return ErrLoginRateLimited
		}
	}

	e.metricInc(MetricLoginFailure)
	e.emitAudit(ctx, auditEventLoginFailure, false, userID, ErrCredentialsInvalid, nil)
	return ErrCredentialsInvalid
}

func (e *Engine) verifyLoginOTP(ctx context.Context, userID string, cfg *TwoFactorConfig, otpCode string) error {
	if e.limiter != nil {
		if err := e.limiter.CheckOTP(ctx, userID); err != nil {
			if errors.Is(err, rate.ErrRateLimited) {
				e.metricInc(MetricOTPRateLimited)
				e.emitAudit(ctx, auditEventOTPFailure, false, userID, ErrOTPRateLimited, nil)
				return ErrOTPRateLimited
			}
			return fmt.Errorf("otp throttle: %w", err)
		}
	}

	if cfg.Secret == "" {
		e.metricInc(MetricOTPFailure)
		e.emitAudit(ctx, auditEventOTPFailure, false, userID, ErrNoSecretConfigured, nil)
		return ErrNoSecretConfigured
	}

	ok, err := e.totp.VerifyCode(cfg.Secret, otpCode, e.config.TOTP.Skew, e.now())
	if err != nil || !ok {
		if e.limiter != nil {
			_ = e.limiter.IncrementOTP(ctx, userID)
		}
		e.metricInc(MetricOTPFailure)
		e.emitAudit(ctx, auditEventOTPFailure, false, userID, ErrOTPInvalid, nil)
		return ErrOTPInvalid
	}

	if e.limiter != nil {
		_ = e.limiter.ResetOTP(ctx, userID)
	}
	return nil
}
