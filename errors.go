package authgate

import "errors"

var (
	// ErrCredentialsInvalid is returned when the username/password pair does
	// not match an account. It is reported identically whether or not the
	// account has a second factor enabled.
	ErrCredentialsInvalid = errors.New("invalid credentials")
	// ErrTwoFactorRequired signals that credentials were accepted but the
	// request carried no OTP code. It is a flow state, not a hard failure.
	ErrTwoFactorRequired = errors.New("2fa code required")
	// ErrOTPInvalid is returned when a presented TOTP code fails verification.
	ErrOTPInvalid = errors.New("invalid or expired 2fa code")
	// ErrNoSecretConfigured guards the inconsistent state of a 2FA-enabled
	// account that has no enrolled secret.
	ErrNoSecretConfigured = errors.New("2fa secret not configured")
	// ErrRefreshTokenMissing is returned when the refresh cookie is absent.
	ErrRefreshTokenMissing = errors.New("refresh token missing")
	// ErrAccessTokenMissing is returned when the access cookie is absent.
	ErrAccessTokenMissing = errors.New("access token missing")
	// ErrTokenInvalid is returned for tokens with a bad signature or shape.
	ErrTokenInvalid = errors.New("invalid token")
	// ErrTokenExpired is returned for tokens past their embedded expiry.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenTypeMismatch is returned when a token of the wrong type is
	// presented, e.g. an access token to the refresh operation.
	ErrTokenTypeMismatch = errors.New("token type mismatch")
	// ErrDuplicateUsername is returned by registration for a taken username.
	ErrDuplicateUsername = errors.New("username is taken")
	// ErrDuplicateEmail is returned by registration for an email in use.
	ErrDuplicateEmail = errors.New("email is already in use")
	// ErrPasswordMismatch is returned when password and confirmation differ.
	ErrPasswordMismatch = errors.New("passwords do not match")
	// ErrUserNotFound is returned by the user directory for unknown ids.
	ErrUserNotFound = errors.New("user not found")
	// ErrTwoFactorNotFound is returned by [TwoFactorStore.Get] when no config
	// row exists for the user yet.
	ErrTwoFactorNotFound = errors.New("two-factor config not found")
	// ErrLoginRateLimited is returned when login attempts are throttled.
	ErrLoginRateLimited = errors.New("login rate limited")
	// ErrOTPRateLimited is returned when OTP attempts are throttled.
	ErrOTPRateLimited = errors.New("otp attempts rate limited")
	// ErrPasswordPolicy is returned when a password fails hashing policy.
	ErrPasswordPolicy = errors.New("password policy violation")
	// ErrRegistrationInvalid is returned for structurally invalid
	// registration input (empty username or email).
	ErrRegistrationInvalid = errors.New("invalid registration request")
	// ErrDirectoryUnavailable wraps user-directory backend failures.
	ErrDirectoryUnavailable = errors.New("user directory unavailable")
	// ErrTwoFactorUnavailable wraps two-factor store backend failures.
	ErrTwoFactorUnavailable = errors.New("two-factor store unavailable")
	// ErrEngineNotReady is returned when the engine is used before Build or
	// with a missing dependency.
	ErrEngineNotReady = errors.New("engine not initialized")
)
