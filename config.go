package authgate

import (
	"errors"
	"strings"
	"time"
)

// Config defines a public type used by authgate APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	JWT      JWTConfig
	TOTP     TOTPConfig
	Password PasswordConfig
	Throttle ThrottleConfig
	Audit    AuditConfig
	Metrics  MetricsConfig
}

/*
====================================
JWT CONFIG
====================================
*/

// JWTConfig defines a public type used by authgate APIs.
//
// JWTConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type JWTConfig struct {
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	SigningMethod string // "hs256" (default), "ed25519" optional
	PrivateKey    []byte
	PublicKey     []byte
	Issuer        string
	Leeway        time.Duration
}

/*
====================================
TOTP CONFIG
====================================
*/

// TOTPConfig defines a public type used by authgate APIs.
//
// TOTPConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type TOTPConfig struct {
	Issuer    string
	Digits    int
	Period    int
	Algorithm string
	// Skew is the tolerated clock drift in time steps on either side of now.
	// Login and enable/disable verification both run with this window.
	Skew int
}

// PasswordConfig defines a public type used by authgate APIs.
//
// PasswordConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type PasswordConfig struct {
	Memory      uint32 // in KB
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// ThrottleConfig controls the redis fixed-window counters applied to login
// and OTP attempts. All fields are ignored when no redis client is supplied
// to the builder; the gateway then relies on the hosting infrastructure's
// throttling alone.
type ThrottleConfig struct {
	Enabled          bool
	EnableIPThrottle bool
	MaxLoginAttempts int
	LoginCooldown    time.Duration
	MaxOTPAttempts   int
	OTPCooldown      time.Duration
}

// AuditConfig defines a public type used by authgate APIs.
//
// AuditConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig defines a public type used by authgate APIs.
//
// MetricsConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricsConfig struct {
	Enabled bool
}

// DefaultConfig returns the production preset: 15-minute access tokens,
// 7-day refresh tokens, RFC 6238 defaults for TOTP (SHA1, 6 digits, 30s
// period, ±1 step), and moderate argon2id parameters. Signing keys must
// still be supplied by the caller.
func DefaultConfig() Config {
	return Config{
		JWT: JWTConfig{
			AccessTTL:     15 * time.Minute,
			RefreshTTL:    7 * 24 * time.Hour,
			SigningMethod: "hs256",
			Leeway:        30 * time.Second,
		},
		TOTP: TOTPConfig{
			Issuer:    "authgate",
			Digits:    6,
			Period:    30,
			Algorithm: "SHA1",
			Skew:      1,
		},
		Password: PasswordConfig{
			Memory:      64 * 1024,
			Time:        3,
			Parallelism: 2,
			SaltLength:  16,
			KeyLength:   32,
		},
		Throttle: ThrottleConfig{
			Enabled:          true,
			EnableIPThrottle: true,
			MaxLoginAttempts: 5,
			LoginCooldown:    time.Minute,
			MaxOTPAttempts:   5,
			OTPCooldown:      time.Minute,
		},
		Audit: AuditConfig{
			Enabled:    true,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

// Validate describes the validate operation and its observable behavior.
//
// Validate may return an error when input validation, dependency calls, or security checks fail.
// Validate does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c Config) Validate() error {
	if c.JWT.AccessTTL <= 0 || c.JWT.RefreshTTL <= 0 {
		return errors.New("invalid TTL configuration")
	}
	if c.JWT.RefreshTTL < c.JWT.AccessTTL {
		return errors.New("refresh TTL must not be shorter than access TTL")
	}
	switch strings.ToLower(c.JWT.SigningMethod) {
	case "hs256", "ed25519":
	default:
		return errors.New("unsupported signing method")
	}
	if len(c.JWT.PrivateKey) == 0 {
		return errors.New("signing key required")
	}
	if c.TOTP.Digits < 6 || c.TOTP.Digits > 8 {
		return errors.New("totp digits must be 6..8")
	}
	if c.TOTP.Period <= 0 {
		return errors.New("totp period must be positive")
	}
	if c.TOTP.Skew < 0 || c.TOTP.Skew > 2 {
		return errors.New("totp skew must be 0..2")
	}
	if c.Throttle.Enabled {
		if c.Throttle.MaxLoginAttempts <= 0 || c.Throttle.MaxOTPAttempts <= 0 {
			return errors.New("throttle attempt budgets must be positive")
		}
		if c.Throttle.LoginCooldown <= 0 || c.Throttle.OTPCooldown <= 0 {
			return errors.New("throttle cooldowns must be positive")
		}
	}
	return nil
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.JWT.PrivateKey = append([]byte(nil), cfg.JWT.PrivateKey...)
	out.JWT.PublicKey = append([]byte(nil), cfg.JWT.PublicKey...)
	return out
}
