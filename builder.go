package authgate

import (
	"errors"
	"strings"
	"time"

	"github.com/charfolio/authgate/internal/audit"
	"github.com/charfolio/authgate/internal/rate"
	"github.com/charfolio/authgate/jwt"
	"github.com/charfolio/authgate/password"
	"github.com/redis/go-redis/v9"
)

// Builder defines a public type used by authgate APIs.
//
// Builder instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Builder struct {
	config Config
	redis  redis.UniversalClient

	directory UserDirectory
	twoFactor TwoFactorStore
	auditSink AuditSink
	now       func() time.Time

	built bool
}

// New describes the new operation and its observable behavior.
//
// New may return an error when input validation, dependency calls, or security checks fail.
// New does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func New() *Builder {
	return &Builder{
		config: DefaultConfig(),
	}
}

// WithConfig describes the withconfig operation and its observable behavior.
//
// WithConfig may return an error when input validation, dependency calls, or security checks fail.
// WithConfig does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithRedis supplies the redis client backing the login/OTP throttling
// counters. Optional; without it throttling is disabled.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithUserDirectory describes the withuserdirectory operation and its observable behavior.
//
// WithUserDirectory may return an error when input validation, dependency calls, or security checks fail.
// WithUserDirectory does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithUserDirectory(dir UserDirectory) *Builder {
	b.directory = dir
	return b
}

// WithTwoFactorStore describes the withtwofactorstore operation and its observable behavior.
//
// WithTwoFactorStore may return an error when input validation, dependency calls, or security checks fail.
// WithTwoFactorStore does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithTwoFactorStore(store TwoFactorStore) *Builder {
	b.twoFactor = store
	return b
}

// WithAuditSink describes the withauditsink operation and its observable behavior.
//
// WithAuditSink may return an error when input validation, dependency calls, or security checks fail.
// WithAuditSink does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithClock injects the process-wide time source used for TOTP counters and
// token validation. Tests rely on this for deterministic verification.
func (b *Builder) WithClock(now func() time.Time) *Builder {
	b.now = now
	return b
}

// WithMetricsEnabled describes the withmetricsenabled operation and its observable behavior.
//
// WithMetricsEnabled may return an error when input validation, dependency calls, or security checks fail.
// WithMetricsEnabled does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// Build describes the build operation and its observable behavior.
//
// Build may return an error when input validation, dependency calls, or security checks fail.
// Build does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if b.directory == nil {
		return nil, errors.New("user directory required")
	}
	if b.twoFactor == nil {
		return nil, errors.New("two-factor store required")
	}

	now := b.now
	if now == nil {
		now = time.Now
	}

	hasher, err := password.NewArgon2(password.Config{
		Memory:      cfg.Password.Memory,
		Time:        cfg.Password.Time,
		Parallelism: cfg.Password.Parallelism,
		SaltLength:  cfg.Password.SaltLength,
		KeyLength:   cfg.Password.KeyLength,
	})
	if err != nil {
		return nil, err
	}

	jwtManager, err := jwt.NewManager(jwt.Config{
		AccessTTL:     cfg.JWT.AccessTTL,
		RefreshTTL:    cfg.JWT.RefreshTTL,
		SigningMethod: jwt.SigningMethod(strings.ToLower(cfg.JWT.SigningMethod)),
		PrivateKey:    cfg.JWT.PrivateKey,
		PublicKey:     cfg.JWT.PublicKey,
		Issuer:        cfg.JWT.Issuer,
		Leeway:        cfg.JWT.Leeway,
		Now:           now,
	})
	if err != nil {
		return nil, err
	}

	var limiter *rate.Limiter
	if b.redis != nil && cfg.Throttle.Enabled {
		limiter = rate.New(b.redis, rate.Config{
			EnableIPThrottle: cfg.Throttle.EnableIPThrottle,
			MaxLoginAttempts: cfg.Throttle.MaxLoginAttempts,
			LoginCooldown:    cfg.Throttle.LoginCooldown,
			MaxOTPAttempts:   cfg.Throttle.MaxOTPAttempts,
			OTPCooldown:      cfg.Throttle.OTPCooldown,
		})
	}

	sink := b.auditSink
	dispatcher := audit.NewDispatcher(audit.Config{
		Enabled:    cfg.Audit.Enabled,
		BufferSize: cfg.Audit.BufferSize,
		DropIfFull: cfg.Audit.DropIfFull,
	}, sink)

	b.built = true

	return &Engine{
		config:       cfg,
		jwtManager:   jwtManager,
		totp:         newTOTPManager(cfg.TOTP),
		passwordHash: hasher,
		limiter:      limiter,
		audit:        dispatcher,
		metrics:      NewMetrics(cfg.Metrics),
		directory:    b.directory,
		twoFactor:    b.twoFactor,
		now:          now,
	}, nil
}
