package config

import (
	"time"

	"github.com/charfolio/authgate"
	"github.com/charfolio/authgate/internal/pgstore"
)

// App identifies the running service instance.
type App struct {
	Name    string `mapstructure:"name"`
	Env     string `mapstructure:"env"`
	Version string `mapstructure:"version"`
}

// Server holds HTTP listener tuning.
type Server struct {
	HTTPAddr        string        `mapstructure:"http_addr"`
	MetricsAddr     string        `mapstructure:"metrics_addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	GracefulTimeout time.Duration `mapstructure:"graceful_timeout"`
}

// JWT holds signing configuration. Secret is the HS256 key; key files are
// used for ed25519.
type JWT struct {
	Secret         string        `mapstructure:"secret"`
	SigningMethod  string        `mapstructure:"signing_method"`
	PrivateKeyFile string        `mapstructure:"private_key_file"`
	PublicKeyFile  string        `mapstructure:"public_key_file"`
	AccessTTL      time.Duration `mapstructure:"access_ttl"`
	RefreshTTL     time.Duration `mapstructure:"refresh_ttl"`
	Issuer         string        `mapstructure:"issuer"`
	Leeway         time.Duration `mapstructure:"leeway"`
}

// Cookies controls the session cookie attributes.
//
// CrossSite is its own flag rather than being inferred from Secure: TLS and
// cross-site embedding are separate deployment decisions.
type Cookies struct {
	Secure    bool   `mapstructure:"secure"`
	CrossSite bool   `mapstructure:"cross_site"`
	Domain    string `mapstructure:"domain"`
	Path      string `mapstructure:"path"`
}

// TOTP holds second-factor tuning.
type TOTP struct {
	Issuer    string `mapstructure:"issuer"`
	Digits    int    `mapstructure:"digits"`
	Period    int    `mapstructure:"period"`
	Algorithm string `mapstructure:"algorithm"`
	Skew      int    `mapstructure:"skew"`
}

// Redis holds the throttle backend address.
type Redis struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Throttle holds fixed-window attempt budgets.
type Throttle struct {
	Enabled          bool          `mapstructure:"enabled"`
	EnableIPThrottle bool          `mapstructure:"enable_ip_throttle"`
	MaxLoginAttempts int           `mapstructure:"max_login_attempts"`
	LoginCooldown    time.Duration `mapstructure:"login_cooldown"`
	MaxOTPAttempts   int           `mapstructure:"max_otp_attempts"`
	OTPCooldown      time.Duration `mapstructure:"otp_cooldown"`
}

// OTEL holds tracing exporter settings.
type OTEL struct {
	Enable       bool    `mapstructure:"enable"`
	OTLPEndpoint string  `mapstructure:"otlp_endpoint"`
	ServiceName  string  `mapstructure:"service_name"`
	SampleRatio  float64 `mapstructure:"sample_ratio"`
}

// Log holds logger settings.
type Log struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

// Config is the root service configuration.
type Config struct {
	App      App            `mapstructure:"app"`
	Server   Server         `mapstructure:"server"`
	JWT      JWT            `mapstructure:"jwt"`
	Cookies  Cookies        `mapstructure:"cookies"`
	TOTP     TOTP           `mapstructure:"totp"`
	DB       pgstore.Config `mapstructure:"db"`
	Redis    Redis          `mapstructure:"redis"`
	Throttle Throttle       `mapstructure:"throttle"`
	OTEL     OTEL           `mapstructure:"otel"`
	Log      Log            `mapstructure:"log"`
}

// EngineConfig maps the service configuration onto the engine's config,
// starting from the engine defaults so unset fields keep sane values.
func (c *Config) EngineConfig() authgate.Config {
	cfg := authgate.DefaultConfig()

	if c.JWT.AccessTTL > 0 {
		cfg.JWT.AccessTTL = c.JWT.AccessTTL
	}
	if c.JWT.RefreshTTL > 0 {
		cfg.JWT.RefreshTTL = c.JWT.RefreshTTL
	}
	if c.JWT.SigningMethod != "" {
		cfg.JWT.SigningMethod = c.JWT.SigningMethod
	}
	if c.JWT.Secret != "" {
		cfg.JWT.PrivateKey = []byte(c.JWT.Secret)
	}
	if c.JWT.Issuer != "" {
		cfg.JWT.Issuer = c.JWT.Issuer
	}
	if c.JWT.Leeway > 0 {
		cfg.JWT.Leeway = c.JWT.Leeway
	}

	if c.TOTP.Issuer != "" {
		cfg.TOTP.Issuer = c.TOTP.Issuer
	}
	if c.TOTP.Digits > 0 {
		cfg.TOTP.Digits = c.TOTP.Digits
	}
	if c.TOTP.Period > 0 {
		cfg.TOTP.Period = c.TOTP.Period
	}
	if c.TOTP.Algorithm != "" {
		cfg.TOTP.Algorithm = c.TOTP.Algorithm
	}
	if c.TOTP.Skew >= 0 {
		cfg.TOTP.Skew = c.TOTP.Skew
	}

	cfg.Throttle.Enabled = c.Throttle.Enabled
	cfg.Throttle.EnableIPThrottle = c.Throttle.EnableIPThrottle
	if c.Throttle.MaxLoginAttempts > 0 {
		cfg.Throttle.MaxLoginAttempts = c.Throttle.MaxLoginAttempts
	}
	if c.Throttle.LoginCooldown > 0 {
		cfg.Throttle.LoginCooldown = c.Throttle.LoginCooldown
	}
	if c.Throttle.MaxOTPAttempts > 0 {
		cfg.Throttle.MaxOTPAttempts = c.Throttle.MaxOTPAttempts
	}
	if c.Throttle.OTPCooldown > 0 {
		cfg.Throttle.OTPCooldown = c.Throttle.OTPCooldown
	}

	return cfg
}
