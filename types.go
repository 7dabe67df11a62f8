package authgate

import (
	"context"
	"io"
	"time"

	internalaudit "github.com/charfolio/authgate/internal/audit"
)

// UserRecord is the account record returned by [UserDirectory]. The
// password hash uses the PHC string format produced by the password package.
type UserRecord struct {
	ID           string
	Username     string
	Email        string
	FirstName    string
	LastName     string
	PasswordHash string
}

// CreateUserInput is the input for [UserDirectory.Create].
type CreateUserInput struct {
	Username     string
	Email        string
	FirstName    string
	LastName     string
	PasswordHash string
}

// UserDirectory is the boundary to the external user-identity service. The
// gateway never owns user rows; it only reads them for credential checks and
// creates them on registration.
//
// Implementations must return [ErrUserNotFound] for unknown lookups and
// [ErrDuplicateUsername]/[ErrDuplicateEmail] from Create on uniqueness
// violations. Any other error is treated as backend unavailability.
type UserDirectory interface {
	GetByUsername(ctx context.Context, username string) (UserRecord, error)
	GetByID(ctx context.Context, id string) (UserRecord, error)
	Create(ctx context.Context, input CreateUserInput) (UserRecord, error)
}

// TwoFactorConfig is the per-user second-factor state. At most one config
// exists per user. Secret is base32-encoded, set lazily on first
// provisioning, and never regenerated once set; enable/disable toggles
// Enabled only.
type TwoFactorConfig struct {
	UserID  string
	Enabled bool
	Secret  string
}

// TwoFactorStore persists [TwoFactorConfig] rows.
//
// GetOrCreate must be atomic under concurrent first-time calls for the same
// user: two racing requests observe the same single row. SetSecret persists
// the candidate only when no secret is stored yet and returns the stored
// secret either way, making enrollment idempotent.
type TwoFactorStore interface {
	Get(ctx context.Context, userID string) (*TwoFactorConfig, error)
	GetOrCreate(ctx context.Context, userID string) (*TwoFactorConfig, error)
	SetSecret(ctx context.Context, userID, secret string) (string, error)
	SetEnabled(ctx context.Context, userID string, enabled bool) (*TwoFactorConfig, error)
}

// Token type discriminators embedded in the token_type claim.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// TokenClaims is the decoded, verified view of a token.
type TokenClaims struct {
	Subject   string
	TokenType string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenPair holds a freshly issued access/refresh pair. Values are handed
// to the session transport and never serialized into response bodies.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// LoginResult is returned by [Engine.Login]. Either TwoFactorRequired is
// set with no tokens, or both tokens are present.
type LoginResult struct {
	AccessToken  string
	RefreshToken string

	TwoFactorRequired bool
	UserID            string
}

// TwoFactorStatus is the enrollment view returned by [Engine.TwoFactorInfo].
type TwoFactorStatus struct {
	Enabled         bool
	HasSecret       bool
	Secret          string
	ProvisioningURI string
}

// RegisterRequest is the input for [Engine.Register].
type RegisterRequest struct {
	Username        string
	Email           string
	FirstName       string
	LastName        string
	Password        string
	PasswordConfirm string
}

// AuditEvent is a structured audit record emitted by the engine.
type AuditEvent = internalaudit.Event

// AuditSink receives [AuditEvent] values from the engine's audit dispatcher.
type AuditSink = internalaudit.Sink

// NoOpSink is an [AuditSink] that silently discards all events.
type NoOpSink = internalaudit.NoOpSink

// ChannelSink is a buffered channel-based [AuditSink].
type ChannelSink = internalaudit.ChannelSink

// JSONWriterSink is an [AuditSink] that writes JSON-encoded events to an
// [io.Writer].
type JSONWriterSink = internalaudit.JSONWriterSink

// NewChannelSink creates a [ChannelSink] with the given buffer capacity.
func NewChannelSink(buffer int) *ChannelSink {
	return internalaudit.NewChannelSink(buffer)
}

// NewJSONWriterSink creates a [JSONWriterSink] that writes to w.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return internalaudit.NewJSONWriterSink(w)
}
