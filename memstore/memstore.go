package memstore

import (
	"context"
	"strings"
	"sync"

	"github.com/charfolio/authgate"
	"github.com/google/uuid"
)

// Directory is an in-memory [authgate.UserDirectory].
type Directory struct {
	mu     sync.RWMutex
	byID   map[string]authgate.UserRecord
	byName map[string]string
	byMail map[string]string
}

// NewDirectory describes the newdirectory operation and its observable behavior.
//
// NewDirectory may return an error when input validation, dependency calls, or security checks fail.
// NewDirectory does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewDirectory() *Directory {
	return &Directory{
		byID:   make(map[string]authgate.UserRecord),
		byName: make(map[string]string),
		byMail: make(map[string]string),
	}
}

// GetByUsername describes the getbyusername operation and its observable behavior.
//
// GetByUsername may return an error when input validation, dependency calls, or security checks fail.
// GetByUsername does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (d *Directory) GetByUsername(_ context.Context, username string) (authgate.UserRecord, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	id, ok := d.byName[strings.ToLower(username)]
	if !ok {
		return authgate.UserRecord{}, authgate.ErrUserNotFound
	}
	return d.byID[id], nil
}

// GetByID describes the getbyid operation and its observable behavior.
//
// GetByID may return an error when input validation, dependency calls, or security checks fail.
// GetByID does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (d *Directory) GetByID(_ context.Context, id string) (authgate.UserRecord, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	user, ok := d.byID[id]
	if !ok {
		return authgate.UserRecord{}, authgate.ErrUserNotFound
	}
	return user, nil
}

// Create describes the create operation and its observable behavior.
//
// Create may return an error when input validation, dependency calls, or security checks fail.
// Create does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (d *Directory) Create(_ context.Context, input authgate.CreateUserInput) (authgate.UserRecord, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	nameKey := strings.ToLower(input.Username)
	mailKey := strings.ToLower(input.Email)
	if _, exists := d.byName[nameKey]; exists {
		return authgate.UserRecord{}, authgate.ErrDuplicateUsername
	}
	if _, exists := d.byMail[mailKey]; exists {
		return authgate.UserRecord{}, authgate.ErrDuplicateEmail
	}

	user := authgate.UserRecord{
		ID:           uuid.NewString(),
		Username:     input.Username,
		Email:        input.Email,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		PasswordHash: input.PasswordHash,
	}
	d.byID[user.ID] = user
	d.byName[nameKey] = user.ID
	d.byMail[mailKey] = user.ID

	return user, nil
}

// TwoFactorStore is an in-memory [authgate.TwoFactorStore].
type TwoFactorStore struct {
	mu      sync.Mutex
	configs map[string]*authgate.TwoFactorConfig
}

// NewTwoFactorStore describes the newtwofactorstore operation and its observable behavior.
//
// NewTwoFactorStore may return an error when input validation, dependency calls, or security checks fail.
// NewTwoFactorStore does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewTwoFactorStore() *TwoFactorStore {
	return &TwoFactorStore{configs: make(map[string]*authgate.TwoFactorConfig)}
}

// Get describes the get operation and its observable behavior.
//
// Get may return an error when input validation, dependency calls, or security checks fail.
// Get does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *TwoFactorStore) Get(_ context.Context, userID string) (*authgate.TwoFactorConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg, ok := s.configs[userID]
	if !ok {
		return nil, authgate.ErrTwoFactorNotFound
	}
	out := *cfg
	return &out, nil
}

// GetOrCreate describes the getorcreate operation and its observable behavior.
//
// GetOrCreate may return an error when input validation, dependency calls, or security checks fail.
// GetOrCreate does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *TwoFactorStore) GetOrCreate(_ context.Context, userID string) (*authgate.TwoFactorConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg, ok := s.configs[userID]
	if !ok {
		cfg = &authgate.TwoFactorConfig{UserID: userID}
		s.configs[userID] = cfg
	}
	out := *cfg
	return &out, nil
}

// SetSecret stores the candidate secret only when none is present yet and
// returns whichever secret ends up stored.
func (s *TwoFactorStore) SetSecret(_ context.Context, userID, secret string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg, ok := s.configs[userID]
	if !ok {
		cfg = &authgate.TwoFactorConfig{UserID: userID}
		s.configs[userID] = cfg
	}
	if cfg.Secret == "" {
		cfg.Secret = secret
	}
	return cfg.Secret, nil
}

// SetEnabled describes the setenabled operation and its observable behavior.
//
// SetEnabled may return an error when input validation, dependency calls, or security checks fail.
// SetEnabled does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *TwoFactorStore) SetEnabled(_ context.Context, userID string, enabled bool) (*authgate.TwoFactorConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg, ok := s.configs[userID]
	if !ok {
		return nil, authgate.ErrTwoFactorNotFound
	}
	cfg.Enabled = enabled
	out := *cfg
	return &out, nil
}
