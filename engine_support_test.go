package authgate

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

// testDirectory is an in-memory UserDirectory with fault injection.
type testDirectory struct {
	mu      sync.Mutex
	byID    map[string]UserRecord
	byName  map[string]UserRecord
	nextID  int
	failGet error
}

func newTestDirectory() *testDirectory {
	return &testDirectory{
		byID:   make(map[string]UserRecord),
		byName: make(map[string]UserRecord),
	}
}

func (d *testDirectory) GetByUsername(_ context.Context, username string) (UserRecord, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.failGet != nil {
		return UserRecord{}, d.failGet
	}
	user, ok := d.byName[strings.ToLower(username)]
	if !ok {
		return UserRecord{}, ErrUserNotFound
	}
	return user, nil
}

func (d *testDirectory) GetByID(_ context.Context, id string) (UserRecord, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.failGet != nil {
		return UserRecord{}, d.failGet
	}
	user, ok := d.byID[id]
	if !ok {
		return UserRecord{}, ErrUserNotFound
	}
	return user, nil
}

func (d *testDirectory) Create(_ context.Context, input CreateUserInput) (UserRecord, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.byName[strings.ToLower(input.Username)]; ok {
		return UserRecord{}, ErrDuplicateUsername
	}
	for _, existing := range d.byID {
		if strings.EqualFold(existing.Email, input.Email) {
			return UserRecord{}, ErrDuplicateEmail
		}
	}
	d.nextID++
	user := UserRecord{
		ID:           fmt.Sprintf("u%d", d.nextID),
		Username:     input.Username,
		Email:        input.Email,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		PasswordHash: input.PasswordHash,
	}
	d.byID[user.ID] = user
	d.byName[strings.ToLower(user.Username)] = user
	return user, nil
}

// testTwoFactorStore is an in-memory TwoFactorStore.
type testTwoFactorStore struct {
	mu      sync.Mutex
	configs map[string]*TwoFactorConfig
}

func newTestTwoFactorStore() *testTwoFactorStore {
	return &testTwoFactorStore{configs: make(map[string]*TwoFactorConfig)}
}

func (s *testTwoFactorStore) Get(_ context.Context, userID string) (*TwoFactorConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cfg, ok := s.configs[userID]
	if !ok {
		return nil, ErrTwoFactorNotFound
	}
	clone := *cfg
	return &clone, nil
}

func (s *testTwoFactorStore) GetOrCreate(_ context.Context, userID string) (*TwoFactorConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cfg, ok := s.configs[userID]
	if !ok {
		cfg = &TwoFactorConfig{UserID: userID}
		s.configs[userID] = cfg
	}
	clone := *cfg
	return &clone, nil
}

func (s *testTwoFactorStore) SetSecret(_ context.Context, userID, secret string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cfg, ok := s.configs[userID]
	if !ok {
		return "", ErrTwoFactorNotFound
	}
	if cfg.Secret == "" {
		cfg.Secret = secret
	}
	return cfg.Secret, nil
}

func (s *testTwoFactorStore) SetEnabled(_ context.Context, userID string, enabled bool) (*TwoFactorConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cfg, ok := s.configs[userID]
	if !ok {
		return nil, ErrTwoFactorNotFound
	}
	cfg.Enabled = enabled
	clone := *cfg
	return &clone, nil
}

// engineFixture wires an engine over the in-memory stores with a mutable
// clock pinned to the RFC 6238 test epoch.
type engineFixture struct {
	engine    *Engine
	directory *testDirectory
	twoFactor *testTwoFactorStore
	clock     *time.Time
	sink      *ChannelSink
}

// The RFC 6238 SHA1 secret and its 6-digit code at t=59.
var (
	testSecretBase32 = base32NoPad.EncodeToString([]byte("12345678901234567890"))
	testCodeT59      = "287082"
)

func testEngineConfig() Config {
	cfg := DefaultConfig()
	cfg.JWT.PrivateKey = []byte("test-signing-key-not-for-production")
	cfg.Password.Memory = 8 * 1024
	cfg.Password.Time = 1
	cfg.Password.Parallelism = 1
	return cfg
}

func newEngineFixture(t *testing.T, mutate func(*Config), client redis.UniversalClient) *engineFixture {
	t.Helper()

	cfg := testEngineConfig()
	if mutate != nil {
		mutate(&cfg)
	}

	now := time.Unix(59, 0).UTC()
	directory := newTestDirectory()
	twoFactor := newTestTwoFactorStore()
	sink := NewChannelSink(64)

	builder := New().
		WithConfig(cfg).
		WithUserDirectory(directory).
		WithTwoFactorStore(twoFactor).
		WithAuditSink(sink).
		WithClock(func() time.Time { return now })
	if client != nil {
		builder = builder.WithRedis(client)
	}

	engine, err := builder.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(engine.Close)

	return &engineFixture{
		engine:    engine,
		directory: directory,
		twoFactor: twoFactor,
		clock:     &now,
		sink:      sink,
	}
}

func newThrottledFixture(t *testing.T, mutate func(*Config)) *engineFixture {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return newEngineFixture(t, mutate, client)
}

func (f *engineFixture) register(t *testing.T, username, email, password string) UserRecord {
	t.Helper()
	user, err := f.engine.Register(context.Background(), RegisterRequest{
		Username:        username,
		Email:           email,
		Password:        password,
		PasswordConfirm: password,
	})
	if err != nil {
		t.Fatalf("Register(%s) failed: %v", username, err)
	}
	return user
}

func (f *engineFixture) enrollTwoFactor(t *testing.T, userID string) {
	t.Helper()
	ctx := context.Background()
	if _, err := f.twoFactor.GetOrCreate(ctx, userID); err != nil {
		t.Fatalf("GetOrCreate failed: %v", err)
	}
	if _, err := f.twoFactor.SetSecret(ctx, userID, testSecretBase32); err != nil {
		t.Fatalf("SetSecret failed: %v", err)
	}
	if _, err := f.twoFactor.SetEnabled(ctx, userID, true); err != nil {
		t.Fatalf("SetEnabled failed: %v", err)
	}
}

func (f *engineFixture) counter(id MetricID) uint64 {
	return f.engine.MetricsSnapshot().Counters[id]
}

// drainAudit closes the dispatcher and collects everything it delivered.
func (f *engineFixture) drainAudit() []AuditEvent {
	f.engine.Close()
	var events []AuditEvent
	for {
		select {
		case ev := <-f.sink.Events():
			events = append(events, ev)
		default:
			return events
		}
	}
}
