package authgate

import "sync/atomic"

// MetricID defines a public type used by authgate APIs.
//
// MetricID instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricID uint16

const (
	// MetricLoginSuccess is an exported constant or variable used by the authentication gateway.
	MetricLoginSuccess MetricID = iota
	// MetricLoginFailure is an exported constant or variable used by the authentication gateway.
	MetricLoginFailure
	// MetricLoginRateLimited is an exported constant or variable used by the authentication gateway.
	MetricLoginRateLimited
	// MetricTwoFactorRequired is an exported constant or variable used by the authentication gateway.
	MetricTwoFactorRequired
	// MetricOTPSuccess is an exported constant or variable used by the authentication gateway.
	MetricOTPSuccess
	// MetricOTPFailure is an exported constant or variable used by the authentication gateway.
	MetricOTPFailure
	// MetricOTPRateLimited is an exported constant or variable used by the authentication gateway.
	MetricOTPRateLimited
	// MetricSecretProvisioned is an exported constant or variable used by the authentication gateway.
	MetricSecretProvisioned
	// MetricTwoFactorEnabled is an exported constant or variable used by the authentication gateway.
	MetricTwoFactorEnabled
	// MetricTwoFactorDisabled is an exported constant or variable used by the authentication gateway.
	MetricTwoFactorDisabled
	// MetricRefreshSuccess is an exported constant or variable used by the authentication gateway.
	MetricRefreshSuccess
	// MetricRefreshFailure is an exported constant or variable used by the authentication gateway.
	MetricRefreshFailure
	// MetricVerifySuccess is an exported constant or variable used by the authentication gateway.
	MetricVerifySuccess
	// MetricVerifyFailure is an exported constant or variable used by the authentication gateway.
	MetricVerifyFailure
	// MetricLogout is an exported constant or variable used by the authentication gateway.
	MetricLogout
	// MetricRegistrationSuccess is an exported constant or variable used by the authentication gateway.
	MetricRegistrationSuccess
	// MetricRegistrationDuplicate is an exported constant or variable used by the authentication gateway.
	MetricRegistrationDuplicate
	metricIDCount
)

const cacheLineSize = 64

type paddedCounter struct {
	value uint64
	_     [cacheLineSize - 8]byte
}

// Metrics holds atomic counters for gateway events. Increments are
// allocation-free; Snapshot deep-copies the current values.
type Metrics struct {
	enabled  bool
	counters [metricIDCount]paddedCounter
}

// MetricsSnapshot is a point-in-time deep copy of all counters.
type MetricsSnapshot struct {
	Counters map[MetricID]uint64
}

// NewMetrics creates a [Metrics] instance; when cfg.Enabled is false all
// operations are no-ops.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return &Metrics{enabled: cfg.Enabled}
}

// Enabled reports whether counters are being recorded.
func (m *Metrics) Enabled() bool {
	return m != nil && m.enabled
}

// Inc atomically increments the counter identified by id.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= metricIDCount {
		return
	}
	atomic.AddUint64(&m.counters[id].value, 1)
}

// Value returns the current value of a single counter.
func (m *Metrics) Value(id MetricID) uint64 {
	if m == nil || !m.enabled || id >= metricIDCount {
		return 0
	}
	return atomic.LoadUint64(&m.counters[id].value)
}

// Snapshot describes the snapshot operation and its observable behavior.
//
// Snapshot may return an error when input validation, dependency calls, or security checks fail.
// Snapshot does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (m *Metrics) Snapshot() MetricsSnapshot {
	out := MetricsSnapshot{Counters: make(map[MetricID]uint64, metricIDCount)}
	if m == nil || !m.enabled {
		return out
	}
	for id := MetricID(0); id < metricIDCount; id++ {
		out.Counters[id] = atomic.LoadUint64(&m.counters[id].value)
	}
	return out
}
