package obs

import (
	"github.com/charfolio/authgate"
	"github.com/prometheus/client_golang/prometheus"
)

// metricNames maps engine counter ids onto prometheus series names.
var metricNames = map[authgate.MetricID]string{
	authgate.MetricLoginSuccess:          "authgate_login_success_total",
	authgate.MetricLoginFailure:          "authgate_login_failure_total",
	authgate.MetricLoginRateLimited:      "authgate_login_rate_limited_total",
	authgate.MetricTwoFactorRequired:     "authgate_twofactor_required_total",
	authgate.MetricOTPSuccess:            "authgate_otp_success_total",
	authgate.MetricOTPFailure:            "authgate_otp_failure_total",
	authgate.MetricOTPRateLimited:        "authgate_otp_rate_limited_total",
	authgate.MetricSecretProvisioned:     "authgate_twofactor_secret_provisioned_total",
	authgate.MetricTwoFactorEnabled:      "authgate_twofactor_enabled_total",
	authgate.MetricTwoFactorDisabled:     "authgate_twofactor_disabled_total",
	authgate.MetricRefreshSuccess:        "authgate_refresh_success_total",
	authgate.MetricRefreshFailure:        "authgate_refresh_failure_total",
	authgate.MetricVerifySuccess:         "authgate_verify_success_total",
	authgate.MetricVerifyFailure:         "authgate_verify_failure_total",
	authgate.MetricLogout:                "authgate_logout_total",
	authgate.MetricRegistrationSuccess:   "authgate_registration_success_total",
	authgate.MetricRegistrationDuplicate: "authgate_registration_duplicate_total",
}

// EngineCollector bridges the engine's internal atomic counters into the
// prometheus registry. Collect reads a consistent snapshot; the engine's
// hot path never touches prometheus types.
type EngineCollector struct {
	engine *authgate.Engine
	descs  map[authgate.MetricID]*prometheus.Desc
}

// NewEngineCollector describes the newenginecollector operation and its observable behavior.
//
// NewEngineCollector may return an error when input validation, dependency calls, or security checks fail.
// NewEngineCollector does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewEngineCollector(engine *authgate.Engine) *EngineCollector {
	descs := make(map[authgate.MetricID]*prometheus.Desc, len(metricNames))
	for id, name := range metricNames {
		descs[id] = prometheus.NewDesc(name, "Cumulative count of "+name+" events.", nil, nil)
	}
	return &EngineCollector{engine: engine, descs: descs}
}

// Describe implements prometheus.Collector.
func (c *EngineCollector) Describe(ch chan<- *prometheus.Desc) {
	for _, d := range c.descs {
		ch <- d
	}
}

// Collect implements prometheus.Collector.
func (c *EngineCollector) Collect(ch chan<- prometheus.Metric) {
	snapshot := c.engine.MetricsSnapshot()
	for id, desc := range c.descs {
		ch <- prometheus.MustNewConstMetric(desc, prometheus.CounterValue, float64(snapshot.Counters[id]))
	}
}
