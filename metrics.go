package adminauth

import "sync/atomic"

// MetricID identifies one in-process counter.
type MetricID uint8

const (
	// MetricRegisterSuccess counts completed registrations.
	MetricRegisterSuccess MetricID = iota
	// MetricVerificationSuccess counts first-time email verifications.
	MetricVerificationSuccess
	// MetricVerificationFailure counts rejected verification attempts,
	// including reuse of an already-consumed key.
	MetricVerificationFailure
	// MetricLoginSuccess counts logins that issued a token pair.
	MetricLoginSuccess
	// MetricLoginFailure counts rejected logins of any cause.
	MetricLoginFailure
	// MetricReissueSuccess counts completed rotations.
	MetricReissueSuccess
	// MetricReissueFailure counts rejected reissue attempts of any cause.
	MetricReissueFailure
	// MetricReplayDetected counts reissue attempts that presented a refresh
	// token already superseded by rotation.
	MetricReplayDetected
	// MetricMailFailure counts verification mails that failed to send.
	MetricMailFailure

	metricIDCount
)

// Metrics holds lock-free counters. All methods are safe for concurrent use;
// a disabled Metrics is a no-op.
type Metrics struct {
	enabled  bool
	counters [metricIDCount]atomic.Uint64
}

// MetricsSnapshot is a point-in-time copy of all counters.
type MetricsSnapshot struct {
	Counters map[MetricID]uint64
}

func newMetrics(cfg MetricsConfig) *Metrics {
	return &Metrics{enabled: cfg.Enabled}
}

// Inc adds one to the counter.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= metricIDCount {
		return
	}
	m.counters[id].Add(1)
}

// Snapshot deep-copies the current counter values.
func (m *Metrics) Snapshot() MetricsSnapshot {
	snap := MetricsSnapshot{Counters: make(map[MetricID]uint64, metricIDCount)}
	if m == nil {
		return snap
	}
	for id := MetricID(0); id < metricIDCount; id++ {
		snap.Counters[id] = m.counters[id].Load()
	}
	return snap
}
