// Package metrics exposes Prometheus collectors describing lock activity.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "redislock"

// Metrics groups the collectors updated by lock.Locker. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	// Attempts counts SET NX calls, successful or not.
	Attempts prometheus.Counter
	// AttemptErrors counts attempts that failed with a store error.
	AttemptErrors prometheus.Counter
	// Acquired counts acquisitions that succeeded.
	Acquired prometheus.Counter
	// Exhausted counts acquisitions that ran out of retries.
	Exhausted prometheus.Counter
	// ReleaseFailures counts release calls that returned an error.
	ReleaseFailures prometheus.Counter
	// HoldSeconds observes how long a lock was held before release.
	HoldSeconds prometheus.Histogram
}

// New creates unregistered collectors.
func New() *Metrics {
	return &Metrics{
		Attempts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "attempts_total",
			Help:      "Total number of lock acquisition attempts",
		}),
		AttemptErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "attempt_errors_total",
			Help:      "Total number of acquisition attempts that failed with a store error",
		}),
		Acquired: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "acquired_total",
			Help:      "Total number of successful lock acquisitions",
		}),
		Exhausted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "exhausted_total",
			Help:      "Total number of acquisitions that exhausted their retries",
		}),
		ReleaseFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "release_failures_total",
			Help:      "Total number of lock releases that failed",
		}),
		HoldSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "hold_seconds",
			Help:      "Time between acquisition and release",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		}),
	}
}

// Register registers all collectors on reg. It panics on duplicate
// registration, like prometheus.MustRegister.
func (m *Metrics) Register(reg prometheus.Registerer) {
	reg.MustRegister(m.Attempts, m.AttemptErrors, m.Acquired, m.Exhausted, m.ReleaseFailures, m.HoldSeconds)
}

// NewRegistered creates collectors and registers them on reg.
func NewRegistered(reg prometheus.Registerer) *Metrics {
	m := New()
	m.Register(reg)
	return m
}

// ObserveAttempt counts one SET NX attempt and, if err is set, an attempt error.
func (m *Metrics) ObserveAttempt(err error) {
	if m == nil {
		return
	}
	m.Attempts.Inc()
	if err != nil {
		m.AttemptErrors.Inc()
	}
}

// ObserveAcquired records the outcome of a whole acquisition.
func (m *Metrics) ObserveAcquired(ok bool) {
	if m == nil {
		return
	}
	if ok {
		m.Acquired.Inc()
		return
	}
	m.Exhausted.Inc()
}

// ObserveRelease counts a failed release. Successful releases are not counted.
func (m *Metrics) ObserveRelease(err error) {
	if m == nil || err == nil {
		return
	}
	m.ReleaseFailures.Inc()
}

// ObserveHold records how long a lock was held.
func (m *Metrics) ObserveHold(held time.Duration) {
	if m == nil {
		return
	}
	m.HoldSeconds.Observe(held.Seconds())
}
