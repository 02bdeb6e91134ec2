// Package metrics exposes prometheus collectors of the accumulator operations.
// A nil *Metrics is valid and records nothing
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "accumulator"

type Metrics struct {
	BuildDuration  prometheus.Histogram
	Leaves         prometheus.Gauge
	Proofs         *prometheus.CounterVec
	ProofFailures  *prometheus.CounterVec
	Verifications  *prometheus.CounterVec
	VerifyDuration *prometheus.HistogramVec
}

// New creates collectors and registers them with reg. With nil reg collectors are not registered
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		BuildDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "build_duration_seconds",
			Help:      "Time spent hashing records and building the tree",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 12),
		}),
		Leaves: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "leaves",
			Help:      "Number of leaves in the last built tree",
		}),
		Proofs: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "proofs_total",
			Help:      "Proofs produced by kind",
		}, []string{"kind"}),
		ProofFailures: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "proof_failures_total",
			Help:      "Proof requests which could not be served, by kind and reason",
		}, []string{"kind", "reason"}),
		Verifications: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "verifications_total",
			Help:      "Proof verifications by kind and result",
		}, []string{"kind", "result"}),
		VerifyDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "verify_duration_seconds",
			Help:      "Time spent verifying a proof",
			Buckets:   prometheus.ExponentialBuckets(0.000001, 4, 12),
		}, []string{"kind"}),
	}
}

func (m *Metrics) ObserveBuild(leaves int, d time.Duration) {
	if m == nil {
		return
	}
	m.BuildDuration.Observe(d.Seconds())
	m.Leaves.Set(float64(leaves))
}

func (m *Metrics) ProofProduced(kind string) {
	if m == nil {
		return
	}
	m.Proofs.WithLabelValues(kind).Inc()
}

func (m *Metrics) ProofFailed(kind, reason string) {
	if m == nil {
		return
	}
	m.ProofFailures.WithLabelValues(kind, reason).Inc()
}

func (m *Metrics) ObserveVerify(kind string, ok bool, d time.Duration) {
	if m == nil {
		return
	}
	result := "invalid"
	if ok {
		result = "valid"
	}
	m.Verifications.WithLabelValues(kind, result).Inc()
	m.VerifyDuration.WithLabelValues(kind).Observe(d.Seconds())
}
