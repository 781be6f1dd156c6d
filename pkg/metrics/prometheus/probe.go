package prometheus

import (
	"time"

	"github.com/marmos91/maxpathlen/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// reasons lists every terminal reason so the reason gauge can be reset to a
// one-hot encoding per volume.
var reasons = []string{"LegacyLimitHit", "CeilingReached", "Aborted"}

// probeMetrics is the Prometheus implementation of metrics.ProbeMetrics.
type probeMetrics struct {
	attemptsTotal   *prometheus.CounterVec
	maxPathLength   *prometheus.GaugeVec
	result          *prometheus.GaugeVec
	probeDuration   *prometheus.GaugeVec
	policySupported prometheus.Gauge
	lastRun         prometheus.Gauge
}

// NewProbeMetrics creates a new Prometheus-backed ProbeMetrics instance.
//
// Returns a no-op implementation if metrics are not enabled (InitRegistry not called).
func NewProbeMetrics() metrics.ProbeMetrics {
	if !metrics.IsEnabled() {
		return metrics.NewNoopProbeMetrics()
	}

	reg := metrics.GetRegistry()

	return &probeMetrics{
		attemptsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "maxpathlen_attempts_total",
				Help: "Total number of candidate file creations by volume and outcome",
			},
			[]string{"volume", "status"},
		),
		maxPathLength: promauto.With(reg).NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "maxpathlen_max_path_length",
				Help: "Longest file path length accepted by the volume",
			},
			[]string{"volume"},
		),
		result: promauto.With(reg).NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "maxpathlen_probe_result",
				Help: "Terminal reason of the last probe (1 for the reason that applied)",
			},
			[]string{"volume", "reason"},
		),
		probeDuration: promauto.With(reg).NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "maxpathlen_probe_duration_seconds",
				Help: "Wall time of the last probe including cleanup",
			},
			[]string{"volume"},
		),
		policySupported: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Name: "maxpathlen_extended_paths_supported",
				Help: "1 if the host policy enables extended path lengths",
			},
		),
		lastRun: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Name: "maxpathlen_last_run_timestamp_seconds",
				Help: "Unix time the last probe finished",
			},
		),
	}
}

func (m *probeMetrics) RecordAttempt(volume string, ok bool) {
	status := "success"
	if !ok {
		status = "failure"
	}
	m.attemptsTotal.WithLabelValues(volume, status).Inc()
}

func (m *probeMetrics) RecordResult(volume string, reason string, maxPathLength int, duration time.Duration) {
	m.maxPathLength.WithLabelValues(volume).Set(float64(maxPathLength))
	for _, r := range reasons {
		value := 0.0
		if r == reason {
			value = 1
		}
		m.result.WithLabelValues(volume, r).Set(value)
	}
	m.probeDuration.WithLabelValues(volume).Set(duration.Seconds())
	m.lastRun.SetToCurrentTime()
}

func (m *probeMetrics) SetPolicy(supported bool) {
	if supported {
		m.policySupported.Set(1)
		return
	}
	m.policySupported.Set(0)
}
