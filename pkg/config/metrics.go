package config

import (
	"github.com/marmos91/maxpathlen/pkg/metrics"
	promMetrics "github.com/marmos91/maxpathlen/pkg/metrics/prometheus"
)

// InitializeMetrics creates the probe metrics for a run.
//
// If a metrics file is configured:
//   - Initializes the global Prometheus registry
//   - Returns Prometheus-backed metrics
//
// Otherwise it returns a no-op implementation.
func InitializeMetrics(cfg *Config) metrics.ProbeMetrics {
	if cfg.Report.MetricsFile == "" {
		return metrics.NewNoopProbeMetrics()
	}

	metrics.InitRegistry()
	return promMetrics.NewProbeMetrics()
}
