// Package metrics provides Prometheus metrics collection for probe runs.
//
// All metrics are optional - if not initialized, components use no-op
// implementations. A run that asks for a metrics file initializes the
// registry, probes, then writes the gathered samples in the node-exporter
// textfile format.
//
// Usage:
//
//	// Initialize global registry (typically in main.go)
//	metrics.InitRegistry()
//
//	// Create metrics instances for components
//	probeMetrics := prometheus.NewProbeMetrics()
//
//	// Persist everything gathered so far
//	err := metrics.WriteTextfile("/var/lib/node_exporter/maxpathlen.prom")
package metrics

import (
	"errors"
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// registry is the global Prometheus registry for all probe metrics
	// Protected by registryOnce for write-once, read-many pattern
	registry     *prometheus.Registry
	registryOnce sync.Once
)

// ErrDisabled is returned by WriteTextfile when InitRegistry was never called.
var ErrDisabled = errors.New("metrics registry not initialized")

// InitRegistry initializes the global Prometheus registry.
//
// This must be called before creating any metrics instances. It's safe to call
// multiple times - subsequent calls are ignored.
//
// If not called, GetRegistry() will return nil and all metrics constructors
// will return no-op implementations.
func InitRegistry() {
	registryOnce.Do(func() {
		registry = prometheus.NewRegistry()
	})
}

// GetRegistry returns the global Prometheus registry.
//
// Returns nil if InitRegistry() has not been called, indicating metrics
// are disabled.
func GetRegistry() *prometheus.Registry {
	return registry
}

// IsEnabled returns true if metrics collection is enabled.
func IsEnabled() bool {
	return GetRegistry() != nil
}

// WriteTextfile gathers the global registry and writes it to path in the
// text exposition format. The file is replaced atomically.
func WriteTextfile(path string) error {
	reg := GetRegistry()
	if reg == nil {
		return ErrDisabled
	}

	if err := prometheus.WriteToTextfile(path, reg); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}
