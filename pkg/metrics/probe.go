package metrics

import "time"

// ProbeMetrics provides observability for path length probes.
//
// This interface is optional - if not provided to the prober or runner, a
// no-op implementation is used.
//
// Example usage:
//
//	// With metrics enabled
//	m := prometheus.NewProbeMetrics()
//	p := probe.New(fs, names, opts, m)
//
//	// Without metrics (no-op)
//	p := probe.New(fs, names, opts, nil)
type ProbeMetrics interface {
	// RecordAttempt counts one candidate file creation on a volume.
	//
	// Parameters:
	//   - volume: Volume name as shown in reports
	//   - ok: Whether the file could be created and written
	RecordAttempt(volume string, ok bool)

	// RecordResult stores the final outcome of a volume probe.
	//
	// Parameters:
	//   - volume: Volume name as shown in reports
	//   - reason: Terminal reason ("LegacyLimitHit", "CeilingReached", "Aborted")
	//   - maxPathLength: Longest path length accepted
	//   - duration: Wall time of the probe including cleanup
	RecordResult(volume string, reason string, maxPathLength int, duration time.Duration)

	// SetPolicy records whether extended paths are enabled on the host.
	SetPolicy(supported bool)
}

// NewNoopProbeMetrics returns a ProbeMetrics that discards everything.
func NewNoopProbeMetrics() ProbeMetrics {
	return noopProbeMetrics{}
}

// noopProbeMetrics is a no-op implementation of ProbeMetrics with zero overhead.
type noopProbeMetrics struct{}

func (noopProbeMetrics) RecordAttempt(volume string, ok bool)                              {}
func (noopProbeMetrics) RecordResult(volume string, reason string, v int, d time.Duration) {}
func (noopProbeMetrics) SetPolicy(supported bool)                                          {}
