package config

import (
	"time"

	"github.com/marmos91/maxpathlen/pkg/metrics"
	"github.com/marmos91/maxpathlen/pkg/policy"
	"github.com/marmos91/maxpathlen/pkg/probe"
	"github.com/marmos91/maxpathlen/pkg/random"
	"github.com/marmos91/maxpathlen/pkg/volume"
	"github.com/spf13/afero"
)

// ProbeOptions converts the configuration into probe options.
func (c *Config) ProbeOptions() probe.Options {
	return probe.Options{
		MaxDirSegmentLength:   c.MaxDirLength,
		MaxFolderPathLength:   c.MaxFolderLength,
		InitialFilePathLength: c.InitialFilePathLength,
		KeepArtifacts:         c.KeepFileCreated,
		WorkDir:               c.WorkDir,
		Timeout:               c.Timeout,
		MaxOpsPerSecond:       c.MaxOpsPerSecond,
	}
}

// EffectiveSeed returns the configured seed, or a time-based one when the
// configuration leaves it at zero.
func (c *Config) EffectiveSeed() uint64 {
	if c.Seed != 0 {
		return c.Seed
	}
	return uint64(time.Now().UnixNano())
}

// CreateEnumerator returns the volume source selected by the configuration:
// the explicit Roots when set, host discovery otherwise.
func CreateEnumerator(cfg *Config) volume.Enumerator {
	if len(cfg.Roots) > 0 {
		return &volume.RootsEnumerator{Roots: cfg.Roots, Excluded: cfg.ExcludedTypes}
	}
	return &volume.SystemEnumerator{Excluded: cfg.ExcludedTypes}
}

// CreateDetector returns a policy detector reading the host's policy store.
func CreateDetector() *policy.Detector {
	return policy.NewDetector(policy.NewSystemStore())
}

// CreateProber builds a prober against the host filesystem.
//
// Parameters:
//   - cfg: Loaded configuration
//   - names: Random name generator shared by every probe of the run
//   - m: Probe metrics (nil for no-op)
func CreateProber(cfg *Config, names *random.Generator, m metrics.ProbeMetrics) *probe.Prober {
	return probe.New(probe.NewSystemFs(), names, cfg.ProbeOptions(), m)
}

// CreateProberWithFs is CreateProber with a caller-supplied filesystem.
func CreateProberWithFs(cfg *Config, fs afero.Fs, names *random.Generator, m metrics.ProbeMetrics) *probe.Prober {
	return probe.New(fs, names, cfg.ProbeOptions(), m)
}
