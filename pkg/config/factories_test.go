package config

import (
	"context"
	"testing"
	"time"

	"github.com/marmos91/maxpathlen/pkg/metrics"
	"github.com/marmos91/maxpathlen/pkg/probe"
	"github.com/marmos91/maxpathlen/pkg/random"
	"github.com/marmos91/maxpathlen/pkg/volume"
	"github.com/spf13/afero"
)

func TestProbeOptions(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.KeepFileCreated = true
	cfg.WorkDir = "scratch"
	cfg.Timeout = 5 * time.Second
	cfg.MaxOpsPerSecond = 20

	opts := cfg.ProbeOptions()

	want := probe.Options{
		MaxDirSegmentLength:   DefaultMaxDirLength,
		MaxFolderPathLength:   DefaultMaxFolderLength,
		InitialFilePathLength: DefaultInitialFilePathLength,
		KeepArtifacts:         true,
		WorkDir:               "scratch",
		Timeout:               5 * time.Second,
		MaxOpsPerSecond:       20,
	}
	if opts != want {
		t.Errorf("ProbeOptions() = %+v, want %+v", opts, want)
	}
	if err := opts.Validate(); err != nil {
		t.Errorf("Default configuration produced invalid probe options: %v", err)
	}
}

func TestCreateProberWithFs(t *testing.T) {
	fs := afero.NewMemMapFs()
	if err := fs.MkdirAll("/vol", 0755); err != nil {
		t.Fatalf("Failed to create volume root: %v", err)
	}

	cfg := GetDefaultConfig()
	p := CreateProberWithFs(cfg, fs, random.New(1), nil)
	if p == nil {
		t.Fatal("Expected non-nil prober")
	}

	vol := volume.Volume{Root: "/vol", Name: "/vol", Ready: true, Writable: true}
	res := p.Probe(context.Background(), vol, true)

	if res.Reason != probe.ReasonCeilingReached || res.MaximumPathLength != probe.HardCeiling {
		t.Errorf("Expected %d CeilingReached on an unlimited filesystem, got %d %s",
			probe.HardCeiling, res.MaximumPathLength, res.Reason)
	}
}

func TestCreateDetector(t *testing.T) {
	state := CreateDetector().Detect("")
	if state.ExtendedPathsSupported {
		t.Error("Expected an empty locator to report unsupported")
	}
	if state.Host == "" {
		t.Error("Expected the host name to be filled in")
	}
}

func TestInitializeMetrics_Disabled(t *testing.T) {
	cfg := GetDefaultConfig()

	m := InitializeMetrics(cfg)
	if m == nil {
		t.Fatal("Expected non-nil metrics")
	}
	if m != metrics.NewNoopProbeMetrics() {
		t.Errorf("Expected no-op metrics without a metrics file, got %T", m)
	}
}
