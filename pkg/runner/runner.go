// Package runner drives a complete run: detect the policy once, enumerate
// volumes, probe each one and hand everything to the reporter.
package runner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/marmos91/maxpathlen/internal/logger"
	"github.com/marmos91/maxpathlen/pkg/metrics"
	"github.com/marmos91/maxpathlen/pkg/policy"
	"github.com/marmos91/maxpathlen/pkg/probe"
	"github.com/marmos91/maxpathlen/pkg/report"
	"github.com/marmos91/maxpathlen/pkg/volume"
	"golang.org/x/sync/errgroup"
)

// Detector reports the extended path policy.
type Detector interface {
	Detect(locator string) policy.State
}

// Prober measures one volume.
type Prober interface {
	Probe(ctx context.Context, vol volume.Volume, extended bool) probe.Result
}

// Config holds the collaborators of a run.
type Config struct {
	Detector   Detector
	Enumerator volume.Enumerator
	Prober     Prober
	Reporter   report.Reporter

	// Metrics is optional.
	Metrics metrics.ProbeMetrics

	// PolicyLocator is passed to the detector.
	PolicyLocator string

	// Parallelism above 1 probes that many volumes at once.
	Parallelism int
}

// Summary is what a run produced.
type Summary struct {
	RunID   string
	Policy  policy.State
	Results []probe.Result
}

// Runner executes runs.
type Runner struct {
	cfg Config
}

// New creates a Runner.
func New(cfg Config) *Runner {
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.NewNoopProbeMetrics()
	}
	if cfg.Parallelism < 1 {
		cfg.Parallelism = 1
	}
	return &Runner{cfg: cfg}
}

// Run performs one run. The only error it returns is a failure to find any
// volume (wrapping volume.ErrNoVolumes or the enumeration error); individual
// probe failures are part of the results.
func (r *Runner) Run(ctx context.Context) (*Summary, error) {
	summary := &Summary{RunID: uuid.NewString()}

	logger.Info("Starting run %s", summary.RunID)
	r.cfg.Reporter.ReportStart(report.RunInfo{ID: summary.RunID, Started: time.Now()})

	summary.Policy = r.cfg.Detector.Detect(r.cfg.PolicyLocator)
	r.cfg.Metrics.SetPolicy(summary.Policy.ExtendedPathsSupported)
	r.cfg.Reporter.ReportPolicy(summary.Policy)

	volumes, err := r.cfg.Enumerator.Volumes(ctx)
	if err != nil {
		if !errors.Is(err, volume.ErrNoVolumes) {
			err = fmt.Errorf("%w: %w", volume.ErrNoVolumes, err)
		}
		r.cfg.Reporter.ReportError(err)
		return summary, err
	}
	logger.Info("Probing %d volume(s) with parallelism %d", len(volumes), r.cfg.Parallelism)

	summary.Results = make([]probe.Result, len(volumes))
	if r.cfg.Parallelism == 1 {
		for i, vol := range volumes {
			summary.Results[i] = r.probe(ctx, vol, summary.Policy.ExtendedPathsSupported)
		}
	} else {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(r.cfg.Parallelism)
		for i, vol := range volumes {
			g.Go(func() error {
				summary.Results[i] = r.probe(gctx, vol, summary.Policy.ExtendedPathsSupported)
				return nil
			})
		}
		_ = g.Wait()
	}

	logger.Info("Run %s finished", summary.RunID)
	return summary, nil
}

func (r *Runner) probe(ctx context.Context, vol volume.Volume, extended bool) probe.Result {
	r.cfg.Reporter.ReportVolume(vol)
	res := r.cfg.Prober.Probe(ctx, vol, extended)
	r.cfg.Reporter.ReportResult(res)
	return res
}
