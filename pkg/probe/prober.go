// Package probe measures the longest file path a volume accepts.
//
// A probe builds a directory chain just short of the folder limit, then
// creates files with ever longer names in its deepest directory. The search
// strategy depends on the host policy:
//
//   - extended paths supported: try the initial length, then jump straight to
//     HardCeiling. The probe ends with ReasonCeilingReached.
//   - unsupported: scan one character at a time. Scanning upward stops at the
//     first rejected length (ReasonLegacyLimitHit, result = last accepted).
//     If the initial length is already rejected the scan walks downward
//     until a length is accepted.
//
// The probe's top directory is removed on every exit unless artifacts are
// kept.
package probe

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/marmos91/maxpathlen/internal/logger"
	"github.com/marmos91/maxpathlen/internal/ratelimiter"
	"github.com/marmos91/maxpathlen/pkg/metrics"
	"github.com/marmos91/maxpathlen/pkg/random"
	"github.com/marmos91/maxpathlen/pkg/volume"
	"github.com/spf13/afero"
)

const (
	// HardCeiling is the longest path length ever attempted or reported.
	HardCeiling = 500

	// payloadLength is the number of random letters written to each
	// candidate file, followed by a newline.
	payloadLength = 80
)

// Options parameterize a probe. They are fixed for the lifetime of a Prober.
type Options struct {
	// MaxDirSegmentLength bounds every directory name in the chain.
	MaxDirSegmentLength int

	// MaxFolderPathLength is the folder limit; the chain's deepest directory
	// is three characters shorter.
	MaxFolderPathLength int

	// InitialFilePathLength is the first candidate length.
	InitialFilePathLength int

	// KeepArtifacts leaves the probe tree on disk.
	KeepArtifacts bool

	// WorkDir is a directory below each volume root to build the chain in.
	// It is created if missing and never removed.
	WorkDir string

	// Timeout bounds every filesystem operation. Zero disables it.
	Timeout time.Duration

	// MaxOpsPerSecond caps filesystem operations across every probe run by
	// the same Prober. Zero means no cap.
	MaxOpsPerSecond uint
}

// DefaultOptions returns the options of a default run.
func DefaultOptions() Options {
	return Options{
		MaxDirSegmentLength:   32,
		MaxFolderPathLength:   248,
		InitialFilePathLength: 260,
		Timeout:               30 * time.Second,
	}
}

// Validate checks the bounds a probe needs to terminate.
func (o Options) Validate() error {
	switch {
	case o.MaxDirSegmentLength < 1:
		return fmt.Errorf("%w: directory segment length %d must be positive", ErrInvalidOptions, o.MaxDirSegmentLength)
	case o.MaxFolderPathLength < 4:
		return fmt.Errorf("%w: folder path length %d must be at least 4", ErrInvalidOptions, o.MaxFolderPathLength)
	case o.InitialFilePathLength > HardCeiling:
		return fmt.Errorf("%w: initial file path length %d exceeds %d", ErrInvalidOptions, o.InitialFilePathLength, HardCeiling)
	case o.Timeout < 0:
		return fmt.Errorf("%w: timeout %s must not be negative", ErrInvalidOptions, o.Timeout)
	}
	return nil
}

// Prober runs probes against volumes. A Prober is safe for concurrent use as
// long as concurrent probes target different volumes.
type Prober struct {
	fs      afero.Fs
	names   *random.Generator
	opts    Options
	metrics metrics.ProbeMetrics
	limiter *ratelimiter.Limiter
}

// New creates a Prober. A nil m disables metrics.
func New(fs afero.Fs, names *random.Generator, opts Options, m metrics.ProbeMetrics) *Prober {
	if m == nil {
		m = metrics.NewNoopProbeMetrics()
	}
	limiter := ratelimiter.New(opts.MaxOpsPerSecond, opts.MaxOpsPerSecond)
	if !limiter.Unlimited() {
		logger.Info("Filesystem operations limited to %d per second", opts.MaxOpsPerSecond)
	}
	return &Prober{
		fs:      fs,
		names:   names,
		opts:    opts,
		metrics: m,
		limiter: limiter,
	}
}

// Probe measures vol. It never returns an error; failures are reported as
// ReasonAborted with Result.Err set.
func (p *Prober) Probe(ctx context.Context, vol volume.Volume, extended bool) Result {
	start := time.Now()
	res := Result{Volume: vol, ExtendedPathsSupported: extended}

	p.run(ctx, &res)

	res.Duration = time.Since(start)
	p.metrics.RecordResult(vol.Name, res.Reason.String(), res.MaximumPathLength, res.Duration)
	return res
}

func (p *Prober) run(ctx context.Context, res *Result) {
	if err := p.opts.Validate(); err != nil {
		p.abort(res, err)
		return
	}

	base := baseDir(res.Volume.Root, p.opts.WorkDir)
	c := planChain(base, p.opts.MaxDirSegmentLength, p.opts.MaxFolderPathLength-3, p.names)
	res.WorkDir = c.top()
	res.ChainLength = pathLength(c.leaf())

	logger.Debug("Probing %s: chain of %d directories, leaf length %d", res.Volume.Name, len(c.segments), res.ChainLength)

	// Only a top directory made by this run is removed afterwards.
	created, err := p.createChain(ctx, base, c)
	if created {
		defer p.cleanup(ctx, res)
	}
	if err != nil {
		p.abort(res, err)
		return
	}

	p.search(ctx, c.leaf(), res)
}

// createChain creates the working directory if needed, then each chain
// directory in turn. created reports whether the top directory was made
// here; an existing one is never taken over.
func (p *Prober) createChain(ctx context.Context, base string, c chain) (created bool, err error) {
	if p.opts.WorkDir != "" {
		err := p.fsOp(ctx, func() error {
			return p.fs.MkdirAll(base, 0755)
		})
		if err != nil {
			return false, &DirectoryCreationError{Path: base, Err: err}
		}
	}

	for i, dir := range c.dirs() {
		err := p.fsOp(ctx, func() error {
			return p.fs.Mkdir(dir, 0755)
		})
		if err != nil {
			return i > 0, &DirectoryCreationError{Path: dir, Err: err}
		}
	}
	return true, nil
}

// search runs the candidate loop in dir and fills res.
func (p *Prober) search(ctx context.Context, dir string, res *Result) {
	var (
		candidate  = p.opts.InitialFilePathLength
		succeeded  bool
		descending bool
	)

	for {
		nameLen := candidate - res.ChainLength - 1
		if nameLen < random.MinFileNameLength {
			if descending {
				p.abort(res, fmt.Errorf("%w on %s", ErrNoLengthAccepted, res.Volume.Name))
				return
			}
			p.abort(res, fmt.Errorf("%w: candidate %d leaves %d characters for the file name: %w",
				ErrInvalidOptions, candidate, nameLen, random.ErrNameTooShort))
			return
		}

		err := p.attempt(ctx, dir, nameLen)
		res.Attempts++
		p.metrics.RecordAttempt(res.Volume.Name, err == nil)

		if ctxErr := ctx.Err(); ctxErr != nil {
			p.abort(res, ctxErr)
			return
		}

		debug := logger.IsDebugEnabled()
		if err == nil {
			if debug {
				logger.Debug("%s: path length %d accepted", res.Volume.Name, candidate)
			}
			res.MaximumPathLength = candidate
			succeeded = true

			switch {
			case descending:
				res.Reason = ReasonLegacyLimitHit
				return
			case candidate >= HardCeiling:
				res.Reason = ReasonCeilingReached
				return
			}
		} else {
			if debug {
				logger.Debug("%s: path length %d rejected: %v", res.Volume.Name, candidate, err)
			}

			switch {
			case res.ExtendedPathsSupported && candidate >= HardCeiling:
				res.MaximumPathLength = HardCeiling
				res.Reason = ReasonCeilingReached
				return
			case !res.ExtendedPathsSupported && succeeded:
				res.MaximumPathLength = candidate - 1
				res.Reason = ReasonLegacyLimitHit
				return
			case !res.ExtendedPathsSupported:
				descending = true
				candidate--
				continue
			}
		}

		if res.ExtendedPathsSupported {
			candidate = HardCeiling
		} else {
			candidate++
		}
	}
}

// attempt creates one file whose name is nameLen characters long and writes
// the payload to it.
func (p *Prober) attempt(ctx context.Context, dir string, nameLen int) error {
	name, err := p.names.FileName(nameLen)
	if err != nil {
		return err
	}
	path := dir + separator + name
	payload := p.names.Segment(payloadLength) + "\n"

	return p.fsOp(ctx, func() error {
		f, err := p.fs.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
		if err != nil {
			return err
		}
		if _, err := f.WriteString(payload); err != nil {
			_ = f.Close()
			return err
		}
		return f.Close()
	})
}

// cleanup removes the probe's top directory unless artifacts are kept. It
// runs even when ctx is cancelled.
func (p *Prober) cleanup(ctx context.Context, res *Result) {
	if p.opts.KeepArtifacts {
		res.Retained = true
		logger.Info("Keeping probe directory %s", res.WorkDir)
		return
	}

	err := p.fsOp(context.WithoutCancel(ctx), func() error {
		return p.fs.RemoveAll(res.WorkDir)
	})
	if err != nil {
		logger.Warn("Cleanup failed: %v", &CleanupError{Path: res.WorkDir, Err: err})
	}
}

// fsOp takes a rate limiter token, waiting for one when the bucket is empty,
// then runs op under the operation timeout.
func (p *Prober) fsOp(ctx context.Context, op func() error) error {
	if !p.limiter.Allow() {
		if logger.IsDebugEnabled() {
			logger.Debug("Throttled with %.2f tokens left", p.limiter.Tokens())
		}
		if err := p.limiter.Wait(ctx); err != nil {
			return err
		}
	}
	return withTimeout(ctx, p.opts.Timeout, op)
}

func (p *Prober) abort(res *Result, err error) {
	res.MaximumPathLength = 0
	res.Reason = ReasonAborted
	res.Err = err

	if errors.Is(err, context.Canceled) {
		logger.Warn("Probe of %s cancelled", res.Volume.Name)
		return
	}
	logger.Error("Probe of %s aborted: %v", res.Volume.Name, err)
}
