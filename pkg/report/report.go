// Package report renders probe runs for people and machines.
//
// The text reporter prints one line per event as it happens, in the layout
// the tool has always used. The JSON and YAML reporters collect the run and
// write a single document when closed.
package report

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/marmos91/maxpathlen/pkg/policy"
	"github.com/marmos91/maxpathlen/pkg/probe"
	"github.com/marmos91/maxpathlen/pkg/volume"
)

// ErrUnknownFormat is returned by New for an unsupported format name.
var ErrUnknownFormat = errors.New("unknown report format")

// RunInfo identifies a run.
type RunInfo struct {
	ID      string    `json:"id" yaml:"id"`
	Started time.Time `json:"started" yaml:"started"`
}

// Reporter receives the events of a run. Implementations are safe for
// concurrent use.
type Reporter interface {
	// ReportStart is called once before anything else.
	ReportStart(info RunInfo)

	// ReportPolicy is called once with the detected policy.
	ReportPolicy(state policy.State)

	// ReportVolume is called before a volume is probed.
	ReportVolume(v volume.Volume)

	// ReportResult is called when a volume probe finishes.
	ReportResult(r probe.Result)

	// ReportError reports a failure outside any single probe.
	ReportError(err error)

	// Close flushes buffered output.
	Close() error
}

// New returns the reporter for format ("text", "json" or "yaml"). Results go
// to out and errors to errOut.
func New(format string, out, errOut io.Writer) (Reporter, error) {
	switch strings.ToLower(format) {
	case "", "text":
		return NewText(out, errOut), nil
	case "json":
		return NewJSON(out, errOut), nil
	case "yaml":
		return NewYAML(out, errOut), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}
