package report

import (
	"fmt"
	"io"
	"sync"

	"github.com/dustin/go-humanize"
	"github.com/marmos91/maxpathlen/pkg/policy"
	"github.com/marmos91/maxpathlen/pkg/probe"
	"github.com/marmos91/maxpathlen/pkg/volume"
)

// TextReporter writes human-readable lines.
type TextReporter struct {
	mu     sync.Mutex
	out    io.Writer
	errOut io.Writer
}

// NewText creates a TextReporter.
func NewText(out, errOut io.Writer) *TextReporter {
	return &TextReporter{out: out, errOut: errOut}
}

func (r *TextReporter) writeLine(w io.Writer, format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, _ = fmt.Fprintf(w, format+"\n", args...)
}

// ReportStart prints nothing; the run ID is in the log.
func (r *TextReporter) ReportStart(RunInfo) {}

// ReportPolicy prints the value found and the verdict, or why the default
// applies.
func (r *TextReporter) ReportPolicy(state policy.State) {
	if state.Value == nil {
		cause := "not set"
		if state.Err != nil {
			cause = state.Err.Error()
		}
		r.writeLine(r.out, "No extended path policy value found (%s) => NO support for LongPaths exists on %s",
			cause, state.Host)
		return
	}

	r.writeLine(r.out, "Value of key found at %s is %d", state.Locator, *state.Value)
	if state.ExtendedPathsSupported {
		r.writeLine(r.out, "=> Support for LongPaths does exist on %s", state.Host)
	} else {
		r.writeLine(r.out, "=> NO support for LongPaths exists on %s", state.Host)
	}
}

// ReportVolume prints the volume's identity and capacity.
func (r *TextReporter) ReportVolume(v volume.Volume) {
	r.writeLine(r.out, "See drive %-7s %-10s  %-5s %18s total; %15s free; %-8s %-10s (%s)",
		v.Name, v.Label, v.FilesystemType,
		humanize.Comma(int64(v.TotalBytes)), humanize.Comma(int64(v.FreeBytes)),
		v.ReadyState(), v.DriveType, humanize.IBytes(v.TotalBytes))
}

// ReportResult prints the measured limit. Aborted probes also print their
// error to the error writer.
func (r *TextReporter) ReportResult(res probe.Result) {
	r.writeLine(r.out, "Maximum limit for a file path on %s was determined to be %d characters (%s).",
		res.Volume.Name, res.MaximumPathLength, res.Reason)

	if res.Retained {
		r.writeLine(r.out, "Probe files kept under %s", res.WorkDir)
	}
	if res.Err != nil {
		r.writeLine(r.errOut, "Probe of %s aborted: %v", res.Volume.Name, res.Err)
	}
}

// ReportError prints err to the error writer.
func (r *TextReporter) ReportError(err error) {
	r.writeLine(r.errOut, "Error: %v", err)
}

// Close is a no-op; lines are written as they come.
func (r *TextReporter) Close() error {
	return nil
}
