package report

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/marmos91/maxpathlen/pkg/policy"
	"github.com/marmos91/maxpathlen/pkg/probe"
	"github.com/marmos91/maxpathlen/pkg/volume"
	"gopkg.in/yaml.v3"
)

// Summary is the document written by the JSON and YAML reporters.
type Summary struct {
	Run      RunInfo        `json:"run" yaml:"run"`
	Finished time.Time      `json:"finished" yaml:"finished"`
	Policy   *PolicyReport  `json:"policy,omitempty" yaml:"policy,omitempty"`
	Volumes  []VolumeReport `json:"volumes" yaml:"volumes"`
	Errors   []string       `json:"errors,omitempty" yaml:"errors,omitempty"`
}

// PolicyReport is the serializable form of policy.State.
type PolicyReport struct {
	Supported bool   `json:"extended_paths_supported" yaml:"extended_paths_supported"`
	Locator   string `json:"locator" yaml:"locator"`
	Value     *int64 `json:"value,omitempty" yaml:"value,omitempty"`
	Host      string `json:"host" yaml:"host"`
	Source    string `json:"source" yaml:"source"`
	Error     string `json:"error,omitempty" yaml:"error,omitempty"`
}

// VolumeReport is the serializable form of probe.Result.
type VolumeReport struct {
	Volume            volume.Volume `json:"volume" yaml:"volume"`
	MaximumPathLength int           `json:"maximum_path_length" yaml:"maximum_path_length"`
	Reason            probe.Reason  `json:"reason" yaml:"reason"`
	Attempts          int           `json:"attempts" yaml:"attempts"`
	ChainLength       int           `json:"chain_length" yaml:"chain_length"`
	WorkDir           string        `json:"work_dir" yaml:"work_dir"`
	Retained          bool          `json:"retained" yaml:"retained"`
	DurationMillis    int64         `json:"duration_ms" yaml:"duration_ms"`
	Error             string        `json:"error,omitempty" yaml:"error,omitempty"`
}

type encodeFunc func(w io.Writer, s *Summary) error

// StructuredReporter collects a run and encodes it on Close.
type StructuredReporter struct {
	mu      sync.Mutex
	out     io.Writer
	errOut  io.Writer
	encode  encodeFunc
	summary Summary
	closed  bool
}

// NewJSON creates a reporter writing an indented JSON document.
func NewJSON(out, errOut io.Writer) *StructuredReporter {
	return &StructuredReporter{out: out, errOut: errOut, encode: encodeJSON}
}

// NewYAML creates a reporter writing a YAML document.
func NewYAML(out, errOut io.Writer) *StructuredReporter {
	return &StructuredReporter{out: out, errOut: errOut, encode: encodeYAML}
}

func encodeJSON(w io.Writer, s *Summary) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}

func encodeYAML(w io.Writer, s *Summary) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(s); err != nil {
		return err
	}
	return enc.Close()
}

func (r *StructuredReporter) ReportStart(info RunInfo) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.summary.Run = info
}

func (r *StructuredReporter) ReportPolicy(state policy.State) {
	p := &PolicyReport{
		Supported: state.ExtendedPathsSupported,
		Locator:   state.Locator,
		Value:     state.Value,
		Host:      state.Host,
		Source:    state.Source(),
	}
	if state.Err != nil {
		p.Error = state.Err.Error()
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.summary.Policy = p
}

// ReportVolume is a no-op; the volume is part of its result.
func (r *StructuredReporter) ReportVolume(volume.Volume) {}

func (r *StructuredReporter) ReportResult(res probe.Result) {
	v := VolumeReport{
		Volume:            res.Volume,
		MaximumPathLength: res.MaximumPathLength,
		Reason:            res.Reason,
		Attempts:          res.Attempts,
		ChainLength:       res.ChainLength,
		WorkDir:           res.WorkDir,
		Retained:          res.Retained,
		DurationMillis:    res.Duration.Milliseconds(),
	}
	if res.Err != nil {
		v.Error = res.Err.Error()
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.summary.Volumes = append(r.summary.Volumes, v)
}

// ReportError records err in the document and also prints it to the error
// writer right away.
func (r *StructuredReporter) ReportError(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.summary.Errors = append(r.summary.Errors, err.Error())
	_, _ = fmt.Fprintf(r.errOut, "Error: %v\n", err)
}

// Close writes the document. Volumes are ordered by name so that parallel
// runs produce stable output. Calling Close twice writes once.
func (r *StructuredReporter) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil
	}
	r.closed = true

	sort.Slice(r.summary.Volumes, func(i, j int) bool {
		return r.summary.Volumes[i].Volume.Name < r.summary.Volumes[j].Volume.Name
	})
	if r.summary.Volumes == nil {
		r.summary.Volumes = []VolumeReport{}
	}
	r.summary.Finished = time.Now()

	if err := r.encode(r.out, &r.summary); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}
