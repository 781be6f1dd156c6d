// Package policy detects whether the host has opted into extended path
// lengths.
//
// Detection never fails: an unparseable locator, a missing value, a value of
// the wrong type or an inaccessible store all degrade to "unsupported" and are
// logged as warnings.
package policy

import (
	"fmt"
	"os"

	"github.com/marmos91/maxpathlen/internal/logger"
)

// enabledValue is the only value that turns extended paths on.
const enabledValue = 1

// State is the outcome of a detection. It is computed once per run and shared
// read-only by every probe.
type State struct {
	// ExtendedPathsSupported selects the probe search strategy.
	ExtendedPathsSupported bool `json:"extended_paths_supported" yaml:"extended_paths_supported"`

	// Locator is the policy locator that was consulted.
	Locator string `json:"locator" yaml:"locator"`

	// Value is the raw value found, or nil if none could be read.
	Value *int64 `json:"value,omitempty" yaml:"value,omitempty"`

	// Host is the name of the machine the policy was read on.
	Host string `json:"host" yaml:"host"`

	// Err is the reason the value could not be read, if any.
	Err error `json:"-" yaml:"-"`
}

// ReadError explains why a policy value could not be used.
type ReadError struct {
	Locator string
	Err     error
}

func (e *ReadError) Error() string {
	if e.Locator == "" {
		return fmt.Sprintf("policy read: %v", e.Err)
	}
	return fmt.Sprintf("policy read %q: %v", e.Locator, e.Err)
}

func (e *ReadError) Unwrap() error {
	return e.Err
}

// Detector reads the extended path policy from a Store.
type Detector struct {
	store Store
	host  string
}

// NewDetector creates a detector backed by store.
func NewDetector(store Store) *Detector {
	host, err := os.Hostname()
	if err != nil {
		host = "localhost"
	}
	return &Detector{store: store, host: host}
}

// Detect reads the value named by locator and reports whether it equals 1.
func (d *Detector) Detect(locator string) State {
	state := State{Locator: locator, Host: d.host}

	if locator == "" {
		state.Err = &ReadError{Locator: locator, Err: fmt.Errorf("%w: no locator configured", ErrInvalidLocator)}
		logger.Info("No extended path policy locator configured; assuming legacy path limits")
		return state
	}

	loc, err := ParseLocation(locator)
	if err != nil {
		state.Err = &ReadError{Locator: locator, Err: err}
		logger.Warn("Unable to parse policy locator: %v", state.Err)
		return state
	}

	value, err := d.store.ReadInteger(loc)
	if err != nil {
		state.Err = &ReadError{Locator: locator, Err: err}
		logger.Warn("Unable to read extended path policy: %v", state.Err)
		return state
	}

	state.Value = &value
	state.ExtendedPathsSupported = value == enabledValue
	logger.Debug("Policy value at %s is %d (supported=%t)", loc, value, state.ExtendedPathsSupported)
	return state
}

// Source describes where the verdict came from, for reporting. The reason a
// default applies is in Err.
func (s State) Source() string {
	if s.Value != nil {
		return fmt.Sprintf("value %d at %s", *s.Value, s.Locator)
	}
	return "default"
}
