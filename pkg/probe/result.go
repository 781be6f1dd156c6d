package probe

import (
	"fmt"
	"time"

	"github.com/marmos91/maxpathlen/pkg/volume"
)

// Reason is the terminal condition of a probe.
type Reason int

const (
	// ReasonAborted means the probe could not run to completion: the chain
	// could not be created, the options were unusable, no candidate length
	// was accepted or the run was cancelled.
	ReasonAborted Reason = iota

	// ReasonLegacyLimitHit means a linear scan stopped at the first rejected
	// length.
	ReasonLegacyLimitHit

	// ReasonCeilingReached means the hard ceiling was attempted.
	ReasonCeilingReached
)

var reasonNames = map[Reason]string{
	ReasonAborted:        "Aborted",
	ReasonLegacyLimitHit: "LegacyLimitHit",
	ReasonCeilingReached: "CeilingReached",
}

func (r Reason) String() string {
	if name, ok := reasonNames[r]; ok {
		return name
	}
	return fmt.Sprintf("Reason(%d)", int(r))
}

// MarshalText renders the reason by name in JSON and YAML reports.
func (r Reason) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// Result is the outcome of probing one volume.
type Result struct {
	Volume volume.Volume

	// ExtendedPathsSupported is the policy the search strategy was chosen by.
	ExtendedPathsSupported bool

	// MaximumPathLength is the longest accepted path length, 0 when aborted
	// and never above HardCeiling.
	MaximumPathLength int

	Reason Reason

	// Attempts counts candidate file creations.
	Attempts int

	// ChainLength is the character length of the deepest directory.
	ChainLength int

	// WorkDir is the top directory of the chain. It is removed afterwards
	// only when this run created it.
	WorkDir string

	// Retained is true when the tree was left on disk on purpose.
	Retained bool

	Duration time.Duration

	// Err explains an Aborted result.
	Err error
}
