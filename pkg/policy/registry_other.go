//go:build !windows

package policy

import "fmt"

// DefaultLocator is empty on hosts without a long path policy; detection then
// reports the policy as unsupported and probes scan linearly.
const DefaultLocator = ""

func readRegistry(loc Location) (int64, error) {
	return 0, fmt.Errorf("%w: %s", ErrUnsupportedLocation, loc.Root)
}
