//go:build !windows

package probe

import (
	"unicode/utf8"

	"github.com/spf13/afero"
)

// NewSystemFs returns the filesystem probes run against in production.
// Outside Windows the os package passes paths to the kernel unchanged, so
// the plain OS filesystem already reports the driver's real limit.
func NewSystemFs() afero.Fs {
	return afero.NewOsFs()
}

// pathLength counts characters the way the kernel's path limits do.
func pathLength(path string) int {
	return utf8.RuneCountInString(path)
}
