package probe

import (
	"os"
	"strings"

	"github.com/marmos91/maxpathlen/pkg/random"
)

const separator = string(os.PathSeparator)

// chain is the planned directory tree of one probe.
type chain struct {
	// base is the existing directory the chain hangs from.
	base string

	// segments are the directory names below base, outermost first.
	segments []string
}

// top is the probe's own directory, the unit of cleanup.
func (c chain) top() string {
	return c.base + separator + c.segments[0]
}

// leaf is the deepest directory, where candidate files are created.
func (c chain) leaf() string {
	return c.base + separator + strings.Join(c.segments, separator)
}

// dirs lists every directory to create, outermost first.
func (c chain) dirs() []string {
	dirs := make([]string, len(c.segments))
	path := c.base
	for i, seg := range c.segments {
		path += separator + seg
		dirs[i] = path
	}
	return dirs
}

// trimSeparators strips trailing separators so that joining never doubles
// them. "C:\" becomes "C:" and "/" becomes "".
func trimSeparators(path string) string {
	for len(path) > 0 && os.IsPathSeparator(path[len(path)-1]) {
		path = path[:len(path)-1]
	}
	return path
}

// planChain lays out segments of at most segLen characters under base until
// the leaf is target characters long. The last segment absorbs the
// remainder; when only one character is left the leaf stays one short, since
// a separator alone is not a directory. At least one segment is always
// planned so the probe owns its top directory. Every iteration grows the
// path by at least two characters, which bounds the loop to
// target/(segLen+1)+1 iterations.
func planChain(base string, segLen, target int, names *random.Generator) chain {
	c := chain{base: trimSeparators(base)}

	length := pathLength(c.base)
	for len(c.segments) == 0 || length+1 < target {
		n := min(segLen, target-length-1)
		if n < 1 {
			n = 1
		}
		c.segments = append(c.segments, names.Segment(n))
		length += 1 + n
	}
	return c
}

// baseDir is the directory under a volume root that probes build in.
func baseDir(root, workDir string) string {
	base := trimSeparators(root)
	workDir = strings.Trim(workDir, `/\`)
	if workDir == "" {
		return base
	}
	return base + separator + workDir
}
