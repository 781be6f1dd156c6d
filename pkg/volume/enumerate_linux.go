//go:build linux

package volume

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

const mountInfoPath = "/proc/self/mountinfo"

func readMounts() ([]mountEntry, error) {
	f, err := os.Open(mountInfoPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", mountInfoPath, err)
	}
	defer f.Close()

	return parseMountInfo(f)
}

func listVolumes(ctx context.Context) ([]Volume, error) {
	entries, err := readMounts()
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(entries))
	volumes := make([]Volume, 0, len(entries))
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if pseudoFilesystems[e.FSType] || seen[e.MountPoint] {
			continue
		}
		seen[e.MountPoint] = true
		volumes = append(volumes, fromMount(e, e.MountPoint))
	}
	return volumes, nil
}

// fromMount queries statfs for the directory and fills in the volume.
func fromMount(e mountEntry, dir string) Volume {
	v := Volume{
		Root:           dir,
		Name:           dir,
		Label:          e.Source,
		FilesystemType: e.FSType,
		DriveType:      driveTypeFor(e.FSType),
	}

	var st unix.Statfs_t
	if err := unix.Statfs(dir, &st); err != nil {
		return v
	}

	v.Ready = st.Blocks > 0
	v.TotalBytes = st.Blocks * uint64(st.Bsize)
	v.FreeBytes = st.Bavail * uint64(st.Bsize)
	v.Writable = !hasOption(e.Options, "ro") &&
		st.Flags&unix.ST_RDONLY == 0 &&
		unix.Access(dir, unix.W_OK) == nil
	return v
}

// Describe builds a Volume for an arbitrary directory, attributing it to the
// mount that contains it.
func Describe(root string) (Volume, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return Volume{}, fmt.Errorf("failed to resolve %s: %w", root, err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return Volume{}, fmt.Errorf("failed to stat %s: %w", abs, err)
	}
	if !info.IsDir() {
		return Volume{}, fmt.Errorf("%s is not a directory", abs)
	}

	entries, err := readMounts()
	if err != nil {
		return Volume{}, err
	}

	mount, ok := longestMount(entries, abs)
	if !ok {
		mount = mountEntry{MountPoint: "/", FSType: "unknown"}
	}
	return fromMount(mount, abs), nil
}
