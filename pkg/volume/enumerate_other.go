//go:build !linux && !windows

package volume

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// listVolumes only reports the filesystem root on hosts without a mount
// table parser.
func listVolumes(ctx context.Context) ([]Volume, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	v, err := Describe("/")
	if err != nil {
		return nil, err
	}
	return []Volume{v}, nil
}

// Describe builds a Volume for a directory. Capacity and filesystem type are
// not available here; writability is checked with a scratch file.
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

	v := Volume{
		Root:           abs,
		Name:           abs,
		FilesystemType: "unknown",
		DriveType:      DriveUnknown,
		Ready:          true,
	}

	if f, err := os.CreateTemp(abs, ".maxpathlen-*"); err == nil {
		name := f.Name()
		_ = f.Close()
		_ = os.Remove(name)
		v.Writable = true
	}
	return v, nil
}
