// Package volume enumerates the storage volumes a probe can run against.
//
// Platform-specific discovery lives in enumerate_linux.go,
// enumerate_windows.go and enumerate_other.go; this file holds the portable
// model and filtering rules.
package volume

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrNoVolumes is returned when enumeration yields nothing to probe. It is
// the only process-fatal condition of a run.
var ErrNoVolumes = errors.New("no probeable volumes found")

// Drive types reported by enumerators.
const (
	DriveFixed     = "Fixed"
	DriveRemovable = "Removable"
	DriveNetwork   = "Network"
	DriveRAM       = "Ram"
	DriveCDROM     = "CDRom"
	DriveUnknown   = "Unknown"
)

// Volume describes one storage unit with its own filesystem root. It is
// read-only to probes.
type Volume struct {
	// Root is the directory probes build their chain under, e.g. "C:\" or
	// "/mnt/data".
	Root string `json:"root" yaml:"root"`

	// Name identifies the volume in reports. It usually equals Root.
	Name string `json:"name" yaml:"name"`

	// Label is the volume label or backing device.
	Label string `json:"label" yaml:"label"`

	// FilesystemType is the driver name, e.g. "NTFS" or "ext4".
	FilesystemType string `json:"filesystem_type" yaml:"filesystem_type"`

	// DriveType is one of the Drive* constants.
	DriveType string `json:"drive_type" yaml:"drive_type"`

	TotalBytes uint64 `json:"total_bytes" yaml:"total_bytes"`
	FreeBytes  uint64 `json:"free_bytes" yaml:"free_bytes"`

	// Ready is false when the volume could not be queried (empty drive,
	// stale mount).
	Ready bool `json:"ready" yaml:"ready"`

	// Writable is false for read-only mounts and volumes.
	Writable bool `json:"writable" yaml:"writable"`
}

// ReadyState renders Ready the way the volume line shows it.
func (v Volume) ReadyState() string {
	if v.Ready {
		return "Ready"
	}
	return "NotReady"
}

// Enumerator lists candidate volumes.
type Enumerator interface {
	Volumes(ctx context.Context) ([]Volume, error)
}

// IsExcluded reports whether fsType matches one of excluded, ignoring case.
func IsExcluded(fsType string, excluded []string) bool {
	for _, e := range excluded {
		if strings.EqualFold(strings.TrimSpace(e), fsType) {
			return true
		}
	}
	return false
}

// Filter keeps ready, writable volumes whose filesystem type is not excluded.
func Filter(volumes []Volume, excluded []string) []Volume {
	kept := make([]Volume, 0, len(volumes))
	for _, v := range volumes {
		if !v.Ready || !v.Writable || IsExcluded(v.FilesystemType, excluded) {
			continue
		}
		kept = append(kept, v)
	}
	return kept
}

// SystemEnumerator discovers the host's mounted volumes.
type SystemEnumerator struct {
	// Excluded lists filesystem types to skip.
	Excluded []string
}

// Volumes implements Enumerator. It fails with ErrNoVolumes when nothing
// survives filtering.
func (e *SystemEnumerator) Volumes(ctx context.Context) ([]Volume, error) {
	all, err := listVolumes(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate volumes: %w", err)
	}

	kept := Filter(all, e.Excluded)
	if len(kept) == 0 {
		return nil, ErrNoVolumes
	}
	return kept, nil
}

// All lists every volume the host reports, without filtering.
func (e *SystemEnumerator) All(ctx context.Context) ([]Volume, error) {
	return listVolumes(ctx)
}

// RootsEnumerator probes an explicit list of directories instead of the
// host's volumes.
type RootsEnumerator struct {
	Roots    []string
	Excluded []string
}

// Volumes implements Enumerator. Roots that cannot be described are skipped
// with their error folded into the result when nothing remains.
func (e *RootsEnumerator) Volumes(ctx context.Context) ([]Volume, error) {
	var (
		all  []Volume
		errs []error
	)
	for _, root := range e.Roots {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		v, err := Describe(root)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		all = append(all, v)
	}

	kept := Filter(all, e.Excluded)
	if len(kept) == 0 {
		return nil, errors.Join(append([]error{ErrNoVolumes}, errs...)...)
	}
	return kept, nil
}
