//go:build windows

package volume

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/windows"
)

var driveTypes = map[uint32]string{
	windows.DRIVE_FIXED:     DriveFixed,
	windows.DRIVE_REMOVABLE: DriveRemovable,
	windows.DRIVE_REMOTE:    DriveNetwork,
	windows.DRIVE_CDROM:     DriveCDROM,
	windows.DRIVE_RAMDISK:   DriveRAM,
}

func listVolumes(ctx context.Context) ([]Volume, error) {
	mask, err := windows.GetLogicalDrives()
	if err != nil {
		return nil, fmt.Errorf("GetLogicalDrives: %w", err)
	}

	var volumes []Volume
	for i := 0; i < 26; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if mask&(1<<uint(i)) == 0 {
			continue
		}
		root := string(rune('A'+i)) + `:\`
		volumes = append(volumes, describeRoot(root, root))
	}
	return volumes, nil
}

// describeRoot queries a drive root. Drives whose volume information cannot
// be read (an empty card reader, a disconnected share) are returned not
// ready.
func describeRoot(root, dir string) Volume {
	v := Volume{Root: dir, Name: dir, DriveType: DriveUnknown}

	p, err := windows.UTF16PtrFromString(root)
	if err != nil {
		return v
	}
	if name, ok := driveTypes[windows.GetDriveType(p)]; ok {
		v.DriveType = name
	}

	label := make([]uint16, windows.MAX_PATH+1)
	fsName := make([]uint16, windows.MAX_PATH+1)
	var serial, maxComponent, flags uint32
	if err := windows.GetVolumeInformation(p, &label[0], uint32(len(label)), &serial, &maxComponent, &flags, &fsName[0], uint32(len(fsName))); err != nil {
		return v
	}

	v.Ready = true
	v.Label = windows.UTF16ToString(label)
	v.FilesystemType = windows.UTF16ToString(fsName)
	v.Writable = flags&windows.FILE_READ_ONLY_VOLUME == 0

	var freeToCaller, total, totalFree uint64
	if err := windows.GetDiskFreeSpaceEx(p, &freeToCaller, &total, &totalFree); err == nil {
		v.TotalBytes = total
		v.FreeBytes = totalFree
	}
	return v
}

// Describe builds a Volume for an arbitrary directory using the information
// of the drive that holds it.
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

	return describeRoot(filepath.VolumeName(abs)+`\`, abs), nil
}
