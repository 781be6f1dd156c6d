package volume

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// mountEntry is one line of /proc/self/mountinfo reduced to what volume
// discovery needs.
type mountEntry struct {
	MountPoint string
	FSType     string
	Source     string
	Options    []string
}

// pseudoFilesystems never hold user data and are skipped during discovery.
var pseudoFilesystems = map[string]bool{
	"autofs":      true,
	"binfmt_misc": true,
	"bpf":         true,
	"cgroup":      true,
	"cgroup2":     true,
	"configfs":    true,
	"debugfs":     true,
	"devpts":      true,
	"devtmpfs":    true,
	"efivarfs":    true,
	"fusectl":     true,
	"hugetlbfs":   true,
	"mqueue":      true,
	"nsfs":        true,
	"proc":        true,
	"pstore":      true,
	"rpc_pipefs":  true,
	"securityfs":  true,
	"selinuxfs":   true,
	"squashfs":    true,
	"sysfs":       true,
	"tracefs":     true,
}

// parseMountInfo parses the mountinfo format described in proc(5):
//
//	36 35 98:0 /mnt1 /mnt2 rw,noatime master:1 - ext3 /dev/root rw,errors=continue
func parseMountInfo(r io.Reader) ([]mountEntry, error) {
	var entries []mountEntry

	scanner := bufio.NewScanner(r)
	for line := 1; scanner.Scan(); line++ {
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}

		fields := strings.Fields(text)
		separator := -1
		for i := 6; i < len(fields); i++ {
			if fields[i] == "-" {
				separator = i
				break
			}
		}
		if len(fields) < 6 || separator < 0 || separator+2 >= len(fields) {
			return nil, fmt.Errorf("mountinfo line %d: malformed entry %q", line, text)
		}

		entries = append(entries, mountEntry{
			MountPoint: unescapeOctal(fields[4]),
			Options:    strings.Split(fields[5], ","),
			FSType:     fields[separator+1],
			Source:     unescapeOctal(fields[separator+2]),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read mountinfo: %w", err)
	}
	return entries, nil
}

// unescapeOctal decodes the \NNN escapes the kernel uses for spaces, tabs,
// newlines and backslashes in mount paths.
func unescapeOctal(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}

	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+3 < len(s) {
			if v, err := strconv.ParseUint(s[i+1:i+4], 8, 8); err == nil {
				sb.WriteByte(byte(v))
				i += 3
				continue
			}
		}
		sb.WriteByte(s[i])
	}
	return sb.String()
}

func hasOption(options []string, name string) bool {
	for _, o := range options {
		if o == name {
			return true
		}
	}
	return false
}

// driveTypeFor classifies a mount by its filesystem type.
func driveTypeFor(fsType string) string {
	switch {
	case fsType == "tmpfs" || fsType == "ramfs":
		return DriveRAM
	case fsType == "iso9660" || fsType == "udf":
		return DriveCDROM
	case strings.HasPrefix(fsType, "nfs"),
		fsType == "cifs",
		strings.HasPrefix(fsType, "smb"),
		fsType == "9p",
		fsType == "fuse.sshfs",
		fsType == "ceph",
		fsType == "glusterfs":
		return DriveNetwork
	case fsType == "vfat" || fsType == "exfat":
		return DriveRemovable
	default:
		return DriveFixed
	}
}

// longestMount returns the entry whose mount point is the longest prefix of
// path, i.e. the mount that contains path.
func longestMount(entries []mountEntry, path string) (mountEntry, bool) {
	var (
		best  mountEntry
		found bool
	)
	for _, e := range entries {
		if !containsPath(e.MountPoint, path) {
			continue
		}
		if !found || len(e.MountPoint) >= len(best.MountPoint) {
			best, found = e, true
		}
	}
	return best, found
}

func containsPath(mountPoint, path string) bool {
	if mountPoint == "/" {
		return strings.HasPrefix(path, "/")
	}
	return path == mountPoint || strings.HasPrefix(path, mountPoint+"/")
}
