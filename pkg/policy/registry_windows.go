//go:build windows

package policy

import (
	"errors"
	"fmt"

	"golang.org/x/sys/windows/registry"
)

// DefaultLocator is where Windows records whether Win32 long paths are
// enabled.
const DefaultLocator = `HKEY_LOCAL_MACHINE\SYSTEM\CurrentControlSet\Control\FileSystem\LongPathsEnabled`

var registryRoots = map[Root]registry.Key{
	RootLocalMachine:  registry.LOCAL_MACHINE,
	RootClassesRoot:   registry.CLASSES_ROOT,
	RootCurrentConfig: registry.CURRENT_CONFIG,
	RootCurrentUser:   registry.CURRENT_USER,
	RootUsers:         registry.USERS,
}

// readRegistry reads a DWORD or QWORD value from the 64-bit registry view.
func readRegistry(loc Location) (int64, error) {
	root, ok := registryRoots[loc.Root]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnsupportedLocation, loc.Root)
	}

	key, err := registry.OpenKey(root, loc.Key, registry.QUERY_VALUE|registry.WOW64_64KEY)
	if err != nil {
		if errors.Is(err, registry.ErrNotExist) {
			return 0, fmt.Errorf("%w: %s", ErrNotFound, loc)
		}
		return 0, fmt.Errorf("unable to open registry key %s: %w", loc.Key, err)
	}
	defer key.Close()

	value, _, err := key.GetIntegerValue(loc.Value)
	if err != nil {
		switch {
		case errors.Is(err, registry.ErrNotExist):
			return 0, fmt.Errorf("%w: %s", ErrNotFound, loc)
		case errors.Is(err, registry.ErrUnexpectedType):
			return 0, fmt.Errorf("%w: %s", ErrNotInteger, loc)
		}
		return 0, fmt.Errorf("unable to read registry value %s: %w", loc, err)
	}

	return int64(value), nil
}
