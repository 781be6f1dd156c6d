package policy

import (
	"fmt"
	"path"
	"strings"
)

// Root identifies the store a policy location lives in.
type Root int

const (
	RootUnknown Root = iota
	RootLocalMachine
	RootClassesRoot
	RootCurrentConfig
	RootCurrentUser
	RootDynData
	RootUsers
	// RootFile is a plain file whose content is the policy value.
	RootFile
)

var rootAliases = map[string]Root{
	"HKEY_LOCAL_MACHINE":  RootLocalMachine,
	"HKLM":                RootLocalMachine,
	"HKLM:":               RootLocalMachine,
	"HKEY_CLASSES_ROOT":   RootClassesRoot,
	"HKCR":                RootClassesRoot,
	"HKCR:":               RootClassesRoot,
	"HKEY_CURRENT_CONFIG": RootCurrentConfig,
	"HKCC":                RootCurrentConfig,
	"HKCC:":               RootCurrentConfig,
	"HKEY_CURRENT_USER":   RootCurrentUser,
	"HKCU":                RootCurrentUser,
	"HKCU:":               RootCurrentUser,
	"HKEY_DYN_DATA":       RootDynData,
	"HKDD":                RootDynData,
	"HKDD:":               RootDynData,
	"HKEY_USERS":          RootUsers,
	"HKU":                 RootUsers,
	"HKU:":                RootUsers,
}

func (r Root) String() string {
	switch r {
	case RootLocalMachine:
		return "HKEY_LOCAL_MACHINE"
	case RootClassesRoot:
		return "HKEY_CLASSES_ROOT"
	case RootCurrentConfig:
		return "HKEY_CURRENT_CONFIG"
	case RootCurrentUser:
		return "HKEY_CURRENT_USER"
	case RootDynData:
		return "HKEY_DYN_DATA"
	case RootUsers:
		return "HKEY_USERS"
	case RootFile:
		return "file"
	default:
		return "unknown"
	}
}

// Location is a parsed policy locator: a root, the key (or directory) below
// it and the name of the value to read.
type Location struct {
	Root  Root
	Key   string
	Value string
}

// String renders the location back into locator form.
func (l Location) String() string {
	if l.Root == RootFile {
		return path.Join(l.Key, l.Value)
	}
	if l.Key == "" {
		return l.Root.String() + `\` + l.Value
	}
	return l.Root.String() + `\` + l.Key + `\` + l.Value
}

// ParseLocation splits a locator into a Location.
//
// Registry locators have the form ROOT\Key\Path\ValueName where ROOT is one
// of the HKEY_* names or their short aliases (case-insensitive). Locators
// starting with "/" name a file whose content holds the value.
func ParseLocation(locator string) (Location, error) {
	locator = strings.TrimSpace(locator)
	if locator == "" {
		return Location{}, fmt.Errorf("%w: empty locator", ErrInvalidLocator)
	}

	if strings.HasPrefix(locator, "/") {
		dir, name := path.Split(path.Clean(locator))
		if name == "" || name == "/" {
			return Location{}, fmt.Errorf("%w: %q names no value", ErrInvalidLocator, locator)
		}
		return Location{Root: RootFile, Key: path.Clean(dir), Value: name}, nil
	}

	index := strings.IndexByte(locator, '\\')
	if index < 0 {
		return Location{}, fmt.Errorf("%w: %q has no root separator", ErrInvalidLocator, locator)
	}

	root, ok := rootAliases[strings.ToUpper(locator[:index])]
	if !ok {
		return Location{}, fmt.Errorf("%w: unsupported root %q", ErrInvalidLocator, locator[:index])
	}

	rest := strings.Trim(locator[index+1:], `\`)
	if rest == "" {
		return Location{}, fmt.Errorf("%w: %q names no value", ErrInvalidLocator, locator)
	}

	key, value := "", rest
	if last := strings.LastIndexByte(rest, '\\'); last >= 0 {
		key, value = rest[:last], rest[last+1:]
	}

	return Location{Root: root, Key: key, Value: value}, nil
}
