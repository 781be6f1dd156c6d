//go:build windows

package probe

import (
	"os"
	"unicode/utf16"

	"github.com/spf13/afero"
	"golang.org/x/sys/windows"
)

// NewSystemFs returns the filesystem probes run against in production.
//
// The os package rewrites long absolute paths into the \\?\ form, which
// bypasses the MAX_PATH check the probe is trying to observe. Creation calls
// therefore go straight to the Win32 API with the path as given; everything
// else, cleanup included, keeps the os behaviour.
func NewSystemFs() afero.Fs {
	return &legacyFs{}
}

// pathLength counts UTF-16 code units, the unit of MAX_PATH. Characters
// outside the Basic Multilingual Plane count twice.
func pathLength(path string) int {
	n := 0
	for _, r := range path {
		n += utf16.RuneLen(r)
	}
	return n
}

type legacyFs struct {
	afero.OsFs
}

func (fs *legacyFs) Name() string {
	return "LegacyWin32Fs"
}

func (fs *legacyFs) Mkdir(name string, perm os.FileMode) error {
	p, err := windows.UTF16PtrFromString(name)
	if err != nil {
		return &os.PathError{Op: "mkdir", Path: name, Err: err}
	}
	if err := windows.CreateDirectory(p, nil); err != nil {
		return &os.PathError{Op: "mkdir", Path: name, Err: err}
	}
	return nil
}

func (fs *legacyFs) Create(name string) (afero.File, error) {
	return fs.OpenFile(name, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0666)
}

func (fs *legacyFs) OpenFile(name string, flag int, perm os.FileMode) (afero.File, error) {
	p, err := windows.UTF16PtrFromString(name)
	if err != nil {
		return nil, &os.PathError{Op: "open", Path: name, Err: err}
	}

	var access uint32
	switch flag & (os.O_RDONLY | os.O_WRONLY | os.O_RDWR) {
	case os.O_WRONLY:
		access = windows.GENERIC_WRITE
	case os.O_RDWR:
		access = windows.GENERIC_READ | windows.GENERIC_WRITE
	default:
		access = windows.GENERIC_READ
	}

	var disposition uint32
	switch {
	case flag&(os.O_CREATE|os.O_EXCL) == os.O_CREATE|os.O_EXCL:
		disposition = windows.CREATE_NEW
	case flag&(os.O_CREATE|os.O_TRUNC) == os.O_CREATE|os.O_TRUNC:
		disposition = windows.CREATE_ALWAYS
	case flag&os.O_CREATE == os.O_CREATE:
		disposition = windows.OPEN_ALWAYS
	case flag&os.O_TRUNC == os.O_TRUNC:
		disposition = windows.TRUNCATE_EXISTING
	default:
		disposition = windows.OPEN_EXISTING
	}

	h, err := windows.CreateFile(p, access, windows.FILE_SHARE_READ|windows.FILE_SHARE_WRITE, nil, disposition, windows.FILE_ATTRIBUTE_NORMAL, 0)
	if err != nil {
		return nil, &os.PathError{Op: "open", Path: name, Err: err}
	}
	return os.NewFile(uintptr(h), name), nil
}
