package policy

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/cast"
)

var (
	// ErrInvalidLocator indicates a locator that cannot be parsed.
	ErrInvalidLocator = errors.New("invalid policy locator")

	// ErrNotFound indicates that the key or value does not exist.
	ErrNotFound = errors.New("policy value not found")

	// ErrNotInteger indicates that the value exists but is not an integer.
	ErrNotInteger = errors.New("policy value is not an integer")

	// ErrUnsupportedLocation indicates that a store cannot serve the
	// location's root on this host.
	ErrUnsupportedLocation = errors.New("policy location not supported on this host")
)

// Store reads integer policy values.
//
// Implementations return ErrNotFound for missing keys and values and
// ErrNotInteger for values of another type. Any other error is an access
// failure.
type Store interface {
	ReadInteger(loc Location) (int64, error)
}

// FileStore reads values stored as decimal text in regular files, such as
// sysctl entries under /proc/sys.
type FileStore struct{}

// ReadInteger implements Store.
func (FileStore) ReadInteger(loc Location) (int64, error) {
	if loc.Root != RootFile {
		return 0, fmt.Errorf("%w: %s", ErrUnsupportedLocation, loc.Root)
	}

	data, err := os.ReadFile(filepath.Join(filepath.FromSlash(loc.Key), loc.Value))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, fmt.Errorf("%w: %s", ErrNotFound, loc)
		}
		return 0, err
	}

	value, err := cast.ToInt64E(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrNotInteger, loc, err)
	}
	return value, nil
}

// SystemStore dispatches file locations to FileStore and registry locations
// to the host registry, where one exists.
type SystemStore struct {
	files FileStore
}

// NewSystemStore returns the store used outside of tests.
func NewSystemStore() *SystemStore {
	return &SystemStore{}
}

// ReadInteger implements Store.
func (s *SystemStore) ReadInteger(loc Location) (int64, error) {
	if loc.Root == RootFile {
		return s.files.ReadInteger(loc)
	}
	return readRegistry(loc)
}

// MemoryStore is an in-memory Store for tests and dry runs.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]any
	err    error
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]any)}
}

// Set stores value under locator. Non-integer values make ReadInteger fail
// with ErrNotInteger.
func (m *MemoryStore) Set(locator string, value any) error {
	loc, err := ParseLocation(locator)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[canonicalKey(loc)] = value
	return nil
}

// FailWith makes every subsequent read return err, simulating an
// inaccessible store. A nil err restores normal behavior.
func (m *MemoryStore) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// ReadInteger implements Store.
func (m *MemoryStore) ReadInteger(loc Location) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.err != nil {
		return 0, m.err
	}

	raw, ok := m.values[canonicalKey(loc)]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrNotFound, loc)
	}

	switch v := raw.(type) {
	case int:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case int64:
		return v, nil
	case uint32:
		return int64(v), nil
	case uint64:
		return int64(v), nil
	default:
		return 0, fmt.Errorf("%w: %s holds %T", ErrNotInteger, loc, raw)
	}
}

// canonicalKey folds case for registry locations, which are case-insensitive.
func canonicalKey(loc Location) string {
	if loc.Root == RootFile {
		return loc.String()
	}
	return strings.ToUpper(loc.String())
}
