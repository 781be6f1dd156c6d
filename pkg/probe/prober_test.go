package probe

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/marmos91/maxpathlen/internal/logger"
	"github.com/marmos91/maxpathlen/pkg/random"
	"github.com/marmos91/maxpathlen/pkg/volume"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// Test Filesystems
// ============================================================================

// limitFs rejects file creation for paths of limit characters or more, the
// way a filesystem driver enforcing a path limit does.
type limitFs struct {
	afero.Fs
	limit int

	// hang makes rejected creations block instead of failing.
	hang chan struct{}

	mkdirErr  error
	removeErr error
}

func (l *limitFs) OpenFile(name string, flag int, perm os.FileMode) (afero.File, error) {
	if pathLength(name) >= l.limit {
		if l.hang != nil {
			<-l.hang
		}
		return nil, &os.PathError{Op: "open", Path: name, Err: syscall.ENAMETOOLONG}
	}
	return l.Fs.OpenFile(name, flag, perm)
}

func (l *limitFs) Mkdir(name string, perm os.FileMode) error {
	if l.mkdirErr != nil {
		return &os.PathError{Op: "mkdir", Path: name, Err: l.mkdirErr}
	}
	return l.Fs.Mkdir(name, perm)
}

func (l *limitFs) RemoveAll(path string) error {
	if l.removeErr != nil {
		return l.removeErr
	}
	return l.Fs.RemoveAll(path)
}

const testRoot = "/vol"

func newTestFs(t *testing.T, limit int) *limitFs {
	t.Helper()
	mem := afero.NewMemMapFs()
	require.NoError(t, mem.MkdirAll(testRoot, 0755))
	return &limitFs{Fs: mem, limit: limit}
}

func testVolume() volume.Volume {
	return volume.Volume{Root: testRoot, Name: testRoot, FilesystemType: "memfs", Ready: true, Writable: true}
}

func defaultTestOptions() Options {
	opts := DefaultOptions()
	opts.Timeout = 0
	return opts
}

// entries lists what is left under the volume root.
func entries(t *testing.T, fs afero.Fs) []string {
	t.Helper()
	infos, err := afero.ReadDir(fs, testRoot)
	require.NoError(t, err)
	names := make([]string, 0, len(infos))
	for _, info := range infos {
		names = append(names, info.Name())
	}
	return names
}

// ============================================================================
// Search Tests
// ============================================================================

func TestProbe_LegacyLimitBelowInitial(t *testing.T) {
	fs := newTestFs(t, 255)
	p := New(fs, random.New(1), defaultTestOptions(), nil)

	res := p.Probe(context.Background(), testVolume(), false)

	assert.Equal(t, 254, res.MaximumPathLength)
	assert.Equal(t, ReasonLegacyLimitHit, res.Reason)
	assert.Equal(t, 7, res.Attempts)
	assert.Equal(t, 245, res.ChainLength)
	assert.NoError(t, res.Err)
	assert.Empty(t, entries(t, fs))
}

func TestProbe_LegacyLimitAboveInitial(t *testing.T) {
	fs := newTestFs(t, 263)
	p := New(fs, random.New(1), defaultTestOptions(), nil)

	res := p.Probe(context.Background(), testVolume(), false)

	assert.Equal(t, 262, res.MaximumPathLength)
	assert.Equal(t, ReasonLegacyLimitHit, res.Reason)
	assert.Equal(t, 4, res.Attempts)
}

func TestProbe_ExtendedReachesCeiling(t *testing.T) {
	fs := newTestFs(t, HardCeiling+1)
	p := New(fs, random.New(1), defaultTestOptions(), nil)

	res := p.Probe(context.Background(), testVolume(), true)

	assert.Equal(t, HardCeiling, res.MaximumPathLength)
	assert.Equal(t, ReasonCeilingReached, res.Reason)
	assert.Equal(t, 2, res.Attempts)
	assert.True(t, res.ExtendedPathsSupported)
	assert.Empty(t, entries(t, fs))
}

func TestProbe_ExtendedInitialRejected(t *testing.T) {
	fs := newTestFs(t, 250)
	p := New(fs, random.New(1), defaultTestOptions(), nil)

	res := p.Probe(context.Background(), testVolume(), true)

	assert.Equal(t, HardCeiling, res.MaximumPathLength)
	assert.Equal(t, ReasonCeilingReached, res.Reason)
	assert.Equal(t, 2, res.Attempts)
}

func TestProbe_LegacyScanCappedAtCeiling(t *testing.T) {
	fs := newTestFs(t, 10000)
	p := New(fs, random.New(1), defaultTestOptions(), nil)

	res := p.Probe(context.Background(), testVolume(), false)

	assert.Equal(t, HardCeiling, res.MaximumPathLength)
	assert.Equal(t, ReasonCeilingReached, res.Reason)
	assert.Equal(t, HardCeiling-260+1, res.Attempts)
}

func TestProbe_NothingAccepted(t *testing.T) {
	fs := newTestFs(t, 1)
	p := New(fs, random.New(1), defaultTestOptions(), nil)

	res := p.Probe(context.Background(), testVolume(), false)

	assert.Equal(t, 0, res.MaximumPathLength)
	assert.Equal(t, ReasonAborted, res.Reason)
	assert.ErrorIs(t, res.Err, ErrNoLengthAccepted)
	assert.Empty(t, entries(t, fs))
}

func TestProbe_ResultNeverExceedsCeiling(t *testing.T) {
	for _, limit := range []int{1, 100, 250, 251, 252, 255, 260, 261, 300, 499, 500, 501, 1000} {
		for _, extended := range []bool{false, true} {
			t.Run(fmt.Sprintf("limit=%d/extended=%t", limit, extended), func(t *testing.T) {
				fs := newTestFs(t, limit)
				p := New(fs, random.New(uint64(limit)), defaultTestOptions(), nil)

				res := p.Probe(context.Background(), testVolume(), extended)

				assert.GreaterOrEqual(t, res.MaximumPathLength, 0)
				assert.LessOrEqual(t, res.MaximumPathLength, HardCeiling)
				if !extended && limit > 251 && limit <= HardCeiling {
					assert.Equal(t, limit-1, res.MaximumPathLength)
					assert.Equal(t, ReasonLegacyLimitHit, res.Reason)
				}
			})
		}
	}
}

// ============================================================================
// Option Tests
// ============================================================================

func TestProbe_InitialLengthLeavesNoRoomForName(t *testing.T) {
	fs := newTestFs(t, 1000)
	opts := defaultTestOptions()
	opts.InitialFilePathLength = 249

	res := New(fs, random.New(1), opts, nil).Probe(context.Background(), testVolume(), false)

	assert.Equal(t, ReasonAborted, res.Reason)
	assert.Equal(t, 0, res.MaximumPathLength)
	assert.ErrorIs(t, res.Err, ErrInvalidOptions)
	assert.ErrorIs(t, res.Err, random.ErrNameTooShort)
	assert.Equal(t, 0, res.Attempts)
}

func TestProbe_InvalidOptions(t *testing.T) {
	opts := defaultTestOptions()
	opts.InitialFilePathLength = HardCeiling + 1

	fs := newTestFs(t, 1000)
	res := New(fs, random.New(1), opts, nil).Probe(context.Background(), testVolume(), true)

	assert.Equal(t, ReasonAborted, res.Reason)
	assert.ErrorIs(t, res.Err, ErrInvalidOptions)
	assert.Empty(t, entries(t, fs))
}

func TestOptions_Validate(t *testing.T) {
	assert.NoError(t, DefaultOptions().Validate())

	tests := map[string]func(*Options){
		"segment": func(o *Options) { o.MaxDirSegmentLength = 0 },
		"folder":  func(o *Options) { o.MaxFolderPathLength = 3 },
		"initial": func(o *Options) { o.InitialFilePathLength = 501 },
		"timeout": func(o *Options) { o.Timeout = -time.Second },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			opts := DefaultOptions()
			mutate(&opts)
			assert.ErrorIs(t, opts.Validate(), ErrInvalidOptions)
		})
	}
}

// ============================================================================
// Lifecycle Tests
// ============================================================================

func TestProbe_RepeatableWithoutResidue(t *testing.T) {
	fs := newTestFs(t, 255)
	p := New(fs, random.New(3), defaultTestOptions(), nil)

	first := p.Probe(context.Background(), testVolume(), false)
	require.Empty(t, entries(t, fs))
	second := p.Probe(context.Background(), testVolume(), false)
	require.Empty(t, entries(t, fs))

	assert.Equal(t, first.MaximumPathLength, second.MaximumPathLength)
	assert.Equal(t, first.Reason, second.Reason)
	assert.Equal(t, first.Attempts, second.Attempts)
}

func TestProbe_KeepArtifacts(t *testing.T) {
	fs := newTestFs(t, 255)
	opts := defaultTestOptions()
	opts.KeepArtifacts = true

	res := New(fs, random.New(1), opts, nil).Probe(context.Background(), testVolume(), false)
	require.Equal(t, 254, res.MaximumPathLength)
	assert.True(t, res.Retained)

	exists, err := afero.DirExists(fs, res.WorkDir)
	require.NoError(t, err)
	assert.True(t, exists)

	// The accepted file is the only one in the leaf.
	var files []string
	err = afero.Walk(fs, res.WorkDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			files = append(files, path)
		}
		return nil
	})
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, 254, pathLength(files[0]))

	data, err := afero.ReadFile(fs, files[0])
	require.NoError(t, err)
	assert.Len(t, data, payloadLength+1)
	assert.True(t, strings.HasSuffix(string(data), "\n"))
	assert.Equal(t, strings.ToUpper(string(data)), string(data))
}

func TestProbe_WorkDir(t *testing.T) {
	fs := newTestFs(t, 255)
	opts := defaultTestOptions()
	opts.WorkDir = "scratch"

	res := New(fs, random.New(1), opts, nil).Probe(context.Background(), testVolume(), false)

	assert.Equal(t, 254, res.MaximumPathLength)
	assert.True(t, strings.HasPrefix(res.WorkDir, testRoot+"/scratch/"))
	assert.Equal(t, []string{"scratch"}, entries(t, fs))

	left, err := afero.ReadDir(fs, testRoot+"/scratch")
	require.NoError(t, err)
	assert.Empty(t, left)
}

func TestProbe_DirectoryCreationFails(t *testing.T) {
	fs := newTestFs(t, 1000)
	fs.mkdirErr = syscall.EACCES

	res := New(fs, random.New(1), defaultTestOptions(), nil).Probe(context.Background(), testVolume(), false)

	assert.Equal(t, ReasonAborted, res.Reason)
	assert.Equal(t, 0, res.MaximumPathLength)
	assert.Equal(t, 0, res.Attempts)

	var dirErr *DirectoryCreationError
	require.True(t, errors.As(res.Err, &dirErr))
	assert.Equal(t, res.WorkDir, dirErr.Path)
	assert.ErrorIs(t, res.Err, syscall.EACCES)
	assert.Empty(t, entries(t, fs))
}

func TestExistingTopDirectoryIsLeftAlone(t *testing.T) {
	fs := newTestFs(t, 255)
	opts := defaultTestOptions()

	// The same seed replays the same top directory name.
	c := planChain(baseDir(testRoot, ""), opts.MaxDirSegmentLength, opts.MaxFolderPathLength-3, random.New(1))
	top := c.top()
	require.NoError(t, fs.MkdirAll(top, 0755))
	require.NoError(t, afero.WriteFile(fs, top+"/keep.txt", []byte("data"), 0644))

	res := New(fs, random.New(1), opts, nil).Probe(context.Background(), testVolume(), false)

	assert.Equal(t, ReasonAborted, res.Reason)
	assert.Equal(t, 0, res.MaximumPathLength)
	assert.False(t, res.Retained)

	var dirErr *DirectoryCreationError
	require.True(t, errors.As(res.Err, &dirErr))
	assert.Equal(t, top, dirErr.Path)

	data, err := afero.ReadFile(fs, top+"/keep.txt")
	require.NoError(t, err)
	assert.Equal(t, "data", string(data))
}

func TestExistingTopDirectoryIsNotRetained(t *testing.T) {
	fs := newTestFs(t, 255)
	opts := defaultTestOptions()
	opts.KeepArtifacts = true

	top := planChain(baseDir(testRoot, ""), opts.MaxDirSegmentLength, opts.MaxFolderPathLength-3, random.New(1)).top()
	require.NoError(t, fs.MkdirAll(top, 0755))

	res := New(fs, random.New(1), opts, nil).Probe(context.Background(), testVolume(), false)

	assert.Equal(t, ReasonAborted, res.Reason)
	assert.False(t, res.Retained)
	assert.Equal(t, []string{top[len(testRoot)+1:]}, entries(t, fs))
}

func TestProbe_CleanupFailureKeepsResult(t *testing.T) {
	fs := newTestFs(t, 255)
	fs.removeErr = errors.New("device busy")

	res := New(fs, random.New(1), defaultTestOptions(), nil).Probe(context.Background(), testVolume(), false)

	assert.Equal(t, 254, res.MaximumPathLength)
	assert.Equal(t, ReasonLegacyLimitHit, res.Reason)
	assert.NoError(t, res.Err)
	assert.False(t, res.Retained)
}

func TestProbe_Cancelled(t *testing.T) {
	fs := newTestFs(t, 255)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := New(fs, random.New(1), defaultTestOptions(), nil).Probe(ctx, testVolume(), false)

	assert.Equal(t, ReasonAborted, res.Reason)
	assert.ErrorIs(t, res.Err, context.Canceled)
	assert.Empty(t, entries(t, fs))
}

func TestProbe_TimeoutCountsAsRejection(t *testing.T) {
	fs := newTestFs(t, 255)
	fs.hang = make(chan struct{})
	t.Cleanup(func() { close(fs.hang) })

	opts := defaultTestOptions()
	opts.Timeout = 20 * time.Millisecond

	res := New(fs, random.New(1), opts, nil).Probe(context.Background(), testVolume(), false)

	assert.Equal(t, 254, res.MaximumPathLength)
	assert.Equal(t, ReasonLegacyLimitHit, res.Reason)
}

func TestProbe_Throttled(t *testing.T) {
	fs := newTestFs(t, 1000)

	opts := defaultTestOptions()
	opts.MaxOpsPerSecond = 5

	res := New(fs, random.New(1), opts, nil).Probe(context.Background(), testVolume(), true)

	assert.Equal(t, HardCeiling, res.MaximumPathLength)
	assert.Equal(t, ReasonCeilingReached, res.Reason)
	// Eight directories, two files and the cleanup against a bucket of five.
	assert.GreaterOrEqual(t, res.Duration, 800*time.Millisecond)
}

func TestProbe_ThrottleWaitCancelled(t *testing.T) {
	fs := newTestFs(t, 1000)

	opts := defaultTestOptions()
	opts.MaxOpsPerSecond = 1

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	res := New(fs, random.New(1), opts, nil).Probe(ctx, testVolume(), true)

	assert.Equal(t, ReasonAborted, res.Reason)
	assert.Equal(t, 0, res.MaximumPathLength)
}

func TestDebugLogging(t *testing.T) {
	buf := new(bytes.Buffer)
	logger.SetOutput(buf)
	t.Cleanup(func() {
		logger.SetOutput(os.Stdout)
		logger.SetLevel("INFO")
	})

	opts := defaultTestOptions()
	opts.MaxOpsPerSecond = 1000

	res := New(newTestFs(t, 255), random.New(1), opts, nil).Probe(context.Background(), testVolume(), false)
	require.Equal(t, 254, res.MaximumPathLength)
	assert.NotContains(t, buf.String(), "path length")
	assert.Contains(t, buf.String(), "limited to 1000 per second")

	buf.Reset()
	logger.SetLevel("DEBUG")
	opts.MaxOpsPerSecond = 10

	res = New(newTestFs(t, 255), random.New(1), opts, nil).Probe(context.Background(), testVolume(), false)
	require.Equal(t, 254, res.MaximumPathLength)
	assert.Contains(t, buf.String(), "/vol: path length 260 rejected")
	assert.Contains(t, buf.String(), "/vol: path length 254 accepted")
	assert.Contains(t, buf.String(), "Throttled with")
}

// recordingMetrics captures what a probe reports.
type recordingMetrics struct {
	mu       sync.Mutex
	attempts map[bool]int
	reason   string
	value    int
}

func (r *recordingMetrics) RecordAttempt(volume string, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.attempts[ok]++
}

func (r *recordingMetrics) RecordResult(volume string, reason string, v int, d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reason, r.value = reason, v
}

func (r *recordingMetrics) SetPolicy(bool) {}

func TestProbe_RecordsMetrics(t *testing.T) {
	m := &recordingMetrics{attempts: map[bool]int{}}
	fs := newTestFs(t, 255)

	New(fs, random.New(1), defaultTestOptions(), m).Probe(context.Background(), testVolume(), false)

	assert.Equal(t, 6, m.attempts[false])
	assert.Equal(t, 1, m.attempts[true])
	assert.Equal(t, "LegacyLimitHit", m.reason)
	assert.Equal(t, 254, m.value)
}

// ============================================================================
// Reason and Timeout Tests
// ============================================================================

func TestReason_Text(t *testing.T) {
	assert.Equal(t, "Aborted", ReasonAborted.String())
	assert.Equal(t, "LegacyLimitHit", ReasonLegacyLimitHit.String())
	assert.Equal(t, "CeilingReached", ReasonCeilingReached.String())
	assert.Equal(t, "Reason(9)", Reason(9).String())

	text, err := ReasonCeilingReached.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "CeilingReached", string(text))
}

func TestWithTimeout(t *testing.T) {
	t.Run("completes", func(t *testing.T) {
		err := withTimeout(context.Background(), time.Second, func() error { return nil })
		assert.NoError(t, err)
	})

	t.Run("propagates error", func(t *testing.T) {
		boom := errors.New("boom")
		err := withTimeout(context.Background(), time.Second, func() error { return boom })
		assert.ErrorIs(t, err, boom)
	})

	t.Run("times out", func(t *testing.T) {
		release := make(chan struct{})
		defer close(release)

		err := withTimeout(context.Background(), 10*time.Millisecond, func() error {
			<-release
			return nil
		})
		assert.ErrorIs(t, err, ErrTimeout)
	})

	t.Run("cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := withTimeout(ctx, 0, func() error { return nil })
		assert.ErrorIs(t, err, context.Canceled)
	})
}
