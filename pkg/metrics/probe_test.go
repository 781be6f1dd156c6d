package metrics

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNoopProbeMetrics(t *testing.T) {
	m := NewNoopProbeMetrics()

	assert.NotPanics(t, func() {
		m.SetPolicy(true)
		m.RecordAttempt("C:\\", false)
		m.RecordResult("C:\\", "Aborted", 0, time.Second)
	})
}

func TestWriteTextfile_Disabled(t *testing.T) {
	if IsEnabled() {
		t.Skip("registry already initialized in this process")
	}

	err := WriteTextfile(filepath.Join(t.TempDir(), "out.prom"))
	assert.ErrorIs(t, err, ErrDisabled)
}
