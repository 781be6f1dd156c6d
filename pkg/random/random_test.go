package random

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func onlyUppercase(s string) bool {
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

func TestSegment(t *testing.T) {
	g := New(1)

	for _, n := range []int{1, 3, 32, 255, 500} {
		s := g.Segment(n)
		assert.Len(t, s, n)
		assert.True(t, onlyUppercase(s), "unexpected character in %q", s)
	}

	t.Run("NonPositiveIsEmpty", func(t *testing.T) {
		assert.Equal(t, "", g.Segment(0))
		assert.Equal(t, "", g.Segment(-4))
	})
}

func TestFileName(t *testing.T) {
	g := New(7)

	for n := MinFileNameLength; n <= 260; n++ {
		name, err := g.FileName(n)
		require.NoError(t, err)
		require.Len(t, name, n)
		require.Equal(t, 1, strings.Count(name, "."), "name %q", name)
		require.Equal(t, n-4, strings.IndexByte(name, '.'), "name %q", name)
		require.True(t, onlyUppercase(strings.Replace(name, ".", "", 1)))
	}
}

func TestFileName_TooShort(t *testing.T) {
	g := New(7)

	for _, n := range []int{-1, 0, 1, 4} {
		name, err := g.FileName(n)
		assert.Empty(t, name)
		assert.True(t, errors.Is(err, ErrNameTooShort), "length %d: %v", n, err)
	}
}

func TestDeterministicSequences(t *testing.T) {
	a := New(42)
	b := New(42)

	for i := 0; i < 10; i++ {
		assert.Equal(t, a.Segment(16), b.Segment(16))
	}

	t.Run("DifferentSeedsDiverge", func(t *testing.T) {
		assert.NotEqual(t, New(1).Segment(32), New(2).Segment(32))
	})

	t.Run("ReseedReplays", func(t *testing.T) {
		g := New(99)
		first := g.Segment(64)
		g.Segment(10)
		g.Reseed(99)
		assert.Equal(t, first, g.Segment(64))
	})
}

func TestConcurrentUse(t *testing.T) {
	g := New(3)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if s := g.Segment(8); len(s) != 8 {
					t.Errorf("unexpected length %d", len(s))
				}
			}
		}()
	}
	wg.Wait()
}
