// Package random generates the uppercase name fragments used to pad probe
// paths to an exact character count.
//
// The generator is an explicit dependency rather than a package global so that
// tests can fix the seed and obtain deterministic directory and file names.
package random

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
)

const (
	// Alphabet contains every character a generated name may use.
	Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"

	// ExtensionLength is the length of the extension appended by FileName.
	ExtensionLength = 3

	// MinFileNameLength is the shortest name FileName can produce: a one
	// character stem, the dot and the extension.
	MinFileNameLength = 1 + 1 + ExtensionLength
)

// ErrNameTooShort is returned by FileName when the requested length cannot
// hold a stem, a dot and an extension.
var ErrNameTooShort = errors.New("file name length too short")

// seedMix decorrelates the two PCG state words derived from a single seed.
const seedMix = 0x9e3779b97f4a7c15

// Generator produces random uppercase names.
//
// Thread safety:
// All methods are safe for concurrent use. Probes running in parallel share
// one generator, so the source is guarded by a mutex.
type Generator struct {
	mu  sync.Mutex
	src *rand.PCG
	rng *rand.Rand
}

// New creates a generator seeded with seed.
func New(seed uint64) *Generator {
	src := rand.NewPCG(seed, seed^seedMix)
	return &Generator{
		src: src,
		rng: rand.New(src),
	}
}

// Reseed resets the generator so that it replays the sequence of a generator
// created with New(seed).
func (g *Generator) Reseed(seed uint64) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.src.Seed(seed, seed^seedMix)
}

// Segment returns exactly n characters drawn from Alphabet. A non-positive n
// yields the empty string.
func (g *Generator) Segment(n int) string {
	if n <= 0 {
		return ""
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	var sb strings.Builder
	sb.Grow(n)
	for i := 0; i < n; i++ {
		sb.WriteByte(Alphabet[g.rng.IntN(len(Alphabet))])
	}
	return sb.String()
}

// FileName returns a name of exactly totalLen characters shaped as
// STEM.EXT, with a three character extension.
//
// Lengths below MinFileNameLength are a configuration error and return
// ErrNameTooShort; they are never clamped.
func (g *Generator) FileName(totalLen int) (string, error) {
	if totalLen < MinFileNameLength {
		return "", fmt.Errorf("%w: %d < %d", ErrNameTooShort, totalLen, MinFileNameLength)
	}
	return g.Segment(totalLen-ExtensionLength-1) + "." + g.Segment(ExtensionLength), nil
}
