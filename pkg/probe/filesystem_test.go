//go:build !windows

package probe

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPathLength_CountsRunes(t *testing.T) {
	assert.Equal(t, 4, pathLength("/été"))
	assert.Equal(t, 2, pathLength("/\U0001D11E"))
}
