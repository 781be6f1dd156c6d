//go:build windows

package probe

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPathLength_CountsUTF16Units(t *testing.T) {
	assert.Equal(t, 6, pathLength(`C:\été`))
	assert.Equal(t, 5, pathLength("C:\\\U0001D11E"))
	assert.Equal(t, 7, pathLength("C:\\a\U0001F600b"))
}
