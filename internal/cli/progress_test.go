package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProgressReporter(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgressReporter(&buf, "Importing categories")

	p.Update(0, 0)
	assert.False(t, p.Done())
	assert.Empty(t, buf.String())

	p.Update(1, 3)
	assert.False(t, p.Done())

	p.Update(3, 3)
	assert.True(t, p.Done())
	assert.Contains(t, buf.String(), "Importing categories")
}
