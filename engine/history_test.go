package engine

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHistoryLineLimit(t *testing.T) {
	h := NewHistory(3, 0)
	for i := range 5 {
		h.Append(fmt.Sprintf("l%d", i))
		assert.LessOrEqual(t, h.Len(), 3)
	}
	assert.Equal(t, []string{"l2", "l3", "l4"}, h.Lines())
	assert.Equal(t, uint64(5), h.Total())
}

func TestHistoryByteLimit(t *testing.T) {
	h := NewHistory(100, 10)
	h.Append("aaaa", "bbbb", "cccc")
	assert.Equal(t, []string{"bbbb", "cccc"}, h.Lines())
}

func TestHistoryKeepsOversizedLine(t *testing.T) {
	h := NewHistory(100, 4)
	h.Append("a", "this line is longer than the byte limit")
	assert.Equal(t, []string{"this line is longer than the byte limit"}, h.Lines())
}

func TestHistoryLinesIsACopy(t *testing.T) {
	h := NewHistory(2, 0)
	h.Append("x")
	lines := h.Lines()
	lines[0] = "mutated"
	assert.Equal(t, []string{"x"}, h.Lines())
}

func TestHistoryDefaultCapacity(t *testing.T) {
	h := NewHistory(0, 0)
	assert.Equal(t, DefaultMaxLines, h.MaxLines())
}
