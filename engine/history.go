package engine

// History is the bounded console: the most recent output lines of every
// process the TaskManager has run, oldest first.
//
// Memory management:
//   - Lines are stored in a slice (FIFO queue)
//   - Oldest lines are evicted when MaxLines or MaxBytes is exceeded
//   - byteSize tracks total bytes to enforce the byte limit
//
// History is not safe for concurrent use; it belongs to the driving loop.
type History struct {
	lines    []string
	byteSize int
	maxLines int
	maxBytes int
	total    uint64
}

// NewHistory returns an empty history holding at most maxLines lines and,
// when maxBytes > 0, at most maxBytes bytes. maxLines <= 0 means DefaultMaxLines.
func NewHistory(maxLines, maxBytes int) *History {
	if maxLines <= 0 {
		maxLines = DefaultMaxLines
	}
	return &History{
		lines:    make([]string, 0, maxLines),
		maxLines: maxLines,
		maxBytes: maxBytes,
	}
}

// Append adds lines at the tail, evicting from the head until both limits hold.
func (h *History) Append(lines ...string) {
	for _, line := range lines {
		h.lines = append(h.lines, line)
		h.byteSize += len(line)
		h.total++

		for {
			exceedsLineLimit := len(h.lines) > h.maxLines
			exceedsByteLimit := h.maxBytes > 0 && h.byteSize > h.maxBytes
			if !exceedsLineLimit && !exceedsByteLimit {
				break
			}
			// A single line above MaxBytes is kept; the console would
			// otherwise show nothing at all.
			if len(h.lines) <= 1 {
				break
			}
			h.byteSize -= len(h.lines[0])
			h.lines[0] = ""
			h.lines = h.lines[1:]
		}
	}
}

// Lines returns a copy of the retained lines, oldest first.
func (h *History) Lines() []string {
	out := make([]string, len(h.lines))
	copy(out, h.lines)
	return out
}

// Len returns the number of retained lines.
func (h *History) Len() int { return len(h.lines) }

// Total returns how many lines have ever been appended, including evicted
// ones. Renderers compare it between frames to find the new lines.
func (h *History) Total() uint64 { return h.total }

// MaxLines returns the line capacity.
func (h *History) MaxLines() int { return h.maxLines }
