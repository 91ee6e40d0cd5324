package engine

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"os"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
)

// StreamKind identifies which pipe a stream drains.
type StreamKind int

const (
	// Stdout is the child's standard output.
	Stdout StreamKind = iota
	// Stderr is the child's standard error.
	Stderr
)

// String returns the stream name.
func (k StreamKind) String() string {
	switch k {
	case Stdout:
		return "stdout"
	case Stderr:
		return "stderr"
	default:
		return "unknown"
	}
}

// readOutput is the background half of a stream. It forwards everything read
// from r, in order, as freshly allocated chunks and closes ch at end of stream.
// A read error ends the stream the same way EOF does; the controller only
// observes the closed channel and learns about the exit from its own polling.
func readOutput(r io.ReadCloser, ch chan<- []byte, chunkSize int, logger *slog.Logger) {
	defer close(ch)
	defer func() { _ = r.Close() }()

	buf := make([]byte, chunkSize)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			ch <- chunk
		}
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, os.ErrClosed) {
				logger.Debug("output reader reached end of stream")
			} else {
				logger.Warn("output reader stopped", "error", err)
			}
			return
		}
	}
}

// stream is the controller half: the receiving end of one reader's channel
// plus the line assembly state for that pipe.
type stream struct {
	kind   StreamKind
	ch     <-chan []byte
	closed bool
	lines  *lineSplitter
}

func newStream(kind StreamKind, ch <-chan []byte, maxLineBytes int) *stream {
	return &stream{kind: kind, ch: ch, lines: newLineSplitter(maxLineBytes)}
}

// drain receives whatever is buffered right now without blocking. It stops at
// the snapshot of the channel length (plus one receive to notice a close), so a
// reader producing faster than we consume cannot pin the caller in this loop.
// raw receives every chunk before line assembly; complete lines go to emit.
func (s *stream) drain(raw func([]byte), emit func(string)) bool {
	if s.closed {
		return false
	}

	got := false
	pending := len(s.ch)
	for i := 0; i <= pending; i++ {
		select {
		case chunk, ok := <-s.ch:
			if !ok {
				s.closed = true
				for _, line := range s.lines.flush() {
					emit(line)
				}
				return got
			}
			got = true
			raw(chunk)
			for _, line := range s.lines.write(chunk) {
				emit(line)
			}
		default:
			return got
		}
	}
	return got
}

// lineSplitter turns a byte stream into decoded text lines. Bytes after the
// last newline are held until more data or end of stream, so neither a line
// nor a multi-byte character is ever split at a chunk boundary.
type lineSplitter struct {
	pending []byte
	max     int
	decoder *encoding.Decoder
}

func newLineSplitter(maxLineBytes int) *lineSplitter {
	return &lineSplitter{
		max:     maxLineBytes,
		decoder: unicode.UTF8.NewDecoder(),
	}
}

func (l *lineSplitter) write(chunk []byte) []string {
	l.pending = append(l.pending, chunk...)

	var out []string
	for {
		i := bytes.IndexByte(l.pending, '\n')
		if i < 0 {
			break
		}
		out = append(out, l.decode(l.pending[:i]))
		l.pending = l.pending[i+1:]
	}

	for len(l.pending) > l.max {
		cut := l.max
		for cut > 0 && !utf8.RuneStart(l.pending[cut]) {
			cut--
		}
		if cut == 0 {
			cut = l.max
		}
		out = append(out, l.decode(l.pending[:cut]))
		l.pending = l.pending[cut:]
	}

	if len(l.pending) == 0 {
		l.pending = nil
	}
	return out
}

// flush returns the unterminated tail, if any.
func (l *lineSplitter) flush() []string {
	if len(l.pending) == 0 {
		return nil
	}
	line := l.decode(l.pending)
	l.pending = nil
	return []string{line}
}

// decode converts one raw line to text. Invalid UTF-8 becomes U+FFFD rather
// than an error. A trailing CR (CRLF endings) is dropped, and carriage-return
// redraws such as progress bars keep only the final segment, as a terminal
// would show it.
func (l *lineSplitter) decode(raw []byte) string {
	raw = bytes.TrimRight(raw, "\r")
	if i := bytes.LastIndexByte(raw, '\r'); i >= 0 {
		raw = raw[i+1:]
	}
	text, err := l.decoder.Bytes(raw)
	if err != nil {
		return string(bytes.ToValidUTF8(raw, []byte("\uFFFD")))
	}
	return string(text)
}
