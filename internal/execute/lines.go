// lines.go reassembles complete output lines across arbitrary chunk
// boundaries. Partial lines are held back until their terminating newline
// arrives; Flush drains whatever remains at stream end.
package execute

import "bytes"

// LineBuffer accumulates byte chunks and yields complete lines.
// The zero value is ready to use.
type LineBuffer struct {
	pending []byte
}

// Write appends a chunk and returns every line completed by it, in order,
// without the trailing newline. A trailing \r is stripped.
func (b *LineBuffer) Write(chunk []byte) [][]byte {
	b.pending = append(b.pending, chunk...)

	var lines [][]byte
	for {
		i := bytes.IndexByte(b.pending, '\n')
		if i < 0 {
			return lines
		}
		line := b.pending[:i]
		if n := len(line); n > 0 && line[n-1] == '\r' {
			line = line[:n-1]
		}
		// Copy out: pending is reused across Write calls.
		lines = append(lines, append([]byte(nil), line...))
		b.pending = b.pending[i+1:]
	}
}

// Flush returns the unterminated trailing line, if any, and resets the
// buffer. Call once at end of stream.
func (b *LineBuffer) Flush() []byte {
	if len(b.pending) == 0 {
		return nil
	}
	line := append([]byte(nil), b.pending...)
	b.pending = nil
	return line
}
