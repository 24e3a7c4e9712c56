// Package lineutil turns an arbitrary sequence of UTF-8 byte chunks into a
// sequence of newline-delimited text lines, the way the portal client's
// ingest loop turns one HTTP response body into individual block records.
package lineutil

import "bytes"

// DefaultSeparator is the separator used by the portal's finalized-stream
// endpoint. Splitter supports any single byte, but in practice this is the
// only one ever configured.
const DefaultSeparator = '\n'

// Splitter carries a trailing, not-yet-terminated line across Feed calls.
// It is not safe for concurrent use; the ingest loop owns one per HTTP
// response body.
type Splitter struct {
	sep   byte
	carry []byte
}

// New returns a Splitter using sep as the line terminator.
func New(sep byte) *Splitter {
	return &Splitter{sep: sep}
}

// NewDefault returns a Splitter using DefaultSeparator.
func NewDefault() *Splitter {
	return New(DefaultSeparator)
}

// Feed appends chunk to any carried trailing fragment and returns every
// complete line found, in order, separator stripped. Any bytes after the
// last separator are kept internally and prepended to the next Feed (or
// returned by Flush at end of stream). Feed never mutates chunk.
func (s *Splitter) Feed(chunk []byte) [][]byte {
	if len(chunk) == 0 {
		return nil
	}

	buf := chunk
	if len(s.carry) > 0 {
		buf = make([]byte, 0, len(s.carry)+len(chunk))
		buf = append(buf, s.carry...)
		buf = append(buf, chunk...)
	}

	var lines [][]byte
	for {
		idx := bytes.IndexByte(buf, s.sep)
		if idx < 0 {
			break
		}
		line := make([]byte, idx)
		copy(line, buf[:idx])
		lines = append(lines, line)
		buf = buf[idx+1:]
	}

	if len(buf) > 0 {
		s.carry = append(s.carry[:0], buf...)
	} else {
		s.carry = s.carry[:0]
	}

	return lines
}

// Flush returns the trailing fragment as a final single-line batch if it is
// non-empty, and clears it. Call this once, at end of stream.
func (s *Splitter) Flush() []byte {
	if len(s.carry) == 0 {
		return nil
	}
	line := s.carry
	s.carry = nil
	return line
}

// Pending reports whether a trailing, not-yet-terminated fragment is held.
func (s *Splitter) Pending() bool {
	return len(s.carry) > 0
}

// Reset discards any carried fragment, for reuse across a resumed request.
func (s *Splitter) Reset() {
	s.carry = nil
}
