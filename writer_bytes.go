package smartbuf

import (
	"fmt"
	"io"
)

// BytesWriter fills a preallocated image from front to back. It never grows
// the slice; a write past the end stores what fits and returns
// io.ErrShortWrite.
type BytesWriter struct {
	B []byte
	N int
}

func NewBytesWriter(p []byte) *BytesWriter {
	return &BytesWriter{B: p[:cap(p)]}
}

func (w *BytesWriter) Write(p []byte) (int, error) {
	n := copy(w.B[w.N:], p)
	w.N += n
	if n < len(p) {
		return n, io.ErrShortWrite
	}
	return n, nil
}

func (w *BytesWriter) WriteString(s string) (int, error) {
	n := copy(w.B[w.N:], s)
	w.N += n
	if n < len(s) {
		return n, io.ErrShortWrite
	}
	return n, nil
}

// SeekForward zero-fills up to off. Moving backwards is ErrInvalidSeek.
func (w *BytesWriter) SeekForward(off int) error {
	switch {
	case off < w.N:
		return fmt.Errorf("%w: %d is behind %d", ErrInvalidSeek, off, w.N)
	case off > len(w.B):
		clear(w.B[w.N:])
		w.N = len(w.B)
		return io.ErrShortWrite
	}
	clear(w.B[w.N:off])
	w.N = off
	return nil
}

func (w *BytesWriter) Flush() error   { return nil }
func (w *BytesWriter) Len() int       { return w.N }
func (w *BytesWriter) Available() int { return len(w.B) - w.N }
func (w *BytesWriter) Bytes() []byte  { return w.B[:w.N] }
