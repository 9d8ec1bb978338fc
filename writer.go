package smartbuf

import (
	"bufio"
	"bytes"
	"io"
)

// streamWriter is what a Writer sits on: something that can be written to
// and later flushed.
type streamWriter interface {
	io.Writer
	io.StringWriter
	Flush() error
}

type (
	bufferedStream struct{ *bufio.Writer }
	memoryStream   struct{ *bytes.Buffer }
)

func (memoryStream) Flush() error { return nil }

// Writer streams linked output (image bytes, relocation tables, provenance
// listings) laid out for one Platform. The first error is latched; every
// later write is a no-op and Result reports it.
type Writer struct {
	w        streamWriter
	platform Platform
	count    int64
	err      error
}

// NewWriterSize wraps w for the native platform. Destinations that buffer or
// live in memory are written directly; anything else gets a bufio.Writer of
// the given size.
func NewWriterSize(w io.Writer, size int) (*Writer, error) {
	if w == nil {
		return nil, ErrNilIO
	}
	out := &Writer{platform: Native()}
	switch dst := w.(type) {
	case *Writer:
		out.w, out.platform = dst.w, dst.platform
	case *BytesWriter:
		out.w = dst
	case *bytes.Buffer:
		out.w = memoryStream{dst}
	case *bufio.Writer:
		out.w = bufferedStream{dst}
	default:
		out.w = bufferedStream{bufio.NewWriterSize(w, size)}
	}
	return out, nil
}

func NewWriter(w io.Writer) (*Writer, error) {
	return NewWriterSize(w, 0)
}

// ForPlatform sets the byte order and pointer width used by the typed writes.
func (w *Writer) ForPlatform(p Platform) *Writer {
	w.platform = p
	return w
}

func (w *Writer) Platform() Platform { return w.platform }
func (w *Writer) Count() int64       { return w.count }
func (w *Writer) Err() error         { return w.err }

func (w *Writer) setError(err error) {
	if w.err == nil && err != nil {
		w.err = err
	}
}

func (w *Writer) Write(p []byte) (int, error) {
	if len(p) == 0 || w.err != nil {
		return 0, w.err
	}
	n, err := w.w.Write(p)
	w.count += int64(n)
	w.setError(err)
	return n, w.err
}

func (w *Writer) WriteString(s string) (int, error) {
	if s == "" || w.err != nil {
		return 0, w.err
	}
	n, err := w.w.WriteString(s)
	w.count += int64(n)
	w.setError(err)
	return n, w.err
}

// WriteLine writes s followed by a newline.
func (w *Writer) WriteLine(s string) {
	w.WriteString(s)
	w.WriteString("\n")
}

func (w *Writer) WriteUint32(v uint32) {
	if w.err != nil {
		return
	}
	var buf [4]byte
	w.platform.Order.PutUint32(buf[:], v)
	w.Write(buf[:])
}

func (w *Writer) WriteUint64(v uint64) {
	if w.err != nil {
		return
	}
	var buf [8]byte
	w.platform.Order.PutUint64(buf[:], v)
	w.Write(buf[:])
}

// WritePointer writes v at the platform pointer width. A value that does not
// fit a 32-bit pointer latches ErrOverflow.
func (w *Writer) WritePointer(v uint64) {
	if w.platform.PointerSize == 8 {
		w.WriteUint64(v)
		return
	}
	if v > 0xFFFFFFFF {
		w.setError(ErrOverflow)
		return
	}
	w.WriteUint32(uint32(v))
}

// WriteZeros writes n zero bytes.
func (w *Writer) WriteZeros(n int64) {
	if w.err != nil || n <= 0 {
		return
	}
	if n <= BUFFER_SIZE {
		w.Write(empty[:n])
		return
	}
	_, err := io.CopyN(w, Zero, n)
	w.setError(err)
}

// AlignPointer pads with zeros up to the next multiple of the pointer width.
func (w *Writer) AlignPointer() {
	w.WriteZeros(Padding(w.count, int64(w.platform.PointerSize)))
}

func (w *Writer) Flush() error {
	if w.err != nil {
		return w.err
	}
	w.setError(w.w.Flush())
	return w.err
}

// Result flushes and returns the bytes written and the latched error.
func (w *Writer) Result() (int64, error) {
	w.Flush()
	return w.count, w.err
}
