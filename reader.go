package smartbuf

import (
	"encoding/binary"
	"io"
	"math"

	"github.com/x448/float16"
)

// Reader decodes values from a buffer or image in a given byte order. It is
// the read side of Buffer: consumers and tests use it to check that what was
// written comes back unchanged. It tracks the first error; subsequent reads
// become no-ops and leave their destinations untouched.
type Reader struct {
	b     []byte
	n     int   // current read position
	err   error // first error encountered.
	order binary.ByteOrder
}

var _ io.ReadSeeker = (*Reader)(nil)

// NewReader creates a Reader over p.
func NewReader(p []byte, order binary.ByteOrder) *Reader {
	return &Reader{b: p, order: order}
}

func (r *Reader) Err() error { return r.err }

// Count returns the current read position.
func (r *Reader) Count() int64 { return int64(r.n) }

// Available returns the number of bytes left to read.
func (r *Reader) Available() int {
	if r.n >= len(r.b) {
		return 0
	}
	return len(r.b) - r.n
}

// IsEOF reports whether the reader stopped at a clean end of data.
func (r *Reader) IsEOF() bool { return r.err == io.EOF }

func (r *Reader) setError(err error) {
	if r.err == nil && err != nil {
		r.err = err
	}
}

// next returns the following n bytes, or nil after latching an error.
func (r *Reader) next(n int) []byte {
	if r.err != nil {
		return nil
	}
	if r.n >= len(r.b) && n > 0 {
		r.setError(io.EOF)
		return nil
	}
	if r.n+n > len(r.b) {
		r.setError(io.ErrUnexpectedEOF)
		return nil
	}
	p := r.b[r.n : r.n+n]
	r.n += n
	return p
}

// Read implements the [io.Reader] interface.
func (r *Reader) Read(p []byte) (int, error) {
	if r.err != nil {
		return 0, r.err
	}
	if r.n >= len(r.b) {
		r.setError(io.EOF)
		return 0, r.err
	}
	n := copy(p, r.b[r.n:])
	r.n += n
	return n, nil
}

// Seek implements the [io.Seeker] interface.
func (r *Reader) Seek(offset int64, whence int) (int64, error) {
	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = int64(r.n) + offset
	case io.SeekEnd:
		abs = int64(len(r.b)) + offset
	default:
		return int64(r.n), ErrInvalidWhence
	}
	if abs < 0 {
		return int64(r.n), ErrInvalidSeek
	}
	r.n = int(abs)
	if r.err == io.EOF || r.err == io.ErrUnexpectedEOF {
		r.err = nil
	}
	return abs, nil
}

// SeekTo positions the reader at the image or buffer offset off.
func (r *Reader) SeekTo(off uint64) {
	_, err := r.Seek(int64(off), io.SeekStart)
	r.setError(err)
}

// ReadBytes returns a copy of the next n bytes.
func (r *Reader) ReadBytes(n int) []byte {
	p := r.next(n)
	if p == nil {
		return nil
	}
	return append([]byte(nil), p...)
}

func (r *Reader) ReadUint8(v *uint8) {
	if p := r.next(1); p != nil {
		*v = p[0]
	}
}

func (r *Reader) ReadInt8(v *int8) {
	if p := r.next(1); p != nil {
		*v = int8(p[0])
	}
}

func (r *Reader) ReadBool(v *bool) {
	if p := r.next(1); p != nil {
		*v = p[0] != 0
	}
}

func (r *Reader) ReadUint16(v *uint16) {
	if p := r.next(2); p != nil {
		*v = r.order.Uint16(p)
	}
}

func (r *Reader) ReadInt16(v *int16) {
	if p := r.next(2); p != nil {
		*v = int16(r.order.Uint16(p))
	}
}

func (r *Reader) ReadUint32(v *uint32) {
	if p := r.next(4); p != nil {
		*v = r.order.Uint32(p)
	}
}

func (r *Reader) ReadInt32(v *int32) {
	if p := r.next(4); p != nil {
		*v = int32(r.order.Uint32(p))
	}
}

func (r *Reader) ReadUint64(v *uint64) {
	if p := r.next(8); p != nil {
		*v = r.order.Uint64(p)
	}
}

func (r *Reader) ReadInt64(v *int64) {
	if p := r.next(8); p != nil {
		*v = int64(r.order.Uint64(p))
	}
}

// ReadFloat16 decodes an IEEE 754 binary16 value into a float32.
func (r *Reader) ReadFloat16(v *float32) {
	if p := r.next(2); p != nil {
		*v = float16.Frombits(r.order.Uint16(p)).Float32()
	}
}

func (r *Reader) ReadFloat32(v *float32) {
	if p := r.next(4); p != nil {
		*v = math.Float32frombits(r.order.Uint32(p))
	}
}

func (r *Reader) ReadFloat64(v *float64) {
	if p := r.next(8); p != nil {
		*v = math.Float64frombits(r.order.Uint64(p))
	}
}

// ReadPointer reads a pointer of the given byte width (4 or 8).
func (r *Reader) ReadPointer(width int, v *uint64) {
	switch width {
	case 4:
		var u uint32
		r.ReadUint32(&u)
		if r.err == nil {
			*v = uint64(u)
		}
	case 8:
		r.ReadUint64(v)
	default:
		r.setError(ErrBadPointerWidth)
	}
}

// ReadString reads a NUL-terminated string written by AddString.
func (r *Reader) ReadString(v *string) {
	if r.err != nil {
		return
	}
	for i := r.n; i < len(r.b); i++ {
		if r.b[i] == 0 {
			*v = string(r.b[r.n:i])
			r.n = i + 1
			return
		}
	}
	r.setError(ErrTruncatedData)
}
