package smartbuf

import "fmt"

// Location is an opaque handle to a byte offset inside a Buffer. It is only
// meaningful for the buffer that produced it and never becomes an address
// until the buffer is linked into an Image.
//
// Locations returned by Reserve calls remember the reserved width, and
// patching them with a different number of bytes fails. Locations obtained
// from Head, Cursor or Add are unsized.
//
// The zero Location is the null location.
type Location struct {
	buf  *Buffer
	off  uint32
	size uint32
}

// Buffer returns the owning buffer, or nil for the null location.
func (l Location) Buffer() *Buffer { return l.buf }

// Offset returns the byte offset inside the owning buffer.
func (l Location) Offset() uint32 { return l.off }

// Size returns the reserved width, or 0 for unsized locations.
func (l Location) Size() uint32 { return l.size }

// IsNull reports whether l is the zero Location.
func (l Location) IsNull() bool { return l.buf == nil }

// Add returns an unsized location delta bytes further into the same buffer.
// The result may point past the head; writes through it are still checked.
func (l Location) Add(delta int) Location {
	return Location{buf: l.buf, off: uint32(int64(l.off) + int64(delta))}
}

// Unsized drops the reserved width, allowing partial patches of a slot.
func (l Location) Unsized() Location {
	l.size = 0
	return l
}

// Sub returns the byte distance l - o. Both must belong to the same buffer.
func (l Location) Sub(o Location) (int64, error) {
	if l.buf == nil || o.buf == nil {
		return 0, ErrNullLocation
	}
	if l.buf != o.buf {
		return 0, fmt.Errorf("%w: %s and %s", ErrForeignLocation, l, o)
	}
	return int64(l.off) - int64(o.off), nil
}

func (l Location) String() string {
	if l.buf == nil {
		return "<null>"
	}
	if l.size != 0 {
		return fmt.Sprintf("%s+%#x[%d]", l.buf.Name(), l.off, l.size)
	}
	return fmt.Sprintf("%s+%#x", l.buf.Name(), l.off)
}
