package smartbuf

import (
	"encoding/binary"
	"fmt"
	"reflect"

	"github.com/puzpuzpuz/xsync/v4"
)

// sizeCache avoids the cost of reflection in `binary.Size` on every call.
var sizeCache = xsync.NewMap[reflect.Type, int]()

// SizeOf returns the packed binary size of T, or -1 if T is not fixed-size.
//
// The consumer structure is described with explicit fields: padding the
// runtime expects must appear as blank fields (`_ [4]byte`), and pointers as
// uint32 or uint64 matching the target platform.
func SizeOf[T any]() int {
	t := reflect.TypeFor[T]()
	if size, ok := sizeCache.Load(t); ok {
		return size
	}
	var zero T
	size := binary.Size(&zero)
	sizeCache.Store(t, size)
	return size
}

// AssertComplete checks that buf holds exactly as many bytes as the in-memory
// structure T. It catches drift between the sequence of Add calls and the
// consumer's structure definition where the data is written rather than when
// the runtime crashes on it.
func AssertComplete[T any](buf *Buffer) error {
	if buf == nil {
		return ErrNilBuffer
	}
	want := SizeOf[T]()
	if want < 0 {
		return fmt.Errorf("%w: %s is not a fixed-size type", ErrIncomplete, reflect.TypeFor[T]())
	}
	if got := buf.Len(); got != want {
		err := fmt.Errorf("%w: %q is %d bytes, %s is %d", ErrIncomplete, buf.Name(), got, reflect.TypeFor[T](), want)
		if buf.opts.strict {
			panic(err)
		}
		return err
	}
	return nil
}
