package smartbuf

import (
	"encoding/binary"
	"fmt"
	"strings"
	"unsafe"

	"golang.org/x/sys/cpu"
)

// Platform describes the in-memory layout rules of the runtime that will
// consume an image: how wide its pointers are and which byte order it reads.
type Platform struct {
	Name        string
	PointerSize int
	Order       binary.ByteOrder
}

var (
	LE32 = Platform{Name: "le32", PointerSize: 4, Order: binary.LittleEndian}
	LE64 = Platform{Name: "le64", PointerSize: 8, Order: binary.LittleEndian}
	BE32 = Platform{Name: "be32", PointerSize: 4, Order: binary.BigEndian}
	BE64 = Platform{Name: "be64", PointerSize: 8, Order: binary.BigEndian}
)

// Native returns the platform of the host process.
func Native() Platform {
	size := int(unsafe.Sizeof(uintptr(0)))
	if cpu.IsBigEndian {
		if size == 4 {
			return BE32
		}
		return BE64
	}
	if size == 4 {
		return LE32
	}
	return LE64
}

// ParsePlatform maps a configuration string to a Platform.
func ParsePlatform(name string) (Platform, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "le32":
		return LE32, nil
	case "le64":
		return LE64, nil
	case "be32":
		return BE32, nil
	case "be64":
		return BE64, nil
	case "", "native":
		return Native(), nil
	}
	return Platform{}, fmt.Errorf("%w: %q", ErrUnknownPlatform, name)
}

// Equal reports whether two platforms share pointer size and byte order.
func (p Platform) Equal(o Platform) bool {
	return p.PointerSize == o.PointerSize && p.Order == o.Order
}

func (p Platform) String() string {
	if p.Name != "" {
		return p.Name
	}
	return fmt.Sprintf("%s/%d", p.Order, p.PointerSize*8)
}

// PointerWidth selects the size of a pointer slot.
type PointerWidth int

const (
	// PointerNative reserves a slot as wide as the buffer platform's pointers.
	PointerNative PointerWidth = 0
	Pointer32     PointerWidth = 4
	Pointer64     PointerWidth = 8
)

// bytes resolves the width against a platform.
func (w PointerWidth) bytes(p Platform) (int, error) {
	switch w {
	case PointerNative:
		return p.PointerSize, nil
	case Pointer32, Pointer64:
		return int(w), nil
	}
	return 0, fmt.Errorf("%w: %d", ErrBadPointerWidth, int(w))
}
