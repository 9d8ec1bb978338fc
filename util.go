package smartbuf

import (
	"io"

	"golang.org/x/exp/constraints"
)

const BUFFER_SIZE = 4096

var empty [BUFFER_SIZE]byte

// Zero is an io.Reader that reads an infinite stream of zero bytes.
var Zero io.Reader = zero{}

type zero struct{}

func (z zero) Read(p []byte) (int, error) {
	clear(p)
	return len(p), nil
}

// Roundup rounds n up to the nearest multiple of align. align must be a power of two.
func Roundup[T constraints.Integer](n, align T) T { return (n + (align - 1)) &^ (align - 1) }

// Padding returns how many bytes must follow n to reach the next multiple of align.
func Padding[T constraints.Integer](n, align T) T { return Roundup(n, align) - n }

// IsPowerOfTwo reports whether n is a positive power of two.
func IsPowerOfTwo[T constraints.Integer](n T) bool { return n > 0 && n&(n-1) == 0 }
