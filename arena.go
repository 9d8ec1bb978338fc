package smartbuf

import (
	"fmt"
	"io"
	"math"
)

// MaxSize is the largest number of bytes a single buffer may hold. Offsets
// inside a buffer are 32-bit.
const MaxSize = math.MaxUint32

// ArenaStats is a snapshot of an arena's memory use.
type ArenaStats struct {
	BlockSize     int // size of every block
	Blocks        int // blocks currently held
	UsedBytes     int // bytes below the head
	ReservedBytes int // bytes held in blocks, used or not
}

func (s ArenaStats) String() string {
	return fmt.Sprintf("{BlockSize: %v Blocks: %v UsedBytes: %v ReservedBytes: %v}",
		s.BlockSize, s.Blocks, s.UsedBytes, s.ReservedBytes)
}

// arena is a block-growing byte store. Growth only appends blocks, so bytes
// below the head are never moved. Bytes at or past the head are always zero.
type arena struct {
	blockSize int
	blocks    [][]byte
	head      int
}

func newArena(blockSize int) *arena {
	if blockSize <= 0 {
		blockSize = DefaultBlockSize
	}
	return &arena{blockSize: blockSize}
}

func (a *arena) len() int { return a.head }

// grow makes sure n bytes are addressable without further allocation.
func (a *arena) grow(n int) {
	for len(a.blocks)*a.blockSize < n {
		a.blocks = append(a.blocks, getBlock(a.blockSize))
	}
}

// reserve claims size zeroed bytes at the head and returns their offset.
func (a *arena) reserve(size int) (int, error) {
	if size < 0 {
		return 0, fmt.Errorf("%w: negative size %d", ErrOutOfRange, size)
	}
	if uint64(a.head)+uint64(size) > MaxSize {
		return 0, fmt.Errorf("%w: head %d + %d > %d", ErrCapacity, a.head, size, uint64(MaxSize))
	}
	off := a.head
	a.grow(a.head + size)
	a.head += size
	return off, nil
}

// write appends p at the head.
func (a *arena) write(p []byte) (int, error) {
	off, err := a.reserve(len(p))
	if err != nil {
		return 0, err
	}
	return off, a.writeAt(off, p)
}

// writeAt overwrites bytes below the head.
func (a *arena) writeAt(off int, p []byte) error {
	if off < 0 || off+len(p) > a.head {
		return fmt.Errorf("%w: write [%d,%d) with head %d", ErrOutOfRange, off, off+len(p), a.head)
	}
	for len(p) > 0 {
		blk, in := off/a.blockSize, off%a.blockSize
		n := copy(a.blocks[blk][in:], p)
		p = p[n:]
		off += n
	}
	return nil
}

// readAt fills p from bytes below the head.
func (a *arena) readAt(off int, p []byte) error {
	if off < 0 || off+len(p) > a.head {
		return fmt.Errorf("%w: read [%d,%d) with head %d", ErrOutOfRange, off, off+len(p), a.head)
	}
	for len(p) > 0 {
		blk, in := off/a.blockSize, off%a.blockSize
		n := copy(p, a.blocks[blk][in:])
		p = p[n:]
		off += n
	}
	return nil
}

// maxEmptyReads bounds consecutive (0, nil) reads before ReadFrom gives up.
const maxEmptyReads = 100

// ReadFrom appends everything r yields, reading straight into arena blocks.
// A reader that keeps returning no data and no error fails with
// io.ErrNoProgress.
func (a *arena) ReadFrom(r io.Reader) (int64, error) {
	var total int64
	empty := 0
	for {
		if a.head == len(a.blocks)*a.blockSize {
			if uint64(a.head) >= MaxSize {
				return total, fmt.Errorf("%w: head %d", ErrCapacity, a.head)
			}
			a.blocks = append(a.blocks, getBlock(a.blockSize))
		}
		blk, in := a.head/a.blockSize, a.head%a.blockSize
		dst := a.blocks[blk][in:]
		if room := uint64(MaxSize) - uint64(a.head); uint64(len(dst)) > room {
			dst = dst[:room]
		}
		n, err := r.Read(dst)
		if n < len(dst) {
			// Readers may use all of dst as scratch; keep bytes past the head zero.
			clear(dst[n:])
		}
		a.head += n
		total += int64(n)
		if err == io.EOF {
			return total, nil
		}
		if err != nil {
			return total, err
		}
		if n > 0 {
			empty = 0
		} else if empty++; empty >= maxEmptyReads {
			return total, io.ErrNoProgress
		}
	}
}

// copyTo copies the used bytes into dst, which must hold at least len() bytes.
func (a *arena) copyTo(dst []byte) int {
	n := 0
	for _, b := range a.blocks {
		if n >= a.head {
			break
		}
		n += copy(dst[n:a.head], b)
	}
	return n
}

// WriteTo writes the used bytes block by block.
func (a *arena) WriteTo(w io.Writer) (int64, error) {
	var total int64
	left := a.head
	for _, b := range a.blocks {
		if left <= 0 {
			break
		}
		chunk := b[:min(left, len(b))]
		n, err := w.Write(chunk)
		total += int64(n)
		if err != nil {
			return total, err
		}
		if n < len(chunk) {
			return total, io.ErrShortWrite
		}
		left -= n
	}
	return total, nil
}

// bytes returns a contiguous copy of the used bytes.
func (a *arena) bytes() []byte {
	out := make([]byte, a.head)
	a.copyTo(out)
	return out
}

// release returns blocks to the pool. The arena is empty afterwards.
func (a *arena) release() {
	for _, b := range a.blocks {
		putBlock(b)
	}
	a.blocks = nil
	a.head = 0
}

func (a *arena) stats() ArenaStats {
	return ArenaStats{
		BlockSize:     a.blockSize,
		Blocks:        len(a.blocks),
		UsedBytes:     a.head,
		ReservedBytes: len(a.blocks) * a.blockSize,
	}
}
