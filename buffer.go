package smartbuf

import (
	"encoding/binary"
	"fmt"
	"io"
	"sync/atomic"

	"github.com/RoaringBitmap/roaring/v2"
)

var nextBufferID atomic.Uint64

// Buffer is the addressable unit of serialized data. It owns a block-growing
// arena with a monotonic write head, a patch cursor that moves independently
// of the head, and a table of pointer and offset fixups resolved at link time.
//
// A Buffer is not safe for concurrent use. Each build pass must touch its
// buffers from a single goroutine.
//
// Protocol violations (patching past the head, resolving a fixup twice, ...)
// latch the first error like a codec Writer: every later call is a no-op,
// Err reports the cause, and linking or embedding the buffer fails. Buffers
// created WithStrict panic at the violating call instead.
type Buffer struct {
	id    uint64
	name  string
	opts  options
	arena *arena

	cursor uint32

	fixups   []Fixup
	slots    map[uint32]int  // fixup source offset -> index into fixups
	sources  *roaring.Bitmap // source offsets of all fixups
	resolved *roaring.Bitmap // source offsets of resolved fixups

	embeds []embedding
	debug  *debugLog
	err    error
}

// embedding records that a copy of child starts at offset at in this buffer.
type embedding struct {
	child *Buffer
	at    uint32
	size  uint32
}

// New creates an empty buffer. The name only appears in diagnostics.
func New(name string, opts ...Option) *Buffer {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Buffer{
		id:       nextBufferID.Add(1),
		name:     name,
		opts:     o,
		arena:    newArena(o.blockSize),
		slots:    make(map[uint32]int),
		sources:  roaring.New(),
		resolved: roaring.New(),
		debug:    newDebugLog(o.debug),
	}
}

func (b *Buffer) ID() uint64              { return b.id }
func (b *Buffer) Name() string            { return b.name }
func (b *Buffer) Platform() Platform      { return b.opts.platform }
func (b *Buffer) Len() int                { return b.arena.len() }
func (b *Buffer) Err() error              { return b.err }
func (b *Buffer) Stats() ArenaStats       { return b.arena.stats() }
func (b *Buffer) DebugEnabled() bool      { return b.debug != nil }
func (b *Buffer) order() binary.ByteOrder { return b.opts.platform.Order }

func (b *Buffer) String() string {
	return fmt.Sprintf("buffer{%s #%d len=%d fixups=%d}", b.name, b.id, b.Len(), len(b.fixups))
}

// fail latches err as the buffer's first error.
func (b *Buffer) fail(err error) {
	err = fmt.Errorf("buffer %q: %w", b.name, err)
	if b.err == nil {
		b.err = err
	}
	b.opts.logger.Error("smartbuf: build failed", "buffer", b.name, "err", err)
	if b.opts.strict {
		panic(err)
	}
}

// Head returns an unsized location at the write head.
func (b *Buffer) Head() Location {
	return Location{buf: b, off: uint32(b.arena.len())}
}

// Start returns an unsized location at offset 0.
func (b *Buffer) Start() Location {
	return Location{buf: b}
}

// Cursor returns the patch cursor.
func (b *Buffer) Cursor() Location {
	return Location{buf: b, off: b.cursor}
}

// Seek moves the patch cursor to loc. Put calls write there and advance it.
func (b *Buffer) Seek(loc Location) {
	if b.err != nil {
		return
	}
	if err := b.own(loc); err != nil {
		b.fail(err)
		return
	}
	if int(loc.off) > b.arena.len() {
		b.fail(fmt.Errorf("%w: seek to %s with head %d", ErrOutOfRange, loc, b.arena.len()))
		return
	}
	b.cursor = loc.off
}

// Grow pre-allocates arena blocks so the buffer can reach n bytes without
// further allocation.
func (b *Buffer) Grow(n int) {
	if b.err != nil {
		return
	}
	if n < 0 || uint64(n) > MaxSize {
		b.fail(fmt.Errorf("%w: grow to %d", ErrCapacity, n))
		return
	}
	b.arena.grow(n)
}

// Bytes returns a contiguous copy of the written bytes. Fixup slots still hold
// their zero placeholders.
func (b *Buffer) Bytes() []byte {
	return b.arena.bytes()
}

// ReadAt copies n bytes starting at loc. It is meant for inspection and tests.
func (b *Buffer) ReadAt(loc Location, n int) ([]byte, error) {
	if err := b.own(loc); err != nil {
		return nil, err
	}
	p := make([]byte, n)
	if err := b.arena.readAt(int(loc.off), p); err != nil {
		return nil, err
	}
	return p, nil
}

// NewReader returns a Reader over a copy of the buffer in its platform byte order.
func (b *Buffer) NewReader() *Reader {
	return NewReader(b.Bytes(), b.order())
}

// WriteTo writes the raw buffer bytes to w. Fixups are not resolved; use Link
// to produce a loadable image.
func (b *Buffer) WriteTo(w io.Writer) (int64, error) {
	if b.err != nil {
		return 0, b.err
	}
	return b.arena.WriteTo(w)
}

// Release hands the arena blocks back for reuse. The buffer must not be used,
// embedded or linked afterwards; locations into it stay valid as fixup
// targets only for images already linked.
func (b *Buffer) Release() {
	b.arena.release()
	b.cursor = 0
	if b.err == nil {
		b.err = fmt.Errorf("buffer %q: %w", b.name, ErrReleased)
	}
}

// own checks that loc is a real location of this buffer.
func (b *Buffer) own(loc Location) error {
	if loc.buf == nil {
		return ErrNullLocation
	}
	if loc.buf != b {
		return fmt.Errorf("%w: %s used on %q", ErrForeignLocation, loc, b.name)
	}
	return nil
}

// check validates a patch of n bytes at loc.
func (b *Buffer) check(loc Location, n int) error {
	if err := b.own(loc); err != nil {
		return err
	}
	if loc.size != 0 && int(loc.size) != n {
		return fmt.Errorf("%w: %s reserved %d bytes, writing %d", ErrSizeMismatch, loc, loc.size, n)
	}
	if uint64(loc.off)+uint64(n) > uint64(b.arena.len()) {
		return fmt.Errorf("%w: %s writing [%d,%d) with head %d",
			ErrOutOfRange, loc, loc.off, uint64(loc.off)+uint64(n), b.arena.len())
	}
	if f, ok := b.slotWithin(loc.off, n); ok {
		return fmt.Errorf("%w: writing [%d,%d) overlaps the %s slot at %#x, resolve it with WritePointer or WriteOffset",
			ErrKindMismatch, loc.off, uint64(loc.off)+uint64(n), f.Kind, f.Source)
	}
	return nil
}

// slotWithin returns the first fixup slot that intersects [off, off+n).
func (b *Buffer) slotWithin(off uint32, n int) (Fixup, bool) {
	if n <= 0 {
		return Fixup{}, false
	}
	end := uint64(off) + uint64(n)
	// Slots are at most 8 bytes wide, so one starting up to 7 bytes before off
	// can still reach into the range.
	it := b.sources.Iterator()
	it.AdvanceIfNeeded(off - min(off, 7))
	for it.HasNext() {
		src := it.Next()
		if uint64(src) >= end {
			break
		}
		f := b.fixups[b.slots[src]]
		if uint64(src)+uint64(f.Width) > uint64(off) {
			return f, true
		}
	}
	return Fixup{}, false
}

// add appends p and records its provenance.
func (b *Buffer) add(kind BlockKind, p []byte, labels []Label) {
	if b.err != nil {
		return
	}
	off, err := b.arena.write(p)
	if err != nil {
		b.fail(err)
		return
	}
	b.debug.add(kind, uint32(off), uint32(len(p)), labels)
}

// reserve appends size zero bytes and returns a sized location for them.
func (b *Buffer) reserve(kind BlockKind, size int, labels []Label) Location {
	if b.err != nil {
		return Location{}
	}
	off, err := b.arena.reserve(size)
	if err != nil {
		b.fail(err)
		return Location{}
	}
	b.debug.add(kind, uint32(off), uint32(size), labels)
	return Location{buf: b, off: uint32(off), size: uint32(size)}
}

// patch overwrites already written bytes at loc.
func (b *Buffer) patch(loc Location, p []byte) {
	if b.err != nil {
		return
	}
	if err := b.check(loc, len(p)); err != nil {
		b.fail(err)
		return
	}
	if err := b.arena.writeAt(int(loc.off), p); err != nil {
		b.fail(err)
	}
}

// put writes p at the cursor and advances it.
func (b *Buffer) put(p []byte) {
	if b.err != nil {
		return
	}
	loc := b.Cursor()
	if err := b.check(loc, len(p)); err != nil {
		b.fail(err)
		return
	}
	if err := b.arena.writeAt(int(loc.off), p); err != nil {
		b.fail(err)
		return
	}
	b.cursor += uint32(len(p))
}

// Reserve appends size zero bytes and returns a location to fill them later
// with WriteAt.
func (b *Buffer) Reserve(size int, label ...Label) Location {
	return b.reserve(BlockReserve, size, label)
}

// WriteAt overwrites a previously reserved or written region. It never changes
// the buffer length; the region must lie entirely below the head.
func (b *Buffer) WriteAt(loc Location, p []byte) {
	b.patch(loc, p)
}

// AddBytes appends raw bytes.
func (b *Buffer) AddBytes(p []byte, label ...Label) {
	b.add(BlockBytes, p, label)
}

// AddString appends s followed by a NUL byte.
func (b *Buffer) AddString(s string, label ...Label) {
	if b.err != nil {
		return
	}
	loc := b.reserve(BlockBytes, len(s)+1, label)
	if loc.IsNull() {
		return
	}
	if err := b.arena.writeAt(int(loc.off), []byte(s)); err != nil {
		b.fail(err)
	}
}

// AddFrom appends everything r yields.
func (b *Buffer) AddFrom(r io.Reader, label ...Label) (int64, error) {
	if b.err != nil {
		return 0, b.err
	}
	if r == nil {
		b.fail(ErrNilIO)
		return 0, b.err
	}
	start := b.arena.len()
	n, err := b.arena.ReadFrom(r)
	if err != nil {
		b.fail(err)
		return n, b.err
	}
	b.debug.add(BlockBytes, uint32(start), uint32(n), label)
	return n, nil
}

// AddPad appends n zero bytes.
func (b *Buffer) AddPad(n int, label ...Label) {
	if n <= 0 {
		return
	}
	b.reserve(BlockPad, n, label)
}

// PadToAlignment appends zero bytes until the head is a multiple of n. It adds
// nothing when the head is already aligned.
func (b *Buffer) PadToAlignment(n int, label ...Label) {
	if b.err != nil {
		return
	}
	if !IsPowerOfTwo(n) {
		b.fail(fmt.Errorf("%w: %d", ErrBadAlignment, n))
		return
	}
	b.AddPad(Padding(b.arena.len(), n), label...)
}

// PadToWord aligns the head to 4 bytes.
func (b *Buffer) PadToWord() { b.PadToAlignment(4) }

// PadToBlock aligns the head to the arena block size, used before embedding
// structures that need block alignment. Block sizes that are not powers of two
// are padded arithmetically.
func (b *Buffer) PadToBlock() {
	if b.err != nil {
		return
	}
	bs := b.arena.blockSize
	if IsPowerOfTwo(bs) {
		b.PadToAlignment(bs)
		return
	}
	if rem := b.arena.len() % bs; rem != 0 {
		b.AddPad(bs - rem)
	}
}
