package smartbuf

import (
	"fmt"
	"log/slog"
	"math"
)

// Linker lays buffers out into one contiguous image and resolves every
// fixup against the final placement.
type Linker struct {
	platform  *Platform
	alignment int
	base      uint64
	logger    *slog.Logger
}

// LinkOption configures a Linker.
type LinkOption func(*Linker)

// WithLinkPlatform requires every buffer to be built for p. By default the
// root buffer's platform is used.
func WithLinkPlatform(p Platform) LinkOption {
	return func(l *Linker) { l.platform = &p }
}

// WithAlignment sets the alignment of every buffer start in the image. It
// defaults to the platform pointer size.
func WithAlignment(n int) LinkOption {
	return func(l *Linker) { l.alignment = n }
}

// WithBaseAddress sets the address the image will be loaded at. It is added
// to every absolute pointer; offsets are unaffected.
func WithBaseAddress(addr uint64) LinkOption {
	return func(l *Linker) { l.base = addr }
}

// WithLinkLogger sets the logger for layout diagnostics.
func WithLinkLogger(logger *slog.Logger) LinkOption {
	return func(l *Linker) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// NewLinker creates a Linker.
func NewLinker(opts ...LinkOption) *Linker {
	l := &Linker{logger: discardLogger}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Link lays out root followed by others with the default Linker.
func Link(root *Buffer, others ...*Buffer) (*Image, error) {
	return NewLinker().Link(root, others...)
}

// span is one copy of a buffer in the image.
type span struct {
	base uint64
	size uint32
}

// layout is the placement of every buffer, including embedded copies.
type layout struct {
	spans map[*Buffer][]span
}

func (lt *layout) add(buf *Buffer, s span) {
	lt.spans[buf] = append(lt.spans[buf], s)
}

// offset returns the image offset of loc.
func (lt *layout) offset(loc Location) (uint64, error) {
	spans := lt.spans[loc.buf]
	switch len(spans) {
	case 0:
		return 0, fmt.Errorf("%w: %q", ErrMissingTarget, loc.buf.Name())
	case 1:
	default:
		return 0, fmt.Errorf("%w: %q at %d places", ErrAmbiguousTarget, loc.buf.Name(), len(spans))
	}
	if loc.off > spans[0].size {
		return 0, fmt.Errorf("%w: %s past the %d bytes placed", ErrOutOfRange, loc, spans[0].size)
	}
	return spans[0].base + uint64(loc.off), nil
}

// Link lays out root at offset 0 and others after it in the given order, each
// aligned, then resolves every fixup of every listed buffer. Buffers that were
// embedded into a listed buffer need not be listed. Link produces no image if
// anything fails: a poisoned buffer, a pending fixup, a target outside the
// layout or a value that does not fit its slot.
func (l *Linker) Link(root *Buffer, others ...*Buffer) (*Image, error) {
	if root == nil {
		return nil, ErrNilBuffer
	}
	bufs := append([]*Buffer{root}, others...)

	platform := root.opts.platform
	if l.platform != nil {
		platform = *l.platform
	}
	align := l.alignment
	if align == 0 {
		align = platform.PointerSize
	}
	if !IsPowerOfTwo(align) {
		return nil, fmt.Errorf("%w: link alignment %d", ErrBadAlignment, align)
	}

	seen := make(map[*Buffer]bool, len(bufs))
	for _, buf := range bufs {
		switch {
		case buf == nil:
			return nil, ErrNilBuffer
		case seen[buf]:
			return nil, fmt.Errorf("%w: %q", ErrDuplicateBuffer, buf.name)
		case buf.err != nil:
			return nil, buf.err
		case !buf.opts.platform.Equal(platform):
			return nil, fmt.Errorf("%w: %q built for %s, linking for %s",
				ErrPlatformMismatch, buf.name, buf.opts.platform, platform)
		}
		seen[buf] = true
	}

	// Assign base offsets.
	lt := &layout{spans: make(map[*Buffer][]span)}
	placements := make([]Placement, 0, len(bufs))
	var size uint64
	for _, buf := range bufs {
		size = Roundup(size, uint64(align))
		s := span{base: size, size: uint32(buf.Len())}
		lt.add(buf, s)
		for _, e := range buf.embeds {
			lt.add(e.child, span{base: s.base + uint64(e.at), size: e.size})
		}
		placements = append(placements, Placement{Buffer: buf, Name: buf.name, Offset: s.base, Size: s.size})
		l.logger.Debug("smartbuf: layout", "buffer", buf.name, "offset", s.base, "size", s.size)
		size += uint64(s.size)
	}
	if size > math.MaxInt {
		return nil, fmt.Errorf("%w: image of %d bytes", ErrCapacity, size)
	}

	// Copy bytes, zero-filling alignment gaps.
	data := make([]byte, size)
	bw := NewBytesWriter(data)
	for _, p := range placements {
		if err := bw.SeekForward(int(p.Offset)); err != nil {
			return nil, err
		}
		if _, err := p.Buffer.arena.WriteTo(bw); err != nil {
			return nil, err
		}
	}

	// Resolve fixups.
	img := &Image{
		data:      data,
		platform:  platform,
		base:      l.base,
		layout:    lt,
		placement: placements,
	}
	count := 0
	for _, p := range placements {
		for _, f := range p.Buffer.fixups {
			if err := l.resolve(img, p, f); err != nil {
				return nil, fmt.Errorf("buffer %q fixup %s: %w", p.Name, fixupRef(f), err)
			}
			count++
		}
		if p.Buffer.debug != nil {
			img.debug = append(img.debug, DebugRecord{Kind: BlockBuffer, Offset: p.Offset, Size: p.Size, Label: p.Name})
			for _, r := range p.Buffer.debug.records {
				r.Offset += p.Offset
				r.Depth++
				img.debug = append(img.debug, r)
			}
		}
	}

	l.logger.Debug("smartbuf: linked image",
		"root", root.name, "buffers", len(placements), "size", size, "fixups", count, "platform", platform.String())
	return img, nil
}

func fixupRef(f Fixup) string {
	if f.Label != "" {
		return fmt.Sprintf("%#x (%s)", f.Source, f.Label)
	}
	return fmt.Sprintf("%#x", f.Source)
}

// resolve computes one fixup value and stores it in the image.
func (l *Linker) resolve(img *Image, p Placement, f Fixup) error {
	if !f.Resolved {
		return ErrUnresolved
	}
	src := p.Offset + uint64(f.Source)
	order := img.platform.Order
	slot := img.data[src : src+uint64(f.Width)]

	if f.Kind.IsPointer() {
		var addr uint64
		if !f.Target.IsNull() {
			off, err := img.layout.offset(f.Target)
			if err != nil {
				return err
			}
			addr = l.base + off
			img.pointers = append(img.pointers, src)
		}
		switch f.Width {
		case 4:
			if addr > math.MaxUint32 {
				return fmt.Errorf("%w: address %#x in a 32-bit pointer", ErrOverflow, addr)
			}
			order.PutUint32(slot, uint32(addr))
		case 8:
			order.PutUint64(slot, addr)
		default:
			return fmt.Errorf("%w: %d", ErrBadPointerWidth, f.Width)
		}
		return nil
	}

	dst, err := img.layout.offset(f.Target)
	if err != nil {
		return err
	}
	if f.Absolute {
		if dst > math.MaxUint32 {
			return fmt.Errorf("%w: image offset %#x in a 32-bit offset", ErrOverflow, dst)
		}
		order.PutUint32(slot, uint32(dst))
		return nil
	}
	from := src
	if !f.Base.IsNull() {
		if from, err = img.layout.offset(f.Base); err != nil {
			return fmt.Errorf("offset base: %w", err)
		}
	}
	rel := int64(dst) - int64(from)
	if rel < math.MinInt32 || rel > math.MaxInt32 {
		return fmt.Errorf("%w: relative offset %d in a 32-bit offset", ErrOverflow, rel)
	}
	order.PutUint32(slot, uint32(int32(rel)))
	return nil
}
