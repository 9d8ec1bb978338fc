package smartbuf

import "fmt"

// FixupKind says how a fixup slot is resolved at link time.
type FixupKind uint8

const (
	KindPointer32     FixupKind = iota + 1 // absolute address, 4 bytes
	KindPointer64                          // absolute address, 8 bytes
	KindPointerNative                      // absolute address, platform pointer width
	KindOffset                             // signed 32-bit offset, or unsigned image offset when Absolute
)

func (k FixupKind) String() string {
	switch k {
	case KindPointer32:
		return "ptr32"
	case KindPointer64:
		return "ptr64"
	case KindPointerNative:
		return "ptr"
	case KindOffset:
		return "offset"
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// IsPointer reports whether k resolves to an absolute address.
func (k FixupKind) IsPointer() bool { return k >= KindPointer32 && k <= KindPointerNative }

// Fixup is one relocation record: a slot at Source in the owning buffer whose
// value depends on where Target ends up in the final image.
type Fixup struct {
	Source uint32
	Kind   FixupKind
	Width  int // slot size in bytes

	Target Location // null for an explicit null pointer
	// Base replaces the slot itself as the origin of a relative offset.
	Base Location
	// Absolute offsets hold the target's offset from the start of the image.
	Absolute bool

	Label    string
	Resolved bool
}

func (f Fixup) String() string {
	switch {
	case !f.Resolved:
		return fmt.Sprintf("%#x %s -> <pending>", f.Source, f.Kind)
	case f.Kind.IsPointer() && f.Target.IsNull():
		return fmt.Sprintf("%#x %s -> <null>", f.Source, f.Kind)
	case f.Absolute:
		return fmt.Sprintf("%#x %s -> %s (absolute)", f.Source, f.Kind, f.Target)
	case !f.Base.IsNull():
		return fmt.Sprintf("%#x %s -> %s (from %s)", f.Source, f.Kind, f.Target, f.Base)
	}
	return fmt.Sprintf("%#x %s -> %s", f.Source, f.Kind, f.Target)
}

// Fixups returns a copy of the buffer's fixup table.
func (b *Buffer) Fixups() []Fixup {
	return append([]Fixup(nil), b.fixups...)
}

// Pending returns the number of fixups not resolved yet.
func (b *Buffer) Pending() int {
	return len(b.fixups) - int(b.resolved.GetCardinality())
}

// register appends a fixup for a freshly reserved slot.
func (b *Buffer) register(f Fixup) {
	b.slots[f.Source] = len(b.fixups)
	b.sources.Add(f.Source)
	b.fixups = append(b.fixups, f)
	if f.Resolved {
		b.resolved.Add(f.Source)
	}
}

// ReservePointer reserves a pointer slot and records a pending fixup for it.
// width is Pointer32, Pointer64 or PointerNative; native slots take the
// pointer size of the buffer platform.
func (b *Buffer) ReservePointer(width PointerWidth, label ...Label) Location {
	if b.err != nil {
		return Location{}
	}
	n, err := width.bytes(b.opts.platform)
	if err != nil {
		b.fail(err)
		return Location{}
	}
	kind := KindPointerNative
	switch width {
	case Pointer32:
		kind = KindPointer32
	case Pointer64:
		kind = KindPointer64
	}
	loc := b.reserve(BlockPointer, n, label)
	if loc.IsNull() {
		return loc
	}
	b.register(Fixup{Source: loc.off, Kind: kind, Width: n, Label: b.fixupLabel(label)})
	return loc
}

// ReserveOffset reserves a 4-byte offset slot and records a pending fixup for it.
func (b *Buffer) ReserveOffset(label ...Label) Location {
	if b.err != nil {
		return Location{}
	}
	loc := b.reserve(BlockOffset, 4, label)
	if loc.IsNull() {
		return loc
	}
	b.register(Fixup{Source: loc.off, Kind: KindOffset, Width: 4, Label: b.fixupLabel(label)})
	return loc
}

// fixupLabel keeps labels on fixups only when provenance is on.
func (b *Buffer) fixupLabel(labels []Label) string {
	if b.debug == nil {
		return ""
	}
	return render(labels)
}

// slot finds the pending fixup at src and marks it resolved.
func (b *Buffer) slot(src Location, pointer bool) (*Fixup, error) {
	if err := b.own(src); err != nil {
		return nil, err
	}
	i, ok := b.slots[src.off]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFixup, src)
	}
	f := &b.fixups[i]
	if f.Kind.IsPointer() != pointer {
		return nil, fmt.Errorf("%w: %s is a %s slot", ErrKindMismatch, src, f.Kind)
	}
	if !b.resolved.CheckedAdd(src.off) {
		return nil, fmt.Errorf("%w: %s already -> %s", ErrDoubleResolve, src, f.Target)
	}
	f.Resolved = true
	return f, nil
}

// WritePointer resolves the pointer slot src to the address dst will have in
// the linked image. dst may live in any buffer that is part of the layout.
func (b *Buffer) WritePointer(src, dst Location) {
	if b.err != nil {
		return
	}
	if dst.IsNull() {
		b.fail(fmt.Errorf("%w: pointer target for %s, use WriteNull", ErrNullLocation, src))
		return
	}
	f, err := b.slot(src, true)
	if err != nil {
		b.fail(err)
		return
	}
	f.Target = dst
}

// WriteNull resolves the pointer slot src to a null pointer.
func (b *Buffer) WriteNull(src Location) {
	if b.err != nil {
		return
	}
	if _, err := b.slot(src, true); err != nil {
		b.fail(err)
	}
}

// WriteOffset resolves the offset slot src to dst minus src.
func (b *Buffer) WriteOffset(src, dst Location) {
	b.writeOffset(src, dst, Location{}, false)
}

// WriteOffsetFrom resolves the offset slot src to dst minus base.
func (b *Buffer) WriteOffsetFrom(src, dst, base Location) {
	if b.err != nil {
		return
	}
	if base.IsNull() {
		b.fail(fmt.Errorf("%w: offset base for %s", ErrNullLocation, src))
		return
	}
	b.writeOffset(src, dst, base, false)
}

// WriteAbsoluteOffset resolves the offset slot src to the offset of dst from
// the start of the image.
func (b *Buffer) WriteAbsoluteOffset(src, dst Location) {
	b.writeOffset(src, dst, Location{}, true)
}

func (b *Buffer) writeOffset(src, dst, base Location, absolute bool) {
	if b.err != nil {
		return
	}
	if dst.IsNull() {
		b.fail(fmt.Errorf("%w: offset target for %s", ErrNullLocation, src))
		return
	}
	f, err := b.slot(src, false)
	if err != nil {
		b.fail(err)
		return
	}
	f.Target = dst
	f.Base = base
	f.Absolute = absolute
}

// AddPointer appends a pointer slot already resolved to dst.
func (b *Buffer) AddPointer(width PointerWidth, dst Location, label ...Label) Location {
	loc := b.ReservePointer(width, label...)
	if dst.IsNull() {
		b.WriteNull(loc)
	} else {
		b.WritePointer(loc, dst)
	}
	return loc
}

// AddOffset appends an offset slot already resolved to dst relative to itself.
func (b *Buffer) AddOffset(dst Location, label ...Label) Location {
	loc := b.ReserveOffset(label...)
	b.WriteOffset(loc, dst)
	return loc
}
