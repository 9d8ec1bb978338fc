package smartbuf

import (
	"bytes"
	"context"
	"fmt"
	"io"
)

// Placement is where a linked buffer starts in the image.
type Placement struct {
	Buffer *Buffer
	Name   string
	Offset uint64
	Size   uint32
}

// Image is the linked, fully resolved binary produced by a Linker.
type Image struct {
	data      []byte
	platform  Platform
	base      uint64
	layout    *layout
	placement []Placement
	pointers  []uint64 // image offsets of non-null absolute pointer slots
	debug     []DebugRecord
}

func (img *Image) Bytes() []byte       { return img.data }
func (img *Image) Len() int            { return len(img.data) }
func (img *Image) Platform() Platform  { return img.platform }
func (img *Image) BaseAddress() uint64 { return img.base }
func (img *Image) Layout() []Placement { return append([]Placement(nil), img.placement...) }
func (img *Image) NewReader() *Reader  { return NewReader(img.data, img.platform.Order) }
func (img *Image) PointerSlots() []uint64 {
	return append([]uint64(nil), img.pointers...)
}

// Offset returns the image offset of loc. It fails if the owning buffer was not
// placed, or was placed more than once.
func (img *Image) Offset(loc Location) (uint64, error) {
	if loc.IsNull() {
		return 0, ErrNullLocation
	}
	return img.layout.offset(loc)
}

// Placement returns the image offset where buf starts. It reports false when
// buf was not placed, or was placed more than once.
func (img *Image) Placement(buf *Buffer) (uint64, bool) {
	spans := img.layout.spans[buf]
	if len(spans) != 1 {
		return 0, false
	}
	return spans[0].base, true
}

// Address returns the load address of loc: base address plus image offset.
func (img *Image) Address(loc Location) (uint64, error) {
	off, err := img.Offset(loc)
	if err != nil {
		return 0, err
	}
	return img.base + off, nil
}

// DebugInfo returns the provenance records of every buffer that collected
// them, with offsets relative to the image.
func (img *Image) DebugInfo() []DebugRecord {
	return append([]DebugRecord(nil), img.debug...)
}

// DumpDebugInfo writes the image provenance listing to w.
func (img *Image) DumpDebugInfo(w io.Writer) error {
	return DumpDebugInfo(w, img.debug)
}

// WriteTo writes the image bytes to w.
func (img *Image) WriteTo(w io.Writer) (int64, error) {
	bw, err := NewWriter(w)
	if err != nil {
		return 0, err
	}
	bw.Write(img.data)
	return bw.Result()
}

// WriteRelocations writes the pointer relocation table a loader needs to
// rebase the image: a pointer-sized count followed by the image offset of
// every non-null absolute pointer, all in the platform byte order.
func (img *Image) WriteRelocations(w io.Writer) (int64, error) {
	bw, err := NewWriter(w)
	if err != nil {
		return 0, err
	}
	bw.ForPlatform(img.platform)
	bw.WritePointer(uint64(len(img.pointers)))
	for _, off := range img.pointers {
		bw.WritePointer(off)
	}
	bw.AlignPointer()
	return bw.Result()
}

// Emit hands the image to s in a single Put. When provenance was collected the
// listing follows under name + ".debug".
func (img *Image) Emit(ctx context.Context, s Sink, name string) error {
	if s == nil {
		return ErrNilIO
	}
	if err := s.Put(ctx, name, img.data); err != nil {
		return fmt.Errorf("emit %q: %w", name, err)
	}
	if len(img.debug) == 0 {
		return nil
	}
	var buf bytes.Buffer
	if err := img.DumpDebugInfo(&buf); err != nil {
		return err
	}
	if err := s.Put(ctx, name+".debug", buf.Bytes()); err != nil {
		return fmt.Errorf("emit %q: %w", name+".debug", err)
	}
	return nil
}
