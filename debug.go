package smartbuf

import (
	"fmt"
	"io"
	"strings"
)

// BlockKind tags what a debug record describes.
type BlockKind uint8

const (
	BlockNone BlockKind = iota
	BlockBuffer
	BlockI8
	BlockU8
	BlockI16
	BlockU16
	BlockI32
	BlockU32
	BlockI64
	BlockU64
	BlockF16
	BlockF32
	BlockF64
	BlockBytes
	BlockPad
	BlockReserve
	BlockPointer
	BlockOffset
)

var blockKindNames = [...]string{
	BlockNone:    "none",
	BlockBuffer:  "buffer",
	BlockI8:      "i8",
	BlockU8:      "u8",
	BlockI16:     "i16",
	BlockU16:     "u16",
	BlockI32:     "i32",
	BlockU32:     "u32",
	BlockI64:     "i64",
	BlockU64:     "u64",
	BlockF16:     "f16",
	BlockF32:     "f32",
	BlockF64:     "f64",
	BlockBytes:   "bytes",
	BlockPad:     "pad",
	BlockReserve: "reserve",
	BlockPointer: "pointer",
	BlockOffset:  "offset",
}

func (k BlockKind) String() string {
	if int(k) < len(blockKindNames) {
		return blockKindNames[k]
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// DebugRecord is one provenance entry: which bytes a call wrote and why.
// Offset is relative to the buffer, or to the image once linked.
type DebugRecord struct {
	Kind   BlockKind
	Offset uint64
	Size   uint32
	Label  string
	Depth  int // nesting level of embedded buffers
}

func (r DebugRecord) String() string {
	return fmt.Sprintf("%08x %8d %-8s %s%s", r.Offset, r.Size, r.Kind, strings.Repeat("  ", r.Depth), r.Label)
}

// debugLog is the append-only provenance record of a buffer. A nil log means
// provenance is off.
type debugLog struct {
	records []DebugRecord
}

func newDebugLog(enabled bool) *debugLog {
	if !provenanceCompiled || !enabled {
		return nil
	}
	return &debugLog{}
}

func (d *debugLog) add(kind BlockKind, off, size uint32, labels []Label) {
	if d == nil {
		return
	}
	d.records = append(d.records, DebugRecord{Kind: kind, Offset: uint64(off), Size: size, Label: render(labels)})
}

// embed appends child records shifted to base and one level deeper.
func (d *debugLog) embed(child *debugLog, base uint64) {
	if d == nil || child == nil {
		return
	}
	for _, r := range child.records {
		r.Offset += base
		r.Depth++
		d.records = append(d.records, r)
	}
}

func (d *debugLog) snapshot() []DebugRecord {
	if d == nil {
		return nil
	}
	return append([]DebugRecord(nil), d.records...)
}

// DumpDebugInfo writes one line per record: hex offset, size, kind and label.
// The format is stable so that two dumps can be diffed.
func DumpDebugInfo(w io.Writer, records []DebugRecord) error {
	bw, err := NewWriter(w)
	if err != nil {
		return err
	}
	for _, r := range records {
		bw.WriteLine(r.String())
	}
	_, err = bw.Result()
	return err
}

// DebugInfo returns the buffer's provenance records, nil when provenance is off.
func (b *Buffer) DebugInfo() []DebugRecord {
	return b.debug.snapshot()
}

// DumpDebugInfo writes the buffer's provenance listing to w.
func (b *Buffer) DumpDebugInfo(w io.Writer) error {
	return DumpDebugInfo(w, b.debug.snapshot())
}
