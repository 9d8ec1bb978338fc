package smartbuf

import (
	"math"

	"github.com/x448/float16"
)

// --- Add: append a value at the head ---

func (b *Buffer) AddBool(v bool, label ...Label) {
	var buf [1]byte
	if v {
		buf[0] = 1
	}
	b.add(BlockU8, buf[:], label)
}

func (b *Buffer) AddInt8(v int8, label ...Label) {
	b.add(BlockI8, []byte{byte(v)}, label)
}

func (b *Buffer) AddUint8(v uint8, label ...Label) {
	b.add(BlockU8, []byte{v}, label)
}

func (b *Buffer) AddInt16(v int16, label ...Label) {
	var buf [2]byte
	b.order().PutUint16(buf[:], uint16(v))
	b.add(BlockI16, buf[:], label)
}

func (b *Buffer) AddUint16(v uint16, label ...Label) {
	var buf [2]byte
	b.order().PutUint16(buf[:], v)
	b.add(BlockU16, buf[:], label)
}

func (b *Buffer) AddInt32(v int32, label ...Label) {
	var buf [4]byte
	b.order().PutUint32(buf[:], uint32(v))
	b.add(BlockI32, buf[:], label)
}

func (b *Buffer) AddUint32(v uint32, label ...Label) {
	var buf [4]byte
	b.order().PutUint32(buf[:], v)
	b.add(BlockU32, buf[:], label)
}

func (b *Buffer) AddInt64(v int64, label ...Label) {
	var buf [8]byte
	b.order().PutUint64(buf[:], uint64(v))
	b.add(BlockI64, buf[:], label)
}

func (b *Buffer) AddUint64(v uint64, label ...Label) {
	var buf [8]byte
	b.order().PutUint64(buf[:], v)
	b.add(BlockU64, buf[:], label)
}

// AddFloat16 appends v converted to IEEE 754 binary16.
func (b *Buffer) AddFloat16(v float32, label ...Label) {
	var buf [2]byte
	b.order().PutUint16(buf[:], float16.Fromfloat32(v).Bits())
	b.add(BlockF16, buf[:], label)
}

func (b *Buffer) AddFloat32(v float32, label ...Label) {
	var buf [4]byte
	b.order().PutUint32(buf[:], math.Float32bits(v))
	b.add(BlockF32, buf[:], label)
}

func (b *Buffer) AddFloat64(v float64, label ...Label) {
	var buf [8]byte
	b.order().PutUint64(buf[:], math.Float64bits(v))
	b.add(BlockF64, buf[:], label)
}

// AddVec3 appends three float32 components.
func (b *Buffer) AddVec3(v [3]float32, label ...Label) {
	var buf [12]byte
	for i, c := range v {
		b.order().PutUint32(buf[i*4:], math.Float32bits(c))
	}
	b.add(BlockF32, buf[:], label)
}

// AddVec4 appends four float32 components.
func (b *Buffer) AddVec4(v [4]float32, label ...Label) {
	var buf [16]byte
	for i, c := range v {
		b.order().PutUint32(buf[i*4:], math.Float32bits(c))
	}
	b.add(BlockF32, buf[:], label)
}

// --- Reserve: append a zero placeholder, fill it later ---

func (b *Buffer) ReserveInt8(label ...Label) Location   { return b.reserve(BlockI8, 1, label) }
func (b *Buffer) ReserveUint8(label ...Label) Location  { return b.reserve(BlockU8, 1, label) }
func (b *Buffer) ReserveInt16(label ...Label) Location  { return b.reserve(BlockI16, 2, label) }
func (b *Buffer) ReserveUint16(label ...Label) Location { return b.reserve(BlockU16, 2, label) }
func (b *Buffer) ReserveInt32(label ...Label) Location  { return b.reserve(BlockI32, 4, label) }
func (b *Buffer) ReserveUint32(label ...Label) Location { return b.reserve(BlockU32, 4, label) }
func (b *Buffer) ReserveInt64(label ...Label) Location  { return b.reserve(BlockI64, 8, label) }
func (b *Buffer) ReserveUint64(label ...Label) Location { return b.reserve(BlockU64, 8, label) }
func (b *Buffer) ReserveFloat16(label ...Label) Location {
	return b.reserve(BlockF16, 2, label)
}
func (b *Buffer) ReserveFloat32(label ...Label) Location {
	return b.reserve(BlockF32, 4, label)
}
func (b *Buffer) ReserveFloat64(label ...Label) Location {
	return b.reserve(BlockF64, 8, label)
}

// --- Write...At: patch a slot anywhere below the head ---

func (b *Buffer) WriteInt8At(loc Location, v int8) {
	b.patch(loc, []byte{byte(v)})
}

func (b *Buffer) WriteUint8At(loc Location, v uint8) {
	b.patch(loc, []byte{v})
}

func (b *Buffer) WriteInt16At(loc Location, v int16) {
	var buf [2]byte
	b.order().PutUint16(buf[:], uint16(v))
	b.patch(loc, buf[:])
}

func (b *Buffer) WriteUint16At(loc Location, v uint16) {
	var buf [2]byte
	b.order().PutUint16(buf[:], v)
	b.patch(loc, buf[:])
}

func (b *Buffer) WriteInt32At(loc Location, v int32) {
	var buf [4]byte
	b.order().PutUint32(buf[:], uint32(v))
	b.patch(loc, buf[:])
}

func (b *Buffer) WriteUint32At(loc Location, v uint32) {
	var buf [4]byte
	b.order().PutUint32(buf[:], v)
	b.patch(loc, buf[:])
}

func (b *Buffer) WriteInt64At(loc Location, v int64) {
	var buf [8]byte
	b.order().PutUint64(buf[:], uint64(v))
	b.patch(loc, buf[:])
}

func (b *Buffer) WriteUint64At(loc Location, v uint64) {
	var buf [8]byte
	b.order().PutUint64(buf[:], v)
	b.patch(loc, buf[:])
}

func (b *Buffer) WriteFloat16At(loc Location, v float32) {
	var buf [2]byte
	b.order().PutUint16(buf[:], float16.Fromfloat32(v).Bits())
	b.patch(loc, buf[:])
}

func (b *Buffer) WriteFloat32At(loc Location, v float32) {
	var buf [4]byte
	b.order().PutUint32(buf[:], math.Float32bits(v))
	b.patch(loc, buf[:])
}

func (b *Buffer) WriteFloat64At(loc Location, v float64) {
	var buf [8]byte
	b.order().PutUint64(buf[:], math.Float64bits(v))
	b.patch(loc, buf[:])
}

// --- Put: write at the patch cursor and advance it ---

func (b *Buffer) PutUint8(v uint8) {
	b.put([]byte{v})
}

func (b *Buffer) PutUint16(v uint16) {
	var buf [2]byte
	b.order().PutUint16(buf[:], v)
	b.put(buf[:])
}

func (b *Buffer) PutUint32(v uint32) {
	var buf [4]byte
	b.order().PutUint32(buf[:], v)
	b.put(buf[:])
}

func (b *Buffer) PutUint64(v uint64) {
	var buf [8]byte
	b.order().PutUint64(buf[:], v)
	b.put(buf[:])
}

func (b *Buffer) PutFloat32(v float32) {
	b.PutUint32(math.Float32bits(v))
}

func (b *Buffer) PutFloat64(v float64) {
	b.PutUint64(math.Float64bits(v))
}

func (b *Buffer) PutBytes(p []byte) {
	b.put(p)
}
