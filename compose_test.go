package smartbuf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddBuffer(t *testing.T) {
	t.Run("CopiesBytes", func(t *testing.T) {
		child := New("child", WithBlockSize(8))
		for i := range 20 {
			child.AddUint8(uint8(i))
		}
		parent := New("parent", WithBlockSize(16))
		parent.AddUint8(0xFF)
		at := parent.AddBuffer(child, false)
		require.NoError(t, parent.Err())

		assert.EqualValues(t, 1, at.Offset())
		assert.Equal(t, 21, parent.Len())
		assert.Equal(t, child.Bytes(), parent.Bytes()[1:])
		assert.Equal(t, 20, child.Len(), "the child is left untouched")
	})

	t.Run("RehomesChildFixups", func(t *testing.T) {
		child := New("child", WithPlatform(LE64))
		self := child.ReservePointer(Pointer64)
		child.AddUint32(0xAB)
		child.WritePointer(self, child.Start().Add(8))
		pending := child.ReserveOffset()

		parent := New("parent", WithPlatform(LE64))
		parent.AddUint64(0)
		parent.AddUint64(0)
		at := parent.AddBuffer(child, true)
		require.EqualValues(t, 16, at.Offset())

		fx := parent.Fixups()
		require.Len(t, fx, 2)
		assert.EqualValues(t, 16, fx[0].Source)
		assert.Same(t, parent, fx[0].Target.Buffer(), "child-internal targets follow the copy")
		assert.EqualValues(t, 24, fx[0].Target.Offset())
		assert.Equal(t, 1, parent.Pending())
		assert.Equal(t, 1, child.Pending(), "the child's own table is not touched")

		parent.WriteOffset(Rebase(pending, at), parent.Start())
		img, err := Link(parent)
		require.NoError(t, err)

		r := img.NewReader()
		r.SeekTo(16)
		var ptr uint64
		var off int32
		var v uint32
		r.ReadUint64(&ptr)
		r.ReadUint32(&v)
		r.ReadInt32(&off)
		require.NoError(t, r.Err())
		assert.EqualValues(t, 24, ptr)
		assert.EqualValues(t, 0xAB, v)
		assert.EqualValues(t, -28, off)
	})

	t.Run("WithoutFixupsLeavesPlaceholders", func(t *testing.T) {
		child := New("child", WithPlatform(LE64))
		child.AddPointer(Pointer64, child.Start())
		parent := New("parent", WithPlatform(LE64))
		parent.AddBuffer(child, false)
		assert.Empty(t, parent.Fixups())

		img, err := Link(parent)
		require.NoError(t, err)
		assert.Equal(t, make([]byte, 8), img.Bytes())
	})

	t.Run("TransitiveEmbedding", func(t *testing.T) {
		leaf := New("leaf", WithPlatform(LE64))
		leaf.AddUint32(1)
		deep := leaf.Head()
		leaf.AddUint32(2)

		mid := New("mid", WithPlatform(LE64))
		mid.AddUint64(0)
		mid.AddBuffer(leaf, true)

		top := New("top", WithPlatform(LE64))
		top.AddUint32(0)
		top.AddBuffer(mid, true)

		index := New("index", WithPlatform(LE64))
		index.AddPointer(PointerNative, deep)

		img, err := Link(top, index)
		require.NoError(t, err)

		off, err := img.Offset(deep)
		require.NoError(t, err)
		assert.EqualValues(t, 4+8+4, off)

		r := img.NewReader()
		r.SeekTo(img.Layout()[1].Offset)
		var ptr uint64
		r.ReadUint64(&ptr)
		assert.EqualValues(t, 16, ptr)
	})

	t.Run("SharedChild", func(t *testing.T) {
		shared := New("shared", WithPlatform(LE64))
		shared.AddUint32(5)
		a := New("a", WithPlatform(LE64))
		b := New("b", WithPlatform(LE64))
		a.AddBuffer(shared, true)
		b.AddBuffer(shared, true)
		require.NoError(t, a.Err())
		require.NoError(t, b.Err())
		assert.Equal(t, a.Bytes(), b.Bytes())
	})

	t.Run("Errors", func(t *testing.T) {
		b := New("b")
		b.AddBuffer(nil, false)
		assert.ErrorIs(t, b.Err(), ErrNilBuffer)

		self := New("self")
		self.AddBuffer(self, false)
		assert.ErrorIs(t, self.Err(), ErrSelfEmbed)

		poisoned := New("poisoned")
		poisoned.WriteUint8At(poisoned.Head(), 1)
		host := New("host")
		host.AddBuffer(poisoned, false)
		assert.ErrorIs(t, host.Err(), ErrOutOfRange)
		assert.Contains(t, host.Err().Error(), `embedding "poisoned"`)

		le := New("le", WithPlatform(LE64))
		be := New("be", WithPlatform(BE64))
		le.AddBuffer(be, false)
		assert.ErrorIs(t, le.Err(), ErrPlatformMismatch)
	})

	t.Run("TargetPastChildHead", func(t *testing.T) {
		child := New("b", WithPlatform(LE64))
		child.AddUint32(7)

		parent := New("a", WithPlatform(LE64))
		slot := parent.ReservePointer(Pointer64)
		parent.WritePointer(slot, child.Head().Add(64))
		require.NoError(t, parent.Err())

		at := parent.AddBuffer(child, true)
		assert.True(t, at.IsNull())
		assert.ErrorIs(t, parent.Err(), ErrOutOfRange)
		assert.Contains(t, parent.Err().Error(), `"b" being embedded`)
		assert.Equal(t, 8, parent.Len(), "nothing is copied")

		_, err := Link(parent)
		assert.ErrorIs(t, err, ErrOutOfRange)
	})

	t.Run("ChildFixupPastItsHead", func(t *testing.T) {
		child := New("b", WithPlatform(LE64))
		off := child.ReserveOffset()
		child.WriteOffsetFrom(off, child.Start(), child.Start().Add(32))
		require.NoError(t, child.Err())

		withFixups := New("a", WithPlatform(LE64))
		withFixups.AddBuffer(child, true)
		assert.ErrorIs(t, withFixups.Err(), ErrOutOfRange)

		bytesOnly := New("c", WithPlatform(LE64))
		bytesOnly.AddBuffer(child, false)
		assert.NoError(t, bytesOnly.Err(), "fixups left behind are not retargeted")
	})

	t.Run("TargetAtChildEnd", func(t *testing.T) {
		child := New("b", WithPlatform(LE64))
		child.AddUint32(7)
		parent := New("a", WithPlatform(LE64))
		slot := parent.ReservePointer(Pointer64)
		parent.WritePointer(slot, child.Head())
		parent.AddBuffer(child, true)
		require.NoError(t, parent.Err())

		img, err := Link(parent)
		require.NoError(t, err)
		r := img.NewReader()
		var ptr uint64
		r.ReadUint64(&ptr)
		assert.EqualValues(t, 12, ptr)
	})
}

func TestRebase(t *testing.T) {
	child := New("child")
	loc := child.Reserve(4)
	parent := New("parent")
	parent.AddPad(12)
	at := parent.AddBuffer(child, false)

	r := Rebase(loc, at)
	assert.Same(t, parent, r.Buffer())
	assert.EqualValues(t, 12, r.Offset())
	assert.EqualValues(t, 4, r.Size())
	assert.True(t, Rebase(Location{}, at).IsNull())
	assert.True(t, Rebase(loc, Location{}).IsNull())
}

func TestImagePlacement(t *testing.T) {
	child := New("child", WithPlatform(LE64))
	child.AddUint32(1)
	parent := New("parent", WithPlatform(LE64))
	parent.AddUint64(0)
	parent.AddBuffer(child, false)
	other := New("other", WithPlatform(LE64))
	other.AddUint8(1)

	img, err := Link(parent, other)
	require.NoError(t, err)

	off, ok := img.Placement(child)
	assert.True(t, ok)
	assert.EqualValues(t, 8, off)

	off, ok = img.Placement(other)
	assert.True(t, ok)
	assert.EqualValues(t, 16, off)

	_, ok = img.Placement(New("stranger"))
	assert.False(t, ok)
}
