package smartbuf_test

import (
	"context"
	"fmt"

	"github.com/oy3o/smartbuf"
	"github.com/oy3o/smartbuf/sink"
)

func Example() {
	// A vertex array referenced from a header that is built first.
	verts := smartbuf.New("verts", smartbuf.WithPlatform(smartbuf.LE64))
	verts.AddVec3([3]float32{0, 0, 0})
	verts.AddVec3([3]float32{1, 0, 0})

	hdr := smartbuf.New("header", smartbuf.WithPlatform(smartbuf.LE64))
	count := hdr.ReserveUint32()
	hdr.PadToAlignment(8)
	hdr.AddPointer(smartbuf.PointerNative, verts.Start())
	hdr.WriteUint32At(count, 2)

	img, err := smartbuf.Link(hdr, verts)
	if err != nil {
		fmt.Println(err)
		return
	}

	mem := sink.NewMemory()
	if err := img.Emit(context.Background(), mem, "mesh.bin"); err != nil {
		fmt.Println(err)
		return
	}
	data, _ := mem.Get("mesh.bin")
	fmt.Println(len(data), img.Layout()[1].Offset, img.PointerSlots())
	// Output: 40 16 [8]
}
