package smartbuf

import "sync"

// blockPool recycles arena blocks of DefaultBlockSize. Blocks of any other
// size are allocated directly and left to the GC.
var blockPool = sync.Pool{
	New: func() any {
		b := make([]byte, DefaultBlockSize)
		return &b
	},
}

func getBlock(size int) []byte {
	if size != DefaultBlockSize {
		return make([]byte, size)
	}
	b := *blockPool.Get().(*[]byte)
	clear(b)
	return b
}

func putBlock(b []byte) {
	if len(b) != DefaultBlockSize {
		return
	}
	blockPool.Put(&b)
}
