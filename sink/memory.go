package sink

import (
	"context"
	"sort"

	"github.com/oy3o/smartbuf"
	"github.com/puzpuzpuz/xsync/v4"
)

var _ smartbuf.Sink = (*Memory)(nil)

// Memory keeps emitted images in memory. It is safe for concurrent use and is
// mostly useful in tests and for in-process consumers.
type Memory struct {
	blobs *xsync.Map[string, []byte]
}

// NewMemory creates an empty in-memory sink.
func NewMemory() *Memory {
	return &Memory{blobs: xsync.NewMap[string, []byte]()}
}

// Put stores a copy of data under name, replacing any previous image.
func (m *Memory) Put(ctx context.Context, name string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if name == "" {
		return ErrEmptyName
	}
	m.blobs.Store(name, append([]byte(nil), data...))
	return nil
}

// Get returns a copy of the image stored under name.
func (m *Memory) Get(name string) ([]byte, error) {
	data, ok := m.blobs.Load(name)
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), data...), nil
}

// Names returns the stored image names in sorted order.
func (m *Memory) Names() []string {
	names := make([]string, 0, m.blobs.Size())
	m.blobs.Range(func(name string, _ []byte) bool {
		names = append(names, name)
		return true
	})
	sort.Strings(names)
	return names
}

// Len returns the number of stored images.
func (m *Memory) Len() int { return m.blobs.Size() }
