package smartbuf

import "context"

// Sink receives finished images. Put is called once per image with the whole,
// fully resolved byte sequence; a sink never sees a partial or unresolved
// buffer. Implementations live in the sink package.
type Sink interface {
	Put(ctx context.Context, name string, data []byte) error
}

// SinkFunc adapts a function to a Sink.
type SinkFunc func(ctx context.Context, name string, data []byte) error

func (f SinkFunc) Put(ctx context.Context, name string, data []byte) error {
	return f(ctx, name, data)
}
