package smartbuf

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// BuildFunc runs one serialization pass and returns the buffer it built. The
// buffer must not be shared with any other BuildFunc while the pass runs.
type BuildFunc func(ctx context.Context) (*Buffer, error)

// BuildAll runs independent build passes concurrently, at most limit at a time
// (limit <= 0 means no limit). Results keep the order of fns. The first
// failing pass cancels the context of the others and its error is returned;
// a pass that returns a buffer with a latched error counts as failed.
func BuildAll(ctx context.Context, limit int, fns ...BuildFunc) ([]*Buffer, error) {
	out := make([]*Buffer, len(fns))
	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, fn := range fns {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			buf, err := fn(ctx)
			if err != nil {
				return fmt.Errorf("build %d: %w", i, err)
			}
			if buf == nil {
				return fmt.Errorf("build %d: %w", i, ErrNilBuffer)
			}
			if err := buf.Err(); err != nil {
				return fmt.Errorf("build %d: %w", i, err)
			}
			out[i] = buf
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// BuildAndLink runs the passes with BuildAll and links the results with the
// first buffer as root.
func (l *Linker) BuildAndLink(ctx context.Context, limit int, fns ...BuildFunc) (*Image, error) {
	if len(fns) == 0 {
		return nil, ErrNilBuffer
	}
	bufs, err := BuildAll(ctx, limit, fns...)
	if err != nil {
		return nil, err
	}
	return l.Link(bufs[0], bufs[1:]...)
}
