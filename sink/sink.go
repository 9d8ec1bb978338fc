// Package sink provides destinations for linked smartbuf images: memory, a
// local directory, and S3 or MinIO buckets. Every sink receives an image in a
// single Put with the complete, resolved bytes.
package sink

import (
	"errors"
	"fmt"
	"log/slog"
	"path"
	"strings"
)

var (
	// ErrNotFound is returned when a stored image does not exist.
	ErrNotFound = errors.New("sink: image not found")

	// ErrEmptyName is returned by Put for an empty image name.
	ErrEmptyName = errors.New("sink: empty image name")

	// ErrInvalidName is returned for names that escape the sink root.
	ErrInvalidName = errors.New("sink: invalid image name")
)

var discardLogger = slog.New(slog.DiscardHandler)

// objectKey joins prefix and name into a clean, slash separated key.
func objectKey(prefix, name string) (string, error) {
	if name == "" {
		return "", ErrEmptyName
	}
	for _, part := range strings.Split(name, "/") {
		if part == ".." {
			return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
		}
	}
	clean := path.Clean("/" + name)[1:]
	if clean == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return path.Join(prefix, clean), nil
}

type config struct {
	prefix string
	logger *slog.Logger
}

// Option configures a Dir, S3 or MinIO sink.
type Option func(*config)

// WithPrefix prepends prefix to every object key. Dir ignores it.
func WithPrefix(prefix string) Option {
	return func(c *config) { c.prefix = prefix }
}

// WithLogger sets the logger that records every Put.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

func newConfig(opts []Option) config {
	c := config{logger: discardLogger}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}
