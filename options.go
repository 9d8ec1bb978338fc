package smartbuf

import (
	"io"
	"log/slog"

	"github.com/xyproto/env/v2"
)

// DefaultBlockSize is the arena block size used when none is configured.
const DefaultBlockSize = 2048

// options holds the construction-time configuration of a Buffer.
type options struct {
	platform  Platform
	blockSize int
	debug     bool
	strict    bool
	logger    *slog.Logger
}

// Option configures a Buffer.
type Option func(*options)

func defaultOptions() options {
	return options{
		platform:  Native(),
		blockSize: DefaultBlockSize,
		logger:    discardLogger,
	}
}

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// WithPlatform sets the target platform: scalar byte order and native pointer width.
func WithPlatform(p Platform) Option {
	return func(o *options) { o.platform = p }
}

// WithBlockSize sets the arena block size. Non-positive values keep the default.
func WithBlockSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.blockSize = n
		}
	}
}

// WithDebugInfo enables debug provenance records for every Add/Reserve call.
func WithDebugInfo(enabled bool) Option {
	return func(o *options) { o.debug = enabled }
}

// WithStrict makes protocol violations panic at the offending call instead of
// latching the error on the buffer.
func WithStrict(enabled bool) Option {
	return func(o *options) { o.strict = enabled }
}

// WithLogger sets the logger used for diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// Environment variables read by OptionsFromEnv.
const (
	EnvPlatform  = "SMARTBUF_PLATFORM"
	EnvBlockSize = "SMARTBUF_BLOCK_SIZE"
	EnvDebug     = "SMARTBUF_DEBUG"
	EnvStrict    = "SMARTBUF_STRICT"
)

// OptionsFromEnv builds options from the process environment. Buffers never
// read the environment themselves; callers that want environment driven
// builds pass the result to New. Every call sees the current environment.
func OptionsFromEnv() ([]Option, error) {
	env.Load()
	platform, err := ParsePlatform(env.Str(EnvPlatform, "native"))
	if err != nil {
		return nil, err
	}
	return []Option{
		WithPlatform(platform),
		WithBlockSize(env.Int(EnvBlockSize, DefaultBlockSize)),
		WithDebugInfo(env.Bool(EnvDebug)),
		WithStrict(env.Bool(EnvStrict)),
	}, nil
}
