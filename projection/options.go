package projection

import (
	"io"
	"log/slog"

	"github.com/jonboulle/clockwork"
)

// DefaultTileSize is the Web Mercator tile edge in pixels.
const DefaultTileSize = 256

// ProgressFunc is called after each output row is computed.
type ProgressFunc func(done, total int)

// Option configures projection builds, readers and stores.
type Option func(*options)

type options struct {
	logger   *slog.Logger
	clock    clockwork.Clock
	progress ProgressFunc
	tileSize int
}

func defaultOptions() *options {
	return &options{
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		clock:    clockwork.NewRealClock(),
		tileSize: DefaultTileSize,
	}
}

func applyOptions(opts []Option) *options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithLogger sets the logger for build and cache diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithClock sets the clock used to time builds.
func WithClock(clock clockwork.Clock) Option {
	return func(o *options) {
		if clock != nil {
			o.clock = clock
		}
	}
}

// WithProgress registers a callback for build progress.
func WithProgress(fn ProgressFunc) Option {
	return func(o *options) {
		o.progress = fn
	}
}

// WithTileSize sets the Mercator tile size in pixels.
func WithTileSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.tileSize = n
		}
	}
}
