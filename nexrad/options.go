package nexrad

import (
	"io"
	"log/slog"
)

// Option configures how a message is opened.
type Option func(*options)

type options struct {
	logger      *slog.Logger
	maxBodySize int
}

func defaultOptions() *options {
	return &options{
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		maxBodySize: DefaultMaxBodySize,
	}
}

// WithLogger sets the logger used for open/close diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithMaxBodySize sets the ceiling on a declared decompressed body size.
func WithMaxBodySize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxBodySize = n
		}
	}
}
