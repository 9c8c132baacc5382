// Package nexrad provides a pure Go reader for NEXRAD Level III radar
// product files.
package nexrad

import (
	"errors"

	"github.com/robert-malhotra/go-nexrad/internal/errs"
)

// Failure taxonomy. Every error returned by this package wraps one of these
// or one of the package errors below.
var (
	ErrMalformedHeader     = errs.ErrMalformedHeader
	ErrSizeMismatch        = errs.ErrSizeMismatch
	ErrOutOfRange          = errs.ErrOutOfRange
	ErrUnsupportedEncoding = errs.ErrUnsupportedEncoding
	ErrResource            = errs.ErrResource
	ErrBounds              = errs.ErrBounds
)

// Package errors
var (
	ErrClosed     = errors.New("message is closed")
	ErrNotFound   = errors.New("rangebin not found")
	ErrNotDigital = errors.New("point lookup requires a digital radial packet")
	ErrNoBlock    = errors.New("block not present in message")
)

// Size bounds for product files.
const (
	// MinFileSize is the smallest file that can hold a message header and
	// product description.
	MinFileSize = 120

	// MaxFileSize is the largest product file accepted by Open.
	MaxFileSize = 16 << 20

	// DefaultMaxBodySize is the default ceiling on a decompressed body.
	DefaultMaxBodySize = 8 << 20
)
