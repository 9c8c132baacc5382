// Package projection builds and reads persisted lookup tables that map
// output image pixels to radar polar coordinates.
package projection

import (
	"errors"

	"github.com/robert-malhotra/go-nexrad/internal/errs"
)

// Failure taxonomy shared with package nexrad.
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
	ErrNotFound = errors.New("pixel outside projection")
	ErrClosed   = errors.New("projection is closed")
)
