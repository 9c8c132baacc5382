// Package errs defines the failure taxonomy shared by the NEXRAD decoders
// and the projection tables. Concrete errors wrap one of these sentinels so
// callers can classify them with errors.Is.
package errs

import "errors"

var (
	ErrMalformedHeader     = errors.New("malformed header")
	ErrSizeMismatch        = errors.New("size mismatch")
	ErrOutOfRange          = errors.New("field out of range")
	ErrUnsupportedEncoding = errors.New("unsupported encoding")
	ErrResource            = errors.New("resource error")
	ErrBounds              = errors.New("offset out of bounds")
)
