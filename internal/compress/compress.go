package compress

import (
	"fmt"

	"github.com/robert-malhotra/go-nexrad/internal/errs"
	"github.com/robert-malhotra/go-nexrad/internal/header"
)

// Method is implemented by every body decompressor.
type Method interface {
	// ID returns the method code carried in the product description.
	ID() uint16

	// Decode expands input into exactly size bytes.
	Decode(input []byte, size int) ([]byte, error)
}

// Registry maps method codes to implementations.
var Registry = map[uint16]Method{
	header.CompressionNone:  None{},
	header.CompressionBzip2: Bzip2{},
}

var methodNames = map[uint16]string{
	header.CompressionNone:  "none",
	header.CompressionBzip2: "bzip2",
}

// Name returns a printable method name.
func Name(id uint16) string {
	if name, ok := methodNames[id]; ok {
		return name
	}
	return fmt.Sprintf("unknown(%d)", id)
}

// Lookup returns the method for a code.
func Lookup(id uint16) (Method, error) {
	m, ok := Registry[id]
	if !ok {
		return nil, fmt.Errorf("%w: compression method %d", errs.ErrUnsupportedEncoding, id)
	}
	return m, nil
}

// Decompress expands input with the given method. The declared size must
// not exceed limit.
func Decompress(id uint16, input []byte, size, limit int) ([]byte, error) {
	m, err := Lookup(id)
	if err != nil {
		return nil, err
	}
	if size < 0 || size > limit {
		return nil, fmt.Errorf("%w: declared body size %d exceeds limit %d", errs.ErrOutOfRange, size, limit)
	}
	out, err := m.Decode(input, size)
	if err != nil {
		return nil, fmt.Errorf("%s decode: %w", Name(id), err)
	}
	return out, nil
}

// None passes data through unchanged.
type None struct{}

func (None) ID() uint16 {
	return header.CompressionNone
}

func (None) Decode(input []byte, size int) ([]byte, error) {
	if len(input) != size {
		return nil, fmt.Errorf("%w: got %d bytes, declared %d", errs.ErrSizeMismatch, len(input), size)
	}
	return input, nil
}
