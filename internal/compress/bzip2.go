package compress

import (
	"bytes"
	"compress/bzip2"
	"errors"
	"fmt"
	"io"

	"github.com/robert-malhotra/go-nexrad/internal/errs"
	"github.com/robert-malhotra/go-nexrad/internal/header"
)

// Bzip2 decompresses bzip2 streams.
type Bzip2 struct{}

func (Bzip2) ID() uint16 {
	return header.CompressionBzip2
}

func (Bzip2) Decode(input []byte, size int) ([]byte, error) {
	r := bzip2.NewReader(bytes.NewReader(input))

	out := make([]byte, size)
	if _, err := io.ReadFull(r, out); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: stream shorter than declared %d bytes", errs.ErrSizeMismatch, size)
		}
		return nil, fmt.Errorf("bzip2 decompress: %w", err)
	}

	var extra [1]byte
	n, err := r.Read(extra[:])
	if n > 0 {
		return nil, fmt.Errorf("%w: stream longer than declared %d bytes", errs.ErrSizeMismatch, size)
	}
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("bzip2 decompress: %w", err)
	}

	return out, nil
}
