package projection

import (
	"fmt"
	"sync"

	"golang.org/x/exp/mmap"

	"github.com/robert-malhotra/go-nexrad/internal/binary"
)

// Reader is a read-only mapped projection file. Lookups may run
// concurrently; Close waits for lookups in flight before unmapping.
type Reader struct {
	path   string
	header *Header

	mu sync.RWMutex
	ra *mmap.ReaderAt
}

// Open maps the projection file at path and validates its header.
func Open(path string, opts ...Option) (*Reader, error) {
	o := applyOptions(opts)

	ra, err := mmap.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: mapping %s: %w", ErrResource, path, err)
	}

	size := int64(ra.Len())
	h, err := readHeader(binary.NewReader(ra, size))
	if err != nil {
		ra.Close()
		return nil, err
	}
	if h.FileSize() != size {
		ra.Close()
		return nil, fmt.Errorf("%w: %dx%d table needs %d bytes, file holds %d", ErrSizeMismatch, h.Width, h.Height, h.FileSize(), size)
	}

	o.logger.Debug("opened projection", "path", path, "kind", h.Kind.String(), "width", h.Width, "height", h.Height)
	return &Reader{path: path, header: h, ra: ra}, nil
}

// Path returns the mapped file path.
func (r *Reader) Path() string {
	return r.path
}

// Header returns the table header.
func (r *Reader) Header() Header {
	return *r.header
}

// FindPolarPoint returns the radar coordinate of pixel (x, y).
func (r *Reader) FindPolarPoint(x, y int) (PolarPoint, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.ra == nil {
		return PolarPoint{}, ErrClosed
	}
	if x < 0 || y < 0 || x >= r.header.Width || y >= r.header.Height {
		return PolarPoint{}, fmt.Errorf("%w: (%d, %d)", ErrNotFound, x, y)
	}

	var rec [RecordSize]byte
	off := HeaderSize + (int64(y)*int64(r.header.Width)+int64(x))*RecordSize
	if _, err := r.ra.ReadAt(rec[:], off); err != nil {
		return PolarPoint{}, fmt.Errorf("%w: reading record: %v", ErrBounds, err)
	}
	return PolarPoint{
		Azimuth: binary.Order.Uint16(rec[0:]),
		Range:   binary.Order.Uint16(rec[2:]),
	}, nil
}

// Close unmaps the file. It is safe to call more than once.
func (r *Reader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.ra == nil {
		return nil
	}
	err := r.ra.Close()
	r.ra = nil
	return err
}
