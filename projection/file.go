package projection

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/robert-malhotra/go-nexrad/internal/binary"
)

// MarshalBinary encodes the table in the projection file format.
func (p *Projection) MarshalBinary() ([]byte, error) {
	size := p.header.FileSize()
	buf := binary.NewBuffer(int(size))
	if err := p.header.write(binary.NewWriter(buf)); err != nil {
		return nil, err
	}

	data := buf.Bytes()
	off := HeaderSize
	for _, pt := range p.points {
		binary.Order.PutUint16(data[off:], pt.Azimuth)
		binary.Order.PutUint16(data[off+2:], pt.Range)
		off += RecordSize
	}
	return data, nil
}

// WriteFile persists the table at path. The table is written to a
// temporary file in the same directory, extended to its final size,
// synced, and renamed over path.
func (p *Projection) WriteFile(path string) (err error) {
	data, err := p.MarshalBinary()
	if err != nil {
		return err
	}

	f, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("%w: creating projection file: %w", ErrResource, err)
	}
	tmp := f.Name()
	defer func() {
		if err != nil {
			f.Close()
			os.Remove(tmp)
		}
	}()

	if err := f.Truncate(int64(len(data))); err != nil {
		return fmt.Errorf("%w: extending projection file: %w", ErrResource, err)
	}
	if _, err := f.WriteAt(data, 0); err != nil {
		return fmt.Errorf("%w: writing projection file: %w", ErrResource, err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("%w: syncing projection file: %w", ErrResource, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: closing projection file: %w", ErrResource, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("%w: renaming projection file: %w", ErrResource, err)
	}
	return nil
}
