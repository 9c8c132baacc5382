package projection

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreBuildsAndCaches(t *testing.T) {
	dir := t.TempDir()
	builds := 0
	s, err := NewStore(dir, time.Minute, WithProgress(func(done, total int) {
		if done == total {
			builds++
		}
	}))
	require.NoError(t, err)
	defer s.Close()

	r1, err := s.Equirect(small, EquirectParams{Scale: 0.05})
	require.NoError(t, err)
	assert.Equal(t, 1, builds)
	assert.FileExists(t, r1.Path())
	assert.Equal(t, dir, filepath.Dir(r1.Path()))

	r2, err := s.Equirect(small, EquirectParams{Scale: 0.05})
	require.NoError(t, err)
	assert.Same(t, r1, r2)
	assert.Equal(t, 1, builds)
	assert.Equal(t, 1, s.Len())

	m, err := s.Mercator(small, MercatorParams{Zoom: 6})
	require.NoError(t, err)
	assert.Equal(t, KindMercator, m.Header().Kind)
	assert.Equal(t, 2, builds)
	assert.Equal(t, 2, s.Len())
}

func TestStoreLoadsPersisted(t *testing.T) {
	dir := t.TempDir()

	s1, err := NewStore(dir, time.Minute)
	require.NoError(t, err)
	r, err := s1.Equirect(small, EquirectParams{Scale: 0.05})
	require.NoError(t, err)
	path := r.Path()
	require.NoError(t, s1.Close())
	assert.Zero(t, s1.Len())

	built := false
	s2, err := NewStore(dir, time.Minute, WithProgress(func(int, int) { built = true }))
	require.NoError(t, err)
	defer s2.Close()

	r, err = s2.Equirect(small, EquirectParams{Scale: 0.05})
	require.NoError(t, err)
	assert.False(t, built, "persisted table was rebuilt")
	assert.Equal(t, path, r.Path())
	assert.InDelta(t, small.Lat, r.Header().Station.Lat, 1e-6)
}

func TestStoreExpiry(t *testing.T) {
	s, err := NewStore(t.TempDir(), 100*time.Millisecond)
	require.NoError(t, err)
	defer s.Close()

	r1, err := s.Equirect(small, EquirectParams{Scale: 0.05})
	require.NoError(t, err)

	time.Sleep(250 * time.Millisecond)

	r2, err := s.Equirect(small, EquirectParams{Scale: 0.05})
	require.NoError(t, err)
	assert.NotSame(t, r1, r2)

	_, err = r1.FindPolarPoint(0, 0)
	assert.ErrorIs(t, err, ErrClosed)
	_, err = r2.FindPolarPoint(0, 0)
	assert.NoError(t, err)
}

func TestStoreKeepsBusyReader(t *testing.T) {
	s, err := NewStore(t.TempDir(), 150*time.Millisecond)
	require.NoError(t, err)
	defer s.Close()

	first, err := s.Equirect(small, EquirectParams{Scale: 0.05})
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		time.Sleep(40 * time.Millisecond)
		r, err := s.Equirect(small, EquirectParams{Scale: 0.05})
		require.NoError(t, err)
		assert.Same(t, first, r, "reader replaced after %d lookups", i+1)
		_, err = r.FindPolarPoint(0, 0)
		require.NoError(t, err)
	}
}

func TestStoreClosesReaders(t *testing.T) {
	s, err := NewStore(t.TempDir(), time.Minute)
	require.NoError(t, err)

	r, err := s.Equirect(small, EquirectParams{Scale: 0.05})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	_, err = r.FindPolarPoint(0, 0)
	assert.ErrorIs(t, err, ErrClosed)
}

func TestStoreKeys(t *testing.T) {
	s, err := NewStore(t.TempDir(), time.Minute)
	require.NoError(t, err)
	defer s.Close()

	a, err := s.Mercator(small, MercatorParams{Zoom: 1})
	require.NoError(t, err)
	b, err := s.Mercator(small, MercatorParams{Zoom: 2})
	require.NoError(t, err)
	// both clamp to the same zoom
	assert.Same(t, a, b)
	assert.Equal(t, "mercator_35333000_-97278000_30x1000_z2.proj", filepath.Base(a.Path()))
}

func TestNewStoreErrors(t *testing.T) {
	_, err := NewStore(t.TempDir(), 0)
	assert.ErrorIs(t, err, ErrOutOfRange)

	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, nil, 0o644))
	_, err = NewStore(filepath.Join(file, "sub"), time.Minute)
	assert.ErrorIs(t, err, ErrResource)
}

func TestStoreBuildError(t *testing.T) {
	s, err := NewStore(t.TempDir(), time.Minute)
	require.NoError(t, err)
	defer s.Close()

	_, err = s.Equirect(small, EquirectParams{Scale: 0})
	assert.ErrorIs(t, err, ErrOutOfRange)
	assert.Zero(t, s.Len())
}
