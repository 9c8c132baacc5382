package projection

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robert-malhotra/go-nexrad/internal/geodesy"
)

var ktlx = Site{Lat: 35.333, Lon: -97.278, Rangebins: 346, RangebinMeters: 1000}

// small keeps table builds fast.
var small = Site{Lat: 35.333, Lon: -97.278, Rangebins: 30, RangebinMeters: 1000}

// stationPixel returns the table pixel containing the radar site.
func stationPixel(t *testing.T, h Header) (int, int) {
	t.Helper()
	var g grid
	switch h.Kind {
	case KindEquirect:
		g = newEquirectGrid(h.Scale)
	case KindMercator:
		g = mercatorGrid{size: float64(h.TileSize) * float64(int(1)<<h.Zoom)}
	}
	x, y := g.forward(h.Station)
	return int(x) - h.WorldX, int(y) - h.WorldY
}

func TestEquirectScenario(t *testing.T) {
	p, err := BuildEquirect(ktlx, EquirectParams{Scale: 0.00815})
	require.NoError(t, err)
	h := p.Header()

	path := filepath.Join(t.TempDir(), "ktlx.proj")
	require.NoError(t, p.WriteFile(path))

	r, err := Open(path)
	require.NoError(t, err)
	defer r.Close()

	got := r.Header()
	assert.Equal(t, KindEquirect, got.Kind)
	assert.InDelta(t, 35.333, got.Station.Lat, 0.001)
	assert.InDelta(t, -97.278, got.Station.Lon, 0.001)
	assert.Equal(t, h.Width, got.Width)
	assert.Equal(t, h.Height, got.Height)
	assert.Equal(t, 346, got.Rangebins)
	assert.Equal(t, 1000, got.RangebinMeters)
	assert.Equal(t, 0.00815, got.Scale)
	assert.InDelta(t, h.Extents.North, got.Extents.North, 1e-6)
	assert.InDelta(t, h.Extents.West, got.Extents.West, 1e-6)

	// about 122.7 pixels per degree both ways
	assert.InDelta(t, 935, got.Width, 5)
	assert.InDelta(t, 766, got.Height, 5)

	x, y := stationPixel(t, got)
	pt, err := r.FindPolarPoint(x, y)
	require.NoError(t, err)
	assert.LessOrEqual(t, pt.Range, uint16(1))

	east, err := r.FindPolarPoint(got.Width-1, y)
	require.NoError(t, err)
	assert.InDelta(t, 900, east.Azimuth, 20)
	assert.InDelta(t, 346, east.Range, 2)

	south, err := r.FindPolarPoint(x, got.Height-1)
	require.NoError(t, err)
	assert.InDelta(t, 1800, south.Azimuth, 10)

	corner, err := r.FindPolarPoint(0, 0)
	require.NoError(t, err)
	assert.Greater(t, corner.Range, uint16(346))
	assert.InDelta(t, 3150, corner.Azimuth, 30)

	// mapped and in-memory tables agree
	for _, xy := range [][2]int{{0, 0}, {x, y}, {got.Width - 1, got.Height - 1}, {17, 403}} {
		want, err := p.FindPolarPoint(xy[0], xy[1])
		require.NoError(t, err)
		have, err := r.FindPolarPoint(xy[0], xy[1])
		require.NoError(t, err)
		assert.Equal(t, want, have)
	}
}

func TestMercatorBuild(t *testing.T) {
	site := Site{Lat: 35.333, Lon: -97.278, Rangebins: 50, RangebinMeters: 1000}
	p, err := BuildMercator(site, MercatorParams{Zoom: 8})
	require.NoError(t, err)
	h := p.Header()

	assert.Equal(t, KindMercator, h.Kind)
	assert.Equal(t, 8, h.Zoom)
	assert.Equal(t, DefaultTileSize, h.TileSize)
	// ~500 m pixels at this latitude
	assert.InDelta(t, 200, h.Width, 10)

	x, y := stationPixel(t, h)
	pt, err := p.FindPolarPoint(x, y)
	require.NoError(t, err)
	assert.LessOrEqual(t, pt.Range, uint16(1))

	north, err := p.FindPolarPoint(x, 0)
	require.NoError(t, err)
	assert.True(t, north.Azimuth < 20 || north.Azimuth > 3580, "azimuth %d", north.Azimuth)

	path := filepath.Join(t.TempDir(), "merc.proj")
	require.NoError(t, p.WriteFile(path))
	r, err := Open(path)
	require.NoError(t, err)
	defer r.Close()
	assert.Equal(t, 8, r.Header().Zoom)
	assert.Equal(t, DefaultTileSize, r.Header().TileSize)
}

func TestMercatorZoomClamp(t *testing.T) {
	p, err := BuildMercator(small, MercatorParams{Zoom: 0})
	require.NoError(t, err)
	assert.Equal(t, MinZoom, p.Header().Zoom)

	assert.Equal(t, MaxZoom, ClampZoom(30))
	assert.Equal(t, 9, ClampZoom(9))
}

func TestMercatorTileSize(t *testing.T) {
	p, err := BuildMercator(small, MercatorParams{Zoom: 4}, WithTileSize(512))
	require.NoError(t, err)
	assert.Equal(t, 512, p.Header().TileSize)
}

func TestMercatorGridRoundTrip(t *testing.T) {
	g := mercatorGrid{size: 256 * 1024}
	for _, pt := range []geodesy.Point{{Lat: 35.333, Lon: -97.278}, {Lat: -60, Lon: 170}, {Lat: 0, Lon: 0}} {
		x, y := g.forward(pt)
		back := g.inverse(x, y)
		assert.InDelta(t, pt.Lat, back.Lat, 1e-9)
		assert.InDelta(t, pt.Lon, back.Lon, 1e-9)
	}
}

func TestBuildErrors(t *testing.T) {
	tests := []struct {
		name  string
		build func() error
	}{
		{"zero scale", func() error { _, err := BuildEquirect(small, EquirectParams{}); return err }},
		{"negative scale", func() error { _, err := BuildEquirect(small, EquirectParams{Scale: -1}); return err }},
		{"no rangebins", func() error {
			_, err := BuildEquirect(Site{Lat: 35, Lon: -97, RangebinMeters: 1000}, EquirectParams{Scale: 0.01})
			return err
		}},
		{"bad latitude", func() error {
			_, err := BuildEquirect(Site{Lat: 95, Lon: -97, Rangebins: 10, RangebinMeters: 1000}, EquirectParams{Scale: 0.01})
			return err
		}},
		{"too many pixels", func() error { _, err := BuildMercator(ktlx, MercatorParams{Zoom: 16}); return err }},
		{"crosses antimeridian", func() error {
			_, err := BuildEquirect(Site{Lat: 52, Lon: 179.95, Rangebins: 30, RangebinMeters: 1000}, EquirectParams{Scale: 0.01})
			return err
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.build(), ErrOutOfRange)
		})
	}
}

func TestBuildLogsWithClock(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	_, err := BuildEquirect(small, EquirectParams{Scale: 0.05}, WithLogger(logger), WithClock(clockwork.NewFakeClock()))
	require.NoError(t, err)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "built projection", entry["msg"])
	assert.Equal(t, "equirect", entry["kind"])
	assert.EqualValues(t, 0, entry["elapsed"])
}

func TestBuildProgress(t *testing.T) {
	var calls, last, total int
	p, err := BuildEquirect(small, EquirectParams{Scale: 0.02}, WithProgress(func(done, n int) {
		calls++
		last, total = done, n
	}))
	require.NoError(t, err)

	assert.Equal(t, p.Header().Height, calls)
	assert.Equal(t, total, last)
}

func TestFindPolarPointBounds(t *testing.T) {
	p, err := BuildEquirect(small, EquirectParams{Scale: 0.05})
	require.NoError(t, err)
	h := p.Header()

	for _, xy := range [][2]int{{-1, 0}, {0, -1}, {h.Width, 0}, {0, h.Height}} {
		_, err := p.FindPolarPoint(xy[0], xy[1])
		assert.ErrorIs(t, err, ErrNotFound)
	}

	path := filepath.Join(t.TempDir(), "small.proj")
	require.NoError(t, p.WriteFile(path))
	r, err := Open(path)
	require.NoError(t, err)

	_, err = r.FindPolarPoint(h.Width, 0)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, r.Close())
	require.NoError(t, r.Close())
	_, err = r.FindPolarPoint(0, 0)
	assert.ErrorIs(t, err, ErrClosed)
}

func TestPolarPointRecords(t *testing.T) {
	p, err := BuildEquirect(small, EquirectParams{Scale: 0.01})
	require.NoError(t, err)

	for _, pt := range p.points {
		assert.Less(t, pt.Azimuth, uint16(Azimuths))
	}
	assert.InDelta(t, 90.0, PolarPoint{Azimuth: 900}.Degrees(), 1e-9)
}

func TestOpenErrors(t *testing.T) {
	p, err := BuildEquirect(small, EquirectParams{Scale: 0.05})
	require.NoError(t, err)
	valid, err := p.MarshalBinary()
	require.NoError(t, err)

	tests := []struct {
		name   string
		mutate func([]byte) []byte
		want   error
	}{
		{"magic", func(b []byte) []byte { b[0] = 'X'; return b }, ErrMalformedHeader},
		{"version", func(b []byte) []byte { b[5] = 2; return b }, ErrUnsupportedEncoding},
		{"kind", func(b []byte) []byte { b[7] = 9; return b }, ErrUnsupportedEncoding},
		{"truncated records", func(b []byte) []byte { return b[:len(b)-RecordSize] }, ErrSizeMismatch},
		{"truncated header", func(b []byte) []byte { return b[:HeaderSize-1] }, ErrBounds},
	}

	dir := t.TempDir()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name+".proj")
			require.NoError(t, os.WriteFile(path, tt.mutate(append([]byte(nil), valid...)), 0o644))
			_, err := Open(path)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	_, err = Open(filepath.Join(dir, "missing.proj"))
	assert.ErrorIs(t, err, ErrResource)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestWriteFileReplaces(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "site.proj")
	require.NoError(t, os.WriteFile(path, []byte("stale"), 0o644))

	p, err := BuildEquirect(small, EquirectParams{Scale: 0.05})
	require.NoError(t, err)
	require.NoError(t, p.WriteFile(path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, p.Header().FileSize(), info.Size())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary file left behind")
}

func TestWriteFileMissingDir(t *testing.T) {
	p, err := BuildEquirect(small, EquirectParams{Scale: 0.05})
	require.NoError(t, err)
	err = p.WriteFile(filepath.Join(t.TempDir(), "nope", "site.proj"))
	assert.ErrorIs(t, err, ErrResource)
}

func TestReaderCloseDuringLookups(t *testing.T) {
	path := filepath.Join(t.TempDir(), "site.proj")
	p, err := BuildEquirect(small, EquirectParams{Scale: 0.05})
	require.NoError(t, err)
	require.NoError(t, p.WriteFile(path))

	r, err := Open(path)
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make(chan error, 4)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				if _, err := r.FindPolarPoint(1, 1); err != nil {
					errs <- err
					return
				}
			}
		}()
	}

	require.NoError(t, r.Close())
	wg.Wait()
	close(errs)
	for err := range errs {
		assert.ErrorIs(t, err, ErrClosed)
	}
}
