package nexrad

import (
	"bytes"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robert-malhotra/go-nexrad/internal/header"
)

// compressedBody is the bzip2 stream of a symbology block holding one
// layer with a 4-bin, 2-ray digital radial whose values are ray*16+bin.
const compressedBody = "425a6839314159265359f29d1981000018f800fc107800100010000010a00031000008d353d4d3232278389063c378668cc6680a8202efad345b3e7c5dc914e14243ca746604"

func TestOpenUncompressed(t *testing.T) {
	radial := digitalRadial(4, 2, func(r, b int) byte { return byte(r*16 + b) })
	data := buildMessage(testDescription(), symbologyBlock(layer(radial)), nil, nil)

	m := openBytes(t, data)

	assert.Equal(t, int16(19), m.Header().Code)
	assert.Equal(t, uint16(19), m.Description().ProductCode)
	assert.False(t, m.Compressed())
	assert.Equal(t, int64(len(data)-header.PrefixSize), m.BodySize())
	assert.True(t, m.HasSymbology())
	assert.False(t, m.HasGraphic())
	assert.False(t, m.HasTabular())

	lat, lon := m.Station()
	assert.InDelta(t, 35.333, lat, 1e-9)
	assert.InDelta(t, -97.278, lon, 1e-9)

	_, err := m.Graphic()
	assert.ErrorIs(t, err, ErrNoBlock)
}

func TestOpenCompressed(t *testing.T) {
	body, err := hex.DecodeString(compressedBody)
	require.NoError(t, err)

	radial := digitalRadial(4, 2, func(r, b int) byte { return byte(r*16 + b) })
	want := symbologyBlock(layer(radial))
	require.Len(t, want, 50)

	desc := testDescription()
	desc.ProductCode = 94
	desc.Params[7] = header.CompressionBzip2
	desc.Params[8] = 0
	desc.Params[9] = uint16(len(want))
	desc.SymbologyOffset = header.PrefixSize / 2

	m := openBytes(t, wrapMessage(desc, body))

	assert.True(t, m.Compressed())
	assert.Equal(t, int64(len(want)), m.BodySize())
	assert.Equal(t, want, m.owned)

	dec, err := NewRadialDecoder(firstPacket(t, m))
	require.NoError(t, err)
	ray, err := dec.ReadRay()
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 1, 2, 3}, ray.Values)
}

func TestOpenCompressedBodyTooLarge(t *testing.T) {
	body, err := hex.DecodeString(compressedBody)
	require.NoError(t, err)

	desc := testDescription()
	desc.ProductCode = 94
	desc.Params[7] = header.CompressionBzip2
	desc.Params[9] = 50
	desc.SymbologyOffset = header.PrefixSize / 2

	data := wrapMessage(desc, body)
	_, err = OpenReader(bytes.NewReader(data), int64(len(data)), WithMaxBodySize(32))
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestOpenUnknownCompression(t *testing.T) {
	desc := testDescription()
	desc.ProductCode = 94
	desc.Params[7] = 7
	data := wrapMessage(desc, make([]byte, 16))

	_, err := OpenReader(bytes.NewReader(data), int64(len(data)))
	assert.ErrorIs(t, err, ErrUnsupportedEncoding)
}

func TestOpenFramed(t *testing.T) {
	msg := buildMessage(testDescription(), symbologyBlock(layer(textPacket(1, []byte("HI")))), nil, nil)
	data := concat([]byte("\x01\r\r\n123 \r\r\nSDUS54 KOUN 011200\r\r\nN0RTLX\r\r\n"), msg, []byte("\r\r\n\x03"))

	m := openBytes(t, data)
	f := m.Framing()
	assert.Equal(t, "SDUS54 KOUN 011200", f.WMO)
	assert.Equal(t, "N0RTLX", f.AWIPS)
	assert.Equal(t, int64(4), f.Trailing)
	assert.True(t, m.HasSymbology())
}

func TestOpenErrors(t *testing.T) {
	valid := buildMessage(testDescription(), symbologyBlock(layer(textPacket(1, []byte("HI")))), nil, nil)

	tests := []struct {
		name   string
		mutate func([]byte) []byte
		want   error
	}{
		{"too small", func(b []byte) []byte { return b[:100] }, ErrSizeMismatch},
		{"length mismatch", func(b []byte) []byte { return append(b, 0, 0) }, ErrSizeMismatch},
		{"bad divider", func(b []byte) []byte { b[18] = 0; return b }, ErrMalformedHeader},
		{"too many blocks", func(b []byte) []byte { b[17] = 6; return b }, ErrOutOfRange},
		{"bad signature", func(b []byte) []byte { return concat([]byte("GARBAGE\r\r\n"), b) }, ErrMalformedHeader},
		{"block outside body", func(b []byte) []byte {
			// symbology offset halfwords
			copy(b[header.MessageHeaderSize+90:], []byte{0, 0, 0x10, 0})
			return b
		}, ErrBounds},
		{"bad block id", func(b []byte) []byte { b[header.PrefixSize+3] = 2; return b }, ErrMalformedHeader},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := tt.mutate(append([]byte(nil), valid...))
			_, err := OpenReader(bytes.NewReader(data), int64(len(data)))
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestOpenFile(t *testing.T) {
	radial := digitalRadial(4, 2, func(r, b int) byte { return byte(r*16 + b) })
	data := buildMessage(testDescription(), symbologyBlock(layer(radial)), nil, nil)

	path := filepath.Join(t.TempDir(), "KTLX_N0R.nids")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	m, err := Open(path)
	require.NoError(t, err)
	assert.True(t, m.HasSymbology())

	dec, err := NewRadialDecoder(firstPacket(t, m))
	require.NoError(t, err)
	assert.Equal(t, 2, dec.RaysLeft())

	require.NoError(t, m.Close())
	require.NoError(t, m.Close())

	_, err = m.Symbology()
	assert.ErrorIs(t, err, ErrClosed)
}

func TestOpenMissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing"))
	assert.ErrorIs(t, err, ErrResource)
}

func TestTabularPages(t *testing.T) {
	tab := tabularBlock(
		[]string{"  STORM ID  ", "  AZ/RAN    "},
		[]string{"PAGE TWO"},
	)
	m := openBytes(t, buildMessage(testDescription(), nil, nil, tab))
	require.True(t, m.HasTabular())

	pages, err := m.TabularPages()
	require.NoError(t, err)
	require.Len(t, pages, 2)
	assert.Equal(t, []string{"  STORM ID  ", "  AZ/RAN    "}, pages[0])
	assert.Equal(t, []string{"PAGE TWO"}, pages[1])
}

func TestTabularPagesAbsent(t *testing.T) {
	m := openBytes(t, buildMessage(testDescription(), symbologyBlock(), nil, nil))
	_, err := m.TabularPages()
	assert.ErrorIs(t, err, ErrNoBlock)
}
