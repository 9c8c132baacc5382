package nexrad

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robert-malhotra/go-nexrad/internal/binary"
	"github.com/robert-malhotra/go-nexrad/internal/header"
	"github.com/robert-malhotra/go-nexrad/internal/packet"
)

// enc builds big-endian test fixtures.
type enc struct {
	buf *binary.Buffer
	w   *binary.Writer
}

func newEnc() *enc {
	buf := binary.NewBuffer(0)
	return &enc{buf: buf, w: binary.NewWriter(buf)}
}

func (e *enc) put(fields ...any) *enc {
	if err := e.w.WriteFields(fields...); err != nil {
		panic(err)
	}
	return e
}

func (e *enc) bytes() []byte {
	return e.buf.Bytes()
}

func concat(parts ...[]byte) []byte {
	return bytes.Join(parts, nil)
}

// digitalRadial builds a digital radial packet whose rays each span one
// degree starting at ray*10 tenths.
func digitalRadial(bins, rays int, value func(ray, bin int) byte) []byte {
	e := newEnc()
	h := packet.RadialHeader{Code: packet.CodeDigitalRadial, BinCount: uint16(bins), Scale: 250, RayCount: uint16(rays)}
	if err := h.Write(e.w); err != nil {
		panic(err)
	}
	for r := 0; r < rays; r++ {
		data := make([]byte, bins)
		for b := range data {
			data[b] = value(r, b)
		}
		if bins%2 == 1 {
			data = append(data, 0)
		}
		e.put(uint16(bins), int16(r*10), int16(10), data)
	}
	return e.bytes()
}

type testRay struct {
	start, delta int16
	runs         []byte
}

// rleRadial builds an RLE radial packet. Odd run counts are padded to a
// whole halfword with a zero-length run.
func rleRadial(bins int, rays ...testRay) []byte {
	e := newEnc()
	h := packet.RadialHeader{Code: packet.CodeRLERadial, BinCount: uint16(bins), Scale: 1000, RayCount: uint16(len(rays))}
	if err := h.Write(e.w); err != nil {
		panic(err)
	}
	for _, ray := range rays {
		runs := ray.runs
		if len(runs)%2 == 1 {
			runs = append(append([]byte(nil), runs...), 0)
		}
		e.put(uint16(len(runs)/2), ray.start, ray.delta, runs)
	}
	return e.bytes()
}

func rasterHeader(code packet.Code, lines int) packet.RasterHeader {
	return packet.RasterHeader{
		Code:      code,
		Flag1:     packet.RasterFlag1,
		Flag2:     packet.RasterFlag2,
		I:         -2048,
		J:         2047,
		XScale:    1,
		YScale:    1,
		LineCount: uint16(lines),
		Packing:   2,
	}
}

func rasterPacket(h packet.RasterHeader, lines ...[]byte) []byte {
	e := newEnc()
	if err := h.Write(e.w); err != nil {
		panic(err)
	}
	for _, line := range lines {
		e.put(uint16(len(line)), line)
		if len(line)%2 == 1 {
			e.put(uint8(0))
		}
	}
	return e.bytes()
}

// textPacket builds a packet framed by a 16-bit length.
func textPacket(code packet.Code, payload []byte) []byte {
	return newEnc().put(uint16(code), uint16(len(payload)), payload).bytes()
}

func layer(packets ...[]byte) []byte {
	payload := concat(packets...)
	return newEnc().put(header.Divider, uint32(len(payload)), payload).bytes()
}

func symbologyBlock(layers ...[]byte) []byte {
	payload := concat(layers...)
	return newEnc().put(header.Divider, int16(1), uint32(10+len(payload)), uint16(len(layers)), payload).bytes()
}

func page(number int, packets ...[]byte) []byte {
	payload := concat(packets...)
	return newEnc().put(uint16(number), uint16(len(payload)), payload).bytes()
}

func graphicBlock(pages ...[]byte) []byte {
	payload := concat(pages...)
	return newEnc().put(header.Divider, int16(2), uint32(10+len(payload)), uint16(len(pages)), payload).bytes()
}

func tabularBlock(pages ...[]string) []byte {
	e := newEnc()
	mh := header.MessageHeader{Code: 62, Blocks: 3}
	desc := header.ProductDescription{Divider: header.Divider, ProductCode: 62}
	if err := mh.Write(e.w); err != nil {
		panic(err)
	}
	if err := desc.Write(e.w); err != nil {
		panic(err)
	}
	e.put(header.Divider, uint16(len(pages)))
	for _, lines := range pages {
		for _, line := range lines {
			e.put(uint16(len(line)), []byte(line))
		}
		e.put(header.Divider)
	}
	payload := e.bytes()
	return newEnc().put(header.Divider, int16(3), uint32(8+len(payload)), payload).bytes()
}

// testDescription returns a description for an uncompressed base
// reflectivity style product at KTLX.
func testDescription() header.ProductDescription {
	return header.ProductDescription{
		Divider:     header.Divider,
		Latitude:    35333,
		Longitude:   -97278,
		Height:      1277,
		ProductCode: 19,
		Mode:        2,
		VCP:         212,
	}
}

// buildMessage lays out the given blocks back to back in the body and
// points the description's offsets at them. Nil blocks are absent.
func buildMessage(desc header.ProductDescription, symbology, graphic, tabular []byte) []byte {
	var body []byte
	place := func(block []byte) uint32 {
		if block == nil {
			return 0
		}
		off := header.PrefixSize + len(body)
		body = append(body, block...)
		if len(body)%2 == 1 {
			body = append(body, 0)
		}
		return uint32(off / 2)
	}

	desc.SymbologyOffset = place(symbology)
	desc.GraphicOffset = place(graphic)
	desc.TabularOffset = place(tabular)
	return wrapMessage(desc, body)
}

func wrapMessage(desc header.ProductDescription, body []byte) []byte {
	e := newEnc()
	mh := header.MessageHeader{
		Code:   int16(desc.ProductCode),
		Date:   20000,
		Time:   43200,
		Length: uint32(header.PrefixSize + len(body)),
		Source: 1,
		Blocks: 3,
	}
	if err := mh.Write(e.w); err != nil {
		panic(err)
	}
	if err := desc.Write(e.w); err != nil {
		panic(err)
	}
	e.put(body)
	return e.bytes()
}

func openBytes(t *testing.T, data []byte, opts ...Option) *Message {
	t.Helper()
	m, err := OpenReader(bytes.NewReader(data), int64(len(data)), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { m.Close() })
	return m
}

// firstPacket returns the first packet of the first symbology layer.
func firstPacket(t *testing.T, m *Message) *Packet {
	t.Helper()
	block, err := m.Symbology()
	require.NoError(t, err)
	l, ok := block.ReadChild(KindLayer)
	require.True(t, ok)
	p, ok := l.ReadPacket()
	require.True(t, ok)
	return p
}

// packetOnly wraps one packet in a minimal message.
func packetOnly(t *testing.T, p []byte) *Packet {
	t.Helper()
	m := openBytes(t, buildMessage(testDescription(), symbologyBlock(layer(p)), nil, nil))
	return firstPacket(t, m)
}

// rawPacket exposes encoded packet bytes without going through the chunk
// engine, for headers the engine would refuse to size.
func rawPacket(b []byte) *Packet {
	r := binary.NewReader(bytes.NewReader(b), int64(len(b)))
	return &Packet{Code: packet.Code(binary.Order.Uint16(b)), Size: int64(len(b)), r: r}
}
