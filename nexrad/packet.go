package nexrad

import (
	"github.com/robert-malhotra/go-nexrad/internal/binary"
	"github.com/robert-malhotra/go-nexrad/internal/packet"
)

// PacketCode identifies a symbology packet type.
type PacketCode = packet.Code

// Packet codes understood by the decoders.
const (
	PacketDigitalRadial = packet.CodeDigitalRadial
	PacketRLERadial     = packet.CodeRLERadial
	PacketRaster        = packet.CodeRasterBA0F
	PacketRasterOld     = packet.CodeRasterBA07
)

// Packet is one packet inside a layer or page.
type Packet struct {
	Code PacketCode

	// Offset is the packet's position within the message body.
	Offset int64

	// Size is the packet's encoded size, header included.
	Size int64

	r *binary.Reader
}

// Bytes returns a copy of the packet's encoded bytes.
func (p *Packet) Bytes() ([]byte, error) {
	return p.r.At(p.Offset).ReadBytes(int(p.Size))
}

// IsRadial reports whether the packet is a radial packet.
func (p *Packet) IsRadial() bool {
	return p.Code.IsRadial()
}

// IsRaster reports whether the packet is a raster packet.
func (p *Packet) IsRaster() bool {
	return p.Code.IsRaster()
}
