// Package packet decodes the wire structures of NEXRAD symbology packets.
//
// Every packet starts with a 16-bit packet code. Most packets follow it with
// a 16-bit payload length; the generic-format packets (28, 29) carry a 32-bit
// length after a reserved halfword. Radial and raster packets carry no length
// at all, so their size is found by walking their rays or lines ([Size]).
//
// # Radial Packets
//
// Two encodings share a 14-byte header ([RadialHeader]):
//
//   - RLE (0xAF1F): each ray holds halfwords of packed runs. A run byte is
//     the run length in the high nibble and the color level in the low
//     nibble ([Run]); a level expands to level*16.
//   - Digital (16): each ray holds one byte per rangebin, padded to an even
//     byte count.
//
// Each encoding has validity gates on first bin, bin count, scale and ray
// count, enforced by [ReadRadialHeader] before any ray is touched.
//
// # Raster Packets
//
// Raster packets (0xBA0F, 0xBA07) carry a 22-byte header ([RasterHeader])
// with two fixed flag words, followed by lines of run bytes prefixed by a
// byte count.
package packet
