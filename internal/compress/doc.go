// Package compress decompresses NEXRAD product bodies.
//
// Compressible products (digital reflectivity, velocity, and most of the
// dual-polarization family) may carry their symbology, graphic and tabular
// blocks bzip2-compressed after the product description. The method code
// lives in halfword P8 of the description and the decompressed size in
// P9:P10.
//
// # Supported Methods
//
//   - None (0): body passes through unchanged
//   - Bzip2 (1): via [Bzip2], using the standard library's compress/bzip2
//
// Unknown method codes fail with [errs.ErrUnsupportedEncoding].
//
// # Size Ceiling
//
// [Decompress] refuses a declared output size above the caller's ceiling
// before allocating anything, and fails with [errs.ErrSizeMismatch] when the
// stream does not produce exactly the declared number of bytes.
package compress
