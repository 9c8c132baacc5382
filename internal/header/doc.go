// Package header parses the fixed framing at the front of a NEXRAD Level III
// product file.
//
// # Leading framing
//
// Products distributed over NOAAPort and similar feeds may carry text
// framing ahead of the binary message:
//
//	\x01\r\r\n          SBN start-of-header
//	123 \r\r\n          SBN sequence number
//	SDUS54 KOUN 011200\r\r\n   WMO abbreviated heading
//	N0ROUN\r\r\n               AWIPS product identifier
//
// and a trailing "\r\r\n\x03". [ReadFraming] detects and measures both so the
// message proper can be located. A leading ASCII letter commits the parser to
// a WMO heading; a heading that does not parse is [errs.ErrMalformedHeader].
//
// # Message header and product description
//
// The binary message begins with the 18-byte [MessageHeader] followed by the
// 102-byte [ProductDescription]. The description carries the radar site,
// product code, and three halfword offsets locating the symbology, graphic,
// and tabular blocks relative to the start of the message header.
//
// # Key Types and Functions
//
//   - [Framing]: leading/trailing framing lengths
//   - [ReadFraming]: detect framing in a raw file
//   - [MessageHeader], [ReadMessageHeader]
//   - [ProductDescription], [ReadProductDescription]
package header
