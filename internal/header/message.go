package header

import (
	"fmt"

	"github.com/robert-malhotra/go-nexrad/internal/binary"
	"github.com/robert-malhotra/go-nexrad/internal/errs"
)

/*
Message Header Layout (18 bytes):
Offset  Size  Description
0       2     Message code (product code)
2       2     Date of message (days since 1970-01-01, day 1 = 1970-01-01)
4       4     Time of message (seconds after midnight UTC)
8       4     Length of message (bytes, from offset 0 to end of message)
12      2     Source ID
14      2     Destination ID
16      2     Number of blocks (including header and description)
*/

// MessageHeaderSize is the encoded size of a MessageHeader.
const MessageHeaderSize = 18

// MaxBlocks is the largest block count a message may declare.
const MaxBlocks = 5

// MessageHeader is the fixed header at the start of every product message.
type MessageHeader struct {
	Code   int16
	Date   uint16
	Time   uint32
	Length uint32
	Source uint16
	Dest   uint16
	Blocks uint16
}

// ReadMessageHeader parses a message header at the reader's position.
func ReadMessageHeader(r *binary.Reader) (*MessageHeader, error) {
	buf, err := r.ReadBytes(MessageHeaderSize)
	if err != nil {
		return nil, fmt.Errorf("reading message header: %w", err)
	}

	h := &MessageHeader{
		Code:   int16(binary.Order.Uint16(buf[0:])),
		Date:   binary.Order.Uint16(buf[2:]),
		Time:   binary.Order.Uint32(buf[4:]),
		Length: binary.Order.Uint32(buf[8:]),
		Source: binary.Order.Uint16(buf[12:]),
		Dest:   binary.Order.Uint16(buf[14:]),
		Blocks: binary.Order.Uint16(buf[16:]),
	}

	if h.Blocks > MaxBlocks {
		return nil, fmt.Errorf("%w: message declares %d blocks, max %d", errs.ErrOutOfRange, h.Blocks, MaxBlocks)
	}

	return h, nil
}

// Write encodes the header at the writer's position.
func (h *MessageHeader) Write(w *binary.Writer) error {
	return w.WriteFields(h.Code, h.Date, h.Time, h.Length, h.Source, h.Dest, h.Blocks)
}
