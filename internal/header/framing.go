package header

import (
	"bytes"
	"fmt"

	"github.com/robert-malhotra/go-nexrad/internal/binary"
	"github.com/robert-malhotra/go-nexrad/internal/errs"
)

const (
	// maxLineLen bounds the search for a "\r\r\n" terminated text line.
	maxLineLen = 40

	sbnPreambleLen = 11
)

var (
	lineEnd    = []byte("\r\r\n")
	sbnStart   = []byte("\x01\r\r\n")
	trailerSeq = []byte("\r\r\n\x03")
)

// Framing describes the text framing surrounding the binary message.
type Framing struct {
	// Leading is the number of bytes before the message header.
	Leading int64

	// Trailing is the number of bytes after the message.
	Trailing int64

	// WMO is the WMO abbreviated heading without line terminator, if present.
	WMO string

	// AWIPS is the AWIPS product identifier, if present.
	AWIPS string
}

// ReadFraming detects the optional SBN preamble, WMO heading, AWIPS
// identifier and trailer of a product file of the given size.
func ReadFraming(r *binary.Reader, size int64) (*Framing, error) {
	f := &Framing{}

	head, err := r.At(0).ReadBytes(int(min(size, 2*maxLineLen+sbnPreambleLen)))
	if err != nil {
		return nil, fmt.Errorf("reading leading framing: %w", err)
	}

	pos := 0
	if bytes.HasPrefix(head, sbnStart) {
		if len(head) < sbnPreambleLen || !isDigits(head[4:7]) || head[7] != ' ' || !bytes.Equal(head[8:11], lineEnd) {
			return nil, fmt.Errorf("%w: bad SBN preamble", errs.ErrMalformedHeader)
		}
		pos = sbnPreambleLen
	}

	if pos < len(head) && isUpper(head[pos]) {
		line, n, ok := readLine(head[pos:])
		if !ok || !validWMO(line) {
			return nil, fmt.Errorf("%w: bad WMO heading", errs.ErrMalformedHeader)
		}
		f.WMO = string(line)
		pos += n

		line, n, ok = readLine(head[pos:])
		line = bytes.TrimRight(line, " ")
		if !ok || len(line) < 4 || len(line) > 6 || !isAlnum(line) {
			return nil, fmt.Errorf("%w: bad AWIPS identifier", errs.ErrMalformedHeader)
		}
		f.AWIPS = string(line)
		pos += n
	}
	f.Leading = int64(pos)

	if size-f.Leading >= int64(len(trailerSeq)) {
		tail, err := r.At(size - int64(len(trailerSeq))).ReadBytes(len(trailerSeq))
		if err != nil {
			return nil, fmt.Errorf("reading trailer: %w", err)
		}
		if bytes.Equal(tail, trailerSeq) {
			f.Trailing = int64(len(trailerSeq))
		}
	}

	return f, nil
}

// readLine returns the text before the first "\r\r\n" and the number of
// bytes consumed including the terminator.
func readLine(b []byte) ([]byte, int, bool) {
	if len(b) > maxLineLen {
		b = b[:maxLineLen]
	}
	i := bytes.Index(b, lineEnd)
	if i < 0 {
		return nil, 0, false
	}
	return b[:i], i + len(lineEnd), true
}

// validWMO checks "TTAAii CCCC YYGGgg" with an optional " BBB" suffix.
func validWMO(line []byte) bool {
	fields := bytes.Fields(line)
	if len(fields) < 3 || len(fields) > 4 {
		return false
	}
	if len(fields[0]) != 6 || !isAlnum(fields[0]) {
		return false
	}
	if len(fields[1]) != 4 || !isAlnum(fields[1]) {
		return false
	}
	if len(fields[2]) != 6 || !isDigits(fields[2]) {
		return false
	}
	return len(fields) == 3 || (len(fields[3]) == 3 && isAlnum(fields[3]))
}

func isUpper(c byte) bool {
	return c >= 'A' && c <= 'Z'
}

func isDigits(b []byte) bool {
	for _, c := range b {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

func isAlnum(b []byte) bool {
	for _, c := range b {
		if !isUpper(c) && (c < '0' || c > '9') {
			return false
		}
	}
	return true
}
