package nexrad

import (
	"fmt"

	"github.com/robert-malhotra/go-nexrad/internal/header"
)

/*
Tabular Block Payload Layout:
Offset  Size  Description
0       18    Embedded message header
18      102   Embedded product description
120     2     Divider (-1)
122     2     Number of pages

Each page is a sequence of lines terminated by a -1 halfword:
0       2     Number of characters
2       var   Characters
*/

// maxTabularPages bounds the page count of a tabular block.
const maxTabularPages = 48

// TabularPages reads the tabular block's text as pages of lines.
func (m *Message) TabularPages() ([][]string, error) {
	c, err := m.Tabular()
	if err != nil {
		return nil, err
	}
	defer c.Close()

	r, err := c.payload()
	if err != nil {
		return nil, err
	}

	if err := r.Skip(header.PrefixSize); err != nil {
		return nil, fmt.Errorf("skipping embedded header: %w", err)
	}
	div, err := r.ReadInt16()
	if err != nil {
		return nil, fmt.Errorf("reading tabular divider: %w", err)
	}
	if div != header.Divider {
		return nil, fmt.Errorf("%w: tabular divider %d", ErrMalformedHeader, div)
	}
	count, err := r.ReadUint16()
	if err != nil {
		return nil, fmt.Errorf("reading tabular page count: %w", err)
	}
	if count > maxTabularPages {
		return nil, fmt.Errorf("%w: %d tabular pages, max %d", ErrOutOfRange, count, maxTabularPages)
	}

	pages := make([][]string, 0, count)
	for p := 0; p < int(count); p++ {
		var lines []string
		for {
			n, err := r.ReadInt16()
			if err != nil {
				return nil, fmt.Errorf("page %d: %w", p+1, err)
			}
			if n == header.Divider {
				break
			}
			if n < 0 {
				return nil, fmt.Errorf("%w: page %d line length %d", ErrMalformedHeader, p+1, n)
			}
			text, err := r.ReadBytes(int(n))
			if err != nil {
				return nil, fmt.Errorf("page %d: %w", p+1, err)
			}
			lines = append(lines, string(text))
		}
		pages = append(pages, lines)
	}

	m.logger.Debug("read tabular block", "pages", len(pages))
	return pages, nil
}
