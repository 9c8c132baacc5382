package nexrad

import (
	"errors"
)

// SkipBlock can be returned by a WalkFunc to skip the remaining packets of
// the current layer or page.
var SkipBlock = errors.New("skip this block")

// WalkFunc is called for every packet visited by WalkPackets. Layer or page
// is the 1-based index of the packet's parent.
type WalkFunc func(parent Kind, index int, p *Packet) error

// WalkPackets visits every packet of the symbology block's layers and then
// of the graphic block's pages. A malformed layer, page or packet ends the
// walk of its block. Absent blocks are skipped.
//
// Example:
//
//	WalkPackets(msg, func(parent Kind, index int, p *Packet) error {
//	    if !p.IsRadial() {
//	        return nil
//	    }
//	    dec, err := NewRadialDecoder(p)
//	    if err != nil {
//	        return err
//	    }
//	    fmt.Println("layer", index, "rays", dec.RaysLeft())
//	    return SkipBlock
//	})
func WalkPackets(m *Message, fn WalkFunc) error {
	for _, kind := range []Kind{KindSymbology, KindGraphic} {
		block, err := m.block(kind)
		if errors.Is(err, ErrNoBlock) {
			continue
		}
		if err != nil {
			return err
		}

		err = walkBlock(block, fn)
		block.Close()
		if err != nil {
			return err
		}
	}
	return nil
}

func walkBlock(block *Cursor, fn WalkFunc) error {
	childKind := block.info.child
	for index := 1; ; index++ {
		child, ok := block.ReadChild(childKind)
		if !ok {
			return nil
		}

		err := walkPackets(child, childKind, index, fn)
		child.Close()
		if err != nil {
			return err
		}
	}
}

func walkPackets(c *Cursor, parent Kind, index int, fn WalkFunc) error {
	for {
		p, ok := c.ReadPacket()
		if !ok {
			return nil
		}
		if err := fn(parent, index, p); err != nil {
			if errors.Is(err, SkipBlock) {
				return nil
			}
			return err
		}
	}
}
