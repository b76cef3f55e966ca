package packet

import (
	"fmt"

	"github.com/arloliu/bitpack/bitstream"
	"github.com/arloliu/bitpack/errs"
	"github.com/arloliu/bitpack/format"
)

// Marshal encodes p as a hex transmission, zero-padded to a whole hex digit.
//
// Literals are written with the number of groups recorded in their payload,
// or the minimal number when the recorded count cannot hold the value.
// Operators keep their recorded length descriptor, so decoding the result
// yields a tree Equal to p.
//
// Parameters:
//   - p: The packet tree to encode
//
// Returns:
//   - string: Upper-case hex transmission
//   - error: errs.ErrPayloadMismatch or errs.ErrDescriptorOverflow for trees
//     that cannot be represented on the wire
func Marshal(p *Packet) (string, error) {
	w := bitstream.NewWriter()
	defer w.Finish()

	if err := AppendBits(w, p); err != nil {
		return "", err
	}

	return w.Hex(), nil
}

// AppendBits writes the encoding of p to w.
//
// The whole tree is validated before the first bit is written, so on error w
// is left unchanged.
func AppendBits(w *bitstream.Writer, p *Packet) error {
	sizes := make(map[*Packet]int)
	if _, err := measure(p, sizes); err != nil {
		return err
	}
	write(w, p, sizes)

	return nil
}

// measure validates p and its descendants and records the number of bits
// each one encodes to.
func measure(p *Packet, sizes map[*Packet]int) (int, error) {
	if p.Version > MaxVersion || p.TypeID > format.MaxTypeID {
		return 0, fmt.Errorf("%w: version %d, type %d", errs.ErrPayloadMismatch, p.Version, p.TypeID)
	}

	var n int
	switch pl := p.Payload.(type) {
	case Literal:
		if !p.TypeID.IsLiteral() {
			return 0, fmt.Errorf("%w: type %s with literal payload", errs.ErrPayloadMismatch, p.TypeID)
		}
		n = HeaderBits + literalGroups(pl)*GroupBits
	case Operator:
		if p.TypeID.IsLiteral() {
			return 0, fmt.Errorf("%w: literal type with sub-packets", errs.ErrMissingLiteralValue)
		}

		childBits := 0
		for _, child := range pl.Children {
			size, err := measure(child, sizes)
			if err != nil {
				return 0, err
			}
			childBits += size
		}
		if err := checkDescriptor(pl.LengthType, len(pl.Children), childBits); err != nil {
			return 0, err
		}
		n = pl.LengthType.HeaderBits() + childBits
	default:
		return 0, fmt.Errorf("%w: packet at bit %d has no payload", errs.ErrPayloadMismatch, p.Offset)
	}

	sizes[p] = n

	return n, nil
}

func literalGroups(lit Literal) int {
	groups := MinGroups(lit.Value)
	if lit.Groups > groups {
		groups = lit.Groups
	}

	return groups
}

// write emits a tree already validated by measure.
func write(w *bitstream.Writer, p *Packet, sizes map[*Packet]int) {
	w.WriteBits(uint64(p.Version), 3)
	w.WriteBits(uint64(p.TypeID), 3)

	switch pl := p.Payload.(type) {
	case Literal:
		writeLiteral(w, pl)
	case Operator:
		w.WriteBit(uint64(pl.LengthType))
		if pl.LengthType == format.LengthTotalBits {
			w.WriteBits(uint64(sizes[p]-pl.LengthType.HeaderBits()), pl.LengthType.FieldBits()) //nolint: gosec
		} else {
			w.WriteBits(uint64(len(pl.Children)), pl.LengthType.FieldBits())
		}
		for _, child := range pl.Children {
			write(w, child, sizes)
		}
	}
}

func writeLiteral(w *bitstream.Writer, lit Literal) {
	groups := literalGroups(lit)
	for i := groups - 1; i >= 0; i-- {
		var cont uint64
		if i > 0 {
			cont = 1
		}

		var nibble uint64
		if i < 16 {
			nibble = lit.Value >> (4 * i) & 0xF
		}
		w.WriteBits(cont<<4|nibble, GroupBits)
	}
}
