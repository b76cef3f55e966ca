package packet

import (
	"math"
	"math/bits"

	"github.com/arloliu/bitpack/bitstream"
	"github.com/arloliu/bitpack/errs"
	"github.com/arloliu/bitpack/format"
	"github.com/arloliu/bitpack/internal/options"
)

// DefaultMaxDepth disables the explicit nesting limit. Nesting is still
// bounded by the stream, since every operator level occupies at least 18 bits.
const DefaultMaxDepth = 0

// literalAccumulatorLimit is the largest accumulator value that can take
// another nibble without losing bits.
const literalAccumulatorLimit = math.MaxUint64 >> 4

// Decoder parses packets from a bit stream.
//
// A Decoder holds only its configuration and is safe for concurrent use.
type Decoder struct {
	strictPadding bool
	allowEmpty    bool
	maxDepth      int
}

// DecoderOption configures a Decoder.
type DecoderOption = options.Option[*Decoder]

// WithStrictPadding controls whether Decode requires every bit after the
// top-level packet to be zero. By default trailing bits are ignored.
func WithStrictPadding(strict bool) DecoderOption {
	return options.NoError(func(d *Decoder) {
		d.strictPadding = strict
	})
}

// WithEmptyOperators controls whether operator packets without sub-packets
// are accepted. They are accepted by default and rejected by the evaluator.
func WithEmptyOperators(allow bool) DecoderOption {
	return options.NoError(func(d *Decoder) {
		d.allowEmpty = allow
	})
}

// WithMaxDepth limits how deeply packets may nest; a lone literal has depth 1.
func WithMaxDepth(depth int) DecoderOption {
	return options.New(func(d *Decoder) error {
		if depth < 1 {
			return errs.NewMalformed(errs.ErrMaxDepthExceeded, -1, "max depth must be positive, got %d", depth)
		}
		d.maxDepth = depth

		return nil
	})
}

// NewDecoder creates a Decoder.
//
// Parameters:
//   - opts: Optional configuration (WithStrictPadding, WithEmptyOperators, WithMaxDepth)
//
// Returns:
//   - *Decoder: The configured decoder
//   - error: An error if an option is invalid
func NewDecoder(opts ...DecoderOption) (*Decoder, error) {
	d := &Decoder{
		strictPadding: false,
		allowEmpty:    true,
		maxDepth:      DefaultMaxDepth,
	}

	if err := options.Apply(d, opts...); err != nil {
		return nil, err
	}

	return d, nil
}

var defaultDecoder, _ = NewDecoder()

// Parse parses exactly one packet starting at bit start using the default
// decoder configuration.
//
// The returned packet's BitLength tells the caller how far to advance. Bits
// after the packet are not inspected.
func Parse(cur bitstream.Cursor, start int) (*Packet, error) {
	return defaultDecoder.Parse(cur, start)
}

// Decode parses the single top-level packet of a hex transmission using the
// default decoder configuration.
func Decode(hex string) (*Packet, error) {
	return defaultDecoder.Decode(hex)
}

// Decode parses the single top-level packet of a hex transmission.
//
// The packet must start at bit 0. Bits after it are ignored unless strict
// padding is enabled, in which case they must all be zero.
//
// Parameters:
//   - hex: The transmission, without surrounding whitespace
//
// Returns:
//   - *Packet: The top-level packet
//   - error: A *errs.MalformedInputError describing the first violation
func (d *Decoder) Decode(hex string) (*Packet, error) {
	cur, err := bitstream.NewCursor(hex)
	if err != nil {
		return nil, err
	}

	p, err := d.Parse(cur, 0)
	if err != nil {
		return nil, err
	}

	if d.strictPadding {
		if err := checkPadding(cur, p.End()); err != nil {
			return nil, err
		}
	}

	return p, nil
}

// Parse parses exactly one packet starting at bit start.
//
// No partial packet is ever returned: on error the result is nil and the
// error carries the bit offset at which parsing stopped.
func (d *Decoder) Parse(cur bitstream.Cursor, start int) (*Packet, error) {
	return d.parse(cur, start, 1)
}

func (d *Decoder) parse(cur bitstream.Cursor, start int, depth int) (*Packet, error) {
	if d.maxDepth > 0 && depth > d.maxDepth {
		return nil, errs.NewMalformed(errs.ErrMaxDepthExceeded, start, "limit %d", d.maxDepth)
	}

	header, err := cur.Bits(start, start+HeaderBits)
	if err != nil {
		return nil, err
	}

	p := &Packet{
		Version: uint8(header >> 3),          //nolint: gosec
		TypeID:  format.TypeID(header & 0x7), //nolint: gosec
		Offset:  start,
	}

	if p.TypeID.IsLiteral() {
		lit, end, err := parseLiteral(cur, start+HeaderBits)
		if err != nil {
			return nil, err
		}
		p.Payload = lit
		p.BitLength = end - start

		return p, nil
	}

	op, end, err := d.parseOperator(cur, start, depth)
	if err != nil {
		return nil, err
	}
	p.Payload = op
	p.BitLength = end - start

	return p, nil
}

// parseLiteral reads 5-bit groups from pos until a group with a clear
// continuation flag and returns the literal together with the end position.
func parseLiteral(cur bitstream.Cursor, pos int) (Literal, int, error) {
	var lit Literal

	for {
		group, err := cur.Bits(pos, pos+GroupBits)
		if err != nil {
			return Literal{}, 0, err
		}
		if lit.Value > literalAccumulatorLimit {
			return Literal{}, 0, errs.NewMalformed(errs.ErrLiteralOverflow, pos,
				"group %d does not fit", lit.Groups+1)
		}

		lit.Value = lit.Value<<4 | group&0xF
		lit.Groups++
		pos += GroupBits

		if group&0x10 == 0 {
			return lit, pos, nil
		}
	}
}

// parseOperator reads the length descriptor at start+6 and the sub-packets
// that follow it, returning the payload and the end position.
func (d *Decoder) parseOperator(cur bitstream.Cursor, start int, depth int) (Operator, int, error) {
	indicator, err := cur.BitAt(start + HeaderBits)
	if err != nil {
		return Operator{}, 0, err
	}

	lengthType := format.LengthType(indicator)
	fieldStart := start + HeaderBits + 1
	pos := start + lengthType.HeaderBits()

	length, err := cur.Bits(fieldStart, pos)
	if err != nil {
		return Operator{}, 0, err
	}

	op := Operator{LengthType: lengthType}

	switch lengthType {
	case format.LengthTotalBits:
		end := pos + int(length)
		for pos < end {
			child, err := d.parse(cur, pos, depth+1)
			if err != nil {
				return Operator{}, 0, err
			}
			if child.End() > end {
				return Operator{}, 0, errs.NewMalformed(errs.ErrMalformedLengthDescriptor, pos,
					"sub-packet ends at bit %d, descriptor at bit %d declares end at bit %d",
					child.End(), fieldStart, end)
			}
			op.Children = append(op.Children, child)
			pos = child.End()
		}
	default:
		op.Children = make([]*Packet, 0, length)
		for i := uint64(0); i < length; i++ {
			child, err := d.parse(cur, pos, depth+1)
			if err != nil {
				return Operator{}, 0, err
			}
			op.Children = append(op.Children, child)
			pos = child.End()
		}
	}

	if len(op.Children) == 0 && !d.allowEmpty {
		return Operator{}, 0, errs.NewMalformed(errs.ErrEmptyOperator, start,
			"%s descriptor declares no sub-packets", lengthType)
	}

	return op, pos, nil
}

// checkPadding verifies that every bit from packetEnd to the end of the stream is zero.
func checkPadding(cur bitstream.Cursor, packetEnd int) error {
	total := cur.TotalBits()
	for pos := packetEnd; pos < total; {
		end := pos + bitstream.MaxWindowBits
		if end > total {
			end = total
		}

		v, err := cur.Bits(pos, end)
		if err != nil {
			return err
		}
		if v != 0 {
			first := pos + bits.LeadingZeros64(v) - (bitstream.MaxWindowBits - (end - pos))

			return errs.NewMalformed(errs.ErrTrailingData, first,
				"packet ends at bit %d, stream has %d bits", packetEnd, total)
		}
		pos = end
	}

	return nil
}
