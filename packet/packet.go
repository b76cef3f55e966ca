package packet

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/arloliu/bitpack/errs"
	"github.com/arloliu/bitpack/format"
	"github.com/arloliu/bitpack/internal/hash"
)

// Wire layout constants.
const (
	// HeaderBits is the size of the version and type id fields.
	HeaderBits = 6
	// GroupBits is the size of one literal group: a continuation flag and a nibble.
	GroupBits = 5
	// MinBitLength is the smallest possible packet: a header and one literal group.
	MinBitLength = HeaderBits + GroupBits
	// MaxVersion is the largest version a 3-bit field can carry.
	MaxVersion = 7
)

// Packet is one node of a decoded transmission.
//
// Packets are built once, by the parser or by the constructors in this
// package, and are never mutated afterwards. Each operator exclusively owns
// its children; trees never share sub-trees.
type Packet struct {
	// Version is the 3-bit packet version.
	Version uint8
	// TypeID is the 3-bit packet type.
	TypeID format.TypeID
	// Payload is either Literal or Operator.
	Payload Payload
	// Offset is the bit position of the packet's first header bit.
	Offset int
	// BitLength is the number of bits the packet occupies, including its
	// header, length descriptor and payload.
	BitLength int
}

// Payload is the body of a packet: Literal or Operator.
type Payload interface {
	isPayload()
}

// Literal is the payload of a type 4 packet.
type Literal struct {
	// Value is the accumulated integer.
	Value uint64
	// Groups is the number of 5-bit groups the value was encoded in.
	Groups int
}

// Operator is the payload of every non-literal packet.
type Operator struct {
	// LengthType records which length descriptor the packet was encoded with.
	LengthType format.LengthType
	// Children are the sub-packets in stream order.
	Children []*Packet
}

func (Literal) isPayload()  {}
func (Operator) isPayload() {}

// NewLiteral creates a literal packet encoded with the minimal number of groups.
//
// Parameters:
//   - version: Packet version (0-7)
//   - value: Literal value
//
// Returns:
//   - *Packet: The literal packet, laid out at offset 0
//   - error: errs.ErrPayloadMismatch if version does not fit 3 bits
func NewLiteral(version uint8, value uint64) (*Packet, error) {
	if version > MaxVersion {
		return nil, fmt.Errorf("%w: version %d exceeds %d", errs.ErrPayloadMismatch, version, MaxVersion)
	}

	groups := MinGroups(value)

	return &Packet{
		Version:   version,
		TypeID:    format.TypeLiteral,
		Payload:   Literal{Value: value, Groups: groups},
		BitLength: HeaderBits + groups*GroupBits,
	}, nil
}

// NewOperator creates an operator packet over children.
//
// The children keep the offsets they were built with; use Relocate on the
// finished tree to assign stream positions.
//
// Parameters:
//   - version: Packet version (0-7)
//   - typeID: Any type id except format.TypeLiteral
//   - lengthType: Length descriptor to record for encoding
//   - children: Sub-packets in order
//
// Returns:
//   - *Packet: The operator packet
//   - error: errs.ErrPayloadMismatch for an invalid version or type id,
//     errs.ErrDescriptorOverflow if the descriptor cannot hold the children
func NewOperator(version uint8, typeID format.TypeID, lengthType format.LengthType, children ...*Packet) (*Packet, error) {
	if version > MaxVersion {
		return nil, fmt.Errorf("%w: version %d exceeds %d", errs.ErrPayloadMismatch, version, MaxVersion)
	}
	if typeID.IsLiteral() || typeID > format.MaxTypeID {
		return nil, fmt.Errorf("%w: type %d cannot carry sub-packets", errs.ErrPayloadMismatch, typeID)
	}

	childBits := 0
	for _, child := range children {
		childBits += child.BitLength
	}

	if err := checkDescriptor(lengthType, len(children), childBits); err != nil {
		return nil, err
	}

	return &Packet{
		Version:   version,
		TypeID:    typeID,
		Payload:   Operator{LengthType: lengthType, Children: children},
		BitLength: lengthType.HeaderBits() + childBits,
	}, nil
}

func checkDescriptor(lengthType format.LengthType, count int, childBits int) error {
	limit := 1 << lengthType.FieldBits()

	switch lengthType {
	case format.LengthTotalBits:
		if childBits >= limit {
			return fmt.Errorf("%w: %d sub-packet bits, limit %d", errs.ErrDescriptorOverflow, childBits, limit-1)
		}
	case format.LengthSubPacketCount:
		if count >= limit {
			return fmt.Errorf("%w: %d sub-packets, limit %d", errs.ErrDescriptorOverflow, count, limit-1)
		}
	default:
		return fmt.Errorf("%w: unknown length type %d", errs.ErrPayloadMismatch, lengthType)
	}

	return nil
}

// MinGroups returns the number of 5-bit groups needed to encode value.
func MinGroups(value uint64) int {
	groups := 1
	for value >>= 4; value != 0; value >>= 4 {
		groups++
	}

	return groups
}

// IsLiteral reports whether the packet carries a literal payload.
func (p *Packet) IsLiteral() bool {
	_, ok := p.Payload.(Literal)
	return ok
}

// Value returns the literal value and true for literal packets.
func (p *Packet) Value() (uint64, bool) {
	lit, ok := p.Payload.(Literal)
	return lit.Value, ok
}

// Children returns the sub-packets of an operator, or nil for a literal.
// The returned slice must not be modified.
func (p *Packet) Children() []*Packet {
	if op, ok := p.Payload.(Operator); ok {
		return op.Children
	}

	return nil
}

// End returns the bit position just past the packet.
func (p *Packet) End() int {
	return p.Offset + p.BitLength
}

// Walk visits p and its descendants in pre-order.
//
// fn receives each packet with its depth (0 for p). Returning false skips the
// children of that packet.
func (p *Packet) Walk(fn func(p *Packet, depth int) bool) {
	p.walk(fn, 0)
}

func (p *Packet) walk(fn func(*Packet, int) bool, depth int) {
	if !fn(p, depth) {
		return
	}
	for _, child := range p.Children() {
		child.walk(fn, depth+1)
	}
}

// Count returns the number of packets in the tree rooted at p.
func (p *Packet) Count() int {
	n := 0
	p.Walk(func(*Packet, int) bool {
		n++
		return true
	})

	return n
}

// Depth returns the height of the tree rooted at p; a lone literal has depth 1.
func (p *Packet) Depth() int {
	depth := 0
	p.Walk(func(_ *Packet, d int) bool {
		if d+1 > depth {
			depth = d + 1
		}

		return true
	})

	return depth
}

// Equal reports whether p and other have the same structure and numeric
// content. Offsets are ignored, so a sub-tree equals its own re-parse at any
// position.
func (p *Packet) Equal(other *Packet) bool {
	if p == nil || other == nil {
		return p == other
	}
	if p.Version != other.Version || p.TypeID != other.TypeID || p.BitLength != other.BitLength {
		return false
	}

	switch pl := p.Payload.(type) {
	case Literal:
		ol, ok := other.Payload.(Literal)
		return ok && pl == ol
	case Operator:
		oo, ok := other.Payload.(Operator)
		if !ok || pl.LengthType != oo.LengthType || len(pl.Children) != len(oo.Children) {
			return false
		}
		for i := range pl.Children {
			if !pl.Children[i].Equal(oo.Children[i]) {
				return false
			}
		}

		return true
	default:
		return other.Payload == nil
	}
}

// Fingerprint returns an xxHash64 of the tree's structure and values.
//
// Two trees with equal Fingerprints are, with overwhelming probability,
// Equal. Offsets do not contribute.
func (p *Packet) Fingerprint() uint64 {
	d := hash.NewDigest()
	p.Walk(func(q *Packet, _ int) bool {
		d.WriteUint8(q.Version)
		d.WriteUint8(uint8(q.TypeID))
		d.WriteUint64(uint64(q.BitLength)) //nolint: gosec
		switch pl := q.Payload.(type) {
		case Literal:
			d.WriteUint8(0)
			d.WriteUint64(pl.Value)
		case Operator:
			d.WriteUint8(1)
			d.WriteUint8(uint8(pl.LengthType))
			d.WriteUint64(uint64(len(pl.Children)))
		}

		return true
	})

	return d.Sum64()
}

// Relocate returns a deep copy of the tree laid out from offset, with every
// descendant's Offset matching its position in an encoding of the tree.
func (p *Packet) Relocate(offset int) *Packet {
	out := *p
	out.Offset = offset

	if op, ok := p.Payload.(Operator); ok {
		children := make([]*Packet, len(op.Children))
		pos := offset + op.LengthType.HeaderBits()
		for i, child := range op.Children {
			children[i] = child.Relocate(pos)
			pos += child.BitLength
		}
		out.Payload = Operator{LengthType: op.LengthType, Children: children}
	}

	return &out
}

// String renders the packet in expression notation, for example
//
//	(sum@1 1 (product:bits 2 3@4))
//
// Versions are written as an "@" suffix when non-zero, and operators encoded
// with the total-bits descriptor carry a ":bits" marker.
func (p *Packet) String() string {
	var sb strings.Builder
	p.format(&sb)

	return sb.String()
}

func (p *Packet) format(sb *strings.Builder) {
	switch pl := p.Payload.(type) {
	case Literal:
		sb.WriteString(strconv.FormatUint(pl.Value, 10))
		writeVersion(sb, p.Version)
	case Operator:
		sb.WriteByte('(')
		sb.WriteString(p.TypeID.String())
		if pl.LengthType == format.LengthTotalBits {
			sb.WriteString(":bits")
		}
		writeVersion(sb, p.Version)
		for _, child := range pl.Children {
			sb.WriteByte(' ')
			child.format(sb)
		}
		sb.WriteByte(')')
	default:
		sb.WriteString("<nil>")
	}
}

func writeVersion(sb *strings.Builder, version uint8) {
	if version == 0 {
		return
	}
	sb.WriteByte('@')
	sb.WriteString(strconv.Itoa(int(version)))
}
