// Package expr reads and writes packet trees in a compact S-expression
// notation:
//
//	expr    := literal | "(" op [":bits"] ["@" version] expr* ")"
//	literal := uint ["@" version]
//	op      := sum | product | min | max | gt | lt | eq
//
// For example, "(eq:bits@4 (sum@2 1@2 3@4) (product@6 2 2@2))". Versions
// default to 0. Operators use the sub-packet count descriptor unless marked
// ":bits", which selects the total-bits descriptor.
package expr

import (
	"fmt"
	"strconv"

	"github.com/arloliu/bitpack/errs"
	"github.com/arloliu/bitpack/format"
	"github.com/arloliu/bitpack/packet"
)

// Parse builds a packet tree from its notation.
//
// The returned tree is laid out at offset 0, so Offset and BitLength match
// the values a parser would produce for packet.Marshal of the same tree.
//
// Parameters:
//   - s: The expression
//
// Returns:
//   - *packet.Packet: The packet tree
//   - error: An error matching errs.ErrInvalidExpression
func Parse(s string) (*packet.Packet, error) {
	ast, err := exprParser.ParseString("", s)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrInvalidExpression, err)
	}

	p, err := build(ast)
	if err != nil {
		return nil, err
	}

	return p.Relocate(0), nil
}

// MustParse is like Parse but panics on error. It is intended for tests and
// fixed expressions.
func MustParse(s string) *packet.Packet {
	p, err := Parse(s)
	if err != nil {
		panic(err)
	}

	return p
}

// Format renders p in expression notation.
//
// Literals are rendered by value, so a literal encoded with extra leading
// zero groups formats the same as its minimal encoding.
func Format(p *packet.Packet) string {
	return p.String()
}

func build(n *node) (*packet.Packet, error) {
	if n.Literal != nil {
		return buildLiteral(n.Literal)
	}

	return buildOperator(n.Operator)
}

func buildLiteral(n *literalNode) (*packet.Packet, error) {
	value, err := strconv.ParseUint(n.Value, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: literal %s does not fit 64 bits", errs.ErrInvalidExpression, n.Pos, n.Value)
	}

	version, err := parseVersion(n.Version, n.Pos.String())
	if err != nil {
		return nil, err
	}

	return packet.NewLiteral(version, value)
}

func buildOperator(n *operatorNode) (*packet.Packet, error) {
	typeID, ok := format.ParseTypeID(n.Name)
	if !ok || typeID.IsLiteral() {
		return nil, fmt.Errorf("%w: %s: unknown operator %q", errs.ErrInvalidExpression, n.Pos, n.Name)
	}

	version, err := parseVersion(n.Version, n.Pos.String())
	if err != nil {
		return nil, err
	}

	lengthType := format.LengthSubPacketCount
	if n.Bits {
		lengthType = format.LengthTotalBits
	}

	children := make([]*packet.Packet, 0, len(n.Children))
	for _, c := range n.Children {
		child, err := build(c)
		if err != nil {
			return nil, err
		}
		children = append(children, child)
	}

	p, err := packet.NewOperator(version, typeID, lengthType, children...)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", errs.ErrInvalidExpression, n.Pos, err)
	}

	return p, nil
}

func parseVersion(s string, pos string) (uint8, error) {
	if s == "" {
		return 0, nil
	}

	v, err := strconv.ParseUint(s, 10, 8)
	if err != nil || v > packet.MaxVersion {
		return 0, fmt.Errorf("%w: %s: version %s exceeds %d", errs.ErrInvalidExpression, pos, s, packet.MaxVersion)
	}

	return uint8(v), nil
}
