// Package packet decodes and encodes the hierarchical packet format carried
// by hex transmissions.
//
// # Wire Format
//
// Every packet starts with a 6-bit header:
//
//	VVV TTT
//
// where V is the version and T the type id. Type 4 is a literal: a sequence
// of 5-bit groups, each a continuation flag followed by a nibble of the value.
// Every other type is an operator whose header is followed by a length
// descriptor and its sub-packets:
//
//	I=0  LLLLLLLLLLLLLLL  sub-packets totalling L bits
//	I=1  NNNNNNNNNNN      exactly N sub-packets
//
// # Decoding
//
//	p, err := packet.Decode("38006F45291200")
//	if err != nil {
//	    var mErr *errs.MalformedInputError
//	    if errors.As(err, &mErr) {
//	        log.Printf("bad transmission at bit %d", mErr.Offset)
//	    }
//	    return err
//	}
//	fmt.Println(p) // (lt:bits@1 10@6 20@2)
//
// Decoder exposes the parse policies: trailing-bit checking, acceptance of
// operators without sub-packets, and a nesting limit.
//
// # Encoding
//
// Marshal writes a tree back to hex. Trees built by NewLiteral and
// NewOperator, or decoded from a transmission, round-trip exactly.
package packet
