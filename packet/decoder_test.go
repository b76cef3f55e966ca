package packet

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/bitpack/bitstream"
	"github.com/arloliu/bitpack/errs"
	"github.com/arloliu/bitpack/format"
)

var transmissions = []string{
	"D2FE28",
	"38006F45291200",
	"EE00D40C823060",
	"8A004A801A8002F478",
	"620080001611562C8802118E34",
	"C0015000016115A2E0802F182340",
	"A0016C880162017C3686B18A3D4780",
	"C200B40A82",
	"04005AC33890",
	"880086C3E88112",
	"CE00C43D881120",
	"D8005AC2A8F0",
	"F600BC2D8F",
	"9C005AC2F8F0",
	"9C0141080250320F1802104A08",
}

func TestDecode_Literal(t *testing.T) {
	p, err := Decode("D2FE28")
	require.NoError(t, err)

	require.Equal(t, uint8(6), p.Version)
	require.Equal(t, format.TypeLiteral, p.TypeID)
	require.Equal(t, 21, p.BitLength)
	require.Equal(t, 0, p.Offset)
	require.Equal(t, Literal{Value: 2021, Groups: 3}, p.Payload)
}

func TestDecode_TotalBitsOperator(t *testing.T) {
	p, err := Decode("38006F45291200")
	require.NoError(t, err)

	require.Equal(t, uint8(1), p.Version)
	require.Equal(t, format.TypeLessThan, p.TypeID)
	require.Equal(t, 49, p.BitLength)

	op, ok := p.Payload.(Operator)
	require.True(t, ok)
	require.Equal(t, format.LengthTotalBits, op.LengthType)
	require.Len(t, op.Children, 2)

	want := []struct {
		value  uint64
		offset int
	}{{10, 22}, {20, 33}}
	for i, child := range op.Children {
		v, ok := child.Value()
		require.True(t, ok)
		require.Equal(t, want[i].value, v)
		require.Equal(t, want[i].offset, child.Offset)
	}
}

func TestDecode_SubPacketCountOperator(t *testing.T) {
	p, err := Decode("EE00D40C823060")
	require.NoError(t, err)

	require.Equal(t, uint8(7), p.Version)
	require.Equal(t, format.TypeMaximum, p.TypeID)
	require.Equal(t, 51, p.BitLength)

	op, ok := p.Payload.(Operator)
	require.True(t, ok)
	require.Equal(t, format.LengthSubPacketCount, op.LengthType)

	var values []uint64
	for _, child := range op.Children {
		v, ok := child.Value()
		require.True(t, ok)
		values = append(values, v)
	}
	require.Equal(t, []uint64{1, 2, 3}, values)
	require.Equal(t, "(max@7 1@2 2@4 3@1)", p.String())
}

func TestDecode_Notation(t *testing.T) {
	tests := map[string]string{
		"8A004A801A8002F478":             "(min@4 (min@1 (min:bits@5 15@6)))",
		"A0016C880162017C3686B18A3D4780": "(sum:bits@5 (sum@1 (sum@3 6@7 6@6 12@5 15@2 15@2)))",
		"9C0141080250320F1802104A08":     "(eq:bits@4 (sum@2 1@2 3@4) (product@6 2 2@2))",
	}
	for hex, want := range tests {
		t.Run(hex, func(t *testing.T) {
			p, err := Decode(hex)
			require.NoError(t, err)
			require.Equal(t, want, p.String())
		})
	}
}

func TestDecode_LowerCase(t *testing.T) {
	upper, err := Decode("C200B40A82")
	require.NoError(t, err)
	lower, err := Decode("c200b40a82")
	require.NoError(t, err)

	require.True(t, upper.Equal(lower))
}

func TestDecode_Invariants(t *testing.T) {
	for _, hex := range transmissions {
		t.Run(hex, func(t *testing.T) {
			p, err := Decode(hex)
			require.NoError(t, err)

			cur := bitstream.MustCursor(hex)
			require.LessOrEqual(t, p.BitLength, cur.TotalBits())

			for pos := p.End(); pos < cur.TotalBits(); pos++ {
				bit, err := cur.BitAt(pos)
				require.NoError(t, err)
				require.Zero(t, bit, "padding bit %d", pos)
			}

			p.Walk(func(q *Packet, _ int) bool {
				require.GreaterOrEqual(t, q.BitLength, MinBitLength)
				require.LessOrEqual(t, q.Version, uint8(MaxVersion))

				switch pl := q.Payload.(type) {
				case Literal:
					require.Equal(t, HeaderBits+GroupBits*pl.Groups, q.BitLength)
				case Operator:
					sum := pl.LengthType.HeaderBits()
					for _, child := range pl.Children {
						sum += child.BitLength
					}
					require.Equal(t, sum, q.BitLength)
				default:
					t.Fatalf("unexpected payload %T", q.Payload)
				}

				return true
			})
		})
	}
}

func TestParse_SubtreeRoundTrip(t *testing.T) {
	for _, hex := range transmissions {
		t.Run(hex, func(t *testing.T) {
			cur := bitstream.MustCursor(hex)
			root, err := Parse(cur, 0)
			require.NoError(t, err)

			root.Walk(func(q *Packet, _ int) bool {
				again, err := Parse(cur, q.Offset)
				require.NoError(t, err)
				if diff := cmp.Diff(q, again); diff != "" {
					t.Errorf("re-parse at bit %d mismatch (-want +got):\n%s", q.Offset, diff)
				}

				return true
			})
		})
	}
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name   string
		hex    string
		kind   error
		offset int
	}{
		{"invalid hex", "D2FG28", errs.ErrInvalidHexCharacter, 12},
		{"empty", "", errs.ErrUnexpectedEndOfStream, 0},
		{"truncated literal", "D2FE", errs.ErrUnexpectedEndOfStream, 16},
		{"truncated descriptor", "380", errs.ErrUnexpectedEndOfStream, 12},
		{"missing sub-packet", "02008408", errs.ErrUnexpectedEndOfStream, 32},
		{"sub-packet crosses descriptor", "00003040882", errs.ErrMalformedLengthDescriptor, 33},
		{"literal overflow", "13FFFFFFFFFFFFFFFFFFFDE", errs.ErrLiteralOverflow, 86},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Decode(tt.hex)
			require.Nil(t, p)
			require.ErrorIs(t, err, tt.kind)
			require.ErrorIs(t, err, errs.ErrMalformedInput)

			offset, ok := errs.OffsetOf(err)
			require.True(t, ok)
			require.Equal(t, tt.offset, offset)
		})
	}
}

func TestDecode_LiteralLeadingZeroGroups(t *testing.T) {
	p, err := Decode("121FFFFFFFFFFFFFFFFFFDE")
	require.NoError(t, err)

	v, ok := p.Value()
	require.True(t, ok)
	require.Equal(t, ^uint64(0), v)
	require.Equal(t, Literal{Value: ^uint64(0), Groups: 17}, p.Payload)
	require.Equal(t, 91, p.BitLength)
}

func TestDecode_IgnoresTrailingBits(t *testing.T) {
	for _, hex := range []string{"D2FE28", "D2FE2F", "D2FE2800000001", "D2FE28FFFF"} {
		p, err := Decode(hex)
		require.NoError(t, err, hex)
		require.Equal(t, 21, p.BitLength)

		v, ok := p.Value()
		require.True(t, ok)
		require.Equal(t, uint64(2021), v)
	}
}

func TestDecoder_StrictPadding(t *testing.T) {
	d, err := NewDecoder(WithStrictPadding(true))
	require.NoError(t, err)

	tests := []struct {
		hex    string
		offset int
	}{
		{"D2FE2F", 21},
		{"D2FE2800000001", 55},
	}
	for _, tt := range tests {
		t.Run(tt.hex, func(t *testing.T) {
			p, err := d.Decode(tt.hex)
			require.Nil(t, p)
			require.ErrorIs(t, err, errs.ErrTrailingData)
			require.ErrorIs(t, err, errs.ErrMalformedInput)

			offset, ok := errs.OffsetOf(err)
			require.True(t, ok)
			require.Equal(t, tt.offset, offset)
		})
	}

	p, err := d.Decode("D2FE28")
	require.NoError(t, err)
	require.Equal(t, 21, p.BitLength)
}

func TestDecoder_EmptyOperators(t *testing.T) {
	for _, hex := range []string{"02000", "000000"} {
		p, err := Decode(hex)
		require.NoError(t, err)
		require.Empty(t, p.Children())
		require.False(t, p.IsLiteral())
	}

	d, err := NewDecoder(WithEmptyOperators(false))
	require.NoError(t, err)

	_, err = d.Decode("02000")
	require.ErrorIs(t, err, errs.ErrEmptyOperator)
	offset, ok := errs.OffsetOf(err)
	require.True(t, ok)
	require.Equal(t, 0, offset)
}

func TestDecoder_MaxDepth(t *testing.T) {
	const nested = "02004080102004408" // (sum (sum (sum 1)))

	p, err := Decode(nested)
	require.NoError(t, err)
	require.Equal(t, 4, p.Depth())

	d, err := NewDecoder(WithMaxDepth(4))
	require.NoError(t, err)
	_, err = d.Decode(nested)
	require.NoError(t, err)

	d, err = NewDecoder(WithMaxDepth(3))
	require.NoError(t, err)
	_, err = d.Decode(nested)
	require.ErrorIs(t, err, errs.ErrMaxDepthExceeded)
	offset, ok := errs.OffsetOf(err)
	require.True(t, ok)
	require.Equal(t, 54, offset)

	_, err = NewDecoder(WithMaxDepth(0))
	require.Error(t, err)
}

func TestDecode_DeepNestingByDefault(t *testing.T) {
	const levels = 1000

	p, err := NewLiteral(0, 7)
	require.NoError(t, err)
	for range levels {
		p, err = NewOperator(0, format.TypeSum, format.LengthSubPacketCount, p)
		require.NoError(t, err)
	}

	hex, err := Marshal(p)
	require.NoError(t, err)

	decoded, err := Decode(hex)
	require.NoError(t, err)
	require.Equal(t, levels+1, decoded.Depth())
	require.True(t, decoded.Equal(p))
}

func TestParse_AtOffset(t *testing.T) {
	// The second literal of 38006F45291200 starts at bit 33.
	cur := bitstream.MustCursor("38006F45291200")

	p, err := Parse(cur, 33)
	require.NoError(t, err)
	require.Equal(t, 33, p.Offset)
	require.Equal(t, 16, p.BitLength)

	v, _ := p.Value()
	require.Equal(t, uint64(20), v)
}

func BenchmarkDecode(b *testing.B) {
	for b.Loop() {
		_, _ = Decode("A0016C880162017C3686B18A3D4780")
	}
}
