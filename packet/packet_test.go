package packet

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/bitpack/errs"
	"github.com/arloliu/bitpack/format"
)

func mustLiteral(t *testing.T, version uint8, value uint64) *Packet {
	t.Helper()
	p, err := NewLiteral(version, value)
	require.NoError(t, err)

	return p
}

func mustOperator(t *testing.T, version uint8, typeID format.TypeID, lt format.LengthType, children ...*Packet) *Packet {
	t.Helper()
	p, err := NewOperator(version, typeID, lt, children...)
	require.NoError(t, err)

	return p
}

func TestMinGroups(t *testing.T) {
	tests := []struct {
		value  uint64
		groups int
	}{
		{0, 1},
		{0xF, 1},
		{0x10, 2},
		{2021, 3},
		{1 << 60, 16},
		{^uint64(0), 16},
	}
	for _, tt := range tests {
		require.Equal(t, tt.groups, MinGroups(tt.value), "value %d", tt.value)
	}
}

func TestNewLiteral(t *testing.T) {
	p := mustLiteral(t, 6, 2021)

	require.Equal(t, format.TypeLiteral, p.TypeID)
	require.Equal(t, 21, p.BitLength)
	require.True(t, p.IsLiteral())
	require.Nil(t, p.Children())

	v, ok := p.Value()
	require.True(t, ok)
	require.Equal(t, uint64(2021), v)

	_, err := NewLiteral(8, 1)
	require.ErrorIs(t, err, errs.ErrPayloadMismatch)
}

func TestNewOperator(t *testing.T) {
	a := mustLiteral(t, 0, 10)
	b := mustLiteral(t, 0, 20)

	p := mustOperator(t, 1, format.TypeLessThan, format.LengthTotalBits, a, b)
	require.Equal(t, 22+11+16, p.BitLength)
	require.False(t, p.IsLiteral())
	require.Len(t, p.Children(), 2)

	_, ok := p.Value()
	require.False(t, ok)

	p = mustOperator(t, 1, format.TypeSum, format.LengthSubPacketCount, a, b)
	require.Equal(t, 18+11+16, p.BitLength)

	_, err := NewOperator(0, format.TypeLiteral, format.LengthSubPacketCount, a)
	require.ErrorIs(t, err, errs.ErrPayloadMismatch)

	_, err = NewOperator(9, format.TypeSum, format.LengthSubPacketCount, a)
	require.ErrorIs(t, err, errs.ErrPayloadMismatch)
}

func TestNewOperator_DescriptorOverflow(t *testing.T) {
	lit := mustLiteral(t, 0, 1)

	children := make([]*Packet, 2048)
	for i := range children {
		children[i] = lit
	}

	_, err := NewOperator(0, format.TypeSum, format.LengthSubPacketCount, children...)
	require.ErrorIs(t, err, errs.ErrDescriptorOverflow)

	// 2979 literals of 11 bits overflow the 15-bit total.
	_, err = NewOperator(0, format.TypeSum, format.LengthTotalBits, children[:2979]...)
	require.ErrorIs(t, err, errs.ErrDescriptorOverflow)

	_, err = NewOperator(0, format.TypeSum, format.LengthTotalBits, children[:2047]...)
	require.NoError(t, err)
}

func TestPacket_WalkCountDepth(t *testing.T) {
	inner := mustOperator(t, 2, format.TypeProduct, format.LengthSubPacketCount,
		mustLiteral(t, 0, 2), mustLiteral(t, 0, 3))
	root := mustOperator(t, 1, format.TypeSum, format.LengthTotalBits, mustLiteral(t, 0, 1), inner)

	require.Equal(t, 5, root.Count())
	require.Equal(t, 3, root.Depth())
	require.Equal(t, 1, mustLiteral(t, 0, 1).Depth())

	var visited []string
	root.Walk(func(p *Packet, depth int) bool {
		visited = append(visited, p.TypeID.String())
		return p.TypeID != format.TypeProduct
	})
	require.Equal(t, []string{"sum", "literal", "product"}, visited)
}

func TestPacket_Equal(t *testing.T) {
	build := func(v uint64) *Packet {
		return mustOperator(t, 3, format.TypeEqualTo, format.LengthSubPacketCount,
			mustLiteral(t, 0, 1), mustLiteral(t, 0, v))
	}

	require.True(t, build(2).Equal(build(2)))
	require.False(t, build(2).Equal(build(3)))
	require.False(t, build(2).Equal(mustLiteral(t, 3, 2)))
	require.False(t, build(2).Equal(nil))
	require.True(t, (*Packet)(nil).Equal(nil))

	a := mustOperator(t, 0, format.TypeSum, format.LengthSubPacketCount, mustLiteral(t, 0, 1))
	b := mustOperator(t, 0, format.TypeSum, format.LengthTotalBits, mustLiteral(t, 0, 1))
	require.False(t, a.Equal(b))
}

func TestPacket_Fingerprint(t *testing.T) {
	a := mustOperator(t, 0, format.TypeSum, format.LengthSubPacketCount, mustLiteral(t, 0, 1), mustLiteral(t, 0, 2))
	b := mustOperator(t, 0, format.TypeSum, format.LengthSubPacketCount, mustLiteral(t, 0, 1), mustLiteral(t, 0, 2))
	c := mustOperator(t, 0, format.TypeSum, format.LengthSubPacketCount, mustLiteral(t, 0, 2), mustLiteral(t, 0, 1))

	require.Equal(t, a.Fingerprint(), b.Fingerprint())
	require.NotEqual(t, a.Fingerprint(), c.Fingerprint())
	require.Equal(t, a.Fingerprint(), a.Relocate(40).Fingerprint())
}

func TestPacket_Relocate(t *testing.T) {
	root := mustOperator(t, 0, format.TypeSum, format.LengthSubPacketCount,
		mustLiteral(t, 0, 1),
		mustOperator(t, 0, format.TypeMaximum, format.LengthTotalBits, mustLiteral(t, 0, 7), mustLiteral(t, 0, 300)))

	moved := root.Relocate(8)
	require.True(t, moved.Equal(root))
	require.Equal(t, 8, moved.Offset)

	children := moved.Children()
	require.Equal(t, 8+18, children[0].Offset)
	require.Equal(t, 8+18+11, children[1].Offset)
	require.Equal(t, 8+18+11+22, children[1].Children()[0].Offset)
	require.Equal(t, 8+18+11+22+11, children[1].Children()[1].Offset)

	require.Equal(t, 0, root.Offset, "Relocate must not modify the source tree")
}

func TestPacket_String(t *testing.T) {
	root := mustOperator(t, 1, format.TypeSum, format.LengthSubPacketCount,
		mustLiteral(t, 0, 1),
		mustOperator(t, 0, format.TypeProduct, format.LengthTotalBits, mustLiteral(t, 0, 2), mustLiteral(t, 4, 3)))

	require.Equal(t, "(sum@1 1 (product:bits 2 3@4))", root.String())
	require.Equal(t, "2021@6", mustLiteral(t, 6, 2021).String())
}
