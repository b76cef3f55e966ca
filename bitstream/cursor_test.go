package bitstream

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/bitpack/errs"
)

func TestNewCursor(t *testing.T) {
	cur, err := NewCursor("D2fe28")
	require.NoError(t, err)
	require.Equal(t, 6, cur.Len())
	require.Equal(t, 24, cur.TotalBits())
	require.Equal(t, "D2fe28", cur.String())
}

func TestNewCursor_InvalidHex(t *testing.T) {
	tests := []struct {
		name   string
		hex    string
		offset int
	}{
		{"letter", "D2XE28", 8},
		{"space", " D2", 0},
		{"newline at end", "D2FE28\n", 24},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCursor(tt.hex)
			require.ErrorIs(t, err, errs.ErrInvalidHexCharacter)
			require.ErrorIs(t, err, errs.ErrMalformedInput)

			offset, ok := errs.OffsetOf(err)
			require.True(t, ok)
			require.Equal(t, tt.offset, offset)
		})
	}
}

func TestCursor_BitAt_MSBFirst(t *testing.T) {
	cur := MustCursor("1")

	for pos, want := range []uint8{0, 0, 0, 1} {
		bit, err := cur.BitAt(pos)
		require.NoError(t, err)
		require.Equal(t, want, bit, "bit %d", pos)
	}
}

func TestCursor_BitAt_OutOfRange(t *testing.T) {
	cur := MustCursor("F")

	_, err := cur.BitAt(4)
	require.ErrorIs(t, err, errs.ErrUnexpectedEndOfStream)
	offset, ok := errs.OffsetOf(err)
	require.True(t, ok)
	require.Equal(t, 4, offset)

	_, err = cur.BitAt(-1)
	require.ErrorIs(t, err, errs.ErrUnexpectedEndOfStream)

	_, err = Cursor{}.BitAt(0)
	require.ErrorIs(t, err, errs.ErrUnexpectedEndOfStream)
}

func TestCursor_Bits(t *testing.T) {
	// 110100101111111000101000
	cur := MustCursor("D2FE28")

	tests := []struct {
		name       string
		start, end int
		want       uint64
	}{
		{"version", 0, 3, 6},
		{"type id", 3, 6, 4},
		{"first group", 6, 11, 0b10111},
		{"second group", 11, 16, 0b11110},
		{"third group", 16, 21, 0b00101},
		{"whole stream", 0, 24, 0xD2FE28},
		{"empty window", 5, 5, 0},
		{"single bit inside digit", 2, 3, 0},
		{"across digits", 3, 9, 0b100101},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := cur.Bits(tt.start, tt.end)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestCursor_Bits_Wide(t *testing.T) {
	cur := MustCursor("FFFFFFFFFFFFFFFF1")

	got, err := cur.Bits(0, 64)
	require.NoError(t, err)
	require.Equal(t, ^uint64(0), got)

	got, err = cur.Bits(4, 68)
	require.NoError(t, err)
	all := ^uint64(0)
	require.Equal(t, all<<4|1, got)

	_, err = cur.Bits(0, 65)
	require.ErrorIs(t, err, errs.ErrWindowTooWide)

	_, err = cur.Bits(10, 9)
	require.ErrorIs(t, err, errs.ErrWindowTooWide)
}

func TestCursor_Bits_EndOfStream(t *testing.T) {
	cur := MustCursor("D2")

	_, err := cur.Bits(4, 9)
	require.ErrorIs(t, err, errs.ErrUnexpectedEndOfStream)

	offset, ok := errs.OffsetOf(err)
	require.True(t, ok)
	require.Equal(t, 8, offset)
}

func TestCursor_BitsMatchesBitAt(t *testing.T) {
	cur := MustCursor("9C0141080250320F1802104A08")

	for start := 0; start < cur.TotalBits()-16; start += 3 {
		var want uint64
		for pos := start; pos < start+16; pos++ {
			bit, err := cur.BitAt(pos)
			require.NoError(t, err)
			want = want<<1 | uint64(bit)
		}

		got, err := cur.Bits(start, start+16)
		require.NoError(t, err)
		require.Equal(t, want, got, "window at %d", start)
	}
}

func BenchmarkCursor_Bits(b *testing.B) {
	cur := MustCursor("A0016C880162017C3686B18A3D4780")
	for b.Loop() {
		_, _ = cur.Bits(7, 22)
	}
}
