package bitstream

import (
	"github.com/arloliu/bitpack/errs"
)

// MaxWindowBits is the widest window Bits can return.
const MaxWindowBits = 64

// Cursor is a read-only, random-access view over a hex-encoded bit stream.
//
// Bit 0 is the most significant bit of the first hex digit, bit 4 is the most
// significant bit of the second digit, and so on. A Cursor holds no position:
// every read takes absolute bit offsets, so any number of readers (including
// recursive parsers) can share one value without coordinating.
//
// The zero value is an empty stream.
type Cursor struct {
	hex string
}

// NewCursor validates hex and returns a cursor over it.
//
// Both upper- and lower-case digits are accepted. The string is not copied.
//
// Parameters:
//   - hex: The transmission, without surrounding whitespace
//
// Returns:
//   - Cursor: A view over the transmission
//   - error: errs.ErrInvalidHexCharacter at the offending character's bit offset
func NewCursor(hex string) (Cursor, error) {
	for i := 0; i < len(hex); i++ {
		if _, ok := hexValue(hex[i]); !ok {
			return Cursor{}, errs.NewMalformed(errs.ErrInvalidHexCharacter, i*4,
				"character %q at position %d", hex[i], i)
		}
	}

	return Cursor{hex: hex}, nil
}

// MustCursor is like NewCursor but panics on invalid input. Intended for tests
// and constant transmissions.
func MustCursor(hex string) Cursor {
	c, err := NewCursor(hex)
	if err != nil {
		panic(err)
	}

	return c
}

// TotalBits returns the stream length in bits (4 per hex digit).
func (c Cursor) TotalBits() int {
	return len(c.hex) * 4
}

// Len returns the number of hex digits.
func (c Cursor) Len() int {
	return len(c.hex)
}

// String returns the underlying hex text.
func (c Cursor) String() string {
	return c.hex
}

// BitAt returns the bit at absolute position pos.
//
// Within a hex digit bits are read MSB-first: for the digit "1", positions 0-2
// are 0 and position 3 is 1.
//
// Returns:
//   - uint8: 0 or 1
//   - error: errs.ErrUnexpectedEndOfStream if pos is outside the stream
func (c Cursor) BitAt(pos int) (uint8, error) {
	if pos < 0 || pos >= c.TotalBits() {
		return 0, errs.NewMalformed(errs.ErrUnexpectedEndOfStream, pos,
			"stream has %d bits", c.TotalBits())
	}

	nibble := c.nibble(pos / 4)
	shift := 3 - pos%4

	return (nibble >> shift) & 1, nil
}

// Bits returns the unsigned value of the bits in [start, end).
//
// The bit at start becomes the most significant bit of the result. An empty
// window returns 0.
//
// Parameters:
//   - start: First bit of the window (inclusive)
//   - end: End of the window (exclusive)
//
// Returns:
//   - uint64: The window value, right-aligned
//   - error: errs.ErrWindowTooWide if end-start > 64 or end < start,
//     errs.ErrUnexpectedEndOfStream if the window leaves the stream
func (c Cursor) Bits(start, end int) (uint64, error) {
	if end < start || end-start > MaxWindowBits {
		return 0, errs.NewMalformed(errs.ErrWindowTooWide, start,
			"window [%d, %d)", start, end)
	}
	if start < 0 {
		return 0, errs.NewMalformed(errs.ErrUnexpectedEndOfStream, start, "negative offset")
	}
	if end > c.TotalBits() {
		return 0, errs.NewMalformed(errs.ErrUnexpectedEndOfStream, c.TotalBits(),
			"need bits [%d, %d), stream has %d", start, end, c.TotalBits())
	}

	var result uint64
	for pos := start; pos < end; {
		inDigit := pos % 4
		take := 4 - inDigit
		if remaining := end - pos; take > remaining {
			take = remaining
		}

		v := uint64(c.nibble(pos/4)>>(4-inDigit-take)) & (1<<take - 1)
		result = result<<take | v
		pos += take
	}

	return result, nil
}

// nibble decodes the hex digit at index i. The digit was validated by NewCursor.
func (c Cursor) nibble(i int) uint8 {
	v, _ := hexValue(c.hex[i])
	return v
}

func hexValue(ch byte) (uint8, bool) {
	switch {
	case ch >= '0' && ch <= '9':
		return ch - '0', true
	case ch >= 'A' && ch <= 'F':
		return ch - 'A' + 10, true
	case ch >= 'a' && ch <= 'f':
		return ch - 'a' + 10, true
	default:
		return 0, false
	}
}
