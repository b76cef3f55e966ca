// Package bitstream provides bit-level access to hex-encoded transmissions.
//
// A transmission is a string of hex digits; each digit contributes four bits,
// most significant first, so the stream "D2FE28" is the 24-bit sequence
//
//	110100101111111000101000
//
// # Reading
//
// Cursor is an immutable view with absolute addressing:
//
//	cur, err := bitstream.NewCursor("D2FE28")
//	if err != nil {
//	    return err
//	}
//	version, _ := cur.Bits(0, 3) // 6
//	typeID, _ := cur.Bits(3, 6)  // 4
//
// Because a Cursor carries no read position, a recursive parser can hand the
// same value to every level of recursion together with the offset to read at.
//
// # Writing
//
// Writer is the inverse: it packs bit fields MSB-first into a pooled buffer
// and renders the result as bytes or hex, zero-padding the final digit.
//
//	w := bitstream.NewWriter()
//	defer w.Finish()
//	w.WriteBits(6, 3)
//	w.WriteBits(4, 3)
//	hex := w.Hex() // "D0" (6 bits padded to 8)
package bitstream
