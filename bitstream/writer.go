package bitstream

import (
	"encoding/binary"

	"github.com/arloliu/bitpack/internal/pool"
)

const hexDigits = "0123456789ABCDEF"

// Writer accumulates bits MSB-first and renders them as bytes or hex text.
//
// Bits are gathered in a 64-bit buffer and flushed to a pooled byte buffer
// whenever a full word is available. A Writer is not safe for concurrent use.
type Writer struct {
	bitBuf   uint64 // pending bits, right-aligned
	bitCount int    // number of valid bits in bitBuf
	total    int    // bits written since the last Reset

	buf *pool.ByteBuffer
}

// NewWriter creates an empty Writer backed by a pooled buffer.
func NewWriter() *Writer {
	return &Writer{buf: pool.GetBitBuffer()}
}

// WriteBit appends a single bit; only the lowest bit of bit is used.
func (w *Writer) WriteBit(bit uint64) {
	w.WriteBits(bit, 1)
}

// WriteBits appends the lowest numBits bits of value, most significant first.
//
// Parameters:
//   - value: the bits to write (only the least significant numBits are used)
//   - numBits: number of bits to write (0-64)
func (w *Writer) WriteBits(value uint64, numBits int) {
	if w.buf == nil {
		panic("bitstream: writer already finished")
	}
	if numBits <= 0 {
		return
	}

	if numBits < 64 {
		value &= (1 << numBits) - 1
	}
	w.total += numBits

	available := 64 - w.bitCount
	if numBits <= available {
		if numBits == 64 {
			w.bitBuf = value
		} else {
			w.bitBuf = (w.bitBuf << numBits) | value
		}
		w.bitCount += numBits

		if w.bitCount == 64 {
			w.flushWord()
		}

		return
	}

	// Split across the word boundary.
	low := numBits - available
	w.bitBuf = (w.bitBuf << available) | (value >> low)
	w.bitCount = 64
	w.flushWord()

	w.bitBuf = value & ((1 << low) - 1)
	w.bitCount = low
}

func (w *Writer) flushWord() {
	w.buf.B = binary.BigEndian.AppendUint64(w.buf.B, w.bitBuf)
	w.bitBuf = 0
	w.bitCount = 0
}

// Len returns the number of bits written.
func (w *Writer) Len() int {
	return w.total
}

// Bytes returns a copy of the written bits, zero-padded to a whole byte.
func (w *Writer) Bytes() []byte {
	out := make([]byte, 0, (w.total+7)/8)
	out = append(out, w.buf.Bytes()...)

	if w.bitCount > 0 {
		aligned := w.bitBuf << (64 - w.bitCount)
		for i := 0; i < (w.bitCount+7)/8; i++ {
			out = append(out, byte(aligned>>(56-8*i)))
		}
	}

	return out
}

// Hex renders the written bits as upper-case hex, zero-padded to a whole digit.
func (w *Writer) Hex() string {
	data := w.Bytes()
	digits := (w.total + 3) / 4

	out := make([]byte, 0, len(data)*2)
	for _, b := range data {
		out = append(out, hexDigits[b>>4], hexDigits[b&0x0F])
	}

	return string(out[:digits])
}

// Reset clears all written bits so the Writer can be reused.
func (w *Writer) Reset() {
	if w.buf == nil {
		w.buf = pool.GetBitBuffer()
	}
	w.buf.Reset()
	w.bitBuf = 0
	w.bitCount = 0
	w.total = 0
}

// Finish returns the internal buffer to the pool. The Writer must not be used
// afterwards except through Reset.
func (w *Writer) Finish() {
	if w.buf == nil {
		return
	}
	pool.PutBitBuffer(w.buf)
	w.buf = nil
}
