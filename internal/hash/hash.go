package hash

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
)

// Sum computes the xxHash64 of data.
func Sum(data []byte) uint64 {
	return xxhash.Sum64(data)
}

// Digest accumulates fixed-width fields into a streaming xxHash64.
//
// Fields are written in a fixed little-endian layout so two digests fed the
// same sequence of values always agree, independent of the host byte order.
type Digest struct {
	d   *xxhash.Digest
	buf [8]byte
}

// NewDigest creates an empty Digest.
func NewDigest() *Digest {
	return &Digest{d: xxhash.New()}
}

// WriteUint8 appends a single byte to the digest.
func (d *Digest) WriteUint8(v uint8) {
	d.buf[0] = v
	_, _ = d.d.Write(d.buf[:1])
}

// WriteUint64 appends v in little-endian order to the digest.
func (d *Digest) WriteUint64(v uint64) {
	binary.LittleEndian.PutUint64(d.buf[:], v)
	_, _ = d.d.Write(d.buf[:])
}

// Sum64 returns the current hash value.
func (d *Digest) Sum64() uint64 {
	return d.d.Sum64()
}
