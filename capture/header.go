package capture

import (
	"fmt"

	"github.com/arloliu/bitpack/endian"
	"github.com/arloliu/bitpack/errs"
	"github.com/arloliu/bitpack/format"
)

const (
	// Magic identifies a capture file.
	Magic uint16 = 0xB175
	// Version is the container layout version written by this package.
	Version uint8 = 1
	// HeaderSize is the fixed size of the capture header in bytes.
	HeaderSize = 24
)

// Header is the fixed-size header at the start of a capture.
//
// Layout (little-endian):
//
//	0-1   magic
//	2     version
//	3     compression type
//	4-7   transmission count
//	8-11  uncompressed body size
//	12-19 xxHash64 of the uncompressed body
//	20-23 reserved, zero
type Header struct {
	Version     uint8
	Compression format.CompressionType
	Count       uint32
	RawSize     uint32
	Checksum    uint64
}

// Bytes serializes the header.
func (h Header) Bytes() []byte {
	engine := endian.GetLittleEndianEngine()

	b := make([]byte, 0, HeaderSize)
	b = engine.AppendUint16(b, Magic)
	b = append(b, h.Version, uint8(h.Compression))
	b = engine.AppendUint32(b, h.Count)
	b = engine.AppendUint32(b, h.RawSize)
	b = engine.AppendUint64(b, h.Checksum)
	b = engine.AppendUint32(b, 0)

	return b
}

// ParseHeader parses a Header from the start of data.
//
// Returns:
//   - Header: Parsed header
//   - error: errs.ErrInvalidCapture for a short buffer or bad magic,
//     errs.ErrUnsupportedVersion for an unknown layout version
func ParseHeader(data []byte) (Header, error) {
	if len(data) < HeaderSize {
		return Header{}, fmt.Errorf("%w: %d bytes, header needs %d", errs.ErrInvalidCapture, len(data), HeaderSize)
	}

	engine := endian.GetLittleEndianEngine()
	if magic := engine.Uint16(data[0:2]); magic != Magic {
		return Header{}, fmt.Errorf("%w: magic %#04x", errs.ErrInvalidCapture, magic)
	}

	h := Header{
		Version:     data[2],
		Compression: format.CompressionType(data[3]),
		Count:       engine.Uint32(data[4:8]),
		RawSize:     engine.Uint32(data[8:12]),
		Checksum:    engine.Uint64(data[12:20]),
	}
	if h.Version != Version {
		return Header{}, fmt.Errorf("%w: %d", errs.ErrUnsupportedVersion, h.Version)
	}

	return h, nil
}
