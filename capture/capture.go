// Package capture stores many transmissions in one compact binary file.
//
// A capture is a 24-byte header (see Header) followed by a body of
// newline-separated upper-case hex transmissions, compressed with the codec
// named in the header. The header records an xxHash64 checksum of the
// uncompressed body, which Read verifies.
//
//	w, _ := capture.NewWriter(capture.WithCompression(format.CompressionS2))
//	for _, line := range lines {
//	    if err := w.Add(line); err != nil {
//	        return err
//	    }
//	}
//	data, err := w.Bytes()
//
//	c, err := capture.Read(data)
//	for i, hex := range c.All() {
//	    ...
//	}
package capture

import (
	"bytes"
	"fmt"
	"iter"

	"github.com/arloliu/bitpack/bitstream"
	"github.com/arloliu/bitpack/compress"
	"github.com/arloliu/bitpack/errs"
	"github.com/arloliu/bitpack/internal/hash"
	"github.com/arloliu/bitpack/packet"
)

// Capture is a decoded capture file.
type Capture struct {
	header        Header
	transmissions []string
}

// Read parses and verifies a capture.
//
// Parameters:
//   - data: The complete capture file
//
// Returns:
//   - *Capture: The capture
//   - error: errs.ErrInvalidCapture, errs.ErrUnsupportedVersion or
//     errs.ErrChecksumMismatch
func Read(data []byte) (*Capture, error) {
	h, err := ParseHeader(data)
	if err != nil {
		return nil, err
	}

	codec, err := compress.GetCodec(h.Compression)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrInvalidCapture, err)
	}
	raw, err := codec.Decompress(data[HeaderSize:])
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrInvalidCapture, err)
	}
	if len(raw) != int(h.RawSize) {
		return nil, fmt.Errorf("%w: body is %d bytes, header says %d", errs.ErrInvalidCapture, len(raw), h.RawSize)
	}
	if sum := hash.Sum(raw); sum != h.Checksum {
		return nil, fmt.Errorf("%w: got %#016x, want %#016x", errs.ErrChecksumMismatch, sum, h.Checksum)
	}

	// The count is not covered by the checksum; size from the body instead.
	c := &Capture{header: h, transmissions: make([]string, 0, bytes.Count(raw, []byte{'\n'}))}
	for line := range bytes.Lines(raw) {
		hex := string(bytes.TrimSuffix(line, []byte{'\n'}))
		if _, err := bitstream.NewCursor(hex); err != nil || hex == "" {
			return nil, fmt.Errorf("%w: transmission %d is not hex", errs.ErrInvalidCapture, len(c.transmissions))
		}
		c.transmissions = append(c.transmissions, hex)
	}
	if len(c.transmissions) != int(h.Count) {
		return nil, fmt.Errorf("%w: %d transmissions, header says %d", errs.ErrInvalidCapture, len(c.transmissions), h.Count)
	}

	return c, nil
}

// Header returns the parsed header.
func (c *Capture) Header() Header {
	return c.header
}

// Len returns the number of transmissions.
func (c *Capture) Len() int {
	return len(c.transmissions)
}

// Transmissions returns a copy of the transmissions in file order.
func (c *Capture) Transmissions() []string {
	out := make([]string, len(c.transmissions))
	copy(out, c.transmissions)

	return out
}

// All iterates over the transmissions with their indexes.
func (c *Capture) All() iter.Seq2[int, string] {
	return func(yield func(int, string) bool) {
		for i, hex := range c.transmissions {
			if !yield(i, hex) {
				return
			}
		}
	}
}

// Decode parses every transmission with d, or with the default decoder when
// d is nil. It stops at the first malformed transmission.
func (c *Capture) Decode(d *packet.Decoder) ([]*packet.Packet, error) {
	if d == nil {
		var err error
		if d, err = packet.NewDecoder(); err != nil {
			return nil, err
		}
	}

	out := make([]*packet.Packet, 0, len(c.transmissions))
	for i, hex := range c.transmissions {
		p, err := d.Decode(hex)
		if err != nil {
			return nil, fmt.Errorf("transmission %d: %w", i, err)
		}
		out = append(out, p)
	}

	return out, nil
}
