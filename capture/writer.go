package capture

import (
	"fmt"
	"math"
	"strings"

	"github.com/arloliu/bitpack/bitstream"
	"github.com/arloliu/bitpack/compress"
	"github.com/arloliu/bitpack/errs"
	"github.com/arloliu/bitpack/format"
	"github.com/arloliu/bitpack/internal/hash"
	"github.com/arloliu/bitpack/internal/options"
	"github.com/arloliu/bitpack/internal/pool"
)

// Writer collects transmissions and serializes them as a capture.
//
// A Writer is not safe for concurrent use.
type Writer struct {
	compression format.CompressionType
	count       uint32
	body        *pool.ByteBuffer
}

// WriterOption configures a Writer.
type WriterOption = options.Option[*Writer]

// WithCompression selects the body compression. The default is Zstd.
func WithCompression(ct format.CompressionType) WriterOption {
	return options.New(func(w *Writer) error {
		if _, err := compress.GetCodec(ct); err != nil {
			return err
		}
		w.compression = ct

		return nil
	})
}

// NewWriter creates an empty capture writer.
func NewWriter(opts ...WriterOption) (*Writer, error) {
	w := &Writer{
		compression: format.CompressionZstd,
		body:        pool.GetBitBuffer(),
	}
	if err := options.Apply(w, opts...); err != nil {
		pool.PutBitBuffer(w.body)
		return nil, err
	}

	return w, nil
}

// Add appends one transmission.
//
// Surrounding whitespace is trimmed and hex digits are stored upper-case.
// The transmission is validated as hex but not parsed.
//
// Returns:
//   - error: A *errs.MalformedInputError for an empty or non-hex transmission
func (w *Writer) Add(hex string) error {
	hex = strings.ToUpper(strings.TrimSpace(hex))
	if hex == "" {
		return errs.NewMalformed(errs.ErrUnexpectedEndOfStream, 0, "empty transmission")
	}
	if _, err := bitstream.NewCursor(hex); err != nil {
		return err
	}
	if w.count == math.MaxUint32 {
		return fmt.Errorf("%w: too many transmissions", errs.ErrInvalidCapture)
	}

	w.body.B = append(w.body.B, hex...)
	w.body.AppendByte('\n')
	w.count++

	return nil
}

// Len returns the number of transmissions added so far.
func (w *Writer) Len() int {
	return int(w.count)
}

// Bytes serializes the header and the compressed body.
//
// The Writer remains usable; further Adds extend the same capture.
func (w *Writer) Bytes() ([]byte, error) {
	raw := w.body.Bytes()
	if len(raw) > math.MaxUint32 {
		return nil, fmt.Errorf("%w: body of %d bytes", errs.ErrInvalidCapture, len(raw))
	}

	codec, err := compress.GetCodec(w.compression)
	if err != nil {
		return nil, err
	}
	compressed, err := codec.Compress(raw)
	if err != nil {
		return nil, fmt.Errorf("compress capture body: %w", err)
	}

	h := Header{
		Version:     Version,
		Compression: w.compression,
		Count:       w.count,
		RawSize:     uint32(len(raw)), //nolint: gosec
		Checksum:    hash.Sum(raw),
	}

	out := make([]byte, 0, HeaderSize+len(compressed))
	out = append(out, h.Bytes()...)
	out = append(out, compressed...)

	return out, nil
}

// Reset discards all transmissions, keeping the configuration.
func (w *Writer) Reset() {
	w.body.Reset()
	w.count = 0
}

// Finish releases the Writer's buffer. The Writer must not be used afterwards.
func (w *Writer) Finish() {
	if w.body == nil {
		return
	}
	pool.PutBitBuffer(w.body)
	w.body = nil
}
