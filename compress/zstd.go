package compress

// ZstdCompressor compresses with Zstandard.
//
// The implementation is selected at build time: pure Go by default, or the
// cgo binding when built with the gozstd tag.
type ZstdCompressor struct{}

var _ Codec = (*ZstdCompressor)(nil)

// NewZstdCompressor creates a new Zstd codec with default settings.
func NewZstdCompressor() ZstdCompressor {
	return ZstdCompressor{}
}
