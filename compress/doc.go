// Package compress provides the codecs used for capture bodies.
//
// A capture stores its transmissions as newline-separated hex text, which
// compresses well with any general-purpose algorithm. Four codecs are
// available, selected by format.CompressionType:
//   - None: body stored as-is
//   - Zstd: best ratio; the default for new captures
//   - S2: fast with a good ratio
//   - LZ4: fastest decompression
//
// Use GetCodec to obtain a shared codec:
//
//	codec, err := compress.GetCodec(format.CompressionZstd)
//	if err != nil {
//	    return err
//	}
//	body, err := codec.Compress(text)
//
// All codecs are safe for concurrent use. The Zstd codec is implemented with
// github.com/klauspost/compress/zstd; building with the gozstd tag (and cgo)
// switches it to the cgo binding github.com/valyala/gozstd. Both produce
// standard zstd frames, so captures are interchangeable between builds.
package compress
