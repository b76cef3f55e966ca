// Package endian provides the byte order used by bitpack's binary containers.
//
// Capture headers are little-endian:
//
//	engine := endian.GetLittleEndianEngine()
//	buf = engine.AppendUint32(buf, count)
//	count = engine.Uint32(buf[4:8])
//
// The returned engine is immutable and safe for concurrent use.
package endian

import (
	"encoding/binary"
)

// EndianEngine combines binary.ByteOrder and binary.AppendByteOrder so a
// single value can both read fixed positions and append to a buffer.
type EndianEngine interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

// GetLittleEndianEngine returns the little-endian engine.
func GetLittleEndianEngine() EndianEngine {
	return binary.LittleEndian
}
