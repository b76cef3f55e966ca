package pool

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewByteBuffer(t *testing.T) {
	bb := NewByteBuffer(64)

	require.NotNil(t, bb)
	assert.Equal(t, 0, bb.Len())
	assert.Equal(t, 64, bb.Cap())
}

func TestByteBuffer_AppendAndReset(t *testing.T) {
	bb := NewByteBuffer(4)
	bb.AppendByte(0xD2)
	n, err := bb.Write([]byte{0xFE, 0x28})
	require.NoError(t, err)
	require.Equal(t, 2, n)

	assert.Equal(t, []byte{0xD2, 0xFE, 0x28}, bb.Bytes())

	originalCap := bb.Cap()
	bb.Reset()
	assert.Equal(t, 0, bb.Len())
	assert.Equal(t, originalCap, bb.Cap(), "Reset should preserve capacity")
}

func TestByteBufferPool_PutResets(t *testing.T) {
	p := NewByteBufferPool(16, 0)

	bb := p.Get()
	require.NotNil(t, bb)
	bb.AppendByte(1)
	p.Put(bb)

	got := p.Get()
	assert.Equal(t, 0, got.Len(), "buffers from the pool must be empty")
}

func TestByteBufferPool_DropsOversized(t *testing.T) {
	p := NewByteBufferPool(4, 8)

	bb := NewByteBuffer(32)
	bb.AppendByte(1)
	p.Put(bb)

	got := p.Get()
	assert.LessOrEqual(t, got.Cap(), 8, "oversized buffers must not be retained")

	p.Put(nil)
}

func TestBitBufferPool_Concurrent(t *testing.T) {
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				bb := GetBitBuffer()
				bb.AppendByte(byte(j))
				PutBitBuffer(bb)
			}
		}()
	}
	wg.Wait()
}
