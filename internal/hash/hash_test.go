package hash

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSum(t *testing.T) {
	tests := []struct {
		name string
		data string
		sum  uint64
	}{
		{"empty string", "", 0xef46db3751d8e999},
		{"short string", "test", 0x4fdcca5ddb678139},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.sum, Sum([]byte(tt.data)))
		})
	}
}

func TestDigest(t *testing.T) {
	a := NewDigest()
	a.WriteUint8(6)
	a.WriteUint64(2021)

	b := NewDigest()
	b.WriteUint8(6)
	b.WriteUint64(2021)

	require.Equal(t, a.Sum64(), b.Sum64())

	c := NewDigest()
	c.WriteUint8(6)
	c.WriteUint64(2022)

	require.NotEqual(t, a.Sum64(), c.Sum64())
}

func BenchmarkDigest(b *testing.B) {
	for b.Loop() {
		d := NewDigest()
		d.WriteUint8(4)
		d.WriteUint64(0xdeadbeef)
		_ = d.Sum64()
	}
}
