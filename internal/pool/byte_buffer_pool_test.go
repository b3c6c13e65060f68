package pool

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewByteBuffer(t *testing.T) {
	bb := NewByteBuffer(1024)

	require.NotNil(t, bb)
	assert.Equal(t, 0, bb.Len(), "new buffer should have zero length")
	assert.Equal(t, 1024, bb.Cap(), "new buffer should have specified capacity")
}

func TestByteBuffer_WriteAndReset(t *testing.T) {
	bb := NewByteBuffer(RecordBufferDefaultSize)

	n, err := bb.Write([]byte("STF1"))
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	_, _ = bb.Write([]byte{'L'})
	assert.Equal(t, []byte("STF1L"), bb.Bytes())

	originalCap := bb.Cap()
	bb.Reset()
	assert.Equal(t, 0, bb.Len(), "Reset should clear the buffer length")
	assert.Equal(t, originalCap, bb.Cap(), "Reset should preserve capacity")
}

func TestByteBuffer_WriteTo(t *testing.T) {
	bb := NewByteBuffer(16)
	_, _ = bb.Write([]byte("row"))

	var out bytes.Buffer
	n, err := bb.WriteTo(&out)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.Equal(t, "row", out.String())

	_, err = bb.WriteTo(failingWriter{})
	require.Error(t, err)
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("write failed") }

func TestByteBufferPool_GetPut(t *testing.T) {
	p := NewByteBufferPool(64, 128)

	bb := p.Get()
	require.NotNil(t, bb)
	assert.Equal(t, 0, bb.Len())
	assert.GreaterOrEqual(t, bb.Cap(), 64)

	_, _ = bb.Write([]byte("data"))
	p.Put(bb)

	again := p.Get()
	assert.Equal(t, 0, again.Len(), "pooled buffers come back empty")

	p.Put(nil)
}

func TestByteBufferPool_DropsOversized(t *testing.T) {
	p := NewByteBufferPool(8, 16)

	big := NewByteBuffer(8)
	_, _ = big.Write(make([]byte, 64))
	p.Put(big)

	// whatever Get returns, it is never the oversized buffer
	got := p.Get()
	assert.LessOrEqual(t, got.Cap(), 16)
}

func TestRecordBuffer(t *testing.T) {
	bb := GetRecordBuffer()
	require.NotNil(t, bb)
	_, _ = bb.Write([]byte("x"))
	PutRecordBuffer(bb)

	next := GetRecordBuffer()
	assert.Equal(t, 0, next.Len())
	PutRecordBuffer(next)
}
