package pool

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewByteBuffer(t *testing.T) {
	bb := NewByteBuffer(1024)

	require.NotNil(t, bb)
	assert.Equal(t, 0, bb.Len())
	assert.Equal(t, 1024, cap(bb.B))
}

func TestByteBuffer_WriteAndReset(t *testing.T) {
	bb := NewByteBuffer(LineBufferDefaultSize)

	n, err := bb.Write([]byte("Paris;12.3"))
	require.NoError(t, err)
	require.Equal(t, 10, n)
	_, _ = bb.Write([]byte{'\n'})
	require.Equal(t, []byte("Paris;12.3\n"), bb.Bytes())

	capBefore := cap(bb.B)
	bb.Reset()
	assert.Equal(t, 0, bb.Len())
	assert.Equal(t, capBefore, cap(bb.B), "Reset should preserve capacity")
}

func TestByteBuffer_Grow(t *testing.T) {
	t.Run("no-op with enough capacity", func(t *testing.T) {
		bb := NewByteBuffer(64)
		bb.B = append(bb.B, "abc"...)
		bb.Grow(10)
		assert.Equal(t, 64, cap(bb.B))
	})

	t.Run("grows and keeps content", func(t *testing.T) {
		bb := NewByteBuffer(4)
		bb.B = append(bb.B, "abcd"...)
		bb.Grow(1000)
		assert.GreaterOrEqual(t, cap(bb.B)-bb.Len(), 1000)
		assert.Equal(t, []byte("abcd"), bb.Bytes())
	})

	t.Run("large buffers grow by a quarter", func(t *testing.T) {
		size := 8 * PayloadBufferDefaultSize
		bb := NewByteBuffer(size)
		bb.B = bb.B[:size]
		bb.Grow(1)
		assert.Equal(t, size+size/4, cap(bb.B))
	})
}

func TestByteBufferPool(t *testing.T) {
	t.Run("returned buffers are empty", func(t *testing.T) {
		p := NewByteBufferPool(32, 0)
		bb := p.Get()
		_, _ = bb.Write([]byte("dirty"))
		p.Put(bb)

		again := p.Get()
		assert.Equal(t, 0, again.Len())
	})

	t.Run("put nil is ignored", func(t *testing.T) {
		p := NewByteBufferPool(32, 0)
		require.NotPanics(t, func() { p.Put(nil) })
	})

	t.Run("oversized buffers are dropped", func(t *testing.T) {
		p := NewByteBufferPool(8, 16)
		bb := p.Get()
		bb.Grow(1024)
		_, _ = bb.Write([]byte("xyz"))
		p.Put(bb)
		assert.Equal(t, 3, bb.Len(), "dropped buffer must not be reset")
	})

	t.Run("concurrent use", func(t *testing.T) {
		p := NewByteBufferPool(16, 1024)
		var wg sync.WaitGroup
		for i := range 8 {
			wg.Add(1)
			go func(id int) {
				defer wg.Done()
				for range 100 {
					bb := p.Get()
					_, _ = bb.Write([]byte{byte(id)})
					assert.Equal(t, 1, bb.Len())
					p.Put(bb)
				}
			}(i)
		}
		wg.Wait()
	})
}

func TestDefaultPools(t *testing.T) {
	line := GetLineBuffer()
	require.NotNil(t, line)
	assert.Equal(t, 0, line.Len())
	PutLineBuffer(line)

	payload := GetPayloadBuffer()
	require.NotNil(t, payload)
	assert.Equal(t, 0, payload.Len())
	PutPayloadBuffer(payload)
}
