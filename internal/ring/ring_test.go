package ring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRing_FIFO(t *testing.T) {
	r := New(8)
	for i := 0; i < 5; i++ {
		ok := r.Enqueue([]byte{byte(i)}, float64(i))
		require.True(t, ok)
	}

	for i := 0; i < 5; i++ {
		frame, ok := r.Dequeue()
		require.True(t, ok)
		assert.Equal(t, byte(i), frame.Bytes[0])
		assert.Equal(t, float64(i), frame.Timestamp)
	}

	_, ok := r.Dequeue()
	assert.False(t, ok, "ring should be empty")
}

func TestRing_Overflow(t *testing.T) {
	r := NewDefault() // capacity 128, 127 usable slots

	accepted := 0
	for i := 0; i < 200; i++ {
		if r.Enqueue([]byte{byte(i)}, 0) {
			accepted++
		}
	}

	assert.Equal(t, 127, accepted)
	assert.Equal(t, uint32(73), r.OverflowTakeAndReset())

	// Overflow counter resets after being read.
	assert.Equal(t, uint32(0), r.OverflowTakeAndReset())
}

func TestRing_EmptyFullPredicate(t *testing.T) {
	r := New(4) // 3 usable slots
	assert.Equal(t, 3, r.Capacity())

	require.True(t, r.Enqueue([]byte{1}, 0))
	require.True(t, r.Enqueue([]byte{2}, 0))
	require.True(t, r.Enqueue([]byte{3}, 0))
	assert.False(t, r.Enqueue([]byte{4}, 0), "ring should report full at capacity")

	_, ok := r.Dequeue()
	require.True(t, ok)
	assert.True(t, r.Enqueue([]byte{4}, 0), "slot freed by dequeue should be reusable")
}

func TestRing_OverflowResetsEachDecodePass(t *testing.T) {
	r := New(2) // 1 usable slot
	require.True(t, r.Enqueue([]byte{1}, 0))
	assert.False(t, r.Enqueue([]byte{2}, 0))
	assert.Equal(t, uint32(1), r.OverflowTakeAndReset())

	// Paused consumer: decoder still calls this every pass even with no
	// new overflow, and it must read back zero rather than accumulate.
	assert.Equal(t, uint32(0), r.OverflowTakeAndReset())
}
