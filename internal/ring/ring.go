// Package ring implements the bounded single-producer/single-consumer
// packet ring described in spec §4.2: the transport reader goroutine is
// the sole producer, the decoder is the sole consumer, and the two
// sides communicate through plain head/tail cursors published with
// atomic release/acquire ordering rather than a mutex.
package ring

import (
	"sync/atomic"

	"github.com/blackmagic-traceview/swotrace/internal/constants"
)

// Frame is one transport frame: up to constants.FrameSize raw bytes
// stamped with the monotonic timestamp the reader captured it at.
// Ownership transfers from producer to consumer when head advances.
type Frame struct {
	Bytes     [constants.FrameSize]byte
	Len       int
	Timestamp float64
}

// Ring is a fixed-capacity SPSC queue of Frame. The zero value is not
// usable; construct with New.
type Ring struct {
	slots    []Frame
	cap      uint32
	head     atomic.Uint32 // consumer-owned
	tail     atomic.Uint32 // producer-owned
	overflow atomic.Uint32 // producer-owned
}

// New constructs a ring with the given capacity. One slot is always
// reserved to distinguish full from empty, so at most capacity-1
// frames are visible to the consumer at once.
func New(capacity int) *Ring {
	if capacity < 2 {
		capacity = 2
	}
	return &Ring{
		slots: make([]Frame, capacity),
		cap:   uint32(capacity),
	}
}

// NewDefault constructs a ring sized per constants.RingCapacity.
func NewDefault() *Ring {
	return New(constants.RingCapacity)
}

// Enqueue copies bytes into the next slot and publishes it to the
// consumer. Called only from the transport reader goroutine. If the
// ring is full the frame is dropped (drop-newest) and the overflow
// counter is incremented; Enqueue reports this via its bool result.
func (r *Ring) Enqueue(bytes []byte, timestamp float64) bool {
	tail := r.tail.Load()
	next := (tail + 1) % r.cap
	if next == r.head.Load() {
		r.overflow.Add(1)
		return false
	}

	slot := &r.slots[tail]
	slot.Len = copy(slot.Bytes[:], bytes)
	slot.Timestamp = timestamp

	// Release: every write above must be visible to the consumer
	// before it observes the new tail.
	r.tail.Store(next)
	return true
}

// Dequeue returns the oldest unread frame and advances head. Called
// only from the decoder. Returns ok=false if the ring is empty.
func (r *Ring) Dequeue() (Frame, bool) {
	head := r.head.Load()
	// Acquire: reading tail after head establishes happens-before with
	// the producer's release store in Enqueue.
	if head == r.tail.Load() {
		return Frame{}, false
	}

	frame := r.slots[head]
	r.head.Store((head + 1) % r.cap)
	return frame, true
}

// OverflowTakeAndReset returns the overflow count accumulated since the
// last call and resets it to zero. Resetting on every decode pass means
// a paused (disabled) channel does not accrue a misleading error count.
func (r *Ring) OverflowTakeAndReset() uint32 {
	return r.overflow.Swap(0)
}

// Len reports the number of frames currently queued. For diagnostics
// only; the producer and consumer never need it to make progress.
func (r *Ring) Len() int {
	tail := r.tail.Load()
	head := r.head.Load()
	if tail >= head {
		return int(tail - head)
	}
	return int(r.cap - head + tail)
}

// Capacity returns the usable capacity (one less than the slot count).
func (r *Ring) Capacity() int {
	return int(r.cap) - 1
}
