// Package backend provides scripted Transport implementations for
// tests, benchmarks, and the CLI's offline demo mode.
package backend

import (
	"context"
	"io"
	"sync"

	"github.com/blackmagic-traceview/swotrace/internal/constants"
	"github.com/blackmagic-traceview/swotrace/internal/interfaces"
)

// Tape replays a fixed byte stream as a sequence of frames, chunked to
// at most constants.FrameSize bytes each, simulating a recorded SWO
// capture played back through the same transport reader as a live
// probe. Unlike a real transport it never short-reads: each ReadFrame
// call returns one full chunk (or the final partial one) until the
// tape is exhausted, at which point it returns io.EOF.
type Tape struct {
	mu        sync.Mutex
	data      []byte
	offset    int
	timestamp float64
	step      float64
}

// NewTape creates a tape over data. Each returned frame's timestamp
// advances by step seconds from startTime, so a decoder's carry-cache
// reassembly can be exercised against deterministic, repeatable
// arrival times.
func NewTape(data []byte, startTime, step float64) *Tape {
	return &Tape{data: data, timestamp: startTime, step: step}
}

// ReadFrame implements interfaces.Transport.
func (t *Tape) ReadFrame(ctx context.Context) ([]byte, float64, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.offset >= len(t.data) {
		return nil, 0, io.EOF
	}

	end := t.offset + constants.FrameSize
	if end > len(t.data) {
		end = len(t.data)
	}
	chunk := t.data[t.offset:end]
	t.offset = end

	ts := t.timestamp
	t.timestamp += t.step
	return chunk, ts, nil
}

// Close implements interfaces.Transport. A tape has no underlying
// handle to release.
func (t *Tape) Close() error {
	return nil
}

// Remaining returns the number of bytes not yet delivered.
func (t *Tape) Remaining() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.data) - t.offset
}

var _ interfaces.Transport = (*Tape)(nil)
