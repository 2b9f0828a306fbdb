package swotrace

import (
	"context"
	"io"
	"sync"

	"github.com/blackmagic-traceview/swotrace/internal/interfaces"
)

// MockTransport is a programmable byte-stream source implementing
// interfaces.Transport, generalized from the teacher's MockBackend:
// same call-count tracking under a sync.RWMutex, same "Is*"/"*Calls"
// testing-utility surface, adapted from a block-device backend to a
// frame source.
type MockTransport struct {
	mu        sync.RWMutex
	frames    [][]byte
	timestamp float64
	idx       int
	closed    bool
	afterErr  error // returned once frames are exhausted; nil blocks on ctx

	readCalls  int
	closeCalls int
}

// NewMockTransport returns a transport that replays frames in order,
// each stamped with timestamp. Once exhausted, ReadFrame blocks on the
// context until cancelled unless SetAfterError configures otherwise.
func NewMockTransport(timestamp float64, frames ...[]byte) *MockTransport {
	return &MockTransport{frames: frames, timestamp: timestamp}
}

// SetAfterError configures ReadFrame to return err once every queued
// frame has been delivered, instead of blocking on ctx.
func (m *MockTransport) SetAfterError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.afterErr = err
}

// ReadFrame implements interfaces.Transport.
func (m *MockTransport) ReadFrame(ctx context.Context) ([]byte, float64, error) {
	m.mu.Lock()
	m.readCalls++
	if m.closed {
		m.mu.Unlock()
		return nil, 0, io.ErrClosedPipe
	}
	if m.idx < len(m.frames) {
		frame := m.frames[m.idx]
		m.idx++
		ts := m.timestamp
		m.mu.Unlock()
		return frame, ts, nil
	}
	afterErr := m.afterErr
	m.mu.Unlock()

	if afterErr != nil {
		return nil, 0, afterErr
	}
	<-ctx.Done()
	return nil, 0, ctx.Err()
}

// Close implements interfaces.Transport.
func (m *MockTransport) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	m.closeCalls++
	return nil
}

// IsClosed reports whether Close has been called.
func (m *MockTransport) IsClosed() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.closed
}

// ReadCalls returns the number of times ReadFrame has been called.
func (m *MockTransport) ReadCalls() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.readCalls
}

// CloseCalls returns the number of times Close has been called.
func (m *MockTransport) CloseCalls() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.closeCalls
}

// Remaining returns the number of queued frames not yet delivered.
func (m *MockTransport) Remaining() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.frames) - m.idx
}

var _ interfaces.Transport = (*MockTransport)(nil)
