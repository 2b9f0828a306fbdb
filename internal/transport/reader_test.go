package transport

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blackmagic-traceview/swotrace/internal/ring"
)

// fakeTransport replays a fixed list of frames, then blocks until its
// context is cancelled (simulating a transport waiting on more data).
type fakeTransport struct {
	mu     sync.Mutex
	frames [][]byte
	idx    int
	closed bool
}

func (f *fakeTransport) ReadFrame(ctx context.Context) ([]byte, float64, error) {
	f.mu.Lock()
	if f.idx < len(f.frames) {
		frame := f.frames[f.idx]
		f.idx++
		f.mu.Unlock()
		return frame, 1.0, nil
	}
	f.mu.Unlock()

	<-ctx.Done()
	return nil, 0, ctx.Err()
}

func (f *fakeTransport) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

type wakeCounter struct {
	mu    sync.Mutex
	count int
}

func (w *wakeCounter) Wake() {
	w.mu.Lock()
	w.count++
	w.mu.Unlock()
}
func (w *wakeCounter) MonoClock() float64 { return 0 }
func (w *wakeCounter) AppHandle() any     { return nil }

func (w *wakeCounter) Count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.count
}

func TestReader_EnqueuesFramesAndWakes(t *testing.T) {
	ft := &fakeTransport{frames: [][]byte{{0x01, 0x48, 0x01, 0x0A}, {0x02, 0x00, 0x00}}}
	r := ring.NewDefault()
	hooks := &wakeCounter{}

	reader := NewReader(ft, r, hooks, nil)
	reader.Start()

	require.Eventually(t, func() bool { return hooks.Count() >= 2 }, time.Second, 5*time.Millisecond)
	reader.Stop()

	f1, ok := r.Dequeue()
	require.True(t, ok)
	assert.Equal(t, []byte{0x01, 0x48, 0x01, 0x0A}, f1.Bytes[:f1.Len])

	f2, ok := r.Dequeue()
	require.True(t, ok)
	assert.Equal(t, []byte{0x02, 0x00, 0x00}, f2.Bytes[:f2.Len])
}

func TestReader_StopIsCooperativeAndPrompt(t *testing.T) {
	ft := &fakeTransport{}
	r := ring.NewDefault()

	reader := NewReader(ft, r, nil, nil)
	reader.Start()

	start := time.Now()
	reader.Stop()
	assert.Less(t, time.Since(start), time.Second)
}

func TestReader_StopDoesNotCloseTransport(t *testing.T) {
	ft := &fakeTransport{}
	r := ring.NewDefault()
	reader := NewReader(ft, r, nil, nil)
	reader.Start()
	reader.Stop()
	assert.False(t, ft.closed) // Reader does not own Close(); the session does.
}
