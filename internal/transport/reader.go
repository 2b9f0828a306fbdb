package transport

import (
	"context"
	"time"

	"github.com/blackmagic-traceview/swotrace/internal/constants"
	"github.com/blackmagic-traceview/swotrace/internal/interfaces"
	"github.com/blackmagic-traceview/swotrace/internal/ring"
)

// Reader is the §4.3 reader thread: a dedicated goroutine that drains a
// Transport into a packet ring and wakes the UI after every successful
// enqueue. Cancellation is cooperative: Stop cancels the context passed
// to ReadFrame, and the loop exits as soon as the in-flight read
// returns (the USB and TCP transports both bound that wait to a short
// retry/timeout interval so this honors §5's "exit within ≤1 second").
type Reader struct {
	transport interfaces.Transport
	ring      *ring.Ring
	hooks     interfaces.GUIHooks
	logger    interfaces.Logger

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// NewReader wires a transport to a ring. hooks and logger may be nil.
func NewReader(t interfaces.Transport, r *ring.Ring, hooks interfaces.GUIHooks, logger interfaces.Logger) *Reader {
	ctx, cancel := context.WithCancel(context.Background())
	return &Reader{
		transport: t,
		ring:      r,
		hooks:     hooks,
		logger:    logger,
		ctx:       ctx,
		cancel:    cancel,
		done:      make(chan struct{}),
	}
}

// Start launches the reader goroutine. It returns immediately.
func (r *Reader) Start() {
	go r.loop()
}

// Stop requests cooperative cancellation and blocks until the reader
// goroutine has exited or the grace period elapses, whichever is first.
func (r *Reader) Stop() {
	r.cancel()
	select {
	case <-r.done:
	case <-time.After(constants.ReaderShutdownGrace):
		if r.logger != nil {
			r.logger.Printf("transport reader did not exit within grace period")
		}
	}
}

func (r *Reader) loop() {
	defer close(r.done)

	for {
		if r.ctx.Err() != nil {
			return
		}

		frame, ts, err := r.transport.ReadFrame(r.ctx)
		if err != nil {
			if r.logger != nil {
				r.logger.Printf("transport reader exiting: %v", err)
			}
			return
		}

		if len(frame) == 0 {
			// Short read or timeout: §4.3's retry path.
			select {
			case <-r.ctx.Done():
				return
			case <-time.After(constants.USBShortReadRetryDelay):
			}
			continue
		}

		r.ring.Enqueue(frame, ts)
		if r.hooks != nil {
			r.hooks.Wake()
		}
	}
}
