// Package interfaces holds the narrow contracts the swotrace core
// consumes from its collaborators (the transport, the CTF decoder, the
// GUI toolkit) and the cross-cutting Logger/Observer hooks. They live
// apart from the root package to avoid an import cycle between it and
// internal/transport, internal/decoder, and internal/ctf.
package interfaces

import "context"

// Transport is a source of raw transport frames: either a USB bulk IN
// endpoint or a connected TCP stream. ReadFrame blocks until a frame of
// up to constants.FrameSize bytes is available, the context is
// cancelled, or the underlying device/socket fails.
type Transport interface {
	// ReadFrame blocks for the next frame and returns its bytes (never
	// more than constants.FrameSize) and the monotonic timestamp it was
	// captured at. A zero-length slice with a nil error means "no data
	// this attempt, keep polling" (used by the USB short-read/timeout
	// retry path); io.EOF or any other error means the transport is
	// done and the reader goroutine should exit.
	ReadFrame(ctx context.Context) (frame []byte, timestamp float64, err error)

	// Close releases the underlying device handle or socket. Safe to
	// call more than once.
	Close() error
}

// CTFDecoder is the narrow interface the decoder consumes from the
// external Common Trace Format collaborator (§4.6). The real decoder
// lives outside this module; internal/ctf ships a no-op implementation
// so the core builds and tests without it.
type CTFDecoder interface {
	// StreamIsActive reports whether the given channel is registered as
	// a CTF stream rather than plain text.
	StreamIsActive(channel int) bool

	// Decode feeds raw stimulus bytes for a channel into the CTF
	// decoder. It returns the number of messages produced, or a
	// negative value on a CTF-level decode error.
	Decode(data []byte, channel int) (messagesProduced int)

	// PeekMessage returns the oldest undelivered decoded message
	// without removing it, or ok=false if the message stack is empty.
	PeekMessage() (streamID int, timestamp float64, message string, ok bool)

	// PopMessage removes the message last returned by PeekMessage.
	PopMessage()

	// Reset clears any partially-decoded state, called after an ITM
	// framing error so corruption does not propagate across a header
	// recovery point.
	Reset()
}

// GUIHooks are the handful of calls the core makes into the GUI
// collaborator. The core never draws anything itself.
type GUIHooks interface {
	// Wake rouses the UI/decoder thread, called from the transport
	// reader goroutine after every successful enqueue.
	Wake()

	// MonoClock returns the current time in seconds from a monotonic
	// source, used to timestamp status messages raised outside the
	// transport reader's own clock.
	MonoClock() float64

	// AppHandle returns an opaque handle passed back to the transport
	// on wake; the core never interprets it.
	AppHandle() any
}

// Logger is satisfied by internal/logging.Logger and by test doubles.
type Logger interface {
	Printf(format string, args ...any)
	Debugf(format string, args ...any)
}

// Observer receives decode-time events for metrics collection.
// Implementations must be safe for concurrent use: ObserveFrame and
// ObservePacketError are called from the decoder on the UI thread, but
// a host process may read snapshots concurrently from another goroutine.
type Observer interface {
	// ObserveFrame is called once per decoded transport frame.
	ObserveFrame(bytes int, latencyNs uint64)

	// ObserveLine is called once per TraceLine sealed.
	ObserveLine()

	// ObserveSample is called once per PC sample bucketed in profile mode.
	ObserveSample()

	// ObserveOverflow is called when the packet ring reports dropped frames.
	ObserveOverflow(count uint32)

	// ObservePacketError is called on an invalid ITM header.
	ObservePacketError()
}
