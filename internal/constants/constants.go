// Package constants holds the fixed sizes and timing thresholds that
// shape the SWO trace-ingestion pipeline. They are pulled out of the
// components that use them so the ring, decoder, store, and timeline
// agree on one set of numbers.
package constants

import "time"

// Wire and ring shape.
const (
	// FrameSize is the size in bytes of one transport frame: a USB bulk
	// IN packet is at most 64 bytes, and the TCP reader is capped to
	// the same size so both variants feed the ring identically.
	FrameSize = 64

	// RingCapacity is the number of slots in the packet ring. One slot
	// is always kept empty to distinguish full from empty with plain
	// head/tail cursors, so at most RingCapacity-1 frames are visible.
	RingCapacity = 128

	// CarryCacheSize is the maximum number of header+payload bytes that
	// can straddle a frame boundary: one header byte plus up to 4
	// payload bytes.
	CarryCacheSize = 5

	// ChannelCount is the number of ITM stimulus channels.
	ChannelCount = 32

	// ChannelNameMaxLen bounds a channel's display name.
	ChannelNameMaxLen = 29
)

// Trace line shape.
const (
	// LineInitialCapacity is the size of a new TraceLine's text buffer.
	LineInitialCapacity = 32

	// LineHardCap is the byte length at which a line is sealed and a
	// new one is started regardless of channel or timing.
	LineHardCap = 256

	// ContinuationTimeout is the maximum gap between two emissions on
	// the same channel before the tail line is sealed.
	ContinuationTimeout = 100 * time.Millisecond
)

// Timeline shape.
const (
	// MarkCollapseEpsilon is the minimum distance in display units
	// between two adjacent marks; closer arrivals collapse into one
	// mark with an incremented count.
	MarkCollapseEpsilon = 0.5

	// MarkInitialCapacity is the size of a channel's mark slice on
	// first allocation.
	MarkInitialCapacity = 32

	// MinMarkSpacing is the lowest permitted mark_spacing, in pixels.
	MinMarkSpacing = 10.0

	// ZoomFactor is the multiplicative step applied to mark_spacing on
	// each zoom in/out.
	ZoomFactor = 1.5

	// ZoomInHighSpacing triggers a scale-down when crossed on zoom in.
	ZoomInHighSpacing = 700.0

	// ZoomOutLowSpacing gates zoom out: mark_spacing is divided only
	// while above it, unless mark_scale is below minutes or mark_delta
	// is 1.
	ZoomOutLowSpacing = 45.0

	// ZoomOutRescaleThreshold is the spacing below which zoom out
	// multiplies mark_delta/mark_spacing by 10.
	ZoomOutRescaleThreshold = 70.0

	// MinMarkDelta and MaxMarkDelta bound mark_delta.
	MinMarkDelta = 1
	MaxMarkDelta = 100
)

// MarkScale enumerates the permitted mark_scale values (microseconds per
// tick unit): microseconds, milliseconds, seconds, minutes.
var MarkScale = struct {
	Microseconds int64
	Milliseconds int64
	Seconds      int64
	Minutes      int64
}{
	Microseconds: 1,
	Milliseconds: 1_000,
	Seconds:      1_000_000,
	Minutes:      60_000_000,
}

// Transport retry behavior (§4.3).
const (
	// USBShortReadRetryDelay is the sleep applied after a short read or
	// timeout on the USB bulk IN endpoint before retrying.
	USBShortReadRetryDelay = 50 * time.Millisecond

	// ReaderShutdownGrace bounds how long trace_close waits for the
	// reader goroutine to observe cancellation before giving up on a
	// clean join.
	ReaderShutdownGrace = 1 * time.Second
)
