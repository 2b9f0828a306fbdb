// Package timeline implements the per-channel mark index used for
// zoomable trace visualization (spec §4.8): rebuild from the trace
// store with adaptive mark collapsing, and the logarithmic zoom
// discipline that governs mark_spacing/mark_scale/mark_delta.
package timeline

import (
	"github.com/blackmagic-traceview/swotrace/internal/constants"
)

// Mark is one bucketed arrival-time position on a channel's timeline.
type Mark struct {
	Pos   float32
	Count uint32
}

// Line is the minimal view of a store.Line the timeline needs; kept
// narrow so this package does not import internal/store.
type Line struct {
	Channel   int
	Timestamp float64
}

// ChannelEnabled reports whether a channel should contribute marks;
// internal/registry.Registry satisfies this via GetEnabled.
type ChannelEnabled interface {
	GetEnabled(channel int) bool
}

// Timeline holds the zoom configuration and the per-channel mark
// sequences rebuilt from the trace store.
type Timeline struct {
	marks    [constants.ChannelCount][]Mark
	maxCount uint32
	maxPos   float32

	markSpacing float64
	markScale   int64
	markDelta   int
}

// New returns a timeline with a sensible starting zoom level: one
// major tick per 100 pixels, one tick per millisecond.
func New() *Timeline {
	return &Timeline{
		markSpacing: 100,
		markScale:   constants.MarkScale.Milliseconds,
		markDelta:   1,
	}
}

// MarkSpacing, MarkScale, and MarkDelta expose the current zoom state.
func (t *Timeline) MarkSpacing() float64 { return t.markSpacing }
func (t *Timeline) MarkScale() int64     { return t.markScale }
func (t *Timeline) MarkDelta() int       { return t.markDelta }

// MaxCount returns the global maximum mark count across all channels.
func (t *Timeline) MaxCount() uint32 { return t.maxCount }

// MaxPos returns the maximum mark position across all channels.
func (t *Timeline) MaxPos() float32 { return t.maxPos }

// Marks returns channel i's mark sequence. Out-of-range channels return nil.
func (t *Timeline) Marks(i int) []Mark {
	if i < 0 || i >= constants.ChannelCount {
		return nil
	}
	return t.marks[i]
}

// Rebuild recomputes every channel's marks from scratch against lines,
// which must be in append (timestamp-ascending) order. limitLines, if
// > 0, caps how many of the most recent lines are scanned for marks
// (the visualization only needs a bounded recent window); the time
// origin is always the very first line regardless of that cap.
func (t *Timeline) Rebuild(lines []Line, enabled ChannelEnabled, limitLines int) {
	if len(lines) == 0 {
		for i := range t.marks {
			t.marks[i] = nil
		}
		t.maxCount = 0
		t.maxPos = 0
		return
	}

	origin := lines[0].Timestamp
	for i := range t.marks {
		t.marks[i] = t.marks[i][:0]
	}
	t.maxCount = 0
	t.maxPos = 0

	scanned := lines
	if limitLines > 0 && len(scanned) > limitLines {
		scanned = scanned[len(scanned)-limitLines:]
	}

	divisor := float64(t.markScale) * float64(t.markDelta)
	for _, line := range scanned {
		if enabled != nil && !enabled.GetEnabled(line.Channel) {
			continue
		}
		if line.Channel < 0 || line.Channel >= constants.ChannelCount {
			continue
		}
		pos := float32((line.Timestamp - origin) * t.markSpacing * 1_000_000 / divisor)
		t.addMark(line.Channel, pos)
		if pos > t.maxPos {
			t.maxPos = pos
		}
	}
}

func (t *Timeline) addMark(channel int, pos float32) {
	marks := t.marks[channel]
	if n := len(marks); n > 0 {
		last := &marks[n-1]
		if pos-last.Pos < constants.MarkCollapseEpsilon {
			last.Count++
			if last.Count > t.maxCount {
				t.maxCount = last.Count
			}
			return
		}
	}
	marks = append(marks, Mark{Pos: pos, Count: 1})
	if t.maxCount < 1 {
		t.maxCount = 1
	}
	t.marks[channel] = marks
}
