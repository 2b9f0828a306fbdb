package timeline

import "github.com/blackmagic-traceview/swotrace/internal/constants"

// ZoomIn implements spec §4.8's zoom-in state machine over
// mark_spacing/mark_delta/mark_scale. It does not rebuild; callers
// rebuild afterward per the spec's "rebuild after every zoom operation"
// rule, keeping the pure state transition separately testable.
func (t *Timeline) ZoomIn() {
	t.markSpacing *= constants.ZoomFactor
	if t.markSpacing > constants.ZoomInHighSpacing && (t.markDelta > constants.MinMarkDelta || t.markScale > constants.MarkScale.Microseconds) {
		t.markDelta /= 10
		t.markSpacing /= 10
		if t.markDelta == 0 && t.markScale >= constants.MarkScale.Milliseconds {
			t.markScale /= 1000
			t.markDelta = constants.MaxMarkDelta
		}
	}
	t.clampZoomState()
}

// ZoomOut implements the symmetric zoom-out transition.
func (t *Timeline) ZoomOut() {
	if t.markSpacing > constants.ZoomOutLowSpacing || t.markScale < constants.MarkScale.Minutes || t.markDelta == constants.MinMarkDelta {
		t.markSpacing /= constants.ZoomFactor
	}
	if t.markSpacing < constants.ZoomOutRescaleThreshold {
		t.markDelta *= 10
		t.markSpacing *= 10
		if t.markScale < constants.MarkScale.Seconds && t.markDelta >= 1000 {
			t.markScale *= 1000
			t.markDelta /= 1000
		}
	}
	t.clampZoomState()
}

// clampZoomState keeps mark_delta within its documented bounds and
// mark_spacing from collapsing to an unusable tick size; the zoom
// arithmetic above can otherwise walk mark_delta to 0 or mark_spacing
// below the minimum on repeated zooms at the edge of a scale tier.
func (t *Timeline) clampZoomState() {
	if t.markDelta < constants.MinMarkDelta {
		t.markDelta = constants.MinMarkDelta
	}
	if t.markDelta > constants.MaxMarkDelta {
		t.markDelta = constants.MaxMarkDelta
	}
	if t.markSpacing < constants.MinMarkSpacing {
		t.markSpacing = constants.MinMarkSpacing
	}
}

// SetZoom overrides the zoom state directly (e.g. to restore a
// persisted UI setting). The three values must be one of the
// combinations spec §4.8 permits; callers are responsible for that.
func (t *Timeline) SetZoom(spacing float64, scale int64, delta int) {
	t.markSpacing = spacing
	t.markScale = scale
	t.markDelta = delta
}
