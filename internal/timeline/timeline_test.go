package timeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blackmagic-traceview/swotrace/internal/constants"
)

type allEnabled struct{}

func (allEnabled) GetEnabled(int) bool { return true }

type onlyChannel struct{ ch int }

func (o onlyChannel) GetEnabled(ch int) bool { return ch == o.ch }

func TestTimeline_EmptyStoreClearsMarks(t *testing.T) {
	tl := New()
	tl.Rebuild([]Line{{Channel: 0, Timestamp: 1}}, allEnabled{}, 0)
	require.NotEmpty(t, tl.Marks(0))

	tl.Rebuild(nil, allEnabled{}, 0)
	assert.Empty(t, tl.Marks(0))
	assert.Equal(t, uint32(0), tl.MaxCount())
}

func TestTimeline_MonotonicAndCollapsing(t *testing.T) {
	tl := New()
	tl.SetZoom(100, 1, 1) // microsecond scale, 100px/tick, widen deltas visibly
	lines := []Line{
		{Channel: 0, Timestamp: 0},
		{Channel: 0, Timestamp: 0.000000001}, // pos 0.1, collapses into the first mark
		{Channel: 0, Timestamp: 10},          // far apart, new mark
	}
	tl.Rebuild(lines, allEnabled{}, 0)

	marks := tl.Marks(0)
	require.Len(t, marks, 2)
	assert.Equal(t, uint32(2), marks[0].Count)
	assert.GreaterOrEqual(t, marks[1].Pos-marks[0].Pos, float32(0.5))
}

func TestTimeline_DisabledChannelSkipped(t *testing.T) {
	tl := New()
	lines := []Line{{Channel: 0, Timestamp: 0}, {Channel: 1, Timestamp: 1}}
	tl.Rebuild(lines, onlyChannel{ch: 1}, 0)

	assert.Empty(t, tl.Marks(0))
	assert.NotEmpty(t, tl.Marks(1))
}

func TestTimeline_ZoomRoundTrip(t *testing.T) {
	tl := New()
	spacing, scale, delta := tl.MarkSpacing(), tl.MarkScale(), tl.MarkDelta()

	tl.ZoomIn()
	tl.ZoomOut()

	// Not exact equality (documented in spec §8): the 1.5x factor does
	// not invert cleanly across a rescale boundary. Assert "close".
	assert.InEpsilon(t, spacing, tl.MarkSpacing(), 0.2)
	assert.Equal(t, scale, tl.MarkScale())
	assert.Equal(t, delta, tl.MarkDelta())
}

func TestTimeline_ZoomInReachesMicrosecondScale(t *testing.T) {
	tl := New()
	for i := 0; i < 5; i++ {
		tl.ZoomIn()
	}
	assert.Equal(t, constants.MarkScale.Microseconds, tl.MarkScale(), "five zoom-ins from the default ms scale must rescale down a tier")
	assert.Equal(t, constants.MaxMarkDelta, tl.MarkDelta())
}

func TestTimeline_ZoomStaysWithinBounds(t *testing.T) {
	tl := New()
	for i := 0; i < 50; i++ {
		tl.ZoomIn()
	}
	assert.GreaterOrEqual(t, tl.MarkDelta(), constants.MinMarkDelta)
	assert.LessOrEqual(t, tl.MarkDelta(), constants.MaxMarkDelta)

	for i := 0; i < 50; i++ {
		tl.ZoomOut()
	}
	assert.GreaterOrEqual(t, tl.MarkSpacing(), constants.MinMarkSpacing)
}
