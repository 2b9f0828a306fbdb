package swotrace

import "github.com/blackmagic-traceview/swotrace/internal/constants"

// Re-exported sizing constants a caller of the public API needs without
// reaching into internal/constants directly.
const (
	FrameSize       = constants.FrameSize
	RingCapacity    = constants.RingCapacity
	ChannelCount    = constants.ChannelCount
	LineHardCap     = constants.LineHardCap
	DefaultWordSize = 1
)
