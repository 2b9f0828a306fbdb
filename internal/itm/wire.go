// Package itm implements the ARM ITM stimulus/PC-sample wire format
// (spec §4.4, §4.5, §6): header bit decode, the PC-sample and overflow
// markers, and the tagged carry cache that lets a packet straddle a
// transport frame boundary.
package itm

// Header byte layout: bits [2:0] select the payload size, bits [7:3]
// are the stimulus channel number.
const (
	// HeaderPCSample is the fixed 5-byte PC-sample packet header.
	HeaderPCSample = 0x17

	// HeaderOverflow is the ITM overflow marker, one byte, no payload.
	HeaderOverflow = 0x70
)

// ValidHeader reports whether h's size-selector bits encode a payload
// size of 1, 2, or 4 bytes.
func ValidHeader(h byte) bool {
	switch h & 0x07 {
	case 1, 2, 3:
		return true
	default:
		return false
	}
}

// Channel extracts the stimulus channel number (0..31) from a header byte.
func Channel(h byte) int {
	return int((h >> 3) & 0x1F)
}

// Len returns the payload length encoded by a header byte: 1, 2, or 4
// bytes. Callers must check ValidHeader first; for an invalid header
// Len returns the raw size-selector value (0 or 4..7), which is not a
// payload length.
func Len(h byte) int {
	switch h & 0x07 {
	case 3:
		return 4
	default:
		return int(h & 0x07)
	}
}

// State bundles the decoder's 5-byte carry cache (§3's DecoderState)
// and the data-word-size policy that governs when LEN drives a grow.
type State struct {
	Carry    Carry
	WordSize int  // one of 1, 2, 4
	AutoGrow bool
}

// NewState returns a fresh decoder state with the given starting word
// size and auto-grow policy.
func NewState(wordSize int, autoGrow bool) State {
	return State{WordSize: wordSize, AutoGrow: autoGrow}
}

// ApplyWordSizePolicy implements the shared rule from §4.4 step 1 and
// §4.5: if the packet's payload length exceeds the current word size
// and auto-grow is enabled, adopt the new size; otherwise this is a
// framing error.
func (s *State) ApplyWordSizePolicy(payloadLen int) (ok bool) {
	if payloadLen <= s.WordSize {
		return true
	}
	if !s.AutoGrow {
		return false
	}
	s.WordSize = payloadLen
	return true
}
