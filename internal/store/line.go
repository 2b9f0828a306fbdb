package store

import (
	"fmt"
	"strings"

	"github.com/blackmagic-traceview/swotrace/internal/constants"
)

// Line is one decoded trace entry (spec §3's TraceLine). The teacher's
// intrusive linked-list-with-sentinel is replaced, per spec §9, with a
// plain struct held in a contiguous growable slice on Store; the tail
// is simply the slice's last element.
type Line struct {
	Channel   int
	Timestamp float64
	TimeFmt   string

	text   []byte
	sealed bool
}

func newLine(channel int, timestamp float64, timeFmt string) *Line {
	return &Line{
		Channel:   channel,
		Timestamp: timestamp,
		TimeFmt:   timeFmt,
		text:      make([]byte, 0, constants.LineInitialCapacity),
	}
}

// Sealed reports whether the line will never be appended to again.
func (l *Line) Sealed() bool {
	return l.sealed
}

// Seal marks the line as closed. Idempotent.
func (l *Line) Seal() {
	l.sealed = true
}

// Text returns the line's decoded text.
func (l *Line) Text() string {
	return string(l.text)
}

// Len returns the current text length in bytes.
func (l *Line) Len() int {
	return len(l.text)
}

// AppendByte appends one byte to the line's buffer, growing it by
// doubling as needed (spec §3: initial 32 bytes, hard cap 256). It
// refuses to append once sealed or once the hard cap is reached; the
// caller (the decoder's coalescing policy) is responsible for sealing
// and starting a new line when this returns false.
func (l *Line) AppendByte(b byte) bool {
	if l.sealed || len(l.text) >= constants.LineHardCap {
		return false
	}
	l.text = append(l.text, b)
	if len(l.text) >= constants.LineHardCap {
		l.sealed = true
	}
	return true
}

// AppendText appends a decoded message in one shot (used by the CTF
// path, which delivers whole messages rather than individual bytes).
// It still respects the hard cap and seals the line immediately after,
// since a CTF message is never a candidate for further coalescing.
func (l *Line) AppendText(s string) {
	remaining := constants.LineHardCap - len(l.text)
	if remaining <= 0 {
		l.sealed = true
		return
	}
	if len(s) > remaining {
		s = s[:remaining]
	}
	l.text = append(l.text, s...)
	l.sealed = true
}

func formatTimeFmt(relative float64) string {
	return fmt.Sprintf("%.3f", relative)
}

// matchesSubstring performs the case-insensitive substring test Find uses.
func (l *Line) matchesSubstring(needle string) bool {
	return strings.Contains(strings.ToLower(l.Text()), strings.ToLower(needle))
}
