// Package registry implements the 32-slot channel registry (spec §4.1).
// Writes come from the UI thread, reads from the decoder; per §5 the
// decoder tolerates observing a stale enabled flag or name (worst case
// one packet routed against stale state), so enabled uses a relaxed
// atomic and name/color use copy-on-read under a short critical section
// rather than a shared lock across the whole registry.
package registry

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/blackmagic-traceview/swotrace/internal/constants"
)

// Color is a packed RGBA color, one byte per channel.
type Color struct {
	R, G, B, A uint8
}

type slot struct {
	enabled atomic.Bool
	mu      sync.Mutex // guards name/color only
	name    string
	color   Color
}

// Registry holds the fixed 32 channel slots.
type Registry struct {
	slots [constants.ChannelCount]slot
}

// New returns a registry with every channel disabled and named by index.
func New() *Registry {
	r := &Registry{}
	for i := range r.slots {
		r.slots[i].name = fmt.Sprintf("%d", i)
	}
	return r
}

func inRange(i int) bool {
	return i >= 0 && i < constants.ChannelCount
}

// Set configures a channel in one call: enabled, display name (empty
// means "stringify index"), and color.
func (r *Registry) Set(i int, enabled bool, name string, color Color) {
	if !inRange(i) {
		return
	}
	r.SetEnabled(i, enabled)
	r.SetName(i, name)
	r.SetColor(i, color)
}

// GetEnabled reports whether channel i is enabled. Out-of-range indices
// report disabled.
func (r *Registry) GetEnabled(i int) bool {
	if !inRange(i) {
		return false
	}
	return r.slots[i].enabled.Load()
}

// SetEnabled enables or disables channel i.
func (r *Registry) SetEnabled(i int, enabled bool) {
	if !inRange(i) {
		return
	}
	r.slots[i].enabled.Store(enabled)
}

// GetName returns a stable copy of channel i's display name, truncated
// to constants.ChannelNameMaxLen. Out-of-range indices return "".
func (r *Registry) GetName(i int) string {
	if !inRange(i) {
		return ""
	}
	s := &r.slots[i]
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.name
}

// SetName sets channel i's display name. An empty name resets it to the
// stringified index, matching the "null name" rule in spec §4.1.
func (r *Registry) SetName(i int, name string) {
	if !inRange(i) {
		return
	}
	if name == "" {
		name = fmt.Sprintf("%d", i)
	}
	if len(name) > constants.ChannelNameMaxLen {
		name = name[:constants.ChannelNameMaxLen]
	}
	s := &r.slots[i]
	s.mu.Lock()
	s.name = name
	s.mu.Unlock()
}

// GetColor returns channel i's display color.
func (r *Registry) GetColor(i int) Color {
	if !inRange(i) {
		return Color{}
	}
	s := &r.slots[i]
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.color
}

// SetColor sets channel i's display color.
func (r *Registry) SetColor(i int, color Color) {
	if !inRange(i) {
		return
	}
	s := &r.slots[i]
	s.mu.Lock()
	s.color = color
	s.mu.Unlock()
}
