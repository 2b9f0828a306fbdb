// Package decoder implements the ITM packet decoder/profiler (spec
// §4.4, §4.5): a single-threaded consumer that drains the packet ring
// each frame and either appends to the trace store (text mode) or
// buckets PC samples into a histogram (profile mode). It owns the
// carry cache that lets a packet straddle a transport frame boundary
// and the data-word-size policy that governs when a too-wide payload
// grows it.
package decoder

import (
	"github.com/blackmagic-traceview/swotrace/internal/constants"
	"github.com/blackmagic-traceview/swotrace/internal/interfaces"
	"github.com/blackmagic-traceview/swotrace/internal/itm"
	"github.com/blackmagic-traceview/swotrace/internal/registry"
	"github.com/blackmagic-traceview/swotrace/internal/ring"
	"github.com/blackmagic-traceview/swotrace/internal/store"
)

// Decoder holds the two independent carry/word-size states (text and
// profile mode are driven by separate UI views and never interleave
// within a single process_text/process_profile call) plus the shared
// packet error counter spec §3's DecoderState tracks.
type Decoder struct {
	textState    itm.State
	profileState itm.State

	registry *registry.Registry
	store    *store.Store
	ctf      interfaces.CTFDecoder
	observer interfaces.Observer

	packetErrors uint32
}

// New returns a decoder wired to the given channel registry, trace
// store, and CTF collaborator. wordSize and autoGrow seed both the
// text and profile decode states.
func New(reg *registry.Registry, st *store.Store, ctf interfaces.CTFDecoder, obs interfaces.Observer, wordSize int, autoGrow bool) *Decoder {
	return &Decoder{
		textState:    itm.NewState(wordSize, autoGrow),
		profileState: itm.NewState(wordSize, autoGrow),
		registry:     reg,
		store:        st,
		ctf:          ctf,
		observer:     obs,
	}
}

// PacketErrors returns the running count of invalid-header/framing errors.
func (d *Decoder) PacketErrors() uint32 {
	return d.packetErrors
}

// ProcessText implements process_text: drains every frame currently
// queued, decoding each into the trace store when enabled, discarding
// otherwise. The ring's overflow counter is always taken and forwarded
// to the observer, which also zeroes it for a paused channel.
func (d *Decoder) ProcessText(r *ring.Ring, enabled bool) uint32 {
	var newLines uint32
	for {
		f, ok := r.Dequeue()
		if !ok {
			break
		}
		if d.observer != nil {
			d.observer.ObserveFrame(f.Len, 0)
		}
		if enabled {
			newLines += uint32(d.decodeFrameText(f.Bytes[:f.Len], f.Timestamp))
		}
	}
	if overflow := r.OverflowTakeAndReset(); overflow > 0 && d.observer != nil {
		d.observer.ObserveOverflow(overflow)
	}
	return newLines
}

// decodeFrameText runs the §4.4 decode loop against one frame and
// returns the number of lines emitted.
func (d *Decoder) decodeFrameText(frame []byte, ts float64) int {
	lines := 0
	pos := 0
	channel := -1

	var buf []byte

	// Step 1: resume a packet straddling the previous frame boundary.
	if !d.textState.Carry.Empty() {
		header := d.textState.Carry.Header()
		needed := itm.Len(header)
		if !d.textState.ApplyWordSizePolicy(needed) {
			d.packetError()
			return 0
		}
		prefixLen := d.textState.Carry.PrefixLen()
		buf = append(buf, d.textState.Carry.Prefix()...)
		remain := needed - prefixLen
		take := remain
		if take > len(frame) {
			take = len(frame)
		}
		buf = append(buf, frame[:take]...)
		channel = itm.Channel(header)
		d.textState.Carry.Clear()

		if take < remain {
			// Frame too short to complete even the carried packet
			// (only possible with an unusually small transport read);
			// re-carry and wait for the next one.
			d.textState.Carry.Set(header, buf)
			return 0
		}
		pos = take
	}

	// Step 2: walk the remaining packets in this frame.
	for pos < len(frame) {
		b := frame[pos]

		if b == itm.HeaderPCSample {
			if pos+5 <= len(frame) {
				pos += 5
				continue
			}
			// Fewer than 5 bytes remain: treated as an unknown packet
			// in text mode and skipped via the invalid-header rule.
			d.packetError()
			return lines
		}

		if !itm.ValidHeader(b) {
			d.packetError()
			return lines
		}

		newChan := itm.Channel(b)
		length := itm.Len(b)

		if newChan != channel && len(buf) > 0 {
			lines += d.emit(channel, buf, ts)
			buf = buf[:0]
		}

		remaining := len(frame) - pos
		if length+1 > remaining {
			d.textState.Carry.Set(b, frame[pos+1:])
			pos = len(frame)
			break
		}

		payload := frame[pos+1 : pos+1+length]
		if !d.textState.ApplyWordSizePolicy(length) {
			d.packetError()
			return lines
		}
		channel = newChan
		buf = append(buf, payload...)
		pos += length + 1
	}

	// Step 3: flush whatever remains at frame end.
	if len(buf) > 0 && channel >= 0 && channel < constants.ChannelCount {
		lines += d.emit(channel, buf, ts)
	}
	return lines
}

// emit implements tracestring_add: route bytes to the CTF decoder if
// the channel is a registered stream, otherwise apply the plain-text
// coalescing policy. Returns the number of lines created.
func (d *Decoder) emit(channel int, payload []byte, ts float64) int {
	if d.registry != nil && !d.registry.GetEnabled(channel) {
		return 0
	}
	if d.ctf != nil && d.ctf.StreamIsActive(channel) {
		return d.emitCTF(channel, payload, ts)
	}
	return d.emitPlain(channel, payload, ts)
}

func (d *Decoder) emitCTF(channel int, payload []byte, ts float64) int {
	n := d.ctf.Decode(payload, channel)
	if n < 0 {
		// A negative return is a CTF-level decode error. It is not
		// logged or counted here, and it does not affect ITM decoder
		// state (§4.6).
		return 0
	}
	lines := 0
	for {
		_, remoteTs, msg, ok := d.ctf.PeekMessage()
		if !ok {
			break
		}
		lineTs := ts
		if remoteTs > 0.001 {
			lineTs = remoteTs
		}
		line := d.store.Append(channel, lineTs)
		line.AppendText(msg)
		d.ctf.PopMessage()
		if d.observer != nil {
			d.observer.ObserveLine()
		}
		lines++
	}
	return lines
}

func (d *Decoder) emitPlain(channel int, payload []byte, ts float64) int {
	lines := 0
	tail := d.store.Tail()
	timeout := constants.ContinuationTimeout.Seconds()

	for _, b := range payload {
		if b == '\r' || b == '\n' {
			if tail != nil && !tail.Sealed() && tail.Len() > 0 {
				tail.Seal()
				if d.observer != nil {
					d.observer.ObserveLine()
				}
			}
			continue
		}

		needNew := tail == nil || tail.Sealed()
		if !needNew && tail.Channel != channel {
			tail.Seal()
			if d.observer != nil {
				d.observer.ObserveLine()
			}
			needNew = true
		}
		if !needNew && ts-tail.Timestamp > timeout {
			tail.Seal()
			if d.observer != nil {
				d.observer.ObserveLine()
			}
			needNew = true
		}
		if !needNew && tail.Len() >= constants.LineHardCap {
			needNew = true
		}

		if needNew {
			tail = d.store.Append(channel, ts)
			lines++
		}
		if !tail.AppendByte(b) {
			tail.Seal()
			tail = d.store.Append(channel, ts)
			lines++
			tail.AppendByte(b)
		}
		if tail.Sealed() && d.observer != nil {
			// AppendByte seals the line itself on reaching the hard cap.
			d.observer.ObserveLine()
		}
	}
	return lines
}

// packetError implements the shared error-recovery rule: reset any
// partially-decoded CTF state, count the error, and clear the carry
// cache so corruption never crosses a frame boundary.
func (d *Decoder) packetError() {
	if d.ctf != nil {
		d.ctf.Reset()
	}
	d.packetErrors++
	d.textState.Carry.Clear()
	d.profileState.Carry.Clear()
	if d.observer != nil {
		d.observer.ObservePacketError()
	}
}
