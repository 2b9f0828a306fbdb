package decoder

import (
	"encoding/binary"

	"github.com/blackmagic-traceview/swotrace/internal/itm"
	"github.com/blackmagic-traceview/swotrace/internal/ring"
)

// ProcessProfile implements process_profile (§4.5): drains every
// queued frame, bucketing PC samples into sampleMap when enabled.
// Returns the number of samples bucketed and the number of ITM
// overflow markers (0x70) observed since the last call.
func (d *Decoder) ProcessProfile(r *ring.Ring, enabled bool, sampleMap []uint32, codeBase, codeTop uint32) (count int, overflowMarkers uint32) {
	for {
		f, ok := r.Dequeue()
		if !ok {
			break
		}
		if d.observer != nil {
			d.observer.ObserveFrame(f.Len, 0)
		}
		if enabled {
			c, o := d.decodeFrameProfile(f.Bytes[:f.Len], sampleMap, codeBase, codeTop)
			count += c
			overflowMarkers += o
		}
	}
	if overflow := r.OverflowTakeAndReset(); overflow > 0 && d.observer != nil {
		d.observer.ObserveOverflow(overflow)
	}
	return count, overflowMarkers
}

func (d *Decoder) decodeFrameProfile(frame []byte, sampleMap []uint32, codeBase, codeTop uint32) (count int, overflowMarkers uint32) {
	pos := 0

	// Step 1: resume a PC sample or skip straddling the previous frame.
	if !d.profileState.Carry.Empty() {
		header := d.profileState.Carry.Header()
		prefixLen := d.profileState.Carry.PrefixLen()

		if header == itm.HeaderPCSample {
			needed := 4
			remain := needed - prefixLen
			take := remain
			if take > len(frame) {
				take = len(frame)
			}
			pcBytes := append(append([]byte{}, d.profileState.Carry.Prefix()...), frame[:take]...)
			d.profileState.Carry.Clear()
			pos = take
			if len(pcBytes) == 4 {
				d.bucketSample(pcBytes, sampleMap, codeBase, codeTop)
				count++
			} else {
				d.profileState.Carry.Set(itm.HeaderPCSample, pcBytes)
				return count, overflowMarkers
			}
		} else {
			needed := itm.Len(header)
			remain := needed - prefixLen
			take := remain
			if take > len(frame) {
				take = len(frame)
			}
			d.profileState.Carry.Clear()
			pos = take
		}
	}

	for pos < len(frame) {
		b := frame[pos]

		switch {
		case b == itm.HeaderPCSample:
			if pos+5 <= len(frame) {
				d.bucketSample(frame[pos+1:pos+5], sampleMap, codeBase, codeTop)
				count++
				pos += 5
			} else {
				d.profileState.Carry.Set(itm.HeaderPCSample, frame[pos+1:])
				pos = len(frame)
			}

		case b == itm.HeaderOverflow:
			overflowMarkers++
			pos++

		default:
			// Per spec §9's design note, the source's profile-mode
			// invalid-header branch differs subtly from text mode;
			// this decoder applies the text-mode policy (drop the
			// rest of the frame) consistently in both modes.
			if !itm.ValidHeader(b) {
				d.packetError()
				return count, overflowMarkers
			}
			length := itm.Len(b)
			if pos+1+length > len(frame) {
				d.profileState.Carry.Set(b, frame[pos+1:])
				pos = len(frame)
			} else {
				pos += length + 1
			}
		}
	}
	return count, overflowMarkers
}

// bucketSample computes the sample_map index for a 4-byte
// little-endian PC and increments it, falling back to the sentinel
// index (the span's length, one past the last valid offset) for any
// PC outside [codeBase, codeTop).
func (d *Decoder) bucketSample(pcBytes []byte, sampleMap []uint32, codeBase, codeTop uint32) {
	pc := binary.LittleEndian.Uint32(pcBytes)

	var idx int
	if pc >= codeBase && pc < codeTop {
		idx = int(pc - codeBase)
	} else {
		idx = int(codeTop - codeBase)
	}
	if idx >= 0 && idx < len(sampleMap) {
		sampleMap[idx]++
	}
	if d.observer != nil {
		d.observer.ObserveSample()
	}
}
