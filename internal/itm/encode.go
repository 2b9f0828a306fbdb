package itm

import "encoding/binary"

// sizeSelector returns the 3-bit size selector for a 1/2/4-byte payload.
func sizeSelector(payloadLen int) byte {
	switch payloadLen {
	case 1:
		return 1
	case 2:
		return 2
	case 4:
		return 3
	default:
		return 0
	}
}

// EncodeStimulus builds a wire-format ITM stimulus packet: one header
// byte followed by a 1/2/4-byte payload. It is the inverse of the
// decode loop in internal/decoder, used by this package's tests to
// build packets without hand-computing header bits.
func EncodeStimulus(channel int, payload []byte) []byte {
	h := byte(channel&0x1F)<<3 | sizeSelector(len(payload))
	out := make([]byte, 0, 1+len(payload))
	out = append(out, h)
	out = append(out, payload...)
	return out
}

// EncodePCSample builds a 5-byte PC-sample packet: header 0x17 followed
// by the little-endian program counter.
func EncodePCSample(pc uint32) []byte {
	out := make([]byte, 5)
	out[0] = HeaderPCSample
	binary.LittleEndian.PutUint32(out[1:], pc)
	return out
}

// EncodeOverflow builds the single-byte ITM overflow marker.
func EncodeOverflow() []byte {
	return []byte{HeaderOverflow}
}
