package backend

import (
	"context"
	"fmt"
	"io"
	"testing"

	"github.com/blackmagic-traceview/swotrace/internal/ctf"
	"github.com/blackmagic-traceview/swotrace/internal/decoder"
	"github.com/blackmagic-traceview/swotrace/internal/registry"
	"github.com/blackmagic-traceview/swotrace/internal/ring"
	"github.com/blackmagic-traceview/swotrace/internal/store"
)

// repeatingPacketStream builds n two-byte-payload (3-byte) packets on
// channel 1 back to back, so when chunked by Tape at the 64-byte frame
// boundary two frames out of every three start in the middle of a
// packet and exercise the decoder's carry cache.
func repeatingPacketStream(n int) []byte {
	buf := make([]byte, 0, n*3)
	for i := 0; i < n; i++ {
		c := byte('a' + i%26)
		buf = append(buf, 0x0A, c, c)
	}
	return buf
}

// BenchmarkTapeCarryCacheReassembly measures decode throughput when
// every packet's worst case (a header split from its payload across a
// frame boundary) is in play, the scenario the carry cache exists for.
func BenchmarkTapeCarryCacheReassembly(b *testing.B) {
	packetCounts := []int{100, 1000, 10000}

	for _, n := range packetCounts {
		stream := repeatingPacketStream(n)
		b.Run(fmt.Sprintf("%dPackets", n), func(b *testing.B) {
			b.SetBytes(int64(len(stream)))
			b.ResetTimer()

			for i := 0; i < b.N; i++ {
				drainTape(b, stream)
			}
		})
	}
}

// BenchmarkTapeReadFrame isolates the Tape's own chunking overhead from
// decode cost, mirroring the teacher's RawMemcpy baseline split.
func BenchmarkTapeReadFrame(b *testing.B) {
	stream := repeatingPacketStream(10000)
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		tape := NewTape(stream, 0, 0.001)
		for {
			if _, _, err := tape.ReadFrame(ctx); err != nil {
				break
			}
		}
	}
}

func drainTape(b *testing.B, stream []byte) {
	b.Helper()

	tape := NewTape(stream, 0, 0.001)
	r := ring.NewDefault()
	reg := registry.New()
	st := store.New()
	dec := decoder.New(reg, st, ctf.NoopDecoder{}, nil, 1, true)

	ctx := context.Background()
	for {
		frame, ts, err := tape.ReadFrame(ctx)
		if err != nil {
			if err != io.EOF {
				b.Fatalf("ReadFrame failed: %v", err)
			}
			break
		}
		r.Enqueue(frame, ts)
		dec.ProcessText(r, true)
	}
}
