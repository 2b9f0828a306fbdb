package swotrace

import (
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/blackmagic-traceview/swotrace/internal/interfaces"
)

// DecodeLatencyBuckets defines the decode-latency histogram buckets in
// nanoseconds, covering a single frame's decode time from 1us to 10ms
// (generalized from the teacher's Metrics.LatencyBuckets, which covers
// a block I/O's much wider 1us-10s range).
var DecodeLatencyBuckets = []uint64{
	1_000,      // 1us
	10_000,     // 10us
	100_000,    // 100us
	1_000_000,  // 1ms
	10_000_000, // 10ms
}

const numDecodeLatencyBuckets = 5

// Metrics tracks decode-time operational statistics for one session.
type Metrics struct {
	Frames     atomic.Uint64
	FrameBytes atomic.Uint64
	Lines      atomic.Uint64
	Samples    atomic.Uint64
	Overflows  atomic.Uint64
	PacketErrs atomic.Uint64

	TotalLatencyNs atomic.Uint64
	LatencyCount   atomic.Uint64
	LatencyBuckets [numDecodeLatencyBuckets]atomic.Uint64

	StartTime atomic.Int64
	StopTime  atomic.Int64
}

// NewMetrics creates a new metrics instance with StartTime set to now.
func NewMetrics() *Metrics {
	m := &Metrics{}
	m.StartTime.Store(time.Now().UnixNano())
	return m
}

func (m *Metrics) recordFrame(bytes int, latencyNs uint64) {
	m.Frames.Add(1)
	m.FrameBytes.Add(uint64(bytes))
	if latencyNs == 0 {
		return
	}
	m.TotalLatencyNs.Add(latencyNs)
	m.LatencyCount.Add(1)
	for i, bucket := range DecodeLatencyBuckets {
		if latencyNs <= bucket {
			m.LatencyBuckets[i].Add(1)
		}
	}
}

// Stop marks the session as stopped.
func (m *Metrics) Stop() {
	m.StopTime.Store(time.Now().UnixNano())
}

// MetricsSnapshot is a point-in-time copy of Metrics' atomic fields.
type MetricsSnapshot struct {
	Frames     uint64
	FrameBytes uint64
	Lines      uint64
	Samples    uint64
	Overflows  uint64
	PacketErrs uint64

	AvgLatencyNs     uint64
	LatencyHistogram [numDecodeLatencyBuckets]uint64

	UptimeNs uint64
}

// Snapshot returns a consistent point-in-time view of the metrics.
func (m *Metrics) Snapshot() MetricsSnapshot {
	snap := MetricsSnapshot{
		Frames:     m.Frames.Load(),
		FrameBytes: m.FrameBytes.Load(),
		Lines:      m.Lines.Load(),
		Samples:    m.Samples.Load(),
		Overflows:  m.Overflows.Load(),
		PacketErrs: m.PacketErrs.Load(),
	}

	count := m.LatencyCount.Load()
	if count > 0 {
		snap.AvgLatencyNs = m.TotalLatencyNs.Load() / count
	}

	start := m.StartTime.Load()
	stop := m.StopTime.Load()
	if stop > 0 {
		snap.UptimeNs = uint64(stop - start)
	} else {
		snap.UptimeNs = uint64(time.Now().UnixNano() - start)
	}

	for i := 0; i < numDecodeLatencyBuckets; i++ {
		snap.LatencyHistogram[i] = m.LatencyBuckets[i].Load()
	}
	return snap
}

// Reset zeroes every counter. Useful for testing.
func (m *Metrics) Reset() {
	m.Frames.Store(0)
	m.FrameBytes.Store(0)
	m.Lines.Store(0)
	m.Samples.Store(0)
	m.Overflows.Store(0)
	m.PacketErrs.Store(0)
	m.TotalLatencyNs.Store(0)
	m.LatencyCount.Store(0)
	for i := 0; i < numDecodeLatencyBuckets; i++ {
		m.LatencyBuckets[i].Store(0)
	}
	m.StartTime.Store(time.Now().UnixNano())
	m.StopTime.Store(0)
}

// NoOpObserver discards every event.
type NoOpObserver struct{}

func (NoOpObserver) ObserveFrame(int, uint64)    {}
func (NoOpObserver) ObserveLine()                {}
func (NoOpObserver) ObserveSample()              {}
func (NoOpObserver) ObserveOverflow(uint32)      {}
func (NoOpObserver) ObservePacketError()         {}

// MetricsObserver implements interfaces.Observer by recording into a Metrics.
type MetricsObserver struct {
	metrics *Metrics
}

// NewMetricsObserver returns an observer that records into m.
func NewMetricsObserver(m *Metrics) *MetricsObserver {
	return &MetricsObserver{metrics: m}
}

func (o *MetricsObserver) ObserveFrame(bytes int, latencyNs uint64) { o.metrics.recordFrame(bytes, latencyNs) }
func (o *MetricsObserver) ObserveLine()                             { o.metrics.Lines.Add(1) }
func (o *MetricsObserver) ObserveSample()                           { o.metrics.Samples.Add(1) }
func (o *MetricsObserver) ObserveOverflow(count uint32)             { o.metrics.Overflows.Add(uint64(count)) }
func (o *MetricsObserver) ObservePacketError()                      { o.metrics.PacketErrs.Add(1) }

// PrometheusObserver implements interfaces.Observer as Prometheus
// counters (the latency argument of ObserveFrame is ignored; there is
// no histogram), so a host process can expose /metrics
// alongside the in-process MetricsObserver snapshot, additive to it
// rather than a replacement.
type PrometheusObserver struct {
	frames     prometheus.Counter
	frameBytes prometheus.Counter
	lines      prometheus.Counter
	samples    prometheus.Counter
	overflows  prometheus.Counter
	packetErrs prometheus.Counter
}

// NewPrometheusObserver registers its metrics against reg (pass
// prometheus.DefaultRegisterer for the global registry) and returns the
// observer.
func NewPrometheusObserver(reg prometheus.Registerer, sessionID string) *PrometheusObserver {
	labels := prometheus.Labels{"session": sessionID}
	o := &PrometheusObserver{
		frames: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "swotrace_frames_total",
			Help:        "Transport frames decoded.",
			ConstLabels: labels,
		}),
		frameBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "swotrace_frame_bytes_total",
			Help:        "Bytes decoded across all frames.",
			ConstLabels: labels,
		}),
		lines: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "swotrace_lines_total",
			Help:        "Trace lines sealed.",
			ConstLabels: labels,
		}),
		samples: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "swotrace_samples_total",
			Help:        "PC samples bucketed in profile mode.",
			ConstLabels: labels,
		}),
		overflows: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "swotrace_overflows_total",
			Help:        "Packet ring overflow (dropped-frame) events.",
			ConstLabels: labels,
		}),
		packetErrs: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "swotrace_packet_errors_total",
			Help:        "Invalid ITM header / framing errors.",
			ConstLabels: labels,
		}),
	}
	reg.MustRegister(o.frames, o.frameBytes, o.lines, o.samples, o.overflows, o.packetErrs)
	return o
}

func (o *PrometheusObserver) ObserveFrame(bytes int, _ uint64) {
	o.frames.Inc()
	o.frameBytes.Add(float64(bytes))
}
func (o *PrometheusObserver) ObserveLine()           { o.lines.Inc() }
func (o *PrometheusObserver) ObserveSample()         { o.samples.Inc() }
func (o *PrometheusObserver) ObserveOverflow(n uint32) { o.overflows.Add(float64(n)) }
func (o *PrometheusObserver) ObservePacketError()    { o.packetErrs.Inc() }

var (
	_ interfaces.Observer = (*MetricsObserver)(nil)
	_ interfaces.Observer = NoOpObserver{}
	_ interfaces.Observer = (*PrometheusObserver)(nil)
)
