package swotrace

import (
	"testing"
	"time"
)

func TestMetricsRecordFrame(t *testing.T) {
	m := NewMetrics()

	snap := m.Snapshot()
	if snap.Frames != 0 {
		t.Errorf("Expected 0 initial frames, got %d", snap.Frames)
	}

	m.recordFrame(64, 1_000_000) // 64B frame, 1ms latency
	m.recordFrame(32, 2_000_000) // 32B frame, 2ms latency

	snap = m.Snapshot()
	if snap.Frames != 2 {
		t.Errorf("Expected 2 frames, got %d", snap.Frames)
	}
	if snap.FrameBytes != 96 {
		t.Errorf("Expected 96 frame bytes, got %d", snap.FrameBytes)
	}

	expectedAvgNs := uint64(1_500_000)
	if snap.AvgLatencyNs != expectedAvgNs {
		t.Errorf("Expected avg latency %d ns, got %d ns", expectedAvgNs, snap.AvgLatencyNs)
	}
}

func TestMetricsUptime(t *testing.T) {
	m := NewMetrics()

	time.Sleep(10 * time.Millisecond)

	snap := m.Snapshot()
	if snap.UptimeNs < 10*1_000_000 {
		t.Errorf("Expected uptime >= 10ms, got %d ns", snap.UptimeNs)
	}

	m.Stop()
	time.Sleep(5 * time.Millisecond)

	snap2 := m.Snapshot()
	if snap2.UptimeNs > snap.UptimeNs+10*1_000_000 {
		t.Errorf("Uptime increased too much after stop: %d -> %d", snap.UptimeNs, snap2.UptimeNs)
	}
}

func TestMetricsReset(t *testing.T) {
	m := NewMetrics()

	m.recordFrame(64, 1_000_000)
	m.Lines.Add(3)
	m.Overflows.Add(1)

	snap := m.Snapshot()
	if snap.Frames == 0 {
		t.Error("Expected some frames before reset")
	}

	m.Reset()

	snap = m.Snapshot()
	if snap.Frames != 0 {
		t.Errorf("Expected 0 frames after reset, got %d", snap.Frames)
	}
	if snap.Lines != 0 {
		t.Errorf("Expected 0 lines after reset, got %d", snap.Lines)
	}
	if snap.Overflows != 0 {
		t.Errorf("Expected 0 overflows after reset, got %d", snap.Overflows)
	}
}

func TestMetricsHistogram(t *testing.T) {
	m := NewMetrics()

	for i := 0; i < 50; i++ {
		m.recordFrame(64, 5_000) // 5us
	}
	for i := 0; i < 10; i++ {
		m.recordFrame(64, 5_000_000) // 5ms
	}

	snap := m.Snapshot()
	if snap.Frames != 60 {
		t.Errorf("Expected 60 frames, got %d", snap.Frames)
	}

	// bucket[1] is the <=10us bucket; all 50 fast frames land there.
	if snap.LatencyHistogram[1] != 50 {
		t.Errorf("Expected 50 samples in the 10us bucket, got %d", snap.LatencyHistogram[1])
	}
	// bucket[4] is the <=10ms bucket, cumulative over everything below it.
	if snap.LatencyHistogram[4] != 60 {
		t.Errorf("Expected 60 samples in the 10ms bucket, got %d", snap.LatencyHistogram[4])
	}
}

func TestObserverForwarding(t *testing.T) {
	// NoOpObserver must not panic.
	var noop NoOpObserver
	noop.ObserveFrame(64, 1000)
	noop.ObserveLine()
	noop.ObserveSample()
	noop.ObserveOverflow(3)
	noop.ObservePacketError()

	m := NewMetrics()
	obs := NewMetricsObserver(m)

	obs.ObserveFrame(64, 1000)
	obs.ObserveLine()
	obs.ObserveSample()
	obs.ObserveOverflow(2)
	obs.ObservePacketError()

	snap := m.Snapshot()
	if snap.Frames != 1 {
		t.Errorf("Expected 1 frame from observer, got %d", snap.Frames)
	}
	if snap.Lines != 1 {
		t.Errorf("Expected 1 line from observer, got %d", snap.Lines)
	}
	if snap.Samples != 1 {
		t.Errorf("Expected 1 sample from observer, got %d", snap.Samples)
	}
	if snap.Overflows != 2 {
		t.Errorf("Expected 2 overflows from observer, got %d", snap.Overflows)
	}
	if snap.PacketErrs != 1 {
		t.Errorf("Expected 1 packet error from observer, got %d", snap.PacketErrs)
	}
}
