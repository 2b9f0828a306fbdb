// Package swotrace provides the main API for ingesting and decoding an
// ARM Cortex-M SWO/ITM trace stream: a transport reader goroutine feeds
// a bounded packet ring, a single-threaded decoder drains it each frame
// into a trace-line store or a PC-sample histogram, and a timeline
// index keeps a zoomable per-channel view of arrival density.
package swotrace

import (
	"context"
	"fmt"

	"github.com/google/gousb"
	"github.com/rs/xid"

	"github.com/blackmagic-traceview/swotrace/internal/ctf"
	"github.com/blackmagic-traceview/swotrace/internal/decoder"
	"github.com/blackmagic-traceview/swotrace/internal/interfaces"
	"github.com/blackmagic-traceview/swotrace/internal/logging"
	"github.com/blackmagic-traceview/swotrace/internal/registry"
	"github.com/blackmagic-traceview/swotrace/internal/ring"
	"github.com/blackmagic-traceview/swotrace/internal/store"
	"github.com/blackmagic-traceview/swotrace/internal/timeline"
	"github.com/blackmagic-traceview/swotrace/internal/transport"
)

// TransportKind selects which of the two §4.3 reader variants a session
// acquires at OpenSession.
type TransportKind int

const (
	TransportUSB TransportKind = iota
	TransportTCP
)

// ChannelConfig seeds one of the 32 registry slots at session open.
type ChannelConfig struct {
	Index   int
	Name    string
	Color   registry.Color
	Enabled bool
}

// SessionParams mirrors the teacher's DeviceParams: everything needed
// to acquire a transport and stand up the decode pipeline behind it.
type SessionParams struct {
	Transport TransportKind

	// USB fields, used when Transport == TransportUSB.
	USBVendorID  gousb.ID
	USBProductID gousb.ID
	USBConfig    int
	USBInterface int
	USBEndpoint  int

	// TCP fields, used when Transport == TransportTCP.
	TCPAddr string

	RingCapacity int // 0 means internal/constants.RingCapacity

	InitialChannels []ChannelConfig

	WordSize         int // 1, 2, or 4; 0 means DefaultWordSize
	AutoGrowWordSize bool

	CodeBase      uint32 // profile-mode address window
	CodeTop       uint32
	SampleMapSize int

	CTF interfaces.CTFDecoder // nil means ctf.NoopDecoder{}
}

// DefaultParams returns sensible defaults for a USB session against the
// first bulk IN endpoint of interface 0, configuration 1.
func DefaultParams() SessionParams {
	return SessionParams{
		Transport:        TransportUSB,
		USBConfig:        1,
		USBInterface:     0,
		USBEndpoint:      1,
		WordSize:         DefaultWordSize,
		AutoGrowWordSize: true,
	}
}

// Options carries cross-cutting collaborators, mirroring the teacher's
// Options (Context/Logger/Observer) plus the GUI hook this domain adds.
type Options struct {
	Logger   interfaces.Logger
	Observer interfaces.Observer
	Hooks    interfaces.GUIHooks
}

// Session is the public handle on one trace_init/trace_close cycle: the
// acquired transport, the reader goroutine feeding it, the decode
// pipeline, and the trace store/timeline it populates.
type Session struct {
	id string

	transport interfaces.Transport
	reader    *transport.Reader
	ring      *ring.Ring

	registry *registry.Registry
	decoder  *decoder.Decoder
	store    *store.Store
	timeline *timeline.Timeline
	ctf      interfaces.CTFDecoder

	codeBase  uint32
	codeTop   uint32
	sampleMap []uint32

	metrics  *Metrics
	observer interfaces.Observer
	logger   interfaces.Logger
}

// OpenSession implements trace_init: acquires the configured transport
// (returning a *Error with a §6 location tag on any acquisition-step
// failure), wires the packet ring, registry, decoder, store, and
// timeline, and starts the reader goroutine.
func OpenSession(ctx context.Context, params SessionParams, options *Options) (*Session, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if options == nil {
		options = &Options{}
	}

	id := xid.New().String()
	logger := options.Logger
	if logger == nil {
		logger = logging.Default()
	}

	var t interfaces.Transport
	var err error
	switch params.Transport {
	case TransportUSB:
		var usb *transport.USBTransport
		usb, err = transport.OpenUSB(params.USBVendorID, params.USBProductID, params.USBConfig, params.USBInterface, params.USBEndpoint)
		if usb != nil {
			t = usb
		}
	case TransportTCP:
		var tcp *transport.TCPTransport
		tcp, err = transport.OpenTCP(params.TCPAddr)
		if tcp != nil {
			t = tcp
		}
	default:
		return nil, NewError("OpenSession", ErrCodeInitFailed, fmt.Sprintf("unknown transport kind %d", params.Transport))
	}
	if err != nil {
		return nil, fromAcquisitionError("OpenSession", err)
	}

	return newSession(id, t, params, logger, options)
}

// OpenSessionWithTransport wires an already-open transport (a tape
// replay, a test double, or any other interfaces.Transport) into a
// running Session, bypassing USB/TCP acquisition entirely. Useful for
// offline demo playback and for tests.
func OpenSessionWithTransport(t interfaces.Transport, params SessionParams, options *Options) (*Session, error) {
	if options == nil {
		options = &Options{}
	}
	id := xid.New().String()
	return newSession(id, t, params, options.Logger, options)
}

// newSession wires an already-acquired transport into a running
// Session. Split out of OpenSession so tests can substitute a
// MockTransport without exercising real USB/TCP acquisition.
func newSession(id string, t interfaces.Transport, params SessionParams, logger interfaces.Logger, options *Options) (*Session, error) {
	if logger == nil {
		logger = logging.Default()
	}

	ringCap := params.RingCapacity
	if ringCap == 0 {
		ringCap = RingCapacity
	}
	r := ring.New(ringCap)

	reg := registry.New()
	for _, c := range params.InitialChannels {
		reg.Set(c.Index, c.Enabled, c.Name, c.Color)
	}

	ctfDecoder := params.CTF
	if ctfDecoder == nil {
		ctfDecoder = ctf.NoopDecoder{}
	}

	metrics := NewMetrics()
	var observer interfaces.Observer = NoOpObserver{}
	if options.Observer != nil {
		observer = options.Observer
	} else {
		observer = NewMetricsObserver(metrics)
	}

	wordSize := params.WordSize
	if wordSize == 0 {
		wordSize = DefaultWordSize
	}

	st := store.New()
	dec := decoder.New(reg, st, ctfDecoder, observer, wordSize, params.AutoGrowWordSize)

	sampleMapSize := params.SampleMapSize
	if sampleMapSize == 0 && params.CodeTop > params.CodeBase {
		sampleMapSize = int(params.CodeTop-params.CodeBase) + 1
	}

	sessLogger := logger
	if l, ok := logger.(*logging.Logger); ok {
		sessLogger = l.WithSession(id)
	}

	sess := &Session{
		id:        id,
		transport: t,
		ring:      r,
		registry:  reg,
		decoder:   dec,
		store:     st,
		timeline:  timeline.New(),
		ctf:       ctfDecoder,
		codeBase:  params.CodeBase,
		codeTop:   params.CodeTop,
		sampleMap: make([]uint32, sampleMapSize),
		metrics:   metrics,
		observer:  observer,
		logger:    sessLogger,
	}

	sess.reader = transport.NewReader(t, r, options.Hooks, sess.logger)
	sess.reader.Start()

	sess.logger.Printf("session opened")
	return sess, nil
}

// Close implements trace_close: stops the reader goroutine (within the
// §5 grace period), releases the transport, and marks metrics stopped.
func (s *Session) Close() error {
	if s == nil {
		return nil
	}
	s.reader.Stop()
	err := s.transport.Close()
	s.metrics.Stop()
	s.logger.Printf("session closed")
	return err
}

// ID returns the session's short identifier, used to disambiguate
// overlapping sessions in logs and in the CSV export header comment.
func (s *Session) ID() string { return s.id }

// ProcessText implements process_text (§4.4): drains every queued
// frame into the trace store when enabled is true, discarding
// otherwise, and returns the number of new lines created.
func (s *Session) ProcessText(enabled bool) uint32 {
	return s.decoder.ProcessText(s.ring, enabled)
}

// ProcessProfile implements process_profile (§4.5): drains every queued
// frame, bucketing PC samples into the session's sample map when
// enabled, and returns the sample count plus overflow markers observed.
func (s *Session) ProcessProfile(enabled bool) (count int, overflowMarkers uint32) {
	return s.decoder.ProcessProfile(s.ring, enabled, s.sampleMap, s.codeBase, s.codeTop)
}

// SampleMap returns the profile-mode histogram buckets. Callers must
// not mutate the returned slice.
func (s *Session) SampleMap() []uint32 { return s.sampleMap }

// PacketErrors returns the running count of invalid ITM headers seen.
func (s *Session) PacketErrors() uint32 { return s.decoder.PacketErrors() }

// Registry exposes the channel registry for UI-side reads/writes.
func (s *Session) Registry() *registry.Registry { return s.registry }

// IsEmpty, Count, Clear, Find, and FindTimestamp implement §4.7's trace
// store surface.
func (s *Session) IsEmpty() bool                  { return s.store.IsEmpty() }
func (s *Session) Count() int                     { return s.store.Count() }
func (s *Session) Clear()                         { s.store.Clear() }
func (s *Session) Find(text string, start int) int {
	return s.store.Find(text, start)
}
func (s *Session) FindTimestamp(ts float64) int { return s.store.FindTimestamp(ts) }

// Lines returns every decoded trace line accumulated so far. Callers
// must not mutate the returned slice or its elements.
func (s *Session) Lines() []*store.Line { return s.store.Lines() }

// Save implements §4.7's save, writing RFC 4180 CSV with a leading
// session-id comment line.
func (s *Session) Save(path string) error {
	return s.store.Save(path, s.registry, s.id)
}

// RebuildTimeline implements §4.8's rebuild, recomputing every channel's
// marks from the current trace store. limitLines, if > 0, caps how many
// of the most recent lines are scanned.
func (s *Session) RebuildTimeline(limitLines int) {
	lines := s.store.Lines()
	tlLines := make([]timeline.Line, len(lines))
	for i, l := range lines {
		tlLines[i] = timeline.Line{Channel: l.Channel, Timestamp: l.Timestamp}
	}
	s.timeline.Rebuild(tlLines, s.registry, limitLines)
}

// Timeline exposes the per-channel mark index and zoom controls.
func (s *Session) Timeline() *timeline.Timeline { return s.timeline }

// Metrics returns the session's metrics counters.
func (s *Session) Metrics() *Metrics { return s.metrics }

// MetricsSnapshot returns a point-in-time snapshot of session metrics.
func (s *Session) MetricsSnapshot() MetricsSnapshot {
	if s.metrics == nil {
		return MetricsSnapshot{}
	}
	return s.metrics.Snapshot()
}
