package transport

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/blackmagic-traceview/swotrace/internal/constants"
)

// TCPTransport reads trace frames from a connected IPv4 stream, used
// when the probe is bridged over a network relay instead of direct USB.
type TCPTransport struct {
	conn *net.TCPConn
}

// OpenTCP dials the given host:port. The read timeout is applied per
// read in ReadFrame via SetReadDeadline: SO_RCVTIMEO is not honored by
// Go's runtime netpoller (the fd is non-blocking, and the poller blocks
// in the runtime rather than the kernel), so setting it at the socket
// level here would leave reads blocked indefinitely.
func OpenTCP(addr string) (*TCPTransport, error) {
	raddr, err := net.ResolveTCPAddr("tcp4", addr)
	if err != nil {
		return nil, newAcqErr("OpenTCP", CodeNoDevPath, LocTCPResolveAddr, err)
	}

	conn, err := net.DialTCP("tcp4", nil, raddr)
	if err != nil {
		return nil, newAcqErr("OpenTCP", CodeNoPipe, LocTCPDial, err)
	}

	return &TCPTransport{conn: conn}, nil
}

// ReadFrame implements interfaces.Transport. Each read is bounded by a
// SetReadDeadline call at the §4.3 short-read retry granularity, so a
// read that times out returns a zero-length slice with a nil error,
// mirroring the USB variant's short-read retry contract, and so the
// reader loop's cooperative cancellation (ctx.Done() checked between
// retries) actually gets a chance to run instead of blocking on the
// socket indefinitely. EOF or any other error means the peer is gone
// and the reader should exit.
func (t *TCPTransport) ReadFrame(ctx context.Context) ([]byte, float64, error) {
	if err := t.conn.SetReadDeadline(time.Now().Add(constants.USBShortReadRetryDelay)); err != nil {
		return nil, nowMono(), fmt.Errorf("tcp set read deadline: %w", err)
	}

	buf := make([]byte, constants.FrameSize)
	n, err := t.conn.Read(buf)
	ts := nowMono()
	if err != nil {
		if ne, ok := err.(net.Error); ok && ne.Timeout() {
			return []byte{}, ts, nil
		}
		return nil, ts, fmt.Errorf("tcp read: %w", err)
	}
	return buf[:n], ts, nil
}

// Close closes the underlying socket. Safe to call more than once.
func (t *TCPTransport) Close() error {
	if t.conn == nil {
		return nil
	}
	err := t.conn.Close()
	t.conn = nil
	return err
}
