// Package endpoint binds a UDP socket and exposes the timed send/receive
// primitives the protocol core builds on: every blocking read is bounded by
// a fixed socket timeout so it can surface as a Timeout event rather than
// blocking forever.
package endpoint

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"strconv"
	"time"

	"github.com/arfandi/udpftp/internal/slogx"
	"github.com/arfandi/udpftp/segment"
)

// ReadTimeout bounds every blocking receive. Higher-level deadlines (the
// handshake retry bound, the close-phase TIMEOUT_LISTEN) are composed from
// repeated timed reads of this length.
const ReadTimeout = 5 * time.Second

// ErrTimeout is returned by Receive when no datagram arrives within
// ReadTimeout.
var ErrTimeout = errors.New("endpoint: read timeout")

// Endpoint is one bound UDP socket, shared by a single session. It performs
// no demultiplexing of its own beyond reporting the sender address of each
// datagram it reads; callers (handshake/receiver) compare that address
// against the peer they expect.
type Endpoint struct {
	conn net.PacketConn
	log  slogx.Logger
}

// Config configures a new Endpoint.
type Config struct {
	// IP is the local address to bind to.
	IP string
	// Port is the local port to bind to.
	Port int
	// ReuseAddr requests SO_REUSEADDR on the bound socket, used by the
	// server role so a restarted server can rebind its broadcast port
	// immediately.
	ReuseAddr bool
	Logger    *slogx.Logger
}

// New binds a UDP socket per cfg.
func New(cfg Config) (*Endpoint, error) {
	lc := net.ListenConfig{}
	if cfg.ReuseAddr {
		lc.Control = controlReuseAddr
	}
	addr := net.JoinHostPort(cfg.IP, strconv.Itoa(cfg.Port))
	conn, err := lc.ListenPacket(context.Background(), "udp", addr)
	if err != nil {
		return nil, err
	}
	e := &Endpoint{conn: conn}
	if cfg.Logger != nil {
		e.log = *cfg.Logger
	}
	e.log.Info("endpoint:bound", slog.String("addr", conn.LocalAddr().String()))
	return e, nil
}

// Send emits one datagram carrying seg's wire bytes to (ip, port).
func (e *Endpoint) Send(seg segment.Segment, ip string, port int) error {
	addr, err := net.ResolveUDPAddr("udp", net.JoinHostPort(ip, strconv.Itoa(port)))
	if err != nil {
		return err
	}
	_, err = e.conn.WriteTo(seg.Encode(), addr)
	return err
}

// Receive blocks up to ReadTimeout for one datagram, returning its decoded
// segment and the sender's address. It returns ErrTimeout, not a decode
// error, when the deadline expires without a packet arriving.
func (e *Endpoint) Receive() (segment.Segment, net.Addr, error) {
	buf := make([]byte, segment.MaxSegment)
	if err := e.conn.SetReadDeadline(time.Now().Add(ReadTimeout)); err != nil {
		return segment.Segment{}, nil, err
	}
	n, from, err := e.conn.ReadFrom(buf)
	if err != nil {
		if ne, ok := err.(net.Error); ok && ne.Timeout() {
			return segment.Segment{}, nil, ErrTimeout
		}
		return segment.Segment{}, nil, err
	}
	seg, err := segment.Decode(buf[:n])
	if err != nil {
		return segment.Segment{}, from, err
	}
	return seg, from, nil
}

// LocalAddr returns the endpoint's bound local address.
func (e *Endpoint) LocalAddr() net.Addr { return e.conn.LocalAddr() }

// Close releases the underlying socket.
func (e *Endpoint) Close() error { return e.conn.Close() }

