package sender

import (
	"log/slog"
	"net"
	"strconv"

	"github.com/arfandi/udpftp/endpoint"
	"github.com/arfandi/udpftp/internal/slogx"
	"github.com/arfandi/udpftp/kind"
	"github.com/arfandi/udpftp/segment"
)

// WindowSize is the number of in-flight segments the engine allows before
// it must see an ACK advance the base.
const WindowSize = 3

// Engine drives the Go-Back-N send side of a transfer over an already
// established endpoint/peer pair.
type Engine struct {
	ep   *endpoint.Endpoint
	peer net.Addr
	log  slogx.Logger
}

func NewEngine(ep *endpoint.Endpoint, peer net.Addr, log slogx.Logger) *Engine {
	return &Engine{ep: ep, peer: peer, log: log}
}

// Result reports how a Run call ended.
type Result struct {
	Kind kind.Kind
	Err  error
}

// Run sends the metadata segment to completion, then the data segments, as
// two independent Go-Back-N windows: the metadata round always has exactly
// one segment in flight, regardless of WindowSize, since it has nothing to
// batch with. A SYN|ACK seen mid-transfer means the peer restarted its side
// of the handshake; Run stops immediately and reports kind.ResetRequested so
// the caller can re-run the open handshake instead of the transfer.
func (e *Engine) Run(meta segment.Segment, data []segment.Segment) Result {
	if k := e.runWindow([]segment.Segment{meta}); k != kind.None {
		return Result{Kind: k}
	}
	if k := e.runWindow(data); k != kind.None {
		return Result{Kind: k}
	}
	return Result{Kind: kind.None}
}

func (e *Engine) runWindow(segs []segment.Segment) kind.Kind {
	if len(segs) == 0 {
		return kind.None
	}
	firstSeq := segs[0].Seq
	base := 0

	for base < len(segs) {
		windowLen := len(segs) - base
		if windowLen > WindowSize {
			windowLen = WindowSize
		}

		host, port := addrIP(e.peer), addrPort(e.peer)
		for i := 0; i < windowLen; i++ {
			seg := segs[base+i]
			if err := e.ep.Send(seg, host, port); err != nil {
				return kind.FatalIO
			}
		}
		e.log.Trace("sender:round transmitted", slog.Int("base", int(firstSeq)+base), slog.Int("count", windowLen))

		timedOut := false
		for attempt := 0; attempt < windowLen; attempt++ {
			seg, from, err := e.ep.Receive()
			if err == endpoint.ErrTimeout {
				timedOut = true
				break
			}
			if err != nil {
				return kind.FatalIO
			}
			if from.String() != e.peer.String() {
				e.log.Debug("sender:ignoring datagram from other peer", slog.String("from", from.String()))
				continue
			}
			if seg.Flags == segment.SynAck {
				e.log.Warn("sender:unsolicited SYN|ACK mid-transfer, peer reset")
				return kind.ResetRequested
			}
			if seg.Flags != segment.ACK {
				continue
			}

			next := firstSeq + uint32(base) + 1
			switch {
			case seg.Ack == next:
				base++
			case seg.Ack > next:
				advance := int(seg.Ack - firstSeq)
				if advance > len(segs) {
					advance = len(segs)
				}
				base = advance
			default:
				// stale ack for an already-acknowledged segment; ignore.
			}
		}
		if timedOut {
			e.log.Debug("sender:round timed out, retransmitting window", slog.Int("base", int(firstSeq)+base))
		}
	}
	return kind.None
}

func addrIP(a net.Addr) string {
	host, _, _ := net.SplitHostPort(a.String())
	return host
}

func addrPort(a net.Addr) int {
	_, port, _ := net.SplitHostPort(a.String())
	p, _ := strconv.Atoi(port)
	return p
}
