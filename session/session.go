// Package session drives one transfer end to end on either role: opening
// the handshake, running the sender or receiver engine to completion, and
// closing down, aggregating whatever resources it opened along the way.
package session

import (
	"log/slog"
	"net"
	"strconv"

	"github.com/arfandi/udpftp/endpoint"
	"github.com/arfandi/udpftp/handshake"
	"github.com/arfandi/udpftp/internal/slogx"
	"github.com/arfandi/udpftp/kind"
	"github.com/arfandi/udpftp/receiver"
	"github.com/arfandi/udpftp/segment"
	"github.com/arfandi/udpftp/sender"
)

// Phase names the session's position in its own lifecycle, mirrored on
// both roles.
type Phase uint8

const (
	Opening Phase = iota
	Transferring
	Resetting
	Closing
	Closed
)

func (p Phase) String() string {
	switch p {
	case Opening:
		return "Opening"
	case Transferring:
		return "Transferring"
	case Resetting:
		return "Resetting"
	case Closing:
		return "Closing"
	case Closed:
		return "Closed"
	default:
		return "Phase(invalid)"
	}
}

// Result reports the outcome of a completed session.
type Result struct {
	Kind kind.Kind
	Err  error
}

// SendFile runs the server role: accept one client's handshake, send the
// given metadata and data segments to completion, and close down. If the
// peer restarts its handshake mid-transfer (ResetRequested), the session
// re-opens without recursing, via an explicit Resetting phase, and then runs
// the transfer again from the metadata segment; it does not resume from the
// window base reached before the reset.
func SendFile(ep *endpoint.Endpoint, meta segment.Metadata, data []segment.Segment, log slogx.Logger) Result {
	phase := Opening
	var peer net.Addr

	for {
		switch phase {
		case Opening:
			log.Info("session:opening")
			p, err := handshake.OpenServer(ep, log)
			if err != nil {
				return Result{Kind: kind.FatalIO, Err: err}
			}
			peer = p
			phase = Transferring

		case Transferring:
			log.Info("session:transferring", slog.String("peer", peer.String()))
			eng := sender.NewEngine(ep, peer, log)
			metaSeg := sender.MetadataSegment(meta)
			result := eng.Run(metaSeg, data)
			if result.Kind == kind.ResetRequested {
				phase = Resetting
				continue
			}
			if result.Kind != kind.None {
				return result
			}
			phase = Closing

		case Resetting:
			log.Warn("session:resetting after peer restart")
			phase = Opening

		case Closing:
			lastSeq := uint32(segment.SeqFirstData) + uint32(len(data))
			k := handshake.CloseSender(ep, peer, lastSeq, log)
			phase = Closed
			return Result{Kind: k}
		}
	}
}

// ReceiveFile runs the client role: open the handshake, accept the metadata
// and data segments in order, and close down. onMetadata is called exactly
// once, before any data, so the caller can open its output file by name;
// sink is then called once per accepted payload chunk in order. Both own
// their own errors, which abort the transfer if returned non-nil, matching
// the receiver engine's "caller owns the write" design.
func ReceiveFile(ep *endpoint.Endpoint, serverIP string, serverPort int, onMetadata func(segment.Metadata) error, sink func([]byte) error, log slogx.Logger) (segment.Metadata, Result) {
	var meta segment.Metadata
	phase := Opening
	var peer net.Addr
	var eng *receiver.Engine

	for {
		switch phase {
		case Opening:
			log.Info("session:opening")
			p, err := handshake.OpenClient(ep, serverIP, serverPort, log)
			if err != nil {
				return meta, Result{Kind: kind.FatalIO, Err: err}
			}
			peer = p
			eng = receiver.NewEngine(peer)
			phase = Transferring

		case Transferring:
			seg, from, err := ep.Receive()
			if err == endpoint.ErrTimeout {
				// re-send the current cumulative ACK so the sender can recover.
				ack := segment.New(segment.Header{Ack: eng.Expected()}, segment.ACK, nil)
				_ = ep.Send(ack, addrIP(peer), addrPort(peer))
				continue
			}
			if err != nil {
				return meta, Result{Kind: kind.FatalIO, Err: err}
			}

			out := eng.Accept(seg, from)
			if out.FinRequested {
				phase = Closing
				continue
			}
			if out.SendAck {
				host, port := addrIP(peer), addrPort(peer)
				_ = ep.Send(out.Ack, host, port)
			}
			if out.Metadata != nil {
				meta = *out.Metadata
				if metaErr := onMetadata(meta); metaErr != nil {
					return meta, Result{Kind: kind.FatalIO, Err: metaErr}
				}
			}
			if out.Appended != nil {
				if sinkErr := sink(out.Appended); sinkErr != nil {
					return meta, Result{Kind: kind.FatalIO, Err: sinkErr}
				}
			}

		case Closing:
			k := handshake.CloseReceiver(ep, peer, eng.Expected(), log)
			phase = Closed
			return meta, Result{Kind: k}
		}
	}
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
