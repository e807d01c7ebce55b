package handshake

import (
	"log/slog"
	"net"
	"time"

	"github.com/arfandi/udpftp/endpoint"
	"github.com/arfandi/udpftp/internal/slogx"
	"github.com/arfandi/udpftp/kind"
	"github.com/arfandi/udpftp/segment"
)

// CloseDeadline bounds the four-way close handshake (TIMEOUT_LISTEN): it
// must exceed the socket's ReadTimeout so at least a few retransmissions fit
// before a side gives up and closes unilaterally.
const CloseDeadline = 30 * time.Second

// CloseSender runs the four-way teardown from the side that initiates it:
// send FIN|ACK, await the peer's ACK then its own FIN|ACK, send the final
// ACK. seq is the sequence number one past the last data
// segment, used as both seq and ack on the FIN|ACK per the wire diagram.
// It returns kind.None on a clean close or kind.DeadlineExceeded if
// CloseDeadline elapses first; the socket is always left for the caller to
// close either way.
func CloseSender(ep *endpoint.Endpoint, peer net.Addr, seq uint32, log slogx.Logger) kind.Kind {
	host, port := addrIP(peer), addrPort(peer)
	finAck := segment.New(segment.Header{Seq: seq, Ack: seq}, segment.FinAck, nil)
	deadline := time.Now().Add(CloseDeadline)
	state := FinSent

	send := func() {
		_ = ep.Send(finAck, host, port)
	}
	send()

	for {
		seg, from, err := ep.Receive()
		if err == endpoint.ErrTimeout {
			if time.Now().After(deadline) {
				log.Warn("handshake:close-sender deadline exceeded, closing unilaterally")
				return kind.DeadlineExceeded
			}
			log.Debug("handshake:close-sender retransmit FIN|ACK", slog.String("state", state.String()))
			send()
			continue
		}
		if err != nil || !sameAddr(from, peer) {
			continue
		}

		switch {
		case state == FinSent && seg.Flags == segment.ACK:
			state = FinWait

		case seg.Flags == segment.FinAck:
			ack := segment.New(segment.Header{Seq: seq, Ack: seq}, segment.ACK, nil)
			_ = ep.Send(ack, host, port)
			log.Info("handshake:close-sender complete")
			return kind.None
		}
	}
}

// CloseReceiver runs the four-way teardown from the side that responds to
// it: it has just classified an incoming FIN|ACK (see the receiver engine),
// acknowledges it, sends its own FIN|ACK, and waits for the final ACK.
func CloseReceiver(ep *endpoint.Endpoint, peer net.Addr, ackSeq uint32, log slogx.Logger) kind.Kind {
	host, port := addrIP(peer), addrPort(peer)

	ack := segment.New(segment.Header{Seq: ackSeq - 1, Ack: ackSeq}, segment.ACK, nil)
	_ = ep.Send(ack, host, port)

	finAck := segment.New(segment.Header{Seq: ackSeq, Ack: ackSeq}, segment.FinAck, nil)
	_ = ep.Send(finAck, host, port)

	deadline := time.Now().Add(CloseDeadline)
	for {
		seg, from, err := ep.Receive()
		if err == endpoint.ErrTimeout {
			if time.Now().After(deadline) {
				log.Warn("handshake:close-receiver deadline exceeded, closing unilaterally")
				return kind.DeadlineExceeded
			}
			log.Debug("handshake:close-receiver retransmit FIN|ACK")
			_ = ep.Send(finAck, host, port)
			continue
		}
		if err != nil || !sameAddr(from, peer) {
			continue
		}

		switch seg.Flags {
		case segment.ACK:
			log.Info("handshake:close-receiver complete")
			return kind.None
		case segment.FinAck:
			// sender never saw our ACK; resend it.
			_ = ep.Send(ack, host, port)
		}
	}
}

func sameAddr(a, b net.Addr) bool { return a.String() == b.String() }
