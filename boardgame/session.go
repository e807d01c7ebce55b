package boardgame

import (
	"net"
	"strconv"

	"github.com/arfandi/udpftp/endpoint"
	"github.com/arfandi/udpftp/internal/slogx"
	"github.com/arfandi/udpftp/kind"
	"github.com/arfandi/udpftp/segment"
)

// SendMove transmits one move and retries until the peer acknowledges it,
// mirroring serverGame.py's send_move/receive_move stop-and-wait exchange
// reused here for a single in-flight move instead of a send window.
func SendMove(ep *endpoint.Endpoint, peer net.Addr, m Move, log slogx.Logger) kind.Kind {
	payload, err := EncodeMove(m)
	if err != nil {
		return kind.FatalIO
	}
	seg := segment.New(segment.Header{}, 0, payload)
	host, port := addrIP(peer), addrPort(peer)
	if sendErr := ep.Send(seg, host, port); sendErr != nil {
		return kind.FatalIO
	}

	for {
		reply, from, recvErr := ep.Receive()
		if recvErr == endpoint.ErrTimeout {
			log.Debug("boardgame:move ack timeout, retransmitting")
			if sendErr := ep.Send(seg, host, port); sendErr != nil {
				return kind.FatalIO
			}
			continue
		}
		if recvErr != nil {
			return kind.FatalIO
		}
		if from.String() != peer.String() {
			continue
		}
		if reply.Flags == segment.ACK {
			return kind.None
		}
	}
}

// ReceiveMove blocks for the peer's next move, validating its checksum and
// acknowledging it once accepted.
func ReceiveMove(ep *endpoint.Endpoint, peer net.Addr, log slogx.Logger) (Move, kind.Kind) {
	host, port := addrIP(peer), addrPort(peer)
	for {
		seg, from, err := ep.Receive()
		if err == endpoint.ErrTimeout {
			continue
		}
		if err != nil {
			return Move{}, kind.FatalIO
		}
		if from.String() != peer.String() {
			continue
		}
		if !seg.Valid() {
			log.Debug("boardgame:corrupt move, waiting for retransmit")
			continue
		}
		m, decodeErr := DecodeMove(seg.Payload())
		if decodeErr != nil {
			continue
		}
		ack := segment.New(segment.Header{Ack: seg.Seq + 1}, segment.ACK, nil)
		if sendErr := ep.Send(ack, host, port); sendErr != nil {
			return Move{}, kind.FatalIO
		}
		return m, kind.None
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
