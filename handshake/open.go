package handshake

import (
	"errors"
	"log/slog"
	"net"
	"strconv"

	"github.com/arfandi/udpftp/endpoint"
	"github.com/arfandi/udpftp/internal/slogx"
	"github.com/arfandi/udpftp/segment"
)

// MaxHandshakeRetries bounds the server's AWAIT_ACK retransmit loop (spec:
// "up to an implementation-defined bound, then return failure").
const MaxHandshakeRetries = 8

var ErrHandshakeFailed = errors.New("handshake: retry budget exhausted")

// OpenServer runs the server side of the three-way open ("accept"): it
// waits for a client's SYN, replies SYN|ACK, and waits for the
// confirming ACK. It returns the address of the peer that completed the
// handshake.
func OpenServer(ep *endpoint.Endpoint, log slogx.Logger) (net.Addr, error) {
	state := Idle
	var peer net.Addr
	synAck := segment.New(segment.Header{Seq: segment.SeqSyn, Ack: segment.SeqHandshakeAck}, segment.SynAck, nil)
	retries := 0

	for {
		seg, from, err := ep.Receive()
		if err == endpoint.ErrTimeout {
			if state != SynRcvdReply {
				continue // still waiting for the first SYN; no bound on this wait
			}
			retries++
			if retries > MaxHandshakeRetries {
				return nil, ErrHandshakeFailed
			}
			log.Debug("handshake:server retransmit SYN|ACK", slog.Int("retries", retries))
			if sendErr := ep.Send(synAck, addrIP(peer), addrPort(peer)); sendErr != nil {
				return nil, sendErr
			}
			continue
		}
		if err != nil {
			return nil, err
		}

		switch state {
		case Idle:
			if seg.Flags == segment.SYN && seg.Seq == segment.SeqSyn {
				peer = from
				synAck = segment.New(segment.Header{Seq: segment.SeqSyn, Ack: seg.Seq + 1}, segment.SynAck, nil)
				if err := ep.Send(synAck, addrIP(peer), addrPort(peer)); err != nil {
					return nil, err
				}
				state = SynRcvdReply
				log.Info("handshake:server received SYN", slog.String("peer", peer.String()))
			}
			// anything else while idle is not yet meaningful; keep listening.

		case SynRcvdReply:
			if from.String() != peer.String() {
				log.Debug("handshake:server ignoring datagram from other peer", slog.String("from", from.String()))
				continue
			}
			if seg.Flags.HasAny(segment.ACK) {
				log.Info("handshake:server established", slog.String("peer", peer.String()))
				return peer, nil
			}
			// duplicate SYN or noise; keep waiting in this state.
		}
	}
}

// OpenClient runs the client side of the three-way open ("connect"): it
// wakes the server with an empty probe datagram, sends the literal SYN that
// starts the handshake, then drives the SYN|ACK / ACK exchange to
// completion.
func OpenClient(ep *endpoint.Endpoint, serverIP string, broadcastPort int, log slogx.Logger) (net.Addr, error) {
	probe := segment.New(segment.Header{}, 0, nil)
	if err := ep.Send(probe, serverIP, broadcastPort); err != nil {
		return nil, err
	}

	syn := segment.New(segment.Header{Seq: segment.SeqSyn}, segment.SYN, nil)
	if err := ep.Send(syn, serverIP, broadcastPort); err != nil {
		return nil, err
	}

	state := SynSent
	var peer net.Addr
	lastSent := syn
	lastIP, lastPort := serverIP, broadcastPort
	retries := 0

	for {
		seg, from, err := ep.Receive()
		if err == endpoint.ErrTimeout {
			retries++
			if retries > MaxHandshakeRetries {
				return nil, ErrHandshakeFailed
			}
			log.Debug("handshake:client retransmit", slog.String("state", state.String()))
			if sendErr := ep.Send(lastSent, lastIP, lastPort); sendErr != nil {
				return nil, sendErr
			}
			continue
		}
		if err != nil {
			return nil, err
		}

		if peer == nil {
			peer = from
		} else if from.String() != peer.String() {
			continue // tie-break: ignore datagrams from any other address
		}
		host, port := addrIP(peer), addrPort(peer)

		switch {
		case seg.Flags == segment.SynAck:
			reply := segment.New(segment.Header{Seq: segment.SeqHandshakeAck, Ack: segment.SeqHandshakeAck}, segment.ACK, nil)
			if err := ep.Send(reply, host, port); err != nil {
				return nil, err
			}
			log.Info("handshake:client established", slog.String("peer", peer.String()))
			return peer, nil

		default:
			// not a handshake segment we recognize yet; keep listening.
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
