// Package receiver implements the in-order-only receive engine: it accepts
// exactly the next expected sequence number, discards anything else, and
// acknowledges every segment from its peer other than a FIN|ACK so a
// Go-Back-N sender knows where to resume.
package receiver

import (
	"net"

	"github.com/arfandi/udpftp/kind"
	"github.com/arfandi/udpftp/segment"
)

// Outcome reports what Accept decided about one incoming datagram and what,
// if anything, the caller should do about it.
type Outcome struct {
	Kind         kind.Kind
	Ack          segment.Segment
	SendAck      bool
	Appended     []byte
	Metadata     *segment.Metadata
	FinRequested bool
}

// Engine tracks the single next-expected sequence number a session is
// waiting for and the peer address it has locked onto.
type Engine struct {
	peer     net.Addr
	expected uint32
}

// NewEngine builds a receiver bound to a handshake-established peer,
// expecting the metadata segment first.
func NewEngine(peer net.Addr) *Engine {
	return &Engine{peer: peer, expected: segment.SeqMetadata}
}

// Expected reports the sequence number the engine is currently waiting for.
func (e *Engine) Expected() uint32 { return e.expected }

// Accept classifies one already-decoded segment against the engine's
// current state, in the priority order a Go-Back-N receiver must use:
// wrong peer, an in-progress FIN|ACK, a corrupt checksum, the expected
// sequence, a duplicate of an already-seen segment, or something arriving
// out of order.
func (e *Engine) Accept(seg segment.Segment, from net.Addr) Outcome {
	if from.String() != e.peer.String() {
		return Outcome{Kind: kind.WrongPeer}
	}

	if seg.Flags == segment.FinAck && e.expected > segment.SeqMetadata {
		return Outcome{Kind: kind.None, FinRequested: true}
	}

	if !seg.Valid() {
		ack := segment.New(segment.Header{Ack: e.expected}, segment.ACK, nil)
		return Outcome{Kind: kind.Corrupt, Ack: ack, SendAck: true}
	}

	switch {
	case seg.Seq == e.expected:
		ack := segment.New(segment.Header{Ack: e.expected + 1}, segment.ACK, nil)
		out := Outcome{Kind: kind.None, Ack: ack, SendAck: true}
		if e.expected == segment.SeqMetadata {
			meta, err := segment.DecodeMetadata(seg.Payload())
			if err != nil {
				ack := segment.New(segment.Header{Ack: e.expected}, segment.ACK, nil)
				return Outcome{Kind: kind.Corrupt, Ack: ack, SendAck: true}
			}
			out.Metadata = &meta
		} else {
			out.Appended = seg.Payload()
		}
		e.expected++
		return out

	case seg.Seq < e.expected:
		ack := segment.New(segment.Header{Ack: e.expected}, segment.ACK, nil)
		return Outcome{Kind: kind.Duplicate, Ack: ack, SendAck: true}

	default: // seg.Seq > e.expected
		ack := segment.New(segment.Header{Ack: e.expected}, segment.ACK, nil)
		return Outcome{Kind: kind.OutOfOrder, Ack: ack, SendAck: true}
	}
}
