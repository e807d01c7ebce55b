// Package segment implements the fixed 12-byte wire format of one
// application-layer protocol data unit: the header (sequence number,
// acknowledgement number, flags, checksum) and its 0..PayloadSize payload.
package segment

import (
	"encoding/binary"
	"errors"

	"github.com/arfandi/udpftp/crc16"
)

// Size limits, normative per the wire format.
const (
	HeaderSize  = 12
	MaxSegment  = 32768
	PayloadSize = MaxSegment - HeaderSize
)

// Reserved sequence numbers.
const (
	SeqSyn          = 0
	SeqHandshakeAck = 1
	SeqMetadata     = 2
	SeqFirstData    = 3
)

var ErrMalformedSegment = errors.New("segment: buffer shorter than header")

// Header is the small value struct carrying the two sequence-space fields.
// It replaces a dict-shaped {"seq": ..., "ack": ...} accessor.
type Header struct {
	Seq uint32
	Ack uint32
}

// Segment is an immutable wire-format value. Once built by New or Decode
// it is never mutated in place; callers that need a modified segment build a
// fresh one. The checksum field holds whatever was computed at construction
// (by New) or read off the wire (by Decode) — callers wanting an integrity
// check use Valid.
type Segment struct {
	Header
	Flags    Flags
	checksum uint16
	payload  []byte
}

// New builds a Segment value. The checksum is computed over payload
// immediately so Encode and Valid agree without a separate encode step.
func New(hdr Header, flags Flags, payload []byte) Segment {
	return Segment{
		Header:   hdr,
		Flags:    flags.Mask(),
		checksum: crc16.Checksum(payload),
		payload:  payload,
	}
}

// Payload returns the segment's application data, empty for control segments.
func (s Segment) Payload() []byte { return s.payload }

// Checksum returns the checksum carried by the segment (computed at
// construction time, or parsed off the wire by Decode).
func (s Segment) Checksum() uint16 { return s.checksum }

// Valid recomputes the CRC-16 over the current payload and compares it
// against the stored checksum. It does not mutate the segment.
func (s Segment) Valid() bool {
	return crc16.Checksum(s.payload) == s.checksum
}

// Encode lays out the segment in its 12-byte-header wire form, little-endian,
// recomputing the checksum from the current payload.
func (s Segment) Encode() []byte {
	buf := make([]byte, HeaderSize+len(s.payload))
	binary.LittleEndian.PutUint32(buf[0:4], s.Seq)
	binary.LittleEndian.PutUint32(buf[4:8], s.Ack)
	buf[8] = byte(s.Flags.Mask())
	buf[9] = 0 // reserved, always zero on transmit
	binary.LittleEndian.PutUint16(buf[10:12], crc16.Checksum(s.payload))
	copy(buf[HeaderSize:], s.payload)
	return buf
}

// Decode parses a wire-format buffer into a Segment. It fails only when buf
// is shorter than the fixed header; a checksum mismatch is not an error here
// — callers test it explicitly with Valid, per the classification in the
// receiver engine.
func Decode(buf []byte) (Segment, error) {
	if len(buf) < HeaderSize {
		return Segment{}, ErrMalformedSegment
	}
	return Segment{
		Header: Header{
			Seq: binary.LittleEndian.Uint32(buf[0:4]),
			Ack: binary.LittleEndian.Uint32(buf[4:8]),
		},
		Flags:    Flags(buf[8]).Mask(),
		checksum: binary.LittleEndian.Uint16(buf[10:12]),
		payload:  buf[HeaderSize:],
	}, nil
}
