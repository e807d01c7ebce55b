package segment

import "math/bits"

// Flags is the segment's flag bitfield. It replaces the source protocol's
// list-of-flag-name-strings construction with a typed bitmask over the
// three-element universe {SYN, ACK, FIN}.
type Flags uint8

const (
	FIN Flags = 1 << 0
	SYN Flags = 1 << 1
	ACK Flags = 1 << 4
)

// flagMask covers every recognized bit; decoders mask incoming flag bytes
// against it so undefined bits never leak into comparisons.
const flagMask = FIN | SYN | ACK

// Dedicated flag combinations used by the handshake.
const (
	SynAck Flags = SYN | ACK
	FinAck Flags = FIN | ACK
)

// HasAll reports whether every bit in mask is set in flags.
func (f Flags) HasAll(mask Flags) bool { return f&mask == mask }

// HasAny reports whether any bit in mask is set in flags.
func (f Flags) HasAny(mask Flags) bool { return f&mask != 0 }

// Mask clears any bit outside the recognized {SYN,ACK,FIN} universe.
func (f Flags) Mask() Flags { return f & flagMask }

// String renders flags as a short comma-joined list, e.g. "[SYN,ACK]".
func (f Flags) String() string {
	switch f {
	case 0:
		return "[]"
	case SynAck:
		return "[SYN,ACK]"
	case FinAck:
		return "[FIN,ACK]"
	case ACK:
		return "[ACK]"
	case SYN:
		return "[SYN]"
	case FIN:
		return "[FIN]"
	}
	buf := make([]byte, 0, 2+4*bits.OnesCount8(uint8(f)))
	buf = append(buf, '[')
	buf = f.AppendFormat(buf)
	buf = append(buf, ']')
	return string(buf)
}

// AppendFormat appends a human readable flag list to b, returning the
// extended buffer. Flags are printed FIN, SYN, ACK in that bit order.
func (f Flags) AppendFormat(b []byte) []byte {
	first := true
	add := func(name string, bit Flags) {
		if f&bit == 0 {
			return
		}
		if !first {
			b = append(b, ',')
		}
		first = false
		b = append(b, name...)
	}
	add("FIN", FIN)
	add("SYN", SYN)
	add("ACK", ACK)
	return b
}
