// Package sender implements the file-splitting and Go-Back-N send engine
// that pushes an outbound file through an established session.
package sender

import (
	"io"

	"github.com/arfandi/udpftp/segment"
)

// Split divides a file into the ordered data-segment list the wire format
// expects: seq 3, 4, 5, ... Count is deliberately computed from
// segment.MaxSegment (the segment-size ceiling) while each chunk is read
// using segment.PayloadSize as the step — the source protocol's own
// discrepancy, preserved verbatim (see DESIGN.md): whenever size exceeds
// count*segment.PayloadSize this under-segments the file and silently drops
// its final bytes. An exact multiple of segment.MaxSegment, for example,
// loses segment.HeaderSize bytes per segment; sizes at or below
// count*segment.PayloadSize are read in full.
func Split(r io.ReaderAt, size int64) ([]segment.Segment, error) {
	count := ceilDiv(size, segment.MaxSegment)
	segs := make([]segment.Segment, 0, count)
	for k := int64(0); k < count; k++ {
		offset := k * segment.PayloadSize
		buf := make([]byte, segment.PayloadSize)
		n, err := r.ReadAt(buf, offset)
		if err != nil && err != io.EOF {
			return nil, err
		}
		if n == 0 {
			break
		}
		seq := uint32(segment.SeqFirstData) + uint32(k)
		segs = append(segs, segment.New(segment.Header{Seq: seq}, 0, buf[:n]))
		if err == io.EOF {
			break
		}
	}
	return segs, nil
}

// MetadataSegment builds the seq=2 control segment carrying
// "<basename>,<extension>,<size>".
func MetadataSegment(meta segment.Metadata) segment.Segment {
	return segment.New(segment.Header{Seq: segment.SeqMetadata}, 0, segment.EncodeMetadata(meta))
}

func ceilDiv(a, b int64) int64 {
	if a <= 0 {
		return 0
	}
	return (a + b - 1) / b
}
