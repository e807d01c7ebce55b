package sender

import (
	"bytes"
	"net"
	"strconv"
	"sync"
	"testing"

	"github.com/arfandi/udpftp/endpoint"
	"github.com/arfandi/udpftp/internal/slogx"
	"github.com/arfandi/udpftp/kind"
	"github.com/arfandi/udpftp/segment"
)

func mustEndpoint(t *testing.T) (*endpoint.Endpoint, int) {
	t.Helper()
	ep, err := endpoint.New(endpoint.Config{IP: "127.0.0.1", Port: 0})
	if err != nil {
		t.Fatalf("endpoint.New: %v", err)
	}
	t.Cleanup(func() { ep.Close() })
	_, portStr, _ := net.SplitHostPort(ep.LocalAddr().String())
	port, _ := strconv.Atoi(portStr)
	return ep, port
}

func TestSplitOneByteFile(t *testing.T) {
	segs, err := Split(bytes.NewReader([]byte("X")), 1)
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	if len(segs) != 1 {
		t.Fatalf("len(segs) = %d, want 1", len(segs))
	}
	if segs[0].Seq != segment.SeqFirstData {
		t.Fatalf("seq = %d, want %d", segs[0].Seq, segment.SeqFirstData)
	}
	if !bytes.Equal(segs[0].Payload(), []byte("X")) {
		t.Fatalf("payload = %q, want %q", segs[0].Payload(), "X")
	}
}

func TestSplitExactWindowFile(t *testing.T) {
	size := int64(3 * segment.MaxSegment)
	segs, err := Split(bytes.NewReader(make([]byte, size)), size)
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	if len(segs) != 3 {
		t.Fatalf("len(segs) = %d, want 3", len(segs))
	}
	for i, seg := range segs {
		wantSeq := uint32(segment.SeqFirstData + i)
		if seg.Seq != wantSeq {
			t.Errorf("segs[%d].Seq = %d, want %d", i, seg.Seq, wantSeq)
		}
		if len(seg.Payload()) != segment.PayloadSize {
			t.Errorf("segs[%d] payload len = %d, want %d", i, len(seg.Payload()), segment.PayloadSize)
		}
	}
}

func TestSplitUnderSegmentsOversizedFile(t *testing.T) {
	// The segment count is based on MaxSegment while reads step by the
	// smaller PayloadSize, so a file larger than count*PayloadSize (here
	// 2*PayloadSize = 65512 bytes of a 65526-byte file) never has its tail read.
	size := int64(2*segment.MaxSegment - 10)
	segs, err := Split(bytes.NewReader(make([]byte, size)), size)
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	if len(segs) != 2 {
		t.Fatalf("len(segs) = %d, want 2", len(segs))
	}
	if len(segs[1].Payload()) != segment.PayloadSize {
		t.Fatalf("second segment payload len = %d, want %d (full chunk, tail dropped)", len(segs[1].Payload()), segment.PayloadSize)
	}
}

// echoPeer answers every received segment with a single ACK for the next
// expected seq, simulating a well-behaved in-order receiver.
func echoPeer(t *testing.T, ep *endpoint.Endpoint, peerAddr net.Addr, host string, port int, rounds int) {
	t.Helper()
	for i := 0; i < rounds; i++ {
		seg, from, err := ep.Receive()
		if err != nil {
			t.Errorf("echoPeer receive: %v", err)
			return
		}
		ack := segment.New(segment.Header{Ack: seg.Seq + 1}, segment.ACK, nil)
		if sendErr := ep.Send(ack, host, port); sendErr != nil {
			t.Errorf("echoPeer send: %v", sendErr)
			return
		}
		_ = from
		_ = peerAddr
	}
}

func TestRunDeliversOneByteFile(t *testing.T) {
	senderEp, _ := mustEndpoint(t)
	receiverEp, receiverPort := mustEndpoint(t)

	receiverAddr, _ := net.ResolveUDPAddr("udp", net.JoinHostPort("127.0.0.1", strconv.Itoa(receiverPort)))

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		echoPeer(t, receiverEp, nil, addrIP(senderEp.LocalAddr()), addrPort(senderEp.LocalAddr()), 2)
	}()

	meta := MetadataSegment(segment.Metadata{Basename: "a", Extension: "txt", Size: 1})
	data, err := Split(bytes.NewReader([]byte("X")), 1)
	if err != nil {
		t.Fatalf("Split: %v", err)
	}

	eng := NewEngine(senderEp, receiverAddr, slogx.Logger{})
	result := eng.Run(meta, data)
	wg.Wait()

	if result.Kind != kind.None {
		t.Fatalf("Run kind = %v, want None", result.Kind)
	}
}
