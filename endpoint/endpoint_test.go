package endpoint

import (
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/arfandi/udpftp/segment"
)

func mustNew(t *testing.T, reuse bool) *Endpoint {
	t.Helper()
	e, err := New(Config{IP: "127.0.0.1", Port: 0, ReuseAddr: reuse})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { e.Close() })
	return e
}

func TestSendReceiveRoundTrip(t *testing.T) {
	server := mustNew(t, true)
	client := mustNew(t, false)

	host, port := splitHostPort(t, server.LocalAddr().String())

	seg := segment.New(segment.Header{Seq: 3}, 0, []byte("payload"))
	if err := client.Send(seg, host, port); err != nil {
		t.Fatalf("Send: %v", err)
	}

	got, _, err := server.Receive()
	if err != nil {
		t.Fatalf("Receive: %v", err)
	}
	if string(got.Payload()) != "payload" {
		t.Fatalf("Receive payload = %q, want %q", got.Payload(), "payload")
	}
}

func TestReceiveTimesOut(t *testing.T) {
	e := mustNew(t, false)
	start := time.Now()
	_, _, err := e.Receive()
	if err != ErrTimeout {
		t.Fatalf("Receive() err = %v, want ErrTimeout", err)
	}
	if elapsed := time.Since(start); elapsed < ReadTimeout {
		t.Fatalf("Receive returned after %v, want at least %v", elapsed, ReadTimeout)
	}
}

func splitHostPort(t *testing.T, hostport string) (string, int) {
	t.Helper()
	host, portStr, err := net.SplitHostPort(hostport)
	if err != nil {
		t.Fatalf("SplitHostPort(%q): %v", hostport, err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		t.Fatalf("parse port %q: %v", portStr, err)
	}
	return host, port
}
