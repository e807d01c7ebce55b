package handshake

import (
	"net"
	"strconv"
	"sync"
	"testing"

	"github.com/arfandi/udpftp/endpoint"
	"github.com/arfandi/udpftp/internal/slogx"
	"github.com/arfandi/udpftp/kind"
)

func newEndpoint(t *testing.T, reuse bool) (*endpoint.Endpoint, int) {
	t.Helper()
	ep, err := endpoint.New(endpoint.Config{IP: "127.0.0.1", Port: 0, ReuseAddr: reuse})
	if err != nil {
		t.Fatalf("endpoint.New: %v", err)
	}
	t.Cleanup(func() { ep.Close() })
	_, portStr, _ := net.SplitHostPort(ep.LocalAddr().String())
	port, _ := strconv.Atoi(portStr)
	return ep, port
}

func TestThreeWayHandshakeEstablishes(t *testing.T) {
	server, serverPort := newEndpoint(t, true)
	client, _ := newEndpoint(t, false)

	var wg sync.WaitGroup
	wg.Add(2)

	var serverPeer, clientPeer net.Addr
	var serverErr, clientErr error

	go func() {
		defer wg.Done()
		serverPeer, serverErr = OpenServer(server, slogx.Logger{})
	}()
	go func() {
		defer wg.Done()
		clientPeer, clientErr = OpenClient(client, "127.0.0.1", serverPort, slogx.Logger{})
	}()
	wg.Wait()

	if serverErr != nil {
		t.Fatalf("OpenServer: %v", serverErr)
	}
	if clientErr != nil {
		t.Fatalf("OpenClient: %v", clientErr)
	}
	if serverPeer == nil || clientPeer == nil {
		t.Fatalf("expected both sides to resolve a peer address")
	}
}

func TestFourWayCloseCompletes(t *testing.T) {
	sender, senderPort := newEndpoint(t, true)
	receiver, receiverPort := newEndpoint(t, false)

	senderAddr, err := net.ResolveUDPAddr("udp", net.JoinHostPort("127.0.0.1", strconv.Itoa(senderPort)))
	if err != nil {
		t.Fatalf("ResolveUDPAddr: %v", err)
	}
	receiverAddr, err := net.ResolveUDPAddr("udp", net.JoinHostPort("127.0.0.1", strconv.Itoa(receiverPort)))
	if err != nil {
		t.Fatalf("ResolveUDPAddr: %v", err)
	}

	var wg sync.WaitGroup
	wg.Add(2)
	var senderKind, receiverKind kind.Kind

	go func() {
		defer wg.Done()
		senderKind = CloseSender(sender, receiverAddr, 5, slogx.Logger{})
	}()
	go func() {
		defer wg.Done()
		receiverKind = CloseReceiver(receiver, senderAddr, 5, slogx.Logger{})
	}()
	wg.Wait()

	if senderKind != kind.None {
		t.Fatalf("CloseSender kind = %v, want None", senderKind)
	}
	if receiverKind != kind.None {
		t.Fatalf("CloseReceiver kind = %v, want None", receiverKind)
	}
}
