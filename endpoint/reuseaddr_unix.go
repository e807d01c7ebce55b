//go:build unix

package endpoint

import (
	"syscall"

	"golang.org/x/sys/unix"
)

// controlReuseAddr sets SO_REUSEADDR on the socket before it binds, letting
// a restarted server rebind its broadcast port without waiting out
// TIME_WAIT. Installed as a net.ListenConfig.Control callback.
func controlReuseAddr(_, _ string, c syscall.RawConn) error {
	var operr error
	err := c.Control(func(fd uintptr) {
		operr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)
	})
	if err != nil {
		return err
	}
	return operr
}
