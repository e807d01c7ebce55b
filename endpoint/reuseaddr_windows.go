//go:build windows

package endpoint

import "syscall"

// controlReuseAddr is a no-op on Windows: SO_REUSEADDR there permits
// multiple sockets on the same address simultaneously rather than easing
// TIME_WAIT rebinding, so it is deliberately not requested.
func controlReuseAddr(_, _ string, _ syscall.RawConn) error {
	return nil
}
