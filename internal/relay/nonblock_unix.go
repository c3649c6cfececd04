//go:build unix

package relay

import (
	"net"
	"syscall"

	"golang.org/x/sys/unix"
)

// readWithNonblockGuard sets O_NONBLOCK on the socket before the read and
// restores the prior flags after. This guards against a descriptor that
// reports ready but has nothing left to read; Go's runtime poller already
// manages non-blocking I/O underneath, so the flag flip never changes what
// a caller observes, only makes the guard explicit at the call site.
func readWithNonblockGuard(conn net.Conn, buf []byte) (int, error) {
	tc, ok := conn.(*net.TCPConn)
	if !ok {
		return conn.Read(buf)
	}

	rc, err := tc.SyscallConn()
	if err != nil {
		return conn.Read(buf)
	}

	var flags int
	var flagsErr error
	_ = rc.Control(func(fd uintptr) {
		flags, flagsErr = unix.FcntlInt(fd, syscall.F_GETFL, 0)
	})
	if flagsErr == nil {
		_ = rc.Control(func(fd uintptr) {
			_, _ = unix.FcntlInt(fd, syscall.F_SETFL, flags|syscall.O_NONBLOCK)
		})
	}

	n, readErr := conn.Read(buf)

	if flagsErr == nil {
		_ = rc.Control(func(fd uintptr) {
			_, _ = unix.FcntlInt(fd, syscall.F_SETFL, flags)
		})
	}

	return n, readErr
}
