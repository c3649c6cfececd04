//go:build !unix

package relay

import "net"

// readWithNonblockGuard is a plain read on platforms without fcntl-style
// socket flags.
func readWithNonblockGuard(conn net.Conn, buf []byte) (int, error) {
	return conn.Read(buf)
}
