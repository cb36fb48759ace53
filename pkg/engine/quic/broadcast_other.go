//go:build !(linux || darwin || freebsd || netbsd || openbsd)

package quic

import "net"

// enableBroadcast is a no-op where SO_BROADCAST is not wired up; unicast
// discovery still works.
func enableBroadcast(_ *net.UDPConn) error { return nil }
