//go:build linux || darwin || freebsd || netbsd || openbsd

package quic

import (
    "net"

    "golang.org/x/sys/unix"
)

func enableBroadcast(c *net.UDPConn) error {
    rc, err := c.SyscallConn()
    if err != nil {
        return err
    }
    var serr error
    if err := rc.Control(func(fd uintptr) {
        serr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_BROADCAST, 1)
    }); err != nil {
        return err
    }
    return serr
}
