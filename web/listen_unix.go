//go:build linux || darwin || freebsd || netbsd || openbsd || dragonfly

package web

import (
	"syscall"

	"golang.org/x/sys/unix"
)

// listenControl applies socket options before the listener binds
func (s *Server) listenControl(network, address string, rc syscall.RawConn) error {
	if !s.reusePort {
		return nil
	}

	var sockErr error
	err := rc.Control(func(fd uintptr) {
		sockErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEPORT, 1)
	})
	if err != nil {
		return err
	}
	return sockErr
}
