//go:build !(linux || darwin || freebsd || netbsd || openbsd || dragonfly)

package web

import "syscall"

func (s *Server) listenControl(network, address string, rc syscall.RawConn) error {
	if s.reusePort {
		return ErrReusePortUnsupported
	}
	return nil
}
