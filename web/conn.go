package web

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"sync/atomic"
	"time"
)

// conn is one accepted client connection. Requests are parsed from an
// accumulating read buffer; responses to pipelined requests that are
// already buffered are batched into a single write.
type conn struct {
	srv     *Server
	rwc     net.Conn
	handler HandlerFunc
	ctx     context.Context

	buf []byte // read buffer; buf[:n] holds unparsed bytes
	n   int
	out []byte // pending response bytes

	served int
	idle   atomic.Bool
}

func (c *conn) serve() {
	s := c.srv
	defer func() {
		c.rwc.Close()
		if c.buf != nil {
			s.bytePool.Put(c.buf)
		}
		if c.out != nil {
			s.bytePool.Put(c.out)
		}
		s.trackConn(c, false)
	}()

	c.buf = s.bytePool.Get(initialReadSize)
	c.out = s.bytePool.Get(initialReadSize)[:0]

	for {
		req := acquireRequest()
		consumed, err := req.parse(c.buf[:c.n], s.limits)

		switch {
		case err == nil:
			keepAlive := c.handle(req)
			releaseRequest(req)

			copy(c.buf, c.buf[consumed:c.n])
			c.n -= consumed

			if !keepAlive {
				c.flush()
				return
			}

		case errors.Is(err, ErrIncomplete):
			releaseRequest(req)
			if !c.flush() {
				return
			}
			if !c.read() {
				return
			}

		default:
			releaseRequest(req)
			c.reject(err)
			return
		}
	}
}

// handle runs one request and queues its response. It reports whether the
// connection may be reused.
func (c *conn) handle(req *Request) bool {
	s := c.srv
	c.idle.Store(false)
	c.served++

	req.RemoteAddr = c.rwc.RemoteAddr().String()
	req.SetContext(c.ctx)

	w := acquireResponse()
	defer releaseResponse(w)

	ok := s.serve(c.handler, w, req)
	keepAlive := ok && req.KeepAlive() && !s.closing.Load()

	c.out = c.appendOut(w, req.Method == http.MethodHead, keepAlive)
	return keepAlive
}

// appendOut serializes w after any pending output, growing the pooled
// output buffer when needed
func (c *conn) appendOut(w *Response, headOnly, keepAlive bool) []byte {
	before := cap(c.out)
	out := w.AppendTo(c.out, headOnly, keepAlive)
	if cap(out) != before {
		// append reallocated; the old pooled buffer is no longer referenced
		c.srv.bytePool.Put(c.out)
	}
	return out
}

// read fills the buffer from the socket. It returns false when the
// connection should be closed.
func (c *conn) read() bool {
	s := c.srv

	if c.n == len(c.buf) {
		c.buf = s.bytePool.Grow(c.buf, 2*len(c.buf))
	}

	timeout := s.readTimeout
	if c.n == 0 {
		if c.served > 0 {
			timeout = s.idleTimeout
		}
		c.idle.Store(true)
		if s.closing.Load() {
			return false
		}
	}
	c.setDeadline(c.rwc.SetReadDeadline, timeout)

	nr, err := c.rwc.Read(c.buf[c.n:])
	c.n += nr
	if err != nil {
		if nr > 0 {
			// Parse what arrived; the error surfaces again on the next read
			return true
		}
		var ne net.Error
		if c.n > 0 && errors.As(err, &ne) && ne.Timeout() {
			c.reject(errRequestTimeout)
		}
		return false
	}
	c.idle.Store(false)
	return true
}

// flush writes pending output. It returns false on write errors.
func (c *conn) flush() bool {
	if len(c.out) == 0 {
		return true
	}
	c.setDeadline(c.rwc.SetWriteDeadline, c.srv.writeTimeout)
	_, err := c.rwc.Write(c.out)
	c.out = c.out[:0]
	if err != nil {
		c.srv.logger.Debug("write failed", slog.String("remote", c.rwc.RemoteAddr().String()), slog.Any("error", err))
		return false
	}
	return true
}

var errRequestTimeout = errors.New("request read timeout")

// reject answers a request that could not be parsed and flushes
func (c *conn) reject(err error) {
	s := c.srv

	code, reason := http.StatusBadRequest, "bad_request"
	switch {
	case errors.Is(err, ErrHeaderTooLarge):
		code, reason = http.StatusRequestHeaderFieldsTooLarge, "header_too_large"
	case errors.Is(err, ErrBodyTooLarge):
		code, reason = http.StatusRequestEntityTooLarge, "body_too_large"
	case errors.Is(err, ErrUnsupportedEncoding):
		code, reason = http.StatusNotImplemented, "unsupported_encoding"
	case errors.Is(err, errRequestTimeout):
		code, reason = http.StatusRequestTimeout, "timeout"
	}

	if s.monitor != nil {
		s.monitor.RecordRejected(reason)
	}
	s.logger.Debug("request rejected",
		slog.String("remote", c.rwc.RemoteAddr().String()),
		slog.Int("status", code),
		slog.Any("error", err),
	)

	w := acquireResponse()
	defer releaseResponse(w)
	w.Error(code, statusText(code))
	c.out = c.appendOut(w, false, false)
	c.flush()
}

func (c *conn) setDeadline(set func(time.Time) error, d time.Duration) {
	if d <= 0 {
		_ = set(time.Time{})
		return
	}
	_ = set(time.Now().Add(d))
}
