package web

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/veeox/veeox/core/observability"
	"github.com/veeox/veeox/core/pools"
	"github.com/veeox/veeox/pkg/logger"
)

// Connection read buffers start at this size and grow by doubling
const initialReadSize = 2048

// shutdownPollInterval is how often Shutdown re-checks for idle connections
const shutdownPollInterval = 50 * time.Millisecond

// Server accepts HTTP/1.1 connections and dispatches requests through the
// middleware chain and the router
type Server struct {
	router     *Router
	middleware []Middleware

	logger  *slog.Logger
	monitor *observability.Monitor
	limits  Limits

	readTimeout  time.Duration
	writeTimeout time.Duration
	idleTimeout  time.Duration
	reusePort    bool

	bytePool *pools.BytePool

	mu        sync.Mutex
	handler   HandlerFunc // compiled chain, rebuilt after Use
	listeners map[net.Listener]struct{}
	conns     map[*conn]struct{}
	connWG    sync.WaitGroup
	closing   atomic.Bool
}

// Option configures a Server
type Option func(*Server)

// WithLogger sets the server logger
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = logger.OrDiscard(l) }
}

// WithLimits sets request size limits
func WithLimits(l Limits) Option {
	return func(s *Server) { s.limits = l }
}

// WithTimeouts sets read, write and keep-alive idle timeouts; zero disables
// a timeout
func WithTimeouts(read, write, idle time.Duration) Option {
	return func(s *Server) {
		s.readTimeout = read
		s.writeTimeout = write
		s.idleTimeout = idle
	}
}

// WithReusePort sets SO_REUSEPORT on listeners created by Listen
func WithReusePort(enabled bool) Option {
	return func(s *Server) { s.reusePort = enabled }
}

// WithMonitor records connection and rejection metrics on m
func WithMonitor(m *observability.Monitor) Option {
	return func(s *Server) { s.monitor = m }
}

// NewServer creates a server with default limits and timeouts
func NewServer(opts ...Option) *Server {
	s := &Server{
		router:       NewRouter(),
		logger:       logger.Discard(),
		limits:       DefaultLimits(),
		readTimeout:  10 * time.Second,
		writeTimeout: 10 * time.Second,
		idleTimeout:  60 * time.Second,
		bytePool:     pools.NewBytePool(),
		listeners:    make(map[net.Listener]struct{}),
		conns:        make(map[*conn]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the fixed identifying name of the type. It is safe to call
// on a nil *Server.
func (*Server) Name() string {
	return ServerName
}

// Router returns the server's router
func (s *Server) Router() *Router {
	return s.router
}

// PoolStats reports usage of the connection buffer pool
func (s *Server) PoolStats() pools.BytePoolStats {
	return s.bytePool.Stats()
}

// Use appends middleware to the chain; the first added runs outermost
func (s *Server) Use(mws ...Middleware) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.middleware = append(s.middleware, mws...)
	s.handler = nil
}

// Handle registers a route
func (s *Server) Handle(route Route) {
	s.router.Handle(route)
}

// GET registers a GET route
func (s *Server) GET(pattern string, h HandlerFunc) { s.router.Add(http.MethodGet, pattern, h) }

// POST registers a POST route
func (s *Server) POST(pattern string, h HandlerFunc) { s.router.Add(http.MethodPost, pattern, h) }

// PUT registers a PUT route
func (s *Server) PUT(pattern string, h HandlerFunc) { s.router.Add(http.MethodPut, pattern, h) }

// PATCH registers a PATCH route
func (s *Server) PATCH(pattern string, h HandlerFunc) { s.router.Add(http.MethodPatch, pattern, h) }

// DELETE registers a DELETE route
func (s *Server) DELETE(pattern string, h HandlerFunc) { s.router.Add(http.MethodDelete, pattern, h) }

// HEAD registers a HEAD route
func (s *Server) HEAD(pattern string, h HandlerFunc) { s.router.Add(http.MethodHead, pattern, h) }

// OPTIONS registers an OPTIONS route
func (s *Server) OPTIONS(pattern string, h HandlerFunc) { s.router.Add(http.MethodOptions, pattern, h) }

// compiled returns the middleware chain around the router
func (s *Server) compiled() HandlerFunc {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.handler == nil {
		s.handler = Chain(s.dispatch, s.middleware...)
	}
	return s.handler
}

// dispatch routes the request to its handler, answering 404 or 405 when
// no route matches
func (s *Server) dispatch(w *Response, r *Request) {
	route, params, allowed := s.router.Find(r.Method, r.Path)
	if route == nil {
		if len(allowed) > 0 {
			w.SetHeader(HeaderAllow, strings.Join(allowed, ", "))
			w.Error(http.StatusMethodNotAllowed, "Method Not Allowed")
			return
		}
		w.Error(http.StatusNotFound, "Not Found")
		return
	}

	r.Pattern = route.Pattern
	for _, p := range params {
		r.SetParam(p.Key, p.Value)
	}
	route.Handler(w, r)
}

// serve runs the chain; a panic that escapes it becomes a 500
func (s *Server) serve(handler HandlerFunc, w *Response, r *Request) (ok bool) {
	defer func() {
		if err := recover(); err != nil {
			s.logger.ErrorContext(r.Context(), "handler panic",
				slog.Any("panic", err),
				slog.String("method", r.Method),
				slog.String("path", r.Path),
			)
			w.Reset()
			w.Error(http.StatusInternalServerError, "Internal Server Error")
			ok = false
		}
	}()
	handler(w, r)
	return true
}

// Listen opens a TCP listener on addr with the server's socket options
func (s *Server) Listen(ctx context.Context, addr string) (net.Listener, error) {
	lc := net.ListenConfig{Control: s.listenControl}
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", addr, err)
	}
	return ln, nil
}

// ListenAndServe listens on the TCP address addr and calls Serve
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := s.Listen(ctx, addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is done or Shutdown is called.
// Cancelling ctx only stops accepting; in-flight requests are ended by
// Shutdown. After Shutdown, Serve returns ErrServerClosed.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	if !s.trackListener(ln, true) {
		ln.Close()
		return ErrServerClosed
	}
	defer s.trackListener(ln, false)

	stop := context.AfterFunc(ctx, func() { ln.Close() })
	defer stop()

	// Requests keep the values of ctx but not its cancellation
	base := context.WithoutCancel(ctx)
	handler := s.compiled()

	s.logger.InfoContext(ctx, "server listening", slog.String("addr", ln.Addr().String()))

	var backoff time.Duration
	for {
		rw, err := ln.Accept()
		if err != nil {
			if s.closing.Load() {
				return ErrServerClosed
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				backoff = nextBackoff(backoff)
				s.logger.Warn("accept error; retrying", slog.Any("error", err), slog.Duration("backoff", backoff))
				time.Sleep(backoff)
				continue
			}
			return fmt.Errorf("accept: %w", err)
		}
		backoff = 0

		c := &conn{srv: s, rwc: rw, handler: handler, ctx: base}
		if !s.trackConn(c, true) {
			rw.Close()
			return ErrServerClosed
		}
		go c.serve()
	}
}

func nextBackoff(d time.Duration) time.Duration {
	if d == 0 {
		return 5 * time.Millisecond
	}
	if d *= 2; d > time.Second {
		d = time.Second
	}
	return d
}

// Shutdown stops accepting connections, closes idle ones and waits for
// active requests to finish. When ctx ends first, remaining connections are
// closed and ctx's error is returned.
func (s *Server) Shutdown(ctx context.Context) error {
	s.closing.Store(true)

	s.mu.Lock()
	for ln := range s.listeners {
		ln.Close()
	}
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.connWG.Wait()
		close(done)
	}()

	ticker := time.NewTicker(shutdownPollInterval)
	defer ticker.Stop()

	for {
		s.closeConns(true)
		select {
		case <-done:
			s.logger.InfoContext(ctx, "server stopped")
			return nil
		case <-ctx.Done():
			s.closeConns(false)
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// closeConns closes idle connections, or all of them when idleOnly is false
func (s *Server) closeConns(idleOnly bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.conns {
		if !idleOnly || c.idle.Load() {
			c.rwc.Close()
		}
	}
}

func (s *Server) trackListener(ln net.Listener, add bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if add {
		if s.closing.Load() {
			return false
		}
		s.listeners[ln] = struct{}{}
		return true
	}
	delete(s.listeners, ln)
	return true
}

func (s *Server) trackConn(c *conn, add bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if add {
		if s.closing.Load() {
			return false
		}
		s.conns[c] = struct{}{}
		s.connWG.Add(1)
		if s.monitor != nil {
			s.monitor.ConnOpened()
		}
		return true
	}
	delete(s.conns, c)
	s.connWG.Done()
	if s.monitor != nil {
		s.monitor.ConnClosed()
	}
	return true
}
