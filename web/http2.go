package web

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/veeox/veeox/str"
)

// ServeHTTP serves the router and middleware chain through net/http.
// The request body is read fully, bounded by the server's body limit.
func (s *Server) ServeHTTP(rw http.ResponseWriter, hr *http.Request) {
	req := acquireRequest()
	defer releaseRequest(req)
	w := acquireResponse()
	defer releaseResponse(w)

	req.Method = hr.Method
	req.Path = hr.URL.EscapedPath()
	req.Proto = hr.Proto
	req.RemoteAddr = hr.RemoteAddr
	for key, values := range hr.Header {
		for _, v := range values {
			req.SetHeader(key, v)
		}
	}
	req.Host = hr.Host
	if hr.ContentLength > 0 && req.ContentLength == "" {
		req.ContentLength = strconv.FormatInt(hr.ContentLength, 10)
	}
	req.RawQuery = hr.URL.RawQuery
	req.parseQuery(hr.URL.RawQuery)
	req.SetContext(hr.Context())

	if hr.Body != nil {
		body := io.Reader(hr.Body)
		if s.limits.MaxBodyBytes > 0 {
			body = http.MaxBytesReader(rw, hr.Body, s.limits.MaxBodyBytes)
		}
		data, err := io.ReadAll(body)
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				w.Error(http.StatusRequestEntityTooLarge, statusText(http.StatusRequestEntityTooLarge))
			} else {
				w.Error(http.StatusBadRequest, statusText(http.StatusBadRequest))
			}
			writeHTTP(rw, w, hr.Method == http.MethodHead)
			return
		}
		req.Body = append(req.Body[:0], data...)
	}

	s.serve(s.compiled(), w, req)
	writeHTTP(rw, w, hr.Method == http.MethodHead)
}

// writeHTTP copies a buffered response to a net/http ResponseWriter
func writeHTTP(rw http.ResponseWriter, w *Response, headOnly bool) {
	h := rw.Header()
	for k, v := range w.header {
		if k == HeaderContentLength || k == HeaderConnection || !str.ValidHeaderValue(v) {
			continue
		}
		h.Set(k, v)
	}

	status := w.StatusCode()
	if bodyAllowed(status) {
		h.Set(HeaderContentLength, strconv.Itoa(len(w.body)))
	}
	rw.WriteHeader(status)
	if bodyAllowed(status) && !headOnly {
		_, _ = rw.Write(w.body)
	}
}

// H2Config configures HTTP/2 cleartext serving
type H2Config struct {
	MaxConcurrentStreams uint32
	MaxReadFrameSize     uint32
	IdleTimeout          time.Duration
}

// H2CHandler returns a net/http handler that speaks HTTP/1.1 and HTTP/2
// cleartext (prior knowledge or Upgrade: h2c) on the same port
func (s *Server) H2CHandler(cfg H2Config) http.Handler {
	if cfg.MaxConcurrentStreams == 0 {
		cfg.MaxConcurrentStreams = 250
	}
	if cfg.MaxReadFrameSize == 0 {
		cfg.MaxReadFrameSize = 1 << 20
	}
	if cfg.IdleTimeout == 0 {
		cfg.IdleTimeout = 120 * time.Second
	}

	h2 := &http2.Server{
		MaxConcurrentStreams: cfg.MaxConcurrentStreams,
		MaxReadFrameSize:     cfg.MaxReadFrameSize,
		IdleTimeout:          cfg.IdleTimeout,
	}
	return h2c.NewHandler(s, h2)
}
