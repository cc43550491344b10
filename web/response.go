package web

import (
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"sync"

	"github.com/veeox/veeox/core/codec"
	"github.com/veeox/veeox/str"
	"google.golang.org/protobuf/proto"
)

// Response is a buffered outbound HTTP response. Handlers fill it; the
// server serializes it once the handler chain returns. Each body-writing
// call replaces the previous body.
type Response struct {
	status  int
	header  map[string]string
	body    []byte
	written bool
}

// Name returns the fixed identifying name of the type
func (Response) Name() string {
	return ResponseName
}

var responsePool = sync.Pool{
	New: func() any {
		return &Response{
			header: make(map[string]string, 8),
			body:   make([]byte, 0, 1024),
		}
	},
}

func acquireResponse() *Response {
	return responsePool.Get().(*Response)
}

func releaseResponse(w *Response) {
	w.Reset()
	responsePool.Put(w)
}

// Reset clears the response for reuse
func (w *Response) Reset() {
	w.status = 0
	clear(w.header)
	w.body = w.body[:0]
	w.written = false
}

// Status sets the response status code. It panics on codes outside
// 100-999.
func (w *Response) Status(code int) {
	if code < 100 || code > 999 {
		panic(fmt.Sprintf("web: invalid status code %d", code))
	}
	w.status = code
}

// StatusCode returns the status code, 200 when none was set
func (w *Response) StatusCode() int {
	if w.status == 0 {
		return http.StatusOK
	}
	return w.status
}

// SetHeader sets a response header. Content-Length and Connection are
// managed by the server and ignored on output.
func (w *Response) SetHeader(key, value string) {
	if w.header == nil {
		w.header = make(map[string]string, 8)
	}
	w.header[str.CanonicalHeaderKey(key)] = value
}

// Header returns a response header
func (w *Response) Header(key string) string {
	return w.header[str.CanonicalHeaderKey(key)]
}

// Written reports whether a body-writing method has been called
func (w *Response) Written() bool {
	return w.written
}

// Body returns the buffered body
func (w *Response) Body() []byte {
	return w.body
}

// Data sends a response with custom content type
func (w *Response) Data(code int, contentType string, data []byte) {
	w.Status(code)
	if contentType != "" {
		w.SetHeader(HeaderContentType, contentType)
	}
	w.body = append(w.body[:0], data...)
	w.written = true
}

// String sends a plain text response
func (w *Response) String(code int, s string) {
	w.Status(code)
	w.SetHeader(HeaderContentType, "text/plain; charset=utf-8")
	w.body = append(w.body[:0], s...)
	w.written = true
}

// Bytes sends a raw bytes response
func (w *Response) Bytes(code int, data []byte) {
	w.Data(code, "application/octet-stream", data)
}

// JSON sends a JSON response
func (w *Response) JSON(code int, v any) {
	data, err := codec.JSON().Encode(v)
	if err != nil {
		w.String(http.StatusInternalServerError, "JSON marshal error")
		return
	}
	w.Data(code, codec.ContentTypeJSON, data)
}

// Proto sends a protobuf response
func (w *Response) Proto(code int, msg proto.Message) {
	data, err := codec.Protobuf().Encode(msg)
	if err != nil {
		w.String(http.StatusInternalServerError, "protobuf marshal error")
		return
	}
	w.Data(code, codec.ContentTypeProtobuf, data)
}

// Error sends a JSON error response
func (w *Response) Error(code int, message string) {
	w.JSON(code, map[string]any{
		"code":    code,
		"message": message,
	})
}

// Success sends a JSON success response
func (w *Response) Success(data any) {
	w.JSON(http.StatusOK, map[string]any{
		"code":    0,
		"message": "success",
		"data":    data,
	})
}

// NoContent sends a response without a body
func (w *Response) NoContent(code int) {
	w.Status(code)
	w.body = w.body[:0]
	w.written = true
}

// bodyAllowed reports whether a status may carry a body (RFC 7230 3.3.3)
func bodyAllowed(status int) bool {
	return status >= 200 && status != http.StatusNoContent && status != http.StatusNotModified
}

// AppendTo serializes the response as HTTP/1.1 and appends it to dst.
// Headers are written in sorted order; fields with an invalid name or a
// control byte in the value are skipped. headOnly omits the body but keeps
// its Content-Length; keepAlive=false adds "Connection: close".
func (w *Response) AppendTo(dst []byte, headOnly, keepAlive bool) []byte {
	status := w.StatusCode()

	dst = append(dst, "HTTP/1.1 "...)
	dst = strconv.AppendInt(dst, int64(status), 10)
	dst = append(dst, ' ')
	dst = append(dst, statusText(status)...)
	dst = append(dst, "\r\n"...)

	keys := make([]string, 0, len(w.header))
	for k := range w.header {
		if k == HeaderContentLength || k == HeaderConnection {
			continue
		}
		// Fields that would split the header block are dropped
		if !str.IsToken(k) || !str.ValidHeaderValue(w.header[k]) {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		dst = append(dst, k...)
		dst = append(dst, ": "...)
		dst = append(dst, w.header[k]...)
		dst = append(dst, "\r\n"...)
	}

	hasBody := bodyAllowed(status)
	if hasBody {
		dst = append(dst, "Content-Length: "...)
		dst = strconv.AppendInt(dst, int64(len(w.body)), 10)
		dst = append(dst, "\r\n"...)
	}
	if !keepAlive {
		dst = append(dst, "Connection: close\r\n"...)
	}
	dst = append(dst, "\r\n"...)

	if hasBody && !headOnly {
		dst = append(dst, w.body...)
	}
	return dst
}

// statusText returns the reason phrase for the given code
func statusText(code int) string {
	if text := http.StatusText(code); text != "" {
		return text
	}
	return "Unknown"
}
