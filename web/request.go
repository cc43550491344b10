package web

import (
	"context"
	"strings"
	"sync"

	"github.com/veeox/veeox/core/codec"
	"github.com/veeox/veeox/str"
	"google.golang.org/protobuf/proto"
)

// Request is an inbound HTTP request
type Request struct {
	Method   string
	Path     string
	RawQuery string
	Proto    string

	// Predefined common header fields
	ContentType   string
	ContentLength string
	UserAgent     string
	Accept        string
	Host          string
	Connection    string

	// Remaining headers, keyed by canonical name (allocated only when needed)
	ExtraHeaders map[string]string

	// Query parameters, last value wins
	Query map[string]string

	Body []byte

	// RemoteAddr is the network address of the client
	RemoteAddr string

	// Pattern is the route pattern that matched, empty before routing
	Pattern string

	// Path parameters: first four inline, the rest in an overflow map
	paramKeys        [4]string
	paramValues      [4]string
	paramCount       int
	paramMapOverflow map[string]string

	ctx context.Context
}

// Name returns the fixed identifying name of the type
func (Request) Name() string {
	return RequestName
}

var requestPool = sync.Pool{
	New: func() any {
		return &Request{}
	},
}

func acquireRequest() *Request {
	return requestPool.Get().(*Request)
}

func releaseRequest(req *Request) {
	req.Reset()
	requestPool.Put(req)
}

// Reset clears the request for reuse, keeping allocated maps and body capacity
func (r *Request) Reset() {
	r.Method = ""
	r.Path = ""
	r.RawQuery = ""
	r.Proto = ""
	r.ContentType = ""
	r.ContentLength = ""
	r.UserAgent = ""
	r.Accept = ""
	r.Host = ""
	r.Connection = ""
	r.RemoteAddr = ""
	r.Pattern = ""

	clear(r.ExtraHeaders)
	clear(r.Query)
	clear(r.paramMapOverflow)

	r.paramCount = 0
	r.Body = r.Body[:0]
	r.ctx = nil
}

// SetHeader sets a header (prioritizes predefined fields).
// A repeated extra header is joined to the previous value with ", ".
func (r *Request) SetHeader(key, value string) {
	key = str.CanonicalHeaderKey(key)
	switch key {
	case HeaderContentType:
		r.ContentType = value
	case HeaderContentLength:
		r.ContentLength = value
	case HeaderUserAgent:
		r.UserAgent = value
	case HeaderAccept:
		r.Accept = value
	case HeaderHost:
		r.Host = value
	case HeaderConnection:
		r.Connection = value
	default:
		if r.ExtraHeaders == nil {
			r.ExtraHeaders = make(map[string]string)
		}
		if prev, ok := r.ExtraHeaders[key]; ok {
			value = prev + ", " + value
		}
		r.ExtraHeaders[key] = value
	}
}

// Header returns a request header, matching the key case-insensitively
func (r *Request) Header(key string) string {
	key = str.CanonicalHeaderKey(key)
	switch key {
	case HeaderContentType:
		return r.ContentType
	case HeaderContentLength:
		return r.ContentLength
	case HeaderUserAgent:
		return r.UserAgent
	case HeaderAccept:
		return r.Accept
	case HeaderHost:
		return r.Host
	case HeaderConnection:
		return r.Connection
	}
	if r.ExtraHeaders != nil {
		return r.ExtraHeaders[key]
	}
	return ""
}

// SetParam sets a path parameter
func (r *Request) SetParam(key, value string) {
	for i := 0; i < r.paramCount; i++ {
		if r.paramKeys[i] == key {
			r.paramValues[i] = value
			return
		}
	}
	if r.paramCount < len(r.paramKeys) {
		r.paramKeys[r.paramCount] = key
		r.paramValues[r.paramCount] = value
		r.paramCount++
		return
	}
	if r.paramMapOverflow == nil {
		r.paramMapOverflow = make(map[string]string)
	}
	r.paramMapOverflow[key] = value
}

// Param gets a path parameter
func (r *Request) Param(key string) string {
	for i := 0; i < r.paramCount; i++ {
		if r.paramKeys[i] == key {
			return r.paramValues[i]
		}
	}
	if r.paramMapOverflow != nil {
		return r.paramMapOverflow[key]
	}
	return ""
}

// QueryValue gets a query parameter
func (r *Request) QueryValue(key string) string {
	if r.Query == nil {
		return ""
	}
	return r.Query[key]
}

// Context returns the request context, never nil
func (r *Request) Context() context.Context {
	if r.ctx == nil {
		return context.Background()
	}
	return r.ctx
}

// SetContext replaces the request context
func (r *Request) SetContext(ctx context.Context) {
	if ctx == nil {
		panic("web: nil context")
	}
	r.ctx = ctx
}

// KeepAlive reports whether the client allows the connection to be reused
func (r *Request) KeepAlive() bool {
	if r.Proto == "HTTP/1.0" {
		return hasToken(r.Connection, "keep-alive")
	}
	return !hasToken(r.Connection, "close")
}

// Bind decodes a JSON body into v
func (r *Request) Bind(v any) error {
	return codec.JSON().Decode(r.Body, v)
}

// BindProto decodes a protobuf body into msg
func (r *Request) BindProto(msg proto.Message) error {
	return codec.Protobuf().Decode(r.Body, msg)
}

// hasToken reports whether the comma-separated header value contains token
func hasToken(value, token string) bool {
	for value != "" {
		var item string
		item, value, _ = strings.Cut(value, ",")
		if strings.EqualFold(strings.TrimSpace(item), token) {
			return true
		}
	}
	return false
}
