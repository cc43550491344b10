package web

import (
	"bytes"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/veeox/veeox/str"
)

// Limits bounds the size of parsed requests
type Limits struct {
	// MaxHeaderBytes bounds the request line plus headers
	MaxHeaderBytes int
	// MaxBodyBytes bounds the declared Content-Length
	MaxBodyBytes int64
}

// DefaultLimits returns 8KiB of headers and 4MiB of body
func DefaultLimits() Limits {
	return Limits{
		MaxHeaderBytes: 8 << 10,
		MaxBodyBytes:   4 << 20,
	}
}

// ParseRequest parses one request from the front of data and returns it
// together with the number of bytes it occupied. It returns ErrIncomplete
// when data holds only a prefix of a request. All strings and the body are
// copied, so data may be reused once ParseRequest returns.
func ParseRequest(data []byte, limits Limits) (*Request, int, error) {
	req := &Request{}
	n, err := req.parse(data, limits)
	if err != nil {
		return nil, 0, err
	}
	return req, n, nil
}

// parse fills r from data. r must be reset.
func (r *Request) parse(data []byte, limits Limits) (int, error) {
	pos := 0

	// Ignore empty lines ahead of the request line
	for pos < len(data) && (data[pos] == '\r' || data[pos] == '\n') {
		pos++
	}
	if limits.MaxHeaderBytes > 0 && pos > limits.MaxHeaderBytes {
		return 0, ErrHeaderTooLarge
	}
	if pos == len(data) {
		return 0, ErrIncomplete
	}
	start := pos

	requestLine := true
	for {
		lineEnd := bytes.IndexByte(data[pos:], '\n')
		if lineEnd == -1 {
			if limits.MaxHeaderBytes > 0 && len(data)-start > limits.MaxHeaderBytes {
				return 0, ErrHeaderTooLarge
			}
			return 0, ErrIncomplete
		}

		line := data[pos : pos+lineEnd]
		pos += lineEnd + 1
		if limits.MaxHeaderBytes > 0 && pos-start > limits.MaxHeaderBytes {
			return 0, ErrHeaderTooLarge
		}
		if len(line) > 0 && line[len(line)-1] == '\r' {
			line = line[:len(line)-1]
		}

		if requestLine {
			if err := r.parseRequestLine(line); err != nil {
				return 0, err
			}
			requestLine = false
			continue
		}

		// End of headers
		if len(line) == 0 {
			break
		}

		if err := r.parseHeaderLine(line); err != nil {
			return 0, err
		}
	}

	if r.Header(HeaderTransferEncoding) != "" {
		return 0, ErrUnsupportedEncoding
	}

	if r.ContentLength != "" {
		if !str.IsDigits(r.ContentLength) {
			return 0, fmt.Errorf("%w: bad Content-Length %q", ErrInvalidRequest, r.ContentLength)
		}
		size, err := strconv.ParseInt(r.ContentLength, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: bad Content-Length %q", ErrInvalidRequest, r.ContentLength)
		}
		if limits.MaxBodyBytes > 0 && size > limits.MaxBodyBytes {
			return 0, ErrBodyTooLarge
		}
		if int64(len(data)-pos) < size {
			return 0, ErrIncomplete
		}
		end := pos + int(size)
		r.Body = append(r.Body[:0], data[pos:end]...)
		pos = end
	}

	return pos, nil
}

// parseRequestLine parses METHOD SP TARGET SP PROTO
func (r *Request) parseRequestLine(line []byte) error {
	sp1 := bytes.IndexByte(line, ' ')
	if sp1 == -1 {
		return fmt.Errorf("%w: malformed request line", ErrInvalidRequest)
	}
	sp2 := bytes.IndexByte(line[sp1+1:], ' ')
	if sp2 == -1 {
		return fmt.Errorf("%w: malformed request line", ErrInvalidRequest)
	}
	sp2 += sp1 + 1

	method := string(line[:sp1])
	if !str.IsToken(method) {
		return fmt.Errorf("%w: bad method %q", ErrInvalidRequest, method)
	}

	proto := string(line[sp2+1:])
	switch proto {
	case "HTTP/1.1", "HTTP/1.0":
	default:
		return fmt.Errorf("%w: unsupported protocol %q", ErrInvalidRequest, proto)
	}

	target := string(line[sp1+1 : sp2])
	path, host, err := splitTarget(target)
	if err != nil {
		return err
	}

	r.Method = method
	r.Proto = proto
	if host != "" {
		r.Host = host
	}

	if idx := strings.IndexByte(path, '?'); idx != -1 {
		r.RawQuery = path[idx+1:]
		path = path[:idx]
		r.parseQuery(r.RawQuery)
	}
	r.Path = path
	return nil
}

// splitTarget accepts origin-form ("/a?b"), asterisk-form ("*") and
// absolute-form ("http://host/a?b") targets.
func splitTarget(target string) (path, host string, err error) {
	switch {
	case target == "*":
		return target, "", nil
	case strings.HasPrefix(target, "/"):
		return target, "", nil
	case strings.HasPrefix(target, "http://"), strings.HasPrefix(target, "https://"):
		rest := target[strings.Index(target, "://")+3:]
		slash := strings.IndexAny(rest, "/?")
		if slash == -1 {
			return "/", rest, nil
		}
		host, path = rest[:slash], rest[slash:]
		if path[0] == '?' {
			path = "/" + path
		}
		return path, host, nil
	default:
		return "", "", fmt.Errorf("%w: bad request target %q", ErrInvalidRequest, target)
	}
}

// parseHeaderLine parses "Key: value"
func (r *Request) parseHeaderLine(line []byte) error {
	if line[0] == ' ' || line[0] == '\t' {
		return fmt.Errorf("%w: obsolete line folding", ErrInvalidRequest)
	}

	colon := bytes.IndexByte(line, ':')
	if colon <= 0 {
		return fmt.Errorf("%w: malformed header line", ErrInvalidRequest)
	}

	key := string(line[:colon])
	if !str.IsToken(key) {
		return fmt.Errorf("%w: bad header name %q", ErrInvalidRequest, key)
	}
	value := string(str.TrimOWS(line[colon+1:]))
	if !str.ValidHeaderValue(value) {
		return fmt.Errorf("%w: control byte in %s value", ErrInvalidRequest, key)
	}

	key = str.CanonicalHeaderKey(key)
	if key == HeaderContentLength && r.ContentLength != "" && r.ContentLength != value {
		return fmt.Errorf("%w: conflicting Content-Length", ErrInvalidRequest)
	}

	r.SetHeader(key, value)
	return nil
}

// parseQuery parses query parameters; invalid escapes keep their raw text
func (r *Request) parseQuery(raw string) {
	if raw == "" {
		return
	}
	if r.Query == nil {
		r.Query = make(map[string]string)
	}

	for raw != "" {
		var pair string
		pair, raw, _ = strings.Cut(raw, "&")
		if pair == "" {
			continue
		}
		key, value, _ := strings.Cut(pair, "=")
		r.Query[unescapeQuery(key)] = unescapeQuery(value)
	}
}

func unescapeQuery(s string) string {
	if !strings.ContainsAny(s, "%+") {
		return s
	}
	if u, err := url.QueryUnescape(s); err == nil {
		return u
	}
	return s
}
