package web

import "errors"

// HTTP header constants, in canonical form
const (
	HeaderContentType      = "Content-Type"
	HeaderContentLength    = "Content-Length"
	HeaderUserAgent        = "User-Agent"
	HeaderAccept           = "Accept"
	HeaderHost             = "Host"
	HeaderConnection       = "Connection"
	HeaderTransferEncoding = "Transfer-Encoding"
	HeaderAllow            = "Allow"
	HeaderOrigin           = "Origin"
	HeaderVary             = "Vary"
	HeaderRetryAfter       = "Retry-After"
	HeaderRequestID        = "X-Request-Id"
)

// Parse errors
var (
	ErrIncomplete          = errors.New("incomplete HTTP request")
	ErrInvalidRequest      = errors.New("invalid HTTP request")
	ErrHeaderTooLarge      = errors.New("request header too large")
	ErrBodyTooLarge        = errors.New("request body too large")
	ErrUnsupportedEncoding = errors.New("unsupported transfer encoding")
)

// Server errors
var (
	ErrServerClosed         = errors.New("web: server closed")
	ErrReusePortUnsupported = errors.New("web: SO_REUSEPORT is not supported on this platform")
)
