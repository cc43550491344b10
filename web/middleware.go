package web

import (
	"log/slog"
	"net/http"
	"runtime/debug"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/veeox/veeox/core/observability"
	"github.com/veeox/veeox/pkg/logger"
)

// Middleware wraps a handler with behavior that runs around it.
// A middleware that does not call next ends the request.
type Middleware func(next HandlerFunc) HandlerFunc

// Name returns the fixed identifying name of the type
func (Middleware) Name() string {
	return MiddlewareName
}

// Chain wraps h with mws; the first middleware is the outermost
func Chain(h HandlerFunc, mws ...Middleware) HandlerFunc {
	for i := len(mws) - 1; i >= 0; i-- {
		if mws[i] != nil {
			h = mws[i](h)
		}
	}
	return h
}

// Recovery recovers from panics and answers 500
func Recovery(log *slog.Logger) Middleware {
	log = logger.OrDiscard(log)
	return func(next HandlerFunc) HandlerFunc {
		return func(w *Response, r *Request) {
			defer func() {
				if err := recover(); err != nil {
					log.ErrorContext(r.Context(), "panic recovered",
						slog.Any("panic", err),
						slog.String("method", r.Method),
						slog.String("path", r.Path),
						slog.String("stack", string(debug.Stack())),
					)
					w.Reset()
					w.Error(http.StatusInternalServerError, "Internal Server Error")
				}
			}()
			next(w, r)
		}
	}
}

// Logger writes one access log record per request
func Logger(log *slog.Logger) Middleware {
	log = logger.OrDiscard(log)
	return func(next HandlerFunc) HandlerFunc {
		return func(w *Response, r *Request) {
			start := time.Now()
			next(w, r)

			attrs := []slog.Attr{
				slog.String("method", r.Method),
				slog.String("path", r.Path),
				slog.Int("status", w.StatusCode()),
				slog.Duration("duration", time.Since(start)),
				slog.Int("bytes", len(w.Body())),
			}
			if r.Pattern != "" {
				attrs = append(attrs, slog.String("route", r.Pattern))
			}
			if id := w.Header(HeaderRequestID); id != "" {
				attrs = append(attrs, slog.String("request_id", id))
			}
			if r.RemoteAddr != "" {
				attrs = append(attrs, slog.String("remote", r.RemoteAddr))
			}
			log.LogAttrs(r.Context(), slog.LevelInfo, "request", attrs...)
		}
	}
}

// RequestID propagates the incoming X-Request-Id or assigns a new UUID
func RequestID() Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(w *Response, r *Request) {
			id := r.Header(HeaderRequestID)
			if id == "" {
				id = uuid.NewString()
				r.SetHeader(HeaderRequestID, id)
			}
			w.SetHeader(HeaderRequestID, id)
			next(w, r)
		}
	}
}

// CORS adds CORS headers for the given origins ("*" when none are given)
// and answers preflight requests with 204.
func CORS(origins ...string) Middleware {
	allowAll := len(origins) == 0
	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		if o == "*" {
			allowAll = true
		}
		allowed[o] = struct{}{}
	}

	return func(next HandlerFunc) HandlerFunc {
		return func(w *Response, r *Request) {
			origin := r.Header(HeaderOrigin)
			switch {
			case allowAll:
				w.SetHeader("Access-Control-Allow-Origin", "*")
			case origin != "":
				if _, ok := allowed[origin]; !ok {
					next(w, r)
					return
				}
				w.SetHeader("Access-Control-Allow-Origin", origin)
				w.SetHeader(HeaderVary, HeaderOrigin)
			default:
				next(w, r)
				return
			}
			w.SetHeader("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
			w.SetHeader("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-Id")

			if r.Method == http.MethodOptions && r.Header("Access-Control-Request-Method") != "" {
				w.NoContent(http.StatusNoContent)
				return
			}
			next(w, r)
		}
	}
}

// RateLimiter allows requestsPerSecond requests per one-second window and
// answers 429 beyond that. A non-positive limit disables it.
func RateLimiter(requestsPerSecond int) Middleware {
	if requestsPerSecond <= 0 {
		return func(next HandlerFunc) HandlerFunc { return next }
	}

	var (
		mu          sync.Mutex
		tokens      = requestsPerSecond
		windowStart = time.Now()
	)

	return func(next HandlerFunc) HandlerFunc {
		return func(w *Response, r *Request) {
			mu.Lock()
			now := time.Now()
			if now.Sub(windowStart) >= time.Second {
				tokens = requestsPerSecond
				windowStart = now
			}
			ok := tokens > 0
			if ok {
				tokens--
			}
			mu.Unlock()

			if !ok {
				w.SetHeader(HeaderRetryAfter, "1")
				w.Error(http.StatusTooManyRequests, "Too Many Requests")
				return
			}
			next(w, r)
		}
	}
}

// unmatchedRoute labels requests that reached no route
const unmatchedRoute = "unmatched"

// Metrics records request counts and latency by route pattern
func Metrics(m *observability.Monitor) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(w *Response, r *Request) {
			start := time.Now()
			next(w, r)

			route := r.Pattern
			if route == "" {
				route = unmatchedRoute
			}
			m.RecordRequest(route, r.Method, w.StatusCode(), time.Since(start))
		}
	}
}

// Tracing starts a server span per request. The span is renamed to
// "METHOD pattern" once the route is known. A nil tracer uses the global
// provider.
func Tracing(tracer trace.Tracer) Middleware {
	if tracer == nil {
		tracer = otel.Tracer("github.com/veeox/veeox/web")
	}
	return func(next HandlerFunc) HandlerFunc {
		return func(w *Response, r *Request) {
			ctx, span := tracer.Start(r.Context(), r.Method+" "+r.Path,
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(
					attribute.String("http.request.method", r.Method),
					attribute.String("url.path", r.Path),
				),
			)
			defer span.End()

			r.SetContext(ctx)
			next(w, r)

			status := w.StatusCode()
			if r.Pattern != "" {
				span.SetName(r.Method + " " + r.Pattern)
				span.SetAttributes(attribute.String("http.route", r.Pattern))
			}
			span.SetAttributes(attribute.Int("http.response.status_code", status))
			if status >= http.StatusInternalServerError {
				span.SetStatus(codes.Error, strconv.Itoa(status)+" "+strings.ToLower(statusText(status)))
			}
		}
	}
}
