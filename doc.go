/*
Package veeox is a small HTTP/1.1 toolkit built around a handful of named
types: Api, Str, Request, Response, Route, Middleware and Server. Each type
reports a fixed identifying name through Name().

Features

  - Incremental HTTP/1.1 parser with header and body limits
  - Keep-alive and pipelined requests with batched writes
  - Segment-tree router with static > param > catch-all priority and 405s
  - Middleware chain with recovery, access logging, request IDs, CORS,
    rate limiting, Prometheus metrics and OpenTelemetry spans
  - HTTP/2 cleartext through net/http
  - Graceful shutdown
  - koanf configuration from defaults, YAML and VEEOX_* environment variables

Quick Start

Basic usage example:

	package main

	import (
	    "context"
	    "net/http"

	    "github.com/veeox/veeox/web"
	)

	func main() {
	    s := web.NewServer()
	    s.Use(web.Recovery(nil), web.RequestID())

	    s.GET("/hello", func(w *web.Response, r *web.Request) {
	        w.String(http.StatusOK, "Hello, World!")
	    })

	    s.GET("/users/:id", func(w *web.Response, r *web.Request) {
	        w.JSON(http.StatusOK, map[string]string{"id": r.Param("id")})
	    })

	    _ = s.ListenAndServe(context.Background(), ":8080")
	}

Modules

  - api: the Api facade type and build information
  - str: the Str type and header token helpers
  - web: Request, Response, Route, Middleware and Server
  - demo: the no-op demo entry point
  - app: application lifecycle (server, metrics, shutdown)
  - config: configuration loading
  - core/codec: JSON and protobuf body codecs
  - core/pools: tiered byte buffer pool
  - core/observability: Prometheus request metrics
  - pkg/logger: slog construction

The veeox command (cmd/veeox) serves the default routes and prints the type
names; cmd/bloat-demo links the demo entry point for binary size checks.
*/
package veeox
