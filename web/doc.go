/*
Package web is the HTTP/1.1 serving toolkit of veeox.

The package is organized around five types, each of which reports a fixed
identifying name through its Name method:

  - Request: an inbound request parsed from the wire (ParseRequest)
  - Response: a buffered outbound response, serialized by the Server
  - Route: a method + pattern binding to a HandlerFunc, stored in a Router
  - Middleware: a HandlerFunc decorator, composed with Chain
  - Server: accepts connections, parses requests, dispatches them through
    the middleware chain and the router, and writes responses

Api and Str are re-exported from the api and str packages.

Basic usage:

	srv := web.NewServer(web.WithLogger(logger))
	srv.Use(web.Recovery(logger), web.RequestID())
	srv.GET("/users/:id", func(w *web.Response, r *web.Request) {
		w.JSON(200, map[string]string{"id": r.Param("id")})
	})
	err := srv.ListenAndServe(ctx, ":8080")

Route patterns are made of static segments, ":name" parameters matching one
full segment, and a trailing "*name" catch-all. Static segments win over
parameters, parameters over catch-alls.

Requests and responses are pooled by the Server: handlers must not keep
references to them after returning.
*/
package web
