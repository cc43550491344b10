package web

import "testing"

var nameSink string

func BenchmarkWeb(b *testing.B) {
	b.Run("Request.Name", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			nameSink = Request{}.Name()
		}
	})

	b.Run("Response.Name", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			nameSink = Response{}.Name()
		}
	})

	b.Run("Route.Name", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			nameSink = Route{}.Name()
		}
	})

	b.Run("Middleware.Name", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			nameSink = Middleware(nil).Name()
		}
	})

	b.Run("Server.Name", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			nameSink = (*Server)(nil).Name()
		}
	})
}
