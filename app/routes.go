package app

import (
	"net/http"

	"github.com/veeox/veeox/api"
	"github.com/veeox/veeox/core/observability"
	"github.com/veeox/veeox/web"
)

// TypeName pairs a type with its identifying name
type TypeName struct {
	Type string `json:"type"`
	Name string `json:"name"`
}

func (a *App) registerRoutes() {
	s := a.server

	s.GET("/", func(w *web.Response, r *web.Request) {
		w.JSON(http.StatusOK, api.Info())
	})

	s.GET("/names", func(w *web.Response, r *web.Request) {
		w.JSON(http.StatusOK, web.Names())
	})

	s.GET("/names/:type", func(w *web.Response, r *web.Request) {
		typ := r.Param("type")
		name, ok := web.NameOf(typ)
		if !ok {
			w.Error(http.StatusNotFound, "unknown type: "+typ)
			return
		}
		w.JSON(http.StatusOK, TypeName{Type: typ, Name: name})
	})

	s.GET("/healthz", func(w *web.Response, r *web.Request) {
		w.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	s.GET("/debug/pools", func(w *web.Response, r *web.Request) {
		w.JSON(http.StatusOK, s.PoolStats())
	})

	s.GET("/debug/bottlenecks", func(w *web.Response, r *web.Request) {
		report := a.monitor.Bottlenecks()
		if report == nil {
			report = []observability.Bottleneck{}
		}
		w.JSON(http.StatusOK, report)
	})
}
