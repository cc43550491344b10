// Package observability records request metrics with Prometheus and derives
// simple bottleneck reports from them.
package observability

import (
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "veeox"

// Thresholds used by Bottlenecks
const (
	slowRouteThreshold = 100 * time.Millisecond
	errorRateThreshold = 0.05
)

// Monitor collects per-route request metrics
type Monitor struct {
	registry *prometheus.Registry

	requests    *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	connections prometheus.Gauge
	rejected    *prometheus.CounterVec

	// running totals per route, used for bottleneck reports
	routes sync.Map // string -> *routeStats
}

type routeStats struct {
	count         atomic.Uint64
	errors        atomic.Uint64
	totalDuration atomic.Uint64
}

// Bottleneck represents a performance issue on one route
type Bottleneck struct {
	Type     string `json:"type"`
	Route    string `json:"route"`
	Severity int    `json:"severity"`
	Details  string `json:"details"`
}

// NewMonitor creates a monitor with its own registry. Go runtime and
// process collectors are registered alongside the request metrics.
func NewMonitor() *Monitor {
	m := &Monitor{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Handled HTTP requests by route pattern, method and status.",
		}, []string{"route", "method", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Handler latency by route pattern and method.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
		connections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "open_connections",
			Help:      "Currently open client connections.",
		}),
		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "rejected_requests_total",
			Help:      "Requests rejected before routing, by reason.",
		}, []string{"reason"}),
	}

	m.registry.MustRegister(
		m.requests,
		m.duration,
		m.connections,
		m.rejected,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// Registry exposes the underlying registry for extra collectors
func (m *Monitor) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format
func (m *Monitor) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// RecordRequest records one handled request
func (m *Monitor) RecordRequest(route, method string, status int, d time.Duration) {
	m.requests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.duration.WithLabelValues(route, method).Observe(d.Seconds())

	val, _ := m.routes.LoadOrStore(route, &routeStats{})
	stats := val.(*routeStats)
	stats.count.Add(1)
	stats.totalDuration.Add(uint64(d.Nanoseconds()))
	if status >= 500 {
		stats.errors.Add(1)
	}
}

// RecordRejected counts a request rejected before it reached a handler
func (m *Monitor) RecordRejected(reason string) {
	m.rejected.WithLabelValues(reason).Inc()
}

// ConnOpened and ConnClosed track open connections
func (m *Monitor) ConnOpened() { m.connections.Inc() }
func (m *Monitor) ConnClosed() { m.connections.Dec() }

// Bottlenecks reports routes with high average latency or error rate,
// sorted by route.
func (m *Monitor) Bottlenecks() []Bottleneck {
	var out []Bottleneck

	m.routes.Range(func(key, value any) bool {
		route := key.(string)
		stats := value.(*routeStats)

		count := stats.count.Load()
		if count == 0 {
			return true
		}

		avg := time.Duration(stats.totalDuration.Load() / count)
		if avg > slowRouteThreshold {
			out = append(out, Bottleneck{
				Type:     "latency",
				Route:    route,
				Severity: 8,
				Details:  fmt.Sprintf("High latency (%v avg)", avg),
			})
		}

		errs := stats.errors.Load()
		if rate := float64(errs) / float64(count); errs > 0 && rate > errorRateThreshold {
			out = append(out, Bottleneck{
				Type:     "errors",
				Route:    route,
				Severity: 10,
				Details:  fmt.Sprintf("%.1f%% error rate", rate*100),
			})
		}
		return true
	})

	sort.Slice(out, func(i, j int) bool {
		if out[i].Route != out[j].Route {
			return out[i].Route < out[j].Route
		}
		return out[i].Type < out[j].Type
	})
	return out
}
