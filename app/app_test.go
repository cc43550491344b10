package app

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/http2"

	"github.com/veeox/veeox/api"
	"github.com/veeox/veeox/config"
	"github.com/veeox/veeox/pkg/logger"
	"github.com/veeox/veeox/web"
)

type running struct {
	addr        string
	metricsAddr string
	cancel      context.CancelFunc
	done        chan error
}

func (r *running) stop(t *testing.T) {
	t.Helper()
	r.cancel()
	select {
	case err := <-r.done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("app did not stop")
	}
}

func start(t *testing.T, cfg *config.Config) *running {
	t.Helper()

	a, err := New(cfg, WithLogger(logger.Discard()))
	require.NoError(t, err)

	ln, err := a.Server().Listen(context.Background(), "127.0.0.1:0")
	require.NoError(t, err)
	metricsLn, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	r := &running{
		addr:        ln.Addr().String(),
		metricsAddr: metricsLn.Addr().String(),
		cancel:      cancel,
		done:        make(chan error, 1),
	}
	go func() { r.done <- a.Serve(ctx, ln, metricsLn) }()
	return r
}

func getJSON(t *testing.T, client *http.Client, url string, v any) *http.Response {
	t.Helper()
	resp, err := client.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
	return resp
}

func TestAppRoutes(t *testing.T) {
	r := start(t, config.New())
	defer r.stop(t)
	base := "http://" + r.addr
	client := &http.Client{Timeout: 5 * time.Second}

	var info api.BuildInfo
	resp := getJSON(t, client, base+"/", &info)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, api.Info(), info)
	assert.Len(t, resp.Header.Get("X-Request-Id"), 36)

	var names []string
	getJSON(t, client, base+"/names", &names)
	assert.Equal(t, web.Names(), names)

	var one TypeName
	resp = getJSON(t, client, base+"/names/Server", &one)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, TypeName{Type: "Server", Name: "veeox::Server"}, one)

	var apiErr struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	}
	resp = getJSON(t, client, base+"/names/socket", &apiErr)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "unknown type: socket", apiErr.Message)

	var health map[string]string
	getJSON(t, client, base+"/healthz", &health)
	assert.Equal(t, "ok", health["status"])

	var pools struct {
		Gets uint64 `json:"gets"`
	}
	getJSON(t, client, base+"/debug/pools", &pools)
	assert.Positive(t, pools.Gets)

	var report []map[string]any
	resp = getJSON(t, client, base+"/debug/bottlenecks", &report)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	metrics, err := client.Get("http://" + r.metricsAddr + "/metrics")
	require.NoError(t, err)
	body, _ := io.ReadAll(metrics.Body)
	metrics.Body.Close()
	assert.Equal(t, http.StatusOK, metrics.StatusCode)
	assert.Contains(t, string(body), `veeox_http_requests_total{method="GET",route="/names/:type",status="404"} 1`)
}

func TestAppMiddlewareFromConfig(t *testing.T) {
	cfg := config.New()
	cfg.RateLimit = 1
	cfg.CORSOrigins = []string{"https://a.example"}
	r := start(t, cfg)
	defer r.stop(t)

	client := &http.Client{Timeout: 5 * time.Second}
	req, err := http.NewRequest(http.MethodGet, "http://"+r.addr+"/healthz", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "https://a.example")

	resp, err := client.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "https://a.example", resp.Header.Get("Access-Control-Allow-Origin"))

	resp, err = client.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
}

func TestAppH2C(t *testing.T) {
	cfg := config.New()
	cfg.H2C = true
	r := start(t, cfg)
	defer r.stop(t)

	client := &http.Client{
		Timeout: 5 * time.Second,
		Transport: &http2.Transport{
			AllowHTTP: true,
			DialTLSContext: func(ctx context.Context, network, addr string, _ *tls.Config) (net.Conn, error) {
				var d net.Dialer
				return d.DialContext(ctx, network, addr)
			},
		},
	}

	var names []string
	resp := getJSON(t, client, "http://"+r.addr+"/names", &names)
	assert.Equal(t, 2, resp.ProtoMajor)
	assert.Equal(t, web.Names(), names)
}

func TestAppInvalidConfig(t *testing.T) {
	cfg := config.New()
	cfg.Addr = ""
	_, err := New(cfg)
	assert.True(t, errors.Is(err, config.ErrInvalidConfig))
}

func TestAppRunListenError(t *testing.T) {
	taken, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer taken.Close()

	cfg := config.New()
	cfg.Addr = taken.Addr().String()
	a, err := New(cfg, WithLogger(logger.Discard()))
	require.NoError(t, err)

	err = a.Run(context.Background())
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "listen"))
}

func TestAppRunStopsOnCancel(t *testing.T) {
	cfg := config.New()
	cfg.Addr = "127.0.0.1:0"
	cfg.MetricsAddr = ""
	a, err := New(cfg, WithLogger(logger.Discard()))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
