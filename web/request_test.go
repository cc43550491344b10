package web

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

func TestRequestHeaders(t *testing.T) {
	req := &Request{}
	req.SetHeader("content-type", "application/json")
	req.SetHeader("x-forwarded-for", "10.0.0.1")
	req.SetHeader("X-Forwarded-For", "10.0.0.2")

	assert.Equal(t, "application/json", req.ContentType)
	assert.Equal(t, "application/json", req.Header("Content-Type"))
	assert.Equal(t, "10.0.0.1, 10.0.0.2", req.Header("x-forwarded-for"))
	assert.Empty(t, req.Header("X-Missing"))
}

func TestRequestParamsOverflow(t *testing.T) {
	req := &Request{}
	keys := []string{"a", "b", "c", "d", "e", "f"}
	for i, k := range keys {
		req.SetParam(k, string(rune('0'+i)))
	}
	for i, k := range keys {
		assert.Equal(t, string(rune('0'+i)), req.Param(k), "param %s", k)
	}

	req.SetParam("b", "changed")
	req.SetParam("f", "changed")
	assert.Equal(t, "changed", req.Param("b"))
	assert.Equal(t, "changed", req.Param("f"))
	assert.Empty(t, req.Param("missing"))
}

func TestRequestReset(t *testing.T) {
	req := &Request{}
	req.Method = "POST"
	req.SetHeader("X-A", "1")
	req.SetParam("id", "7")
	req.Body = append(req.Body, "body"...)
	req.SetContext(context.TODO())

	req.Reset()

	assert.Empty(t, req.Method)
	assert.Empty(t, req.Header("X-A"))
	assert.Empty(t, req.Param("id"))
	assert.Empty(t, req.Body)
	assert.Equal(t, context.Background(), req.Context())
}

func TestRequestKeepAlive(t *testing.T) {
	tests := []struct {
		proto      string
		connection string
		want       bool
	}{
		{"HTTP/1.1", "", true},
		{"HTTP/1.1", "close", false},
		{"HTTP/1.1", "Upgrade, Close", false},
		{"HTTP/1.0", "", false},
		{"HTTP/1.0", "Keep-Alive", true},
	}
	for _, tt := range tests {
		req := &Request{Proto: tt.proto, Connection: tt.connection}
		assert.Equal(t, tt.want, req.KeepAlive(), "%s Connection=%q", tt.proto, tt.connection)
	}
}

func TestRequestSetContextNil(t *testing.T) {
	req := &Request{}
	assert.Panics(t, func() {
		//nolint:staticcheck // nil is the case under test
		req.SetContext(nil)
	})
}

func TestRequestBindProto(t *testing.T) {
	w := &Response{}
	w.Proto(200, wrapperspb.String("veeox"))

	req := &Request{Body: w.Body()}
	msg := &wrapperspb.StringValue{}
	require.NoError(t, req.BindProto(msg))
	assert.Equal(t, "veeox", msg.GetValue())
}
