package web

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMarkerNames(t *testing.T) {
	tests := []struct {
		typ  Namer
		want string
	}{
		{Api{}, "veeox-api::Api"},
		{Str{}, "veeox-string::Str"},
		{Request{}, "veeox::Request"},
		{Response{}, "veeox::Response"},
		{Route{}, "veeox::Route"},
		{Middleware(nil), "veeox::Middleware"},
		{(*Server)(nil), "veeox::Server"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.typ.Name())
		// Idempotent and deterministic
		assert.Equal(t, tt.typ.Name(), tt.typ.Name())
	}
}

func TestNamesOrder(t *testing.T) {
	assert.Equal(t, []string{
		"veeox-api::Api",
		"veeox-string::Str",
		"veeox::Request",
		"veeox::Response",
		"veeox::Route",
		"veeox::Middleware",
		"veeox::Server",
	}, Names())
}

func TestNameOf(t *testing.T) {
	name, ok := NameOf("Server")
	assert.True(t, ok)
	assert.Equal(t, ServerName, name)

	name, ok = NameOf("middleware")
	assert.True(t, ok)
	assert.Equal(t, MiddlewareName, name)

	_, ok = NameOf("socket")
	assert.False(t, ok)
}

func TestConfiguredServerName(t *testing.T) {
	assert.Equal(t, "veeox::Server", NewServer().Name())
}
