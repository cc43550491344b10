//go:build linux || darwin || freebsd || netbsd || openbsd || dragonfly

package web

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReusePort(t *testing.T) {
	ctx := context.Background()
	s := NewServer(WithReusePort(true))

	ln1, err := s.Listen(ctx, "127.0.0.1:0")
	require.NoError(t, err)
	defer ln1.Close()

	ln2, err := s.Listen(ctx, ln1.Addr().String())
	require.NoError(t, err)
	defer ln2.Close()

	// Without the option the port is taken
	_, err = NewServer().Listen(ctx, ln1.Addr().String())
	assert.Error(t, err)
}
