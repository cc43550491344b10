//go:build !bloat_demo

package main

import (
	"bytes"
	"errors"
	"os"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const runMainEnv = "BLOAT_DEMO_RUN_MAIN"

func TestMainWithoutTag(t *testing.T) {
	if os.Getenv(runMainEnv) == "1" {
		main()
		return
	}

	cmd := exec.Command(os.Args[0], "-test.run=^TestMainWithoutTag$")
	cmd.Env = append(os.Environ(), runMainEnv+"=1")
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err := cmd.Run()

	var exitErr *exec.ExitError
	require.True(t, errors.As(err, &exitErr), "expected exit error, got %v", err)
	assert.Equal(t, 2, exitErr.ExitCode())
	assert.Equal(t, "enable: -tags bloat_demo\n", stderr.String())
}
