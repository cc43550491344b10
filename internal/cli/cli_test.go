package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veeox/veeox/api"
	"github.com/veeox/veeox/web"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestNamesCommand(t *testing.T) {
	out, err := execute(t, "names")
	require.NoError(t, err)
	assert.Equal(t, strings.Join(web.Names(), "\n")+"\n", out)

	out, err = execute(t, "names", "route")
	require.NoError(t, err)
	assert.Equal(t, "veeox::Route\n", out)

	out, err = execute(t, "names", "--json")
	require.NoError(t, err)
	var names []string
	require.NoError(t, json.Unmarshal([]byte(out), &names))
	assert.Equal(t, web.Names(), names)

	_, err = execute(t, "names", "socket")
	assert.EqualError(t, err, "unknown type: socket")
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, api.Info().String()+"\n", out)

	out, err = execute(t, "version", "--json")
	require.NoError(t, err)
	var info api.BuildInfo
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Equal(t, api.Info(), info)
}

func TestServeInvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_level: loud\n"), 0o600))

	_, err := execute(t, "serve", "--config", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config")
}
