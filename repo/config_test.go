package repo

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(strings.NewReader(""))
	require.NoError(t, err)

	assert.Equal(t, ProviderRetroArch, cfg.Provider)
	assert.Equal(t, "localhost", cfg.Host)
	assert.Equal(t, "55355", cfg.Port)
	assert.Equal(t, int64(250), cfg.PollIntervalMS)
	assert.Equal(t, int64(500), cfg.CacheTTLMS)
}

func TestLoadOverrides(t *testing.T) {
	cfg, err := Load(strings.NewReader(`
provider: statesock
socket_url: ws://localhost:7102
poll_interval_ms: 100
cache_ttl_ms: 1000
sink_url: http://leds.local:8000/gamestate
hooks_file: /opt/kiosk/hooks.lua
`))
	require.NoError(t, err)

	assert.Equal(t, ProviderStateSock, cfg.Provider)
	assert.Equal(t, "ws://localhost:7102", cfg.SocketURL)
	assert.Equal(t, int64(100), cfg.PollIntervalMS)
	assert.Equal(t, int64(1000), cfg.CacheTTLMS)
	assert.Equal(t, "http://leds.local:8000/gamestate", cfg.SinkURL)
	assert.Equal(t, "/opt/kiosk/hooks.lua", cfg.HooksFile)
}

func TestLoadRejectsUnknownProvider(t *testing.T) {
	_, err := Load(strings.NewReader("provider: telepathy"))
	assert.Error(t, err)
}

func TestLoadRejectsBadInterval(t *testing.T) {
	_, err := Load(strings.NewReader("poll_interval_ms: -5"))
	assert.Error(t, err)
}

func TestLoadFileMissingUsesDefaults(t *testing.T) {
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "nope.yml"))
	require.NoError(t, err)
	assert.Equal(t, ProviderRetroArch, cfg.Provider)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte("provider: statefile\nstate_dir: /srv/states\n"), 0o644))

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, ProviderStateFile, cfg.Provider)
	assert.Equal(t, "/srv/states", cfg.StateDir)
}
