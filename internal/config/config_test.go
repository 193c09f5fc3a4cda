package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sensorbridge "github.com/e7canasta/orion-care-sensor/modules/sensor-bridge"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// unsetenv removes key for the duration of the test and restores it after.
func unsetenv(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	require.NoError(t, os.Unsetenv(key))
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("", "")
	require.NoError(t, err)

	assert.Equal(t, "sensor-bridge", cfg.InstanceID)
	assert.Equal(t, "png", cfg.Output.Format)
	assert.Equal(t, 30, cfg.Output.SaveEvery)
	assert.Equal(t, 5, cfg.Retry.MaxRetries)
	assert.Equal(t, 50*time.Millisecond, cfg.Retry.RetryDelay)
	assert.Contains(t, cfg.Channels, "skeleton")
}

func TestLoad_File(t *testing.T) {
	path := writeFile(t, "bridge.yaml", `
instance_id: ward-3
engine_config: scenes/ward.yaml
cycles: 120
channels: [depth, skeleton]
output:
  dir: /tmp/frames
  format: JPG
retry:
  max_retries: 2
  retry_delay: 10ms
  max_retry_delay: 5ms
log:
  level: debug
`)
	cfg, err := Load(path, "")
	require.NoError(t, err)

	assert.Equal(t, "ward-3", cfg.InstanceID)
	assert.Equal(t, "scenes/ward.yaml", cfg.EngineConfig)
	assert.Equal(t, 120, cfg.Cycles)
	assert.Equal(t, []string{"depth", "skeleton"}, cfg.Channels)
	assert.Equal(t, "jpeg", cfg.Output.Format)
	assert.Equal(t, 90, cfg.Output.JPEGQuality, "unset fields keep defaults")
	assert.Equal(t, 10*time.Millisecond, cfg.Retry.RetryDelay)
	assert.Equal(t, 10*time.Millisecond, cfg.Retry.MaxRetryDelay, "cap raised to the initial delay")

	b := cfg.Retry.Backoff()
	assert.Equal(t, 2, b.MaxRetries)
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeFile(t, "bridge.yaml", "instance_id: from-file\ncycles: 10\n")
	t.Setenv("SENSOR_BRIDGE_INSTANCE_ID", "from-env")
	t.Setenv("SENSOR_BRIDGE_CHANNELS", "face,issue")
	t.Setenv("SENSOR_BRIDGE_RETRY_DELAY", "250ms")

	cfg, err := Load(path, "")
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.InstanceID)
	assert.Equal(t, 10, cfg.Cycles, "file value kept when env is unset")
	assert.Equal(t, []string{"face", "issue"}, cfg.Channels)
	assert.Equal(t, 250*time.Millisecond, cfg.Retry.RetryDelay)
}

func TestLoad_DotEnv(t *testing.T) {
	unsetenv(t, "SENSOR_BRIDGE_CYCLES")
	unsetenv(t, "SENSOR_BRIDGE_LOG_JSON")
	t.Setenv("SENSOR_BRIDGE_INSTANCE_ID", "already-set")

	dotenv := writeFile(t, ".env", "SENSOR_BRIDGE_CYCLES=7\nSENSOR_BRIDGE_LOG_JSON=true\nSENSOR_BRIDGE_INSTANCE_ID=from-dotenv\n")
	t.Cleanup(func() {
		os.Unsetenv("SENSOR_BRIDGE_CYCLES")
		os.Unsetenv("SENSOR_BRIDGE_LOG_JSON")
	})

	cfg, err := Load("", dotenv)
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Cycles)
	assert.True(t, cfg.Log.JSON)
	assert.Equal(t, "already-set", cfg.InstanceID, "process environment wins over .env")
}

func TestLoad_MissingDotEnvIgnored(t *testing.T) {
	_, err := Load("", filepath.Join(t.TempDir(), "missing.env"))
	assert.NoError(t, err)
}

func TestLoad_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), "")
		require.Error(t, err)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("bad yaml", func(t *testing.T) {
		_, err := Load(writeFile(t, "bad.yaml", "cycles: [1"), "")
		assert.ErrorContains(t, err, "config: parse config")
	})

	t.Run("bad env", func(t *testing.T) {
		t.Setenv("SENSOR_BRIDGE_CYCLES", "many")
		_, err := Load("", "")
		assert.ErrorContains(t, err, "config: parse env")
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"empty instance", func(c *Config) { c.InstanceID = "" }, "instance_id is required"},
		{"bad instance", func(c *Config) { c.InstanceID = "Ward 3" }, "instance_id must match"},
		{"negative cycles", func(c *Config) { c.Cycles = -1 }, "cycles must be >= 0"},
		{"unknown channel", func(c *Config) { c.Channels = []string{"thermal"} }, `unknown channel "thermal"`},
		{"duplicate channel", func(c *Config) { c.Channels = []string{"hand", "HAND"} }, "listed twice"},
		{"bad format", func(c *Config) { c.Output.Format = "bmp" }, "output.format"},
		{"bad quality", func(c *Config) { c.Output.JPEGQuality = 101 }, "jpeg_quality"},
		{"zero delay", func(c *Config) { c.Retry.RetryDelay = 0 }, "retry_delay"},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }, "unknown log level"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)
			err := Validate(&cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.errMsg)
		})
	}
}

func TestParseChannels(t *testing.T) {
	chs, err := ParseChannels([]string{"depth", " User_Mask ", "face"})
	require.NoError(t, err)
	assert.Equal(t, []sensorbridge.Channel{sensorbridge.ChannelDepth, sensorbridge.ChannelUserMask, sensorbridge.ChannelFace}, chs)

	chs, err = ParseChannels(nil)
	require.NoError(t, err)
	assert.Empty(t, chs)
}

func TestParseLevel(t *testing.T) {
	lvl, err := ParseLevel("DEBUG")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, lvl)

	lvl, err = ParseLevel("")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelInfo, lvl)
}
