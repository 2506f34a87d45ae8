package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	derrors "github.com/photonicat/feed_display/internal/errors"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestMissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"), "")
	require.NoError(t, err)

	assert.Equal(t, ":80", cfg.Listen)
	assert.Equal(t, 50*time.Millisecond, cfg.Timing.Debounce)
	assert.Equal(t, 200*time.Millisecond, cfg.Timing.DispatchPoll)
	assert.Equal(t, 15*time.Minute, cfg.Timing.RefreshEvery)
	assert.Equal(t, 30*time.Minute, cfg.Timing.RenderFallback)
	assert.Equal(t, 3*time.Minute, cfg.Timing.ActiveWindow)
	assert.Equal(t, 2*time.Minute, cfg.Timing.ServerWindow)
	assert.Equal(t, 30*time.Minute, cfg.Timing.DeepSleep)
	assert.Equal(t, 20*time.Second, cfg.Timing.HTTPTimeout)
	assert.Equal(t, "ESP-Feed", cfg.Network.APSSID)
	assert.Equal(t, -1, cfg.Button.SetupPin)
	assert.False(t, cfg.SetupMode)
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "config.yaml", `
listen: ":8080"
store_path: /var/lib/feed/settings.db
timing:
  refresh_every: 5m
  active_window: 90s
  server_window: 60s
content:
  feed_url: https://example.org/rss
  default_stock: SAP
button:
  source: gpio
  pin: 17
  active_low: true
  setup_pin: 27
display:
  panel: png
`)
	cfg, err := Load(path, "")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Listen)
	assert.Equal(t, 5*time.Minute, cfg.Timing.RefreshEvery)
	assert.Equal(t, 90*time.Second, cfg.Timing.ActiveWindow)
	assert.Equal(t, "https://example.org/rss", cfg.Content.FeedURL)
	assert.Equal(t, "SAP", cfg.Content.DefaultStock)
	assert.Equal(t, "gpio", cfg.Button.Source)
	assert.Equal(t, 17, cfg.Button.Pin)
	assert.Equal(t, 27, cfg.Button.SetupPin)
	assert.Equal(t, "png", cfg.Display.Panel)
	assert.Equal(t, 50*time.Millisecond, cfg.Timing.Debounce)
}

func TestEnvFileAndOverrides(t *testing.T) {
	t.Setenv(EnvListen, ":9090")
	t.Setenv(EnvSetupMode, "true")
	for _, key := range []string{EnvOpenWeatherKey, EnvAlphaVantageKey} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
	env := writeFile(t, ".env", "OPENWEATHER_API_KEY=ow-key\nALPHAVANTAGE_API_KEY=av-key\n")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"), env)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Listen)
	assert.True(t, cfg.SetupMode)
	assert.Equal(t, "ow-key", cfg.Content.WeatherAPIKey)
	assert.Equal(t, "av-key", cfg.Content.StockAPIKey)
}

func TestExpandsEnvironment(t *testing.T) {
	t.Setenv("FEED_TEST_KEY", "from-env")
	path := writeFile(t, "config.yaml", "content:\n  weather_api_key: ${FEED_TEST_KEY}\n")

	cfg, err := Load(path, "")
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Content.WeatherAPIKey)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		field  string
	}{
		{"button source", func(c *Config) { c.Button.Source = "touch" }, "button.source"},
		{"panel", func(c *Config) { c.Display.Panel = "oled" }, "display.panel"},
		{"ap password", func(c *Config) { c.Network.APPassword = "short" }, "network.ap_password"},
		{"server window", func(c *Config) { c.Timing.ServerWindow = time.Hour }, "timing.server_window"},
		{"battery range", func(c *Config) { c.Battery.FullMV = 3000 }, "battery.full_mv"},
		{"feed url", func(c *Config) { c.Content.FeedURL = "ftp://x" }, "content.feed_url"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, derrors.IsFatal(err))
			assert.True(t, derrors.IsCategory(err, derrors.CategoryConfig))
			var de *derrors.DeviceError
			require.ErrorAs(t, err, &de)
			assert.Equal(t, tt.field, de.Context["field"])
		})
	}
	assert.NoError(t, Default().Validate())
}

func TestInvalidSetupModeEnv(t *testing.T) {
	t.Setenv(EnvSetupMode, "maybe")
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"), "")
	assert.Error(t, err)
}

func TestMalformedYAML(t *testing.T) {
	path := writeFile(t, "config.yaml", "timing: [not, a, map")
	_, err := Load(path, "")
	assert.Error(t, err)
}
