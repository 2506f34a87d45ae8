// Package config loads the device configuration from YAML, a .env file and
// the process environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	derrors "github.com/photonicat/feed_display/internal/errors"
)

// Environment variables read on top of the YAML file.
const (
	EnvOpenWeatherKey  = "OPENWEATHER_API_KEY"
	EnvAlphaVantageKey = "ALPHAVANTAGE_API_KEY"
	EnvSetupMode       = "FEED_DISPLAY_SETUP_MODE"
	EnvListen          = "FEED_DISPLAY_LISTEN"
)

type Config struct {
	Listen    string `yaml:"listen"`
	StorePath string `yaml:"store_path"`
	// SetupMode forces the access point even without the setup pin.
	SetupMode bool `yaml:"setup_mode"`

	Timing  Timing  `yaml:"timing"`
	Content Content `yaml:"content"`
	Button  Button  `yaml:"button"`
	Display Display `yaml:"display"`
	Network Network `yaml:"network"`
	Battery Battery `yaml:"battery"`
}

type Timing struct {
	Debounce       time.Duration `yaml:"debounce"`
	DispatchPoll   time.Duration `yaml:"dispatch_poll"`
	RefreshEvery   time.Duration `yaml:"refresh_every"`
	RenderFallback time.Duration `yaml:"render_fallback"`
	ActiveWindow   time.Duration `yaml:"active_window"`
	ServerWindow   time.Duration `yaml:"server_window"`
	DeepSleep      time.Duration `yaml:"deep_sleep"`
	HTTPTimeout    time.Duration `yaml:"http_timeout"`
}

type Content struct {
	FeedURL         string `yaml:"feed_url"`
	WeatherBaseURL  string `yaml:"weather_base_url"`
	WeatherAPIKey   string `yaml:"weather_api_key"`
	WeatherLang     string `yaml:"weather_lang"`
	StockBaseURL    string `yaml:"stock_base_url"`
	StockAPIKey     string `yaml:"stock_api_key"`
	DefaultStock    string `yaml:"default_stock"`
	DefaultLocation string `yaml:"default_location"`
}

// Button selects where press edges come from.
type Button struct {
	// Source is "gpio", "evdev" or "none".
	Source      string `yaml:"source"`
	Chip        string `yaml:"chip"`
	Pin         int    `yaml:"pin"`
	ActiveLow   bool   `yaml:"active_low"`
	EvdevName   string `yaml:"evdev_name"`
	SetupPin    int    `yaml:"setup_pin"` // -1 disables the boot-time read
	SetupActive bool   `yaml:"setup_active_low"`
}

type Display struct {
	// Panel is "epaper" or "png".
	Panel   string `yaml:"panel"`
	SPIPort string `yaml:"spi_port"`
	PNGPath string `yaml:"png_path"`
}

type Network struct {
	Interface  string `yaml:"interface"`
	APSSID     string `yaml:"ap_ssid"`
	APPassword string `yaml:"ap_password"`
	APAddress  string `yaml:"ap_address"`
	ProbeHost  string `yaml:"probe_host"`
}

type Battery struct {
	VoltagePath string `yaml:"voltage_path"`
	EmptyMV     uint16 `yaml:"empty_mv"`
	FullMV      uint16 `yaml:"full_mv"`
}

// Default returns a configuration with every default applied.
func Default() *Config {
	c := &Config{Button: Button{SetupPin: -1}}
	c.ApplyDefaults()
	return c
}

// Load reads envFile (optional) and path. A missing config file yields the
// defaults; a malformed one is an error.
func Load(path, envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("load env file %s: %w", envFile, err)
		}
	}

	cfg := &Config{Button: Button{SetupPin: -1}}
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	default:
		if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv(EnvOpenWeatherKey); v != "" && c.Content.WeatherAPIKey == "" {
		c.Content.WeatherAPIKey = v
	}
	if v := os.Getenv(EnvAlphaVantageKey); v != "" && c.Content.StockAPIKey == "" {
		c.Content.StockAPIKey = v
	}
	if v := os.Getenv(EnvListen); v != "" {
		c.Listen = v
	}
	if v := os.Getenv(EnvSetupMode); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return derrors.ConfigInvalid(EnvSetupMode, err.Error())
		}
		c.SetupMode = b
	}
	return nil
}

func (c *Config) ApplyDefaults() {
	if c.Listen == "" {
		c.Listen = ":80"
	}
	if c.StorePath == "" {
		c.StorePath = "feed_display.db"
	}

	t := &c.Timing
	setDuration(&t.Debounce, 50*time.Millisecond)
	setDuration(&t.DispatchPoll, 200*time.Millisecond)
	setDuration(&t.RefreshEvery, 15*time.Minute)
	setDuration(&t.RenderFallback, 30*time.Minute)
	setDuration(&t.ActiveWindow, 3*time.Minute)
	setDuration(&t.ServerWindow, 2*time.Minute)
	setDuration(&t.DeepSleep, 30*time.Minute)
	setDuration(&t.HTTPTimeout, 20*time.Second)

	if c.Content.WeatherLang == "" {
		c.Content.WeatherLang = "de"
	}
	if c.Content.DefaultStock == "" {
		c.Content.DefaultStock = "IBM"
	}

	if c.Button.Source == "" {
		c.Button.Source = "evdev"
	}
	if c.Button.Chip == "" {
		c.Button.Chip = "gpiochip0"
	}
	if c.Button.EvdevName == "" {
		c.Button.EvdevName = "rk805 pwrkey"
	}

	if c.Display.Panel == "" {
		c.Display.Panel = "epaper"
	}
	if c.Display.PNGPath == "" {
		c.Display.PNGPath = "frame.png"
	}

	if c.Network.APSSID == "" {
		c.Network.APSSID = "ESP-Feed"
	}
	if c.Network.APPassword == "" {
		c.Network.APPassword = "38294446"
	}
	if c.Network.APAddress == "" {
		c.Network.APAddress = "10.42.0.1"
	}
	if c.Network.ProbeHost == "" {
		c.Network.ProbeHost = "1.1.1.1"
	}

	if c.Battery.VoltagePath == "" {
		c.Battery.VoltagePath = "/sys/class/power_supply/battery/voltage_now"
	}
	if c.Battery.EmptyMV == 0 {
		c.Battery.EmptyMV = 3300
	}
	if c.Battery.FullMV == 0 {
		c.Battery.FullMV = 4200
	}
}

func setDuration(d *time.Duration, def time.Duration) {
	if *d <= 0 {
		*d = def
	}
}

// Validate reports the first invalid field as a startup-fatal error.
func (c *Config) Validate() error {
	switch c.Button.Source {
	case "gpio", "evdev", "none":
	default:
		return derrors.ConfigInvalid("button.source", fmt.Sprintf("unknown source %q", c.Button.Source))
	}
	switch c.Display.Panel {
	case "epaper", "png":
	default:
		return derrors.ConfigInvalid("display.panel", fmt.Sprintf("unknown panel %q", c.Display.Panel))
	}
	if c.Button.Source == "gpio" && c.Button.Pin < 0 {
		return derrors.ConfigInvalid("button.pin", "must not be negative")
	}
	if len(c.Network.APPassword) < 8 {
		return derrors.ConfigInvalid("network.ap_password", "must have at least 8 characters")
	}
	if c.Timing.ServerWindow > c.Timing.ActiveWindow {
		return derrors.ConfigInvalid("timing.server_window", "must not exceed timing.active_window")
	}
	if c.Battery.FullMV <= c.Battery.EmptyMV {
		return derrors.ConfigInvalid("battery.full_mv", "must be above battery.empty_mv")
	}
	if u := c.Content.FeedURL; u != "" && !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
		return derrors.ConfigInvalid("content.feed_url", "must be an http(s) url")
	}
	return nil
}
