package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	prom "github.com/prometheus/client_golang/prometheus"
	"gopkg.in/yaml.v3"

	"github.com/photonicat/feed_display/internal/config"
	"github.com/photonicat/feed_display/internal/device"
	"github.com/photonicat/feed_display/internal/input"
	"github.com/photonicat/feed_display/internal/logfields"
	"github.com/photonicat/feed_display/internal/metrics"
	"github.com/photonicat/feed_display/internal/platform"
	"github.com/photonicat/feed_display/internal/store"
)

// CLI definition & global flags.
type CLI struct {
	Config  string `short:"c" help:"Configuration file path" default:"config.yaml"`
	EnvFile string `help:"dotenv file with API keys" default:".env"`
	Verbose bool   `short:"v" help:"Enable verbose logging"`

	Run  RunCmd  `cmd:"" default:"withargs" help:"Run the display until the next deep sleep"`
	Show ShowCmd `cmd:"" help:"Print the resolved configuration"`
}

// AfterApply runs after flag parsing; setup logging once.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	return nil
}

type RunCmd struct {
	Setup   bool   `help:"Force setup mode (access point and config page)"`
	Panel   string `help:"Panel driver (epaper or png)"`
	PNGPath string `name:"png-path" help:"Output file for the png panel"`
}

func (r *RunCmd) Run(cli *CLI) error {
	cfg, err := config.Load(cli.Config, cli.EnvFile)
	if err != nil {
		return err
	}
	if r.Panel != "" {
		cfg.Display.Panel = r.Panel
	}
	if r.PNGPath != "" {
		cfg.Display.PNGPath = r.PNGPath
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(cfg.StorePath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	setup := cfg.SetupMode || r.Setup || setupPinActive(cfg)

	debouncer := input.NewDebouncer(cfg.Timing.Debounce)
	button, err := openButton(ctx, cfg, debouncer)
	if err != nil {
		// the device still works without the button, only page switching is lost
		slog.Error("Button unavailable", logfields.Error(err))
	} else if button != nil {
		defer button.Close()
	}

	panel, err := openPanel(cfg)
	if err != nil {
		return err
	}
	defer panel.Close()

	reg := prom.NewRegistry()
	dev, err := device.Boot(ctx, device.Options{
		Config:    cfg,
		SetupMode: setup,
		Store:     st,
		Panel:     panel,
		Presses:   debouncer,
		Battery:   newSysfsBattery(cfg.Battery.VoltagePath),
		Link:      platform.NewNMCLILink(cfg.Network.Interface, cfg.Network.APSSID, cfg.Network.APPassword, cfg.Timing.HTTPTimeout),
		Sleeper:   platform.NewRTCWakeSleeper(),
		Prober:    newICMPProber(cfg.Network.ProbeHost),
		Client:    &http.Client{Timeout: cfg.Timing.HTTPTimeout},
		Metrics:   metrics.NewPrometheusRecorder(reg),
	})
	if err != nil {
		return err
	}

	srv := newConfigServer(cfg.Listen, dev, reg)
	if err := dev.Run(ctx, srv); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

type ShowCmd struct{}

func (s *ShowCmd) Run(cli *CLI) error {
	cfg, err := config.Load(cli.Config, cli.EnvFile)
	if err != nil {
		return err
	}
	return writeConfig(os.Stdout, cfg)
}

// writeConfig prints cfg as YAML with the API keys masked.
func writeConfig(w io.Writer, cfg *config.Config) error {
	masked := *cfg
	if masked.Content.WeatherAPIKey != "" {
		masked.Content.WeatherAPIKey = "***"
	}
	if masked.Content.StockAPIKey != "" {
		masked.Content.StockAPIKey = "***"
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	defer enc.Close()
	return enc.Encode(&masked)
}

func main() {
	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("feed_display"),
		kong.Description("E-paper news, weather and stock display"),
		kong.UsageOnError(),
	)
	if err := kctx.Run(&cli); err != nil {
		slog.Error("Exiting", logfields.Error(err))
		os.Exit(1)
	}
}
