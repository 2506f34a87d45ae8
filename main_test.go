package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/alecthomas/kong"

	"github.com/photonicat/feed_display/internal/config"
)

func TestWriteConfigMasksKeys(t *testing.T) {
	cfg := config.Default()
	cfg.Content.WeatherAPIKey = "secret-weather"
	cfg.Content.StockAPIKey = "secret-stock"

	var buf bytes.Buffer
	if err := writeConfig(&buf, cfg); err != nil {
		t.Fatalf("writeConfig: %v", err)
	}
	out := buf.String()
	if strings.Contains(out, "secret") {
		t.Errorf("api key leaked:\n%s", out)
	}
	if !strings.Contains(out, "ap_ssid: ESP-Feed") {
		t.Errorf("missing defaults:\n%s", out)
	}
	if cfg.Content.WeatherAPIKey != "secret-weather" {
		t.Error("writeConfig modified its input")
	}
}

func TestCLIParse(t *testing.T) {
	tests := []struct {
		args    []string
		command string
		check   func(*CLI) bool
	}{
		{[]string{}, "run", func(c *CLI) bool { return c.Config == "config.yaml" && !c.Run.Setup }},
		{[]string{"run", "--setup", "--panel", "png", "--png-path", "/tmp/f.png"}, "run", func(c *CLI) bool {
			return c.Run.Setup && c.Run.Panel == "png" && c.Run.PNGPath == "/tmp/f.png"
		}},
		{[]string{"-c", "other.yaml", "show"}, "show", func(c *CLI) bool { return c.Config == "other.yaml" }},
	}

	for _, tt := range tests {
		t.Run(strings.Join(tt.args, " "), func(t *testing.T) {
			var cli CLI
			parser, err := kong.New(&cli)
			if err != nil {
				t.Fatalf("kong.New: %v", err)
			}
			kctx, err := parser.Parse(tt.args)
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if !strings.HasPrefix(kctx.Command(), tt.command) {
				t.Errorf("command = %q, want %q", kctx.Command(), tt.command)
			}
			if !tt.check(&cli) {
				t.Errorf("unexpected flags: %+v", cli)
			}
		})
	}
}
