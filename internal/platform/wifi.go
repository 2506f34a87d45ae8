package platform

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/photonicat/feed_display/internal/logfields"
	"github.com/photonicat/feed_display/internal/settings"
)

// Access point defaults shown on the setup page.
const (
	DefaultAPSSID     = "ESP-Feed"
	DefaultAPPassword = "38294446"
	DefaultAPAddress  = "10.42.0.1"
)

// NMCLILink drives the Wi-Fi interface through nmcli.
type NMCLILink struct {
	Interface      string
	APSSID         string
	APPassword     string
	ConnectTimeout time.Duration
	Run            Runner
}

func NewNMCLILink(iface, apSSID, apPassword string, connectTimeout time.Duration) *NMCLILink {
	if apSSID == "" {
		apSSID = DefaultAPSSID
	}
	if apPassword == "" {
		apPassword = DefaultAPPassword
	}
	if connectTimeout <= 0 {
		connectTimeout = 30 * time.Second
	}
	return &NMCLILink{
		Interface:      iface,
		APSSID:         apSSID,
		APPassword:     apPassword,
		ConnectTimeout: connectTimeout,
		Run:            ExecRunner,
	}
}

func (l *NMCLILink) ifname() []string {
	if l.Interface == "" {
		return nil
	}
	return []string{"ifname", l.Interface}
}

// Connect associates with the given network and checks that it became the
// active one.
func (l *NMCLILink) Connect(ctx context.Context, creds settings.Wifi) error {
	if _, err := l.Run(ctx, "nmcli", "radio", "wifi", "on"); err != nil {
		return err
	}

	args := []string{"--wait", strconv.Itoa(int(l.ConnectTimeout.Seconds())), "dev", "wifi", "connect", creds.SSID}
	if creds.Pass != "" {
		args = append(args, "password", creds.Pass)
	}
	args = append(args, l.ifname()...)

	slog.Info("Connecting to wifi", logfields.SSID(creds.SSID))
	if _, err := l.Run(ctx, "nmcli", args...); err != nil {
		return err
	}

	active, err := l.ActiveSSID(ctx)
	if err != nil {
		return err
	}
	if active != creds.SSID {
		return fmt.Errorf("associated with %q instead of %q", active, creds.SSID)
	}
	return nil
}

// ActiveSSID returns the SSID NetworkManager reports as active.
func (l *NMCLILink) ActiveSSID(ctx context.Context) (string, error) {
	out, err := l.Run(ctx, "nmcli", "-t", "-f", "active,ssid", "dev", "wifi")
	if err != nil {
		return "", err
	}
	for _, line := range strings.Split(string(out), "\n") {
		fields := strings.SplitN(strings.TrimSpace(line), ":", 2)
		if len(fields) == 2 && fields[0] == "yes" && fields[1] != "" {
			return fields[1], nil
		}
	}
	return "", fmt.Errorf("no active wifi connection")
}

func (l *NMCLILink) Disconnect(ctx context.Context) error {
	_, err := l.Run(ctx, "nmcli", "radio", "wifi", "off")
	return err
}

func (l *NMCLILink) StartAccessPoint(ctx context.Context) error {
	if _, err := l.Run(ctx, "nmcli", "radio", "wifi", "on"); err != nil {
		return err
	}
	args := append([]string{"dev", "wifi", "hotspot"}, l.ifname()...)
	args = append(args, "ssid", l.APSSID, "password", l.APPassword)

	slog.Info("Starting access point", logfields.SSID(l.APSSID))
	_, err := l.Run(ctx, "nmcli", args...)
	return err
}
