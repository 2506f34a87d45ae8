package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-ping/ping"
)

// sysfsBattery reads voltage_now (microvolts) from the power supply class.
type sysfsBattery struct {
	path string
}

func newSysfsBattery(path string) *sysfsBattery {
	return &sysfsBattery{path: path}
}

func (b *sysfsBattery) SampleMillivolts() (uint16, error) {
	uv, err := readSysfsFloat(b.path)
	if err != nil {
		return 0, err
	}
	mv := math.Round(uv / 1000)
	if mv < 0 || mv > math.MaxUint16 {
		return 0, fmt.Errorf("battery voltage %.0fuV out of range", uv)
	}
	return uint16(mv), nil
}

func readSysfsFloat(path string) (float64, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	return strconv.ParseFloat(strings.TrimSpace(string(content)), 64)
}

// icmpProber checks reachability after association with one ICMP echo.
// Note: raw ICMP usually requires root; without it ping falls back to UDP.
type icmpProber struct {
	host    string
	timeout time.Duration
}

func newICMPProber(host string) *icmpProber {
	return &icmpProber{host: host, timeout: 2 * time.Second}
}

func (p *icmpProber) Probe(ctx context.Context) error {
	pinger, err := ping.NewPinger(p.host)
	if err != nil {
		return err
	}
	pinger.SetPrivileged(os.Geteuid() == 0)
	pinger.Count = 1
	pinger.Timeout = p.timeout

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			pinger.Stop()
		case <-done:
		}
	}()

	if err := pinger.Run(); err != nil {
		return err
	}
	stats := pinger.Statistics()
	if stats.PacketsRecv == 0 {
		return fmt.Errorf("no reply from %s within %s", p.host, p.timeout)
	}
	return nil
}
