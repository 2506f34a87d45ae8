// Package settings holds the user-editable configuration records submitted
// through the configuration server and kept in the non-volatile store.
package settings

import (
	"fmt"
	"net/url"
	"strings"
)

// Fixed store keys. last_page is written by the dispatch loop on every page
// change.
const (
	KeyLastPage = "last_page"
	KeyPersonal = "personal"
	KeyWifi     = "wifi"
	KeyRss      = "rss"
	KeyStock    = "stock"
)

// Record is implemented by every settings payload.
type Record interface {
	Key() string
	Validate() error
}

type Personal struct {
	Name     string `json:"name"`
	Location string `json:"location"`
}

func (Personal) Key() string { return KeyPersonal }

func (p Personal) Validate() error {
	if strings.TrimSpace(p.Location) == "" {
		return fmt.Errorf("location is required")
	}
	return nil
}

// Wifi are the station credentials used in normal mode.
type Wifi struct {
	SSID string `json:"ssid"`
	Pass string `json:"pass"`
}

func (Wifi) Key() string { return KeyWifi }

func (w Wifi) Validate() error {
	if w.SSID == "" {
		return fmt.Errorf("ssid is required")
	}
	if len(w.SSID) > 32 {
		return fmt.Errorf("ssid longer than 32 bytes")
	}
	if w.Pass != "" && (len(w.Pass) < 8 || len(w.Pass) > 63) {
		return fmt.Errorf("passphrase must be 8..63 characters")
	}
	return nil
}

type Rss struct {
	URL string `json:"url"`
}

func (Rss) Key() string { return KeyRss }

func (r Rss) Validate() error {
	u, err := url.Parse(r.URL)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("url scheme must be http or https")
	}
	if u.Host == "" {
		return fmt.Errorf("url host is required")
	}
	return nil
}

type Stock struct {
	Symbol string `json:"symbol"`
}

func (Stock) Key() string { return KeyStock }

func (s Stock) Validate() error {
	sym := strings.TrimSpace(s.Symbol)
	if sym == "" || len(sym) > 12 {
		return fmt.Errorf("symbol must be 1..12 characters")
	}
	for _, r := range sym {
		if !(r >= 'A' && r <= 'Z' || r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '.' || r == '-') {
			return fmt.Errorf("symbol contains %q", r)
		}
	}
	return nil
}
