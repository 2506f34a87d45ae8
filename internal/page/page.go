// Package page defines the closed set of display pages and the fixed order in
// which the button cycles through them.
package page

import (
	"fmt"
	"strings"
)

// Kind identifies one display page.
type Kind int

const (
	Config Kind = iota
	Example
	Feed
	WeatherHourly
	WeatherDaily
	Stock
)

// Default is the page used when nothing usable was persisted.
const Default = Feed

var names = map[Kind]string{
	Config:        "config",
	Example:       "example",
	Feed:          "feed",
	WeatherHourly: "weather_hourly",
	WeatherDaily:  "weather_daily",
	Stock:         "stock",
}

// Next returns the page that follows k in the button cycle.
//
// Config is a fixed point: it is entered only through setup mode and never
// left by the cycle, and no other page leads into it.
func Next(k Kind) Kind {
	switch k {
	case Config:
		return Config
	case Feed:
		return WeatherHourly
	case WeatherHourly:
		return WeatherDaily
	case WeatherDaily:
		return Stock
	case Stock:
		return Example
	case Example:
		return Feed
	default:
		return Default
	}
}

// Advance applies Next n times.
func Advance(k Kind, n int) Kind {
	for i := 0; i < n; i++ {
		k = Next(k)
	}
	return k
}

// Restore picks the start page from the persisted value. Setup mode always
// starts on Config; a persisted Config is never resumed without it.
func Restore(persisted Kind, found bool, setupMode bool) Kind {
	if setupMode {
		return Config
	}
	if !found || persisted == Config || !persisted.Valid() {
		return Default
	}
	return persisted
}

func (k Kind) Valid() bool {
	_, ok := names[k]
	return ok
}

// IsWeather reports whether the page renders the weather snapshot.
func (k Kind) IsWeather() bool {
	return k == WeatherHourly || k == WeatherDaily
}

func (k Kind) String() string {
	if n, ok := names[k]; ok {
		return n
	}
	return fmt.Sprintf("page(%d)", int(k))
}

// ParseKind is the inverse of String.
func ParseKind(s string) (Kind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for k, n := range names {
		if n == s {
			return k, nil
		}
	}
	return Default, fmt.Errorf("unknown page %q", s)
}

func (k Kind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("invalid page %d", int(k))
	}
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(b []byte) error {
	parsed, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
