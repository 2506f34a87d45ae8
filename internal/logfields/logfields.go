package logfields

import (
	"log/slog"
	"time"
)

// Canonical log field names shared by every task so log lines stay greppable.
const (
	KeyPage       = "page"
	KeySource     = "source"
	KeyKey        = "key"
	KeyCommand    = "command"
	KeyState      = "state"
	KeyFrom       = "from"
	KeyTo         = "to"
	KeyDurationMS = "duration_ms"
	KeyCount      = "count"
	KeyURL        = "url"
	KeySSID       = "ssid"
	KeyError      = "error"
)

func Page(p string) slog.Attr    { return slog.String(KeyPage, p) }
func Source(s string) slog.Attr  { return slog.String(KeySource, s) }
func Key(k string) slog.Attr     { return slog.String(KeyKey, k) }
func Command(c string) slog.Attr { return slog.String(KeyCommand, c) }
func State(s string) slog.Attr   { return slog.String(KeyState, s) }
func From(s string) slog.Attr    { return slog.String(KeyFrom, s) }
func To(s string) slog.Attr      { return slog.String(KeyTo, s) }
func Count(n int) slog.Attr      { return slog.Int(KeyCount, n) }
func URL(u string) slog.Attr     { return slog.String(KeyURL, u) }
func SSID(s string) slog.Attr    { return slog.String(KeySSID, s) }
func Duration(d time.Duration) slog.Attr {
	return slog.Float64(KeyDurationMS, float64(d)/float64(time.Millisecond))
}
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
