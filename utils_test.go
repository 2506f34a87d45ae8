package main

import (
	"strings"
	"syscall"
	"testing"
	"time"

	evdev "github.com/holoplot/go-evdev"

	"github.com/photonicat/feed_display/internal/config"
	"github.com/photonicat/feed_display/internal/input"
)

func TestValidateJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   []byte
		wantErr bool
	}{
		{
			name:    "valid JSON object",
			input:   []byte(`{"ssid": "home", "pass": "password1"}`),
			wantErr: false,
		},
		{
			name:    "empty JSON object",
			input:   []byte(`{}`),
			wantErr: false,
		},
		{
			name:    "invalid JSON",
			input:   []byte(`{"invalid": json`),
			wantErr: true,
		},
		{
			name:    "empty data",
			input:   []byte(``),
			wantErr: true,
		},
		{
			name:    "malicious script tag",
			input:   []byte(`{"name": "<SCRIPT>alert('xss')</SCRIPT>"}`),
			wantErr: true,
		},
		{
			name:    "malicious javascript",
			input:   []byte(`{"url": "javascript:alert(1)"}`),
			wantErr: true,
		},
		{
			name:    "malicious eval",
			input:   []byte(`{"name": "eval('malicious')"}`),
			wantErr: true,
		},
		{
			name:    "too large JSON",
			input:   []byte(`{"name": "` + strings.Repeat("a", maxBodyBytes) + `"}`),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateJSON(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateJSON() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func keyEvent(typ evdev.EvType, code evdev.EvCode, value int32, at time.Duration) *evdev.InputEvent {
	return &evdev.InputEvent{
		Time:  syscall.NsecToTimeval(int64(at)),
		Type:  typ,
		Code:  code,
		Value: value,
	}
}

func TestHandleKeyEvent(t *testing.T) {
	d := input.NewDebouncer(50 * time.Millisecond)
	base := 1000 * time.Second

	events := []*evdev.InputEvent{
		keyEvent(evdev.EV_KEY, evdev.KEY_POWER, 1, base),
		keyEvent(evdev.EV_KEY, evdev.KEY_POWER, 2, base+10*time.Millisecond), // autorepeat
		keyEvent(evdev.EV_KEY, evdev.KEY_POWER, 0, base+120*time.Millisecond),
		keyEvent(evdev.EV_KEY, evdev.KEY_VOLUMEUP, 1, base+200*time.Millisecond),
		keyEvent(evdev.EV_SYN, 0, 0, base+210*time.Millisecond),
		keyEvent(evdev.EV_KEY, evdev.KEY_POWER, 1, base+300*time.Millisecond),
		keyEvent(evdev.EV_KEY, evdev.KEY_POWER, 0, base+320*time.Millisecond), // bounce
	}
	for _, ev := range events {
		handleKeyEvent(d, ev)
	}

	if got := d.ReadAndReset(); got != 2 {
		t.Errorf("presses = %d, want 2", got)
	}
	if !d.Pressed() {
		t.Error("release inside the debounce window should have been ignored")
	}
}

func TestSetupPinDisabled(t *testing.T) {
	cfg := config.Default()
	cfg.Button.SetupPin = -1
	if setupPinActive(cfg) {
		t.Error("disabled setup pin reported active")
	}
}

func TestOpenButtonNone(t *testing.T) {
	cfg := config.Default()
	cfg.Button.Source = "none"
	closer, err := openButton(t.Context(), cfg, input.NewDebouncer(0))
	if err != nil || closer != nil {
		t.Errorf("openButton(none) = %v, %v", closer, err)
	}
}
