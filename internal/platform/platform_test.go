package platform

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/photonicat/feed_display/internal/settings"
)

type script struct {
	calls   []string
	outputs map[string]string
	fail    map[string]bool
}

func (s *script) run(_ context.Context, name string, args ...string) ([]byte, error) {
	call := name + " " + strings.Join(args, " ")
	s.calls = append(s.calls, call)
	if s.fail[call] {
		return nil, errors.New("exit status 10")
	}
	return []byte(s.outputs[call]), nil
}

func TestConnect(t *testing.T) {
	s := &script{outputs: map[string]string{
		"nmcli -t -f active,ssid dev wifi": "no:Other\nyes:home\n",
	}}
	l := NewNMCLILink("wlan0", "", "", 20*time.Second)
	l.Run = s.run

	require.NoError(t, l.Connect(context.Background(), settings.Wifi{SSID: "home", Pass: "password1"}))
	assert.Equal(t, []string{
		"nmcli radio wifi on",
		"nmcli --wait 20 dev wifi connect home password password1 ifname wlan0",
		"nmcli -t -f active,ssid dev wifi",
	}, s.calls)
}

func TestConnectWrongNetwork(t *testing.T) {
	s := &script{outputs: map[string]string{
		"nmcli -t -f active,ssid dev wifi": "yes:neighbour\n",
	}}
	l := NewNMCLILink("", "", "", 0)
	l.Run = s.run

	err := l.Connect(context.Background(), settings.Wifi{SSID: "home"})
	require.Error(t, err)
	assert.Contains(t, s.calls[1], "connect home")
	assert.NotContains(t, s.calls[1], "password")
}

func TestConnectFails(t *testing.T) {
	s := &script{fail: map[string]bool{"nmcli --wait 30 dev wifi connect home": true}}
	l := NewNMCLILink("", "", "", 0)
	l.Run = s.run

	assert.Error(t, l.Connect(context.Background(), settings.Wifi{SSID: "home"}))
	assert.Len(t, s.calls, 2)
}

func TestAccessPointAndDisconnect(t *testing.T) {
	s := &script{}
	l := NewNMCLILink("wlan0", "", "", 0)
	l.Run = s.run

	require.NoError(t, l.StartAccessPoint(context.Background()))
	require.NoError(t, l.Disconnect(context.Background()))
	assert.Equal(t, []string{
		"nmcli radio wifi on",
		"nmcli dev wifi hotspot ifname wlan0 ssid ESP-Feed password 38294446",
		"nmcli radio wifi off",
	}, s.calls)
}

func TestDeepSleep(t *testing.T) {
	s := &script{}
	sl := NewRTCWakeSleeper()
	sl.Run = s.run

	require.NoError(t, sl.DeepSleep(context.Background(), 30*time.Minute))
	require.NoError(t, sl.DeepSleep(context.Background(), 0))
	assert.Equal(t, []string{"rtcwake -m mem -s 1800", "rtcwake -m mem -s 1"}, s.calls)
}
