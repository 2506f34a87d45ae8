package platform

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/photonicat/feed_display/internal/logfields"
)

// RTCWakeSleeper suspends to RAM with the RTC alarm armed. rtcwake returns
// after the wake-up; the caller then ends the process so the supervisor starts
// a fresh one.
type RTCWakeSleeper struct {
	Mode string
	Run  Runner
}

func NewRTCWakeSleeper() *RTCWakeSleeper {
	return &RTCWakeSleeper{Mode: "mem", Run: ExecRunner}
}

func (s *RTCWakeSleeper) DeepSleep(ctx context.Context, d time.Duration) error {
	secs := int(d.Seconds())
	if secs < 1 {
		secs = 1
	}
	slog.Info("Suspending", logfields.Duration(d), slog.String("mode", s.Mode))
	_, err := s.Run(ctx, "rtcwake", "-m", s.Mode, "-s", strconv.Itoa(secs))
	return err
}
