// Package metrics records device activity. Components depend on the Recorder
// interface; NoopRecorder is used when metrics are disabled.
package metrics

import "time"

// Result labels.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

type Recorder interface {
	IncRefresh(source, result string)
	ObserveRender(page string, d time.Duration, err error)
	IncPageSwitch(to string)
	AddButtonPresses(n int)
	IncCommand(kind string)
	SetPowerState(state string)
	IncPersistFailure(key string)
	SetBatteryMillivolts(mv uint16)
}

type NoopRecorder struct{}

func (NoopRecorder) IncRefresh(string, string)                  {}
func (NoopRecorder) ObserveRender(string, time.Duration, error) {}
func (NoopRecorder) IncPageSwitch(string)                       {}
func (NoopRecorder) AddButtonPresses(int)                       {}
func (NoopRecorder) IncCommand(string)                          {}
func (NoopRecorder) SetPowerState(string)                       {}
func (NoopRecorder) IncPersistFailure(string)                   {}
func (NoopRecorder) SetBatteryMillivolts(uint16)                {}

// OrNoop returns r, or a NoopRecorder when r is nil.
func OrNoop(r Recorder) Recorder {
	if r == nil {
		return NoopRecorder{}
	}
	return r
}
