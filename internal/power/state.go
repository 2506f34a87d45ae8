// Package power runs the wake, connect, serve, sleep cycle of the device and
// the setup-mode access point that replaces it.
package power

// State of the power cycle.
type State int

const (
	// Idle is the state before Run.
	Idle State = iota
	// SetupMode keeps the access point and config server up for the rest of
	// the session and never sleeps.
	SetupMode
	Connecting
	// Connected is the active window: content refreshes and the config server
	// is reachable on the local network.
	Connected
	Disconnecting
	DeepSleep
)

var stateNames = map[State]string{
	Idle:          "idle",
	SetupMode:     "setup_mode",
	Connecting:    "connecting",
	Connected:     "connected",
	Disconnecting: "disconnecting",
	DeepSleep:     "deep_sleep",
}

func (s State) String() string {
	if n, ok := stateNames[s]; ok {
		return n
	}
	return "unknown"
}

// allowed lists the legal transitions; anything else is a programming error.
var allowed = map[State][]State{
	Idle:          {SetupMode, Connecting},
	Connecting:    {Connected, SetupMode},
	Connected:     {Disconnecting},
	Disconnecting: {DeepSleep},
}

func canTransition(from, to State) bool {
	for _, s := range allowed[from] {
		if s == to {
			return true
		}
	}
	return false
}
