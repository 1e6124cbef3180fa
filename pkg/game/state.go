package game

// RunState is the state of the game loop.
//
//	Stopped --stop--> Resuming --(next tick)--> Running <--pause--> Paused
//	Running|Paused --stop|escape--> Stopped --escape--> Exiting
type RunState uint8

const (
	StateStopped  RunState = iota // Nothing is simulated
	StateRunning                  // Each tick flushes the registry and runs every system
	StatePaused                   // Nothing is simulated until unpaused
	StateResuming                 // Transient, becomes Running on the next tick
	StateExiting                  // The loop returns
)

func (s RunState) String() string {
	switch s {
	case StateStopped:
		return "stopped"
	case StateRunning:
		return "running"
	case StatePaused:
		return "paused"
	case StateResuming:
		return "resuming"
	case StateExiting:
		return "exiting"
	default:
		return "unknown"
	}
}

// transition returns the state after an input event. Events that don't apply to the current state
// leave it unchanged. EventKeyDebug never changes the state.
func transition(s RunState, ev Event) RunState {
	switch ev {
	case EventQuit, EventKeyEscape:
		// It takes two escapes to exit a running game.
		if s == StateStopped {
			return StateExiting
		}
		// Exiting is terminal. Step returns before it would handle further input, so this only
		// keeps transition from reopening a finished loop.
		if s == StateExiting {
			return s
		}
		return StateStopped
	case EventKeyPause:
		switch s { //nolint:exhaustive // other states ignore pause
		case StatePaused:
			return StateRunning
		case StateRunning:
			return StatePaused
		}
	case EventKeyStop:
		switch s { //nolint:exhaustive // resuming and exiting ignore stop
		case StateStopped:
			return StateResuming
		case StatePaused, StateRunning:
			return StateStopped
		}
	case EventKeyDebug:
	}
	return s
}
