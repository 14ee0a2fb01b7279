package lifecycle

// State is the controller's position in the emulator lifecycle.
type State int32

const (
	StateNotStarted State = iota
	StateInstalling
	StateStarting
	StateWaitingReady
	StateReady
	StateTornDown
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateNotStarted:
		return "not-started"
	case StateInstalling:
		return "installing"
	case StateStarting:
		return "starting"
	case StateWaitingReady:
		return "waiting-ready"
	case StateReady:
		return "ready"
	case StateTornDown:
		return "torn-down"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transitions happen from s.
func (s State) Terminal() bool {
	return s == StateTornDown || s == StateFailed
}
