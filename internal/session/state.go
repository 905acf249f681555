// internal/session/state.go
package session

// State is the lifecycle stage of a channel session.
type State uint32

const (
	// Closed means no channel handle is held.
	Closed State = iota
	// Opened means the channel handle is held but nothing is negotiated.
	Opened
	// HostReady means the host state is Ready.
	HostReady
	// BusOn means host and bus are both up; cyclic I/O is allowed.
	BusOn
	// Active means at least one read succeeded since the bus came up.
	Active
)

// String returns string representation of the state.
func (s State) String() string {
	switch s {
	case Closed:
		return "closed"
	case Opened:
		return "opened"
	case HostReady:
		return "host-ready"
	case BusOn:
		return "bus-on"
	case Active:
		return "active"
	default:
		return "unknown"
	}
}

// CanExchange reports whether cyclic reads and writes are allowed.
func (s State) CanExchange() bool { return s == BusOn || s == Active }

// Phase names the step a session error happened in.
type Phase int

const (
	PhaseOpen Phase = iota
	PhaseHostState
	PhaseBusState
	PhaseRead
	PhaseWrite
)

func (p Phase) String() string {
	switch p {
	case PhaseOpen:
		return "open"
	case PhaseHostState:
		return "host state"
	case PhaseBusState:
		return "bus state"
	case PhaseRead:
		return "read"
	case PhaseWrite:
		return "write"
	default:
		return "unknown"
	}
}

// StateChangeHandler is invoked synchronously on every state transition.
type StateChangeHandler func(prev State, next State)
