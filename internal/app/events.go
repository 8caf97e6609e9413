package app

// State is the controller lifecycle state.
type State int

const (
	StateIdle State = iota
	StateRunning
	StateCancelled
	StateExhausted
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateCancelled:
		return "cancelled"
	case StateExhausted:
		return "exhausted"
	}
	return "unknown"
}

// Terminal reports whether no further transitions are possible.
func (s State) Terminal() bool {
	return s == StateCancelled || s == StateExhausted
}

// Reason explains why a run ended.
type Reason int

const (
	ReasonNone Reason = iota
	// ReasonExhausted: every recorded frame was consumed.
	ReasonExhausted
	// ReasonCancelled: a quit input (q, esc) was received.
	ReasonCancelled
	// ReasonStopped: the host stopped the run (toggle, signal, shutdown).
	ReasonStopped
)

func (r Reason) String() string {
	switch r {
	case ReasonExhausted:
		return "exhausted"
	case ReasonCancelled:
		return "cancelled"
	case ReasonStopped:
		return "stopped"
	}
	return "none"
}

// EventType enumerates the inputs a controller reacts to.
type EventType int

const (
	EventTick EventType = iota
	EventCancelRequest
	EventStop
)

func (e EventType) String() string {
	switch e {
	case EventTick:
		return "tick"
	case EventCancelRequest:
		return "cancel"
	case EventStop:
		return "stop"
	}
	return "unknown"
}

// Event is a single host input delivered to Controller.Handle.
type Event struct {
	Type EventType
}

var (
	Tick          = Event{Type: EventTick}
	CancelRequest = Event{Type: EventCancelRequest}
	Stop          = Event{Type: EventStop}
)
