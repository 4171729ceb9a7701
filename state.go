package physmon

// ObservableState is the coarse-grained lifecycle value reported to Observers. Several internal states
// can map to the same ObservableState (e.g. all four Opening* states report Opening).
type ObservableState int

const (
	// Closed means the physical layer is not open and no open attempt is in flight or scheduled.
	Closed ObservableState = iota
	// Opening means an async_open is in flight, possibly with a latent intent queued behind it.
	Opening
	// Open means the physical layer is open and usable.
	Open
	// Waiting means a previous open attempt failed and the retry timer is pending.
	Waiting
	// Shutdown means the monitor has reached its terminal state.
	Shutdown
)

func (s ObservableState) String() string {
	switch s {
	case Closed:
		return "closed"
	case Opening:
		return "opening"
	case Open:
		return "open"
	case Waiting:
		return "waiting"
	case Shutdown:
		return "shutdown"
	default:
		return "unknown"
	}
}

// state is the internal state of a Monitor: one of exactly eleven values. States carry no data of their
// own; they are pure enumeration tags dispatched through stateTable, not singleton objects, so there is
// no per-state struct here.
type state int

const (
	stateSuspended state = iota
	stateOpening
	stateOpeningClosing
	stateOpeningStopping
	stateOpeningSuspending
	stateOpen
	stateWaiting
	stateClosing
	stateSuspending
	stateShuttingDown
	stateShutdown
)

// observable returns the ObservableState a given internal state reports to Observers.
func (s state) observable() ObservableState {
	switch s {
	case stateSuspended:
		return Closed
	case stateOpening, stateOpeningClosing, stateOpeningStopping, stateOpeningSuspending:
		return Opening
	case stateOpen:
		return Open
	case stateWaiting:
		return Waiting
	case stateClosing, stateSuspending, stateShuttingDown:
		return Closed
	case stateShutdown:
		return Shutdown
	default:
		return Closed
	}
}

func (s state) String() string {
	switch s {
	case stateSuspended:
		return "Suspended"
	case stateOpening:
		return "Opening"
	case stateOpeningClosing:
		return "OpeningClosing"
	case stateOpeningStopping:
		return "OpeningStopping"
	case stateOpeningSuspending:
		return "OpeningSuspending"
	case stateOpen:
		return "Open"
	case stateWaiting:
		return "Waiting"
	case stateClosing:
		return "Closing"
	case stateSuspending:
		return "Suspending"
	case stateShuttingDown:
		return "ShuttingDown"
	case stateShutdown:
		return "Shutdown"
	default:
		return "Unknown"
	}
}

// isOpeningFamily reports whether s is one of the four states with an async_open in flight. At most one
// such state may be current at any time; this is the "in_flight_open_count ∈ {0,1}" invariant.
func (s state) isOpeningFamily() bool {
	switch s {
	case stateOpening, stateOpeningClosing, stateOpeningStopping, stateOpeningSuspending:
		return true
	default:
		return false
	}
}
