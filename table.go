package physmon

// action is one element of the fixed side-effect vocabulary a transition may perform, executed in the
// order listed on a transitionEntry before the state change is committed.
type action int

const (
	actionAsyncOpen action = iota
	actionAsyncClose
	actionStartOpenTimer
	actionCancelOpenTimer
)

// transitionKind distinguishes the three possible dispositions of a (state, event) cell in the table.
type transitionKind int

const (
	// kindIgnore is a "—" cell: the intent is idempotent and discarded with no action and no state change.
	kindIgnore transitionKind = iota
	// kindIllegal is an "error" cell: the event must never be delivered in this state; see ErrIllegalEvent.
	kindIllegal
	// kindMove performs the listed actions, in order, then commits the state change.
	kindMove
)

// transitionEntry is one cell of the table: what to do when a given event is delivered in a given state.
type transitionEntry struct {
	kind    transitionKind
	next    state
	actions []action
}

func ignore() transitionEntry {
	return transitionEntry{kind: kindIgnore}
}

func illegal() transitionEntry {
	return transitionEntry{kind: kindIllegal}
}

func move(next state, actions ...action) transitionEntry {
	return transitionEntry{kind: kindMove, next: next, actions: actions}
}

const (
	numStates = int(stateShutdown) + 1
	numEvents = int(EventOpenTimeout) + 1
)

// stateTable is the complete (state x event) transition table governing the monitor. It is built once,
// as a literal per-cell table, so it can be audited row by row.
var stateTable = buildStateTable()

func buildStateTable() [numStates][numEvents]transitionEntry {
	var t [numStates][numEvents]transitionEntry

	t[stateSuspended] = [numEvents]transitionEntry{
		EventStart:              move(stateOpening, actionAsyncOpen),
		EventClose:              ignore(),
		EventSuspend:            ignore(),
		EventShutdown:           move(stateShutdown),
		EventLayerOpenSucceeded: illegal(),
		EventLayerOpenFailed:    illegal(),
		EventLayerClosed:        illegal(),
		EventOpenTimeout:        illegal(),
	}

	t[stateOpening] = [numEvents]transitionEntry{
		EventStart:              ignore(),
		EventClose:              move(stateOpeningClosing, actionAsyncClose),
		EventSuspend:            move(stateOpeningSuspending, actionAsyncClose),
		EventShutdown:           move(stateOpeningStopping, actionAsyncClose),
		EventLayerOpenSucceeded: move(stateOpen),
		EventLayerOpenFailed:    move(stateWaiting, actionStartOpenTimer),
		EventLayerClosed:        illegal(),
		EventOpenTimeout:        illegal(),
	}

	// The open attempt resolves with failure while a close was requested; settle in Closing awaiting the
	// confirming layer_closed rather than collapsing to Waiting, so every async_close stays paired with
	// exactly one layer_closed.
	t[stateOpeningClosing] = [numEvents]transitionEntry{
		EventStart:              ignore(),
		EventClose:              ignore(),
		EventSuspend:            move(stateOpeningSuspending),
		EventShutdown:           move(stateOpeningStopping),
		EventLayerOpenSucceeded: illegal(),
		EventLayerOpenFailed:    move(stateClosing),
		EventLayerClosed:        illegal(),
		EventOpenTimeout:        illegal(),
	}

	t[stateOpeningStopping] = [numEvents]transitionEntry{
		EventStart:              ignore(),
		EventClose:              ignore(),
		EventSuspend:            ignore(),
		EventShutdown:           ignore(),
		EventLayerOpenSucceeded: illegal(),
		EventLayerOpenFailed:    move(stateShutdown),
		EventLayerClosed:        illegal(),
		EventOpenTimeout:        illegal(),
	}

	t[stateOpeningSuspending] = [numEvents]transitionEntry{
		EventStart:              move(stateOpening),
		EventClose:              ignore(),
		EventSuspend:            ignore(),
		EventShutdown:           move(stateOpeningStopping),
		EventLayerOpenSucceeded: illegal(),
		EventLayerOpenFailed:    move(stateSuspended),
		EventLayerClosed:        illegal(),
		EventOpenTimeout:        illegal(),
	}

	t[stateOpen] = [numEvents]transitionEntry{
		EventStart:              ignore(),
		EventClose:              move(stateClosing, actionAsyncClose),
		EventSuspend:            move(stateSuspending, actionAsyncClose),
		EventShutdown:           move(stateShuttingDown, actionAsyncClose),
		EventLayerOpenSucceeded: illegal(),
		EventLayerOpenFailed:    illegal(),
		EventLayerClosed:        move(stateOpening, actionAsyncOpen), // unsolicited close: reconnect
		EventOpenTimeout:        illegal(),
	}

	t[stateWaiting] = [numEvents]transitionEntry{
		EventStart:              ignore(),
		EventClose:              ignore(),
		EventSuspend:            move(stateSuspended, actionCancelOpenTimer),
		EventShutdown:           move(stateShutdown, actionCancelOpenTimer),
		EventLayerOpenSucceeded: illegal(),
		EventLayerOpenFailed:    illegal(),
		EventLayerClosed:        illegal(),
		EventOpenTimeout:        move(stateOpening, actionAsyncOpen),
	}

	t[stateClosing] = [numEvents]transitionEntry{
		EventStart:              ignore(),
		EventClose:              ignore(),
		EventSuspend:            move(stateSuspending),
		EventShutdown:           move(stateShuttingDown),
		EventLayerOpenSucceeded: illegal(),
		EventLayerOpenFailed:    illegal(),
		EventLayerClosed:        move(stateOpening, actionAsyncOpen), // closed cleanly: retry
		EventOpenTimeout:        illegal(),
	}

	t[stateSuspending] = [numEvents]transitionEntry{
		EventStart:              move(stateOpening),
		EventClose:              ignore(),
		EventSuspend:            ignore(),
		EventShutdown:           move(stateShuttingDown),
		EventLayerOpenSucceeded: illegal(),
		EventLayerOpenFailed:    illegal(),
		EventLayerClosed:        move(stateSuspended),
		EventOpenTimeout:        illegal(),
	}

	t[stateShuttingDown] = [numEvents]transitionEntry{
		EventStart:              ignore(),
		EventClose:              ignore(),
		EventSuspend:            ignore(),
		EventShutdown:           ignore(),
		EventLayerOpenSucceeded: illegal(),
		EventLayerOpenFailed:    illegal(),
		EventLayerClosed:        move(stateShutdown),
		EventOpenTimeout:        illegal(),
	}

	t[stateShutdown] = [numEvents]transitionEntry{
		EventStart:              ignore(),
		EventClose:              ignore(),
		EventSuspend:            ignore(),
		EventShutdown:           ignore(),
		EventLayerOpenSucceeded: illegal(),
		EventLayerOpenFailed:    illegal(),
		EventLayerClosed:        illegal(),
		EventOpenTimeout:        illegal(),
	}

	return t
}
