// Package physmon implements a physical layer monitor: a state machine that supervises the lifecycle of
// a bidirectional physical layer (serial port, TCP socket, or similar) on behalf of a higher-level
// protocol stack, mediating between user intents (start, close, suspend, shutdown) and the layer's
// lower-edge events (open succeeded, open failed, closed) while managing a single retry timer.
//
// The Monitor is single-threaded cooperative by default: every exported method must be called from a
// single serialised executor (a strand, an event loop, or a dedicated goroutine), and handlers run to
// completion without suspending. Callers that cannot guarantee this should construct with WithMutex.
package physmon

import (
	"context"
	"fmt"
	"sync"

	"github.com/exaring/physmon/internal/admission"
	"github.com/pkg/errors"
)

// Monitor supervises a PhysicalLayer through the eleven internal states and eight events of its
// transition table (stateTable). A zero Monitor is not usable; construct with NewMonitor.
type Monitor struct {
	options

	layer PhysicalLayer

	current  state
	timer    Timer
	openSlot *admission.Guard

	dispatchMu sync.Mutex // only engaged when options.mutex is set

	obsMu     sync.Mutex
	observers []Observer
}

// NewMonitor constructs a Monitor over layer, in the mandated initial state (Suspended). The layer is
// borrowed, not owned: NewMonitor never calls AsyncOpen or AsyncClose.
func NewMonitor(layer PhysicalLayer, opts ...Option) (*Monitor, error) {
	if layer == nil {
		return nil, errors.Wrap(ErrNilPhysicalLayer, "NewMonitor")
	}

	o := defaultOptions()
	for _, opt := range opts {
		if err := opt.apply(&o); err != nil {
			return nil, errors.Wrap(err, "applying option")
		}
	}

	return &Monitor{
		options:  o,
		layer:    layer,
		current:  stateSuspended,
		openSlot: admission.New(),
	}, nil
}

// State reports the Monitor's current ObservableState. It is informational only: to minimize races,
// callers should act on events rather than polling State first (see the package doc's concurrency
// contract for why this is safe without a lock in the default, single-executor mode).
func (m *Monitor) State() ObservableState {
	return m.current.observable()
}

// Subscribe registers o to be notified of ObservableState changes, in registration order, after each
// event handler returns. Subscribe may be called at any time.
func (m *Monitor) Subscribe(o Observer) {
	m.obsMu.Lock()
	defer m.obsMu.Unlock()
	m.observers = append(m.observers, o)
}

// Start is the user intent to open the physical layer.
func (m *Monitor) Start() error { return m.dispatch(EventStart) }

// Close is the user intent to close the physical layer.
func (m *Monitor) Close() error { return m.dispatch(EventClose) }

// Suspend is the user intent to close the physical layer without automatic reconnection.
func (m *Monitor) Suspend() error { return m.dispatch(EventSuspend) }

// Shutdown is the user intent to permanently close the physical layer. Shutdown is terminal: once
// reached, no later event (including another Shutdown) leaves it.
func (m *Monitor) Shutdown() error { return m.dispatch(EventShutdown) }

// OnLayerOpen must be called by the PhysicalLayer when a requested AsyncOpen completes successfully.
func (m *Monitor) OnLayerOpen() error { return m.dispatch(EventLayerOpenSucceeded) }

// OnOpenFailure must be called by the PhysicalLayer when a requested AsyncOpen completes with a failure.
func (m *Monitor) OnOpenFailure() error { return m.dispatch(EventLayerOpenFailed) }

// OnLayerClose must be called by the PhysicalLayer when the layer is closed, whether solicited (following
// an AsyncClose) or not (the peer dropped the connection).
func (m *Monitor) OnLayerClose() error { return m.dispatch(EventLayerClosed) }

// onOpenTimeout is delivered by the TimerService when the retry timer expires. It is unexported: callers
// never fire it directly, only a TimerService implementation does, via the callback passed to Start.
func (m *Monitor) onOpenTimeout() error { return m.dispatch(EventOpenTimeout) }

// dispatch forwards e to the current state's table entry and performs any requested transition. It is the
// single entry point every exported event method and the timer callback funnel through.
func (m *Monitor) dispatch(e Event) error {
	if m.options.mutex {
		m.dispatchMu.Lock()
		defer m.dispatchMu.Unlock()
	}

	entry := stateTable[m.current][e]

	switch entry.kind {
	case kindIgnore:
		return nil

	case kindIllegal:
		m.logger.Warn("illegal event for current state", "state", m.current.String(), "event", e.String())
		return fmt.Errorf("%w: %s in state %s", ErrIllegalEvent, e, m.current)

	case kindMove:
		prev := m.current
		for _, a := range entry.actions {
			m.performAction(a)
		}

		if prev.isOpeningFamily() && !entry.next.isOpeningFamily() && m.openSlot.Held() {
			m.openSlot.Release()
		}

		m.current = entry.next
		m.logger.Debug("transition", "event", e.String(), "from", prev.String(), "to", m.current.String())

		prevObservable := prev.observable()
		newObservable := m.current.observable()
		if newObservable != prevObservable {
			m.notify(newObservable)
		}

		return nil

	default:
		return nil
	}
}

// performAction executes a single side effect of the action vocabulary, in the fixed order
// the caller supplies them.
func (m *Monitor) performAction(a action) {
	switch a {
	case actionAsyncOpen:
		if !m.openSlot.TryAcquire() {
			m.logger.Error("async_open requested while one is already in flight")
			return
		}
		m.layer.AsyncOpen(context.Background())

	case actionAsyncClose:
		m.layer.AsyncClose(context.Background())

	case actionStartOpenTimer:
		m.timer = m.timerService.Start(m.retryInterval, func() {
			_ = m.onOpenTimeout()
		})

	case actionCancelOpenTimer:
		if m.timer != nil {
			m.timer.Cancel()
			m.timer = nil
		}
	}
}

// notify calls every registered Observer's OnStateChange, in registration order, with s.
func (m *Monitor) notify(s ObservableState) {
	m.obsMu.Lock()
	observers := make([]Observer, len(m.observers))
	copy(observers, m.observers)
	m.obsMu.Unlock()

	for _, o := range observers {
		o.OnStateChange(s)
	}
}
