package physmon_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exaring/physmon"
	"github.com/exaring/physmon/demolayer"
)

// traceRecorder is an physmon.Observer that records every ObservableState it sees, in order.
type traceRecorder struct {
	trace []physmon.ObservableState
}

func (r *traceRecorder) OnStateChange(s physmon.ObservableState) {
	r.trace = append(r.trace, s)
}

// monitorHolder defers resolving the *physmon.Monitor until after both it and its demolayer.Layer are
// constructed, since the Layer needs to call back into the Monitor it is wrapped by.
type monitorHolder struct {
	m *physmon.Monitor
}

func (h *monitorHolder) OnLayerOpen() error   { return h.m.OnLayerOpen() }
func (h *monitorHolder) OnOpenFailure() error { return h.m.OnOpenFailure() }
func (h *monitorHolder) OnLayerClose() error  { return h.m.OnLayerClose() }

// buildMonitor wires a Monitor and a scripted demolayer.Layer together.
func buildMonitor(t *testing.T, script ...demolayer.Outcome) (*physmon.Monitor, *demolayer.Layer, *traceRecorder) {
	t.Helper()

	holder := &monitorHolder{}
	layer := demolayer.New(holder, script...)

	mon, err := physmon.NewMonitor(layer, physmon.WithRetryInterval(100*time.Millisecond))
	require.NoError(t, err)
	holder.m = mon

	rec := &traceRecorder{}
	mon.Subscribe(rec)

	return mon, layer, rec
}

// spyLayer just records calls; it never calls back on its own. Tests that need exact control over the
// order callbacks are delivered in (because two async operations are in flight at once, which demolayer's
// goroutine scheduling cannot deterministically order) drive the Monitor's callback methods directly
// instead of relying on a script.
type spyLayer struct {
	opens  int
	closes int
}

func (s *spyLayer) AsyncOpen(context.Context)  { s.opens++ }
func (s *spyLayer) AsyncClose(context.Context) { s.closes++ }

func TestMonitor_InitialState(t *testing.T) {
	mon, _, _ := buildMonitor(t)
	assert.Equal(t, physmon.Closed, mon.State())
}

// Scenario 1: happy path.
func TestMonitor_HappyPath(t *testing.T) {
	mon, layer, rec := buildMonitor(t, demolayer.OutcomeSuccess)

	require.NoError(t, mon.Start())
	require.NoError(t, layer.Wait())

	assert.Equal(t, physmon.Open, mon.State())
	assert.Equal(t, []physmon.ObservableState{physmon.Opening, physmon.Open}, rec.trace)
}

// Scenario 2: fail then retry then succeed.
func TestMonitor_FailThenRetryThenSucceed(t *testing.T) {
	timers := &demolayer.ManualTimerService{}
	holder := &monitorHolder{}
	layer := demolayer.New(holder, demolayer.OutcomeFailure, demolayer.OutcomeSuccess)

	mon, err := physmon.NewMonitor(layer, physmon.WithTimerService(timers))
	require.NoError(t, err)
	holder.m = mon

	rec := &traceRecorder{}
	mon.Subscribe(rec)

	require.NoError(t, mon.Start())
	require.NoError(t, layer.Wait())
	assert.Equal(t, physmon.Waiting, mon.State())
	assert.True(t, timers.Pending())

	timers.Fire()
	require.NoError(t, layer.Wait())

	assert.Equal(t, physmon.Open, mon.State())
	assert.Equal(t, []physmon.ObservableState{
		physmon.Opening, physmon.Waiting, physmon.Opening, physmon.Open,
	}, rec.trace)
}

// Scenario 3: close while opening settles at Waiting after the confirming layer_closed, with no
// dangling open in flight. Driven directly (not via demolayer) because two asynchronous operations — the
// original open and the close requested on top of it — are in flight at once, and their relative callback
// order resolves a genuine ambiguity and is not something to leave to goroutine scheduling.
func TestMonitor_CloseWhileOpening(t *testing.T) {
	timers := &demolayer.ManualTimerService{}
	layer := &spyLayer{}

	mon, err := physmon.NewMonitor(layer, physmon.WithTimerService(timers))
	require.NoError(t, err)

	rec := &traceRecorder{}
	mon.Subscribe(rec)

	require.NoError(t, mon.Start())
	require.NoError(t, mon.Close())
	assert.Equal(t, physmon.Opening, mon.State())

	require.NoError(t, mon.OnOpenFailure()) // OpeningClosing -> Closing
	assert.Equal(t, physmon.Closed, mon.State())

	require.NoError(t, mon.OnLayerClose()) // Closing -> Opening; async_open (reconnect)
	assert.Equal(t, physmon.Opening, mon.State())

	require.NoError(t, mon.OnOpenFailure()) // Opening -> Waiting; start_open_timer
	assert.Equal(t, physmon.Waiting, mon.State())

	assert.Equal(t, 2, layer.opens)
	assert.Equal(t, 1, layer.closes)
	assert.True(t, timers.Pending())
}

// Scenario 4: shutdown from Open.
func TestMonitor_ShutdownFromOpen(t *testing.T) {
	mon, layer, rec := buildMonitor(t, demolayer.OutcomeSuccess)

	require.NoError(t, mon.Start())
	require.NoError(t, layer.Wait())
	require.NoError(t, mon.Shutdown())
	require.NoError(t, layer.Wait())

	assert.Equal(t, physmon.Shutdown, mon.State())
	assert.Equal(t, []physmon.ObservableState{
		physmon.Opening, physmon.Open, physmon.Closed, physmon.Shutdown,
	}, rec.trace)
}

// Scenario 5: suspend then resume.
func TestMonitor_SuspendThenResume(t *testing.T) {
	mon, layer, rec := buildMonitor(t, demolayer.OutcomeSuccess, demolayer.OutcomeSuccess)

	require.NoError(t, mon.Start())
	require.NoError(t, layer.Wait())

	require.NoError(t, mon.Suspend())
	require.NoError(t, layer.Wait())
	assert.Equal(t, physmon.Closed, mon.State())

	require.NoError(t, mon.Start())
	require.NoError(t, layer.Wait())

	assert.Equal(t, physmon.Open, mon.State())
	assert.Equal(t, []physmon.ObservableState{
		physmon.Opening, physmon.Open, physmon.Closed, physmon.Opening, physmon.Open,
	}, rec.trace)
}

// Scenario 6: shutdown during Waiting cancels the retry timer.
func TestMonitor_ShutdownDuringWaitingCancelsTimer(t *testing.T) {
	timers := &demolayer.ManualTimerService{}
	holder := &monitorHolder{}
	layer := demolayer.New(holder, demolayer.OutcomeFailure)

	mon, err := physmon.NewMonitor(layer, physmon.WithTimerService(timers))
	require.NoError(t, err)
	holder.m = mon

	require.NoError(t, mon.Start())
	require.NoError(t, layer.Wait())
	require.True(t, timers.Pending())

	require.NoError(t, mon.Shutdown())
	assert.False(t, timers.Pending())
	assert.Equal(t, physmon.Shutdown, mon.State())
}

func TestMonitor_IdempotentStart(t *testing.T) {
	layer := &spyLayer{}
	mon, err := physmon.NewMonitor(layer)
	require.NoError(t, err)

	require.NoError(t, mon.Start())
	require.NoError(t, mon.Start())
	require.NoError(t, mon.Start())

	assert.Equal(t, 1, layer.opens)
	assert.Equal(t, physmon.Opening, mon.State())
}

func TestMonitor_IdempotentShutdown(t *testing.T) {
	mon, _, rec := buildMonitor(t)

	require.NoError(t, mon.Shutdown())
	first := append([]physmon.ObservableState{}, rec.trace...)

	require.NoError(t, mon.Shutdown())
	require.NoError(t, mon.Shutdown())

	assert.Equal(t, first, rec.trace)
	assert.Equal(t, physmon.Shutdown, mon.State())
}

func TestMonitor_IllegalEventReturnsError(t *testing.T) {
	mon, _, _ := buildMonitor(t)

	err := mon.OnLayerOpen() // Suspended does not expect layer_open_succeeded
	require.Error(t, err)
	assert.ErrorIs(t, err, physmon.ErrIllegalEvent)
}

func TestMonitor_ShutdownIsTerminal(t *testing.T) {
	mon, layer, _ := buildMonitor(t, demolayer.OutcomeSuccess)

	require.NoError(t, mon.Start())
	require.NoError(t, layer.Wait())
	require.NoError(t, mon.Shutdown())
	require.NoError(t, layer.Wait())
	require.Equal(t, physmon.Shutdown, mon.State())

	require.NoError(t, mon.Start())
	require.NoError(t, mon.Close())
	require.NoError(t, mon.Suspend())
	assert.Equal(t, physmon.Shutdown, mon.State())
}

func TestNewMonitor_RejectsNilLayer(t *testing.T) {
	_, err := physmon.NewMonitor(nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, physmon.ErrNilPhysicalLayer)
}

func TestNewMonitor_RejectsBadOption(t *testing.T) {
	_, err := physmon.NewMonitor(&spyLayer{}, physmon.WithRetryInterval(-time.Second))
	require.Error(t, err)
	assert.ErrorIs(t, err, physmon.ErrNegativeRetryInterval)
}
