package demolayer

import (
	"time"

	"github.com/exaring/physmon"
)

// ManualTimerService is a physmon.TimerService whose single pending timer is fired explicitly by test
// code via Fire, instead of by real elapsed time, so physmon's retry timer can be triggered in unit tests
// without real sleeps.
type ManualTimerService struct {
	pending *manualTimer
}

// Start implements physmon.TimerService. Only one timer is ever pending at a time in practice (the retry
// timer is only ever started while entering the Waiting state); starting a new one replaces the old.
func (m *ManualTimerService) Start(_ time.Duration, callback func()) physmon.Timer {
	t := &manualTimer{callback: callback}
	m.pending = t
	return t
}

// Fire invokes the callback of the most recently started, non-canceled timer, if any, and clears it.
func (m *ManualTimerService) Fire() {
	t := m.pending
	m.pending = nil
	if t != nil && !t.canceled {
		t.callback()
	}
}

// Pending reports whether a non-canceled timer is currently scheduled.
func (m *ManualTimerService) Pending() bool {
	return m.pending != nil && !m.pending.canceled
}

type manualTimer struct {
	callback func()
	canceled bool
}

// Cancel implements physmon.Timer.
func (t *manualTimer) Cancel() {
	t.canceled = true
}
