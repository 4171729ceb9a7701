// Package admission provides a single-slot guard used to double-check the "at most one outstanding
// async_open" invariant of the physical layer monitor, on top of whatever guarantee the transition table
// already provides. It wraps a weighted semaphore narrowed to a fixed weight of one.
package admission

import "golang.org/x/sync/semaphore"

// Guard allows at most one holder at a time. It is not a lock: TryAcquire never blocks, matching the
// monitor's single-threaded-cooperative contract, where blocking inside a dispatch would be a bug.
type Guard struct {
	sem *semaphore.Weighted
}

// New returns a Guard with a single admission slot.
func New() *Guard {
	return &Guard{sem: semaphore.NewWeighted(1)}
}

// TryAcquire reports whether the slot was free and is now held.
func (g *Guard) TryAcquire() bool {
	return g.sem.TryAcquire(1)
}

// Release frees the slot. Releasing a Guard that is not held panics, matching semaphore.Weighted.
func (g *Guard) Release() {
	g.sem.Release(1)
}

// Held reports whether the slot is currently held, without acquiring it.
func (g *Guard) Held() bool {
	if g.sem.TryAcquire(1) {
		g.sem.Release(1)
		return false
	}
	return true
}
