package physmon

import "time"

// Timer is a handle to a single pending one-shot timer, returned by TimerService.Start.
type Timer interface {
	// Cancel cancels the timer. Calling Cancel after the timer already fired is a no-op.
	Cancel()
}

// TimerService is the external collaborator the Monitor uses for its retry timer. It is expected to
// deliver the callback on the same executor as every other event (see the package doc's concurrency
// contract); the Monitor never calls Start concurrently with itself.
type TimerService interface {
	// Start schedules callback to run once, after d elapses, and returns a Timer that can cancel it.
	Start(d time.Duration, callback func()) Timer
}
