// Package demolayer provides an in-memory physmon.PhysicalLayer and physmon.TimerService, used by the
// physmon test suite and by cmd/physmonctl. Opens and closes are delivered from a separate goroutine via
// golang.org/x/sync/errgroup, since a physical layer's opens and closes genuinely complete later and must
// not be observed synchronously from within the Monitor's own dispatch (see physmon's package doc).
package demolayer

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Outcome is the result a scripted AsyncOpen call reports back to the Monitor.
type Outcome int

const (
	// OutcomeSuccess reports a successful open.
	OutcomeSuccess Outcome = iota
	// OutcomeFailure reports a failed open.
	OutcomeFailure
)

// Callback is the subset of physmon.Monitor's lower-edge methods the Layer calls back into. It is
// satisfied by *physmon.Monitor directly.
type Callback interface {
	OnLayerOpen() error
	OnOpenFailure() error
	OnLayerClose() error
}

// Layer is a scripted, in-memory physical layer. Each AsyncOpen call consumes the next Outcome from the
// script (repeating the last one once the script is exhausted) and reports it back to the Callback from a
// separate goroutine, so it never re-enters the monitor's dispatcher synchronously.
type Layer struct {
	cb     Callback
	script []Outcome

	mu  chan struct{} // 1-buffered mutex guarding idx; avoids importing sync for a single counter
	idx int

	eg errgroup.Group
}

// New returns a Layer reporting outcomes from script, in order, to cb. An empty script always succeeds.
func New(cb Callback, script ...Outcome) *Layer {
	l := &Layer{
		cb:     cb,
		script: script,
		mu:     make(chan struct{}, 1),
	}
	l.mu <- struct{}{}
	return l
}

func (l *Layer) nextOutcome() Outcome {
	if len(l.script) == 0 {
		return OutcomeSuccess
	}

	<-l.mu
	defer func() { l.mu <- struct{}{} }()

	i := l.idx
	if i >= len(l.script) {
		i = len(l.script) - 1
	} else {
		l.idx++
	}
	return l.script[i]
}

// AsyncOpen implements physmon.PhysicalLayer.
func (l *Layer) AsyncOpen(_ context.Context) {
	l.eg.Go(func() error {
		if l.nextOutcome() == OutcomeSuccess {
			return l.cb.OnLayerOpen()
		}
		return l.cb.OnOpenFailure()
	})
}

// AsyncClose implements physmon.PhysicalLayer.
func (l *Layer) AsyncClose(_ context.Context) {
	l.eg.Go(func() error {
		return l.cb.OnLayerClose()
	})
}

// Wait blocks until every AsyncOpen/AsyncClose goroutine started so far has delivered its callback, and
// returns the first error any callback returned (physmon.Monitor methods only error on illegal events,
// which a correctly driven scenario never produces).
func (l *Layer) Wait() error {
	return l.eg.Wait()
}
