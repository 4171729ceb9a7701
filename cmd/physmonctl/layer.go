package main

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/exaring/physmon/demolayer"
)

// cliLayer is a physmon.PhysicalLayer for the run command: it behaves exactly like demolayer.Layer
// (callbacks delivered from a separate goroutine, never synchronously from AsyncOpen/AsyncClose) but lets
// the runner decide the next open's outcome interactively, one script step ahead of time, instead of
// consuming a fixed script slice.
type cliLayer struct {
	cb demolayer.Callback

	failNext bool
	eg       errgroup.Group
}

func newCLILayer(cb demolayer.Callback) *cliLayer {
	return &cliLayer{cb: cb}
}

// AsyncOpen implements physmon.PhysicalLayer.
func (l *cliLayer) AsyncOpen(_ context.Context) {
	fail := l.failNext
	l.failNext = false

	l.eg.Go(func() error {
		if fail {
			return l.cb.OnOpenFailure()
		}
		return l.cb.OnLayerOpen()
	})
}

// AsyncClose implements physmon.PhysicalLayer.
func (l *cliLayer) AsyncClose(_ context.Context) {
	l.eg.Go(func() error {
		return l.cb.OnLayerClose()
	})
}

func (l *cliLayer) Wait() error {
	return l.eg.Wait()
}
