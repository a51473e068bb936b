package main

import (
	"context"
	"errors"
)

// TunerLink is the connection to a tuner. Run pushes observations into
// events until ctx is canceled or the connection ends; Tune and SetControl
// must return promptly since they are called from the daemon loop.
type TunerLink interface {
	Run(ctx context.Context, events chan<- Event) error
	Tune(freq int, force bool) error
	SetControl(c Control, v int) error
	Close() error
}

var errLinkClosed = errors.New("tuner link closed")

// sendEvent delivers ev unless ctx ends first.
func sendEvent(ctx context.Context, events chan<- Event, ev Event) bool {
	select {
	case events <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}
