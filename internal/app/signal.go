package app

import (
	"context"
	"os"
	"os/signal"
)

// SignalError is the cancellation cause of a context ended by a signal.
type SignalError struct {
	Signal os.Signal
}

func (e *SignalError) Error() string {
	return "received " + e.Signal.String()
}

// SignalContext returns a context cancelled by the first of sigs, with a
// *SignalError as its cause.
//
// Only the first signal is caught. Default handling is restored before the
// context is cancelled, so a second signal terminates the process even while
// a foreign call that ignores the interrupt keeps running.
func SignalContext(parent context.Context, sigs ...os.Signal) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancelCause(parent)

	ch := make(chan os.Signal, 1)
	signal.Notify(ch, sigs...)

	go func() {
		select {
		case sig := <-ch:
			signal.Stop(ch)
			cancel(&SignalError{Signal: sig})
		case <-ctx.Done():
			signal.Stop(ch)
		}
	}()

	return ctx, func() {
		signal.Stop(ch)
		cancel(nil)
	}
}
