package foreign

import "time"

// Invocation is the join handle of a backgrounded entry point call.
type Invocation struct {
	ID      string
	Symbol  string
	Started time.Time

	done chan struct{}
	err  error
}

// Done is closed once the foreign call has returned, RunState is false and
// the library has been released.
func (i *Invocation) Done() <-chan struct{} {
	return i.done
}

// Wait blocks until the call completes and returns its result.
func (i *Invocation) Wait() error {
	<-i.done
	return i.err
}

// Err returns the result of a completed call, or nil while it is running.
func (i *Invocation) Err() error {
	select {
	case <-i.done:
		return i.err
	default:
		return nil
	}
}

func (i *Invocation) finish(err error) {
	i.err = err
	close(i.done)
}
