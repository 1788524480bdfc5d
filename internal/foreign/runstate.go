package foreign

import "sync"

// RunState records whether an entry point is executing.
//
// It is true strictly while the foreign call is on the stack: set before the
// call begins, cleared after it returns. A reader that sees false after true
// knows the call has fully returned.
type RunState struct {
	mu      sync.Mutex
	running bool
}

// Running returns the current value without waiting on the call.
func (s *RunState) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *RunState) set(v bool) {
	s.mu.Lock()
	s.running = v
	s.mu.Unlock()
}
