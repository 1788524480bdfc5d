package foreign

import (
	"errors"
	"fmt"
)

// Orchestrator errors.
var (
	// ErrRequiredSymbolMissing is returned when neither entry point is exported.
	ErrRequiredSymbolMissing = errors.New("required entry point missing")

	// ErrNoRuntimeInfo is returned when the diagnostic entry point is not exported.
	ErrNoRuntimeInfo = errors.New("runtime info entry point not exported")

	// ErrInvalidPluginPath is returned for a plugin path that cannot cross as a C string.
	ErrInvalidPluginPath = errors.New("plugin path contains a NUL byte")

	// ErrAlreadyRunning is returned when an invocation is already active.
	ErrAlreadyRunning = errors.New("entry point is already running")

	// ErrForeignCall is matched by CallError.
	ErrForeignCall = errors.New("foreign call reported failure")

	// ErrThreadJoin is matched by AbnormalExitError.
	ErrThreadJoin = errors.New("foreign call worker terminated abnormally")

	// ErrInterrupted is returned by Await when the context ends first.
	ErrInterrupted = errors.New("interrupted while foreign call running")
)

// CallError is a non-zero status returned by an entry point declared to
// return one.
type CallError struct {
	Symbol string
	Code   int32
}

func (e *CallError) Error() string {
	return fmt.Sprintf("%s: %v: status %d", e.Symbol, ErrForeignCall, e.Code)
}

// Unwrap returns ErrForeignCall.
func (e *CallError) Unwrap() error {
	return ErrForeignCall
}

// AbnormalExitError wraps a panic that escaped the entry point call. No status
// code exists in this case.
type AbnormalExitError struct {
	Symbol string
	Value  any
	Stack  string
}

func (e *AbnormalExitError) Error() string {
	return fmt.Sprintf("%s: %v: panic: %v", e.Symbol, ErrThreadJoin, e.Value)
}

// Unwrap returns ErrThreadJoin.
func (e *AbnormalExitError) Unwrap() error {
	return ErrThreadJoin
}
