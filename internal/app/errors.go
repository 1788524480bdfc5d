// Package app wires configuration, the library loader and the orchestrator
// into the crossload host process.
package app

import (
	"errors"
	"fmt"

	"github.com/dshills/crossload/internal/dl"
	"github.com/dshills/crossload/internal/foreign"
)

// Application errors.
var (
	// ErrRequiredFileMissing indicates a preflight file doesn't exist.
	ErrRequiredFileMissing = errors.New("required file missing")
)

// Process exit codes.
const (
	ExitOK            = 0
	ExitFailure       = 1
	ExitNotFound      = 2
	ExitLoadFailure   = 3
	ExitSymbolMissing = 4
	ExitForeignCall   = 5
	ExitAbnormalExit  = 6
	ExitInterrupted   = 130
)

// ExitCode maps an error returned by Run to the process exit code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, foreign.ErrInterrupted):
		return ExitInterrupted
	case errors.Is(err, dl.ErrNotFound), errors.Is(err, ErrRequiredFileMissing):
		return ExitNotFound
	case errors.Is(err, dl.ErrLoadFailure):
		return ExitLoadFailure
	case errors.Is(err, foreign.ErrRequiredSymbolMissing), errors.Is(err, dl.ErrSymbolNotFound):
		return ExitSymbolMissing
	case errors.Is(err, foreign.ErrForeignCall):
		return ExitForeignCall
	case errors.Is(err, foreign.ErrThreadJoin):
		return ExitAbnormalExit
	default:
		return ExitFailure
	}
}

// OperationError records which step of the host failed and on what.
type OperationError struct {
	Op     string // Operation name (e.g., "open", "resolve", "invoke")
	Target string // Target of the operation (e.g., library path, symbol)
	Err    error  // Underlying error
}

// NewOperationError creates a new OperationError.
func NewOperationError(op, target string, err error) *OperationError {
	return &OperationError{
		Op:     op,
		Target: target,
		Err:    err,
	}
}

func (e *OperationError) Error() string {
	if e == nil {
		return ""
	}

	msg := e.Op
	if e.Target != "" {
		msg = fmt.Sprintf("%s %s", e.Op, e.Target)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *OperationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
