package dl

import (
	"errors"
	"fmt"
)

// Library errors.
var (
	// ErrNotFound is returned when the library path does not name an existing file.
	ErrNotFound = errors.New("shared library not found")

	// ErrLoadFailure is returned when the dynamic loader rejects the object.
	ErrLoadFailure = errors.New("shared library load failed")

	// ErrSymbolNotFound is returned when the export table has no such name.
	ErrSymbolNotFound = errors.New("symbol not found")

	// ErrClosed is returned when using a library after Close.
	ErrClosed = errors.New("shared library is closed")

	// ErrInUse is returned by Close while calls into the library are in flight.
	ErrInUse = errors.New("shared library has calls in flight")

	// ErrUnsupported is returned on platforms without a dynamic loader binding.
	ErrUnsupported = errors.New("dynamic loading not supported on this platform")
)

// LoadError carries the dynamic loader diagnostic for a rejected object.
type LoadError struct {
	Path   string
	Reason string
}

func (e *LoadError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("load %s: %v", e.Path, ErrLoadFailure)
	}
	return fmt.Sprintf("load %s: %v: %s", e.Path, ErrLoadFailure, e.Reason)
}

// Unwrap returns ErrLoadFailure.
func (e *LoadError) Unwrap() error {
	return ErrLoadFailure
}

// SymbolError reports a failed symbol lookup.
type SymbolError struct {
	Path   string
	Symbol string
	Reason string
}

func (e *SymbolError) Error() string {
	msg := fmt.Sprintf("lookup %q in %s: %v", e.Symbol, e.Path, ErrSymbolNotFound)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

// Unwrap returns ErrSymbolNotFound.
func (e *SymbolError) Unwrap() error {
	return ErrSymbolNotFound
}
