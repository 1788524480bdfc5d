package foreign

import (
	"fmt"
	"strings"
)

// Exports is the view of a loaded library the orchestrator needs.
// *dl.Library satisfies it.
type Exports interface {
	// Path identifies the library in diagnostics.
	Path() string
	// Has reports whether name is exported.
	Has(name string) bool
	// Bind binds the export name to the func variable fptr points to.
	Bind(name string, fptr any) error
	// Retain marks a call into the library as in flight.
	Retain() error
	// Release ends a call marked by Retain.
	Release()
}

// Default export names.
const (
	DefaultRichSymbol        = "MainWithPlugin"
	DefaultPlainSymbol       = "Main"
	DefaultRuntimeInfoSymbol = "GetRuntimeInfo"
)

// Symbols names the entry points to look for and declares their signatures.
type Symbols struct {
	// Rich takes the auxiliary plugin path: void (const char*).
	Rich string
	// Plain takes nothing: void (void).
	Plain string
	// RuntimeInfo returns a borrowed C string: const char* (void).
	RuntimeInfo string

	// RichStatus declares Rich as returning an int status instead of void.
	RichStatus bool
	// PlainStatus declares Plain as returning an int status instead of void.
	PlainStatus bool
}

// DefaultSymbols returns the conventional export names, all void.
func DefaultSymbols() Symbols {
	return Symbols{
		Rich:        DefaultRichSymbol,
		Plain:       DefaultPlainSymbol,
		RuntimeInfo: DefaultRuntimeInfoSymbol,
	}
}

// Kind tags which entry point shape an EntryPoint holds.
type Kind int

// Entry point kinds.
const (
	KindPlain Kind = iota + 1
	KindRich
)

// String returns a string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindPlain:
		return "plain"
	case KindRich:
		return "rich"
	default:
		return "unknown"
	}
}

// EntryPoint is a resolved entry point: either Plain(fn) or Rich(fn, path).
type EntryPoint struct {
	Kind   Kind
	Symbol string

	// PluginPath is passed to a rich entry point. Unused for plain.
	PluginPath string

	// ReportsStatus is true when the entry point returns an int status.
	ReportsStatus bool

	plain       func()
	plainStatus func() int32
	rich        func(string)
	richStatus  func(string) int32
}

// call runs the entry point and returns its status, 0 for void shapes.
func (e *EntryPoint) call() int32 {
	switch {
	case e.richStatus != nil:
		return e.richStatus(e.PluginPath)
	case e.rich != nil:
		e.rich(e.PluginPath)
	case e.plainStatus != nil:
		return e.plainStatus()
	case e.plain != nil:
		e.plain()
	default:
		panic("foreign: entry point " + e.Symbol + " is not bound")
	}
	return 0
}

// Select picks the entry point to invoke: rich if exported, else plain, else
// ErrRequiredSymbolMissing. pluginPath is only validated and kept when the
// rich shape is chosen.
func Select(exports Exports, symbols Symbols, pluginPath string) (*EntryPoint, error) {
	if symbols.Rich != "" && exports.Has(symbols.Rich) {
		if strings.IndexByte(pluginPath, 0) >= 0 {
			return nil, fmt.Errorf("%w: %q", ErrInvalidPluginPath, pluginPath)
		}

		e := &EntryPoint{
			Kind:          KindRich,
			Symbol:        symbols.Rich,
			PluginPath:    pluginPath,
			ReportsStatus: symbols.RichStatus,
		}
		var err error
		if e.ReportsStatus {
			err = exports.Bind(e.Symbol, &e.richStatus)
		} else {
			err = exports.Bind(e.Symbol, &e.rich)
		}
		if err != nil {
			return nil, fmt.Errorf("bind rich entry point: %w", err)
		}
		return e, nil
	}

	if symbols.Plain != "" && exports.Has(symbols.Plain) {
		e := &EntryPoint{
			Kind:          KindPlain,
			Symbol:        symbols.Plain,
			ReportsStatus: symbols.PlainStatus,
		}
		var err error
		if e.ReportsStatus {
			err = exports.Bind(e.Symbol, &e.plainStatus)
		} else {
			err = exports.Bind(e.Symbol, &e.plain)
		}
		if err != nil {
			return nil, fmt.Errorf("bind plain entry point: %w", err)
		}
		return e, nil
	}

	return nil, fmt.Errorf("%w: %s exports neither %q nor %q",
		ErrRequiredSymbolMissing, exports.Path(), symbols.Rich, symbols.Plain)
}
