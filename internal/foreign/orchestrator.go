package foreign

import (
	"context"
	"fmt"
	"runtime"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Logger receives orchestrator diagnostics. Messages use fmt.Sprintf verbs.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

// Orchestrator invokes the entry point of one loaded library.
//
// Only one invocation is modeled at a time: a second Invoke or Start while
// one is active fails with ErrAlreadyRunning. Independent orchestrators do not
// share state.
type Orchestrator struct {
	exports    Exports
	symbols    Symbols
	pluginPath string
	logger     Logger

	entry *EntryPoint
	state RunState

	mu     sync.Mutex
	active bool
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithSymbols sets the export names and signatures to look for.
func WithSymbols(s Symbols) Option {
	return func(o *Orchestrator) {
		o.symbols = s
	}
}

// WithPluginPath sets the auxiliary plugin path passed to a rich entry point.
// The host never loads that library itself.
func WithPluginPath(path string) Option {
	return func(o *Orchestrator) {
		o.pluginPath = path
	}
}

// WithLogger sets the diagnostics logger.
func WithLogger(l Logger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.logger = l
		}
	}
}

// New resolves the entry point of exports and returns an orchestrator for it.
// exports must stay open for as long as the orchestrator can invoke it.
func New(exports Exports, opts ...Option) (*Orchestrator, error) {
	o := &Orchestrator{
		exports: exports,
		symbols: DefaultSymbols(),
		logger:  nopLogger{},
	}
	for _, opt := range opts {
		opt(o)
	}

	entry, err := Select(exports, o.symbols, o.pluginPath)
	if err != nil {
		return nil, err
	}
	o.entry = entry

	if entry.Kind == KindRich && entry.PluginPath == "" {
		o.logger.Warn("rich entry point %s selected with an empty plugin path", entry.Symbol)
	}
	o.logger.Debug("selected %s entry point %s from %s", entry.Kind, entry.Symbol, exports.Path())
	return o, nil
}

// Entry returns a copy of the selected entry point's description.
func (o *Orchestrator) Entry() EntryPoint {
	return EntryPoint{
		Kind:          o.entry.Kind,
		Symbol:        o.entry.Symbol,
		PluginPath:    o.entry.PluginPath,
		ReportsStatus: o.entry.ReportsStatus,
	}
}

// IsRunning reports whether the entry point is executing. It never blocks on
// the call and is safe to use from any goroutine.
func (o *Orchestrator) IsRunning() bool {
	return o.state.Running()
}

// RuntimeInfo calls the diagnostic entry point and returns a copy of its
// text. The foreign string is borrowed and never freed. It may be called
// before, during or after the main entry point runs.
func (o *Orchestrator) RuntimeInfo() (string, error) {
	name := o.symbols.RuntimeInfo
	if name == "" || !o.exports.Has(name) {
		return "", fmt.Errorf("%w: %q in %s", ErrNoRuntimeInfo, name, o.exports.Path())
	}

	var info func() string
	if err := o.exports.Bind(name, &info); err != nil {
		return "", fmt.Errorf("bind runtime info: %w", err)
	}

	if err := o.exports.Retain(); err != nil {
		return "", err
	}
	defer o.exports.Release()

	return info(), nil
}

// Invoke runs the entry point on the calling goroutine and returns when the
// foreign call returns.
func (o *Orchestrator) Invoke() error {
	if err := o.acquire(); err != nil {
		return err
	}
	defer o.releaseActive()

	if err := o.exports.Retain(); err != nil {
		return err
	}
	defer o.exports.Release()

	o.logger.Info("invoking %s synchronously", o.entry.Symbol)
	return o.run()
}

// Start runs the entry point on a dedicated OS thread and returns at once.
//
// The library is retained before Start returns and released only after the
// call has returned, so closing it in between fails with dl.ErrInUse.
func (o *Orchestrator) Start() (*Invocation, error) {
	if err := o.acquire(); err != nil {
		return nil, err
	}
	if err := o.exports.Retain(); err != nil {
		o.releaseActive()
		return nil, err
	}

	inv := &Invocation{
		ID:      uuid.New().String(),
		Symbol:  o.entry.Symbol,
		Started: time.Now(),
		done:    make(chan struct{}),
	}
	o.logger.Info("starting %s in background (invocation %s)", inv.Symbol, inv.ID)

	go func() {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()

		err := o.run()
		o.exports.Release()
		o.releaseActive()
		inv.finish(err)
	}()

	return inv, nil
}

// Await waits for inv to complete or ctx to end, whichever is first.
//
// When ctx ends first the foreign call is not stopped; no safe mechanism
// exists to stop native code. Await logs that, and returns ErrInterrupted.
func (o *Orchestrator) Await(ctx context.Context, inv *Invocation) error {
	select {
	case <-inv.Done():
		err := inv.Err()
		if err != nil {
			o.logger.Error("invocation %s of %s failed: %v", inv.ID, inv.Symbol, err)
		} else {
			o.logger.Info("invocation %s of %s completed after %s", inv.ID, inv.Symbol, time.Since(inv.Started).Round(time.Millisecond))
		}
		return err
	case <-ctx.Done():
		cause := context.Cause(ctx)
		o.logger.Warn("interrupt observed (%v); %s keeps running until its own shutdown returns (invocation %s)", cause, inv.Symbol, inv.ID)
		return fmt.Errorf("%w: %w", ErrInterrupted, cause)
	}
}

// run executes the entry point bracketed by RunState transitions.
func (o *Orchestrator) run() (err error) {
	o.state.set(true)
	defer func() {
		if r := recover(); r != nil {
			err = &AbnormalExitError{Symbol: o.entry.Symbol, Value: r, Stack: string(debug.Stack())}
		}
		o.state.set(false)
	}()

	if code := o.entry.call(); code != 0 {
		return &CallError{Symbol: o.entry.Symbol, Code: code}
	}
	return nil
}

func (o *Orchestrator) acquire() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.active {
		return ErrAlreadyRunning
	}
	o.active = true
	return nil
}

func (o *Orchestrator) releaseActive() {
	o.mu.Lock()
	o.active = false
	o.mu.Unlock()
}
