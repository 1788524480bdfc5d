package app

import (
	"context"
	"errors"
	"os"
	"sync"
	"time"

	"github.com/dshills/crossload/internal/config"
	"github.com/dshills/crossload/internal/dl"
	"github.com/dshills/crossload/internal/foreign"
	"github.com/dshills/crossload/internal/watcher"
)

// Application runs one foreign entry point to completion, or until the
// process is interrupted.
type Application struct {
	cfg    *config.Config
	logger *Logger

	mu   sync.RWMutex
	orch *foreign.Orchestrator
}

// Option configures an Application.
type Option func(*Application)

// WithLogger sets the host logger. A nil logger discards all output.
// Without this option the host writes to stderr at the configured level.
func WithLogger(l *Logger) Option {
	return func(a *Application) {
		if l == nil {
			l = NullLogger
		}
		a.logger = l
	}
}

// New creates an application for cfg. cfg is validated here.
func New(cfg *config.Config, opts ...Option) (*Application, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	a := &Application{cfg: cfg}
	for _, opt := range opts {
		opt(a)
	}
	if a.logger == nil {
		lc := DefaultLoggerConfig()
		lc.Level = ParseLogLevel(cfg.Logging.Level)
		a.logger = NewLogger(lc)
	}
	return a, nil
}

// Logger returns the host logger.
func (a *Application) Logger() *Logger {
	return a.logger
}

// IsRunning reports whether the foreign entry point is executing.
func (a *Application) IsRunning() bool {
	a.mu.RLock()
	orch := a.orch
	a.mu.RUnlock()
	return orch != nil && orch.IsRunning()
}

// Run loads the library, invokes its entry point and returns when the call
// completes or ctx ends.
//
// The library is closed only after the call has returned. When ctx ends
// first the call keeps running, the library stays mapped and Run returns an
// error matching foreign.ErrInterrupted; the caller is expected to exit.
func (a *Application) Run(ctx context.Context) error {
	if err := a.preflight(); err != nil {
		return err
	}

	lib, err := dl.Open(a.cfg.Library.Path, a.openOptions()...)
	if err != nil {
		return NewOperationError("open", a.cfg.Library.Path, err)
	}
	a.logger.Info("loaded %s", lib.Path())

	orch, err := foreign.New(lib,
		foreign.WithSymbols(a.cfg.ForeignSymbols()),
		foreign.WithPluginPath(a.cfg.Plugin.Path),
		foreign.WithLogger(a.logger.WithComponent("foreign")),
	)
	if err != nil {
		a.closeLibrary(lib)
		return NewOperationError("resolve", lib.Path(), err)
	}

	a.mu.Lock()
	a.orch = orch
	a.mu.Unlock()

	a.logRuntimeInfo(orch)

	if a.cfg.Library.Watch {
		if stop := a.monitor(lib.Path()); stop != nil {
			defer stop()
		}
	}

	symbol := orch.Entry().Symbol
	if a.cfg.Run.Mode == config.ModeSync {
		err = a.runSync(ctx, orch)
	} else {
		err = a.runBackground(ctx, orch)
	}

	if errors.Is(err, foreign.ErrInterrupted) {
		a.logger.Warn("leaving %s mapped while %s is still running", lib.Path(), symbol)
		return err
	}

	a.closeLibrary(lib)
	if err != nil {
		return NewOperationError("invoke", symbol, err)
	}
	return nil
}

// runSync calls the entry point on the current goroutine. An interrupt
// during the call is logged and otherwise ignored.
func (a *Application) runSync(ctx context.Context, orch *foreign.Orchestrator) error {
	done := make(chan struct{})
	defer close(done)

	go func() {
		select {
		case <-ctx.Done():
			a.logger.Warn("interrupt observed (%v); %s keeps running until its own shutdown returns", context.Cause(ctx), orch.Entry().Symbol)
		case <-done:
		}
	}()

	return orch.Invoke()
}

// runBackground starts the entry point and waits for it alongside ctx,
// logging its status every StatusInterval.
func (a *Application) runBackground(ctx context.Context, orch *foreign.Orchestrator) error {
	inv, err := orch.Start()
	if err != nil {
		return err
	}

	statusDone := make(chan struct{})
	go a.reportStatus(orch, inv, statusDone)
	defer close(statusDone)

	return orch.Await(ctx, inv)
}

// reportStatus logs is_running until the invocation completes or stop closes.
func (a *Application) reportStatus(orch *foreign.Orchestrator, inv *foreign.Invocation, stop <-chan struct{}) {
	ticker := time.NewTicker(a.cfg.StatusInterval())
	defer ticker.Stop()

	log := a.logger.WithField("invocation", inv.ID)
	for {
		select {
		case <-ticker.C:
			log.Info("%s running: %t", inv.Symbol, orch.IsRunning())
		case <-inv.Done():
			return
		case <-stop:
			return
		}
	}
}

func (a *Application) logRuntimeInfo(orch *foreign.Orchestrator) {
	info, err := orch.RuntimeInfo()
	switch {
	case err == nil:
		a.logger.Info("runtime: %s", info)
	case errors.Is(err, foreign.ErrNoRuntimeInfo):
		a.logger.Debug("no runtime info: %v", err)
	default:
		a.logger.Warn("runtime info: %v", err)
	}
}

// monitor warns whenever the library file changes on disk. It returns the
// function that stops monitoring, or nil when monitoring could not start.
func (a *Application) monitor(path string) func() {
	log := a.logger.WithComponent("watcher")
	w, err := watcher.New(path,
		watcher.WithDebounce(250*time.Millisecond),
		watcher.WithErrorHandler(func(err error) { log.Warn("%v", err) }),
	)
	if err != nil {
		log.Warn("not monitoring %s: %v", path, err)
		return nil
	}

	_ = w.OnChange(func(e watcher.Event) {
		log.Warn("%s changed on disk (%s); the mapped code is not reloaded", e.Path, e.Op)
	})
	return func() {
		if err := w.Close(); err != nil {
			log.Warn("closing watcher: %v", err)
		}
	}
}

func (a *Application) closeLibrary(lib *dl.Library) {
	if err := lib.Close(); err != nil {
		a.logger.Error("close %s: %v", lib.Path(), err)
	}
}

func (a *Application) openOptions() []dl.Option {
	var opts []dl.Option
	if a.cfg.Library.LazyBinding {
		opts = append(opts, dl.WithLazyBinding())
	}
	if a.cfg.Library.GlobalSymbols {
		opts = append(opts, dl.WithGlobalSymbols())
	}
	return opts
}

// preflight checks the files that must exist before the library is opened.
func (a *Application) preflight() error {
	for _, path := range a.cfg.Preflight.RequiredFiles {
		if err := requireFile(path); err != nil {
			return NewOperationError("preflight", path, err)
		}
	}
	if a.cfg.Plugin.Required {
		if err := requireFile(a.cfg.Plugin.Path); err != nil {
			return NewOperationError("preflight", a.cfg.Plugin.Path, err)
		}
	}
	return nil
}

func requireFile(path string) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ErrRequiredFileMissing
		}
		return err
	}
	return nil
}
