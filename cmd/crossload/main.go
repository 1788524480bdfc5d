// Package main is the entry point for the crossload host.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"
	"syscall"

	"github.com/dshills/crossload/internal/app"
	"github.com/dshills/crossload/internal/config"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// options holds command line settings. Empty values leave the loaded
// configuration unchanged.
type options struct {
	configPath string
	mode       string
	logLevel   string
}

func main() {
	os.Exit(run())
}

func run() int {
	opts := parseFlags()

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return app.ExitFailure
	}
	if opts.mode != "" {
		cfg.Run.Mode = opts.mode
	}
	if opts.logLevel != "" {
		cfg.Logging.Level = opts.logLevel
	}

	application, err := app.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return app.ExitFailure
	}

	ctx, stop := app.SignalContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err = application.Run(ctx)
	code := app.ExitCode(err)
	if err != nil {
		application.Logger().Error("%v (exit %d)", err, code)
	}
	return code
}

func parseFlags() options {
	var opts options
	var showVersion bool
	var showHelp bool

	flag.StringVar(&opts.configPath, "config", "", "Path to configuration file (.toml, .yaml)")
	flag.StringVar(&opts.configPath, "c", "", "Path to configuration file (shorthand)")
	flag.StringVar(&opts.mode, "mode", "", "Run mode (background, sync)")
	flag.StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")
	flag.BoolVar(&showHelp, "help", false, "Show help message")
	flag.BoolVar(&showHelp, "h", false, "Show help message (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "crossload - run the entry point of a native shared library\n\n")
		fmt.Fprintf(os.Stderr, "Usage: crossload [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nEnvironment:\n")
		vars := config.NewEnvLoader(config.EnvPrefix).Variables()
		sort.Strings(vars)
		for _, name := range vars {
			fmt.Fprintf(os.Stderr, "  %s\n", name)
		}
		fmt.Fprintf(os.Stderr, "\nExit codes:\n")
		fmt.Fprintf(os.Stderr, "  0 success, 1 config or other error, 2 library not found, 3 load failure,\n")
		fmt.Fprintf(os.Stderr, "  4 entry point missing, 5 foreign call failed, 6 abnormal worker exit, 130 interrupted\n")
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  crossload                             Run ./libotelcorecol.so in the background\n")
		fmt.Fprintf(os.Stderr, "  crossload -c crossload.toml           Use a configuration file\n")
		fmt.Fprintf(os.Stderr, "  crossload -mode sync -log-level debug Block on the call with debug logging\n")
	}

	flag.Parse()

	if showHelp {
		flag.Usage()
		os.Exit(app.ExitOK)
	}

	if showVersion {
		fmt.Printf("crossload %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", date)
		os.Exit(app.ExitOK)
	}

	opts.mode = strings.ToLower(opts.mode)
	opts.logLevel = strings.ToLower(opts.logLevel)
	return opts
}
