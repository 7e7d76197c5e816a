package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lguibr/slamwood/internal/config"
	"github.com/lguibr/slamwood/internal/log"
	"github.com/lguibr/slamwood/internal/pipeline"
	"github.com/lguibr/slamwood/internal/report"
)

const (
	ExitSuccess = 0
	ExitCrashed = 1
	ExitError   = 2
)

func main() {
	configPath := flag.String("config", "", "path to the configuration file (or first argument)")
	output := flag.String("output", "", "output directory (default: the configuration file's directory)")
	tick := flag.Duration("tick", 0, "tick interval, overrides TickTime (0 = use configuration)")
	logLevel := flag.String("log-level", "info", "log level: debug, info, warn, error")
	flag.Parse()

	log.Init(*logLevel)

	if *configPath == "" && flag.NArg() > 0 {
		*configPath = flag.Arg(0)
	}
	if *configPath == "" {
		fmt.Fprintln(os.Stderr, "error: --config is required")
		flag.Usage()
		os.Exit(ExitError)
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(ExitError)
	}
	if *output != "" {
		cfg.OutputDir = *output
	}
	if *tick > 0 {
		cfg.TickInterval = *tick
	}

	setup, err := pipeline.Load(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(ExitError)
	}
	sink := report.FileSink{Dir: cfg.OutputDir}
	setup.Sink = sink
	setup.Logger = log.L()

	// Set up graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	start := time.Now()
	res, err := pipeline.Run(ctx, *setup)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, "\nReceived interrupt signal, run aborted")
		} else {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(ExitError)
	}

	fmt.Printf("run %s finished in %v: %d ticks, %d detected, %d tracked, %d landmarks\n",
		res.RunID, time.Since(start).Round(time.Millisecond),
		res.Stats.SystemRuntime, res.Stats.NumDetectedObjects,
		res.Stats.NumTrackedObjects, res.Stats.NumLandmarks)
	fmt.Printf("report written to %s\n", sink.Path())

	if f, ok := res.Report.(*report.Failure); ok {
		fmt.Fprintf(os.Stderr, "%s crashed at tick %d: %s\n", f.FaultySensor, f.CrashTick, f.Error)
		os.Exit(ExitCrashed)
	}
	os.Exit(ExitSuccess)
}
