package main

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"

	service "github.com/okian/matchsim/internal/app"
	"github.com/okian/matchsim/internal/config"
	"github.com/okian/matchsim/internal/domain/model"
	"github.com/okian/matchsim/internal/report"
	"github.com/okian/matchsim/pkg/logger"
	"github.com/okian/matchsim/pkg/metrics"
)

// Process exit codes.
const (
	exitOK          = 0
	exitFailure     = 1
	exitConfigError = 2
	exitPartial     = 3

	nanosecondsPerMillisecond = 1e6
)

func main() {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run loads configuration, simulates, prints the summary to stdout and logs
// to stderr. It returns the process exit code.
func run(ctx context.Context, stdout, stderr io.Writer) int {
	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		// The logger is configured from cfg, so it is not available yet.
		_, _ = io.WriteString(stderr, "failed to load config: "+err.Error()+"\n")
		if errors.Is(err, model.ErrConfiguration) {
			return exitConfigError
		}
		return exitFailure
	}

	if err := logger.Init(
		logger.WithWriter(stderr),
		logger.WithJSON(strings.EqualFold(cfg.LogFormat, "json")),
	); err != nil {
		_, _ = io.WriteString(stderr, "failed to initialize logging: "+err.Error()+"\n")
		return exitFailure
	}
	defer func() { _ = logger.Sync() }()

	log := logger.Get()

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	format, err := cfg.Format()
	if err != nil {
		log.Error(ctx, "invalid match format", logger.Error(err))
		return exitConfigError
	}

	svc := service.New(
		service.WithLogger(log.Named("service")),
		service.WithPlayers(cfg.Players()),
		service.WithFormat(format),
		service.WithSimulations(cfg.NumSimulations),
		service.WithWorkerCount(cfg.MaxWorkers),
		service.WithBatchSize(cfg.BatchSize),
		service.WithLogInterval(cfg.LogInterval),
		service.WithSampleEvery(cfg.LogSampleEvery),
		service.WithSeed(cfg.Seed),
		service.WithExportPath(cfg.ExportPath),
	)

	res, err := svc.Run(ctx)
	updateSystemMetrics()
	writeMetrics(ctx, log, cfg.MetricsPath)
	if err != nil {
		log.Error(ctx, "simulation failed", logger.Error(err))
		if errors.Is(err, model.ErrConfiguration) {
			return exitConfigError
		}
		return exitFailure
	}

	if err := report.Build(res).Render(stdout); err != nil {
		log.Error(ctx, "failed to print summary", logger.Error(err))
		return exitFailure
	}

	for _, f := range res.Failures {
		log.Error(ctx, "unit abandoned",
			logger.Int("unit", f.UnitID),
			logger.Int64("match", f.MatchID),
			logger.Uint64("seed", f.Seed),
			logger.Error(f),
		)
	}
	if res.ExportErr != nil {
		log.Error(ctx, "point log export failed", logger.String("path", cfg.ExportPath), logger.Error(res.ExportErr))
	}
	if len(res.Failures) > 0 || res.ExportErr != nil {
		return exitPartial
	}
	return exitOK
}

func writeMetrics(ctx context.Context, log logger.Logger, path string) {
	if path == "" {
		return
	}
	if err := metrics.WriteTextfile(path); err != nil {
		log.Warn(ctx, "failed to write metrics textfile", logger.String("path", path), logger.Error(err))
	}
}

// updateSystemMetrics updates system-level metrics.
func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)

	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())

	if m.NumGC > 0 {
		// Calculate average GC pause time
		avgPauseMs := float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
		metrics.RecordSystemGCPauseTime(avgPauseMs)
	}
}
