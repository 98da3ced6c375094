package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"uncheckedscan/internal/core/config"
	"uncheckedscan/internal/shared/observability"
	"uncheckedscan/internal/ui/browse"
	"uncheckedscan/internal/ui/report"
)

var (
	configPath = flag.String("config", config.DefaultConfigFile, "Path to config file")
	outPath    = flag.String("out", "", "Report file (overrides output.report)")
	marker     = flag.String("marker", "", "Name marker (overrides marker)")
	workers    = flag.Int("workers", 0, "Parallel workers (overrides performance.workers)")
	keepGoing  = flag.Bool("keep-going", false, "Skip unreadable or unparsable files instead of aborting")
	ui         = flag.Bool("ui", false, "Browse results in a terminal UI after the scan")
	verbose    = flag.Bool("verbose", false, "Enable verbose logging")
	version    = flag.Bool("version", false, "Print version and exit")
)

const VERSION = "1.0.0"

func main() {
	flag.Parse()

	if *version {
		fmt.Printf("uncheckedscan v%s\n", VERSION)
		os.Exit(0)
	}

	logLevel := slog.LevelInfo
	if *verbose {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})))

	cfg, err := loadConfig(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	applyFlags(cfg, flag.Args())
	if err := config.Validate(cfg); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		slog.Error("scan failed", "error", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	shutdown, err := observability.SetupTracing(ctx, cfg.Tracing.Endpoint, cfg.Tracing.Insecure, VERSION)
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(sctx); err != nil {
			slog.Warn("tracing shutdown failed", "error", err)
		}
	}()

	app, err := NewApp(cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	res, err := app.Audit(ctx)
	if err != nil {
		return err
	}
	if err := app.GenerateOutputs(res); err != nil {
		return err
	}

	delta, err := app.RecordHistory(res)
	if err != nil {
		slog.Warn("failed to record run history", "path", cfg.History.Path, "error", err)
	}

	if *ui {
		if err := browse.Run(res, delta); err != nil {
			return fmt.Errorf("run UI: %w", err)
		}
	} else {
		fmt.Println(report.Summary(res))
	}
	fmt.Printf("Safe version results have been written to %s\n", cfg.Output.Report)
	return nil
}

// loadConfig reads path, falling back to defaults when the default config
// file does not exist. An explicitly named file must exist.
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err == nil {
		return cfg, nil
	}
	if errors.Is(err, fs.ErrNotExist) && filepath.Clean(path) == config.DefaultConfigFile {
		slog.Debug("no config file, using defaults", "path", path)
		cfg = config.DefaultConfig()
		config.ApplyEnvOverrides(cfg)
		return cfg, nil
	}
	return nil, err
}

func applyFlags(cfg *config.Config, args []string) {
	if *outPath != "" {
		cfg.Output.Report = *outPath
	}
	if *marker != "" {
		cfg.Marker = *marker
	}
	if *workers > 0 {
		cfg.Performance.Workers = *workers
	}
	if *keepGoing {
		failFast := false
		cfg.FailFast = &failFast
	}
	if len(args) > 0 {
		cfg.Roots = args
	}
}
