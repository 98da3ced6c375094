package main

import (
	"context"
	"fmt"
	"log/slog"

	"uncheckedscan/internal/core/config"
	"uncheckedscan/internal/core/ports"
	"uncheckedscan/internal/data/history"
	"uncheckedscan/internal/engine/audit"
	"uncheckedscan/internal/engine/parser"
	"uncheckedscan/internal/engine/scan"
	"uncheckedscan/internal/shared/observability"
	"uncheckedscan/internal/ui/report"
)

type App struct {
	Config      *config.Config
	Parser      ports.CodeParser
	walker      *scan.Walker
	auditor     *audit.Auditor
	openHistory ports.HistoryOpener
}

func openSQLiteHistory(path string) (ports.HistoryStore, error) {
	store, err := history.Open(path)
	if err != nil {
		return nil, err
	}
	return store, nil
}

func NewApp(cfg *config.Config) (*App, error) {
	loader, err := parser.NewGrammarLoader(cfg.Languages)
	if err != nil {
		return nil, err
	}
	p := parser.NewParser(loader)

	walker, err := scan.NewWalker(scan.Options{
		Extensions:   p.SupportedExtensions(),
		ExcludeDirs:  cfg.Exclude.Dirs,
		ExcludeFiles: cfg.Exclude.Files,
	})
	if err != nil {
		return nil, err
	}

	auditor, err := audit.New(p, audit.Options{
		Marker:            cfg.Marker,
		Workers:           cfg.Performance.Workers,
		FailFast:          cfg.StopOnError(),
		CacheSize:         cfg.CacheSize(),
		MaxFilesPerSecond: cfg.Performance.MaxFilesPerSecond,
	})
	if err != nil {
		return nil, err
	}

	return &App{
		Config:      cfg,
		Parser:      p,
		walker:      walker,
		auditor:     auditor,
		openHistory: openSQLiteHistory,
	}, nil
}

// Close releases parser resources held by the app.
func (a *App) Close() {
	a.Parser.Close()
}

// Audit walks the configured roots and pairs every marked declaration.
func (a *App) Audit(ctx context.Context) (*audit.Result, error) {
	slog.Info("scanning", "roots", a.Config.Roots, "marker", a.Config.Marker, "languages", a.Config.Languages)
	return a.auditor.Run(ctx, a.walker.Walk(a.Config.Roots))
}

// GenerateOutputs writes the report and, when configured, the metrics
// textfile. Nothing is written for a run that failed.
func (a *App) GenerateOutputs(res *audit.Result) error {
	table := report.Assemble(res.Results)
	if err := report.WriteAtomic(a.Config.Output.Report, table.Render()); err != nil {
		return err
	}

	if a.Config.Output.Metrics != "" {
		if err := observability.WriteTextfile(a.Config.Output.Metrics); err != nil {
			return fmt.Errorf("write metrics textfile: %w", err)
		}
		slog.Debug("metrics written", "path", a.Config.Output.Metrics)
	}
	return nil
}

// RecordHistory stores the run and returns how it differs from the previous
// run of the same project. It returns a nil delta when history is disabled or
// this is the first recorded run.
func (a *App) RecordHistory(res *audit.Result) (*history.Delta, error) {
	if a.Config.History.Path == "" {
		return nil, nil
	}

	store, err := a.openHistory(a.Config.History.Path)
	if err != nil {
		return nil, err
	}
	defer store.Close()

	run, entries := history.NewRun(a.Config.History.Project, a.Config.Roots, res)
	if err := store.SaveRun(run, entries); err != nil {
		return nil, err
	}
	slog.Debug("run recorded", "run_id", run.ID, "history", a.Config.History.Path)

	prev, ok, err := store.LatestRun(run.ProjectKey, run.ID)
	if err != nil || !ok {
		return nil, err
	}
	prevEntries, err := store.LoadEntries(prev.ID)
	if err != nil {
		return nil, err
	}
	delta := history.Compare(prevEntries, entries)
	return &delta, nil
}
