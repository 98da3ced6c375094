// Package audit pairs every declaration carrying the unchecked marker with its
// checked counterpart declared in the same file.
//
// A run has two phases. Collection parses every candidate file and gathers
// (path, name) pairs whose name contains the marker. Resolution re-loads each
// owning file and looks for a declaration named after the marker-stripped
// name. Both phases fan out one task per file or entry.
package audit

import (
	"context"
	"fmt"
	"iter"
	"runtime"
	"time"

	"uncheckedscan/internal/shared/observability"
	"uncheckedscan/internal/shared/util"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type Options struct {
	Marker            string
	Workers           int // <= 0 means GOMAXPROCS
	FailFast          bool
	CacheSize         int // 0 disables the declaration cache
	MaxFilesPerSecond float64
}

type Stats struct {
	FilesScanned    int
	FilesFailed     int
	Marked          int
	Paired          int
	Absent          int
	CollectDuration time.Duration
	ResolveDuration time.Duration
}

type Result struct {
	Marker   string
	Results  []ResolutionResult // sorted by path, name, counterpart
	Failures []FileFailure
	Stats    Stats
}

type Auditor struct {
	parser Parser
	opts   Options
}

func New(p Parser, opts Options) (*Auditor, error) {
	if opts.Marker == "" {
		return nil, fmt.Errorf("marker must not be empty")
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}
	return &Auditor{parser: p, opts: opts}, nil
}

// Run collects marked entries from files and resolves their counterparts.
func (a *Auditor) Run(ctx context.Context, files iter.Seq2[string, error]) (*Result, error) {
	ctx, span := observability.Tracer.Start(ctx, "audit.Run",
		trace.WithAttributes(attribute.String("marker", a.opts.Marker)))
	defer span.End()

	src := &source{
		parser:  a.parser,
		cache:   NewDeclarationCache(a.opts.CacheSize),
		limiter: util.NewLimiter(a.opts.MaxFilesPerSecond, a.opts.Workers),
	}

	collector := newCollector(src, a.opts.Marker, a.opts.Workers, a.opts.FailFast)
	collectStart := time.Now()
	if err := a.phase(ctx, "collect", func(ctx context.Context) error {
		return collector.CollectAll(ctx, files)
	}); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "collection failed")
		return nil, err
	}
	collectDuration := time.Since(collectStart)

	entries := collector.Set().Entries()
	observability.MarkedEntries.Set(float64(len(entries)))

	resolver := newResolver(src, a.opts.Marker, a.opts.Workers, a.opts.FailFast)
	resolveStart := time.Now()
	var results *ResultSet
	if err := a.phase(ctx, "resolve", func(ctx context.Context) error {
		var err error
		results, err = resolver.Resolve(ctx, entries)
		return err
	}); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "resolution failed")
		return nil, err
	}

	failures := append(collector.Failures(), resolver.Failures()...)
	res := &Result{
		Marker:   a.opts.Marker,
		Results:  results.Sorted(),
		Failures: failures,
		Stats: Stats{
			FilesScanned:    collector.Scanned(),
			FilesFailed:     countFailedFiles(failures),
			Marked:          len(entries),
			CollectDuration: collectDuration,
			ResolveDuration: time.Since(resolveStart),
		},
	}
	for _, r := range res.Results {
		if r.Found {
			res.Stats.Paired++
		} else {
			res.Stats.Absent++
		}
	}
	observability.ResolutionResults.WithLabelValues("paired").Set(float64(res.Stats.Paired))
	observability.ResolutionResults.WithLabelValues("absent").Set(float64(res.Stats.Absent))

	span.SetAttributes(
		attribute.Int("files_scanned", res.Stats.FilesScanned),
		attribute.Int("marked", res.Stats.Marked),
		attribute.Int("paired", res.Stats.Paired),
		attribute.Int("absent", res.Stats.Absent),
	)
	return res, nil
}

func (a *Auditor) phase(ctx context.Context, name string, fn func(context.Context) error) error {
	ctx, span := observability.Tracer.Start(ctx, "audit."+name)
	defer span.End()

	start := time.Now()
	err := fn(ctx)
	observability.PhaseDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

// countFailedFiles counts distinct paths across both phases. A resolution
// failure is recorded per entry, so one file can appear more than once.
func countFailedFiles(failures []FileFailure) int {
	seen := make(map[string]struct{}, len(failures))
	for _, f := range failures {
		seen[f.Path] = struct{}{}
	}
	return len(seen)
}
