package audit

import (
	"context"
	"iter"
	"log/slog"
	"strings"
	"sync"

	"uncheckedscan/internal/engine/parser"
	"uncheckedscan/internal/shared/observability"

	"golang.org/x/sync/errgroup"
)

// FileFailure records a file skipped because it could not be read or parsed.
type FileFailure struct {
	Path  string
	Phase string
	Err   error
}

// Visit returns one MarkedEntry per distinct declaration name in file that
// contains marker. Matching is case-sensitive on the bare identifier.
func Visit(file *parser.File, marker string) []MarkedEntry {
	var out []MarkedEntry
	seen := make(map[string]bool)
	for _, d := range file.Declarations {
		if seen[d.Name] || !strings.Contains(d.Name, marker) {
			continue
		}
		seen[d.Name] = true
		out = append(out, MarkedEntry{Path: file.Path, Name: d.Name})
	}
	return out
}

// Collector aggregates marked declarations across files into one MarkerSet.
type Collector struct {
	src      *source
	marker   string
	workers  int
	failFast bool
	set      *MarkerSet

	mu       sync.Mutex
	scanned  int
	failures []FileFailure
}

func newCollector(src *source, marker string, workers int, failFast bool) *Collector {
	return &Collector{
		src:      src,
		marker:   marker,
		workers:  workers,
		failFast: failFast,
		set:      NewMarkerSet(),
	}
}

// Collect parses one file and merges its marked declarations into the set.
func (c *Collector) Collect(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	slog.Info("processing file", "path", path)

	file, err := c.src.load(ctx, path)
	if err != nil {
		return err
	}
	observability.FilesScannedTotal.Inc()

	c.mu.Lock()
	c.scanned++
	c.mu.Unlock()

	c.set.Add(Visit(file, c.marker)...)
	return nil
}

// CollectAll runs Collect for every path, one task per file. A walk error is
// always fatal; a file error is fatal only in fail-fast mode, otherwise the
// file is recorded as a failure and skipped.
func (c *Collector) CollectAll(ctx context.Context, paths iter.Seq2[string, error]) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers)

	var walkErr error
	for path, err := range paths {
		if err != nil {
			walkErr = err
			break
		}
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			err := c.Collect(gctx, path)
			if err == nil || c.failFast || gctx.Err() != nil {
				return err
			}
			c.recordFailure(path, "collect", err)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	return walkErr
}

func (c *Collector) recordFailure(path, phase string, err error) {
	slog.Warn("skipping file", "path", path, "phase", phase, "error", err)
	observability.FilesFailedTotal.WithLabelValues(phase).Inc()
	c.mu.Lock()
	c.failures = append(c.failures, FileFailure{Path: path, Phase: phase, Err: err})
	c.mu.Unlock()
}

// Set returns the aggregated marker set.
func (c *Collector) Set() *MarkerSet {
	return c.set
}

// Scanned returns how many files were parsed successfully.
func (c *Collector) Scanned() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.scanned
}

// Failures returns the files skipped so far.
func (c *Collector) Failures() []FileFailure {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]FileFailure, len(c.failures))
	copy(out, c.failures)
	return out
}
