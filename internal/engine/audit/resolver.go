package audit

import (
	"context"
	"log/slog"
	"sync"

	"uncheckedscan/internal/core/errors"
	"uncheckedscan/internal/shared/observability"

	"golang.org/x/sync/errgroup"
)

// Resolver looks up the checked counterpart of each marked entry in the
// entry's own file.
type Resolver struct {
	src      *source
	marker   string
	workers  int
	failFast bool

	mu       sync.Mutex
	failures []FileFailure
}

func newResolver(src *source, marker string, workers int, failFast bool) *Resolver {
	return &Resolver{src: src, marker: marker, workers: workers, failFast: failFast}
}

// ResolveEntry re-parses the owning file and searches it, with the same
// traversal as collection, for a declaration named after the counterpart.
func (r *Resolver) ResolveEntry(ctx context.Context, entry MarkedEntry) (ResolutionResult, error) {
	if err := ctx.Err(); err != nil {
		return ResolutionResult{}, err
	}
	file, err := r.src.load(ctx, entry.Path)
	if err != nil {
		wrapped := errors.Wrap(err, errors.CodeResolution, "resolve counterpart")
		return ResolutionResult{}, errors.AddContext(wrapped, errors.CtxSymbol, entry.Name)
	}

	counterpart := Counterpart(entry.Name, r.marker)
	if file.Declares(counterpart) {
		return ResolutionResult{Path: entry.Path, Name: entry.Name, Counterpart: counterpart, Found: true}, nil
	}
	return ResolutionResult{Path: entry.Path, Name: entry.Name}, nil
}

// Resolve runs one task per entry. In fail-fast mode the first
// ResolutionError aborts; otherwise the entry is recorded as a failure and
// left out of the results.
func (r *Resolver) Resolve(ctx context.Context, entries []MarkedEntry) (*ResultSet, error) {
	results := NewResultSet()
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)

	for _, entry := range entries {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			res, err := r.ResolveEntry(gctx, entry)
			if err != nil {
				if r.failFast || gctx.Err() != nil {
					return err
				}
				r.recordFailure(entry.Path, err)
				return nil
			}
			results.Add(res)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (r *Resolver) recordFailure(path string, err error) {
	slog.Warn("skipping unresolved entry", "path", path, "error", err)
	observability.FilesFailedTotal.WithLabelValues("resolve").Inc()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures = append(r.failures, FileFailure{Path: path, Phase: "resolve", Err: err})
}

func (r *Resolver) Failures() []FileFailure {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]FileFailure, len(r.failures))
	copy(out, r.failures)
	return out
}
