// Package scan enumerates candidate source files beneath a set of roots.
package scan

import (
	"fmt"
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"strings"

	"uncheckedscan/internal/core/errors"

	"github.com/gobwas/glob"
)

type Options struct {
	Extensions   []string // with leading dot, matched case-insensitively
	ExcludeDirs  []string // globs matched against directory base names
	ExcludeFiles []string // globs matched against file base names
}

// Walker is immutable after construction; each Walk call starts a fresh,
// independent traversal.
type Walker struct {
	extensions map[string]bool
	dirGlobs   []glob.Glob
	fileGlobs  []glob.Glob
}

func NewWalker(opts Options) (*Walker, error) {
	w := &Walker{extensions: make(map[string]bool, len(opts.Extensions))}
	for _, ext := range opts.Extensions {
		w.extensions[strings.ToLower(ext)] = true
	}

	var err error
	if w.dirGlobs, err = compileGlobs("dir", opts.ExcludeDirs); err != nil {
		return nil, err
	}
	if w.fileGlobs, err = compileGlobs("file", opts.ExcludeFiles); err != nil {
		return nil, err
	}
	return w, nil
}

func compileGlobs(kind string, patterns []string) ([]glob.Glob, error) {
	globs := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeValidationError, fmt.Sprintf("invalid exclude %s pattern %q", kind, p))
		}
		globs = append(globs, g)
	}
	return globs, nil
}

// Walk yields every candidate file beneath roots in lexical order. A root may
// also name a single file. The first I/O error is yielded with an empty path
// and ends the sequence.
func (w *Walker) Walk(roots []string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		for _, root := range roots {
			if !w.walkRoot(root, yield) {
				return
			}
		}
	}
}

// Files drains Walk into a slice.
func (w *Walker) Files(roots []string) ([]string, error) {
	var files []string
	for path, err := range w.Walk(roots) {
		if err != nil {
			return nil, err
		}
		files = append(files, path)
	}
	return files, nil
}

func (w *Walker) walkRoot(root string, yield func(string, error) bool) bool {
	info, err := os.Stat(root)
	if err != nil {
		yield("", errors.WrapPath(err, errors.CodeIO, "scan root", root))
		return false
	}
	if !info.IsDir() {
		if w.accepts(root) {
			return yield(root, nil)
		}
		return true
	}

	stopped := false
	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && w.excludedDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if !w.accepts(path) || !isFileEntry(path, d) {
			return nil
		}
		if !yield(path, nil) {
			stopped = true
			return filepath.SkipAll
		}
		return nil
	})
	if stopped {
		return false
	}
	if walkErr != nil {
		yield("", errors.WrapPath(walkErr, errors.CodeIO, "walk directory", root))
		return false
	}
	return true
}

// isFileEntry accepts regular files and symlinks that do not resolve to a
// directory. Directory symlinks are never descended into. A dangling link is
// still yielded so the read reports it like any other unreadable file.
func isFileEntry(path string, d fs.DirEntry) bool {
	if d.Type().IsRegular() {
		return true
	}
	if d.Type()&fs.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(path)
	if err != nil {
		return true
	}
	return info.Mode().IsRegular()
}

func (w *Walker) excludedDir(name string) bool {
	for _, g := range w.dirGlobs {
		if g.Match(name) {
			return true
		}
	}
	return false
}

func (w *Walker) accepts(path string) bool {
	if !w.extensions[strings.ToLower(filepath.Ext(path))] {
		return false
	}
	base := filepath.Base(path)
	for _, g := range w.fileGlobs {
		if g.Match(base) {
			return false
		}
	}
	return true
}
