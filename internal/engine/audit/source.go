package audit

import (
	"context"
	"os"

	"uncheckedscan/internal/core/errors"
	"uncheckedscan/internal/engine/parser"
	"uncheckedscan/internal/shared/util"
)

// Parser is the syntax parser consumed by the audit engine.
type Parser interface {
	ParseFile(path string, content []byte) (*parser.File, error)
}

// source reads and parses files on demand, optionally through the
// declaration cache and a read limiter.
type source struct {
	parser  Parser
	cache   *DeclarationCache
	limiter *util.Limiter
}

func (s *source) load(ctx context.Context, path string) (*parser.File, error) {
	if file, ok := s.cache.Get(path); ok {
		return file, nil
	}
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapPath(err, errors.CodeIO, "read source file", path)
	}
	file, err := s.parser.ParseFile(path, content)
	if err != nil {
		return nil, err
	}
	s.cache.Put(path, file)
	return file, nil
}
