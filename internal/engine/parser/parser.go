package parser

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"uncheckedscan/internal/core/errors"
	"uncheckedscan/internal/shared/observability"
)

// Parser turns source files of the loaded languages into declaration lists.
// It is safe for concurrent use.
type Parser struct {
	loader     *GrammarLoader
	pools      map[string]*ParserPool
	engines    map[string]*ExtractorEngine
	extensions map[string]string
}

func NewParser(loader *GrammarLoader) *Parser {
	p := &Parser{
		loader:     loader,
		pools:      make(map[string]*ParserPool, len(loader.specs)),
		engines:    make(map[string]*ExtractorEngine, len(loader.specs)),
		extensions: make(map[string]string),
	}
	for id, spec := range loader.specs {
		p.pools[id] = NewParserPool(loader.languages[id])
		p.engines[id] = newDeclarationEngine(spec)
		for _, ext := range spec.Extensions {
			p.extensions[strings.ToLower(ext)] = id
		}
	}
	return p
}

// Close releases the pooled tree-sitter parsers.
func (p *Parser) Close() {
	for _, pool := range p.pools {
		pool.Close()
	}
}

// ParseFile parses content and extracts every function-like declaration.
// Source with syntax errors is rejected with CodeParse.
func (p *Parser) ParseFile(path string, content []byte) (*File, error) {
	lang := p.GetLanguage(path)
	if lang == "" {
		return nil, newFileError(errors.CodeNotSupported, "unsupported language", path, "")
	}
	start := time.Now()
	defer func() {
		observability.ParsingDuration.WithLabelValues(lang).Observe(time.Since(start).Seconds())
	}()

	pool := p.pools[lang]
	sp := pool.Get()
	defer pool.Put(sp)

	tree := sp.Parse(content, nil)
	if tree == nil {
		return nil, newFileError(errors.CodeParse, "parse failed", path, lang)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		msg := "syntax error"
		if bad := firstErrorNode(root); bad != nil {
			pos := bad.StartPosition()
			msg = fmt.Sprintf("syntax error at %d:%d", pos.Row+1, pos.Column+1)
		}
		return nil, newFileError(errors.CodeParse, msg, path, lang)
	}

	file := &File{Path: path, Language: lang}
	ctx := &ExtractionContext{Source: content, File: file}
	p.engines[lang].Walk(ctx, root)
	return file, nil
}

func (p *Parser) IsSupportedPath(path string) bool {
	return p.GetLanguage(path) != ""
}

func (p *Parser) GetLanguage(path string) string {
	return p.extensions[strings.ToLower(filepath.Ext(path))]
}

func (p *Parser) SupportedExtensions() []string {
	return p.loader.SupportedExtensions()
}

func newFileError(code errors.ErrorCode, msg, path, lang string) error {
	de := &errors.DomainError{Code: code, Message: msg}
	de.WithContext(errors.CtxPath, path)
	if lang != "" {
		de.WithContext(errors.CtxLanguage, lang)
	}
	return de
}
