package parser

import (
	"runtime"
	"sync/atomic"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// ParserPool recycles tree-sitter parsers for a single grammar so that
// concurrent collection and resolution workers do not allocate a parser per
// file.
//
//	sp := pool.Get()
//	defer pool.Put(sp)
//	tree := sp.Parse(source, nil)
//
// Idle parsers are held in a bounded channel rather than a sync.Pool: the
// parsers own C memory with no finalizer, so every parser the pool lets go of
// is closed explicitly. Safe for use by multiple goroutines.
type ParserPool struct {
	lang   *sitter.Language
	idle   chan *sitter.Parser
	leased atomic.Int64
	closed atomic.Bool
}

// NewParserPool creates a pool for lang, which must outlive the pool. Up to
// twice GOMAXPROCS parsers are kept idle.
func NewParserPool(lang *sitter.Language) *ParserPool {
	return NewParserPoolSize(lang, 2*runtime.GOMAXPROCS(0))
}

// NewParserPoolSize creates a pool that keeps at most maxIdle parsers.
func NewParserPoolSize(lang *sitter.Language, maxIdle int) *ParserPool {
	if maxIdle < 1 {
		maxIdle = 1
	}
	return &ParserPool{lang: lang, idle: make(chan *sitter.Parser, maxIdle)}
}

// Get returns a parser configured for the pool's language.
func (p *ParserPool) Get() *sitter.Parser {
	var sp *sitter.Parser
	select {
	case sp = <-p.idle:
	default:
		sp = sitter.NewParser()
	}
	// The language is re-applied in case the parser was reset externally.
	_ = sp.SetLanguage(p.lang)
	p.leased.Add(1)
	return sp
}

// Put resets sp and returns it to the pool. A parser that does not fit, or
// arrives after Close, is closed. Callers must not use sp afterwards.
func (p *ParserPool) Put(sp *sitter.Parser) {
	if sp == nil {
		return
	}
	p.leased.Add(-1)
	if p.closed.Load() {
		sp.Close()
		return
	}
	sp.Reset()
	select {
	case p.idle <- sp:
	default:
		sp.Close()
	}
}

// Leased returns the number of parsers currently checked out.
func (p *ParserPool) Leased() int {
	return int(p.leased.Load())
}

// Idle returns the number of parsers waiting for reuse.
func (p *ParserPool) Idle() int {
	return len(p.idle)
}

// Close releases every idle parser. Parsers still leased are closed when they
// are returned.
func (p *ParserPool) Close() {
	p.closed.Store(true)
	for {
		select {
		case sp := <-p.idle:
			sp.Close()
		default:
			return
		}
	}
}
