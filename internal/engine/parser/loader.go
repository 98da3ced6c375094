package parser

import (
	"fmt"
	"sort"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

type GrammarLoader struct {
	languages map[string]*sitter.Language
	specs     map[string]LanguageSpec
}

// NewGrammarLoader loads the tree-sitter grammars of the given language IDs.
func NewGrammarLoader(enabled []string) (*GrammarLoader, error) {
	if len(enabled) == 0 {
		return nil, fmt.Errorf("at least one language must be enabled")
	}

	gl := &GrammarLoader{
		languages: make(map[string]*sitter.Language, len(enabled)),
		specs:     make(map[string]LanguageSpec, len(enabled)),
	}
	for _, raw := range enabled {
		id := strings.ToLower(strings.TrimSpace(raw))
		spec, ok := languages[id]
		if !ok {
			return nil, fmt.Errorf("language %q is not supported", raw)
		}
		if _, loaded := gl.languages[id]; loaded {
			continue
		}
		gl.languages[id] = sitter.NewLanguage(spec.grammar())
		gl.specs[id] = spec
	}
	return gl, nil
}

func (gl *GrammarLoader) SupportedExtensions() []string {
	set := make(map[string]bool)
	for _, spec := range gl.specs {
		for _, ext := range spec.Extensions {
			set[ext] = true
		}
	}
	extensions := make([]string, 0, len(set))
	for ext := range set {
		extensions = append(extensions, ext)
	}
	sort.Strings(extensions)
	return extensions
}

func (gl *GrammarLoader) Languages() []string {
	ids := make([]string, 0, len(gl.specs))
	for id := range gl.specs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
