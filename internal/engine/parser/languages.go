package parser

import (
	"sort"
	"unsafe"

	tree_sitter_go "github.com/tree-sitter/tree-sitter-go/bindings/go"
	tree_sitter_java "github.com/tree-sitter/tree-sitter-java/bindings/go"
	tree_sitter_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"
	tree_sitter_rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

// LanguageSpec describes how to find function-like declarations in one grammar.
type LanguageSpec struct {
	ID         string
	Extensions []string
	grammar    func() unsafe.Pointer

	// Node kinds that declare a function or method, with their base kind.
	declKinds map[string]DeclarationKind
	// Owner node kinds (through their body node) that turn a function into a method.
	methodOwners map[string]bool
	// Owner node kinds whose member functions are not declarations at all.
	excludedOwners map[string]bool
}

var jsDeclKinds = map[string]DeclarationKind{
	"function_declaration":           KindFunction,
	"generator_function_declaration": KindFunction,
	"method_definition":              KindMethod,
}

var languages = map[string]LanguageSpec{
	// Trait default methods are not impl methods; only impl blocks own methods.
	"rust": {
		ID:             "rust",
		Extensions:     []string{".rs"},
		grammar:        tree_sitter_rust.Language,
		declKinds:      map[string]DeclarationKind{"function_item": KindFunction},
		methodOwners:   map[string]bool{"impl_item": true},
		excludedOwners: map[string]bool{"trait_item": true},
	},
	"go": {
		ID:         "go",
		Extensions: []string{".go"},
		grammar:    tree_sitter_go.Language,
		declKinds: map[string]DeclarationKind{
			"function_declaration": KindFunction,
			"method_declaration":   KindMethod,
		},
	},
	"python": {
		ID:           "python",
		Extensions:   []string{".py"},
		grammar:      tree_sitter_python.Language,
		declKinds:    map[string]DeclarationKind{"function_definition": KindFunction},
		methodOwners: map[string]bool{"class_definition": true},
	},
	"java": {
		ID:         "java",
		Extensions: []string{".java"},
		grammar:    tree_sitter_java.Language,
		declKinds:  map[string]DeclarationKind{"method_declaration": KindMethod},
	},
	"javascript": {
		ID:         "javascript",
		Extensions: []string{".js", ".mjs", ".cjs", ".jsx"},
		grammar:    tree_sitter_javascript.Language,
		declKinds:  jsDeclKinds,
	},
	"typescript": {
		ID:         "typescript",
		Extensions: []string{".ts", ".mts", ".cts"},
		grammar:    tree_sitter_typescript.LanguageTypescript,
		declKinds:  jsDeclKinds,
	},
	"tsx": {
		ID:         "tsx",
		Extensions: []string{".tsx"},
		grammar:    tree_sitter_typescript.LanguageTSX,
		declKinds:  jsDeclKinds,
	},
}

// LookupLanguage returns the spec registered under id.
func LookupLanguage(id string) (LanguageSpec, bool) {
	spec, ok := languages[id]
	return spec, ok
}

// LanguageIDs lists every supported language, sorted.
func LanguageIDs() []string {
	ids := make([]string, 0, len(languages))
	for id := range languages {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
