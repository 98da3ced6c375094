package parser

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// Body nodes sit between a declaration and the construct that owns it.
var bodyKinds = map[string]bool{
	"declaration_list": true, // rust impl/trait/mod
	"block":            true, // rust fn body, python class/def body
	"class_body":       true, // java, js, ts
}

// Wrappers that hide the real parent of a declaration.
var wrapperKinds = map[string]bool{
	"decorated_definition": true, // python
}

func newDeclarationEngine(spec LanguageSpec) *ExtractorEngine {
	handlers := make(map[string]NodeHandler, len(spec.declKinds))
	for nodeKind, base := range spec.declKinds {
		handlers[nodeKind] = func(ctx *ExtractionContext, node *sitter.Node) {
			owner := ownerKind(node)
			if spec.excludedOwners[owner] {
				return
			}
			kind := base
			if spec.methodOwners[owner] {
				kind = KindMethod
			}
			name := strings.TrimSpace(ctx.Text(node.ChildByFieldName("name")))
			if name == "" {
				return
			}
			ctx.File.Declarations = append(ctx.File.Declarations, Declaration{
				Name:     name,
				Kind:     kind,
				Location: ctx.Location(node),
			})
		}
	}
	return NewExtractorEngine(handlers)
}

// ownerKind returns the kind of the construct a declaration is a member of,
// e.g. "impl_item" for a Rust method, or "" for a top-level declaration.
func ownerKind(node *sitter.Node) string {
	parent := node.Parent()
	for parent != nil && wrapperKinds[parent.Kind()] {
		parent = parent.Parent()
	}
	if parent == nil || !bodyKinds[parent.Kind()] {
		return ""
	}
	owner := parent.Parent()
	if owner == nil {
		return ""
	}
	return owner.Kind()
}

// firstErrorNode finds the first ERROR or MISSING node, descending only into
// subtrees that report an error.
func firstErrorNode(node *sitter.Node) *sitter.Node {
	if node == nil {
		return nil
	}
	if node.IsError() || node.IsMissing() {
		return node
	}
	if !node.HasError() {
		return nil
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		if found := firstErrorNode(node.Child(i)); found != nil {
			return found
		}
	}
	return node
}
