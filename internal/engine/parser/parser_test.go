package parser

import (
	"testing"

	"uncheckedscan/internal/core/errors"
)

func newTestParser(t *testing.T, langs ...string) *Parser {
	t.Helper()
	loader, err := NewGrammarLoader(langs)
	if err != nil {
		t.Fatal(err)
	}
	return NewParser(loader)
}

func declKinds(f *File) map[string]DeclarationKind {
	out := make(map[string]DeclarationKind, len(f.Declarations))
	for _, d := range f.Declarations {
		out[d.Name] = d.Kind
	}
	return out
}

func TestRustDeclarations(t *testing.T) {
	p := newTestParser(t, "rust")

	code := `
pub unsafe fn push_unchecked(v: &mut Vec<u8>, b: u8) {}

pub struct Stack<T> { items: Vec<T> }

impl<T> Stack<T> {
    pub unsafe fn pop_unchecked(&mut self) -> T { self.items.pop().unwrap() }
    pub fn pop(&mut self) -> Option<T> { self.items.pop() }
}

pub trait Get {
    fn get_unchecked(&self) -> u8 { 0 }
    fn required_unchecked(&self);
}

mod inner {
    pub fn deep_unchecked() {
        fn nested_unchecked() {}
        struct Local;
        impl Local { fn local_unchecked(&self) {} }
    }
}

extern "C" {
    fn ffi_unchecked();
}

macro_rules! gen {
    () => { fn macro_unchecked() {} };
}
`
	file, err := p.ParseFile("lib.rs", []byte(code))
	if err != nil {
		t.Fatal(err)
	}
	if file.Language != "rust" {
		t.Fatalf("expected rust, got %s", file.Language)
	}

	got := declKinds(file)
	want := map[string]DeclarationKind{
		"push_unchecked":   KindFunction,
		"pop_unchecked":    KindMethod,
		"pop":              KindMethod,
		"deep_unchecked":   KindFunction,
		"nested_unchecked": KindFunction,
		"local_unchecked":  KindMethod,
	}
	for name, kind := range want {
		gotKind, ok := got[name]
		if !ok {
			t.Errorf("expected declaration %s", name)
			continue
		}
		if gotKind != kind {
			t.Errorf("%s: expected %s, got %s", name, kind, gotKind)
		}
	}
	for _, absent := range []string{"get_unchecked", "required_unchecked", "ffi_unchecked", "macro_unchecked"} {
		if _, ok := got[absent]; ok {
			t.Errorf("did not expect %s to be a declaration", absent)
		}
	}
	if len(file.Declarations) != len(want) {
		t.Errorf("expected %d declarations, got %d: %v", len(want), len(file.Declarations), file.Names())
	}
}

func TestRustDeclarationLocation(t *testing.T) {
	p := newTestParser(t, "rust")
	file, err := p.ParseFile("a.rs", []byte("\n\n    fn x_unchecked() {}\n"))
	if err != nil {
		t.Fatal(err)
	}
	if len(file.Declarations) != 1 {
		t.Fatalf("expected 1 declaration, got %d", len(file.Declarations))
	}
	loc := file.Declarations[0].Location
	if loc.File != "a.rs" || loc.Line != 3 || loc.Column != 5 {
		t.Errorf("unexpected location %+v", loc)
	}
}

func TestParseFile_SyntaxError(t *testing.T) {
	p := newTestParser(t, "rust")
	_, err := p.ParseFile("broken.rs", []byte("fn broken_unchecked( {\n"))
	if err == nil {
		t.Fatal("expected parse error")
	}
	if !errors.IsCode(err, errors.CodeParse) {
		t.Fatalf("expected CodeParse, got %v", err)
	}
	if errors.PathOf(err) != "broken.rs" {
		t.Errorf("expected error to name broken.rs, got %v", err)
	}
}

func TestParseFile_Unsupported(t *testing.T) {
	p := newTestParser(t, "rust")
	_, err := p.ParseFile("main.go", []byte("package main"))
	if !errors.IsCode(err, errors.CodeNotSupported) {
		t.Fatalf("expected CodeNotSupported, got %v", err)
	}
	if p.IsSupportedPath("main.go") {
		t.Error("go must not be supported when only rust is loaded")
	}
	if !p.IsSupportedPath("src/LIB.RS") {
		t.Error("extension matching must be case-insensitive")
	}
}

func TestOtherLanguageDeclarations(t *testing.T) {
	p := newTestParser(t, "go", "python", "java", "javascript", "typescript")

	tests := []struct {
		name string
		path string
		code string
		want map[string]DeclarationKind
	}{
		{
			name: "go",
			path: "buf.go",
			code: "package buf\ntype B struct{}\nfunc (b *B) ReadUnchecked() {}\nfunc read_unchecked() {}\n",
			want: map[string]DeclarationKind{"ReadUnchecked": KindMethod, "read_unchecked": KindFunction},
		},
		{
			name: "python",
			path: "buf.py",
			code: "def read_unchecked():\n    pass\n\nclass B:\n    @staticmethod\n    def peek_unchecked():\n        pass\n    def peek(self):\n        pass\n",
			want: map[string]DeclarationKind{"read_unchecked": KindFunction, "peek_unchecked": KindMethod, "peek": KindMethod},
		},
		{
			name: "java",
			path: "Buf.java",
			code: "class Buf { int get_unchecked(int i) { return i; } int get(int i) { return i; } }",
			want: map[string]DeclarationKind{"get_unchecked": KindMethod, "get": KindMethod},
		},
		{
			name: "javascript",
			path: "buf.js",
			code: "function at_unchecked(i) { return i }\nclass Buf { at(i) { return i } }\n",
			want: map[string]DeclarationKind{"at_unchecked": KindFunction, "at": KindMethod},
		},
		{
			name: "typescript",
			path: "buf.ts",
			code: "export function at_unchecked(i: number): number { return i }\n",
			want: map[string]DeclarationKind{"at_unchecked": KindFunction},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			file, err := p.ParseFile(tc.path, []byte(tc.code))
			if err != nil {
				t.Fatal(err)
			}
			if file.Language != tc.name {
				t.Fatalf("expected language %s, got %s", tc.name, file.Language)
			}
			got := declKinds(file)
			for name, kind := range tc.want {
				if gotKind, ok := got[name]; !ok || gotKind != kind {
					t.Errorf("%s: expected %s, got %v (present=%v)", name, kind, gotKind, ok)
				}
			}
		})
	}
}

func TestNewGrammarLoader(t *testing.T) {
	if _, err := NewGrammarLoader(nil); err == nil {
		t.Error("expected error when no language is enabled")
	}
	if _, err := NewGrammarLoader([]string{"cobol"}); err == nil {
		t.Error("expected error for unsupported language")
	}

	loader, err := NewGrammarLoader([]string{"rust", "RUST", "typescript"})
	if err != nil {
		t.Fatal(err)
	}
	if got := loader.Languages(); len(got) != 2 {
		t.Errorf("expected duplicates to collapse, got %v", got)
	}
	exts := loader.SupportedExtensions()
	if len(exts) != 4 || exts[0] != ".cts" || exts[3] != ".ts" {
		t.Errorf("unexpected extensions %v", exts)
	}
}

func TestFileNames(t *testing.T) {
	f := &File{Declarations: []Declaration{{Name: "b"}, {Name: "a"}, {Name: "b"}}}
	names := f.Names()
	if len(names) != 2 || names[0] != "a" || names[1] != "b" {
		t.Errorf("unexpected names %v", names)
	}
	if !f.Declares("a") || f.Declares("c") {
		t.Error("Declares returned the wrong answer")
	}
}

func TestParserClose(t *testing.T) {
	p := newTestParser(t, "rust")
	if _, err := p.ParseFile("lib.rs", []byte("fn get_unchecked() {}\n")); err != nil {
		t.Fatal(err)
	}

	p.Close()
	if idle := p.pools["rust"].Idle(); idle != 0 {
		t.Fatalf("expected Close to release idle parsers, %d left", idle)
	}
	if _, err := p.ParseFile("lib.rs", []byte("fn get() {}\n")); err != nil {
		t.Fatalf("parsing after Close should still work: %v", err)
	}
}
