package integration

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"uncheckedscan/internal/core/config"
	"uncheckedscan/internal/engine/audit"
	"uncheckedscan/internal/engine/parser"
	"uncheckedscan/internal/engine/scan"
	"uncheckedscan/internal/ui/report"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestFiles(t *testing.T, root string) {
	files := map[string]string{
		"core/src/slice.rs": `
pub struct Slice<T> { data: Vec<T> }

impl<T> Slice<T> {
    pub fn get(&self, i: usize) -> Option<&T> { self.data.get(i) }
    pub unsafe fn get_unchecked(&self, i: usize) -> &T { self.data.get_unchecked(i) }
    pub unsafe fn get_unchecked_mut(&mut self, i: usize) -> &mut T { self.data.get_unchecked_mut(i) }
}

pub trait Index {
    unsafe fn index_unchecked(&self) {}
}
`,
		"core/src/num.rs": `
pub fn add(a: u8, b: u8) -> Option<u8> { a.checked_add(b) }
pub unsafe fn add_unchecked(a: u8, b: u8) -> u8 { a.wrapping_add(b) }

macro_rules! make_fn {
    () => { fn macro_unchecked() {} };
}

extern "C" {
    fn ffi_unchecked();
}
`,
		"alloc/src/vec.rs": `
pub unsafe fn push_unchecked() {}

mod inner {
    fn helper() {
        fn shrink_unchecked() {}
        fn shrink() {}
    }
}
`,
		"alloc/target/debug/build.rs": "fn build_unchecked() {}\n",
		"alloc/src/README.md":         "fn doc_unchecked() {}\n",
	}
	for rel, content := range files {
		path := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

func writeConfig(t *testing.T, dir, root, reportPath string) string {
	path := filepath.Join(dir, "uncheckedscan.toml")
	content := fmt.Sprintf(`
roots = [%q]
marker = "_unchecked"
languages = ["rust"]

[exclude]
dirs = [".git", "target"]

[output]
report = %q

[performance]
workers = 4
cache_entries = 8
`, root, reportPath)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestFullPipelineIntegration(t *testing.T) {
	tmpDir := t.TempDir()
	root := filepath.Join(tmpDir, "library")
	createTestFiles(t, root)

	cfgPath := writeConfig(t, tmpDir, root, filepath.Join(tmpDir, "out", "safe_version_results.txt"))
	cfg, err := config.Load(cfgPath)
	require.NoError(t, err)
	assert.True(t, cfg.StopOnError())

	loader, err := parser.NewGrammarLoader(cfg.Languages)
	require.NoError(t, err)
	p := parser.NewParser(loader)

	walker, err := scan.NewWalker(scan.Options{
		Extensions:   p.SupportedExtensions(),
		ExcludeDirs:  cfg.Exclude.Dirs,
		ExcludeFiles: cfg.Exclude.Files,
	})
	require.NoError(t, err)

	auditor, err := audit.New(p, audit.Options{
		Marker:    cfg.Marker,
		Workers:   cfg.Performance.Workers,
		FailFast:  cfg.StopOnError(),
		CacheSize: cfg.CacheSize(),
	})
	require.NoError(t, err)

	res, err := auditor.Run(context.Background(), walker.Walk(cfg.Roots))
	require.NoError(t, err)

	vec := filepath.Join(root, "alloc/src/vec.rs")
	num := filepath.Join(root, "core/src/num.rs")
	slice := filepath.Join(root, "core/src/slice.rs")
	assert.Equal(t, []audit.ResolutionResult{
		{Path: vec, Name: "push_unchecked"},
		{Path: vec, Name: "shrink_unchecked", Counterpart: "shrink", Found: true},
		{Path: num, Name: "add_unchecked", Counterpart: "add", Found: true},
		{Path: slice, Name: "get_unchecked", Counterpart: "get", Found: true},
		{Path: slice, Name: "get_unchecked_mut"},
	}, res.Results)
	assert.Equal(t, 3, res.Stats.FilesScanned)

	require.NoError(t, report.WriteAtomic(cfg.Output.Report, report.Assemble(res.Results).Render()))
	data, err := os.ReadFile(cfg.Output.Report)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	require.Len(t, lines, 2+len(res.Results))
	for _, line := range lines[2:] {
		assert.Equal(t, len(lines[0]), len(line), "data rows match the header width")
	}
	assert.Equal(t, len(lines[0])-6, len(lines[1]))

	// A second run over the unchanged tree renders byte-identical output.
	again, err := auditor.Run(context.Background(), walker.Walk(cfg.Roots))
	require.NoError(t, err)
	assert.Equal(t, string(data), report.Assemble(again.Results).Render())
}
