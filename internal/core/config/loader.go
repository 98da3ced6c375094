package config

import (
	"fmt"
	"os"
	"strings"

	"uncheckedscan/internal/engine/parser"

	"github.com/BurntSushi/toml"
	"github.com/gobwas/glob"
)

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	meta, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return nil, err
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}

	applyDefaults(&cfg, meta.IsDefined("performance", "cache_entries"))
	ApplyEnvOverrides(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyDefaults fills unset fields. An explicit cache_entries = 0 disables
// the cache, so the cache default only applies when the key is absent.
func applyDefaults(cfg *Config, cacheEntriesSet bool) {
	if len(cfg.Roots) == 0 {
		cfg.Roots = []string{DefaultRoot}
	}
	if cfg.Marker == "" {
		cfg.Marker = DefaultMarker
	}
	if len(cfg.Languages) == 0 {
		cfg.Languages = []string{"rust"}
	}
	if cfg.Exclude.Dirs == nil {
		cfg.Exclude.Dirs = []string{".git", "target"}
	}
	if strings.TrimSpace(cfg.Output.Report) == "" {
		cfg.Output.Report = DefaultReportPath
	}
	if !cacheEntriesSet && cfg.Performance.CacheEntries == 0 {
		cfg.Performance.CacheEntries = DefaultCacheSize
	}
	if strings.TrimSpace(cfg.History.Project) == "" {
		cfg.History.Project = "default"
	}
}

// Validate checks a fully defaulted config. Flag overrides are validated again
// by the caller after they have been applied.
func Validate(cfg *Config) error {
	if strings.TrimSpace(cfg.Marker) == "" {
		return fmt.Errorf("marker must not be empty")
	}
	for i, root := range cfg.Roots {
		if strings.TrimSpace(root) == "" {
			return fmt.Errorf("roots[%d] must not be empty", i)
		}
	}
	if err := validateLanguages(cfg.Languages); err != nil {
		return err
	}
	if err := validatePatterns("exclude.dirs", cfg.Exclude.Dirs); err != nil {
		return err
	}
	if err := validatePatterns("exclude.files", cfg.Exclude.Files); err != nil {
		return err
	}
	if cfg.Performance.Workers < 0 {
		return fmt.Errorf("performance.workers must be >= 0, got %d", cfg.Performance.Workers)
	}
	if cfg.Performance.MaxFilesPerSecond < 0 {
		return fmt.Errorf("performance.max_files_per_second must be >= 0, got %v", cfg.Performance.MaxFilesPerSecond)
	}
	if cfg.Performance.CacheEntries < 0 {
		return fmt.Errorf("performance.cache_entries must be >= 0, got %d", cfg.Performance.CacheEntries)
	}
	return nil
}

func validateLanguages(langs []string) error {
	seen := make(map[string]bool, len(langs))
	for _, lang := range langs {
		id := strings.ToLower(strings.TrimSpace(lang))
		if _, ok := parser.LookupLanguage(id); !ok {
			return fmt.Errorf("unsupported language %q; supported: %s", lang, strings.Join(parser.LanguageIDs(), ", "))
		}
		if seen[id] {
			return fmt.Errorf("language %q listed more than once", lang)
		}
		seen[id] = true
	}
	return nil
}

func validatePatterns(field string, patterns []string) error {
	for i, p := range patterns {
		if _, err := glob.Compile(p); err != nil {
			return fmt.Errorf("%s[%d]: invalid pattern %q: %w", field, i, p, err)
		}
	}
	return nil
}
