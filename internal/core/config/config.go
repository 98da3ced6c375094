package config

const (
	DefaultMarker     = "_unchecked"
	DefaultRoot       = "library"
	DefaultReportPath = "safe_version_results.txt"
	DefaultConfigFile = "uncheckedscan.toml"
	DefaultCacheSize  = 512
)

type Config struct {
	Roots       []string    `toml:"roots"`
	Marker      string      `toml:"marker"`
	Languages   []string    `toml:"languages"`
	FailFast    *bool       `toml:"fail_fast"`
	Exclude     Exclude     `toml:"exclude"`
	Output      Output      `toml:"output"`
	Performance Performance `toml:"performance"`
	History     History     `toml:"history"`
	Tracing     Tracing     `toml:"tracing"`
}

type Exclude struct {
	Dirs  []string `toml:"dirs"`
	Files []string `toml:"files"`
}

type Output struct {
	Report  string `toml:"report"`
	Metrics string `toml:"metrics"` // Prometheus textfile; empty disables
}

type Performance struct {
	Workers           int     `toml:"workers"` // 0 means GOMAXPROCS
	MaxFilesPerSecond float64 `toml:"max_files_per_second"`
	CacheEntries      int     `toml:"cache_entries"`
	DisableCache      bool    `toml:"disable_cache"`
}

type History struct {
	Path    string `toml:"path"` // sqlite file; empty disables
	Project string `toml:"project"`
}

type Tracing struct {
	Endpoint string `toml:"endpoint"` // OTLP gRPC collector; empty disables export
	Insecure bool   `toml:"insecure"`
}

// DefaultConfig returns the configuration used when no config file exists.
func DefaultConfig() *Config {
	cfg := &Config{}
	applyDefaults(cfg, false)
	return cfg
}

// StopOnError reports whether a single file failure aborts the run.
func (c *Config) StopOnError() bool {
	if c.FailFast == nil {
		return true
	}
	return *c.FailFast
}

// CacheSize returns the declaration cache capacity, 0 when disabled.
func (c *Config) CacheSize() int {
	if c.Performance.DisableCache {
		return 0
	}
	return c.Performance.CacheEntries
}
