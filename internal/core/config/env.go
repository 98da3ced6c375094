package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
)

// ApplyEnvOverrides applies environment variable overrides to the configuration.
// Pattern: UNCHECKEDSCAN_[SECTION]_[KEY] (e.g., UNCHECKEDSCAN_PERFORMANCE_WORKERS).
func ApplyEnvOverrides(cfg *Config) {
	setEnvString(&cfg.Marker, "UNCHECKEDSCAN_MARKER")
	setEnvString(&cfg.Output.Report, "UNCHECKEDSCAN_OUTPUT_REPORT")
	setEnvString(&cfg.Output.Metrics, "UNCHECKEDSCAN_OUTPUT_METRICS")

	setEnvInt(&cfg.Performance.Workers, "UNCHECKEDSCAN_PERFORMANCE_WORKERS")
	setEnvFloat64(&cfg.Performance.MaxFilesPerSecond, "UNCHECKEDSCAN_PERFORMANCE_MAX_FILES_PER_SECOND")
	setEnvBool(&cfg.Performance.DisableCache, "UNCHECKEDSCAN_PERFORMANCE_DISABLE_CACHE")

	setEnvString(&cfg.History.Path, "UNCHECKEDSCAN_HISTORY_PATH")
	setEnvString(&cfg.Tracing.Endpoint, "UNCHECKEDSCAN_TRACING_ENDPOINT")

	if val, ok := os.LookupEnv("UNCHECKEDSCAN_FAIL_FAST"); ok {
		if b, err := strconv.ParseBool(strings.ToLower(val)); err == nil {
			slog.Debug("applying env override", "key", "UNCHECKEDSCAN_FAIL_FAST", "value", val)
			cfg.FailFast = &b
		}
	}
}

func setEnvString(target *string, key string) {
	if val, ok := os.LookupEnv(key); ok {
		slog.Debug("applying env override", "key", key, "value", val)
		*target = val
	}
}

func setEnvInt(target *int, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(val); err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = i
		}
	}
}

func setEnvBool(target *bool, key string) {
	if val, ok := os.LookupEnv(key); ok {
		b, err := strconv.ParseBool(strings.ToLower(val))
		if err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = b
		}
	}
}

func setEnvFloat64(target *float64, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = f
		}
	}
}
