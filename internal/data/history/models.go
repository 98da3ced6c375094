package history

import (
	"strings"
	"time"

	"uncheckedscan/internal/engine/audit"

	"github.com/google/uuid"
)

const SchemaVersion = 2

const defaultProject = "default"

// Run is one persisted audit run.
type Run struct {
	ID            string        `json:"id"`
	ProjectKey    string        `json:"project_key"`
	SchemaVersion int           `json:"schema_version"`
	Timestamp     time.Time     `json:"timestamp"`
	Marker        string        `json:"marker"`
	Roots         []string      `json:"roots"`
	FileCount     int           `json:"file_count"`
	FailedCount   int           `json:"failed_count"`
	MarkedCount   int           `json:"marked_count"`
	PairedCount   int           `json:"paired_count"`
	AbsentCount   int           `json:"absent_count"`
	Duration      time.Duration `json:"duration"`
}

// Entry is one report row stored with its run.
type Entry struct {
	Path        string `json:"path"`
	Name        string `json:"name"`
	Counterpart string `json:"counterpart"`
}

// NewRun builds a Run and its entries from an audit result, assigning a fresh
// run ID.
func NewRun(projectKey string, roots []string, res *audit.Result) (Run, []Entry) {
	run := Run{
		ID:            uuid.NewString(),
		ProjectKey:    normalizeProject(projectKey),
		SchemaVersion: SchemaVersion,
		Timestamp:     time.Now().UTC(),
		Marker:        res.Marker,
		Roots:         append([]string(nil), roots...),
		FileCount:     res.Stats.FilesScanned,
		FailedCount:   len(res.Failures),
		MarkedCount:   res.Stats.Marked,
		PairedCount:   res.Stats.Paired,
		AbsentCount:   res.Stats.Absent,
		Duration:      res.Stats.CollectDuration + res.Stats.ResolveDuration,
	}
	entries := make([]Entry, 0, len(res.Results))
	for _, r := range res.Results {
		entries = append(entries, Entry{Path: r.Path, Name: r.Name, Counterpart: r.CounterpartOrAbsent()})
	}
	return run, entries
}

func normalizeProject(key string) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return defaultProject
	}
	return key
}
