package ports

import (
	"uncheckedscan/internal/data/history"
	"uncheckedscan/internal/engine/parser"
)

// CodeParser abstracts source parsing and language-file support checks.
type CodeParser interface {
	ParseFile(path string, content []byte) (*parser.File, error)
	GetLanguage(path string) string
	IsSupportedPath(filePath string) bool
	SupportedExtensions() []string
	Close()
}

// HistoryStore abstracts run persistence for delta reporting.
type HistoryStore interface {
	SaveRun(run history.Run, entries []history.Entry) error
	LatestRun(projectKey, excludeID string) (history.Run, bool, error)
	LoadEntries(runID string) ([]history.Entry, error)
	Close() error
}

// HistoryOpener opens the store at path.
type HistoryOpener func(path string) (HistoryStore, error)
