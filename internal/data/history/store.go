package history

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

const (
	driverName  = "sqlite"
	maxAttempts = 5
)

// Store persists audit runs in a local sqlite database.
type Store struct {
	path string
	db   *sql.DB
	mu   sync.Mutex
}

func Open(path string) (*Store, error) {
	cleanPath := strings.TrimSpace(path)
	if cleanPath == "" {
		return nil, fmt.Errorf("history path must not be empty")
	}
	if info, err := os.Stat(cleanPath); err == nil && info.IsDir() {
		return nil, fmt.Errorf("history path %q is a directory, expected file", cleanPath)
	}

	dir := filepath.Dir(cleanPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create history directory %q: %w", dir, err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(2000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)", cleanPath)
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite history %q: %w", cleanPath, err)
	}
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite history %q: %w", cleanPath, err)
	}
	if err := EnsureSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize sqlite schema %q: %w", cleanPath, err)
	}

	return &Store{path: cleanPath, db: db}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// SaveRun stores run and its entries in one transaction.
func (s *Store) SaveRun(run Run, entries []Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if run.ID == "" {
		return fmt.Errorf("run id must not be empty")
	}
	run.ProjectKey = normalizeProject(run.ProjectKey)
	if run.Timestamp.IsZero() {
		run.Timestamp = time.Now().UTC()
	}
	if run.SchemaVersion == 0 {
		run.SchemaVersion = SchemaVersion
	}
	if run.SchemaVersion != SchemaVersion {
		return fmt.Errorf("unsupported run schema version %d", run.SchemaVersion)
	}

	return s.withRetry("save run", func() error {
		tx, err := s.db.Begin()
		if err != nil {
			return err
		}
		_, err = tx.Exec(`
INSERT INTO runs (
  run_id, project_key, schema_version, ts_utc, marker, roots,
  file_count, failed_count, marked_count, paired_count, absent_count, duration_ms
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			run.ID,
			run.ProjectKey,
			run.SchemaVersion,
			run.Timestamp.UTC().Format(time.RFC3339Nano),
			run.Marker,
			strings.Join(run.Roots, "\n"),
			run.FileCount,
			run.FailedCount,
			run.MarkedCount,
			run.PairedCount,
			run.AbsentCount,
			run.Duration.Milliseconds(),
		)
		if err != nil {
			_ = tx.Rollback()
			return err
		}

		stmt, err := tx.Prepare(`INSERT INTO run_entries (run_id, path, name, counterpart) VALUES (?, ?, ?, ?)`)
		if err != nil {
			_ = tx.Rollback()
			return err
		}
		defer stmt.Close()
		for _, e := range entries {
			if _, err := stmt.Exec(run.ID, e.Path, e.Name, e.Counterpart); err != nil {
				_ = tx.Rollback()
				return err
			}
		}
		return tx.Commit()
	})
}

// LoadRuns returns the runs of a project at or after since, oldest first.
func (s *Store) LoadRuns(projectKey string, since time.Time) ([]Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := runSelect + " WHERE project_key = ?"
	args := []any{normalizeProject(projectKey)}
	if !since.IsZero() {
		query += " AND ts_utc >= ?"
		args = append(args, since.UTC().Format(time.RFC3339Nano))
	}
	query += " ORDER BY ts_utc ASC, run_id ASC"

	var rows *sql.Rows
	err := s.withRetry("load runs", func() error {
		var qErr error
		rows, qErr = s.db.Query(query, args...)
		return qErr
	})
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs := make([]Run, 0)
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate run rows: %w", err)
	}
	return runs, nil
}

// LatestRun returns the most recent run of a project other than excludeID.
// ok is false when there is none.
func (s *Store) LatestRun(projectKey, excludeID string) (run Run, ok bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := runSelect + " WHERE project_key = ? AND run_id <> ? ORDER BY ts_utc DESC, run_id DESC LIMIT 1"
	var rows *sql.Rows
	err = s.withRetry("load latest run", func() error {
		var qErr error
		rows, qErr = s.db.Query(query, normalizeProject(projectKey), excludeID)
		return qErr
	})
	if err != nil {
		return Run{}, false, err
	}
	defer rows.Close()

	if !rows.Next() {
		return Run{}, false, rows.Err()
	}
	run, err = scanRun(rows)
	if err != nil {
		return Run{}, false, err
	}
	return run, true, nil
}

// LoadEntries returns the stored rows of a run ordered by path and name.
func (s *Store) LoadEntries(runID string) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var rows *sql.Rows
	err := s.withRetry("load entries", func() error {
		var qErr error
		rows, qErr = s.db.Query(`SELECT path, name, counterpart FROM run_entries WHERE run_id = ? ORDER BY path ASC, name ASC`, runID)
		return qErr
	})
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]Entry, 0)
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Path, &e.Name, &e.Counterpart); err != nil {
			return nil, fmt.Errorf("scan entry row: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entry rows: %w", err)
	}
	return entries, nil
}

const runSelect = `
SELECT
  run_id, project_key, schema_version, ts_utc, marker, roots,
  file_count, failed_count, marked_count, paired_count, absent_count, duration_ms
FROM runs`

func scanRun(rows *sql.Rows) (Run, error) {
	var (
		run        Run
		tsRaw      string
		rootsRaw   string
		durationMS int64
	)
	if err := rows.Scan(
		&run.ID,
		&run.ProjectKey,
		&run.SchemaVersion,
		&tsRaw,
		&run.Marker,
		&rootsRaw,
		&run.FileCount,
		&run.FailedCount,
		&run.MarkedCount,
		&run.PairedCount,
		&run.AbsentCount,
		&durationMS,
	); err != nil {
		return Run{}, fmt.Errorf("scan run row: %w", err)
	}

	ts, err := time.Parse(time.RFC3339Nano, tsRaw)
	if err != nil {
		return Run{}, fmt.Errorf("parse run timestamp %q: %w", tsRaw, err)
	}
	run.Timestamp = ts.UTC()
	if rootsRaw != "" {
		run.Roots = strings.Split(rootsRaw, "\n")
	}
	run.Duration = time.Duration(durationMS) * time.Millisecond
	return run, nil
}

func (s *Store) withRetry(op string, fn func() error) error {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err
		if !isLockError(err) || attempt == maxAttempts {
			break
		}
		time.Sleep(time.Duration(attempt*25) * time.Millisecond)
	}
	return fmt.Errorf("%s: %w", op, lastErr)
}

func isLockError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "database is locked") || strings.Contains(msg, "busy")
}

func IsCorruptError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "malformed") || strings.Contains(msg, "not a database") || errors.Is(err, os.ErrInvalid)
}
