package audit

import (
	"sort"
	"strings"
	"sync"
)

// Absent is reported in place of a counterpart that is not declared.
const Absent = "None"

// MarkedEntry is a declaration whose name contains the marker.
type MarkedEntry struct {
	Path string
	Name string
}

// ResolutionResult pairs a MarkedEntry with its counterpart, if one exists in
// the same file.
type ResolutionResult struct {
	Path        string
	Name        string
	Counterpart string // empty when Found is false
	Found       bool
}

// CounterpartOrAbsent returns the counterpart name or Absent.
func (r ResolutionResult) CounterpartOrAbsent() string {
	if !r.Found {
		return Absent
	}
	return r.Counterpart
}

// Counterpart derives the checked name by removing every occurrence of marker.
func Counterpart(name, marker string) string {
	return strings.ReplaceAll(name, marker, "")
}

// MarkerSet is a concurrency-safe set of MarkedEntry values.
type MarkerSet struct {
	mu      sync.Mutex
	entries map[MarkedEntry]struct{}
}

func NewMarkerSet() *MarkerSet {
	return &MarkerSet{entries: make(map[MarkedEntry]struct{})}
}

// Add inserts entries, ignoring duplicates. Returns how many were new.
func (s *MarkerSet) Add(entries ...MarkedEntry) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	added := 0
	for _, e := range entries {
		if _, ok := s.entries[e]; ok {
			continue
		}
		s.entries[e] = struct{}{}
		added++
	}
	return added
}

func (s *MarkerSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Entries returns a snapshot ordered by path then name.
func (s *MarkerSet) Entries() []MarkedEntry {
	s.mu.Lock()
	out := make([]MarkedEntry, 0, len(s.entries))
	for e := range s.entries {
		out = append(out, e)
	}
	s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Path != out[j].Path {
			return out[i].Path < out[j].Path
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// ResultSet is a concurrency-safe set of ResolutionResult values keyed by the
// full (path, name, counterpart) triple.
type ResultSet struct {
	mu      sync.Mutex
	results map[ResolutionResult]struct{}
}

func NewResultSet() *ResultSet {
	return &ResultSet{results: make(map[ResolutionResult]struct{})}
}

func (s *ResultSet) Add(r ResolutionResult) {
	s.mu.Lock()
	s.results[r] = struct{}{}
	s.mu.Unlock()
}

func (s *ResultSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.results)
}

// Sorted returns the results ordered by path, name, then counterpart.
func (s *ResultSet) Sorted() []ResolutionResult {
	s.mu.Lock()
	out := make([]ResolutionResult, 0, len(s.results))
	for r := range s.results {
		out = append(out, r)
	}
	s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Path != b.Path {
			return a.Path < b.Path
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.CounterpartOrAbsent() < b.CounterpartOrAbsent()
	})
	return out
}
