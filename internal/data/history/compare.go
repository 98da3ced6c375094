package history

import (
	"sort"

	"uncheckedscan/internal/engine/audit"
)

// Delta describes how the set of unpaired entries moved between two runs.
type Delta struct {
	NewlyAbsent []Entry // absent now, paired or missing before
	Resolved    []Entry // absent before, paired now
	Removed     []Entry // present before, gone now
}

func (d Delta) Empty() bool {
	return len(d.NewlyAbsent) == 0 && len(d.Resolved) == 0 && len(d.Removed) == 0
}

type entryKey struct{ path, name string }

// Compare computes the Delta from prev to cur. Results are ordered by path
// and name.
func Compare(prev, cur []Entry) Delta {
	before := make(map[entryKey]Entry, len(prev))
	for _, e := range prev {
		before[entryKey{e.Path, e.Name}] = e
	}

	var d Delta
	seen := make(map[entryKey]bool, len(cur))
	for _, e := range cur {
		k := entryKey{e.Path, e.Name}
		seen[k] = true
		old, existed := before[k]
		switch {
		case e.Counterpart == audit.Absent && (!existed || old.Counterpart != audit.Absent):
			d.NewlyAbsent = append(d.NewlyAbsent, e)
		case e.Counterpart != audit.Absent && existed && old.Counterpart == audit.Absent:
			d.Resolved = append(d.Resolved, e)
		}
	}
	for _, e := range prev {
		if !seen[entryKey{e.Path, e.Name}] {
			d.Removed = append(d.Removed, e)
		}
	}

	sortEntries(d.NewlyAbsent)
	sortEntries(d.Resolved)
	sortEntries(d.Removed)
	return d
}

func sortEntries(entries []Entry) {
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Path != entries[j].Path {
			return entries[i].Path < entries[j].Path
		}
		return entries[i].Name < entries[j].Name
	})
}
