package browse

import (
	"fmt"
	"strings"

	"uncheckedscan/internal/data/history"
)

func renderStatus(m model) string {
	s := m.result.Stats
	return fmt.Sprintf("%s | %s | %s | %s",
		statusStyle.Render(fmt.Sprintf("%d files", s.FilesScanned)),
		pairedStyle.Render(fmt.Sprintf("%d paired", s.Paired)),
		absentStyle.Render(fmt.Sprintf("%d without safe version", s.Absent)),
		failureStyle.Render(fmt.Sprintf("%d skipped", s.FilesFailed)))
}

func renderHelp(m model) string {
	return statusStyle.Render(fmt.Sprintf("Panel: %s | Keys: tab panel | / filter | d history delta | q quit", m.mode))
}

func renderDelta(d *history.Delta) string {
	if d == nil {
		return statusStyle.Render("History delta unavailable (set history.path to record runs).")
	}
	if d.Empty() {
		return statusStyle.Render("No change since the previous run.")
	}
	lines := []string{"Since previous run"}
	lines = append(lines, deltaSection("newly without safe version", d.NewlyAbsent)...)
	lines = append(lines, deltaSection("now paired", d.Resolved)...)
	lines = append(lines, deltaSection("removed", d.Removed)...)
	return strings.Join(lines, "\n")
}

func deltaSection(label string, entries []history.Entry) []string {
	if len(entries) == 0 {
		return nil
	}
	out := []string{fmt.Sprintf("  %s (%d):", label, len(entries))}
	for _, e := range entries {
		out = append(out, fmt.Sprintf("    %s %s", e.Path, e.Name))
	}
	return out
}
