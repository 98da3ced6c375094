package report

import (
	"fmt"
	"strings"
	"time"

	"uncheckedscan/internal/engine/audit"

	"github.com/charmbracelet/lipgloss"
)

var (
	headingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#3B82F6")).
			Bold(true)

	pairedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981")).
			Bold(true)

	absentStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FBBF24")).
			Bold(true)

	failedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F87171")).
			Bold(true)

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#64748B")).
			Italic(true)
)

// Summary renders a short, styled overview of a run for the terminal.
func Summary(res *audit.Result) string {
	s := res.Stats
	lines := []string{
		headingStyle.Render(fmt.Sprintf("Marker %q", res.Marker)),
		fmt.Sprintf("  files scanned  %d", s.FilesScanned),
		fmt.Sprintf("  marked         %d", s.Marked),
		"  paired         " + pairedStyle.Render(fmt.Sprint(s.Paired)),
		"  without safe   " + absentStyle.Render(fmt.Sprint(s.Absent)),
	}
	if s.FilesFailed > 0 {
		lines = append(lines, "  skipped files  "+failedStyle.Render(fmt.Sprint(s.FilesFailed)))
	}
	lines = append(lines, mutedStyle.Render(fmt.Sprintf("  collect %s, resolve %s",
		s.CollectDuration.Round(time.Millisecond), s.ResolveDuration.Round(time.Millisecond))))
	return strings.Join(lines, "\n")
}
