// Package browse is an interactive terminal browser over the results of one
// audit run.
package browse

import (
	"fmt"

	"uncheckedscan/internal/data/history"
	"uncheckedscan/internal/engine/audit"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			MarginLeft(2).
			Foreground(lipgloss.Color("#3B82F6")).
			Bold(true).
			Render

	docStyle = lipgloss.NewStyle().Margin(1, 2)

	absentStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FBBF24")).
			Bold(true)

	failureStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F87171")).
			Bold(true)

	pairedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981")).
			Bold(true)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#64748B")).
			Italic(true)
)

type item struct {
	title, desc string
}

func (i item) Title() string       { return i.title }
func (i item) Description() string { return i.desc }
func (i item) FilterValue() string { return i.title + i.desc }

type panelMode int

const (
	panelAbsent panelMode = iota
	panelPaired
	panelFailures
	panelCount
)

func (p panelMode) String() string {
	switch p {
	case panelAbsent:
		return "without safe version"
	case panelPaired:
		return "paired"
	case panelFailures:
		return "skipped files"
	default:
		return "unknown"
	}
}

type model struct {
	lists     [panelCount]list.Model
	mode      panelMode
	result    *audit.Result
	delta     *history.Delta
	showDelta bool
}

func newList(title string, items []list.Item) list.Model {
	l := list.New(items, list.NewDefaultDelegate(), 0, 0)
	l.Title = title
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	return l
}

func initialModel(res *audit.Result, delta *history.Delta) model {
	var absent, paired, failures []list.Item
	for _, r := range res.Results {
		if r.Found {
			paired = append(paired, item{title: r.Name, desc: fmt.Sprintf("%s -> %s", r.Path, r.Counterpart)})
			continue
		}
		absent = append(absent, item{title: r.Name, desc: r.Path})
	}
	for _, f := range res.Failures {
		failures = append(failures, item{title: f.Path, desc: fmt.Sprintf("%s: %v", f.Phase, f.Err)})
	}

	m := model{result: res, delta: delta, mode: panelAbsent}
	m.lists[panelAbsent] = newList("Without safe version", absent)
	m.lists[panelPaired] = newList("Paired", paired)
	m.lists[panelFailures] = newList("Skipped files", failures)
	return m
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return handleKeyActions(msg, m)
	case tea.WindowSizeMsg:
		h, v := docStyle.GetFrameSize()
		width := msg.Width - h
		height := msg.Height - v - 6
		if height < 5 {
			height = 5
		}
		for i := range m.lists {
			m.lists[i].SetSize(width, height)
		}
	}

	var cmd tea.Cmd
	m.lists[m.mode], cmd = m.lists[m.mode].Update(msg)
	return m, cmd
}

func handleKeyActions(msg tea.KeyMsg, m model) (tea.Model, tea.Cmd) {
	// Keys typed into an active filter belong to the list.
	if m.lists[m.mode].FilterState() != list.Filtering {
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "tab":
			m.mode = (m.mode + 1) % panelCount
			return m, nil
		case "shift+tab":
			m.mode = (m.mode + panelCount - 1) % panelCount
			return m, nil
		case "d":
			m.showDelta = !m.showDelta
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.lists[m.mode], cmd = m.lists[m.mode].Update(msg)
	return m, cmd
}

func (m model) View() string {
	header := fmt.Sprintf("%s\n%s\n", titleStyle(fmt.Sprintf("Unchecked audit (%s)", m.result.Marker)), renderStatus(m))
	body := m.lists[m.mode].View()
	if m.showDelta {
		body += "\n\n" + renderDelta(m.delta)
	}
	return docStyle.Render(header + "\n" + renderHelp(m) + "\n\n" + body)
}

// Run opens the browser and blocks until the user quits. delta may be nil
// when no earlier run is recorded.
func Run(res *audit.Result, delta *history.Delta) error {
	p := tea.NewProgram(initialModel(res, delta), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
