package confirm

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/altinukshini/kbsearch/internal/ui"
)

// ResultMsg carries the user's answer. Target is whatever the dialog was
// asked about, e.g. a cache key.
type ResultMsg struct {
	Confirmed bool
	Action    string
	Target    string
}

// Model is a yes/no dialog. It defaults to "No".
type Model struct {
	Title   string
	Message string
	Action  string
	Target  string

	active bool
	yes    bool
}

func New(title, message, action, target string) Model {
	return Model{
		Title:   title,
		Message: message,
		Action:  action,
		Target:  target,
		active:  true,
	}
}

func (m Model) IsActive() bool { return m.active }

func (m Model) Init() tea.Cmd { return nil }

func (m Model) answer(yes bool) (Model, tea.Cmd) {
	m.active = false
	result := ResultMsg{Confirmed: yes, Action: m.Action, Target: m.Target}
	return m, func() tea.Msg { return result }
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !m.active || !ok {
		return m, nil
	}

	switch keyMsg.String() {
	case "y", "Y":
		return m.answer(true)
	case "n", "N", "esc":
		return m.answer(false)
	case "enter":
		return m.answer(m.yes)
	case "tab", "left", "right", "h", "l":
		m.yes = !m.yes
	}
	return m, nil
}

func (m Model) View() string {
	if !m.active {
		return ""
	}

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ui.ColorWarning).
		Padding(1, 2).
		Width(50)

	title := lipgloss.NewStyle().Bold(true).Foreground(ui.ColorWarning).Render(m.Title)

	button := lipgloss.NewStyle().Padding(0, 1)
	yes, no := button.Foreground(ui.ColorMuted), button.Foreground(ui.ColorMuted)
	if m.yes {
		yes = button.Bold(true).Background(ui.ColorSuccess).Foreground(ui.ColorLight)
	} else {
		no = button.Bold(true).Background(ui.ColorFailure).Foreground(ui.ColorLight)
	}

	return box.Render(fmt.Sprintf("%s\n\n%s\n\n%s  %s\n\ny/n to confirm, esc to cancel",
		title, m.Message, yes.Render("Yes"), no.Render("No")))
}
