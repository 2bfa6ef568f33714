package issueview

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/altinukshini/kbsearch/internal/model"
	"github.com/altinukshini/kbsearch/internal/search"
)

// Model renders one issue, or the dashboard, as markdown.
type Model struct {
	viewport viewport.Model
	style    string
	renderer *glamour.TermRenderer
	markdown string

	categoryKey string
	index       int
	hasIssue    bool

	width  int
	height int
	ready  bool
}

// New returns an empty issue pane. style is a glamour standard style name,
// or "auto" to follow the terminal background.
func New(style string) Model {
	if style == "" {
		style = "auto"
	}
	return Model{style: style, index: -1}
}

// Show renders the issue at index in categoryKey. It returns false, and shows
// a notice, when the issue no longer exists.
func (m *Model) Show(kb *model.KnowledgeBase, categoryKey string, index int) bool {
	issue, ok := kb.Issue(categoryKey, index)
	if !ok {
		m.hasIssue = false
		m.setMarkdown(fmt.Sprintf("# Issue not available\n\nIssue %d of category `%s` is no longer in the knowledge base.", index, categoryKey))
		return false
	}

	cat, _ := kb.Category(categoryKey)
	m.categoryKey = categoryKey
	m.index = index
	m.hasIssue = true
	m.setMarkdown(IssueMarkdown(cat.DisplayTitle(), *issue))
	return true
}

// ShowDashboard renders the dashboard category's description.
func (m *Model) ShowDashboard(kb *model.KnowledgeBase) {
	m.hasIssue = false
	m.categoryKey = ""
	m.index = -1

	md := "# Knowledge base\n\nPress **ctrl+f** or **/** to search issues and error codes."
	if dash, ok := kb.Category(model.DashboardKey); ok && dash.Description != "" {
		md = dash.Description
	}
	m.setMarkdown(md)
}

// Current returns the issue on screen.
func (m Model) Current() (string, int, bool) {
	return m.categoryKey, m.index, m.hasIssue
}

// IssueMarkdown formats an issue for the detail pane.
func IssueMarkdown(category string, issue model.Issue) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", issue.Title)
	fmt.Fprintf(&b, "**Category:** %s  \n", category)
	fmt.Fprintf(&b, "**Severity:** %s  \n", issue.Severity)
	fmt.Fprintf(&b, "**Error code:** `%s`\n\n", search.ErrorCodeOrNA(issue.ErrorCode))
	b.WriteString(issue.Content)
	b.WriteString("\n")
	return b.String()
}

func (m *Model) setMarkdown(md string) {
	m.markdown = md
	if m.ready {
		m.viewport.SetContent(m.render())
		m.viewport.GotoTop()
	}
}

func (m *Model) rebuildRenderer() {
	wrap := m.width - 4
	if wrap < 20 {
		wrap = 20
	}
	opts := []glamour.TermRendererOption{glamour.WithWordWrap(wrap)}
	if m.style == "auto" {
		opts = append(opts, glamour.WithAutoStyle())
	} else {
		opts = append(opts, glamour.WithStandardStyle(m.style))
	}
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		m.renderer = nil
		return
	}
	m.renderer = r
}

func (m Model) render() string {
	if m.renderer == nil {
		return m.markdown
	}
	out, err := m.renderer.Render(m.markdown)
	if err != nil {
		return m.markdown
	}
	return out
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.WindowSizeMsg); ok {
		resized := msg.Width != m.width
		m.width = msg.Width
		m.height = msg.Height
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height)
			m.ready = true
			resized = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height
		}
		if resized {
			m.rebuildRenderer()
			m.viewport.SetContent(m.render())
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if !m.ready {
		return ""
	}
	return m.viewport.View()
}
