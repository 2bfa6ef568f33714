package browse

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/altinukshini/kbsearch/internal/model"
	"github.com/altinukshini/kbsearch/internal/ui"
)

// --- Custom delegate ---

type issueDelegate struct{}

func (d issueDelegate) Height() int                              { return 2 }
func (d issueDelegate) Spacing() int                             { return 0 }
func (d issueDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d issueDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(issueItem)
	if !ok {
		return
	}

	icon := ui.SeverityIcon(string(it.issue.Severity))
	code := ""
	if it.issue.ErrorCode != "" {
		code = "  " + ui.StyleMuted.Render(it.issue.ErrorCode)
	}

	line1 := fmt.Sprintf(" %s %s%s", icon, it.issue.Title, code)
	line2 := fmt.Sprintf("    %s", ui.StyleInfo.Render(it.category))

	if index == m.Index() {
		hl := lipgloss.NewStyle().Background(ui.ColorHighlight).Width(m.Width())
		line1 = hl.Render(line1)
		line2 = hl.Render(line2)
	}

	fmt.Fprintf(w, "%s\n%s", line1, line2)
}

// --- Item ---

type issueItem struct {
	categoryKey string
	category    string
	index       int
	issue       model.Issue
}

func (i issueItem) FilterValue() string {
	return i.issue.Title
}

// --- Model ---

type Model struct {
	list    list.Model
	width   int
	height  int
	loading bool
	err     error
}

func New() Model {
	l := list.New(nil, issueDelegate{}, 0, 0)
	l.SetShowTitle(false)
	l.SetShowHelp(false)
	l.SetShowStatusBar(true)
	l.SetShowPagination(false)
	l.SetFilteringEnabled(false)
	l.SetStatusBarItemName("issue", "issues")
	l.KeyMap.NextPage = key.NewBinding(key.WithKeys("pgdown"), key.WithHelp("pgdn", "next page"))
	l.KeyMap.PrevPage = key.NewBinding(key.WithKeys("pgup"), key.WithHelp("pgup", "prev page"))
	l.DisableQuitKeybindings()

	return Model{list: l, loading: true}
}

// SetKnowledgeBase lists every searchable issue in document order.
func (m *Model) SetKnowledgeBase(kb *model.KnowledgeBase) tea.Cmd {
	m.loading = false
	m.err = nil

	var items []list.Item
	if kb != nil {
		for _, cat := range kb.Categories {
			if cat.Key == model.DashboardKey {
				continue
			}
			for i, issue := range cat.Issues {
				items = append(items, issueItem{
					categoryKey: cat.Key,
					category:    cat.DisplayTitle(),
					index:       i,
					issue:       issue,
				})
			}
		}
	}
	cmd := m.list.SetItems(items)
	m.list.Select(0)
	return cmd
}

func (m *Model) SetError(err error) {
	m.loading = false
	m.err = err
}

// Select moves the cursor to an issue. It returns false when the issue is
// not listed.
func (m *Model) Select(categoryKey string, index int) bool {
	for i, item := range m.list.Items() {
		it, ok := item.(issueItem)
		if ok && it.categoryKey == categoryKey && it.index == index {
			m.list.Select(i)
			return true
		}
	}
	return false
}

// Selected returns the category key and index under the cursor.
func (m Model) Selected() (string, int, bool) {
	if it, ok := m.list.SelectedItem().(issueItem); ok {
		return it.categoryKey, it.index, true
	}
	return "", 0, false
}

func (m Model) Len() int {
	return len(m.list.Items())
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.WindowSizeMsg); ok {
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(msg.Width, msg.Height)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if m.loading {
		return "\n  Loading knowledge base..."
	}
	if m.err != nil {
		return fmt.Sprintf("\n  Error: %v", m.err)
	}
	if len(m.list.Items()) == 0 {
		return "\n  No issues in this knowledge base."
	}
	return m.list.View()
}
