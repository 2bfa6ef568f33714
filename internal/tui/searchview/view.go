package searchview

import (
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/altinukshini/kbsearch/internal/model"
	"github.com/altinukshini/kbsearch/internal/search"
	"github.com/altinukshini/kbsearch/internal/ui"
)

type Mode int

const (
	ModeInput Mode = iota
	ModeResults
)

// revealDelay is how long a freshly rendered entry stays dimmed.
const revealDelay = 10 * time.Millisecond

// Navigator opens an issue chosen from the result list. It is called
// synchronously from the selection handler, exactly once per selection.
type Navigator interface {
	Navigate(categoryKey string, issueIndex int) tea.Cmd
}

// NavigatorFunc adapts a plain function to Navigator.
type NavigatorFunc func(categoryKey string, issueIndex int) tea.Cmd

func (f NavigatorFunc) Navigate(categoryKey string, issueIndex int) tea.Cmd {
	return f(categoryKey, issueIndex)
}

type entryKind int

const (
	entryMessage entryKind = iota
	entryResult
)

type entry struct {
	kind   entryKind
	text   string
	result model.SearchResult
	shown  bool
}

type Model struct {
	input    textinput.Model
	viewport viewport.Model
	engine   *search.Engine
	kb       *model.KnowledgeBase
	nav      Navigator
	logger   *slog.Logger

	entries    []entry
	results    []model.SearchResult
	offsets    []int // first viewport line of each result entry
	generation int

	mode    Mode
	cursor  int
	visible bool
	width   int
	height  int
	ready   bool
}

type Option func(*Model)

// WithNavigator sets the capability invoked by "View Details". Without one,
// selections are logged and ignored.
func WithNavigator(nav Navigator) Option {
	return func(m *Model) {
		m.nav = nav
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(m *Model) {
		if logger != nil {
			m.logger = logger
		}
	}
}

func New(kb *model.KnowledgeBase, opts ...Option) Model {
	ti := textinput.New()
	ti.Placeholder = "Search issues or error codes"
	ti.CharLimit = 256

	m := Model{
		input:  ti,
		engine: search.New(),
		kb:     kb,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

// SetKnowledgeBase swaps the data searched by later queries. Results already
// on screen keep the indexes they were rendered with.
func (m *Model) SetKnowledgeBase(kb *model.KnowledgeBase) {
	m.kb = kb
}

// Open shows the panel, focuses the input and, if nothing has been searched
// yet, shows the placeholder.
func (m *Model) Open() tea.Cmd {
	m.visible = true
	m.mode = ModeInput
	cmds := []tea.Cmd{m.input.Focus()}
	if !m.hasSearched() {
		cmds = append(cmds, m.showPlaceholder())
	}
	m.refresh()
	if m.ready {
		m.viewport.GotoBottom()
	}
	return tea.Batch(cmds...)
}

func (m *Model) Close() {
	m.visible = false
	m.input.Blur()
}

func (m *Model) Toggle() tea.Cmd {
	if m.visible {
		m.Close()
		return nil
	}
	return m.Open()
}

// Search clears the panel and renders the outcome of query against the
// knowledge base.
func (m *Model) Search(query string) tea.Cmd {
	m.clear()

	out := m.engine.Search(m.kb, query)
	m.appendMessage(out.Message())
	for _, r := range out.Matches {
		m.entries = append(m.entries, entry{kind: entryResult, result: r})
	}
	m.results = out.Matches

	m.logger.Debug("knowledge base search", "query", out.Query, "matches", len(out.Matches))
	m.refresh()
	return m.reveal()
}

// Submit is the explicit send action: it searches the trimmed input value
// unless that is empty.
func (m *Model) Submit() tea.Cmd {
	q := strings.TrimSpace(m.input.Value())
	if q == "" {
		return nil
	}
	return m.Search(q)
}

// Select hands the highlighted result to the navigator and closes the panel.
func (m *Model) Select() tea.Cmd {
	if m.cursor < 0 || m.cursor >= len(m.results) {
		return nil
	}
	r := m.results[m.cursor]
	if m.nav == nil {
		m.logger.Error("navigation unavailable, cannot open issue",
			"category", r.CategoryKey, "index", r.Index)
		return nil
	}
	cmd := m.nav.Navigate(r.CategoryKey, r.Index)
	m.Close()
	return cmd
}

func (m Model) IsVisible() bool {
	return m.visible
}

// IsInputMode returns true when the query input has focus.
func (m Model) IsInputMode() bool {
	return m.mode == ModeInput
}

func (m Model) Query() string {
	return m.input.Value()
}

// Results returns the matches currently on screen.
func (m Model) Results() []model.SearchResult {
	return m.results
}

// Messages returns the informational lines currently on screen.
func (m Model) Messages() []string {
	var msgs []string
	for _, e := range m.entries {
		if e.kind == entryMessage {
			msgs = append(msgs, e.text)
		}
	}
	return msgs
}

func (m Model) SelectedResult() *model.SearchResult {
	if m.cursor < 0 || m.cursor >= len(m.results) {
		return nil
	}
	return &m.results[m.cursor]
}

// Generation increments every time the panel is cleared.
func (m Model) Generation() int {
	return m.generation
}

// AllShown reports whether every entry finished its reveal transition.
func (m Model) AllShown() bool {
	for _, e := range m.entries {
		if !e.shown {
			return false
		}
	}
	return true
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ui.EntriesShownMsg:
		// A stale tick belongs to entries that were already cleared.
		if msg.Generation == m.generation {
			for i := range m.entries {
				m.entries[i].shown = true
			}
			m.refresh()
		}
		return m, nil

	case tea.KeyMsg:
		if !m.visible {
			return m, nil
		}
		if key.Matches(msg, ui.Keys.Toggle) {
			m.Close()
			return m, nil
		}
		if m.mode == ModeInput {
			return m.updateInput(msg)
		}
		return m.updateResults(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = msg.Width - 6
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-4)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - 4
		}
		m.refresh()
		return m, nil
	}

	// Cursor blinks go to the input, mouse wheel to the results.
	var inputCmd, viewCmd tea.Cmd
	if m.visible && m.mode == ModeInput {
		m.input, inputCmd = m.input.Update(msg)
	}
	m.viewport, viewCmd = m.viewport.Update(msg)
	return m, tea.Batch(inputCmd, viewCmd)
}

func (m Model) updateInput(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		cmd := m.Submit()
		return m, cmd
	case "esc":
		m.Close()
		return m, nil
	case "tab":
		if len(m.results) > 0 {
			m.mode = ModeResults
			m.input.Blur()
			m.refresh()
			m.scrollToCursor()
		}
		return m, nil
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() == before {
		return m, cmd
	}
	live := m.onInputChange()
	return m, tea.Batch(cmd, live)
}

// onInputChange runs the live search. A single character leaves the panel
// exactly as it was.
func (m *Model) onInputChange() tea.Cmd {
	q := strings.TrimSpace(m.input.Value())
	switch n := utf8.RuneCountInString(q); {
	case n >= search.MinQueryLength:
		return m.Search(q)
	case n == 0:
		cmd := m.showPlaceholder()
		m.refresh()
		return cmd
	}
	return nil
}

func (m Model) updateResults(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, ui.Keys.Down):
		if m.cursor < len(m.results)-1 {
			m.cursor++
			m.refresh()
			m.scrollToCursor()
		}
	case key.Matches(msg, ui.Keys.Up):
		if m.cursor > 0 {
			m.cursor--
			m.refresh()
			m.scrollToCursor()
		}
	case key.Matches(msg, ui.Keys.Enter):
		cmd := m.Select()
		return m, cmd
	case key.Matches(msg, ui.Keys.Search), key.Matches(msg, ui.Keys.Tab):
		m.mode = ModeInput
		cmd := m.input.Focus()
		m.refresh()
		return m, cmd
	case key.Matches(msg, ui.Keys.Back):
		m.Close()
	default:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) hasSearched() bool {
	if len(m.entries) == 0 {
		return false
	}
	first := m.entries[0]
	return !(first.kind == entryMessage && first.text == search.Placeholder)
}

func (m *Model) clear() {
	m.entries = nil
	m.results = nil
	m.offsets = nil
	m.cursor = 0
	m.generation++
}

func (m *Model) showPlaceholder() tea.Cmd {
	m.clear()
	m.appendMessage(search.Placeholder)
	return m.reveal()
}

func (m *Model) appendMessage(text string) {
	m.entries = append(m.entries, entry{kind: entryMessage, text: text})
}

func (m Model) reveal() tea.Cmd {
	gen := m.generation
	return tea.Tick(revealDelay, func(time.Time) tea.Msg {
		return ui.EntriesShownMsg{Generation: gen}
	})
}

func (m *Model) refresh() {
	if !m.ready {
		return
	}
	content, offsets := m.renderEntries()
	m.offsets = offsets
	m.viewport.SetContent(content)
	if m.mode == ModeInput {
		m.viewport.GotoBottom()
	}
}

func (m *Model) scrollToCursor() {
	if !m.ready || m.cursor >= len(m.offsets) {
		return
	}
	line := m.offsets[m.cursor]
	if line < m.viewport.YOffset || line >= m.viewport.YOffset+m.viewport.Height {
		m.viewport.SetYOffset(line)
	}
}

func (m Model) renderEntries() (string, []int) {
	var b strings.Builder
	var offsets []int
	line := 0
	resultIdx := 0

	for _, e := range m.entries {
		var block string
		if e.kind == entryResult {
			offsets = append(offsets, line)
			block = m.renderResult(e, resultIdx == m.cursor && m.mode == ModeResults)
			resultIdx++
		} else {
			block = m.renderMessage(e)
		}
		b.WriteString(block)
		b.WriteString("\n\n")
		line += lipgloss.Height(block) + 1
	}
	return b.String(), offsets
}

func (m Model) renderMessage(e entry) string {
	if !e.shown {
		return "  " + ui.StyleMuted.Faint(true).Render(e.text)
	}
	return "  " + ui.StyleBubble.Render(e.text)
}

func (m Model) renderResult(e entry, selected bool) string {
	issue := e.result.Issue
	severity := fmt.Sprintf("Severity: %s", issue.Severity)
	code := fmt.Sprintf("Error Code: %s", search.ErrorCodeOrNA(issue.ErrorCode))
	preview := search.Preview(issue.Content)
	trigger := "[View Details]"

	wrap := lipgloss.NewStyle()
	if m.width > 8 {
		wrap = wrap.Width(m.width - 6)
	}

	cursor := "  "
	if selected {
		cursor = "> "
	}

	if !e.shown {
		faint := ui.StyleMuted.Faint(true)
		lines := []string{
			issue.Title,
			severity + "  " + code,
			wrap.Render(preview),
			trigger,
		}
		return indent(faint.Render(strings.Join(lines, "\n")), cursor)
	}

	title := lipgloss.NewStyle().Bold(true).Render(issue.Title)
	badges := ui.SeverityBadge(string(issue.Severity)).Style().Render(severity) + " " +
		ui.StyleErrorCodeBadge.Render(code)
	body := wrap.Foreground(ui.ColorMuted).Render(preview)

	triggerStyle := lipgloss.NewStyle().Foreground(ui.ColorInfo).Underline(true)
	if selected {
		triggerStyle = triggerStyle.Bold(true).Background(ui.ColorHighlight)
	}

	block := strings.Join([]string{title, badges, body, triggerStyle.Render(trigger)}, "\n")
	return indent(block, cursor)
}

func indent(block, prefix string) string {
	lines := strings.Split(block, "\n")
	pad := strings.Repeat(" ", lipgloss.Width(prefix))
	for i := range lines {
		if i == 0 {
			lines[i] = prefix + lines[i]
		} else {
			lines[i] = pad + lines[i]
		}
	}
	return strings.Join(lines, "\n")
}

func (m Model) View() string {
	if !m.visible {
		return ""
	}

	var b strings.Builder
	b.WriteString("  " + lipgloss.NewStyle().Bold(true).Foreground(ui.ColorPrimary).Render("Search knowledge base") + "\n")
	b.WriteString("  " + m.input.View() + "\n\n")

	if m.ready {
		b.WriteString(m.viewport.View())
	} else {
		content, _ := m.renderEntries()
		b.WriteString(content)
	}
	return b.String()
}
