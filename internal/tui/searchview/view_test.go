package searchview

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/altinukshini/kbsearch/internal/model"
	"github.com/altinukshini/kbsearch/internal/search"
	"github.com/altinukshini/kbsearch/internal/ui"
)

func testKB() *model.KnowledgeBase {
	return &model.KnowledgeBase{Categories: []model.Category{
		{Key: "network", Issues: []model.Issue{
			{Title: "DNS Timeout", Content: "resolution failed", Severity: "High", ErrorCode: "E101"},
			{Title: "Proxy refused", Content: "upstream closed the connection", Severity: "medium"},
		}},
		{Key: "dashboard", Issues: []model.Issue{
			{Title: "DNS health", Content: "dns overview", Severity: "low"},
		}},
		{Key: "storage", Issues: []model.Issue{
			{Title: "Disk full", Content: "no space left on device", Severity: "critical"},
		}},
	}}
}

type recordingNavigator struct {
	calls []model.SearchResult
}

func (r *recordingNavigator) Navigate(categoryKey string, issueIndex int) tea.Cmd {
	r.calls = append(r.calls, model.SearchResult{CategoryKey: categoryKey, Index: issueIndex})
	return func() tea.Msg {
		return ui.OpenIssueMsg{CategoryKey: categoryKey, Index: issueIndex}
	}
}

func newOpenModel(t *testing.T, opts ...Option) Model {
	t.Helper()
	m := New(testKB(), opts...)
	m, _ = m.Update(tea.WindowSizeMsg{Width: 80, Height: 40})
	m.Open()
	require.True(t, m.IsVisible())
	return m
}

func typeText(m Model, text string) Model {
	for _, r := range text {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return m
}

func press(m Model, kt tea.KeyType) (Model, tea.Cmd) {
	return m.Update(tea.KeyMsg{Type: kt})
}

func TestOpenShowsPlaceholder(t *testing.T) {
	m := newOpenModel(t)

	assert.True(t, m.IsInputMode())
	assert.Equal(t, []string{search.Placeholder}, m.Messages())
	assert.Empty(t, m.Results())
	assert.Contains(t, m.View(), search.Placeholder)
}

func TestReopenKeepsPreviousSearch(t *testing.T) {
	m := newOpenModel(t)
	m.Search("dns")
	m.Close()
	assert.False(t, m.IsVisible())
	assert.Empty(t, m.View())

	m.Open()
	assert.Len(t, m.Results(), 1)
	assert.NotContains(t, m.Messages(), search.Placeholder)
}

func TestReopenDoesNotStackPlaceholders(t *testing.T) {
	m := newOpenModel(t)
	m.Toggle()
	m.Toggle()
	assert.Equal(t, []string{search.Placeholder}, m.Messages())
}

func TestToggleKeyClosesPanel(t *testing.T) {
	m := newOpenModel(t)
	m, _ = press(m, tea.KeyCtrlF)
	assert.False(t, m.IsVisible())

	// Hidden panels ignore keys.
	m = typeText(m, "dns")
	assert.Empty(t, m.Query())
}

func TestEscClosesPanel(t *testing.T) {
	m := newOpenModel(t)
	m, _ = press(m, tea.KeyEscape)
	assert.False(t, m.IsVisible())
}

func TestShortQueryShowsInstruction(t *testing.T) {
	m := newOpenModel(t)
	for _, q := range []string{"", "d", "  x  "} {
		m.Search(q)
		assert.Equal(t, []string{search.TooShortMessage}, m.Messages(), "query %q", q)
		assert.Empty(t, m.Results(), "query %q", q)
	}
}

func TestSearchScenarioDNS(t *testing.T) {
	m := newOpenModel(t)
	m.Search("dns")

	results := m.Results()
	require.Len(t, results, 1)
	assert.Equal(t, "DNS Timeout", results[0].Issue.Title)
	assert.Equal(t, "network", results[0].CategoryKey)
	assert.Equal(t, 0, results[0].Index)
	assert.Equal(t, []string{`Found 1 result(s) for "dns":`}, m.Messages())

	view := m.View()
	assert.Contains(t, view, "DNS Timeout")
	assert.Contains(t, view, "Severity: High")
	assert.Contains(t, view, "Error Code: E101")
	assert.Contains(t, view, "resolution failed...")
	assert.Contains(t, view, "[View Details]")
}

func TestSearchNoResults(t *testing.T) {
	m := newOpenModel(t)
	m.Search("zz-no-match")

	assert.Empty(t, m.Results())
	assert.Equal(t, []string{`No results found for "zz-no-match". Try a different keyword.`}, m.Messages())
}

func TestMissingErrorCodeRendersNA(t *testing.T) {
	m := newOpenModel(t)
	m.Search("proxy")
	require.Len(t, m.Results(), 1)
	assert.Contains(t, m.View(), "Error Code: N/A")
}

func TestSearchIsIdempotent(t *testing.T) {
	m := newOpenModel(t)
	m.Search("di")
	firstResults, firstMsgs := m.Results(), m.Messages()

	m.Search("di")
	assert.Equal(t, firstResults, m.Results())
	assert.Equal(t, firstMsgs, m.Messages())
}

func TestSearchPreservesSourceOrder(t *testing.T) {
	m := newOpenModel(t)
	m.Search("on")

	var keys []string
	for _, r := range m.Results() {
		keys = append(keys, r.CategoryKey)
	}
	assert.Equal(t, []string{"network", "network", "storage"}, keys)
}

func TestLiveSearchWhileTyping(t *testing.T) {
	m := newOpenModel(t)

	m = typeText(m, "d")
	assert.Equal(t, []string{search.Placeholder}, m.Messages(), "one character must not search")

	m = typeText(m, "n")
	require.Len(t, m.Results(), 1)
	assert.Equal(t, "DNS Timeout", m.Results()[0].Issue.Title)
}

func TestSingleCharacterLeavesPriorResults(t *testing.T) {
	m := newOpenModel(t)
	m = typeText(m, "dn")
	require.Len(t, m.Results(), 1)
	gen := m.Generation()

	m, _ = press(m, tea.KeyBackspace)
	assert.Equal(t, "d", m.Query())
	assert.Equal(t, gen, m.Generation(), "panel must not be cleared")
	require.Len(t, m.Results(), 1)
	assert.Equal(t, "DNS Timeout", m.Results()[0].Issue.Title)
}

func TestClearingInputRestoresPlaceholder(t *testing.T) {
	m := newOpenModel(t)
	m = typeText(m, "dn")
	require.NotEmpty(t, m.Results())

	m, _ = press(m, tea.KeyBackspace)
	m, _ = press(m, tea.KeyBackspace)
	assert.Empty(t, m.Query())
	assert.Empty(t, m.Results())
	assert.Equal(t, []string{search.Placeholder}, m.Messages())
}

func TestEnterSearchesEvenShortInput(t *testing.T) {
	m := newOpenModel(t)
	m = typeText(m, "d")

	m, cmd := press(m, tea.KeyEnter)
	assert.NotNil(t, cmd)
	assert.Equal(t, []string{search.TooShortMessage}, m.Messages())
}

func TestSubmitIgnoresBlankInput(t *testing.T) {
	m := newOpenModel(t)
	m = typeText(m, "   ")
	gen := m.Generation()

	assert.Nil(t, m.Submit())
	assert.Equal(t, gen, m.Generation())
}

func TestSelectCallsNavigatorOnceAndCloses(t *testing.T) {
	nav := &recordingNavigator{}
	m := newOpenModel(t, WithNavigator(nav))
	m = typeText(m, "dns")

	m, _ = press(m, tea.KeyTab)
	require.False(t, m.IsInputMode())

	m, cmd := press(m, tea.KeyEnter)
	require.Len(t, nav.calls, 1)
	assert.Equal(t, "network", nav.calls[0].CategoryKey)
	assert.Equal(t, 0, nav.calls[0].Index)
	assert.False(t, m.IsVisible())

	require.NotNil(t, cmd)
	assert.Equal(t, ui.OpenIssueMsg{CategoryKey: "network", Index: 0}, cmd())
}

func TestSelectMovesCursor(t *testing.T) {
	nav := &recordingNavigator{}
	m := newOpenModel(t, WithNavigator(nav))
	m.Search("on")
	require.Len(t, m.Results(), 3)

	m, _ = press(m, tea.KeyTab)
	m = typeText(m, "jj")
	sel := m.SelectedResult()
	require.NotNil(t, sel)
	assert.Equal(t, "storage", sel.CategoryKey)

	m, _ = press(m, tea.KeyEnter)
	require.Len(t, nav.calls, 1)
	assert.Equal(t, "storage", nav.calls[0].CategoryKey)
	assert.Equal(t, 0, nav.calls[0].Index)
}

func TestSelectWithoutNavigatorLogs(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	m := newOpenModel(t, WithLogger(logger))
	m.Search("dns")
	m, _ = press(m, tea.KeyTab)

	var cmd tea.Cmd
	require.NotPanics(t, func() {
		m, cmd = press(m, tea.KeyEnter)
	})
	assert.Nil(t, cmd)
	assert.True(t, m.IsVisible(), "panel stays open when navigation is unavailable")
	assert.Contains(t, buf.String(), "navigation unavailable")
	assert.Contains(t, buf.String(), "category=network")
}

func TestSlashReturnsToInput(t *testing.T) {
	m := newOpenModel(t)
	m.Search("dns")
	m, _ = press(m, tea.KeyTab)
	require.False(t, m.IsInputMode())

	m = typeText(m, "/")
	assert.True(t, m.IsInputMode())
	assert.Equal(t, "", m.Query(), "slash switches mode rather than typing")
}

func TestEntriesRevealAfterTick(t *testing.T) {
	m := newOpenModel(t)
	cmd := m.Search("dns")
	require.NotNil(t, cmd)
	assert.False(t, m.AllShown())

	stale := m.Generation() - 1
	m, _ = m.Update(ui.EntriesShownMsg{Generation: stale})
	assert.False(t, m.AllShown(), "stale reveal must be ignored")

	m, _ = m.Update(ui.EntriesShownMsg{Generation: m.Generation()})
	assert.True(t, m.AllShown())
	assert.Contains(t, m.View(), "DNS Timeout")
}

func TestResultCountMatchesEngine(t *testing.T) {
	m := newOpenModel(t)
	engine := search.New()
	for _, q := range []string{"dns", "on", "ed", "xyz", "e1"} {
		m.Search(q)
		assert.Len(t, m.Results(), len(engine.Search(testKB(), q).Matches), "query %q", q)
		assert.Len(t, m.Messages(), 1, "query %q", q)
	}
}

func TestSetKnowledgeBaseAffectsNextSearch(t *testing.T) {
	m := newOpenModel(t)
	m.Search("dns")
	require.Len(t, m.Results(), 1)

	m.SetKnowledgeBase(&model.KnowledgeBase{})
	assert.Len(t, m.Results(), 1, "rendered results are not patched")

	m.Search("dns")
	assert.Empty(t, m.Results())
	assert.True(t, strings.HasPrefix(m.Messages()[0], "No results found"))
}
