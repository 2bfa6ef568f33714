package browse

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/altinukshini/kbsearch/internal/model"
)

func sampleKB() *model.KnowledgeBase {
	return &model.KnowledgeBase{Categories: []model.Category{
		{Key: "dashboard", Issues: []model.Issue{{Title: "Hidden"}}},
		{Key: "network", Title: "Networking", Issues: []model.Issue{
			{Title: "DNS Timeout", Severity: "High", ErrorCode: "E101"},
			{Title: "Proxy refused", Severity: "medium"},
		}},
		{Key: "storage", Issues: []model.Issue{{Title: "Disk full", Severity: "critical"}}},
	}}
}

func TestListsIssuesWithoutDashboard(t *testing.T) {
	m := New()
	m, _ = m.Update(tea.WindowSizeMsg{Width: 60, Height: 20})
	m.SetKnowledgeBase(sampleKB())

	if m.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", m.Len())
	}
	view := m.View()
	if strings.Contains(view, "Hidden") {
		t.Error("dashboard issues should not be listed")
	}
	if !strings.Contains(view, "DNS Timeout") || !strings.Contains(view, "Networking") {
		t.Errorf("view missing issue or category title:\n%s", view)
	}
}

func TestSelectMovesCursor(t *testing.T) {
	m := New()
	m, _ = m.Update(tea.WindowSizeMsg{Width: 60, Height: 20})
	m.SetKnowledgeBase(sampleKB())

	if !m.Select("storage", 0) {
		t.Fatal("Select(storage, 0) = false")
	}
	cat, idx, ok := m.Selected()
	if !ok || cat != "storage" || idx != 0 {
		t.Errorf("Selected() = %q, %d, %v", cat, idx, ok)
	}

	if m.Select("storage", 5) {
		t.Error("Select of an unknown index should fail")
	}
}

func TestDownKeyMovesSelection(t *testing.T) {
	m := New()
	m, _ = m.Update(tea.WindowSizeMsg{Width: 60, Height: 20})
	m.SetKnowledgeBase(sampleKB())

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}})
	cat, idx, _ := m.Selected()
	if cat != "network" || idx != 1 {
		t.Errorf("after j Selected() = %q, %d; want network, 1", cat, idx)
	}
}

func TestLoadingAndError(t *testing.T) {
	m := New()
	if !strings.Contains(m.View(), "Loading") {
		t.Error("new model should show loading")
	}
	m.SetError(errors.New("boom"))
	if !strings.Contains(m.View(), "boom") {
		t.Error("error should be rendered")
	}
}
