package cacheview

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/altinukshini/kbsearch/internal/cache"
	"github.com/altinukshini/kbsearch/internal/ui"
)

type cacheItem struct {
	entry cache.Entry
}

func (c cacheItem) Title() string {
	name := c.entry.Key
	if name == "" {
		name = filepath.Base(c.entry.Path)
	}
	size := ui.StyleWarning.Render(formatSize(c.entry.Size))
	return fmt.Sprintf("%s  %s", name, size)
}

func (c cacheItem) Description() string {
	parts := []string{}
	if c.entry.Source != "" {
		parts = append(parts, ui.StyleInfo.Render(c.entry.Source))
	}
	if !c.entry.StoredAt.IsZero() {
		parts = append(parts, ui.StyleMuted.Render("cached "+relativeTime(c.entry.StoredAt)))
	}
	if c.entry.Expired {
		parts = append(parts, ui.StyleFailure.Render("expired"))
	}
	return strings.Join(parts, "  ")
}

func (c cacheItem) FilterValue() string {
	return c.entry.Key + " " + c.entry.Source
}

// SortMode determines how cache entries are ordered.
type SortMode int

const (
	SortByAge SortMode = iota
	SortBySize
)

func (s SortMode) String() string {
	if s == SortBySize {
		return "size"
	}
	return "newest"
}

// Model lists the documents held in the on-disk cache.
type Model struct {
	list      list.Model
	entries   []cache.Entry
	sortMode  SortMode
	totalSize int64
	width     int
	height    int
	loading   bool
	err       error
}

func New() Model {
	delegate := list.NewDefaultDelegate()
	delegate.SetHeight(2)
	delegate.SetSpacing(0)

	l := list.New(nil, delegate, 0, 0)
	l.SetShowTitle(false)
	l.SetShowHelp(false)
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(false)
	l.SetStatusBarItemName("document", "documents")
	l.DisableQuitKeybindings()

	return Model{list: l, loading: true}
}

// Load returns a command that reads the cache's entries.
func Load(c *cache.Cache) tea.Cmd {
	return func() tea.Msg {
		entries, err := c.Entries()
		return ui.CacheEntriesLoadedMsg{Entries: entries, Err: err}
	}
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ui.CacheEntriesLoadedMsg:
		m.loading = false
		if msg.Err != nil {
			m.err = msg.Err
			return m, nil
		}
		m.err = nil
		m.entries = msg.Entries
		m.totalSize = 0
		for _, e := range m.entries {
			m.totalSize += e.Size
		}
		m.sortEntries()
		cmd := m.list.SetItems(m.buildItems())
		return m, cmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		// Reserve one line for the header.
		m.list.SetSize(msg.Width, msg.Height-1)

	case tea.KeyMsg:
		if msg.String() == "s" {
			m.sortMode = (m.sortMode + 1) % 2
			m.sortEntries()
			cmd := m.list.SetItems(m.buildItems())
			return m, cmd
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if m.loading {
		return "\n  Loading cached documents..."
	}
	if m.err != nil {
		return fmt.Sprintf("\n  Error: %v\n\n  Press r to retry.", m.err)
	}
	if len(m.entries) == 0 {
		return "\n  No cached documents.\n\n  Documents fetched from GitHub are cached here.\n  Press r to refresh."
	}

	header := fmt.Sprintf("  %d documents | Total: %s | Sort: %s | s: sort  d: delete  x: clear all",
		len(m.entries),
		formatSize(m.totalSize),
		m.sortMode.String(),
	)
	return ui.StyleMuted.Render(header) + "\n" + m.list.View()
}

// SelectedEntry returns the entry under the cursor, or nil.
func (m Model) SelectedEntry() *cache.Entry {
	if item, ok := m.list.SelectedItem().(cacheItem); ok {
		return &item.entry
	}
	return nil
}

func (m Model) Len() int {
	return len(m.entries)
}

func (m *Model) sortEntries() {
	switch m.sortMode {
	case SortByAge:
		sort.SliceStable(m.entries, func(i, j int) bool {
			return m.entries[i].StoredAt.After(m.entries[j].StoredAt)
		})
	case SortBySize:
		sort.SliceStable(m.entries, func(i, j int) bool {
			return m.entries[i].Size > m.entries[j].Size
		})
	}
}

func (m Model) buildItems() []list.Item {
	items := make([]list.Item, len(m.entries))
	for i, e := range m.entries {
		items[i] = cacheItem{entry: e}
	}
	return items
}

// formatSize formats a byte count into a human-readable string (KB, MB, GB).
func formatSize(bytes int64) string {
	const (
		kb = 1024
		mb = 1024 * kb
		gb = 1024 * mb
	)
	switch {
	case bytes >= gb:
		return fmt.Sprintf("%.1f GB", float64(bytes)/float64(gb))
	case bytes >= mb:
		return fmt.Sprintf("%.1f MB", float64(bytes)/float64(mb))
	case bytes >= kb:
		return fmt.Sprintf("%.1f KB", float64(bytes)/float64(kb))
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}

func relativeTime(t time.Time) string {
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		if m := int(d.Minutes()); m != 1 {
			return fmt.Sprintf("%d minutes ago", m)
		}
		return "1 minute ago"
	case d < 24*time.Hour:
		if h := int(d.Hours()); h != 1 {
			return fmt.Sprintf("%d hours ago", h)
		}
		return "1 hour ago"
	default:
		if days := int(d.Hours() / 24); days != 1 {
			return fmt.Sprintf("%d days ago", days)
		}
		return "1 day ago"
	}
}
