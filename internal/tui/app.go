package tui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/altinukshini/kbsearch/internal/cache"
	"github.com/altinukshini/kbsearch/internal/kb"
	"github.com/altinukshini/kbsearch/internal/model"
	"github.com/altinukshini/kbsearch/internal/tui/browse"
	"github.com/altinukshini/kbsearch/internal/tui/cacheview"
	"github.com/altinukshini/kbsearch/internal/tui/confirm"
	"github.com/altinukshini/kbsearch/internal/tui/issueview"
	"github.com/altinukshini/kbsearch/internal/tui/searchview"
	"github.com/altinukshini/kbsearch/internal/ui"
)

type View int

const (
	ViewKB View = iota
	ViewCache
)

type Pane int

const (
	PaneList Pane = iota
	PaneIssue
)

const loadTimeout = 30 * time.Second

// Options configures the App.
type Options struct {
	Source        kb.Source
	Cache         *cache.Cache // nil for local sources
	Logger        *slog.Logger
	MarkdownStyle string
}

type App struct {
	source   kb.Source
	docCache *cache.Cache
	logger   *slog.Logger
	kb       *model.KnowledgeBase

	// Views
	browseView    browse.Model
	issueView     issueview.Model
	searchView    searchview.Model
	cacheView     cacheview.Model
	confirmDialog confirm.Model

	// State
	currentView View
	focusedPane Pane
	width       int
	height      int
	status      string
	statusFail  bool
	showHelp    bool
}

// openIssue is the navigation capability handed to the search panel. The
// issue is resolved when the message is handled.
func openIssue(categoryKey string, issueIndex int) tea.Cmd {
	return func() tea.Msg {
		return ui.OpenIssueMsg{CategoryKey: categoryKey, Index: issueIndex}
	}
}

func NewApp(opts Options) App {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return App{
		source:     opts.Source,
		docCache:   opts.Cache,
		logger:     logger,
		browseView: browse.New(),
		cacheView:  cacheview.New(),
		issueView:  issueview.New(opts.MarkdownStyle),
		searchView: searchview.New(nil,
			searchview.WithNavigator(searchview.NavigatorFunc(openIssue)),
			searchview.WithLogger(logger),
		),
		focusedPane: PaneList,
		status:      "Loading knowledge base...",
	}
}

func (a App) Init() tea.Cmd {
	return a.loadKB()
}

// --- Data loading commands ---

func (a App) loadKB() tea.Cmd {
	src := a.source
	if src == nil {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()
		loaded, err := src.Load(ctx)
		return ui.KBLoadedMsg{KB: loaded, Source: src.String(), Err: err}
	}
}

// --- Update ---

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.propagateSize()
		return &a, nil

	case ui.KBLoadedMsg:
		if msg.Err != nil {
			a.logger.Error("load knowledge base", "source", msg.Source, "err", msg.Err)
			a.setStatus(fmt.Sprintf("Error loading knowledge base: %v", msg.Err), true)
			if a.kb == nil {
				a.browseView.SetError(msg.Err)
			}
			return &a, nil
		}
		a.setKnowledgeBase(msg.KB)
		a.setStatus(fmt.Sprintf("Loaded %s", msg.Source), false)
		a.logger.Info("knowledge base loaded", "source", msg.Source,
			"categories", len(msg.KB.Categories), "issues", msg.KB.IssueCount())
		cmd := a.browseView.SetKnowledgeBase(msg.KB)
		return &a, cmd

	case ui.OpenIssueMsg:
		a.openIssue(msg.CategoryKey, msg.Index)
		return &a, nil

	case ui.EntriesShownMsg:
		var cmd tea.Cmd
		a.searchView, cmd = a.searchView.Update(msg)
		return &a, cmd

	case ui.StatusMsg:
		a.setStatus(msg.Text, false)
		return &a, nil

	case ui.CacheEntriesLoadedMsg:
		var cmd tea.Cmd
		a.cacheView, cmd = a.cacheView.Update(msg)
		return &a, cmd

	case ui.CacheActionMsg:
		if msg.Err != nil {
			a.logger.Error("cache action failed", "action", msg.Action, "err", msg.Err)
			a.setStatus(fmt.Sprintf("%s failed: %v", msg.Action, msg.Err), true)
		} else {
			a.setStatus(msg.Action + " done", false)
		}
		return &a, cacheview.Load(a.docCache)

	case confirm.ResultMsg:
		if !msg.Confirmed {
			a.setStatus("Cancelled", false)
			return &a, nil
		}
		return &a, a.runCacheAction(msg.Action, msg.Target)
	}

	// Confirmation dialog gets keys first
	if _, isKey := msg.(tea.KeyMsg); isKey && a.confirmDialog.IsActive() {
		var cmd tea.Cmd
		a.confirmDialog, cmd = a.confirmDialog.Update(msg)
		return &a, cmd
	}

	// Search panel owns the keyboard while it is open.
	if keyMsg, isKey := msg.(tea.KeyMsg); isKey && a.searchView.IsVisible() {
		if key.Matches(keyMsg, ui.Keys.Quit) && keyMsg.String() == "ctrl+c" {
			return &a, tea.Quit
		}
		var cmd tea.Cmd
		a.searchView, cmd = a.searchView.Update(msg)
		return &a, cmd
	}

	// Everything else (cursor blink, mouse wheel) belongs to the open panel.
	if _, isKey := msg.(tea.KeyMsg); !isKey && a.searchView.IsVisible() {
		var cmd tea.Cmd
		a.searchView, cmd = a.searchView.Update(msg)
		return &a, cmd
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		// Help overlay dismisses on any key
		if a.showHelp {
			a.showHelp = false
			return &a, nil
		}

		if a.currentView == ViewCache {
			return a.updateCacheView(keyMsg)
		}

		switch {
		case key.Matches(keyMsg, ui.Keys.Quit):
			return &a, tea.Quit
		case key.Matches(keyMsg, ui.Keys.Cache) && a.docCache != nil:
			a.currentView = ViewCache
			return &a, cacheview.Load(a.docCache)
		case key.Matches(keyMsg, ui.Keys.Toggle), key.Matches(keyMsg, ui.Keys.Search):
			cmd := a.searchView.Open()
			return &a, cmd
		case key.Matches(keyMsg, ui.Keys.Help):
			a.showHelp = true
			return &a, nil
		case key.Matches(keyMsg, ui.Keys.Tab), key.Matches(keyMsg, ui.Keys.ShiftTab):
			if a.focusedPane == PaneList {
				a.focusedPane = PaneIssue
			} else {
				a.focusedPane = PaneList
			}
			return &a, nil
		case key.Matches(keyMsg, ui.Keys.Refresh):
			a.setStatus("Reloading knowledge base...", false)
			return &a, a.loadKB()
		case key.Matches(keyMsg, ui.Keys.Enter) && a.focusedPane == PaneList:
			if cat, idx, ok := a.browseView.Selected(); ok {
				a.openIssue(cat, idx)
			}
			return &a, nil
		case key.Matches(keyMsg, ui.Keys.Back) && a.focusedPane == PaneIssue:
			a.focusedPane = PaneList
			return &a, nil
		}
	}

	var cmd tea.Cmd
	switch a.focusedPane {
	case PaneList:
		a.browseView, cmd = a.browseView.Update(msg)
	case PaneIssue:
		a.issueView, cmd = a.issueView.Update(msg)
	}
	cmds = append(cmds, cmd)
	return &a, tea.Batch(cmds...)
}

func (a App) updateCacheView(keyMsg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(keyMsg, ui.Keys.Quit):
		return &a, tea.Quit
	case key.Matches(keyMsg, ui.Keys.Back), key.Matches(keyMsg, ui.Keys.Cache):
		a.currentView = ViewKB
		return &a, nil
	case key.Matches(keyMsg, ui.Keys.Refresh):
		return &a, cacheview.Load(a.docCache)
	case key.Matches(keyMsg, ui.Keys.Delete):
		if entry := a.cacheView.SelectedEntry(); entry != nil {
			a.confirmDialog = confirm.New(
				"Delete cached document",
				fmt.Sprintf("Delete %s from the cache?", entry.Key),
				"delete-cache", entry.Key,
			)
		}
		return &a, nil
	case key.Matches(keyMsg, ui.Keys.Clear):
		if n := a.cacheView.Len(); n > 0 {
			a.confirmDialog = confirm.New(
				"Clear cache",
				fmt.Sprintf("Delete all %d cached documents?", n),
				"clear-cache", "",
			)
		}
		return &a, nil
	}

	var cmd tea.Cmd
	a.cacheView, cmd = a.cacheView.Update(keyMsg)
	return &a, cmd
}

func (a App) runCacheAction(action, target string) tea.Cmd {
	c := a.docCache
	if c == nil {
		return nil
	}
	switch action {
	case "delete-cache":
		return func() tea.Msg {
			return ui.CacheActionMsg{Action: "Delete cached document", Err: c.Remove(target)}
		}
	case "clear-cache":
		return func() tea.Msg {
			return ui.CacheActionMsg{Action: "Clear cache", Err: c.Clear()}
		}
	}
	return nil
}

func (a *App) setStatus(text string, failed bool) {
	a.status = text
	a.statusFail = failed
}

func (a *App) setKnowledgeBase(loaded *model.KnowledgeBase) {
	a.kb = loaded
	a.searchView.SetKnowledgeBase(loaded)
	if cat, idx, ok := a.issueView.Current(); ok {
		// Reloads keep the open issue by position; it may have moved.
		a.issueView.Show(loaded, cat, idx)
		return
	}
	a.issueView.ShowDashboard(loaded)
}

func (a *App) openIssue(categoryKey string, index int) {
	if !a.issueView.Show(a.kb, categoryKey, index) {
		a.logger.Warn("issue no longer available", "category", categoryKey, "index", index)
		a.setStatus(fmt.Sprintf("Issue %d in %s is no longer available", index, categoryKey), true)
		return
	}
	a.browseView.Select(categoryKey, index)
	a.focusedPane = PaneIssue
	if is, ok := a.kb.Issue(categoryKey, index); ok {
		a.setStatus(is.Title, false)
	}
}

func (a *App) propagateSize() {
	contentH := a.height - 4
	if contentH < 1 {
		contentH = 1
	}
	leftW := a.width * 40 / 100
	rightW := a.width - leftW - 4
	if rightW < 1 {
		rightW = 1
	}

	a.browseView, _ = a.browseView.Update(
		tea.WindowSizeMsg{Width: leftW, Height: contentH})
	a.issueView, _ = a.issueView.Update(
		tea.WindowSizeMsg{Width: rightW, Height: contentH})
	// Search panel: always full width (shown as an overlay)
	a.searchView, _ = a.searchView.Update(
		tea.WindowSizeMsg{Width: a.width - 4, Height: contentH})
	a.cacheView, _ = a.cacheView.Update(
		tea.WindowSizeMsg{Width: a.width - 4, Height: contentH})
}

// --- View ---

func (a App) View() string {
	header := RenderHeader(a.sourceName(), a.kb.IssueCount(), a.categoryCount(), a.width)

	var content string
	switch {
	case a.showHelp:
		content = a.renderHelp()
	case a.confirmDialog.IsActive():
		content = lipgloss.Place(a.width, a.contentHeight()+2, lipgloss.Center, lipgloss.Center, a.confirmDialog.View())
	case a.currentView == ViewCache:
		content = ui.StylePaneFocused.Width(a.width - 2).Height(a.contentHeight()).Render(a.cacheView.View())
	case a.searchView.IsVisible():
		content = a.renderSearch()
	default:
		content = a.renderPanes()
	}

	statusBar := RenderStatusBar(a.status, a.statusFail, a.contextHints(), a.width)

	// Hard clamp: header(1) + statusbar(1) = 2 lines of chrome.
	maxContentLines := a.height - 2
	if maxContentLines > 0 {
		lines := strings.Split(content, "\n")
		if len(lines) > maxContentLines {
			lines = lines[:maxContentLines]
			content = strings.Join(lines, "\n")
		}
	}

	return header + "\n" + content + "\n" + statusBar
}

func (a App) sourceName() string {
	if a.source == nil {
		return "no source"
	}
	return a.source.String()
}

func (a App) categoryCount() int {
	if a.kb == nil {
		return 0
	}
	n := 0
	for _, c := range a.kb.Categories {
		if c.Key != model.DashboardKey {
			n++
		}
	}
	return n
}

func (a App) contentHeight() int {
	contentH := a.height - 4
	if contentH < 1 {
		contentH = 1
	}
	return contentH
}

func (a App) renderSearch() string {
	style := ui.StylePaneFocused.Width(a.width - 2).Height(a.contentHeight())
	return style.Render(a.searchView.View())
}

func (a App) renderPanes() string {
	contentH := a.contentHeight()
	leftW := a.width * 40 / 100
	rightW := a.width - leftW - 4
	if rightW < 1 {
		rightW = 1
	}

	leftStyle := ui.StylePane.Width(leftW).Height(contentH)
	rightStyle := ui.StylePane.Width(rightW).Height(contentH)
	if a.focusedPane == PaneList {
		leftStyle = ui.StylePaneFocused.Width(leftW).Height(contentH)
	} else {
		rightStyle = ui.StylePaneFocused.Width(rightW).Height(contentH)
	}

	left := leftStyle.Render(a.browseView.View())
	right := rightStyle.Render(a.issueView.View())
	return lipgloss.JoinHorizontal(lipgloss.Top, left, right)
}

func (a App) contextHints() string {
	if a.confirmDialog.IsActive() {
		return "y:yes  n:no  tab:switch  esc:cancel"
	}
	if a.currentView == ViewCache {
		return "s:sort  d:delete  x:clear all  r:refresh  esc:back"
	}
	if a.searchView.IsVisible() {
		if a.searchView.IsInputMode() {
			return "enter:search  tab:results  esc:close"
		}
		return "enter:view details  j/k:navigate  /:edit query  esc:close"
	}
	if a.focusedPane == PaneIssue {
		return "j/k:scroll  esc:back  ctrl+f:search  ?:help"
	}
	return "enter:open  j/k:navigate  ctrl+f:search  r:reload  ?:help  q:quit"
}

func (a App) renderHelp() string {
	bold := lipgloss.NewStyle().Bold(true)
	keyStyle := lipgloss.NewStyle().Foreground(ui.ColorPrimary).Bold(true).Width(14)
	desc := lipgloss.NewStyle().Foreground(lipgloss.Color("#D1D5DB"))

	row := func(k, d string) string {
		return "  " + keyStyle.Render(k) + desc.Render(d) + "\n"
	}

	var b strings.Builder
	b.WriteString("\n" + bold.Render("  Navigation") + "\n\n")
	b.WriteString(row("tab", "Switch pane"))
	b.WriteString(row("j / k", "Move down / up"))
	b.WriteString(row("enter", "Open issue"))
	b.WriteString(row("esc", "Back to list"))
	b.WriteString(row("r", "Reload knowledge base"))
	if a.docCache != nil {
		b.WriteString(row("c", "Cached documents"))
	}
	b.WriteString(row("q", "Quit"))

	b.WriteString("\n" + bold.Render("  Search") + "\n\n")
	b.WriteString(row("ctrl+f / /", "Open search panel"))
	b.WriteString(row("enter", "Search now"))
	b.WriteString(row("tab", "Move to results"))
	b.WriteString(row("enter", "View details of selected result"))
	b.WriteString(row("esc", "Close search panel"))

	b.WriteString("\n" + lipgloss.NewStyle().Foreground(ui.ColorMuted).Render("  Press any key to close") + "\n")

	style := ui.StylePaneFocused.Width(a.width - 2).Height(a.contentHeight())
	return style.Render(b.String())
}
