package tui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/altinukshini/kbsearch/internal/ui"
)

// RenderStatusBar draws the status line on the left and key hints on the
// right. The status gives way to the hints when space runs out.
func RenderStatusBar(status string, failed bool, hints string, width int) string {
	statusStyle := ui.StyleMuted
	if failed {
		statusStyle = ui.StyleFailure.Bold(true)
	}
	right := ui.StyleMuted.Render(hints + " ")

	room := width - lipgloss.Width(right) - 2
	if room < 0 {
		room = 0
	}
	left := "  " + statusStyle.Render(ansi.Truncate(status, room, "…"))

	gap := max(width-lipgloss.Width(left)-lipgloss.Width(right), 0)
	return lipgloss.NewStyle().
		Background(ui.ColorDark).
		Width(width).
		Render(left + lipgloss.NewStyle().Width(gap).Render("") + right)
}
