package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/altinukshini/kbsearch/internal/ui"
)

func RenderHeader(source string, issues, categories int, width int) string {
	left := ui.StyleHeader.Render("kbsearch") +
		lipgloss.NewStyle().Foreground(lipgloss.Color("#F9FAFB")).Render(" | "+source)

	count := ""
	if categories > 0 {
		count = ui.StyleSuccess.Render(fmt.Sprintf("%d issues / %d categories ", issues, categories))
	}

	gap := width - lipgloss.Width(left) - lipgloss.Width(count)
	if gap < 0 {
		gap = 0
	}
	padding := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.NewStyle().
		Background(lipgloss.Color("#1F2937")).
		Width(width).
		Render(left + padding + count)
}
