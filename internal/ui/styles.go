package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	ColorPrimary   = lipgloss.Color("#7C3AED")
	ColorSuccess   = lipgloss.Color("#10B981")
	ColorFailure   = lipgloss.Color("#EF4444")
	ColorWarning   = lipgloss.Color("#F59E0B")
	ColorInfo      = lipgloss.Color("#3B82F6")
	ColorMuted     = lipgloss.Color("#6B7280")
	ColorBorder    = lipgloss.Color("#374151")
	ColorHighlight = lipgloss.Color("#1F2937")
	ColorLight     = lipgloss.Color("#F3F4F6")
	ColorDark      = lipgloss.Color("#111827")

	StylePane = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder)

	StylePaneFocused = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(ColorPrimary)

	StyleHeader = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#F9FAFB")).
			Background(ColorPrimary).
			Padding(0, 1)

	StyleSuccess = lipgloss.NewStyle().Foreground(ColorSuccess)
	StyleFailure = lipgloss.NewStyle().Foreground(ColorFailure)
	StyleWarning = lipgloss.NewStyle().Foreground(ColorWarning)
	StyleInfo    = lipgloss.NewStyle().Foreground(ColorInfo)
	StyleMuted   = lipgloss.NewStyle().Foreground(ColorMuted)

	// StyleBubble frames a single search panel message.
	StyleBubble = lipgloss.NewStyle().
			Foreground(ColorDark).
			Background(ColorLight).
			Padding(0, 1)

	StyleErrorCodeBadge = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#F9FAFB")).
				Background(ColorDark).
				Padding(0, 1)
)

// Badge is the visual class of a severity label.
type Badge int

const (
	BadgeLight Badge = iota
	BadgeDanger
	BadgeWarning
	BadgeInfo
	BadgeSecondary
)

func (b Badge) String() string {
	switch b {
	case BadgeDanger:
		return "danger"
	case BadgeWarning:
		return "warning"
	case BadgeInfo:
		return "info"
	case BadgeSecondary:
		return "secondary"
	default:
		return "light"
	}
}

// SeverityBadge maps a severity to its badge. Matching ignores case and any
// unrecognized value, including "", gets BadgeLight.
func SeverityBadge(severity string) Badge {
	switch strings.ToLower(severity) {
	case "critical":
		return BadgeDanger
	case "high":
		return BadgeWarning
	case "medium":
		return BadgeInfo
	case "low":
		return BadgeSecondary
	default:
		return BadgeLight
	}
}

func (b Badge) Style() lipgloss.Style {
	base := lipgloss.NewStyle().Padding(0, 1)
	switch b {
	case BadgeDanger:
		return base.Foreground(lipgloss.Color("#F9FAFB")).Background(ColorFailure)
	case BadgeWarning:
		return base.Foreground(ColorDark).Background(ColorWarning)
	case BadgeInfo:
		return base.Foreground(ColorDark).Background(lipgloss.Color("#67E8F9"))
	case BadgeSecondary:
		return base.Foreground(lipgloss.Color("#F9FAFB")).Background(ColorMuted)
	default:
		return base.Foreground(ColorDark).Background(ColorLight)
	}
}

// SeverityIcon is the one-character marker used in lists.
func SeverityIcon(severity string) string {
	switch SeverityBadge(severity) {
	case BadgeDanger:
		return StyleFailure.Render("!")
	case BadgeWarning:
		return StyleWarning.Render("▲")
	case BadgeInfo:
		return StyleInfo.Render("●")
	case BadgeSecondary:
		return StyleMuted.Render("○")
	default:
		return StyleMuted.Render("?")
	}
}
