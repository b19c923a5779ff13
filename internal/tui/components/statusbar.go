package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/fincast/internal/tui/theme"
)

// RenderStatusBar renders the bottom status bar: key hints on the left and
// the last flash message on the right, in the negative color when isErr.
func RenderStatusBar(width int, hints, message string, isErr bool) string {
	t := theme.Active

	style := lipgloss.NewStyle().
		Foreground(t.TextMuted).
		Background(t.Surface).
		Width(width)

	msgStyle := lipgloss.NewStyle().Foreground(t.Positive).Background(t.Surface)
	if isErr {
		msgStyle = msgStyle.Foreground(t.Negative).Bold(true)
	}

	left := " " + hints
	right := ""
	if message != "" {
		right = msgStyle.Render(message + " ")
	}

	padding := max(width-lipgloss.Width(left)-lipgloss.Width(right), 1)

	return style.Render(left + strings.Repeat(" ", padding) + right)
}
