package components

import (
	"fmt"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/fincast/internal/tui/theme"
)

// YearProgress renders how far through the projected year today is, as
// "label [bar] day/total". day outside 1..total renders empty or full.
func YearProgress(label string, day, total, labelW, barWidth int) string {
	t := theme.Active

	pct := 0.0
	if total > 0 {
		pct = min(max(float64(day)/float64(total), 0), 1)
	}

	bar := progress.New(
		progress.WithSolidFill(string(t.Accent)),
		progress.WithWidth(max(barWidth, 4)),
		progress.WithoutPercentage(),
	)
	bar.EmptyColor = string(t.TextDim)

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	countStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface).Bold(true)
	spaceStyle := lipgloss.NewStyle().Background(t.Surface)

	shown := min(max(day, 0), total)
	return labelStyle.Render(fmt.Sprintf("%-*s", labelW, label)) +
		spaceStyle.Render(" ") +
		bar.ViewAs(pct) +
		spaceStyle.Render(" ") +
		countStyle.Render(fmt.Sprintf("%d/%d", shown, total)) +
		spaceStyle.Render(" ") +
		labelStyle.Render(fmt.Sprintf("%3.0f%%", pct*100))
}

// BalanceColor picks the theme color for a balance or delta sign.
func BalanceColor(sign int) lipgloss.Color {
	t := theme.Active
	switch {
	case sign < 0:
		return t.Negative
	case sign > 0:
		return t.Positive
	default:
		return t.TextPrimary
	}
}
