package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/fincast/internal/tui/theme"
)

// Tab represents a single tab in the tab bar.
type Tab struct {
	Name string
	Key  rune
}

// Tabs defines all available tabs.
var Tabs = []Tab{
	{Name: "Overview", Key: '1'},
	{Name: "Rules", Key: '2'},
	{Name: "Events", Key: '3'},
	{Name: "Movements", Key: '4'},
}

const tabPadding = 1

func tabLabel(tab Tab, active bool) string {
	if active {
		return tab.Name
	}
	return tab.Name + " " + string(tab.Key)
}

// TabVisualWidth returns the rendered width of a tab, padding included.
func TabVisualWidth(i int, active bool) int {
	return lipgloss.Width(tabLabel(Tabs[i], active)) + 2*tabPadding
}

// RenderTabBar renders the tab bar with the given active index and a right
// aligned title.
func RenderTabBar(activeIdx int, title string, width int) string {
	t := theme.Active

	activeStyle := lipgloss.NewStyle().
		Foreground(t.AccentBright).
		Background(t.SurfaceHover).
		Bold(true).
		Padding(0, tabPadding)

	inactiveStyle := lipgloss.NewStyle().
		Foreground(t.TextMuted).
		Background(t.Surface).
		Padding(0, tabPadding)

	sepStyle := lipgloss.NewStyle().Foreground(t.Border).Background(t.Surface)
	titleStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)

	parts := make([]string, 0, len(Tabs))
	for i, tab := range Tabs {
		if i == activeIdx {
			parts = append(parts, activeStyle.Render(tabLabel(tab, true)))
		} else {
			parts = append(parts, inactiveStyle.Render(tabLabel(tab, false)))
		}
	}
	bar := strings.Join(parts, sepStyle.Render("│"))

	right := titleStyle.Render(title + " ")
	gap := max(width-lipgloss.Width(bar)-lipgloss.Width(right), 0)

	return bar + lipgloss.NewStyle().Background(t.Surface).Render(strings.Repeat(" ", gap)) + right
}

// TabIdxByKey returns the tab index for a given key press, or -1.
func TabIdxByKey(key rune) int {
	for i, tab := range Tabs {
		if tab.Key == key {
			return i
		}
	}
	return -1
}
