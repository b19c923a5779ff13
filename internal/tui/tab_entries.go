package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/fincast/internal/cli"
	"github.com/theirongolddev/fincast/internal/tui/components"
	"github.com/theirongolddev/fincast/internal/tui/theme"
)

// entryColumns are the table headers per list tab, with relative widths.
var entryColumns = map[int][]table.Column{
	tabRules: {
		{Title: "#", Width: 4},
		{Title: "Title", Width: 24},
		{Title: "Amount", Width: 14},
		{Title: "Day", Width: 6},
		{Title: "Active from", Width: 12},
	},
	tabEvents: {
		{Title: "#", Width: 4},
		{Title: "Date", Width: 12},
		{Title: "Title", Width: 24},
		{Title: "Amount", Width: 14},
		{Title: "Description", Width: 30},
	},
	tabMovements: {
		{Title: "#", Width: 4},
		{Title: "Date", Width: 12},
		{Title: "Title", Width: 24},
		{Title: "Amount", Width: 14},
		{Title: "Note", Width: 30},
	},
}

func newEntryTable(tab int) table.Model {
	t := theme.Active

	tb := table.New(
		table.WithColumns(entryColumns[tab]),
		table.WithFocused(true),
		table.WithHeight(10),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(t.Border).
		BorderBottom(true).
		Foreground(t.TextMuted).
		Bold(true)
	s.Cell = s.Cell.Foreground(t.TextPrimary)
	s.Selected = s.Selected.
		Foreground(t.AccentBright).
		Background(t.SurfaceHover).
		Bold(true)
	tb.SetStyles(s)
	return tb
}

// refreshTables rebuilds the table rows from the state and keeps each
// cursor within bounds.
func (a *App) refreshTables() {
	cur := a.opts.Currency

	rules := make([]table.Row, len(a.state.MonthlyRules))
	for i, r := range a.state.MonthlyRules {
		rules[i] = table.Row{strconv.Itoa(i + 1), r.Title, cli.FormatAmount(r.Amount, cur), cli.FormatOrdinal(r.DayOfMonth), r.ActiveFrom.String()}
	}
	events := make([]table.Row, len(a.state.PlannedEvents))
	for i, e := range a.state.PlannedEvents {
		events[i] = table.Row{strconv.Itoa(i + 1), e.Date.String(), e.Title, cli.FormatAmount(e.Amount, cur), e.Description}
	}
	movements := make([]table.Row, len(a.state.RealMovements))
	for i, m := range a.state.RealMovements {
		movements[i] = table.Row{strconv.Itoa(i + 1), m.Date.String(), m.Title, cli.FormatAmount(m.Amount, cur), m.Note}
	}

	for i, rows := range [][]table.Row{rules, events, movements} {
		a.tables[i].SetRows(rows)
		if c := a.tables[i].Cursor(); c >= len(rows) {
			a.tables[i].SetCursor(max(len(rows)-1, 0))
		}
	}
}

// resizeTables fits the tables to the content area.
func (a *App) resizeTables() {
	cw := components.CardInnerWidth(a.contentWidth())
	h := max(a.height-9, 3)

	for i := range a.tables {
		tab := i + tabRules
		base := entryColumns[tab]
		total := 0
		for _, c := range base {
			total += c.Width + 2 // cell padding
		}
		extra := max(cw-total, 0)

		cols := make([]table.Column, len(base))
		copy(cols, base)
		// The last free-text column absorbs any spare width.
		cols[len(cols)-1].Width += extra

		a.tables[i].SetColumns(cols)
		a.tables[i].SetWidth(cw)
		a.tables[i].SetHeight(h)
	}
}

func (a App) renderEntriesTab(ti, cw int) string {
	t := theme.Active
	cur := a.opts.Currency
	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	var (
		title string
		total decimal.Decimal
		count int
	)
	switch ti + tabRules {
	case tabRules:
		title, count = "Monthly rules", len(a.state.MonthlyRules)
		for _, r := range a.state.MonthlyRules {
			total = total.Add(r.Amount)
		}
	case tabEvents:
		title, count = "Planned events", len(a.state.PlannedEvents)
		for _, e := range a.state.PlannedEvents {
			if e.Date.Year() == a.state.Year {
				total = total.Add(e.Amount)
			}
		}
	case tabMovements:
		title, count = "Real movements", len(a.state.RealMovements)
		for _, m := range a.state.RealMovements {
			if m.Date.Year() == a.state.Year {
				total = total.Add(m.Amount)
			}
		}
	}

	var body strings.Builder
	if count == 0 {
		body.WriteString(mutedStyle.Render("Nothing here yet. Press a to add one."))
	} else {
		body.WriteString(a.tables[ti].View())
	}

	summary := fmt.Sprintf("%d entries", count)
	switch ti + tabRules {
	case tabRules:
		summary += "  ·  " + cli.FormatSigned(total, cur) + " per month when all active"
	default:
		summary += fmt.Sprintf("  ·  %s in %d", cli.FormatSigned(total, cur), a.state.Year)
	}
	body.WriteString("\n\n")
	body.WriteString(mutedStyle.Render(summary))

	return components.ContentCard(title, body.String(), cw)
}
