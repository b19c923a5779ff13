package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/fincast/internal/calendar"
	"github.com/theirongolddev/fincast/internal/cli"
	"github.com/theirongolddev/fincast/internal/tui/components"
	"github.com/theirongolddev/fincast/internal/tui/theme"
)

func (a App) renderOverviewTab(cw int) string {
	t := theme.Active
	cur := a.opts.Currency

	if a.err != nil {
		return components.ContentCard("Projection unavailable",
			lipgloss.NewStyle().Foreground(t.Negative).Background(t.Surface).Render(a.err.Error()), cw)
	}

	var b strings.Builder

	// Row 1: today and year-end metrics
	now := a.opts.Now()
	today, inYear := a.result.Today(now)
	last := a.result.Last()

	metrics := make([]components.Metric, 0, 4)
	if inYear {
		delta := today.Delta()
		metrics = append(metrics,
			components.Metric{Label: "Forecast today", Value: cli.FormatAmount(today.Forecast, cur), ValueColor: t.Forecast},
			components.Metric{Label: "Real today", Value: cli.FormatAmount(today.Real, cur), ValueColor: t.Real},
			components.Metric{
				Label:      "Real vs forecast",
				Value:      cli.FormatSigned(delta, cur),
				Note:       cli.FormatDate(today.Date),
				ValueColor: components.BalanceColor(delta.Round(2).Sign()),
			},
		)
	} else {
		metrics = append(metrics, components.Metric{
			Label: "Today",
			Value: cli.FormatDate(now),
			Note:  fmt.Sprintf("outside %d", a.result.Year),
		})
	}
	metrics = append(metrics, components.Metric{
		Label:      "Year end",
		Value:      cli.FormatAmount(last.Forecast, cur),
		Note:       "real " + cli.FormatAmount(last.Real, cur),
		ValueColor: components.BalanceColor(last.Forecast.Sign()),
	})
	b.WriteString(components.MetricCardRow(metrics, cw))
	b.WriteString("\n")

	// Row 2: both balance lines
	if len(a.feed) > 0 {
		forecast := make([]float64, len(a.feed))
		real := make([]float64, len(a.feed))
		labels := make([]string, len(a.feed))
		marker := -1
		for i, p := range a.feed {
			forecast[i], _ = p.Forecast.Float64()
			real[i], _ = p.Real.Float64()
			labels[i] = p.Label
			if inYear && p.Day <= today.Day {
				marker = i
			}
		}
		chart := components.LineChart([]components.Series{
			{Name: "forecast", Values: forecast, Color: t.Forecast, Glyph: '•'},
			{Name: "real", Values: real, Color: t.Real, Glyph: '∙'},
		}, labels, marker, components.CardInnerWidth(cw), a.opts.ChartHeight)

		b.WriteString(components.ContentCard(fmt.Sprintf("Balance %d", a.result.Year), chart, cw))
		b.WriteString("\n")
	}

	// Row 3: year progress and headline stats | monthly summary
	halves := components.LayoutRow(cw, 2)

	var left strings.Builder
	if inYear {
		left.WriteString(components.YearProgress("Year", today.Day, calendar.DaysInYear(a.result.Year), 6,
			max(components.CardInnerWidth(halves[0])-24, 8)))
		left.WriteString("\n\n")
	}
	left.WriteString(a.renderYearStats())

	b.WriteString(components.CardRow([]string{
		components.ContentCard("Year", left.String(), halves[0]),
		components.ContentCard("Months", a.renderMonths(components.CardInnerWidth(halves[1])), halves[1]),
	}))

	return b.String()
}

func (a App) renderYearStats() string {
	t := theme.Active
	cur := a.opts.Currency
	st := a.stats

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	warnStyle := lipgloss.NewStyle().Foreground(t.Warning).Background(t.Surface).Bold(true)

	dayDate := func(day int) string {
		d, err := calendar.DayIndexToDate(a.result.Year, day)
		if err != nil {
			return "-"
		}
		return d.Format("02 Jan")
	}

	rows := []struct{ label, value string }{
		{"Opening", cli.FormatAmount(a.state.InitialBalance, cur)},
		{"Lowest fcst", fmt.Sprintf("%s on %s", cli.FormatAmount(st.LowestForecast, cur), dayDate(st.LowestForecastDay))},
		{"Highest fcst", fmt.Sprintf("%s on %s", cli.FormatAmount(st.HighestForecast, cur), dayDate(st.HighestForecastDay))},
		{"Lowest real", fmt.Sprintf("%s on %s", cli.FormatAmount(st.LowestReal, cur), dayDate(st.LowestRealDay))},
		{"Entries", fmt.Sprintf("%d rules  %d events  %d movements",
			len(a.state.MonthlyRules), len(a.state.PlannedEvents), len(a.state.RealMovements))},
	}

	var b strings.Builder
	for _, r := range rows {
		b.WriteString(labelStyle.Render(fmt.Sprintf("%-13s", r.label)))
		b.WriteString(valueStyle.Render(r.value))
		b.WriteString("\n")
	}
	if st.FirstNegativeDay > 0 {
		b.WriteString(warnStyle.Render("Forecast goes negative on " + dayDate(st.FirstNegativeDay)))
	}
	return strings.TrimRight(b.String(), "\n")
}

func (a App) renderMonths(innerW int) string {
	t := theme.Active
	cur := a.opts.Currency

	headStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface).Bold(true)
	monthStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	forecastStyle := lipgloss.NewStyle().Foreground(t.Forecast).Background(t.Surface)
	realStyle := lipgloss.NewStyle().Foreground(t.Real).Background(t.Surface)

	colW := max((innerW-5)/3, 10)

	var b strings.Builder
	b.WriteString(headStyle.Render(fmt.Sprintf("%-5s%*s%*s%*s", "", colW, "Forecast", colW, "Real", colW, "Delta")))
	for _, m := range a.months {
		delta := m.Delta()
		deltaStyle := lipgloss.NewStyle().Foreground(components.BalanceColor(delta.Round(2).Sign())).Background(t.Surface)
		b.WriteString("\n")
		b.WriteString(monthStyle.Render(fmt.Sprintf("%-5s", m.Month.String()[:3])))
		b.WriteString(forecastStyle.Render(fmt.Sprintf("%*s", colW, truncStr(cli.FormatAmount(m.Forecast, cur), colW-1))))
		b.WriteString(realStyle.Render(fmt.Sprintf("%*s", colW, truncStr(cli.FormatAmount(m.Real, cur), colW-1))))
		b.WriteString(deltaStyle.Render(fmt.Sprintf("%*s", colW, truncStr(cli.FormatSigned(delta, cur), colW-1))))
	}
	return b.String()
}
