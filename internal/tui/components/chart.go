package components

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/fincast/internal/tui/theme"
)

// Series is one line on a LineChart.
type Series struct {
	Name   string
	Values []float64
	Color  lipgloss.Color
	Glyph  rune
}

var sparkBlocks = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// Sparkline renders a unicode sparkline scaled between the lowest and
// highest value.
func Sparkline(values []float64, color lipgloss.Color) string {
	if len(values) == 0 {
		return ""
	}
	t := theme.Active

	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo, hi = math.Min(lo, v), math.Max(hi, v)
	}

	var buf strings.Builder
	buf.Grow(len(values) * 3) // UTF-8 block chars are 3 bytes
	for _, v := range values {
		idx := 0
		if hi > lo {
			idx = int((v - lo) / (hi - lo) * float64(len(sparkBlocks)-1))
		}
		idx = min(max(idx, 0), len(sparkBlocks)-1)
		buf.WriteRune(sparkBlocks[idx])
	}

	return lipgloss.NewStyle().Foreground(color).Background(t.Surface).Render(buf.String())
}

// LineChart plots one or more series over a shared x axis. Later series draw
// over earlier ones where they meet. marker is the x index of a vertical
// reference line, or -1 for none. labels, when given, must match the series
// length and are spread along the x axis.
func LineChart(series []Series, labels []string, marker, width, height int) string {
	n := 0
	for _, s := range series {
		n = max(n, len(s.Values))
	}
	if n == 0 {
		return ""
	}
	if width < 20 || height < 4 {
		return Sparkline(series[0].Values, series[0].Color)
	}

	t := theme.Active

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, s := range series {
		for _, v := range s.Values {
			lo, hi = math.Min(lo, v), math.Max(hi, v)
		}
	}
	floor, ceiling, step := chartBounds(lo, hi, height)

	yLabelW := 4
	for v := floor; v <= ceiling+step/2; v += step {
		yLabelW = max(yLabelW, len(formatChartLabel(v))+1)
	}
	plotW := max(width-yLabelW-1, 5)
	rows := height

	// Each plot column samples the series at its proportional index.
	colIdx := func(col int) int {
		if plotW == 1 || n == 1 {
			return 0
		}
		return col * (n - 1) / (plotW - 1)
	}
	rowOf := func(v float64) int {
		frac := (v - floor) / (ceiling - floor)
		return int(math.Round(frac * float64(rows-1)))
	}

	// grid[row][col], row 0 at the bottom.
	type cell struct {
		glyph rune
		color lipgloss.Color
	}
	grid := make([][]cell, rows)
	for r := range grid {
		grid[r] = make([]cell, plotW)
	}

	markerCol := -1
	if marker >= 0 && marker < n {
		if n == 1 {
			markerCol = 0
		} else {
			markerCol = int(math.Round(float64(marker) * float64(plotW-1) / float64(n-1)))
		}
		for r := range grid {
			grid[r][markerCol] = cell{'│', t.Today}
		}
	}

	for _, s := range series {
		glyph := s.Glyph
		if glyph == 0 {
			glyph = '•'
		}
		for col := 0; col < plotW; col++ {
			i := colIdx(col)
			if i >= len(s.Values) {
				continue
			}
			r := min(max(rowOf(s.Values[i]), 0), rows-1)
			grid[r][col] = cell{glyph, s.Color}
		}
	}

	// Tick labels land on the rows nearest each step.
	tickLabels := make(map[int]string)
	for v := floor; v <= ceiling+step/2; v += step {
		tickLabels[rowOf(v)] = formatChartLabel(v)
	}

	axisStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	blankStyle := lipgloss.NewStyle().Background(t.Surface)

	var b strings.Builder
	for r := rows - 1; r >= 0; r-- {
		b.WriteString(axisStyle.Render(fmt.Sprintf("%*s", yLabelW, tickLabels[r])))
		b.WriteString(axisStyle.Render("┤"))
		for _, c := range grid[r] {
			if c.glyph == 0 {
				b.WriteString(blankStyle.Render(" "))
				continue
			}
			b.WriteString(lipgloss.NewStyle().Foreground(c.color).Background(t.Surface).Render(string(c.glyph)))
		}
		b.WriteString("\n")
	}

	b.WriteString(axisStyle.Render(strings.Repeat(" ", yLabelW)))
	b.WriteString(axisStyle.Render("└"))
	b.WriteString(axisStyle.Render(strings.Repeat("─", plotW)))

	if len(labels) == n {
		b.WriteString("\n")
		b.WriteString(blankStyle.Render(strings.Repeat(" ", yLabelW+1)))
		b.WriteString(axisStyle.Render(xAxisLabels(labels, plotW)))
	}

	legend := make([]string, 0, len(series))
	for _, s := range series {
		if s.Name == "" {
			continue
		}
		glyph := s.Glyph
		if glyph == 0 {
			glyph = '•'
		}
		legend = append(legend,
			lipgloss.NewStyle().Foreground(s.Color).Background(t.Surface).Render(string(glyph)+" "+s.Name))
	}
	if len(legend) > 0 {
		b.WriteString("\n")
		b.WriteString(blankStyle.Render(strings.Repeat(" ", yLabelW+1)))
		b.WriteString(strings.Join(legend, blankStyle.Render("   ")))
	}

	return b.String()
}

// xAxisLabels spreads labels across w columns, keeping the first and last
// and at least two spaces between neighbors.
func xAxisLabels(labels []string, w int) string {
	buf := []rune(strings.Repeat(" ", w))
	n := len(labels)
	lastEnd := -2

	place := func(i int, force bool) {
		lbl := []rune(labels[i])
		pos := 0
		if n > 1 {
			pos = i * (w - 1) / (n - 1)
		}
		pos = min(pos, w-len(lbl))
		if pos < 0 || (!force && pos <= lastEnd+1) {
			return
		}
		copy(buf[pos:], lbl)
		lastEnd = pos + len(lbl)
	}

	gap := max(1, n*8/max(w, 1))
	for i := 0; i < n-1; i += gap {
		// Leave room for the final label.
		if n > 1 && i*(w-1)/(n-1)+len([]rune(labels[i])) >= w-len([]rune(labels[n-1]))-1 {
			break
		}
		place(i, false)
	}
	place(n-1, true)

	return strings.TrimRight(string(buf), " ")
}

// chartBounds picks a floor, ceiling and tick step covering [lo, hi] with
// at most about height/2 intervals.
func chartBounds(lo, hi float64, height int) (floor, ceiling, step float64) {
	if lo == hi {
		pad := math.Max(math.Abs(lo)*0.1, 1)
		lo, hi = lo-pad, hi+pad
	}
	step = chartTickStep(hi - lo)
	maxIntervals := max(height/2, 2)
	for {
		floor = math.Floor(lo/step) * step
		ceiling = math.Ceil(hi/step) * step
		if int(math.Round((ceiling-floor)/step)) <= maxIntervals {
			return floor, ceiling, step
		}
		step *= 2
	}
}

// chartTickStep computes a nice tick interval targeting ~5 ticks.
func chartTickStep(span float64) float64 {
	if span <= 0 {
		return 1
	}
	rough := span / 5
	exp := math.Floor(math.Log10(rough))
	base := math.Pow(10, exp)
	frac := rough / base

	switch {
	case frac < 1.5:
		return base
	case frac < 3.5:
		return 2 * base
	default:
		return 5 * base
	}
}

func formatChartLabel(v float64) string {
	sign := ""
	if v < 0 {
		sign, v = "-", -v
	}
	var s string
	switch {
	case v >= 1e6:
		s = trimZero(fmt.Sprintf("%.1f", v/1e6)) + "M"
	case v >= 1e3:
		s = trimZero(fmt.Sprintf("%.1f", v/1e3)) + "k"
	case v >= 1 || v == 0:
		s = fmt.Sprintf("%.0f", v)
	default:
		s = fmt.Sprintf("%.2f", v)
	}
	return sign + s
}

func trimZero(s string) string {
	return strings.TrimSuffix(s, ".0")
}
