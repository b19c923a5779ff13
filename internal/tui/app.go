// Package tui provides the interactive Bubble Tea dashboard for fincast.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/theirongolddev/fincast/internal/model"
	"github.com/theirongolddev/fincast/internal/pipeline"
	"github.com/theirongolddev/fincast/internal/tui/components"
	"github.com/theirongolddev/fincast/internal/tui/theme"
)

// Saver persists a state the dashboard has accepted.
type Saver interface {
	Save(model.State) error
}

// Options carries the settings the dashboard needs from config.
type Options struct {
	Currency    string
	Stride      int
	ChartHeight int
	ExportDir   string
	Logger      zerolog.Logger
	// Now overrides the clock, for tests.
	Now func() time.Time
}

const (
	tabOverview = iota
	tabRules
	tabEvents
	tabMovements
)

const (
	minTerminalWidth = 80
	maxContentWidth  = 180
	minContentHeight = 5
)

// App is the root Bubble Tea model.
type App struct {
	store Saver
	opts  Options
	log   zerolog.Logger

	// Data
	state  model.State
	result pipeline.Result
	feed   []pipeline.FeedPoint
	months []pipeline.MonthStats
	stats  pipeline.YearStats
	err    error // last projection error

	// UI state
	width     int
	height    int
	activeTab int
	showHelp  bool
	tables    [3]table.Model // rules, events, movements

	// Active form, if any
	form     *huh.Form
	formKind formKind
	editIdx  int
	vals     *formValues

	// Flash message in the status bar
	flash      string
	flashIsErr bool
}

// NewApp creates the dashboard over an already loaded state.
func NewApp(st Saver, state model.State, opts Options) App {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Stride < 1 {
		opts.Stride = pipeline.DefaultStride
	}
	if opts.ChartHeight < 4 {
		opts.ChartHeight = 12
	}
	if opts.ExportDir == "" {
		opts.ExportDir = "."
	}

	a := App{
		store: st,
		opts:  opts,
		log:   opts.Logger,
		state: state.Clone(),
	}
	for i := range a.tables {
		a.tables[i] = newEntryTable(i + tabRules)
	}
	a.recompute()
	return a
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	return tea.EnableMouseCellMotion
}

// State returns the dashboard's current state.
func (a App) State() model.State {
	return a.state.Clone()
}

// recompute reruns the projection over the current state and refreshes
// everything derived from it.
func (a *App) recompute() {
	res, err := pipeline.Run(a.state)
	a.err = err
	if err != nil {
		a.log.Warn().Err(err).Msg("projection failed")
		a.result, a.feed, a.months, a.stats = pipeline.Result{}, nil, nil, pipeline.YearStats{}
	} else {
		a.result = res
		a.feed = pipeline.Feed(res.Points, a.opts.Stride)
		a.months = pipeline.MonthlySummary(res.Points, a.state.InitialBalance)
		a.stats = pipeline.Aggregate(res.Points)
	}
	a.refreshTables()
}

// apply runs mutate on a copy of the state and saves the result. On any
// error nothing is stored and the error is flashed.
func (a *App) apply(what string, mutate func(*model.State) error) {
	next := a.state.Clone()
	if err := mutate(&next); err != nil {
		a.setFlash(err.Error(), true)
		return
	}
	if a.store != nil {
		if err := a.store.Save(next); err != nil {
			a.log.Error().Err(err).Str("action", what).Msg("save failed")
			a.setFlash("save failed: "+err.Error(), true)
			return
		}
	}
	a.log.Debug().Str("action", what).Msg("state saved")
	a.state = next
	a.recompute()
	a.setFlash(what, false)
}

func (a *App) setFlash(msg string, isErr bool) {
	a.flash, a.flashIsErr = msg, isErr
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.resizeTables()
		if a.form != nil {
			a.form = a.form.WithWidth(a.formWidth())
		}
		return a, nil

	case tea.MouseMsg:
		if a.form != nil || a.showHelp {
			return a, nil
		}
		if msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft && msg.Y == 0 {
			if tab := a.tabAtX(msg.X); tab >= 0 {
				a.activeTab = tab
			}
			return a, nil
		}
		if ti := a.activeTable(); ti >= 0 {
			switch msg.Button {
			case tea.MouseButtonWheelUp:
				a.tables[ti].MoveUp(1)
			case tea.MouseButtonWheelDown:
				a.tables[ti].MoveDown(1)
			}
		}
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		if a.form != nil {
			return a.updateForm(msg)
		}
		return a.updateKeys(msg)
	}

	if a.form != nil {
		return a.updateForm(msg)
	}
	return a, nil
}

func (a App) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if key == "?" {
		a.showHelp = !a.showHelp
		return a, nil
	}
	if a.showHelp {
		a.showHelp = false
		return a, nil
	}

	switch key {
	case "q":
		return a, tea.Quit
	case "esc":
		a.flash = ""
		return a, nil
	case "left", "shift+tab":
		a.activeTab = (a.activeTab - 1 + len(components.Tabs)) % len(components.Tabs)
		return a, nil
	case "right", "tab":
		a.activeTab = (a.activeTab + 1) % len(components.Tabs)
		return a, nil
	case "s":
		return a.openForm(formSettings, -1)
	case "x":
		return a.openForm(formExport, -1)
	case "i":
		return a.openForm(formImport, -1)
	}

	if len(msg.Runes) == 1 {
		if idx := components.TabIdxByKey(msg.Runes[0]); idx >= 0 {
			a.activeTab = idx
			return a, nil
		}
	}

	ti := a.activeTable()
	if ti < 0 {
		return a, nil
	}
	kind := entryKinds[ti]

	switch key {
	case "a":
		return a.openForm(kind.add, -1)
	case "e", "enter":
		if idx, ok := a.selected(ti); ok {
			return a.openForm(kind.edit, idx)
		}
		return a, nil
	case "d", "delete":
		if idx, ok := a.selected(ti); ok {
			return a.openForm(kind.remove, idx)
		}
		return a, nil
	}

	var cmd tea.Cmd
	a.tables[ti], cmd = a.tables[ti].Update(msg)
	return a, cmd
}

// activeTable returns the table index for the active tab, or -1 on the
// overview.
func (a App) activeTable() int {
	if a.activeTab == tabOverview {
		return -1
	}
	return a.activeTab - tabRules
}

func (a App) selected(ti int) (int, bool) {
	n := len(a.tables[ti].Rows())
	c := a.tables[ti].Cursor()
	if n == 0 || c < 0 || c >= n {
		return 0, false
	}
	return c, true
}

func (a App) contentWidth() int {
	return min(a.width, maxContentWidth)
}

func (a App) formWidth() int {
	return min(max(a.contentWidth()-8, 40), 72)
}

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}
	if a.width < minTerminalWidth {
		return a.viewTooNarrow()
	}
	if a.form != nil {
		return a.viewForm()
	}
	if a.showHelp {
		return a.viewHelp()
	}
	return a.viewMain()
}

func (a App) viewTooNarrow() string {
	h := max(a.height, 5)
	msg := fmt.Sprintf(
		"\n  Terminal too narrow (%d cols)\n\n  fincast needs at least %d columns.\n",
		a.width,
		minTerminalWidth,
	)
	return padHeight(truncateHeight(msg, h), h)
}

func (a App) viewForm() string {
	t := theme.Active
	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Padding(1, 2)
	titleStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Bold(true)
	hintStyle := lipgloss.NewStyle().Foreground(t.TextDim)

	body := titleStyle.Render(a.formKind.title()) + "\n\n" +
		a.form.View() + "\n" +
		hintStyle.Render("esc cancel")

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(body),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewHelp() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(1, 3)
	titleStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	sectionStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	keyStyle := lipgloss.NewStyle().Foreground(t.Today).Background(t.Surface).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	var b strings.Builder
	b.WriteString(titleStyle.Render("◈ Keyboard Shortcuts"))
	b.WriteString("\n\n")

	sections := []struct {
		name     string
		bindings []struct{ key, desc string }
	}{
		{"Navigation", []struct{ key, desc string }{
			{"1 2 3 4", "Jump to tab"},
			{"← → tab", "Previous / Next tab"},
			{"j k ↑ ↓", "Move in lists"},
		}},
		{"Entries", []struct{ key, desc string }{
			{"a", "Add"},
			{"e Enter", "Edit selected"},
			{"d", "Delete selected"},
		}},
		{"Projection", []struct{ key, desc string }{
			{"s", "Set year / initial balance"},
			{"x", "Export snapshot"},
			{"i", "Import snapshot"},
			{"?", "Toggle help"},
			{"q", "Quit"},
		}},
	}
	for _, sec := range sections {
		b.WriteString(sectionStyle.Render(sec.name))
		b.WriteString("\n")
		for _, bind := range sec.bindings {
			fmt.Fprintf(&b, "  %s  %s\n",
				keyStyle.Render(fmt.Sprintf("%-10s", bind.key)),
				descStyle.Render(bind.desc))
		}
		b.WriteString("\n")
	}
	b.WriteString(dimStyle.Render("Press any key to close"))

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewMain() string {
	t := theme.Active
	w := a.width
	cw := a.contentWidth()
	h := a.height

	header := components.RenderTabBar(a.activeTab, fmt.Sprintf("fincast %d", a.state.Year), w)

	hints := "[?]help  [s]et  [x]export  [i]import  [q]uit"
	if a.activeTable() >= 0 {
		hints = "[a]dd  [e]dit  [d]elete  " + hints
	}
	statusBar := components.RenderStatusBar(w, hints, a.flash, a.flashIsErr)

	contentH := max(h-lipgloss.Height(header)-lipgloss.Height(statusBar), minContentHeight)

	var content string
	switch a.activeTab {
	case tabOverview:
		content = a.renderOverviewTab(cw)
	default:
		content = a.renderEntriesTab(a.activeTable(), cw)
	}

	content = padHeight(truncateHeight(content, contentH), contentH)
	content = fillLinesWithBackground(content, cw, t.Background)
	content = lipgloss.Place(w, contentH, lipgloss.Center, lipgloss.Top, content,
		lipgloss.WithWhitespaceBackground(t.Background))

	output := lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)
	return lipgloss.Place(w, h, lipgloss.Left, lipgloss.Top, output,
		lipgloss.WithWhitespaceBackground(t.Background))
}

// ─── Helpers ────────────────────────────────────────────────────

func truncateHeight(s string, limit int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= limit {
		return s
	}
	return strings.Join(lines[:limit], "\n")
}

func padHeight(s string, h int) string {
	lines := strings.Split(s, "\n")
	if len(lines) >= h {
		return s
	}
	return s + strings.Repeat("\n", h-len(lines))
}

// fillLinesWithBackground pads each line to width w with background color.
func fillLinesWithBackground(s string, w int, bg lipgloss.Color) string {
	lines := strings.Split(s, "\n")

	var result strings.Builder
	for i, line := range lines {
		result.WriteString(lipgloss.PlaceHorizontal(w, lipgloss.Left, line,
			lipgloss.WithWhitespaceBackground(bg)))
		if i < len(lines)-1 {
			result.WriteString("\n")
		}
	}
	return result.String()
}

func truncStr(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}

// ─── Mouse Support ──────────────────────────────────────────────

// tabAtX returns the tab index at the given X coordinate, or -1 if none.
// Hitboxes use the same widths RenderTabBar renders.
func (a App) tabAtX(x int) int {
	pos := 0
	for i := range components.Tabs {
		tabW := components.TabVisualWidth(i, i == a.activeTab)
		if x >= pos && x < pos+tabW {
			return i
		}
		pos += tabW + 1 // separator
	}
	return -1
}
