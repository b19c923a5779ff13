package tui

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/theirongolddev/fincast/internal/calendar"
	"github.com/theirongolddev/fincast/internal/model"
	"github.com/theirongolddev/fincast/internal/snapshot"
)

type formKind int

const (
	formNone formKind = iota
	formAddRule
	formEditRule
	formDeleteRule
	formAddEvent
	formEditEvent
	formDeleteEvent
	formAddMovement
	formEditMovement
	formDeleteMovement
	formSettings
	formExport
	formImport
)

func (k formKind) title() string {
	switch k {
	case formAddRule:
		return "New monthly rule"
	case formEditRule:
		return "Edit monthly rule"
	case formDeleteRule:
		return "Delete monthly rule"
	case formAddEvent:
		return "New planned event"
	case formEditEvent:
		return "Edit planned event"
	case formDeleteEvent:
		return "Delete planned event"
	case formAddMovement:
		return "New real movement"
	case formEditMovement:
		return "Edit real movement"
	case formDeleteMovement:
		return "Delete real movement"
	case formSettings:
		return "Projection settings"
	case formExport:
		return "Export snapshot"
	case formImport:
		return "Import snapshot"
	default:
		return ""
	}
}

// entryKinds maps a table index to its add/edit/delete forms.
var entryKinds = [3]struct{ add, edit, remove formKind }{
	{formAddRule, formEditRule, formDeleteRule},
	{formAddEvent, formEditEvent, formDeleteEvent},
	{formAddMovement, formEditMovement, formDeleteMovement},
}

// formValues holds the raw strings bound to huh fields.
type formValues struct {
	Title   string
	Amount  string
	Day     string
	Date    string
	Text    string // description or note
	Year    string
	Balance string
	Path    string
	Confirm bool
}

func (v formValues) rule() (model.MonthlyRule, error) {
	amount, err := model.ParseAmount(v.Amount)
	if err != nil {
		return model.MonthlyRule{}, err
	}
	day, err := parseDay(v.Day)
	if err != nil {
		return model.MonthlyRule{}, err
	}
	from, err := parseFormDate("activeFrom", v.Date)
	if err != nil {
		return model.MonthlyRule{}, err
	}
	return model.MonthlyRule{Title: strings.TrimSpace(v.Title), Amount: amount, DayOfMonth: day, ActiveFrom: from}, nil
}

func (v formValues) event() (model.PlannedEvent, error) {
	amount, err := model.ParseAmount(v.Amount)
	if err != nil {
		return model.PlannedEvent{}, err
	}
	date, err := parseFormDate("date", v.Date)
	if err != nil {
		return model.PlannedEvent{}, err
	}
	return model.PlannedEvent{Title: strings.TrimSpace(v.Title), Amount: amount, Date: date, Description: strings.TrimSpace(v.Text)}, nil
}

func (v formValues) movement() (model.RealMovement, error) {
	amount, err := model.ParseAmount(v.Amount)
	if err != nil {
		return model.RealMovement{}, err
	}
	date, err := parseFormDate("date", v.Date)
	if err != nil {
		return model.RealMovement{}, err
	}
	return model.RealMovement{Title: strings.TrimSpace(v.Title), Amount: amount, Date: date, Note: strings.TrimSpace(v.Text)}, nil
}

func parseDay(s string) (int, error) {
	day, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || day < 1 || day > calendar.MaxDayOfMonth {
		return 0, &model.ValidationError{Field: "dayOfMonth", Reason: "must be a whole number between 1 and 31"}
	}
	return day, nil
}

func parseFormDate(field, s string) (model.Date, error) {
	d, err := model.ParseDate(strings.TrimSpace(s))
	if err != nil {
		return model.Date{}, &model.ValidationError{Field: field, Reason: "must be a date as YYYY-MM-DD"}
	}
	return d, nil
}

func validateAmount(s string) error {
	_, err := model.ParseAmount(s)
	return err
}

func validateDay(s string) error {
	_, err := parseDay(s)
	return err
}

func validateDate(s string) error {
	_, err := parseFormDate("date", s)
	return err
}

func validateYear(s string) error {
	year, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return errors.New("year must be a whole number")
	}
	return model.ValidateYear(year)
}

func validateTitle(s string) error {
	if len(s) > 200 {
		return errors.New("title is longer than 200 characters")
	}
	return nil
}

func validatePath(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("path is required")
	}
	return nil
}

// defaultValues pre-fills a form. Edits start from the entry at idx; new
// events default to January 1 of the projected year and new rules and
// movements to today.
func (a App) defaultValues(kind formKind, idx int) *formValues {
	today := model.DateOf(a.opts.Now()).String()
	v := &formValues{}

	switch kind {
	case formAddRule:
		v.Day, v.Date = "1", today
	case formAddEvent:
		v.Date = model.NewDate(a.state.Year, 1, 1).String()
	case formAddMovement:
		v.Date = today
	case formEditRule, formDeleteRule:
		r := a.state.MonthlyRules[idx]
		v.Title, v.Amount, v.Day, v.Date = r.Title, r.Amount.String(), strconv.Itoa(r.DayOfMonth), r.ActiveFrom.String()
	case formEditEvent, formDeleteEvent:
		e := a.state.PlannedEvents[idx]
		v.Title, v.Amount, v.Date, v.Text = e.Title, e.Amount.String(), e.Date.String(), e.Description
	case formEditMovement, formDeleteMovement:
		m := a.state.RealMovements[idx]
		v.Title, v.Amount, v.Date, v.Text = m.Title, m.Amount.String(), m.Date.String(), m.Note
	case formSettings:
		v.Year, v.Balance = strconv.Itoa(a.state.Year), a.state.InitialBalance.String()
	case formExport:
		v.Path = a.opts.ExportDir
	case formImport:
		v.Path = filepath.Join(a.opts.ExportDir, snapshot.FileName(a.state.Year))
	}
	return v
}

func buildForm(kind formKind, v *formValues) *huh.Form {
	title := huh.NewInput().Title("Title").Value(&v.Title).Validate(validateTitle)
	amount := huh.NewInput().Title("Amount").Description("negative for expenses").Value(&v.Amount).Validate(validateAmount)

	var fields []huh.Field
	switch kind {
	case formAddRule, formEditRule:
		fields = []huh.Field{
			title, amount,
			huh.NewInput().Title("Day of month").Description("1-31, clamped to short months").Value(&v.Day).Validate(validateDay),
			huh.NewInput().Title("Active from").Description("YYYY-MM-DD").Value(&v.Date).Validate(validateDate),
		}
	case formAddEvent, formEditEvent:
		fields = []huh.Field{
			title, amount,
			huh.NewInput().Title("Date").Description("YYYY-MM-DD").Value(&v.Date).Validate(validateDate),
			huh.NewInput().Title("Description").Value(&v.Text),
		}
	case formAddMovement, formEditMovement:
		fields = []huh.Field{
			title, amount,
			huh.NewInput().Title("Date").Description("YYYY-MM-DD").Value(&v.Date).Validate(validateDate),
			huh.NewInput().Title("Note").Value(&v.Text),
		}
	case formDeleteRule, formDeleteEvent, formDeleteMovement:
		label := v.Title
		if label == "" {
			label = "untitled"
		}
		fields = []huh.Field{
			huh.NewConfirm().
				Title(fmt.Sprintf("Delete %q (%s)?", label, v.Amount)).
				Affirmative("Delete").
				Negative("Cancel").
				Value(&v.Confirm),
		}
	case formSettings:
		fields = []huh.Field{
			huh.NewInput().Title("Year").Value(&v.Year).Validate(validateYear),
			huh.NewInput().Title("Initial balance").Description("balance on January 1").Value(&v.Balance).Validate(validateAmount),
		}
	case formExport:
		fields = []huh.Field{
			huh.NewInput().Title("Directory").Description("writes finances-<year>.json").Value(&v.Path).Validate(validatePath),
		}
	case formImport:
		fields = []huh.Field{
			huh.NewInput().Title("File").Description("fields present in the file replace the current ones").Value(&v.Path).Validate(validatePath),
		}
	}

	return huh.NewForm(huh.NewGroup(fields...)).
		WithTheme(huh.ThemeBase()).
		WithShowHelp(true)
}

func (a App) openForm(kind formKind, idx int) (tea.Model, tea.Cmd) {
	a.formKind = kind
	a.editIdx = idx
	a.vals = a.defaultValues(kind, idx)
	a.form = buildForm(kind, a.vals)
	if a.width > 0 {
		a.form = a.form.WithWidth(a.formWidth())
	}
	return a, a.form.Init()
}

func (a App) closeForm() App {
	a.form, a.formKind, a.vals, a.editIdx = nil, formNone, nil, -1
	return a
}

func (a App) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok && k.String() == "esc" {
		return a.closeForm(), nil
	}

	form, cmd := a.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.form = f
	}

	switch a.form.State {
	case huh.StateCompleted:
		a.submit()
		return a.closeForm(), nil
	case huh.StateAborted:
		return a.closeForm(), nil
	}
	return a, cmd
}

// submit applies the completed form to the state.
func (a *App) submit() {
	v, idx := *a.vals, a.editIdx

	switch a.formKind {
	case formAddRule, formEditRule:
		r, err := v.rule()
		if err != nil {
			a.setFlash(err.Error(), true)
			return
		}
		if a.formKind == formAddRule {
			a.apply("rule added", func(s *model.State) error { return s.AddRule(r) })
		} else {
			a.apply("rule updated", func(s *model.State) error { return s.UpdateRule(idx, r) })
		}
	case formAddEvent, formEditEvent:
		e, err := v.event()
		if err != nil {
			a.setFlash(err.Error(), true)
			return
		}
		if a.formKind == formAddEvent {
			a.apply("event added", func(s *model.State) error { return s.AddEvent(e) })
		} else {
			a.apply("event updated", func(s *model.State) error { return s.UpdateEvent(idx, e) })
		}
	case formAddMovement, formEditMovement:
		m, err := v.movement()
		if err != nil {
			a.setFlash(err.Error(), true)
			return
		}
		if a.formKind == formAddMovement {
			a.apply("movement added", func(s *model.State) error { return s.AddMovement(m) })
		} else {
			a.apply("movement updated", func(s *model.State) error { return s.UpdateMovement(idx, m) })
		}
	case formDeleteRule:
		if v.Confirm {
			a.apply("rule deleted", func(s *model.State) error { return s.RemoveRule(idx) })
		}
	case formDeleteEvent:
		if v.Confirm {
			a.apply("event deleted", func(s *model.State) error { return s.RemoveEvent(idx) })
		}
	case formDeleteMovement:
		if v.Confirm {
			a.apply("movement deleted", func(s *model.State) error { return s.RemoveMovement(idx) })
		}
	case formSettings:
		year, err := strconv.Atoi(strings.TrimSpace(v.Year))
		if err != nil {
			a.setFlash("year: "+err.Error(), true)
			return
		}
		balance, err := model.ParseAmount(v.Balance)
		if err != nil {
			a.setFlash(err.Error(), true)
			return
		}
		a.apply("settings saved", func(s *model.State) error {
			s.SetInitialBalance(balance)
			return s.SetYear(year)
		})
	case formExport:
		path, err := snapshot.WriteFile(strings.TrimSpace(v.Path), a.state)
		if err != nil {
			a.setFlash(err.Error(), true)
			return
		}
		a.log.Info().Str("path", path).Msg("snapshot exported")
		a.setFlash("exported to "+path, false)
	case formImport:
		next, err := snapshot.ReadFile(strings.TrimSpace(v.Path), a.state)
		if err != nil {
			a.setFlash(err.Error(), true)
			return
		}
		a.apply("imported "+strings.TrimSpace(v.Path), func(s *model.State) error {
			*s = next
			return nil
		})
	}
}
