package model

import (
	"fmt"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/fincast/internal/calendar"
)

// State is everything the projection is computed from. The store loads and
// saves it whole; every mutation goes through the methods below so that only
// validated entries are ever held.
type State struct {
	Year           int             `json:"year"`
	InitialBalance decimal.Decimal `json:"initialBalance"`
	MonthlyRules   []MonthlyRule   `json:"monthlyRules"`
	PlannedEvents  []PlannedEvent  `json:"plannedEvents"`
	RealMovements  []RealMovement  `json:"realMovements"`
}

// Clone returns a copy that shares no slice storage with s.
func (s State) Clone() State {
	return State{
		Year:           s.Year,
		InitialBalance: s.InitialBalance,
		MonthlyRules:   append([]MonthlyRule{}, s.MonthlyRules...),
		PlannedEvents:  append([]PlannedEvent{}, s.PlannedEvents...),
		RealMovements:  append([]RealMovement{}, s.RealMovements...),
	}
}

// Equal compares two states, treating amounts numerically and nil
// collections as empty.
func (s State) Equal(o State) bool {
	if s.Year != o.Year || !s.InitialBalance.Equal(o.InitialBalance) {
		return false
	}
	return slices.EqualFunc(s.MonthlyRules, o.MonthlyRules, func(a, b MonthlyRule) bool {
		return a.Title == b.Title && a.Amount.Equal(b.Amount) &&
			a.DayOfMonth == b.DayOfMonth && a.ActiveFrom.Equal(b.ActiveFrom.Time)
	}) && slices.EqualFunc(s.PlannedEvents, o.PlannedEvents, func(a, b PlannedEvent) bool {
		return a.Title == b.Title && a.Amount.Equal(b.Amount) &&
			a.Date.Equal(b.Date.Time) && a.Description == b.Description
	}) && slices.EqualFunc(s.RealMovements, o.RealMovements, func(a, b RealMovement) bool {
		return a.Title == b.Title && a.Amount.Equal(b.Amount) &&
			a.Date.Equal(b.Date.Time) && a.Note == b.Note
	})
}

// Validate checks every field, as done on import.
func (s State) Validate() error {
	if err := ValidateYear(s.Year); err != nil {
		return err
	}
	for i, r := range s.MonthlyRules {
		if err := r.Validate(); err != nil {
			return fmt.Errorf("monthlyRules[%d]: %w", i, err)
		}
	}
	for i, e := range s.PlannedEvents {
		if err := e.Validate(); err != nil {
			return fmt.Errorf("plannedEvents[%d]: %w", i, err)
		}
	}
	for i, m := range s.RealMovements {
		if err := m.Validate(); err != nil {
			return fmt.Errorf("realMovements[%d]: %w", i, err)
		}
	}
	return nil
}

// ValidateYear converts a calendar range violation into a ValidationError.
func ValidateYear(year int) error {
	if calendar.ValidateYear(year) != nil {
		return &ValidationError{Field: "year", Reason: fmt.Sprintf("must be between %d and %d", calendar.MinYear, calendar.MaxYear)}
	}
	return nil
}

// SetYear changes the projected year.
func (s *State) SetYear(year int) error {
	if err := ValidateYear(year); err != nil {
		return err
	}
	s.Year = year
	return nil
}

// SetInitialBalance changes the balance on January 1.
func (s *State) SetInitialBalance(b decimal.Decimal) {
	s.InitialBalance = b
}

// AddRule appends r after validating it.
func (s *State) AddRule(r MonthlyRule) error {
	if err := r.Validate(); err != nil {
		return err
	}
	s.MonthlyRules = append(s.MonthlyRules, r)
	return nil
}

// UpdateRule replaces the rule at index i.
func (s *State) UpdateRule(i int, r MonthlyRule) error {
	if err := r.Validate(); err != nil {
		return err
	}
	return replaceAt(s.MonthlyRules, i, r, "monthly rule")
}

// RemoveRule deletes the rule at index i.
func (s *State) RemoveRule(i int) error {
	var err error
	s.MonthlyRules, err = removeAt(s.MonthlyRules, i, "monthly rule")
	return err
}

// AddEvent appends e after validating it.
func (s *State) AddEvent(e PlannedEvent) error {
	if err := e.Validate(); err != nil {
		return err
	}
	s.PlannedEvents = append(s.PlannedEvents, e)
	return nil
}

// UpdateEvent replaces the event at index i.
func (s *State) UpdateEvent(i int, e PlannedEvent) error {
	if err := e.Validate(); err != nil {
		return err
	}
	return replaceAt(s.PlannedEvents, i, e, "planned event")
}

// RemoveEvent deletes the event at index i.
func (s *State) RemoveEvent(i int) error {
	var err error
	s.PlannedEvents, err = removeAt(s.PlannedEvents, i, "planned event")
	return err
}

// AddMovement appends m after validating it.
func (s *State) AddMovement(m RealMovement) error {
	if err := m.Validate(); err != nil {
		return err
	}
	s.RealMovements = append(s.RealMovements, m)
	return nil
}

// UpdateMovement replaces the movement at index i.
func (s *State) UpdateMovement(i int, m RealMovement) error {
	if err := m.Validate(); err != nil {
		return err
	}
	return replaceAt(s.RealMovements, i, m, "real movement")
}

// RemoveMovement deletes the movement at index i.
func (s *State) RemoveMovement(i int) error {
	var err error
	s.RealMovements, err = removeAt(s.RealMovements, i, "real movement")
	return err
}

func replaceAt[T any](items []T, i int, v T, kind string) error {
	if i < 0 || i >= len(items) {
		return fmt.Errorf("%s %d: %w", kind, i+1, ErrNoSuchEntry)
	}
	items[i] = v
	return nil
}

func removeAt[T any](items []T, i int, kind string) ([]T, error) {
	if i < 0 || i >= len(items) {
		return items, fmt.Errorf("%s %d: %w", kind, i+1, ErrNoSuchEntry)
	}
	return slices.Delete(items, i, i+1), nil
}
