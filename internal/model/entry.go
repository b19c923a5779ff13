// Package model defines the forecast inputs, the projected points and the
// in-memory entity store that owns them.
package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/fincast/internal/calendar"
)

func init() {
	// Documents carry amounts as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

// MonthlyRule is a recurring adjustment that fires once a month on a
// clamped day, starting at ActiveFrom.
type MonthlyRule struct {
	Title      string          `json:"title,omitempty"`
	Amount     decimal.Decimal `json:"amount"`
	DayOfMonth int             `json:"dayOfMonth"`
	ActiveFrom Date            `json:"activeFrom"`
}

// ActiveOn reports whether the rule has started by date.
func (r MonthlyRule) ActiveOn(date time.Time) bool {
	return !r.ActiveFrom.After(date)
}

// Validate checks the rule before it is stored.
func (r MonthlyRule) Validate() error {
	if r.DayOfMonth < 1 || r.DayOfMonth > calendar.MaxDayOfMonth {
		return &ValidationError{Entity: "monthly rule", Field: "dayOfMonth", Reason: "must be between 1 and 31"}
	}
	if r.ActiveFrom.IsZero() {
		return &ValidationError{Entity: "monthly rule", Field: "activeFrom", Reason: "is required"}
	}
	return validateTitle("monthly rule", r.Title)
}

// PlannedEvent is a single forecast adjustment on one date.
type PlannedEvent struct {
	Title       string          `json:"title,omitempty"`
	Amount      decimal.Decimal `json:"amount"`
	Date        Date            `json:"date"`
	Description string          `json:"description,omitempty"`
}

// Validate checks the event before it is stored.
func (e PlannedEvent) Validate() error {
	if e.Date.IsZero() {
		return &ValidationError{Entity: "planned event", Field: "date", Reason: "is required"}
	}
	return validateTitle("planned event", e.Title)
}

// RealMovement is an actual adjustment, applied to the real line from its
// date onward.
type RealMovement struct {
	Title  string          `json:"title,omitempty"`
	Amount decimal.Decimal `json:"amount"`
	Date   Date            `json:"date"`
	Note   string          `json:"note,omitempty"`
}

// Validate checks the movement before it is stored.
func (m RealMovement) Validate() error {
	if m.Date.IsZero() {
		return &ValidationError{Entity: "real movement", Field: "date", Reason: "is required"}
	}
	return validateTitle("real movement", m.Title)
}

const maxTitleLen = 200

func validateTitle(entity, title string) error {
	if len(title) > maxTitleLen {
		return &ValidationError{Entity: entity, Field: "title", Reason: "is longer than 200 characters"}
	}
	if strings.ContainsAny(title, "\n\r") {
		return &ValidationError{Entity: entity, Field: "title", Reason: "must be a single line"}
	}
	return nil
}

// ParseAmount parses a signed decimal amount typed by a user.
// A decimal comma is accepted.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, &ValidationError{Field: "amount", Reason: "is required"}
	}
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, &ValidationError{Field: "amount", Reason: "must be a decimal number"}
	}
	return d, nil
}

// DayPoint is one day of the forecast line.
type DayPoint struct {
	Day             int
	Date            time.Time
	ForecastBalance decimal.Decimal
}

// ReconciledPoint pairs the forecast balance of a day with its real balance.
type ReconciledPoint struct {
	Day      int
	Date     time.Time
	Forecast decimal.Decimal
	Real     decimal.Decimal
}

// Delta returns real minus forecast.
func (p ReconciledPoint) Delta() decimal.Decimal {
	return p.Real.Sub(p.Forecast)
}
