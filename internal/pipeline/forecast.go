// Package pipeline turns an entity store snapshot into the forecast and
// real balance lines, and derives the summaries rendered from them.
package pipeline

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/fincast/internal/calendar"
	"github.com/theirongolddev/fincast/internal/model"
)

// Project walks every day of year in order and returns the running forecast
// balance after applying the rules and events that fall on each day.
//
// Rules fire on their day of month clamped to the month length, from
// ActiveFrom onward. Events fire on their exact date. Within a day, rules are
// applied before events, each in slice order.
func Project(year int, initialBalance decimal.Decimal, rules []model.MonthlyRule, events []model.PlannedEvent) ([]model.DayPoint, error) {
	if err := calendar.ValidateYear(year); err != nil {
		return nil, err
	}

	for i, r := range rules {
		if _, err := calendar.ClampDayOfMonth(year, time.January, r.DayOfMonth); err != nil {
			return nil, fmt.Errorf("monthly rule %d: %w", i+1, err)
		}
	}

	n := calendar.DaysInYear(year)
	points := make([]model.DayPoint, 0, n)
	balance := initialBalance

	for day := 1; day <= n; day++ {
		date, err := calendar.DayIndexToDate(year, day)
		if err != nil {
			return nil, err
		}
		month, dom := date.Month(), date.Day()

		for _, r := range rules {
			if !r.ActiveOn(date) {
				continue
			}
			fireDay, _ := calendar.ClampDayOfMonth(year, month, r.DayOfMonth)
			if fireDay == dom {
				balance = balance.Add(r.Amount)
			}
		}

		for _, e := range events {
			if calendar.SameDay(e.Date.Time, date) {
				balance = balance.Add(e.Amount)
			}
		}

		points = append(points, model.DayPoint{Day: day, Date: date, ForecastBalance: balance})
	}

	return points, nil
}

// Result is one full recomputation of both lines for a state.
type Result struct {
	Year   int
	Points []model.ReconciledPoint
}

// Run projects and reconciles a private copy of s, so a caller mutating s
// afterwards never affects a pass in progress.
func Run(s model.State) (Result, error) {
	snap := s.Clone()

	forecast, err := Project(snap.Year, snap.InitialBalance, snap.MonthlyRules, snap.PlannedEvents)
	if err != nil {
		return Result{}, fmt.Errorf("projecting %d: %w", snap.Year, err)
	}

	return Result{
		Year:   snap.Year,
		Points: Reconcile(forecast, snap.RealMovements, snap.Year),
	}, nil
}

// Today returns the point for today's date and whether the projected year is
// the current one.
func (r Result) Today(now time.Time) (model.ReconciledPoint, bool) {
	return pointAt(r.Points, r.Year, now)
}

// Last is the December 31 point.
func (r Result) Last() model.ReconciledPoint {
	if len(r.Points) == 0 {
		return model.ReconciledPoint{}
	}
	return r.Points[len(r.Points)-1]
}
