// Package calendar provides the date arithmetic behind the yearly projection.
//
// All dates are civil dates: midnight UTC, compared by year, month and day only.
package calendar

import (
	"errors"
	"fmt"
	"time"
)

const (
	MinYear = 1
	MaxYear = 9999

	MaxDayOfMonth = 31

	secondsPerDay = 24 * 60 * 60
)

// ErrOutOfRange is matched by every RangeError.
var ErrOutOfRange = errors.New("value out of range")

// RangeError reports an input outside the range the calendar math assumes.
type RangeError struct {
	Field string
	Value int
	Min   int
	Max   int
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("%s %d out of range [%d, %d]", e.Field, e.Value, e.Min, e.Max)
}

func (e *RangeError) Unwrap() error { return ErrOutOfRange }

// IsLeapYear applies the Gregorian rule.
func IsLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// DaysInYear returns 366 for leap years, 365 otherwise.
func DaysInYear(year int) int {
	if IsLeapYear(year) {
		return 366
	}
	return 365
}

// DaysInMonth returns the number of days in month, or 0 if month is not 1..12.
func DaysInMonth(year int, month time.Month) int {
	if month < time.January || month > time.December {
		return 0
	}
	// Day 0 of the next month normalizes to the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// ClampDayOfMonth caps day to the last day of the given month.
// A rule for the 31st fires on the 30th, 29th or 28th in shorter months.
func ClampDayOfMonth(year int, month time.Month, day int) (int, error) {
	if month < time.January || month > time.December {
		return 0, &RangeError{Field: "month", Value: int(month), Min: 1, Max: 12}
	}
	if day < 1 || day > MaxDayOfMonth {
		return 0, &RangeError{Field: "day of month", Value: day, Min: 1, Max: MaxDayOfMonth}
	}
	return min(day, DaysInMonth(year, month)), nil
}

// ValidateYear rejects years the projection cannot represent.
func ValidateYear(year int) error {
	if year < MinYear || year > MaxYear {
		return &RangeError{Field: "year", Value: year, Min: MinYear, Max: MaxYear}
	}
	return nil
}

// YearStart returns January 1 of year.
func YearStart(year int) time.Time {
	return time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
}

// Civil drops the clock and location of t, keeping its calendar date.
func Civil(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DayIndexToDate maps day 1 to January 1 and DaysInYear(year) to December 31.
func DayIndexToDate(year, dayIndex int) (time.Time, error) {
	if n := DaysInYear(year); dayIndex < 1 || dayIndex > n {
		return time.Time{}, &RangeError{Field: "day index", Value: dayIndex, Min: 1, Max: n}
	}
	return YearStart(year).AddDate(0, 0, dayIndex-1), nil
}

// DateToDayIndex returns the 1-based ordinal of date within year.
// Dates before the year yield values below 1, dates after it values above
// DaysInYear(year).
func DateToDayIndex(year int, date time.Time) int {
	// Unix seconds rather than Sub, which saturates beyond ~292 years.
	secs := Civil(date).Unix() - YearStart(year).Unix()
	return int(secs/secondsPerDay) + 1
}

// SameDay reports whether a and b fall on the same calendar date.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
