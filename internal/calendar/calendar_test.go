package calendar

import (
	"errors"
	"testing"
	"time"
)

func TestDaysInYear_MatchesLeapRule(t *testing.T) {
	cases := []struct {
		year int
		leap bool
	}{
		{2000, true},
		{1900, false},
		{2024, true},
		{2025, false},
		{2100, false},
	}
	for _, tc := range cases {
		if got := IsLeapYear(tc.year); got != tc.leap {
			t.Errorf("IsLeapYear(%d) = %v, want %v", tc.year, got, tc.leap)
		}
		want := 365
		if tc.leap {
			want = 366
		}
		if got := DaysInYear(tc.year); got != want {
			t.Errorf("DaysInYear(%d) = %d, want %d", tc.year, got, want)
		}
	}
}

func TestDaysInMonth(t *testing.T) {
	cases := []struct {
		year  int
		month time.Month
		want  int
	}{
		{2025, time.January, 31},
		{2025, time.February, 28},
		{2024, time.February, 29},
		{2025, time.April, 30},
		{2025, time.December, 31},
		{2025, 0, 0},
		{2025, 13, 0},
	}
	for _, tc := range cases {
		if got := DaysInMonth(tc.year, tc.month); got != tc.want {
			t.Errorf("DaysInMonth(%d, %d) = %d, want %d", tc.year, tc.month, got, tc.want)
		}
	}
}

func TestClampDayOfMonth(t *testing.T) {
	cases := []struct {
		year  int
		month time.Month
		day   int
		want  int
	}{
		{2025, time.February, 31, 28},
		{2024, time.February, 31, 29},
		{2025, time.January, 15, 15},
		{2025, time.April, 31, 30},
		{2025, time.March, 1, 1},
	}
	for _, tc := range cases {
		got, err := ClampDayOfMonth(tc.year, tc.month, tc.day)
		if err != nil {
			t.Fatalf("ClampDayOfMonth(%d, %d, %d): %v", tc.year, tc.month, tc.day, err)
		}
		if got != tc.want {
			t.Errorf("ClampDayOfMonth(%d, %d, %d) = %d, want %d", tc.year, tc.month, tc.day, got, tc.want)
		}
	}
}

func TestClampDayOfMonth_RejectsOutOfRange(t *testing.T) {
	for _, day := range []int{0, -1, 32} {
		_, err := ClampDayOfMonth(2025, time.March, day)
		if !errors.Is(err, ErrOutOfRange) {
			t.Errorf("day %d: err = %v, want ErrOutOfRange", day, err)
		}
	}
	var re *RangeError
	if _, err := ClampDayOfMonth(2025, 13, 1); !errors.As(err, &re) || re.Field != "month" {
		t.Errorf("month 13: err = %v, want month RangeError", err)
	}
}

func TestDayIndexRoundTrip(t *testing.T) {
	for _, year := range []int{2024, 2025, 1900, 2000} {
		n := DaysInYear(year)
		for d := 1; d <= n; d++ {
			date, err := DayIndexToDate(year, d)
			if err != nil {
				t.Fatalf("DayIndexToDate(%d, %d): %v", year, d, err)
			}
			if got := DateToDayIndex(year, date); got != d {
				t.Fatalf("DateToDayIndex(%d, %s) = %d, want %d", year, date.Format("2006-01-02"), got, d)
			}
		}
	}
}

func TestDayIndexToDate_Endpoints(t *testing.T) {
	first, _ := DayIndexToDate(2024, 1)
	if first.Format("2006-01-02") != "2024-01-01" {
		t.Errorf("day 1 = %s, want 2024-01-01", first.Format("2006-01-02"))
	}
	last, _ := DayIndexToDate(2024, 366)
	if last.Format("2006-01-02") != "2024-12-31" {
		t.Errorf("day 366 = %s, want 2024-12-31", last.Format("2006-01-02"))
	}
	if _, err := DayIndexToDate(2025, 366); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("day 366 of 2025: err = %v, want ErrOutOfRange", err)
	}
	if _, err := DayIndexToDate(2025, 0); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("day 0: err = %v, want ErrOutOfRange", err)
	}
}

func TestDateToDayIndex_IgnoresClockAndZone(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*3600)
	late := time.Date(2025, time.March, 1, 23, 30, 0, 0, loc)
	if got := DateToDayIndex(2025, late); got != 60 {
		t.Errorf("DateToDayIndex(2025, Mar 1 23:30 -05:00) = %d, want 60", got)
	}
}

func TestDateToDayIndex_OutsideYear(t *testing.T) {
	if got := DateToDayIndex(2025, time.Date(2024, time.December, 31, 0, 0, 0, 0, time.UTC)); got != 0 {
		t.Errorf("Dec 31 of previous year = %d, want 0", got)
	}
	if got := DateToDayIndex(2025, time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)); got != 366 {
		t.Errorf("Jan 1 of next year = %d, want 366", got)
	}
}

func TestValidateYear(t *testing.T) {
	if err := ValidateYear(2025); err != nil {
		t.Errorf("ValidateYear(2025) = %v", err)
	}
	for _, y := range []int{0, -4, 10000} {
		if err := ValidateYear(y); !errors.Is(err, ErrOutOfRange) {
			t.Errorf("ValidateYear(%d) = %v, want ErrOutOfRange", y, err)
		}
	}
}
