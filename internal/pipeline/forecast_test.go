package pipeline

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/fincast/internal/calendar"
	"github.com/theirongolddev/fincast/internal/model"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func mustDate(t *testing.T, s string) model.Date {
	t.Helper()
	d, err := model.ParseDate(s)
	if err != nil {
		t.Fatalf("parse date %q: %v", s, err)
	}
	return d
}

func dayOf(t *testing.T, year int, s string) int {
	t.Helper()
	return calendar.DateToDayIndex(year, mustDate(t, s).Time)
}

func TestProject_NoInputsIsFlat(t *testing.T) {
	points, err := Project(2024, dec("1234.56"), nil, nil)
	if err != nil {
		t.Fatalf("Project: %v", err)
	}
	if len(points) != 366 {
		t.Fatalf("len = %d, want 366", len(points))
	}
	for i, p := range points {
		if p.Day != i+1 {
			t.Fatalf("points[%d].Day = %d, want %d", i, p.Day, i+1)
		}
		if !p.ForecastBalance.Equal(dec("1234.56")) {
			t.Fatalf("day %d balance = %s, want 1234.56", p.Day, p.ForecastBalance)
		}
	}
}

func TestProject_ClampsDay31(t *testing.T) {
	rules := []model.MonthlyRule{{Amount: dec("-50"), DayOfMonth: 31, ActiveFrom: mustDate(t, "2025-01-01")}}
	points, err := Project(2025, dec("1000"), rules, nil)
	if err != nil {
		t.Fatalf("Project: %v", err)
	}

	cases := []struct {
		date string
		want string
	}{
		{"2025-01-30", "1000"},
		{"2025-01-31", "950"},
		{"2025-02-27", "950"},
		{"2025-02-28", "900"},
		{"2025-03-31", "850"},
		{"2025-04-29", "850"},
		{"2025-04-30", "800"},
		{"2025-12-31", "400"},
	}
	for _, tc := range cases {
		got := points[dayOf(t, 2025, tc.date)-1].ForecastBalance
		if !got.Equal(dec(tc.want)) {
			t.Errorf("%s balance = %s, want %s", tc.date, got, tc.want)
		}
	}
}

func TestProject_LeapFebruary(t *testing.T) {
	rules := []model.MonthlyRule{{Amount: dec("10"), DayOfMonth: 30, ActiveFrom: mustDate(t, "2024-01-01")}}
	points, err := Project(2024, decimal.Zero, rules, nil)
	if err != nil {
		t.Fatalf("Project: %v", err)
	}
	if got := points[dayOf(t, 2024, "2024-02-28")-1].ForecastBalance; !got.Equal(dec("10")) {
		t.Errorf("Feb 28 = %s, want 10 (Jan 30 only)", got)
	}
	if got := points[dayOf(t, 2024, "2024-02-29")-1].ForecastBalance; !got.Equal(dec("20")) {
		t.Errorf("Feb 29 = %s, want 20 (clamped Feb 30)", got)
	}
}

func TestProject_ActiveFromGating(t *testing.T) {
	rules := []model.MonthlyRule{{Amount: dec("100"), DayOfMonth: 15, ActiveFrom: mustDate(t, "2025-06-01")}}
	points, err := Project(2025, decimal.Zero, rules, nil)
	if err != nil {
		t.Fatalf("Project: %v", err)
	}
	for _, p := range points {
		if p.Date.Before(time.Date(2025, time.June, 15, 0, 0, 0, 0, time.UTC)) && !p.ForecastBalance.IsZero() {
			t.Fatalf("day %d (%s) balance = %s before first occurrence", p.Day, p.Date.Format("2006-01-02"), p.ForecastBalance)
		}
	}
	if got := points[dayOf(t, 2025, "2025-06-15")-1].ForecastBalance; !got.Equal(dec("100")) {
		t.Errorf("Jun 15 = %s, want 100", got)
	}
	if got := points[len(points)-1].ForecastBalance; !got.Equal(dec("700")) {
		t.Errorf("Dec 31 = %s, want 700 (Jun..Dec)", got)
	}
}

func TestProject_ActiveFromMidMonthSkipsEarlierDay(t *testing.T) {
	// Starts after the 5th of June, so the first firing is July 5.
	rules := []model.MonthlyRule{{Amount: dec("1"), DayOfMonth: 5, ActiveFrom: mustDate(t, "2025-06-10")}}
	points, err := Project(2025, decimal.Zero, rules, nil)
	if err != nil {
		t.Fatalf("Project: %v", err)
	}
	if got := points[dayOf(t, 2025, "2025-07-04")-1].ForecastBalance; !got.IsZero() {
		t.Errorf("Jul 4 = %s, want 0", got)
	}
	if got := points[dayOf(t, 2025, "2025-07-05")-1].ForecastBalance; !got.Equal(dec("1")) {
		t.Errorf("Jul 5 = %s, want 1", got)
	}
}

func TestProject_RulesOutsideYear(t *testing.T) {
	rules := []model.MonthlyRule{
		{Amount: dec("5"), DayOfMonth: 1, ActiveFrom: mustDate(t, "2020-03-01")},
		{Amount: dec("1000"), DayOfMonth: 1, ActiveFrom: mustDate(t, "2026-01-01")},
	}
	points, err := Project(2025, decimal.Zero, rules, nil)
	if err != nil {
		t.Fatalf("Project: %v", err)
	}
	if got := points[0].ForecastBalance; !got.Equal(dec("5")) {
		t.Errorf("Jan 1 = %s, want 5 (prior-year rule applies from day 1)", got)
	}
	if got := points[len(points)-1].ForecastBalance; !got.Equal(dec("60")) {
		t.Errorf("Dec 31 = %s, want 60", got)
	}
}

func TestProject_EventsExactDateOnly(t *testing.T) {
	events := []model.PlannedEvent{
		{Amount: dec("-300"), Date: mustDate(t, "2025-03-10")},
		{Amount: dec("999"), Date: mustDate(t, "2024-03-10")},
		{Amount: dec("0.10"), Date: mustDate(t, "2025-03-10")},
	}
	points, err := Project(2025, dec("500"), nil, events)
	if err != nil {
		t.Fatalf("Project: %v", err)
	}
	if got := points[dayOf(t, 2025, "2025-03-09")-1].ForecastBalance; !got.Equal(dec("500")) {
		t.Errorf("Mar 9 = %s, want 500", got)
	}
	if got := points[dayOf(t, 2025, "2025-03-10")-1].ForecastBalance; !got.Equal(dec("200.10")) {
		t.Errorf("Mar 10 = %s, want 200.10", got)
	}
}

func TestProject_NoDriftOverManyCents(t *testing.T) {
	rules := make([]model.MonthlyRule, 0, 31)
	for d := 1; d <= 31; d++ {
		rules = append(rules, model.MonthlyRule{Amount: dec("0.01"), DayOfMonth: d, ActiveFrom: mustDate(t, "2025-01-01")})
	}
	points, err := Project(2025, dec("0.10"), rules, nil)
	if err != nil {
		t.Fatalf("Project: %v", err)
	}
	// Months shorter than 31 days collapse the extra rules onto their last day,
	// so every month contributes exactly 31 cents.
	if got := points[len(points)-1].ForecastBalance; !got.Equal(dec("3.82")) {
		t.Errorf("Dec 31 = %s, want 3.82", got)
	}
}

func TestProject_FailsFastOnBadInputs(t *testing.T) {
	if _, err := Project(0, decimal.Zero, nil, nil); !errors.Is(err, calendar.ErrOutOfRange) {
		t.Errorf("year 0: err = %v, want ErrOutOfRange", err)
	}
	rules := []model.MonthlyRule{{Amount: dec("1"), DayOfMonth: 40, ActiveFrom: mustDate(t, "2025-01-01")}}
	if _, err := Project(2025, decimal.Zero, rules, nil); !errors.Is(err, calendar.ErrOutOfRange) {
		t.Errorf("day 40: err = %v, want ErrOutOfRange", err)
	}
	// A rule that never becomes active is still checked.
	rules = []model.MonthlyRule{{Amount: dec("1"), DayOfMonth: 0, ActiveFrom: mustDate(t, "2030-01-01")}}
	if _, err := Project(2025, decimal.Zero, rules, nil); !errors.Is(err, calendar.ErrOutOfRange) {
		t.Errorf("inactive day 0: err = %v, want ErrOutOfRange", err)
	}
}

func TestProject_DoesNotMutateInputs(t *testing.T) {
	rules := []model.MonthlyRule{{Title: "rent", Amount: dec("-700"), DayOfMonth: 1, ActiveFrom: mustDate(t, "2025-01-01")}}
	events := []model.PlannedEvent{{Amount: dec("50"), Date: mustDate(t, "2025-05-05")}}
	if _, err := Project(2025, dec("10"), rules, events); err != nil {
		t.Fatalf("Project: %v", err)
	}
	if rules[0].Title != "rent" || !rules[0].Amount.Equal(dec("-700")) || !events[0].Amount.Equal(dec("50")) {
		t.Error("Project mutated its inputs")
	}
}

func TestRun_UsesSnapshot(t *testing.T) {
	s := model.State{
		Year:           2025,
		InitialBalance: dec("100"),
		PlannedEvents:  []model.PlannedEvent{{Amount: dec("5"), Date: mustDate(t, "2025-01-02")}},
	}
	res, err := Run(s)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	s.PlannedEvents[0].Amount = dec("1000")

	if got := res.Last().Forecast; !got.Equal(dec("105")) {
		t.Errorf("year end = %s, want 105", got)
	}
	if res.Year != 2025 || len(res.Points) != 365 {
		t.Errorf("Result = year %d, %d points", res.Year, len(res.Points))
	}
}

func TestRun_WrapsRangeErrors(t *testing.T) {
	_, err := Run(model.State{Year: -1})
	if !errors.Is(err, calendar.ErrOutOfRange) {
		t.Fatalf("err = %v, want ErrOutOfRange", err)
	}
}
