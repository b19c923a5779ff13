package pipeline

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/fincast/internal/model"
)

func flat(t *testing.T, year int, balance string) []model.DayPoint {
	t.Helper()
	points, err := Project(year, dec(balance), nil, nil)
	if err != nil {
		t.Fatalf("Project: %v", err)
	}
	return points
}

func TestReconcile_NoMovementsMatchesForecast(t *testing.T) {
	got := Reconcile(flat(t, 2025, "42"), nil, 2025)
	if len(got) != 365 {
		t.Fatalf("len = %d, want 365", len(got))
	}
	for _, p := range got {
		if !p.Real.Equal(p.Forecast) {
			t.Fatalf("day %d: real %s != forecast %s", p.Day, p.Real, p.Forecast)
		}
	}
}

func TestReconcile_MovementAppliesFromItsDay(t *testing.T) {
	movements := []model.RealMovement{{Amount: dec("200"), Date: model.NewDate(2025, time.January, 10)}}
	got := Reconcile(flat(t, 2025, "1000"), movements, 2025)

	tests := []struct {
		day  int
		want string
	}{
		{1, "1000"},
		{9, "1000"},
		{10, "1200"},
		{11, "1200"},
		{365, "1200"},
	}
	for _, tc := range tests {
		p := got[tc.day-1]
		if !p.Real.Equal(dec(tc.want)) {
			t.Errorf("day %d real = %s, want %s", tc.day, p.Real, tc.want)
		}
		if !p.Forecast.Equal(dec("1000")) {
			t.Errorf("day %d forecast = %s, want 1000", tc.day, p.Forecast)
		}
	}
}

func TestReconcile_IgnoresOtherYears(t *testing.T) {
	movements := []model.RealMovement{
		{Amount: dec("-75"), Date: model.NewDate(2024, time.December, 31)},
		{Amount: dec("500"), Date: model.NewDate(2026, time.January, 1)},
		{Amount: dec("1.5"), Date: model.NewDate(2025, time.December, 31)},
	}
	got := Reconcile(flat(t, 2025, "0"), movements, 2025)
	if !got[0].Real.IsZero() {
		t.Errorf("Jan 1 real = %s, want 0", got[0].Real)
	}
	if last := got[len(got)-1]; !last.Real.Equal(dec("1.5")) {
		t.Errorf("Dec 31 real = %s, want 1.5", last.Real)
	}
}

func TestReconcile_CumulativeAndOrderIndependent(t *testing.T) {
	movements := []model.RealMovement{
		{Amount: dec("-20"), Date: model.NewDate(2025, time.March, 1)},
		{Amount: dec("5"), Date: model.NewDate(2025, time.February, 1)},
		{Amount: dec("5"), Date: model.NewDate(2025, time.February, 1)},
	}
	got := Reconcile(flat(t, 2025, "100"), movements, 2025)
	if p := got[31]; !p.Real.Equal(dec("110")) { // Feb 1
		t.Errorf("Feb 1 real = %s, want 110", p.Real)
	}
	if p := got[59]; !p.Real.Equal(dec("90")) { // Mar 1
		t.Errorf("Mar 1 real = %s, want 90", p.Real)
	}
}

func TestReconcile_SubsetOfPoints(t *testing.T) {
	points := flat(t, 2025, "0")
	movements := []model.RealMovement{{Amount: dec("3"), Date: model.NewDate(2025, time.January, 5)}}
	got := Reconcile(points[9:12], movements, 2025)
	if len(got) != 3 || got[0].Day != 10 {
		t.Fatalf("got %d points starting at day %d", len(got), got[0].Day)
	}
	for _, p := range got {
		if !p.Real.Equal(dec("3")) {
			t.Errorf("day %d real = %s, want 3", p.Day, p.Real)
		}
	}
}

func TestCurrentDelta(t *testing.T) {
	movements := []model.RealMovement{{Amount: dec("-12.34"), Date: model.NewDate(2025, time.May, 2)}}
	points := Reconcile(flat(t, 2025, "10"), movements, 2025)

	tests := []struct {
		name   string
		today  time.Time
		want   decimal.Decimal
		wantOK bool
	}{
		{"before movement", time.Date(2025, time.May, 1, 23, 59, 0, 0, time.UTC), decimal.Zero, true},
		{"on movement", time.Date(2025, time.May, 2, 8, 0, 0, 0, time.UTC), dec("-12.34"), true},
		{"year end", time.Date(2025, time.December, 31, 0, 0, 0, 0, time.UTC), dec("-12.34"), true},
		{"other year", time.Date(2026, time.May, 2, 0, 0, 0, 0, time.UTC), decimal.Zero, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := CurrentDelta(points, 2025, tc.today)
			if ok != tc.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tc.wantOK)
			}
			if !got.Equal(tc.want) {
				t.Errorf("delta = %s, want %s", got, tc.want)
			}
		})
	}
}

func TestResultToday(t *testing.T) {
	res, err := Run(model.State{Year: 2024, InitialBalance: dec("7")})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	p, ok := res.Today(time.Date(2024, time.February, 29, 12, 0, 0, 0, time.UTC))
	if !ok {
		t.Fatal("Today in 2024 not found")
	}
	if p.Day != 60 {
		t.Errorf("Feb 29 day = %d, want 60", p.Day)
	}
	if _, ok := res.Today(time.Date(2023, time.February, 28, 0, 0, 0, 0, time.UTC)); ok {
		t.Error("Today outside year reported ok")
	}
}
