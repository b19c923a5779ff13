package model

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-02-28")
	if err != nil {
		t.Fatalf("ParseDate: %v", err)
	}
	if d.Year() != 2025 || d.Month() != time.February || d.Day() != 28 {
		t.Errorf("ParseDate = %s, want 2025-02-28", d)
	}

	ts, err := ParseDate("2025-06-01T22:15:00Z")
	if err != nil {
		t.Fatalf("ParseDate(RFC3339): %v", err)
	}
	if ts.String() != "2025-06-01" || ts.Hour() != 0 {
		t.Errorf("ParseDate(RFC3339) = %v, want midnight 2025-06-01", ts.Time)
	}

	if _, err := ParseDate("01/06/2025"); err == nil {
		t.Error("ParseDate accepted dd/mm/yyyy")
	}
}

func TestDateJSON(t *testing.T) {
	var r MonthlyRule
	if err := json.Unmarshal([]byte(`{"amount":-50.25,"dayOfMonth":31,"activeFrom":"2025-01-01"}`), &r); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !r.Amount.Equal(decimal.RequireFromString("-50.25")) {
		t.Errorf("Amount = %s, want -50.25", r.Amount)
	}
	if r.ActiveFrom.String() != "2025-01-01" {
		t.Errorf("ActiveFrom = %s, want 2025-01-01", r.ActiveFrom)
	}

	out, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(out), `"amount":-50.25`) {
		t.Errorf("amount not encoded as a number: %s", out)
	}
	if !strings.Contains(string(out), `"activeFrom":"2025-01-01"`) {
		t.Errorf("activeFrom not encoded as a date: %s", out)
	}

	if err := json.Unmarshal([]byte(`{"activeFrom":20250101}`), &r); err == nil {
		t.Error("numeric date accepted")
	}
}

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"12.34", "12.34", true},
		{"-50", "-50", true},
		{"12,5", "12.5", true},
		{" 7 ", "7", true},
		{"0", "0", true},
		{"", "", false},
		{"abc", "", false},
		{"1.2.3", "", false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if !tc.ok {
			if !errors.Is(err, ErrValidation) {
				t.Errorf("ParseAmount(%q) err = %v, want ErrValidation", tc.in, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseAmount(%q): %v", tc.in, err)
			continue
		}
		if !got.Equal(decimal.RequireFromString(tc.want)) {
			t.Errorf("ParseAmount(%q) = %s, want %s", tc.in, got, tc.want)
		}
	}
}

func TestStateMutations_RejectInvalidEntries(t *testing.T) {
	var s State

	err := s.AddRule(MonthlyRule{Amount: decimal.NewFromInt(10), DayOfMonth: 32, ActiveFrom: NewDate(2025, 1, 1)})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("AddRule(day 32) err = %v, want ErrValidation", err)
	}
	if err := s.AddRule(MonthlyRule{Amount: decimal.NewFromInt(10), DayOfMonth: 5}); !errors.Is(err, ErrValidation) {
		t.Fatalf("AddRule(no activeFrom) err = %v, want ErrValidation", err)
	}
	if len(s.MonthlyRules) != 0 {
		t.Fatalf("invalid rules were stored: %d", len(s.MonthlyRules))
	}

	if err := s.AddEvent(PlannedEvent{Amount: decimal.NewFromInt(1)}); !errors.Is(err, ErrValidation) {
		t.Fatalf("AddEvent(no date) err = %v, want ErrValidation", err)
	}
	if err := s.AddMovement(RealMovement{Title: "a\nb", Date: NewDate(2025, 1, 1)}); !errors.Is(err, ErrValidation) {
		t.Fatalf("AddMovement(multi-line title) err = %v, want ErrValidation", err)
	}
	if err := s.SetYear(0); !errors.Is(err, ErrValidation) {
		t.Fatalf("SetYear(0) err = %v, want ErrValidation", err)
	}
}

func TestStateMutations_EditByIndex(t *testing.T) {
	var s State
	for i := 1; i <= 3; i++ {
		if err := s.AddEvent(PlannedEvent{Amount: decimal.NewFromInt(int64(i)), Date: NewDate(2025, 3, i)}); err != nil {
			t.Fatalf("AddEvent: %v", err)
		}
	}

	if err := s.UpdateEvent(1, PlannedEvent{Title: "moved", Amount: decimal.NewFromInt(20), Date: NewDate(2025, 4, 1)}); err != nil {
		t.Fatalf("UpdateEvent: %v", err)
	}
	if s.PlannedEvents[1].Title != "moved" {
		t.Errorf("event 1 title = %q, want moved", s.PlannedEvents[1].Title)
	}

	if err := s.RemoveEvent(0); err != nil {
		t.Fatalf("RemoveEvent: %v", err)
	}
	if len(s.PlannedEvents) != 2 || s.PlannedEvents[0].Title != "moved" {
		t.Errorf("after remove = %+v", s.PlannedEvents)
	}

	if err := s.RemoveEvent(5); !errors.Is(err, ErrNoSuchEntry) {
		t.Errorf("RemoveEvent(5) err = %v, want ErrNoSuchEntry", err)
	}
	if err := s.UpdateRule(0, MonthlyRule{DayOfMonth: 1, ActiveFrom: NewDate(2025, 1, 1)}); !errors.Is(err, ErrNoSuchEntry) {
		t.Errorf("UpdateRule on empty list err = %v, want ErrNoSuchEntry", err)
	}
}

func TestStateClone_IsIndependent(t *testing.T) {
	s := State{
		Year:          2025,
		RealMovements: []RealMovement{{Amount: decimal.NewFromInt(5), Date: NewDate(2025, 1, 2)}},
	}
	c := s.Clone()
	c.RealMovements[0].Amount = decimal.NewFromInt(99)
	if !s.RealMovements[0].Amount.Equal(decimal.NewFromInt(5)) {
		t.Error("Clone shares movement storage with the original")
	}
	if c.MonthlyRules == nil || c.PlannedEvents == nil {
		t.Error("Clone left nil collections")
	}
}

func TestStateEqual_ComparesAmountsNumerically(t *testing.T) {
	a := State{Year: 2025, InitialBalance: decimal.RequireFromString("12.50")}
	b := State{Year: 2025, InitialBalance: decimal.RequireFromString("12.5"), MonthlyRules: []MonthlyRule{}}
	if !a.Equal(b) {
		t.Error("12.50 and 12.5 with nil/empty rules should be equal")
	}
	b.Year = 2026
	if a.Equal(b) {
		t.Error("states with different years reported equal")
	}
}
