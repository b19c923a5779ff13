package pipeline

import (
	"testing"
	"time"
)

func TestFeed_StrideKeepsLastDay(t *testing.T) {
	points := Reconcile(flat(t, 2025, "1"), nil, 2025)

	tests := []struct {
		stride  int
		wantLen int
	}{
		{1, 365},
		{2, 183}, // days 1,3,...,365
		{7, 53},  // 365 is itself a multiple-of-7 sample
		{0, 365},
		{1000, 2},
	}
	for _, tc := range tests {
		feed := Feed(points, tc.stride)
		if len(feed) != tc.wantLen {
			t.Errorf("stride %d: len = %d, want %d", tc.stride, len(feed), tc.wantLen)
			continue
		}
		if feed[0].Day != 1 {
			t.Errorf("stride %d: first day = %d, want 1", tc.stride, feed[0].Day)
		}
		if last := feed[len(feed)-1]; last.Day != 365 || last.Label != "31/12" {
			t.Errorf("stride %d: last = day %d %q, want 365 31/12", tc.stride, last.Day, last.Label)
		}
	}
}

func TestFeed_Fields(t *testing.T) {
	points := Reconcile(flat(t, 2025, "2.50"), nil, 2025)
	feed := Feed(points, DefaultStride)
	p := feed[1]
	if p.Day != 3 || p.Date != "2025-01-03" || p.Label != "03/01" {
		t.Errorf("feed[1] = %+v", p)
	}
	if !p.Forecast.Equal(dec("2.5")) || !p.Real.Equal(dec("2.5")) {
		t.Errorf("feed[1] balances = %s / %s", p.Forecast, p.Real)
	}
}

func TestFeed_Empty(t *testing.T) {
	if got := Feed(nil, 2); len(got) != 0 {
		t.Errorf("len = %d, want 0", len(got))
	}
}

func TestDayLabel(t *testing.T) {
	if got := DayLabel(time.Date(2025, time.March, 7, 0, 0, 0, 0, time.UTC)); got != "07/03" {
		t.Errorf("DayLabel = %q, want 07/03", got)
	}
}
