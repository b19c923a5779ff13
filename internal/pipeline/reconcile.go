package pipeline

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/fincast/internal/calendar"
	"github.com/theirongolddev/fincast/internal/model"
)

// Reconcile overlays real movements on the forecast line. The real balance
// of a day is its forecast plus every movement of the same year dated on or
// before it. Movements dated in other years are ignored.
func Reconcile(points []model.DayPoint, movements []model.RealMovement, year int) []model.ReconciledPoint {
	n := calendar.DaysInYear(year)

	// cumulative[d] is the sum of movements dated on days 1..d.
	cumulative := make([]decimal.Decimal, n+1)
	for _, m := range movements {
		if m.Date.Year() != year {
			continue
		}
		idx := calendar.DateToDayIndex(year, m.Date.Time)
		if idx < 1 || idx > n {
			continue
		}
		cumulative[idx] = cumulative[idx].Add(m.Amount)
	}
	for d := 1; d <= n; d++ {
		cumulative[d] = cumulative[d].Add(cumulative[d-1])
	}

	out := make([]model.ReconciledPoint, len(points))
	for i, p := range points {
		adjustment := decimal.Zero
		if p.Day >= 1 && p.Day <= n {
			adjustment = cumulative[p.Day]
		}
		out[i] = model.ReconciledPoint{
			Day:      p.Day,
			Date:     p.Date,
			Forecast: p.ForecastBalance,
			Real:     p.ForecastBalance.Add(adjustment),
		}
	}
	return out
}

// CurrentDelta returns real minus forecast on today's date. ok is false when
// today is not in year.
func CurrentDelta(points []model.ReconciledPoint, year int, today time.Time) (delta decimal.Decimal, ok bool) {
	p, ok := pointAt(points, year, today)
	if !ok {
		return decimal.Zero, false
	}
	return p.Delta(), true
}

func pointAt(points []model.ReconciledPoint, year int, today time.Time) (model.ReconciledPoint, bool) {
	if today.Year() != year {
		return model.ReconciledPoint{}, false
	}
	idx := calendar.DateToDayIndex(year, today)
	if idx < 1 || idx > len(points) {
		return model.ReconciledPoint{}, false
	}
	return points[idx-1], true
}
