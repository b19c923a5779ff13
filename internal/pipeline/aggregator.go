package pipeline

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/fincast/internal/model"
)

// MonthStats summarizes one month of the reconciled lines.
type MonthStats struct {
	Month          time.Month
	OpeningBalance decimal.Decimal // forecast at the end of the previous month
	Forecast       decimal.Decimal // forecast on the last day of the month
	Real           decimal.Decimal // real on the last day of the month
	ForecastChange decimal.Decimal
	RealChange     decimal.Decimal
}

// Delta returns real minus forecast at month end.
func (m MonthStats) Delta() decimal.Decimal {
	return m.Real.Sub(m.Forecast)
}

// MonthEnds returns the last point of each month present in points.
func MonthEnds(points []model.ReconciledPoint) []model.ReconciledPoint {
	var ends []model.ReconciledPoint
	for i, p := range points {
		if i == len(points)-1 || points[i+1].Date.Month() != p.Date.Month() {
			ends = append(ends, p)
		}
	}
	return ends
}

// MonthlySummary computes month-end balances and the change over each month.
// initialBalance opens January for both lines.
func MonthlySummary(points []model.ReconciledPoint, initialBalance decimal.Decimal) []MonthStats {
	ends := MonthEnds(points)

	stats := make([]MonthStats, 0, len(ends))
	prevForecast, prevReal := initialBalance, initialBalance
	for _, p := range ends {
		stats = append(stats, MonthStats{
			Month:          p.Date.Month(),
			OpeningBalance: prevForecast,
			Forecast:       p.Forecast,
			Real:           p.Real,
			ForecastChange: p.Forecast.Sub(prevForecast),
			RealChange:     p.Real.Sub(prevReal),
		})
		prevForecast, prevReal = p.Forecast, p.Real
	}
	return stats
}

// YearStats holds the headline numbers of a projection.
type YearStats struct {
	EndForecast decimal.Decimal
	EndReal     decimal.Decimal

	LowestForecast    decimal.Decimal
	LowestForecastDay int
	LowestReal        decimal.Decimal
	LowestRealDay     int

	HighestForecast    decimal.Decimal
	HighestForecastDay int

	// FirstNegativeDay is the first day the forecast drops below zero, 0 if never.
	FirstNegativeDay int
}

// Aggregate computes YearStats over the reconciled points.
func Aggregate(points []model.ReconciledPoint) YearStats {
	var s YearStats
	if len(points) == 0 {
		return s
	}

	first := points[0]
	s.LowestForecast, s.LowestForecastDay = first.Forecast, first.Day
	s.HighestForecast, s.HighestForecastDay = first.Forecast, first.Day
	s.LowestReal, s.LowestRealDay = first.Real, first.Day

	for _, p := range points {
		if p.Forecast.LessThan(s.LowestForecast) {
			s.LowestForecast, s.LowestForecastDay = p.Forecast, p.Day
		}
		if p.Forecast.GreaterThan(s.HighestForecast) {
			s.HighestForecast, s.HighestForecastDay = p.Forecast, p.Day
		}
		if p.Real.LessThan(s.LowestReal) {
			s.LowestReal, s.LowestRealDay = p.Real, p.Day
		}
		if s.FirstNegativeDay == 0 && p.Forecast.IsNegative() {
			s.FirstNegativeDay = p.Day
		}
	}

	last := points[len(points)-1]
	s.EndForecast, s.EndReal = last.Forecast, last.Real
	return s
}

// Window returns the points whose day falls in [fromDay, toDay].
func Window(points []model.ReconciledPoint, fromDay, toDay int) []model.ReconciledPoint {
	var out []model.ReconciledPoint
	for _, p := range points {
		if p.Day >= fromDay && p.Day <= toDay {
			out = append(out, p)
		}
	}
	return out
}
