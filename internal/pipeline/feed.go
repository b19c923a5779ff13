package pipeline

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/fincast/internal/model"
)

// DefaultStride samples every other day.
const DefaultStride = 2

// FeedPoint is one sample of the presentation feed.
type FeedPoint struct {
	Day      int             `json:"day"`
	Date     string          `json:"date"`
	Label    string          `json:"label"`
	Forecast decimal.Decimal `json:"forecast"`
	Real     decimal.Decimal `json:"real"`
}

// Feed samples points every stride days and always keeps the last point, so
// the year-end balance is exact however coarse the chart is.
func Feed(points []model.ReconciledPoint, stride int) []FeedPoint {
	if stride < 1 {
		stride = 1
	}
	out := make([]FeedPoint, 0, len(points)/stride+1)
	for i, p := range points {
		if i%stride != 0 && i != len(points)-1 {
			continue
		}
		out = append(out, FeedPoint{
			Day:      p.Day,
			Date:     p.Date.Format(model.DateLayout),
			Label:    DayLabel(p.Date),
			Forecast: p.Forecast,
			Real:     p.Real,
		})
	}
	return out
}

// DayLabel renders a date as dd/mm.
func DayLabel(t time.Time) string {
	return t.Format("02/01")
}
