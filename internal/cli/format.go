// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/fincast/internal/model"
)

// FormatAmount formats a balance with a currency symbol, thousands
// separators and two decimals.
// e.g., -1234.5 -> "-€1,234.50"
func FormatAmount(d decimal.Decimal, currency string) string {
	d = d.Round(2)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}
	fixed := d.StringFixed(2)
	whole, frac, _ := strings.Cut(fixed, ".")
	n, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		// Too large for int64; leave the integer part ungrouped.
		return sign + currency + fixed
	}
	return sign + currency + FormatNumber(n) + "." + frac
}

// FormatSigned is FormatAmount with an explicit sign, used for deltas.
// e.g., 12 -> "+€12.00", 0 -> "€0.00"
func FormatSigned(d decimal.Decimal, currency string) string {
	if d.Round(2).IsPositive() {
		return "+" + FormatAmount(d, currency)
	}
	return FormatAmount(d, currency)
}

// FormatNumber adds comma separators to an integer.
// e.g., 1234567 -> "1,234,567"
func FormatNumber(n int64) string {
	if n < 0 {
		return "-" + FormatNumber(-n)
	}

	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}

	var result strings.Builder
	remainder := len(s) % 3
	if remainder > 0 {
		result.WriteString(s[:remainder])
	}
	for i := remainder; i < len(s); i += 3 {
		if result.Len() > 0 {
			result.WriteByte(',')
		}
		result.WriteString(s[i : i+3])
	}
	return result.String()
}

// FormatDate formats a date as YYYY-MM-DD, or "-" when unset.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format(model.DateLayout)
}

// FormatPercent formats a 0-1 float as a percentage string.
func FormatPercent(f float64) string {
	return fmt.Sprintf("%.1f%%", f*100)
}

// FormatDayOfWeek returns a 3-letter day abbreviation.
func FormatDayOfWeek(weekday time.Weekday) string {
	days := []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}
	if weekday >= 0 && int(weekday) < len(days) {
		return days[weekday]
	}
	return "???"
}

// FormatOrdinal returns 1st, 2nd, 3rd, 4th and so on, for days of month.
func FormatOrdinal(n int) string {
	suffix := "th"
	switch {
	case n%100 >= 11 && n%100 <= 13:
	case n%10 == 1:
		suffix = "st"
	case n%10 == 2:
		suffix = "nd"
	case n%10 == 3:
		suffix = "rd"
	}
	return strconv.Itoa(n) + suffix
}
