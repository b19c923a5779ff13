package cmd

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/fincast/internal/calendar"
	"github.com/theirongolddev/fincast/internal/cli"
	"github.com/theirongolddev/fincast/internal/pipeline"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Balances today, the forecast/real gap and the year end",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	res, err := pipeline.Run(s.state)
	if err != nil {
		return err
	}
	cur := s.cfg.Appearance.Currency
	now := time.Now()
	stats := pipeline.Aggregate(res.Points)
	last := res.Last()

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("FINCAST  %d", res.Year)))
	fmt.Println()

	fmt.Println(cli.RenderLabel("Opening", cli.FormatAmount(s.state.InitialBalance, cur)))
	if today, ok := res.Today(now); ok {
		total := calendar.DaysInYear(res.Year)
		fmt.Println(cli.RenderLabel("Today", fmt.Sprintf("%s  %s",
			cli.FormatDate(today.Date), cli.RenderProgressBar(today.Day, total, 20))))
		fmt.Println(cli.RenderLabel("Forecast", cli.FormatAmount(today.Forecast, cur)))
		fmt.Println(cli.RenderLabel("Real", cli.FormatAmount(today.Real, cur)))
		delta := today.Delta()
		fmt.Println(cli.RenderLabel("Difference", cli.RenderSigned(delta, cli.FormatSigned(delta, cur))))
	} else {
		fmt.Println(cli.RenderLabel("Today", fmt.Sprintf("%s (outside %d)", cli.FormatDate(now), res.Year)))
	}
	fmt.Println()

	fmt.Println(cli.RenderLabel("Year end", fmt.Sprintf("forecast %s  real %s",
		cli.FormatAmount(last.Forecast, cur), cli.FormatAmount(last.Real, cur))))
	fmt.Println(cli.RenderLabel("Lowest", fmt.Sprintf("%s on %s",
		cli.FormatAmount(stats.LowestForecast, cur), dayDate(res.Year, stats.LowestForecastDay))))

	ends := pipeline.MonthEnds(res.Points)
	forecast := make([]decimal.Decimal, len(ends))
	for i, p := range ends {
		forecast[i] = p.Forecast
	}
	fmt.Println(cli.RenderLabel("Month ends", cli.RenderSparkline(forecast)))

	fmt.Println(cli.RenderLabel("Entries", fmt.Sprintf("%d rules, %d events, %d movements",
		len(s.state.MonthlyRules), len(s.state.PlannedEvents), len(s.state.RealMovements))))

	if stats.FirstNegativeDay > 0 {
		fmt.Println()
		fmt.Println(cli.RenderWarning("Forecast goes negative on " + dayDate(res.Year, stats.FirstNegativeDay)))
	}
	fmt.Println()
	return nil
}

// dayDate renders a day index as "02 Jan", or "-" when it is out of range.
func dayDate(year, day int) string {
	d, err := calendar.DayIndexToDate(year, day)
	if err != nil {
		return "-"
	}
	return d.Format("02 Jan")
}
