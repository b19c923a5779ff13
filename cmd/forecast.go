package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/fincast/internal/cli"
	"github.com/theirongolddev/fincast/internal/pipeline"
)

var (
	flagDaily bool
	flagMonth int
)

var forecastCmd = &cobra.Command{
	Use:   "forecast",
	Short: "Monthly (or daily) table of forecast and real balances",
	RunE:  runForecast,
}

func init() {
	forecastCmd.Flags().BoolVar(&flagDaily, "daily", false, "One row per day instead of per month")
	forecastCmd.Flags().IntVarP(&flagMonth, "month", "m", 0, "Limit the daily table to one month (1-12)")
	rootCmd.AddCommand(forecastCmd)
}

func runForecast(cmd *cobra.Command, _ []string) error {
	if flagMonth < 0 || flagMonth > 12 {
		return fmt.Errorf("--month %d: must be between 1 and 12", flagMonth)
	}

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

	fmt.Println()
	if flagDaily || flagMonth != 0 {
		return printDaily(res, cur)
	}

	fmt.Println(cli.RenderTitle(fmt.Sprintf("FORECAST  %d", res.Year)))
	fmt.Println()

	rows := [][]string{}
	for _, m := range pipeline.MonthlySummary(res.Points, s.state.InitialBalance) {
		rows = append(rows, []string{
			m.Month.String()[:3],
			cli.FormatAmount(m.OpeningBalance, cur),
			cli.RenderSigned(m.ForecastChange, cli.FormatSigned(m.ForecastChange, cur)),
			cli.FormatAmount(m.Forecast, cur),
			cli.FormatAmount(m.Real, cur),
			cli.RenderSigned(m.Delta(), cli.FormatSigned(m.Delta(), cur)),
		})
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Month", "Opening", "Change", "Forecast", "Real", "Difference"},
		Rows:    rows,
	}))
	fmt.Println()
	return nil
}

func printDaily(res pipeline.Result, cur string) error {
	points := res.Points
	title := fmt.Sprintf("DAILY  %d", res.Year)
	if flagMonth != 0 {
		month := time.Month(flagMonth)
		points = nil
		for _, p := range res.Points {
			if p.Date.Month() == month {
				points = append(points, p)
			}
		}
		title = fmt.Sprintf("DAILY  %s %d", month, res.Year)
	}

	fmt.Println(cli.RenderTitle(title))
	fmt.Println()

	today := time.Now()
	rows := make([][]string, 0, len(points))
	for _, p := range points {
		marker := ""
		if p.Date.Year() == today.Year() && p.Date.YearDay() == today.YearDay() {
			marker = "◀ today"
		}
		rows = append(rows, []string{
			cli.FormatDate(p.Date),
			cli.FormatDayOfWeek(p.Date.Weekday()),
			cli.FormatAmount(p.Forecast, cur),
			cli.FormatAmount(p.Real, cur),
			cli.RenderSigned(p.Delta(), cli.FormatSigned(p.Delta(), cur)),
			marker,
		})
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Date", "Day", "Forecast", "Real", "Difference", ""},
		Rows:    rows,
	}))
	fmt.Println()
	return nil
}
