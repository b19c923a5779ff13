package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/fincast/internal/cli"
	"github.com/theirongolddev/fincast/internal/pipeline"
	"github.com/theirongolddev/fincast/internal/tui/components"
	"github.com/theirongolddev/fincast/internal/tui/theme"
)

var (
	flagChartWidth  int
	flagChartHeight int
	flagChartStride int
)

var chartCmd = &cobra.Command{
	Use:   "chart",
	Short: "Terminal line chart of the forecast and real balances",
	RunE:  runChart,
}

func init() {
	chartCmd.Flags().IntVar(&flagChartWidth, "width", 100, "Chart width in columns")
	chartCmd.Flags().IntVar(&flagChartHeight, "height", 0, "Chart height in rows (default from config)")
	chartCmd.Flags().IntVar(&flagChartStride, "stride", 0, "Sample every N days (default from config)")
	rootCmd.AddCommand(chartCmd)
}

func runChart(cmd *cobra.Command, _ []string) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	res, err := pipeline.Run(s.state)
	if err != nil {
		return err
	}

	stride := s.cfg.Chart.Stride
	if flagChartStride > 0 {
		stride = flagChartStride
	}
	height := s.cfg.Chart.Height
	if flagChartHeight > 0 {
		height = flagChartHeight
	}
	theme.SetActive(s.cfg.Appearance.Theme)

	feed := pipeline.Feed(res.Points, stride)
	today, inYear := res.Today(time.Now())

	forecast := make([]float64, len(feed))
	real := make([]float64, len(feed))
	labels := make([]string, len(feed))
	marker := -1
	for i, p := range feed {
		forecast[i], _ = p.Forecast.Float64()
		real[i], _ = p.Real.Float64()
		labels[i] = p.Label
		if inYear && p.Day <= today.Day {
			marker = i
		}
	}

	t := theme.Active
	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("BALANCE  %d", res.Year)))
	fmt.Println()
	fmt.Println(components.LineChart([]components.Series{
		{Name: "forecast", Values: forecast, Color: t.Forecast, Glyph: '•'},
		{Name: "real", Values: real, Color: t.Real, Glyph: '∙'},
	}, labels, marker, max(flagChartWidth, 40), max(height, 4)))
	fmt.Println()
	return nil
}
