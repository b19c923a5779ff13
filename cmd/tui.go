package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/fincast/internal/config"
	"github.com/theirongolddev/fincast/internal/tui"
	"github.com/theirongolddev/fincast/internal/tui/theme"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch interactive TUI dashboard",
	RunE:  runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

// tuiLogger logs to a file under the data dir with --verbose, since stderr
// belongs to the alt screen while the dashboard runs.
func tuiLogger() (zerolog.Logger, func(), error) {
	if !flagVerbose || flagQuiet {
		return zerolog.Nop(), func() {}, nil
	}
	dir := config.DataDir()
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("creating data dir: %w", err)
	}
	path := filepath.Join(dir, "tui.log")
	//nolint:gosec // log path is under the user's own data dir
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o600)
	if err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("opening tui log: %w", err)
	}
	logger := zerolog.New(f).Level(zerolog.DebugLevel).With().Timestamp().Logger()
	return logger, func() { _ = f.Close() }, nil
}

func runTUI(cmd *cobra.Command, _ []string) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	logger, closeLog, err := tuiLogger()
	if err != nil {
		return err
	}
	defer closeLog()

	theme.SetActive(s.cfg.Appearance.Theme)

	// Force TrueColor profile so all background styling produces ANSI codes
	// Without this, lipgloss may default to Ascii profile (no colors)
	lipgloss.SetColorProfile(termenv.TrueColor)

	app := tui.NewApp(s.store, s.state, tui.Options{
		Currency:    s.cfg.Appearance.Currency,
		Stride:      s.cfg.Chart.Stride,
		ChartHeight: s.cfg.Chart.Height,
		ExportDir:   ".",
		Logger:      logger,
	})
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithMouseCellMotion())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
