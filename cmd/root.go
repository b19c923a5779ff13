// Package cmd implements the fincast CLI commands.
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/fincast/internal/config"
	"github.com/theirongolddev/fincast/internal/model"
	"github.com/theirongolddev/fincast/internal/store"
)

var (
	flagStore   string
	flagQuiet   bool
	flagVerbose bool
)

var rootCmd = &cobra.Command{
	Use:   "fincast",
	Short: "Personal balance forecast for one calendar year",
	Long: "Project a daily balance line from monthly rules and planned events,\n" +
		"overlay the real movements you record, and see how far the two drift apart.",
	SilenceUsage:      true,
	PersistentPreRunE: setupLogger,
	RunE:              runStatus,
}

// Execute is the main entry point called from main.go.
func Execute() {
	// A missing .env is fine; FINCAST_* may come from the real environment.
	_ = godotenv.Load()

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagStore, "store", "", "SQLite database path (default from config)")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress log output")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Debug log output")
}

// newLogger builds the stderr console logger. Command output goes to stdout.
func newLogger(w io.Writer) zerolog.Logger {
	level := zerolog.WarnLevel
	switch {
	case flagQuiet:
		level = zerolog.Disabled
	case flagVerbose:
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}).
		Level(level).
		With().Timestamp().Logger()
}

func setupLogger(cmd *cobra.Command, _ []string) error {
	logger := newLogger(os.Stderr)
	cmd.SetContext(logger.WithContext(cmd.Context()))
	return nil
}

// loadConfig reads config.toml and the environment, then applies --store.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return cfg, err
	}
	if flagStore != "" {
		cfg.General.StorePath = flagStore
	}
	return cfg, nil
}

// session is the shared state every command works on: the loaded config,
// the open store and the state read from it.
type session struct {
	cfg   config.Config
	store *store.Store
	state model.State
	log   *zerolog.Logger
}

// openSession loads config and state. The caller must Close it.
func openSession(cmd *cobra.Command) (*session, error) {
	logger := zerolog.Ctx(cmd.Context())

	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	defaults, err := defaultState(cfg, time.Now())
	if err != nil {
		return nil, err
	}

	st, err := openStore(cfg)
	if err != nil {
		return nil, err
	}
	state, err := st.Load(defaults)
	if err != nil {
		_ = st.Close()
		return nil, err
	}
	logger.Debug().
		Str("store", st.Path()).
		Int("year", state.Year).
		Int("rules", len(state.MonthlyRules)).
		Int("events", len(state.PlannedEvents)).
		Int("movements", len(state.RealMovements)).
		Msg("state loaded")

	return &session{cfg: cfg, store: st, state: state, log: logger}, nil
}

func openStore(cfg config.Config) (*store.Store, error) {
	st, err := store.Open(cfg.StorePath())
	if err != nil {
		return nil, fmt.Errorf("store %s: %w", cfg.StorePath(), err)
	}
	return st, nil
}

func (s *session) Close() error {
	return s.store.Close()
}

// mutate applies fn to a copy of the state and saves it. Nothing is stored
// when fn or the save fails.
func (s *session) mutate(what string, fn func(*model.State) error) error {
	next := s.state.Clone()
	if err := fn(&next); err != nil {
		return err
	}
	if err := s.store.Save(next); err != nil {
		return fmt.Errorf("saving state: %w", err)
	}
	s.state = next
	s.log.Info().Str("action", what).Msg("state saved")
	return nil
}

// defaultState is what an empty store starts from: the configured (or
// current) year and the configured opening balance.
func defaultState(cfg config.Config, now time.Time) (model.State, error) {
	balance, err := cfg.InitialBalance()
	if err != nil {
		return model.State{}, err
	}
	year := cfg.Year(now)
	if err := model.ValidateYear(year); err != nil {
		return model.State{}, fmt.Errorf("default_year: %w", err)
	}
	return model.State{Year: year, InitialBalance: balance}, nil
}
