package cmd

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/fincast/internal/config"
	"github.com/theirongolddev/fincast/internal/model"
	"github.com/theirongolddev/fincast/internal/tui/theme"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "First-time setup wizard",
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

// setupValues are the raw form fields; numbers stay strings until submit.
type setupValues struct {
	year     string
	balance  string
	currency string
	theme    string
	stride   string
	store    string
}

func newSetupValues(cfg config.Config) *setupValues {
	v := &setupValues{
		balance:  cfg.General.DefaultInitialBalance,
		currency: cfg.Appearance.Currency,
		theme:    cfg.Appearance.Theme,
		stride:   strconv.Itoa(cfg.Chart.Stride),
		store:    cfg.StorePath(),
	}
	if cfg.General.DefaultYear != 0 {
		v.year = strconv.Itoa(cfg.General.DefaultYear)
	}
	return v
}

// apply validates the answers and writes them into cfg.
func (v *setupValues) apply(cfg *config.Config) error {
	cfg.General.DefaultYear = 0
	if y := strings.TrimSpace(v.year); y != "" {
		year, err := strconv.Atoi(y)
		if err != nil {
			return errors.New("year must be a whole number")
		}
		if err := model.ValidateYear(year); err != nil {
			return err
		}
		cfg.General.DefaultYear = year
	}

	cfg.General.DefaultInitialBalance = ""
	if b := strings.TrimSpace(v.balance); b != "" {
		d, err := model.ParseAmount(b)
		if err != nil {
			return err
		}
		cfg.General.DefaultInitialBalance = d.String()
	}

	stride, err := strconv.Atoi(strings.TrimSpace(v.stride))
	if err != nil || stride < 1 {
		return errors.New("stride must be a positive whole number")
	}
	cfg.Chart.Stride = stride

	cfg.Appearance.Currency = v.currency
	cfg.Appearance.Theme = v.theme
	cfg.General.StorePath = strings.TrimSpace(v.store)
	return nil
}

func runSetup(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	v := newSetupValues(cfg)

	themes := make([]huh.Option[string], 0, len(theme.All))
	for _, name := range theme.Names() {
		themes = append(themes, huh.NewOption(name, name))
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Welcome to fincast").
				Description("These are defaults for a fresh store.\nThe year and balance can be changed later with `fincast set`."),
			huh.NewInput().
				Title("Default year").
				Description("blank follows the current year").
				Value(&v.year).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return nil
					}
					year, err := strconv.Atoi(strings.TrimSpace(s))
					if err != nil {
						return errors.New("year must be a whole number")
					}
					return model.ValidateYear(year)
				}),
			huh.NewInput().
				Title("Opening balance").
				Description("balance on January 1").
				Value(&v.balance).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return nil
					}
					_, err := model.ParseAmount(s)
					return err
				}),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Currency symbol").
				Options(huh.NewOptions("€", "$", "£", "CHF ")...).
				Value(&v.currency),
			huh.NewSelect[string]().
				Title("Color theme").
				Options(themes...).
				Value(&v.theme),
			huh.NewInput().
				Title("Chart sampling").
				Description("plot every N days").
				Value(&v.stride),
			huh.NewInput().
				Title("Database").
				Value(&v.store),
		),
	).WithTheme(huh.ThemeBase())

	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			fmt.Println("  Setup canceled, nothing saved.")
			return nil
		}
		return fmt.Errorf("setup form: %w", err)
	}

	if err := v.apply(&cfg); err != nil {
		return err
	}
	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	fmt.Println()
	fmt.Printf("  Saved to %s\n", config.ConfigPath())
	fmt.Println("  Run `fincast setup` anytime to reconfigure.")
	fmt.Println()
	return nil
}
