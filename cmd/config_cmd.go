package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/fincast/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	fmt.Printf("  Config file: %s\n", config.ConfigPath())
	if config.Exists() {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Println("  FINCAST_* environment variables and .env override the file.")
	fmt.Println()

	fmt.Println("  [General]")
	if cfg.General.DefaultYear != 0 {
		fmt.Printf("    Default year:    %d\n", cfg.General.DefaultYear)
	} else {
		fmt.Println("    Default year:    current year")
	}
	balance := cfg.General.DefaultInitialBalance
	if balance == "" {
		balance = "0"
	}
	fmt.Printf("    Default balance: %s\n", balance)
	fmt.Printf("    Store:           %s\n", cfg.StorePath())
	fmt.Println()

	fmt.Println("  [Chart]")
	fmt.Printf("    Stride: %d days\n", cfg.Chart.Stride)
	fmt.Printf("    Height: %d rows\n", cfg.Chart.Height)
	fmt.Println()

	fmt.Println("  [Appearance]")
	fmt.Printf("    Theme:    %s\n", cfg.Appearance.Theme)
	fmt.Printf("    Currency: %s\n", cfg.Appearance.Currency)
	fmt.Println()

	fmt.Println("  [Serve]")
	fmt.Printf("    Address:       %s\n", cfg.Serve.Addr)
	fmt.Printf("    Poll interval: %s\n", cfg.PollInterval())
	fmt.Println()

	fmt.Println("  Run `fincast setup` to reconfigure.")
	return nil
}
