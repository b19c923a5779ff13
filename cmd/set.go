package cmd

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/fincast/internal/cli"
	"github.com/theirongolddev/fincast/internal/model"
)

var (
	flagSetYear    int
	flagSetBalance string
)

var setCmd = &cobra.Command{
	Use:   "set",
	Short: "Change the projected year or the initial balance",
	Args:  cobra.NoArgs,
	RunE:  runSet,
}

func init() {
	setCmd.Flags().IntVar(&flagSetYear, "year", 0, "Projected calendar year")
	setCmd.Flags().StringVar(&flagSetBalance, "balance", "", "Balance on January 1")
	rootCmd.AddCommand(setCmd)
}

func runSet(cmd *cobra.Command, _ []string) error {
	yearSet, balanceSet := cmd.Flags().Changed("year"), cmd.Flags().Changed("balance")
	if !yearSet && !balanceSet {
		return errors.New("nothing to change: pass --year and/or --balance")
	}

	var balance decimal.Decimal
	if balanceSet {
		b, err := model.ParseAmount(flagSetBalance)
		if err != nil {
			return err
		}
		balance = b
	}

	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	err = s.mutate("settings changed", func(st *model.State) error {
		if balanceSet {
			st.SetInitialBalance(balance)
		}
		if yearSet {
			return st.SetYear(flagSetYear)
		}
		return nil
	})
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Println(cli.RenderLabel("Year", strconv.Itoa(s.state.Year)))
	fmt.Println(cli.RenderLabel("Opening", cli.FormatAmount(s.state.InitialBalance, s.cfg.Appearance.Currency)))
	fmt.Println()
	return nil
}
