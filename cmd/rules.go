package cmd

import (
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/fincast/internal/cli"
	"github.com/theirongolddev/fincast/internal/model"
)

var ruleFlags entryFlags

func init() {
	add := &cobra.Command{
		Use:   "add",
		Short: "Add a monthly rule",
		Args:  cobra.NoArgs,
		RunE:  runRuleAdd,
	}
	ruleFlags.register(add, "Active from, YYYY-MM-DD (default today)", "", "", true)

	edit := &cobra.Command{
		Use:   "edit <n>",
		Short: "Change fields of the n-th rule",
		Args:  cobra.ExactArgs(1),
		RunE:  runRuleEdit,
	}
	ruleFlags.register(edit, "Active from, YYYY-MM-DD", "", "", true)

	rootCmd.AddCommand(newEntryCmd("rule", "Recurring monthly amounts",
		add,
		&cobra.Command{Use: "list", Aliases: []string{"ls"}, Short: "List monthly rules", Args: cobra.NoArgs, RunE: runRuleList},
		edit,
		&cobra.Command{Use: "rm <n>", Aliases: []string{"delete"}, Short: "Delete the n-th rule", Args: cobra.ExactArgs(1), RunE: runRuleRemove},
	))
}

// ruleFromFlags overlays the given flags on r. When adding, amount is
// required and unset dates default to today.
func ruleFromFlags(cmd *cobra.Command, r model.MonthlyRule, adding bool) (model.MonthlyRule, error) {
	f := cmd.Flags()
	if f.Changed("title") {
		r.Title = ruleFlags.title
	}
	if adding || f.Changed("amount") {
		a, err := model.ParseAmount(ruleFlags.amount)
		if err != nil {
			return r, err
		}
		r.Amount = a
	}
	if adding || f.Changed("day") {
		r.DayOfMonth = ruleFlags.day
	}
	switch {
	case f.Changed("date"):
		d, err := parseFlagDate("activeFrom", ruleFlags.date)
		if err != nil {
			return r, err
		}
		r.ActiveFrom = d
	case adding:
		r.ActiveFrom = model.DateOf(time.Now())
	}
	return r, nil
}

func runRuleAdd(cmd *cobra.Command, _ []string) error {
	r, err := ruleFromFlags(cmd, model.MonthlyRule{}, true)
	if err != nil {
		return err
	}

	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	if err := s.mutate("rule added", func(st *model.State) error { return st.AddRule(r) }); err != nil {
		return err
	}
	fmt.Printf("  Added rule %d: %s on the %s from %s\n", len(s.state.MonthlyRules),
		cli.FormatSigned(r.Amount, s.cfg.Appearance.Currency), cli.FormatOrdinal(r.DayOfMonth), r.ActiveFrom)
	return nil
}

func runRuleEdit(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	i, err := parseIndex(args[0], len(s.state.MonthlyRules))
	if err != nil {
		return err
	}
	r, err := ruleFromFlags(cmd, s.state.MonthlyRules[i], false)
	if err != nil {
		return err
	}
	if err := s.mutate("rule updated", func(st *model.State) error { return st.UpdateRule(i, r) }); err != nil {
		return err
	}
	fmt.Printf("  Updated rule %d\n", i+1)
	return nil
}

func runRuleRemove(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	i, err := parseIndex(args[0], len(s.state.MonthlyRules))
	if err != nil {
		return err
	}
	if err := s.mutate("rule deleted", func(st *model.State) error { return st.RemoveRule(i) }); err != nil {
		return err
	}
	fmt.Printf("  Deleted rule %d\n", i+1)
	return nil
}

func runRuleList(cmd *cobra.Command, _ []string) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	if len(s.state.MonthlyRules) == 0 {
		fmt.Println("\n  No monthly rules yet. Add one with `fincast rule add`.")
		return nil
	}

	cur := s.cfg.Appearance.Currency
	rows := make([][]string, 0, len(s.state.MonthlyRules))
	var total decimal.Decimal
	for i, r := range s.state.MonthlyRules {
		total = total.Add(r.Amount)
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			r.Title,
			cli.RenderSigned(r.Amount, cli.FormatSigned(r.Amount, cur)),
			cli.FormatOrdinal(r.DayOfMonth),
			r.ActiveFrom.String(),
		})
	}
	rows = append(rows, []string{"---"}, []string{"", "per month", cli.RenderSigned(total, cli.FormatSigned(total, cur)), "", ""})

	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Monthly rules",
		Headers: []string{"#", "Title", "Amount", "Day", "Active from"},
		Rows:    rows,
	}))
	return nil
}
