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

var movementFlags entryFlags

func init() {
	add := &cobra.Command{
		Use:   "add",
		Short: "Record a real movement",
		Args:  cobra.NoArgs,
		RunE:  runMovementAdd,
	}
	movementFlags.register(add, "Date, YYYY-MM-DD (default today)", "note", "Free-form note", false)

	edit := &cobra.Command{
		Use:   "edit <n>",
		Short: "Change fields of the n-th movement",
		Args:  cobra.ExactArgs(1),
		RunE:  runMovementEdit,
	}
	movementFlags.register(edit, "Date, YYYY-MM-DD", "note", "Free-form note", false)

	rootCmd.AddCommand(newEntryCmd("movement", "Amounts that actually happened",
		add,
		&cobra.Command{Use: "list", Aliases: []string{"ls"}, Short: "List real movements", Args: cobra.NoArgs, RunE: runMovementList},
		edit,
		&cobra.Command{Use: "rm <n>", Aliases: []string{"delete"}, Short: "Delete the n-th movement", Args: cobra.ExactArgs(1), RunE: runMovementRemove},
	))
}

// movementFromFlags overlays the given flags on m. When adding, amount is
// required and the date defaults to today.
func movementFromFlags(cmd *cobra.Command, m model.RealMovement, adding bool) (model.RealMovement, error) {
	f := cmd.Flags()
	if f.Changed("title") {
		m.Title = movementFlags.title
	}
	if adding || f.Changed("amount") {
		a, err := model.ParseAmount(movementFlags.amount)
		if err != nil {
			return m, err
		}
		m.Amount = a
	}
	switch {
	case f.Changed("date"):
		d, err := parseFlagDate("date", movementFlags.date)
		if err != nil {
			return m, err
		}
		m.Date = d
	case adding:
		m.Date = model.DateOf(time.Now())
	}
	if f.Changed("note") {
		m.Note = movementFlags.text
	}
	return m, nil
}

func runMovementAdd(cmd *cobra.Command, _ []string) error {
	m, err := movementFromFlags(cmd, model.RealMovement{}, true)
	if err != nil {
		return err
	}

	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	if err := s.mutate("movement added", func(st *model.State) error { return st.AddMovement(m) }); err != nil {
		return err
	}
	fmt.Printf("  Recorded movement %d: %s on %s\n", len(s.state.RealMovements),
		cli.FormatSigned(m.Amount, s.cfg.Appearance.Currency), m.Date)
	if m.Date.Year() != s.state.Year {
		fmt.Println(cli.RenderWarning(fmt.Sprintf("%s is outside %d and is ignored by this projection", m.Date, s.state.Year)))
	}
	return nil
}

func runMovementEdit(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	i, err := parseIndex(args[0], len(s.state.RealMovements))
	if err != nil {
		return err
	}
	m, err := movementFromFlags(cmd, s.state.RealMovements[i], false)
	if err != nil {
		return err
	}
	if err := s.mutate("movement updated", func(st *model.State) error { return st.UpdateMovement(i, m) }); err != nil {
		return err
	}
	fmt.Printf("  Updated movement %d\n", i+1)
	return nil
}

func runMovementRemove(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	i, err := parseIndex(args[0], len(s.state.RealMovements))
	if err != nil {
		return err
	}
	if err := s.mutate("movement deleted", func(st *model.State) error { return st.RemoveMovement(i) }); err != nil {
		return err
	}
	fmt.Printf("  Deleted movement %d\n", i+1)
	return nil
}

func runMovementList(cmd *cobra.Command, _ []string) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	if len(s.state.RealMovements) == 0 {
		fmt.Println("\n  No real movements yet. Record one with `fincast movement add`.")
		return nil
	}

	cur := s.cfg.Appearance.Currency
	rows := make([][]string, 0, len(s.state.RealMovements)+2)
	var total decimal.Decimal
	for i, m := range s.state.RealMovements {
		title := m.Title
		if m.Date.Year() == s.state.Year {
			total = total.Add(m.Amount)
		} else {
			title += " (other year)"
		}
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			title,
			cli.RenderSigned(m.Amount, cli.FormatSigned(m.Amount, cur)),
			m.Date.String(),
			m.Note,
		})
	}
	rows = append(rows, []string{"---"}, []string{"", fmt.Sprintf("in %d", s.state.Year), cli.RenderSigned(total, cli.FormatSigned(total, cur)), "", ""})

	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Real movements",
		Headers: []string{"#", "Title", "Amount", "Date", "Note"},
		Rows:    rows,
	}))
	return nil
}
