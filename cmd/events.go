package cmd

import (
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/fincast/internal/cli"
	"github.com/theirongolddev/fincast/internal/model"
)

var eventFlags entryFlags

func init() {
	add := &cobra.Command{
		Use:   "add",
		Short: "Add a planned event",
		Args:  cobra.NoArgs,
		RunE:  runEventAdd,
	}
	eventFlags.register(add, "Date, YYYY-MM-DD (default January 1 of the year)", "desc", "Longer description", false)

	edit := &cobra.Command{
		Use:   "edit <n>",
		Short: "Change fields of the n-th planned event",
		Args:  cobra.ExactArgs(1),
		RunE:  runEventEdit,
	}
	eventFlags.register(edit, "Date, YYYY-MM-DD", "desc", "Longer description", false)

	rootCmd.AddCommand(newEntryCmd("event", "One-off planned amounts",
		add,
		&cobra.Command{Use: "list", Aliases: []string{"ls"}, Short: "List planned events", Args: cobra.NoArgs, RunE: runEventList},
		edit,
		&cobra.Command{Use: "rm <n>", Aliases: []string{"delete"}, Short: "Delete the n-th planned event", Args: cobra.ExactArgs(1), RunE: runEventRemove},
	))
}

// eventFromFlags overlays the given flags on e. When adding, amount is
// required and the date defaults to January 1 of year.
func eventFromFlags(cmd *cobra.Command, e model.PlannedEvent, adding bool, year int) (model.PlannedEvent, error) {
	f := cmd.Flags()
	if f.Changed("title") {
		e.Title = eventFlags.title
	}
	if adding || f.Changed("amount") {
		a, err := model.ParseAmount(eventFlags.amount)
		if err != nil {
			return e, err
		}
		e.Amount = a
	}
	switch {
	case f.Changed("date"):
		d, err := parseFlagDate("date", eventFlags.date)
		if err != nil {
			return e, err
		}
		e.Date = d
	case adding:
		e.Date = model.NewDate(year, 1, 1)
	}
	if f.Changed("desc") {
		e.Description = eventFlags.text
	}
	return e, nil
}

func runEventAdd(cmd *cobra.Command, _ []string) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	e, err := eventFromFlags(cmd, model.PlannedEvent{}, true, s.state.Year)
	if err != nil {
		return err
	}
	if err := s.mutate("event added", func(st *model.State) error { return st.AddEvent(e) }); err != nil {
		return err
	}
	fmt.Printf("  Added event %d: %s on %s\n", len(s.state.PlannedEvents),
		cli.FormatSigned(e.Amount, s.cfg.Appearance.Currency), e.Date)
	if e.Date.Year() != s.state.Year {
		fmt.Println(cli.RenderWarning(fmt.Sprintf("%s is outside %d and does not affect this projection", e.Date, s.state.Year)))
	}
	return nil
}

func runEventEdit(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	i, err := parseIndex(args[0], len(s.state.PlannedEvents))
	if err != nil {
		return err
	}
	e, err := eventFromFlags(cmd, s.state.PlannedEvents[i], false, s.state.Year)
	if err != nil {
		return err
	}
	if err := s.mutate("event updated", func(st *model.State) error { return st.UpdateEvent(i, e) }); err != nil {
		return err
	}
	fmt.Printf("  Updated event %d\n", i+1)
	return nil
}

func runEventRemove(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	i, err := parseIndex(args[0], len(s.state.PlannedEvents))
	if err != nil {
		return err
	}
	if err := s.mutate("event deleted", func(st *model.State) error { return st.RemoveEvent(i) }); err != nil {
		return err
	}
	fmt.Printf("  Deleted event %d\n", i+1)
	return nil
}

func runEventList(cmd *cobra.Command, _ []string) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	if len(s.state.PlannedEvents) == 0 {
		fmt.Println("\n  No planned events yet. Add one with `fincast event add`.")
		return nil
	}

	cur := s.cfg.Appearance.Currency
	rows := make([][]string, 0, len(s.state.PlannedEvents))
	var total decimal.Decimal
	for i, e := range s.state.PlannedEvents {
		if e.Date.Year() == s.state.Year {
			total = total.Add(e.Amount)
		}
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			e.Title,
			cli.RenderSigned(e.Amount, cli.FormatSigned(e.Amount, cur)),
			e.Date.String(),
			e.Description,
		})
	}
	rows = append(rows, []string{"---"}, []string{"", fmt.Sprintf("in %d", s.state.Year), cli.RenderSigned(total, cli.FormatSigned(total, cur)), "", ""})

	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Planned events",
		Headers: []string{"#", "Title", "Amount", "Date", "Description"},
		Rows:    rows,
	}))
	return nil
}
