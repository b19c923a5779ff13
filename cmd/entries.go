package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/fincast/internal/model"
)

// entryFlags are the flags shared by the add and edit subcommands of rule,
// event and movement.
type entryFlags struct {
	title  string
	amount string
	day    int
	date   string
	text   string
}

func (f *entryFlags) register(cmd *cobra.Command, dateUsage, textName, textUsage string, withDay bool) {
	cmd.Flags().StringVarP(&f.title, "title", "t", "", "Short label")
	cmd.Flags().StringVarP(&f.amount, "amount", "a", "", "Signed amount, negative for expenses")
	cmd.Flags().StringVar(&f.date, "date", "", dateUsage)
	if withDay {
		cmd.Flags().IntVar(&f.day, "day", 1, "Day of month (1-31, clamped to short months)")
	}
	if textName != "" {
		cmd.Flags().StringVar(&f.text, textName, "", textUsage)
	}
}

// parseIndex turns a 1-based position argument into a slice index.
func parseIndex(arg string, n int) (int, error) {
	i, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil || i < 1 || i > n {
		if n == 0 {
			return 0, fmt.Errorf("no entry %q: the list is empty: %w", arg, model.ErrNoSuchEntry)
		}
		return 0, fmt.Errorf("no entry %q: pick 1-%d: %w", arg, n, model.ErrNoSuchEntry)
	}
	return i - 1, nil
}

func parseFlagDate(name, s string) (model.Date, error) {
	d, err := model.ParseDate(strings.TrimSpace(s))
	if err != nil {
		return model.Date{}, &model.ValidationError{Field: name, Reason: fmt.Sprintf("%q is not a YYYY-MM-DD date", s)}
	}
	return d, nil
}

// newEntryCmd builds the add/list/edit/rm tree for one kind of entry.
func newEntryCmd(use, short string, subs ...*cobra.Command) *cobra.Command {
	c := &cobra.Command{
		Use:   use,
		Short: short,
	}
	c.AddCommand(subs...)
	return c
}
