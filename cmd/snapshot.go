package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/fincast/internal/cli"
	"github.com/theirongolddev/fincast/internal/model"
	"github.com/theirongolddev/fincast/internal/snapshot"
)

var flagExportDir string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the state to finances-<year>.json",
	Args:  cobra.NoArgs,
	RunE:  runExport,
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Merge a snapshot file into the state",
	Long: "Fields present in the file replace the stored ones; absent fields are kept.\n" +
		"A malformed or invalid file changes nothing.",
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	exportCmd.Flags().StringVarP(&flagExportDir, "output", "o", ".", "Directory to write into")
	rootCmd.AddCommand(exportCmd, importCmd)
}

func runExport(cmd *cobra.Command, _ []string) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	path, err := snapshot.WriteFile(flagExportDir, s.state)
	if err != nil {
		return err
	}
	s.log.Info().Str("path", path).Msg("snapshot exported")
	fmt.Printf("  Exported %d to %s\n", s.state.Year, path)
	return nil
}

func runImport(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	next, err := snapshot.ReadFile(args[0], s.state)
	if err != nil {
		return err
	}
	if next.Equal(s.state) {
		fmt.Println("  Nothing changed")
		return nil
	}
	if err := s.mutate("snapshot imported", func(st *model.State) error {
		*st = next
		return nil
	}); err != nil {
		return err
	}

	fmt.Printf("  Imported %s\n", args[0])
	fmt.Println(cli.RenderLabel("Year", fmt.Sprint(s.state.Year)))
	fmt.Println(cli.RenderLabel("Opening", cli.FormatAmount(s.state.InitialBalance, s.cfg.Appearance.Currency)))
	fmt.Println(cli.RenderLabel("Entries", fmt.Sprintf("%d rules, %d events, %d movements",
		len(s.state.MonthlyRules), len(s.state.PlannedEvents), len(s.state.RealMovements))))
	return nil
}
