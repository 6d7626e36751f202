package cli

import (
	"fmt"

	"rowmatch/internal/excel"
	"rowmatch/internal/match"

	"github.com/spf13/cobra"
)

// NewInspectCommand creates the inspect command.
func NewInspectCommand() *cobra.Command {
	var (
		headerRow int
		sheet     string
	)

	cmd := &cobra.Command{
		Use:   "inspect <file>",
		Short: "Show the sheets, headers, merged ranges and date columns of a workbook",
		Long: `Show what a match run would see in a workbook: every sheet's size, its
header row with column letters, which columns are treated as date columns,
and its merged ranges.`,
		Example: `  rowmatch inspect 5.1.xlsx
  rowmatch inspect 5.1.xlsx --sheet 员工数据 --header-row 2`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := getConfig(cmd)
			if !cmd.Flags().Changed("header-row") {
				headerRow = cfg.Match.HeaderRow
			}
			if headerRow < 1 {
				return fmt.Errorf("header row must be 1 or greater")
			}
			return runInspect(cmd, args[0], sheet, headerRow, match.DateRulesFromConfig(cfg.Dates))
		},
	}

	cmd.Flags().IntVar(&headerRow, "header-row", 0, "1-based header row (default from config)")
	cmd.Flags().StringVar(&sheet, "sheet", "", "only show this sheet")

	return cmd
}

func runInspect(cmd *cobra.Command, path, only string, headerRow int, rules match.DateRules) error {
	editor, err := excel.OpenFile(path)
	if err != nil {
		return err
	}
	defer editor.Close()

	active, err := editor.ActiveSheet()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintln(out, titleStyle.Render(path))
	_, _ = fmt.Fprintln(out)

	shown := 0
	for _, name := range editor.GetSheetNames() {
		if only != "" && name != only {
			continue
		}
		table, err := editor.ReadTable(name)
		if err != nil {
			return err
		}
		renderSheet(out, table, name == active, headerRow, rules.DateColumns(table, headerRow))
		shown++
	}

	if only != "" && shown == 0 {
		return fmt.Errorf("sheet %q not found in %s", only, path)
	}
	return nil
}
