package cli

import (
	"fmt"
	"sort"

	"rowmatch/internal/excel"
	"rowmatch/internal/logger"

	"github.com/spf13/cobra"
)

// NewScanCommand creates the scan command.
func NewScanCommand() *cobra.Command {
	var headerRow int

	cmd := &cobra.Command{
		Use:   "scan [dir]",
		Short: "Summarize every workbook in a directory",
		Long: `List the workbooks under a directory (default: scan.input_directory from the
config) with their sheets, sizes, merged range counts and headers. Use it to
pick source files and key columns before a run.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := getConfig(cmd)
			dir := cfg.Scan.InputDirectory
			if len(args) == 1 {
				dir = args[0]
			}
			if !cmd.Flags().Changed("header-row") {
				headerRow = cfg.Match.HeaderRow
			}

			logger.Info("Scanning directory", "dir", dir, "header_row", headerRow)
			summaries, failures, err := excel.ScanDirectory(dir, headerRow)
			if err != nil {
				return err
			}

			renderScan(cmd.OutOrStdout(), summaries)

			paths := make([]string, 0, len(failures))
			for path := range failures {
				paths = append(paths, path)
			}
			sort.Strings(paths)
			for _, path := range paths {
				logger.Warn("Could not read workbook", "path", path, "error", failures[path])
				_, _ = fmt.Fprintln(cmd.ErrOrStderr(), warnStyle.Render(fmt.Sprintf("skipped %s: %v", path, failures[path])))
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&headerRow, "header-row", 0, "1-based header row (default from config)")

	return cmd
}
