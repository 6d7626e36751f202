package cli

import (
	"fmt"

	"rowmatch/internal/excel"
	"rowmatch/internal/logger"
	"rowmatch/internal/match"
	"rowmatch/internal/suggest"

	"github.com/spf13/cobra"
)

// NewSuggestCommand creates the suggest command.
func NewSuggestCommand() *cobra.Command {
	var (
		source      string
		lookup      string
		lookupSheet string
		noAI        bool
	)

	cmd := &cobra.Command{
		Use:   "suggest",
		Short: "Suggest which source and lookup columns hold the matching key",
		Long: `Compare the header row of a source sheet with the header row of the lookup
sheet and suggest key column pairs. Header names are compared directly; when
GEMINI_API_KEY is set, Gemini is asked as well.`,
		Example: `  rowmatch suggest --source 5.1.xlsx::员工数据 --lookup depts.xlsx
  rowmatch suggest --no-ai`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := getConfig(cmd)

			src := match.SourceSpec{}
			if source != "" {
				src = match.ParseSourceSpec(source)
			} else if job := match.JobFromConfig(cfg); len(job.Sources) > 0 {
				src = job.Sources[0]
			}
			if src.Path == "" {
				return fmt.Errorf("%w: no source file given", match.ErrInvalidJob)
			}
			if src.Sheet == "" {
				src.Sheet = cfg.Match.SourceSheet
			}

			if lookup == "" {
				lookup = cfg.Match.LookupFile
			}
			if !cmd.Flags().Changed("lookup-sheet") {
				lookupSheet = cfg.Match.LookupSheet
			}
			if lookup == "" {
				return fmt.Errorf("%w: no lookup file given", match.ErrInvalidJob)
			}

			sourceHeaders, err := readHeaders(src.Path, src.Sheet, cfg.Match.HeaderRow)
			if err != nil {
				return err
			}
			lookupHeaders, err := readHeaders(lookup, lookupSheet, cfg.Match.LookupHeader)
			if err != nil {
				return err
			}

			var ai suggest.Suggester
			if apiKey := suggest.APIKey(); apiKey != "" && !noAI {
				client, err := suggest.NewAIClient(cmd.Context(), apiKey, cfg.Suggest)
				if err != nil {
					logger.Warn("AI suggestions unavailable", "error", err)
				} else {
					defer client.Close()
					ai = client
				}
			}

			pairs := suggest.Columns(cmd.Context(), sourceHeaders, lookupHeaders, ai)
			out := cmd.OutOrStdout()
			renderPairs(out, pairs)
			if len(pairs) > 0 {
				_, _ = fmt.Fprintf(out, "Try: rowmatch run --source-column %q --lookup-column %q\n", pairs[0].Source, pairs[0].Lookup)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&source, "source", "s", "", "source workbook as path[::sheet] (default: first configured source)")
	cmd.Flags().StringVarP(&lookup, "lookup", "l", "", "lookup workbook (default from config)")
	cmd.Flags().StringVar(&lookupSheet, "lookup-sheet", "", "lookup sheet (default from config)")
	cmd.Flags().BoolVar(&noAI, "no-ai", false, "only compare header names")

	return cmd
}

// readHeaders returns the non-empty header texts of a sheet, falling back to
// the active sheet when the named one does not exist.
func readHeaders(path, sheet string, headerRow int) ([]string, error) {
	editor, err := excel.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer editor.Close()

	name, found, err := editor.ResolveSheet(sheet)
	if err != nil {
		return nil, err
	}
	if sheet != "" && !found {
		logger.Warn("Sheet not found, using active sheet", "file", path, "requested", sheet, "using", name)
	}

	table, err := editor.ReadTable(name)
	if err != nil {
		return nil, err
	}

	var headers []string
	for _, h := range table.HeaderTexts(headerRow) {
		if h != "" {
			headers = append(headers, h)
		}
	}
	return headers, nil
}
