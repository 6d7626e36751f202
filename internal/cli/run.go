package cli

import (
	"errors"
	"fmt"

	"rowmatch/internal/config"
	"rowmatch/internal/match"

	"github.com/spf13/cobra"
)

// RunOptions holds the flags that override the [match] and [output] config.
type RunOptions struct {
	Sources      []string
	SourceSheet  string
	Lookup       string
	LookupSheet  string
	SourceColumn string
	LookupColumn string
	OutDir       string
	OutName      string
	OutSheet     string
	HeaderRow    int
	NoFallback   bool
	Report       string
}

// NewRunCommand creates the run command.
func NewRunCommand() *cobra.Command {
	opts := &RunOptions{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Match source rows against a lookup sheet and save them",
		Long: `Copy every source row whose key column value appears in the lookup column
into a new workbook. Settings come from the config file; flags override them.`,
		Example: `  # Use the job in configs/rowmatch.toml
  rowmatch run

  # Two daily sheets against a department list, keyed by column C and A
  rowmatch run --source 5.1.xlsx --source 5.2.xlsx::Sheet2 \
    --lookup depts.xlsx --source-column C --lookup-column A

  # Key columns by header name, with a YAML report
  rowmatch run --source-column 部门 --lookup-column 部门名称 --report run.yaml`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRun(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringArrayVarP(&opts.Sources, "source", "s", nil, "source workbook as path[::sheet], repeatable")
	f.StringVar(&opts.SourceSheet, "source-sheet", "", "sheet read from every source without its own ::sheet")
	f.StringVarP(&opts.Lookup, "lookup", "l", "", "lookup workbook")
	f.StringVar(&opts.LookupSheet, "lookup-sheet", "", "lookup sheet (default: active sheet)")
	f.StringVar(&opts.SourceColumn, "source-column", "", "source key column: letter, 1-based number or header")
	f.StringVar(&opts.LookupColumn, "lookup-column", "", "lookup key column: letter, 1-based number or header")
	f.StringVarP(&opts.OutDir, "out-dir", "o", "", "output folder")
	f.StringVar(&opts.OutName, "out-name", "", "output file name, a timestamp is added")
	f.StringVar(&opts.OutSheet, "out-sheet", "", "output sheet name")
	f.IntVar(&opts.HeaderRow, "header-row", 0, "1-based header row of the source sheets")
	f.BoolVar(&opts.NoFallback, "no-desktop-fallback", false, "do not retry on the desktop when saving fails")
	f.StringVar(&opts.Report, "report", "", "write a YAML run report to this path")

	return cmd
}

// buildJob merges flags that were set over the job from the config.
func buildJob(cmd *cobra.Command, cfg *config.Config, opts *RunOptions) *match.Job {
	job := match.JobFromConfig(cfg)
	f := cmd.Flags()

	if f.Changed("source") {
		job.Sources = nil
		for _, raw := range opts.Sources {
			job.AddSource(raw, cfg.Match.SourceSheets)
		}
	}

	overrides := []struct {
		flag  string
		value string
		dst   *string
	}{
		{"source-sheet", opts.SourceSheet, &job.SourceSheet},
		{"lookup", opts.Lookup, &job.LookupFile},
		{"lookup-sheet", opts.LookupSheet, &job.LookupSheet},
		{"source-column", opts.SourceColumn, &job.SourceColumn},
		{"lookup-column", opts.LookupColumn, &job.LookupColumn},
		{"out-dir", opts.OutDir, &job.OutputDir},
		{"out-name", opts.OutName, &job.OutputName},
		{"out-sheet", opts.OutSheet, &job.OutputSheet},
	}
	for _, o := range overrides {
		if f.Changed(o.flag) {
			*o.dst = o.value
		}
	}

	if f.Changed("header-row") {
		job.HeaderRow = opts.HeaderRow
	}
	if opts.NoFallback {
		job.FallbackToDesktop = false
	}
	return job
}

func runRun(cmd *cobra.Command, opts *RunOptions) error {
	cfg := getConfig(cmd)
	job := buildJob(cmd, cfg, opts)
	out := cmd.OutOrStdout()

	if job.HeaderRow < 1 {
		return fmt.Errorf("%w: header row must be 1 or greater", match.ErrInvalidJob)
	}

	result, err := match.Run(job)
	if result != nil {
		renderResult(out, result)
		if opts.Report != "" {
			if rerr := match.WriteReport(opts.Report, result); rerr != nil {
				return rerr
			}
			_, _ = fmt.Fprintf(out, "Report: %s\n", opts.Report)
		}
	}

	if errors.Is(err, match.ErrNoMatches) {
		_, _ = fmt.Fprintln(out, warnStyle.Render("No matching rows found, no file was written."))
		return nil
	}
	return err
}
