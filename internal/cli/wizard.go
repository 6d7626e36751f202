package cli

import (
	"errors"

	"rowmatch/internal/match"
	"rowmatch/internal/wizard"

	"github.com/spf13/cobra"
)

// NewWizardCommand creates the wizard command.
func NewWizardCommand() *cobra.Command {
	var report string

	cmd := &cobra.Command{
		Use:   "wizard",
		Short: "Fill in a match job interactively and run it",
		Long: `Open a terminal form prefilled from the config file. Edit the source files,
sheets, key columns and output location, then run the job from the form.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			job := match.JobFromConfig(getConfig(cmd))

			result, err := wizard.Run(job, match.Run)
			if result != nil && report != "" {
				if rerr := match.WriteReport(report, result); rerr != nil {
					return rerr
				}
			}
			if errors.Is(err, match.ErrNoMatches) {
				return nil
			}
			return err
		},
	}

	cmd.Flags().StringVar(&report, "report", "", "write a YAML run report to this path")

	return cmd
}
