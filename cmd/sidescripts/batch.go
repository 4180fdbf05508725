package main

import (
	"github.com/spf13/cobra"
	"github.com/taigrr/sidescripts/internal/batch"
	"github.com/taigrr/sidescripts/internal/metadata"
)

func newBatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "batch <job.yaml>",
		Short: "Convert folders of images to ASCII art and gather the results",
		Long: `batch reads a YAML job describing groups of images under an input
folder. Every image of a group is converted to ASCII art under the output
folder, collected groups are gathered into files.json, and all collected
entries are written to a combined pretty and minified dump.`,
		Example: `sidescripts batch job.yaml

# job.yaml
input: input
output: output
width: 60
groups:
  - name: ditf
    invert: true
  - name: windowsSystem
    invert: true
    prefix: inverted_
    collect: false`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			job, err := batch.LoadJob(args[0])
			if err != nil {
				return err
			}
			if len(job.Filter.IgnoredPatterns) == 0 && len(job.Filter.AllowedExtensions) == 0 {
				job.Filter = cfg.Filter
			}

			runner := batch.NewRunner(metadata.New(cfg.MetadataOptions(), logger), logger)
			report, err := runner.Run(cmd.Context(), job)
			if report != nil && len(report.Groups) > 0 {
				renderBatch(cmd.OutOrStdout(), report)
			}
			return err
		},
	}
}
