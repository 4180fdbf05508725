package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/taigrr/sidescripts/internal/metadata"
	"github.com/taigrr/sidescripts/internal/types"
)

func newGatherCmd() *cobra.Command {
	var (
		table              bool
		standardSeparators bool
		legacyJSON         bool
	)

	cmd := &cobra.Command{
		Use:   "gather [dir]",
		Short: "Write files.json and files.min.json describing a directory",
		Long: `gather lists the direct children of a directory (the current one by
default) and writes one record per child into files.json and files.min.json
inside that directory. Text files are stored line by line, JSON files are
parsed, other files are stored as a parent/name path.`,
		Example: `sidescripts gather output/ditf
sidescripts gather --table`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := targetDir(args)
			if err != nil {
				return err
			}

			opts := cfg.MetadataOptions()
			if cmd.Flags().Changed("standard-separators") {
				opts.StandardSeparators = standardSeparators
			}
			if cmd.Flags().Changed("legacy-json") {
				opts.LegacyJSON = legacyJSON
			}

			res := metadata.New(opts, logger).Run(dir)
			if !res.OK() {
				return res.Err
			}

			out := cmd.OutOrStdout()
			if table {
				renderEntries(out, res.Entries)
			}
			renderSummary(out, types.Summarize(dir, res.Entries))
			return nil
		},
	}

	cmd.Flags().BoolVar(&table, "table", false, "print the gathered entries as a table")
	cmd.Flags().BoolVar(&standardSeparators, "standard-separators", false, "use \",\" instead of \" ,\" between items in files.json")
	cmd.Flags().BoolVar(&legacyJSON, "legacy-json", false, "store .json children as paths instead of parsing them")
	return cmd
}

func targetDir(args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	dir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get current directory: %w", err)
	}
	return dir, nil
}
