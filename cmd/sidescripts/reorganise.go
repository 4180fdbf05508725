package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/taigrr/sidescripts/internal/reorganise"
)

func newReorganiseCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "reorganise <file.json>",
		Aliases: []string{"reorganize"},
		Short:   "Write sorted and minified copies of a JSON file",
		Long: `reorganise writes three siblings of a JSON file: <stem>.min.<ext> keeps
the original member order on one line, <stem>_reorganised.<ext> sorts every
object and indents by four spaces, and <stem>_reorganised.min.<ext> is the
sorted version on one line.`,
		Example: `sidescripts reorganise data/config.json`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := reorganise.Run(args[0], logger)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			fmt.Fprintln(w, out.Minified)
			fmt.Fprintln(w, out.Sorted)
			fmt.Fprintln(w, out.MinifiedSorted)
			return nil
		},
	}
}
