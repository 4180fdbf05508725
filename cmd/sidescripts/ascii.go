package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/taigrr/sidescripts/internal/asciiart"
	"go.uber.org/zap"
)

func newASCIICmd() *cobra.Command {
	var (
		width  int
		invert bool
		out    string
	)

	cmd := &cobra.Command{
		Use:   "ascii <image>",
		Short: "Render an image as ASCII art",
		Example: `sidescripts ascii logo.png --width 60 --invert
sidescripts ascii icon.svg --out icon.txt`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			art, err := asciiart.ConvertFile(args[0], asciiart.Options{Width: width, Invert: invert})
			if err != nil {
				return err
			}

			if out == "" {
				fmt.Fprintln(cmd.OutOrStdout(), art)
				return nil
			}
			if err := os.WriteFile(out, []byte(art), 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", out, err)
			}
			logger.Info("wrote ascii art", zap.String("file", out))
			return nil
		},
	}

	cmd.Flags().IntVarP(&width, "width", "w", asciiart.DefaultWidth, "output width in characters")
	cmd.Flags().BoolVarP(&invert, "invert", "i", false, "reverse the palette for dark backgrounds")
	cmd.Flags().StringVarP(&out, "out", "o", "", "write to a file instead of stdout")
	return cmd
}
