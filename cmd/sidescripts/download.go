package main

import (
	"errors"

	"github.com/spf13/cobra"
	"github.com/taigrr/sidescripts/internal/download"
)

func newDownloadCmd() *cobra.Command {
	var (
		output      string
		concurrency int
	)

	cmd := &cobra.Command{
		Use:   "download <manifest.yaml>",
		Short: "Download grouped image URLs into per-group folders",
		Example: `sidescripts download manifest.yaml --concurrency 4

# manifest.yaml
output: images
timeout: 10s
groups:
  ditf:
    - https://example.com/images/001.png`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := download.LoadManifest(args[0])
			if err != nil {
				return err
			}
			if output != "" {
				m.Output = output
			}
			if concurrency > 0 {
				m.Concurrency = concurrency
			}

			results, err := download.New(nil, logger).Run(cmd.Context(), m)
			renderDownloads(cmd.OutOrStdout(), results)
			if err != nil {
				return err
			}

			for _, r := range results {
				if !r.Success {
					return errors.New("some downloads failed")
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "override the manifest output folder")
	cmd.Flags().IntVarP(&concurrency, "concurrency", "c", 0, "override the number of parallel downloads")
	return cmd
}
