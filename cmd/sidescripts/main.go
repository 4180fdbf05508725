// Package main implements the sidescripts command line tool.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
	"github.com/taigrr/sidescripts/internal/config"
	"github.com/taigrr/sidescripts/internal/logging"
	"go.uber.org/zap"
)

var (
	cfg    *config.Config
	logger *zap.Logger

	configPath string
	verbose    bool
	quiet      bool
)

func main() {
	if err := fang.Execute(
		context.Background(),
		newRootCmd(),
		fang.WithVersion(version),
		fang.WithoutCompletions(),
		fang.WithoutManpage(),
	); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sidescripts",
		Short: "Directory metadata, JSON and ASCII art helpers",
		Long: `sidescripts gathers metadata about the children of a directory into
files.json and files.min.json, reorganises JSON files, turns images into
ASCII art and downloads image batches. The same operations are available
to MCP clients through the serve command.`,
		SilenceUsage:      true,
		PersistentPreRunE: setup,
		PersistentPostRun: func(*cobra.Command, []string) {
			if logger != nil {
				_ = logger.Sync()
			}
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&configPath, "config", "", "path to a YAML config file (default $"+config.EnvConfig+")")
	flags.BoolVar(&verbose, "verbose", false, "log debug messages")
	flags.BoolVarP(&quiet, "quiet", "q", false, "only log errors")

	cmd.AddCommand(
		newGatherCmd(),
		newASCIICmd(),
		newBatchCmd(),
		newDownloadCmd(),
		newReorganiseCmd(),
		newServeCmd(),
	)
	return cmd
}

func setup(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, err = logging.New(logging.Level(cfg.LogLevel, verbose, quiet))
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	return nil
}
