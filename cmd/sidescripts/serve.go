package main

import (
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"
	"github.com/taigrr/sidescripts/internal/workspace"
	"go.uber.org/zap"
)

var workspaceService *workspace.Service

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve [root]",
		Short: "Run an MCP server over stdio",
		Long: `serve exposes gather, ascii, reorganise and download as Model Context
Protocol tools. Every path a client passes is resolved inside root (the
current directory by default) and may not escape it.`,
		Example: `sidescripts serve ~/side_scripts`,
		Args:    cobra.MaximumNArgs(1),
		RunE:    runServer,
	}
}

func runServer(cmd *cobra.Command, args []string) error {
	root, err := targetDir(args)
	if err != nil {
		return err
	}

	workspaceService, err = workspace.New(root)
	if err != nil {
		return err
	}

	server := newServer()
	logger.Info("serving MCP over stdio", zap.String("root", workspaceService.Root()))
	if err := server.Run(cmd.Context(), &mcp.StdioTransport{}); err != nil {
		return fmt.Errorf("error running server: %w", err)
	}
	return nil
}

func newServer() *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "sidescripts",
		Version: version,
	}, nil)

	registerTools(server)
	return server
}
