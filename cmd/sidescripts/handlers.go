package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/taigrr/sidescripts/internal/asciiart"
	"github.com/taigrr/sidescripts/internal/download"
	"github.com/taigrr/sidescripts/internal/metadata"
	"github.com/taigrr/sidescripts/internal/reorganise"
	"github.com/taigrr/sidescripts/internal/types"
)

func handleGather(ctx context.Context, req *mcp.CallToolRequest, input GatherInput) (*mcp.CallToolResult, GatherOutput, error) {
	dir, err := workspaceService.ResolveDir(input.Path)
	if err != nil {
		return &mcp.CallToolResult{IsError: true}, GatherOutput{}, err
	}

	opts := cfg.MetadataOptions()
	opts.StandardSeparators = opts.StandardSeparators || input.StandardSeparators
	opts.LegacyJSON = opts.LegacyJSON || input.LegacyJSON

	gatherer := metadata.New(opts, logger)
	res := gatherer.Run(dir)
	if !res.OK() {
		return &mcp.CallToolResult{IsError: true}, GatherOutput{}, res.Err
	}

	summary := types.Summarize(dir, res.Entries)
	out := GatherOutput{
		Dir:      workspaceService.Rel(dir),
		Total:    summary.Total,
		PerType:  make(map[string]int, len(summary.PerType)),
		Pretty:   workspaceService.Rel(filepath.Join(dir, gatherer.Options().PrettyName)),
		Minified: workspaceService.Rel(filepath.Join(dir, gatherer.Options().MinifiedName)),
	}
	for t, n := range summary.PerType {
		out.PerType[string(t)] = n
	}
	if input.IncludeEntries {
		out.Entries = res.Entries
	}
	return nil, out, nil
}

func handleASCII(ctx context.Context, req *mcp.CallToolRequest, input ASCIIInput) (*mcp.CallToolResult, ASCIIOutput, error) {
	src, err := workspaceService.ResolveFile(input.Path)
	if err != nil {
		return &mcp.CallToolResult{IsError: true}, ASCIIOutput{}, err
	}

	art, err := asciiart.ConvertFile(src, asciiart.Options{Width: input.Width, Invert: input.Invert})
	if err != nil {
		return &mcp.CallToolResult{IsError: true}, ASCIIOutput{}, err
	}
	out := ASCIIOutput{Art: art, Rows: strings.Count(art, "\n") + 1}

	if strings.TrimSpace(input.Out) != "" {
		dest, err := workspaceService.ResolvePath(input.Out)
		if err != nil {
			return &mcp.CallToolResult{IsError: true}, out, err
		}
		if err := os.WriteFile(dest, []byte(art), 0o644); err != nil {
			return &mcp.CallToolResult{IsError: true}, out, fmt.Errorf("failed to write %s: %w", input.Out, err)
		}
		out.Written = workspaceService.Rel(dest)
	}
	return nil, out, nil
}

func handleReorganise(ctx context.Context, req *mcp.CallToolRequest, input ReorganiseInput) (*mcp.CallToolResult, types.ReorganiseOutputs, error) {
	src, err := workspaceService.ResolveFile(input.Path)
	if err != nil {
		return &mcp.CallToolResult{IsError: true}, types.ReorganiseOutputs{}, err
	}

	outs, err := reorganise.Run(src, logger)
	if err != nil {
		return &mcp.CallToolResult{IsError: true}, types.ReorganiseOutputs{}, err
	}

	return nil, types.ReorganiseOutputs{
		Sorted:         workspaceService.Rel(outs.Sorted),
		Minified:       workspaceService.Rel(outs.Minified),
		MinifiedSorted: workspaceService.Rel(outs.MinifiedSorted),
	}, nil
}

func handleDownload(ctx context.Context, req *mcp.CallToolRequest, input DownloadInput) (*mcp.CallToolResult, DownloadOutput, error) {
	group := strings.TrimSpace(input.Group)
	if group == "" || filepath.Base(group) != group || group == "." || group == ".." {
		return &mcp.CallToolResult{IsError: true}, DownloadOutput{}, fmt.Errorf("group must be a plain folder name: %q", input.Group)
	}
	if len(input.URLs) == 0 {
		return &mcp.CallToolResult{IsError: true}, DownloadOutput{}, errors.New("no urls given")
	}

	output := input.Output
	if strings.TrimSpace(output) == "" {
		output = download.DefaultOutput
	}
	outDir, err := workspaceService.ResolvePath(output)
	if err != nil {
		return &mcp.CallToolResult{IsError: true}, DownloadOutput{}, err
	}

	m := &types.DownloadManifest{
		Output:      outDir,
		Timeout:     download.DefaultTimeout,
		Concurrency: download.DefaultConcurrency,
		Groups:      map[string][]string{group: input.URLs},
	}
	results, err := download.New(nil, logger).Run(ctx, m)
	if err != nil {
		return &mcp.CallToolResult{IsError: true}, DownloadOutput{}, err
	}

	out := DownloadOutput{Results: results}
	for i := range out.Results {
		if out.Results[i].Path != "" {
			out.Results[i].Path = workspaceService.Rel(out.Results[i].Path)
		}
		if out.Results[i].Success {
			out.Downloaded++
		} else {
			out.Failed++
		}
	}
	return nil, out, nil
}
