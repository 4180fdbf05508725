package main

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/taigrr/sidescripts/internal/types"
)

type (
	// GatherInput contains parameters for gathering a directory.
	GatherInput struct {
		Path               string `json:"path,omitempty" jsonschema:"Directory relative to the workspace root (default: root)"`
		StandardSeparators bool   `json:"standardSeparators,omitempty" jsonschema:"Use ',' instead of ' ,' between items in the pretty dump"`
		LegacyJSON         bool   `json:"legacyJson,omitempty" jsonschema:"Store .json children as paths instead of parsing them"`
		IncludeEntries     bool   `json:"includeEntries,omitempty" jsonschema:"Return the gathered entries (default: counts only)"`
	}

	// GatherOutput contains the result of gathering a directory.
	GatherOutput struct {
		Dir      string         `json:"dir"`
		Total    int            `json:"total"`
		PerType  map[string]int `json:"perType"`
		Pretty   string         `json:"pretty"`
		Minified string         `json:"minified"`
		Entries  []types.Entry  `json:"entries,omitempty"`
	}

	// ASCIIInput contains parameters for rendering an image.
	ASCIIInput struct {
		Path   string `json:"path" jsonschema:"Image path relative to the workspace root"`
		Width  int    `json:"width,omitempty" jsonschema:"Output width in characters (default: 100)"`
		Invert bool   `json:"invert,omitempty" jsonschema:"Reverse the palette for dark backgrounds"`
		Out    string `json:"out,omitempty" jsonschema:"Also write the art to this path (optional)"`
	}

	// ASCIIOutput contains the rendered art.
	ASCIIOutput struct {
		Art     string `json:"art"`
		Rows    int    `json:"rows"`
		Written string `json:"written,omitempty"`
	}

	// ReorganiseInput contains parameters for reorganising a JSON file.
	ReorganiseInput struct {
		Path string `json:"path" jsonschema:"JSON file relative to the workspace root"`
	}

	// DownloadInput contains parameters for downloading a group of URLs.
	DownloadInput struct {
		Group  string   `json:"group" jsonschema:"Folder name the files are stored under"`
		URLs   []string `json:"urls" jsonschema:"URLs to download"`
		Output string   `json:"output,omitempty" jsonschema:"Parent folder relative to the workspace root (default: images)"`
	}

	// DownloadOutput contains per-URL download results.
	DownloadOutput struct {
		Results    []types.DownloadResult `json:"results"`
		Downloaded int                    `json:"downloaded"`
		Failed     int                    `json:"failed"`
	}
)

func registerTools(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "gather",
		Description: "Describe the direct children of a directory and write files.json and files.min.json into it. Text files become line lists, JSON files are parsed, other files become parent/name paths.",
	}, handleGather)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "ascii",
		Description: "Render a PNG, JPEG, GIF, BMP, WebP or SVG image as ASCII art. Optionally writes the result to a file.",
	}, handleASCII)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "reorganise",
		Description: "Write minified, sorted and minified sorted copies of a JSON file next to it. Returns the three paths.",
	}, handleReorganise)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "download",
		Description: "Download a list of URLs into <output>/<group>. File names are derived from the URL. Failed URLs are reported without stopping the others.",
	}, handleDownload)
}
