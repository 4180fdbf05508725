package main

import (
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/taigrr/sidescripts/internal/types"
)

func newTable(w io.Writer, headers []string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(headers)
	table.SetBorder(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetTablePadding("\t")
	table.SetNoWhiteSpace(true)
	table.SetAutoFormatHeaders(false)
	return table
}

func renderEntries(w io.Writer, entries []types.Entry) {
	table := newTable(w, []string{"Name", "Type", "Parent", "Content"})
	for _, e := range entries {
		table.Append([]string{e.Name, string(e.Type), e.ParentDirectory, describeContent(e)})
	}
	table.Render()
}

func describeContent(e types.Entry) string {
	switch c := e.Content.(type) {
	case []string:
		return strconv.Itoa(len(c)) + " lines"
	case string:
		return c
	case nil:
		return ""
	default:
		return "parsed"
	}
}

func renderSummary(w io.Writer, s types.GatherSummary) {
	keys := make([]string, 0, len(s.PerType))
	for t := range s.PerType {
		keys = append(keys, string(t))
	}
	slices.Sort(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %d", k, s.PerType[types.EntryType(k)]))
	}

	fmt.Fprintf(w, "Gathered %d entries in %s", s.Total, s.Dir)
	if len(parts) > 0 {
		fmt.Fprintf(w, " (%s)", strings.Join(parts, ", "))
	}
	fmt.Fprintln(w)
}

func renderBatch(w io.Writer, r *types.BatchReport) {
	table := newTable(w, []string{"Group", "Converted", "Failed", "Skipped", "Collected"})
	for _, g := range r.Groups {
		collected := "-"
		if g.Collected {
			collected = strconv.Itoa(g.Entries)
		}
		table.Append([]string{
			g.Name,
			strconv.Itoa(g.Converted),
			strconv.Itoa(g.Failed),
			strconv.Itoa(g.Skipped),
			collected,
		})
	}
	table.Render()
	fmt.Fprintf(w, "Run %s wrote %d entries to %s and %s\n", r.RunID, r.Entries, r.PrettyPath, r.MinifiedPath)
}

func renderDownloads(w io.Writer, results []types.DownloadResult) {
	table := newTable(w, []string{"Group", "File", "Status", "Bytes"})
	var failed int
	for _, r := range results {
		status := "ok"
		if !r.Success {
			status = r.Message
			failed++
		}
		table.Append([]string{r.Group, fileColumn(r), status, strconv.FormatInt(r.Bytes, 10)})
	}
	table.Render()
	fmt.Fprintf(w, "Downloaded %d of %d files\n", len(results)-failed, len(results))
}

func fileColumn(r types.DownloadResult) string {
	if r.Path != "" {
		return r.Path
	}
	return r.URL
}
