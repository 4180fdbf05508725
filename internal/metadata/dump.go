package metadata

import (
	"os"
	"path/filepath"

	"github.com/taigrr/sidescripts/internal/jsonfmt"
	"github.com/taigrr/sidescripts/internal/types"
)

// DumpAll writes entries into dir using the configured dump names.
func (g *Gatherer) DumpAll(entries []types.Entry, dir string) error {
	return g.Dump(entries,
		filepath.Join(dir, g.opts.PrettyName),
		filepath.Join(dir, g.opts.MinifiedName),
	)
}

// Dump writes the pretty dump to prettyPath and the minified one to minifiedPath.
func (g *Gatherer) Dump(entries []types.Entry, prettyPath, minifiedPath string) error {
	if err := g.DumpPretty(entries, prettyPath); err != nil {
		return err
	}
	return g.DumpMinified(entries, minifiedPath)
}

// DumpPretty writes entries with four-space indentation and sorted keys.
func (g *Gatherer) DumpPretty(entries []types.Entry, path string) error {
	opts := jsonfmt.Pretty
	if g.opts.StandardSeparators {
		opts = jsonfmt.PrettyStandard
	}
	return writeEntries(path, entries, opts)
}

// DumpMinified writes entries on a single line with sorted keys.
func (g *Gatherer) DumpMinified(entries []types.Entry, path string) error {
	return writeEntries(path, entries, jsonfmt.Minified)
}

func writeEntries(path string, entries []types.Entry, opts jsonfmt.Options) error {
	list := make([]any, len(entries))
	for i, e := range entries {
		list[i] = e.Fields()
	}

	data, err := jsonfmt.Marshal(list, opts)
	if err != nil {
		return &WriteError{Path: path, Err: err}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return &WriteError{Path: path, Err: err}
	}
	return nil
}
