// Package metadata gathers one record per child of a directory and writes
// the list back into that directory as pretty and minified JSON.
package metadata

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/taigrr/sidescripts/internal/jsonfmt"
	"github.com/taigrr/sidescripts/internal/types"
	"go.uber.org/zap"
)

// Default names of the two dump files. They are never reported as children.
const (
	DefaultPrettyName   = "files.json"
	DefaultMinifiedName = "files.min.json"
)

// Options configures a Gatherer.
type Options struct {
	PrettyName   string
	MinifiedName string

	// StandardSeparators drops the space before commas in the pretty dump.
	StandardSeparators bool

	// LegacyJSON never classifies .json/.jsonc children as json, matching
	// dumps produced before JSON children were actually parsed.
	LegacyJSON bool
}

// Result is the outcome of Run. Err is nil, a *ScanError or a *WriteError.
type Result struct {
	Entries []types.Entry
	Err     error
}

// OK reports whether the run gathered and wrote everything.
func (r Result) OK() bool { return r.Err == nil }

// Gatherer scans directories and dumps their metadata.
type Gatherer struct {
	opts   Options
	logger *zap.Logger
}

// New creates a Gatherer. Empty names fall back to the defaults.
func New(opts Options, logger *zap.Logger) *Gatherer {
	if opts.PrettyName == "" {
		opts.PrettyName = DefaultPrettyName
	}
	if opts.MinifiedName == "" {
		opts.MinifiedName = DefaultMinifiedName
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gatherer{opts: opts, logger: logger}
}

// Options returns the effective options.
func (g *Gatherer) Options() Options { return g.opts }

// Run gathers dir and writes both dumps into it.
func (g *Gatherer) Run(dir string) Result {
	entries, err := g.Gather(dir)
	if err != nil {
		g.logger.Error("failed to gather directory", zap.String("dir", dir), zap.Error(err))
		return Result{Err: err}
	}

	if err := g.DumpAll(entries, dir); err != nil {
		g.logger.Error("failed to dump directory metadata", zap.String("dir", dir), zap.Error(err))
		return Result{Entries: entries, Err: err}
	}

	g.logger.Info("gathered directory metadata",
		zap.String("dir", dir),
		zap.Int("entries", len(entries)),
	)
	return Result{Entries: entries}
}

// Gather lists the direct children of dir, skipping the dump files.
// The process working directory is never touched; every child is
// addressed through a path joined onto dir.
func (g *Gatherer) Gather(dir string) ([]types.Entry, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, &ScanError{Dir: dir, Err: err}
	}

	children, err := os.ReadDir(absDir)
	if err != nil {
		return nil, &ScanError{Dir: dir, Err: describe(err)}
	}

	parent := filepath.Base(absDir)
	entries := make([]types.Entry, 0, len(children))
	for _, child := range children {
		name := child.Name()
		if g.isReserved(name) {
			continue
		}

		entry, err := g.classify(absDir, parent, name)
		if err != nil {
			return nil, &ScanError{Dir: dir, Name: name, Err: err}
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

func (g *Gatherer) isReserved(name string) bool {
	return name == g.opts.PrettyName || name == g.opts.MinifiedName
}

func (g *Gatherer) classify(dir, parent, name string) (types.Entry, error) {
	entry := types.Entry{Name: name, ParentDirectory: parent}
	fullPath := filepath.Join(dir, name)

	// Stat follows symlinks; a dangling link is neither dir nor file.
	info, err := os.Stat(fullPath)
	switch {
	case err == nil && info.IsDir():
		entry.Type, entry.Content = types.EntryDir, ""
	case err == nil && info.Mode().IsRegular():
		return g.classifyFile(entry, fullPath)
	default:
		entry.Type, entry.Content = types.EntryUnknown, ""
	}
	return entry, nil
}

func (g *Gatherer) classifyFile(entry types.Entry, fullPath string) (types.Entry, error) {
	name := entry.Name
	relPath := filepath.Join(entry.ParentDirectory, name)

	switch {
	case strings.HasSuffix(name, ".txt"):
		lines, err := readLines(fullPath)
		if err != nil {
			return types.Entry{}, err
		}
		entry.Type, entry.Content = types.EntryFile, lines

	case strings.HasSuffix(name, ".json"), strings.HasSuffix(name, ".jsonc"):
		if doc, ok := g.parseJSON(fullPath); ok {
			entry.Type, entry.Content = types.EntryJSON, doc
		} else {
			entry.Type, entry.Content = types.EntryPath, relPath
		}

	default:
		entry.Type, entry.Content = types.EntryPath, relPath
	}
	return entry, nil
}

// readLines splits a UTF-8 text file on "\n". Carriage returns are kept.
func readLines(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if !utf8.Valid(data) {
		return nil, errors.New("file is not valid UTF-8 text")
	}
	return strings.Split(string(data), "\n"), nil
}

func (g *Gatherer) parseJSON(path string) (any, bool) {
	if g.opts.LegacyJSON {
		return nil, false
	}

	f, err := os.Open(path)
	if err != nil {
		g.logger.Debug("json child unreadable, keeping path", zap.String("file", path), zap.Error(err))
		return nil, false
	}
	defer f.Close()

	doc, err := jsonfmt.Decode(f)
	if err != nil {
		g.logger.Debug("json child did not parse, keeping path", zap.String("file", path), zap.Error(err))
		return nil, false
	}
	return doc, true
}
