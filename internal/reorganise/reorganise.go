// Package reorganise rewrites a JSON file as sorted and minified siblings.
package reorganise

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/taigrr/sidescripts/internal/jsonfmt"
	"github.com/taigrr/sidescripts/internal/types"
	"go.uber.org/zap"
)

// ErrNotReadable is returned when the source is not a readable regular file.
var ErrNotReadable = errors.New("not a file that can be read")

// CheckFile verifies that path is an existing regular file that can be opened for reading.
func CheckFile(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%s: %w: file not found", path, ErrNotReadable)
		}
		return "", fmt.Errorf("%s: %w: %v", path, ErrNotReadable, err)
	}
	if !info.Mode().IsRegular() {
		return "", fmt.Errorf("%s: %w: not a regular file", path, ErrNotReadable)
	}

	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("%s: %w: %v", path, ErrNotReadable, err)
	}
	f.Close()
	return path, nil
}

// OutputNames derives the three output paths from src. The stem is the base
// name up to its first dot (ignoring leading dots) and the remainder is kept
// as the extension.
func OutputNames(src string) types.ReorganiseOutputs {
	dir, base := splitPath(src)

	body := strings.TrimLeft(base, ".")
	lead := base[:len(base)-len(body)]
	stem, ext, hasExt := strings.Cut(body, ".")
	stem = lead + stem

	name := func(suffix string) string {
		n := stem + suffix
		if hasExt {
			n += "." + ext
		}
		return dir + n
	}

	return types.ReorganiseOutputs{
		Sorted:         name("_reorganised"),
		Minified:       name(".min"),
		MinifiedSorted: name("_reorganised.min"),
	}
}

// splitPath splits off the directory including its trailing separator.
// Both "/" and "\" are accepted so Windows-style paths keep their separator.
func splitPath(p string) (dir, base string) {
	i := strings.LastIndexAny(p, `/\`)
	return p[:i+1], p[i+1:]
}

// Load reads the JSON document at path preserving member order.
func Load(path string) (any, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open json: %w", err)
	}
	defer f.Close()

	doc, err := jsonfmt.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to load the json: %w", err)
	}
	return doc, nil
}

// Run writes the minified, sorted and minified sorted versions of src in that
// order. The first failure stops the run.
func Run(src string, logger *zap.Logger) (types.ReorganiseOutputs, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	if _, err := CheckFile(src); err != nil {
		return types.ReorganiseOutputs{}, err
	}

	out := OutputNames(src)
	logger.Debug("reorganising json",
		zap.String("source", src),
		zap.String("sorted", out.Sorted),
		zap.String("minified", out.Minified),
		zap.String("minifiedSorted", out.MinifiedSorted),
	)

	doc, err := Load(src)
	if err != nil {
		return out, err
	}

	steps := []struct {
		label string
		path  string
		opts  jsonfmt.Options
	}{
		{"minified", out.Minified, jsonfmt.MinifiedUnsorted},
		{"reorganised", out.Sorted, jsonfmt.PrettyStandard},
		{"minified and reorganised", out.MinifiedSorted, jsonfmt.Minified},
	}

	for _, step := range steps {
		data, err := jsonfmt.Marshal(doc, step.opts)
		if err != nil {
			return out, fmt.Errorf("failed to encode the %s json: %w", step.label, err)
		}
		if err := os.WriteFile(step.path, data, 0o644); err != nil {
			return out, fmt.Errorf("failed to dump the %s json: %w", step.label, err)
		}
		logger.Info("dumped json", zap.String("version", step.label), zap.String("file", step.path))
	}

	return out, nil
}
