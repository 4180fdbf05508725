// Package batch converts folders of images to ASCII art and gathers the
// results into one combined metadata dump.
package batch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/taigrr/sidescripts/internal/asciiart"
	"github.com/taigrr/sidescripts/internal/metadata"
	"github.com/taigrr/sidescripts/internal/pathfilter"
	"github.com/taigrr/sidescripts/internal/types"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Job defaults.
const (
	DefaultWidth        = 60
	DefaultPrettyName   = "allImages.json"
	DefaultMinifiedName = "allImages.min.json"
)

// LoadJob reads a YAML job file and fills in defaults. Relative input and
// output folders resolve against the job file's directory.
func LoadJob(path string) (*types.BatchJob, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read job: %w", err)
	}

	var job types.BatchJob
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&job); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse job: %w", err)
	}

	base := filepath.Dir(path)
	if job.Input == "" {
		job.Input = "input"
	}
	if job.Output == "" {
		job.Output = "output"
	}
	if !filepath.IsAbs(job.Input) {
		job.Input = filepath.Join(base, job.Input)
	}
	if !filepath.IsAbs(job.Output) {
		job.Output = filepath.Join(base, job.Output)
	}

	applyDefaults(&job)
	if err := Validate(&job); err != nil {
		return nil, err
	}
	return &job, nil
}

func applyDefaults(job *types.BatchJob) {
	if job.Width <= 0 {
		job.Width = DefaultWidth
	}
	if job.Combined.Pretty == "" {
		job.Combined.Pretty = DefaultPrettyName
	}
	if job.Combined.Minified == "" {
		job.Combined.Minified = DefaultMinifiedName
	}
}

// Validate checks that a job names its groups.
func Validate(job *types.BatchJob) error {
	if len(job.Groups) == 0 {
		return errors.New("job has no groups")
	}
	for i, g := range job.Groups {
		if g.Name == "" {
			return fmt.Errorf("group %d has no name", i)
		}
		if filepath.Base(g.Name) != g.Name || g.Name == "." || g.Name == ".." {
			return fmt.Errorf("group %q must be a plain folder name", g.Name)
		}
	}
	return nil
}

// Runner executes batch jobs.
type Runner struct {
	gatherer *metadata.Gatherer
	logger   *zap.Logger
}

// NewRunner creates a Runner that gathers group outputs with gatherer.
func NewRunner(gatherer *metadata.Gatherer, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	if gatherer == nil {
		gatherer = metadata.New(metadata.Options{}, logger)
	}
	return &Runner{gatherer: gatherer, logger: logger}
}

// Run converts every group of job in order. Images that fail to convert are
// logged and counted. Errors are returned only for folders that cannot be
// read or created, for a failed combined dump, or when ctx is done.
func (r *Runner) Run(ctx context.Context, job *types.BatchJob) (*types.BatchReport, error) {
	applyDefaults(job)

	report := &types.BatchReport{RunID: uuid.NewString()}
	logger := r.logger.With(zap.String("run", report.RunID))
	filter := pathfilter.New(&job.Filter)

	if err := os.MkdirAll(job.Output, 0o755); err != nil {
		return report, fmt.Errorf("failed to create output folder: %w", err)
	}

	var combined []types.Entry
	for _, group := range job.Groups {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		gr, entries, err := r.runGroup(ctx, logger, job, group, filter)
		report.Groups = append(report.Groups, gr)
		if err != nil {
			return report, err
		}
		combined = append(combined, entries...)
	}

	report.Entries = len(combined)
	report.PrettyPath = filepath.Join(job.Output, job.Combined.Pretty)
	report.MinifiedPath = filepath.Join(job.Output, job.Combined.Minified)
	if err := r.gatherer.Dump(combined, report.PrettyPath, report.MinifiedPath); err != nil {
		return report, fmt.Errorf("failed to write combined dump: %w", err)
	}

	logger.Info("batch finished",
		zap.Int("groups", len(report.Groups)),
		zap.Int("entries", report.Entries),
	)
	return report, nil
}

func (r *Runner) runGroup(ctx context.Context, logger *zap.Logger, job *types.BatchJob, group types.BatchGroup, filter *pathfilter.PathFilter) (types.GroupReport, []types.Entry, error) {
	gr := types.GroupReport{Name: group.Name}
	logger = logger.With(zap.String("group", group.Name))

	src := filepath.Join(job.Input, group.Name)
	dest := filepath.Join(job.Output, group.Name)

	children, err := os.ReadDir(src)
	if err != nil {
		return gr, nil, fmt.Errorf("failed to read group folder %s: %w", src, err)
	}
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return gr, nil, fmt.Errorf("failed to create group folder %s: %w", dest, err)
	}

	width := group.Width
	if width <= 0 {
		width = job.Width
	}
	opts := asciiart.Options{Width: width, Invert: group.Invert}

	for _, child := range children {
		if err := ctx.Err(); err != nil {
			return gr, nil, err
		}

		name := child.Name()
		if child.IsDir() || !filter.IsAllowed(name) {
			gr.Skipped++
			continue
		}

		in := filepath.Join(src, name)
		out := filepath.Join(dest, asciiart.FinalName(name, group.Prefix))

		art, err := asciiart.ConvertFile(in, opts)
		if err != nil {
			gr.Failed++
			logger.Warn("failed to convert image", zap.String("file", in), zap.Error(err))
			continue
		}
		if err := os.WriteFile(out, []byte(art), 0o644); err != nil {
			gr.Failed++
			logger.Warn("failed to write ascii art", zap.String("file", out), zap.Error(err))
			continue
		}

		gr.Converted++
		logger.Debug("converted image", zap.String("file", in), zap.String("output", out))
	}

	if !group.ShouldCollect() {
		return gr, nil, nil
	}

	res := r.gatherer.Run(dest)
	if res.Err != nil {
		var scanErr *metadata.ScanError
		if errors.As(res.Err, &scanErr) {
			logger.Warn("failed to gather group output", zap.Error(res.Err))
			return gr, nil, nil
		}
		// The group dumps failed but the entries are still good.
		logger.Warn("failed to dump group output", zap.Error(res.Err))
	}

	gr.Collected = true
	gr.Entries = len(res.Entries)
	return gr, res.Entries, nil
}
