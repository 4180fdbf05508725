package batch

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/taigrr/sidescripts/internal/metadata"
	"github.com/taigrr/sidescripts/internal/types"
	"go.uber.org/zap/zaptest"
)

func writeImage(t *testing.T, path string, c color.Color) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 40, 40))
	for y := range 40 {
		for x := range 40 {
			img.Set(x, y, c)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

// setupJob lays out two input groups:
//
//	input/a: black.png, broken.png, .DS_Store, notes.md, sub/
//	input/b: white.png
func setupJob(t *testing.T) *types.BatchJob {
	t.Helper()
	root := t.TempDir()

	a := filepath.Join(root, "input", "a")
	b := filepath.Join(root, "input", "b")
	for _, dir := range []string{filepath.Join(a, "sub"), b} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatal(err)
		}
	}
	writeImage(t, filepath.Join(a, "black.png"), color.Black)
	writeFile(t, filepath.Join(a, "broken.png"), "not a png")
	writeFile(t, filepath.Join(a, ".DS_Store"), "junk")
	writeFile(t, filepath.Join(a, "notes.md"), "# notes")
	writeImage(t, filepath.Join(b, "white.png"), color.White)

	noCollect := false
	return &types.BatchJob{
		Input:  filepath.Join(root, "input"),
		Output: filepath.Join(root, "output"),
		Width:  4,
		Groups: []types.BatchGroup{
			{Name: "a"},
			{Name: "b", Invert: true, Prefix: "inv_", Collect: &noCollect},
		},
	}
}

func TestRunner_Run(t *testing.T) {
	job := setupJob(t)
	runner := NewRunner(metadata.New(metadata.Options{}, zaptest.NewLogger(t)), zaptest.NewLogger(t))

	report, err := runner.Run(context.Background(), job)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if report.RunID == "" {
		t.Error("RunID is empty")
	}
	if len(report.Groups) != 2 {
		t.Fatalf("got %d group reports, want 2", len(report.Groups))
	}

	t.Run("group counts", func(t *testing.T) {
		a := report.Groups[0]
		if a.Converted != 1 || a.Failed != 1 || a.Skipped != 3 || !a.Collected || a.Entries != 1 {
			t.Errorf("group a = %+v", a)
		}
		b := report.Groups[1]
		if b.Converted != 1 || b.Failed != 0 || b.Collected || b.Entries != 0 {
			t.Errorf("group b = %+v", b)
		}
	})

	t.Run("ascii files", func(t *testing.T) {
		got, err := os.ReadFile(filepath.Join(job.Output, "a", "black.txt"))
		if err != nil || string(got) != "@@@@\n@@@@" {
			t.Errorf("a/black.txt = %q, %v", got, err)
		}
		got, err = os.ReadFile(filepath.Join(job.Output, "b", "inv_white.txt"))
		if err != nil || string(got) != "@@@@\n@@@@" {
			t.Errorf("b/inv_white.txt = %q, %v", got, err)
		}
		if _, err := os.Stat(filepath.Join(job.Output, "a", "broken.txt")); !os.IsNotExist(err) {
			t.Error("failed conversion left an output file")
		}
	})

	t.Run("group dumps", func(t *testing.T) {
		if _, err := os.Stat(filepath.Join(job.Output, "a", metadata.DefaultPrettyName)); err != nil {
			t.Errorf("collected group has no dump: %v", err)
		}
		if _, err := os.Stat(filepath.Join(job.Output, "b", metadata.DefaultPrettyName)); !os.IsNotExist(err) {
			t.Error("uncollected group was dumped")
		}
	})

	t.Run("combined dump", func(t *testing.T) {
		if report.Entries != 1 {
			t.Errorf("Entries = %d, want 1", report.Entries)
		}
		if report.PrettyPath != filepath.Join(job.Output, DefaultPrettyName) {
			t.Errorf("PrettyPath = %q", report.PrettyPath)
		}

		got, err := os.ReadFile(report.MinifiedPath)
		if err != nil {
			t.Fatal(err)
		}
		want := `[{"fileContent":["@@@@","@@@@"],"fileName":"black.txt","fileParentDirectory":"a","fileType":"file"}]`
		if string(got) != want {
			t.Errorf("combined minified = %s, want %s", got, want)
		}
	})
}

func TestRunner_Errors(t *testing.T) {
	t.Run("missing group folder", func(t *testing.T) {
		job := setupJob(t)
		job.Groups = append(job.Groups, types.BatchGroup{Name: "missing"})

		report, err := NewRunner(nil, nil).Run(context.Background(), job)
		if err == nil {
			t.Fatal("Run() error = nil, want error")
		}
		if len(report.Groups) != 3 {
			t.Errorf("got %d group reports, want 3", len(report.Groups))
		}
	})

	t.Run("group escaping output is rejected", func(t *testing.T) {
		for _, name := range []string{"..", "."} {
			job := &types.BatchJob{Groups: []types.BatchGroup{{Name: name}}}
			if err := Validate(job); err == nil {
				t.Errorf("Validate(%q) error = nil, want error", name)
			}
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		job := setupJob(t)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		if _, err := NewRunner(nil, nil).Run(ctx, job); !errors.Is(err, context.Canceled) {
			t.Errorf("Run() error = %v, want context.Canceled", err)
		}
	})
}

func TestLoadJob(t *testing.T) {
	dir := t.TempDir()

	t.Run("defaults and relative folders", func(t *testing.T) {
		path := filepath.Join(dir, "job.yaml")
		writeFile(t, path, "groups:\n  - name: ditf\n    invert: true\n  - name: windowsSystem\n    prefix: inverted_\n    collect: false\n")

		job, err := LoadJob(path)
		if err != nil {
			t.Fatalf("LoadJob() error = %v", err)
		}
		if job.Input != filepath.Join(dir, "input") || job.Output != filepath.Join(dir, "output") {
			t.Errorf("folders = %q, %q", job.Input, job.Output)
		}
		if job.Width != DefaultWidth {
			t.Errorf("Width = %d, want %d", job.Width, DefaultWidth)
		}
		if job.Combined.Pretty != DefaultPrettyName || job.Combined.Minified != DefaultMinifiedName {
			t.Errorf("Combined = %+v", job.Combined)
		}
		if len(job.Groups) != 2 || !job.Groups[0].Invert || !job.Groups[0].ShouldCollect() {
			t.Errorf("Groups[0] = %+v", job.Groups[0])
		}
		if job.Groups[1].Prefix != "inverted_" || job.Groups[1].ShouldCollect() {
			t.Errorf("Groups[1] = %+v", job.Groups[1])
		}
	})

	tests := []struct {
		name    string
		content string
	}{
		{"no groups", "width: 10\n"},
		{"unnamed group", "groups:\n  - invert: true\n"},
		{"nested group name", "groups:\n  - name: a/b\n"},
		{"parent group name", "groups:\n  - name: ..\n"},
		{"current group name", "groups:\n  - name: .\n"},
		{"unknown field", "groups:\n  - name: a\nfolders: []\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, "bad.yaml")
			writeFile(t, path, tt.content)
			if _, err := LoadJob(path); err == nil {
				t.Error("LoadJob() error = nil, want error")
			}
		})
	}
}
