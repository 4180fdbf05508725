package download

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/taigrr/sidescripts/internal/types"
	"go.uber.org/zap/zaptest"
)

func TestCleanFilename(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://example.com/images/0/03/001.png", "001.png"},
		{"https://example.com/images/6/62/9%27s_Model_Franxx.png", "9_s_Model_Franxx.png"},
		{"https://example.com/f/fc/Futoshi%27s_daughter.PNG", "Futoshi_s_daughter.PNG"},
		{"https://example.com/Vlcsnap-2018-03-03-18h47m02s435.png", "Vlcsnap-2018-03-03-18h47m02s435.png"},
		{"https://example.com/with space.png", "with_space.png"},
		{"https://example.com/a%2Fb.png", "a_b.png"},
		{"https://example.com/a%zz.png", "a_zz.png"},
		{"https://example.com/trailing%2", "trailing_2"},
		{"https://example.com/%E6%97%A5.png", "_.png"},
		{"https://example.com/%FF.png", "_.png"},
		{"no-slash.png", "no-slash.png"},
		{"https://example.com/dir/", ""},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			if got := CleanFilename(tt.url); got != tt.want {
				t.Errorf("CleanFilename(%q) = %q, want %q", tt.url, got, tt.want)
			}
		})
	}
}

func TestLoadManifest(t *testing.T) {
	dir := t.TempDir()

	t.Run("defaults", func(t *testing.T) {
		path := filepath.Join(dir, "min.yaml")
		content := "groups:\n  ditf:\n    - https://example.com/001.png\n"
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}

		m, err := LoadManifest(path)
		if err != nil {
			t.Fatalf("LoadManifest() error = %v", err)
		}
		if m.Output != DefaultOutput {
			t.Errorf("Output = %q, want %q", m.Output, DefaultOutput)
		}
		if m.Timeout != DefaultTimeout {
			t.Errorf("Timeout = %v, want %v", m.Timeout, DefaultTimeout)
		}
		if m.Concurrency != DefaultConcurrency {
			t.Errorf("Concurrency = %d, want %d", m.Concurrency, DefaultConcurrency)
		}
		if len(m.Groups["ditf"]) != 1 {
			t.Errorf("Groups = %v", m.Groups)
		}
	})

	t.Run("explicit values", func(t *testing.T) {
		path := filepath.Join(dir, "full.yaml")
		content := "output: out\ntimeout: 3s\nconcurrency: 4\ngroups:\n  es: []\n"
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}

		m, err := LoadManifest(path)
		if err != nil {
			t.Fatalf("LoadManifest() error = %v", err)
		}
		if m.Output != "out" || m.Timeout != 3*time.Second || m.Concurrency != 4 {
			t.Errorf("LoadManifest() = %+v", m)
		}
	})

	t.Run("unknown field", func(t *testing.T) {
		path := filepath.Join(dir, "bad.yaml")
		if err := os.WriteFile(path, []byte("urls: []\n"), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadManifest(path); err == nil {
			t.Error("LoadManifest() error = nil, want unknown field error")
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if _, err := LoadManifest(filepath.Join(dir, "nope.yaml")); err == nil {
			t.Error("LoadManifest() error = nil, want error")
		}
	})
}

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/img/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("image:" + filepath.Base(r.URL.Path)))
	})
	mux.HandleFunc("/missing.png", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	mux.HandleFunc("/moved.png", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusMultipleChoices)
		w.Write([]byte("choose one"))
	})
	mux.HandleFunc("/slow.png", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestDownloader_Run(t *testing.T) {
	srv := newServer(t)

	t.Run("writes files per group in order", func(t *testing.T) {
		out := t.TempDir()
		m := &types.DownloadManifest{
			Output:      out,
			Timeout:     time.Second,
			Concurrency: 3,
			Groups: map[string][]string{
				"ditf": {
					srv.URL + "/img/001.png",
					srv.URL + "/img/9%27s_Model.png",
					srv.URL + "/missing.png",
				},
				"es": {srv.URL + "/img/logo.png"},
			},
		}

		d := New(srv.Client(), zaptest.NewLogger(t))
		results, err := d.Run(context.Background(), m)
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		if len(results) != 4 {
			t.Fatalf("Run() returned %d results, want 4", len(results))
		}

		wantURLs := []string{
			srv.URL + "/img/001.png",
			srv.URL + "/img/9%27s_Model.png",
			srv.URL + "/missing.png",
			srv.URL + "/img/logo.png",
		}
		for i, res := range results {
			if res.URL != wantURLs[i] {
				t.Errorf("results[%d].URL = %q, want %q", i, res.URL, wantURLs[i])
			}
		}

		if !results[0].Success || results[0].Bytes != int64(len("image:001.png")) {
			t.Errorf("results[0] = %+v", results[0])
		}
		data, err := os.ReadFile(filepath.Join(out, "ditf", "001.png"))
		if err != nil || string(data) != "image:001.png" {
			t.Errorf("ditf/001.png = %q, %v", data, err)
		}
		if _, err := os.Stat(filepath.Join(out, "ditf", "9_s_Model.png")); err != nil {
			t.Errorf("cleaned file missing: %v", err)
		}

		if results[2].Success {
			t.Error("404 reported as success")
		}
		if !strings.Contains(results[2].Message, "404") {
			t.Errorf("results[2].Message = %q, want status", results[2].Message)
		}
		if _, err := os.Stat(filepath.Join(out, "ditf", "missing.png")); !os.IsNotExist(err) {
			t.Error("failed download left a file behind")
		}

		if results[3].Group != "es" || !results[3].Success {
			t.Errorf("results[3] = %+v", results[3])
		}
	})

	t.Run("timeout is a failure", func(t *testing.T) {
		out := t.TempDir()
		m := &types.DownloadManifest{
			Output:  out,
			Timeout: 50 * time.Millisecond,
			Groups:  map[string][]string{"slow": {srv.URL + "/slow.png"}},
		}

		results, err := New(srv.Client(), zaptest.NewLogger(t)).Run(context.Background(), m)
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		if len(results) != 1 || results[0].Success {
			t.Errorf("Run() = %+v, want one failure", results)
		}
	})

	t.Run("unfollowed redirect is a failure", func(t *testing.T) {
		out := t.TempDir()
		m := &types.DownloadManifest{
			Output: out,
			Groups: map[string][]string{"g": {srv.URL + "/moved.png"}},
		}

		results, err := New(srv.Client(), nil).Run(context.Background(), m)
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		if results[0].Success || !strings.Contains(results[0].Message, "300") {
			t.Errorf("Run() = %+v, want status failure", results[0])
		}
		if _, err := os.Stat(filepath.Join(out, "g", "moved.png")); !os.IsNotExist(err) {
			t.Error("3xx body was saved")
		}
	})

	t.Run("url without file name", func(t *testing.T) {
		out := t.TempDir()
		m := &types.DownloadManifest{
			Output: out,
			Groups: map[string][]string{"g": {srv.URL + "/img/"}},
		}

		results, err := New(srv.Client(), nil).Run(context.Background(), m)
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		if results[0].Success || results[0].Path != "" {
			t.Errorf("Run() = %+v, want failure without path", results[0])
		}
	})

	t.Run("duplicate urls", func(t *testing.T) {
		out := t.TempDir()
		url := srv.URL + "/img/dup.png"
		m := &types.DownloadManifest{
			Output:      out,
			Concurrency: 2,
			Groups:      map[string][]string{"g": {url, url}},
		}

		results, err := New(srv.Client(), nil).Run(context.Background(), m)
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		for i, res := range results {
			if !res.Success {
				t.Errorf("results[%d] = %+v", i, res)
			}
		}
		entries, _ := os.ReadDir(filepath.Join(out, "g"))
		if len(entries) != 1 {
			t.Errorf("group folder has %d files, want 1", len(entries))
		}
	})

	t.Run("group folder cannot be created", func(t *testing.T) {
		out := t.TempDir()
		blocker := filepath.Join(out, "g")
		if err := os.WriteFile(blocker, nil, 0o644); err != nil {
			t.Fatal(err)
		}
		m := &types.DownloadManifest{
			Output: out,
			Groups: map[string][]string{"g": {srv.URL + "/img/a.png"}},
		}

		if _, err := New(srv.Client(), nil).Run(context.Background(), m); err == nil {
			t.Error("Run() error = nil, want mkdir error")
		}
	})
}
