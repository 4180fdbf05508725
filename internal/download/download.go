// Package download fetches grouped image URLs into per-group folders.
package download

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/taigrr/sidescripts/internal/types"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
)

// Manifest defaults.
const (
	DefaultOutput      = "images"
	DefaultTimeout     = 10 * time.Second
	DefaultConcurrency = 1
)

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9.\-]`)

// LoadManifest reads a YAML manifest and fills in defaults.
func LoadManifest(path string) (*types.DownloadManifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	var m types.DownloadManifest
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&m); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}

	if m.Output == "" {
		m.Output = DefaultOutput
	}
	if m.Timeout <= 0 {
		m.Timeout = DefaultTimeout
	}
	if m.Concurrency <= 0 {
		m.Concurrency = DefaultConcurrency
	}
	return &m, nil
}

// CleanFilename derives a safe file name from the last path segment of url.
// Percent escapes are decoded leniently and every character outside
// [A-Za-z0-9.-] becomes an underscore.
func CleanFilename(url string) string {
	name := url[strings.LastIndex(url, "/")+1:]
	return unsafeChars.ReplaceAllString(unquote(name), "_")
}

// unquote decodes %XX escapes, leaving malformed ones untouched. Bytes that
// do not form valid UTF-8 decode to U+FFFD.
func unquote(s string) string {
	if !strings.Contains(s, "%") {
		return s
	}

	buf := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '%' && i+2 < len(s) && isHex(s[i+1]) && isHex(s[i+2]) {
			buf = append(buf, unhex(s[i+1])<<4|unhex(s[i+2]))
			i += 2
			continue
		}
		buf = append(buf, s[i])
	}

	var sb strings.Builder
	for len(buf) > 0 {
		r, size := utf8.DecodeRune(buf)
		sb.WriteRune(r)
		buf = buf[size:]
	}
	return sb.String()
}

func isHex(c byte) bool {
	return '0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F'
}

func unhex(c byte) byte {
	switch {
	case '0' <= c && c <= '9':
		return c - '0'
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10
	default:
		return c - 'A' + 10
	}
}

// Downloader fetches manifests over HTTP.
type Downloader struct {
	client *http.Client
	logger *zap.Logger
}

// New creates a Downloader. A nil client uses http.DefaultClient.
func New(client *http.Client, logger *zap.Logger) *Downloader {
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Downloader{client: client, logger: logger}
}

// Run downloads every URL of m. Groups run in name order and results keep
// manifest order. A failed URL is recorded and the run continues; only a
// group folder that cannot be created stops it.
func (d *Downloader) Run(ctx context.Context, m *types.DownloadManifest) ([]types.DownloadResult, error) {
	groups := make([]string, 0, len(m.Groups))
	for name := range m.Groups {
		groups = append(groups, name)
	}
	slices.Sort(groups)

	limit := m.Concurrency
	if limit <= 0 {
		limit = DefaultConcurrency
	}

	var all []types.DownloadResult
	for _, group := range groups {
		dir := filepath.Join(m.Output, group)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return all, fmt.Errorf("failed to create group folder %s: %w", dir, err)
		}

		urls := m.Groups[group]
		results := make([]types.DownloadResult, len(urls))

		var g errgroup.Group
		g.SetLimit(limit)
		for i, url := range urls {
			g.Go(func() error {
				results[i] = d.fetch(ctx, group, dir, url, m.Timeout)
				return nil
			})
		}
		_ = g.Wait()

		all = append(all, results...)
	}
	return all, nil
}

func (d *Downloader) fetch(ctx context.Context, group, dir, url string, timeout time.Duration) types.DownloadResult {
	res := types.DownloadResult{Group: group, URL: url}

	name := CleanFilename(url)
	if name == "" {
		return d.fail(res, errors.New("url has no file name"))
	}
	res.Path = filepath.Join(dir, name)

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return d.fail(res, fmt.Errorf("failed to build request: %w", err))
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return d.fail(res, fmt.Errorf("failed to fetch: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return d.fail(res, fmt.Errorf("unexpected status %s", resp.Status))
	}

	n, err := writeAtomic(res.Path, resp.Body)
	if err != nil {
		return d.fail(res, err)
	}

	res.Bytes = n
	res.Success = true
	d.logger.Info("downloaded", zap.String("group", group), zap.String("file", name), zap.Int64("bytes", n))
	return res
}

func (d *Downloader) fail(res types.DownloadResult, err error) types.DownloadResult {
	res.Message = err.Error()
	d.logger.Warn("failed to download", zap.String("group", res.Group), zap.String("url", res.URL), zap.Error(err))
	return res
}

// writeAtomic streams r into a temp file next to path and renames it into place.
func writeAtomic(path string, r io.Reader) (int64, error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".download-*")
	if err != nil {
		return 0, fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	n, err := io.Copy(tmp, r)
	if err != nil {
		tmp.Close()
		return 0, fmt.Errorf("failed to read body: %w", err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return 0, fmt.Errorf("failed to set file mode: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return 0, fmt.Errorf("failed to write file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return 0, fmt.Errorf("failed to move file into place: %w", err)
	}
	return n, nil
}
