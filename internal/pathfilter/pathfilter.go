// Package pathfilter decides which files a batch run picks up.
package pathfilter

import (
	"path"
	"regexp"
	"strings"

	"github.com/taigrr/sidescripts/internal/types"
)

// ImageExtensions are the file extensions the ASCII converter can decode.
var ImageExtensions = []string{".png", ".jpg", ".jpeg", ".gif", ".bmp", ".webp", ".svg"}

// PathFilter filters allowed paths and file types.
type PathFilter struct {
	ignored           []*regexp.Regexp
	allowedExtensions []string
}

// New creates a PathFilter that ignores OS clutter and only allows images.
// Patterns and extensions from config extend the defaults.
func New(config *types.PathFilterConfig) *PathFilter {
	patterns := []string{
		".DS_Store",
		"**/.DS_Store",
		"Thumbs.db",
		"desktop.ini",
		".git/**",
	}
	extensions := append([]string(nil), ImageExtensions...)

	if config != nil {
		patterns = append(patterns, config.IgnoredPatterns...)
		extensions = append(extensions, config.AllowedExtensions...)
	}

	pf := &PathFilter{}
	for _, p := range patterns {
		if re, err := globToRegexp(p); err == nil {
			pf.ignored = append(pf.ignored, re)
		}
	}
	for _, ext := range extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		pf.allowedExtensions = append(pf.allowedExtensions, ext)
	}
	return pf
}

// globToRegexp converts a glob pattern to an anchored regex.
// ** matches across separators, * and ? stay within one path segment.
func globToRegexp(pattern string) (*regexp.Regexp, error) {
	normalized := strings.ReplaceAll(pattern, "\\", "/")

	expr := regexp.QuoteMeta(normalized)
	expr = strings.ReplaceAll(expr, `\*\*`, ".*")
	expr = strings.ReplaceAll(expr, `\*`, "[^/]*")
	expr = strings.ReplaceAll(expr, `\?`, "[^/]")

	return regexp.Compile("^" + expr + "$")
}

// IsAllowed checks if a file path passes the ignore patterns and has an allowed extension.
func (pf *PathFilter) IsAllowed(p string) bool {
	normalized := strings.ReplaceAll(p, "\\", "/")

	for _, re := range pf.ignored {
		if re.MatchString(normalized) {
			return false
		}
	}

	ext := strings.ToLower(path.Ext(normalized))
	for _, allowed := range pf.allowedExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}

// FilterPaths filters a slice of paths to only include allowed ones.
func (pf *PathFilter) FilterPaths(paths []string) []string {
	var allowed []string
	for _, p := range paths {
		if pf.IsAllowed(p) {
			allowed = append(allowed, p)
		}
	}
	return allowed
}
