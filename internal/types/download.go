package types

import "time"

type (
	// DownloadManifest lists the URLs to fetch, grouped by output folder.
	DownloadManifest struct {
		Output      string              `yaml:"output"`
		Timeout     time.Duration       `yaml:"timeout"`
		Concurrency int                 `yaml:"concurrency"`
		Groups      map[string][]string `yaml:"groups"`
	}

	// DownloadResult contains the result of a single download.
	DownloadResult struct {
		Group   string `json:"group"`
		URL     string `json:"url"`
		Path    string `json:"path"`
		Bytes   int64  `json:"bytes"`
		Success bool   `json:"success"`
		Message string `json:"message,omitempty"`
	}
)
