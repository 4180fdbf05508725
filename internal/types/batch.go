package types

type (
	// PathFilterConfig contains configuration for the path filter.
	PathFilterConfig struct {
		IgnoredPatterns   []string `yaml:"ignoredPatterns" json:"ignoredPatterns"`
		AllowedExtensions []string `yaml:"allowedExtensions" json:"allowedExtensions"`
	}

	// CombinedNames are the file names of the concatenated dump written at the end of a batch.
	CombinedNames struct {
		Pretty   string `yaml:"pretty"`
		Minified string `yaml:"minified"`
	}

	// BatchGroup is one input/output folder pair of a batch job.
	BatchGroup struct {
		Name    string `yaml:"name"`
		Invert  bool   `yaml:"invert"`
		Prefix  string `yaml:"prefix,omitempty"`
		Width   int    `yaml:"width,omitempty"`
		Collect *bool  `yaml:"collect,omitempty"` // nil means true
	}

	// BatchJob describes an image to ASCII batch run.
	BatchJob struct {
		Input    string           `yaml:"input"`
		Output   string           `yaml:"output"`
		Width    int              `yaml:"width"`
		Combined CombinedNames    `yaml:"combined"`
		Filter   PathFilterConfig `yaml:"filter"`
		Groups   []BatchGroup     `yaml:"groups"`
	}

	// GroupReport summarises one processed group.
	GroupReport struct {
		Name      string `json:"name"`
		Converted int    `json:"converted"`
		Failed    int    `json:"failed"`
		Skipped   int    `json:"skipped"`
		Collected bool   `json:"collected"`
		Entries   int    `json:"entries"`
	}

	// BatchReport is the outcome of a batch run.
	BatchReport struct {
		RunID        string        `json:"runId"`
		Groups       []GroupReport `json:"groups"`
		Entries      int           `json:"entries"`
		PrettyPath   string        `json:"prettyPath"`
		MinifiedPath string        `json:"minifiedPath"`
	}
)

// ShouldCollect reports whether the group output is gathered into the combined dump.
func (g BatchGroup) ShouldCollect() bool {
	return g.Collect == nil || *g.Collect
}
