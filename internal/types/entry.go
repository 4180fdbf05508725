// Package types defines all data structures shared across sidescripts.
package types

// EntryType classifies a single directory child.
type EntryType string

const (
	EntryDir  EntryType = "dir"
	EntryFile EntryType = "file"
	EntryJSON EntryType = "json"
	EntryPath EntryType = "path"
	// EntryUnknown keeps the capitalised spelling existing files.json dumps use.
	EntryUnknown EntryType = "Unknown"
)

// Serialized key names of an Entry.
const (
	KeyName            = "fileName"
	KeyContent         = "fileContent"
	KeyType            = "fileType"
	KeyParentDirectory = "fileParentDirectory"
)

type (
	// Entry describes one child of a scanned directory.
	//
	// Content depends on Type: "" for dir and Unknown, []string for file,
	// the parsed document for json and a parent-relative path for path.
	Entry struct {
		Name            string    `json:"fileName"`
		ParentDirectory string    `json:"fileParentDirectory"`
		Type            EntryType `json:"fileType"`
		Content         any       `json:"fileContent"`
	}

	// GatherSummary counts entries per type.
	GatherSummary struct {
		Dir     string            `json:"dir"`
		Total   int               `json:"total"`
		PerType map[EntryType]int `json:"perType"`
	}
)

// Fields returns the entry as a generic object keyed by its serialized names.
func (e Entry) Fields() map[string]any {
	return map[string]any{
		KeyName:            e.Name,
		KeyParentDirectory: e.ParentDirectory,
		KeyType:            string(e.Type),
		KeyContent:         e.Content,
	}
}

// Summarize counts the entries of a gathered directory.
func Summarize(dir string, entries []Entry) GatherSummary {
	s := GatherSummary{Dir: dir, Total: len(entries), PerType: make(map[EntryType]int)}
	for _, e := range entries {
		s.PerType[e.Type]++
	}
	return s
}
