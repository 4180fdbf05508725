package metadata

import (
	"errors"
	"fmt"
	"io/fs"
)

// ScanError reports a failure to list a directory or read one of its children.
// No output is written when gathering fails with a ScanError.
type ScanError struct {
	Dir  string
	Name string // empty when the listing itself failed
	Err  error
}

func (e *ScanError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("failed to scan %s: %s: %v", e.Dir, e.Name, e.Err)
	}
	return fmt.Sprintf("failed to scan %s: %v", e.Dir, e.Err)
}

func (e *ScanError) Unwrap() error { return e.Err }

// WriteError reports a failure to serialize or write one of the dump files.
// Files written before the failure are left in place.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("failed to write %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

func describe(err error) error {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("directory not found: %w", err)
	case errors.Is(err, fs.ErrPermission):
		return fmt.Errorf("permission denied: %w", err)
	}
	return err
}
