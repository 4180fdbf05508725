// Package workspace confines tool paths to a root directory.
package workspace

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// ErrOutsideRoot is returned for paths that escape the workspace root.
var ErrOutsideRoot = errors.New("path traversal not allowed")

// Service resolves client supplied paths inside a root directory.
type Service struct {
	root string
}

// New creates a Service rooted at root.
func New(root string) (*Service, error) {
	absPath, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve workspace root: %w", err)
	}
	info, err := os.Stat(absPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("workspace root not found: %s", root)
		}
		return nil, fmt.Errorf("failed to stat workspace root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("workspace root is not a directory: %s", root)
	}
	return &Service{root: absPath}, nil
}

// Root returns the absolute workspace root.
func (s *Service) Root() string { return s.root }

// ResolvePath resolves a relative path within the workspace. Leading
// slashes are stripped so "/a" and "a" name the same file.
func (s *Service) ResolvePath(relativePath string) (string, error) {
	normalized := strings.TrimSpace(relativePath)
	normalized = strings.TrimLeft(normalized, `/\`)

	absPath := filepath.Join(s.root, filepath.FromSlash(normalized))

	relPath, err := filepath.Rel(s.root, absPath)
	if err != nil {
		return "", err
	}
	if relPath == ".." || strings.HasPrefix(relPath, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrOutsideRoot, relativePath)
	}
	return absPath, nil
}

// ResolveDir resolves path and checks that it is an existing directory.
func (s *Service) ResolveDir(path string) (string, error) {
	fullPath, err := s.ResolvePath(path)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(fullPath)
	if err != nil {
		return "", describe(path, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("not a directory: %s", path)
	}
	return fullPath, nil
}

// ResolveFile resolves path and checks that it is an existing regular file.
func (s *Service) ResolveFile(path string) (string, error) {
	fullPath, err := s.ResolvePath(path)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(fullPath)
	if err != nil {
		return "", describe(path, err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("cannot read directory as file: %s", path)
	}
	return fullPath, nil
}

// Rel returns fullPath relative to the root using forward slashes.
func (s *Service) Rel(fullPath string) string {
	rel, err := filepath.Rel(s.root, fullPath)
	if err != nil {
		return fullPath
	}
	return filepath.ToSlash(rel)
}

func describe(path string, err error) error {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("file not found: %s", path)
	case errors.Is(err, fs.ErrPermission):
		return fmt.Errorf("permission denied: %s", path)
	default:
		return fmt.Errorf("failed to stat: %s - %w", path, err)
	}
}
