// Package security provides path validation for file writes whose
// destination names come from outside the program.
package security

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ValidatePathWithinDirectory checks that filePath resolves to a location
// inside safeDir. It rejects traversal components and follows symlinks, so a
// link pointing outside safeDir cannot be used to escape it. The target file
// does not have to exist yet; its nearest existing ancestor is resolved
// instead. safeDir must exist.
func ValidatePathWithinDirectory(filePath, safeDir string) error {
	resolved, err := canonicalize(filepath.Clean(filePath))
	if err != nil {
		return fmt.Errorf("failed to resolve path: %w", err)
	}

	absSafe, err := filepath.Abs(safeDir)
	if err != nil {
		return fmt.Errorf("failed to resolve safe directory: %w", err)
	}
	resolvedSafe, err := filepath.EvalSymlinks(absSafe)
	if err != nil {
		return fmt.Errorf("failed to resolve safe directory symlinks: %w", err)
	}

	rel, err := filepath.Rel(resolvedSafe, resolved)
	if err != nil {
		return fmt.Errorf("path %s is outside %s", filePath, safeDir)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) || filepath.IsAbs(rel) {
		return fmt.Errorf("path %s escapes %s", filePath, safeDir)
	}
	return nil
}

// canonicalize returns the absolute, symlink-resolved form of path. When the
// path does not exist yet it resolves the deepest existing ancestor and
// re-attaches the missing suffix, so a symlinked parent still canonicalizes.
func canonicalize(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}

	resolved, err := filepath.EvalSymlinks(abs)
	if err == nil {
		return resolved, nil
	}
	if !os.IsNotExist(err) {
		return "", err
	}

	suffix := ""
	dir := abs
	for {
		parent := filepath.Dir(dir)
		if parent == dir {
			// Walked up to the filesystem root without finding an
			// existing ancestor.
			return abs, nil
		}
		suffix = filepath.Join(filepath.Base(dir), suffix)
		dir = parent

		resolvedDir, err := filepath.EvalSymlinks(dir)
		if err == nil {
			return filepath.Join(resolvedDir, suffix), nil
		}
		if !os.IsNotExist(err) {
			return "", err
		}
	}
}
