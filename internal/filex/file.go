// Package filex resolves on-device file locations.
package filex

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// EnsureSubDir creates dirName under the working directory and returns its
// absolute path.
func EnsureSubDir(dirName string) (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getwd: %w", err)
	}

	dir := filepath.Join(cwd, dirName)

	if err := os.MkdirAll(dir, 0o770); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", dir, err)
	}

	return dir, nil
}

// LocalPath places a bare file name inside dirName, creating the directory.
// Paths with a directory part and SQLite special names (":memory:", "file:"
// URIs) are returned unchanged.
func LocalPath(dirName, name string) (string, error) {
	if name == "" || strings.HasPrefix(name, ":") || strings.HasPrefix(name, "file:") || filepath.Base(name) != name {
		return name, nil
	}
	dir, err := EnsureSubDir(dirName)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name), nil
}
