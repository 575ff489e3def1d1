// Package fileutil provides small file-system helpers shared across the
// pipeline.
package fileutil

import (
	"os"
	"path/filepath"
)

// WriteFileDirs writes data to path with default permissions (0o644),
// creating parent directories as needed.
func WriteFileDirs(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Exists reports whether path exists, regardless of kind.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// DirExists reports whether path exists and is a directory.
func DirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
