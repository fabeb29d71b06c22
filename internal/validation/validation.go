// Package validation checks user supplied paths before any work is done.
package validation

import (
	"fmt"
	"os"
)

// InputFile checks that path names an existing, non-empty regular file.
func InputFile(path string) error {
	if path == "" {
		return fmt.Errorf("input file is required")
	}
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return fmt.Errorf("input file does not exist: %s", path)
	}
	if err != nil {
		return fmt.Errorf("error checking input file %s: %w", path, err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("input path %s is not a regular file", path)
	}
	if info.Size() == 0 {
		return fmt.Errorf("input file %s is empty", path)
	}
	return nil
}

// OutputFile checks that path, when it already exists, can be overwritten
// with a report. An empty path means stdout and is always valid.
func OutputFile(path string) error {
	if path == "" {
		return nil
	}
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("error checking output file %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("output path %s is a directory", path)
	}
	return nil
}

// FilePermissions rejects modes that grant any access to others. Alias and
// config files may hold counterparty names and are written 0600.
func FilePermissions(mode os.FileMode) error {
	if mode&0007 != 0 {
		return fmt.Errorf("file permissions are too permissive: %s. Recommended 0600 or 0640", mode.String())
	}
	return nil
}
