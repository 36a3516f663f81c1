package photos

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// IsEligible reports whether name has a displayable extension
// (.jpg, .jpeg or .png, any case).
func IsEligible(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpg", ".jpeg", ".png":
		return true
	}
	return false
}

// List returns the absolute paths of the eligible files directly inside dir,
// sorted by name. Subdirectories are not descended into.
func List(dir string) ([]string, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", dir, err)
	}

	entries, err := os.ReadDir(absDir)
	if err != nil {
		return nil, fmt.Errorf("reading photo directory: %w", err)
	}

	paths := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !IsEligible(entry.Name()) {
			continue
		}
		paths = append(paths, filepath.Join(absDir, entry.Name()))
	}
	sort.Strings(paths)

	return paths, nil
}

// Count returns the number of eligible files in dir.
func Count(dir string) (int, error) {
	paths, err := List(dir)
	if err != nil {
		return 0, err
	}
	return len(paths), nil
}
