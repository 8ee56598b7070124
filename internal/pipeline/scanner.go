package pipeline

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ScanCSS walks rootDir and returns every stylesheet in it, sorted.
// Hidden directories are skipped.
func ScanCSS(rootDir string) ([]string, error) {
	var files []string

	err := filepath.Walk(rootDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			// Skip hidden directories.
			if strings.HasPrefix(info.Name(), ".") && info.Name() != "." && path != rootDir {
				return filepath.SkipDir
			}
			return nil
		}

		if strings.ToLower(filepath.Ext(path)) == ".css" {
			files = append(files, path)
		}
		return nil
	})

	sort.Strings(files)
	return files, err
}
