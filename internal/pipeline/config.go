package pipeline

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hazendaz/smartsprites-sub000/internal/message"
	"github.com/hazendaz/smartsprites-sub000/internal/profile"
)

// Config holds all parameters for a build pipeline run.
type Config struct {
	// RootDir is scanned for *.css files when CSSFiles is empty.
	RootDir string
	// CSSFiles lists the stylesheets to process explicitly.
	CSSFiles []string
	// OutputDir receives the rewritten CSS and the sprites, mirroring the
	// layout of RootDir. When empty, output is written next to the input.
	OutputDir string
	// DocumentRootDir resolves image paths starting with "/".
	DocumentRootDir string
	Profile         profile.Profile
	// MarkSpriteImages appends a /** sprite:sprite */ marker to the
	// generated background-image declarations.
	MarkSpriteImages bool
	Workers          int
	Log              *message.Log
	// Now supplies the ${date} path variable; time.Now when nil.
	Now func() time.Time
}

var (
	ErrNoInput            = errors.New("either a root dir or css files are required")
	ErrRootAndFiles       = errors.New("root dir and css files cannot both be given without an output dir")
	ErrOutputNeedsRoot    = errors.New("an output dir requires a root dir")
	ErrSuffixRequired     = errors.New("a css file suffix is required without an output dir")
	ErrNotADirectory      = errors.New("not a directory")
	ErrDirectoryNotExists = errors.New("directory does not exist")
)

// Validate checks the parameters before any file is touched.
func (c Config) Validate() error {
	hasRoot := strings.TrimSpace(c.RootDir) != ""
	hasFiles := len(c.CSSFiles) > 0
	hasOutput := strings.TrimSpace(c.OutputDir) != ""

	if !hasRoot && !hasFiles {
		return ErrNoInput
	}
	if !hasOutput && hasRoot && hasFiles {
		return ErrRootAndFiles
	}

	var errs []error
	if hasRoot {
		if err := requireDir(c.RootDir); err != nil {
			errs = append(errs, fmt.Errorf("root dir: %w", err))
		}
	}
	if hasOutput {
		if !hasRoot {
			return ErrOutputNeedsRoot
		}
		if fi, err := os.Stat(c.OutputDir); err == nil && !fi.IsDir() {
			errs = append(errs, fmt.Errorf("output dir %s: %w", c.OutputDir, ErrNotADirectory))
		}
	}
	if !hasOutput && strings.TrimSpace(c.Profile.CSSSuffix) == "" {
		errs = append(errs, ErrSuffixRequired)
	}
	if c.DocumentRootDir != "" {
		if err := requireDir(c.DocumentRootDir); err != nil {
			errs = append(errs, fmt.Errorf("document root dir: %w", err))
		}
	}
	return errors.Join(errs...)
}

func requireDir(path string) error {
	fi, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("%s: %w", path, ErrDirectoryNotExists)
	}
	if !fi.IsDir() {
		return fmt.Errorf("%s: %w", path, ErrNotADirectory)
	}
	return nil
}

// cssOutputPath returns where the rewritten version of cssFile goes.
func (c Config) cssOutputPath(cssFile string) string {
	ext := filepath.Ext(cssFile)
	out := strings.TrimSuffix(cssFile, ext) + c.Profile.CSSSuffix + ext
	return c.reroot(out)
}

// reroot moves path from under RootDir to under OutputDir. Paths outside
// RootDir, and all paths when no output dir is set, are kept.
func (c Config) reroot(path string) string {
	if c.OutputDir == "" || c.RootDir == "" {
		return path
	}
	rel, err := filepath.Rel(c.RootDir, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return path
	}
	return filepath.Join(c.OutputDir, rel)
}

// resourcePath resolves an image path found in cssFile. Paths starting
// with "/" are resolved against the document root; without one they are
// reported and "" is returned.
func (c Config) resourcePath(cssFile, path string, log *message.Log) string {
	if strings.HasPrefix(path, "/") {
		if c.DocumentRootDir == "" {
			log.Warning(message.AbsolutePathAndNoDocumentRoot, path)
			return ""
		}
		return filepath.Join(c.DocumentRootDir, filepath.FromSlash(path[1:]))
	}
	return filepath.Join(filepath.Dir(cssFile), filepath.FromSlash(path))
}

// basePath is the directory manifest paths are relative to.
func (c Config) basePath() string {
	if c.OutputDir != "" {
		return c.OutputDir
	}
	return c.RootDir
}

// manifestPath returns an output path relative to basePath.
func (c Config) manifestPath(p string) string { return relSlash(c.basePath(), p) }

// sourcePath returns an input path relative to RootDir.
func (c Config) sourcePath(p string) string { return relSlash(c.RootDir, p) }

// relSlash returns p relative to base with forward slashes, or p itself
// when it is not below base.
func relSlash(base, p string) string {
	if base == "" {
		return filepath.ToSlash(p)
	}
	rel, err := filepath.Rel(base, p)
	if err != nil || strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(p)
	}
	return filepath.ToSlash(rel)
}

func (c Config) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}
