package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/hazendaz/smartsprites-sub000/internal/manifest"
)

var validateCmd = &cobra.Command{
	Use:   "validate <out_dir_or_manifest>",
	Short: "Validate a smartsprites manifest and check the written files exist",
	Args:  cobra.ExactArgs(1),
	RunE:  runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(_ *cobra.Command, args []string) error {
	path, err := manifestFile(args[0])
	if err != nil {
		return err
	}
	m, err := manifest.Read(path)
	if err != nil {
		return err
	}

	errors := validateManifest(m, filepath.Dir(path))
	if len(errors) == 0 {
		fmt.Println("  ✓ Manifest is valid")
		fmt.Printf("  ✓ %d sprites, %d images, %d stylesheets, all files present\n",
			m.Stats.TotalSprites, m.Stats.TotalImages, len(m.CSS))
		return nil
	}

	fmt.Printf("  ✗ Manifest has %d error(s):\n", len(errors))
	for _, e := range errors {
		fmt.Printf("    • %s\n", e)
	}
	return fmt.Errorf("validation failed with %d errors", len(errors))
}

// validateManifest checks m against the files below baseDir. Paths in
// the manifest are relative to the directory it was written to.
func validateManifest(m *manifest.Manifest, baseDir string) []string {
	var errs []string

	if m.Version != manifest.SupportedManifestVersion {
		errs = append(errs, fmt.Sprintf("unsupported manifest version: %d", m.Version))
	}

	ids := make([]string, 0, len(m.Sprites))
	for id := range m.Sprites {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	seenPaths := map[string]string{}
	checkFile := func(id, path string, size int64) {
		if path == "" {
			errs = append(errs, fmt.Sprintf("sprite %q: missing path", id))
			return
		}
		if other, ok := seenPaths[path]; ok {
			errs = append(errs, fmt.Sprintf("sprite %q: path %q already written by sprite %q", id, path, other))
		}
		seenPaths[path] = id

		info, err := os.Stat(filepath.Join(baseDir, filepath.FromSlash(path)))
		if err != nil {
			errs = append(errs, fmt.Sprintf("sprite %q: file not found: %s", id, path))
		} else if size > 0 && info.Size() != size {
			errs = append(errs, fmt.Sprintf("sprite %q: size mismatch for %s: manifest=%d, disk=%d",
				id, path, size, info.Size()))
		}
	}

	imageCount, sharedCount, legacyCount := 0, 0, 0
	for _, id := range ids {
		sp := m.Sprites[id]
		if sp.Width <= 0 || sp.Height <= 0 {
			errs = append(errs, fmt.Sprintf("sprite %q: invalid dimensions %dx%d", id, sp.Width, sp.Height))
		}
		if sp.Format == "" {
			errs = append(errs, fmt.Sprintf("sprite %q: empty format", id))
		}
		if sp.Hash == "" {
			errs = append(errs, fmt.Sprintf("sprite %q: missing hash", id))
		}
		if sp.Scale <= 0 {
			errs = append(errs, fmt.Sprintf("sprite %q: invalid scale %g", id, sp.Scale))
		}
		checkFile(id, sp.Path, sp.Size)
		if sp.Legacy != nil {
			legacyCount++
			checkFile(id, sp.Legacy.Path, sp.Legacy.Size)
		}

		if len(sp.Images) == 0 {
			errs = append(errs, fmt.Sprintf("sprite %q: no images", id))
		}
		stack := sp.Height
		if sp.Layout == "horizontal" {
			stack = sp.Width
		}
		for i, img := range sp.Images {
			imageCount++
			if img.Shared {
				sharedCount++
			}
			if img.Width <= 0 || img.Height <= 0 {
				errs = append(errs, fmt.Sprintf("sprite %q image[%d]: invalid dimensions %dx%d",
					id, i, img.Width, img.Height))
			}
			if img.Offset < 0 || img.Offset >= stack {
				errs = append(errs, fmt.Sprintf("sprite %q image[%d]: offset %d outside sprite", id, i, img.Offset))
			}
			if img.Position == "" {
				errs = append(errs, fmt.Sprintf("sprite %q image[%d]: missing background-position", id, i))
			}
		}
	}

	for _, css := range m.CSS {
		if _, err := os.Stat(filepath.Join(baseDir, filepath.FromSlash(css))); err != nil {
			errs = append(errs, fmt.Sprintf("stylesheet not found: %s", css))
		}
	}

	// Verify stats consistency.
	if m.Stats.TotalSprites != len(m.Sprites) {
		errs = append(errs, fmt.Sprintf("stats.total_sprites mismatch: %d != %d", m.Stats.TotalSprites, len(m.Sprites)))
	}
	if m.Stats.TotalImages != imageCount {
		errs = append(errs, fmt.Sprintf("stats.total_images mismatch: %d != %d", m.Stats.TotalImages, imageCount))
	}
	if m.Stats.SharedImages != sharedCount {
		errs = append(errs, fmt.Sprintf("stats.shared_images mismatch: %d != %d", m.Stats.SharedImages, sharedCount))
	}
	if m.Stats.LegacyVariants != legacyCount {
		errs = append(errs, fmt.Sprintf("stats.legacy_variants mismatch: %d != %d", m.Stats.LegacyVariants, legacyCount))
	}

	return errs
}
