package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/hazendaz/smartsprites-sub000/internal/manifest"
)

var statsCmd = &cobra.Command{
	Use:   "stats <out_dir_or_manifest>",
	Short: "Display statistics for a sprite build",
	Args:  cobra.ExactArgs(1),
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(_ *cobra.Command, args []string) error {
	path, err := manifestFile(args[0])
	if err != nil {
		return err
	}
	m, err := manifest.Read(path)
	if err != nil {
		return err
	}
	printStats(m)
	return nil
}

// manifestFile accepts either a manifest or the directory holding one.
func manifestFile(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return filepath.Join(path, manifest.FileName), nil
	}
	return path, nil
}

func printStats(m *manifest.Manifest) {
	fmt.Println()
	fmt.Printf("  Manifest version: %d\n", m.Version)
	fmt.Printf("  Generated:        %s\n", m.GeneratedAt)
	fmt.Printf("  Profile:          %s\n", m.Profile)
	if b := m.BuildInfo; b != nil {
		fmt.Printf("  Workers:          %d\n", b.Workers)
		fmt.Printf("  PNG depth:        %s (quantizer %s, legacy %t)\n", b.PNGDepth, b.Quantizer, b.Legacy)
		fmt.Printf("  Warnings:         %d\n", b.Warnings)
	}
	fmt.Println()

	s := m.Stats
	fmt.Printf("  Sprites:          %d\n", s.TotalSprites)
	fmt.Printf("  Images:           %d (%d shared)\n", s.TotalImages, s.SharedImages)
	fmt.Printf("  Legacy variants:  %d\n", s.LegacyVariants)
	fmt.Printf("  Stylesheets:      %d\n", len(m.CSS))
	fmt.Printf("  Input size:       %s\n", formatBytes(s.TotalInputBytes))
	fmt.Printf("  Output size:      %s\n", formatBytes(s.TotalOutputBytes))
	if s.TotalInputBytes > 0 {
		ratio := float64(s.TotalOutputBytes) / float64(s.TotalInputBytes) * 100
		fmt.Printf("  Ratio:            %.1f%% of individual images\n", ratio)
	}
	fmt.Println()

	// Per-format breakdown.
	formatStats := map[string]struct {
		count int
		bytes int64
	}{}
	for _, sp := range m.Sprites {
		fs := formatStats[sp.Format]
		fs.count++
		fs.bytes += sp.Size
		formatStats[sp.Format] = fs
	}
	fmt.Println("  Format breakdown:")
	for _, f := range []string{"png", "gif", "jpg", "webp"} {
		if fs, ok := formatStats[f]; ok {
			fmt.Printf("    %-6s  %4d sprites  %s\n", f, fs.count, formatBytes(fs.bytes))
		}
	}
	fmt.Println()

	// Per-layout breakdown.
	layoutStats := map[string]int{}
	indexed := 0
	for _, sp := range m.Sprites {
		layoutStats[sp.Layout]++
		if sp.Indexed {
			indexed++
		}
	}
	var layouts []string
	for l := range layoutStats {
		layouts = append(layouts, l)
	}
	sort.Strings(layouts)
	fmt.Println("  Layout breakdown:")
	for _, l := range layouts {
		fmt.Printf("    %-10s  %4d sprites\n", l, layoutStats[l])
	}
	fmt.Printf("  Indexed sprites:  %d / %d\n", indexed, len(m.Sprites))

	// Warnings.
	var warnings []string
	for id, sp := range m.Sprites {
		if len(sp.Images) == 0 {
			warnings = append(warnings, fmt.Sprintf("sprite %q has no images", id))
		}
		if sp.Lossy {
			warnings = append(warnings, fmt.Sprintf("sprite %q was reduced with quality loss", id))
		}
	}
	sort.Strings(warnings)
	if len(warnings) > 0 {
		fmt.Println()
		fmt.Printf("  Warnings (%d):\n", len(warnings))
		for _, w := range warnings {
			fmt.Printf("    ⚠ %s\n", w)
		}
	}
	fmt.Println()
}
