package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/hazendaz/smartsprites-sub000/internal/colorreduce"
	"github.com/hazendaz/smartsprites-sub000/internal/manifest"
	"github.com/hazendaz/smartsprites-sub000/internal/message"
	"github.com/hazendaz/smartsprites-sub000/internal/pipeline"
	"github.com/hazendaz/smartsprites-sub000/internal/profile"
)

var (
	buildRootDir       string
	buildOutDir        string
	buildDocRoot       string
	buildProfile       string
	buildSuffix        string
	buildPNGDepth      string
	buildLegacy        bool
	buildMark          bool
	buildQuantizer     string
	buildQuality       int
	buildWorkers       int
	buildLogLevel      string
	buildWriteManifest bool
)

var buildCmd = &cobra.Command{
	Use:   "build [css_file...]",
	Short: "Build sprites and rewrite the stylesheets that reference them",
	Long: `Reads sprite directives from the given CSS files, or from every *.css
file under --root-dir, builds one image per referenced sprite and writes
a copy of each stylesheet with the sprite references replaced.

Rewritten stylesheets are named <name><suffix>.css. With --output-dir the
output mirrors the layout of --root-dir there instead.`,
	RunE: runBuild,
}

func init() {
	f := buildCmd.Flags()
	f.StringVarP(&buildRootDir, "root-dir", "r", "", "directory to scan for css files")
	f.StringVarP(&buildOutDir, "output-dir", "o", "", "write output here instead of next to the input")
	f.StringVar(&buildDocRoot, "document-root-dir", "", "directory that image paths starting with / resolve against")
	f.StringVarP(&buildProfile, "profile", "p", "default", "processing profile ("+strings.Join(profile.Names(), ", ")+")")
	f.StringVar(&buildSuffix, "css-suffix", "", "suffix of rewritten css files (default from profile)")
	f.StringVar(&buildPNGDepth, "png-depth", "", "png sprite color depth: auto, direct or indexed (default from profile)")
	f.BoolVar(&buildLegacy, "legacy", false, "also write indexed-alpha sprite variants for old browsers")
	f.BoolVar(&buildMark, "mark-sprite-images", false, "mark generated background-image declarations with a comment")
	f.StringVar(&buildQuantizer, "quantizer", "", "palette builder for lossy reduction: octree or mediancut")
	f.IntVarP(&buildQuality, "quality", "q", 0, "jpg sprite quality 1-100 (0 = profile default)")
	f.IntVarP(&buildWorkers, "workers", "w", 0, "parallel workers (0 = NumCPU)")
	f.StringVar(&buildLogLevel, "log-level", "notice", "minimum level of reported messages: info, ie6notice, notice, deprecation, warn, error")
	f.BoolVar(&buildWriteManifest, "manifest", false, "write "+manifest.FileName+" to the output directory")
	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, args []string) error {
	start := time.Now()

	prof, err := buildProfileFromFlags(cmd)
	if err != nil {
		return err
	}

	level, err := message.ParseLevel(buildLogLevel)
	if err != nil {
		return err
	}
	if verbose && level > message.Info {
		level = message.Info
	}

	cfg := pipeline.Config{
		CSSFiles:         args,
		DocumentRootDir:  buildDocRoot,
		Profile:          prof,
		MarkSpriteImages: buildMark,
		Workers:          buildWorkers,
		Log:              message.New(&message.Printer{W: os.Stderr, Min: level}),
	}
	// Resolve absolute paths.
	for _, dir := range []struct {
		in  string
		out *string
	}{{buildRootDir, &cfg.RootDir}, {buildOutDir, &cfg.OutputDir}, {buildDocRoot, &cfg.DocumentRootDir}} {
		if dir.in == "" {
			continue
		}
		abs, err := filepath.Abs(dir.in)
		if err != nil {
			return fmt.Errorf("resolve path %s: %w", dir.in, err)
		}
		*dir.out = abs
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid parameters: %w", err)
	}

	logVerbose("root:    %s", cfg.RootDir)
	logVerbose("output:  %s", cfg.OutputDir)
	logVerbose("profile: %s (png-depth=%s, legacy=%t, quantizer=%s, suffix=%q)",
		prof.Name, prof.PNGDepth, prof.Legacy, prof.Quantizer, prof.CSSSuffix)

	m, err := pipeline.New(cfg).Run()
	if err != nil {
		return fmt.Errorf("pipeline: %w", err)
	}

	if buildWriteManifest {
		dir := m.BasePath
		if dir == "" {
			dir = "."
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
		if err := manifest.WriteJSON(m, filepath.Join(dir, manifest.FileName)); err != nil {
			return fmt.Errorf("write manifest: %w", err)
		}
	}

	if verbose {
		printBuildReport(m, time.Since(start))
	}
	return nil
}

// buildProfileFromFlags loads the named profile and applies the flags
// that were set explicitly.
func buildProfileFromFlags(cmd *cobra.Command) (profile.Profile, error) {
	prof := profile.Get(buildProfile)
	flags := cmd.Flags()

	if flags.Changed("css-suffix") {
		prof.CSSSuffix = buildSuffix
	}
	if buildPNGDepth != "" {
		d, err := colorreduce.ParseDepth(buildPNGDepth)
		if err != nil {
			return prof, err
		}
		prof.PNGDepth = d
	}
	if flags.Changed("legacy") {
		prof.Legacy = buildLegacy
	}
	if buildQuantizer != "" {
		q, err := colorreduce.ParseQuantizer(buildQuantizer)
		if err != nil {
			return prof, err
		}
		prof.Quantizer = q
	}
	if buildQuality > 0 {
		prof.Quality = buildQuality
	}
	return prof, nil
}

func printBuildReport(m *manifest.Manifest, elapsed time.Duration) {
	fmt.Println()
	fmt.Println("╔══════════════════════════════════════════════════╗")
	fmt.Println("║           smartsprites build complete            ║")
	fmt.Println("╚══════════════════════════════════════════════════╝")
	fmt.Println()

	stats := m.Stats
	ratio := float64(0)
	if stats.TotalInputBytes > 0 {
		ratio = float64(stats.TotalOutputBytes) / float64(stats.TotalInputBytes) * 100
	}

	fmt.Printf("  Sprites:     %d\n", stats.TotalSprites)
	fmt.Printf("  Images:      %d\n", stats.TotalImages)
	if stats.SharedImages > 0 {
		fmt.Printf("  Shared:      %d images reuse an identical slot\n", stats.SharedImages)
	}
	fmt.Printf("  Stylesheets: %d\n", len(m.CSS))
	fmt.Printf("  Input size:  %s\n", formatBytes(stats.TotalInputBytes))
	fmt.Printf("  Output size: %s\n", formatBytes(stats.TotalOutputBytes))
	fmt.Printf("  Ratio:       %.1f%% of individual images\n", ratio)
	fmt.Printf("  Time:        %s\n", elapsed.Round(time.Millisecond))
	if m.BuildInfo != nil {
		fmt.Printf("  Workers:     %d\n", m.BuildInfo.Workers)
		fmt.Printf("  Warnings:    %d\n", m.BuildInfo.Warnings)
	}
	fmt.Println()

	if len(m.Sprites) > 0 {
		ids := make([]string, 0, len(m.Sprites))
		for id := range m.Sprites {
			ids = append(ids, id)
		}
		sort.Slice(ids, func(i, j int) bool {
			return m.Sprites[ids[i]].Size > m.Sprites[ids[j]].Size
		})
		n := len(ids)
		if n > 10 {
			n = 10
		}
		fmt.Printf("  Top %d heaviest sprites:\n", n)
		for _, id := range ids[:n] {
			s := m.Sprites[id]
			mode := "direct"
			if s.Indexed {
				mode = "indexed"
			}
			fmt.Printf("    %-30s %5dx%-5d %-7s %8s  %s\n",
				truncKey(id, 30), s.Width, s.Height, mode, formatBytes(s.Size), s.Path)
		}
		fmt.Println()
	}

	fmts := detectOutputFormats(m)
	fmt.Printf("  Formats:     %s\n", strings.Join(fmts, ", "))
	fmt.Println()

	data, _ := json.Marshal(m)
	fmt.Printf("  Manifest:    %s (%s)\n", manifest.FileName, formatBytes(int64(len(data))))
	fmt.Println()
}

func detectOutputFormats(m *manifest.Manifest) []string {
	set := map[string]bool{}
	for _, s := range m.Sprites {
		set[s.Format] = true
	}
	var out []string
	for _, f := range []string{"png", "gif", "jpg", "webp"} {
		if set[f] {
			out = append(out, f)
		}
	}
	return out
}

func formatBytes(b int64) string {
	switch {
	case b >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(b)/(1<<20))
	case b >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(b)/(1<<10))
	default:
		return fmt.Sprintf("%d B", b)
	}
}

func truncKey(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return "..." + s[len(s)-max+3:]
}
