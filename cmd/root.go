package cmd

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"
)

var (
	version = "0.1.0"
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "smartsprites",
	Short: "CSS sprite generator driven by directives in CSS comments",
	Long: `smartsprites merges the background images of a stylesheet into sprites.

Sprites are declared and referenced with comments in plain CSS:

  /** sprite: icons; sprite-image: url('../img/icons.png'); sprite-layout: vertical */
  .home { background-image: url(../img/home.png); /** sprite-ref: icons; */ }

The tool writes the sprite images, a rewritten copy of every stylesheet
with background-position declarations, and an optional JSON manifest.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: false,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"smartsprites %s (%s/%s, %s)\n",
		version, runtime.GOOS, runtime.GOARCH, runtime.Version(),
	))
}

// logVerbose prints a message only when --verbose is set.
func logVerbose(format string, args ...any) {
	if verbose {
		fmt.Fprintf(os.Stderr, "[smartsprites] "+format+"\n", args...)
	}
}
