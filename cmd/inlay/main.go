// Package main implements the inlay CLI.
package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// Overridable at build time via -ldflags.
var (
	version   = "0.1.0-dev"
	gitCommit = ""
	buildDate = ""
)

var rootCmd = &cobra.Command{
	Use:   "inlay",
	Short: "Cross-module inliner for hint-annotated JavaScript",
	Long: `Inlay rewrites JavaScript module graphs: function bodies marked
@inline expand at their call sites, and repeated calls marked @pure
hoist into shared temporaries. Modules transform suppliers before
consumers, so every spliced body is already in its final shape.`,
}

func main() {
	rootCmd.Version = version

	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(graphCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// isTerminal reports whether f is connected to a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
