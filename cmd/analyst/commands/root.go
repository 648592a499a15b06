package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "analyst",
	Short: "Automated market analyst",
	Long: `Analyst issues dated directional calls, reviews them against later
market moves, scores itself weekly and keeps its knowledge store tidy.

Usage:
  go run ./cmd/analyst [command]

Examples:
  go run ./cmd/analyst scheduler start
  go run ./cmd/analyst scheduler run nightly_review
  go run ./cmd/analyst knowledge stats
  go run ./cmd/analyst export`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}
