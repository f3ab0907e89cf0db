// Package cli wires the faildex commands: signature extraction,
// candidate ranking, rule discovery, feedback capture and model
// training.
package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

var (
	cfgFile   string
	verbose   bool
	noColor   bool
	outputFmt string
)

// NewRootCommand creates the root command.
func NewRootCommand(version, commit, date string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "faildex",
		Short: "Failure signature extraction and solution ranking",
		Long: `faildex scans regression logs for the line that best explains a
failure, classifies it against a rule catalog, and ranks known issues by
how well they match the failure signature.

It learns from triage feedback: reviewed matches train a relevance model
that re-ranks future candidates, and recurring unmatched errors are
proposed as new catalog rules.`,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().StringVarP(&outputFmt, "output", "o", "", "output format (text, json, markdown, csv)")

	// Subcommands
	rootCmd.AddCommand(newAnalyzeCommand())
	rootCmd.AddCommand(newRankCommand())
	rootCmd.AddCommand(newDiscoverCommand())
	rootCmd.AddCommand(newTrainCommand())
	rootCmd.AddCommand(newFeedbackCommand())
	rootCmd.AddCommand(newRulesCommand())
	rootCmd.AddCommand(newConfigCommand())
	rootCmd.AddCommand(newVersionCommand(version, commit, date))

	return rootCmd
}

func newVersionCommand(version, commit, date string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			if version == "dev" || version == "" {
				version = "development"
			}
			if commit == "none" || commit == "" {
				commit = "local-build"
			}
			if date == "unknown" || date == "" {
				date = "local-build"
			}
			fmt.Printf("faildex %s (%s) built on %s\n", version, commit, date)
			fmt.Printf("Go version: %s\n", runtime.Version())
			fmt.Printf("OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	}
}

// Global helpers
func isVerbose() bool {
	return verbose
}
