// Package commands wires the CLI surface of issue-checker.
package commands

import (
	"github.com/spf13/cobra"
)

var verbose bool

// rootCmd is the base command.
var rootCmd = &cobra.Command{
	Use:   "issue-checker",
	Short: "Label and comment issues from declarative rules",
	Long: `issue-checker evaluates a declarative rule configuration against the
triggering GitHub event and applies the resulting label and comment actions.
It is designed to run once per event inside a GitHub Actions job.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
