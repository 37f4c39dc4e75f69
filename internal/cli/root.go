// Package cli implements the gosniff command line interface.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/gosniff/gosniff/pkg/version"
)

var rootCmd = &cobra.Command{
	Use:   "gosniff",
	Short: "gosniff - function call profiling for Go programs",
	Long: `Inspect what a traced program ran, with what inputs, for how long,
consuming how much.

Programs instrument functions with the gosniff/pkg/sniff API and run tracing
sessions that write a JSON call report. This CLI works with those reports:

- gosniff report: summarize a recorded session
- gosniff version: show build information`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(NewReportCmd())
	rootCmd.AddCommand(newVersionCmd())
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Printf("gosniff version %s\n", version.Version)
			cmd.Printf("Git commit: %s\n", version.GitCommit)
			cmd.Printf("Build date: %s\n", version.BuildDate)
			cmd.Printf("Go version: %s\n", version.GoVersion)
		},
	}
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}
