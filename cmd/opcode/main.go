// Package main provides the entry point for the opcode CLI tool.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/opcode-dev/opcode-index/cmd/opcode/commands"
	"github.com/opcode-dev/opcode-index/pkg/version"
)

var (
	verbose bool
	quiet   bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "opcode",
		Short: "Opcode project-knowledge indexing engine",
		Long: `Opcode maintains a content-addressed index of a project alongside a
dual-timeline snapshot history.

Commands:
  index     Process a project and upsert its chunks
  search    Search indexed chunk content
  snapshot  Create, list, and rewind master/agent snapshots
  rules     Manage proposed business rules
  errors    Inspect and resolve logged extraction errors`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			if quiet {
				cmd.Root().SetOut(io.Discard)
			}
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (has no effect on any command's output)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress standard output (errors are still printed)")

	rootCmd.AddCommand(commands.NewIndexCommand())
	rootCmd.AddCommand(commands.NewSearchCommand())
	rootCmd.AddCommand(commands.NewSnapshotCommand())
	rootCmd.AddCommand(commands.NewRulesCommand())
	rootCmd.AddCommand(commands.NewErrorsCommand())
	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "opcode %s (commit: %s, built: %s)\n", version.Version, version.Commit, version.Date)
		},
	}
}
