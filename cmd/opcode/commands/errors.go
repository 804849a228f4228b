package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

// NewErrorsCommand creates the errors command group.
func NewErrorsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "errors",
		Short: "Inspect and resolve logged extraction errors",
	}

	cmd.AddCommand(newErrorsListCommand())
	cmd.AddCommand(newErrorsResolveCommand())

	return cmd
}

func newErrorsListCommand() *cobra.Command {
	var (
		path, configFile string
		unresolvedOnly   bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List error log entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEngine(path, configFile)
			if err != nil {
				return err
			}
			defer e.Close()

			var isResolved *bool

			if unresolvedOnly {
				v := false
				isResolved = &v
			}

			logs, err := e.GetProjectErrors(isResolved)
			if err != nil {
				return fmt.Errorf("list errors: %w", err)
			}

			for _, entry := range logs {
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%s\t%s\t(x%d)\n", entry.ID, entry.ErrorType, entry.File, entry.Message, entry.OccurrenceCount)
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&path, "path", "p", ".", "Project root")
	cmd.Flags().StringVar(&configFile, "config", "", "Configuration file path")
	cmd.Flags().BoolVar(&unresolvedOnly, "unresolved", false, "Show only unresolved errors")

	return cmd
}

func newErrorsResolveCommand() *cobra.Command {
	var path, configFile string

	cmd := &cobra.Command{
		Use:   "resolve <error-id>",
		Short: "Mark an error log entry resolved",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("parse error id: %w", err)
			}

			e, err := openEngine(path, configFile)
			if err != nil {
				return err
			}
			defer e.Close()

			if err := e.ResolveError(id); err != nil {
				return fmt.Errorf("resolve error: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "resolved error %d\n", id)

			return nil
		},
	}

	cmd.Flags().StringVarP(&path, "path", "p", ".", "Project root")
	cmd.Flags().StringVar(&configFile, "config", "", "Configuration file path")

	return cmd
}
