package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/opcode-dev/opcode-index/internal/chunktype"
)

// NewSnapshotCommand creates the snapshot command group.
func NewSnapshotCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Create, list, and rewind master/agent snapshots",
	}

	cmd.AddCommand(newSnapshotMasterCommand())
	cmd.AddCommand(newSnapshotAgentCommand())
	cmd.AddCommand(newSnapshotListCommand())
	cmd.AddCommand(newSnapshotRewindCommand())

	return cmd
}

func newSnapshotMasterCommand() *cobra.Command {
	var path, configFile string

	cmd := &cobra.Command{
		Use:   "master <message>",
		Short: "Create a master snapshot and reindex the files it changed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEngine(path, configFile)
			if err != nil {
				return err
			}
			defer e.Close()

			snap, result, err := e.CreateMasterSnapshot(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("create master snapshot: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "created master snapshot v%d (%s), reindexed %d files\n",
				snap.VersionMajor, snap.GitCommitHash, result.FilesVisited)

			return nil
		},
	}

	cmd.Flags().StringVarP(&path, "path", "p", ".", "Project root")
	cmd.Flags().StringVar(&configFile, "config", "", "Configuration file path")

	return cmd
}

func newSnapshotAgentCommand() *cobra.Command {
	var (
		path, configFile string
		changedFiles     []string
	)

	cmd := &cobra.Command{
		Use:   "agent <parent-master-id> <message>",
		Short: "Branch an agent snapshot off a master snapshot and reindex",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("parse parent master id: %w", err)
			}

			e, err := openEngine(path, configFile)
			if err != nil {
				return err
			}
			defer e.Close()

			var override []string
			if cmd.Flags().Changed("changed-files") {
				override = changedFiles
			}

			snap, result, err := e.CreateAgentSnapshot(cmd.Context(), id, args[1], override)
			if err != nil {
				return fmt.Errorf("create agent snapshot: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "created agent snapshot v%d.%d (%s), reindexed %d files\n",
				snap.VersionMajor, *snap.VersionMinor, snap.GitCommitHash, result.FilesVisited)

			return nil
		},
	}

	cmd.Flags().StringVarP(&path, "path", "p", ".", "Project root")
	cmd.Flags().StringVar(&configFile, "config", "", "Configuration file path")
	cmd.Flags().StringSliceVar(&changedFiles, "changed-files", nil, "Override the changed-file list used for reindexing")

	return cmd
}

func newSnapshotListCommand() *cobra.Command {
	var path, configFile, kind string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List snapshots",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEngine(path, configFile)
			if err != nil {
				return err
			}
			defer e.Close()

			var kindFilter *chunktype.SnapshotKind

			if kind != "" {
				k := chunktype.SnapshotKind(kind)
				kindFilter = &k
			}

			snaps, err := e.GetProjectSnapshots(kindFilter)
			if err != nil {
				return fmt.Errorf("list snapshots: %w", err)
			}

			for _, snap := range snaps {
				if snap.SnapshotType == chunktype.Agent && snap.VersionMinor != nil {
					fmt.Fprintf(cmd.OutOrStdout(), "%d\tagent\tv%d.%d\t%s\n", snap.ID, snap.VersionMajor, *snap.VersionMinor, snap.GitCommitHash)
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "%d\tmaster\tv%d\t%s\n", snap.ID, snap.VersionMajor, snap.GitCommitHash)
				}
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&path, "path", "p", ".", "Project root")
	cmd.Flags().StringVar(&configFile, "config", "", "Configuration file path")
	cmd.Flags().StringVar(&kind, "type", "", "Restrict to master or agent")

	return cmd
}

func newSnapshotRewindCommand() *cobra.Command {
	var path, configFile string

	cmd := &cobra.Command{
		Use:   "rewind <snapshot-id>",
		Short: "Reset the master timeline to a prior master snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("parse snapshot id: %w", err)
			}

			e, err := openEngine(path, configFile)
			if err != nil {
				return err
			}
			defer e.Close()

			if err := e.RewindMasterToSnapshot(cmd.Context(), id); err != nil {
				return fmt.Errorf("rewind master: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "rewound master timeline to snapshot %d\n", id)

			return nil
		},
	}

	cmd.Flags().StringVarP(&path, "path", "p", ".", "Project root")
	cmd.Flags().StringVar(&configFile, "config", "", "Configuration file path")

	return cmd
}
