package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/opcode-dev/opcode-index/internal/chunktype"
	"github.com/opcode-dev/opcode-index/internal/orchestrator"
)

// IndexCommand holds flags for the index command.
type IndexCommand struct {
	path       string
	configFile string
	chunkTypes []string
}

// NewIndexCommand creates the command that runs a full indexing pass.
func NewIndexCommand() *cobra.Command {
	ic := &IndexCommand{}

	cmd := &cobra.Command{
		Use:   "index [path]",
		Short: "Process a project and upsert its chunks",
		Args:  cobra.MaximumNArgs(1),
		RunE:  ic.run,
	}

	cmd.Flags().StringVarP(&ic.path, "path", "p", ".", "Project root to index")
	cmd.Flags().StringVar(&ic.configFile, "config", "", "Configuration file path")
	cmd.Flags().StringSliceVar(&ic.chunkTypes, "types", nil, "Restrict to these chunk types (default: the configured chunking.chunk_types)")

	return cmd
}

func (ic *IndexCommand) run(cmd *cobra.Command, args []string) error {
	if len(args) == 1 {
		ic.path = args[0]
	}

	e, err := openEngine(ic.path, ic.configFile)
	if err != nil {
		return err
	}
	defer e.Close()

	var opts *orchestrator.Options

	if len(ic.chunkTypes) > 0 {
		types := make([]chunktype.Chunk, 0, len(ic.chunkTypes))
		for _, t := range ic.chunkTypes {
			types = append(types, chunktype.Chunk(t))
		}

		effective := e.Config.Chunking
		effective.ChunkTypes = types
		opts = &effective
	}

	result, err := e.ProcessProjectChunks(cmd.Context(), opts)
	if err != nil {
		return fmt.Errorf("process project: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "visited %d files, upserted %d chunks (%d new), %d extractor errors\n",
		result.FilesVisited, result.ChunksUpserted, result.ChunksCreated, len(result.Errors))

	for _, extractorErr := range result.Errors {
		fmt.Fprintf(cmd.OutOrStderr(), "  %v\n", extractorErr)
	}

	return nil
}
