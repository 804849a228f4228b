package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/opcode-dev/opcode-index/internal/chunktype"
)

// SearchCommand holds flags for the search command.
type SearchCommand struct {
	path       string
	configFile string
	chunkTypes []string
	limit      int
}

// NewSearchCommand creates the command that searches indexed chunk content.
func NewSearchCommand() *cobra.Command {
	sc := &SearchCommand{}

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search indexed chunk content",
		Args:  cobra.ExactArgs(1),
		RunE:  sc.run,
	}

	cmd.Flags().StringVarP(&sc.path, "path", "p", ".", "Project root")
	cmd.Flags().StringVar(&sc.configFile, "config", "", "Configuration file path")
	cmd.Flags().StringSliceVar(&sc.chunkTypes, "types", nil, "Restrict to these chunk types")
	cmd.Flags().IntVar(&sc.limit, "limit", 20, "Maximum results (0 = unlimited)")

	return cmd
}

func (sc *SearchCommand) run(cmd *cobra.Command, args []string) error {
	e, err := openEngine(sc.path, sc.configFile)
	if err != nil {
		return err
	}
	defer e.Close()

	var types []chunktype.Chunk
	for _, t := range sc.chunkTypes {
		types = append(types, chunktype.Chunk(t))
	}

	rows, err := e.SearchChunks(args[0], types, sc.limit)
	if err != nil {
		return fmt.Errorf("search chunks: %w", err)
	}

	for _, row := range rows {
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", row.ChunkType, row.FilePath, truncate(row.Content, 80))
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%d result(s)\n", len(rows))

	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}

	return s[:n] + "..."
}
