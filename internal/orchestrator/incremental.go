package orchestrator

import (
	"context"
	"os"
	"path/filepath"

	"github.com/opcode-dev/opcode-index/internal/cache"
	"github.com/opcode-dev/opcode-index/internal/chunktype"
	"github.com/opcode-dev/opcode-index/internal/extract"
	"github.com/opcode-dev/opcode-index/internal/observability"
	"github.com/opcode-dev/opcode-index/internal/storage"
)

// ReindexChangedFiles regenerates chunks for a specific set of paths,
// tagging every resulting chunk with snapshotID so it links back to the
// snapshot that triggered the reindex (spec §4.4 "Incremental"). Paths
// that no longer exist on disk are treated as deletions and skipped.
func ReindexChangedFiles(ctx context.Context, store *storage.Store, metrics *observability.IndexMetrics, project, projectRoot string, changedFiles []string, snapshotID *int64, opts Options) *Result {
	result := &Result{}
	seen := cache.NewHashSet[string]()

	for _, relPath := range changedFiles {
		absPath := filepath.Join(projectRoot, relPath)

		content, err := os.ReadFile(absPath)
		if err != nil {
			continue // deleted or unreadable; not an extractor failure (spec §4.4).
		}

		result.FilesVisited++

		if enabled(opts, chunktype.RawSource) {
			if chunk, ok := extract.RawSource(project, relPath, content, opts.IgnorePatterns); ok {
				upsert(ctx, store, metrics, result, seen, "raw_source", relPath, chunk, snapshotID)
			}
		}

		if enabled(opts, chunktype.AST) {
			chunk, ok, astErr := extract.AST(project, relPath, content)
			if astErr != nil {
				recordFailure(ctx, store, metrics, result, project, "ast", relPath, astErr)
			} else if ok {
				upsert(ctx, store, metrics, result, seen, "ast", relPath, chunk, snapshotID)
			}
		}

		if enabled(opts, chunktype.CallGraph) {
			if chunk, ok := extract.CallGraph(project, relPath, content); ok {
				upsert(ctx, store, metrics, result, seen, "callgraph", relPath, chunk, snapshotID)
			}
		}

		if enabled(opts, chunktype.Tests) {
			if chunk, ok := extract.Tests(project, relPath, content); ok {
				upsert(ctx, store, metrics, result, seen, "tests", relPath, chunk, snapshotID)
			}
		}

		if enabled(opts, chunktype.StateConfig) {
			if chunk, ok := extract.Config(project, relPath, content); ok {
				upsert(ctx, store, metrics, result, seen, "config", relPath, chunk, snapshotID)
			}
		}

		if enabled(opts, chunktype.ProjectMeta) {
			if chunk, ok := extract.Metadata(project, relPath, content); ok {
				upsert(ctx, store, metrics, result, seen, "project_metadata", relPath, chunk, snapshotID)
			}
		}
	}

	return result
}
