package orchestrator

import (
	"context"
	"fmt"

	"github.com/opcode-dev/opcode-index/internal/cache"
	"github.com/opcode-dev/opcode-index/internal/chunktype"
	"github.com/opcode-dev/opcode-index/internal/extract"
	"github.com/opcode-dev/opcode-index/internal/model"
	"github.com/opcode-dev/opcode-index/internal/observability"
	"github.com/opcode-dev/opcode-index/internal/storage"
)

// ProcessProject runs a full indexing pass over project: one VCS-ignore-aware
// walk that reads each file once and routes it through the raw-source,
// AST, call-graph, tests, config and metadata extractors enabled in
// opts.ChunkTypes, then a commit-history pass bounded by opts.MaxCommits
// (spec §4.4 "Full"). Each extractor failure is
// logged and appended to the result's Errors but never aborts the run.
func ProcessProject(ctx context.Context, store *storage.Store, metrics *observability.IndexMetrics, project, projectRoot string, opts Options) (*Result, error) {
	result := &Result{}
	seen := cache.NewHashSet[string]()

	walkErr := extract.Walk(projectRoot, func(relPath string, content []byte) error {
		result.FilesVisited++
		processFile(ctx, store, metrics, result, seen, project, relPath, content, opts)

		return nil
	})
	if walkErr != nil {
		return result, fmt.Errorf("walk project: %w", walkErr)
	}

	if enabled(opts, chunktype.CommitHistory) {
		processCommitHistory(ctx, store, metrics, result, seen, project, projectRoot, opts)
	}

	return result, nil
}

func processFile(ctx context.Context, store *storage.Store, metrics *observability.IndexMetrics, result *Result, seen *cache.HashSet[string], project, relPath string, content []byte, opts Options) {
	if enabled(opts, chunktype.RawSource) {
		if chunk, ok := extract.RawSource(project, relPath, content, opts.IgnorePatterns); ok {
			upsert(ctx, store, metrics, result, seen, "raw_source", relPath, chunk, nil)
		}
	}

	if enabled(opts, chunktype.AST) {
		chunk, ok, err := extract.AST(project, relPath, content)
		if err != nil {
			recordFailure(ctx, store, metrics, result, project, "ast", relPath, err)
		} else if ok {
			upsert(ctx, store, metrics, result, seen, "ast", relPath, chunk, nil)
		}
	}

	if enabled(opts, chunktype.CallGraph) {
		if chunk, ok := extract.CallGraph(project, relPath, content); ok {
			upsert(ctx, store, metrics, result, seen, "callgraph", relPath, chunk, nil)
		}
	}

	if enabled(opts, chunktype.Tests) {
		if chunk, ok := extract.Tests(project, relPath, content); ok {
			upsert(ctx, store, metrics, result, seen, "tests", relPath, chunk, nil)
		}
	}

	if enabled(opts, chunktype.StateConfig) {
		if chunk, ok := extract.Config(project, relPath, content); ok {
			upsert(ctx, store, metrics, result, seen, "config", relPath, chunk, nil)
		}
	}

	if enabled(opts, chunktype.ProjectMeta) {
		if chunk, ok := extract.Metadata(project, relPath, content); ok {
			upsert(ctx, store, metrics, result, seen, "project_metadata", relPath, chunk, nil)
		}
	}
}

func processCommitHistory(ctx context.Context, store *storage.Store, metrics *observability.IndexMetrics, result *Result, seen *cache.HashSet[string], project, projectRoot string, opts Options) {
	chunks, err := extract.CommitHistory(project, projectRoot, opts.MaxCommits)
	if err != nil {
		recordFailure(ctx, store, metrics, result, project, "commit_history", "", err)

		return
	}

	for _, chunk := range chunks {
		upsert(ctx, store, metrics, result, seen, "commit_history", "", chunk, nil)
	}
}

// upsert writes chunk to storage unless its content hash was already
// upserted earlier in this run: the walk and the commit-history pass can
// both surface byte-identical content (a vendored copy of a file, a commit
// whose diff reproduces a still-current blob), and skipping the repeat
// spares a redundant round trip to storage's own hash lookup.
func upsert(ctx context.Context, store *storage.Store, metrics *observability.IndexMetrics, result *Result, seen *cache.HashSet[string], extractor, file string, chunk *model.Chunk, snapshotID *int64) {
	if chunk.ContentHash != "" && !seen.Add(chunk.ContentHash) {
		return
	}

	created, err := store.UpsertChunk(chunk, snapshotID)
	if err != nil {
		recordFailure(ctx, store, metrics, result, chunk.Project, extractor, file, err)

		return
	}

	result.ChunksUpserted++

	if created {
		result.ChunksCreated++
	}

	metrics.RecordChunksUpserted(ctx, 1)
}

func recordFailure(ctx context.Context, store *storage.Store, metrics *observability.IndexMetrics, result *Result, project, extractor, file string, err error) {
	result.addError(extractor, file, err)
	metrics.RecordExtractorError(ctx, extractor)

	logErr := store.UpsertErrorLog(&model.ErrorLog{
		Project:   project,
		File:      file,
		ErrorType: "extractor_failure",
		Message:   fmt.Sprintf("%s: %v", extractor, err),
	})
	if logErr != nil {
		result.addError("error_log", file, logErr)
	}
}
