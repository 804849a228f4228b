// Package engine is the single entry point an RPC or CLI host binds
// against. It wires storage, extraction, the snapshot subsystem, and the
// orchestrator behind the command surface spec.md §6 names.
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/opcode-dev/opcode-index/internal/chunktype"
	"github.com/opcode-dev/opcode-index/internal/config"
	"github.com/opcode-dev/opcode-index/internal/model"
	"github.com/opcode-dev/opcode-index/internal/observability"
	"github.com/opcode-dev/opcode-index/internal/orchestrator"
	"github.com/opcode-dev/opcode-index/internal/snapshot"
	"github.com/opcode-dev/opcode-index/internal/storage"
	"github.com/opcode-dev/opcode-index/pkg/gitlib"
)

// Engine owns a project's storage handle and Git working copy and exposes
// every operation of the command surface. Callers are responsible for
// serializing calls against a single Engine per project (§5 concurrency
// model): the core itself takes no lock.
type Engine struct {
	Project     string
	ProjectRoot string
	Store       *storage.Store
	Repo        *gitlib.Repository
	Metrics     *observability.IndexMetrics
	Config      config.Config
}

// Open prepares an Engine for project, opening (or bootstrapping) its
// SQLite store and Git working copy.
func Open(project, projectRoot string, cfg config.Config, metrics *observability.IndexMetrics) (*Engine, error) {
	dbPath := config.DBPathRelativeTo(projectRoot, cfg.DBPath)

	store, err := storage.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}

	repo, err := snapshot.EnsureGitInitialized(projectRoot, cfg.AgentSignature)
	if err != nil {
		store.Close()

		return nil, fmt.Errorf("initialize git: %w", err)
	}

	return &Engine{
		Project:     project,
		ProjectRoot: projectRoot,
		Store:       store,
		Repo:        repo,
		Metrics:     metrics,
		Config:      cfg,
	}, nil
}

// Close releases the engine's storage and Git handles.
func (e *Engine) Close() error {
	e.Repo.Free()

	return e.Store.Close()
}

// ProcessProjectChunks runs a full indexing pass using opts, or the
// engine's configured defaults if opts is nil.
func (e *Engine) ProcessProjectChunks(ctx context.Context, opts *orchestrator.Options) (*orchestrator.Result, error) {
	effective := e.Config.Chunking
	if opts != nil {
		effective = *opts
	}

	start := time.Now()

	result, err := orchestrator.ProcessProject(ctx, e.Store, e.Metrics, e.Project, e.ProjectRoot, effective)
	e.Metrics.RecordReindexDuration(ctx, time.Since(start))

	return result, err
}

// SearchChunks finds chunks whose content matches query, optionally
// restricted to chunkTypes.
func (e *Engine) SearchChunks(query string, chunkTypes []chunktype.Chunk, limit int) ([]model.Chunk, error) {
	return e.Store.SearchChunks(e.Project, query, chunkTypes, limit)
}

// GetPendingBusinessRules lists business rules awaiting human validation.
func (e *Engine) GetPendingBusinessRules() ([]model.BusinessRule, error) {
	return e.Store.GetPendingBusinessRules(e.Project)
}

// ValidateBusinessRule records a human's description and optional
// correction for a previously proposed rule.
func (e *Engine) ValidateBusinessRule(id int64, description, userCorrection string) error {
	return e.Store.ValidateBusinessRule(id, description, userCorrection)
}

// ProposeBusinessRule inserts an unvalidated, AI-authored rule row.
func (e *Engine) ProposeBusinessRule(entity, file, aiInterpretation string) (int64, error) {
	return e.Store.ProposeBusinessRule(e.Project, entity, file, aiInterpretation)
}

// GetProjectSnapshots lists snapshots for the project, optionally
// restricted to a timeline kind.
func (e *Engine) GetProjectSnapshots(kind *chunktype.SnapshotKind) ([]model.Snapshot, error) {
	return e.Store.GetSnapshots(e.Project, kind)
}

// GetProjectErrors lists error logs for the project, optionally
// restricted by resolution state.
func (e *Engine) GetProjectErrors(isResolved *bool) ([]model.ErrorLog, error) {
	return e.Store.GetErrorLogs(storage.ErrorLogFilter{Project: e.Project, IsResolved: isResolved})
}

// ResolveError marks an error log resolved.
func (e *Engine) ResolveError(id int64) error {
	return e.Store.ResolveError(id)
}

// LogError records a new error occurrence (or bumps an existing
// unresolved one) for the project. Error logging never fails its caller:
// a storage failure while recording is dropped, so the result is always nil.
func (e *Engine) LogError(file, entity, errorType, message, stacktrace string, snapshotID *int64) error {
	_ = e.Store.UpsertErrorLog(&model.ErrorLog{
		Project:    e.Project,
		SnapshotID: snapshotID,
		File:       file,
		Entity:     entity,
		ErrorType:  errorType,
		Message:    message,
		Stacktrace: stacktrace,
	})

	return nil
}

// CreateMasterSnapshot commits the working tree to the linear master
// timeline and triggers an incremental reindex over the resulting
// changed-file list, tagged with the new snapshot's id. Reindex failures
// are logged but never mask the snapshot id (spec §4.3/§4.4).
func (e *Engine) CreateMasterSnapshot(ctx context.Context, userMessage string) (model.Snapshot, *orchestrator.Result, error) {
	snap, err := snapshot.CreateMasterSnapshot(e.Repo, e.Store, e.Project, userMessage, e.Config.UserSignature)
	if err != nil {
		return model.Snapshot{}, nil, err
	}

	e.Metrics.RecordSnapshotCreated(ctx, "master")

	result := orchestrator.ReindexChangedFiles(ctx, e.Store, e.Metrics, e.Project, e.ProjectRoot, snap.ChangedFiles, &snap.ID, e.Config.Chunking)

	return snap, result, nil
}

// CreateAgentSnapshot branches an agent snapshot off parentMasterID and
// triggers an incremental reindex over changedFiles (the caller's
// explicit override of the live diff result, per spec §4.3).
func (e *Engine) CreateAgentSnapshot(ctx context.Context, parentMasterID int64, message string, changedFiles []string) (model.Snapshot, *orchestrator.Result, error) {
	parent, err := e.Store.GetSnapshot(parentMasterID)
	if err != nil {
		return model.Snapshot{}, nil, fmt.Errorf("load parent master snapshot: %w", err)
	}

	snap, err := snapshot.CreateAgentSnapshot(e.Repo, e.Store, e.Project, parent, message, e.Config.AgentSignature)
	if err != nil {
		return model.Snapshot{}, nil, err
	}

	e.Metrics.RecordSnapshotCreated(ctx, "agent")

	effectiveChanged := changedFiles
	if effectiveChanged == nil {
		effectiveChanged = snap.ChangedFiles
	}

	result := orchestrator.ReindexChangedFiles(ctx, e.Store, e.Metrics, e.Project, e.ProjectRoot, effectiveChanged, &snap.ID, e.Config.Chunking)

	return snap, result, nil
}

// RewindMasterToSnapshot resets the master timeline (Git and DB) to a
// prior master snapshot, preserving every agent row and branch (S4).
func (e *Engine) RewindMasterToSnapshot(ctx context.Context, snapshotID int64) error {
	if err := snapshot.RewindMasterToSnapshot(e.Repo, e.Store, e.Project, snapshotID); err != nil {
		return err
	}

	e.Metrics.RecordRewind(ctx)

	return nil
}
