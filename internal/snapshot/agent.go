package snapshot

import (
	"context"
	"fmt"
	"time"

	"github.com/opcode-dev/opcode-index/internal/chunktype"
	"github.com/opcode-dev/opcode-index/internal/config"
	"github.com/opcode-dev/opcode-index/internal/model"
	"github.com/opcode-dev/opcode-index/internal/storage"
	"github.com/opcode-dev/opcode-index/pkg/gitlib"
)

// CreateAgentSnapshot branches agent/v{major}.{minor} off parentMaster's
// commit, checks it out, commits the working tree onto it, tags it, then
// returns HEAD to main. Agent history branches off master and never moves
// master's own ref.
func CreateAgentSnapshot(repo *gitlib.Repository, store *storage.Store, project string, parentMaster model.Snapshot, message string, agentSig config.GitSignature) (model.Snapshot, error) {
	if parentMaster.SnapshotType != chunktype.Master {
		return model.Snapshot{}, fmt.Errorf("agent snapshot parent must be a master snapshot, got %q", parentMaster.SnapshotType)
	}

	if parentMaster.GitCommitHash == "" {
		return model.Snapshot{}, fmt.Errorf("master snapshot %d has no git commit hash", parentMaster.ID)
	}

	minor, err := NextAgentVersion(store, project, parentMaster.VersionMajor)
	if err != nil {
		return model.Snapshot{}, err
	}

	parentHash := gitlib.NewHash(parentMaster.GitCommitHash)

	parentCommit, err := repo.LookupCommit(context.Background(), parentHash)
	if err != nil {
		return model.Snapshot{}, fmt.Errorf("lookup parent master commit: %w", err)
	}
	defer parentCommit.Free()

	parentTree, err := parentCommit.Tree()
	if err != nil {
		return model.Snapshot{}, fmt.Errorf("read parent master tree: %w", err)
	}
	defer parentTree.Free()

	branch := AgentBranch(parentMaster.VersionMajor, minor)

	if err := repo.CreateBranch(branch, parentCommit); err != nil {
		return model.Snapshot{}, fmt.Errorf("create agent branch: %w", err)
	}

	if err := repo.CheckoutBranch(branch); err != nil {
		return model.Snapshot{}, fmt.Errorf("checkout agent branch: %w", err)
	}

	newTree, err := repo.StageAll()
	if err != nil {
		return model.Snapshot{}, fmt.Errorf("stage working tree: %w", err)
	}
	defer newTree.Free()

	changedFiles, err := ChangedFiles(repo, parentTree, newTree)
	if err != nil {
		return model.Snapshot{}, err
	}

	diffSummary, err := DiffSummary(repo, parentTree, newTree)
	if err != nil {
		return model.Snapshot{}, err
	}

	sig := gitlib.Signature{Name: agentSig.Name, Email: agentSig.Email, When: time.Now()}
	commitMessage := fmt.Sprintf("Agent snapshot V%d.%d: %s", parentMaster.VersionMajor, minor, message)

	commit, err := repo.CreateCommit("refs/heads/"+branch, sig, sig, commitMessage, newTree, parentCommit)
	if err != nil {
		return model.Snapshot{}, fmt.Errorf("commit agent snapshot: %w", err)
	}
	defer commit.Free()

	tag := AgentTag(parentMaster.VersionMajor, minor)

	if err := repo.CreateLightweightTag(tag, commit); err != nil {
		return model.Snapshot{}, fmt.Errorf("tag agent snapshot: %w", err)
	}

	if err := repo.CheckoutBranch(MasterBranch); err != nil {
		return model.Snapshot{}, fmt.Errorf("return HEAD to master: %w", err)
	}

	parentID := parentMaster.ID
	minorCopy := minor

	snap := &model.Snapshot{
		Project:          project,
		SnapshotType:     chunktype.Agent,
		ParentSnapshotID: &parentID,
		ChangedFiles:     changedFiles,
		DiffSummary:      diffSummary,
		GitCommitHash:    commit.Hash().String(),
		GitTag:           tag,
		GitBranch:        branch,
		VersionMajor:     parentMaster.VersionMajor,
		VersionMinor:     &minorCopy,
	}

	if err := store.CreateSnapshot(snap); err != nil {
		return model.Snapshot{}, fmt.Errorf("persist snapshot row: %w", err)
	}

	return *snap, nil
}
