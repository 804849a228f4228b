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

// CreateMasterSnapshot stages the working tree, commits it to the master
// branch authored by the configured user signature, tags it "v{major}",
// and records a master Snapshot row. It is the only way new master
// versions are created; master history is strictly linear.
func CreateMasterSnapshot(repo *gitlib.Repository, store *storage.Store, project, userMessage string, userSig config.GitSignature) (model.Snapshot, error) {
	major, err := NextMasterVersion(store, project)
	if err != nil {
		return model.Snapshot{}, err
	}

	head, err := repo.Head()
	if err != nil {
		return model.Snapshot{}, fmt.Errorf("read HEAD: %w", err)
	}

	var (
		oldTree   *gitlib.Tree
		headCommit *gitlib.Commit
	)

	if !head.IsZero() {
		headCommit, err = repo.LookupCommit(context.Background(), head)
		if err != nil {
			return model.Snapshot{}, fmt.Errorf("lookup HEAD commit: %w", err)
		}
		defer headCommit.Free()

		oldTree, err = headCommit.Tree()
		if err != nil {
			return model.Snapshot{}, fmt.Errorf("read HEAD tree: %w", err)
		}
		defer oldTree.Free()
	}

	newTree, err := repo.StageAll()
	if err != nil {
		return model.Snapshot{}, fmt.Errorf("stage working tree: %w", err)
	}
	defer newTree.Free()

	changedFiles, err := ChangedFiles(repo, oldTree, newTree)
	if err != nil {
		return model.Snapshot{}, err
	}

	diffSummary, err := DiffSummary(repo, oldTree, newTree)
	if err != nil {
		return model.Snapshot{}, err
	}

	sig := gitlib.Signature{Name: userSig.Name, Email: userSig.Email, When: time.Now()}

	var parents []*gitlib.Commit
	if headCommit != nil {
		parents = append(parents, headCommit)
	}

	message := fmt.Sprintf("Master snapshot V%d: %s", major, userMessage)

	commit, err := repo.CreateCommit("refs/heads/"+MasterBranch, sig, sig, message, newTree, parents...)
	if err != nil {
		return model.Snapshot{}, fmt.Errorf("commit master snapshot: %w", err)
	}
	defer commit.Free()

	if err := repo.CheckoutBranch(MasterBranch); err != nil {
		return model.Snapshot{}, fmt.Errorf("checkout master branch: %w", err)
	}

	tag := MasterTag(major)

	if err := repo.CreateLightweightTag(tag, commit); err != nil {
		return model.Snapshot{}, fmt.Errorf("tag master snapshot: %w", err)
	}

	snap := &model.Snapshot{
		Project:       project,
		SnapshotType:  chunktype.Master,
		UserMessage:   userMessage,
		ChangedFiles:  changedFiles,
		DiffSummary:   diffSummary,
		GitCommitHash: commit.Hash().String(),
		GitTag:        tag,
		GitBranch:     MasterBranch,
		VersionMajor:  major,
	}

	if err := store.CreateSnapshot(snap); err != nil {
		return model.Snapshot{}, fmt.Errorf("persist snapshot row: %w", err)
	}

	return *snap, nil
}
