package snapshot

import (
	"context"
	"fmt"

	"github.com/opcode-dev/opcode-index/internal/chunktype"
	"github.com/opcode-dev/opcode-index/internal/storage"
	"github.com/opcode-dev/opcode-index/pkg/gitlib"
)

// RewindMasterToSnapshot hard-resets the working copy's main branch to a
// prior master snapshot's commit and deletes master Snapshot rows for
// versions after it. Agent rows and their branches are never touched,
// so any agent timeline rooted at a now-unreachable master remains
// navigable (S4).
func RewindMasterToSnapshot(repo *gitlib.Repository, store *storage.Store, project string, snapshotID int64) error {
	snap, err := store.GetSnapshot(snapshotID)
	if err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}

	if snap.SnapshotType != chunktype.Master {
		return fmt.Errorf("rewind target %d is not a master snapshot", snapshotID)
	}

	if snap.GitCommitHash == "" {
		return fmt.Errorf("master snapshot %d has no git commit hash", snapshotID)
	}

	hash := gitlib.NewHash(snap.GitCommitHash)

	commit, err := repo.LookupCommit(context.Background(), hash)
	if err != nil {
		return fmt.Errorf("lookup snapshot commit: %w", err)
	}
	defer commit.Free()

	if err := repo.CheckoutBranch(MasterBranch); err != nil {
		return fmt.Errorf("checkout master branch: %w", err)
	}

	if err := repo.HardReset(commit); err != nil {
		return fmt.Errorf("hard reset to snapshot commit: %w", err)
	}

	if err := store.DeleteMasterSnapshotsAfter(project, snap.VersionMajor); err != nil {
		return fmt.Errorf("delete master snapshots after rewind target: %w", err)
	}

	return nil
}
