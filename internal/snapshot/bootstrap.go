package snapshot

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/opcode-dev/opcode-index/internal/config"
	"github.com/opcode-dev/opcode-index/pkg/gitlib"
)

// EnsureGitInitialized opens the Git repository at projectRoot, initializing
// one with an empty root commit on the master branch if none exists yet.
// The root commit is authored by the agent signature, matching the Git
// bootstrap a fresh project needs before any snapshot can be created.
func EnsureGitInitialized(projectRoot string, agentSig config.GitSignature) (*gitlib.Repository, error) {
	if isGitRepo(projectRoot) {
		return gitlib.OpenRepository(projectRoot)
	}

	repo, err := gitlib.InitRepository(projectRoot)
	if err != nil {
		return nil, fmt.Errorf("initialize repository: %w", err)
	}

	tree, err := repo.EmptyTree()
	if err != nil {
		return nil, fmt.Errorf("build empty tree: %w", err)
	}
	defer tree.Free()

	sig := gitlib.Signature{Name: agentSig.Name, Email: agentSig.Email, When: time.Now()}

	commit, err := repo.CreateCommit("HEAD", sig, sig, "chore: initialize opcode chunking system", tree)
	if err != nil {
		return nil, fmt.Errorf("create root commit: %w", err)
	}
	defer commit.Free()

	if err := repo.CreateBranch(MasterBranch, commit); err != nil {
		return nil, fmt.Errorf("create master branch: %w", err)
	}

	if err := repo.CheckoutBranch(MasterBranch); err != nil {
		return nil, fmt.Errorf("checkout master branch: %w", err)
	}

	return repo, nil
}

func isGitRepo(path string) bool {
	_, err := os.Stat(filepath.Join(path, ".git"))

	return err == nil
}
