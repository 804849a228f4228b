package gitlib

import (
	"fmt"

	git2go "github.com/libgit2/git2go/v34"
)

// CreateLightweightTag creates (or force-moves) a lightweight tag named
// name pointing at commit.
func (r *Repository) CreateLightweightTag(name string, commit *Commit) error {
	_, err := r.repo.Tags.CreateLightweight(name, commit.commit, true)
	if err != nil {
		return fmt.Errorf("create tag %s: %w", name, err)
	}

	return nil
}

// CreateBranch creates (or force-moves) a branch named name pointing at commit.
func (r *Repository) CreateBranch(name string, commit *Commit) error {
	_, err := r.repo.CreateBranch(name, commit.commit, true)
	if err != nil {
		return fmt.Errorf("create branch %s: %w", name, err)
	}

	return nil
}

// CheckoutBranch force-checks-out the working tree to branchName and moves
// HEAD to refs/heads/<branchName>.
func (r *Repository) CheckoutBranch(branchName string) error {
	refName := "refs/heads/" + branchName

	if err := r.repo.SetHead(refName); err != nil {
		return fmt.Errorf("set HEAD to %s: %w", refName, err)
	}

	opts, err := git2go.DefaultCheckoutOptions()
	if err != nil {
		return fmt.Errorf("get checkout options: %w", err)
	}

	opts.Strategy = git2go.CheckoutForce

	if err := r.repo.CheckoutHead(&opts); err != nil {
		return fmt.Errorf("checkout %s: %w", branchName, err)
	}

	return nil
}

// HardReset resets HEAD, the index, and the working tree to commit,
// discarding any local changes (the equivalent of `git reset --hard`).
func (r *Repository) HardReset(commit *Commit) error {
	opts, err := git2go.DefaultCheckoutOptions()
	if err != nil {
		return fmt.Errorf("get checkout options: %w", err)
	}

	opts.Strategy = git2go.CheckoutForce

	if err := r.repo.ResetToCommit(commit.commit, git2go.ResetHard, &opts); err != nil {
		return fmt.Errorf("hard reset: %w", err)
	}

	return nil
}

// DeleteRef deletes the reference named fullName (e.g. "refs/heads/agent/v1.1").
func (r *Repository) DeleteRef(fullName string) error {
	ref, err := r.repo.References.Lookup(fullName)
	if err != nil {
		return fmt.Errorf("lookup ref %s: %w", fullName, err)
	}
	defer ref.Free()

	if err := ref.Delete(); err != nil {
		return fmt.Errorf("delete ref %s: %w", fullName, err)
	}

	return nil
}

// BranchExists reports whether a local branch named name exists.
func (r *Repository) BranchExists(name string) bool {
	branch, err := r.repo.LookupBranch(name, git2go.BranchLocal)
	if err != nil {
		return false
	}
	defer branch.Free()

	return true
}
