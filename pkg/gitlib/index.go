package gitlib

import (
	"fmt"

	git2go "github.com/libgit2/git2go/v34"
)

// StageAll stages every new, modified, and deleted path in the working
// tree into the repository index (the equivalent of `git add -A`) and
// writes the resulting tree object, returning its hash.
func (r *Repository) StageAll() (*Tree, error) {
	index, err := r.repo.Index()
	if err != nil {
		return nil, fmt.Errorf("open index: %w", err)
	}
	defer index.Free()

	if err := index.AddAll([]string{}, git2go.IndexAddDefault, nil); err != nil {
		return nil, fmt.Errorf("stage working tree: %w", err)
	}

	if err := index.UpdateAll([]string{}, nil); err != nil {
		return nil, fmt.Errorf("stage deletions: %w", err)
	}

	if err := index.Write(); err != nil {
		return nil, fmt.Errorf("write index: %w", err)
	}

	treeOid, err := index.WriteTree()
	if err != nil {
		return nil, fmt.Errorf("write tree from index: %w", err)
	}

	tree, err := r.repo.LookupTree(treeOid)
	if err != nil {
		return nil, fmt.Errorf("lookup written tree: %w", err)
	}

	return &Tree{tree: tree, repo: r}, nil
}

// EmptyTree writes and returns the tree with no entries, used to seed the
// repository's root commit on first initialization.
func (r *Repository) EmptyTree() (*Tree, error) {
	index, err := git2go.NewIndex()
	if err != nil {
		return nil, fmt.Errorf("create in-memory index: %w", err)
	}
	defer index.Free()

	treeOid, err := index.WriteTreeTo(r.repo)
	if err != nil {
		return nil, fmt.Errorf("write empty tree: %w", err)
	}

	tree, err := r.repo.LookupTree(treeOid)
	if err != nil {
		return nil, fmt.Errorf("lookup empty tree: %w", err)
	}

	return &Tree{tree: tree, repo: r}, nil
}
