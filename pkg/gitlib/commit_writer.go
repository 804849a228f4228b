package gitlib

import (
	"fmt"
	"time"

	git2go "github.com/libgit2/git2go/v34"
)

// InitRepository initializes a new non-bare repository at path.
func InitRepository(path string) (*Repository, error) {
	repo, err := git2go.InitRepository(path, false)
	if err != nil {
		return nil, fmt.Errorf("init repository: %w", err)
	}

	return &Repository{repo: repo, path: path}, nil
}

// CreateCommit writes a new commit object pointing at tree, with the given
// parents, and moves refname to it (pass "" to skip updating any ref).
// The signature's When is honored verbatim; callers that want "now"
// semantics should set it themselves.
func (r *Repository) CreateCommit(refname string, author, committer Signature, message string, tree *Tree, parents ...*Commit) (*Commit, error) {
	nativeParents := make([]*git2go.Commit, 0, len(parents))
	for _, p := range parents {
		nativeParents = append(nativeParents, p.commit)
	}

	oid, err := r.repo.CreateCommit(refname, toNativeSignature(author), toNativeSignature(committer), message, tree.tree, nativeParents...)
	if err != nil {
		return nil, fmt.Errorf("create commit: %w", err)
	}

	commit, err := r.repo.LookupCommit(oid)
	if err != nil {
		return nil, fmt.Errorf("lookup created commit: %w", err)
	}

	return &Commit{commit: commit, repo: r}, nil
}

func toNativeSignature(sig Signature) *git2go.Signature {
	when := sig.When
	if when.IsZero() {
		when = time.Now()
	}

	return &git2go.Signature{Name: sig.Name, Email: sig.Email, When: when}
}
