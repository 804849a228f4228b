package extract

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/opcode-dev/opcode-index/internal/chunktype"
	"github.com/opcode-dev/opcode-index/internal/model"
	"github.com/opcode-dev/opcode-index/pkg/gitlib"
)

// defaultMaxCommits is the default bound on the commit-history pass
// (spec.md §6 ChunkingOptions.max_commits).
const defaultMaxCommits = 100

type commitHistoryMetadata struct {
	Author     string   `json:"author_name"`
	Email      string   `json:"author_email"`
	Date       string   `json:"commit_date"`
	Files      []string `json:"files"`
	Insertions int      `json:"insertions"`
	Deletions  int      `json:"deletions"`
}

// CommitHistory opens the Git repository at projectRoot and walks HEAD in
// time order up to maxCommits (0 means defaultMaxCommits), emitting one
// commit_history chunk per commit visited.
func CommitHistory(project, projectRoot string, maxCommits int) ([]*model.Chunk, error) {
	if maxCommits <= 0 {
		maxCommits = defaultMaxCommits
	}

	repo, err := gitlib.OpenRepository(projectRoot)
	if err != nil {
		return nil, fmt.Errorf("open repository: %w", err)
	}
	defer repo.Free()

	iter, err := repo.Log(&gitlib.LogOptions{})
	if err != nil {
		return nil, fmt.Errorf("list commits: %w", err)
	}
	defer iter.Close()

	var chunks []*model.Chunk

	for count := 0; count < maxCommits; count++ {
		commit, nextErr := iter.Next()
		if errors.Is(nextErr, io.EOF) {
			break
		}

		if nextErr != nil {
			return chunks, fmt.Errorf("walk commits: %w", nextErr)
		}

		chunk, buildErr := buildCommitChunk(repo, commit, project)
		commit.Free()

		if buildErr != nil {
			return chunks, buildErr
		}

		chunks = append(chunks, chunk)
	}

	return chunks, nil
}

func buildCommitChunk(repo *gitlib.Repository, commit *gitlib.Commit, project string) (*model.Chunk, error) {
	tree, err := commit.Tree()
	if err != nil {
		return nil, fmt.Errorf("commit tree: %w", err)
	}
	defer tree.Free()

	// files starts empty rather than nil so a commit that changes no file
	// (the bootstrap root commit) still encodes "files": [], as the
	// commit_history metadata schema requires an array.
	files := []string{}

	var insertions, deletions int

	if commit.NumParents() > 0 {
		parent, parentErr := commit.Parent(0)
		if parentErr != nil {
			return nil, fmt.Errorf("commit parent: %w", parentErr)
		}
		defer parent.Free()

		parentTree, treeErr := parent.Tree()
		if treeErr != nil {
			return nil, fmt.Errorf("parent tree: %w", treeErr)
		}
		defer parentTree.Free()

		changes, diffErr := gitlib.TreeDiff(repo, parentTree, tree)
		if diffErr != nil {
			return nil, fmt.Errorf("diff against parent: %w", diffErr)
		}

		for _, change := range changes {
			ins, del := statChange(repo, change)
			insertions += ins
			deletions += del
			files = append(files, changeName(change))
		}
	} else {
		changes, initErr := gitlib.InitialTreeChanges(repo, tree)
		if initErr != nil {
			return nil, fmt.Errorf("initial tree changes: %w", initErr)
		}

		for _, change := range changes {
			files = append(files, changeName(change))
			insertions += countBlobLines(repo, change.To.Hash)
		}
	}

	author := commit.Author()

	meta := commitHistoryMetadata{
		Author:     author.Name,
		Email:      author.Email,
		Date:       author.When.UTC().Format("2006-01-02T15:04:05Z"),
		Files:      files,
		Insertions: insertions,
		Deletions:  deletions,
	}

	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return nil, fmt.Errorf("marshal commit metadata: %w", err)
	}

	content := buildCommitRecord(commit.Hash().String(), author.Name, author.Email, meta.Date, commit.Message(), files)

	return newChunk(project, chunktype.CommitHistory, "", commit.Hash().String(), content, string(metaJSON)), nil
}

func changeName(change *gitlib.Change) string {
	if change.To.Name != "" {
		return change.To.Name
	}

	return change.From.Name
}

// statChange computes per-file insertion/deletion counts via a blob-level
// line diff, resolving the Open Question in spec.md §9: these fields are
// reserved but computed from real diff statistics rather than left zero.
func statChange(repo *gitlib.Repository, change *gitlib.Change) (insertions, deletions int) {
	ctx := context.Background()

	var oldBlob, newBlob *gitlib.Blob

	if !change.From.Hash.IsZero() {
		if b, err := repo.LookupBlob(ctx, change.From.Hash); err == nil {
			oldBlob = b
			defer oldBlob.Free()
		}
	}

	if !change.To.Hash.IsZero() {
		if b, err := repo.LookupBlob(ctx, change.To.Hash); err == nil {
			newBlob = b
			defer newBlob.Free()
		}
	}

	result, err := gitlib.DiffBlobs(oldBlob, newBlob, change.From.Name, change.To.Name)
	if err != nil {
		return 0, 0
	}

	for _, d := range result.Diffs {
		switch d.Type {
		case gitlib.LineDiffInsert:
			insertions += d.LineCount
		case gitlib.LineDiffDelete:
			deletions += d.LineCount
		}
	}

	return insertions, deletions
}

func countBlobLines(repo *gitlib.Repository, hash gitlib.Hash) int {
	if hash.IsZero() {
		return 0
	}

	blob, err := repo.LookupBlob(context.Background(), hash)
	if err != nil {
		return 0
	}
	defer blob.Free()

	return strings.Count(string(blob.Contents()), "\n")
}

func buildCommitRecord(hash, author, email, date, message string, files []string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "commit %s\n", hash)
	fmt.Fprintf(&b, "Author: %s <%s>\n", author, email)
	fmt.Fprintf(&b, "Date: %s\n\n", date)
	fmt.Fprintf(&b, "    %s\n\n", message)
	b.WriteString("Files:\n")

	for _, f := range files {
		fmt.Fprintf(&b, "  %s\n", f)
	}

	return b.String()
}
