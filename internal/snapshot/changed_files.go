package snapshot

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/opcode-dev/opcode-index/internal/cache"
	"github.com/opcode-dev/opcode-index/pkg/gitlib"
)

// maxDiffSummaryBytes bounds how much blob content participates in the
// line-level diff summary; larger files are reported by name only.
const maxDiffSummaryBytes = 1 << 20

// ChangedFiles returns the sorted set of relative paths that differ between
// oldTree and newTree. A nil oldTree means "everything is new" (the
// project's first snapshot).
func ChangedFiles(repo *gitlib.Repository, oldTree, newTree *gitlib.Tree) ([]string, error) {
	var (
		changes gitlib.Changes
		err     error
	)

	if oldTree == nil {
		changes, err = gitlib.InitialTreeChanges(repo, newTree)
	} else {
		changes, err = gitlib.TreeDiff(repo, oldTree, newTree)
	}

	if err != nil {
		return nil, fmt.Errorf("diff trees: %w", err)
	}

	names := make(map[string]struct{}, len(changes))

	for _, change := range changes {
		if change.To.Name != "" {
			names[change.To.Name] = struct{}{}
		}

		if change.From.Name != "" {
			names[change.From.Name] = struct{}{}
		}
	}

	out := make([]string, 0, len(names))
	for name := range names {
		out = append(out, name)
	}

	sort.Strings(out)

	return out, nil
}

// DiffSummary renders a human-readable unified-style summary of changes
// between oldTree and newTree, one section per changed file. Binary or
// oversized files are listed by name and action only.
func DiffSummary(repo *gitlib.Repository, oldTree, newTree *gitlib.Tree) (string, error) {
	var (
		changes gitlib.Changes
		err     error
	)

	if oldTree == nil {
		changes, err = gitlib.InitialTreeChanges(repo, newTree)
	} else {
		changes, err = gitlib.TreeDiff(repo, oldTree, newTree)
	}

	if err != nil {
		return "", fmt.Errorf("diff trees: %w", err)
	}

	var b strings.Builder

	dmp := diffmatchpatch.New()
	// A rename or a tree restructure can reference the same blob hash from
	// multiple changes in one summary; cache its decoded content so it is
	// only read out of the object store once per call.
	blobs := cache.NewBlobCache[gitlib.Hash, string]()

	for _, change := range changes {
		writeChangeSummary(&b, dmp, repo, blobs, change)
	}

	return b.String(), nil
}

func writeChangeSummary(b *strings.Builder, dmp *diffmatchpatch.DiffMatchPatch, repo *gitlib.Repository, blobs *cache.BlobCache[gitlib.Hash, string], change *gitlib.Change) {
	switch change.Action {
	case gitlib.Insert:
		fmt.Fprintf(b, "A %s\n", change.To.Name)
	case gitlib.Delete:
		fmt.Fprintf(b, "D %s\n", change.From.Name)
	case gitlib.Modify:
		fmt.Fprintf(b, "M %s\n", change.To.Name)
		writeLineDiff(b, dmp, repo, blobs, change)
	}
}

func writeLineDiff(b *strings.Builder, dmp *diffmatchpatch.DiffMatchPatch, repo *gitlib.Repository, blobs *cache.BlobCache[gitlib.Hash, string], change *gitlib.Change) {
	oldContent, oldOK := readBlobUnderLimit(repo, blobs, change.From.Hash, change.From.Size)
	newContent, newOK := readBlobUnderLimit(repo, blobs, change.To.Hash, change.To.Size)

	if !oldOK || !newOK {
		return
	}

	// Content containing a NUL byte is treated as binary.
	if strings.IndexByte(oldContent, 0) >= 0 || strings.IndexByte(newContent, 0) >= 0 {
		return
	}

	src, dst, lines := dmp.DiffLinesToRunes(oldContent, newContent)
	diffs := dmp.DiffMainRunes(src, dst, false)
	diffs = dmp.DiffCharsToLines(diffs, lines)

	for _, d := range diffs {
		for _, line := range strings.Split(strings.TrimSuffix(d.Text, "\n"), "\n") {
			switch d.Type {
			case diffmatchpatch.DiffInsert:
				fmt.Fprintf(b, "  + %s\n", line)
			case diffmatchpatch.DiffDelete:
				fmt.Fprintf(b, "  - %s\n", line)
			case diffmatchpatch.DiffEqual:
				// Context lines are omitted from the summary.
			}
		}
	}
}

func readBlobUnderLimit(repo *gitlib.Repository, blobs *cache.BlobCache[gitlib.Hash, string], hash gitlib.Hash, size int64) (string, bool) {
	if hash.IsZero() {
		return "", true
	}

	if size > maxDiffSummaryBytes {
		return "", false
	}

	content, err := blobs.GetOrCompute(hash, func() (string, error) {
		blob, blobErr := repo.LookupBlob(context.Background(), hash)
		if blobErr != nil {
			return "", blobErr
		}
		defer blob.Free()

		return string(blob.Contents()), nil
	})
	if err != nil {
		return "", false
	}

	return content, true
}
