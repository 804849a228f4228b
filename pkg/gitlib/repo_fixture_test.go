package gitlib_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/opcode-dev/opcode-index/pkg/gitlib"
)

// testRepo is a throwaway on-disk repository used by gitlib tests to
// exercise real libgit2 read and write paths end to end.
type testRepo struct {
	t    *testing.T
	path string
	repo *gitlib.Repository
}

func newTestRepo(t *testing.T) *testRepo {
	t.Helper()

	dir := t.TempDir()

	repo, err := gitlib.InitRepository(dir)
	require.NoError(t, err)

	return &testRepo{t: t, path: dir, repo: repo}
}

func (tr *testRepo) createFile(name, content string) {
	tr.t.Helper()

	path := filepath.Join(tr.path, name)
	require.NoError(tr.t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(tr.t, os.WriteFile(path, []byte(content), 0o644))
}

// commit stages every pending change and commits it on HEAD, returning the
// new commit's hash.
func (tr *testRepo) commit(message string) gitlib.Hash {
	tr.t.Helper()

	tree, err := tr.repo.StageAll()
	require.NoError(tr.t, err)
	defer tree.Free()

	sig := gitlib.TestSignature("Test User", "test@example.com")

	var parents []*gitlib.Commit

	if head, headErr := tr.repo.Head(); headErr == nil {
		parent, parentErr := tr.repo.LookupCommit(context.Background(), head)
		require.NoError(tr.t, parentErr)

		parents = append(parents, parent)

		defer parent.Free()
	}

	commit, err := tr.repo.CreateCommit("HEAD", sig, sig, message, tree, parents...)
	require.NoError(tr.t, err)
	defer commit.Free()

	return commit.Hash()
}

func (tr *testRepo) cleanup() {
	tr.repo.Free()
}
