package engine_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opcode-dev/opcode-index/internal/chunktype"
	"github.com/opcode-dev/opcode-index/internal/config"
	"github.com/opcode-dev/opcode-index/internal/engine"
)

func newTestEngine(t *testing.T) *engine.Engine {
	t.Helper()

	root := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.DBPath = filepath.Join(root, ".opcode", "index.db")

	e, err := engine.Open("proj", root, cfg, nil)
	require.NoError(t, err)

	t.Cleanup(func() { _ = e.Close() })

	return e
}

func writeFile(t *testing.T, root, relPath, content string) {
	t.Helper()

	path := filepath.Join(root, relPath)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestEngine_ProcessProjectChunks_ThenSearch(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t)
	writeFile(t, e.ProjectRoot, "main.go", "package main\n\nfunc HandleLogin() {}\n")

	result, err := e.ProcessProjectChunks(context.Background(), nil)
	require.NoError(t, err)
	assert.Positive(t, result.ChunksUpserted)

	rows, err := e.SearchChunks("HandleLogin", nil, 0)
	require.NoError(t, err)
	assert.NotEmpty(t, rows)
}

func TestEngine_CreateMasterSnapshot_TriggersReindex(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t)
	writeFile(t, e.ProjectRoot, "main.go", "package main\n")

	snap, result, err := e.CreateMasterSnapshot(context.Background(), "initial import")
	require.NoError(t, err)
	assert.Equal(t, 1, snap.VersionMajor)
	require.NotNil(t, result)

	snaps, err := e.GetProjectSnapshots(nil)
	require.NoError(t, err)
	require.Len(t, snaps, 1)
}

func TestEngine_CreateAgentSnapshot_BranchesAndReindexes(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t)
	writeFile(t, e.ProjectRoot, "main.go", "package main\n")

	master, _, err := e.CreateMasterSnapshot(context.Background(), "initial import")
	require.NoError(t, err)

	writeFile(t, e.ProjectRoot, "main.go", "package main\n\nfunc main() {}\n")

	agentSnap, result, err := e.CreateAgentSnapshot(context.Background(), master.ID, "try a change", nil)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, chunktype.Agent, agentSnap.SnapshotType)
	require.NotNil(t, agentSnap.ParentSnapshotID)
	assert.Equal(t, master.ID, *agentSnap.ParentSnapshotID)
}

func TestEngine_BusinessRuleAndErrorLifecycle(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t)

	id, err := e.ProposeBusinessRule("Foo.Bar", "foo.go", "looks like a retry policy")
	require.NoError(t, err)

	pending, err := e.GetPendingBusinessRules()
	require.NoError(t, err)
	require.Len(t, pending, 1)

	require.NoError(t, e.ValidateBusinessRule(id, "Retries 3 times", ""))

	pending, err = e.GetPendingBusinessRules()
	require.NoError(t, err)
	assert.Empty(t, pending)

	require.NoError(t, e.LogError("foo.go", "Foo.Bar", "panic", "boom", "", nil))

	errs, err := e.GetProjectErrors(nil)
	require.NoError(t, err)
	require.Len(t, errs, 1)

	require.NoError(t, e.ResolveError(errs[0].ID))
}
