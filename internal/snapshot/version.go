// Package snapshot implements the dual-timeline version control subsystem:
// a linear master timeline (tags v1, v2, ...) and a branching agent timeline
// (tags v{major}.{minor}) layered on top of a real Git repository via
// pkg/gitlib.
package snapshot

import (
	"fmt"

	"github.com/opcode-dev/opcode-index/internal/storage"
)

// NextMasterVersion returns the version_major the next master snapshot for
// project should use.
func NextMasterVersion(store *storage.Store, project string) (int, error) {
	v, err := store.NextMasterVersion(project)
	if err != nil {
		return 0, fmt.Errorf("next master version: %w", err)
	}

	return v, nil
}

// NextAgentVersion returns the version_minor the next agent snapshot
// branching off masterVersion should use.
func NextAgentVersion(store *storage.Store, project string, masterVersion int) (int, error) {
	v, err := store.NextAgentVersion(project, masterVersion)
	if err != nil {
		return 0, fmt.Errorf("next agent version: %w", err)
	}

	return v, nil
}

// MasterTag is the lightweight tag name for a master snapshot (e.g. "v3").
func MasterTag(major int) string {
	return fmt.Sprintf("v%d", major)
}

// AgentTag is the lightweight tag name for an agent snapshot (e.g. "v3.2").
func AgentTag(major, minor int) string {
	return fmt.Sprintf("v%d.%d", major, minor)
}

// AgentBranch is the branch name for an agent snapshot (e.g. "agent/v3.2").
func AgentBranch(major, minor int) string {
	return fmt.Sprintf("agent/v%d.%d", major, minor)
}

// MasterBranch is the single branch the master timeline lives on.
const MasterBranch = "main"
