package storage

import (
	"database/sql"
	"fmt"
	"strings"
)

// migration is a single forward-only additive schema change. stmt is
// expected to fail harmlessly (already-exists) against an up-to-date
// database; that failure is intentionally ignored.
type migration struct {
	name string
	stmt string
}

// migrationsList is the ordered set of additive column migrations the
// command surface (§6) enumerates: five optional snapshot columns and one
// chunk column, each an "ADD COLUMN" whose failure on an up-to-date schema
// is expected and ignored.
var migrationsList = []migration{
	{"snapshots_git_commit_hash", `ALTER TABLE snapshots ADD COLUMN git_commit_hash TEXT`},
	{"snapshots_git_tag", `ALTER TABLE snapshots ADD COLUMN git_tag TEXT`},
	{"snapshots_git_branch", `ALTER TABLE snapshots ADD COLUMN git_branch TEXT`},
	{"snapshots_version_major", `ALTER TABLE snapshots ADD COLUMN version_major INTEGER`},
	{"snapshots_version_minor", `ALTER TABLE snapshots ADD COLUMN version_minor INTEGER`},
	{"chunks_snapshot_id", `ALTER TABLE chunks ADD COLUMN snapshot_id INTEGER`},
}

// runMigrations applies every migration in order, ignoring the
// column-already-exists failure that is expected whenever the column is
// already there: for every migration on a database opened before, and for
// chunks_snapshot_id on a fresh one, since bootstrap already creates that
// column. Any other failure aborts the run.
func runMigrations(db *sql.DB) error {
	for _, m := range migrationsList {
		if _, err := db.Exec(m.stmt); err != nil {
			if isDuplicateColumnErr(err) {
				continue
			}

			return fmt.Errorf("migration %s: %w", m.name, err)
		}
	}

	return nil
}

// isDuplicateColumnErr reports whether err is SQLite's "duplicate column
// name" failure, the expected outcome of re-running an additive migration
// against a schema that already has the column.
func isDuplicateColumnErr(err error) bool {
	if err == nil {
		return false
	}

	return strings.Contains(err.Error(), "duplicate column name")
}
