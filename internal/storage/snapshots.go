package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/opcode-dev/opcode-index/internal/chunktype"
	"github.com/opcode-dev/opcode-index/internal/model"
	"github.com/opcode-dev/opcode-index/pkg/hashutil"
)

// CreateSnapshot persists a Snapshot row. snap.ID is populated on success.
func (s *Store) CreateSnapshot(snap *model.Snapshot) error {
	if !snap.SnapshotType.Valid() {
		return fmt.Errorf("%w: snapshot type %q", chunktype.ErrUnknownChunkType, snap.SnapshotType)
	}

	changedFiles, err := json.Marshal(snap.ChangedFiles)
	if err != nil {
		return fmt.Errorf("encode changed files: %w", err)
	}

	now := hashutil.Now()

	res, err := s.db.Exec(
		`INSERT INTO snapshots (project, snapshot_type, parent_snapshot_id, user_message, changed_files, diff_summary,
			git_commit_hash, git_tag, git_branch, version_major, version_minor, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		snap.Project, string(snap.SnapshotType), snap.ParentSnapshotID, nullableString(snap.UserMessage),
		string(changedFiles), nullableString(snap.DiffSummary), nullableString(snap.GitCommitHash),
		nullableString(snap.GitTag), nullableString(snap.GitBranch), snap.VersionMajor, snap.VersionMinor, now,
	)
	if err != nil {
		return fmt.Errorf("insert snapshot: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("read inserted snapshot id: %w", err)
	}

	snap.ID = id
	snap.CreatedAt = now

	return nil
}

// GetSnapshot loads a single snapshot by id.
func (s *Store) GetSnapshot(id int64) (model.Snapshot, error) {
	row := s.db.QueryRow(
		`SELECT id, project, snapshot_type, parent_snapshot_id, user_message, changed_files, diff_summary,
			git_commit_hash, git_tag, git_branch, version_major, version_minor, created_at
		 FROM snapshots WHERE id = ?`, id,
	)

	return scanSnapshotRow(row)
}

// GetSnapshots lists snapshots for project, optionally restricted to kind.
func (s *Store) GetSnapshots(project string, kind *chunktype.SnapshotKind) ([]model.Snapshot, error) {
	query := `SELECT id, project, snapshot_type, parent_snapshot_id, user_message, changed_files, diff_summary,
		git_commit_hash, git_tag, git_branch, version_major, version_minor, created_at
		FROM snapshots WHERE project = ?`
	args := []any{project}

	if kind != nil {
		query += ` AND snapshot_type = ?`
		args = append(args, string(*kind))
	}

	query += ` ORDER BY version_major, version_minor`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query snapshots: %w", err)
	}
	defer rows.Close()

	var out []model.Snapshot

	for rows.Next() {
		snap, err := scanSnapshotRows(rows)
		if err != nil {
			return nil, err
		}

		out = append(out, snap)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshots: %w", err)
	}

	return out, nil
}

// NextMasterVersion returns 1 + max(version_major) across master snapshots
// for project, or 1 if none exist.
func (s *Store) NextMasterVersion(project string) (int, error) {
	var maxVersion sql.NullInt64

	err := s.db.QueryRow(
		`SELECT MAX(version_major) FROM snapshots WHERE project = ? AND snapshot_type = ?`,
		project, string(chunktype.Master),
	).Scan(&maxVersion)
	if err != nil {
		return 0, fmt.Errorf("query next master version: %w", err)
	}

	return int(maxVersion.Int64) + 1, nil
}

// NextAgentVersion returns 1 + max(version_minor) across agent snapshots
// with version_major = masterVersion for project, or 1 if none exist.
func (s *Store) NextAgentVersion(project string, masterVersion int) (int, error) {
	var maxVersion sql.NullInt64

	err := s.db.QueryRow(
		`SELECT MAX(version_minor) FROM snapshots WHERE project = ? AND snapshot_type = ? AND version_major = ?`,
		project, string(chunktype.Agent), masterVersion,
	).Scan(&maxVersion)
	if err != nil {
		return 0, fmt.Errorf("query next agent version: %w", err)
	}

	return int(maxVersion.Int64) + 1, nil
}

// DeleteMasterSnapshotsAfter deletes master snapshot rows for project with
// version_major strictly greater than keepVersion. Agent rows are never
// touched, preserving S4's non-destructive rewind guarantee.
func (s *Store) DeleteMasterSnapshotsAfter(project string, keepVersion int) error {
	_, err := s.db.Exec(
		`DELETE FROM snapshots WHERE project = ? AND snapshot_type = ? AND version_major > ?`,
		project, string(chunktype.Master), keepVersion,
	)
	if err != nil {
		return fmt.Errorf("delete master snapshots after %d: %w", keepVersion, err)
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSnapshotRow(row *sql.Row) (model.Snapshot, error) {
	return scanSnapshot(row)
}

func scanSnapshotRows(rows *sql.Rows) (model.Snapshot, error) {
	return scanSnapshot(rows)
}

func scanSnapshot(r rowScanner) (model.Snapshot, error) {
	var (
		snap             model.Snapshot
		snapType         string
		parentSnapshotID sql.NullInt64
		userMessage      sql.NullString
		changedFilesRaw  string
		diffSummary      sql.NullString
		gitCommitHash    sql.NullString
		gitTag           sql.NullString
		gitBranch        sql.NullString
		versionMinor     sql.NullInt64
	)

	err := r.Scan(&snap.ID, &snap.Project, &snapType, &parentSnapshotID, &userMessage, &changedFilesRaw,
		&diffSummary, &gitCommitHash, &gitTag, &gitBranch, &snap.VersionMajor, &versionMinor, &snap.CreatedAt)
	if err != nil {
		if sqlIsNoRows(err) {
			return model.Snapshot{}, ErrNotFound
		}

		return model.Snapshot{}, fmt.Errorf("scan snapshot: %w", err)
	}

	snap.SnapshotType = chunktype.SnapshotKind(snapType)
	snap.UserMessage = userMessage.String
	snap.DiffSummary = diffSummary.String
	snap.GitCommitHash = gitCommitHash.String
	snap.GitTag = gitTag.String
	snap.GitBranch = gitBranch.String

	if parentSnapshotID.Valid {
		id := parentSnapshotID.Int64
		snap.ParentSnapshotID = &id
	}

	if versionMinor.Valid {
		v := int(versionMinor.Int64)
		snap.VersionMinor = &v
	}

	if err := json.Unmarshal([]byte(changedFilesRaw), &snap.ChangedFiles); err != nil {
		return model.Snapshot{}, fmt.Errorf("decode changed files: %w", err)
	}

	return snap, nil
}

func sqlIsNoRows(err error) bool {
	return err == sql.ErrNoRows
}
