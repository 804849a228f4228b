package storage

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/opcode-dev/opcode-index/internal/model"
	"github.com/opcode-dev/opcode-index/pkg/hashutil"
)

// UpsertErrorLog deduplicates by (project, error_type, message) among
// unresolved rows: a match increments occurrence_count and bumps
// last_seen; otherwise a new row is inserted with count=1. Error logging
// never returns a caller-visible failure for anything but a genuine
// storage fault — callers swallow the result per §7.
func (s *Store) UpsertErrorLog(e *model.ErrorLog) error {
	now := hashutil.Now()

	var existingID int64

	err := s.db.QueryRow(
		`SELECT id FROM error_logs WHERE project = ? AND error_type = ? AND message = ? AND is_resolved = 0`,
		e.Project, e.ErrorType, e.Message,
	).Scan(&existingID)

	switch {
	case err == nil:
		_, execErr := s.db.Exec(
			`UPDATE error_logs SET occurrence_count = occurrence_count + 1, last_seen = ? WHERE id = ?`,
			now, existingID,
		)
		if execErr != nil {
			return fmt.Errorf("bump error log: %w", execErr)
		}

		e.ID = existingID

		return nil

	case errors.Is(err, sql.ErrNoRows):
		res, execErr := s.db.Exec(
			`INSERT INTO error_logs (project, snapshot_id, file, entity, error_type, message, stacktrace, occurrence_count, first_seen, last_seen, is_resolved)
			 VALUES (?, ?, ?, ?, ?, ?, ?, 1, ?, ?, 0)`,
			e.Project, e.SnapshotID, nullableString(e.File), nullableString(e.Entity),
			e.ErrorType, e.Message, nullableString(e.Stacktrace), now, now,
		)
		if execErr != nil {
			return fmt.Errorf("insert error log: %w", execErr)
		}

		id, idErr := res.LastInsertId()
		if idErr != nil {
			return fmt.Errorf("read inserted error log id: %w", idErr)
		}

		e.ID = id

		return nil

	default:
		return fmt.Errorf("lookup error log: %w", err)
	}
}

// ResolveError marks an error log resolved.
func (s *Store) ResolveError(id int64) error {
	_, err := s.db.Exec(`UPDATE error_logs SET is_resolved = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("resolve error: %w", err)
	}

	return nil
}

// ErrorLogFilter narrows GetErrorLogs results.
type ErrorLogFilter struct {
	Project    string
	IsResolved *bool // nil means both
}

// GetErrorLogs lists error logs for a project, optionally filtered by resolution state.
func (s *Store) GetErrorLogs(f ErrorLogFilter) ([]model.ErrorLog, error) {
	query := `SELECT id, project, snapshot_id, file, entity, error_type, message, stacktrace, occurrence_count, first_seen, last_seen, is_resolved
		FROM error_logs WHERE project = ?`
	args := []any{f.Project}

	if f.IsResolved != nil {
		query += ` AND is_resolved = ?`
		args = append(args, *f.IsResolved)
	}

	query += ` ORDER BY last_seen DESC`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query error logs: %w", err)
	}
	defer rows.Close()

	var out []model.ErrorLog

	for rows.Next() {
		var (
			e          model.ErrorLog
			snapshotID sql.NullInt64
			file       sql.NullString
			entity     sql.NullString
			stacktrace sql.NullString
		)

		err := rows.Scan(&e.ID, &e.Project, &snapshotID, &file, &entity, &e.ErrorType,
			&e.Message, &stacktrace, &e.OccurrenceCount, &e.FirstSeen, &e.LastSeen, &e.IsResolved)
		if err != nil {
			return nil, fmt.Errorf("scan error log: %w", err)
		}

		if snapshotID.Valid {
			id := snapshotID.Int64
			e.SnapshotID = &id
		}

		e.File = file.String
		e.Entity = entity.String
		e.Stacktrace = stacktrace.String

		out = append(out, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate error logs: %w", err)
	}

	return out, nil
}
