package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/opcode-dev/opcode-index/internal/chunktype"
	"github.com/opcode-dev/opcode-index/internal/model"
	"github.com/opcode-dev/opcode-index/pkg/hashutil"
)

// UpsertChunk is the sole write path for chunks and the sole source of
// dedup (I1/I2). It looks up c.ContentHash; if a row already exists it
// updates updated_at, metadata, and snapshot_id and returns created=false,
// never rewriting content. Otherwise it inserts a new row and returns
// created=true.
func (s *Store) UpsertChunk(c *model.Chunk, snapshotID *int64) (created bool, err error) {
	if !c.ChunkType.Valid() {
		return false, fmt.Errorf("%w: chunk type %q", chunktype.ErrUnknownChunkType, c.ChunkType)
	}

	if err := validateMetadata(c.ChunkType, c.Metadata); err != nil {
		return false, err
	}

	if c.ContentHash == "" {
		c.ContentHash = hashutil.Sum([]byte(c.Content)).String()
	}

	now := hashutil.Now()

	var existingID int64

	err = s.db.QueryRow(`SELECT id FROM chunks WHERE content_hash = ?`, c.ContentHash).Scan(&existingID)

	switch {
	case err == nil:
		_, execErr := s.db.Exec(
			`UPDATE chunks SET updated_at = ?, metadata = ?, snapshot_id = ? WHERE id = ?`,
			now, nullableString(c.Metadata), snapshotID, existingID,
		)
		if execErr != nil {
			return false, fmt.Errorf("update chunk: %w", execErr)
		}

		c.ID = existingID
		c.UpdatedAt = now

		return false, nil

	case errors.Is(err, sql.ErrNoRows):
		res, execErr := s.db.Exec(
			`INSERT INTO chunks (project, chunk_type, file_path, entity_name, content, content_hash, metadata, snapshot_id, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			c.Project, string(c.ChunkType), nullableString(c.FilePath), nullableString(c.EntityName),
			c.Content, c.ContentHash, nullableString(c.Metadata), snapshotID, now, now,
		)
		if execErr != nil {
			return false, fmt.Errorf("insert chunk: %w", execErr)
		}

		id, idErr := res.LastInsertId()
		if idErr != nil {
			return false, fmt.Errorf("read inserted chunk id: %w", idErr)
		}

		c.ID = id
		c.CreatedAt = now
		c.UpdatedAt = now

		return true, nil

	default:
		return false, fmt.Errorf("lookup chunk by hash: %w", err)
	}
}

// ChunkFilter narrows QueryChunks results.
type ChunkFilter struct {
	Project    string
	ChunkTypes []chunktype.Chunk
	FilePath   string
	Entity     string
	Limit      int
	Offset     int
}

// QueryChunks returns chunks matching filter, ordered by updated_at DESC.
func (s *Store) QueryChunks(f ChunkFilter) ([]model.Chunk, error) {
	query := `SELECT id, project, chunk_type, file_path, entity_name, content, content_hash, metadata, snapshot_id, created_at, updated_at FROM chunks WHERE 1=1`

	var args []any

	if f.Project != "" {
		query += ` AND project = ?`
		args = append(args, f.Project)
	}

	if len(f.ChunkTypes) > 0 {
		query += ` AND chunk_type IN (` + placeholders(len(f.ChunkTypes)) + `)`
		for _, ct := range f.ChunkTypes {
			args = append(args, string(ct))
		}
	}

	if f.FilePath != "" {
		query += ` AND file_path = ?`
		args = append(args, f.FilePath)
	}

	if f.Entity != "" {
		query += ` AND entity_name = ?`
		args = append(args, f.Entity)
	}

	query += ` ORDER BY updated_at DESC`

	if f.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, f.Limit)

		if f.Offset > 0 {
			query += ` OFFSET ?`
			args = append(args, f.Offset)
		}
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query chunks: %w", err)
	}
	defer rows.Close()

	var out []model.Chunk

	for rows.Next() {
		c, scanErr := scanChunk(rows)
		if scanErr != nil {
			return nil, scanErr
		}

		out = append(out, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate chunks: %w", err)
	}

	return out, nil
}

// SearchChunks finds chunks in project whose content contains query
// (case-insensitive substring match), optionally restricted to chunkTypes,
// most recently updated first.
func (s *Store) SearchChunks(project, query string, chunkTypes []chunktype.Chunk, limit int) ([]model.Chunk, error) {
	sqlQuery := `SELECT id, project, chunk_type, file_path, entity_name, content, content_hash, metadata, snapshot_id, created_at, updated_at
		FROM chunks WHERE project = ? AND content LIKE ? ESCAPE '\'`
	args := []any{project, likePattern(query)}

	if len(chunkTypes) > 0 {
		sqlQuery += ` AND chunk_type IN (` + placeholders(len(chunkTypes)) + `)`
		for _, ct := range chunkTypes {
			args = append(args, string(ct))
		}
	}

	sqlQuery += ` ORDER BY updated_at DESC`

	if limit > 0 {
		sqlQuery += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.Query(sqlQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("search chunks: %w", err)
	}
	defer rows.Close()

	var out []model.Chunk

	for rows.Next() {
		c, scanErr := scanChunk(rows)
		if scanErr != nil {
			return nil, scanErr
		}

		out = append(out, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate search results: %w", err)
	}

	return out, nil
}

func likePattern(query string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

	return "%" + replacer.Replace(query) + "%"
}

// DeleteProjectChunks removes every chunk belonging to project and returns
// the number of rows deleted.
func (s *Store) DeleteProjectChunks(project string) (int64, error) {
	res, err := s.db.Exec(`DELETE FROM chunks WHERE project = ?`, project)
	if err != nil {
		return 0, fmt.Errorf("delete project chunks: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("read rows affected: %w", err)
	}

	return n, nil
}

func scanChunk(rows *sql.Rows) (model.Chunk, error) {
	var (
		c          model.Chunk
		chunkType  string
		filePath   sql.NullString
		entityName sql.NullString
		metadata   sql.NullString
		snapshotID sql.NullInt64
	)

	err := rows.Scan(&c.ID, &c.Project, &chunkType, &filePath, &entityName, &c.Content,
		&c.ContentHash, &metadata, &snapshotID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return model.Chunk{}, fmt.Errorf("scan chunk: %w", err)
	}

	c.ChunkType = chunktype.Chunk(chunkType)
	c.FilePath = filePath.String
	c.EntityName = entityName.String
	c.Metadata = metadata.String

	if snapshotID.Valid {
		id := snapshotID.Int64
		c.SnapshotID = &id
	}

	return c, nil
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}

	return s
}

func placeholders(n int) string {
	out := make([]byte, 0, n*2-1)

	for i := range n {
		if i > 0 {
			out = append(out, ',')
		}

		out = append(out, '?')
	}

	return string(out)
}
