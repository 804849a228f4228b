package storage

import (
	"database/sql"
	"fmt"

	"github.com/opcode-dev/opcode-index/internal/chunktype"
	"github.com/opcode-dev/opcode-index/internal/model"
)

// InsertRelationship persists a directed edge between two chunks.
func (s *Store) InsertRelationship(r *model.ChunkRelationship) error {
	if !r.Type.Valid() {
		return fmt.Errorf("%w: relationship type %q", chunktype.ErrUnknownChunkType, r.Type)
	}

	res, err := s.db.Exec(
		`INSERT INTO chunk_relationships (from_chunk_id, to_chunk_id, relationship_type, metadata) VALUES (?, ?, ?, ?)`,
		r.FromID, r.ToID, string(r.Type), nullableString(r.Metadata),
	)
	if err != nil {
		return fmt.Errorf("insert relationship: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("read inserted relationship id: %w", err)
	}

	r.ID = id

	return nil
}

// RelationshipDirection selects which endpoint GetRelationships matches against chunkID.
type RelationshipDirection int

const (
	DirectionFrom RelationshipDirection = iota
	DirectionTo
	DirectionEither
)

// GetRelationships returns relationships touching chunkID in the given direction.
func (s *Store) GetRelationships(chunkID int64, dir RelationshipDirection) ([]model.ChunkRelationship, error) {
	var (
		query string
		args  []any
	)

	switch dir {
	case DirectionFrom:
		query = `SELECT id, from_chunk_id, to_chunk_id, relationship_type, metadata FROM chunk_relationships WHERE from_chunk_id = ?`
		args = []any{chunkID}
	case DirectionTo:
		query = `SELECT id, from_chunk_id, to_chunk_id, relationship_type, metadata FROM chunk_relationships WHERE to_chunk_id = ?`
		args = []any{chunkID}
	default:
		query = `SELECT id, from_chunk_id, to_chunk_id, relationship_type, metadata FROM chunk_relationships WHERE from_chunk_id = ? OR to_chunk_id = ?`
		args = []any{chunkID, chunkID}
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query relationships: %w", err)
	}
	defer rows.Close()

	var out []model.ChunkRelationship

	for rows.Next() {
		var (
			r        model.ChunkRelationship
			relType  string
			metadata sql.NullString
		)

		if err := rows.Scan(&r.ID, &r.FromID, &r.ToID, &relType, &metadata); err != nil {
			return nil, fmt.Errorf("scan relationship: %w", err)
		}

		r.Type = chunktype.Relationship(relType)
		r.Metadata = metadata.String
		out = append(out, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate relationships: %w", err)
	}

	return out, nil
}
