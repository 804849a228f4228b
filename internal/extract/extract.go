// Package extract implements the chunk extractors: independent producers
// that each consume a (project root, relative file path, file content)
// triple and emit zero or more chunks. Extractors are pure — they never
// touch storage directly; the orchestrator is responsible for calling
// storage.UpsertChunk with each chunk they return.
package extract

import (
	"github.com/opcode-dev/opcode-index/internal/chunktype"
	"github.com/opcode-dev/opcode-index/internal/model"
	"github.com/opcode-dev/opcode-index/pkg/hashutil"
)

// FileInput is the triple every per-file extractor consumes.
type FileInput struct {
	ProjectRoot string
	RelPath     string
	Content     []byte
}

// newChunk builds a Chunk with its content hash computed from content,
// leaving CreatedAt/UpdatedAt and ID for storage to fill in on upsert.
func newChunk(project string, ct chunktype.Chunk, relPath, entity, content, metadata string) *model.Chunk {
	return &model.Chunk{
		Project:     project,
		ChunkType:   ct,
		FilePath:    relPath,
		EntityName:  entity,
		Content:     content,
		ContentHash: hashutil.Sum([]byte(content)).String(),
		Metadata:    metadata,
	}
}
