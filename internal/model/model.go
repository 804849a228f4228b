// Package model defines the persisted record shapes of the indexing
// engine's data model: chunks, their relationships, business rules,
// snapshots, and error logs.
package model

import (
	"time"

	"github.com/opcode-dev/opcode-index/internal/chunktype"
)

// Chunk is a typed, content-addressed view of part of a project.
type Chunk struct {
	ID           int64
	Project      string
	ChunkType    chunktype.Chunk
	FilePath     string // optional
	EntityName   string // optional, e.g. a commit hex id
	Content      string
	ContentHash  string // lowercase hex SHA-256 of Content
	Metadata     string // optional JSON blob, schema depends on ChunkType
	SnapshotID   *int64 // optional
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ChunkRelationship is a typed directed edge between two chunks.
type ChunkRelationship struct {
	ID       int64
	FromID   int64
	ToID     int64
	Type     chunktype.Relationship
	Metadata string // optional JSON blob
}

// BusinessRule is an entity-scoped narrative proposed by extraction and
// later validated by a human.
type BusinessRule struct {
	ID              int64
	Project         string
	Entity          string
	File            string
	RuleDescription string
	AIInterpretation string
	UserCorrection  string // optional
	IsValidated     bool
	ValidationDate  *time.Time
}

// Snapshot is a node in the dual timeline.
type Snapshot struct {
	ID              int64
	Project         string
	SnapshotType    chunktype.SnapshotKind
	ParentSnapshotID *int64 // nullable; for agent snapshots, the master they branched from
	UserMessage     string  // master only
	ChangedFiles    []string
	DiffSummary     string
	GitCommitHash   string
	GitTag          string
	GitBranch       string
	VersionMajor    int  // >= 1, required
	VersionMinor    *int // agent only, >= 1
	CreatedAt       time.Time
}

// ErrorLog is a deduplicated record of an error encountered while
// processing a project.
type ErrorLog struct {
	ID              int64
	Project         string
	SnapshotID      *int64
	File            string
	Entity          string
	ErrorType       string
	Message         string
	Stacktrace      string
	OccurrenceCount int
	FirstSeen       time.Time
	LastSeen        time.Time
	IsResolved      bool
}
